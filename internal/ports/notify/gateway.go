package notify

import (
	"context"
	"time"
)

// RecordKind identifica el tipo de registro que origina la notificación.
// @Enum vaccination, medication
type RecordKind string

const (
	KindVaccination RecordKind = "vaccination"
	KindMedication  RecordKind = "medication"
)

// ExpiryNotice es el evento que emite el scanner por cada
// (registro, horizonte, dueño) que matchea la corrida del día.
type ExpiryNotice struct {
	RecipientEmail    string
	RecipientLanguage string

	PetName  string
	ItemName string // nombre de la vacuna o medicación
	Kind     RecordKind

	ExpiresOn time.Time
	Horizon   string // etiqueta legible: "in 1 week", "tomorrow", etc.
}

// RecordAddedNotice es el aviso one-shot al crear un registro médico.
type RecordAddedNotice struct {
	RecipientEmail string

	PetName  string
	ItemName string
	Kind     RecordKind
}

// Gateway es la frontera con el transporte de notificaciones.
// El rendering de templates y el SMTP quedan del otro lado.
// Los callers lo tratan como fire-and-forget: un transporte lento o
// caído nunca debe frenar el scan ni el request que disparó el aviso.
type Gateway interface {
	SendExpiryNotice(ctx context.Context, n ExpiryNotice) error
	SendRecordAddedNotice(ctx context.Context, n RecordAddedNotice) error
}
