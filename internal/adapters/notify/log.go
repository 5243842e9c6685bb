package notify

import (
	"context"

	"pet-medical-records/internal/platform/logger"
	"pet-medical-records/internal/ports/notify"
)

// LogGateway escribe las notificaciones al log en vez de mandarlas.
// Es el gateway por defecto en dev, cuando no hay webhook configurado.
type LogGateway struct{}

func NewLogGateway() *LogGateway {
	return &LogGateway{}
}

func (g *LogGateway) SendExpiryNotice(ctx context.Context, n notify.ExpiryNotice) error {
	logger.Get().Info().
		Str("recipient", n.RecipientEmail).
		Str("pet", n.PetName).
		Str("item", n.ItemName).
		Str("kind", string(n.Kind)).
		Str("horizon", n.Horizon).
		Time("expires_on", n.ExpiresOn).
		Msg("expiry notice (log gateway)")
	return nil
}

func (g *LogGateway) SendRecordAddedNotice(ctx context.Context, n notify.RecordAddedNotice) error {
	logger.Get().Info().
		Str("recipient", n.RecipientEmail).
		Str("pet", n.PetName).
		Str("item", n.ItemName).
		Str("kind", string(n.Kind)).
		Msg("record added notice (log gateway)")
	return nil
}
