package grants

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound: el código/token no resuelve a ningún grant.
	ErrNotFound = errors.New("not found")

	// ErrExpiredOrUsed colapsa a propósito "expirado" y "ya consumido":
	// el mensaje al usuario no distingue la causa.
	ErrExpiredOrUsed = errors.New("expired or already been used")

	// ErrForbidden: el rol del caller no es compatible con la redención.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCode: el código no corresponde a ninguna mascota. No se
	// distingue "nunca existió" de "expiró y fue borrado en la reemisión".
	ErrInvalidCode = errors.New("invalid access code")

	// ErrCodeTaken: el código generado colisiona con uno vigente de otra
	// mascota. Interno del issuer; se reintenta, nunca llega al caller.
	ErrCodeTaken = errors.New("access code already taken")
)
