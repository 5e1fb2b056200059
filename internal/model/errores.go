package model

import "errors"

// Domain errors shared by services and repositories. Handlers map these to
// HTTP statuses; everything else surfaces as a generic 400/500.
var (
	// ErrCajaOcupada: the drawer already has an open turno.
	ErrCajaOcupada = errors.New("la caja ya tiene un turno abierto")
	// ErrTurnoNoAbierto: the turno is closed (or never existed) and cannot
	// accept movements, payments or a second close.
	ErrTurnoNoAbierto = errors.New("el turno no está abierto")
	// ErrValidacion: malformed or out-of-range input. The message is safe to
	// surface verbatim.
	ErrValidacion = errors.New("error de validación")
)
