package services

import "errors"

// Common service errors
var (
	ErrNotFound            = errors.New("registro no encontrado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrInvalidState        = errors.New("transición de estado inválida")
	ErrNotConfigured       = errors.New("el vendedor no tiene configuración de comisión activa")
	ErrInvalidRange        = errors.New("la fecha desde no puede ser posterior a la fecha hasta")
	ErrInvalidAmount       = errors.New("el monto debe ser mayor a cero")
	ErrInvalidConfig       = errors.New("configuración de comisión inválida")
	ErrPaymentDateRequired = errors.New("la fecha de pago es obligatoria")
	ErrTransactionFailure  = errors.New("no se pudo registrar la liquidación")
	ErrInvalidInput        = errors.New("datos inválidos")
)
