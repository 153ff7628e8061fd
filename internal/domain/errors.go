package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Especializaciones de ErrConflict: errors.Is(err, ErrConflict) es verdadero para todas.
var (
	ErrInsufficientStock = fmt.Errorf("%w: stock insuficiente", ErrConflict)
	ErrRequestNotPending = fmt.Errorf("%w: la solicitud ya no está pendiente", ErrConflict)
	ErrDuplicate         = fmt.Errorf("%w: recurso duplicado", ErrConflict)
	ErrTxContention      = fmt.Errorf("%w: contención de bloqueo, reintente", ErrConflict)
)

// Invalid devuelve un ErrInvalidInput con el detalle del campo.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
