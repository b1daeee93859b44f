package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrStoreNotFound     = errors.New("tienda no encontrada")
	ErrItemNotFound      = errors.New("ítem no encontrado")
	ErrRentalNotFound    = errors.New("alquiler no encontrado")
	ErrInvalidReason     = errors.New("motivo de movimiento inválido")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrValidation        = errors.New("entrada inválida")
	ErrOverReturn        = errors.New("la devolución excede la cantidad pendiente")
	ErrAlreadyReturned   = errors.New("el alquiler ya fue devuelto")
	ErrLockTimeout       = errors.New("tiempo de espera de bloqueo agotado")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
)

// InsufficientStockError indica que un delta negativo dejaría la cantidad por debajo de cero.
// También cubre la verificación de disponibilidad al crear un alquiler.
type InsufficientStockError struct {
	ItemID    string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para ítem %s: disponible %d, solicitado %d", e.ItemID, e.Available, e.Requested)
}

// Shortfall unidades que faltan para cubrir lo solicitado.
func (e *InsufficientStockError) Shortfall() int {
	if e.Requested <= e.Available {
		return 0
	}
	return e.Requested - e.Available
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ValidationError entrada rechazada antes de tocar datos.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "entrada inválida: " + e.Reason
	}
	return fmt.Sprintf("entrada inválida: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError atajo para construir un ValidationError.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// OverReturnError la cantidad devuelta supera lo pendiente de la línea.
type OverReturnError struct {
	LineItemID  string
	Requested   int
	Outstanding int
}

func (e *OverReturnError) Error() string {
	return fmt.Sprintf("línea %s: se intentan devolver %d unidades, pendientes %d", e.LineItemID, e.Requested, e.Outstanding)
}

func (e *OverReturnError) Unwrap() error { return ErrOverReturn }

// LockTimeoutError contención sobre un bloqueo de fila (timeout, deadlock o serialización).
// Es el único error que el llamador puede reintentar sin corregir la petición.
type LockTimeoutError struct {
	Op  string
	Err error
}

func (e *LockTimeoutError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: bloqueo no disponible: %v", e.Op, e.Err)
	}
	return e.Op + ": bloqueo no disponible"
}

func (e *LockTimeoutError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrLockTimeout}
	}
	return []error{ErrLockTimeout, e.Err}
}

// IsRetryable indica si el error proviene de contención de bloqueos.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrLockTimeout)
}
