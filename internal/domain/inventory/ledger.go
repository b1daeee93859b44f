package inventory

import (
	"math"

	"github.com/jhoicas/rental-api/internal/domain"
	"github.com/jhoicas/rental-api/internal/domain/entity"
)

// MaxQuantity tope para cantidades y deltas; las columnas de stock son INTEGER.
const MaxQuantity = math.MaxInt32

// CheckMagnitude rechaza con ValidationError un valor cuyo módulo supera MaxQuantity.
func CheckMagnitude(field string, v int) error {
	if v > MaxQuantity || v < -MaxQuantity {
		return domain.NewValidationError(field, "excede el máximo permitido")
	}
	return nil
}

// ApplyDelta calcula la nueva cantidad de un ítem tras aplicar delta (servicio de dominio).
// Falla con InsufficientStockError si el resultado quedaría negativo y con ValidationError
// si delta o el resultado exceden MaxQuantity.
func ApplyDelta(itemID string, current, delta int) (int, error) {
	if err := CheckMagnitude("delta", delta); err != nil {
		return current, err
	}
	next := current + delta
	if next < 0 {
		return current, &domain.InsufficientStockError{ItemID: itemID, Available: current, Requested: -delta}
	}
	if next > MaxQuantity {
		return current, domain.NewValidationError("quantity", "excede el máximo permitido")
	}
	return next, nil
}

// CheckReason valida el motivo contra la enumeración fija.
func CheckReason(reason string) error {
	if !entity.ValidReason(reason) {
		return domain.ErrInvalidReason
	}
	return nil
}

// LedgerSum suma los deltas de una serie de movimientos.
func LedgerSum(txs []*entity.StockTransaction) int {
	sum := 0
	for _, t := range txs {
		sum += t.Delta
	}
	return sum
}
