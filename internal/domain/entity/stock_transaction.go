package entity

import "time"

// Motivos de un movimiento del ledger de stock.
const (
	ReasonInitial    = "initial"
	ReasonRental     = "rental"
	ReasonReturn     = "return"
	ReasonSale       = "sale"
	ReasonAdjustment = "adjustment"
)

// StockTransaction registro inmutable de un delta de cantidad sobre un ítem.
// La suma de Delta de todos los registros de un ítem es igual a Item.Quantity.
type StockTransaction struct {
	ID        string
	ItemID    string
	Delta     int // positivo entrada, negativo salida
	Reason    string
	ActorID   *string // nil cuando no hay actor (p. ej. devolución sin usuario)
	CreatedAt time.Time
}

// ValidReason indica si el motivo pertenece a la enumeración fija.
func ValidReason(reason string) bool {
	switch reason {
	case ReasonInitial, ReasonRental, ReasonReturn, ReasonSale, ReasonAdjustment:
		return true
	}
	return false
}
