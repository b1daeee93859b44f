package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de evento publicados después de cada commit.
const (
	EventStockAdjusted           = "stock.adjusted"
	EventRentalCreated           = "rental.created"
	EventRentalPartiallyReturned = "rental.partially_returned"
	EventRentalReturned          = "rental.returned"
)

// EventPublisher puerto de salida para consumidores de auditoría/reportes.
// Se invoca solo después del commit; un fallo no revierte la operación.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// StockAdjustedEvent un movimiento del ledger.
type StockAdjustedEvent struct {
	Type          string    `json:"type"`
	StoreID       string    `json:"store_id"`
	ItemID        string    `json:"item_id"`
	TransactionID string    `json:"transaction_id"`
	Delta         int       `json:"delta"`
	Reason        string    `json:"reason"`
	Quantity      int       `json:"quantity"`
	ActorID       *string   `json:"actor_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// RentalLineEvent resumen de una línea dentro de un evento de alquiler.
type RentalLineEvent struct {
	LineItemID  string `json:"line_item_id"`
	ItemID      string `json:"item_id"`
	Qty         int    `json:"qty"`
	ReturnedQty int    `json:"returned_qty"`
}

// RentalEvent creación o devolución (parcial o total) de un alquiler.
type RentalEvent struct {
	Type       string            `json:"type"`
	StoreID    string            `json:"store_id"`
	RentalID   string            `json:"rental_id"`
	Status     string            `json:"status"`
	Total      decimal.Decimal   `json:"total"`
	ActorID    *string           `json:"actor_id,omitempty"`
	Lines      []RentalLineEvent `json:"lines"`
	OccurredAt time.Time         `json:"occurred_at"`
}
