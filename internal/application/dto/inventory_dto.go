package dto

import "time"

// AdjustStockRequest body para POST /api/items/:id/adjustments.
type AdjustStockRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"` // por defecto "adjustment"
}

// RecordSaleRequest body para POST /api/items/:id/sales.
type RecordSaleRequest struct {
	Qty int `json:"qty"`
}

// StockTransactionResponse un movimiento del ledger.
type StockTransactionResponse struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	ActorID   *string   `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

// StockTransactionListResponse lista paginada del ledger de un ítem.
type StockTransactionListResponse struct {
	Items []StockTransactionResponse `json:"items"`
	Page  PageResponse               `json:"page"`
}

// LedgerCheckResponse resultado de conciliar cantidad contra suma del ledger.
type LedgerCheckResponse struct {
	ItemID     string `json:"item_id"`
	Quantity   int    `json:"quantity"`
	LedgerSum  int    `json:"ledger_sum"`
	Consistent bool   `json:"consistent"`
}
