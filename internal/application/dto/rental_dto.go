package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RentalLineRequest una línea al crear el alquiler. PerDay nil = tarifa del ítem.
type RentalLineRequest struct {
	ItemID string           `json:"item_id"`
	Qty    int              `json:"qty"`
	PerDay *decimal.Decimal `json:"per_day"`
}

// CreateRentalRequest body para POST /api/rentals. DueDate en formato YYYY-MM-DD.
type CreateRentalRequest struct {
	CustomerName string              `json:"customer_name"`
	DueDate      string              `json:"due_date"`
	Items        []RentalLineRequest `json:"items"`
}

// ReturnLineRequest una entrada de devolución.
type ReturnLineRequest struct {
	LineItemID string          `json:"line_item_id"`
	Qty        int             `json:"qty"`
	Condition  string          `json:"condition"`
	DamageCost decimal.Decimal `json:"damage_cost"`
}

// ProcessReturnRequest body para POST /api/rentals/:id/returns.
type ProcessReturnRequest struct {
	Items      []ReturnLineRequest `json:"items"`
	ReturnedAt *time.Time          `json:"returned_at,omitempty"`
}

// ReturnRecordResponse un evento de devolución.
type ReturnRecordResponse struct {
	ID         string          `json:"id"`
	Qty        int             `json:"qty"`
	Condition  string          `json:"condition"`
	DamageCost decimal.Decimal `json:"damage_cost"`
	ActorID    *string         `json:"actor_id"`
	ReturnedAt time.Time       `json:"returned_at"`
}

// RentalLineResponse una línea del alquiler.
type RentalLineResponse struct {
	ID          string                 `json:"id"`
	ItemID      string                 `json:"item_id"`
	Qty         int                    `json:"qty"`
	PerDay      decimal.Decimal        `json:"per_day"`
	ReturnedQty int                    `json:"returned_qty"`
	Outstanding int                    `json:"outstanding"`
	Returns     []ReturnRecordResponse `json:"returns"`
}

// RentalResponse salida de un alquiler. EffectiveStatus = overdue si venció sin devolverse.
type RentalResponse struct {
	ID              string               `json:"id"`
	StoreID         string               `json:"store_id"`
	CreatedBy       string               `json:"created_by"`
	CustomerName    string               `json:"customer_name"`
	Start           time.Time            `json:"start"`
	DueDate         string               `json:"due_date"`
	Returned        *time.Time           `json:"returned"`
	Status          string               `json:"status"`
	EffectiveStatus string               `json:"effective_status"`
	Total           decimal.Decimal      `json:"total"`
	DamageTotal     decimal.Decimal      `json:"damage_total"`
	Lines           []RentalLineResponse `json:"items"`
}

// RentalListResponse lista paginada de alquileres.
type RentalListResponse struct {
	Items []RentalResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
