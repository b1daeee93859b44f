package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest entrada para crear un ítem. Quantity > 0 genera un movimiento "initial".
type CreateItemRequest struct {
	Name        string           `json:"name" validate:"required,min=1,max=120"`
	SKU         string           `json:"sku" validate:"required,min=1,max=64"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	IsRentable  *bool            `json:"is_rentable"` // por defecto true
	IsSellable  *bool            `json:"is_sellable"` // por defecto true
	Price       decimal.Decimal  `json:"price"`
	RentalRate  *decimal.Decimal `json:"rental_rate"`
	Quantity    int              `json:"quantity"`
}

// UpdateItemRequest actualización parcial (sin quantity: el stock se mueve por ajustes).
type UpdateItemRequest struct {
	Name            *string          `json:"name" validate:"omitempty,min=1,max=120"`
	Description     *string          `json:"description"`
	Category        *string          `json:"category"`
	IsRentable      *bool            `json:"is_rentable"`
	IsSellable      *bool            `json:"is_sellable"`
	Price           *decimal.Decimal `json:"price"`
	RentalRate      *decimal.Decimal `json:"rental_rate"`
	ClearRentalRate bool             `json:"clear_rental_rate"`
	Status          *string          `json:"status"`
}

// ItemResponse salida de un ítem.
type ItemResponse struct {
	ID          string           `json:"id"`
	StoreID     string           `json:"store_id"`
	Name        string           `json:"name"`
	SKU         string           `json:"sku"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	IsRentable  bool             `json:"is_rentable"`
	IsSellable  bool             `json:"is_sellable"`
	Price       decimal.Decimal  `json:"price"`
	RentalRate  *decimal.Decimal `json:"rental_rate"`
	Quantity    int              `json:"quantity"`
	Status      string           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ItemListResponse lista paginada de ítems.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
