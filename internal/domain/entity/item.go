package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Estados de un ítem.
const (
	ItemStatusActive   = "active"
	ItemStatusInactive = "inactive"
	ItemStatusArchived = "archived" // fuera de catálogo; la fila se conserva por el ledger
)

// Item representa una unidad de inventario alquilable y/o vendible de una tienda.
// Quantity solo cambia a través del ledger de stock (ver application/inventory.Ledger).
type Item struct {
	ID          string
	StoreID     string
	Name        string
	SKU         string // único por tienda, normalizado con NormalizeSKU
	Description string
	Category    string
	IsRentable  bool
	IsSellable  bool
	Price       decimal.Decimal
	RentalRate  *decimal.Decimal // tarifa diaria sugerida; nil = sin tarifa
	Quantity    int              // unidades disponibles, nunca negativo
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive indica si el ítem puede participar en alquileres o ventas.
func (i *Item) IsActive() bool {
	return i.Status == ItemStatusActive
}

// ItemPatch campos modificables de un ítem. Nil = sin cambio.
// Quantity no aparece: el stock solo se mueve por el ledger.
type ItemPatch struct {
	Name            *string
	Description     *string
	Category        *string
	IsRentable      *bool
	IsSellable      *bool
	Price           *decimal.Decimal
	RentalRate      *decimal.Decimal
	ClearRentalRate bool
	Status          *string
}

// Empty indica que el patch no modifica nada.
func (p ItemPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Category == nil &&
		p.IsRentable == nil && p.IsSellable == nil && p.Price == nil &&
		p.RentalRate == nil && !p.ClearRentalRate && p.Status == nil
}

// Apply copia los campos presentes del patch sobre el ítem.
func (p ItemPatch) Apply(item *Item) {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.IsRentable != nil {
		item.IsRentable = *p.IsRentable
	}
	if p.IsSellable != nil {
		item.IsSellable = *p.IsSellable
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.ClearRentalRate {
		item.RentalRate = nil
	} else if p.RentalRate != nil {
		rate := *p.RentalRate
		item.RentalRate = &rate
	}
	if p.Status != nil {
		item.Status = *p.Status
	}
}

var skuCaser = cases.Upper(language.Und)

// NormalizeSKU recorta, normaliza a NFKC y pasa a mayúsculas ("ａｂ-1" y "AB-1" son el mismo SKU).
func NormalizeSKU(sku string) string {
	return skuCaser.String(norm.NFKC.String(strings.TrimSpace(sku)))
}
