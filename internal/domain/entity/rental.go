package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un alquiler. Overdue no se persiste: se deriva al leer (ver EffectiveStatus).
const (
	RentalStatusActive   = "active"
	RentalStatusReturned = "returned"
	RentalStatusOverdue  = "overdue"
)

// Rental contrato de alquiler con una o más líneas.
type Rental struct {
	ID           string
	StoreID      string
	CreatedBy    string
	CustomerName string
	Start        time.Time  // inmutable
	Due          time.Time  // fecha (medianoche UTC)
	Returned     *time.Time // nil mientras quede algo pendiente
	Status       string
	Total        decimal.Decimal
	Lines        []*RentalLineItem
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RentalLineItem una línea (ítem, cantidad, tarifa) del alquiler.
// Invariante: 0 <= ReturnedQty <= Qty.
type RentalLineItem struct {
	ID          string
	RentalID    string
	ItemID      string
	Position    int
	Qty         int
	PerDay      decimal.Decimal // copia de la tarifa al momento de crear
	ReturnedQty int
	Returns     []*ReturnRecord
	CreatedAt   time.Time
}

// Outstanding unidades aún no devueltas.
func (l *RentalLineItem) Outstanding() int {
	return l.Qty - l.ReturnedQty
}

// FullyReturned indica si todas las líneas están devueltas.
func (r *Rental) FullyReturned() bool {
	for _, l := range r.Lines {
		if l.ReturnedQty < l.Qty {
			return false
		}
	}
	return true
}

// Line busca una línea del alquiler por ID.
func (r *Rental) Line(id string) *RentalLineItem {
	for _, l := range r.Lines {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// EffectiveStatus devuelve overdue si el alquiler sigue activo y la fecha de vencimiento ya pasó.
// today debe ser una fecha (ver rental.DateOf).
func (r *Rental) EffectiveStatus(today time.Time) string {
	if r.Status == RentalStatusActive && r.Due.Before(today) {
		return RentalStatusOverdue
	}
	return r.Status
}

// DamageTotal suma los costos de daño registrados en las devoluciones.
func (r *Rental) DamageTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range r.Lines {
		for _, rr := range l.Returns {
			total = total.Add(rr.DamageCost)
		}
	}
	return total
}
