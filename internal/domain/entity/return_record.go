package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReturnRecord evento inmutable de devolución sobre una línea (puede haber varios por línea).
type ReturnRecord struct {
	ID         string
	LineItemID string
	Qty        int
	Condition  string
	DamageCost decimal.Decimal
	ActorID    *string
	ReturnedAt time.Time
	CreatedAt  time.Time
}
