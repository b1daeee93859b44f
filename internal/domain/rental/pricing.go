package rental

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateOf devuelve la fecha calendario de t en loc, como medianoche UTC.
// Las fechas del dominio (vencimiento, "hoy") se comparan siempre en esta forma.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween días calendario entre dos fechas (to - from). Negativo si to es anterior.
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// LineTotal tarifa plana: perDay * qty * days, redondeado a 2 decimales.
func LineTotal(perDay decimal.Decimal, qty, days int) decimal.Decimal {
	return perDay.Mul(decimal.NewFromInt(int64(qty))).Mul(decimal.NewFromInt(int64(days))).Round(2)
}
