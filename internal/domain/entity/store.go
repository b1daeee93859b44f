package entity

import (
	"time"
)

// Valores por defecto para una tienda nueva.
const (
	DefaultCurrency = "USD"
	DefaultTimezone = "UTC"
)

// Store representa una tienda independiente; cada ítem y cada alquiler pertenece a una sola.
type Store struct {
	ID        string
	Name      string
	Slug      string // único global
	Currency  string
	Timezone  string // IANA, se usa para calcular "hoy" en validaciones de fechas
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location devuelve la zona horaria de la tienda; UTC si no es válida.
func (s *Store) Location() *time.Location {
	if s == nil || s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
