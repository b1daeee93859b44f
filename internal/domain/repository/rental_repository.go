package repository

import (
	"context"
	"time"

	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// RentalRepository define el puerto de persistencia para alquileres y sus líneas.
type RentalRepository interface {
	// Create inserta solo la cabecera del alquiler.
	Create(ctx context.Context, rental *entity.Rental) error
	CreateLineItem(ctx context.Context, line *entity.RentalLineItem) error
	// GetByID carga la cabecera y sus líneas (sin bloqueo).
	GetByID(ctx context.Context, id string) (*entity.Rental, error)
	// GetForUpdate bloquea la cabecera y carga sus líneas.
	GetForUpdate(ctx context.Context, id string) (*entity.Rental, error)
	// LockLineItems bloquea las líneas indicadas del alquiler en orden ascendente de ID.
	LockLineItems(ctx context.Context, rentalID string, lineIDs []string) (map[string]*entity.RentalLineItem, error)
	UpdateLineReturnedQty(ctx context.Context, lineID string, returnedQty int) error
	UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error
	MarkReturned(ctx context.Context, id string, returnedAt time.Time) error
	ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*entity.Rental, error)
	// CountOutstandingByItem cuenta las líneas que aún tienen unidades sin devolver del ítem.
	CountOutstandingByItem(ctx context.Context, itemID string) (int, error)
}
