package repository

import (
	"context"

	"github.com/jhoicas/rental-api/internal/domain/entity"
)

// ReturnRecordRepository puerto append-only del historial de devoluciones.
type ReturnRecordRepository interface {
	Create(ctx context.Context, record *entity.ReturnRecord) error
	ListByRental(ctx context.Context, rentalID string) ([]*entity.ReturnRecord, error)
}
