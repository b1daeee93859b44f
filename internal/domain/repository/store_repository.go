package repository

import (
	"context"

	"github.com/jhoicas/rental-api/internal/domain/entity"
)

// StoreRepository define el puerto de persistencia para tiendas.
type StoreRepository interface {
	Create(ctx context.Context, store *entity.Store) error
	GetByID(ctx context.Context, id string) (*entity.Store, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Store, error)
}
