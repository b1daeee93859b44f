package repository

import (
	"context"

	"github.com/jhoicas/rental-api/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia para ítems.
// Los métodos devuelven (nil, nil) cuando la fila no existe.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	GetByStoreAndSKU(ctx context.Context, storeID, sku string) (*entity.Item, error)
	// GetForUpdate bloquea la fila en exclusiva hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Item, error)
	// LockMany bloquea varias filas en orden ascendente de ID; omite las inexistentes.
	LockMany(ctx context.Context, ids []string) (map[string]*entity.Item, error)
	// Update persiste los campos de catálogo y el estado; nunca la cantidad.
	Update(ctx context.Context, item *entity.Item) error
	// UpdateQuantity reservado al ledger de stock.
	UpdateQuantity(ctx context.Context, id string, quantity int) error
	ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*entity.Item, error)
}
