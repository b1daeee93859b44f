package rental

import (
	"context"

	"github.com/jhoicas/rental-api/internal/application/inventory"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/internal/domain/repository"
)

// TxRunner ejecuta fn en una sola transacción; cualquier error hace rollback de todo lo escrito.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.TxRepos) error) error
}

// StockLedger ajuste de stock dentro de la transacción del flujo (lo implementa inventory.Ledger).
type StockLedger interface {
	AdjustInTx(ctx context.Context, repos repository.TxRepos, in inventory.AdjustInput) (*entity.StockTransaction, error)
}

var _ StockLedger = (*inventory.Ledger)(nil)
