package repository

import (
	"context"

	"github.com/jhoicas/rental-api/internal/domain/entity"
)

// StockTransactionRepository puerto append-only del ledger: no hay Update ni Delete.
type StockTransactionRepository interface {
	Create(ctx context.Context, tx *entity.StockTransaction) error
	ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.StockTransaction, error)
	SumByItem(ctx context.Context, itemID string) (int, error)
}
