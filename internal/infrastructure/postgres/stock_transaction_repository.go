package postgres

import (
	"context"

	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/internal/domain/repository"
)

var _ repository.StockTransactionRepository = (*StockTransactionRepo)(nil)

// StockTransactionRepo ledger append-only sobre PostgreSQL: solo INSERT y lecturas.
type StockTransactionRepo struct {
	q Querier
}

// NewStockTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransactionRepository(q Querier) *StockTransactionRepo {
	return &StockTransactionRepo{q: q}
}

// Create agrega un movimiento al ledger.
func (r *StockTransactionRepo) Create(ctx context.Context, t *entity.StockTransaction) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_transactions (id, item_id, delta, reason, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.ItemID, t.Delta, t.Reason, t.ActorID, t.CreatedAt,
	)
	return wrapErr("insert stock transaction", err)
}

// ListByItem movimientos del ítem, más reciente primero.
func (r *StockTransactionRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.StockTransaction, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, item_id, delta, reason, actor_id, created_at
		FROM stock_transactions
		WHERE item_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $2 OFFSET $3`, itemID, limit, offset)
	if err != nil {
		return nil, wrapErr("list stock transactions", err)
	}
	defer rows.Close()
	var list []*entity.StockTransaction
	for rows.Next() {
		var t entity.StockTransaction
		if err := rows.Scan(&t.ID, &t.ItemID, &t.Delta, &t.Reason, &t.ActorID, &t.CreatedAt); err != nil {
			return nil, wrapErr("scan stock transaction", err)
		}
		list = append(list, &t)
	}
	return list, wrapErr("list stock transactions", rows.Err())
}

// SumByItem suma de deltas del ítem; debe coincidir con items.quantity.
func (r *StockTransactionRepo) SumByItem(ctx context.Context, itemID string) (int, error) {
	var sum int
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(delta), 0)::int FROM stock_transactions WHERE item_id = $1`, itemID).Scan(&sum)
	if err != nil {
		return 0, wrapErr("sum stock transactions", err)
	}
	return sum, nil
}
