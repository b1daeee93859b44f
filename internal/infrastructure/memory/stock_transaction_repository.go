package memory

import (
	"context"

	"github.com/jhoicas/rental-api/internal/domain"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/internal/domain/repository"
)

// StockTransactionRepo ledger append-only en memoria.
type StockTransactionRepo struct {
	db *DB
	tx *Tx
}

var _ repository.StockTransactionRepository = (*StockTransactionRepo)(nil)

func (r *StockTransactionRepo) Create(ctx context.Context, stx *entity.StockTransaction) error {
	if !entity.ValidReason(stx.Reason) {
		return domain.ErrInvalidReason
	}
	return r.db.autocommit(r.tx, func(t *Tx) error {
		r.db.mu.Lock()
		defer r.db.mu.Unlock()
		if r.db.visibleItem(t, stx.ItemID) == nil {
			return domain.ErrConflict
		}
		t.txs = append(t.txs, cloneTx(stx))
		return nil
	})
}

// ListByItem más reciente primero.
func (r *StockTransactionRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.StockTransaction, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	all := r.db.visibleTxs(r.tx)
	var list []*entity.StockTransaction
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].ItemID == itemID {
			list = append(list, all[i])
		}
	}
	from, to := paginate(len(list), limit, offset)
	out := make([]*entity.StockTransaction, 0, to-from)
	for _, t := range list[from:to] {
		out = append(out, cloneTx(t))
	}
	return out, nil
}

func (r *StockTransactionRepo) SumByItem(ctx context.Context, itemID string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	sum := 0
	for _, t := range r.db.visibleTxs(r.tx) {
		if t.ItemID == itemID {
			sum += t.Delta
		}
	}
	return sum, nil
}
