package memory

import (
	"context"

	"github.com/jhoicas/rental-api/internal/domain"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/internal/domain/repository"
)

// ReturnRecordRepo historial append-only de devoluciones en memoria.
type ReturnRecordRepo struct {
	db *DB
	tx *Tx
}

var _ repository.ReturnRecordRepository = (*ReturnRecordRepo)(nil)

func (r *ReturnRecordRepo) Create(ctx context.Context, rec *entity.ReturnRecord) error {
	return r.db.autocommit(r.tx, func(t *Tx) error {
		r.db.mu.Lock()
		defer r.db.mu.Unlock()
		if r.db.visibleLine(t, rec.LineItemID) == nil {
			return domain.ErrConflict
		}
		t.returns = append(t.returns, cloneReturn(rec))
		return nil
	})
}

// ListByRental devoluciones de todas las líneas del alquiler, en orden de registro.
func (r *ReturnRecordRepo) ListByRental(ctx context.Context, rentalID string) ([]*entity.ReturnRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	lines := make(map[string]struct{})
	for id, l := range r.db.visibleLines(r.tx) {
		if l.RentalID == rentalID {
			lines[id] = struct{}{}
		}
	}
	var out []*entity.ReturnRecord
	for _, rec := range r.db.visibleReturns(r.tx) {
		if _, ok := lines[rec.LineItemID]; ok {
			out = append(out, cloneReturn(rec))
		}
	}
	return out, nil
}
