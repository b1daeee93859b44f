package postgres

import (
	"context"

	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/internal/domain/repository"
)

var _ repository.ReturnRecordRepository = (*ReturnRecordRepo)(nil)

// ReturnRecordRepo historial append-only de devoluciones sobre PostgreSQL.
type ReturnRecordRepo struct {
	q Querier
}

// NewReturnRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReturnRecordRepository(q Querier) *ReturnRecordRepo {
	return &ReturnRecordRepo{q: q}
}

// Create agrega un evento de devolución.
func (r *ReturnRecordRepo) Create(ctx context.Context, rec *entity.ReturnRecord) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO return_records (id, line_item_id, qty, condition, damage_cost, actor_id, returned_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.LineItemID, rec.Qty, rec.Condition, rec.DamageCost, rec.ActorID, rec.ReturnedAt, rec.CreatedAt,
	)
	return wrapErr("insert return record", err)
}

// ListByRental devoluciones de todas las líneas del alquiler, en orden de registro.
func (r *ReturnRecordRepo) ListByRental(ctx context.Context, rentalID string) ([]*entity.ReturnRecord, error) {
	rows, err := r.q.Query(ctx, `
		SELECT rr.id, rr.line_item_id, rr.qty, rr.condition, rr.damage_cost, rr.actor_id, rr.returned_at, rr.created_at
		FROM return_records rr
		JOIN rental_line_items li ON li.id = rr.line_item_id
		WHERE li.rental_id = $1
		ORDER BY rr.seq`, rentalID)
	if err != nil {
		return nil, wrapErr("list return records", err)
	}
	defer rows.Close()
	var list []*entity.ReturnRecord
	for rows.Next() {
		var rec entity.ReturnRecord
		if err := rows.Scan(&rec.ID, &rec.LineItemID, &rec.Qty, &rec.Condition, &rec.DamageCost,
			&rec.ActorID, &rec.ReturnedAt, &rec.CreatedAt); err != nil {
			return nil, wrapErr("scan return record", err)
		}
		list = append(list, &rec)
	}
	return list, wrapErr("list return records", rows.Err())
}
