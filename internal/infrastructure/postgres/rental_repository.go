package postgres

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/rental-api/internal/domain"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.RentalRepository = (*RentalRepo)(nil)

// RentalRepo implementación del puerto RentalRepository sobre PostgreSQL (usable con pool o tx).
type RentalRepo struct {
	q Querier
}

// NewRentalRepository construye el adaptador de alquileres. Pasar pool o tx (Querier).
func NewRentalRepository(q Querier) *RentalRepo {
	return &RentalRepo{q: q}
}

const (
	rentalColumns = `id, store_id, created_by, customer_name, start_at, due_date, returned_at, status, total, created_at, updated_at`
	lineColumns   = `id, rental_id, item_id, position, qty, per_day, returned_qty, created_at`
)

func scanRental(row pgx.Row) (*entity.Rental, error) {
	var r entity.Rental
	err := row.Scan(&r.ID, &r.StoreID, &r.CreatedBy, &r.CustomerName, &r.Start, &r.Due, &r.Returned,
		&r.Status, &r.Total, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanLine(row pgx.Row) (*entity.RentalLineItem, error) {
	var l entity.RentalLineItem
	if err := row.Scan(&l.ID, &l.RentalID, &l.ItemID, &l.Position, &l.Qty, &l.PerDay, &l.ReturnedQty, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserta la cabecera del alquiler (status active, total 0 hasta UpdateTotal).
func (r *RentalRepo) Create(ctx context.Context, rental *entity.Rental) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO rentals (`+rentalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rental.ID, rental.StoreID, rental.CreatedBy, rental.CustomerName, rental.Start, rental.Due,
		rental.Returned, rental.Status, rental.Total, rental.CreatedAt, rental.UpdatedAt,
	)
	return wrapErr("insert rental", err)
}

// CreateLineItem inserta una línea con la tarifa ya resuelta.
func (r *RentalRepo) CreateLineItem(ctx context.Context, l *entity.RentalLineItem) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO rental_line_items (`+lineColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		l.ID, l.RentalID, l.ItemID, l.Position, l.Qty, l.PerDay, l.ReturnedQty, l.CreatedAt,
	)
	return wrapErr("insert rental line item", err)
}

// GetByID obtiene la cabecera y sus líneas.
func (r *RentalRepo) GetByID(ctx context.Context, id string) (*entity.Rental, error) {
	return r.get(ctx, "get rental", `SELECT `+rentalColumns+` FROM rentals WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera (SELECT FOR UPDATE) y carga sus líneas sin bloquearlas.
func (r *RentalRepo) GetForUpdate(ctx context.Context, id string) (*entity.Rental, error) {
	return r.get(ctx, "get rental for update", `SELECT `+rentalColumns+` FROM rentals WHERE id = $1 FOR UPDATE`, id)
}

func (r *RentalRepo) get(ctx context.Context, op, query, id string) (*entity.Rental, error) {
	if !validID(id) {
		return nil, nil
	}
	rental, err := scanRental(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	lines, err := r.lines(ctx, `SELECT `+lineColumns+` FROM rental_line_items WHERE rental_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	rental.Lines = lines
	return rental, nil
}

// LockLineItems bloquea las líneas indicadas del alquiler en orden ascendente de ID.
func (r *RentalRepo) LockLineItems(ctx context.Context, rentalID string, lineIDs []string) (map[string]*entity.RentalLineItem, error) {
	sorted := validIDs(lineIDs)
	sort.Strings(sorted)
	if !validID(rentalID) || len(sorted) == 0 {
		return map[string]*entity.RentalLineItem{}, nil
	}
	lines, err := r.lines(ctx, `
		SELECT `+lineColumns+` FROM rental_line_items
		WHERE rental_id = $1 AND id = ANY($2::uuid[])
		ORDER BY id
		FOR UPDATE`, rentalID, sorted)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*entity.RentalLineItem, len(lines))
	for _, l := range lines {
		out[l.ID] = l
	}
	return out, nil
}

func (r *RentalRepo) lines(ctx context.Context, query string, args ...any) ([]*entity.RentalLineItem, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list rental line items", err)
	}
	defer rows.Close()
	var list []*entity.RentalLineItem
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, wrapErr("scan rental line item", err)
		}
		list = append(list, l)
	}
	return list, wrapErr("list rental line items", rows.Err())
}

// UpdateLineReturnedQty fija returned_qty; el CHECK de la tabla impide superar qty.
func (r *RentalRepo) UpdateLineReturnedQty(ctx context.Context, lineID string, returnedQty int) error {
	cmd, err := r.q.Exec(ctx, `UPDATE rental_line_items SET returned_qty = $2 WHERE id = $1`, lineID, returnedQty)
	if err != nil {
		return wrapErr("update returned qty", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateTotal fija el total calculado del alquiler.
func (r *RentalRepo) UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx, `UPDATE rentals SET total = $2, updated_at = now() WHERE id = $1`, id, total)
	if err != nil {
		return wrapErr("update rental total", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrRentalNotFound
	}
	return nil
}

// MarkReturned transición active -> returned; no hay camino de vuelta.
func (r *RentalRepo) MarkReturned(ctx context.Context, id string, returnedAt time.Time) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE rentals SET status = 'returned', returned_at = $2, updated_at = now()
		WHERE id = $1 AND status <> 'returned'`, id, returnedAt)
	if err != nil {
		return wrapErr("mark rental returned", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrAlreadyReturned
	}
	return nil
}

// ListByStore alquileres de la tienda, más reciente primero, con sus líneas.
func (r *RentalRepo) ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*entity.Rental, error) {
	if !validID(storeID) {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT `+rentalColumns+` FROM rentals
		WHERE store_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`, storeID, limit, offset)
	if err != nil {
		return nil, wrapErr("list rentals", err)
	}
	var list []*entity.Rental
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			rows.Close()
			return nil, wrapErr("scan rental", err)
		}
		list = append(list, rental)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list rentals", err)
	}
	if len(list) == 0 {
		return list, nil
	}

	ids := make([]string, len(list))
	byID := make(map[string]*entity.Rental, len(list))
	for i, rental := range list {
		ids[i] = rental.ID
		byID[rental.ID] = rental
	}
	lines, err := r.lines(ctx, `
		SELECT `+lineColumns+` FROM rental_line_items
		WHERE rental_id = ANY($1::uuid[])
		ORDER BY rental_id, position`, ids)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		byID[l.RentalID].Lines = append(byID[l.RentalID].Lines, l)
	}
	return list, nil
}

// CountOutstandingByItem líneas del ítem con unidades sin devolver.
func (r *RentalRepo) CountOutstandingByItem(ctx context.Context, itemID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*)::int FROM rental_line_items
		WHERE item_id = $1 AND returned_qty < qty`, itemID).Scan(&n)
	if err != nil {
		return 0, wrapErr("count outstanding lines", err)
	}
	return n, nil
}
