package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jhoicas/rental-api/internal/domain"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// RentalRepo implementación en memoria de repository.RentalRepository.
type RentalRepo struct {
	db *DB
	tx *Tx
}

var _ repository.RentalRepository = (*RentalRepo)(nil)

var errReturnedQtyRange = errors.New("memory: returned_qty fuera de rango")

func rentalKey(id string) string { return "rental:" + id }
func lineKey(id string) string   { return "line:" + id }

func (r *RentalRepo) Create(ctx context.Context, rental *entity.Rental) error {
	return r.db.autocommit(r.tx, func(t *Tx) error {
		if err := t.lock(ctx, rentalKey(rental.ID)); err != nil {
			return err
		}
		r.db.mu.Lock()
		defer r.db.mu.Unlock()
		if r.db.visibleRental(t, rental.ID) != nil {
			return domain.ErrDuplicate
		}
		if r.db.visibleStore(t, rental.StoreID) == nil {
			return domain.ErrConflict
		}
		t.rentals[rental.ID] = cloneRental(rental)
		return nil
	})
}

func (r *RentalRepo) CreateLineItem(ctx context.Context, line *entity.RentalLineItem) error {
	return r.db.autocommit(r.tx, func(t *Tx) error {
		if err := t.lock(ctx, lineKey(line.ID)); err != nil {
			return err
		}
		r.db.mu.Lock()
		defer r.db.mu.Unlock()
		if r.db.visibleLine(t, line.ID) != nil {
			return domain.ErrDuplicate
		}
		if r.db.visibleRental(t, line.RentalID) == nil || r.db.visibleItem(t, line.ItemID) == nil {
			return domain.ErrConflict
		}
		t.lines[line.ID] = cloneLine(line)
		return nil
	})
}

func (r *RentalRepo) GetByID(ctx context.Context, id string) (*entity.Rental, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.load(id), nil
}

// load requiere db.mu.
func (r *RentalRepo) load(id string) *entity.Rental {
	rental := cloneRental(r.db.visibleRental(r.tx, id))
	if rental == nil {
		return nil
	}
	rental.Lines = r.db.linesOf(r.tx, id)
	return rental
}

func (r *RentalRepo) GetForUpdate(ctx context.Context, id string) (*entity.Rental, error) {
	if r.tx != nil {
		if err := r.tx.lock(ctx, rentalKey(id)); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *RentalRepo) LockLineItems(ctx context.Context, rentalID string, lineIDs []string) (map[string]*entity.RentalLineItem, error) {
	sorted := append([]string(nil), lineIDs...)
	sort.Strings(sorted)
	out := make(map[string]*entity.RentalLineItem, len(sorted))
	for _, id := range sorted {
		if r.tx != nil {
			if err := r.tx.lock(ctx, lineKey(id)); err != nil {
				return nil, err
			}
		}
		r.db.mu.Lock()
		l := r.db.visibleLine(r.tx, id)
		if l != nil && l.RentalID == rentalID {
			out[id] = cloneLine(l)
		}
		r.db.mu.Unlock()
	}
	return out, nil
}

func (r *RentalRepo) UpdateLineReturnedQty(ctx context.Context, lineID string, returnedQty int) error {
	return r.db.autocommit(r.tx, func(t *Tx) error {
		if err := t.lock(ctx, lineKey(lineID)); err != nil {
			return err
		}
		r.db.mu.Lock()
		defer r.db.mu.Unlock()
		current := r.db.visibleLine(t, lineID)
		if current == nil {
			return domain.ErrNotFound
		}
		if returnedQty < 0 || returnedQty > current.Qty {
			return errReturnedQtyRange
		}
		next := cloneLine(current)
		next.ReturnedQty = returnedQty
		t.lines[lineID] = next
		return nil
	})
}

func (r *RentalRepo) UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error {
	return r.updateHeader(ctx, id, func(rental *entity.Rental) {
		rental.Total = total
	})
}

func (r *RentalRepo) MarkReturned(ctx context.Context, id string, returnedAt time.Time) error {
	return r.updateHeader(ctx, id, func(rental *entity.Rental) {
		at := returnedAt
		rental.Status = entity.RentalStatusReturned
		rental.Returned = &at
	})
}

func (r *RentalRepo) updateHeader(ctx context.Context, id string, fn func(*entity.Rental)) error {
	return r.db.autocommit(r.tx, func(t *Tx) error {
		if err := t.lock(ctx, rentalKey(id)); err != nil {
			return err
		}
		r.db.mu.Lock()
		defer r.db.mu.Unlock()
		current := r.db.visibleRental(t, id)
		if current == nil {
			return domain.ErrRentalNotFound
		}
		next := cloneRental(current)
		fn(next)
		next.UpdatedAt = time.Now()
		t.rentals[id] = next
		return nil
	})
}

// ListByStore más reciente primero.
func (r *RentalRepo) ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*entity.Rental, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var list []*entity.Rental
	for _, rental := range r.db.visibleRentals(r.tx) {
		if rental.StoreID == storeID {
			list = append(list, rental)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	from, to := paginate(len(list), limit, offset)
	out := make([]*entity.Rental, 0, to-from)
	for _, rental := range list[from:to] {
		out = append(out, r.load(rental.ID))
	}
	return out, nil
}

func (r *RentalRepo) CountOutstandingByItem(ctx context.Context, itemID string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	n := 0
	for _, l := range r.db.visibleLines(r.tx) {
		if l.ItemID == itemID && l.ReturnedQty < l.Qty {
			n++
		}
	}
	return n, nil
}
