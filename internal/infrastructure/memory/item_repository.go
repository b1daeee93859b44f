package memory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jhoicas/rental-api/internal/domain"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/internal/domain/repository"
)

// ItemRepo implementación en memoria de repository.ItemRepository.
type ItemRepo struct {
	db *DB
	tx *Tx
}

var _ repository.ItemRepository = (*ItemRepo)(nil)

var errNegativeQuantity = errors.New("memory: quantity no puede ser negativa")

func itemKey(id string) string { return "item:" + id }

func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	return r.db.autocommit(r.tx, func(t *Tx) error {
		if err := t.lock(ctx, itemKey(item.ID)); err != nil {
			return err
		}
		r.db.mu.Lock()
		defer r.db.mu.Unlock()
		if r.db.visibleItem(t, item.ID) != nil {
			return domain.ErrDuplicate
		}
		if r.db.visibleStore(t, item.StoreID) == nil {
			return domain.ErrConflict
		}
		for _, o := range r.db.visibleItems(t) {
			if o.StoreID == item.StoreID && o.SKU == item.SKU {
				return domain.ErrDuplicate
			}
		}
		if item.Quantity < 0 {
			return errNegativeQuantity
		}
		t.items[item.ID] = cloneItem(item)
		return nil
	})
}

func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return cloneItem(r.db.visibleItem(r.tx, id)), nil
}

func (r *ItemRepo) GetByStoreAndSKU(ctx context.Context, storeID, sku string) (*entity.Item, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, it := range r.db.visibleItems(r.tx) {
		if it.StoreID == storeID && it.SKU == sku {
			return cloneItem(it), nil
		}
	}
	return nil, nil
}

func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	if r.tx == nil {
		return r.GetByID(ctx, id)
	}
	if err := r.tx.lock(ctx, itemKey(id)); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ItemRepo) LockMany(ctx context.Context, ids []string) (map[string]*entity.Item, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	out := make(map[string]*entity.Item, len(sorted))
	for _, id := range sorted {
		item, err := r.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if item != nil {
			out[id] = item
		}
	}
	return out, nil
}

func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	return r.db.autocommit(r.tx, func(t *Tx) error {
		if err := t.lock(ctx, itemKey(item.ID)); err != nil {
			return err
		}
		r.db.mu.Lock()
		defer r.db.mu.Unlock()
		current := r.db.visibleItem(t, item.ID)
		if current == nil {
			return domain.ErrItemNotFound
		}
		next := cloneItem(item)
		next.Quantity = current.Quantity
		next.SKU = current.SKU
		next.StoreID = current.StoreID
		next.CreatedAt = current.CreatedAt
		t.items[item.ID] = next
		return nil
	})
}

func (r *ItemRepo) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	if quantity < 0 {
		return errNegativeQuantity
	}
	return r.db.autocommit(r.tx, func(t *Tx) error {
		if err := t.lock(ctx, itemKey(id)); err != nil {
			return err
		}
		r.db.mu.Lock()
		defer r.db.mu.Unlock()
		current := r.db.visibleItem(t, id)
		if current == nil {
			return domain.ErrItemNotFound
		}
		next := cloneItem(current)
		next.Quantity = quantity
		next.UpdatedAt = time.Now()
		t.items[id] = next
		return nil
	})
}

func (r *ItemRepo) ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*entity.Item, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var list []*entity.Item
	for _, it := range r.db.visibleItems(r.tx) {
		if it.StoreID == storeID {
			list = append(list, it)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	from, to := paginate(len(list), limit, offset)
	out := make([]*entity.Item, 0, to-from)
	for _, it := range list[from:to] {
		out = append(out, cloneItem(it))
	}
	return out, nil
}
