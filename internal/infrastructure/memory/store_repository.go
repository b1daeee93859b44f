package memory

import (
	"context"

	"github.com/jhoicas/rental-api/internal/domain"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/internal/domain/repository"
)

// StoreRepo implementación en memoria de repository.StoreRepository.
type StoreRepo struct {
	db *DB
	tx *Tx
}

var _ repository.StoreRepository = (*StoreRepo)(nil)

func (r *StoreRepo) Create(ctx context.Context, s *entity.Store) error {
	return r.db.autocommit(r.tx, func(t *Tx) error {
		if err := t.lock(ctx, "store:"+s.ID); err != nil {
			return err
		}
		r.db.mu.Lock()
		defer r.db.mu.Unlock()
		if r.db.visibleStore(t, s.ID) != nil {
			return domain.ErrDuplicate
		}
		t.stores[s.ID] = cloneStore(s)
		return nil
	})
}

func (r *StoreRepo) GetByID(ctx context.Context, id string) (*entity.Store, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return cloneStore(r.db.visibleStore(r.tx, id)), nil
}

func (r *StoreRepo) GetBySlug(ctx context.Context, slug string) (*entity.Store, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.tx != nil {
		for _, s := range r.tx.stores {
			if s.Slug == slug {
				return cloneStore(s), nil
			}
		}
	}
	for _, s := range r.db.stores {
		if s.Slug == slug {
			return cloneStore(s), nil
		}
	}
	return nil, nil
}
