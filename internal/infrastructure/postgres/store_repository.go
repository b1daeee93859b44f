package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/internal/domain/repository"
)

var _ repository.StoreRepository = (*StoreRepo)(nil)

// StoreRepo implementación del puerto StoreRepository sobre PostgreSQL.
type StoreRepo struct {
	q Querier
}

// NewStoreRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStoreRepository(q Querier) *StoreRepo {
	return &StoreRepo{q: q}
}

const storeColumns = `id, name, slug, currency, timezone, created_at, updated_at`

// Create persiste una tienda. Slug duplicado -> domain.ErrDuplicate.
func (r *StoreRepo) Create(ctx context.Context, s *entity.Store) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stores (`+storeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.Name, s.Slug, s.Currency, s.Timezone, s.CreatedAt, s.UpdatedAt,
	)
	return wrapErr("insert store", err)
}

// GetByID obtiene una tienda por ID.
func (r *StoreRepo) GetByID(ctx context.Context, id string) (*entity.Store, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "get store", `SELECT `+storeColumns+` FROM stores WHERE id = $1`, id)
}

// GetBySlug obtiene una tienda por slug.
func (r *StoreRepo) GetBySlug(ctx context.Context, slug string) (*entity.Store, error) {
	return r.getOne(ctx, "get store by slug", `SELECT `+storeColumns+` FROM stores WHERE slug = $1`, slug)
}

func (r *StoreRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.Store, error) {
	var s entity.Store
	err := r.q.QueryRow(ctx, query, arg).Scan(&s.ID, &s.Name, &s.Slug, &s.Currency, &s.Timezone, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return &s, nil
}
