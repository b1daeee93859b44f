package postgres

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/rental-api/internal/domain"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación del puerto ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de ítems. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemColumns = `id, store_id, name, sku, description, category, is_rentable, is_sellable,
	price, rental_rate, quantity, status, created_at, updated_at`

func scanItem(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	err := row.Scan(&it.ID, &it.StoreID, &it.Name, &it.SKU, &it.Description, &it.Category,
		&it.IsRentable, &it.IsSellable, &it.Price, &it.RentalRate, &it.Quantity, &it.Status,
		&it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create persiste un nuevo ítem. SKU repetido en la tienda -> domain.ErrDuplicate.
func (r *ItemRepo) Create(ctx context.Context, it *entity.Item) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		it.ID, it.StoreID, it.Name, it.SKU, it.Description, it.Category, it.IsRentable, it.IsSellable,
		it.Price, it.RentalRate, it.Quantity, it.Status, it.CreatedAt, it.UpdatedAt,
	)
	return wrapErr("insert item", err)
}

// GetByID obtiene un ítem por ID.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "get item", `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
}

// GetByStoreAndSKU obtiene un ítem por tienda y SKU normalizado.
func (r *ItemRepo) GetByStoreAndSKU(ctx context.Context, storeID, sku string) (*entity.Item, error) {
	if !validID(storeID) {
		return nil, nil
	}
	return r.getOne(ctx, "get item by sku", `SELECT `+itemColumns+` FROM items WHERE store_id = $1 AND sku = $2`, storeID, sku)
}

// GetForUpdate obtiene el ítem y bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, "get item for update", `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id)
}

// LockMany bloquea los ítems en orden ascendente de ID con una sola sentencia.
// Los ids que no son UUID se omiten como inexistentes.
func (r *ItemRepo) LockMany(ctx context.Context, ids []string) (map[string]*entity.Item, error) {
	sorted := validIDs(ids)
	sort.Strings(sorted)
	if len(sorted) == 0 {
		return map[string]*entity.Item{}, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE id = ANY($1::uuid[])
		ORDER BY id
		FOR UPDATE`, sorted)
	if err != nil {
		return nil, wrapErr("lock items", err)
	}
	defer rows.Close()
	out := make(map[string]*entity.Item, len(sorted))
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, wrapErr("scan item", err)
		}
		out[it.ID] = it
	}
	return out, wrapErr("lock items", rows.Err())
}

// Update persiste campos de catálogo y estado. La cantidad solo la escribe UpdateQuantity.
func (r *ItemRepo) Update(ctx context.Context, it *entity.Item) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE items SET name = $2, description = $3, category = $4, is_rentable = $5, is_sellable = $6,
			price = $7, rental_rate = $8, status = $9, updated_at = $10
		WHERE id = $1`,
		it.ID, it.Name, it.Description, it.Category, it.IsRentable, it.IsSellable,
		it.Price, it.RentalRate, it.Status, it.UpdatedAt,
	)
	if err != nil {
		return wrapErr("update item", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// UpdateQuantity reservado al ledger de stock; la fila ya debe estar bloqueada por la tx.
func (r *ItemRepo) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	if !validID(id) {
		return domain.ErrItemNotFound
	}
	cmd, err := r.q.Exec(ctx, `UPDATE items SET quantity = $2, updated_at = now() WHERE id = $1`, id, quantity)
	if err != nil {
		return wrapErr("update item quantity", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// ListByStore lista ítems de la tienda con paginación, por nombre.
func (r *ItemRepo) ListByStore(ctx context.Context, storeID string, limit, offset int) ([]*entity.Item, error) {
	if !validID(storeID) {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE store_id = $1
		ORDER BY name, id
		LIMIT $2 OFFSET $3`, storeID, limit, offset)
	if err != nil {
		return nil, wrapErr("list items", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, wrapErr("scan item", err)
		}
		list = append(list, it)
	}
	return list, wrapErr("list items", rows.Err())
}

func (r *ItemRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.Item, error) {
	it, err := scanItem(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return it, nil
}
