package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/rental-api/internal/domain"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/internal/domain/repository"
)

// DefaultLockTimeout espera máxima por un bloqueo de fila si no se configura otra.
const DefaultLockTimeout = 5 * time.Second

var errTxDone = errors.New("memory: transacción ya finalizada")

// DB almacén en memoria con la misma semántica de concurrencia que el adaptador Postgres:
// bloqueos exclusivos por fila hasta commit/rollback y escrituras invisibles hasta el commit.
// Las lecturas sin bloqueo ven solo datos confirmados.
type DB struct {
	mu          sync.Mutex
	locks       *lockManager
	lockTimeout time.Duration

	stores  map[string]*entity.Store
	items   map[string]*entity.Item
	txs     []*entity.StockTransaction
	rentals map[string]*entity.Rental // solo cabecera
	lines   map[string]*entity.RentalLineItem
	returns []*entity.ReturnRecord
}

// New crea una base vacía. lockTimeout <= 0 usa DefaultLockTimeout.
func New(lockTimeout time.Duration) *DB {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &DB{
		locks:       newLockManager(),
		lockTimeout: lockTimeout,
		stores:      make(map[string]*entity.Store),
		items:       make(map[string]*entity.Item),
		rentals:     make(map[string]*entity.Rental),
		lines:       make(map[string]*entity.RentalLineItem),
	}
}

// Run implementa el TxRunner de la capa de aplicación.
func (db *DB) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	t := db.begin()
	defer t.rollback()
	if err := fn(t.repos()); err != nil {
		return err
	}
	return t.commit()
}

// Repositorios fuera de transacción: las lecturas ven lo confirmado y cada escritura se confirma sola.
func (db *DB) Stores() *StoreRepo                  { return &StoreRepo{db: db} }
func (db *DB) Items() *ItemRepo                    { return &ItemRepo{db: db} }
func (db *DB) Transactions() *StockTransactionRepo { return &StockTransactionRepo{db: db} }
func (db *DB) Rentals() *RentalRepo                { return &RentalRepo{db: db} }
func (db *DB) Returns() *ReturnRecordRepo          { return &ReturnRecordRepo{db: db} }

// Tx transacción en curso: buffers locales más los bloqueos tomados.
type Tx struct {
	db   *DB
	held map[string]struct{}
	done bool

	stores  map[string]*entity.Store
	items   map[string]*entity.Item
	txs     []*entity.StockTransaction
	rentals map[string]*entity.Rental
	lines   map[string]*entity.RentalLineItem
	returns []*entity.ReturnRecord
}

func (db *DB) begin() *Tx {
	return &Tx{
		db:      db,
		held:    make(map[string]struct{}),
		stores:  make(map[string]*entity.Store),
		items:   make(map[string]*entity.Item),
		rentals: make(map[string]*entity.Rental),
		lines:   make(map[string]*entity.RentalLineItem),
	}
}

func (t *Tx) repos() repository.TxRepos {
	return repository.TxRepos{
		Items:        &ItemRepo{db: t.db, tx: t},
		Transactions: &StockTransactionRepo{db: t.db, tx: t},
		Rentals:      &RentalRepo{db: t.db, tx: t},
		Returns:      &ReturnRecordRepo{db: t.db, tx: t},
	}
}

// lock toma el bloqueo de la fila; es reentrante dentro de la misma transacción.
func (t *Tx) lock(ctx context.Context, key string) error {
	if t.done {
		return errTxDone
	}
	if _, ok := t.held[key]; ok {
		return nil
	}
	if err := t.db.locks.acquire(ctx, key, t.db.lockTimeout); err != nil {
		return err
	}
	t.held[key] = struct{}{}
	return nil
}

func (t *Tx) commit() error {
	if t.done {
		return errTxDone
	}
	db := t.db
	db.mu.Lock()
	if err := t.checkUnique(); err != nil {
		db.mu.Unlock()
		return err
	}
	for id, s := range t.stores {
		db.stores[id] = s
	}
	for id, it := range t.items {
		db.items[id] = it
	}
	for id, r := range t.rentals {
		db.rentals[id] = r
	}
	for id, l := range t.lines {
		db.lines[id] = l
	}
	db.txs = append(db.txs, t.txs...)
	db.returns = append(db.returns, t.returns...)
	db.mu.Unlock()
	t.finish()
	return nil
}

func (t *Tx) rollback() {
	if t.done {
		return
	}
	t.finish()
}

func (t *Tx) finish() {
	t.done = true
	for key := range t.held {
		t.db.locks.release(key)
	}
	t.held = nil
}

// checkUnique reproduce los índices únicos (slug de tienda, sku por tienda). Requiere db.mu.
func (t *Tx) checkUnique() error {
	for id, s := range t.stores {
		for otherID, o := range t.db.stores {
			if otherID != id && o.Slug == s.Slug {
				return domain.ErrDuplicate
			}
		}
	}
	for id, it := range t.items {
		for otherID, o := range t.db.items {
			if otherID != id && o.StoreID == it.StoreID && o.SKU == it.SKU {
				return domain.ErrDuplicate
			}
		}
	}
	return nil
}

// autocommit ejecuta una escritura suelta como transacción de una sola sentencia.
func (db *DB) autocommit(tx *Tx, fn func(t *Tx) error) error {
	if tx != nil {
		return fn(tx)
	}
	t := db.begin()
	defer t.rollback()
	if err := fn(t); err != nil {
		return err
	}
	return t.commit()
}

// Lecturas visibles para tx (buffer local primero, luego lo confirmado). Requieren db.mu.

func (db *DB) visibleItem(tx *Tx, id string) *entity.Item {
	if tx != nil {
		if it, ok := tx.items[id]; ok {
			return it
		}
	}
	return db.items[id]
}

func (db *DB) visibleItems(tx *Tx) map[string]*entity.Item {
	out := make(map[string]*entity.Item, len(db.items))
	for id, it := range db.items {
		out[id] = it
	}
	if tx != nil {
		for id, it := range tx.items {
			out[id] = it
		}
	}
	return out
}

func (db *DB) visibleStore(tx *Tx, id string) *entity.Store {
	if tx != nil {
		if s, ok := tx.stores[id]; ok {
			return s
		}
	}
	return db.stores[id]
}

func (db *DB) visibleRental(tx *Tx, id string) *entity.Rental {
	if tx != nil {
		if r, ok := tx.rentals[id]; ok {
			return r
		}
	}
	return db.rentals[id]
}

func (db *DB) visibleRentals(tx *Tx) map[string]*entity.Rental {
	out := make(map[string]*entity.Rental, len(db.rentals))
	for id, r := range db.rentals {
		out[id] = r
	}
	if tx != nil {
		for id, r := range tx.rentals {
			out[id] = r
		}
	}
	return out
}

func (db *DB) visibleLine(tx *Tx, id string) *entity.RentalLineItem {
	if tx != nil {
		if l, ok := tx.lines[id]; ok {
			return l
		}
	}
	return db.lines[id]
}

func (db *DB) visibleLines(tx *Tx) map[string]*entity.RentalLineItem {
	out := make(map[string]*entity.RentalLineItem, len(db.lines))
	for id, l := range db.lines {
		out[id] = l
	}
	if tx != nil {
		for id, l := range tx.lines {
			out[id] = l
		}
	}
	return out
}

// linesOf líneas del alquiler ordenadas por posición.
func (db *DB) linesOf(tx *Tx, rentalID string) []*entity.RentalLineItem {
	var out []*entity.RentalLineItem
	for _, l := range db.visibleLines(tx) {
		if l.RentalID == rentalID {
			out = append(out, cloneLine(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func (db *DB) visibleTxs(tx *Tx) []*entity.StockTransaction {
	if tx == nil {
		return db.txs
	}
	out := make([]*entity.StockTransaction, 0, len(db.txs)+len(tx.txs))
	out = append(out, db.txs...)
	return append(out, tx.txs...)
}

func (db *DB) visibleReturns(tx *Tx) []*entity.ReturnRecord {
	if tx == nil {
		return db.returns
	}
	out := make([]*entity.ReturnRecord, 0, len(db.returns)+len(tx.returns))
	out = append(out, db.returns...)
	return append(out, tx.returns...)
}

func paginate(n, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}
