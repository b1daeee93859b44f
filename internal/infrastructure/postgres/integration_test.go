package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rental-api/internal/application/dto"
	"github.com/jhoicas/rental-api/internal/application/inventory"
	"github.com/jhoicas/rental-api/internal/application/rental"
	"github.com/jhoicas/rental-api/internal/domain"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/internal/domain/repository"
	"github.com/jhoicas/rental-api/internal/infrastructure/postgres"
	"github.com/jhoicas/rental-api/pkg/config"
	"github.com/jhoicas/rental-api/pkg/logger"
)

// Integración contra una base real: TEST_DATABASE_URL=postgres://... go test ./internal/infrastructure/postgres
func openPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url, MaxConns: 20})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool, logger.Nop()))
	return pool
}

type pgFixture struct {
	pool    *pgxpool.Pool
	runner  *postgres.TxRunner
	store   *entity.Store
	items   *inventory.ItemUseCase
	ledger  *inventory.Ledger
	create  *rental.CreateRentalUseCase
	returns *rental.ProcessReturnUseCase
}

func newPgFixture(t *testing.T, lockTimeout time.Duration) *pgFixture {
	t.Helper()
	pool := openPool(t)
	ctx := context.Background()
	now := time.Now()
	store := &entity.Store{
		ID: uuid.NewString(), Name: "Tienda integración", Slug: "it-" + uuid.NewString(),
		Currency: "USD", Timezone: "UTC", CreatedAt: now, UpdatedAt: now,
	}
	stores := postgres.NewStoreRepository(pool)
	require.NoError(t, stores.Create(ctx, store))

	log := logger.Nop()
	runner := postgres.NewTxRunner(pool, lockTimeout)
	ledger := inventory.NewLedger(runner, nil, log)
	return &pgFixture{
		pool:   pool,
		runner: runner,
		store:  store,
		items: inventory.NewItemUseCase(runner, stores, postgres.NewItemRepository(pool),
			postgres.NewStockTransactionRepository(pool), ledger, log),
		ledger:  ledger,
		create:  rental.NewCreateRentalUseCase(runner, stores, ledger, nil, log),
		returns: rental.NewProcessReturnUseCase(runner, ledger, nil, log),
	}
}

func (f *pgFixture) addItem(t *testing.T, qty int) *dto.ItemResponse {
	t.Helper()
	rate := decimal.RequireFromString("3.00")
	item, err := f.items.Create(context.Background(), f.store.ID, nil, dto.CreateItemRequest{
		Name: "Carpa", SKU: "sku-" + uuid.NewString()[:8], Price: decimal.NewFromInt(50),
		RentalRate: &rate, Quantity: qty,
	})
	require.NoError(t, err)
	return item
}

func (f *pgFixture) requireConsistent(t *testing.T, itemID string) int {
	t.Helper()
	check, err := f.items.VerifyLedger(context.Background(), f.store.ID, itemID)
	require.NoError(t, err)
	require.True(t, check.Consistent, "cantidad %d, ledger %d", check.Quantity, check.LedgerSum)
	return check.Quantity
}

func dueIn(days int) time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day()+days, 0, 0, 0, 0, time.UTC)
}

func TestPostgres_AlquilerYDevolucionCompletos(t *testing.T) {
	f := newPgFixture(t, 2*time.Second)
	ctx := context.Background()
	item := f.addItem(t, 5)

	r, err := f.create.Execute(ctx, rental.CreateInput{
		StoreID: f.store.ID, ActorID: "user-1", CustomerName: "Ana",
		DueDate: dueIn(2), Lines: []rental.LineInput{{ItemID: item.ID, Qty: 2}},
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.00").Equal(r.Total), "2 uds × 3.00 × 2 días")
	assert.Equal(t, 3, f.requireConsistent(t, item.ID))

	stored, err := postgres.NewRentalRepository(f.pool).GetByID(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Len(t, stored.Lines, 1)
	assert.Equal(t, dueIn(2), stored.Due.UTC())

	line := stored.Lines[0]
	_, err = f.returns.Execute(ctx, rental.ReturnInput{
		RentalID: r.ID, Returns: []rental.ReturnLineInput{{LineItemID: line.ID, Qty: 1, Condition: "ok"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, f.requireConsistent(t, item.ID))

	done, err := f.returns.Execute(ctx, rental.ReturnInput{
		RentalID: r.ID, Returns: []rental.ReturnLineInput{{LineItemID: line.ID, Qty: 1, DamageCost: decimal.RequireFromString("7.50")}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RentalStatusReturned, done.Status)
	assert.NotNil(t, done.Returned)
	assert.Equal(t, 5, f.requireConsistent(t, item.ID))

	records, err := postgres.NewReturnRecordRepository(f.pool).ListByRental(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = f.returns.Execute(ctx, rental.ReturnInput{
		RentalID: r.ID, Returns: []rental.ReturnLineInput{{LineItemID: line.ID, Qty: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyReturned)
}

func TestPostgres_StockInsuficienteRevierteTodo(t *testing.T) {
	f := newPgFixture(t, 2*time.Second)
	ctx := context.Background()
	a := f.addItem(t, 5)
	b := f.addItem(t, 1)

	_, err := f.create.Execute(ctx, rental.CreateInput{
		StoreID: f.store.ID, ActorID: "user-1", CustomerName: "Ana", DueDate: dueIn(1),
		Lines: []rental.LineInput{{ItemID: a.ID, Qty: 2}, {ItemID: b.ID, Qty: 3}},
	})
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, b.ID, insufficient.ItemID)
	assert.Equal(t, 5, f.requireConsistent(t, a.ID), "la primera línea no debe persistir")
	assert.Equal(t, 1, f.requireConsistent(t, b.ID))
}

func TestPostgres_IDsMalFormadosSonNoEncontrado(t *testing.T) {
	f := newPgFixture(t, 2*time.Second)
	ctx := context.Background()
	a := f.addItem(t, 3)

	_, err := f.create.Execute(ctx, rental.CreateInput{
		StoreID: f.store.ID, ActorID: "user-1", CustomerName: "Ana", DueDate: dueIn(1),
		Lines: []rental.LineInput{{ItemID: a.ID, Qty: 1}, {ItemID: "nope", Qty: 1}},
	})
	require.ErrorIs(t, err, domain.ErrItemNotFound)
	assert.Equal(t, 3, f.requireConsistent(t, a.ID))

	_, err = f.returns.Execute(ctx, rental.ReturnInput{
		RentalID: "nope", Returns: []rental.ReturnLineInput{{LineItemID: "nope", Qty: 1}},
	})
	require.ErrorIs(t, err, domain.ErrRentalNotFound)

	_, err = f.ledger.Adjust(ctx, inventory.AdjustInput{
		StoreID: f.store.ID, ItemID: "nope", Delta: 1, Reason: entity.ReasonAdjustment,
	})
	require.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestPostgres_AlquileresConcurrentesNoSobrevenden(t *testing.T) {
	f := newPgFixture(t, 5*time.Second)
	ctx := context.Background()
	item := f.addItem(t, 9)

	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		failures  atomic.Int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.create.Execute(ctx, rental.CreateInput{
				StoreID: f.store.ID, ActorID: "user-1", CustomerName: "Cliente", DueDate: dueIn(1),
				Lines: []rental.LineInput{{ItemID: item.ID, Qty: 1}},
			})
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				failures.Add(1)
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 9, successes.Load())
	assert.EqualValues(t, 1, failures.Load())
	assert.Equal(t, 0, f.requireConsistent(t, item.ID))
}

func TestPostgres_ContencionTerminaEnLockTimeout(t *testing.T) {
	f := newPgFixture(t, 100*time.Millisecond)
	ctx := context.Background()
	item := f.addItem(t, 3)

	locked := make(chan struct{})
	release := make(chan struct{})
	holder := make(chan error, 1)
	go func() {
		holder <- f.runner.Run(ctx, func(repos repository.TxRepos) error {
			if _, err := repos.Items.GetForUpdate(ctx, item.ID); err != nil {
				return err
			}
			close(locked)
			<-release
			return nil
		})
	}()
	<-locked

	_, err := f.ledger.Adjust(ctx, inventory.AdjustInput{ItemID: item.ID, Delta: 1, Reason: entity.ReasonAdjustment})
	close(release)
	require.NoError(t, <-holder)

	require.Error(t, err)
	assert.True(t, domain.IsRetryable(err), "esperaba LockTimeoutError, obtuvo %v", err)
	assert.Equal(t, 3, f.requireConsistent(t, item.ID))
}

func TestPostgres_SKUDuplicadoEnLaTienda(t *testing.T) {
	f := newPgFixture(t, time.Second)
	ctx := context.Background()
	req := dto.CreateItemRequest{Name: "Silla", SKU: "silla-" + uuid.NewString()[:6], Price: decimal.NewFromInt(1)}

	_, err := f.items.Create(ctx, f.store.ID, nil, req)
	require.NoError(t, err)
	_, err = f.items.Create(ctx, f.store.ID, nil, req)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestMigrate_EsIdempotente(t *testing.T) {
	pool := openPool(t)
	ctx := context.Background()
	require.NoError(t, postgres.Migrate(ctx, pool, logger.Nop()))

	var applied int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM goose_db_version WHERE version_id = 1 AND is_applied`).Scan(&applied))
	assert.Equal(t, 1, applied, "001_init se registra una sola vez")

	var tables int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_name IN
		('stores', 'items', 'stock_transactions', 'rentals', 'rental_line_items', 'return_records')`).Scan(&tables))
	assert.Equal(t, 6, tables)
}
