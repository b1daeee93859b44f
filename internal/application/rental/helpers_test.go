package rental_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rental-api/internal/application/inventory"
	"github.com/jhoicas/rental-api/internal/application/rental"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/internal/infrastructure/memory"
	"github.com/jhoicas/rental-api/pkg/logger"
)

const (
	testStoreID = "store-1"
	testActorID = "user-1"
)

// Reloj fijo de los tests: 10 de marzo de 2026, 15:00 UTC.
var testNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) Publish(ctx context.Context, key string, event any) error {
	args := m.Called(ctx, key, event)
	return args.Error(0)
}

type fixture struct {
	db      *memory.DB
	pub     *publisherMock
	create  *rental.CreateRentalUseCase
	returns *rental.ProcessReturnUseCase
	query   *rental.QueryUseCase
}

func newFixture(t *testing.T) *fixture {
	return newFixtureTZ(t, "UTC")
}

func newFixtureTZ(t *testing.T, tz string) *fixture {
	t.Helper()
	db := memory.New(2 * time.Second)
	require.NoError(t, db.Stores().Create(context.Background(), &entity.Store{
		ID: testStoreID, Name: "Tienda Centro", Slug: "centro", Currency: "USD", Timezone: tz,
		CreatedAt: testNow, UpdatedAt: testNow,
	}))
	pub := &publisherMock{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	log := logger.Nop()
	clock := func() time.Time { return testNow }
	ledger := inventory.NewLedger(db, pub, log).WithClock(clock)
	return &fixture{
		db:      db,
		pub:     pub,
		create:  rental.NewCreateRentalUseCase(db, db.Stores(), ledger, pub, log).WithClock(clock),
		returns: rental.NewProcessReturnUseCase(db, ledger, pub, log).WithClock(clock),
		query:   rental.NewQueryUseCase(db.Stores(), db.Rentals(), db.Returns()).WithClock(clock),
	}
}

type itemOpt func(*entity.Item)

func notRentable(i *entity.Item) { i.IsRentable = false }
func inactive(i *entity.Item)    { i.Status = entity.ItemStatusInactive }
func noRate(i *entity.Item)      { i.RentalRate = nil }
func inStore(storeID string) itemOpt {
	return func(i *entity.Item) { i.StoreID = storeID }
}

// addItem inserta un ítem con qty unidades y su movimiento initial, como lo haría el alta de catálogo.
func (f *fixture) addItem(t *testing.T, id string, qty int, opts ...itemOpt) *entity.Item {
	t.Helper()
	ctx := context.Background()
	rate := decimal.RequireFromString("3.00")
	item := &entity.Item{
		ID: id, StoreID: testStoreID, Name: "Ítem " + id, SKU: "SKU-" + id,
		IsRentable: true, IsSellable: true, Price: decimal.NewFromInt(100), RentalRate: &rate,
		Quantity: qty, Status: entity.ItemStatusActive, CreatedAt: testNow, UpdatedAt: testNow,
	}
	for _, o := range opts {
		o(item)
	}
	require.NoError(t, f.db.Items().Create(ctx, item))
	if qty > 0 {
		require.NoError(t, f.db.Transactions().Create(ctx, &entity.StockTransaction{
			ID: "init-" + id, ItemID: id, Delta: qty, Reason: entity.ReasonInitial, CreatedAt: testNow,
		}))
	}
	return item
}

func (f *fixture) quantity(t *testing.T, id string) int {
	t.Helper()
	item, err := f.db.Items().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, item)
	return item.Quantity
}

// requireLedgerConsistent cantidad == suma de movimientos.
func (f *fixture) requireLedgerConsistent(t *testing.T, id string) {
	t.Helper()
	sum, err := f.db.Transactions().SumByItem(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, f.quantity(t, id), sum, "cantidad y ledger deben coincidir para %s", id)
}

func (f *fixture) transactions(t *testing.T, id, reason string) []*entity.StockTransaction {
	t.Helper()
	all, err := f.db.Transactions().ListByItem(context.Background(), id, 1000, 0)
	require.NoError(t, err)
	var out []*entity.StockTransaction
	for _, stx := range all {
		if stx.Reason == reason {
			out = append(out, stx)
		}
	}
	return out
}

func daysFromToday(n int) time.Time {
	return time.Date(2026, 3, 10+n, 0, 0, 0, 0, time.UTC)
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func createInput(lines ...rental.LineInput) rental.CreateInput {
	return rental.CreateInput{
		StoreID:      testStoreID,
		ActorID:      testActorID,
		CustomerName: "Ana Pérez",
		DueDate:      daysFromToday(3),
		Lines:        lines,
	}
}
