package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rental-api/internal/application/dto"
	"github.com/jhoicas/rental-api/internal/application/inventory"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/internal/infrastructure/memory"
	"github.com/jhoicas/rental-api/pkg/logger"
)

const testStoreID = "store-1"

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) Publish(ctx context.Context, key string, event any) error {
	args := m.Called(ctx, key, event)
	return args.Error(0)
}

type fixture struct {
	db     *memory.DB
	pub    *publisherMock
	ledger *inventory.Ledger
	items  *inventory.ItemUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.New(200 * time.Millisecond)
	now := time.Now()
	require.NoError(t, db.Stores().Create(context.Background(), &entity.Store{
		ID: testStoreID, Name: "Tienda Centro", Slug: "centro", Currency: "USD", Timezone: "UTC",
		CreatedAt: now, UpdatedAt: now,
	}))
	pub := &publisherMock{}
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	log := logger.Nop()
	ledger := inventory.NewLedger(db, pub, log)
	items := inventory.NewItemUseCase(db, db.Stores(), db.Items(), db.Transactions(), ledger, log)
	return &fixture{db: db, pub: pub, ledger: ledger, items: items}
}

// createItem crea un ítem alquilable y vendible con qty unidades iniciales.
func (f *fixture) createItem(t *testing.T, sku string, qty int) *dto.ItemResponse {
	t.Helper()
	rate := decimal.RequireFromString("2.00")
	item, err := f.items.Create(context.Background(), testStoreID, nil, dto.CreateItemRequest{
		Name:       "Ítem " + sku,
		SKU:        sku,
		Price:      decimal.RequireFromString("50.00"),
		RentalRate: &rate,
		Quantity:   qty,
	})
	require.NoError(t, err)
	return item
}

func strPtr(s string) *string { return &s }
