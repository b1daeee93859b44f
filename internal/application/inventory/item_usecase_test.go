package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rental-api/internal/application/dto"
	"github.com/jhoicas/rental-api/internal/domain"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/internal/domain/repository"
)

func TestCreateItem_CantidadInicialGeneraMovimientoInitial(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.createItem(t, "  silla-01 ", 4)

	assert.Equal(t, "SILLA-01", item.SKU, "el SKU se normaliza")
	assert.Equal(t, 4, item.Quantity)
	assert.True(t, item.IsRentable)
	assert.True(t, item.IsSellable)
	assert.Equal(t, entity.ItemStatusActive, item.Status)

	txs, err := f.items.ListTransactions(ctx, testStoreID, item.ID, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, txs.Items, 1)
	assert.Equal(t, entity.ReasonInitial, txs.Items[0].Reason)
	assert.Equal(t, 4, txs.Items[0].Delta)

	check, err := f.items.VerifyLedger(ctx, testStoreID, item.ID)
	require.NoError(t, err)
	assert.True(t, check.Consistent)
	assert.Equal(t, 4, check.LedgerSum)
}

func TestCreateItem_SinCantidadNoGeneraMovimiento(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "MESA-1", 0)
	sum, err := f.db.Transactions().SumByItem(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sum)
}

func TestCreateItem_SKUDuplicadoNormalizado(t *testing.T) {
	f := newFixture(t)
	f.createItem(t, "AB-1", 1)
	_, err := f.items.Create(context.Background(), testStoreID, nil, dto.CreateItemRequest{Name: "Otro", SKU: "ＡＢ-1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreateItem_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	neg := decimal.NewFromInt(-1)

	_, err := f.items.Create(ctx, "no-existe", nil, dto.CreateItemRequest{Name: "X", SKU: "X"})
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)

	cases := map[string]dto.CreateItemRequest{
		"sin nombre":        {SKU: "X"},
		"sin sku":           {Name: "X", SKU: "   "},
		"precio negativo":   {Name: "X", SKU: "X", Price: neg},
		"tarifa negativa":   {Name: "X", SKU: "X", RentalRate: &neg},
		"cantidad negativa": {Name: "X", SKU: "X", Quantity: -1},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.items.Create(ctx, testStoreID, nil, in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestUpdateItem_PatchNoTocaCantidad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.createItem(t, "CARPA-1", 5)

	name := "Carpa grande"
	inactive := entity.ItemStatusInactive
	got, err := f.items.Update(ctx, testStoreID, item.ID, dto.UpdateItemRequest{Name: &name, Status: &inactive, ClearRentalRate: true})
	require.NoError(t, err)
	assert.Equal(t, "Carpa grande", got.Name)
	assert.Equal(t, entity.ItemStatusInactive, got.Status)
	assert.Nil(t, got.RentalRate)
	assert.Equal(t, 5, got.Quantity)

	stored, err := f.db.Items().GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Quantity)
	assert.Equal(t, "Carpa grande", stored.Name)
}

func TestUpdateItem_EstadoArchivedNoPermitido(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "CARPA-1", 5)
	archived := entity.ItemStatusArchived
	_, err := f.items.Update(context.Background(), testStoreID, item.ID, dto.UpdateItemRequest{Status: &archived})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestArchiveItem_ConLineasPendientesEsConflicto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.createItem(t, "CARPA-1", 5)

	require.NoError(t, f.db.Run(ctx, func(repos repository.TxRepos) error {
		if err := repos.Rentals.Create(ctx, &entity.Rental{ID: "r-1", StoreID: testStoreID, Status: entity.RentalStatusActive, CreatedAt: time.Now()}); err != nil {
			return err
		}
		return repos.Rentals.CreateLineItem(ctx, &entity.RentalLineItem{ID: "l-1", RentalID: "r-1", ItemID: item.ID, Qty: 1})
	}))

	_, err := f.items.Archive(ctx, testStoreID, item.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	require.NoError(t, f.db.Rentals().UpdateLineReturnedQty(ctx, "l-1", 1))
	got, err := f.items.Archive(ctx, testStoreID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ItemStatusArchived, got.Status)

	name := "otro"
	_, err = f.items.Update(ctx, testStoreID, item.ID, dto.UpdateItemRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrConflict, "un ítem archivado no se edita")
}

func TestRecordSale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.createItem(t, "CARPA-1", 5)

	stx, err := f.items.RecordSale(ctx, testStoreID, item.ID, strPtr("user-1"), dto.RecordSaleRequest{Qty: 2})
	require.NoError(t, err)
	assert.Equal(t, -2, stx.Delta)
	assert.Equal(t, entity.ReasonSale, stx.Reason)

	_, err = f.items.RecordSale(ctx, testStoreID, item.ID, nil, dto.RecordSaleRequest{Qty: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)

	notSellable := false
	_, err = f.items.Update(ctx, testStoreID, item.ID, dto.UpdateItemRequest{IsSellable: &notSellable})
	require.NoError(t, err)
	_, err = f.items.RecordSale(ctx, testStoreID, item.ID, nil, dto.RecordSaleRequest{Qty: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := f.items.Get(ctx, testStoreID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
}

func TestAdjustItem_MotivoPorDefecto(t *testing.T) {
	f := newFixture(t)
	item := f.createItem(t, "CARPA-1", 5)
	stx, err := f.items.Adjust(context.Background(), testStoreID, item.ID, nil, dto.AdjustStockRequest{Delta: -1})
	require.NoError(t, err)
	assert.Equal(t, entity.ReasonAdjustment, stx.Reason)
	assert.Nil(t, stx.ActorID)
}

func TestListTransactions_MasRecientePrimero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.createItem(t, "CARPA-1", 5)
	_, err := f.items.Adjust(ctx, testStoreID, item.ID, nil, dto.AdjustStockRequest{Delta: 2})
	require.NoError(t, err)
	_, err = f.items.RecordSale(ctx, testStoreID, item.ID, nil, dto.RecordSaleRequest{Qty: 1})
	require.NoError(t, err)

	list, err := f.items.ListTransactions(ctx, testStoreID, item.ID, dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, entity.ReasonSale, list.Items[0].Reason)
	assert.Equal(t, entity.ReasonAdjustment, list.Items[1].Reason)

	_, err = f.items.ListTransactions(ctx, "otra", item.ID, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestListItems(t *testing.T) {
	f := newFixture(t)
	f.createItem(t, "B", 1)
	f.createItem(t, "A", 1)
	list, err := f.items.List(context.Background(), testStoreID, dto.PageRequest{Limit: 500})
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 100, list.Page.Limit, "el límite se acota")
}
