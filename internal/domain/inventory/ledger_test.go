package inventory_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rental-api/internal/domain"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/internal/domain/inventory"
)

func TestApplyDelta_Positivo(t *testing.T) {
	next, err := inventory.ApplyDelta("item-1", 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, next)
}

func TestApplyDelta_HastaCero(t *testing.T) {
	next, err := inventory.ApplyDelta("item-1", 3, -3)
	require.NoError(t, err)
	assert.Equal(t, 0, next, "llegar exactamente a cero es válido")
}

func TestApplyDelta_Negativo_InsufficientStock(t *testing.T) {
	next, err := inventory.ApplyDelta("item-1", 3, -4)
	require.Error(t, err)
	assert.Equal(t, 3, next, "la cantidad no cambia cuando falla")

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "item-1", stockErr.ItemID)
	assert.Equal(t, 3, stockErr.Available)
	assert.Equal(t, 4, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Shortfall())
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestApplyDelta_FueraDeRango(t *testing.T) {
	cases := []struct {
		name           string
		current, delta int
	}{
		{"delta sobre el máximo", 0, math.MaxInt32 + 1},
		{"delta bajo el mínimo", math.MaxInt32, math.MinInt64},
		{"resultado sobre el máximo", math.MaxInt32, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := inventory.ApplyDelta("item-1", tc.current, tc.delta)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, tc.current, next)
		})
	}

	next, err := inventory.ApplyDelta("item-1", 0, inventory.MaxQuantity)
	require.NoError(t, err)
	assert.Equal(t, inventory.MaxQuantity, next)
}

func TestCheckReason(t *testing.T) {
	for _, r := range []string{
		entity.ReasonInitial, entity.ReasonRental, entity.ReasonReturn,
		entity.ReasonSale, entity.ReasonAdjustment,
	} {
		assert.NoError(t, inventory.CheckReason(r), r)
	}
	assert.ErrorIs(t, inventory.CheckReason("gift"), domain.ErrInvalidReason)
	assert.ErrorIs(t, inventory.CheckReason(""), domain.ErrInvalidReason)
}

func TestLedgerSum(t *testing.T) {
	txs := []*entity.StockTransaction{
		{Delta: 5, Reason: entity.ReasonInitial},
		{Delta: -2, Reason: entity.ReasonRental},
		{Delta: 2, Reason: entity.ReasonReturn},
		{Delta: -1, Reason: entity.ReasonSale},
	}
	assert.Equal(t, 4, inventory.LedgerSum(txs))
	assert.Equal(t, 0, inventory.LedgerSum(nil))
}
