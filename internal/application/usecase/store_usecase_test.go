package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rental-api/internal/application/dto"
	"github.com/jhoicas/rental-api/internal/application/usecase"
	"github.com/jhoicas/rental-api/internal/domain"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/internal/infrastructure/memory"
)

func TestStoreCreate_ValoresPorDefecto(t *testing.T) {
	db := memory.New(time.Second)
	uc := usecase.NewStoreUseCase(db.Stores())
	ctx := context.Background()

	store, err := uc.Create(ctx, dto.CreateStoreRequest{Name: "Tienda Norte", Slug: " Norte "})
	require.NoError(t, err)
	assert.NotEmpty(t, store.ID)
	assert.Equal(t, "norte", store.Slug)
	assert.Equal(t, entity.DefaultCurrency, store.Currency)
	assert.Equal(t, entity.DefaultTimezone, store.Timezone)

	got, err := uc.GetByID(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, store.Name, got.Name)
}

func TestStoreCreate_SlugDuplicado(t *testing.T) {
	db := memory.New(time.Second)
	uc := usecase.NewStoreUseCase(db.Stores())
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateStoreRequest{Name: "Uno", Slug: "centro"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateStoreRequest{Name: "Dos", Slug: "CENTRO"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestStoreCreate_Validaciones(t *testing.T) {
	uc := usecase.NewStoreUseCase(memory.New(time.Second).Stores())
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateStoreRequest{Slug: "x"})
	assert.ErrorIs(t, err, domain.ErrValidation, "nombre requerido")
	_, err = uc.Create(ctx, dto.CreateStoreRequest{Name: "X", Slug: "x", Timezone: "Marte/Olympus"})
	assert.ErrorIs(t, err, domain.ErrValidation, "zona horaria inválida")
	_, err = uc.Create(ctx, dto.CreateStoreRequest{Name: "X", Slug: "x", Currency: "PESOS"})
	assert.ErrorIs(t, err, domain.ErrValidation, "moneda inválida")

	store, err := uc.Create(ctx, dto.CreateStoreRequest{Name: "X", Slug: "x", Currency: "cop", Timezone: "America/Bogota"})
	require.NoError(t, err)
	assert.Equal(t, "COP", store.Currency)
}

func TestStoreGet_NoExiste(t *testing.T) {
	uc := usecase.NewStoreUseCase(memory.New(time.Second).Stores())
	_, err := uc.GetByID(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrStoreNotFound)
}
