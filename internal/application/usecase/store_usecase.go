package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/rental-api/internal/application/dto"
	"github.com/jhoicas/rental-api/internal/domain"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/internal/domain/repository"
)

// StoreUseCase aplica reglas de negocio para tiendas (casos de uso).
type StoreUseCase struct {
	repo repository.StoreRepository
	now  func() time.Time
}

// NewStoreUseCase construye el caso de uso con el puerto de persistencia.
func NewStoreUseCase(repo repository.StoreRepository) *StoreUseCase {
	return &StoreUseCase{repo: repo, now: time.Now}
}

// Create crea una nueva tienda. Devuelve domain.ErrDuplicate si el slug ya existe.
func (uc *StoreUseCase) Create(ctx context.Context, in dto.CreateStoreRequest) (*dto.StoreResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "requerido")
	}
	slug := strings.ToLower(strings.TrimSpace(in.Slug))
	if slug == "" {
		return nil, domain.NewValidationError("slug", "requerido")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = entity.DefaultCurrency
	}
	if len(currency) != 3 {
		return nil, domain.NewValidationError("currency", "debe ser un código ISO 4217 de 3 letras")
	}
	tz := strings.TrimSpace(in.Timezone)
	if tz == "" {
		tz = entity.DefaultTimezone
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, domain.NewValidationError("timezone", "zona horaria IANA desconocida")
	}

	existing, err := uc.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := uc.now()
	store := &entity.Store{
		ID:        uuid.New().String(),
		Name:      name,
		Slug:      slug,
		Currency:  currency,
		Timezone:  tz,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, store); err != nil {
		return nil, err
	}
	return toStoreResponse(store), nil
}

// GetByID obtiene una tienda por ID.
func (uc *StoreUseCase) GetByID(ctx context.Context, id string) (*dto.StoreResponse, error) {
	store, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrStoreNotFound
	}
	return toStoreResponse(store), nil
}

func toStoreResponse(s *entity.Store) *dto.StoreResponse {
	return &dto.StoreResponse{
		ID:        s.ID,
		Name:      s.Name,
		Slug:      s.Slug,
		Currency:  s.Currency,
		Timezone:  s.Timezone,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
