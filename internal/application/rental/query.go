package rental

import (
	"context"
	"time"

	"github.com/jhoicas/rental-api/internal/application/dto"
	"github.com/jhoicas/rental-api/internal/domain"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	pricing "github.com/jhoicas/rental-api/internal/domain/rental"
	"github.com/jhoicas/rental-api/internal/domain/repository"
)

const maxPageLimit = 100

// QueryUseCase lecturas de alquileres. El estado overdue se calcula aquí, sin escribir nada.
type QueryUseCase struct {
	stores  repository.StoreRepository
	rentals repository.RentalRepository
	returns repository.ReturnRecordRepository
	now     func() time.Time
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(stores repository.StoreRepository, rentals repository.RentalRepository, returns repository.ReturnRecordRepository) *QueryUseCase {
	return &QueryUseCase{stores: stores, rentals: rentals, returns: returns, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *QueryUseCase) WithClock(now func() time.Time) *QueryUseCase {
	uc.now = now
	return uc
}

// Get obtiene un alquiler de la tienda con sus líneas y devoluciones.
func (uc *QueryUseCase) Get(ctx context.Context, storeID, id string) (*dto.RentalResponse, error) {
	store, err := uc.store(ctx, storeID)
	if err != nil {
		return nil, err
	}
	r, err := uc.rentals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil || r.StoreID != store.ID {
		return nil, domain.ErrRentalNotFound
	}
	records, err := uc.returns.ListByRental(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	attachReturns(r, records)
	return toRentalResponse(r, uc.today(store)), nil
}

// List lista los alquileres de la tienda, más reciente primero.
func (uc *QueryUseCase) List(ctx context.Context, storeID string, page dto.PageRequest) (*dto.RentalListResponse, error) {
	store, err := uc.store(ctx, storeID)
	if err != nil {
		return nil, err
	}
	page.DefaultPage()
	if page.Limit > maxPageLimit {
		page.Limit = maxPageLimit
	}
	list, err := uc.rentals.ListByStore(ctx, store.ID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	today := uc.today(store)
	items := make([]dto.RentalResponse, 0, len(list))
	for _, r := range list {
		records, err := uc.returns.ListByRental(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		attachReturns(r, records)
		items = append(items, *toRentalResponse(r, today))
	}
	return &dto.RentalListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Render convierte un alquiler recién escrito a DTO usando la zona horaria de su tienda.
func (uc *QueryUseCase) Render(ctx context.Context, r *entity.Rental) (*dto.RentalResponse, error) {
	store, err := uc.store(ctx, r.StoreID)
	if err != nil {
		return nil, err
	}
	return toRentalResponse(r, uc.today(store)), nil
}

func (uc *QueryUseCase) store(ctx context.Context, id string) (*entity.Store, error) {
	store, err := uc.stores.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrStoreNotFound
	}
	return store, nil
}

func (uc *QueryUseCase) today(store *entity.Store) time.Time {
	return pricing.DateOf(uc.now(), store.Location())
}

func toRentalResponse(r *entity.Rental, today time.Time) *dto.RentalResponse {
	lines := make([]dto.RentalLineResponse, 0, len(r.Lines))
	for _, l := range r.Lines {
		returns := make([]dto.ReturnRecordResponse, 0, len(l.Returns))
		for _, rr := range l.Returns {
			returns = append(returns, dto.ReturnRecordResponse{
				ID:         rr.ID,
				Qty:        rr.Qty,
				Condition:  rr.Condition,
				DamageCost: rr.DamageCost,
				ActorID:    rr.ActorID,
				ReturnedAt: rr.ReturnedAt,
			})
		}
		lines = append(lines, dto.RentalLineResponse{
			ID:          l.ID,
			ItemID:      l.ItemID,
			Qty:         l.Qty,
			PerDay:      l.PerDay,
			ReturnedQty: l.ReturnedQty,
			Outstanding: l.Outstanding(),
			Returns:     returns,
		})
	}
	return &dto.RentalResponse{
		ID:              r.ID,
		StoreID:         r.StoreID,
		CreatedBy:       r.CreatedBy,
		CustomerName:    r.CustomerName,
		Start:           r.Start,
		DueDate:         r.Due.Format(time.DateOnly),
		Returned:        r.Returned,
		Status:          r.Status,
		EffectiveStatus: r.EffectiveStatus(today),
		Total:           r.Total,
		DamageTotal:     r.DamageTotal(),
		Lines:           lines,
	}
}
