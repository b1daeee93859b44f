package rental

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/rental-api/internal/application/inventory"
	"github.com/jhoicas/rental-api/internal/application/ports"
	"github.com/jhoicas/rental-api/internal/domain"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	stock "github.com/jhoicas/rental-api/internal/domain/inventory"
	pricing "github.com/jhoicas/rental-api/internal/domain/rental"
	"github.com/jhoicas/rental-api/internal/domain/repository"
	"github.com/jhoicas/rental-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// LineInput una línea solicitada. PerDay nil toma la tarifa del ítem.
type LineInput struct {
	ItemID string
	Qty    int
	PerDay *decimal.Decimal
}

// CreateInput entrada del flujo de creación. DueDate se interpreta como fecha calendario.
type CreateInput struct {
	StoreID      string
	ActorID      string
	CustomerName string
	DueDate      time.Time
	Lines        []LineInput
}

// CreateRentalUseCase crea un alquiler y reserva el stock de todas sus líneas en una sola transacción.
type CreateRentalUseCase struct {
	txRunner  TxRunner
	stores    repository.StoreRepository
	ledger    StockLedger
	publisher ports.EventPublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewCreateRentalUseCase construye el caso de uso.
func NewCreateRentalUseCase(
	txRunner TxRunner,
	stores repository.StoreRepository,
	ledger StockLedger,
	publisher ports.EventPublisher,
	log *logger.Logger,
) *CreateRentalUseCase {
	return &CreateRentalUseCase{
		txRunner:  txRunner,
		stores:    stores,
		ledger:    ledger,
		publisher: publisher,
		log:       log.Component("rental.create"),
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *CreateRentalUseCase) WithClock(now func() time.Time) *CreateRentalUseCase {
	uc.now = now
	return uc
}

// Execute valida la entrada, bloquea los ítems en orden ascendente de ID y, por cada línea en el
// orden recibido, crea la línea y descuenta el stock con motivo "rental". Cualquier fallo revierte todo.
func (uc *CreateRentalUseCase) Execute(ctx context.Context, in CreateInput) (*entity.Rental, error) {
	if in.StoreID == "" {
		return nil, domain.NewValidationError("store_id", "requerido")
	}
	if in.ActorID == "" {
		return nil, domain.NewValidationError("actor_id", "requerido")
	}
	customer := strings.TrimSpace(in.CustomerName)
	if customer == "" {
		return nil, domain.NewValidationError("customer_name", "requerido")
	}
	if len(in.Lines) == 0 {
		return nil, domain.NewValidationError("items", "debe incluir al menos una línea")
	}
	for _, l := range in.Lines {
		if l.ItemID == "" {
			return nil, domain.NewValidationError("item_id", "requerido")
		}
		if l.Qty <= 0 {
			return nil, domain.NewValidationError("qty", "debe ser mayor que cero")
		}
		if err := stock.CheckMagnitude("qty", l.Qty); err != nil {
			return nil, err
		}
		if l.PerDay != nil && l.PerDay.IsNegative() {
			return nil, domain.NewValidationError("per_day", "no puede ser negativa")
		}
	}

	store, err := uc.stores.GetByID(ctx, in.StoreID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrStoreNotFound
	}
	now := uc.now()
	today := pricing.DateOf(now, store.Location())
	due := pricing.DateOf(in.DueDate, in.DueDate.Location())
	if !due.After(today) {
		return nil, domain.NewValidationError("due_date", "debe ser posterior a hoy")
	}
	days := pricing.DaysBetween(today, due)
	actor := in.ActorID

	rental := &entity.Rental{
		ID:           uuid.New().String(),
		StoreID:      store.ID,
		CreatedBy:    actor,
		CustomerName: customer,
		Start:        now,
		Due:          due,
		Status:       entity.RentalStatusActive,
		Total:        decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		// Orden de bloqueo determinista para que dos alquileres con ítems cruzados no se bloqueen mutuamente
		locked, err := repos.Items.LockMany(ctx, lineItemIDs(in.Lines))
		if err != nil {
			return err
		}
		available := make(map[string]int, len(locked))
		for id, item := range locked {
			if item.StoreID != store.ID {
				return domain.ErrItemNotFound
			}
			if !item.IsRentable {
				return domain.NewValidationError("item_id", "el ítem "+id+" no es alquilable")
			}
			if !item.IsActive() {
				return domain.NewValidationError("item_id", "el ítem "+id+" no está activo")
			}
			available[id] = item.Quantity
		}

		if err := repos.Rentals.Create(ctx, rental); err != nil {
			return err
		}
		total := decimal.Zero
		for i, l := range in.Lines {
			item, ok := locked[l.ItemID]
			if !ok {
				return domain.ErrItemNotFound
			}
			perDay, err := resolvePerDay(l, item)
			if err != nil {
				return err
			}
			if available[item.ID] < l.Qty {
				return &domain.InsufficientStockError{ItemID: item.ID, Available: available[item.ID], Requested: l.Qty}
			}

			line := &entity.RentalLineItem{
				ID:        uuid.New().String(),
				RentalID:  rental.ID,
				ItemID:    item.ID,
				Position:  i,
				Qty:       l.Qty,
				PerDay:    perDay,
				CreatedAt: now,
			}
			if err := repos.Rentals.CreateLineItem(ctx, line); err != nil {
				return err
			}
			if _, err := uc.ledger.AdjustInTx(ctx, repos, inventory.AdjustInput{
				StoreID: store.ID,
				ItemID:  item.ID,
				Delta:   -l.Qty,
				Reason:  entity.ReasonRental,
				ActorID: &actor,
			}); err != nil {
				return err
			}
			available[item.ID] -= l.Qty
			rental.Lines = append(rental.Lines, line)
			total = total.Add(pricing.LineTotal(perDay, l.Qty, days))
		}

		rental.Total = total
		return repos.Rentals.UpdateTotal(ctx, rental.ID, total)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("store_id", rental.StoreID).
		Str("rental_id", rental.ID).
		Int("lines", len(rental.Lines)).
		Str("total", rental.Total.StringFixed(2)).
		Msg("alquiler creado")
	publish(ctx, uc.publisher, uc.log, rentalEvent(ports.EventRentalCreated, rental, &actor, now))
	return rental, nil
}

func resolvePerDay(l LineInput, item *entity.Item) (decimal.Decimal, error) {
	if l.PerDay != nil {
		return *l.PerDay, nil
	}
	if item.RentalRate == nil {
		return decimal.Zero, domain.NewValidationError("per_day", "requerido: el ítem "+item.ID+" no tiene tarifa")
	}
	return *item.RentalRate, nil
}

func lineItemIDs(lines []LineInput) []string {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ItemID)
	}
	return sortedUnique(ids)
}
