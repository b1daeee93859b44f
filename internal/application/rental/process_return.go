package rental

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/rental-api/internal/application/inventory"
	"github.com/jhoicas/rental-api/internal/application/ports"
	"github.com/jhoicas/rental-api/internal/domain"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	stock "github.com/jhoicas/rental-api/internal/domain/inventory"
	"github.com/jhoicas/rental-api/internal/domain/repository"
	"github.com/jhoicas/rental-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// ReturnLineInput una entrada de devolución sobre una línea del alquiler.
type ReturnLineInput struct {
	LineItemID string
	Qty        int
	Condition  string
	DamageCost decimal.Decimal
}

// ReturnInput entrada del flujo de devolución.
// ActorID es opcional y se propaga tal cual al ledger. ReturnedAt nil = ahora.
// StoreID, si viene, debe coincidir con la tienda del alquiler.
type ReturnInput struct {
	StoreID    string
	RentalID   string
	ActorID    *string
	Returns    []ReturnLineInput
	ReturnedAt *time.Time
}

// ProcessReturnUseCase registra devoluciones (parciales o totales) y libera el stock.
// No es idempotente: cada llamada es un evento físico distinto.
type ProcessReturnUseCase struct {
	txRunner  TxRunner
	ledger    StockLedger
	publisher ports.EventPublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewProcessReturnUseCase construye el caso de uso.
func NewProcessReturnUseCase(txRunner TxRunner, ledger StockLedger, publisher ports.EventPublisher, log *logger.Logger) *ProcessReturnUseCase {
	return &ProcessReturnUseCase{
		txRunner:  txRunner,
		ledger:    ledger,
		publisher: publisher,
		log:       log.Component("rental.return"),
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *ProcessReturnUseCase) WithClock(now func() time.Time) *ProcessReturnUseCase {
	uc.now = now
	return uc
}

// Execute bloquea el alquiler, luego sus líneas y los ítems (ambos en orden ascendente de ID),
// incrementa returned_qty, agrega un ReturnRecord y devuelve el stock con motivo "return" por cada entrada.
// Si todas las líneas quedan completas el alquiler pasa a returned.
func (uc *ProcessReturnUseCase) Execute(ctx context.Context, in ReturnInput) (*entity.Rental, error) {
	if in.RentalID == "" {
		return nil, domain.NewValidationError("rental_id", "requerido")
	}
	if len(in.Returns) == 0 {
		return nil, domain.NewValidationError("items", "debe incluir al menos una devolución")
	}
	for _, r := range in.Returns {
		if r.LineItemID == "" {
			return nil, domain.NewValidationError("line_item_id", "requerido")
		}
		if r.Qty <= 0 {
			return nil, domain.NewValidationError("qty", "debe ser mayor que cero")
		}
		if err := stock.CheckMagnitude("qty", r.Qty); err != nil {
			return nil, err
		}
		if r.DamageCost.IsNegative() {
			return nil, domain.NewValidationError("damage_cost", "no puede ser negativo")
		}
	}

	now := uc.now()
	at := now
	if in.ReturnedAt != nil {
		at = *in.ReturnedAt
	}

	var rental *entity.Rental
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		var err error
		rental, err = repos.Rentals.GetForUpdate(ctx, in.RentalID)
		if err != nil {
			return err
		}
		if rental == nil || (in.StoreID != "" && rental.StoreID != in.StoreID) {
			return domain.ErrRentalNotFound
		}
		if rental.Status == entity.RentalStatusReturned {
			return domain.ErrAlreadyReturned
		}

		lineIDs := make([]string, 0, len(in.Returns))
		seen := make(map[string]struct{}, len(in.Returns))
		for _, r := range in.Returns {
			if rental.Line(r.LineItemID) == nil {
				return domain.NewValidationError("line_item_id", "la línea "+r.LineItemID+" no pertenece al alquiler")
			}
			if _, ok := seen[r.LineItemID]; !ok {
				seen[r.LineItemID] = struct{}{}
				lineIDs = append(lineIDs, r.LineItemID)
			}
		}
		sort.Strings(lineIDs)
		lines, err := repos.Rentals.LockLineItems(ctx, rental.ID, lineIDs)
		if err != nil {
			return err
		}
		itemIDs := make([]string, 0, len(lines))
		for _, id := range lineIDs {
			line, ok := lines[id]
			if !ok {
				return domain.NewValidationError("line_item_id", "la línea "+id+" no pertenece al alquiler")
			}
			itemIDs = append(itemIDs, line.ItemID)
		}
		if _, err := repos.Items.LockMany(ctx, sortedUnique(itemIDs)); err != nil {
			return err
		}

		for _, r := range in.Returns {
			line := lines[r.LineItemID]
			if r.Qty > line.Outstanding() {
				return &domain.OverReturnError{LineItemID: line.ID, Requested: r.Qty, Outstanding: line.Outstanding()}
			}
			line.ReturnedQty += r.Qty
			if err := repos.Rentals.UpdateLineReturnedQty(ctx, line.ID, line.ReturnedQty); err != nil {
				return err
			}
			if err := repos.Returns.Create(ctx, &entity.ReturnRecord{
				ID:         uuid.New().String(),
				LineItemID: line.ID,
				Qty:        r.Qty,
				Condition:  r.Condition,
				DamageCost: r.DamageCost,
				ActorID:    in.ActorID,
				ReturnedAt: at,
				CreatedAt:  now,
			}); err != nil {
				return err
			}
			if _, err := uc.ledger.AdjustInTx(ctx, repos, inventory.AdjustInput{
				StoreID: rental.StoreID,
				ItemID:  line.ItemID,
				Delta:   r.Qty,
				Reason:  entity.ReasonReturn,
				ActorID: in.ActorID,
			}); err != nil {
				return err
			}
		}

		for i, l := range rental.Lines {
			if locked, ok := lines[l.ID]; ok {
				rental.Lines[i] = locked
			}
		}
		if rental.FullyReturned() {
			if err := repos.Rentals.MarkReturned(ctx, rental.ID, at); err != nil {
				return err
			}
			rental.Status = entity.RentalStatusReturned
			rental.Returned = &at
			rental.UpdatedAt = now
		}

		records, err := repos.Returns.ListByRental(ctx, rental.ID)
		if err != nil {
			return err
		}
		attachReturns(rental, records)
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventType := ports.EventRentalPartiallyReturned
	if rental.Status == entity.RentalStatusReturned {
		eventType = ports.EventRentalReturned
	}
	uc.log.Info().
		Str("store_id", rental.StoreID).
		Str("rental_id", rental.ID).
		Int("entries", len(in.Returns)).
		Str("status", rental.Status).
		Msg("devolución registrada")
	publish(ctx, uc.publisher, uc.log, rentalEvent(eventType, rental, in.ActorID, at))
	return rental, nil
}

func sortedUnique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func attachReturns(r *entity.Rental, records []*entity.ReturnRecord) {
	byLine := make(map[string][]*entity.ReturnRecord, len(r.Lines))
	for _, rec := range records {
		byLine[rec.LineItemID] = append(byLine[rec.LineItemID], rec)
	}
	for _, l := range r.Lines {
		l.Returns = byLine[l.ID]
	}
}
