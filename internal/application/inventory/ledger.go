package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/rental-api/internal/application/ports"
	"github.com/jhoicas/rental-api/internal/domain"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/internal/domain/inventory"
	"github.com/jhoicas/rental-api/internal/domain/repository"
	"github.com/jhoicas/rental-api/pkg/logger"
)

// Ledger es el único camino para modificar Item.Quantity: bloquea la fila del ítem
// (SELECT FOR UPDATE), valida que la cantidad no quede negativa, la actualiza y agrega
// un StockTransaction con el mismo delta, todo dentro de la misma transacción.
type Ledger struct {
	txRunner  TxRunner
	publisher ports.EventPublisher
	log       *logger.Logger
	now       func() time.Time
}

// NewLedger construye el ledger de stock.
func NewLedger(txRunner TxRunner, publisher ports.EventPublisher, log *logger.Logger) *Ledger {
	return &Ledger{
		txRunner:  txRunner,
		publisher: publisher,
		log:       log.Component("ledger"),
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// AdjustInput entrada de un ajuste de stock.
// StoreID es opcional: si viene, el ítem debe pertenecer a esa tienda.
// Require, si no es nil, se evalúa con la fila ya bloqueada y puede abortar el ajuste.
type AdjustInput struct {
	StoreID string
	ItemID  string
	Delta   int
	Reason  string
	ActorID *string
	Require func(item *entity.Item) error
}

// Adjust abre su propia transacción y aplica el ajuste.
func (l *Ledger) Adjust(ctx context.Context, in AdjustInput) (*entity.StockTransaction, error) {
	var (
		stx     *entity.StockTransaction
		storeID string
		qty     int
	)
	err := l.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		var (
			item *entity.Item
			err  error
		)
		stx, item, err = l.apply(ctx, repos, in)
		if err != nil {
			return err
		}
		storeID, qty = item.StoreID, item.Quantity
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.log.Info().
		Str("item_id", stx.ItemID).
		Int("delta", stx.Delta).
		Str("reason", stx.Reason).
		Int("quantity", qty).
		Msg("stock ajustado")
	l.publish(ctx, ports.StockAdjustedEvent{
		Type:          ports.EventStockAdjusted,
		StoreID:       storeID,
		ItemID:        stx.ItemID,
		TransactionID: stx.ID,
		Delta:         stx.Delta,
		Reason:        stx.Reason,
		Quantity:      qty,
		ActorID:       stx.ActorID,
		OccurredAt:    stx.CreatedAt,
	})
	return stx, nil
}

// AdjustInTx aplica el ajuste usando los repositorios del caller (misma transacción).
// Si retorna error el caller debe hacer rollback; los flujos de alquiler lo usan así.
func (l *Ledger) AdjustInTx(ctx context.Context, repos repository.TxRepos, in AdjustInput) (*entity.StockTransaction, error) {
	stx, _, err := l.apply(ctx, repos, in)
	return stx, err
}

func (l *Ledger) apply(ctx context.Context, repos repository.TxRepos, in AdjustInput) (*entity.StockTransaction, *entity.Item, error) {
	if err := inventory.CheckReason(in.Reason); err != nil {
		return nil, nil, err
	}
	if in.Reason == entity.ReasonInitial {
		return nil, nil, domain.NewValidationError("reason", "initial solo se registra al crear el ítem")
	}
	if in.ItemID == "" {
		return nil, nil, domain.NewValidationError("item_id", "requerido")
	}
	if in.Delta == 0 {
		return nil, nil, domain.NewValidationError("delta", "no puede ser cero")
	}
	if err := inventory.CheckMagnitude("delta", in.Delta); err != nil {
		return nil, nil, err
	}

	// Bloquea la fila del ítem: la verificación y la escritura quedan en la misma sección crítica
	item, err := repos.Items.GetForUpdate(ctx, in.ItemID)
	if err != nil {
		return nil, nil, err
	}
	if item == nil || (in.StoreID != "" && item.StoreID != in.StoreID) {
		return nil, nil, domain.ErrItemNotFound
	}
	if in.Require != nil {
		if err := in.Require(item); err != nil {
			return nil, nil, err
		}
	}
	next, err := inventory.ApplyDelta(item.ID, item.Quantity, in.Delta)
	if err != nil {
		return nil, nil, err
	}
	if err := repos.Items.UpdateQuantity(ctx, item.ID, next); err != nil {
		return nil, nil, err
	}
	item.Quantity = next

	stx := &entity.StockTransaction{
		ID:        uuid.New().String(),
		ItemID:    item.ID,
		Delta:     in.Delta,
		Reason:    in.Reason,
		ActorID:   in.ActorID,
		CreatedAt: l.now(),
	}
	if err := repos.Transactions.Create(ctx, stx); err != nil {
		return nil, nil, err
	}
	return stx, item, nil
}

func (l *Ledger) publish(ctx context.Context, event ports.StockAdjustedEvent) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(ctx, event.ItemID, event); err != nil {
		l.log.Warn().Err(err).Str("item_id", event.ItemID).Str("event", event.Type).Msg("no se pudo publicar el evento")
	}
}
