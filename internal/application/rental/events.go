package rental

import (
	"context"
	"time"

	"github.com/jhoicas/rental-api/internal/application/ports"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/pkg/logger"
)

func rentalEvent(eventType string, r *entity.Rental, actorID *string, at time.Time) ports.RentalEvent {
	lines := make([]ports.RentalLineEvent, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, ports.RentalLineEvent{
			LineItemID:  l.ID,
			ItemID:      l.ItemID,
			Qty:         l.Qty,
			ReturnedQty: l.ReturnedQty,
		})
	}
	return ports.RentalEvent{
		Type:       eventType,
		StoreID:    r.StoreID,
		RentalID:   r.ID,
		Status:     r.Status,
		Total:      r.Total,
		ActorID:    actorID,
		Lines:      lines,
		OccurredAt: at,
	}
}

// publish se llama después del commit; un fallo solo se registra.
func publish(ctx context.Context, p ports.EventPublisher, log *logger.Logger, event ports.RentalEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event.RentalID, event); err != nil {
		log.Warn().Err(err).Str("rental_id", event.RentalID).Str("event", event.Type).Msg("no se pudo publicar el evento")
	}
}
