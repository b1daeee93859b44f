package events

import (
	"context"
	"encoding/json"

	"github.com/jhoicas/rental-api/internal/application/ports"
	"github.com/jhoicas/rental-api/pkg/logger"
)

var _ ports.EventPublisher = (*LogPublisher)(nil)

// LogPublisher escribe cada evento en el log; se usa cuando no hay brokers configurados.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log.Component("events")}
}

func (p *LogPublisher) Publish(_ context.Context, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	p.log.Info().Str("key", key).RawJSON("event", data).Msg("evento de dominio")
	return nil
}
