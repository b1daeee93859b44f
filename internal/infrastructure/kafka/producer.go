package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/rental-api/internal/application/ports"
)

var _ ports.EventPublisher = (*Producer)(nil)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publica eventos de dominio como JSON; la key es el id del agregado
// (ítem o alquiler), así los eventos de un mismo agregado caen en la misma partición.
type Producer struct {
	writer messageWriter
	now    func() time.Time
}

// NewProducer crea el writer sobre los brokers dados.
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return newProducer(writer)
}

func newProducer(w messageWriter) *Producer {
	return &Producer{writer: w, now: time.Now}
}

// Publish serializa el evento y lo escribe; el header "type" permite filtrar sin decodificar.
func (p *Producer) Publish(ctx context.Context, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  p.now(),
	}
	if t := eventType(event); t != "" {
		msg.Headers = []kafka.Header{{Key: "type", Value: []byte(t)}}
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Close vacía el buffer y cierra las conexiones.
func (p *Producer) Close() error {
	return p.writer.Close()
}

func eventType(event any) string {
	switch e := event.(type) {
	case ports.StockAdjustedEvent:
		return e.Type
	case ports.RentalEvent:
		return e.Type
	}
	return ""
}
