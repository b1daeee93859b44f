package events_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rental-api/internal/application/ports"
	"github.com/jhoicas/rental-api/internal/infrastructure/events"
	"github.com/jhoicas/rental-api/pkg/logger"
)

func TestLogPublisher_RegistraEventoComoJSON(t *testing.T) {
	var buf bytes.Buffer
	p := events.NewLogPublisher(logger.FromWriter(&buf, "info"))

	err := p.Publish(context.Background(), "item-1", ports.StockAdjustedEvent{
		Type: ports.EventStockAdjusted, ItemID: "item-1", Delta: -2, Reason: "sale", Quantity: 3,
	})
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "item-1", line["key"])
	assert.Equal(t, "events", line["component"])
	event, ok := line["event"].(map[string]any)
	require.True(t, ok, "el evento debe ir como objeto JSON")
	assert.Equal(t, ports.EventStockAdjusted, event["type"])
	assert.EqualValues(t, -2, event["delta"])
}

func TestLogPublisher_ErrorDeSerializacion(t *testing.T) {
	p := events.NewLogPublisher(logger.Nop())
	err := p.Publish(context.Background(), "k", make(chan int))
	assert.Error(t, err)
}
