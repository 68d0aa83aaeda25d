package observability

import (
	"context"
	"testing"

	"barrierbet/config"
	"barrierbet/domain/entities"
	"barrierbet/domain/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type handlerRegistry struct {
	handlers map[events.EventType][]func(context.Context, events.Event) error
}

func (r *handlerRegistry) RegisterLocalHandler(eventType events.EventType, handler func(context.Context, events.Event) error) {
	if r.handlers == nil {
		r.handlers = make(map[events.EventType][]func(context.Context, events.Event) error)
	}
	r.handlers[eventType] = append(r.handlers[eventType], handler)
}

func (r *handlerRegistry) publish(t *testing.T, event events.Event) {
	for _, handler := range r.handlers[event.Type()] {
		require.NoError(t, handler(context.Background(), event))
	}
}

func sumByName(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestMetricsProvider_RecordsDomainEvents(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := NewMetricsProvider(config.NewTestConfig())
	require.NoError(t, mp.InitializeWithReader(reader))
	defer mp.Shutdown(context.Background())

	registry := &handlerRegistry{}
	mp.RegisterEventHandlers(registry)

	userID := uuid.New()
	registry.publish(t, events.BetPlacedEvent{UserID: userID, SessionID: uuid.New(), BetAmount: 1000, Difficulty: entities.DifficultyEasy})
	registry.publish(t, events.BalanceChangeEvent{UserID: userID, TransactionType: entities.TransactionTypeBetPlaced})
	registry.publish(t, events.SessionSettledEvent{UserID: userID, Difficulty: entities.DifficultyEasy, Payout: 1200})
	registry.publish(t, events.SessionSettledEvent{UserID: userID, Difficulty: entities.DifficultyHard, Expired: true})

	mp.RecordLedgerConflict("debit")
	mp.RecordLedgerConflict("debit")
	mp.RecordLedgerExhausted("debit")

	assert.Equal(t, int64(1), sumByName(t, reader, BetsPlacedTotal))
	assert.Equal(t, int64(2), sumByName(t, reader, SessionsSettledTotal))
	assert.Equal(t, int64(1200), sumByName(t, reader, PayoutsTotal))
	assert.Equal(t, int64(1), sumByName(t, reader, BalanceTransactionsTotal))
	assert.Equal(t, int64(2), sumByName(t, reader, LedgerConflictsTotal))
	assert.Equal(t, int64(1), sumByName(t, reader, LedgerExhaustedTotal))
	assert.Equal(t, int64(4), sumByName(t, reader, EventsPublishedTotal))
}

func TestMetricsProvider_DisabledIsNoop(t *testing.T) {
	t.Parallel()

	mp := NewMetricsProvider(config.NewTestConfig())
	require.NoError(t, mp.Initialize(context.Background()))

	// Nothing is recorded and nothing panics when disabled
	mp.RecordBetPlaced("Easy", 100)
	mp.RecordLedgerConflict("credit")
	assert.False(t, mp.isEnabled())
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestMetricsProvider_UnknownExporter(t *testing.T) {
	t.Parallel()

	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "carrier-pigeon"

	mp := NewMetricsProvider(cfg)
	assert.Error(t, mp.Initialize(context.Background()))
}
