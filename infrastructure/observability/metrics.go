package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"barrierbet/config"
	"barrierbet/domain/events"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// EventSubscriber registers in-process event handlers
type EventSubscriber interface {
	RegisterLocalHandler(eventType events.EventType, handler func(context.Context, events.Event) error)
}

// MetricsProvider manages OpenTelemetry metrics for the service
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	enabled       bool
	mu            sync.RWMutex

	// Metric instruments
	betsPlacedCounter          metric.Int64Counter
	betAmountHist              metric.Int64Histogram
	sessionsSettledCounter     metric.Int64Counter
	payoutsCounter             metric.Int64Counter
	balanceTransactionsCounter metric.Int64Counter
	ledgerConflictsCounter     metric.Int64Counter
	ledgerExhaustedCounter     metric.Int64Counter
	eventsPublishedCounter     metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	var exporter sdkmetric.Exporter
	var err error
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTelOTLPEndpoint).Info("Using OTLP metric exporter")

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
	)
	return mp.initializeWithReader(reader, true)
}

// InitializeWithReader sets up the provider with a caller-supplied reader,
// for example a manual reader in tests
func (mp *MetricsProvider) InitializeWithReader(reader sdkmetric.Reader) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.initializeWithReader(reader, false)
}

func (mp *MetricsProvider) initializeWithReader(reader sdkmetric.Reader, setGlobal bool) error {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(mp.config.OTelServiceName),
			attribute.String("environment", mp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	if setGlobal {
		otel.SetMeterProvider(mp.meterProvider)
	}

	mp.meter = mp.meterProvider.Meter("barrierbet")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	mp.enabled = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	var err error

	mp.betsPlacedCounter, err = mp.meter.Int64Counter(
		BetsPlacedTotal,
		metric.WithDescription("Total number of accepted bets"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create bets placed counter: %w", err)
	}

	mp.betAmountHist, err = mp.meter.Int64Histogram(
		BetAmount,
		metric.WithDescription("Accepted bet amounts in cents"),
		metric.WithUnit("{cent}"),
		metric.WithExplicitBucketBoundaries(100, 500, 1000, 5000, 10000, 50000, 100000),
	)
	if err != nil {
		return fmt.Errorf("failed to create bet amount histogram: %w", err)
	}

	mp.sessionsSettledCounter, err = mp.meter.Int64Counter(
		SessionsSettledTotal,
		metric.WithDescription("Total number of settled game sessions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create sessions settled counter: %w", err)
	}

	mp.payoutsCounter, err = mp.meter.Int64Counter(
		PayoutsTotal,
		metric.WithDescription("Total amount paid out in cents"),
		metric.WithUnit("{cent}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create payouts counter: %w", err)
	}

	mp.balanceTransactionsCounter, err = mp.meter.Int64Counter(
		BalanceTransactionsTotal,
		metric.WithDescription("Total number of balance transactions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create balance transactions counter: %w", err)
	}

	mp.ledgerConflictsCounter, err = mp.meter.Int64Counter(
		LedgerConflictsTotal,
		metric.WithDescription("Compare-and-swap attempts lost to a concurrent update"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create ledger conflicts counter: %w", err)
	}

	mp.ledgerExhaustedCounter, err = mp.meter.Int64Counter(
		LedgerExhaustedTotal,
		metric.WithDescription("Ledger operations that ran out of compare-and-swap attempts"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create ledger exhausted counter: %w", err)
	}

	mp.eventsPublishedCounter, err = mp.meter.Int64Counter(
		EventsPublishedTotal,
		metric.WithDescription("Total number of domain events published"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create events published counter: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// RegisterEventHandlers records game and balance metrics from domain events
func (mp *MetricsProvider) RegisterEventHandlers(subscriber EventSubscriber) {
	for _, eventType := range []events.EventType{
		events.EventTypeBalanceChange,
		events.EventTypeUserCreated,
		events.EventTypeBetPlaced,
		events.EventTypeSessionSettled,
	} {
		subscriber.RegisterLocalHandler(eventType, mp.handleEvent)
	}
}

func (mp *MetricsProvider) handleEvent(ctx context.Context, event events.Event) error {
	mp.RecordEventPublished(string(event.Type()))

	switch e := event.(type) {
	case events.BalanceChangeEvent:
		mp.RecordBalanceTransaction(string(e.TransactionType))
	case events.BetPlacedEvent:
		mp.RecordBetPlaced(string(e.Difficulty), e.BetAmount)
	case events.SessionSettledEvent:
		outcome := OutcomeLoss
		switch {
		case e.Expired:
			outcome = OutcomeExpired
		case e.Payout > 0:
			outcome = OutcomeWin
		}
		mp.RecordSessionSettled(string(e.Difficulty), outcome, e.Payout)
	}
	return nil
}

// RecordBetPlaced records an accepted bet
func (mp *MetricsProvider) RecordBetPlaced(difficulty string, amount int64) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(attribute.String(LabelDifficulty, difficulty))
	mp.betsPlacedCounter.Add(context.Background(), 1, attrs)
	mp.betAmountHist.Record(context.Background(), amount, attrs)
}

// RecordSessionSettled records a settlement and its payout
func (mp *MetricsProvider) RecordSessionSettled(difficulty, outcome string, payout int64) {
	if !mp.isEnabled() {
		return
	}

	mp.sessionsSettledCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(LabelDifficulty, difficulty),
			attribute.String(LabelOutcome, outcome),
		),
	)
	if payout > 0 {
		mp.payoutsCounter.Add(context.Background(), payout,
			metric.WithAttributes(attribute.String(LabelDifficulty, difficulty)),
		)
	}
}

// RecordBalanceTransaction records a balance transaction
func (mp *MetricsProvider) RecordBalanceTransaction(transactionType string) {
	if !mp.isEnabled() {
		return
	}

	mp.balanceTransactionsCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelType, transactionType)),
	)
}

// RecordLedgerConflict records a lost compare-and-swap attempt
func (mp *MetricsProvider) RecordLedgerConflict(operation string) {
	if !mp.isEnabled() {
		return
	}

	mp.ledgerConflictsCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelOperation, operation)),
	)
}

// RecordLedgerExhausted records a ledger operation that gave up after repeated conflicts
func (mp *MetricsProvider) RecordLedgerExhausted(operation string) {
	if !mp.isEnabled() {
		return
	}

	mp.ledgerExhaustedCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelOperation, operation)),
	)
}

// RecordEventPublished records a domain event being published
func (mp *MetricsProvider) RecordEventPublished(eventType string) {
	if !mp.isEnabled() {
		return
	}

	mp.eventsPublishedCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelEventType, eventType)),
	)
}

// isEnabled checks if metrics are enabled and initialized
func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.enabled
}
