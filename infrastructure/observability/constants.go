package observability

// Metric name prefixes
const (
	MetricPrefix = "barrierbet"
)

// Metric names
const (
	// Game metrics
	BetsPlacedTotal      = MetricPrefix + ".game.bets_placed_total"
	BetAmount            = MetricPrefix + ".game.bet_amount"
	SessionsSettledTotal = MetricPrefix + ".game.sessions_settled_total"
	PayoutsTotal         = MetricPrefix + ".game.payouts_total"

	// Ledger metrics
	BalanceTransactionsTotal = MetricPrefix + ".balance.transactions_total"
	LedgerConflictsTotal     = MetricPrefix + ".ledger.cas_conflicts_total"
	LedgerExhaustedTotal     = MetricPrefix + ".ledger.cas_exhausted_total"

	// Event metrics
	EventsPublishedTotal = MetricPrefix + ".events.published_total"
)

// Label keys
const (
	LabelType       = "type"
	LabelEventType  = "event_type"
	LabelDifficulty = "difficulty"
	LabelOutcome    = "outcome"
	LabelOperation  = "operation"
)

// Settlement outcomes
const (
	OutcomeWin     = "win"
	OutcomeLoss    = "loss"
	OutcomeExpired = "expired"
)
