package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Bet limits
const (
	MinBetAmount      int64 = 100 // one whole unit, in cents
	MinTargetBarriers       = 3
	MaxTargetBarriers       = 20
)

// Money bounds, in cents. MaxAmount caps any single bet or adjustment and
// MaxBalance caps an account. Both leave int64 headroom for payouts.
const (
	MaxAmount  int64 = 1_000_000_000_000_000     // 10 trillion units
	MaxBalance int64 = 1_000_000_000_000_000_000 // 10 quadrillion units
)

// GameSessionState is the lifecycle state of a session
type GameSessionState string

const (
	GameSessionStateOpen      GameSessionState = "open"
	GameSessionStateCompleted GameSessionState = "completed"
)

// GameSession is one play-for-pay round, from bet to settlement.
// BarriersPassed and Payout stay nil until the session is settled; a settled
// loss stores a zero payout.
type GameSession struct {
	ID             uuid.UUID  `db:"id"`
	UserID         uuid.UUID  `db:"user_id"`
	BetAmount      int64      `db:"bet_amount"`
	TargetBarriers int        `db:"target_barriers"`
	Difficulty     Difficulty `db:"difficulty"`
	IsCompleted    bool       `db:"is_completed"`
	BarriersPassed *int       `db:"barriers_passed"`
	Payout         *int64     `db:"payout"`
	Expired        bool       `db:"expired"`
	StartedAt      time.Time  `db:"started_at"`
	SettledAt      *time.Time `db:"settled_at"`
}

// NewGameSession creates an open session for an accepted bet
func NewGameSession(userID uuid.UUID, betAmount int64, targetBarriers int, difficulty Difficulty) *GameSession {
	return &GameSession{
		ID:             uuid.New(),
		UserID:         userID,
		BetAmount:      betAmount,
		TargetBarriers: targetBarriers,
		Difficulty:     difficulty,
		StartedAt:      time.Now().UTC(),
	}
}

// State returns the lifecycle state of the session
func (s *GameSession) State() GameSessionState {
	if s.IsCompleted {
		return GameSessionStateCompleted
	}
	return GameSessionStateOpen
}

// IsOpen returns true while the session awaits settlement
func (s *GameSession) IsOpen() bool {
	return !s.IsCompleted
}

// IsOwnedBy checks whether the session belongs to the given user
func (s *GameSession) IsOwnedBy(userID uuid.UUID) bool {
	return s.UserID == userID
}

// CalculatePayout computes what a result would pay. Only a won round that
// reached the target pays out, at the difficulty stored with the bet.
func (s *GameSession) CalculatePayout(barriersPassed int, won bool) int64 {
	if !won || barriersPassed < s.TargetBarriers {
		return 0
	}
	return s.Difficulty.ApplyMultiplier(s.BetAmount)
}

// IsWin returns true if the session settled with a positive payout
func (s *GameSession) IsWin() bool {
	return s.IsCompleted && s.Payout != nil && *s.Payout > 0
}

// IsLoss returns true if the session settled without a payout
func (s *GameSession) IsLoss() bool {
	return s.IsCompleted && (s.Payout == nil || *s.Payout == 0)
}

// GetNetProfit returns the net profit/loss of a settled session
func (s *GameSession) GetNetProfit() int64 {
	if s.Payout == nil {
		return -s.BetAmount
	}
	return *s.Payout - s.BetAmount
}

// ValidateBet performs range validation on a bet before it is accepted
func ValidateBet(betAmount int64, targetBarriers int, difficulty Difficulty) error {
	if betAmount < MinBetAmount {
		return errors.New("bet amount must be at least 1.00")
	}
	if betAmount > MaxAmount {
		return errors.New("bet amount exceeds the maximum")
	}
	if targetBarriers < MinTargetBarriers || targetBarriers > MaxTargetBarriers {
		return errors.New("target barriers must be between 3 and 20")
	}
	if !difficulty.IsValid() {
		return errors.New("difficulty must be one of Easy, Medium, Hard, Extreme")
	}
	return nil
}

// Settlement is the one-time outcome written to a session when it completes
type Settlement struct {
	SessionID      uuid.UUID
	UserID         uuid.UUID
	BarriersPassed int
	Payout         int64
	Expired        bool
	SettledAt      time.Time
}

// BetPlacement is returned to the caller when a bet is accepted
type BetPlacement struct {
	SessionID  uuid.UUID
	NewBalance int64
}

// SettlementResult is returned to the caller when a result is accepted
type SettlementResult struct {
	SessionID  uuid.UUID
	Payout     int64
	NewBalance int64
}

// Won returns true if the settlement paid out
func (r *SettlementResult) Won() bool {
	return r.Payout > 0
}
