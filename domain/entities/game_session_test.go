package entities

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidateBet(t *testing.T) {
	tests := []struct {
		name       string
		bet        int64
		target     int
		difficulty Difficulty
		valid      bool
	}{
		{"minimum bet", MinBetAmount, 3, DifficultyEasy, true},
		{"maximum target", 5000, 20, DifficultyExtreme, true},
		{"zero bet", 0, 5, DifficultyEasy, false},
		{"fractional unit", 99, 5, DifficultyEasy, false},
		{"target below range", 1000, 2, DifficultyEasy, false},
		{"target above range", 1000, 21, DifficultyEasy, false},
		{"unknown difficulty", 1000, 5, Difficulty("Nope"), false},
		{"maximum bet", MaxAmount, 3, DifficultyExtreme, true},
		{"above maximum bet", MaxAmount + 1, 3, DifficultyExtreme, false},
		{"near int64 limit", 9_000_000_000_000_000_000, 3, DifficultyExtreme, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBet(tt.bet, tt.target, tt.difficulty)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestGameSession_CalculatePayout(t *testing.T) {
	session := NewGameSession(uuid.New(), 1000, 5, DifficultyEasy)

	assert.Equal(t, int64(1200), session.CalculatePayout(5, true))
	assert.Equal(t, int64(1200), session.CalculatePayout(9, true))
	assert.Zero(t, session.CalculatePayout(4, true))
	assert.Zero(t, session.CalculatePayout(5, false))
}

func TestGameSession_Lifecycle(t *testing.T) {
	owner := uuid.New()
	session := NewGameSession(owner, 1000, 5, DifficultyHard)

	assert.True(t, session.IsOpen())
	assert.Equal(t, GameSessionStateOpen, session.State())
	assert.True(t, session.IsOwnedBy(owner))
	assert.False(t, session.IsOwnedBy(uuid.New()))
	assert.False(t, session.IsWin())
	assert.False(t, session.IsLoss())

	payout := int64(0)
	barriers := 2
	session.IsCompleted = true
	session.Payout = &payout
	session.BarriersPassed = &barriers

	assert.Equal(t, GameSessionStateCompleted, session.State())
	assert.True(t, session.IsLoss())
	assert.Equal(t, int64(-1000), session.GetNetProfit())

	payout = 2000
	assert.True(t, session.IsWin())
	assert.Equal(t, int64(1000), session.GetNetProfit())
}

func TestSessionStats_WinRate(t *testing.T) {
	assert.Zero(t, (&SessionStats{}).WinRate())
	assert.Equal(t, 25.0, (&SessionStats{TotalGames: 4, TotalWins: 1}).WinRate())
	assert.Equal(t, 66.67, (&SessionStats{TotalGames: 3, TotalWins: 2}).WinRate())
}
