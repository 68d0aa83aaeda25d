package entities

import "strings"

// Difficulty is the tier a bet is placed at. It selects the payout multiplier.
type Difficulty string

const (
	DifficultyEasy    Difficulty = "Easy"
	DifficultyMedium  Difficulty = "Medium"
	DifficultyHard    Difficulty = "Hard"
	DifficultyExtreme Difficulty = "Extreme"
)

// multiplierPercent holds payout multipliers as integer percentages so that
// money math stays in whole cents.
var multiplierPercent = map[Difficulty]int64{
	DifficultyEasy:    120,
	DifficultyMedium:  150,
	DifficultyHard:    200,
	DifficultyExtreme: 250,
}

// Difficulties lists every valid difficulty in ascending order
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExtreme}
}

// ParseDifficulty parses a difficulty name case-insensitively and returns its
// canonical spelling.
func ParseDifficulty(s string) (Difficulty, bool) {
	for _, d := range Difficulties() {
		if strings.EqualFold(strings.TrimSpace(s), string(d)) {
			return d, true
		}
	}
	return "", false
}

// IsValid returns true if the difficulty is one of the known tiers
func (d Difficulty) IsValid() bool {
	_, ok := multiplierPercent[d]
	return ok
}

// MultiplierPercent returns the payout multiplier as a percentage.
// Unknown difficulties pay out at 100%.
func (d Difficulty) MultiplierPercent() int64 {
	if p, ok := multiplierPercent[d]; ok {
		return p
	}
	return 100
}

// Multiplier returns the payout multiplier (Easy 1.2, Medium 1.5, Hard 2.0,
// Extreme 2.5, anything else 1.0).
func (d Difficulty) Multiplier() float64 {
	return float64(d.MultiplierPercent()) / 100
}

// ApplyMultiplier scales an amount in cents by the multiplier, rounding down
// to the cent. Whole hundreds are scaled first so amounts up to MaxAmount
// cannot overflow.
func (d Difficulty) ApplyMultiplier(amount int64) int64 {
	pct := d.MultiplierPercent()
	return amount/100*pct + amount%100*pct/100
}

// String returns the string representation of the difficulty
func (d Difficulty) String() string {
	return string(d)
}
