package entities

import "math"

// SessionStats summarizes a user's game sessions
type SessionStats struct {
	TotalGames      int
	TotalWins       int
	TotalLosses     int
	PendingGames    int
	TotalEarnings   int64 // sum of positive payouts
	TotalLossAmount int64 // sum of bets on settled losses
}

// WinRate returns wins as a percentage of all games, rounded to two places
func (s *SessionStats) WinRate() float64 {
	if s.TotalGames == 0 {
		return 0
	}
	rate := float64(s.TotalWins) / float64(s.TotalGames) * 100
	return math.Round(rate*100) / 100
}

// Profile is a user together with their game statistics
type Profile struct {
	User  *User
	Stats *SessionStats
}

// GlobalStats summarizes the whole system for administrators
type GlobalStats struct {
	TotalUsers     int64
	TotalGames     int64
	CompletedGames int64
	PendingGames   int64
	HouseRevenue   int64 // sum of bets on settled losses
	TotalPaidOut   int64
}

// UserPage is one page of users for the admin listing
type UserPage struct {
	Users      []*User
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

// HistoryQuery selects a page of a user's sessions
type HistoryQuery struct {
	Limit     int
	Offset    int
	Ascending bool
}

// LoginResult is returned on successful authentication
type LoginResult struct {
	Token string
	User  *User
}
