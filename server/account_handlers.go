package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"barrierbet/domain/entities"

	"github.com/google/uuid"
)

type sessionResponse struct {
	ID             uuid.UUID  `json:"id"`
	BetAmount      Amount     `json:"betAmount"`
	TargetBarriers int        `json:"targetBarriers"`
	Difficulty     string     `json:"difficulty"`
	Multiplier     float64    `json:"multiplier"`
	IsCompleted    bool       `json:"isCompleted"`
	BarriersPassed *int       `json:"barriersPassed"`
	Payout         *Amount    `json:"payout"`
	NetProfit      *Amount    `json:"netProfit"`
	Outcome        string     `json:"outcome"`
	Expired        bool       `json:"expired"`
	StartedAt      time.Time  `json:"startedAt"`
	SettledAt      *time.Time `json:"settledAt,omitempty"`
}

func newSessionResponse(session *entities.GameSession) sessionResponse {
	resp := sessionResponse{
		ID:             session.ID,
		BetAmount:      Amount(session.BetAmount),
		TargetBarriers: session.TargetBarriers,
		Difficulty:     session.Difficulty.String(),
		Multiplier:     session.Difficulty.Multiplier(),
		IsCompleted:    session.IsCompleted,
		BarriersPassed: session.BarriersPassed,
		Expired:        session.Expired,
		StartedAt:      session.StartedAt,
		SettledAt:      session.SettledAt,
		Outcome:        "pending",
	}
	if session.Payout != nil {
		payout := Amount(*session.Payout)
		resp.Payout = &payout
	}
	switch {
	case session.IsWin():
		resp.Outcome = "won"
	case session.IsLoss():
		resp.Outcome = "lost"
	}
	if session.IsCompleted {
		net := Amount(session.GetNetProfit())
		resp.NetProfit = &net
	}
	return resp
}

type statsResponse struct {
	TotalGames      int     `json:"totalGames"`
	TotalWins       int     `json:"totalWins"`
	TotalLosses     int     `json:"totalLosses"`
	PendingGames    int     `json:"pendingGames"`
	WinRate         float64 `json:"winRate"`
	TotalEarnings   Amount  `json:"totalEarnings"`
	TotalLossAmount Amount  `json:"totalLossAmount"`
}

func newStatsResponse(stats *entities.SessionStats) statsResponse {
	return statsResponse{
		TotalGames:      stats.TotalGames,
		TotalWins:       stats.TotalWins,
		TotalLosses:     stats.TotalLosses,
		PendingGames:    stats.PendingGames,
		WinRate:         stats.WinRate(),
		TotalEarnings:   Amount(stats.TotalEarnings),
		TotalLossAmount: Amount(stats.TotalLossAmount),
	}
}

// queryInt reads an integer query parameter, returning def when it is absent
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "offset must be an integer")
		return
	}

	query := entities.HistoryQuery{
		Limit:     limit,
		Offset:    offset,
		Ascending: strings.EqualFold(r.URL.Query().Get("sort"), "asc"),
	}

	identity := identityFromContext(r.Context())
	sessions, err := s.services.Stats.GetHistory(r.Context(), identity.UserID, query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := make([]sessionResponse, 0, len(sessions))
	for _, session := range sessions {
		resp = append(resp, newSessionResponse(session))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	deleted, err := s.services.Stats.ClearHistory(r.Context(), identity.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	stats, err := s.services.Stats.GetStats(r.Context(), identity.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newStatsResponse(stats))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	profile, err := s.services.Users.GetProfile(r.Context(), identity.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		ID        uuid.UUID `json:"id"`
		Username  string    `json:"username"`
		Balance   Amount    `json:"balance"`
		Role      string    `json:"role"`
		CreatedAt time.Time `json:"createdAt"`
		statsResponse
	}{
		ID:            profile.User.ID,
		Username:      profile.User.Username,
		Balance:       Amount(profile.User.Balance),
		Role:          profile.User.Role(),
		CreatedAt:     profile.User.CreatedAt,
		statsResponse: newStatsResponse(profile.Stats),
	})
}

type profileUpdateRequest struct {
	Username string `json:"username"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	identity := identityFromContext(r.Context())
	if err := s.services.Users.UpdateUsername(r.Context(), identity.UserID, req.Username); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Profile updated."})
}
