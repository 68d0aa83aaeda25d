package server

import (
	"net/http"

	"github.com/google/uuid"
)

type betRequest struct {
	BetAmount      Amount     `json:"betAmount"`
	TargetBarriers int        `json:"targetBarriers"`
	Difficulty     Difficulty `json:"difficulty"`
}

type resultRequest struct {
	GameID         uuid.UUID `json:"gameId"`
	BarriersPassed *int      `json:"barriersPassed"`
	Score          *int      `json:"score"`
	Won            bool      `json:"won"`
}

// barriers prefers barriersPassed and falls back to the older score field
func (req resultRequest) barriers() int {
	if req.BarriersPassed != nil {
		return *req.BarriersPassed
	}
	if req.Score != nil {
		return *req.Score
	}
	return 0
}

func (s *Server) handlePlaceBet(w http.ResponseWriter, r *http.Request) {
	var req betRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = "Easy"
	}

	identity := identityFromContext(r.Context())
	placement, err := s.services.Settlement.PlaceBet(r.Context(), identity.UserID, req.BetAmount.Cents(), req.TargetBarriers, string(req.Difficulty))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"gameId":     placement.SessionID,
		"newBalance": Amount(placement.NewBalance),
	})
}

func (s *Server) handleSubmitResult(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.GameID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "gameId is required")
		return
	}

	identity := identityFromContext(r.Context())
	result, err := s.services.Settlement.SubmitResult(r.Context(), identity.UserID, req.GameID, req.barriers(), req.Won)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	message := "You lost."
	if result.Won() {
		message = "You won!"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"gameId":     result.SessionID,
		"payout":     Amount(result.Payout),
		"newBalance": Amount(result.NewBalance),
		"message":    message,
	})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	balance, err := s.services.Ledger.GetBalance(r.Context(), identity.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"balance": Amount(balance)})
}
