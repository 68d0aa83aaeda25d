package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type adminUserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Balance   Amount    `json:"balance"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "page must be an integer")
		return
	}
	pageSize, err := queryInt(r, "pageSize", 20)
	if err != nil {
		writeError(w, http.StatusBadRequest, "pageSize must be an integer")
		return
	}

	result, err := s.services.Admin.ListUsers(r.Context(), page, pageSize)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	users := make([]adminUserResponse, 0, len(result.Users))
	for _, user := range result.Users {
		users = append(users, adminUserResponse{
			ID:        user.ID,
			Username:  user.Username,
			Balance:   Amount(user.Balance),
			Role:      user.Role(),
			CreatedAt: user.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users":      users,
		"total":      result.Total,
		"page":       result.Page,
		"pageSize":   result.PageSize,
		"totalPages": result.TotalPages,
	})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.services.Admin.GetStatistics(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"totalUsers":   stats.TotalUsers,
		"totalGames":   stats.TotalGames,
		"totalRevenue": Amount(stats.HouseRevenue),
		"totalPaidOut": Amount(stats.TotalPaidOut),
		"gameStatistics": map[string]int64{
			"completedGames": stats.CompletedGames,
			"pendingGames":   stats.PendingGames,
		},
		"lastUpdated": time.Now().UTC(),
	})
}

type balanceAdjustmentRequest struct {
	Amount Amount `json:"amount"`
	Reason string `json:"reason"`
}

func (s *Server) handleAdjustBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req balanceAdjustmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	identity := identityFromContext(r.Context())
	reason := strings.TrimSpace(req.Reason)
	newBalance, err := s.services.Admin.AdjustBalance(r.Context(), identity.UserID, userID, req.Amount.Cents(), reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userId":     userID,
		"newBalance": Amount(newBalance),
		"adjustment": req.Amount,
		"reason":     reason,
		"adjustedBy": identity.UserID,
		"timestamp":  time.Now().UTC(),
	})
}
