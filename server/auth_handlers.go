package server

import (
	"errors"
	"net/http"

	"barrierbet/domain"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.services.Auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Registered successfully.",
		"userId":   user.ID,
		"username": user.Username,
		"balance":  Amount(user.Balance),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.services.Auth.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":    result.Token,
		"username": result.User.Username,
		"balance":  Amount(result.User.Balance),
	})
}

// handleLogout acknowledges a logout. Tokens are stateless; the client drops its copy.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully."})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	identity := identityFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Token is valid.",
		"userId":   identity.UserID,
		"username": identity.Username,
		"role":     identity.Role,
	})
}
