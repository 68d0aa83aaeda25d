package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"barrierbet/domain"
	"barrierbet/domain/entities"

	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

type contextKey string

const identityKey contextKey = "identity"

// identityFromContext returns the verified caller set by authenticate
func identityFromContext(ctx context.Context) *entities.Identity {
	identity, _ := ctx.Value(identityKey).(*entities.Identity)
	return identity
}

func withIdentity(ctx context.Context, identity *entities.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// bearerToken extracts the token from an "Authorization: Bearer" header
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// authenticate rejects requests without a valid bearer token
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		identity, err := s.services.Auth.VerifyToken(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, domain.ErrInvalidToken.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
	})
}

// requireAdmin only lets identities with the admin role through
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := identityFromContext(r.Context())
		if identity == nil || !identity.IsAdmin() {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		fields := log.Fields{
			"requestID": middleware.GetReqID(r.Context()),
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    ww.Status(),
			"bytes":     ww.BytesWritten(),
			"duration":  time.Since(start),
			"remote":    r.RemoteAddr,
		}
		if ww.Status() >= http.StatusInternalServerError {
			log.WithFields(fields).Warn("HTTP request")
			return
		}
		log.WithFields(fields).Info("HTTP request")
	})
}
