package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/kikoune/server/internal/repository/room"
	"github.com/kikoune/server/pkg/ctxlogger"
	"github.com/kikoune/server/pkg/rest"
)

func (c controller) requestIdMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ctxlogger.AppendCtx(r.Context(), slog.String("request_id", uuid.NewString()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (c controller) requestLoggingMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"url", r.URL.String(),
			"remote_addr", r.RemoteAddr,
		)
		next.ServeHTTP(w, r)
	})
}

// authMw checks the bearer credential on room routes. The header form is
// "Authorization: <userId> <token>"; the token must equal the one stored
// at login.
func (c controller) authMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userId, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || userId == "" || token == "" {
			rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": "Unauthorized"})
			return
		}

		stored, err := c.tokenRepo.GetAuthToken(r.Context(), userId)
		if err != nil {
			if !errors.Is(err, room.ErrTokenNotFound) {
				c.logger.ErrorContext(r.Context(), "failed to get auth token", "error", err)
				rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal server error"})
				return
			}
			rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": "Unauthorized"})
			return
		}
		if stored != token {
			c.logger.InfoContext(r.Context(), "unauthorized", "user_id", userId)
			rest.WriteJSON(w, http.StatusUnauthorized, rest.Envelope{"error": "Unauthorized"})
			return
		}

		ctx := withUserId(r.Context(), userId)
		ctx = ctxlogger.AppendCtx(ctx, slog.String("user_id", userId))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
