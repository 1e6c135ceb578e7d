package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/treasurehunt/internal/round"
)

type ctxKey int

const (
	ctxKeyRound ctxKey = iota
)

// sessionMiddleware resolves {sessionID} to a live round.
func sessionMiddleware(rounds *round.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rd, err := rounds.Get(chi.URLParam(r, "sessionID"))
			if err != nil {
				writeError(w, http.StatusNotFound, "session not found")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyRound, rd)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func roundFrom(r *http.Request) *round.Round {
	return r.Context().Value(ctxKeyRound).(*round.Round)
}
