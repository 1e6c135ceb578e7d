package server

import (
	"log/slog"
	"net/http"
	"strconv"
)

// handleLeaderboard lists the best results, optionally for one scene. limit
// defaults to and is capped at maxLimit.
func handleLeaderboard(logger *slog.Logger, board Leaderboard, maxLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		limit := maxLimit
		if raw := q.Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = min(n, maxLimit)
		}

		entries, err := board.Leaderboard(r.Context(), q.Get("sceneId"), limit)
		if err != nil {
			logger.Error("loading leaderboard", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}
