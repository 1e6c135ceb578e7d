package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/playperu/treasurehunt/internal/catalog"
	"github.com/playperu/treasurehunt/internal/hunt"
	"github.com/playperu/treasurehunt/internal/round"
	"github.com/playperu/treasurehunt/internal/store"
)

type StartSessionRequest struct {
	SceneID           string `json:"sceneId"`
	PlayerName        string `json:"playerName,omitempty"`
	FallbackToDefault bool   `json:"fallbackToDefault,omitempty"`
}

type SessionResponse struct {
	ID           string      `json:"id"`
	State        round.State `json:"state"`
	UsedFallback bool        `json:"usedFallback,omitempty"`
}

// ClickRequest is a click either in percentages (x, y) or in client pixels
// together with the rendered image rectangle.
type ClickRequest struct {
	X       *float64   `json:"x,omitempty"`
	Y       *float64   `json:"y,omitempty"`
	ClientX *float64   `json:"clientX,omitempty"`
	ClientY *float64   `json:"clientY,omitempty"`
	Rect    *hunt.Rect `json:"rect,omitempty"`
}

func (c ClickRequest) point() (hunt.Point, error) {
	switch {
	case c.X != nil && c.Y != nil:
		return hunt.Point{X: *c.X, Y: *c.Y}, nil
	case c.ClientX != nil && c.ClientY != nil && c.Rect != nil:
		p, ok := hunt.PointFromPixels(*c.ClientX, *c.ClientY, *c.Rect)
		if !ok {
			return hunt.Point{}, errors.New("rect must have a positive size")
		}
		return p, nil
	}
	return hunt.Point{}, errors.New("x and y, or clientX, clientY and rect, are required")
}

// HintRefusedResponse is returned when a hint cannot be granted.
type HintRefusedResponse struct {
	Error string      `json:"error"`
	State round.State `json:"state"`
}

func handleStartSession(logger *slog.Logger, scenes SceneStore, rounds *round.Manager, id Identity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartSessionRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if req.SceneID == "" && !req.FallbackToDefault {
			writeError(w, http.StatusBadRequest, "sceneId is required")
			return
		}

		sc, fellBack, err := scenes.SceneOrDefault(r.Context(), req.SceneID, catalog.DefaultSceneID, req.FallbackToDefault)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "scene not found")
			return
		}
		if err != nil {
			logger.Error("loading scene", "scene", req.SceneID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if fellBack {
			logger.Info("scene not found, using default", "requested", req.SceneID, "scene", sc.ID)
		}

		rd := rounds.Start(sc, id.PlayerName(r, req.PlayerName))
		writeSession(r.Context(), w, rd, fellBack)
	}
}

func writeSession(ctx context.Context, w http.ResponseWriter, rd *round.Round, fellBack bool) {
	st, err := rd.State(ctx)
	if err != nil {
		writeRoundError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{ID: rd.ID, State: st, UsedFallback: fellBack})
}

func handleSessionState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := roundFrom(r).State(r.Context())
		if err != nil {
			writeRoundError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func handleClick() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ClickRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		p, err := req.point()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		out, err := roundFrom(r).Click(r.Context(), p)
		if err != nil {
			writeRoundError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleHint() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := roundFrom(r).Hint(r.Context())
		switch {
		case isHintRefusal(err):
			writeJSON(w, http.StatusConflict, HintRefusedResponse{Error: err.Error(), State: out.State})
		case err != nil:
			writeRoundError(w, err)
		default:
			writeJSON(w, http.StatusOK, out)
		}
	}
}

func isHintRefusal(err error) bool {
	return errors.Is(err, hunt.ErrGameOver) ||
		errors.Is(err, hunt.ErrAllFound) ||
		errors.Is(err, hunt.ErrNotEnoughEnergy)
}

// handleRetry replaces the session with a fresh round on the same scene.
func handleRetry(rounds *round.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rd, err := rounds.Retry(roundFrom(r).ID)
		if err != nil {
			writeRoundError(w, err)
			return
		}
		writeSession(r.Context(), w, rd, false)
	}
}

func handleDiscard(rounds *round.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := rounds.Discard(roundFrom(r).ID); err != nil {
			writeRoundError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeRoundError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, round.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, round.ErrRoundClosed):
		writeError(w, http.StatusGone, "session closed")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
