package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/treasurehunt/internal/hunt"
	"github.com/playperu/treasurehunt/internal/store"
)

// SceneSummary is a scene in the picker.
type SceneSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	BackgroundURL string `json:"backgroundUrl"`
	ItemCount     int    `json:"itemCount"`
	TotalTime     int    `json:"totalTime"`
}

// SceneItem is what a player may know about an item before finding it.
type SceneItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Riddle string `json:"riddle"`
}

// SceneDetail describes a scene without revealing where its items are.
type SceneDetail struct {
	SceneSummary
	Items []SceneItem `json:"items"`
}

func summarize(sc hunt.Scene) SceneSummary {
	return SceneSummary{
		ID:            sc.ID,
		Title:         sc.Title,
		BackgroundURL: sc.BackgroundRef,
		ItemCount:     len(sc.Items),
		TotalTime:     hunt.TotalTime(len(sc.Items)),
	}
}

func handleListScenes(logger *slog.Logger, scenes SceneStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := scenes.ListScenes(r.Context())
		if err != nil {
			logger.Error("listing scenes", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := make([]SceneSummary, len(list))
		for i, sc := range list {
			resp[i] = summarize(sc)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleGetScene(logger *slog.Logger, scenes SceneStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, err := scenes.GetScene(r.Context(), chi.URLParam(r, "sceneID"))
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "scene not found")
			return
		}
		if err != nil {
			logger.Error("loading scene", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := SceneDetail{SceneSummary: summarize(sc), Items: make([]SceneItem, len(sc.Items))}
		for i, it := range sc.Items {
			resp.Items[i] = SceneItem{ID: it.ID, Name: it.Name, Riddle: it.Riddle}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// handleCreateScene stores a scene built in the editor. Item ids may be left
// blank and are generated.
func handleCreateScene(logger *slog.Logger, scenes SceneStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req hunt.Scene
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}

		sc, err := scenes.CreateScene(r.Context(), req)
		switch {
		case errors.Is(err, store.ErrInvalidScene):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, store.ErrConflict):
			writeError(w, http.StatusConflict, "scene already exists")
			return
		case err != nil:
			logger.Error("creating scene", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		logger.Info("scene created", "scene", sc.ID, "items", len(sc.Items))
		writeJSON(w, http.StatusCreated, sc)
	}
}

// handleUpdateScene replaces a scene from the editor. The id in the path
// wins over one in the body. Running rounds keep the scene they started on.
func handleUpdateScene(logger *slog.Logger, scenes SceneStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req hunt.Scene
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}

		sc, err := scenes.UpdateScene(r.Context(), chi.URLParam(r, "sceneID"), req)
		switch {
		case errors.Is(err, store.ErrInvalidScene):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "scene not found")
			return
		case err != nil:
			logger.Error("updating scene", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		logger.Info("scene updated", "scene", sc.ID, "items", len(sc.Items))
		writeJSON(w, http.StatusOK, sc)
	}
}

func handleDeleteScene(logger *slog.Logger, scenes SceneStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sceneID")
		err := scenes.DeleteScene(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "scene not found")
			return
		}
		if err != nil {
			logger.Error("deleting scene", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		logger.Info("scene deleted", "scene", id)
		w.WriteHeader(http.StatusNoContent)
	}
}
