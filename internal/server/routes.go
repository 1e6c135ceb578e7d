package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/treasurehunt/internal/handler/health"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Treasure Hunt API", "/openapi.json", "/docs"))
	r.Mount("/healthz", health.NewHandler(logger, deps.Checks, map[string]health.Gauge{
		"rounds": deps.Rounds.Len,
	}).Routes())

	r.Route("/api/scenes", func(r chi.Router) {
		r.Get("/", handleListScenes(logger, deps.Scenes))
		r.Post("/", handleCreateScene(logger, deps.Scenes))
		r.Get("/{sceneID}", handleGetScene(logger, deps.Scenes))
		r.Put("/{sceneID}", handleUpdateScene(logger, deps.Scenes))
		r.Delete("/{sceneID}", handleDeleteScene(logger, deps.Scenes))
	})

	r.Post("/api/sessions", handleStartSession(logger, deps.Scenes, deps.Rounds, deps.Identity))

	// Session routes; {sessionID} is resolved by sessionMiddleware.
	r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
		r.Use(sessionMiddleware(deps.Rounds))
		r.Get("/", handleSessionState())
		r.Delete("/", handleDiscard(deps.Rounds))
		r.Post("/click", handleClick())
		r.Post("/hint", handleHint())
		r.Post("/retry", handleRetry(deps.Rounds))
		r.Get("/events", handleEvents(deps.Broker))
		r.Get("/ws", handlePlaySocket(logger, deps.Broker))
	})

	r.Get("/api/leaderboard", handleLeaderboard(logger, deps.Leaderboard, deps.LeaderboardLimit))

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
