package server

import (
	"context"

	"github.com/playperu/treasurehunt/internal/hunt"
	"github.com/playperu/treasurehunt/internal/store"
)

// SceneStore is the scene persistence the handlers need.
type SceneStore interface {
	ListScenes(ctx context.Context) ([]hunt.Scene, error)
	GetScene(ctx context.Context, id string) (hunt.Scene, error)
	CreateScene(ctx context.Context, sc hunt.Scene) (hunt.Scene, error)
	UpdateScene(ctx context.Context, id string, sc hunt.Scene) (hunt.Scene, error)
	DeleteScene(ctx context.Context, id string) error
	SceneOrDefault(ctx context.Context, id, fallbackID string, fallback bool) (hunt.Scene, bool, error)
}

// Leaderboard serves ranked results.
type Leaderboard interface {
	Leaderboard(ctx context.Context, sceneID string, limit int) ([]store.Entry, error)
}
