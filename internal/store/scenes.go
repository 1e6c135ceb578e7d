package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/playperu/treasurehunt/internal/hunt"
)

type sceneDoc struct {
	hunt.Scene
	CreatedAt string `json:"createdAt"`
}

// ListScenes returns every scene, newest first.
func (s *Store) ListScenes(ctx context.Context) ([]hunt.Scene, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT json(data) FROM scenes ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, err
	}
	docs, err := scanDocs[sceneDoc](rows)
	if err != nil {
		return nil, err
	}

	scenes := make([]hunt.Scene, len(docs))
	for i, d := range docs {
		scenes[i] = d.Scene
	}
	return scenes, nil
}

func (s *Store) GetScene(ctx context.Context, id string) (hunt.Scene, error) {
	var d sceneDoc
	if err := s.get(ctx, "scenes", id, &d); err != nil {
		return hunt.Scene{}, err
	}
	return d.Scene, nil
}

// CreateScene assigns ids to the scene and to items without one, validates
// it and stores it.
func (s *Store) CreateScene(ctx context.Context, sc hunt.Scene) (hunt.Scene, error) {
	if sc.ID == "" {
		sc.ID = newID()
	}
	sc, err := prepareScene(sc)
	if err != nil {
		return hunt.Scene{}, err
	}

	ok, err := s.insertScene(ctx, s.db, sc)
	if err != nil {
		return hunt.Scene{}, err
	}
	if !ok {
		return hunt.Scene{}, fmt.Errorf("scene %q: %w", sc.ID, ErrConflict)
	}
	return sc, nil
}

// UpdateScene replaces the stored scene id with sc, keeping its creation
// time. The same validation as CreateScene applies.
func (s *Store) UpdateScene(ctx context.Context, id string, sc hunt.Scene) (hunt.Scene, error) {
	sc.ID = id
	sc, err := prepareScene(sc)
	if err != nil {
		return hunt.Scene{}, err
	}

	var cur sceneDoc
	if err := s.get(ctx, "scenes", id, &cur); err != nil {
		return hunt.Scene{}, err
	}
	data, err := json.Marshal(sceneDoc{Scene: sc, CreatedAt: cur.CreatedAt})
	if err != nil {
		return hunt.Scene{}, err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE scenes SET title = ?, data = jsonb(?) WHERE id = ?`,
		sc.Title, string(data), id,
	)
	if err != nil {
		return hunt.Scene{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return hunt.Scene{}, err
	}
	if n == 0 {
		return hunt.Scene{}, ErrNotFound
	}
	return sc, nil
}

// DeleteScene removes a scene. Leaderboard entries for it are kept.
func (s *Store) DeleteScene(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scenes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// prepareScene copies the items, fills blank item ids and validates.
func prepareScene(sc hunt.Scene) (hunt.Scene, error) {
	sc.Items = append([]hunt.HiddenItem(nil), sc.Items...)
	for i := range sc.Items {
		if sc.Items[i].ID == "" {
			sc.Items[i].ID = newID()
		}
	}
	if err := sc.Validate(); err != nil {
		return hunt.Scene{}, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}
	return sc, nil
}

// SeedScenes inserts scenes that are not stored yet and reports how many
// were added. Existing scenes are left untouched.
func (s *Store) SeedScenes(ctx context.Context, scenes []hunt.Scene) (int, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	added := 0
	for _, sc := range scenes {
		ok, err := s.insertScene(ctx, tx, sc)
		if err != nil {
			return 0, fmt.Errorf("seeding scene %q: %w", sc.ID, err)
		}
		if ok {
			added++
		}
	}
	return added, tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insertScene(ctx context.Context, db execer, sc hunt.Scene) (bool, error) {
	d := sceneDoc{Scene: sc, CreatedAt: s.nowUTC()}
	data, err := json.Marshal(d)
	if err != nil {
		return false, err
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO scenes (id, title, created_at, data) VALUES (?, ?, ?, jsonb(?))
		 ON CONFLICT(id) DO NOTHING`,
		sc.ID, sc.Title, d.CreatedAt, string(data),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SceneOrDefault loads id, falling back to fallbackID when id is unknown and
// fallback is set. It reports whether the fallback was used.
func (s *Store) SceneOrDefault(ctx context.Context, id, fallbackID string, fallback bool) (hunt.Scene, bool, error) {
	sc, err := s.GetScene(ctx, id)
	if err == nil || !fallback || !errors.Is(err, ErrNotFound) {
		return sc, false, err
	}
	sc, err = s.GetScene(ctx, fallbackID)
	return sc, err == nil, err
}
