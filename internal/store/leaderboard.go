package store

import (
	"cmp"
	"context"
	"encoding/json"
	"slices"

	"github.com/playperu/treasurehunt/internal/hunt"
)

// Entry is one leaderboard row as served to clients.
type Entry struct {
	ID          string `json:"id"`
	PlayerName  string `json:"playerName"`
	SceneTitle  string `json:"sceneTitle"`
	SceneID     string `json:"sceneId"`
	Score       int    `json:"score"`
	ItemsFound  int    `json:"itemsFound"`
	TotalItems  int    `json:"totalItems"`
	TimeLeft    int    `json:"timeLeft"`
	EnergyLeft  int    `json:"energyLeft"`
	CompletedAt string `json:"completedAt"`
}

// entryDoc is the stored form. Score may be absent on imported rows.
type entryDoc struct {
	ID          string `json:"id"`
	PlayerName  string `json:"playerName"`
	SceneTitle  string `json:"sceneTitle"`
	SceneID     string `json:"sceneId"`
	Score       *int   `json:"score,omitempty"`
	ItemsFound  int    `json:"itemsFound"`
	TotalItems  int    `json:"totalItems"`
	TimeLeft    int    `json:"timeLeft"`
	EnergyLeft  int    `json:"energyLeft"`
	CompletedAt string `json:"completedAt"`
}

func (d entryDoc) entry() Entry {
	score := hunt.Score(d.ItemsFound, d.TimeLeft, d.EnergyLeft)
	if d.Score != nil {
		score = *d.Score
	}
	return Entry{
		ID:          d.ID,
		PlayerName:  d.PlayerName,
		SceneTitle:  d.SceneTitle,
		SceneID:     d.SceneID,
		Score:       score,
		ItemsFound:  d.ItemsFound,
		TotalItems:  d.TotalItems,
		TimeLeft:    d.TimeLeft,
		EnergyLeft:  d.EnergyLeft,
		CompletedAt: d.CompletedAt,
	}
}

// SubmitResult records a won round.
func (s *Store) SubmitResult(ctx context.Context, res hunt.Result) error {
	score := res.Score
	return s.putEntry(ctx, entryDoc{
		ID:          newID(),
		PlayerName:  res.PlayerName,
		SceneTitle:  res.SceneTitle,
		SceneID:     res.SceneID,
		Score:       &score,
		ItemsFound:  res.ItemsFound,
		TotalItems:  res.TotalItems,
		TimeLeft:    res.TimeLeft,
		EnergyLeft:  res.EnergyLeft,
		CompletedAt: res.CompletedAt.UTC().Format(timeFormat),
	})
}

func (s *Store) putEntry(ctx context.Context, d entryDoc) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO leaderboard (id, scene_id, player_name, score, completed_at, data)
		 VALUES (?, ?, ?, ?, ?, jsonb(?))`,
		d.ID, d.SceneID, d.PlayerName, d.Score, d.CompletedAt, string(data),
	)
	return err
}

// Leaderboard returns the top limit entries by score, across all scenes when
// sceneID is empty. Entries stored without a score rank by their recomputed
// score. Ties go to the earlier completion.
func (s *Store) Leaderboard(ctx context.Context, sceneID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		return []Entry{}, nil
	}

	where, args := "", []any{}
	if sceneID != "" {
		where, args = "scene_id = ? AND ", []any{sceneID}
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT json(data) FROM leaderboard WHERE `+where+`score IS NOT NULL
		 ORDER BY score DESC, completed_at LIMIT ?`,
		append(args, limit)...,
	)
	if err != nil {
		return nil, err
	}
	scored, err := scanDocs[entryDoc](rows)
	if err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT json(data) FROM leaderboard WHERE `+where+`score IS NULL`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	unscored, err := scanDocs[entryDoc](rows)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(scored)+len(unscored))
	for _, d := range append(scored, unscored...) {
		entries = append(entries, d.entry())
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.CompletedAt, b.CompletedAt)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
