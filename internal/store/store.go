// Package store persists scenes and leaderboard entries as JSONB documents
// in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrInvalidScene = errors.New("invalid scene")
)

const timeFormat = "2006-01-02T15:04:05.000Z"

// Store reads and writes the tables created by the migrations package.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// get loads the document with id from table into dest.
func (s *Store) get(ctx context.Context, table, id string, dest any) error {
	var data string
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT json(data) FROM %s WHERE id = ?`, table), id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

// scanDocs decodes one JSON document per row.
func scanDocs[T any](rows *sql.Rows) ([]T, error) {
	defer rows.Close()

	var docs []T
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var d T
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *Store) nowUTC() string {
	return s.now().UTC().Format(timeFormat)
}

func newID() string {
	return uuid.NewString()
}
