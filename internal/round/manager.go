package round

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/treasurehunt/internal/hunt"
)

// Manager holds the live rounds by id. Rounds run until discarded, retried,
// swept after their TTL, or the manager is closed.
type Manager struct {
	mu     sync.RWMutex
	rounds map[string]*Round
	opts   Options
	ttl    time.Duration
}

func NewManager(opts Options, ttl time.Duration) *Manager {
	return &Manager{
		rounds: make(map[string]*Round),
		opts:   opts.withDefaults(),
		ttl:    ttl,
	}
}

// Start creates a round for scene and starts its clock.
func (m *Manager) Start(scene hunt.Scene, playerName string) *Round {
	r := newRound(uuid.NewString(), scene, playerName, m.opts)

	m.mu.Lock()
	m.rounds[r.ID] = r
	m.mu.Unlock()

	go r.Run()
	return r
}

func (m *Manager) Get(id string) (*Round, error) {
	m.mu.RLock()
	r, ok := m.rounds[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

// Discard stops the round and forgets it.
func (m *Manager) Discard(id string) error {
	m.mu.Lock()
	r, ok := m.rounds[id]
	delete(m.rounds, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	r.Stop()
	return nil
}

// Retry discards the round and starts a fresh one on the same scene for the
// same player.
func (m *Manager) Retry(id string) (*Round, error) {
	old, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if err := m.Discard(id); err != nil {
		return nil, err
	}
	return m.Start(old.Scene(), old.PlayerName), nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rounds)
}

// Sweep discards rounds that finished more than the TTL ago, and rounds whose
// clock should have run out more than the TTL ago. It returns how many
// rounds were removed.
func (m *Manager) Sweep(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}

	m.mu.Lock()
	var expired []*Round
	for id, r := range m.rounds {
		if r.expired(now, m.ttl) {
			expired = append(expired, r)
			delete(m.rounds, id)
		}
	}
	m.mu.Unlock()

	for _, r := range expired {
		r.Stop()
	}
	if len(expired) > 0 {
		m.opts.Logger.Info("swept rounds", "count", len(expired), "remaining", m.Len())
	}
	return len(expired)
}

func (r *Round) expired(now time.Time, ttl time.Duration) bool {
	if fin := r.finishedAt(); !fin.IsZero() {
		return now.Sub(fin) > ttl
	}
	return now.Sub(r.startedAt) > r.totalTime+ttl
}

// Run sweeps every interval until ctx is done, then closes all rounds.
func (m *Manager) Run(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Close()
			return nil
		case <-ticker.C:
			m.Sweep(m.opts.Now())
		}
	}
}

// Close stops every round.
func (m *Manager) Close() {
	m.mu.Lock()
	rounds := m.rounds
	m.rounds = make(map[string]*Round)
	m.mu.Unlock()

	for _, r := range rounds {
		r.Stop()
	}
}
