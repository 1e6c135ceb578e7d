package hunt

import (
	"math/rand/v2"
	"slices"
	"time"
)

// Session is the mutable state of one round. It is not safe for concurrent
// use; the caller serializes Tick, Click and UseHint.
type Session struct {
	scene Scene
	rng   Rand

	found         map[string]struct{}
	energy        int
	timeRemaining int
	totalTime     int
	hinted        string
	status        Status
	riddle        string

	submitted bool
}

// Start creates a fresh session for scene. A scene without items can never
// be won; it runs until the clock expires. A nil rng uses the global source.
func Start(scene Scene, rng Rand) *Session {
	if rng == nil {
		rng = globalRand{}
	}
	scene.Items = slices.Clone(scene.Items)
	total := TotalTime(len(scene.Items))
	s := &Session{
		scene:         scene,
		rng:           rng,
		found:         make(map[string]struct{}, len(scene.Items)),
		energy:        MaxEnergy,
		timeRemaining: total,
		totalTime:     total,
		status:        StatusInProgress,
	}
	s.pickRiddle()
	return s
}

func (s *Session) Scene() Scene          { return s.scene }
func (s *Session) Status() Status        { return s.status }
func (s *Session) Energy() int           { return s.energy }
func (s *Session) TimeRemaining() int    { return s.timeRemaining }
func (s *Session) TotalTime() int        { return s.totalTime }
func (s *Session) HintedItemID() string  { return s.hinted }
func (s *Session) CurrentRiddle() string { return s.riddle }
func (s *Session) ItemsFound() int       { return len(s.found) }

// IsFound reports whether the item with id has been discovered.
func (s *Session) IsFound(id string) bool {
	_, ok := s.found[id]
	return ok
}

// Score applies the scoring formula to the current state.
func (s *Session) Score() int {
	return Score(len(s.found), s.timeRemaining, s.energy)
}

// Tick advances the clock by one second. Reaching zero loses the round.
// Ticks after the round is over change nothing and return no events.
func (s *Session) Tick() []Event {
	if s.status != StatusInProgress {
		return nil
	}
	s.timeRemaining = max(s.timeRemaining-1, 0)
	events := []Event{s.event(EventTick, nil)}
	if s.timeRemaining == 0 {
		s.status = StatusLost
		events = append(events, s.event(EventTimeExpired, nil))
	}
	return events
}

// Click resolves a click against the unfound items in declaration order.
// The first box containing p is found; otherwise the click is a miss and
// costs energy. Clicks after the round is over are ignored.
func (s *Session) Click(p Point) []Event {
	if s.status != StatusInProgress {
		return nil
	}

	for i := range s.scene.Items {
		it := &s.scene.Items[i]
		if s.IsFound(it.ID) || !it.Contains(p) {
			continue
		}
		return s.markFound(it)
	}

	s.energy = max(s.energy-MissPenalty, 0)
	events := []Event{s.event(EventMiss, nil)}
	if s.energy == 0 {
		s.status = StatusLost
		events = append(events, s.event(EventEnergyDepleted, nil))
	}
	return events
}

func (s *Session) markFound(it *HiddenItem) []Event {
	s.found[it.ID] = struct{}{}
	if s.hinted == it.ID {
		s.hinted = ""
	}
	s.pickRiddle()

	events := []Event{s.event(EventItemFound, it)}
	if len(s.scene.Items) > 0 && len(s.found) == len(s.scene.Items) {
		s.status = StatusWon
		events = append(events, s.event(EventWon, nil))
	}
	return events
}

// UseHint spends HintCost energy to flag one random unfound item. When the
// round cannot give a hint it returns the reason and changes nothing.
func (s *Session) UseHint() ([]Event, error) {
	if s.status != StatusInProgress {
		return nil, ErrGameOver
	}
	unfound := s.unfound()
	if len(unfound) == 0 {
		return nil, ErrAllFound
	}
	if s.energy < HintCost {
		return nil, ErrNotEnoughEnergy
	}

	it := unfound[s.rng.IntN(len(unfound))]
	s.hinted = it.ID
	s.energy = max(s.energy-HintCost, 0)

	events := []Event{s.event(EventHint, it)}
	if s.energy == 0 {
		s.status = StatusLost
		events = append(events, s.event(EventEnergyDepleted, nil))
	}
	return events, nil
}

// HintAvailable reports whether UseHint would currently succeed.
func (s *Session) HintAvailable() bool {
	return s.status == StatusInProgress && s.energy >= HintCost && len(s.found) < len(s.scene.Items)
}

// ClaimSubmission reports whether the caller may submit this round's result.
// It returns true at most once per session, and only for a won round.
func (s *Session) ClaimSubmission() bool {
	if s.status != StatusWon || s.submitted {
		return false
	}
	s.submitted = true
	return true
}

// Result builds the leaderboard record for the current state.
func (s *Session) Result(playerName string, completedAt time.Time) Result {
	return Result{
		PlayerName:  playerName,
		SceneTitle:  s.scene.Title,
		SceneID:     s.scene.ID,
		Score:       s.Score(),
		ItemsFound:  len(s.found),
		TotalItems:  len(s.scene.Items),
		TimeLeft:    s.timeRemaining,
		EnergyLeft:  s.energy,
		CompletedAt: completedAt.UTC(),
	}
}

func (s *Session) unfound() []*HiddenItem {
	var out []*HiddenItem
	for i := range s.scene.Items {
		if !s.IsFound(s.scene.Items[i].ID) {
			out = append(out, &s.scene.Items[i])
		}
	}
	return out
}

// pickRiddle shows the riddle of a random unfound item, or nothing once all
// items are found.
func (s *Session) pickRiddle() {
	unfound := s.unfound()
	if len(unfound) == 0 {
		s.riddle = ""
		return
	}
	s.riddle = unfound[s.rng.IntN(len(unfound))].Riddle
}

func (s *Session) event(t EventType, it *HiddenItem) Event {
	e := Event{Type: t, Energy: s.energy, TimeRemaining: s.timeRemaining}
	if it != nil {
		e.ItemID = it.ID
		e.ItemName = it.Name
	}
	return e
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }
