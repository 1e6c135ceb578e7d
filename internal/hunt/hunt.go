// Package hunt implements the round engine of the hidden-object game: session
// state, clock ticks, hit testing, hints and scoring.
// It has zero external dependencies and performs no I/O.
package hunt

import "errors"

const (
	MaxEnergy      = 20
	HintCost       = 5
	MissPenalty    = 1
	SecondsPerItem = 30
	MinTotalTime   = 90 // seconds, floor for small scenes

	PointsPerItem   = 100
	PointsPerSecond = 5
	PointsPerEnergy = 10
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
)

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusLost
}

// Hint refusals. They describe why a hint was not granted; the session is
// left untouched whenever one is returned.
var (
	ErrGameOver        = errors.New("game is over")
	ErrNotEnoughEnergy = errors.New("not enough energy")
	ErrAllFound        = errors.New("all items found")
)

type EventType string

const (
	EventTick           EventType = "tick"
	EventItemFound      EventType = "item_found"
	EventMiss           EventType = "miss"
	EventHint           EventType = "hint"
	EventWon            EventType = "won"
	EventTimeExpired    EventType = "time_expired"
	EventEnergyDepleted EventType = "energy_depleted"
)

// Event describes one thing that happened during a transition.
type Event struct {
	Type          EventType `json:"type"`
	ItemID        string    `json:"itemId,omitempty"`
	ItemName      string    `json:"itemName,omitempty"`
	Energy        int       `json:"energy"`
	TimeRemaining int       `json:"timeRemaining"`
}

// Rand is the random source used for riddle and hint selection.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// TotalTime returns the round length in seconds for a scene with itemCount items.
func TotalTime(itemCount int) int {
	return max(itemCount*SecondsPerItem, MinTotalTime)
}

// Score is the ranking formula shared by finished rounds and leaderboard entries.
func Score(itemsFound, timeRemaining, energyRemaining int) int {
	return itemsFound*PointsPerItem + timeRemaining*PointsPerSecond + energyRemaining*PointsPerEnergy
}
