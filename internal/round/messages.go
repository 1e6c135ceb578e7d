package round

import (
	"context"
	"errors"

	"github.com/playperu/treasurehunt/internal/hunt"
)

var (
	ErrRoundClosed = errors.New("round closed")
	ErrNotFound    = errors.New("round not found")
)

// Events emitted by the host in addition to the engine's own.
const (
	EventSubmitted        hunt.EventType = "submitted"
	EventSubmissionFailed hunt.EventType = "submission_failed"
)

// ResultSink accepts the result of a won round.
type ResultSink interface {
	SubmitResult(ctx context.Context, res hunt.Result) error
}

// Publisher fans events out to subscribers of a session.
type Publisher interface {
	Publish(sessionID string, ev hunt.Event)
}

type Submission string

const (
	SubmissionNone      Submission = "none"
	SubmissionPending   Submission = "pending"
	SubmissionSubmitted Submission = "submitted"
	SubmissionFailed    Submission = "failed"
)

// State is what a client sees of a round.
type State struct {
	ID         string `json:"id"`
	PlayerName string `json:"playerName"`
	hunt.State
	Submission Submission `json:"submission"`
}

// Outcome is the result of one player action.
type Outcome struct {
	State  State        `json:"state"`
	Events []hunt.Event `json:"events"`
}

// Inbox commands, handled one at a time by Round.Run.

type clickCmd struct {
	point hunt.Point
	reply chan<- Outcome
}

type hintCmd struct {
	reply chan<- hintReply
}

type hintReply struct {
	out Outcome
	err error
}

type stateCmd struct {
	reply chan<- State
}

type submittedCmd struct {
	err error
}
