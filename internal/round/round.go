package round

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/playperu/treasurehunt/internal/hunt"
)

// Options configures rounds created by a Manager.
type Options struct {
	TickEvery     time.Duration
	NewTicker     TickerFunc
	NewRand       func() hunt.Rand
	Sink          ResultSink
	Publisher     Publisher
	Logger        *slog.Logger
	Now           func() time.Time
	SubmitTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.TickEvery <= 0 {
		o.TickEvery = time.Second
	}
	if o.NewTicker == nil {
		o.NewTicker = NewTimeTicker
	}
	if o.NewRand == nil {
		o.NewRand = func() hunt.Rand { return nil }
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.SubmitTimeout <= 0 {
		o.SubmitTimeout = 10 * time.Second
	}
	return o
}

// Round hosts one session. Ticks, clicks, hints and reads are serialized
// through Run; the clock lives exactly as long as the session is in progress
// and the round has not been stopped.
type Round struct {
	ID         string
	PlayerName string
	scene      hunt.Scene
	startedAt  time.Time
	totalTime  time.Duration

	inbox    chan any
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	finished atomic.Int64 // unix nanos of the terminal transition, 0 while playing

	opts   Options
	logger *slog.Logger

	// Owned by Run.
	session    *hunt.Session
	submission Submission
}

func newRound(id string, scene hunt.Scene, playerName string, opts Options) *Round {
	opts = opts.withDefaults()
	s := hunt.Start(scene, opts.NewRand())
	return &Round{
		ID:         id,
		PlayerName: playerName,
		scene:      s.Scene(),
		startedAt:  opts.Now(),
		totalTime:  time.Duration(s.TotalTime()) * opts.TickEvery,
		inbox:      make(chan any, 64),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		opts:       opts,
		logger:     opts.Logger.With("session", id),
		session:    s,
		submission: SubmissionNone,
	}
}

// Scene returns the scene the round was started with.
func (r *Round) Scene() hunt.Scene { return r.scene }

// Done is closed once Run has returned.
func (r *Round) Done() <-chan struct{} { return r.done }

// Stop discards the round. It is safe to call more than once.
func (r *Round) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

func (r *Round) Run() {
	defer close(r.done)

	r.logger.Info("round started",
		"scene", r.scene.ID,
		"player", r.PlayerName,
		"items", len(r.scene.Items),
		"total_time", r.session.TotalTime(),
	)

	ticker := r.opts.NewTicker(r.opts.TickEvery)
	tickC := ticker.C()
	stopClock := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			tickC = nil
		}
	}
	defer stopClock()

	for {
		select {
		case <-r.quit:
			r.logger.Info("round discarded", "status", r.session.Status())
			return
		case cmd := <-r.inbox:
			r.handleCommand(cmd)
		case <-tickC:
			r.apply(r.session.Tick())
		}
		if r.session.Status().Terminal() {
			stopClock()
		}
	}
}

func (r *Round) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case clickCmd:
		events := r.apply(r.session.Click(c.point))
		c.reply <- Outcome{State: r.state(), Events: nonNil(events)}
	case hintCmd:
		events, err := r.session.UseHint()
		events = r.apply(events)
		c.reply <- hintReply{out: Outcome{State: r.state(), Events: nonNil(events)}, err: err}
	case stateCmd:
		c.reply <- r.state()
	case submittedCmd:
		ev := hunt.Event{Type: EventSubmitted, Energy: r.session.Energy(), TimeRemaining: r.session.TimeRemaining()}
		if c.err != nil {
			r.submission = SubmissionFailed
			ev.Type = EventSubmissionFailed
			r.logger.Error("result submission failed", "error", c.err)
		} else {
			r.submission = SubmissionSubmitted
			r.logger.Info("result submitted", "score", r.session.Score())
		}
		r.publish(ev)
	}
}

// apply publishes the events of one transition and, when the transition
// ended the round, records the finish and submits a win.
func (r *Round) apply(events []hunt.Event) []hunt.Event {
	for _, ev := range events {
		r.publish(ev)
	}
	if len(events) == 0 || !r.session.Status().Terminal() || r.finished.Load() != 0 {
		return events
	}

	r.finished.Store(r.opts.Now().UnixNano())
	last := events[len(events)-1]
	r.logger.Info("round finished",
		"status", r.session.Status(),
		"reason", last.Type,
		"score", r.session.Score(),
		"items_found", r.session.ItemsFound(),
	)

	if r.opts.Sink != nil && r.session.ClaimSubmission() {
		r.submit(r.session.Result(r.PlayerName, r.opts.Now()))
	}
	return events
}

// submit hands res to the sink without blocking the loop. The outcome comes
// back through the inbox.
func (r *Round) submit(res hunt.Result) {
	r.submission = SubmissionPending
	sink, timeout := r.opts.Sink, r.opts.SubmitTimeout
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := sink.SubmitResult(ctx, res)
		select {
		case r.inbox <- submittedCmd{err: err}:
		case <-r.done:
		}
	}()
}

func (r *Round) publish(ev hunt.Event) {
	if r.opts.Publisher != nil {
		r.opts.Publisher.Publish(r.ID, ev)
	}
}

func (r *Round) state() State {
	return State{
		ID:         r.ID,
		PlayerName: r.PlayerName,
		State:      r.session.State(),
		Submission: r.submission,
	}
}

// Click forwards a click in percentage space.
func (r *Round) Click(ctx context.Context, p hunt.Point) (Outcome, error) {
	reply := make(chan Outcome, 1)
	if err := r.send(ctx, clickCmd{point: p, reply: reply}); err != nil {
		return Outcome{}, err
	}
	return receive(ctx, r.done, reply)
}

// Hint requests a hint. A refusal is returned as one of the hunt hint errors
// together with the unchanged state.
func (r *Round) Hint(ctx context.Context) (Outcome, error) {
	reply := make(chan hintReply, 1)
	if err := r.send(ctx, hintCmd{reply: reply}); err != nil {
		return Outcome{}, err
	}
	hr, err := receive(ctx, r.done, reply)
	if err != nil {
		return Outcome{}, err
	}
	return hr.out, hr.err
}

// State returns a snapshot of the round.
func (r *Round) State(ctx context.Context) (State, error) {
	reply := make(chan State, 1)
	if err := r.send(ctx, stateCmd{reply: reply}); err != nil {
		return State{}, err
	}
	return receive(ctx, r.done, reply)
}

func (r *Round) send(ctx context.Context, cmd any) error {
	select {
	case r.inbox <- cmd:
		return nil
	case <-r.done:
		return ErrRoundClosed
	case <-r.quit:
		return ErrRoundClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func receive[T any](ctx context.Context, done <-chan struct{}, reply <-chan T) (T, error) {
	var zero T
	select {
	case v := <-reply:
		return v, nil
	case <-done:
		// Run may have replied just before returning.
		select {
		case v := <-reply:
			return v, nil
		default:
		}
		return zero, ErrRoundClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// finishedAt returns when the round ended, or the zero time while in progress.
func (r *Round) finishedAt() time.Time {
	n := r.finished.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

func nonNil(events []hunt.Event) []hunt.Event {
	if events == nil {
		return []hunt.Event{}
	}
	return events
}
