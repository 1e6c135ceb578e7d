package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/playperu/treasurehunt/internal/hunt"
	"github.com/playperu/treasurehunt/internal/round"
)

type sseEvent struct {
	name string
	data string
}

// readEvent reads the next named event, skipping comments.
func readEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			ev.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			ev.data = strings.TrimPrefix(line, "data: ")
		case line == "" && ev.name != "":
			return ev
		}
	}
}

func TestEventStream(t *testing.T) {
	e := newTestEnv(t)
	s := e.start(t, "scene-1")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, e.srv.URL+"/api/sessions/"+s.ID+"/events", nil)
	resp, err := e.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("content-type = %q", got)
	}
	r := bufio.NewReader(resp.Body)

	first := readEvent(t, r)
	if first.name != "state" {
		t.Fatalf("first event = %q, want state", first.name)
	}
	var st round.State
	if err := json.Unmarshal([]byte(first.data), &st); err != nil || st.ID != s.ID {
		t.Fatalf("state = %+v, %v", st, err)
	}

	e.click(t, s.ID, gemCentre.X, gemCentre.Y)
	ev := readEvent(t, r)
	if ev.name != string(hunt.EventItemFound) {
		t.Fatalf("event = %q, want item_found", ev.name)
	}
	var found hunt.Event
	if err := json.Unmarshal([]byte(ev.data), &found); err != nil || found.ItemID != "gem-1" {
		t.Errorf("item_found = %+v, %v", found, err)
	}

	if code := e.do(t, http.MethodDelete, "/api/sessions/"+s.ID, nil, nil); code != http.StatusNoContent {
		t.Fatalf("discard status = %d", code)
	}
	if ev := readEvent(t, r); ev.name != "closed" {
		t.Errorf("event after discard = %q, want closed", ev.name)
	}
}

func TestEventStreamFlushesBeforeClosed(t *testing.T) {
	e := newTestEnv(t)

	for i := range 10 {
		s := e.start(t, "scene-1")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, e.srv.URL+"/api/sessions/"+s.ID+"/events", nil)
		resp, err := e.srv.Client().Do(req)
		if err != nil {
			cancel()
			t.Fatalf("connecting: %v", err)
		}
		r := bufio.NewReader(resp.Body)
		readEvent(t, r) // state

		// Both events are buffered for the stream before the round stops.
		e.broker.Publish(s.ID, hunt.Event{Type: hunt.EventMiss, Energy: 19})
		e.broker.Publish(s.ID, hunt.Event{Type: hunt.EventMiss, Energy: 18})
		if code := e.do(t, http.MethodDelete, "/api/sessions/"+s.ID, nil, nil); code != http.StatusNoContent {
			t.Fatalf("discard status = %d", code)
		}

		var got []string
		for _, want := range []string{"miss", "miss", "closed"} {
			ev := readEvent(t, r)
			got = append(got, ev.name)
			if ev.name != want {
				t.Fatalf("run %d: events = %v, want [miss miss closed]", i, got)
			}
		}
		resp.Body.Close()
		cancel()
	}
}
