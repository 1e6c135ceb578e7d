package server

import (
	"encoding/json"
	"sync"

	"github.com/playperu/treasurehunt/internal/hunt"
)

// message is one encoded event ready for a stream.
type message struct {
	Type hunt.EventType
	Data []byte
}

// Broker is an in-process pub/sub for round events, keyed by session ID.
// It implements round.Publisher.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan message]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan message]struct{}),
	}
}

// Subscribe returns a channel that receives the events of the given session.
func (b *Broker) Subscribe(sessionID string) chan message {
	ch := make(chan message, 16)
	b.mu.Lock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[chan message]struct{})
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the session's subscribers.
func (b *Broker) Unsubscribe(sessionID string, ch chan message) {
	b.mu.Lock()
	delete(b.subs[sessionID], ch)
	if len(b.subs[sessionID]) == 0 {
		delete(b.subs, sessionID)
	}
	b.mu.Unlock()
}

// Subscribers reports how many streams follow the session.
func (b *Broker) Subscribers(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[sessionID])
}

// Publish sends an event to all subscribers of the given session.
func (b *Broker) Publish(sessionID string, ev hunt.Event) {
	data, _ := json.Marshal(ev)
	msg := message{Type: ev.Type, Data: data}

	b.mu.RLock()
	for ch := range b.subs[sessionID] {
		select {
		case ch <- msg:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}

// drain hands fn every message already buffered in ch without blocking.
func drain(ch chan message, fn func(message)) {
	for {
		select {
		case msg := <-ch:
			fn(msg)
		default:
			return
		}
	}
}
