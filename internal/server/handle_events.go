package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// handleEvents streams a session's events. The stream opens with the current
// state and ends with a closed event when the round is discarded.
func handleEvents(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rd := roundFrom(r)

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		ch := broker.Subscribe(rd.ID)
		defer broker.Unsubscribe(rd.ID, ch)

		st, err := rd.State(r.Context())
		if err != nil {
			writeRoundError(w, err)
			return
		}
		data, _ := json.Marshal(st)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
		flusher.Flush()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-rd.Done():
				drain(ch, func(msg message) { writeEvent(w, msg) })
				fmt.Fprintf(w, "event: closed\ndata: {}\n\n")
				flusher.Flush()
				return
			case msg := <-ch:
				writeEvent(w, msg)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, msg message) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Type, msg.Data)
}
