package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/playperu/treasurehunt/internal/round"
)

// Play socket message types.
const (
	MsgClick = "click"
	MsgHint  = "hint"
	MsgState = "state"
	MsgEvent = "event"
	MsgError = "error"
)

// Envelope frames every play socket message.
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p,omitempty"`
}

func envelope(t string, payload any) (Envelope, error) {
	pb, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{T: t, P: pb}, nil
}

// handlePlaySocket drives a round over a WebSocket. The client sends click,
// hint and state messages; the server answers with state and error messages
// and forwards the round's events as they happen.
func handlePlaySocket(logger *slog.Logger, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rd := roundFrom(r)
		logger := logger.With("session", rd.ID)

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Hour)
		defer cancel()

		ch := broker.Subscribe(rd.ID)
		defer broker.Unsubscribe(rd.ID, ch)

		go forwardEvents(ctx, conn, rd, ch, logger)

		if err := send(ctx, conn, rd, nil); err != nil {
			return
		}

		for {
			var env Envelope
			if err := wsjson.Read(ctx, conn, &env); err != nil {
				logger.Debug("websocket read ended", "error", err)
				return
			}
			if err := handlePlayMessage(ctx, conn, rd, env); err != nil {
				logger.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}

func handlePlayMessage(ctx context.Context, conn *websocket.Conn, rd *round.Round, env Envelope) error {
	switch env.T {
	case MsgClick:
		var req ClickRequest
		if err := json.Unmarshal(env.P, &req); err != nil {
			return sendError(ctx, conn, "invalid click payload")
		}
		p, err := req.point()
		if err != nil {
			return sendError(ctx, conn, err.Error())
		}
		if _, err := rd.Click(ctx, p); err != nil {
			return roundClosed(ctx, conn, err)
		}
		return send(ctx, conn, rd, nil)
	case MsgHint:
		_, err := rd.Hint(ctx)
		if isHintRefusal(err) {
			return send(ctx, conn, rd, err)
		}
		if err != nil {
			return roundClosed(ctx, conn, err)
		}
		return send(ctx, conn, rd, nil)
	case MsgState:
		return send(ctx, conn, rd, nil)
	default:
		return sendError(ctx, conn, fmt.Sprintf("unknown message type %q", env.T))
	}
}

// send writes refusal, when set, as an error message followed by the state.
func send(ctx context.Context, conn *websocket.Conn, rd *round.Round, refusal error) error {
	if refusal != nil {
		if err := sendError(ctx, conn, refusal.Error()); err != nil {
			return err
		}
	}
	st, err := rd.State(ctx)
	if err != nil {
		return roundClosed(ctx, conn, err)
	}
	env, err := envelope(MsgState, st)
	if err != nil {
		return err
	}
	return wsjson.Write(ctx, conn, env)
}

func sendError(ctx context.Context, conn *websocket.Conn, msg string) error {
	env, err := envelope(MsgError, ErrorResponse{Error: msg})
	if err != nil {
		return err
	}
	return wsjson.Write(ctx, conn, env)
}

// roundClosed closes the socket when the round is gone, and passes other
// errors through.
func roundClosed(ctx context.Context, conn *websocket.Conn, err error) error {
	if errors.Is(err, round.ErrRoundClosed) {
		sendError(ctx, conn, "session closed")
		conn.Close(websocket.StatusGoingAway, "session closed")
	}
	return err
}

func forwardEvents(ctx context.Context, conn *websocket.Conn, rd *round.Round, ch chan message, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-rd.Done():
			drain(ch, func(msg message) { writeEventEnvelope(ctx, conn, msg, logger) })
			conn.Close(websocket.StatusGoingAway, "session closed")
			return
		case msg := <-ch:
			if !writeEventEnvelope(ctx, conn, msg, logger) {
				return
			}
		}
	}
}

func writeEventEnvelope(ctx context.Context, conn *websocket.Conn, msg message, logger *slog.Logger) bool {
	if err := wsjson.Write(ctx, conn, Envelope{T: MsgEvent, P: msg.Data}); err != nil {
		logger.Debug("websocket event write failed", "error", err)
		return false
	}
	return true
}
