package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/treasurehunt/internal/handler/health"
	"github.com/playperu/treasurehunt/internal/hunt"
	"github.com/playperu/treasurehunt/internal/round"
	"github.com/playperu/treasurehunt/internal/store"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type sceneIDPath struct {
	SceneID string `path:"sceneID"`
}

type sessionIDPath struct {
	SessionID string `path:"sessionID"`
}

type leaderboardQuery struct {
	SceneID string `query:"sceneId" description:"Only results for this scene."`
	Limit   int    `query:"limit" description:"Maximum number of entries, capped by the server."`
}

type updateSceneOperation struct {
	sceneIDPath
	hunt.Scene
}

type clickOperation struct {
	sessionIDPath
	ClickRequest
}

func newOpenAPISpec() (*openapi3.Spec, error) {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Treasure Hunt API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the hidden-object treasure hunt.")

	var errs []error
	add := func(method, path string, describe func(oc openapi.OperationContext)) {
		oc, err := r.NewOperationContext(method, path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", method, path, err))
			return
		}
		describe(oc)
		if err := r.AddOperation(oc); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", method, path, err))
		}
	}

	// GET /healthz
	add(http.MethodGet, "/healthz", func(oc openapi.OperationContext) {
		oc.SetSummary("Health check")
		oc.SetDescription("Returns the health of backend dependencies and the number of live rounds.")
		oc.AddRespStructure(health.Response{}, openapi.WithHTTPStatus(http.StatusOK))
		oc.AddRespStructure(health.Response{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	})

	// GET /api/scenes
	add(http.MethodGet, "/api/scenes", func(oc openapi.OperationContext) {
		oc.SetSummary("List scenes")
		oc.SetDescription("Returns all scenes, newest first.")
		oc.AddRespStructure([]SceneSummary{}, openapi.WithHTTPStatus(http.StatusOK))
	})

	// POST /api/scenes
	add(http.MethodPost, "/api/scenes", func(oc openapi.OperationContext) {
		oc.SetSummary("Create scene")
		oc.SetDescription("Stores a scene built in the editor. Blank ids are generated.")
		oc.AddReqStructure(hunt.Scene{})
		oc.AddRespStructure(hunt.Scene{}, openapi.WithHTTPStatus(http.StatusCreated))
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	})

	// GET /api/scenes/{sceneID}
	add(http.MethodGet, "/api/scenes/{sceneID}", func(oc openapi.OperationContext) {
		oc.SetSummary("Get scene")
		oc.SetDescription("Returns a scene with its item names and riddles but not their positions.")
		oc.AddReqStructure(sceneIDPath{})
		oc.AddRespStructure(SceneDetail{}, openapi.WithHTTPStatus(http.StatusOK))
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	})

	// PUT /api/scenes/{sceneID}
	add(http.MethodPut, "/api/scenes/{sceneID}", func(oc openapi.OperationContext) {
		oc.SetSummary("Update scene")
		oc.SetDescription("Replaces a scene's title, background and items. Rounds already running keep the scene they started with.")
		oc.AddReqStructure(updateSceneOperation{})
		oc.AddRespStructure(hunt.Scene{}, openapi.WithHTTPStatus(http.StatusOK))
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	})

	// DELETE /api/scenes/{sceneID}
	add(http.MethodDelete, "/api/scenes/{sceneID}", func(oc openapi.OperationContext) {
		oc.SetSummary("Delete scene")
		oc.SetDescription("Removes a scene. Leaderboard entries for it are kept.")
		oc.AddReqStructure(sceneIDPath{})
		oc.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	})

	// POST /api/sessions
	add(http.MethodPost, "/api/sessions", func(oc openapi.OperationContext) {
		oc.SetSummary("Start session")
		oc.SetDescription("Starts a round on a scene. The player name falls back to the X-Player-Name header, then to the anonymous name.")
		oc.AddReqStructure(StartSessionRequest{})
		oc.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	})

	// GET /api/sessions/{sessionID}
	add(http.MethodGet, "/api/sessions/{sessionID}", func(oc openapi.OperationContext) {
		oc.SetSummary("Get session state")
		oc.AddReqStructure(sessionIDPath{})
		oc.AddRespStructure(round.State{}, openapi.WithHTTPStatus(http.StatusOK))
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	})

	// DELETE /api/sessions/{sessionID}
	add(http.MethodDelete, "/api/sessions/{sessionID}", func(oc openapi.OperationContext) {
		oc.SetSummary("Discard session")
		oc.SetDescription("Stops the round clock and forgets the session.")
		oc.AddReqStructure(sessionIDPath{})
		oc.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	})

	// POST /api/sessions/{sessionID}/click
	add(http.MethodPost, "/api/sessions/{sessionID}/click", func(oc openapi.OperationContext) {
		oc.SetSummary("Click")
		oc.SetDescription("Clicks the scene, either in percentages (x, y) or in client pixels with the rendered image rect.")
		oc.AddReqStructure(clickOperation{})
		oc.AddRespStructure(round.Outcome{}, openapi.WithHTTPStatus(http.StatusOK))
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	})

	// POST /api/sessions/{sessionID}/hint
	add(http.MethodPost, "/api/sessions/{sessionID}/hint", func(oc openapi.OperationContext) {
		oc.SetSummary("Use hint")
		oc.SetDescription("Spends energy to reveal one unfound item.")
		oc.AddReqStructure(sessionIDPath{})
		oc.AddRespStructure(round.Outcome{}, openapi.WithHTTPStatus(http.StatusOK))
		oc.AddRespStructure(HintRefusedResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	})

	// POST /api/sessions/{sessionID}/retry
	add(http.MethodPost, "/api/sessions/{sessionID}/retry", func(oc openapi.OperationContext) {
		oc.SetSummary("Retry")
		oc.SetDescription("Discards the session and starts a fresh one on the same scene.")
		oc.AddReqStructure(sessionIDPath{})
		oc.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	})

	// GET /api/sessions/{sessionID}/events
	add(http.MethodGet, "/api/sessions/{sessionID}/events", func(oc openapi.OperationContext) {
		oc.SetSummary("SSE event stream")
		oc.SetDescription("Server-Sent Events stream of the round: the current state, then ticks, finds, misses, hints and the finish.")
		oc.AddReqStructure(sessionIDPath{})
		oc.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	})

	// GET /api/sessions/{sessionID}/ws
	add(http.MethodGet, "/api/sessions/{sessionID}/ws", func(oc openapi.OperationContext) {
		oc.SetSummary("Play socket")
		oc.SetDescription("Upgrades to a WebSocket carrying {t, p} envelopes: click, hint and state from the client; state, event and error from the server.")
		oc.AddReqStructure(sessionIDPath{})
		oc.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("application/json"))
	})

	// GET /api/leaderboard
	add(http.MethodGet, "/api/leaderboard", func(oc openapi.OperationContext) {
		oc.SetSummary("Leaderboard")
		oc.SetDescription("Returns the best results by score.")
		oc.AddReqStructure(leaderboardQuery{})
		oc.AddRespStructure([]store.Entry{}, openapi.WithHTTPStatus(http.StatusOK))
		oc.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	})

	return r.Spec, errors.Join(errs...)
}

// handleOpenAPI renders the document once. A document that cannot be built
// is a programming error and panics at startup.
func handleOpenAPI() http.HandlerFunc {
	spec, err := newOpenAPISpec()
	if err != nil {
		panic(fmt.Sprintf("building openapi document: %v", err))
	}
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		panic(fmt.Sprintf("encoding openapi document: %v", err))
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
