package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAPISpecBuilds(t *testing.T) {
	spec, err := newOpenAPISpec()
	if err != nil {
		t.Fatalf("building spec: %v", err)
	}

	scene := spec.Paths.MapOfPathItemValues["/api/scenes/{sceneID}"]
	for _, method := range []string{"get", "put", "delete"} {
		if _, ok := scene.MapOfOperationValues[method]; !ok {
			t.Errorf("/api/scenes/{sceneID} missing %s operation", method)
		}
	}
}

func TestHandleOpenAPI(t *testing.T) {
	h := handleOpenAPI()
	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	rec := httptest.NewRecorder()

	h(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "application/json") {
		t.Fatalf("content-type = %q, want application/json", got)
	}

	body := rec.Body.String()
	if !strings.Contains(body, `"openapi": "3.0.3"`) {
		t.Fatalf("body missing openapi version")
	}
	for _, path := range []string{
		`"/healthz"`,
		`"/api/scenes"`,
		`"/api/scenes/{sceneID}"`,
		`"/api/sessions"`,
		`"/api/sessions/{sessionID}/click"`,
		`"/api/sessions/{sessionID}/hint"`,
		`"/api/sessions/{sessionID}/events"`,
		`"/api/sessions/{sessionID}/ws"`,
		`"/api/leaderboard"`,
	} {
		if !strings.Contains(body, path) {
			t.Errorf("body missing %s path", path)
		}
	}
}

func TestSwaggerUI(t *testing.T) {
	e := newTestEnv(t)

	resp, err := e.srv.Client().Get(e.srv.URL + "/docs/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if got := resp.Header.Get("Content-Type"); !strings.Contains(got, "text/html") {
		t.Fatalf("content-type = %q, want text/html", got)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "SwaggerUIBundle") {
		t.Fatalf("body missing SwaggerUIBundle")
	}
	if !strings.Contains(string(body), "/openapi.json") {
		t.Fatalf("body missing /openapi.json")
	}
}
