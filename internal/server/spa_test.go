package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHandleSPA(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>hunt</html>"), 0o644)
	os.MkdirAll(filepath.Join(dir, "assets"), 0o755)
	os.WriteFile(filepath.Join(dir, "assets", "scene1.png"), []byte("png"), 0o644)

	h := handleSPA(dir)

	tests := []struct {
		path string
		want string
	}{
		{"/assets/scene1.png", "png"},
		{"/play/scene-1", "<html>hunt</html>"},
		{"/", "<html>hunt</html>"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), tt.want) {
			t.Errorf("%s = %d %q, want %q", tt.path, rec.Code, rec.Body.String(), tt.want)
		}
	}
}
