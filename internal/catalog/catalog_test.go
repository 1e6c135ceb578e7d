package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/playperu/treasurehunt/internal/hunt"
)

func TestDemo(t *testing.T) {
	scenes, err := Demo()
	if err != nil {
		t.Fatalf("demo: %v", err)
	}

	want := []string{"scene-1", "scene-2", "scene-3"}
	if len(scenes) != len(want) {
		t.Fatalf("got %d scenes, want %d", len(scenes), len(want))
	}
	for i, id := range want {
		if scenes[i].ID != id {
			t.Errorf("scene %d id = %q, want %q", i, scenes[i].ID, id)
		}
		if len(scenes[i].Items) != 3 {
			t.Errorf("scene %q has %d items, want 3", id, len(scenes[i].Items))
		}
	}
	if scenes[0].ID != DefaultSceneID {
		t.Errorf("first scene = %q, want the default", scenes[0].ID)
	}

	gem := scenes[0].Items[0]
	if gem.ID != "gem-1" || gem.X != 30 || gem.Y != 45 || gem.Width != 12 || gem.Height != 12 {
		t.Errorf("gem-1 = %+v", gem)
	}
	if !gem.Contains(hunt.Point{X: 36, Y: 51}) {
		t.Error("gem-1 does not contain its centre")
	}
	if hunt.TotalTime(len(scenes[1].Items)) != 90 {
		t.Errorf("three-item scene total time = %d", hunt.TotalTime(len(scenes[1].Items)))
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenes.yaml")
	body := `
scenes:
  - id: attic
    title: Dusty Attic
    background_url: attic.png
    items:
      - {id: key, name: Key, riddle: I open doors., x: 10, y: 10, width: 5, height: 5}
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	scenes, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(scenes) != 1 || scenes[0].BackgroundRef != "attic.png" || scenes[0].Items[0].Width != 5 {
		t.Errorf("scenes = %+v", scenes)
	}
}

func TestLoadEmptyPathUsesDemo(t *testing.T) {
	scenes, err := Load("")
	if err != nil || len(scenes) != 3 {
		t.Errorf("Load(\"\") = %d scenes, %v", len(scenes), err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad yaml", "scenes: [", "parsing scene catalog"},
		{"missing id", "scenes:\n  - title: x\n", "scene 1: id is required"},
		{
			"duplicate id",
			"scenes:\n  - {id: a, title: t, background_url: b, items: [{id: i, name: n, riddle: r}]}\n" +
				"  - {id: a, title: t, background_url: b, items: [{id: i, name: n, riddle: r}]}\n",
			`scene 2: duplicate id "a"`,
		},
		{"invalid scene", "scenes:\n  - {id: a, title: t, background_url: b}\n", "at least one item is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}
