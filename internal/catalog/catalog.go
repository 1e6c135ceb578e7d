// Package catalog loads the built-in scenes from YAML.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/playperu/treasurehunt/internal/hunt"
)

// DefaultSceneID is the scene used when a requested scene does not exist
// and the caller asked for a fallback.
const DefaultSceneID = "scene-1"

//go:embed demo_scenes.yaml
var demoScenes []byte

type file struct {
	Scenes []hunt.Scene `yaml:"scenes"`
}

// Demo returns the built-in scenes.
func Demo() ([]hunt.Scene, error) {
	return Parse(demoScenes)
}

// Load reads scenes from path, or the built-in scenes when path is empty.
func Load(path string) ([]hunt.Scene, error) {
	if path == "" {
		return Demo()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scene catalog and validates every scene in it.
func Parse(data []byte) ([]hunt.Scene, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing scene catalog: %w", err)
	}

	seen := make(map[string]bool, len(f.Scenes))
	for i, sc := range f.Scenes {
		if sc.ID == "" {
			return nil, fmt.Errorf("scene %d: id is required", i+1)
		}
		if seen[sc.ID] {
			return nil, fmt.Errorf("scene %d: duplicate id %q", i+1, sc.ID)
		}
		seen[sc.ID] = true
		if err := sc.Validate(); err != nil {
			return nil, fmt.Errorf("scene %q: %w", sc.ID, err)
		}
	}
	return f.Scenes, nil
}
