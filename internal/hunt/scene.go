package hunt

import (
	"fmt"
	"strings"
)

// Scene is the immutable input to a session: a background image plus the
// items hidden in it. Item order decides which item wins an overlapping click.
type Scene struct {
	ID            string       `json:"id" yaml:"id"`
	Title         string       `json:"title" yaml:"title"`
	BackgroundRef string       `json:"backgroundUrl" yaml:"background_url"`
	Items         []HiddenItem `json:"items" yaml:"items"`
}

// HiddenItem is one findable object. Coordinates are percentages of the
// image width and height.
type HiddenItem struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Riddle string  `json:"riddle" yaml:"riddle"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Box is the bounding box of an item, used for found markers and hint glow.
type Box struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Point is a click position in percentage space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is the rendered image's bounding box in client pixels.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies inside the item's box, bounds inclusive.
// Zero or negative sized boxes never match.
func (it HiddenItem) Contains(p Point) bool {
	if it.Width <= 0 || it.Height <= 0 {
		return false
	}
	return p.X >= it.X && p.X <= it.X+it.Width &&
		p.Y >= it.Y && p.Y <= it.Y+it.Height
}

func (it HiddenItem) Box() Box {
	return Box{ID: it.ID, Name: it.Name, X: it.X, Y: it.Y, Width: it.Width, Height: it.Height}
}

// PointFromPixels converts a client click into percentage space relative to
// the rendered image. ok is false when no image has been rendered yet.
func PointFromPixels(clientX, clientY float64, rect Rect) (p Point, ok bool) {
	if rect.Width <= 0 || rect.Height <= 0 {
		return Point{}, false
	}
	return Point{
		X: (clientX - rect.Left) / rect.Width * 100,
		Y: (clientY - rect.Top) / rect.Height * 100,
	}, true
}

// Validate checks what a scene producer is responsible for: a title, a
// background and at least one item, each with a unique id, a name and a riddle.
func (sc Scene) Validate() error {
	if strings.TrimSpace(sc.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(sc.BackgroundRef) == "" {
		return fmt.Errorf("background is required")
	}
	if len(sc.Items) == 0 {
		return fmt.Errorf("at least one item is required")
	}
	seen := make(map[string]struct{}, len(sc.Items))
	for i, it := range sc.Items {
		if strings.TrimSpace(it.ID) == "" {
			return fmt.Errorf("item %d: id is required", i+1)
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("item %d: duplicate id %q", i+1, it.ID)
		}
		seen[it.ID] = struct{}{}
		if strings.TrimSpace(it.Name) == "" {
			return fmt.Errorf("item %d: name is required", i+1)
		}
		if strings.TrimSpace(it.Riddle) == "" {
			return fmt.Errorf("item %d: riddle is required", i+1)
		}
	}
	return nil
}
