package hunt

import (
	"strings"
	"testing"
)

func TestScore(t *testing.T) {
	tests := []struct {
		found, time, energy int
		want                int
	}{
		{3, 45, 15, 675},
		{0, 0, 0, 0},
		{1, 0, 0, 100},
		{0, 1, 0, 5},
		{0, 0, 1, 10},
		{3, 30, 12, 570},
	}
	for _, tt := range tests {
		if got := Score(tt.found, tt.time, tt.energy); got != tt.want {
			t.Errorf("Score(%d, %d, %d) = %d, want %d", tt.found, tt.time, tt.energy, got, tt.want)
		}
	}
}

func TestPointFromPixels(t *testing.T) {
	rect := Rect{Left: 100, Top: 50, Width: 800, Height: 400}

	p, ok := PointFromPixels(500, 150, rect)
	if !ok {
		t.Fatal("ok = false for rendered image")
	}
	if p.X != 50 || p.Y != 25 {
		t.Errorf("point = %+v, want {50 25}", p)
	}

	if _, ok := PointFromPixels(10, 10, Rect{}); ok {
		t.Error("ok = true for unrendered image")
	}
}

func TestContains(t *testing.T) {
	tests := []struct {
		name string
		item HiddenItem
		p    Point
		want bool
	}{
		{"inside", HiddenItem{X: 10, Y: 10, Width: 5, Height: 5}, Point{12, 12}, true},
		{"top-left corner", HiddenItem{X: 10, Y: 10, Width: 5, Height: 5}, Point{10, 10}, true},
		{"bottom-right corner", HiddenItem{X: 10, Y: 10, Width: 5, Height: 5}, Point{15, 15}, true},
		{"just outside", HiddenItem{X: 10, Y: 10, Width: 5, Height: 5}, Point{15.01, 12}, false},
		{"point box", HiddenItem{X: 10, Y: 10}, Point{10, 10}, false},
		{"zero width on its line", HiddenItem{X: 10, Y: 10, Width: 0, Height: 5}, Point{10, 12}, false},
		{"zero height on its line", HiddenItem{X: 10, Y: 10, Width: 5, Height: 0}, Point{12, 10}, false},
		{"negative width", HiddenItem{X: 10, Y: 10, Width: -5, Height: 5}, Point{8, 12}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%+v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestSceneValidate(t *testing.T) {
	valid := func() Scene { return templeScene() }

	tests := []struct {
		name    string
		mutate  func(*Scene)
		wantErr string
	}{
		{"valid", func(*Scene) {}, ""},
		{"no title", func(s *Scene) { s.Title = "  " }, "title is required"},
		{"no background", func(s *Scene) { s.BackgroundRef = "" }, "background is required"},
		{"no items", func(s *Scene) { s.Items = nil }, "at least one item"},
		{"blank id", func(s *Scene) { s.Items[1].ID = "" }, "item 2: id is required"},
		{"duplicate id", func(s *Scene) { s.Items[2].ID = "gem-1" }, "duplicate id"},
		{"no name", func(s *Scene) { s.Items[0].Name = "" }, "item 1: name is required"},
		{"no riddle", func(s *Scene) { s.Items[2].Riddle = "" }, "item 3: riddle is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := valid()
			tt.mutate(&sc)
			err := sc.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestStateExposesOnlyFoundBoxes(t *testing.T) {
	sc := templeScene()
	s := Start(sc, firstRand{})
	s.Click(center(sc.Items[2]))

	st := s.State()
	if len(st.Found) != 1 || st.Found[0].ID != "compass-1" {
		t.Fatalf("found boxes = %+v", st.Found)
	}
	if len(st.FoundItemIDs) != 1 || st.FoundItemIDs[0] != "compass-1" {
		t.Errorf("found ids = %v", st.FoundItemIDs)
	}
	if st.TotalItems != 3 || st.ItemsFound != 1 {
		t.Errorf("progress = %d/%d", st.ItemsFound, st.TotalItems)
	}
	if st.Score != Score(1, 90, 20) {
		t.Errorf("score = %d", st.Score)
	}
	if !st.CanHint {
		t.Error("CanHint = false at full energy")
	}
}
