package layout

import (
	"strings"
	"testing"
)

func TestDistribute_Empty(t *testing.T) {
	if got := Distribute(10, nil); got != nil {
		t.Errorf("Distribute(nil): expected nil, got %v", got)
	}
	if got := Lines(nil); got != 0 {
		t.Errorf("Lines(nil): expected 0, got %d", got)
	}
}

func TestDistribute_BalancesLines(t *testing.T) {
	boxes := []Box{{3, 1}, {3, 1}, {3, 1}, {3, 1}, {3, 1}}
	got := Distribute(10, boxes)

	// [2,3] and [3,2] tie at 65; the first minimal breakpoint wins.
	want := []Position{
		{X: 0, Y: 0}, {X: 5, Y: 0},
		{X: 0, Y: 1}, {X: 3, Y: 1}, {X: 6, Y: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d positions, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("box %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
	if Lines(got) != 2 {
		t.Errorf("Lines: expected 2, got %d", Lines(got))
	}
}

func TestDistribute_StaysWithinWidth(t *testing.T) {
	widths := []int{7, 3, 12, 1, 1, 9, 4, 4, 6, 2, 11, 5, 8, 3, 3, 10}
	for _, maxWidth := range []int{12, 15, 20, 33, 80} {
		boxes := make([]Box, len(widths))
		for i, w := range widths {
			boxes[i] = Box{Width: w, Height: 1}
		}
		positions := Distribute(maxWidth, boxes)
		if len(positions) != len(boxes) {
			t.Fatalf("width %d: expected %d positions, got %d", maxWidth, len(boxes), len(positions))
		}
		for i, p := range positions {
			if p.X+boxes[i].Width > maxWidth {
				t.Errorf("width %d: box %d ends at %d", maxWidth, i, p.X+boxes[i].Width)
			}
			if i == 0 {
				continue
			}
			prev := positions[i-1]
			if p.Y < prev.Y || (p.Y == prev.Y && p.X < prev.X+boxes[i-1].Width) {
				t.Errorf("width %d: box %d at %+v overlaps or precedes box %d at %+v", maxWidth, i, p, i-1, prev)
			}
		}
	}
}

func TestDistribute_GapIsCapped(t *testing.T) {
	got := Distribute(80, []Box{{4, 1}, {4, 1}})
	if got[1].X != 6 {
		t.Errorf("expected second box at x=6, got %d", got[1].X)
	}
}

func TestDistribute_OversizedBoxGetsOwnLine(t *testing.T) {
	got := Distribute(5, []Box{{2, 1}, {8, 1}, {2, 1}})
	for i, p := range got {
		if p.X != 0 || p.Y != i {
			t.Errorf("box %d: expected {0 %d}, got %+v", i, i, p)
		}
	}
}

func TestDistribute_TallBoxAdvancesRow(t *testing.T) {
	// [1,2] and [2,1] tie; the first box sits alone on row 0.
	got := Distribute(6, []Box{{3, 3}, {3, 1}, {3, 1}})
	if got[0].Y != 0 {
		t.Fatalf("expected first box on row 0, got %+v", got)
	}
	if got[1].Y != 3 || got[2].Y != 3 {
		t.Errorf("expected second row at y=3, got %+v", got)
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		width     int
		want      string
		wantLines int
	}{
		{"empty", "   ", 10, "", 0},
		{"fits", "hello world", 20, "hello world", 1},
		{"tie keeps first break", "aaa bbb ccc", 7, "aaa\nbbb ccc", 2},
		{"long word", "a verylongword b", 4, "a\nverylongword\nb", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, lines := Wrap(tt.text, tt.width)
			if got != tt.want {
				t.Errorf("Wrap(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
			if lines != tt.wantLines {
				t.Errorf("Wrap(%q, %d) lines = %d, want %d", tt.text, tt.width, lines, tt.wantLines)
			}
		})
	}
}

func TestWrap_LinesFitWidth(t *testing.T) {
	text := "boyl captures an existing directory as a reusable project template and later instantiates copies of it"
	got, lines := Wrap(text, 24)
	split := strings.Split(got, "\n")
	if len(split) != lines {
		t.Errorf("line count: returned %d, text has %d", lines, len(split))
	}
	for _, l := range split {
		if len(l) > 24 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if strings.Join(strings.Fields(got), " ") != text {
		t.Errorf("words changed: %q", got)
	}
}
