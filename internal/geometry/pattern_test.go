package geometry

import (
	"errors"
	"testing"

	"github.com/Fragoler/simple-tactics-client/internal/domain"
)

func countManhattan(r int) int {
	n := 0
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			d := absInt(dx) + absInt(dy)
			if d > 0 && d <= r {
				n++
			}
		}
	}
	return n
}

func assertUnique(t *testing.T, positions []domain.Position) {
	t.Helper()
	seen := make(map[domain.Position]bool, len(positions))
	for _, p := range positions {
		if seen[p] {
			t.Fatalf("duplicate position %v", p)
		}
		seen[p] = true
	}
}

func TestManhattan_CountAndCenter(t *testing.T) {
	center := domain.Position{X: 10, Y: -3}

	for r := 1; r <= 6; r++ {
		got, err := PositionsForPattern(center, domain.PatternManhattan, float64(r))
		if err != nil {
			t.Fatalf("range %d: unexpected error: %v", r, err)
		}
		if len(got) != countManhattan(r) {
			t.Errorf("range %d: got %d positions, want %d", r, len(got), countManhattan(r))
		}
		assertUnique(t, got)
		for _, p := range got {
			if p == center {
				t.Fatalf("range %d: center included", r)
			}
			if p.ManhattanTo(center) > r {
				t.Fatalf("range %d: %v is too far", r, p)
			}
		}
	}
}

func TestRangeRequired(t *testing.T) {
	for _, pattern := range []domain.Pattern{domain.PatternManhattan, domain.PatternCircle, domain.PatternLine} {
		for _, rng := range []float64{0, -1} {
			_, err := PositionsForPattern(domain.Position{}, pattern, rng)
			if !errors.Is(err, ErrRangeRequired) {
				t.Errorf("%v range %v: expected ErrRangeRequired, got %v", pattern, rng, err)
			}
		}
	}
}

func TestUnknownPattern(t *testing.T) {
	_, err := PositionsForPattern(domain.Position{}, domain.PatternUnknown, 3)
	if !errors.Is(err, ErrUnknownPattern) {
		t.Errorf("expected ErrUnknownPattern, got %v", err)
	}
}

func TestCircle(t *testing.T) {
	tests := []struct {
		rng  float64
		want int
	}{
		{1, 4},
		{1.5, 8},
		{2, 12},
		{3, 28},
	}

	center := domain.Position{X: 0, Y: 0}
	for _, tt := range tests {
		got, err := PositionsForPattern(center, domain.PatternCircle, tt.rng)
		if err != nil {
			t.Fatalf("range %v: %v", tt.rng, err)
		}
		if len(got) != tt.want {
			t.Errorf("Circle range %v: got %d, want %d", tt.rng, len(got), tt.want)
		}
		assertUnique(t, got)
		for _, p := range got {
			if p == center {
				t.Errorf("Circle range %v: center included", tt.rng)
			}
		}
	}
}

func TestFixedPatternsIgnoreRange(t *testing.T) {
	center := domain.Position{X: 5, Y: 5}

	tests := []struct {
		pattern domain.Pattern
		want    int
	}{
		{domain.PatternAdjacent, 4},
		{domain.PatternAdjacentDiagonal, 8},
		{domain.PatternSelf, 1},
		{domain.PatternNone, 0},
	}

	for _, tt := range tests {
		for _, rng := range []float64{0, 7} {
			got, err := PositionsForPattern(center, tt.pattern, rng)
			if err != nil {
				t.Fatalf("%v: unexpected error %v", tt.pattern, err)
			}
			if len(got) != tt.want {
				t.Errorf("%v range %v: got %d, want %d", tt.pattern, rng, len(got), tt.want)
			}
			assertUnique(t, got)
		}
	}

	self, _ := PositionsForPattern(center, domain.PatternSelf, 0)
	if self[0] != center {
		t.Errorf("Self returned %v, want %v", self[0], center)
	}

	adj, _ := PositionsForPattern(center, domain.PatternAdjacent, 0)
	for _, p := range adj {
		if p.ManhattanTo(center) != 1 {
			t.Errorf("Adjacent returned non-neighbour %v", p)
		}
	}
}

func TestLine(t *testing.T) {
	center := domain.Position{X: 2, Y: 2}
	got, err := PositionsForPattern(center, domain.PatternLine, 2)
	if err != nil {
		t.Fatal(err)
	}

	want := []domain.Position{
		{X: 2, Y: 1}, {X: 2, Y: 0},
		{X: 3, Y: 2}, {X: 4, Y: 2},
		{X: 2, Y: 3}, {X: 2, Y: 4},
		{X: 1, Y: 2}, {X: 0, Y: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d positions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDeterministicOrder(t *testing.T) {
	a, _ := PositionsForPattern(domain.Position{X: 3, Y: 3}, domain.PatternCircle, 2.5)
	b, _ := PositionsForPattern(domain.Position{X: 3, Y: 3}, domain.PatternCircle, 2.5)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("order differs at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestRangeTooLarge(t *testing.T) {
	for _, p := range []domain.Pattern{domain.PatternManhattan, domain.PatternCircle, domain.PatternLine} {
		if _, err := PositionsForPattern(domain.Position{}, p, 1e10); !errors.Is(err, ErrRangeTooLarge) {
			t.Errorf("%s: expected ErrRangeTooLarge, got %v", p, err)
		}
	}

	if _, err := PositionsForPattern(domain.Position{}, domain.PatternManhattan, MaxRange); err != nil {
		t.Errorf("MaxRange itself must be accepted, got %v", err)
	}
}

func TestClampRange(t *testing.T) {
	tests := []struct {
		name string
		rng  float64
		want float64
	}{
		{"small range untouched", 3.5, 3.5},
		{"huge range clamped", 9999, 20},
		{"non-positive kept for error", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampRange(tt.rng, 10, 10); got != tt.want {
				t.Errorf("ClampRange(%v) = %v, want %v", tt.rng, got, tt.want)
			}
		})
	}

	if got := ClampRange(5, 0, 0); got != 1 {
		t.Errorf("Empty map must keep a positive range, got %v", got)
	}
}
