package domain

import "testing"

func TestMapState_Bounds(t *testing.T) {
	m := &MapState{
		Width:  3,
		Height: 2,
		Terrain: [][]int{
			{0, 1, 0},
			{0, 0, 0},
		},
	}

	if !m.InBounds(Position{X: 2, Y: 1}) {
		t.Error("(2,1) should be in bounds")
	}
	if m.InBounds(Position{X: 3, Y: 0}) || m.InBounds(Position{X: 0, Y: -1}) {
		t.Error("out of bounds position reported as in bounds")
	}
	if m.IsFree(Position{X: 1, Y: 0}) {
		t.Error("wall at (1,0) reported as free")
	}
	if !m.IsFree(Position{X: 0, Y: 1}) {
		t.Error("(0,1) should be free")
	}
}

func TestMapState_TerrainShortRows(t *testing.T) {
	m := &MapState{Width: 4, Height: 4, Terrain: [][]int{{1}}}

	if got := m.TerrainAt(Position{X: 3, Y: 3}); got != 0 {
		t.Errorf("missing terrain should read as free, got %d", got)
	}
	if got := m.TerrainAt(Position{X: 0, Y: 0}); got != 1 {
		t.Errorf("TerrainAt(0,0) = %d, want 1", got)
	}
}

func TestPosition_Helpers(t *testing.T) {
	a := Position{X: 1, Y: 1}
	b := Position{X: 4, Y: 5}

	if got := a.DistanceTo(b); got != 5 {
		t.Errorf("DistanceTo = %v, want 5", got)
	}
	if got := a.ManhattanTo(b); got != 7 {
		t.Errorf("ManhattanTo = %d, want 7", got)
	}
	if !a.IsAdjacent(Position{X: 2, Y: 2}) || a.IsAdjacent(a) {
		t.Error("IsAdjacent mismatch")
	}
	if got := a.Shift(-1, 2); got != (Position{X: 0, Y: 3}) {
		t.Errorf("Shift = %v", got)
	}
}

func TestTarget_Equal(t *testing.T) {
	a := Target{Cell: Position{X: 1, Y: 2}, UnitIDs: []UnitID{7}}
	b := Target{Cell: Position{X: 1, Y: 2}, UnitIDs: []UnitID{7}}
	c := Target{Cell: Position{X: 1, Y: 2}}

	if !a.Equal(b) {
		t.Error("equal targets reported different")
	}
	if a.Equal(c) {
		t.Error("different unit lists reported equal")
	}
}
