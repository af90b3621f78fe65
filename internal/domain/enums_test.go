package domain

import "testing"

func TestParsePattern(t *testing.T) {
	tests := []struct {
		input    string
		expected Pattern
	}{
		{"Manhattan", PatternManhattan},
		{"manhattan", PatternManhattan},
		{"CIRCLE", PatternCircle},
		{"AdjacentDiagonal", PatternAdjacentDiagonal},
		{"Adjacent", PatternAdjacent},
		{"Self", PatternSelf},
		{"Line", PatternLine},
		{"None", PatternNone},
		{"Spiral", PatternUnknown},
		{"", PatternUnknown},
	}

	for _, tt := range tests {
		result := ParsePattern(tt.input)
		if result != tt.expected {
			t.Errorf("ParsePattern(%q) = %v, want %v", tt.input, result, tt.expected)
		}
	}
}

func TestPattern_String(t *testing.T) {
	tests := []struct {
		pattern  Pattern
		expected string
	}{
		{PatternManhattan, "Manhattan"},
		{PatternAdjacentDiagonal, "AdjacentDiagonal"},
		{PatternUnknown, "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.pattern.String(); got != tt.expected {
			t.Errorf("Pattern(%d).String() = %q, want %q", tt.pattern, got, tt.expected)
		}
	}
}

func TestPattern_NeedsRange(t *testing.T) {
	needs := map[Pattern]bool{
		PatternManhattan:        true,
		PatternCircle:           true,
		PatternLine:             true,
		PatternAdjacent:         false,
		PatternAdjacentDiagonal: false,
		PatternSelf:             false,
		PatternNone:             false,
	}
	for p, want := range needs {
		if got := p.NeedsRange(); got != want {
			t.Errorf("%v.NeedsRange() = %v, want %v", p, got, want)
		}
	}
}

func TestParseOtherEnums(t *testing.T) {
	if ParseTargetType("cell") != TargetCell || ParseTargetType("Unit") != TargetUnit || ParseTargetType("x") != TargetUnknown {
		t.Error("ParseTargetType mismatch")
	}
	if ParseHighlightType("Damage") != HighlightDamage || ParseHighlightType("glow") != HighlightUnknown {
		t.Error("ParseHighlightType mismatch")
	}
	if ParseVisibility("Always") != VisibilityAlways || ParseVisibility("") != VisibilityUnknown {
		t.Error("ParseVisibility mismatch")
	}
	if ParseRelativeTo("Target") != RelativeTarget || ParseRelativeTo("Executor") != RelativeExecutor {
		t.Error("ParseRelativeTo mismatch")
	}
}

func TestVisibility_Matches(t *testing.T) {
	tests := []struct {
		v     Visibility
		state ScheduleState
		want  bool
	}{
		{VisibilityAlways, StateSelecting, true},
		{VisibilityAlways, StateConfirmed, true},
		{VisibilitySelecting, StateSelecting, true},
		{VisibilitySelecting, StateConfirmed, false},
		{VisibilityConfirmed, StateConfirmed, true},
		{VisibilityConfirmed, StateSelecting, false},
		{VisibilityUnknown, StateSelecting, false},
	}
	for _, tt := range tests {
		if got := tt.v.Matches(tt.state); got != tt.want {
			t.Errorf("%v.Matches(%v) = %v, want %v", tt.v, tt.state, got, tt.want)
		}
	}
}
