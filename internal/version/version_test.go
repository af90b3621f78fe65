package version

import (
	"strings"
	"testing"
)

// Тесты меняют глобальные переменные сборки, поэтому без t.Parallel.
func TestCalculateBuildID(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		expected  int
		wantError bool
	}{
		{name: "epoch date", date: "2025-12-04", expected: 0},
		{name: "next day after epoch", date: "2025-12-05", expected: 1},
		{name: "one year later", date: "2026-12-04", expected: 365},
		{name: "date with leap years included", date: "2032-12-04", expected: 2557},
		{name: "invalid format", date: "invalid", wantError: true},
		{name: "empty date", date: "", wantError: true},
		{name: "before epoch", date: "2025-12-03", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := BuildDate
			defer func() { BuildDate = old }()

			BuildDate = tt.date

			got, err := CalculateBuildID()

			if tt.wantError {
				if err == nil {
					t.Fatalf("expected error, got nil (id=%d)", got)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.expected {
				t.Errorf("CalculateBuildID() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestInfoAndString(t *testing.T) {
	oldDate, oldCommit := BuildDate, BuildCommit
	defer func() { BuildDate, BuildCommit = oldDate, oldCommit }()

	BuildDate = "2025-12-14"
	BuildCommit = "abc123"

	info := Info()
	if !info.Calculated || info.BuildID != 10 {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.Protocol != ProtocolVersion {
		t.Errorf("protocol = %q, want %q", info.Protocol, ProtocolVersion)
	}

	s := String()
	for _, part := range []string{"Client build 10", "commit[abc123]", "branch[unknown]", "ci[local]"} {
		if !strings.Contains(s, part) {
			t.Errorf("String() = %q, missing %q", s, part)
		}
	}

	fields := info.Fields()
	if fields["build"] != 10 || fields["commit"] != "abc123" {
		t.Errorf("unexpected fields: %v", fields)
	}
}

func TestString_Unknown(t *testing.T) {
	old := BuildDate
	defer func() { BuildDate = old }()
	BuildDate = ""

	if s := String(); !strings.HasPrefix(s, "Client build unknown") {
		t.Errorf("String() = %q", s)
	}
	if _, ok := Info().Fields()["build"]; ok {
		t.Error("build field must be absent when not calculated")
	}
}
