package recording

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Fragoler/simple-tactics-client/pkg/api"
	"github.com/Fragoler/simple-tactics-client/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func fakeClock(start time.Time, step time.Duration) func() time.Time {
	now := start
	return func() time.Time {
		t := now
		now = now.Add(step)
		return t
	}
}

func TestRecorder_Offsets(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := newRecorder("game-1", fakeClock(start, 250*time.Millisecond))

	r.Record(api.ServerMessage{Type: api.MsgGameState, Payload: []byte(`{}`)})
	r.Record(api.ServerMessage{Type: api.MsgEffects, Payload: []byte(`[]`)})

	snap := r.Snapshot()
	if r.Len() != 2 || len(snap.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", r.Len())
	}
	if snap.Messages[0].Offset != 250*time.Millisecond || snap.Messages[1].Offset != 500*time.Millisecond {
		t.Errorf("Unexpected offsets: %v, %v", snap.Messages[0].Offset, snap.Messages[1].Offset)
	}
}

func TestRecorder_CopiesPayload(t *testing.T) {
	r := NewRecorder("g")
	payload := []byte(`{"a":1}`)
	r.Record(api.ServerMessage{Type: "x", Payload: payload})
	payload[2] = 'b'

	if got := string(r.Snapshot().Messages[0].Payload); got != `{"a":1}` {
		t.Errorf("Recorder must keep its own copy, got %s", got)
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	rec := &Recording{
		GameToken: "game-1",
		StartedAt: time.UnixMilli(1_700_000_000_123),
		Messages: []Message{
			{Offset: 0, ServerMessage: api.ServerMessage{Type: api.MsgActions, Payload: []byte(`[{"id":"move"}]`)}},
			{Offset: 1500 * time.Millisecond, ServerMessage: api.ServerMessage{Type: api.MsgError, Payload: []byte{}}},
		},
	}

	var buf bytes.Buffer
	if err := Write(&buf, rec); err != nil {
		t.Fatal(err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if got.GameToken != rec.GameToken || !got.StartedAt.Equal(rec.StartedAt) {
		t.Errorf("Header mismatch: %+v", got)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(got.Messages))
	}
	for i := range rec.Messages {
		w, g := rec.Messages[i], got.Messages[i]
		if w.Offset != g.Offset || w.Type != g.Type || string(w.Payload) != string(g.Payload) {
			t.Errorf("Message %d: want %+v, got %+v", i, w, g)
		}
	}
}

func TestRead_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"bad magic", append([]byte("NOPE"), make([]byte, 17)...)},
		{"bad version", func() []byte {
			var buf bytes.Buffer
			Write(&buf, &Recording{})
			b := buf.Bytes()
			b[4] = 9
			return b
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(bytes.NewReader(tt.data)); !errors.Is(err, ErrInvalidFile) {
				t.Errorf("Expected ErrInvalidFile, got %v", err)
			}
		})
	}

	if _, err := Read(bytes.NewReader([]byte("TC"))); err == nil {
		t.Error("Truncated header must fail")
	}
}

func TestWrite_TooLongType(t *testing.T) {
	rec := &Recording{Messages: []Message{{ServerMessage: api.ServerMessage{Type: strings.Repeat("x", 300)}}}}
	if err := Write(&bytes.Buffer{}, rec); err == nil {
		t.Error("Type longer than 255 bytes must fail")
	}
}

func TestService_SaveLoad(t *testing.T) {
	svc, err := NewService(filepath.Join(t.TempDir(), "recordings"))
	if err != nil {
		t.Fatal(err)
	}

	rec := &Recording{
		GameToken: "../evil token",
		StartedAt: time.Unix(1_700_000_000, 0),
		Messages:  []Message{{ServerMessage: api.ServerMessage{Type: api.MsgPlayerID, Payload: []byte(`{"playerId":1}`)}}},
	}
	path, err := svc.Save(rec)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "session_eviltoken_1700000000.tcrec" {
		t.Errorf("Unexpected file name %s", filepath.Base(path))
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Messages) != 1 || got.Messages[0].Type != api.MsgPlayerID {
		t.Errorf("Unexpected recording: %+v", got)
	}
}
