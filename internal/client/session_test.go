package client

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Fragoler/simple-tactics-client/internal/domain"
	"github.com/Fragoler/simple-tactics-client/internal/event"
	"github.com/Fragoler/simple-tactics-client/pkg/api"
	"github.com/Fragoler/simple-tactics-client/pkg/logger"
	"github.com/go-gl/mathgl/mgl64"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type fakeSender struct {
	mu   sync.Mutex
	cmds []api.ClientCommand
}

func (f *fakeSender) Send(_ context.Context, cmd api.ClientCommand) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cmds = append(f.cmds, cmd)
	return nil
}

func (f *fakeSender) Commands() []api.ClientCommand {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.ClientCommand(nil), f.cmds...)
}

func msg(t *testing.T, typ string, payload any) api.ServerMessage {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	return api.ServerMessage{Type: typ, Payload: raw}
}

func ptr[T any](v T) *T { return &v }

func catalog() []api.ActionDefinitionDTO {
	return []api.ActionDefinitionDTO{
		{
			ID: "move", Name: "Move", TargetType: "Cell",
			TargetFilter: api.TargetFilterDTO{Pattern: "Manhattan", Range: ptr(2.0), RequiredFreeSpace: ptr(true)},
			HighlightLayers: []api.HighlightLayerDTO{
				{Pattern: "Manhattan", Range: 2, RelativeTo: "Executor", Type: "Movement", Visibility: "Selecting"},
				{Pattern: "Self", RelativeTo: "Target", Type: "Selection", Visibility: "Always"},
			},
		},
		{
			ID: "melee", Name: "Hit", TargetType: "Unit",
			TargetFilter: api.TargetFilterDTO{Pattern: "Adjacent", RequireEnemy: ptr(true)},
		},
		{
			ID: "broken", TargetType: "Cell",
			TargetFilter: api.TargetFilterDTO{Pattern: "Circle"},
		},
	}
}

func state(myReady bool, terrain [][]int) api.GameStateDTO {
	return api.GameStateDTO{
		Players: []api.PlayerDTO{{PlayerID: 1, PlayerName: "me", IsReady: myReady}, {PlayerID: 2, PlayerName: "enemy"}},
		Map:     &api.MapDTO{Name: "arena", Width: 10, Height: 10, Terrain: terrain},
		Units: []api.UnitDTO{
			{UnitID: 1, PlayerID: ptr(1), Coords: api.PositionDTO{X: 5, Y: 5}, CurHealth: 10, MaxHealth: 10, ActionIDs: []string{"move", "melee"}},
			{UnitID: 2, PlayerID: ptr(2), Coords: api.PositionDTO{X: 5, Y: 6}, CurHealth: 6, MaxHealth: 6, ActionIDs: []string{"move"}},
		},
	}
}

func emptyTerrain() [][]int {
	t := make([][]int, 10)
	for y := range t {
		t[y] = make([]int, 10)
	}
	return t
}

func setupSession(t *testing.T) (*Session, *fakeSender) {
	t.Helper()
	sender := &fakeSender{}
	cfg := NewConfig()
	cfg.GameToken, cfg.PlayerToken = "game", "player"

	s := NewSession(cfg, sender, nil)
	s.HandleMessage(msg(t, api.MsgActions, catalog()))
	s.HandleMessage(msg(t, api.MsgPlayerID, api.PlayerDTO{PlayerID: 1}))
	s.HandleMessage(msg(t, api.MsgGameState, state(false, emptyTerrain())))
	return s, sender
}

func TestSession_CatalogDropsBrokenDefinitions(t *testing.T) {
	s, _ := setupSession(t)

	if s.Catalog.Len() != 2 {
		t.Errorf("Expected 2 valid actions, got %d", s.Catalog.Len())
	}
	if _, ok := s.Catalog.ActionByID("broken"); ok {
		t.Error("Circle without range must be rejected")
	}
}

func TestSession_ScheduleTargetConfirmSubmit(t *testing.T) {
	s, sender := setupSession(t)
	ctx := context.Background()

	if err := s.ScheduleAction(1, "move"); err != nil {
		t.Fatal(err)
	}

	changed, err := s.UpdateTargetFromPointer(1, mgl64.Vec2{7.9, 5.4})
	if err != nil || !changed {
		t.Fatalf("Expected target update: %v %v", changed, err)
	}
	sa, _ := s.Schedule.Get(1)
	if sa.Target == nil || sa.Target.Cell != (domain.Position{X: 7, Y: 5}) {
		t.Fatalf("Expected snap to (7,5), got %+v", sa.Target)
	}

	proj, err := s.Highlights(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(proj) != 2 {
		t.Errorf("Expected executor and target layers, got %d", len(proj))
	}

	if err := s.Confirm(1); err != nil {
		t.Fatal(err)
	}

	n, err := s.Submit(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Submit: %d %v", n, err)
	}

	cmds := sender.Commands()
	last := cmds[len(cmds)-1]
	if last.Action != api.CmdSubmitActions || last.GameToken != "game" {
		t.Fatalf("Unexpected command: %+v", last)
	}
	var payload api.SubmitActionsPayload
	if err := json.Unmarshal(last.Payload, &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload.Actions) != 1 || payload.Actions[0].Target.Cell.X != 7 || !payload.Actions[0].Confirmed {
		t.Errorf("Unexpected payload: %+v", payload)
	}
}

func TestSession_ConfirmRequiresValidTarget(t *testing.T) {
	s, _ := setupSession(t)

	s.ScheduleAction(1, "move")
	res, err := s.CanConfirmWithTarget(1)
	if err != nil {
		t.Fatal(err)
	}
	if res.Valid {
		t.Fatal("Schedule without target must not be confirmable")
	}

	if err := s.Confirm(1); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("Expected ErrInvalidTarget, got %v", err)
	}
	if s.Schedule.State(1) != domain.StateSelecting {
		t.Error("Rejected confirm must keep Selecting")
	}

	if n, _ := s.Submit(context.Background()); n != 0 {
		t.Errorf("Selecting schedules must not be submitted, got %d", n)
	}
}

func TestSession_UnitTarget(t *testing.T) {
	s, _ := setupSession(t)

	s.ScheduleAction(1, "melee")
	if _, err := s.UpdateTarget(1, domain.Position{X: 5, Y: 6}); err != nil {
		t.Fatal(err)
	}
	sa, _ := s.Schedule.Get(1)
	if sa.Target == nil || len(sa.Target.UnitIDs) != 1 || sa.Target.UnitIDs[0] != 2 {
		t.Fatalf("Enemy must become the target, got %+v", sa.Target)
	}
	if err := s.Confirm(1); err != nil {
		t.Fatal(err)
	}

	// Пустая соседняя клетка: цели-юнита нет
	s.Unconfirm(1)
	s.UpdateTarget(1, domain.Position{X: 4, Y: 5})
	if err := s.Confirm(1); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("Expected ErrInvalidTarget for empty cell, got %v", err)
	}

	// Клетка вне досягаемости не меняет цель
	if changed, _ := s.UpdateTarget(1, domain.Position{X: 0, Y: 0}); changed {
		t.Error("Out-of-range cell must not become the target")
	}
}

func TestSession_StaleTargetReopened(t *testing.T) {
	s, _ := setupSession(t)

	s.ScheduleAction(1, "move")
	s.UpdateTarget(1, domain.Position{X: 6, Y: 5})
	if err := s.Confirm(1); err != nil {
		t.Fatal(err)
	}

	walls := emptyTerrain()
	walls[5][6] = 1
	s.HandleMessage(msg(t, api.MsgGameState, api.GameStateDTO{Map: &api.MapDTO{Width: 10, Height: 10, Terrain: walls}}))

	sa, _ := s.Schedule.Get(1)
	if sa.State != domain.StateSelecting || sa.Target != nil {
		t.Errorf("Stale confirmed target must be reopened, got %+v", sa)
	}
}

func TestSession_UnitTargetMovedAwayReopened(t *testing.T) {
	s, _ := setupSession(t)

	s.ScheduleAction(1, "melee")
	s.UpdateTarget(1, domain.Position{X: 5, Y: 6})
	if err := s.Confirm(1); err != nil {
		t.Fatal(err)
	}

	// Враг перешел в другую соседнюю клетку: старая клетка всё ещё досягаема
	st := state(false, emptyTerrain())
	st.Units[1].Coords = api.PositionDTO{X: 4, Y: 5}
	s.HandleMessage(msg(t, api.MsgGameState, st))

	sa, _ := s.Schedule.Get(1)
	if sa.State != domain.StateSelecting {
		t.Errorf("Attack on a unit that left the cell must be reopened, got %+v", sa)
	}
}

func TestSession_SchedulesOfRemovedUnitsCancelled(t *testing.T) {
	s, _ := setupSession(t)
	s.ScheduleAction(1, "move")

	st := state(false, emptyTerrain())
	st.Units = st.Units[1:]
	s.HandleMessage(msg(t, api.MsgGameState, st))

	if s.Schedule.Len() != 0 {
		t.Error("Schedule of a vanished unit must be cancelled")
	}
}

func TestSession_PlanningPhaseResetsSchedules(t *testing.T) {
	s, _ := setupSession(t)

	s.ScheduleAction(1, "move")
	s.HandleMessage(msg(t, api.MsgGameState, api.GameStateDTO{Players: []api.PlayerDTO{{PlayerID: 1, IsReady: true}}}))
	if s.Schedule.Len() != 1 {
		t.Fatal("Becoming ready must not reset schedules")
	}

	s.HandleMessage(msg(t, api.MsgGameState, api.GameStateDTO{Players: []api.PlayerDTO{{PlayerID: 1, IsReady: false}}}))
	if s.Schedule.Len() != 0 {
		t.Error("Ready flag true -> false must reset schedules")
	}
}

func TestSession_ScheduleRejectsEnemyUnit(t *testing.T) {
	s, _ := setupSession(t)
	if err := s.ScheduleAction(2, "move"); err == nil {
		t.Error("Enemy unit must not be schedulable")
	}
}

func TestSession_SelectionAndHover(t *testing.T) {
	s, _ := setupSession(t)

	if !s.ClickCell(domain.Position{X: 5, Y: 5}) {
		t.Fatal("Click on own unit must select it")
	}
	s.ScheduleAction(1, "move")

	hover := domain.Position{X: 5, Y: 3}
	s.SetHover(&hover)

	sa, _ := s.Schedule.Get(1)
	if sa.Target == nil || sa.Target.Cell != hover {
		t.Errorf("Hover must retarget the selected unit, got %+v", sa.Target)
	}

	if s.ClickCell(domain.Position{X: 5, Y: 5}) {
		t.Error("Second click must deselect")
	}
	if s.ClickCell(domain.Position{X: 0, Y: 0}) {
		t.Error("Empty cell click selects nothing")
	}
}

func TestSession_UnknownMessage(t *testing.T) {
	s, _ := setupSession(t)
	s.HandleMessage(api.ServerMessage{Type: "dance", Payload: json.RawMessage(`{}`)})
	s.HandleMessage(api.ServerMessage{Type: api.MsgGameState, Payload: json.RawMessage(`not json`)})

	if len(s.World.Units()) != 2 {
		t.Error("Bad messages must not change the world")
	}
}

func TestSession_JoinGame(t *testing.T) {
	s, sender := setupSession(t)
	if err := s.JoinGame(context.Background()); err != nil {
		t.Fatal(err)
	}

	want := []string{api.CmdJoinGame, api.CmdRequestPlayerID, api.CmdRequestGameState}
	cmds := sender.Commands()
	if len(cmds) != len(want) {
		t.Fatalf("Expected %d commands, got %d", len(want), len(cmds))
	}
	for i := range want {
		if cmds[i].Action != want[i] {
			t.Errorf("Command %d: expected %s, got %s", i, want[i], cmds[i].Action)
		}
	}
}

func TestSession_RunPlaysEffectsInOrder(t *testing.T) {
	s, _ := setupSession(t)
	events := s.Bus.Subscribe("test", 256)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	batch := []api.EffectDTO{
		{Type: "Move", ID: "m", UnitID: ptr(1), Duration: ptr(1.0), From: &api.PositionDTO{X: 5, Y: 5}, To: &api.PositionDTO{X: 4, Y: 5}},
		{Type: "Damage", ID: "d", UnitID: ptr(1), TargetUnitID: ptr(2), Amount: ptr(6), NewHealth: ptr(0)},
		{Type: "Death", ID: "x", UnitID: ptr(2), Duration: ptr(1.0)},
	}
	if err := s.Deliver(ctx, msg(t, api.MsgEffects, batch)); err != nil {
		t.Fatal(err)
	}

	var finished []string
	timeout := time.After(2 * time.Second)
	for len(finished) < 3 {
		select {
		case e := <-events:
			if f, ok := e.(event.EffectFinished); ok {
				if f.Err != nil {
					t.Errorf("Effect %s failed: %v", f.ID, f.Err)
				}
				finished = append(finished, f.ID)
			}
		case <-timeout:
			t.Fatalf("Timed out, finished: %v", finished)
		}
	}

	for i, want := range []string{"m", "d", "x"} {
		if finished[i] != want {
			t.Errorf("Effect %d: expected %s, got %s", i, want, finished[i])
		}
	}

	var playing bool
	var unitsLeft int
	var moved domain.Position
	err := s.Do(ctx, func(s *Session) {
		playing = s.Effects.IsPlaying()
		unitsLeft = len(s.World.Units())
		if u, ok := s.World.Unit(1); ok {
			moved = u.Coords
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if playing {
		t.Error("Player must be idle after the batch")
	}
	if unitsLeft != 1 || moved != (domain.Position{X: 4, Y: 5}) {
		t.Errorf("Unexpected world: %d units, unit 1 at %v", unitsLeft, moved)
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if err := s.Do(context.Background(), func(*Session) {}); !errors.Is(err, ErrSessionStopped) {
		t.Errorf("Expected ErrSessionStopped after Run, got %v", err)
	}
}

func TestToActionDefinition_PatternFromLayer(t *testing.T) {
	def, err := ToActionDefinition(api.ActionDefinitionDTO{
		ID: "shoot", TargetType: "Unit",
		HighlightLayers: []api.HighlightLayerDTO{
			{Pattern: "Self", RelativeTo: "Target", Type: "Damage", Visibility: "Always"},
			{Pattern: "Circle", Range: 3.5, RelativeTo: "Executor", Type: "Damage", Visibility: "Selecting"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if def.TargetFilter.Pattern != domain.PatternCircle || def.TargetFilter.Range != 3.5 {
		t.Errorf("Filter must come from the executor layer, got %+v", def.TargetFilter)
	}

	if _, err := ToActionDefinition(api.ActionDefinitionDTO{ID: "x", TargetType: "Nowhere"}); err == nil {
		t.Error("Unknown target type must fail")
	}
	if _, err := ToActionDefinition(api.ActionDefinitionDTO{ID: "x", TargetType: "Cell", TargetFilter: api.TargetFilterDTO{Pattern: "Spiral"}}); err == nil {
		t.Error("Unknown pattern must fail")
	}
}
