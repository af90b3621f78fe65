package schedule

import (
	"context"

	"github.com/Fragoler/simple-tactics-client/internal/domain"
	"github.com/looplab/fsm"
	"github.com/pkg/errors"
)

// События машины состояний расписания
const (
	evConfirm   = "confirm"
	evUnconfirm = "unconfirm"
	evReopen    = "reopen"
)

var (
	stateSelecting = domain.StateSelecting.String()
	stateConfirmed = domain.StateConfirmed.String()
)

var transitions = fsm.Events{
	{Name: evConfirm, Src: []string{stateSelecting}, Dst: stateConfirmed},
	{Name: evUnconfirm, Src: []string{stateConfirmed}, Dst: stateSelecting},
	{Name: evReopen, Src: []string{stateSelecting, stateConfirmed}, Dst: stateSelecting},
}

var stateByName = map[string]domain.ScheduleState{
	stateSelecting: domain.StateSelecting,
	stateConfirmed: domain.StateConfirmed,
}

// newMachine создает машину для одного расписания. Состояние sa меняется только через нее.
func newMachine(sa *domain.ScheduledAction) *fsm.FSM {
	return fsm.NewFSM(
		sa.State.String(),
		transitions,
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				sa.State = stateByName[e.Dst]
			},
		},
	)
}

// fire выполняет переход. Переход в то же состояние (reopen из Selecting) не ошибка.
func fire(m *fsm.FSM, event string) error {
	err := m.Event(context.Background(), event)
	var same fsm.NoTransitionError
	if err != nil && !errors.As(err, &same) {
		return err
	}
	return nil
}
