package schedule

import (
	"testing"

	"github.com/Fragoler/simple-tactics-client/internal/domain"
)

func TestMachine_Transitions(t *testing.T) {
	sa := &domain.ScheduledAction{UnitID: 1, ActionID: "move", State: domain.StateSelecting}
	m := newMachine(sa)

	steps := []struct {
		event string
		ok    bool
		want  domain.ScheduleState
	}{
		{evUnconfirm, false, domain.StateSelecting},
		{evReopen, true, domain.StateSelecting},
		{evConfirm, true, domain.StateConfirmed},
		{evConfirm, false, domain.StateConfirmed},
		{evUnconfirm, true, domain.StateSelecting},
		{evConfirm, true, domain.StateConfirmed},
		{evReopen, true, domain.StateSelecting},
	}

	for i, st := range steps {
		err := fire(m, st.event)
		if (err == nil) != st.ok {
			t.Errorf("Step %d (%s): ok=%v, err=%v", i, st.event, st.ok, err)
		}
		if sa.State != st.want {
			t.Errorf("Step %d (%s): state %s, want %s", i, st.event, sa.State, st.want)
		}
	}
}
