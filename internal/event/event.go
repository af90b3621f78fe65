// Package event - типизированные события клиентских хранилищ.
// Каждая мутация расписания, очереди эффектов или мира публикует ровно одно событие.
package event

import "github.com/Fragoler/simple-tactics-client/internal/domain"

// Event - закрытое множество событий (маркерный метод).
type Event interface {
	isEvent()
}

// --- Мир ---

type StateUpdated struct {
	Units   int
	Players int
	HasMap  bool
}

type UnitMoved struct {
	UnitID domain.UnitID
	From   domain.Position
	To     domain.Position
}

type UnitHealthChanged struct {
	UnitID domain.UnitID
	Old    int
	New    int
}

type UnitRemoved struct {
	UnitID domain.UnitID
}

// SelectionChanged - UnitID == nil означает снятие выделения.
type SelectionChanged struct {
	UnitID *domain.UnitID
}

type PlanningPhaseStarted struct{}

type LogAdded struct {
	Message string
	Type    string
}

// --- Расписание ---

// ScheduleChanged - новое состояние расписания юнита. State == StateIdle - расписание удалено.
type ScheduleChanged struct {
	UnitID   domain.UnitID
	ActionID domain.ActionID
	State    domain.ScheduleState
	Target   *domain.Target
}

type SchedulesReset struct {
	Removed int
}

type HoverChanged struct {
	Position *domain.Position
}

type CatalogLoaded struct {
	Count int
}

// --- Эффекты ---

type EffectsQueued struct {
	Count   int
	Dropped int
	Pending int
}

type EffectStarted struct {
	ID   string
	Kind string
}

// EffectFinished - Err != nil, если анимация или мутация упали. Очередь при этом продолжается.
type EffectFinished struct {
	ID   string
	Kind string
	Err  error
}

type EffectsCleared struct {
	Dropped int
}

// --- Соединение ---

type ConnectionStatusChanged struct {
	Status string
}

type ServerError struct {
	Message string
}

func (StateUpdated) isEvent()            {}
func (UnitMoved) isEvent()               {}
func (UnitHealthChanged) isEvent()       {}
func (UnitRemoved) isEvent()             {}
func (SelectionChanged) isEvent()        {}
func (PlanningPhaseStarted) isEvent()    {}
func (LogAdded) isEvent()                {}
func (ScheduleChanged) isEvent()         {}
func (SchedulesReset) isEvent()          {}
func (HoverChanged) isEvent()            {}
func (CatalogLoaded) isEvent()           {}
func (EffectsQueued) isEvent()           {}
func (EffectStarted) isEvent()           {}
func (EffectFinished) isEvent()          {}
func (EffectsCleared) isEvent()          {}
func (ConnectionStatusChanged) isEvent() {}
func (ServerError) isEvent()             {}

// Publisher - то, что нужно хранилищам от шины.
type Publisher interface {
	Publish(e Event)
}

type discard struct{}

func (discard) Publish(Event) {}

// Discard - издатель, который выбрасывает события.
var Discard Publisher = discard{}

// OrDiscard подменяет nil на Discard.
func OrDiscard(p Publisher) Publisher {
	if p == nil {
		return Discard
	}
	return p
}
