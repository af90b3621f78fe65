// Package schedule - каталог действий и машина состояний планирования.
//
// На юнит приходится не более одного ScheduledAction:
//
//	Idle -> Selecting (ScheduleAction)
//	Selecting -> Selecting (UpdateActionTarget)
//	Selecting -> Confirmed (ConfirmAction)
//	Confirmed -> Selecting (UnconfirmAction)
//	* -> Idle (CancelAction, Reset)
//
// Переходы Selecting/Confirmed ведет looplab/fsm (machine.go).
// Некорректные локальные команды не меняют состояние: пишется warning и возвращается ошибка.
package schedule

import (
	"sort"

	"github.com/Fragoler/simple-tactics-client/internal/domain"
	"github.com/Fragoler/simple-tactics-client/internal/event"
	"github.com/Fragoler/simple-tactics-client/pkg/logger"
	"github.com/looplab/fsm"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrNoSchedule       = errors.New("unit has no scheduled action")
	ErrUnknownUnit      = errors.New("unknown unit")
	ErrUnknownAction    = errors.New("unknown action")
	ErrNotOwned         = errors.New("unit belongs to another player")
	ErrActionNotAllowed = errors.New("unit cannot use action")
	ErrAlreadyConfirmed = errors.New("scheduled action already confirmed")
	ErrNotConfirmed     = errors.New("scheduled action is not confirmed")
)

// UnitLookup - то, что нужно от мира: поиск юнита и проверка владельца.
type UnitLookup interface {
	Unit(id domain.UnitID) (*domain.Unit, bool)
	IsMine(u *domain.Unit) bool
}

// Store не потокобезопасен: им владеет цикл сессии.
type Store struct {
	units   UnitLookup
	catalog *Catalog

	schedules map[domain.UnitID]*domain.ScheduledAction
	machines  map[domain.UnitID]*fsm.FSM
	hover     *domain.Position

	pub event.Publisher
	log *logrus.Entry
}

func NewStore(units UnitLookup, catalog *Catalog, pub event.Publisher) *Store {
	return &Store{
		units:     units,
		catalog:   catalog,
		schedules: make(map[domain.UnitID]*domain.ScheduledAction),
		machines:  make(map[domain.UnitID]*fsm.FSM),
		pub:       event.OrDiscard(pub),
		log:       logger.Component("schedule"),
	}
}

func (s *Store) reject(op string, unitID domain.UnitID, err error) error {
	s.log.WithFields(logrus.Fields{
		"op":      op,
		"unit_id": unitID,
	}).Warn(err.Error())
	return err
}

func (s *Store) changed(sa *domain.ScheduledAction) {
	c := sa.Clone()
	s.pub.Publish(event.ScheduleChanged{UnitID: c.UnitID, ActionID: c.ActionID, State: c.State, Target: c.Target})
}

// ScheduleAction создает (или заменяет) расписание юнита в состоянии Selecting без цели.
func (s *Store) ScheduleAction(unitID domain.UnitID, actionID domain.ActionID) error {
	unit, ok := s.units.Unit(unitID)
	if !ok {
		return s.reject("schedule", unitID, errors.Wrapf(ErrUnknownUnit, "unit %d", unitID))
	}
	if !s.units.IsMine(unit) {
		return s.reject("schedule", unitID, errors.Wrapf(ErrNotOwned, "unit %d of player %d", unitID, unit.PlayerID))
	}
	if _, ok := s.catalog.ActionByID(actionID); !ok {
		return s.reject("schedule", unitID, errors.Wrapf(ErrUnknownAction, "action %q", actionID))
	}
	if !unit.CanUse(actionID) {
		return s.reject("schedule", unitID, errors.Wrapf(ErrActionNotAllowed, "unit %d, action %q", unitID, actionID))
	}

	sa := &domain.ScheduledAction{
		UnitID:   unitID,
		ActionID: actionID,
		State:    domain.StateSelecting,
	}
	s.schedules[unitID] = sa
	s.machines[unitID] = newMachine(sa)

	s.log.WithFields(logrus.Fields{"unit_id": unitID, "action_id": actionID}).Debug("Действие запланировано")
	s.changed(sa)
	return nil
}

// UpdateActionTarget меняет цель, пока действие в Selecting.
// Та же цель повторно не меняет состояние и не публикует событие: changed == false.
func (s *Store) UpdateActionTarget(unitID domain.UnitID, target domain.Target) (changed bool, err error) {
	sa, ok := s.schedules[unitID]
	if !ok {
		return false, s.reject("update_target", unitID, ErrNoSchedule)
	}
	if sa.State == domain.StateConfirmed {
		return false, s.reject("update_target", unitID, ErrAlreadyConfirmed)
	}
	if sa.Target != nil && sa.Target.Equal(target) {
		return false, nil
	}

	t := target
	t.UnitIDs = append([]domain.UnitID(nil), target.UnitIDs...)
	sa.Target = &t

	s.changed(sa)
	return true, nil
}

// ConfirmAction переводит Selecting -> Confirmed.
// Цель здесь не перепроверяется: вызывающий обязан сначала проверить её (targeting.ValidateConfirm).
func (s *Store) ConfirmAction(unitID domain.UnitID) error {
	sa, ok := s.schedules[unitID]
	if !ok {
		return s.reject("confirm", unitID, ErrNoSchedule)
	}
	if !s.machines[unitID].Can(evConfirm) {
		return s.reject("confirm", unitID, ErrAlreadyConfirmed)
	}
	if err := fire(s.machines[unitID], evConfirm); err != nil {
		return s.reject("confirm", unitID, err)
	}

	s.log.WithFields(logrus.Fields{"unit_id": unitID, "action_id": sa.ActionID}).Debug("Действие подтверждено")
	s.changed(sa)
	return nil
}

// UnconfirmAction переводит Confirmed -> Selecting, цель сохраняется.
func (s *Store) UnconfirmAction(unitID domain.UnitID) error {
	sa, ok := s.schedules[unitID]
	if !ok {
		return s.reject("unconfirm", unitID, ErrNoSchedule)
	}
	if !s.machines[unitID].Can(evUnconfirm) {
		return s.reject("unconfirm", unitID, ErrNotConfirmed)
	}
	if err := fire(s.machines[unitID], evUnconfirm); err != nil {
		return s.reject("unconfirm", unitID, err)
	}
	s.changed(sa)
	return nil
}

// Reopen возвращает подтвержденное действие в Selecting и сбрасывает цель.
// Используется, когда цель устарела после обновления карты или юнитов.
func (s *Store) Reopen(unitID domain.UnitID) error {
	sa, ok := s.schedules[unitID]
	if !ok {
		return s.reject("reopen", unitID, ErrNoSchedule)
	}
	if err := fire(s.machines[unitID], evReopen); err != nil {
		return s.reject("reopen", unitID, err)
	}
	sa.Target = nil

	s.log.WithField("unit_id", unitID).Info("Цель устарела, действие снова в выборе")
	s.changed(sa)
	return nil
}

// CancelAction удаляет расписание юнита в любом состоянии.
func (s *Store) CancelAction(unitID domain.UnitID) error {
	sa, ok := s.schedules[unitID]
	if !ok {
		return s.reject("cancel", unitID, ErrNoSchedule)
	}
	delete(s.schedules, unitID)
	delete(s.machines, unitID)
	s.pub.Publish(event.ScheduleChanged{UnitID: unitID, ActionID: sa.ActionID, State: domain.StateIdle})
	return nil
}

// Reset удаляет все расписания (начало новой фазы планирования). Возвращает число удаленных.
func (s *Store) Reset() int {
	n := len(s.schedules)
	s.schedules = make(map[domain.UnitID]*domain.ScheduledAction)
	s.machines = make(map[domain.UnitID]*fsm.FSM)
	s.hover = nil

	s.log.WithField("removed", n).Debug("Расписания сброшены")
	s.pub.Publish(event.SchedulesReset{Removed: n})
	return n
}

// Get возвращает копию расписания юнита.
func (s *Store) Get(unitID domain.UnitID) (domain.ScheduledAction, bool) {
	sa, ok := s.schedules[unitID]
	if !ok {
		return domain.ScheduledAction{}, false
	}
	return sa.Clone(), true
}

// State - состояние юнита. Нет расписания - Idle.
func (s *Store) State(unitID domain.UnitID) domain.ScheduleState {
	if sa, ok := s.schedules[unitID]; ok {
		return sa.State
	}
	return domain.StateIdle
}

func (s *Store) Len() int {
	return len(s.schedules)
}

// All - копии всех расписаний, отсортированные по ID юнита.
func (s *Store) All() []domain.ScheduledAction {
	result := make([]domain.ScheduledAction, 0, len(s.schedules))
	for _, sa := range s.schedules {
		result = append(result, sa.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UnitID < result[j].UnitID })
	return result
}

// SubmittedActions - только подтвержденные расписания; Selecting молча отбрасываются.
func (s *Store) SubmittedActions() []domain.ScheduledAction {
	all := s.All()
	result := all[:0]
	for _, sa := range all {
		if sa.State == domain.StateConfirmed {
			result = append(result, sa)
		}
	}
	return result
}

// SelectedAction - определение действия, запланированного юниту.
func (s *Store) SelectedAction(unitID domain.UnitID) (*domain.ActionDefinition, bool) {
	sa, ok := s.schedules[unitID]
	if !ok {
		return nil, false
	}
	return s.catalog.ActionByID(sa.ActionID)
}

// SetHoverPosition запоминает клетку под курсором (nil - курсор вне поля).
func (s *Store) SetHoverPosition(pos *domain.Position) {
	if pos == nil && s.hover == nil {
		return
	}
	if pos != nil && s.hover != nil && *pos == *s.hover {
		return
	}

	if pos == nil {
		s.hover = nil
		s.pub.Publish(event.HoverChanged{})
		return
	}

	p, pub := *pos, *pos
	s.hover = &p
	s.pub.Publish(event.HoverChanged{Position: &pub})
}

func (s *Store) HoverPosition() (domain.Position, bool) {
	if s.hover == nil {
		return domain.Position{}, false
	}
	return *s.hover, true
}
