package client

import (
	"context"

	"github.com/Fragoler/simple-tactics-client/internal/domain"
	"github.com/Fragoler/simple-tactics-client/internal/effects"
	"github.com/Fragoler/simple-tactics-client/internal/highlight"
	"github.com/Fragoler/simple-tactics-client/internal/schedule"
	"github.com/Fragoler/simple-tactics-client/internal/targeting"
	"github.com/Fragoler/simple-tactics-client/internal/world"
	"github.com/Fragoler/simple-tactics-client/pkg/api"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Методы этого файла работают с хранилищами напрямую и должны вызываться из цикла сессии
// (через Do) или из одной горутины, если цикл не запущен.

var (
	_ targeting.UnitLocator = (*world.Store)(nil)
	_ schedule.UnitLookup   = (*world.Store)(nil)
	_ effects.World         = (*world.Store)(nil)
)

var (
	ErrInvalidTarget = errors.New("target cannot be confirmed")
	ErrNoActor       = errors.New("unit is not available")
)

// SelectUnit переключает выделение юнита.
func (s *Session) SelectUnit(unitID domain.UnitID) bool {
	selected, err := s.World.SelectUnit(unitID)
	if err != nil {
		s.log.WithError(err).Warn("Выделение не изменено")
		return false
	}
	return selected
}

// ClickCell - клик по клетке: юнит в клетке выделяется (или снимается выделение).
func (s *Session) ClickCell(pos domain.Position) bool {
	if u, ok := s.World.UnitAt(pos); ok {
		return s.SelectUnit(u.ID)
	}
	return false
}

func (s *Session) ScheduleAction(unitID domain.UnitID, actionID domain.ActionID) error {
	return s.Schedule.ScheduleAction(unitID, actionID)
}

// ActionsForUnit - действия из каталога, которые юнит может использовать.
func (s *Session) ActionsForUnit(unitID domain.UnitID) []*domain.ActionDefinition {
	u, ok := s.World.Unit(unitID)
	if !ok {
		return nil
	}
	return s.Catalog.ActionsForUnit(u)
}

// scheduled собирает всё, что нужно для работы с расписанием юнита.
func (s *Session) scheduled(unitID domain.UnitID) (*domain.Unit, *domain.ActionDefinition, domain.ScheduledAction, error) {
	sa, ok := s.Schedule.Get(unitID)
	if !ok {
		return nil, nil, sa, errors.Wrapf(ErrNoActor, "unit %d has no scheduled action", unitID)
	}
	unit, ok := s.World.Unit(unitID)
	if !ok {
		return nil, nil, sa, errors.Wrapf(ErrNoActor, "unit %d not found", unitID)
	}
	action, ok := s.Catalog.ActionByID(sa.ActionID)
	if !ok {
		return nil, nil, sa, errors.Wrapf(ErrNoActor, "action %q not in catalog", sa.ActionID)
	}
	return unit, action, sa, nil
}

// LegalTargets - легальные клетки для запланированного действия юнита.
func (s *Session) LegalTargets(unitID domain.UnitID) ([]domain.Position, error) {
	unit, action, _, err := s.scheduled(unitID)
	if err != nil {
		return nil, err
	}
	return targeting.LegalTargets(unit.Coords, action.TargetFilter, s.World.Map())
}

// buildTarget превращает клетку в цель действия. Для Unit-действий в цель попадает юнит
// в клетке, если он проходит фильтр союзник/враг.
func (s *Session) buildTarget(actor *domain.Unit, action *domain.ActionDefinition, cell domain.Position) domain.Target {
	target := domain.Target{Cell: cell}
	if action.TargetType != domain.TargetUnit {
		return target
	}
	if u, ok := s.World.UnitAt(cell); ok && targeting.ValidateUnitTarget(actor, u, action.TargetFilter).Valid {
		target.UnitIDs = []domain.UnitID{u.ID}
	}
	if limit := action.TargetFilter.TargetLimit(); len(target.UnitIDs) > limit {
		target.UnitIDs = target.UnitIDs[:limit]
	}
	return target
}

// UpdateTargetFromPointer прилипает к ближайшей легальной клетке.
// Пустой легальный набор - цель не меняется. changed == false и для той же цели.
func (s *Session) UpdateTargetFromPointer(unitID domain.UnitID, pointer mgl64.Vec2) (changed bool, err error) {
	unit, action, sa, err := s.scheduled(unitID)
	if err != nil {
		return false, err
	}
	if sa.State != domain.StateSelecting || action.TargetType == domain.TargetNone {
		return false, nil
	}

	legal, err := targeting.LegalTargets(unit.Coords, action.TargetFilter, s.World.Map())
	if err != nil {
		s.log.WithError(err).WithField("action_id", action.ID).Error("Ошибка конфигурации действия")
		return false, err
	}
	cell, ok := targeting.Closest(pointer, legal)
	if !ok {
		return false, nil
	}

	return s.Schedule.UpdateActionTarget(unitID, s.buildTarget(unit, action, cell))
}

// UpdateTarget ставит цель в конкретную клетку, если она легальна.
func (s *Session) UpdateTarget(unitID domain.UnitID, cell domain.Position) (bool, error) {
	unit, action, _, err := s.scheduled(unitID)
	if err != nil {
		return false, err
	}

	legal, err := targeting.LegalTargets(unit.Coords, action.TargetFilter, s.World.Map())
	if err != nil {
		return false, err
	}
	if !targeting.Contains(legal, cell) {
		s.log.WithFields(logrus.Fields{"unit_id": unitID, "cell": cell}).Warn("Клетка вне досягаемости")
		return false, nil
	}
	return s.Schedule.UpdateActionTarget(unitID, s.buildTarget(unit, action, cell))
}

// SetHover запоминает клетку под курсором; у выделенного юнита в выборе цель прилипает к ней.
func (s *Session) SetHover(pos *domain.Position) {
	s.Schedule.SetHoverPosition(pos)
	if pos == nil {
		return
	}
	if u, ok := s.World.SelectedUnit(); ok && s.Schedule.State(u.ID) == domain.StateSelecting {
		if _, err := s.UpdateTargetFromPointer(u.ID, targeting.PointerAtCell(*pos)); err != nil {
			s.log.WithError(err).Debug("Цель по курсору не обновлена")
		}
	}
}

// CanConfirmWithTarget - можно ли подтвердить текущую цель юнита.
func (s *Session) CanConfirmWithTarget(unitID domain.UnitID) (targeting.ValidationResult, error) {
	unit, action, sa, err := s.scheduled(unitID)
	if err != nil {
		return targeting.ValidationResult{Message: err.Error()}, err
	}
	return targeting.ValidateConfirm(action, sa, unit, s.World.Map(), s.World)
}

// Confirm подтверждает действие только после проверки цели.
func (s *Session) Confirm(unitID domain.UnitID) error {
	res, err := s.CanConfirmWithTarget(unitID)
	if err != nil {
		s.log.WithError(err).WithField("unit_id", unitID).Warn("Подтверждение невозможно")
		return err
	}
	if !res.Valid {
		s.log.WithFields(logrus.Fields{"unit_id": unitID, "reason": res.Message}).Warn("Цель не подходит")
		return errors.Wrap(ErrInvalidTarget, res.Message)
	}
	return s.Schedule.ConfirmAction(unitID)
}

func (s *Session) Unconfirm(unitID domain.UnitID) error {
	return s.Schedule.UnconfirmAction(unitID)
}

func (s *Session) Cancel(unitID domain.UnitID) error {
	return s.Schedule.CancelAction(unitID)
}

// Highlights - подсветка запланированного действия юнита для рендерера.
func (s *Session) Highlights(unitID domain.UnitID) ([]highlight.Projection, error) {
	unit, action, sa, err := s.scheduled(unitID)
	if err != nil {
		return nil, err
	}
	return highlight.Project(action, sa, unit.Coords, s.World.Map())
}

// Submit отправляет подтвержденные действия. Неподтвержденные не уходят.
func (s *Session) Submit(ctx context.Context) (int, error) {
	submitted := s.Schedule.SubmittedActions()

	payload := api.SubmitActionsPayload{Actions: make([]api.ScheduledActionDTO, 0, len(submitted))}
	for _, sa := range submitted {
		payload.Actions = append(payload.Actions, ToScheduledDTO(sa))
	}
	if err := payload.Validate(); err != nil {
		return 0, err
	}

	if err := s.send(ctx, api.CmdSubmitActions, payload); err != nil {
		return 0, err
	}
	s.log.WithField("actions", len(submitted)).Info("Ход отправлен")
	return len(submitted), nil
}

// recheckSchedules вызывается после снапшота сервера:
// расписания пропавших юнитов отменяются, подтвержденные цели, ставшие нелегальными, возвращаются в выбор.
func (s *Session) recheckSchedules() {
	for _, sa := range s.Schedule.All() {
		unit, ok := s.World.Unit(sa.UnitID)
		if !ok {
			s.Schedule.CancelAction(sa.UnitID)
			continue
		}
		if sa.State != domain.StateConfirmed {
			continue
		}
		action, ok := s.Catalog.ActionByID(sa.ActionID)
		if !ok {
			s.Schedule.CancelAction(sa.UnitID)
			continue
		}

		res, err := targeting.ValidateConfirm(action, sa, unit, s.World.Map(), s.World)
		if err != nil || !res.Valid {
			s.Schedule.Reopen(sa.UnitID)
		}
	}
}
