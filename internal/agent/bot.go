package agent

import (
	"context"
	"sort"

	"github.com/Fragoler/simple-tactics-client/internal/client"
	"github.com/Fragoler/simple-tactics-client/internal/domain"
	"github.com/Fragoler/simple-tactics-client/internal/event"
	"github.com/Fragoler/simple-tactics-client/internal/targeting"
	"github.com/Fragoler/simple-tactics-client/pkg/logger"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Bot - "игрок-компьютер" поверх сессии (headless-режим).
// Он пользуется тем же вводом, что и живой игрок: планирует, целится, подтверждает, отправляет.
//
// Жизненный цикл:
//  1. NewBot -> подписка на шину событий сессии.
//  2. Run -> слушает события в своей горутине.
//  3. На новом снапшоте или новой фазе планирования, если ход еще не отправлен,
//     вызывается makeMove внутри цикла сессии (Session.Do).
type Bot struct {
	session *client.Session
	events  <-chan event.Event

	// submitted - ход текущей фазы уже отправлен. Меняется только внутри Do.
	submitted bool

	log *logrus.Entry
}

const botSubscriber = "bot"

func NewBot(session *client.Session) *Bot {
	return &Bot{
		session: session,
		events:  session.Bus.Subscribe(botSubscriber, 256),
		log:     logger.Component("bot"),
	}
}

// Run - цикл бота. Завершается по ctx или при закрытии шины.
func (b *Bot) Run(ctx context.Context) error {
	defer b.session.Bus.Unsubscribe(botSubscriber)
	b.log.Info("Бот запущен")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case e, ok := <-b.events:
			if !ok {
				b.log.Info("Шина закрыта, бот остановлен")
				return nil
			}

			var err error
			switch e.(type) {
			case event.PlanningPhaseStarted:
				err = b.session.Do(ctx, func(s *client.Session) {
					b.submitted = false
					b.makeMove(ctx, s)
				})
			case event.StateUpdated, event.EffectsCleared, event.EffectFinished:
				err = b.session.Do(ctx, func(s *client.Session) { b.makeMove(ctx, s) })
			}
			if errors.Is(err, client.ErrSessionStopped) {
				return nil
			}
			if err != nil {
				return err
			}
		}
	}
}

// makeMove - мозг бота. Выполняется в цикле сессии.
func (b *Bot) makeMove(ctx context.Context, s *client.Session) {
	// Ждем: ход уже ушел, эффекты еще играются или мы уже готовы
	if b.submitted || s.Effects.IsPlaying() || s.Effects.Pending() > 0 {
		return
	}
	me, ok := s.World.Me()
	if !ok || me.IsReady || s.World.Map() == nil {
		return
	}

	units := s.World.OwnedUnits()
	if len(units) == 0 {
		return
	}

	planned := 0
	for _, u := range units {
		if b.planUnit(s, u) {
			planned++
		}
	}

	n, err := s.Submit(ctx)
	if err != nil {
		b.log.WithError(err).Error("Ход не отправлен")
		return
	}
	b.submitted = true
	b.log.WithFields(logrus.Fields{"units": len(units), "planned": planned, "submitted": n}).Info("Бот сделал ход")
}

// planUnit подтверждает одно действие юнита. Приоритет: удар по врагу, потом шаг к ближайшему врагу.
func (b *Bot) planUnit(s *client.Session, u *domain.Unit) bool {
	if sa, ok := s.Schedule.Get(u.ID); ok && sa.Confirmed() {
		return true
	}

	actions := s.ActionsForUnit(u.ID)
	log := b.log.WithField("unit_id", u.ID)

	// --- Атака: любой легальный враг ---
	for _, a := range actions {
		if a.TargetType != domain.TargetUnit {
			continue
		}
		targets, err := targeting.LegalUnitTargets(u, a.TargetFilter, s.World.Map(), s.World)
		if err != nil || len(targets) == 0 {
			continue
		}
		victim := weakest(targets)
		if b.try(s, u.ID, a.ID, func() error {
			_, err := s.UpdateTarget(u.ID, victim.Coords)
			return err
		}) {
			log.WithFields(logrus.Fields{"action_id": a.ID, "target_id": victim.ID}).Debug("Атака")
			return true
		}
	}

	// --- Движение: прилипаем к клетке ближе всего к врагу ---
	enemy, found := nearestEnemy(s, u)
	for _, a := range actions {
		if a.TargetType != domain.TargetCell || !found {
			continue
		}
		pointer := targeting.PointerAtCell(enemy.Coords)
		if b.try(s, u.ID, a.ID, func() error {
			_, err := s.UpdateTargetFromPointer(u.ID, pointer)
			return err
		}) {
			log.WithFields(logrus.Fields{"action_id": a.ID, "toward": enemy.ID}).Debug("Движение")
			return true
		}
	}

	// --- Действие без цели ---
	for _, a := range actions {
		if a.TargetType == domain.TargetNone && b.try(s, u.ID, a.ID, func() error { return nil }) {
			return true
		}
	}

	log.Debug("Нечего делать")
	return false
}

// try планирует действие, ставит цель и подтверждает. При неудаче расписание отменяется.
func (b *Bot) try(s *client.Session, unitID domain.UnitID, actionID domain.ActionID, aim func() error) bool {
	if err := s.ScheduleAction(unitID, actionID); err != nil {
		return false
	}
	if err := aim(); err != nil {
		s.Cancel(unitID)
		return false
	}
	if err := s.Confirm(unitID); err != nil {
		s.Cancel(unitID)
		return false
	}
	return true
}

func weakest(units []*domain.Unit) *domain.Unit {
	sorted := append([]*domain.Unit(nil), units...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CurHealth != sorted[j].CurHealth {
			return sorted[i].CurHealth < sorted[j].CurHealth
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted[0]
}

func nearestEnemy(s *client.Session, u *domain.Unit) (*domain.Unit, bool) {
	var best *domain.Unit
	bestDist := 0
	for _, other := range s.World.Units() {
		if other.IsAllyOf(u) {
			continue
		}
		d := u.Coords.DistanceSquaredTo(other.Coords)
		if best == nil || d < bestDist || (d == bestDist && other.ID < best.ID) {
			best, bestDist = other, d
		}
	}
	return best, best != nil
}
