package effects

import (
	"context"

	"github.com/Fragoler/simple-tactics-client/internal/event"
	"github.com/Fragoler/simple-tactics-client/internal/world"
	"github.com/Fragoler/simple-tactics-client/pkg/api"
	"github.com/Fragoler/simple-tactics-client/pkg/logger"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Result - итог анимации, приходит в канал Done.
type Result struct {
	Effect Effect
	Err    error
}

// Player - последовательный проигрыватель: в полете не больше одного эффекта.
//
// Player не потокобезопасен. Им владеет один цикл, который:
//  1. вызывает PlayNext - берется голова очереди, анимация уходит в горутину;
//  2. ждет Result из Done();
//  3. вызывает Complete - применяется мутация, флаг isPlaying снимается;
//  4. возвращается к шагу 1 на следующей итерации.
//
// Ошибки анимации и мутации логируются, очередь продолжается.
type Player struct {
	queue   Queue
	playing bool
	current Effect

	world    World
	animator Animator
	done     chan Result

	pub event.Publisher
	log *logrus.Entry
}

func NewPlayer(w World, animator Animator, pub event.Publisher) *Player {
	if animator == nil {
		animator = NopAnimator{}
	}
	return &Player{
		world:    w,
		animator: animator,
		// Буфер 1: в полете максимум одна анимация, горутина не блокируется
		done: make(chan Result, 1),
		pub:  event.OrDiscard(pub),
		log:  logger.Component("effect_player"),
	}
}

// AddEffects разбирает пачку DTO и ставит валидные эффекты в очередь.
// Возвращает число поставленных.
func (p *Player) AddEffects(dtos []api.EffectDTO) int {
	parsed, dropped := ParseBatch(dtos)
	p.enqueue(parsed, dropped)
	return len(parsed)
}

// AddEffect - то же для одного эффекта.
func (p *Player) AddEffect(dto api.EffectDTO) bool {
	return p.AddEffects([]api.EffectDTO{dto}) == 1
}

// Enqueue ставит уже разобранные эффекты в хвост. Играющий эффект не прерывается.
func (p *Player) Enqueue(effects ...Effect) {
	p.enqueue(effects, 0)
}

func (p *Player) enqueue(effects []Effect, dropped int) {
	p.queue.Enqueue(effects...)

	p.log.WithFields(logrus.Fields{
		"added":   len(effects),
		"dropped": dropped,
		"pending": p.queue.Len(),
	}).Debug("Эффекты в очереди")

	p.pub.Publish(event.EffectsQueued{Count: len(effects), Dropped: dropped, Pending: p.queue.Len()})
}

// ClearEffects выбрасывает ожидающие эффекты. Играющий доигрывается.
func (p *Player) ClearEffects() int {
	n := p.queue.Clear()
	if n > 0 {
		p.log.WithField("dropped", n).Info("Очередь эффектов очищена")
	}
	p.pub.Publish(event.EffectsCleared{Dropped: n})
	return n
}

func (p *Player) IsPlaying() bool { return p.playing }

func (p *Player) Pending() int { return p.queue.Len() }

// Current - играющий сейчас эффект.
func (p *Player) Current() (Effect, bool) {
	return p.current, p.playing
}

// Done - канал завершения анимаций.
func (p *Player) Done() <-chan Result { return p.done }

// PlayNext запускает следующий эффект.
// Ничего не делает (false), если эффект уже играет или очередь пуста.
func (p *Player) PlayNext(ctx context.Context) bool {
	if p.playing {
		return false
	}
	e, ok := p.queue.Pop()
	if !ok {
		return false
	}

	p.playing = true
	p.current = e

	meta := e.Info()
	p.log.WithFields(logrus.Fields{
		"id":      meta.ID,
		"kind":    e.Kind(),
		"unit_id": meta.UnitID,
		"pending": p.queue.Len(),
	}).Debug("Проигрываем эффект")
	p.pub.Publish(event.EffectStarted{ID: meta.ID, Kind: e.Kind().String()})

	go p.animate(ctx, e)
	return true
}

func (p *Player) animate(ctx context.Context, e Effect) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("animation panic: %v", r)
		}
		p.done <- Result{Effect: e, Err: err}
	}()
	err = p.animator.Animate(ctx, e)
}

// Complete завершает играющий эффект: мутация применяется независимо от исхода анимации,
// затем флаг снимается. Возвращает ошибку анимации или мутации (уже записанную в лог).
func (p *Player) Complete(res Result) error {
	if !p.playing || res.Effect != p.current {
		p.log.Warn("Результат анимации не относится к играющему эффекту, пропускаем")
		return nil
	}

	meta := res.Effect.Info()
	fields := logrus.Fields{
		"id":      meta.ID,
		"kind":    res.Effect.Kind(),
		"unit_id": meta.UnitID,
	}

	err := res.Err
	if err != nil {
		p.log.WithFields(fields).WithError(err).Error("Сбой анимации эффекта")
	}

	if mErr := p.mutate(res.Effect); mErr != nil {
		if errors.Is(mErr, world.ErrUnitNotFound) {
			p.log.WithFields(fields).WithError(mErr).Warn("Юнит не найден, мутация пропущена")
		} else {
			p.log.WithFields(fields).WithError(mErr).Error("Сбой мутации эффекта")
		}
		if err == nil {
			err = mErr
		}
	}

	p.playing = false
	p.current = nil
	p.pub.Publish(event.EffectFinished{ID: meta.ID, Kind: res.Effect.Kind().String(), Err: err})
	return err
}

func (p *Player) mutate(e Effect) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("mutation panic: %v", r)
		}
	}()
	return Apply(p.world, e)
}

// Drain проигрывает очередь до конца в текущей горутине.
// Для тестов, утилит и headless-режима без цикла сессии.
func (p *Player) Drain(ctx context.Context) error {
	for {
		if !p.playing && !p.PlayNext(ctx) {
			return nil
		}
		select {
		case res := <-p.done:
			p.Complete(res)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
