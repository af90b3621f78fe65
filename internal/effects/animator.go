package effects

import (
	"context"
	"time"
)

// Animator проигрывает анимацию эффекта и возвращается, когда она закончилась.
// Реализация рендерера живет снаружи; ошибка означает сбой анимации.
type Animator interface {
	Animate(ctx context.Context, e Effect) error
}

// AnimatorFunc позволяет использовать функцию как Animator.
type AnimatorFunc func(ctx context.Context, e Effect) error

func (f AnimatorFunc) Animate(ctx context.Context, e Effect) error {
	return f(ctx, e)
}

// NopAnimator завершает анимацию сразу (headless и тесты).
type NopAnimator struct{}

func (NopAnimator) Animate(context.Context, Effect) error { return nil }

// Сервер может не указать duration только у Damage и Heal (см. parse.go).
const popupDuration = 300 * time.Millisecond

func defaultDuration(kind Kind) time.Duration {
	switch kind {
	case KindDamage, KindHeal:
		return popupDuration
	}
	return 0
}

// DelayAnimator просто ждет длительность эффекта, деленную на Speed.
// Так headless-клиент сохраняет темп, в котором игрок видел бы ход.
type DelayAnimator struct {
	Speed float64 // <= 0 - как 1
}

// Delay - сколько будет длиться эффект.
func (a DelayAnimator) Delay(e Effect) time.Duration {
	d := e.Info().Duration
	if d <= 0 {
		d = defaultDuration(e.Kind())
	}
	if a.Speed > 0 {
		d = time.Duration(float64(d) / a.Speed)
	}
	return d
}

func (a DelayAnimator) Animate(ctx context.Context, e Effect) error {
	timer := time.NewTimer(a.Delay(e))
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
