// Package effects - эффекты, присланные сервером после разрешения хода, и их проигрывание.
//
// Эффект - закрытый вариантный тип: Move, Shoot, Melee, Explosion, Damage, Death, Heal.
// Мутация мира применяется строго после анимации эффекта, по одному эффекту за раз.
package effects

import (
	"strings"
	"time"

	"github.com/Fragoler/simple-tactics-client/internal/domain"
)

// Kind - дискриминант варианта.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindMove
	KindShoot
	KindMelee
	KindExplosion
	KindDamage
	KindDeath
	KindHeal
)

var kindFromString = map[string]Kind{
	"MOVE":      KindMove,
	"SHOOT":     KindShoot,
	"MELEE":     KindMelee,
	"EXPLOSION": KindExplosion,
	"DAMAGE":    KindDamage,
	"DEATH":     KindDeath,
	"HEAL":      KindHeal,
}

var kindToString = map[Kind]string{
	KindMove:      "Move",
	KindShoot:     "Shoot",
	KindMelee:     "Melee",
	KindExplosion: "Explosion",
	KindDamage:    "Damage",
	KindDeath:     "Death",
	KindHeal:      "Heal",
}

func ParseKind(s string) Kind {
	if val, ok := kindFromString[strings.ToUpper(s)]; ok {
		return val
	}
	return KindUnknown
}

func (k Kind) String() string {
	if val, ok := kindToString[k]; ok {
		return val
	}
	return "Unknown"
}

// Meta - общие поля всех эффектов.
type Meta struct {
	ID       string
	UnitID   domain.UnitID // Исполнитель (для Death - умирающий)
	Duration time.Duration // 0 - аниматор берет значение по умолчанию
}

// Info возвращает общие поля.
func (m Meta) Info() Meta { return m }

// Effect реализуют только типы этого пакета.
type Effect interface {
	Kind() Kind
	Info() Meta
	isEffect()
}

type Move struct {
	Meta
	From domain.Position
	To   domain.Position
}

type Shoot struct {
	Meta
	From         domain.Position
	To           domain.Position
	TargetUnitID *domain.UnitID
}

type Melee struct {
	Meta
	From         domain.Position
	To           domain.Position
	TargetUnitID *domain.UnitID
}

type Explosion struct {
	Meta
	Center domain.Position
	Radius float64
}

// Damage несет итоговое здоровье цели, посчитанное сервером.
type Damage struct {
	Meta
	TargetUnitID domain.UnitID
	Amount       int
	NewHealth    int
}

type Death struct {
	Meta
}

type Heal struct {
	Meta
	TargetUnitID domain.UnitID
	Amount       int
}

func (Move) Kind() Kind      { return KindMove }
func (Shoot) Kind() Kind     { return KindShoot }
func (Melee) Kind() Kind     { return KindMelee }
func (Explosion) Kind() Kind { return KindExplosion }
func (Damage) Kind() Kind    { return KindDamage }
func (Death) Kind() Kind     { return KindDeath }
func (Heal) Kind() Kind      { return KindHeal }

func (Move) isEffect()      {}
func (Shoot) isEffect()     {}
func (Melee) isEffect()     {}
func (Explosion) isEffect() {}
func (Damage) isEffect()    {}
func (Death) isEffect()     {}
func (Heal) isEffect()      {}
