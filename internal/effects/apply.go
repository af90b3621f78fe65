package effects

import (
	"github.com/Fragoler/simple-tactics-client/internal/domain"
	"github.com/pkg/errors"
)

// World - мутации мира, которые нужны эффектам.
type World interface {
	MoveUnit(id domain.UnitID, to domain.Position) error
	SetHealth(id domain.UnitID, health int) error
	HealUnit(id domain.UnitID, amount int) (int, error)
	RemoveUnit(id domain.UnitID) error
}

// Apply применяет детерминированную мутацию эффекта.
// Shoot, Melee и Explosion ничего не меняют: урон от них приходит отдельным Damage.
func Apply(w World, e Effect) error {
	switch v := e.(type) {
	case Move:
		return w.MoveUnit(v.UnitID, v.To)
	case Damage:
		return w.SetHealth(v.TargetUnitID, v.NewHealth)
	case Heal:
		_, err := w.HealUnit(v.TargetUnitID, v.Amount)
		return err
	case Death:
		return w.RemoveUnit(v.UnitID)
	case Shoot, Melee, Explosion:
		return nil
	default:
		return errors.Wrapf(ErrUnknownType, "%T", e)
	}
}
