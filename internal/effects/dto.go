package effects

import (
	"time"

	"github.com/Fragoler/simple-tactics-client/internal/domain"
	"github.com/Fragoler/simple-tactics-client/pkg/api"
)

// ToDTO сериализует эффект обратно в формат сервера.
func ToDTO(e Effect) api.EffectDTO {
	meta := e.Info()
	dto := api.EffectDTO{
		Type:   e.Kind().String(),
		ID:     meta.ID,
		UnitID: intPtr(int(meta.UnitID)),
	}
	if meta.Duration > 0 {
		ms := float64(meta.Duration) / float64(time.Millisecond)
		dto.Duration = &ms
	}

	switch v := e.(type) {
	case Move:
		dto.From, dto.To = posDTO(v.From), posDTO(v.To)
	case Shoot:
		dto.From, dto.To = posDTO(v.From), posDTO(v.To)
		dto.TargetUnitID = optUnit(v.TargetUnitID)
	case Melee:
		dto.From, dto.To = posDTO(v.From), posDTO(v.To)
		dto.TargetUnitID = optUnit(v.TargetUnitID)
	case Explosion:
		r := v.Radius
		dto.Center, dto.Radius = posDTO(v.Center), &r
	case Damage:
		dto.TargetUnitID = intPtr(int(v.TargetUnitID))
		dto.Amount = intPtr(v.Amount)
		dto.NewHealth = intPtr(v.NewHealth)
	case Death:
	case Heal:
		dto.TargetUnitID = intPtr(int(v.TargetUnitID))
		dto.Amount = intPtr(v.Amount)
	}
	return dto
}

func intPtr(v int) *int { return &v }

func posDTO(p domain.Position) *api.PositionDTO {
	return &api.PositionDTO{X: p.X, Y: p.Y}
}

func optUnit(id *domain.UnitID) *int {
	if id == nil {
		return nil
	}
	return intPtr(int(*id))
}
