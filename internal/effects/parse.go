package effects

import (
	"time"

	"github.com/Fragoler/simple-tactics-client/internal/domain"
	"github.com/Fragoler/simple-tactics-client/pkg/api"
	"github.com/Fragoler/simple-tactics-client/pkg/logger"
	"github.com/Fragoler/simple-tactics-client/pkg/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownType = errors.New("unknown effect type")
	ErrMalformed   = errors.New("malformed effect")
)

// Parse строит эффект из DTO, проверяя обязательные поля варианта.
// Если сервер не прислал id, генерируется UUID.
func Parse(dto api.EffectDTO) (Effect, error) {
	kind := ParseKind(dto.Kind())
	if kind == KindUnknown {
		return nil, errors.Wrapf(ErrUnknownType, "%q", dto.Kind())
	}

	v := validator{kind: kind}
	meta := Meta{
		ID:       dto.ID,
		UnitID:   v.unitID("unitId", dto.UnitID),
		Duration: v.duration(dto.Duration, kind != KindDamage && kind != KindHeal),
	}
	if meta.ID == "" {
		meta.ID = utils.GenerateID()
	}

	var e Effect
	switch kind {
	case KindMove:
		e = Move{Meta: meta, From: v.pos("from", dto.From), To: v.pos("to", dto.To)}
	case KindShoot:
		e = Shoot{Meta: meta, From: v.pos("from", dto.From), To: v.pos("to", dto.To), TargetUnitID: v.optUnitID("targetUnitId", dto.TargetUnitID)}
	case KindMelee:
		e = Melee{Meta: meta, From: v.pos("from", dto.From), To: v.pos("to", dto.To), TargetUnitID: v.optUnitID("targetUnitId", dto.TargetUnitID)}
	case KindExplosion:
		e = Explosion{Meta: meta, Center: v.pos("center", dto.Center), Radius: v.positive("radius", dto.Radius)}
	case KindDamage:
		e = Damage{
			Meta:         meta,
			TargetUnitID: v.unitID("targetUnitId", dto.TargetUnitID),
			Amount:       v.count("amount", dto.Amount, 1),
			NewHealth:    v.count("newHealth", dto.NewHealth, 0),
		}
	case KindDeath:
		e = Death{Meta: meta}
	case KindHeal:
		e = Heal{
			Meta:         meta,
			TargetUnitID: v.unitID("targetUnitId", dto.TargetUnitID),
			Amount:       v.count("amount", dto.Amount, 1),
		}
	}

	if v.err != nil {
		return nil, v.err
	}
	return e, nil
}

// ParseBatch разбирает пачку эффектов, сохраняя порядок.
// Битые и неизвестные записи пишутся в лог с уровнем error и отбрасываются; остальные проходят.
func ParseBatch(dtos []api.EffectDTO) (parsed []Effect, dropped int) {
	log := logger.Component("effects")

	parsed = make([]Effect, 0, len(dtos))
	for i, dto := range dtos {
		e, err := Parse(dto)
		if err != nil {
			dropped++
			log.WithFields(logrus.Fields{
				"index": i,
				"type":  dto.Kind(),
				"id":    dto.ID,
			}).WithError(err).Error("Эффект отброшен")
			continue
		}
		parsed = append(parsed, e)
	}
	return parsed, dropped
}

// validator копит первую ошибку, чтобы разбор варианта читался линейно.
type validator struct {
	kind Kind
	err  error
}

func (v *validator) fail(field, reason string) {
	if v.err == nil {
		v.err = errors.Wrapf(ErrMalformed, "%s: %s %s", v.kind, field, reason)
	}
}

func (v *validator) unitID(field string, p *int) domain.UnitID {
	if p == nil {
		v.fail(field, "is required")
		return 0
	}
	if *p <= 0 {
		v.fail(field, "must be positive")
		return 0
	}
	return domain.UnitID(*p)
}

func (v *validator) optUnitID(field string, p *int) *domain.UnitID {
	if p == nil {
		return nil
	}
	id := v.unitID(field, p)
	return &id
}

func (v *validator) pos(field string, p *api.PositionDTO) domain.Position {
	if p == nil {
		v.fail(field, "is required")
		return domain.Position{}
	}
	return domain.Position{X: p.X, Y: p.Y}
}

func (v *validator) positive(field string, p *float64) float64 {
	if p == nil || !(*p > 0) {
		v.fail(field, "must be positive")
		return 0
	}
	return *p
}

func (v *validator) count(field string, p *int, minValue int) int {
	if p == nil {
		v.fail(field, "is required")
		return 0
	}
	if *p < minValue {
		v.fail(field, "is out of range")
		return 0
	}
	return *p
}

func (v *validator) duration(p *float64, required bool) time.Duration {
	if p == nil {
		if required {
			v.fail("duration", "is required")
		}
		return 0
	}
	if !(*p > 0) {
		v.fail("duration", "must be positive")
		return 0
	}
	return time.Duration(*p * float64(time.Millisecond))
}
