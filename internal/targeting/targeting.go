package targeting

import (
	"github.com/Fragoler/simple-tactics-client/internal/domain"
	"github.com/Fragoler/simple-tactics-client/internal/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// UnitLocator - интерфейс для поиска юнитов (чтобы не зависеть от world.Store напрямую)
type UnitLocator interface {
	Unit(id domain.UnitID) (*domain.Unit, bool)
	UnitAt(pos domain.Position) (*domain.Unit, bool)
}

// ValidationResult - результат проверки цели
type ValidationResult struct {
	Valid   bool
	Message string // Причина отказа, если Valid == false
}

func ok() ValidationResult { return ValidationResult{Valid: true} }

func reject(msg string) ValidationResult { return ValidationResult{Valid: false, Message: msg} }

// LegalTargets возвращает клетки, в которые можно направить действие из origin.
//
// Шаги:
//  1. Сырые смещения паттерна фильтра (geometry).
//  2. Отсечение по границам карты.
//  3. RequiredFreeSpace: выкидываем клетки с ненулевым рельефом.
//
// Если карты ещё нет (m == nil) - пустой набор, а не ошибка.
// Порядок стабилен для одинаковых входов, дубликатов нет.
func LegalTargets(origin domain.Position, filter domain.TargetFilter, m *domain.MapState) ([]domain.Position, error) {
	if m == nil {
		return []domain.Position{}, nil
	}

	rng := geometry.ClampRange(filter.Range, m.Width, m.Height)
	raw, err := geometry.PositionsForPattern(origin, filter.Pattern, rng)
	if err != nil {
		return nil, err
	}

	return Clip(raw, m, filter.RequiredFreeSpace), nil
}

// Clip отсекает клетки за границами карты (и занятые, если requireFree),
// убирая дубликаты с сохранением порядка.
func Clip(positions []domain.Position, m *domain.MapState, requireFree bool) []domain.Position {
	result := make([]domain.Position, 0, len(positions))
	if m == nil {
		return result
	}

	seen := make(map[domain.Position]struct{}, len(positions))
	for _, p := range positions {
		if !m.InBounds(p) {
			continue
		}
		if requireFree && m.TerrainAt(p) != 0 {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		result = append(result, p)
	}
	return result
}

// ValidateUnitTarget проверяет фильтр союзник/враг для конкретного юнита-цели.
// Для голых клеток этот фильтр не применяется.
func ValidateUnitTarget(actor, target *domain.Unit, filter domain.TargetFilter) ValidationResult {
	if target == nil {
		return reject("Цель не найдена.")
	}
	if filter.RequireEnemy && target.PlayerID == actor.PlayerID {
		return reject("Нужна вражеская цель.")
	}
	if filter.RequireAlly && target.PlayerID != actor.PlayerID {
		return reject("Нужна союзная цель.")
	}
	return ok()
}

// LegalUnitTargets возвращает юнитов, стоящих на легальных клетках и прошедших фильтр союзник/враг.
func LegalUnitTargets(actor *domain.Unit, filter domain.TargetFilter, m *domain.MapState, units UnitLocator) ([]*domain.Unit, error) {
	cells, err := LegalTargets(actor.Coords, filter, m)
	if err != nil {
		return nil, err
	}

	var result []*domain.Unit
	for _, c := range cells {
		u, found := units.UnitAt(c)
		if !found {
			continue
		}
		if ValidateUnitTarget(actor, u, filter).Valid {
			result = append(result, u)
		}
	}
	return result, nil
}

// PointerAtCell переводит клетку в координаты указателя (центр клетки).
// Указатель измеряется в клетках: клетка (x,y) занимает [x,x+1)×[y,y+1).
func PointerAtCell(p domain.Position) mgl64.Vec2 {
	return mgl64.Vec2{float64(p.X) + 0.5, float64(p.Y) + 0.5}
}

// Closest выбирает легальную клетку, ближайшую к указателю (евклидово расстояние до центра клетки).
// При равенстве побеждает первая встреченная. Пустой набор -> false.
func Closest(pointer mgl64.Vec2, legal []domain.Position) (domain.Position, bool) {
	if len(legal) == 0 {
		return domain.Position{}, false
	}

	best := legal[0]
	bestDist := pointer.Sub(PointerAtCell(best)).Len()
	for _, p := range legal[1:] {
		d := pointer.Sub(PointerAtCell(p)).Len()
		if d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, true
}

// Contains - линейный поиск клетки в наборе.
func Contains(positions []domain.Position, p domain.Position) bool {
	for _, c := range positions {
		if c == p {
			return true
		}
	}
	return false
}

// ValidateConfirm проверяет, можно ли подтвердить запланированное действие с его текущей целью.
// Это проверка на стороне вызывающего: schedule.Store при Confirm цель не перепроверяет.
func ValidateConfirm(action *domain.ActionDefinition, scheduled domain.ScheduledAction, actor *domain.Unit, m *domain.MapState, units UnitLocator) (ValidationResult, error) {
	if action.TargetType == domain.TargetNone {
		return ok(), nil
	}
	if scheduled.Target == nil {
		return reject("Цель не выбрана."), nil
	}

	legal, err := LegalTargets(actor.Coords, action.TargetFilter, m)
	if err != nil {
		return ValidationResult{}, err
	}
	if !Contains(legal, scheduled.Target.Cell) {
		return reject("Цель вне досягаемости."), nil
	}

	if action.TargetType != domain.TargetUnit {
		return ok(), nil
	}

	ids := scheduled.Target.UnitIDs
	if len(ids) == 0 {
		return reject("Нет юнита в выбранной клетке."), nil
	}
	if len(ids) > action.TargetFilter.TargetLimit() {
		return reject("Слишком много целей."), nil
	}
	for _, id := range ids {
		target, found := units.Unit(id)
		if !found {
			return reject("Цель не найдена."), nil
		}
		// Юнит мог уйти из выбранной клетки после обновления состояния
		if target.Coords != scheduled.Target.Cell {
			return reject("Цель ушла из клетки."), nil
		}
		if res := ValidateUnitTarget(actor, target, action.TargetFilter); !res.Valid {
			return res, nil
		}
	}
	return ok(), nil
}
