// Package highlight выбирает активные слои подсветки действия и считает их клетки.
// Только чтение: ничего не мутирует, результат отдается рендереру.
package highlight

import (
	"github.com/Fragoler/simple-tactics-client/internal/domain"
	"github.com/Fragoler/simple-tactics-client/internal/geometry"
	"github.com/Fragoler/simple-tactics-client/internal/targeting"
	"github.com/pkg/errors"
)

// Cell - клетка подсветки для рендерера (позиция + смысл).
type Cell struct {
	Position domain.Position
	Type     domain.HighlightType
}

// Projection - клетки одного активного слоя.
type Projection struct {
	Layer     domain.HighlightLayer
	Anchor    domain.Position
	Positions []domain.Position
}

// ActiveLayers = слои с Always + слои, чья видимость совпадает с состоянием.
func ActiveLayers(action *domain.ActionDefinition, state domain.ScheduleState) []domain.HighlightLayer {
	if action == nil {
		return nil
	}
	var result []domain.HighlightLayer
	for _, layer := range action.HighlightLayers {
		if layer.Visibility.Matches(state) {
			result = append(result, layer)
		}
	}
	return result
}

// anchor - точка привязки слоя. false - слой в этот проход пропускается.
func anchor(layer domain.HighlightLayer, action *domain.ActionDefinition, executor domain.Position, target *domain.Target) (domain.Position, bool) {
	switch layer.RelativeTo {
	case domain.RelativeExecutor:
		return executor, true
	case domain.RelativeTarget:
		// Имеет смысл только для Cell-действий с выбранной целью
		if action.TargetType != domain.TargetCell || target == nil {
			return domain.Position{}, false
		}
		return target.Cell, true
	default:
		return domain.Position{}, false
	}
}

// Project считает клетки всех активных слоев для расписания.
// Клетки обрезаются по границам карты; без карты - пусто.
// Ошибка конфигурации слоя (нет range) возвращается как есть.
func Project(action *domain.ActionDefinition, scheduled domain.ScheduledAction, executor domain.Position, m *domain.MapState) ([]Projection, error) {
	if action == nil || m == nil {
		return nil, nil
	}

	layers := ActiveLayers(action, scheduled.State)
	result := make([]Projection, 0, len(layers))

	for i, layer := range layers {
		at, ok := anchor(layer, action, executor, scheduled.Target)
		if !ok {
			continue
		}

		raw, err := geometry.PositionsForPattern(at, layer.Pattern, geometry.ClampRange(layer.Range, m.Width, m.Height))
		if err != nil {
			return nil, errors.Wrapf(err, "action %q, layer %d (%s)", action.ID, i, layer.Type)
		}

		result = append(result, Projection{
			Layer:     layer,
			Anchor:    at,
			Positions: targeting.Clip(raw, m, false),
		})
	}
	return result, nil
}

// Cells разворачивает проекции в плоский список (позиция, тип) в порядке слоев.
func Cells(projections []Projection) []Cell {
	var n int
	for _, p := range projections {
		n += len(p.Positions)
	}

	result := make([]Cell, 0, n)
	for _, p := range projections {
		for _, pos := range p.Positions {
			result = append(result, Cell{Position: pos, Type: p.Layer.Type})
		}
	}
	return result
}
