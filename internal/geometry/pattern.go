// Package geometry генерирует смещения клеток для именованных паттернов.
// Функции чистые: границы карты здесь не учитываются, это делает targeting.
package geometry

import (
	"math"

	"github.com/Fragoler/simple-tactics-client/internal/domain"
	"github.com/pkg/errors"
)

var (
	// ErrRangeRequired - паттерну нужен положительный range, а его нет.
	// Это ошибка конфигурации: кривое ActionDefinition с сервера.
	ErrRangeRequired = errors.New("pattern requires a positive range")

	// ErrUnknownPattern - паттерн не распознан при разборе каталога.
	ErrUnknownPattern = errors.New("unknown pattern")

	// ErrRangeTooLarge - range выше MaxRange. Вызывающие с картой сначала делают ClampRange.
	ErrRangeTooLarge = errors.New("pattern range too large")
)

// MaxRange - потолок range для прямых вызовов. Память паттерна растет как квадрат range.
const MaxRange = 1024

var (
	adjacentOffsets = [][2]int{{-1, 0}, {0, -1}, {0, 1}, {1, 0}}

	adjacentDiagonalOffsets = [][2]int{
		{-1, -1}, {-1, 0}, {-1, 1},
		{0, -1}, {0, 1},
		{1, -1}, {1, 0}, {1, 1},
	}

	// Вверх, вправо, вниз, влево
	lineDirections = [][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
)

// PositionsForPattern возвращает клетки паттерна вокруг center.
// Порядок детерминирован, дубликатов нет. Центр входит только в Self.
func PositionsForPattern(center domain.Position, pattern domain.Pattern, rng float64) ([]domain.Position, error) {
	if pattern.NeedsRange() && !(rng > 0) {
		return nil, errors.Wrapf(ErrRangeRequired, "pattern %s, range %v", pattern, rng)
	}
	if pattern.NeedsRange() && rng > MaxRange {
		return nil, errors.Wrapf(ErrRangeTooLarge, "pattern %s, range %v (max %d)", pattern, rng, MaxRange)
	}

	switch pattern {
	case domain.PatternManhattan:
		return manhattan(center, rng), nil
	case domain.PatternCircle:
		return circle(center, rng), nil
	case domain.PatternAdjacent:
		return fromOffsets(center, adjacentOffsets), nil
	case domain.PatternAdjacentDiagonal:
		return fromOffsets(center, adjacentDiagonalOffsets), nil
	case domain.PatternLine:
		return line(center, rng), nil
	case domain.PatternSelf:
		return []domain.Position{center}, nil
	case domain.PatternNone:
		return []domain.Position{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownPattern, "pattern %d", pattern)
	}
}

// ClampRange ограничивает range размером карты: из клетки карты любая другая клетка
// дальше не чем на width+height (и по Манхэттену, и по Евклиду), так что результат после отсечения тот же.
// Неположительный range возвращается как есть, чтобы PositionsForPattern сообщил об ошибке конфигурации.
func ClampRange(rng float64, width, height int) float64 {
	limit := float64(max(width+height, 1))
	if rng > limit {
		return limit
	}
	return rng
}

// manhattan: 0 < |dx|+|dy| <= range
func manhattan(center domain.Position, rng float64) []domain.Position {
	r := int(math.Floor(rng))
	positions := make([]domain.Position, 0, 2*r*(r+1))
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			dist := absInt(dx) + absInt(dy)
			if dist > 0 && float64(dist) <= rng {
				positions = append(positions, center.Shift(dx, dy))
			}
		}
	}
	return positions
}

// circle: 0 < sqrt(dx²+dy²) <= range, dx,dy в [-ceil(range), ceil(range)]
func circle(center domain.Position, rng float64) []domain.Position {
	r := int(math.Ceil(rng))
	var positions []domain.Position
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if math.Sqrt(float64(dx*dx+dy*dy)) <= rng {
				positions = append(positions, center.Shift(dx, dy))
			}
		}
	}
	return positions
}

func line(center domain.Position, rng float64) []domain.Position {
	steps := int(math.Floor(rng))
	positions := make([]domain.Position, 0, 4*steps)
	for _, dir := range lineDirections {
		for i := 1; i <= steps; i++ {
			positions = append(positions, center.Shift(dir[0]*i, dir[1]*i))
		}
	}
	return positions
}

func fromOffsets(center domain.Position, offsets [][2]int) []domain.Position {
	positions := make([]domain.Position, 0, len(offsets))
	for _, d := range offsets {
		positions = append(positions, center.Shift(d[0], d[1]))
	}
	return positions
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
