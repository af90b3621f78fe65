package domain

import "strings"

// Pattern - алгоритм генерации смещений вокруг центра.
type Pattern uint8

const (
	PatternUnknown Pattern = iota
	PatternNone
	PatternSelf
	PatternAdjacent
	PatternAdjacentDiagonal
	PatternManhattan
	PatternCircle
	PatternLine
)

// Маппинг для конвертации JSON -> Domain
var patternFromString = map[string]Pattern{
	"NONE":             PatternNone,
	"SELF":             PatternSelf,
	"ADJACENT":         PatternAdjacent,
	"ADJACENTDIAGONAL": PatternAdjacentDiagonal,
	"MANHATTAN":        PatternManhattan,
	"CIRCLE":           PatternCircle,
	"LINE":             PatternLine,
}

// Маппинг Domain -> String (в том виде, в каком их шлет сервер)
var patternToString = map[Pattern]string{
	PatternNone:             "None",
	PatternSelf:             "Self",
	PatternAdjacent:         "Adjacent",
	PatternAdjacentDiagonal: "AdjacentDiagonal",
	PatternManhattan:        "Manhattan",
	PatternCircle:           "Circle",
	PatternLine:             "Line",
}

// ParsePattern конвертирует строку из JSON в Pattern (без учета регистра)
func ParsePattern(s string) Pattern {
	if val, ok := patternFromString[strings.ToUpper(s)]; ok {
		return val
	}
	return PatternUnknown
}

func (p Pattern) String() string {
	if val, ok := patternToString[p]; ok {
		return val
	}
	return "Unknown"
}

// NeedsRange - паттерны, для которых range обязателен.
func (p Pattern) NeedsRange() bool {
	return p == PatternManhattan || p == PatternCircle || p == PatternLine
}

// TargetType - на что направлено действие.
type TargetType uint8

const (
	TargetUnknown TargetType = iota
	TargetNone
	TargetCell
	TargetUnit
)

var targetTypeFromString = map[string]TargetType{
	"NONE": TargetNone,
	"CELL": TargetCell,
	"UNIT": TargetUnit,
}

var targetTypeToString = map[TargetType]string{
	TargetNone: "None",
	TargetCell: "Cell",
	TargetUnit: "Unit",
}

func ParseTargetType(s string) TargetType {
	if val, ok := targetTypeFromString[strings.ToUpper(s)]; ok {
		return val
	}
	return TargetUnknown
}

func (t TargetType) String() string {
	if val, ok := targetTypeToString[t]; ok {
		return val
	}
	return "Unknown"
}

// HighlightType - смысл подсветки (рендерер выбирает по нему цвет).
type HighlightType uint8

const (
	HighlightUnknown HighlightType = iota
	HighlightSelection
	HighlightMovement
	HighlightDamage
	HighlightHeal
	HighlightBuff
	HighlightDebuff
)

var highlightTypeFromString = map[string]HighlightType{
	"SELECTION": HighlightSelection,
	"MOVEMENT":  HighlightMovement,
	"DAMAGE":    HighlightDamage,
	"HEAL":      HighlightHeal,
	"BUFF":      HighlightBuff,
	"DEBUFF":    HighlightDebuff,
}

var highlightTypeToString = map[HighlightType]string{
	HighlightSelection: "Selection",
	HighlightMovement:  "Movement",
	HighlightDamage:    "Damage",
	HighlightHeal:      "Heal",
	HighlightBuff:      "Buff",
	HighlightDebuff:    "Debuff",
}

func ParseHighlightType(s string) HighlightType {
	if val, ok := highlightTypeFromString[strings.ToUpper(s)]; ok {
		return val
	}
	return HighlightUnknown
}

func (h HighlightType) String() string {
	if val, ok := highlightTypeToString[h]; ok {
		return val
	}
	return "Unknown"
}

// Visibility - в каком состоянии планирования слой подсветки виден.
type Visibility uint8

const (
	VisibilityUnknown Visibility = iota
	VisibilitySelecting
	VisibilityConfirmed
	VisibilityAlways
)

var visibilityFromString = map[string]Visibility{
	"SELECTING": VisibilitySelecting,
	"CONFIRMED": VisibilityConfirmed,
	"ALWAYS":    VisibilityAlways,
}

var visibilityToString = map[Visibility]string{
	VisibilitySelecting: "Selecting",
	VisibilityConfirmed: "Confirmed",
	VisibilityAlways:    "Always",
}

func ParseVisibility(s string) Visibility {
	if val, ok := visibilityFromString[strings.ToUpper(s)]; ok {
		return val
	}
	return VisibilityUnknown
}

func (v Visibility) String() string {
	if val, ok := visibilityToString[v]; ok {
		return val
	}
	return "Unknown"
}

// RelativeTo - к чему привязан слой подсветки.
type RelativeTo uint8

const (
	RelativeUnknown RelativeTo = iota
	RelativeExecutor
	RelativeTarget
)

var relativeFromString = map[string]RelativeTo{
	"EXECUTOR": RelativeExecutor,
	"TARGET":   RelativeTarget,
}

var relativeToString = map[RelativeTo]string{
	RelativeExecutor: "Executor",
	RelativeTarget:   "Target",
}

func ParseRelativeTo(s string) RelativeTo {
	if val, ok := relativeFromString[strings.ToUpper(s)]; ok {
		return val
	}
	return RelativeUnknown
}

func (r RelativeTo) String() string {
	if val, ok := relativeToString[r]; ok {
		return val
	}
	return "Unknown"
}

// ScheduleState - жизненный цикл запланированного действия юнита.
// Idle означает, что ScheduledAction для юнита нет.
type ScheduleState uint8

const (
	StateIdle ScheduleState = iota
	StateSelecting
	StateConfirmed
)

var scheduleStateToString = map[ScheduleState]string{
	StateIdle:      "Idle",
	StateSelecting: "Selecting",
	StateConfirmed: "Confirmed",
}

func (s ScheduleState) String() string {
	if val, ok := scheduleStateToString[s]; ok {
		return val
	}
	return "Unknown"
}

// Matches сообщает, виден ли слой с такой видимостью в данном состоянии.
func (v Visibility) Matches(state ScheduleState) bool {
	switch v {
	case VisibilityAlways:
		return true
	case VisibilitySelecting:
		return state == StateSelecting
	case VisibilityConfirmed:
		return state == StateConfirmed
	default:
		return false
	}
}
