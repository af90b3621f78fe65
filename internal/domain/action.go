package domain

// ActionID - идентификатор действия из каталога сервера.
type ActionID string

// TargetFilter - правила отбора клеток-кандидатов.
type TargetFilter struct {
	Pattern           Pattern
	Range             float64 // 0 - не задан
	RequireEnemy      bool
	RequireAlly       bool
	RequiredFreeSpace bool
	MaxTargets        int // 0 - по умолчанию (1)
}

// TargetLimit возвращает фактическое ограничение на число целей-юнитов.
func (f TargetFilter) TargetLimit() int {
	if f.MaxTargets <= 0 {
		return 1
	}
	return f.MaxTargets
}

// HighlightLayer - описание одного слоя подсветки. Чисто описательная структура.
type HighlightLayer struct {
	Pattern    Pattern
	Range      float64
	RelativeTo RelativeTo
	Type       HighlightType
	Visibility Visibility
}

// ActionDefinition - неизменяемая запись каталога действий, приходит с сервера.
type ActionDefinition struct {
	ID              ActionID
	Name            string
	Icon            string
	TargetType      TargetType
	TargetFilter    TargetFilter
	HighlightLayers []HighlightLayer
}

// Target - предварительная цель запланированного действия.
// Для действий типа Cell заполнен Cell, для Unit - ещё и UnitIDs.
type Target struct {
	Cell    Position
	UnitIDs []UnitID
}

// Equal сравнивает цели покомпонентно.
func (t Target) Equal(other Target) bool {
	if t.Cell != other.Cell || len(t.UnitIDs) != len(other.UnitIDs) {
		return false
	}
	for i := range t.UnitIDs {
		if t.UnitIDs[i] != other.UnitIDs[i] {
			return false
		}
	}
	return true
}

// ScheduledAction - изменяемое состояние прицеливания одного юнита.
type ScheduledAction struct {
	UnitID   UnitID
	ActionID ActionID
	State    ScheduleState
	Target   *Target
}

// Confirmed - совместимость с булевым флагом из протокола.
func (s ScheduledAction) Confirmed() bool {
	return s.State == StateConfirmed
}

// Clone возвращает копию, не разделяющую память с оригиналом.
func (s ScheduledAction) Clone() ScheduledAction {
	if s.Target != nil {
		t := *s.Target
		t.UnitIDs = append([]UnitID(nil), s.Target.UnitIDs...)
		s.Target = &t
	}
	return s
}
