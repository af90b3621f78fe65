package api

import (
	"encoding/json"
)

// --- СЕРВЕР -> КЛИЕНТ ---

// Типы серверных сообщений
const (
	MsgActions   = "actions"   // []ActionDefinitionDTO - каталог действий
	MsgGameState = "gameState" // GameStateDTO - снапшот (может быть частичным)
	MsgPlayerID  = "playerId"  // PlayerDTO - кто мы
	MsgEffects   = "effects"   // []EffectDTO - результат хода, в порядке разрешения
	MsgError     = "error"     // string
)

// ServerMessage это корневой объект, который сервер отправляет клиенту.
// Структура Payload зависит от Type.
type ServerMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// PositionDTO - клетка сетки.
type PositionDTO struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// TargetFilterDTO - правила отбора целей. Необязательные поля - указатели.
type TargetFilterDTO struct {
	Pattern           string   `json:"pattern,omitempty"`
	Range             *float64 `json:"range,omitempty"`
	RequireEnemy      *bool    `json:"requireEnemy,omitempty"`
	RequireAlly       *bool    `json:"requireAlly,omitempty"`
	RequiredFreeSpace *bool    `json:"requiredFreeSpace,omitempty"`
	MaxTargets        *int     `json:"maxTargets,omitempty"`
}

// HighlightLayerDTO - один слой подсветки.
type HighlightLayerDTO struct {
	Pattern    string  `json:"pattern"`
	Range      float64 `json:"range"`
	RelativeTo string  `json:"relativeTo"` // Executor, Target
	Type       string  `json:"type"`       // Selection, Movement, Damage, Heal, Buff, Debuff
	Visibility string  `json:"visibility"` // Selecting, Confirmed, Always
}

// ActionDefinitionDTO - запись каталога действий.
type ActionDefinitionDTO struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Icon            string              `json:"icon"`
	TargetType      string              `json:"targetType"` // Cell, Unit, None
	TargetFilter    TargetFilterDTO     `json:"targetFilter"`
	HighlightLayers []HighlightLayerDTO `json:"highlightLayers"`
}

// UnitDTO - юнит на поле. PlayerID == nil - юнит без владельца.
type UnitDTO struct {
	UnitID    int         `json:"unitId"`
	PlayerID  *int        `json:"playerId,omitempty"`
	Coords    PositionDTO `json:"coords"`
	Sprite    string      `json:"sprite"` // Triangle, Square, Circle
	CurHealth int         `json:"curHealth"`
	MaxHealth int         `json:"maxHealth"`
	ActionIDs []string    `json:"actionIds"`
}

// PlayerDTO - участник партии.
type PlayerDTO struct {
	PlayerID   int    `json:"playerId"`
	PlayerName string `json:"playerName"`
	IsReady    bool   `json:"isReady"`
}

// MapDTO - размеры и рельеф. Terrain[y][x], 0 - свободно.
type MapDTO struct {
	Name    string  `json:"name"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Terrain [][]int `json:"terrain"`
}

// GameStateDTO - снапшот состояния. Отсутствующее поле не трогает текущее значение на клиенте.
type GameStateDTO struct {
	Units   []UnitDTO   `json:"units,omitempty"`
	Players []PlayerDTO `json:"players,omitempty"`
	Map     *MapDTO     `json:"map,omitempty"`
}

// EffectDTO - описание эффекта. Набор обязательных полей зависит от Type.
//
//	Move:      unitId, duration, from, to
//	Shoot:     unitId, duration, from, to, [targetUnitId]
//	Melee:     unitId, duration, from, to, [targetUnitId]
//	Explosion: unitId, duration, center, radius
//	Damage:    unitId, targetUnitId, amount, newHealth, [duration]
//	Death:     unitId, duration
//	Heal:      unitId, targetUnitId, amount, [duration]
type EffectDTO struct {
	Type string `json:"type,omitempty"`
	// EffectType - старое имя поля типа, принимается, если Type пуст.
	EffectType string `json:"effectType,omitempty"`

	ID       string   `json:"id,omitempty"`
	UnitID   *int     `json:"unitId,omitempty"`
	Duration *float64 `json:"duration,omitempty"` // миллисекунды

	From   *PositionDTO `json:"from,omitempty"`
	To     *PositionDTO `json:"to,omitempty"`
	Center *PositionDTO `json:"center,omitempty"`
	Radius *float64     `json:"radius,omitempty"`

	TargetUnitID *int `json:"targetUnitId,omitempty"`
	Amount       *int `json:"amount,omitempty"`
	NewHealth    *int `json:"newHealth,omitempty"`
}

// Kind возвращает тип эффекта с учетом старого имени поля.
func (e EffectDTO) Kind() string {
	if e.Type != "" {
		return e.Type
	}
	return e.EffectType
}

// --- КЛИЕНТ -> СЕРВЕР ---

// Команды клиента
const (
	CmdJoinGame         = "JoinGame"
	CmdRequestGameState = "RequestGameState"
	CmdRequestPlayerID  = "RequestPlayerId"
	CmdSubmitActions    = "SubmitActions"
)

// ClientCommand это корневой объект для всех сообщений от клиента к серверу.
type ClientCommand struct {
	// Action название команды (CmdJoinGame, ...).
	Action string `json:"action"`

	// Токены партии и игрока. Обязательны для всех команд.
	GameToken   string `json:"gameToken"`
	PlayerToken string `json:"playerToken"`

	// Payload JSON-объект с данными команды. Его структура зависит от Action.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// --- Payloads ---

// TargetDTO - цель запланированного действия.
type TargetDTO struct {
	Cell    *PositionDTO `json:"cell,omitempty"`
	UnitIDs []int        `json:"unitIds,omitempty"`
}

// ScheduledActionDTO - подтвержденное действие юнита.
type ScheduledActionDTO struct {
	UnitID    int        `json:"unitId"`
	ActionID  string     `json:"actionId"`
	State     string     `json:"state"`
	Confirmed bool       `json:"confirmed"`
	Target    *TargetDTO `json:"target,omitempty"`
}

// SubmitActionsPayload используется командой SubmitActions.
type SubmitActionsPayload struct {
	Actions []ScheduledActionDTO `json:"actions"`
}
