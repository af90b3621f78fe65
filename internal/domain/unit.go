package domain

// UnitID - идентификатор юнита (присваивает сервер).
type UnitID int

// PlayerID - идентификатор игрока. 0 - юнит без владельца.
type PlayerID int

// UnitSprite - форма юнита на поле
type UnitSprite string

const (
	SpriteTriangle UnitSprite = "Triangle"
	SpriteSquare   UnitSprite = "Square"
	SpriteCircle   UnitSprite = "Circle"
)

// Unit - юнит на поле. Владеет им world-store, меняется только эффектами.
type Unit struct {
	ID        UnitID
	PlayerID  PlayerID
	Coords    Position
	Sprite    UnitSprite
	CurHealth int
	MaxHealth int
	ActionIDs []ActionID
}

// CanUse проверяет, есть ли действие в списке разрешенных юниту.
func (u *Unit) CanUse(id ActionID) bool {
	for _, a := range u.ActionIDs {
		if a == id {
			return true
		}
	}
	return false
}

// IsAllyOf - юниты одного игрока.
func (u *Unit) IsAllyOf(other *Unit) bool {
	return u.PlayerID == other.PlayerID
}

// Player - участник партии.
type Player struct {
	ID      PlayerID
	Name    string
	IsReady bool
}
