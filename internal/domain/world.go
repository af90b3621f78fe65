package domain

// MapState - размеры и рельеф карты.
// Terrain индексируется как [y][x]; 0 - свободная клетка, остальное - стена/занято.
type MapState struct {
	Name    string
	Width   int
	Height  int
	Terrain [][]int
}

// InBounds - 0 <= x < Width, 0 <= y < Height
func (m *MapState) InBounds(p Position) bool {
	return p.X >= 0 && p.X < m.Width && p.Y >= 0 && p.Y < m.Height
}

// TerrainAt возвращает значение рельефа. Клетки вне массива считаются свободными.
func (m *MapState) TerrainAt(p Position) int {
	if p.Y < 0 || p.Y >= len(m.Terrain) {
		return 0
	}
	row := m.Terrain[p.Y]
	if p.X < 0 || p.X >= len(row) {
		return 0
	}
	return row[p.X]
}

// IsFree - клетка в границах и рельеф нулевой.
func (m *MapState) IsFree(p Position) bool {
	return m.InBounds(p) && m.TerrainAt(p) == 0
}
