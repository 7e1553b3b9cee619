package model

import (
	"encoding/json"
	"fmt"
)

// RoomSize is the edge length of every room in cells.
const RoomSize = 50

// TerrainType classifies a single room cell.
type TerrainType byte

const (
	Plain TerrainType = 0
	Wall  TerrainType = 1
	Swamp TerrainType = 2
)

// Terrain is a fixed 50x50 grid, row-major. On the wire it is a 2500-character
// string of digits ('0' plain, '1' wall, '2' swamp, '3' wall) matching the
// engine's compact room terrain export.
type Terrain struct {
	Cells []TerrainType
}

// At returns the terrain at (x, y). Out-of-bounds coordinates are walls so
// searches never leave the room through a corner; a nil or short grid reads
// as plain.
func (t *Terrain) At(x, y int) TerrainType {
	if x < 0 || x >= RoomSize || y < 0 || y >= RoomSize {
		return Wall
	}
	if t == nil || len(t.Cells) != RoomSize*RoomSize {
		return Plain
	}
	return t.Cells[y*RoomSize+x]
}

func (t *Terrain) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("terrain: %w", err)
	}
	if len(s) != RoomSize*RoomSize {
		return fmt.Errorf("terrain: want %d cells, got %d", RoomSize*RoomSize, len(s))
	}
	cells := make([]TerrainType, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			cells[i] = Plain
		case '1', '3':
			// 3 is swamp+wall in the engine's mask; walls win.
			cells[i] = Wall
		case '2':
			cells[i] = Swamp
		default:
			return fmt.Errorf("terrain: invalid cell %q at %d", s[i], i)
		}
	}
	t.Cells = cells
	return nil
}

func (t Terrain) MarshalJSON() ([]byte, error) {
	b := make([]byte, len(t.Cells))
	for i, c := range t.Cells {
		b[i] = '0' + byte(c)
	}
	return json.Marshal(string(b))
}
