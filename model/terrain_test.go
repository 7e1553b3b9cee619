package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func terrainString(fill byte, set map[int]byte) string {
	b := []byte(strings.Repeat(string(fill), RoomSize*RoomSize))
	for i, c := range set {
		b[i] = c
	}
	return string(b)
}

func TestTerrainUnmarshal(t *testing.T) {
	raw := terrainString('0', map[int]byte{
		0:            '1',
		1:            '2',
		RoomSize + 2: '3',
	})
	var tr Terrain
	if err := json.Unmarshal([]byte(`"`+raw+`"`), &tr); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	tests := []struct {
		x, y int
		want TerrainType
	}{
		{0, 0, Wall},
		{1, 0, Swamp},
		{2, 1, Wall},
		{3, 3, Plain},
	}
	for _, tc := range tests {
		if got := tr.At(tc.x, tc.y); got != tc.want {
			t.Errorf("At(%d, %d) = %d, want %d", tc.x, tc.y, got, tc.want)
		}
	}
}

func TestTerrainUnmarshalRejectsBadInput(t *testing.T) {
	var tr Terrain
	if err := json.Unmarshal([]byte(`"012"`), &tr); err == nil {
		t.Error("expected error for short terrain")
	}
	bad := terrainString('0', map[int]byte{10: 'x'})
	if err := json.Unmarshal([]byte(`"`+bad+`"`), &tr); err == nil {
		t.Error("expected error for invalid cell")
	}
}

func TestTerrainAtOutOfBounds(t *testing.T) {
	var tr *Terrain
	// Out-of-bounds is always a wall, even without a grid.
	if got := tr.At(-1, 0); got != Wall {
		t.Errorf("At(-1, 0) = %d, want Wall", got)
	}
	if got := tr.At(0, RoomSize); got != Wall {
		t.Errorf("At(0, 50) = %d, want Wall", got)
	}
	// Missing grid reads as plain.
	if got := tr.At(10, 10); got != Plain {
		t.Errorf("At(10, 10) on nil grid = %d, want Plain", got)
	}
}

func TestTerrainRoundTrip(t *testing.T) {
	raw := terrainString('2', map[int]byte{5: '1'})
	var tr Terrain
	if err := json.Unmarshal([]byte(`"`+raw+`"`), &tr); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(tr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"`+raw+`"` {
		t.Error("terrain did not round-trip")
	}
}
