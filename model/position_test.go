package model

import "testing"

func TestParseRoomName(t *testing.T) {
	tests := []struct {
		name   string
		rx, ry int
		ok     bool
	}{
		{"E0S0", 0, 0, true},
		{"W0N0", -1, -1, true},
		{"W3N7", -4, -8, true},
		{"E12S4", 12, 4, true},
		{"X1N1", 0, 0, false},
		{"E1", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tc := range tests {
		rx, ry, ok := ParseRoomName(tc.name)
		if ok != tc.ok || rx != tc.rx || ry != tc.ry {
			t.Errorf("ParseRoomName(%q) = (%d, %d, %v), want (%d, %d, %v)",
				tc.name, rx, ry, ok, tc.rx, tc.ry, tc.ok)
		}
		if ok && RoomName(rx, ry) != tc.name {
			t.Errorf("RoomName(%d, %d) = %q, want %q", rx, ry, RoomName(rx, ry), tc.name)
		}
	}
}

func TestLinearDistance(t *testing.T) {
	if d := LinearDistance("W1N1", "W1N4"); d != 3 {
		t.Errorf("LinearDistance(W1N1, W1N4) = %d, want 3", d)
	}
	// Crossing the W/E boundary: W0 and E0 are adjacent.
	if d := LinearDistance("W0N1", "E0N1"); d != 1 {
		t.Errorf("LinearDistance(W0N1, E0N1) = %d, want 1", d)
	}
}

func TestRangeAcrossRooms(t *testing.T) {
	a := Pos{X: 49, Y: 10, Room: "E0S0"}
	b := Pos{X: 0, Y: 10, Room: "E1S0"}
	if r := a.RangeTo(b); r != 1 {
		t.Errorf("RangeTo across room edge = %d, want 1", r)
	}
	if r := (Pos{X: 10, Y: 10, Room: "E0S0"}).RangeTo(Pos{X: 13, Y: 12, Room: "E0S0"}); r != 3 {
		t.Errorf("RangeTo = %d, want 3", r)
	}
}

func TestWorldRoundTrip(t *testing.T) {
	p := Pos{X: 7, Y: 42, Room: "W2N3"}
	wx, wy, ok := p.World()
	if !ok {
		t.Fatal("World() failed")
	}
	if got := FromWorld(wx, wy); got != p {
		t.Errorf("FromWorld(World(%v)) = %v", p, got)
	}
}

func TestDirectionTo(t *testing.T) {
	p := Pos{X: 10, Y: 10, Room: "E1S1"}
	for _, d := range Directions {
		dx, dy := d.Delta()
		q := Pos{X: 10 + dx, Y: 10 + dy, Room: "E1S1"}
		got, ok := p.DirectionTo(q)
		if !ok || got != d {
			t.Errorf("DirectionTo(%v) = %v, %v; want %v", q, got, ok, d)
		}
	}
	if _, ok := p.DirectionTo(Pos{X: 12, Y: 10, Room: "E1S1"}); ok {
		t.Error("DirectionTo should reject non-adjacent positions")
	}
}
