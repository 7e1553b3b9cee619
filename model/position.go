package model

import (
	"fmt"
	"strconv"
)

// Pos is a cell inside a named room.
type Pos struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Room string `json:"room"`
}

func (p Pos) String() string { return fmt.Sprintf("[%s %d,%d]", p.Room, p.X, p.Y) }

// Center returns the middle cell of a room; used as the travel target for
// units that only need to reach the room.
func Center(room string) Pos { return Pos{X: 25, Y: 25, Room: room} }

// RangeTo returns the Chebyshev distance between two positions. Positions in
// different rooms are compared in world coordinates; an unparsable room name
// yields a very large range.
func (p Pos) RangeTo(q Pos) int {
	if p.Room == q.Room {
		return max(abs(p.X-q.X), abs(p.Y-q.Y))
	}
	px, py, ok1 := p.World()
	qx, qy, ok2 := q.World()
	if !ok1 || !ok2 {
		return 1 << 30
	}
	return max(abs(px-qx), abs(py-qy))
}

func (p Pos) InRangeTo(q Pos, r int) bool { return p.RangeTo(q) <= r }

// World converts the position into global cell coordinates.
func (p Pos) World() (int, int, bool) {
	rx, ry, ok := ParseRoomName(p.Room)
	if !ok {
		return 0, 0, false
	}
	return rx*RoomSize + p.X, ry*RoomSize + p.Y, true
}

// FromWorld is the inverse of Pos.World.
func FromWorld(wx, wy int) Pos {
	rx, x := floorDiv(wx, RoomSize)
	ry, y := floorDiv(wy, RoomSize)
	return Pos{X: x, Y: y, Room: RoomName(rx, ry)}
}

// ParseRoomName turns a room name such as "W3N7" into room-grid coordinates.
// West and north are negative: W0 is -1, E0 is 0, N0 is -1, S0 is 0.
func ParseRoomName(name string) (int, int, bool) {
	if len(name) < 4 {
		return 0, 0, false
	}
	i := 1
	for i < len(name) && name[i] >= '0' && name[i] <= '9' {
		i++
	}
	if i == 1 || i >= len(name)-1 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(name[1:i])
	if err != nil {
		return 0, 0, false
	}
	v, err := strconv.Atoi(name[i+1:])
	if err != nil {
		return 0, 0, false
	}

	var rx, ry int
	switch name[0] {
	case 'W':
		rx = -h - 1
	case 'E':
		rx = h
	default:
		return 0, 0, false
	}
	switch name[i] {
	case 'N':
		ry = -v - 1
	case 'S':
		ry = v
	default:
		return 0, 0, false
	}
	return rx, ry, true
}

// RoomName is the inverse of ParseRoomName.
func RoomName(rx, ry int) string {
	var h, v string
	if rx < 0 {
		h = "W" + strconv.Itoa(-rx-1)
	} else {
		h = "E" + strconv.Itoa(rx)
	}
	if ry < 0 {
		v = "N" + strconv.Itoa(-ry-1)
	} else {
		v = "S" + strconv.Itoa(ry)
	}
	return h + v
}

// LinearDistance is the number of rooms between a and b, ignoring walls.
func LinearDistance(a, b string) int {
	ax, ay, ok1 := ParseRoomName(a)
	bx, by, ok2 := ParseRoomName(b)
	if !ok1 || !ok2 {
		return 1 << 30
	}
	return max(abs(ax-bx), abs(ay-by))
}

// Direction is one of the eight single-step move directions, clockwise from top.
type Direction int

const (
	Top Direction = iota + 1
	TopRight
	Right
	BottomRight
	Bottom
	BottomLeft
	Left
	TopLeft
)

// Directions lists all eight directions in engine order.
var Directions = []Direction{Top, TopRight, Right, BottomRight, Bottom, BottomLeft, Left, TopLeft}

var directionDelta = map[Direction][2]int{
	Top:         {0, -1},
	TopRight:    {1, -1},
	Right:       {1, 0},
	BottomRight: {1, 1},
	Bottom:      {0, 1},
	BottomLeft:  {-1, 1},
	Left:        {-1, 0},
	TopLeft:     {-1, -1},
}

// Delta returns the x/y offset of a direction, or (0,0) for an invalid one.
func (d Direction) Delta() (int, int) {
	v := directionDelta[d]
	return v[0], v[1]
}

// DirectionTo returns the direction of an adjacent position q from p.
func (p Pos) DirectionTo(q Pos) (Direction, bool) {
	px, py, ok1 := p.World()
	qx, qy, ok2 := q.World()
	if !ok1 || !ok2 {
		return 0, false
	}
	dx, dy := sign(qx-px), sign(qy-py)
	if abs(qx-px) > 1 || abs(qy-py) > 1 || (dx == 0 && dy == 0) {
		return 0, false
	}
	for d, v := range directionDelta {
		if v[0] == dx && v[1] == dy {
			return d, true
		}
	}
	return 0, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

func floorDiv(a, b int) (int, int) {
	q := a / b
	r := a % b
	if r < 0 {
		q--
		r += b
	}
	return q, r
}
