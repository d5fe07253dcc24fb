package shared

import (
	"fmt"
	"strconv"
)

// Coord is a cell on the board. X grows east, Y grows north.
type Coord struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func C(x, y int) Coord { return Coord{X: x, Y: y} }

func (c Coord) Add(o Offset) Coord { return Coord{X: c.X + o.DX, Y: c.Y + o.DY} }

func (c Coord) Sub(o Coord) Offset { return Offset{DX: c.X - o.X, DY: c.Y - o.Y} }

// In reports whether c lies inside [0,width) x [0,height).
func (c Coord) In(width, height int) bool {
	return c.X >= 0 && c.X < width && c.Y >= 0 && c.Y < height
}

func (c Coord) String() string {
	return "(" + strconv.Itoa(c.X) + "," + strconv.Itoa(c.Y) + ")"
}

type Offset struct {
	DX int
	DY int
}

func (o Offset) Scale(n int) Offset { return Offset{DX: o.DX * n, DY: o.DY * n} }

func (o Offset) String() string { return fmt.Sprintf("%+d%+d", o.DX, o.DY) }

type Direction uint8

const (
	DirN Direction = iota
	DirNE
	DirE
	DirSE
	DirS
	DirSW
	DirW
	DirNW
	DirNone Direction = 255
)

var directionOffsets = [...]Offset{
	DirN:  {DX: 0, DY: 1},
	DirNE: {DX: 1, DY: 1},
	DirE:  {DX: 1, DY: 0},
	DirSE: {DX: 1, DY: -1},
	DirS:  {DX: 0, DY: -1},
	DirSW: {DX: -1, DY: -1},
	DirW:  {DX: -1, DY: 0},
	DirNW: {DX: -1, DY: 1},
}

// Offset returns the unit step for d. DirNone has a zero step.
func (d Direction) Offset() Offset {
	if int(d) >= len(directionOffsets) {
		return Offset{}
	}
	return directionOffsets[d]
}

func (d Direction) String() string {
	switch d {
	case DirN:
		return "N"
	case DirNE:
		return "NE"
	case DirE:
		return "E"
	case DirSE:
		return "SE"
	case DirS:
		return "S"
	case DirSW:
		return "SW"
	case DirW:
		return "W"
	case DirNW:
		return "NW"
	default:
		return "?"
	}
}

// Straights and Diagonals list the orthogonal and diagonal directions in a
// fixed order so offset sets enumerate deterministically.
var (
	Straights = [...]Direction{DirN, DirS, DirE, DirW}
	Diagonals = [...]Direction{DirNE, DirSE, DirNW, DirSW}
)
