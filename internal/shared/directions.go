package shared

import "golang.org/x/exp/constraints"

// StraightOffsets returns the four orthogonal offsets at exactly distance n.
func StraightOffsets(n int) []Offset {
	out := make([]Offset, 0, len(Straights))
	for _, d := range Straights {
		out = append(out, d.Offset().Scale(n))
	}
	return out
}

// DiagonalOffsets returns the four diagonal offsets at exactly distance n.
func DiagonalOffsets(n int) []Offset {
	out := make([]Offset, 0, len(Diagonals))
	for _, d := range Diagonals {
		out = append(out, d.Offset().Scale(n))
	}
	return out
}

// Line returns the cells strictly between from and to when they share a
// row, column or diagonal. Unaligned or adjacent pairs have no line.
func Line(from, to Coord) []Coord {
	d := to.Sub(from)
	aligned := false
	switch {
	case d.DY == 0 && d.DX != 0:
		aligned = true
	case d.DX == 0 && d.DY != 0:
		aligned = true
	case Abs(d.DX) == Abs(d.DY) && d.DX != 0:
		aligned = true
	}
	if !aligned {
		return nil
	}

	distance := max(Abs(d.DX), Abs(d.DY)) - 1
	if distance <= 0 {
		return nil
	}

	step := Offset{DX: normalize(d.DX), DY: normalize(d.DY)}
	cells := make([]Coord, 0, distance)
	cur := from
	for i := 0; i < distance; i++ {
		cur = cur.Add(step)
		cells = append(cells, cur)
	}
	return cells
}

// Chebyshev is the king-move distance; diagonal steps cost one.
func Chebyshev(a, b Coord) int {
	d := b.Sub(a)
	return max(Abs(d.DX), Abs(d.DY))
}

func Manhattan(a, b Coord) int {
	d := b.Sub(a)
	return Abs(d.DX) + Abs(d.DY)
}

func Abs[T constraints.Signed](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

func normalize(v int) int {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}
