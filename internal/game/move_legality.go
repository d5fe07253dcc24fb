package game

import (
	"fmt"
	"slices"
	"sort"
	"sync"

	"grid_tactics/internal/shared"
)

// RangeResult is an unordered, de-duplicated set of cells.
type RangeResult map[Coord]struct{}

func NewRangeResult(cells ...Coord) RangeResult {
	r := make(RangeResult, len(cells))
	for _, c := range cells {
		r[c] = struct{}{}
	}
	return r
}

func (r RangeResult) Add(c Coord) { r[c] = struct{}{} }

func (r RangeResult) Has(c Coord) bool {
	_, ok := r[c]
	return ok
}

func (r RangeResult) Len() int { return len(r) }

// Sorted lists the cells row by row, which gives callers a stable order.
func (r RangeResult) Sorted() []Coord {
	out := make([]Coord, 0, len(r))
	for c := range r {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

func (r RangeResult) Filter(keep func(Coord) bool) RangeResult {
	out := make(RangeResult, len(r))
	for c := range r {
		if keep(c) {
			out.Add(c)
		}
	}
	return out
}

// RangeStrategy computes the legal cells for a card. Implementations must be
// pure: they only read the card and the occupancy view.
type RangeStrategy interface {
	Range(card *Card, occ Occupancy) RangeResult
}

// RangeFunc adapts a plain function to RangeStrategy.
type RangeFunc func(card *Card, occ Occupancy) RangeResult

func (f RangeFunc) Range(card *Card, occ Occupancy) RangeResult { return f(card, occ) }

type RangeKind uint8

const (
	MoveRange RangeKind = iota
	AttackRange
)

func (k RangeKind) String() string {
	if k == AttackRange {
		return "attack"
	}
	return "move"
}

// OffsetStrategy combines a fixed offset set with the shared legality rules:
// acted or face-down cards get nothing, off-board cells are dropped, and a
// straight or diagonal hop longer than one cell needs every cell in between
// to be empty. Move ranges keep empty cells. Attack ranges keep every cell
// not held by a friendly face-up card.
type OffsetStrategy struct {
	Kind    RangeKind
	Offsets []shared.Offset
}

func (s OffsetStrategy) Range(card *Card, occ Occupancy) RangeResult {
	out := RangeResult{}
	if !canProject(card) || occ == nil {
		return out
	}
	for _, off := range s.Offsets {
		dst := card.Position.Add(off)
		if !dst.In(occ.Width(), occ.Height()) || dst == card.Position {
			continue
		}
		if !pathIsClear(occ, card.Position, dst) {
			continue
		}
		occupant := occ.At(dst)
		switch s.Kind {
		case MoveRange:
			if occupant != nil {
				continue
			}
		case AttackRange:
			if occupant != nil && !card.HostileTo(occupant) {
				continue
			}
		}
		out.Add(dst)
	}
	return out
}

func canProject(card *Card) bool {
	return card != nil && !card.HasActed && !card.FaceDown
}

func pathIsClear(occ Occupancy, from, to Coord) bool {
	for _, c := range shared.Line(from, to) {
		if occ.At(c) != nil {
			return false
		}
	}
	return true
}

// AttackTargets narrows an attack range to the cells that actually hold a
// hostile card.
func AttackTargets(card *Card, occ Occupancy, area RangeResult) RangeResult {
	return area.Filter(func(c Coord) bool {
		return card.HostileTo(occ.At(c))
	})
}

// Shape builds a strategy of the given kind. Registered shapes are looked
// up by name when card types are composed.
type Shape func(kind RangeKind) RangeStrategy

func OffsetShape(offsets ...[]shared.Offset) Shape {
	flat := slices.Concat(offsets...)
	return func(kind RangeKind) RangeStrategy {
		return OffsetStrategy{Kind: kind, Offsets: flat}
	}
}

var (
	shapeMu sync.RWMutex
	shapes  = map[string]Shape{}
)

var knightOffsets = []shared.Offset{
	{DX: 1, DY: 2}, {DX: 2, DY: 1}, {DX: 2, DY: -1}, {DX: 1, DY: -2},
	{DX: -1, DY: -2}, {DX: -2, DY: -1}, {DX: -2, DY: 1}, {DX: -1, DY: 2},
}

func init() {
	mustRegisterShape("adjacent", OffsetShape(shared.StraightOffsets(1)))
	mustRegisterShape("diagonal", OffsetShape(shared.DiagonalOffsets(1)))
	mustRegisterShape("ring", OffsetShape(shared.StraightOffsets(1), shared.DiagonalOffsets(1)))
	mustRegisterShape("cross", OffsetShape(shared.StraightOffsets(1), shared.StraightOffsets(2)))
	mustRegisterShape("assassin", OffsetShape(shared.StraightOffsets(1), shared.StraightOffsets(2), shared.DiagonalOffsets(1)))
	mustRegisterShape("leaper", OffsetShape(knightOffsets))
}

// RegisterShape makes a movement/attack shape available by name.
func RegisterShape(name string, shape Shape) error {
	if name == "" || shape == nil {
		return fmt.Errorf("invalid shape registration %q", name)
	}
	shapeMu.Lock()
	defer shapeMu.Unlock()
	if _, exists := shapes[name]; exists {
		return fmt.Errorf("shape %q already registered", name)
	}
	shapes[name] = shape
	return nil
}

func mustRegisterShape(name string, shape Shape) {
	if err := RegisterShape(name, shape); err != nil {
		panic(err)
	}
}

// LookupShape returns the strategy for a registered shape and kind.
func LookupShape(name string, kind RangeKind) (RangeStrategy, bool) {
	shapeMu.RLock()
	shape := shapes[name]
	shapeMu.RUnlock()
	if shape == nil {
		return nil, false
	}
	return shape(kind), true
}

func ShapeNames() []string {
	shapeMu.RLock()
	defer shapeMu.RUnlock()
	out := make([]string, 0, len(shapes))
	for name := range shapes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
