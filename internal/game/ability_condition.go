package game

import (
	"fmt"
	"strconv"
	"strings"

	"grid_tactics/internal/shared"
)

// Field names a queryable value of the game state for condition clauses.
type Field string

const (
	FieldDistance        Field = "distance"
	FieldHealth          Field = "health"
	FieldTargetHealth    Field = "target_health"
	FieldAdjacentEnemies Field = "adjacent_enemies"
	FieldAdjacentAllies  Field = "adjacent_allies"
)

// ConditionEnv is the state a condition is evaluated against.
type ConditionEnv struct {
	Card   *Card
	Target Coord
	Board  Occupancy
}

var fieldRegistry = map[Field]func(ConditionEnv) int{
	FieldDistance: func(env ConditionEnv) int {
		return shared.Chebyshev(env.Card.Position, env.Target)
	},
	FieldHealth: func(env ConditionEnv) int {
		return env.Card.HealthPercent()
	},
	FieldTargetHealth: func(env ConditionEnv) int {
		if env.Board == nil {
			return 0
		}
		return env.Board.At(env.Target).HealthPercent()
	},
	FieldAdjacentEnemies: func(env ConditionEnv) int {
		return countAdjacent(env, func(other *Card) bool { return env.Card.HostileTo(other) })
	},
	FieldAdjacentAllies: func(env ConditionEnv) int {
		return countAdjacent(env, func(other *Card) bool { return other != env.Card && !env.Card.HostileTo(other) })
	},
}

func countAdjacent(env ConditionEnv, match func(*Card) bool) int {
	if env.Board == nil {
		return 0
	}
	n := 0
	for _, d := range append(shared.Straights[:], shared.Diagonals[:]...) {
		if other := env.Board.At(env.Card.Position.Add(d.Offset())); other != nil && match(other) {
			n++
		}
	}
	return n
}

type CompareOp string

const (
	OpEq CompareOp = "=="
	OpLt CompareOp = "<"
	OpGt CompareOp = ">"
	OpLe CompareOp = "<="
	OpGe CompareOp = ">="
)

// two-character operators first so "<=" is not read as "<".
var compareOps = []CompareOp{OpLe, OpGe, OpEq, OpLt, OpGt}

func (op CompareOp) apply(a, b int) bool {
	switch op {
	case OpEq:
		return a == b
	case OpLt:
		return a < b
	case OpGt:
		return a > b
	case OpLe:
		return a <= b
	case OpGe:
		return a >= b
	default:
		return false
	}
}

// Clause is a single <field><op><value> comparison.
type Clause struct {
	Field Field
	Op    CompareOp
	Value int
}

func (c Clause) String() string { return string(c.Field) + string(c.Op) + strconv.Itoa(c.Value) }

// Condition is a conjunction of clauses. The zero Condition always holds.
type Condition struct {
	Clauses []Clause
}

// ParseCondition compiles expressions such as "distance<=2 && health<50".
func ParseCondition(expr string) (Condition, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Condition{}, nil
	}
	var cond Condition
	for _, part := range strings.Split(expr, "&&") {
		clause, err := parseClause(strings.TrimSpace(part))
		if err != nil {
			return Condition{}, fmt.Errorf("%w %q: %w", ErrInvalidCondition, expr, err)
		}
		cond.Clauses = append(cond.Clauses, clause)
	}
	return cond, nil
}

func parseClause(s string) (Clause, error) {
	for _, op := range compareOps {
		idx := strings.Index(s, string(op))
		if idx < 0 {
			continue
		}
		field := Field(strings.ToLower(strings.TrimSpace(s[:idx])))
		if _, ok := fieldRegistry[field]; !ok {
			return Clause{}, fmt.Errorf("unknown field %q", field)
		}
		raw := strings.TrimSpace(s[idx+len(op):])
		value, err := strconv.Atoi(raw)
		if err != nil {
			return Clause{}, fmt.Errorf("bad value %q", raw)
		}
		return Clause{Field: field, Op: op, Value: value}, nil
	}
	return Clause{}, fmt.Errorf("no comparison operator in %q", s)
}

func (c Condition) Eval(env ConditionEnv) bool {
	if env.Card == nil {
		return false
	}
	for _, cl := range c.Clauses {
		if !cl.Op.apply(fieldRegistry[cl.Field](env), cl.Value) {
			return false
		}
	}
	return true
}

// spatial returns the distance clauses, which double as the implicit range
// of abilities that take their range from the trigger condition.
func (c Condition) spatial() []Clause {
	var out []Clause
	for _, cl := range c.Clauses {
		if cl.Field == FieldDistance {
			out = append(out, cl)
		}
	}
	return out
}

type filterPredicate func(card, occupant *Card, at Coord) bool

var filterRegistry = map[string]filterPredicate{
	"enemy": func(card, occupant *Card, _ Coord) bool { return card.HostileTo(occupant) },
	"ally": func(card, occupant *Card, _ Coord) bool {
		return occupant != nil && occupant != card && !card.HostileTo(occupant)
	},
	"occupied":  func(_, occupant *Card, _ Coord) bool { return occupant != nil },
	"empty":     func(_, occupant *Card, _ Coord) bool { return occupant == nil },
	"self":      func(card, _ *Card, at Coord) bool { return at == card.Position },
	"others":    func(card, _ *Card, at Coord) bool { return at != card.Position },
	"face_down": func(_, occupant *Card, _ Coord) bool { return occupant != nil && occupant.FaceDown },
}

var filterAliases = map[string]string{
	"enemies":  "enemy",
	"hostile":  "enemy",
	"allies":   "ally",
	"friendly": "ally",
	"not_self": "others",
	"facedown": "face_down",
	"hidden":   "face_down",
}

// RangeFilter narrows a range by owner and face-down predicates, for example
// "enemy only" or "occupied && others".
type RangeFilter struct {
	terms []string
	preds []filterPredicate
}

func ParseRangeFilter(expr string) (RangeFilter, error) {
	var f RangeFilter
	if strings.TrimSpace(expr) == "" {
		return f, nil
	}
	for _, part := range strings.Split(expr, "&&") {
		var words []string
		for _, w := range strings.Fields(strings.ToLower(part)) {
			if w == "only" || w == "target" || w == "targets" {
				continue
			}
			words = append(words, w)
		}
		term := strings.Join(words, "_")
		if alias, ok := filterAliases[term]; ok {
			term = alias
		}
		pred, ok := filterRegistry[term]
		if !ok {
			return RangeFilter{}, fmt.Errorf("%w: unknown range filter %q", ErrInvalidCondition, strings.TrimSpace(part))
		}
		f.terms = append(f.terms, term)
		f.preds = append(f.preds, pred)
	}
	return f, nil
}

func (f RangeFilter) Empty() bool { return len(f.preds) == 0 }

func (f RangeFilter) Apply(card *Card, occ Occupancy, r RangeResult) RangeResult {
	if f.Empty() {
		return r
	}
	return r.Filter(func(at Coord) bool {
		occupant := occ.At(at)
		for _, p := range f.preds {
			if !p(card, occupant, at) {
				return false
			}
		}
		return true
	})
}
