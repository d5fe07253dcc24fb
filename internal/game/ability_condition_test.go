package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCondition(t *testing.T) {
	cond, err := ParseCondition("distance<=2 && health < 50")
	require.NoError(t, err)
	assert.Equal(t, []Clause{
		{Field: FieldDistance, Op: OpLe, Value: 2},
		{Field: FieldHealth, Op: OpLt, Value: 50},
	}, cond.Clauses)

	empty, err := ParseCondition("   ")
	require.NoError(t, err)
	assert.Empty(t, empty.Clauses)
}

func TestParseConditionRejectsMalformed(t *testing.T) {
	for _, expr := range []string{
		"distance<>1",
		"mana<3",
		"distance",
		"health>=lots",
		"distance<=1 &&",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := ParseCondition(expr)
			assert.ErrorIs(t, err, ErrInvalidCondition)
		})
	}
}

func TestConditionEval(t *testing.T) {
	f := newFixture(t, 8, 8)
	card := f.spawn(t, "a", "x", Player, xy(2, 2))
	card.Health = 1
	enemy := f.spawn(t, "e", "x", Opponent, xy(3, 3))
	enemy.Health = 2
	f.spawn(t, "f", "x", Player, xy(1, 2))

	tests := []struct {
		expr   string
		target Coord
		want   bool
	}{
		{"distance==1", xy(3, 3), true},
		{"distance>1", xy(3, 3), false},
		{"distance<=3", xy(5, 5), true},
		{"health<50", xy(3, 3), true},
		{"target_health==50", xy(3, 3), true},
		{"target_health>0", xy(6, 6), false},
		{"adjacent_enemies==1 && adjacent_allies==1", xy(2, 2), true},
		{"", xy(0, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			cond, err := ParseCondition(tt.expr)
			require.NoError(t, err)
			got := cond.Eval(ConditionEnv{Card: card, Target: tt.target, Board: f.board})
			assert.Equal(t, tt.want, got)
		})
	}

	assert.False(t, Condition{}.Eval(ConditionEnv{}), "no card never holds")
}

func TestRangeFilter(t *testing.T) {
	f := newFixture(t, 4, 1)
	card := f.spawn(t, "a", "x", Player, xy(0, 0))
	f.spawn(t, "b", "x", Player, xy(1, 0))
	hidden := f.spawn(t, "c", "x", Player, xy(2, 0))
	hidden.FaceDown = true
	all := NewRangeResult(xy(0, 0), xy(1, 0), xy(2, 0), xy(3, 0))

	tests := []struct {
		expr string
		want []Coord
	}{
		{"", []Coord{xy(0, 0), xy(1, 0), xy(2, 0), xy(3, 0)}},
		{"Enemy only", []Coord{xy(2, 0)}},
		{"allies", []Coord{xy(1, 0)}},
		{"empty", []Coord{xy(3, 0)}},
		{"self", []Coord{xy(0, 0)}},
		{"occupied && others", []Coord{xy(1, 0), xy(2, 0)}},
		{"face down", []Coord{xy(2, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			filter, err := ParseRangeFilter(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, filter.Apply(card, f.board, all).Sorted())
		})
	}

	_, err := ParseRangeFilter("neutral only")
	assert.ErrorIs(t, err, ErrInvalidCondition)
}
