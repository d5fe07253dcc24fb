package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// actionRecorder collects the order in which test actions ran.
type actionRecorder struct {
	calls []string
}

// installTestActions swaps in a small action set for the duration of t:
// "mark" records the caster and ability, "wait" suspends for Ticks ticks,
// "damage" hits the subject for Amount.
func installTestActions(t *testing.T) *actionRecorder {
	t.Helper()
	rec := &actionRecorder{}
	prev := actionFactory
	t.Cleanup(func() { actionFactory = prev })

	RegisterActionFactory(func(step ActionStep) (Action, error) {
		switch step.Kind {
		case "mark":
			return ActionFunc(func(ctx *ActionContext) ActionStatus {
				rec.calls = append(rec.calls, fmt.Sprintf("%s:%s@%s", ctx.Card.ID, ctx.Ability.Name, ctx.Target))
				return ActionDone
			}), nil
		case "wait":
			return ActionFunc(func(ctx *ActionContext) ActionStatus {
				if ctx.Tick >= ctx.Step.Ticks {
					return ActionDone
				}
				return ActionPending
			}), nil
		case "damage":
			return ActionFunc(func(ctx *ActionContext) ActionStatus {
				ctx.Board.ApplyDamage(ctx.Subject(), ctx.Step.Amount)
				return ActionDone
			}), nil
		default:
			return nil, fmt.Errorf("%w: %s", ErrActionNotRegistered, step.Kind)
		}
	})
	return rec
}

type fixture struct {
	board    *Board
	registry *AbilityRegistry
	kinds    *KindCatalog
}

func newFixture(t *testing.T, width, height int) *fixture {
	t.Helper()
	return &fixture{
		board:    NewBoard(width, height),
		registry: NewAbilityRegistry(),
		kinds:    NewKindCatalog(),
	}
}

func (f *fixture) kind(t *testing.T, name, move, attack string) {
	t.Helper()
	require.NoError(t, f.kinds.RegisterShapes(name, move, attack))
}

func (f *fixture) abilities(t *testing.T, cardType string, defs ...AbilityDefinition) {
	t.Helper()
	require.NoError(t, f.registry.Register(cardType, defs...))
}

func (f *fixture) spawn(t *testing.T, id, cardType string, owner PlayerID, at Coord) *Card {
	t.Helper()
	card, err := f.board.Spawn(CardSpec{ID: id, Type: cardType, Owner: owner, Position: at, Health: 4, Power: 2})
	require.NoError(t, err)
	return card
}

func (f *fixture) session(t *testing.T, start Phase) *Session {
	t.Helper()
	s := NewSession(f.board, f.registry, f.kinds, start)
	t.Cleanup(s.Close)
	return s
}

func xy(x, y int) Coord { return Coord{X: x, Y: y} }
