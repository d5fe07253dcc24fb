package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type busyGate struct{ busy bool }

func (g *busyGate) Busy() bool { return g.busy }

func TestPhaseOwnership(t *testing.T) {
	for _, p := range []Phase{PlayerTurnStart, PlayerMainPhase, PlayerTurnEnd} {
		assert.True(t, p.OwnedBy(Player), p.String())
		assert.False(t, p.OwnedBy(Opponent), p.String())
	}
	for _, p := range []Phase{EnemyTurnStart, EnemyMainPhase, EnemyTurnEnd} {
		assert.True(t, p.OwnedBy(Opponent), p.String())
		assert.True(t, p.OwnedBy(PlayerID(2)), "any non-zero id owns enemy phases")
		assert.False(t, p.OwnedBy(Player), p.String())
	}
}

func TestParsePhase(t *testing.T) {
	p, ok := ParsePhase(" enemymainphase ")
	require.True(t, ok)
	assert.Equal(t, EnemyMainPhase, p)

	_, ok = ParsePhase("lunch")
	assert.False(t, ok)
}

func TestDispatcherAdvanceNotifiesInOrder(t *testing.T) {
	d := NewTurnDispatcher(PlayerTurnStart)
	var got []string
	d.Subscribe(PhaseListenerFunc(func(c PhaseChange) { got = append(got, "a:"+c.Phase.String()) }))
	unsub := d.Subscribe(PhaseListenerFunc(func(c PhaseChange) { got = append(got, "b:"+c.Phase.String()) }))

	require.NoError(t, d.Advance())
	unsub()
	require.NoError(t, d.Advance())

	assert.Equal(t, []string{"a:PlayerMainPhase", "b:PlayerMainPhase", "a:PlayerTurnEnd"}, got)
}

func TestDispatcherTurnCounterWraps(t *testing.T) {
	d := NewTurnDispatcher(PlayerTurnStart)
	require.Equal(t, 1, d.Turn())
	for i := 0; i < int(phaseCount); i++ {
		require.NoError(t, d.Advance())
	}
	assert.Equal(t, PlayerTurnStart, d.CurrentPhase())
	assert.Equal(t, 2, d.Turn())
}

func TestDispatcherGateHoldsPhase(t *testing.T) {
	d := NewTurnDispatcher(PlayerMainPhase)
	gate := &busyGate{busy: true}
	d.AddGate(gate)

	assert.ErrorIs(t, d.Advance(), ErrPhaseResolving)
	assert.ErrorIs(t, d.EndTurn(Player), ErrPhaseResolving)
	assert.Equal(t, PlayerMainPhase, d.CurrentPhase())

	gate.busy = false
	require.NoError(t, d.Advance())
	assert.Equal(t, PlayerTurnEnd, d.CurrentPhase())
}

func TestDispatcherEndTurn(t *testing.T) {
	d := NewTurnDispatcher(PlayerMainPhase)

	assert.ErrorIs(t, d.EndTurn(Opponent), ErrNotYourTurn)
	require.NoError(t, d.EndTurn(Player))
	assert.Equal(t, PlayerTurnEnd, d.CurrentPhase())
	require.NoError(t, d.EndTurn(Player), "ending an ended turn is a no-op")
	assert.Equal(t, PlayerTurnEnd, d.CurrentPhase())
}
