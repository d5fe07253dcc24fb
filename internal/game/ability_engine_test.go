package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strike(cooldown int) AbilityDefinition {
	return AbilityDefinition{
		Name:        "strike",
		Condition:   "distance<=1",
		Cooldown:    cooldown,
		Phase:       PlayerMainPhase,
		RangeFilter: "enemy",
		Manual:      true,
		Actions:     []ActionStep{{Kind: "mark"}},
	}
}

func TestCooldownTwoScenario(t *testing.T) {
	rec := installTestActions(t)
	f := newFixture(t, 4, 4)
	f.abilities(t, "duelist", strike(2))
	card := f.spawn(t, "d", "duelist", Player, xy(1, 1))
	f.spawn(t, "e", "duelist", Opponent, xy(1, 2))
	s := f.session(t, PlayerMainPhase)
	def, _ := f.registry.Lookup(card, "strike")
	engine := s.Abilities

	require.Equal(t, 2, engine.GetCurrentCooldown(card, def))
	require.False(t, engine.CanTrigger(def, card, xy(1, 2)), "armed at spawn")
	s.Ledger.AdvancePlayer(Player)
	s.Ledger.AdvancePlayer(Player)

	require.True(t, engine.CanTrigger(def, card, xy(1, 2)))
	x, err := engine.Execute(def, card, xy(1, 2))
	require.NoError(t, err)
	require.True(t, x.Done())
	assert.Equal(t, []string{"d:strike@(1,2)"}, rec.calls)
	assert.Equal(t, 2, engine.GetCurrentCooldown(card, def))
	assert.False(t, engine.CanTrigger(def, card, xy(1, 2)))

	s.Ledger.AdvancePlayer(Player)
	assert.Equal(t, 1, engine.GetCurrentCooldown(card, def))
	assert.False(t, engine.CanTrigger(def, card, xy(1, 2)))
	s.Ledger.AdvancePlayer(Player)
	assert.Zero(t, engine.GetCurrentCooldown(card, def))
	assert.True(t, engine.CanTrigger(def, card, xy(1, 2)))
}

func TestCanTriggerNeverTrueWhileCoolingDown(t *testing.T) {
	installTestActions(t)
	f := newFixture(t, 5, 5)
	f.abilities(t, "duelist", strike(3))
	card := f.spawn(t, "d", "duelist", Player, xy(2, 2))
	f.spawn(t, "e", "duelist", Opponent, xy(2, 3))
	s := f.session(t, PlayerMainPhase)
	def, _ := f.registry.Lookup(card, "strike")

	for round := 0; round < 8; round++ {
		for y := 0; y < 5; y++ {
			for x := 0; x < 5; x++ {
				if s.Abilities.GetCurrentCooldown(card, def) > 0 {
					require.False(t, s.Abilities.CanTrigger(def, card, xy(x, y)))
				}
			}
		}
		if s.Abilities.CanTrigger(def, card, xy(2, 3)) {
			_, err := s.Abilities.Execute(def, card, xy(2, 3))
			require.NoError(t, err)
		}
		s.Ledger.AdvancePlayer(Player)
	}
}

func TestCanTriggerChecksPhaseAndOwner(t *testing.T) {
	installTestActions(t)
	f := newFixture(t, 4, 4)
	f.abilities(t, "duelist", strike(0))
	card := f.spawn(t, "d", "duelist", Player, xy(1, 1))
	enemy := f.spawn(t, "e", "duelist", Opponent, xy(1, 2))
	s := f.session(t, PlayerTurnStart)
	def, _ := f.registry.Lookup(card, "strike")

	assert.False(t, s.Abilities.CanTrigger(def, card, xy(1, 2)), "wrong phase")
	require.NoError(t, s.Advance())
	assert.True(t, s.Abilities.CanTrigger(def, card, xy(1, 2)))
	assert.False(t, s.Abilities.CanTrigger(def, enemy, xy(1, 1)), "player phase is not the opponent's")
	assert.False(t, s.Abilities.CanTrigger(def, card, xy(2, 2)), "empty cell fails the enemy filter")
	assert.False(t, s.Abilities.CanTrigger(def, card, xy(1, 3)), "out of range")
}

func TestSecondExecutionRejectedWhileInFlight(t *testing.T) {
	rec := installTestActions(t)
	f := newFixture(t, 4, 4)
	channel := AbilityDefinition{
		Name:    "channel",
		Phase:   PlayerMainPhase,
		Manual:  true,
		Actions: []ActionStep{{Kind: "wait", Ticks: 2}, {Kind: "mark"}},
	}
	f.abilities(t, "duelist", channel, strike(0))
	card := f.spawn(t, "d", "duelist", Player, xy(1, 1))
	f.spawn(t, "e", "duelist", Opponent, xy(1, 2))
	s := f.session(t, PlayerMainPhase)
	engine := s.Abilities
	chDef, _ := f.registry.Lookup(card, "channel")
	stDef, _ := f.registry.Lookup(card, "strike")

	first, err := engine.Execute(chDef, card, card.Position)
	require.NoError(t, err)
	require.True(t, engine.IsExecutingAbility())
	progress := first.StepIndex()

	_, err = engine.Execute(stDef, card, xy(1, 2))
	require.ErrorIs(t, err, ErrAbilityInFlight)
	assert.Same(t, first, engine.Current())
	assert.Equal(t, progress, first.StepIndex())
	assert.Empty(t, rec.calls)

	ok, err := s.Execute(card.ID, "strike", xy(1, 2))
	require.ErrorIs(t, err, ErrAbilityInFlight)
	assert.False(t, ok)

	engine.Update()
	assert.True(t, engine.IsExecutingAbility())
	engine.Update()
	assert.False(t, engine.IsExecutingAbility())
	assert.True(t, first.Done())
	assert.Equal(t, []string{"d:channel@(1,1)"}, rec.calls)
}

func TestAutomaticTriggersRunInCardThenAbilityOrder(t *testing.T) {
	rec := installTestActions(t)
	f := newFixture(t, 4, 4)
	f.abilities(t, "totem",
		AbilityDefinition{Name: "first", Phase: PlayerTurnStart, RangeFilter: "self", Actions: []ActionStep{{Kind: "wait", Ticks: 1}, {Kind: "mark"}}},
		AbilityDefinition{Name: "second", Phase: PlayerTurnStart, RangeFilter: "self", Actions: []ActionStep{{Kind: "mark"}}},
		AbilityDefinition{Name: "manual", Phase: PlayerTurnStart, Manual: true, Actions: []ActionStep{{Kind: "mark"}}},
		AbilityDefinition{Name: "later", Phase: PlayerMainPhase, Actions: []ActionStep{{Kind: "mark"}}},
	)
	f.spawn(t, "b", "totem", Player, xy(0, 0))
	f.spawn(t, "a", "totem", Player, xy(3, 0))
	hidden := f.spawn(t, "h", "totem", Player, xy(0, 3))
	hidden.FaceDown = true
	f.spawn(t, "z", "totem", Opponent, xy(3, 3))
	s := f.session(t, EnemyTurnEnd)

	require.NoError(t, s.Advance())
	require.Equal(t, PlayerTurnStart, s.Turns.CurrentPhase())
	assert.True(t, s.Abilities.Busy())
	assert.ErrorIs(t, s.Advance(), ErrPhaseResolving)
	assert.Empty(t, rec.calls)

	for i := 0; i < 10 && s.Abilities.Busy(); i++ {
		s.Tick()
	}
	require.False(t, s.Abilities.Busy())
	assert.Equal(t, []string{
		"b:first@(0,0)",
		"b:second@(0,0)",
		"a:first@(3,0)",
		"a:second@(3,0)",
	}, rec.calls)

	require.NoError(t, s.Advance())
	assert.Equal(t, PlayerMainPhase, s.Turns.CurrentPhase())
}

func TestAutomaticCooldownCountsDownAtTurnStart(t *testing.T) {
	rec := installTestActions(t)
	f := newFixture(t, 4, 4)
	f.abilities(t, "shrine", AbilityDefinition{
		Name: "ward", Cooldown: 2, Phase: PlayerTurnStart, RangeFilter: "self",
		Actions: []ActionStep{{Kind: "mark"}},
	})
	f.spawn(t, "s", "shrine", Player, xy(0, 0))
	s := f.session(t, EnemyTurnEnd)

	fired := func() int {
		for i := 0; i < int(phaseCount); i++ {
			require.NoError(t, s.Advance())
		}
		return len(rec.calls)
	}
	require.NoError(t, s.Advance())
	assert.Empty(t, rec.calls, "2 -> 1")
	assert.Equal(t, 1, fired(), "1 -> 0 fires and re-arms")
	assert.Equal(t, 1, fired())
	assert.Equal(t, 2, fired())
}

func TestImplicitTargetPicksFirstCellRowByRow(t *testing.T) {
	rec := installTestActions(t)
	f := newFixture(t, 5, 5)
	f.abilities(t, "hunter", AbilityDefinition{
		Name: "snipe", Condition: "distance<=2", Phase: PlayerMainPhase, RangeFilter: "enemy",
		Actions: []ActionStep{{Kind: "damage", Amount: 1}, {Kind: "mark"}},
	})
	f.spawn(t, "h", "hunter", Player, xy(1, 1))
	far := f.spawn(t, "e1", "hunter", Opponent, xy(1, 3))
	near := f.spawn(t, "e2", "hunter", Opponent, xy(3, 1))
	s := f.session(t, PlayerTurnStart)

	require.NoError(t, s.Advance())
	assert.Equal(t, []string{"h:snipe@(3,1)"}, rec.calls)
	assert.Equal(t, 3, near.Health)
	assert.Equal(t, 4, far.Health)
}

func TestUnparseableConditionNeverTriggers(t *testing.T) {
	installTestActions(t)
	f := newFixture(t, 4, 4)
	card := f.spawn(t, "c", "x", Player, xy(1, 1))
	s := f.session(t, PlayerMainPhase)

	for _, def := range []*AbilityDefinition{
		{Name: "broken", Condition: "distance<>1", Phase: PlayerMainPhase},
		{Name: "badfilter", Phase: PlayerMainPhase, RangeMode: RangeUnlimited, RangeFilter: "neutral"},
	} {
		assert.Zero(t, s.Abilities.ResolveRange(def, card).Len(), def.Name)
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				assert.False(t, s.Abilities.CanTrigger(def, card, xy(x, y)), def.Name)
			}
		}
	}
}

func TestResolveRangeModes(t *testing.T) {
	f := newFixture(t, 4, 4)
	f.kind(t, "x", "adjacent", "diagonal")
	card := f.spawn(t, "c", "x", Player, xy(0, 0))
	s := f.session(t, PlayerMainPhase)

	tests := []struct {
		name string
		def  AbilityDefinition
		want int
	}{
		{"condition without distance", AbilityDefinition{Condition: "health>0"}, 1},
		{"condition distance", AbilityDefinition{Condition: "distance<=1"}, 4},
		{"condition ring", AbilityDefinition{Condition: "distance>=1 && distance<=1"}, 3},
		{"attack", AbilityDefinition{RangeMode: RangeUseCardAttackRange}, 1},
		{"move", AbilityDefinition{RangeMode: RangeUseCardMoveRange}, 2},
		{"custom", AbilityDefinition{RangeMode: RangeCustomRadius, CustomRadius: 2}, 9},
		{"negative custom", AbilityDefinition{RangeMode: RangeCustomRadius, CustomRadius: -1}, 0},
		{"unlimited", AbilityDefinition{RangeMode: RangeUnlimited}, 16},
		{"unlimited others", AbilityDefinition{RangeMode: RangeUnlimited, RangeFilter: "others"}, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := tt.def
			def.Name = tt.name
			assert.Equal(t, tt.want, s.Abilities.ResolveRange(&def, card).Len())
		})
	}
}

func TestExecuteUnknownActionKind(t *testing.T) {
	installTestActions(t)
	f := newFixture(t, 2, 2)
	card := f.spawn(t, "c", "x", Player, xy(0, 0))
	s := f.session(t, PlayerMainPhase)

	def := &AbilityDefinition{Name: "odd", Phase: PlayerMainPhase, Actions: []ActionStep{{Kind: "juggle"}}}
	_, err := s.Abilities.Execute(def, card, card.Position)
	require.ErrorIs(t, err, ErrActionNotRegistered)
	assert.False(t, s.Abilities.IsExecutingAbility())
}
