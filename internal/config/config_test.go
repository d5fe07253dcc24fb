package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid_tactics/internal/game"
)

const sample = `
board:
  width: 6
  height: 5
players:
  - id: 1
    single_action_ends_turn: true
card_types:
  assassin:
    move: assassin
    attack: assassin
    abilities:
      - name: backstab
        condition: "distance<=1"
        cooldown: 2
        phase: PlayerMainPhase
        range_mode: attack
        range_filter: enemy only
        manual: true
        actions:
          - kind: damage
            amount: 3
  totem: {}
cards:
  - {id: a, type: assassin, owner: 0, x: 1, y: 1, power: 2}
  - {id: t, type: totem, owner: 1, x: 4, y: 4}
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Board.Width)
	assert.Equal(t, game.PlayerMainPhase.String(), cfg.StartPhase)
	assert.Equal(t, "adjacent", cfg.CardTypes["totem"].Move)
	assert.Equal(t, 3, cfg.Cards[1].Health)
	assert.Equal(t, 1, cfg.Cards[1].Power)

	defs, err := cfg.Definitions("assassin")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, game.RangeUseCardAttackRange, defs[0].RangeMode)
	assert.Equal(t, []game.ActionStep{{Kind: "damage", Amount: 3}}, defs[0].Actions)
}

func TestBuildSession(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	s, err := cfg.Build()
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, game.PlayerMainPhase, s.Turns.CurrentPhase())
	assert.True(t, s.Turns.SingleActionEndsTurn(game.Opponent))
	assert.False(t, s.Turns.SingleActionEndsTurn(game.Player))

	card, ok := s.Board.Card("a")
	require.True(t, ok)
	assert.Equal(t, 10, s.Kinds.AttackStrategy(card).Range(card, s.Board).Len(), "two assassin cells fall off the board")

	cds, err := s.Cooldowns("a")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"backstab": 2}, cds)
}

func TestValidateCollectsErrors(t *testing.T) {
	bad := `
board: {width: 2, height: 2}
start_phase: Brunch
card_types:
  blob:
    move: wobble
    abilities:
      - name: ooze
        condition: "distance<>1"
        phase: PlayerMainPhase
        actions:
          - kind: juggle
          - kind: heal
cards:
  - {type: blob, x: 0, y: 0}
  - {type: blob, x: 0, y: 0}
  - {type: ghost, x: 5, y: 0}
`
	_, err := Parse([]byte(bad))
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		`unknown start phase "Brunch"`,
		`unknown move shape "wobble"`,
		"distance<>1",
		`action "juggle"`,
		`action "heal"`,
		"already holds card 0",
		`unknown type "ghost"`,
		"off the board",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "example.yaml"))
	require.NoError(t, err)
	s, err := cfg.Build()
	require.NoError(t, err)
	defer s.Close()
	assert.Len(t, s.Board.Cards(), len(cfg.Cards))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
