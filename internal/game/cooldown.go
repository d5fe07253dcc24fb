package game

import "strings"

const cooldownPrefix = "cooldown:"

// CooldownLedger stores per-card, per-ability countdowns in the card's
// counter map. All writes go through Initialize, AdvancePlayer and Reset,
// which keep every entry at zero or above.
type CooldownLedger struct {
	registry *AbilityRegistry
	board    *Board
}

func NewCooldownLedger(registry *AbilityRegistry, board *Board) *CooldownLedger {
	return &CooldownLedger{registry: registry, board: board}
}

// Initialize arms every cooldown ability of card at its full length, so
// nothing with a cooldown is usable before it has counted down once.
func (l *CooldownLedger) Initialize(card *Card) {
	for _, def := range l.registry.AbilitiesFor(card) {
		if def.Cooldown > 0 {
			card.SetCounter(def.cooldownKey(), def.Cooldown)
		}
	}
}

// AdvancePlayer ticks down every armed entry on cards owned by player.
func (l *CooldownLedger) AdvancePlayer(player PlayerID) {
	for _, card := range l.board.CardsOwnedBy(player) {
		for key, v := range card.Counters {
			if !strings.HasPrefix(key, cooldownPrefix) {
				continue
			}
			card.Counters[key] = max(0, v-1)
		}
	}
}

// Reset re-arms def on card. Abilities without a cooldown stay ready.
func (l *CooldownLedger) Reset(card *Card, def *AbilityDefinition) {
	if card == nil || def == nil || def.Cooldown <= 0 {
		return
	}
	card.SetCounter(def.cooldownKey(), def.Cooldown)
}

// Current returns the remaining turns for def on card; zero means ready.
func (l *CooldownLedger) Current(card *Card, def *AbilityDefinition) int {
	if card == nil || def == nil {
		return 0
	}
	return max(0, card.Counter(def.cooldownKey()))
}
