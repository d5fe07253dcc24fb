package game

import "fmt"

// baseState ignores every event; concrete states override what they handle.
type baseState struct{}

func (baseState) Enter(*Machine)                  {}
func (baseState) Exit(*Machine)                   {}
func (baseState) HandleCellClick(*Machine, Coord) {}
func (baseState) HandleCardClick(*Machine, Coord) {}
func (baseState) SelectAbility(*Machine, string)  {}
func (baseState) Update(*Machine)                 {}

func (baseState) PhaseChanged(*Machine, PhaseChange) {}

// ---- Idle ----

type idleState struct{ baseState }

func (idleState) Kind() StateKind { return StateIdle }

func (idleState) HandleCardClick(m *Machine, at Coord) {
	card := m.card
	if at != card.Position {
		return
	}
	if !canSelect(m) {
		return
	}
	m.selected, m.hasSelected = at, true
	m.complete(StateSelected)
}

func canSelect(m *Machine) bool {
	card := m.card
	if card.HasActed || card.FaceDown {
		return false
	}
	if m.deps.Abilities != nil && m.deps.Abilities.IsExecutingAbility() {
		return false
	}
	return m.ownsTurn()
}

// mayAct reports whether card's owner holds the main phase p.
func mayAct(card *Card, p Phase) bool { return p.IsMain() && p.OwnedBy(card.Owner) }

func (m *Machine) ownsTurn() bool {
	if m.deps.Turns == nil {
		return true
	}
	return mayAct(m.card, m.deps.Turns.CurrentPhase())
}

// ---- Selected ----

type selectedState struct{ baseState }

func (selectedState) Kind() StateKind { return StateSelected }

func (selectedState) Enter(m *Machine) {
	if !m.hasSelected {
		m.warn().Msg("selected without a selected position")
		m.complete(StateIdle)
		return
	}
	m.moveRange = m.deps.Kinds.MoveStrategy(m.card).Range(m.card, m.deps.Board)
	m.attackArea = m.deps.Kinds.AttackStrategy(m.card).Range(m.card, m.deps.Board)
}

func (selectedState) Exit(m *Machine) {
	m.moveRange = nil
	m.attackArea = nil
}

func (s selectedState) HandleCellClick(m *Machine, at Coord) {
	switch {
	case at == m.card.Position:
		m.clearQuery()
		m.complete(StateIdle)
	case m.moveRange.Has(at):
		m.target, m.hasTarget = at, true
		m.complete(StateMoving)
	default:
		s.HandleCardClick(m, at)
	}
}

func (selectedState) HandleCardClick(m *Machine, at Coord) {
	if at != m.card.Position && m.attackArea.Has(at) && m.card.HostileTo(m.deps.Board.At(at)) {
		m.target, m.hasTarget = at, true
		m.complete(StateAttacking)
		return
	}
	m.clearQuery()
	m.complete(StateIdle)
}

func (selectedState) SelectAbility(m *Machine, name string) {
	def, ok := m.deps.Registry.Lookup(m.card, name)
	if !ok || !def.Manual {
		m.warn().Str("ability", name).Msg("no manual ability by that name")
		return
	}
	m.ability = def
	m.complete(StateAbility)
}

// PhaseChanged drops the selection once the owner loses the main phase.
func (selectedState) PhaseChanged(m *Machine, change PhaseChange) {
	if mayAct(m.card, change.Phase) {
		return
	}
	m.clearQuery()
	m.complete(StateIdle)
}

// ---- Moving ----

type movingState struct{ baseState }

func (movingState) Kind() StateKind { return StateMoving }

func (movingState) Enter(m *Machine) {
	if !m.hasSelected || !m.hasTarget {
		m.warn().Msg("moving without selection or target")
		m.complete(StateIdle)
		return
	}
	if !m.ownsTurn() {
		m.warn().Msg("move outside the owner's main phase")
		m.complete(StateIdle)
		return
	}
	card := m.card
	legal := m.deps.Kinds.MoveStrategy(card).Range(card, m.deps.Board)
	if !legal.Has(m.target) {
		m.warn().Stringer("target", m.target).Msg("move target no longer legal")
		m.complete(StateIdle)
		return
	}
	from := card.Position
	if err := m.deps.Board.MoveCard(card, m.target); err != nil {
		m.warn().Err(err).Msg("move failed")
		m.complete(StateIdle)
		return
	}
	card.HasActed = true
	m.deps.Board.Note(fmt.Sprintf("%s moved %s -> %s", card.Type, from, m.target))
	m.endTurnIfSingleAction()
	m.complete(StateIdle)
}

func (movingState) Exit(m *Machine) { m.clearQuery() }

// ---- Attacking ----

type attackingState struct{ baseState }

func (attackingState) Kind() StateKind { return StateAttacking }

func (attackingState) Enter(m *Machine) {
	if !m.hasSelected || !m.hasTarget {
		m.warn().Msg("attacking without selection or target")
		m.complete(StateIdle)
		return
	}
	if !m.ownsTurn() {
		m.warn().Msg("attack outside the owner's main phase")
		m.complete(StateIdle)
		return
	}
	card := m.card
	board := m.deps.Board
	area := m.deps.Kinds.AttackStrategy(card).Range(card, board)
	defender := board.At(m.target)
	if !area.Has(m.target) || !card.HostileTo(defender) {
		m.warn().Stringer("target", m.target).Msg("attack target no longer legal")
		m.complete(StateIdle)
		return
	}
	resolveAttack(board, card, defender)
	card.HasActed = true
	m.endTurnIfSingleAction()
	m.complete(StateIdle)
}

func (attackingState) Exit(m *Machine) { m.clearQuery() }

// resolveAttack reveals a face-down defender and deals the attacker's power.
func resolveAttack(board *Board, attacker, defender *Card) {
	if defender.FaceDown {
		defender.FaceDown = false
	}
	note := fmt.Sprintf("%s hit %s for %d", attacker.Type, defender.Type, attacker.Power)
	board.Note(note)
	board.ApplyDamage(defender, attacker.Power)
}

// ---- Ability ----

type abilityState struct{ baseState }

func (abilityState) Kind() StateKind { return StateAbility }

func (s abilityState) Enter(m *Machine) {
	if m.ability == nil {
		m.warn().Msg("ability state without an ability")
		m.complete(StateIdle)
		return
	}
	r := m.deps.Abilities.ResolveRange(m.ability, m.card)
	if r.Len() == 1 && r.Has(m.card.Position) {
		s.fire(m, m.card.Position)
	}
}

func (s abilityState) HandleCellClick(m *Machine, at Coord) { s.fire(m, at) }
func (s abilityState) HandleCardClick(m *Machine, at Coord) { s.fire(m, at) }

func (abilityState) fire(m *Machine, at Coord) {
	if m.execution != nil {
		return
	}
	if !m.ownsTurn() {
		m.warn().Str("ability", m.ability.Name).Msg("ability outside the owner's main phase")
		m.complete(StateIdle)
		return
	}
	engine := m.deps.Abilities
	if !engine.CanTrigger(m.ability, m.card, at) {
		m.warn().Str("ability", m.ability.Name).Stringer("target", at).Msg("ability cannot trigger")
		m.complete(StateIdle)
		return
	}
	x, err := engine.Execute(m.ability, m.card, at)
	if err != nil {
		m.warn().Err(err).Str("ability", m.ability.Name).Msg("ability execution refused")
		m.complete(StateIdle)
		return
	}
	m.target, m.hasTarget = at, true
	m.execution = x
	if x.Done() {
		finishAbility(m)
	}
}

func (abilityState) Update(m *Machine) {
	if m.execution != nil && m.execution.Done() {
		finishAbility(m)
	}
}

// PhaseChanged disarms an ability that is still waiting for its target.
// An execution in flight holds the dispatcher, so it never sees a change.
func (abilityState) PhaseChanged(m *Machine, change PhaseChange) {
	if m.execution == nil && !mayAct(m.card, change.Phase) {
		m.complete(StateIdle)
	}
}

func finishAbility(m *Machine) {
	m.card.HasActed = true
	m.complete(StateIdle)
}

func (abilityState) Exit(m *Machine) {
	m.clearQuery()
	m.ability = nil
	m.execution = nil
}
