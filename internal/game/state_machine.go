package game

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type StateKind uint8

const (
	StateIdle StateKind = iota
	StateSelected
	StateMoving
	StateAttacking
	StateAbility
)

func (k StateKind) String() string {
	switch k {
	case StateIdle:
		return "Idle"
	case StateSelected:
		return "Selected"
	case StateMoving:
		return "Moving"
	case StateAttacking:
		return "Attacking"
	case StateAbility:
		return "Ability"
	default:
		return fmt.Sprintf("state(%d)", k)
	}
}

// cardState is one node of a card's state machine. States never switch the
// machine directly; they call m.complete with the state to go to next.
type cardState interface {
	Kind() StateKind
	Enter(m *Machine)
	Exit(m *Machine)
	HandleCellClick(m *Machine, at Coord)
	HandleCardClick(m *Machine, at Coord)
	SelectAbility(m *Machine, name string)
	Update(m *Machine)
	PhaseChanged(m *Machine, change PhaseChange)
}

// MachineDeps are the collaborators every card state may call into.
type MachineDeps struct {
	Board     *Board
	Turns     TurnController
	Abilities *AbilityEngine
	Registry  *AbilityRegistry
	Kinds     *KindCatalog
}

// maxHops bounds the transitions one event may cause; a chain of states
// that complete on Enter always ends in Idle well before that.
const maxHops = 8

// Machine drives a single card through Idle, Selected, Moving, Attacking
// and Ability. It starts Idle and cycles for the lifetime of the card.
type Machine struct {
	card   *Card
	deps   MachineDeps
	states map[StateKind]cardState
	active cardState

	next     StateKind
	hasNext  bool
	settling bool

	selected    Coord
	hasSelected bool
	target      Coord
	hasTarget   bool
	moveRange   RangeResult
	attackArea  RangeResult
	ability     *AbilityDefinition
	execution   *Execution
}

func NewMachine(card *Card, deps MachineDeps) *Machine {
	m := &Machine{
		card: card,
		deps: deps,
		states: map[StateKind]cardState{
			StateIdle:      idleState{},
			StateSelected:  selectedState{},
			StateMoving:    movingState{},
			StateAttacking: attackingState{},
			StateAbility:   abilityState{},
		},
	}
	m.active = m.states[StateIdle]
	m.active.Enter(m)
	m.settle()
	return m
}

func (m *Machine) Card() *Card      { return m.card }
func (m *Machine) State() StateKind { return m.active.Kind() }

func (m *Machine) SelectedPosition() (Coord, bool) { return m.selected, m.hasSelected }
func (m *Machine) TargetPosition() (Coord, bool)   { return m.target, m.hasTarget }

// MoveRange and AttackRange expose the ranges computed on selection.
func (m *Machine) MoveRange() RangeResult   { return m.moveRange }
func (m *Machine) AttackRange() RangeResult { return m.attackArea }

func (m *Machine) HandleCellClick(at Coord) {
	m.active.HandleCellClick(m, at)
	m.settle()
}

func (m *Machine) HandleCardClick(at Coord) {
	m.active.HandleCardClick(m, at)
	m.settle()
}

// SelectAbility asks the active state to arm the named manual ability.
func (m *Machine) SelectAbility(name string) {
	m.active.SelectAbility(m, name)
	m.settle()
}

func (m *Machine) Update() {
	m.active.Update(m)
	m.settle()
}

// OnPhaseChanged lets the active state abandon an interaction its owner no
// longer holds the phase for.
func (m *Machine) OnPhaseChanged(change PhaseChange) {
	m.active.PhaseChanged(m, change)
	if !m.settling {
		m.settle()
	}
}

func (m *Machine) complete(next StateKind) {
	m.next = next
	m.hasNext = true
}

func (m *Machine) settle() {
	m.settling = true
	defer func() { m.settling = false }()
	for hop := 0; m.hasNext; hop++ {
		if hop >= maxHops {
			log.Error().Str("card", m.card.ID).Stringer("state", m.active.Kind()).Msg("transition loop; forcing idle")
			m.hasNext = false
			m.active.Exit(m)
			m.active = m.states[StateIdle]
			m.active.Enter(m)
			return
		}
		next := m.states[m.next]
		m.hasNext = false
		prev := m.active
		prev.Exit(m)
		m.active = next
		log.Debug().
			Str("card", m.card.ID).
			Stringer("from", prev.Kind()).
			Stringer("to", next.Kind()).
			Msg("card state changed")
		next.Enter(m)
	}
}

func (m *Machine) clearQuery() {
	m.selected, m.hasSelected = Coord{}, false
	m.target, m.hasTarget = Coord{}, false
}

func (m *Machine) warn() *zerolog.Event {
	return log.Warn().Str("card", m.card.ID).Stringer("state", m.active.Kind())
}

// endTurnIfSingleAction applies the owner's "one action ends the turn" policy.
func (m *Machine) endTurnIfSingleAction() {
	owner := m.card.Owner
	if m.deps.Turns == nil || !m.deps.Turns.SingleActionEndsTurn(owner) {
		return
	}
	if err := m.deps.Turns.EndTurn(owner); err != nil {
		log.Warn().Err(err).Int("player", int(owner)).Msg("end turn after action")
	}
}
