package game

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

type Phase int

const (
	PlayerTurnStart Phase = iota
	PlayerMainPhase
	PlayerTurnEnd
	EnemyTurnStart
	EnemyMainPhase
	EnemyTurnEnd
	phaseCount
)

var phaseNames = map[Phase]string{
	PlayerTurnStart: "PlayerTurnStart",
	PlayerMainPhase: "PlayerMainPhase",
	PlayerTurnEnd:   "PlayerTurnEnd",
	EnemyTurnStart:  "EnemyTurnStart",
	EnemyMainPhase:  "EnemyMainPhase",
	EnemyTurnEnd:    "EnemyTurnEnd",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func ParsePhase(s string) (Phase, bool) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for p, name := range phaseNames {
		if strings.ToLower(name) == needle {
			return p, true
		}
	}
	return 0, false
}

// Side reports which camp owns the phase: the first three phases belong to
// player 0, the rest to the non-zero player ids.
func (p Phase) Side() Side {
	switch p {
	case PlayerTurnStart, PlayerMainPhase, PlayerTurnEnd:
		return SidePlayer
	default:
		return SideOpponent
	}
}

// OwnedBy reports whether owner may act during p.
func (p Phase) OwnedBy(owner PlayerID) bool { return p.Side() == owner.Side() }

func (p Phase) IsTurnStart() bool { return p == PlayerTurnStart || p == EnemyTurnStart }
func (p Phase) IsMain() bool      { return p == PlayerMainPhase || p == EnemyMainPhase }

func (p Phase) Next() Phase { return (p + 1) % phaseCount }

func turnEndFor(s Side) Phase {
	if s == SidePlayer {
		return PlayerTurnEnd
	}
	return EnemyTurnEnd
}

// PhaseChange is delivered to listeners after the dispatcher moves phase.
type PhaseChange struct {
	Previous Phase
	Phase    Phase
	Turn     int
}

type PhaseListener interface {
	OnPhaseChanged(change PhaseChange)
}

type PhaseListenerFunc func(change PhaseChange)

func (f PhaseListenerFunc) OnPhaseChanged(change PhaseChange) { f(change) }

// PhaseGate holds the dispatcher on the current phase while it is busy.
type PhaseGate interface {
	Busy() bool
}

// TurnController is the slice of the turn dispatcher that card states use.
type TurnController interface {
	CurrentPhase() Phase
	EndTurn(player PlayerID) error
	SingleActionEndsTurn(player PlayerID) bool
}

type subscription struct {
	id       int
	listener PhaseListener
}

// TurnDispatcher sequences turn phases and notifies subscribers in
// subscription order.
type TurnDispatcher struct {
	phase        Phase
	turn         int
	subs         []subscription
	nextSubID    int
	gates        []PhaseGate
	singleAction map[PlayerID]bool
}

func NewTurnDispatcher(start Phase) *TurnDispatcher {
	return &TurnDispatcher{
		phase:        start,
		turn:         1,
		singleAction: make(map[PlayerID]bool),
	}
}

func (d *TurnDispatcher) CurrentPhase() Phase { return d.phase }

func (d *TurnDispatcher) Turn() int { return d.turn }

// Subscribe registers l and returns a function that removes it again.
func (d *TurnDispatcher) Subscribe(l PhaseListener) (unsubscribe func()) {
	d.nextSubID++
	id := d.nextSubID
	d.subs = append(d.subs, subscription{id: id, listener: l})
	return func() {
		for i, s := range d.subs {
			if s.id == id {
				d.subs = append(d.subs[:i:i], d.subs[i+1:]...)
				return
			}
		}
	}
}

func (d *TurnDispatcher) AddGate(g PhaseGate) {
	if g != nil {
		d.gates = append(d.gates, g)
	}
}

func (d *TurnDispatcher) SetSingleActionEndsTurn(player PlayerID, on bool) {
	d.singleAction[player] = on
}

func (d *TurnDispatcher) SingleActionEndsTurn(player PlayerID) bool {
	return d.singleAction[player]
}

func (d *TurnDispatcher) busy() bool {
	for _, g := range d.gates {
		if g.Busy() {
			return true
		}
	}
	return false
}

// Advance moves to the next phase. It refuses while a gate reports that the
// current phase is still resolving.
func (d *TurnDispatcher) Advance() error {
	if d.busy() {
		return ErrPhaseResolving
	}
	d.moveTo(d.phase.Next())
	return nil
}

// EndTurn jumps straight to the turn-end phase of player's side.
func (d *TurnDispatcher) EndTurn(player PlayerID) error {
	if !d.phase.OwnedBy(player) {
		return fmt.Errorf("%w: player %d during %s", ErrNotYourTurn, player, d.phase)
	}
	if d.busy() {
		return ErrPhaseResolving
	}
	end := turnEndFor(player.Side())
	if d.phase == end {
		return nil
	}
	d.moveTo(end)
	return nil
}

func (d *TurnDispatcher) moveTo(next Phase) {
	prev := d.phase
	d.phase = next
	if next == PlayerTurnStart && prev != PlayerTurnStart {
		d.turn++
	}
	change := PhaseChange{Previous: prev, Phase: next, Turn: d.turn}
	log.Debug().Stringer("from", prev).Stringer("to", next).Int("turn", d.turn).Msg("phase changed")

	subs := make([]subscription, len(d.subs))
	copy(subs, d.subs)
	for _, s := range subs {
		s.listener.OnPhaseChanged(change)
	}
}
