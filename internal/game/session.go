package game

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Session wires the board, turn dispatcher, cooldown ledger, ability engine
// and one state machine per card, and routes input and ticks to them.
type Session struct {
	Board     *Board
	Turns     *TurnDispatcher
	Registry  *AbilityRegistry
	Kinds     *KindCatalog
	Ledger    *CooldownLedger
	Abilities *AbilityEngine

	machines    map[string]*Machine
	unsubscribe []func()
}

// NewSession composes a session over board. Every card already on the
// board gets its cooldowns armed and a state machine.
func NewSession(board *Board, registry *AbilityRegistry, kinds *KindCatalog, start Phase) *Session {
	turns := NewTurnDispatcher(start)
	ledger := NewCooldownLedger(registry, board)
	engine := NewAbilityEngine(board, turns, ledger, registry, kinds)
	s := &Session{
		Board:     board,
		Turns:     turns,
		Registry:  registry,
		Kinds:     kinds,
		Ledger:    ledger,
		Abilities: engine,
		machines:  make(map[string]*Machine),
	}
	s.unsubscribe = append(s.unsubscribe,
		turns.Subscribe(PhaseListenerFunc(board.OnPhaseChanged)),
		turns.Subscribe(engine),
		turns.Subscribe(PhaseListenerFunc(s.onPhaseChanged)),
		turns.Subscribe(PhaseListenerFunc(func(PhaseChange) { s.prune() })),
	)
	turns.AddGate(engine)
	engine.OnFinished(s.release)
	for _, card := range board.Cards() {
		s.attach(card)
	}
	return s
}

// Close drops the session's phase subscriptions.
func (s *Session) Close() {
	for _, fn := range s.unsubscribe {
		fn()
	}
	s.unsubscribe = nil
}

func (s *Session) deps() MachineDeps {
	return MachineDeps{
		Board:     s.Board,
		Turns:     s.Turns,
		Abilities: s.Abilities,
		Registry:  s.Registry,
		Kinds:     s.Kinds,
	}
}

func (s *Session) attach(card *Card) {
	s.Ledger.Initialize(card)
	s.machines[card.ID] = NewMachine(card, s.deps())
}

// Spawn places a new card mid-game with its cooldowns armed.
func (s *Session) Spawn(spec CardSpec) (*Card, error) {
	card, err := s.Board.Spawn(spec)
	if err != nil {
		return nil, err
	}
	s.attach(card)
	return card, nil
}

func (s *Session) Machine(cardID string) (*Machine, bool) {
	m, ok := s.machines[cardID]
	return m, ok
}

// active returns the first machine, in card order, that is not idle.
func (s *Session) active() *Machine {
	for _, card := range s.Board.Cards() {
		if m := s.machines[card.ID]; m != nil && m.State() != StateIdle {
			return m
		}
	}
	return nil
}

// onPhaseChanged forwards a phase change to every machine that is
// mid-interaction.
func (s *Session) onPhaseChanged(change PhaseChange) {
	for _, card := range s.Board.Cards() {
		if m := s.machines[card.ID]; m != nil && m.State() != StateIdle {
			m.OnPhaseChanged(change)
		}
	}
}

// release returns the machine that launched x to Idle as soon as the engine
// finishes it.
func (s *Session) release(x *Execution) {
	if m := s.machines[x.Card().ID]; m != nil && m.execution == x {
		m.Update()
	}
}

// HandleCellClick forwards a click on an empty or occupied cell to the
// machine that is mid-interaction, if any.
func (s *Session) HandleCellClick(at Coord) {
	defer s.prune()
	if m := s.active(); m != nil {
		m.HandleCellClick(at)
	}
}

// HandleCardClick forwards a click on a card. Without an active machine, or
// when the active machine drops back to Idle without acting, the click
// selects the card under the cursor.
func (s *Session) HandleCardClick(at Coord) {
	defer s.prune()
	if m := s.active(); m != nil {
		m.HandleCardClick(at)
		if m.State() != StateIdle || m.Card().Position == at || m.Card().HasActed {
			return
		}
	}
	if card := s.Board.At(at); card != nil {
		if m := s.machines[card.ID]; m != nil {
			m.HandleCardClick(at)
		}
	}
}

// SelectAbility arms a manual ability on the currently selected card.
func (s *Session) SelectAbility(cardID, name string) error {
	m, ok := s.machines[cardID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
	}
	defer s.prune()
	m.SelectAbility(name)
	return nil
}

// Tick advances the ability engine one step, then every card machine.
func (s *Session) Tick() {
	s.Abilities.Update()
	for _, card := range s.Board.Cards() {
		if m := s.machines[card.ID]; m != nil {
			m.Update()
		}
	}
	s.prune()
}

func (s *Session) Advance() error { return s.Turns.Advance() }

func (s *Session) EndTurn(player PlayerID) error { return s.Turns.EndTurn(player) }

func (s *Session) lookup(cardID, ability string) (*Card, *AbilityDefinition, error) {
	card, ok := s.Board.Card(cardID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
	}
	def, ok := s.Registry.Lookup(card, ability)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s has no ability %q", ErrInvalidDefinition, card.Type, ability)
	}
	return card, def, nil
}

func (s *Session) CanTrigger(cardID, ability string, target Coord) (bool, error) {
	card, def, err := s.lookup(cardID, ability)
	if err != nil {
		return false, err
	}
	return s.Abilities.CanTrigger(def, card, target), nil
}

// Execute runs an ability directly, bypassing the card's state machine. The
// trigger rules are checked first.
func (s *Session) Execute(cardID, ability string, target Coord) (bool, error) {
	card, def, err := s.lookup(cardID, ability)
	if err != nil {
		return false, err
	}
	if !s.Abilities.CanTrigger(def, card, target) {
		return false, nil
	}
	if _, err := s.Abilities.Execute(def, card, target); err != nil {
		return false, err
	}
	s.prune()
	return true, nil
}

// Cooldowns reports the remaining turns of each ability on a card.
func (s *Session) Cooldowns(cardID string) (map[string]int, error) {
	card, ok := s.Board.Card(cardID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
	}
	out := make(map[string]int)
	for _, def := range s.Registry.AbilitiesFor(card) {
		out[def.Name] = s.Abilities.GetCurrentCooldown(card, def)
	}
	return out, nil
}

// prune drops machines whose cards have left the board.
func (s *Session) prune() {
	for id := range s.machines {
		if _, ok := s.Board.Card(id); !ok {
			delete(s.machines, id)
			log.Debug().Str("card", id).Msg("machine released")
		}
	}
}

// SessionState is a serializable view of the session.
type SessionState struct {
	Phase      string         `json:"phase"`
	Turn       int            `json:"turn"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Cards      []CardState    `json:"cards"`
	LastNote   string         `json:"lastNote"`
	History    []HistoryEntry `json:"history,omitempty"`
	Executing  string         `json:"executing,omitempty"`
	Resolving  bool           `json:"resolving"`
	Selected   string         `json:"selected,omitempty"`
	MoveRange  []Coord        `json:"moveRange,omitempty"`
	AttackArea []Coord        `json:"attackArea,omitempty"`
}

func (s *Session) State() SessionState {
	state := SessionState{
		Phase:     s.Turns.CurrentPhase().String(),
		Turn:      s.Turns.Turn(),
		Width:     s.Board.Width(),
		Height:    s.Board.Height(),
		Cards:     make([]CardState, 0, len(s.machines)),
		LastNote:  s.Board.LastNote(),
		History:   s.Board.History(0),
		Resolving: s.Abilities.Busy(),
	}
	if x := s.Abilities.Current(); x != nil {
		state.Executing = x.Ability().Name
	}
	for _, card := range s.Board.Cards() {
		cs := card.snapshot()
		if m := s.machines[card.ID]; m != nil {
			cs.State = m.State().String()
		}
		state.Cards = append(state.Cards, cs)
	}
	if m := s.active(); m != nil {
		state.Selected = m.Card().ID
		state.MoveRange = m.MoveRange().Sorted()
		state.AttackArea = m.AttackRange().Sorted()
	}
	return state
}
