package game

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"grid_tactics/internal/shared"
)

// PhaseSource reports the turn phase currently in effect.
type PhaseSource interface {
	CurrentPhase() Phase
}

type compiledCondition struct {
	cond Condition
	err  error
}

type compiledFilter struct {
	filter RangeFilter
	err    error
}

type triggerCandidate struct {
	card    *Card
	ability *AbilityDefinition
}

// AbilityEngine evaluates trigger rules and runs ability executions one at a
// time. Automatic triggers queued by a phase change run in card-then-ability
// order, and the engine reports Busy until the queue has drained.
type AbilityEngine struct {
	board    *Board
	phases   PhaseSource
	ledger   *CooldownLedger
	registry *AbilityRegistry
	kinds    *KindCatalog

	conditions map[string]compiledCondition
	filters    map[string]compiledFilter

	current  *Execution
	pending  []triggerCandidate
	finished []func(*Execution)
}

func NewAbilityEngine(board *Board, phases PhaseSource, ledger *CooldownLedger, registry *AbilityRegistry, kinds *KindCatalog) *AbilityEngine {
	return &AbilityEngine{
		board:      board,
		phases:     phases,
		ledger:     ledger,
		registry:   registry,
		kinds:      kinds,
		conditions: make(map[string]compiledCondition),
		filters:    make(map[string]compiledFilter),
	}
}

// OnFinished registers fn to run after each execution completes.
func (e *AbilityEngine) OnFinished(fn func(*Execution)) {
	if fn != nil {
		e.finished = append(e.finished, fn)
	}
}

func (e *AbilityEngine) IsExecutingAbility() bool { return e.current != nil }

// Busy reports whether an execution or queued automatic trigger remains.
func (e *AbilityEngine) Busy() bool { return e.current != nil || len(e.pending) > 0 }

func (e *AbilityEngine) Current() *Execution { return e.current }

func (e *AbilityEngine) GetCurrentCooldown(card *Card, ability *AbilityDefinition) int {
	return e.ledger.Current(card, ability)
}

func (e *AbilityEngine) condition(expr string) (Condition, error) {
	if c, ok := e.conditions[expr]; ok {
		return c.cond, c.err
	}
	cond, err := ParseCondition(expr)
	e.conditions[expr] = compiledCondition{cond: cond, err: err}
	if err != nil {
		log.Warn().Err(err).Str("condition", expr).Msg("condition never triggers")
	}
	return cond, err
}

func (e *AbilityEngine) filter(expr string) (RangeFilter, error) {
	if f, ok := e.filters[expr]; ok {
		return f.filter, f.err
	}
	f, err := ParseRangeFilter(expr)
	e.filters[expr] = compiledFilter{filter: f, err: err}
	if err != nil {
		log.Warn().Err(err).Str("filter", expr).Msg("range filter matches nothing")
	}
	return f, err
}

func (e *AbilityEngine) onBoard(card *Card) bool {
	if card == nil {
		return false
	}
	live, ok := e.board.Card(card.ID)
	return ok && live == card
}

// ResolveRange computes the cells ability may target from card.
func (e *AbilityEngine) ResolveRange(ability *AbilityDefinition, card *Card) RangeResult {
	if ability == nil || !e.onBoard(card) {
		return RangeResult{}
	}
	var out RangeResult
	switch ability.RangeMode {
	case RangeUseTriggerCondition:
		cond, err := e.condition(ability.Condition)
		if err != nil {
			return RangeResult{}
		}
		spatial := cond.spatial()
		if len(spatial) == 0 {
			out = NewRangeResult(card.Position)
			break
		}
		out = e.cellsWhere(func(c Coord) bool {
			d := shared.Chebyshev(card.Position, c)
			for _, cl := range spatial {
				if !cl.Op.apply(d, cl.Value) {
					return false
				}
			}
			return true
		})
	case RangeUseCardAttackRange:
		out = e.kinds.AttackStrategy(card).Range(card, e.board)
	case RangeUseCardMoveRange:
		out = e.kinds.MoveStrategy(card).Range(card, e.board)
	case RangeCustomRadius:
		if ability.CustomRadius < 0 {
			return RangeResult{}
		}
		out = e.cellsWhere(func(c Coord) bool {
			return shared.Chebyshev(card.Position, c) <= ability.CustomRadius
		})
	case RangeUnlimited:
		out = e.cellsWhere(func(Coord) bool { return true })
	default:
		return RangeResult{}
	}

	f, err := e.filter(ability.RangeFilter)
	if err != nil {
		return RangeResult{}
	}
	return f.Apply(card, e.board, out)
}

func (e *AbilityEngine) cellsWhere(keep func(Coord) bool) RangeResult {
	out := RangeResult{}
	for y := 0; y < e.board.Height(); y++ {
		for x := 0; x < e.board.Width(); x++ {
			if c := shared.C(x, y); keep(c) {
				out.Add(c)
			}
		}
	}
	return out
}

// CanTrigger reports whether ability may fire from card at target right now.
func (e *AbilityEngine) CanTrigger(ability *AbilityDefinition, card *Card, target Coord) bool {
	if ability == nil || !e.onBoard(card) {
		return false
	}
	if e.ledger.Current(card, ability) > 0 {
		return false
	}
	phase := e.phases.CurrentPhase()
	if ability.Phase != phase || !phase.OwnedBy(card.Owner) {
		return false
	}
	if !e.ResolveRange(ability, card).Has(target) {
		return false
	}
	cond, err := e.condition(ability.Condition)
	if err != nil {
		return false
	}
	return cond.Eval(ConditionEnv{Card: card, Target: target, Board: e.board})
}

// Execute starts ability from card at target and runs it until its first
// suspension. A second execution while one is in flight is rejected with
// ErrAbilityInFlight. Callers check CanTrigger first.
func (e *AbilityEngine) Execute(ability *AbilityDefinition, card *Card, target Coord) (*Execution, error) {
	if ability == nil || card == nil {
		return nil, errors.New("execute: nil ability or card")
	}
	if e.current != nil {
		log.Warn().
			Str("ability", ability.Name).
			Str("card", card.ID).
			Str("inFlight", e.current.ability.Name).
			Msg("ability execution rejected")
		return nil, fmt.Errorf("%w: %s", ErrAbilityInFlight, e.current.ability.Name)
	}
	x, err := newExecution(e.board, ability, card, target)
	if err != nil {
		return nil, fmt.Errorf("execute %s: %w", ability.Name, err)
	}
	e.current = x
	log.Info().
		Str("ability", ability.Name).
		Str("card", card.ID).
		Stringer("target", target).
		Msg("ability started")
	e.step()
	return x, nil
}

// Update advances the in-flight execution by one tick and then starts any
// queued automatic triggers.
func (e *AbilityEngine) Update() {
	e.step()
	e.pump()
}

func (e *AbilityEngine) step() {
	if e.current == nil {
		return
	}
	if e.current.Tick() == ActionPending {
		return
	}
	x := e.current
	e.current = nil
	e.ledger.Reset(x.card, x.ability)
	e.board.Note(fmt.Sprintf("%s used %s", x.card, x.ability.Name))
	log.Info().
		Str("ability", x.ability.Name).
		Str("card", x.card.ID).
		Int("cooldown", e.ledger.Current(x.card, x.ability)).
		Msg("ability finished")
	for _, fn := range e.finished {
		fn(x)
	}
}

// pump starts queued triggers one by one until one suspends or the queue is
// empty.
func (e *AbilityEngine) pump() {
	for e.current == nil && len(e.pending) > 0 {
		next := e.pending[0]
		e.pending = e.pending[1:]
		target, ok := e.implicitTarget(next.ability, next.card)
		if !ok {
			continue
		}
		if _, err := e.Execute(next.ability, next.card, target); err != nil {
			log.Warn().Err(err).Str("ability", next.ability.Name).Msg("automatic trigger failed")
		}
	}
}

// implicitTarget picks the first cell, row by row, at which ability can fire.
func (e *AbilityEngine) implicitTarget(ability *AbilityDefinition, card *Card) (Coord, bool) {
	for _, c := range e.ResolveRange(ability, card).Sorted() {
		if e.CanTrigger(ability, card, c) {
			return c, true
		}
	}
	return Coord{}, false
}

// OnPhaseChanged advances cooldowns at a side's turn start, then queues the
// automatic abilities bound to the new phase.
func (e *AbilityEngine) OnPhaseChanged(change PhaseChange) {
	side := change.Phase.Side()
	if change.Phase.IsTurnStart() {
		for _, owner := range e.board.Owners(side) {
			e.ledger.AdvancePlayer(owner)
		}
	}
	for _, card := range e.board.Cards() {
		if card.Owner.Side() != side || card.FaceDown {
			continue
		}
		for _, ability := range e.registry.AbilitiesFor(card) {
			if ability.Manual || ability.Phase != change.Phase {
				continue
			}
			e.pending = append(e.pending, triggerCandidate{card: card, ability: ability})
		}
	}
	if len(e.pending) > 0 {
		log.Debug().Stringer("phase", change.Phase).Int("queued", len(e.pending)).Msg("automatic triggers queued")
	}
	e.pump()
}
