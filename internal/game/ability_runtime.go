package game

// ActionStatus is what a step reports after each tick.
type ActionStatus uint8

const (
	ActionPending ActionStatus = iota
	ActionDone
)

func (s ActionStatus) String() string {
	if s == ActionDone {
		return "done"
	}
	return "pending"
}

// ActionContext carries the state an action step works on.
type ActionContext struct {
	Board   *Board
	Card    *Card
	Target  Coord
	Ability *AbilityDefinition
	Step    ActionStep
	// Tick counts the ticks already spent in this step; zero on first call.
	Tick int
}

// TargetCard returns the card at the target cell, if any.
func (ctx *ActionContext) TargetCard() *Card {
	if ctx.Board == nil {
		return nil
	}
	return ctx.Board.At(ctx.Target)
}

// Subject is the card the step affects: the caster for self steps, the
// target occupant otherwise.
func (ctx *ActionContext) Subject() *Card {
	if ctx.Step.OnSelf {
		return ctx.Card
	}
	return ctx.TargetCard()
}

// Action is one step of an ability. Tick is called once per scheduler tick
// until it reports ActionDone.
type Action interface {
	Tick(ctx *ActionContext) ActionStatus
}

type ActionFunc func(ctx *ActionContext) ActionStatus

func (f ActionFunc) Tick(ctx *ActionContext) ActionStatus { return f(ctx) }

// Execution is a resumable run of an ability's action sequence. Each call
// to Tick runs steps in order until one suspends or the sequence ends.
type Execution struct {
	ability *AbilityDefinition
	card    *Card
	target  Coord
	actions []Action
	index   int
	ticks   int
	done    bool
	board   *Board
}

func newExecution(board *Board, ability *AbilityDefinition, card *Card, target Coord) (*Execution, error) {
	actions := make([]Action, 0, len(ability.Actions))
	for _, step := range ability.Actions {
		action, err := resolveAction(step)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return &Execution{
		ability: ability,
		card:    card,
		target:  target,
		actions: actions,
		board:   board,
	}, nil
}

func (x *Execution) Tick() ActionStatus {
	if x.done {
		return ActionDone
	}
	for x.index < len(x.actions) {
		ctx := ActionContext{
			Board:   x.board,
			Card:    x.card,
			Target:  x.target,
			Ability: x.ability,
			Step:    x.ability.Actions[x.index],
			Tick:    x.ticks,
		}
		if x.actions[x.index].Tick(&ctx) == ActionPending {
			x.ticks++
			return ActionPending
		}
		x.index++
		x.ticks = 0
	}
	x.done = true
	return ActionDone
}

func (x *Execution) Done() bool                  { return x.done }
func (x *Execution) Ability() *AbilityDefinition { return x.ability }
func (x *Execution) Card() *Card                 { return x.card }
func (x *Execution) Target() Coord               { return x.target }

// StepIndex reports the step currently in progress.
func (x *Execution) StepIndex() int { return x.index }
