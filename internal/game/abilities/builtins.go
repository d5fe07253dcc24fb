package abilities

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"grid_tactics/internal/game"
)

func init() {
	mustRegisterBuiltin("damage", newDamage)
	mustRegisterBuiltin("heal", newHeal)
	mustRegisterBuiltin("wait", newWait)
	mustRegisterBuiltin("damage_over_time", newDamageOverTime)
	mustRegisterBuiltin("reveal", newReveal)
	mustRegisterBuiltin("teleport", newTeleport)
	mustRegisterBuiltin("refresh", newRefresh)
}

func mustRegisterBuiltin(kind string, ctor ActionFactory) {
	if err := Register(kind, ctor); err != nil {
		panic(err)
	}
}

func amountOr(step ActionStep, card *game.Card) int {
	if step.Amount != 0 || card == nil {
		return step.Amount
	}
	return card.Power
}

// damage hits the subject once. A zero amount uses the caster's power.
func newDamage(step ActionStep) (Action, error) {
	if step.Amount < 0 {
		return nil, fmt.Errorf("negative damage %d", step.Amount)
	}
	return game.ActionFunc(func(ctx *ActionContext) ActionStatus {
		subject := ctx.Subject()
		if subject == nil {
			return Done
		}
		amount := amountOr(ctx.Step, ctx.Card)
		ctx.Board.ApplyDamage(subject, amount)
		log.Debug().Str("ability", ctx.Ability.Name).Str("subject", subject.ID).Int("amount", amount).Msg("damage")
		return Done
	}), nil
}

func newHeal(step ActionStep) (Action, error) {
	if step.Amount <= 0 {
		return nil, fmt.Errorf("heal needs a positive amount, got %d", step.Amount)
	}
	return game.ActionFunc(func(ctx *ActionContext) ActionStatus {
		if subject := ctx.Subject(); subject != nil {
			subject.Health = min(subject.MaxHealth, subject.Health+ctx.Step.Amount)
		}
		return Done
	}), nil
}

// wait holds the sequence for Ticks scheduler ticks.
func newWait(step ActionStep) (Action, error) {
	if step.Ticks < 0 {
		return nil, fmt.Errorf("negative wait %d", step.Ticks)
	}
	return game.ActionFunc(func(ctx *ActionContext) ActionStatus {
		if ctx.Tick >= ctx.Step.Ticks {
			return Done
		}
		return Pending
	}), nil
}

// damage_over_time deals Amount on each of Ticks consecutive ticks.
func newDamageOverTime(step ActionStep) (Action, error) {
	if step.Amount <= 0 {
		return nil, fmt.Errorf("damage_over_time needs a positive amount, got %d", step.Amount)
	}
	return game.ActionFunc(func(ctx *ActionContext) ActionStatus {
		subject := ctx.Subject()
		if subject == nil {
			return Done
		}
		if ctx.Board.ApplyDamage(subject, ctx.Step.Amount) {
			return Done
		}
		if ctx.Tick+1 >= max(1, ctx.Step.Ticks) {
			return Done
		}
		return Pending
	}), nil
}

func newReveal(ActionStep) (Action, error) {
	return game.ActionFunc(func(ctx *ActionContext) ActionStatus {
		if subject := ctx.Subject(); subject != nil {
			subject.FaceDown = false
		}
		return Done
	}), nil
}

// teleport moves the caster onto the target cell when it is empty.
func newTeleport(ActionStep) (Action, error) {
	return game.ActionFunc(func(ctx *ActionContext) ActionStatus {
		if ctx.TargetCard() != nil {
			return Done
		}
		if err := ctx.Board.MoveCard(ctx.Card, ctx.Target); err != nil {
			log.Warn().Err(err).Str("ability", ctx.Ability.Name).Msg("teleport failed")
		}
		return Done
	}), nil
}

// refresh lets the subject act again this turn.
func newRefresh(ActionStep) (Action, error) {
	return game.ActionFunc(func(ctx *ActionContext) ActionStatus {
		if subject := ctx.Subject(); subject != nil {
			subject.HasActed = false
		}
		return Done
	}), nil
}
