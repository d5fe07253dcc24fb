package game

import (
	"errors"
	"fmt"
	"strings"
)

// RangeMode selects how an ability's legal target set is computed.
type RangeMode uint8

const (
	RangeUseTriggerCondition RangeMode = iota
	RangeUseCardAttackRange
	RangeUseCardMoveRange
	RangeCustomRadius
	RangeUnlimited
)

var rangeModeNames = map[RangeMode]string{
	RangeUseTriggerCondition: "UseTriggerCondition",
	RangeUseCardAttackRange:  "UseCardAttackRange",
	RangeUseCardMoveRange:    "UseCardMoveRange",
	RangeCustomRadius:        "CustomRadius",
	RangeUnlimited:           "Unlimited",
}

func (m RangeMode) String() string {
	if s, ok := rangeModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("rangeMode(%d)", int(m))
}

func ParseRangeMode(s string) (RangeMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default", "usetriggercondition", "trigger", "condition":
		return RangeUseTriggerCondition, true
	case "usecardattackrange", "attackrange", "attack":
		return RangeUseCardAttackRange, true
	case "usecardmoverange", "moverange", "move":
		return RangeUseCardMoveRange, true
	case "customradius", "custom", "radius":
		return RangeCustomRadius, true
	case "unlimited", "global":
		return RangeUnlimited, true
	default:
		return 0, false
	}
}

// ActionStep is one authored step of an ability. Kind selects the action
// implementation; the remaining fields are interpreted by that action.
type ActionStep struct {
	Kind   string `json:"kind" yaml:"kind"`
	Amount int    `json:"amount,omitempty" yaml:"amount"`
	Ticks  int    `json:"ticks,omitempty" yaml:"ticks"`
	OnSelf bool   `json:"onSelf,omitempty" yaml:"on_self"`
}

// AbilityDefinition is authored data shared by every card of a type. It is
// never mutated at runtime.
type AbilityDefinition struct {
	Name         string
	Condition    string
	Actions      []ActionStep
	Cooldown     int
	Phase        Phase
	RangeMode    RangeMode
	CustomRadius int
	RangeFilter  string
	// Manual abilities fire only on player command and are skipped by the
	// automatic phase scan.
	Manual bool
}

func (d *AbilityDefinition) cooldownKey() string { return "cooldown:" + d.Name }

// Validate reports every authoring problem in d.
func (d *AbilityDefinition) Validate() error {
	var errs []error
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if d.Cooldown < 0 {
		errs = append(errs, fmt.Errorf("cooldown %d is negative", d.Cooldown))
	}
	if d.RangeMode == RangeCustomRadius && d.CustomRadius < 0 {
		errs = append(errs, fmt.Errorf("custom radius %d is negative", d.CustomRadius))
	}
	if _, ok := rangeModeNames[d.RangeMode]; !ok {
		errs = append(errs, fmt.Errorf("unknown range mode %d", d.RangeMode))
	}
	if _, ok := phaseNames[d.Phase]; !ok {
		errs = append(errs, fmt.Errorf("unknown phase %d", d.Phase))
	}
	if _, err := ParseCondition(d.Condition); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseRangeFilter(d.RangeFilter); err != nil {
		errs = append(errs, err)
	}
	for i, step := range d.Actions {
		if strings.TrimSpace(step.Kind) == "" {
			errs = append(errs, fmt.Errorf("action %d has no kind", i))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w %q: %w", ErrInvalidDefinition, d.Name, errors.Join(errs...))
}
