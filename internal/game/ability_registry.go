package game

import (
	"errors"
	"fmt"
)

var (
	actionFactory func(ActionStep) (Action, error)

	// ErrActionFactoryNotConfigured indicates no action resolver has been registered.
	ErrActionFactoryNotConfigured = errors.New("game: action factory not configured")
	// ErrActionNotRegistered indicates the resolver has no action for the step kind.
	ErrActionNotRegistered = errors.New("game: action not registered")
)

// RegisterActionFactory installs the resolver used to build ability action
// steps at runtime.
func RegisterActionFactory(factory func(ActionStep) (Action, error)) {
	actionFactory = factory
}

func resolveAction(step ActionStep) (Action, error) {
	if actionFactory == nil {
		return nil, ErrActionFactoryNotConfigured
	}
	return actionFactory(step)
}

// AbilityRegistry maps card types to their authored abilities. It is filled
// once at startup and only read afterwards.
type AbilityRegistry struct {
	byType map[string][]*AbilityDefinition
}

func NewAbilityRegistry() *AbilityRegistry {
	return &AbilityRegistry{byType: make(map[string][]*AbilityDefinition)}
}

// Register validates defs and appends them to cardType's ability list.
func (r *AbilityRegistry) Register(cardType string, defs ...AbilityDefinition) error {
	if cardType == "" {
		return fmt.Errorf("%w: empty card type", ErrInvalidDefinition)
	}
	existing := r.byType[cardType]
	for i := range defs {
		def := defs[i]
		if err := def.Validate(); err != nil {
			return err
		}
		for _, other := range existing {
			if other.Name == def.Name {
				return fmt.Errorf("%w: %q already registered for %s", ErrInvalidDefinition, def.Name, cardType)
			}
		}
		def.Actions = append([]ActionStep(nil), def.Actions...)
		existing = append(existing, &def)
	}
	r.byType[cardType] = existing
	return nil
}

// AbilitiesFor resolves a live card to the abilities of its type, in
// registration order.
func (r *AbilityRegistry) AbilitiesFor(card *Card) []*AbilityDefinition {
	if r == nil || card == nil {
		return nil
	}
	return r.byType[card.Type]
}

func (r *AbilityRegistry) Lookup(card *Card, name string) (*AbilityDefinition, bool) {
	for _, def := range r.AbilitiesFor(card) {
		if def.Name == name {
			return def, true
		}
	}
	return nil, false
}

// CardKind binds a card type to its movement and attack shapes.
type CardKind struct {
	Name   string
	Move   RangeStrategy
	Attack RangeStrategy
}

var noRange = RangeFunc(func(*Card, Occupancy) RangeResult { return RangeResult{} })

// KindCatalog selects range strategies per card type.
type KindCatalog struct {
	kinds map[string]CardKind
}

func NewKindCatalog() *KindCatalog {
	return &KindCatalog{kinds: make(map[string]CardKind)}
}

func (k *KindCatalog) Register(kind CardKind) error {
	if kind.Name == "" {
		return errors.New("card kind needs a name")
	}
	if _, exists := k.kinds[kind.Name]; exists {
		return fmt.Errorf("card kind %q already registered", kind.Name)
	}
	if kind.Move == nil {
		kind.Move = noRange
	}
	if kind.Attack == nil {
		kind.Attack = noRange
	}
	k.kinds[kind.Name] = kind
	return nil
}

// RegisterShapes binds cardType to registered shapes by name.
func (k *KindCatalog) RegisterShapes(cardType, moveShape, attackShape string) error {
	move, ok := LookupShape(moveShape, MoveRange)
	if !ok {
		return fmt.Errorf("unknown move shape %q", moveShape)
	}
	attack, ok := LookupShape(attackShape, AttackRange)
	if !ok {
		return fmt.Errorf("unknown attack shape %q", attackShape)
	}
	return k.Register(CardKind{Name: cardType, Move: move, Attack: attack})
}

// MoveStrategy returns the card's movement strategy. Unknown types cannot move.
func (k *KindCatalog) MoveStrategy(card *Card) RangeStrategy {
	if k == nil || card == nil {
		return noRange
	}
	if kind, ok := k.kinds[card.Type]; ok {
		return kind.Move
	}
	return noRange
}

func (k *KindCatalog) AttackStrategy(card *Card) RangeStrategy {
	if k == nil || card == nil {
		return noRange
	}
	if kind, ok := k.kinds[card.Type]; ok {
		return kind.Attack
	}
	return noRange
}
