package abilities

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"grid_tactics/internal/game"
)

// ActionFactory constructs the action for an authored step.
type ActionFactory func(step game.ActionStep) (game.Action, error)

// Re-export the runtime types so action implementations only need this
// package.
type (
	Action        = game.Action
	ActionContext = game.ActionContext
	ActionStatus  = game.ActionStatus
	ActionStep    = game.ActionStep
)

const (
	Pending = game.ActionPending
	Done    = game.ActionDone
)

var (
	registryMu sync.RWMutex
	registry   map[string]ActionFactory

	// ErrDuplicateRegistration indicates a kind already has an action factory.
	ErrDuplicateRegistration = errors.New("abilities: action already registered")
	// ErrNilFactory indicates a registration attempt provided a nil constructor.
	ErrNilFactory = errors.New("abilities: nil action factory")
	// ErrInvalidKind indicates the action kind is not valid for registration.
	ErrInvalidKind = errors.New("abilities: invalid action kind")
	// ErrUnknownKind indicates no factory has been registered for the kind.
	ErrUnknownKind = errors.New("abilities: action not registered")
	// ErrNilAction indicates a factory returned a nil action.
	ErrNilAction = errors.New("abilities: factory produced nil action")
)

func normalizeKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}

// Register associates an action kind with a factory. It is safe for
// concurrent use.
func Register(kind string, ctor ActionFactory) error {
	kind = normalizeKind(kind)
	if kind == "" {
		return ErrInvalidKind
	}
	if ctor == nil {
		return ErrNilFactory
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if registry == nil {
		registry = make(map[string]ActionFactory)
	}
	if _, exists := registry[kind]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRegistration, kind)
	}
	registry[kind] = ctor
	return nil
}

// New builds the action for step using the registered factory.
func New(step game.ActionStep) (game.Action, error) {
	kind := normalizeKind(step.Kind)
	registryMu.RLock()
	ctor := registry[kind]
	registryMu.RUnlock()

	if ctor == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	action, err := ctor(step)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	if action == nil {
		return nil, fmt.Errorf("%w: %s", ErrNilAction, kind)
	}
	return action, nil
}

// Known reports whether kind has a registered factory.
func Known(kind string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[normalizeKind(kind)]
	return ok
}

// Kinds returns the registered action kinds, sorted.
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]string, 0, len(registry))
	for kind := range registry {
		out = append(out, kind)
	}
	sort.Strings(out)
	return out
}

func init() {
	game.RegisterActionFactory(func(step game.ActionStep) (game.Action, error) {
		action, err := New(step)
		if err != nil {
			if errors.Is(err, ErrUnknownKind) {
				return nil, fmt.Errorf("%w: %s", game.ErrActionNotRegistered, step.Kind)
			}
			return nil, err
		}
		return action, nil
	})
}
