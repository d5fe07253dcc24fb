// Package config loads the authored card-type and ability data and builds a
// playable session from it.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"grid_tactics/internal/game"
	"grid_tactics/internal/game/abilities"
	"grid_tactics/internal/shared"
)

type Config struct {
	Board      BoardConfig               `yaml:"board" json:"board"`
	StartPhase string                    `yaml:"start_phase" json:"start_phase"`
	Players    []PlayerConfig            `yaml:"players" json:"players"`
	CardTypes  map[string]CardTypeConfig `yaml:"card_types" json:"card_types"`
	Cards      []CardConfig              `yaml:"cards" json:"cards"`
}

type BoardConfig struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

type PlayerConfig struct {
	ID                   int  `yaml:"id" json:"id"`
	SingleActionEndsTurn bool `yaml:"single_action_ends_turn" json:"single_action_ends_turn"`
}

type CardTypeConfig struct {
	Move      string          `yaml:"move" json:"move"`
	Attack    string          `yaml:"attack" json:"attack"`
	Abilities []AbilityConfig `yaml:"abilities" json:"abilities"`
}

type AbilityConfig struct {
	Name         string            `yaml:"name" json:"name"`
	Condition    string            `yaml:"condition" json:"condition"`
	Cooldown     int               `yaml:"cooldown" json:"cooldown"`
	Phase        string            `yaml:"phase" json:"phase"`
	RangeMode    string            `yaml:"range_mode" json:"range_mode"`
	CustomRadius int               `yaml:"custom_radius" json:"custom_radius"`
	RangeFilter  string            `yaml:"range_filter" json:"range_filter"`
	Manual       bool              `yaml:"manual" json:"manual"`
	Actions      []game.ActionStep `yaml:"actions" json:"actions"`
}

type CardConfig struct {
	ID       string `yaml:"id" json:"id"`
	Type     string `yaml:"type" json:"type"`
	Owner    int    `yaml:"owner" json:"owner"`
	X        int    `yaml:"x" json:"x"`
	Y        int    `yaml:"y" json:"y"`
	FaceDown bool   `yaml:"face_down" json:"face_down"`
	Health   int    `yaml:"health" json:"health"`
	Power    int    `yaml:"power" json:"power"`
}

const (
	defaultBoardSize = 8
	defaultShape     = "adjacent"
	defaultHealth    = 3
	defaultPower     = 1
)

func (c *Config) ApplyDefaults() {
	if c.Board.Width == 0 {
		c.Board.Width = defaultBoardSize
	}
	if c.Board.Height == 0 {
		c.Board.Height = defaultBoardSize
	}
	if c.StartPhase == "" {
		c.StartPhase = game.PlayerMainPhase.String()
	}
	for name, ct := range c.CardTypes {
		if ct.Move == "" {
			ct.Move = defaultShape
		}
		if ct.Attack == "" {
			ct.Attack = defaultShape
		}
		c.CardTypes[name] = ct
	}
	for i := range c.Cards {
		if c.Cards[i].Health == 0 {
			c.Cards[i].Health = defaultHealth
		}
		if c.Cards[i].Power == 0 {
			c.Cards[i].Power = defaultPower
		}
	}
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) typeNames() []string {
	names := make([]string, 0, len(c.CardTypes))
	for name := range c.CardTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate reports every problem in the config at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Board.Width <= 0 || c.Board.Height <= 0 {
		errs = append(errs, fmt.Errorf("board size %dx%d must be positive", c.Board.Width, c.Board.Height))
	}
	if _, ok := game.ParsePhase(c.StartPhase); !ok {
		errs = append(errs, fmt.Errorf("unknown start phase %q", c.StartPhase))
	}
	for _, name := range c.typeNames() {
		ct := c.CardTypes[name]
		if _, ok := game.LookupShape(ct.Move, game.MoveRange); !ok {
			errs = append(errs, fmt.Errorf("card type %s: unknown move shape %q", name, ct.Move))
		}
		if _, ok := game.LookupShape(ct.Attack, game.AttackRange); !ok {
			errs = append(errs, fmt.Errorf("card type %s: unknown attack shape %q", name, ct.Attack))
		}
		defs, err := c.Definitions(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("card type %s: %w", name, err))
			continue
		}
		for _, def := range defs {
			if err := def.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("card type %s: %w", name, err))
			}
			for _, step := range def.Actions {
				if _, err := abilities.New(step); err != nil {
					errs = append(errs, fmt.Errorf("card type %s: ability %s: action %q: %w", name, def.Name, step.Kind, err))
				}
			}
		}
	}
	seen := make(map[shared.Coord]int)
	for i, card := range c.Cards {
		at := shared.C(card.X, card.Y)
		if _, ok := c.CardTypes[card.Type]; !ok {
			errs = append(errs, fmt.Errorf("card %d: unknown type %q", i, card.Type))
		}
		if !at.In(c.Board.Width, c.Board.Height) {
			errs = append(errs, fmt.Errorf("card %d: %s is off the board", i, at))
		}
		if prev, dup := seen[at]; dup {
			errs = append(errs, fmt.Errorf("card %d: %s already holds card %d", i, at, prev))
		}
		seen[at] = i
		if card.Owner < 0 {
			errs = append(errs, fmt.Errorf("card %d: negative owner %d", i, card.Owner))
		}
	}
	return errors.Join(errs...)
}

// Definitions converts the authored abilities of a card type.
func (c *Config) Definitions(cardType string) ([]game.AbilityDefinition, error) {
	ct, ok := c.CardTypes[cardType]
	if !ok {
		return nil, fmt.Errorf("unknown card type %q", cardType)
	}
	defs := make([]game.AbilityDefinition, 0, len(ct.Abilities))
	for _, a := range ct.Abilities {
		phase, ok := game.ParsePhase(a.Phase)
		if !ok {
			return nil, fmt.Errorf("ability %s: unknown phase %q", a.Name, a.Phase)
		}
		mode, ok := game.ParseRangeMode(a.RangeMode)
		if !ok {
			return nil, fmt.Errorf("ability %s: unknown range mode %q", a.Name, a.RangeMode)
		}
		defs = append(defs, game.AbilityDefinition{
			Name:         a.Name,
			Condition:    a.Condition,
			Actions:      a.Actions,
			Cooldown:     a.Cooldown,
			Phase:        phase,
			RangeMode:    mode,
			CustomRadius: a.CustomRadius,
			RangeFilter:  a.RangeFilter,
			Manual:       a.Manual,
		})
	}
	return defs, nil
}

// Build composes a session: registry, card kinds, board placements and the
// per-player turn policy.
func (c *Config) Build() (*game.Session, error) {
	registry := game.NewAbilityRegistry()
	kinds := game.NewKindCatalog()
	for _, name := range c.typeNames() {
		ct := c.CardTypes[name]
		if err := kinds.RegisterShapes(name, ct.Move, ct.Attack); err != nil {
			return nil, err
		}
		defs, err := c.Definitions(name)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(name, defs...); err != nil {
			return nil, err
		}
	}

	board := game.NewBoard(c.Board.Width, c.Board.Height)
	for i, card := range c.Cards {
		if _, err := board.Spawn(game.CardSpec{
			ID:       card.ID,
			Type:     card.Type,
			Owner:    game.PlayerID(card.Owner),
			Position: shared.C(card.X, card.Y),
			FaceDown: card.FaceDown,
			Health:   card.Health,
			Power:    card.Power,
		}); err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
	}

	start, ok := game.ParsePhase(c.StartPhase)
	if !ok {
		return nil, fmt.Errorf("unknown start phase %q", c.StartPhase)
	}
	session := game.NewSession(board, registry, kinds, start)
	for _, p := range c.Players {
		session.Turns.SetSingleActionEndsTurn(game.PlayerID(p.ID), p.SingleActionEndsTurn)
	}
	return session, nil
}
