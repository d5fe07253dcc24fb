package game

import (
	"fmt"

	"grid_tactics/internal/shared"
)

type Coord = shared.Coord

// PlayerID 0 is the local player; every other id is an opponent.
type PlayerID int

const (
	Player   PlayerID = 0
	Opponent PlayerID = 1
)

// Side groups player ids into the two turn-owning camps.
type Side uint8

const (
	SidePlayer Side = iota
	SideOpponent
)

func (p PlayerID) Side() Side {
	if p == Player {
		return SidePlayer
	}
	return SideOpponent
}

func (s Side) String() string {
	if s == SidePlayer {
		return "player"
	}
	return "opponent"
}

// Card is a piece on the board. The board owns its lifecycle; the core only
// reads and writes position, acted flag, health and counters.
type Card struct {
	ID        string
	Type      string
	Owner     PlayerID
	Position  Coord
	FaceDown  bool
	HasActed  bool
	Health    int
	MaxHealth int
	Power     int
	Counters  map[string]int
}

// HealthPercent reports current health as 0..100.
func (c *Card) HealthPercent() int {
	if c == nil || c.MaxHealth <= 0 {
		return 0
	}
	pct := c.Health * 100 / c.MaxHealth
	return max(0, min(100, pct))
}

func (c *Card) Counter(name string) int {
	if c == nil || c.Counters == nil {
		return 0
	}
	return c.Counters[name]
}

func (c *Card) SetCounter(name string, v int) {
	if c.Counters == nil {
		c.Counters = make(map[string]int)
	}
	c.Counters[name] = v
}

// HostileTo reports whether other is a legal hostile target for c: owned by
// another player, or face-down and therefore of unknown identity.
func (c *Card) HostileTo(other *Card) bool {
	if c == nil || other == nil || c == other {
		return false
	}
	return other.Owner != c.Owner || other.FaceDown
}

func (c *Card) String() string {
	if c == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s[%s p%d %s]", c.Type, shortID(c.ID), c.Owner, c.Position)
}

// CardState is a serializable snapshot of a Card.
type CardState struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Owner     PlayerID       `json:"owner"`
	Position  Coord          `json:"position"`
	FaceDown  bool           `json:"faceDown"`
	HasActed  bool           `json:"hasActed"`
	Health    int            `json:"health"`
	MaxHealth int            `json:"maxHealth"`
	Power     int            `json:"power"`
	Counters  map[string]int `json:"counters,omitempty"`
	State     string         `json:"state"`
}

func (c *Card) snapshot() CardState {
	counters := make(map[string]int, len(c.Counters))
	for k, v := range c.Counters {
		counters[k] = v
	}
	return CardState{
		ID:        c.ID,
		Type:      c.Type,
		Owner:     c.Owner,
		Position:  c.Position,
		FaceDown:  c.FaceDown,
		HasActed:  c.HasActed,
		Health:    c.Health,
		MaxHealth: c.MaxHealth,
		Power:     c.Power,
		Counters:  counters,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
