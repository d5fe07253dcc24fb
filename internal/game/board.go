package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Occupancy is the read-only view of the board that range strategies need.
type Occupancy interface {
	Width() int
	Height() int
	At(c Coord) *Card
}

// Board tracks card placement. Cards keep their spawn order so every
// enumeration over them is deterministic.
type Board struct {
	width    int
	height   int
	cells    map[Coord]*Card
	cards    []*Card
	byID     map[string]*Card
	lastNote string
	history  history
}

// CardSpec describes a card to place on the board.
type CardSpec struct {
	ID        string
	Type      string
	Owner     PlayerID
	Position  Coord
	FaceDown  bool
	Health    int
	MaxHealth int
	Power     int
}

func NewBoard(width, height int) *Board {
	return &Board{
		width:  width,
		height: height,
		cells:  make(map[Coord]*Card),
		byID:   make(map[string]*Card),
	}
}

func (b *Board) Width() int  { return b.width }
func (b *Board) Height() int { return b.height }

func (b *Board) InBounds(c Coord) bool { return c.In(b.width, b.height) }

func (b *Board) At(c Coord) *Card { return b.cells[c] }

// Spawn creates a card from spec and places it. A blank ID gets a fresh UUID.
func (b *Board) Spawn(spec CardSpec) (*Card, error) {
	if !b.InBounds(spec.Position) {
		return nil, fmt.Errorf("%w: %s", ErrOutOfBounds, spec.Position)
	}
	if b.cells[spec.Position] != nil {
		return nil, fmt.Errorf("%w: %s", ErrOccupied, spec.Position)
	}
	id := spec.ID
	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := b.byID[id]; exists {
		return nil, fmt.Errorf("duplicate card id %q", id)
	}
	maxHealth := spec.MaxHealth
	if maxHealth <= 0 {
		maxHealth = spec.Health
	}
	card := &Card{
		ID:        id,
		Type:      spec.Type,
		Owner:     spec.Owner,
		Position:  spec.Position,
		FaceDown:  spec.FaceDown,
		Health:    spec.Health,
		MaxHealth: maxHealth,
		Power:     spec.Power,
		Counters:  make(map[string]int),
	}
	b.cells[card.Position] = card
	b.cards = append(b.cards, card)
	b.byID[id] = card
	return card, nil
}

// MoveCard relocates c to an empty in-bounds cell.
func (b *Board) MoveCard(c *Card, to Coord) error {
	if c == nil || b.byID[c.ID] != c {
		return ErrUnknownCard
	}
	if !b.InBounds(to) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, to)
	}
	if occupant := b.cells[to]; occupant != nil && occupant != c {
		return fmt.Errorf("%w: %s", ErrOccupied, to)
	}
	delete(b.cells, c.Position)
	c.Position = to
	b.cells[to] = c
	return nil
}

// Remove takes c off the board. Removing an unknown card is a no-op.
func (b *Board) Remove(c *Card) {
	if c == nil || b.byID[c.ID] != c {
		return
	}
	delete(b.byID, c.ID)
	if b.cells[c.Position] == c {
		delete(b.cells, c.Position)
	}
	for i, other := range b.cards {
		if other == c {
			b.cards = append(b.cards[:i], b.cards[i+1:]...)
			break
		}
	}
}

func (b *Board) Card(id string) (*Card, bool) {
	c, ok := b.byID[id]
	return c, ok
}

// Cards returns the live cards in spawn order.
func (b *Board) Cards() []*Card {
	out := make([]*Card, len(b.cards))
	copy(out, b.cards)
	return out
}

func (b *Board) CardsOwnedBy(p PlayerID) []*Card {
	var out []*Card
	for _, c := range b.cards {
		if c.Owner == p {
			out = append(out, c)
		}
	}
	return out
}

// Owners lists the distinct owners on side s in first-seen order.
func (b *Board) Owners(s Side) []PlayerID {
	var out []PlayerID
	seen := make(map[PlayerID]bool)
	for _, c := range b.cards {
		if c.Owner.Side() != s || seen[c.Owner] {
			continue
		}
		seen[c.Owner] = true
		out = append(out, c.Owner)
	}
	return out
}

// ApplyDamage lowers the health of the card at target and removes it once
// it reaches zero. It reports whether the card was removed.
func (b *Board) ApplyDamage(target *Card, amount int) bool {
	if target == nil || amount <= 0 {
		return false
	}
	target.Health -= amount
	if target.Health > 0 {
		return false
	}
	target.Health = 0
	b.Remove(target)
	b.Note(fmt.Sprintf("%s destroyed", target))
	return true
}

// OnPhaseChanged clears the acted flag for the side whose turn is starting.
func (b *Board) OnPhaseChanged(change PhaseChange) {
	if !change.Phase.IsTurnStart() {
		return
	}
	side := change.Phase.Side()
	for _, c := range b.cards {
		if c.Owner.Side() == side {
			c.HasActed = false
		}
	}
	log.Debug().Stringer("side", side).Msg("acted flags cleared")
}

// Note records a human-readable summary of the latest board change.
func (b *Board) Note(note string) {
	if note == "" {
		return
	}
	b.lastNote = note
	b.history.record(note)
}

func (b *Board) LastNote() string { return b.lastNote }

// History returns the recorded notes with a sequence number above seq.
// Only the most recent entries are retained.
func (b *Board) History(seq int) []HistoryEntry { return b.history.since(seq) }
