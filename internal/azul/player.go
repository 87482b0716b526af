package azul

import (
	"time"

	"github.com/google/uuid"
)

// PlayerKind tells human players from computer-controlled ones.
type PlayerKind int

const (
	PlayerHuman PlayerKind = iota
	PlayerComputer
)

// String returns a human-readable name for the kind.
func (k PlayerKind) String() string {
	switch k {
	case PlayerHuman:
		return "human"
	case PlayerComputer:
		return "computer"
	default:
		return "unknown"
	}
}

// Player is a seated participant in a game.
type Player struct {
	ID   uuid.UUID
	Name string

	// LastVisitedAt decides who opens the game: the least recent date plays
	// first and a nil date counts as the earliest possible one.
	LastVisitedAt *time.Time

	Board *Board

	// HasStartingTile is set when the player claims the starting marker and
	// reset for everyone when the next round starts.
	HasStartingTile bool

	// TilesToPlace holds the color tiles drawn by the last take action.
	TilesToPlace []TileType

	// StartingTilePending is true between claiming the marker and the
	// following place action, which puts it on the floor line.
	StartingTilePending bool

	Kind     PlayerKind
	Strategy string // strategy id for computer players
}

// NewPlayer creates a human player with an empty board.
func NewPlayer(id uuid.UUID, name string, lastVisitedAt *time.Time) *Player {
	return &Player{
		ID:            id,
		Name:          name,
		LastVisitedAt: lastVisitedAt,
		Board:         NewBoard(),
		Kind:          PlayerHuman,
	}
}

// IsComputer reports whether the player is computer-controlled.
func (p *Player) IsComputer() bool {
	return p.Kind == PlayerComputer
}

// HasTilesToPlace reports whether the player must place before drafting again.
func (p *Player) HasTilesToPlace() bool {
	return len(p.TilesToPlace) > 0 || p.StartingTilePending
}

// pendingTiles returns the tiles awaiting placement, marker first.
func (p *Player) pendingTiles() []TileType {
	var tiles []TileType
	if p.StartingTilePending {
		tiles = append(tiles, TileStartingMarker)
	}
	return append(tiles, p.TilesToPlace...)
}

func (p *Player) clearPending() {
	p.TilesToPlace = nil
	p.StartingTilePending = false
}
