// Package multiplayer runs Azul games for any number of frontends. The
// coordinator owns every live game, serialises the moves made on each one,
// plays the computer seats and pushes snapshots to subscribed sessions.
package multiplayer

import (
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/tui-azul/internal/azul"
)

// SessionID uniquely identifies a connected frontend (SSH session, WebSocket
// connection, local terminal).
type SessionID string

// PlayerSpec describes one seat of a new game.
type PlayerSpec struct {
	ID            uuid.UUID // generated when zero
	Name          string
	Kind          azul.PlayerKind
	Strategy      string // registry id, computer players only
	LastVisitedAt *time.Time
}

// Human returns a human seat.
func Human(name string) PlayerSpec {
	return PlayerSpec{ID: uuid.New(), Name: name, Kind: azul.PlayerHuman}
}

// Bot returns a computer seat playing strategy.
func Bot(name, strategy string) PlayerSpec {
	return PlayerSpec{ID: uuid.New(), Name: name, Kind: azul.PlayerComputer, Strategy: strategy}
}

func (p PlayerSpec) seat() azul.Seat {
	return azul.Seat{
		ID:            p.ID,
		Name:          p.Name,
		LastVisitedAt: p.LastVisitedAt,
		Kind:          p.Kind,
		Strategy:      p.Strategy,
	}
}
