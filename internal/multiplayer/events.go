package multiplayer

import (
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-azul/internal/azul"
)

// SessionEvent represents an event sent from the coordinator to a session.
type SessionEvent interface {
	sessionEvent()
}

// SnapshotEvent carries the game state after a successful move.
// Version increases by one with every move, so a frontend can drop stale
// snapshots.
type SnapshotEvent struct {
	GameID   uuid.UUID
	Version  uint64
	Snapshot azul.Snapshot
}

func (SnapshotEvent) sessionEvent() {}

// RoundEndedEvent is sent after wall tiling, before the snapshot of the
// next round.
type RoundEndedEvent struct {
	GameID uuid.UUID
	Report azul.RoundReport
}

func (RoundEndedEvent) sessionEvent() {}

// GameEndedEvent is sent once, when the game finishes.
type GameEndedEvent struct {
	GameID uuid.UUID
	Result azul.GameResult
}

func (GameEndedEvent) sessionEvent() {}

// MoveRejectedEvent is sent when a move is refused by the rules engine.
type MoveRejectedEvent struct {
	GameID   uuid.UUID
	PlayerID uuid.UUID
	Code     azul.ErrorCode
	Message  string
}

func (MoveRejectedEvent) sessionEvent() {}
