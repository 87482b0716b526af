package multiplayer

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/tui-azul/internal/azul"
	"github.com/vovakirdan/tui-azul/internal/registry"
)

// table is one live game plus everything the coordinator keeps around it.
// mu serialises every access to game: at most one move is applied at a time
// and snapshots are always taken between moves.
type table struct {
	mu          sync.Mutex
	game        *azul.Game
	bots        map[uuid.UUID]registry.Strategy
	subs        subscribers
	version     uint64
	lastRound   *azul.RoundReport
	botsRunning bool
	abandoned   bool
	createdAt   time.Time
	lastActive  time.Time // last move, subscribe or unsubscribe
	endedAt     time.Time
}

func newTable(g *azul.Game, bots map[uuid.UUID]registry.Strategy) *table {
	now := time.Now()
	return &table{
		game:       g,
		bots:       bots,
		subs:       make(subscribers),
		createdAt:  now,
		lastActive: now,
	}
}

// idle reports whether nobody watches the unfinished game and nothing
// happened in it for longer than ttl. Must be called with mu held.
func (t *table) idle(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 || t.game.HasEnded || t.botsRunning {
		return false
	}
	return t.subs.live() == 0 && now.Sub(t.lastActive) > ttl
}

// release stops the table for good: computer players stop, subscribers are
// closed and dropped. The returned strategies must be closed by the caller
// once mu is released, since a strategy may still be thinking. Must be
// called with mu held.
func (t *table) release() []registry.Strategy {
	t.abandoned = true
	for _, s := range t.subs {
		if closer, ok := s.(interface{ Close() }); ok {
			closer.Close()
		}
	}
	t.subs = make(subscribers)

	bots := make([]registry.Strategy, 0, len(t.bots))
	for _, s := range t.bots {
		bots = append(bots, s)
	}
	t.bots = nil
	return bots
}

// closeStrategies releases the strategies that hold resources.
func closeStrategies(strategies []registry.Strategy) error {
	var errs []error
	for _, s := range strategies {
		if closer, ok := s.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// moveOutcome collects what the coordinator must publish after a move.
type moveOutcome struct {
	snapshot SnapshotEvent
	round    *RoundEndedEvent
	ended    *GameEndedEvent
}

// commit records a successful move. Must be called with mu held.
func (t *table) commit() moveOutcome {
	t.version++
	t.lastActive = time.Now()
	out := moveOutcome{
		snapshot: SnapshotEvent{GameID: t.game.ID, Version: t.version, Snapshot: t.game.Snapshot()},
	}
	if t.game.LastRound != nil && t.game.LastRound != t.lastRound {
		t.lastRound = t.game.LastRound
		out.round = &RoundEndedEvent{GameID: t.game.ID, Report: *t.game.LastRound}
	}
	if t.game.HasEnded && t.endedAt.IsZero() {
		t.endedAt = time.Now()
		res, _ := t.game.Result()
		res.EndedAt = t.endedAt
		out.ended = &GameEndedEvent{GameID: t.game.ID, Result: res}
	}
	return out
}

// publish sends the outcome to the subscribers. Must be called with mu held
// so events of consecutive moves are never interleaved.
func (t *table) publish(out moveOutcome) {
	if out.round != nil {
		t.subs.broadcast(*out.round)
	}
	t.subs.broadcast(out.snapshot)
	if out.ended != nil {
		t.subs.broadcast(*out.ended)
	}
}

// botToMove returns the strategy of the player to play, or nil when a human
// is to play, the game is over or it was abandoned.
func (t *table) botToMove() registry.Strategy {
	if t.game.HasEnded || t.abandoned {
		return nil
	}
	return t.bots[t.game.PlayerToPlayID]
}

// chooseMove asks strategy for a move. When the strategy fails or answers
// with an illegal move, the first legal move is returned together with the
// reason. ok is false when the player has no legal move at all.
func chooseMove(ctx context.Context, strategy registry.Strategy, snap azul.Snapshot, playerID uuid.UUID) (m azul.Move, reason error, ok bool) {
	legal := azul.LegalMoves(snap, playerID)
	if len(legal) == 0 {
		return azul.Move{}, nil, false
	}
	m, err := strategy.Choose(ctx, snap, playerID)
	if err != nil {
		return legal[0], err, true
	}
	for _, candidate := range legal {
		if candidate == m {
			return m, nil, true
		}
	}
	return legal[0], errIllegalChoice, true
}

var errIllegalChoice = errors.New("multiplayer: strategy chose an illegal move")
