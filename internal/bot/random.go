package bot

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vovakirdan/tui-azul/internal/azul"
	"github.com/vovakirdan/tui-azul/internal/registry"
)

func init() {
	registry.Register("random", "uniformly random legal move", func(opts registry.Options) (registry.Strategy, error) {
		return NewRandom(opts.Seed), nil
	})
}

// Random plays a uniformly random legal move.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom creates a random strategy. A zero seed uses the clock.
func NewRandom(seed int64) *Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) ID() string { return "random" }

func (r *Random) Choose(_ context.Context, snap azul.Snapshot, playerID uuid.UUID) (azul.Move, error) {
	moves := azul.LegalMoves(snap, playerID)
	if len(moves) == 0 {
		return azul.Move{}, ErrNoMoves
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return moves[r.rng.Intn(len(moves))], nil
}
