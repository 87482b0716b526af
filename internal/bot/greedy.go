package bot

import (
	"context"

	"github.com/google/uuid"
	"github.com/vovakirdan/tui-azul/internal/azul"
	"github.com/vovakirdan/tui-azul/internal/registry"
)

func init() {
	registry.Register("greedy", "fills pattern lines, avoids floor overflow", func(registry.Options) (registry.Strategy, error) {
		return Greedy{}, nil
	})
	registry.Register("cautious", "maximises wall points minus floor penalties", func(registry.Options) (registry.Strategy, error) {
		return Cautious{}, nil
	})
}

// Greedy takes the move that puts the most tiles on a pattern line,
// penalising overflow and preferring lower lines on ties.
type Greedy struct{}

func (Greedy) ID() string { return "greedy" }

func (Greedy) Choose(_ context.Context, snap azul.Snapshot, playerID uuid.UUID) (azul.Move, error) {
	o, ok := best(outcomes(snap, playerID), greedyScore)
	if !ok {
		return azul.Move{}, ErrNoMoves
	}
	return o.move, nil
}

func greedyScore(o outcome) float64 {
	score := float64(o.placed) - 2*float64(o.overflow)
	if o.completes {
		score += 2
	}
	return score
}

// Cautious weighs the points a move scores at wall tiling against the floor
// penalty it causes, and values progress on long lines less than short ones.
type Cautious struct{}

func (Cautious) ID() string { return "cautious" }

func (Cautious) Choose(_ context.Context, snap azul.Snapshot, playerID uuid.UUID) (azul.Move, error) {
	o, ok := best(outcomes(snap, playerID), cautiousScore)
	if !ok {
		return azul.Move{}, ErrNoMoves
	}
	return o.move, nil
}

func cautiousScore(o outcome) float64 {
	score := float64(o.wallPoints + o.floorPoints)
	if !o.completes && !o.move.IsFloor() {
		// partial progress, worth a fraction of a tile
		score += 0.5 * float64(o.placed) / float64(o.move.LineIndex+1)
	}
	if o.takesMarker {
		// opening the next round is worth about one point
		score += 1
	}
	return score
}
