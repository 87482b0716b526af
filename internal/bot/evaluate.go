// Package bot implements computer player strategies. Every strategy
// registers itself with the registry in init().
package bot

import (
	"github.com/google/uuid"
	"github.com/vovakirdan/tui-azul/internal/azul"
)

// outcome is what a move would do to the mover's board, estimated from a
// snapshot.
type outcome struct {
	move        azul.Move
	taken       int  // color tiles drawn
	placed      int  // tiles that land on the pattern line
	overflow    int  // tiles that fall to the floor
	completes   bool // the pattern line becomes full
	wallPoints  int  // points scored when the completed line is tiled
	floorPoints int  // floor penalty of the move, zero or negative
	takesMarker bool
}

func evaluate(snap azul.Snapshot, me azul.PlayerSnapshot, m azul.Move) outcome {
	src, _ := snap.Source(m.SourceID)
	o := outcome{
		move:        m,
		taken:       src.Count(m.Color),
		takesMarker: src.IsCenter && src.Count(azul.TileStartingMarker) > 0,
	}

	if m.IsFloor() {
		o.overflow = o.taken
	} else {
		line := me.Board.PatternLines[m.LineIndex]
		o.placed = min(o.taken, line.Length-line.Count)
		o.overflow = o.taken - o.placed
		o.completes = line.Count+o.placed == line.Length
		if o.completes {
			o.wallPoints = me.Board.PlacementPoints(m.Color, m.LineIndex)
		}
	}

	floorTiles := o.overflow
	if o.takesMarker {
		floorTiles++
	}
	o.floorPoints = me.Board.FloorPenalty(floorTiles)
	return o
}

func outcomes(snap azul.Snapshot, playerID uuid.UUID) []outcome {
	me, ok := snap.Player(playerID)
	if !ok {
		return nil
	}
	moves := azul.LegalMoves(snap, playerID)
	out := make([]outcome, 0, len(moves))
	for _, m := range moves {
		out = append(out, evaluate(snap, me, m))
	}
	return out
}

// best returns the outcome with the highest score. Ties keep the earlier
// outcome, which makes the choice deterministic for a given snapshot.
func best(candidates []outcome, score func(outcome) float64) (outcome, bool) {
	if len(candidates) == 0 {
		return outcome{}, false
	}
	top := candidates[0]
	topScore := score(top)
	for _, o := range candidates[1:] {
		if s := score(o); s > topScore {
			top, topScore = o, s
		}
	}
	return top, true
}
