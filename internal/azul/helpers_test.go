package azul

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// scriptedBag draws the tiles listed in script first, in order, and then
// falls back to insertion order. It makes factory fills predictable.
type scriptedBag struct {
	tiles  []TileType
	script []TileType
}

func (b *scriptedBag) AddTiles(count int, t TileType) {
	if !t.IsColor() {
		return
	}
	for range count {
		b.tiles = append(b.tiles, t)
	}
}

func (b *scriptedBag) AddTileList(tiles []TileType) {
	for _, t := range tiles {
		b.AddTiles(1, t)
	}
}

func (b *scriptedBag) TryTakeTiles(amount int) ([]TileType, bool) {
	if amount <= 0 {
		return nil, true
	}
	if len(b.tiles) < amount {
		out := b.tiles
		b.tiles = nil
		return out, false
	}
	out := make([]TileType, 0, amount)
	for range amount {
		out = append(out, b.takeOne())
	}
	return out, true
}

func (b *scriptedBag) takeOne() TileType {
	idx := 0
	if len(b.script) > 0 {
		want := b.script[0]
		b.script = b.script[1:]
		for i, t := range b.tiles {
			if t == want {
				idx = i
				break
			}
		}
	}
	t := b.tiles[idx]
	b.tiles = append(b.tiles[:idx], b.tiles[idx+1:]...)
	return t
}

func (b *scriptedBag) Len() int {
	return len(b.tiles)
}

// recordingSink collects discarded tiles.
type recordingSink struct {
	tiles []TileType
}

func (s *recordingSink) AddToUsedTiles(t TileType) {
	s.tiles = append(s.tiles, t)
}

func repeat(t TileType, n int) []TileType {
	out := make([]TileType, n)
	for i := range out {
		out[i] = t
	}
	return out
}

func twoSeats() []Seat {
	return []Seat{
		{ID: uuid.New(), Name: "alice"},
		{ID: uuid.New(), Name: "bob"},
	}
}

// totalColorTiles counts every color tile wherever it is in the game.
func totalColorTiles(g *Game) int {
	f := g.TileFactory
	n := f.Bag().Len() + f.TableCenter().ColorCount() + len(f.UsedTiles())
	for _, d := range f.Displays() {
		n += len(d.Tiles())
	}
	for _, p := range g.Players {
		n += len(p.TilesToPlace) + p.Board.TileCount()
	}
	return n
}

// markerCount counts starting markers in the center, pending or on a floor.
func markerCount(g *Game) int {
	n := 0
	if g.TileFactory.TableCenter().HasStartingTile() {
		n++
	}
	for _, p := range g.Players {
		if p.StartingTilePending {
			n++
		}
		for _, s := range p.Board.FloorLine() {
			if s.HasTile() && s.Tile() == TileStartingMarker {
				n++
			}
		}
	}
	return n
}

func requireRuleError(t *testing.T, err error, target error) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, target)
}
