package azul

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileBagTryTakeTiles(t *testing.T) {
	bag := NewTileBag(rand.New(rand.NewSource(42)))
	bag.AddTiles(3, TileRed)
	bag.AddTiles(2, TileBlue)
	bag.AddTiles(5, TileStartingMarker)

	require.Equal(t, 5, bag.Len(), "marker must never enter the bag")

	tiles, ok := bag.TryTakeTiles(4)
	require.True(t, ok)
	assert.Len(t, tiles, 4)
	assert.Equal(t, 1, bag.Len())

	tiles, ok = bag.TryTakeTiles(4)
	assert.False(t, ok)
	assert.Len(t, tiles, 1, "a short bag hands out what it has")
	assert.Zero(t, bag.Len())
}

func TestTileBagTakeZero(t *testing.T) {
	bag := NewTileBag(nil)
	tiles, ok := bag.TryTakeTiles(0)
	assert.True(t, ok)
	assert.Empty(t, tiles)
}

func TestTileBagDeterministicForSeed(t *testing.T) {
	draw := func() []TileType {
		bag := NewTileBag(rand.New(rand.NewSource(7)))
		for _, c := range PlayableColors() {
			bag.AddTiles(TilesPerColor, c)
		}
		tiles, _ := bag.TryTakeTiles(20)
		return tiles
	}
	assert.Equal(t, draw(), draw())
}

func TestTileBagPreservesColorCounts(t *testing.T) {
	bag := NewTileBag(rand.New(rand.NewSource(3)))
	bag.AddTileList([]TileType{TileRed, TileRed, TileBlack, TileStartingMarker})
	tiles, ok := bag.TryTakeTiles(3)
	require.True(t, ok)
	counts := make(map[TileType]int)
	for _, tile := range tiles {
		counts[tile]++
	}
	assert.Equal(t, map[TileType]int{TileRed: 2, TileBlack: 1}, counts)
	assert.Zero(t, bag.Count(TileRed))
}
