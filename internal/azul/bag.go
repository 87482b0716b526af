package azul

import "math/rand"

// Bag is the tile source the factory draws from. TileBag is the real
// implementation; tests substitute scripted bags.
type Bag interface {
	AddTiles(count int, t TileType)
	AddTileList(tiles []TileType)
	TryTakeTiles(amount int) ([]TileType, bool)
	Len() int
}

// TileBag is an unordered multiset of color tiles with random extraction.
type TileBag struct {
	tiles []TileType
	rng   *rand.Rand
}

// NewTileBag creates an empty bag drawing from rng.
func NewTileBag(rng *rand.Rand) *TileBag {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &TileBag{rng: rng}
}

// AddTiles adds count tiles of type t. The starting marker never enters the bag.
func (b *TileBag) AddTiles(count int, t TileType) {
	if !t.IsColor() {
		return
	}
	for range count {
		b.tiles = append(b.tiles, t)
	}
}

// AddTileList adds every color tile in tiles.
func (b *TileBag) AddTileList(tiles []TileType) {
	for _, t := range tiles {
		if t.IsColor() {
			b.tiles = append(b.tiles, t)
		}
	}
}

// TryTakeTiles removes amount tiles chosen uniformly at random.
// If the bag holds fewer than amount tiles, every remaining tile is returned,
// the bag is left empty and ok is false.
func (b *TileBag) TryTakeTiles(amount int) (tiles []TileType, ok bool) {
	if amount <= 0 {
		return nil, true
	}
	if len(b.tiles) < amount {
		tiles = b.tiles
		b.tiles = nil
		return tiles, false
	}

	tiles = make([]TileType, 0, amount)
	for range amount {
		i := b.rng.Intn(len(b.tiles))
		tiles = append(tiles, b.tiles[i])
		// swap-remove keeps the draw O(1)
		last := len(b.tiles) - 1
		b.tiles[i] = b.tiles[last]
		b.tiles = b.tiles[:last]
	}
	return tiles, true
}

// Len returns the number of tiles in the bag.
func (b *TileBag) Len() int {
	return len(b.tiles)
}

// Count returns the number of tiles of type t in the bag.
func (b *TileBag) Count(t TileType) int {
	n := 0
	for _, tile := range b.tiles {
		if tile == t {
			n++
		}
	}
	return n
}
