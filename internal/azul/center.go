package azul

import "github.com/google/uuid"

// TableCenter collects the tiles players leave behind on the displays, plus
// the starting marker at the beginning of each round.
type TableCenter struct {
	id    uuid.UUID
	tiles []TileType
}

// NewTableCenter creates an empty center.
func NewTableCenter() *TableCenter {
	return &TableCenter{id: uuid.New()}
}

// ID returns the center identifier. Take requests use it like a display id.
func (c *TableCenter) ID() uuid.UUID {
	return c.id
}

// AddStartingTile places the starting marker in the center.
// There is never more than one marker, so the call is a no-op if the marker
// was not claimed during the previous round.
func (c *TableCenter) AddStartingTile() {
	if c.HasStartingTile() {
		return
	}
	c.tiles = append(c.tiles, TileStartingMarker)
}

// AddTiles appends tiles to the center.
func (c *TableCenter) AddTiles(tiles []TileType) {
	for _, t := range tiles {
		if t == TileStartingMarker {
			c.AddStartingTile()
			continue
		}
		c.tiles = append(c.tiles, t)
	}
}

// TakeTiles removes every tile of type t. If the starting marker is present it
// is always taken along, whatever color was requested, and is returned first.
func (c *TableCenter) TakeTiles(t TileType) ([]TileType, error) {
	if !t.IsColor() {
		return nil, argumentInvalid("cannot take %s from the center", t)
	}
	if c.count(t) == 0 {
		return nil, invalidState("center holds no %s tiles", t)
	}

	var taken []TileType
	if c.HasStartingTile() {
		taken = append(taken, TileStartingMarker)
	}
	kept := c.tiles[:0]
	for _, tile := range c.tiles {
		switch tile {
		case t:
			taken = append(taken, tile)
		case TileStartingMarker:
		default:
			kept = append(kept, tile)
		}
	}
	c.tiles = kept
	return taken, nil
}

// Tiles returns a copy of the center contents.
func (c *TableCenter) Tiles() []TileType {
	out := make([]TileType, len(c.tiles))
	copy(out, c.tiles)
	return out
}

// HasStartingTile reports whether the marker is still in the center.
func (c *TableCenter) HasStartingTile() bool {
	return c.count(TileStartingMarker) > 0
}

// ColorCount returns the number of color tiles in the center.
func (c *TableCenter) ColorCount() int {
	return countColors(c.tiles)
}

// IsEmpty reports whether no color tiles remain. The marker does not count.
func (c *TableCenter) IsEmpty() bool {
	return c.ColorCount() == 0
}

func (c *TableCenter) count(t TileType) int {
	n := 0
	for _, tile := range c.tiles {
		if tile == t {
			n++
		}
	}
	return n
}
