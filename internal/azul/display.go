package azul

import "github.com/google/uuid"

// TilesPerDisplay is the number of tiles a display receives on refill.
const TilesPerDisplay = 4

// FactoryDisplay is one of the small pools players draft from.
type FactoryDisplay struct {
	id     uuid.UUID
	center *TableCenter
	tiles  []TileType
}

// NewFactoryDisplay creates an empty display that spills into center.
func NewFactoryDisplay(center *TableCenter) *FactoryDisplay {
	return &FactoryDisplay{id: uuid.New(), center: center}
}

// ID returns the display identifier.
func (d *FactoryDisplay) ID() uuid.UUID {
	return d.id
}

// AddTiles puts tiles on the display. Only used while refilling.
func (d *FactoryDisplay) AddTiles(tiles []TileType) {
	d.tiles = append(d.tiles, tiles...)
}

// TakeTiles removes every tile of type t and pushes the others to the center,
// leaving the display empty.
func (d *FactoryDisplay) TakeTiles(t TileType) ([]TileType, error) {
	if !t.IsColor() {
		return nil, argumentInvalid("cannot take %s from a display", t)
	}

	var taken, rest []TileType
	for _, tile := range d.tiles {
		if tile == t {
			taken = append(taken, tile)
		} else {
			rest = append(rest, tile)
		}
	}
	if len(taken) == 0 {
		return nil, invalidState("display holds no %s tiles", t)
	}

	d.tiles = nil
	d.center.AddTiles(rest)
	return taken, nil
}

// Tiles returns a copy of the display contents.
func (d *FactoryDisplay) Tiles() []TileType {
	out := make([]TileType, len(d.tiles))
	copy(out, d.tiles)
	return out
}

// IsEmpty reports whether the display holds no tiles.
func (d *FactoryDisplay) IsEmpty() bool {
	return len(d.tiles) == 0
}
