package azul

// TileSpot is a single cell on the wall or the floor line.
type TileSpot struct {
	required    TileType
	constrained bool
	tile        TileType
	hasTile     bool
}

// NewWallSpot creates a spot that only accepts color t.
func NewWallSpot(t TileType) TileSpot {
	return TileSpot{required: t, constrained: true}
}

// NewFloorSpot creates a spot that accepts any tile.
func NewFloorSpot() TileSpot {
	return TileSpot{}
}

// RequiredColor returns the color the spot demands, if any.
func (s TileSpot) RequiredColor() (TileType, bool) {
	return s.required, s.constrained
}

// HasTile reports whether the spot is occupied.
func (s TileSpot) HasTile() bool {
	return s.hasTile
}

// Tile returns the tile on the spot. Only meaningful when HasTile is true.
func (s TileSpot) Tile() TileType {
	return s.tile
}

// PlaceTile puts t on the spot.
func (s *TileSpot) PlaceTile(t TileType) error {
	if s.hasTile {
		return invalidState("spot already holds a %s tile", s.tile)
	}
	if s.constrained && s.required != t {
		return invalidState("spot requires %s, got %s", s.required, t)
	}
	s.tile = t
	s.hasTile = true
	return nil
}

// Clear empties the spot and returns what was on it.
func (s *TileSpot) Clear() (TileType, bool) {
	if !s.hasTile {
		return 0, false
	}
	t := s.tile
	s.tile = 0
	s.hasTile = false
	return t, true
}
