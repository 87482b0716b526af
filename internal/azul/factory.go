package azul

import "github.com/google/uuid"

// UsedTileSink receives tiles discarded by a board.
type UsedTileSink interface {
	AddToUsedTiles(t TileType)
}

// TileFactory orchestrates the bag, the table center and the displays, and
// keeps the discarded tiles that are recycled into the bag when it runs dry.
type TileFactory struct {
	bag       Bag
	center    *TableCenter
	displays  []*FactoryDisplay
	usedTiles []TileType
}

// NewTileFactory creates a factory with numberOfDisplays empty displays.
func NewTileFactory(numberOfDisplays int, bag Bag) *TileFactory {
	center := NewTableCenter()
	displays := make([]*FactoryDisplay, numberOfDisplays)
	for i := range displays {
		displays[i] = NewFactoryDisplay(center)
	}
	return &TileFactory{
		bag:      bag,
		center:   center,
		displays: displays,
	}
}

// Bag returns the factory's tile bag.
func (f *TileFactory) Bag() Bag {
	return f.bag
}

// TableCenter returns the shared center.
func (f *TileFactory) TableCenter() *TableCenter {
	return f.center
}

// Displays returns the displays in creation order.
func (f *TileFactory) Displays() []*FactoryDisplay {
	out := make([]*FactoryDisplay, len(f.displays))
	copy(out, f.displays)
	return out
}

// UsedTiles returns a copy of the recycle pool.
func (f *TileFactory) UsedTiles() []TileType {
	out := make([]TileType, len(f.usedTiles))
	copy(out, f.usedTiles)
	return out
}

// FillDisplays refills every display with TilesPerDisplay tiles from the bag.
// When the bag runs short, the used tiles are recycled into it and the
// shortfall drawn again; if that is still not enough the display stays
// partially filled. The starting marker is put in the center once per call.
func (f *TileFactory) FillDisplays() {
	for _, d := range f.displays {
		tiles, ok := f.bag.TryTakeTiles(TilesPerDisplay)
		if !ok {
			f.recycleUsedTiles()
			more, _ := f.bag.TryTakeTiles(TilesPerDisplay - len(tiles))
			tiles = append(tiles, more...)
		}
		d.AddTiles(tiles)
	}
	f.center.AddStartingTile()
}

func (f *TileFactory) recycleUsedTiles() {
	if len(f.usedTiles) == 0 {
		return
	}
	f.bag.AddTileList(f.usedTiles)
	f.usedTiles = nil
}

// TakeTiles takes all tiles of type t from the display (or the center, when
// displayID is the center's id).
func (f *TileFactory) TakeTiles(displayID uuid.UUID, t TileType) ([]TileType, error) {
	if displayID == f.center.ID() {
		return f.center.TakeTiles(t)
	}
	d := f.display(displayID)
	if d == nil {
		return nil, notFound("display %s does not exist", displayID)
	}
	return d.TakeTiles(t)
}

func (f *TileFactory) display(id uuid.UUID) *FactoryDisplay {
	for _, d := range f.displays {
		if d.ID() == id {
			return d
		}
	}
	return nil
}

// HasSource reports whether id names a display or the center.
func (f *TileFactory) HasSource(id uuid.UUID) bool {
	return id == f.center.ID() || f.display(id) != nil
}

// AddToUsedTiles stores a discarded tile for recycling. The starting marker is
// consumed instead.
func (f *TileFactory) AddToUsedTiles(t TileType) {
	if !t.IsColor() {
		return
	}
	f.usedTiles = append(f.usedTiles, t)
}

// IsEmpty reports whether the displays and the center hold no color tiles.
// A leftover starting marker does not keep the round alive.
func (f *TileFactory) IsEmpty() bool {
	for _, d := range f.displays {
		if !d.IsEmpty() {
			return false
		}
	}
	return f.center.IsEmpty()
}
