// Package azul implements the rules engine for the Azul tile-drafting game.
// The package is UI-agnostic and deterministic for a given random source:
// it performs no I/O, starts no goroutines and never logs.
package azul

import "strings"

// TileType is a tile color, or the starting marker.
type TileType int

const (
	// TileStartingMarker is the first-player token. It is never a color and
	// has no place on the wall.
	TileStartingMarker TileType = iota
	TileBlue
	TileYellow
	TileRed
	TileBlack
	TileTurquoise
)

// NumColors is the number of playable colors.
const NumColors = 5

var playableColors = [NumColors]TileType{TileBlue, TileYellow, TileRed, TileBlack, TileTurquoise}

// PlayableColors returns the five colors in wall order.
func PlayableColors() []TileType {
	out := make([]TileType, NumColors)
	copy(out, playableColors[:])
	return out
}

// IsColor reports whether t is one of the five playable colors.
func (t TileType) IsColor() bool {
	return t >= TileBlue && t <= TileTurquoise
}

// String returns the lowercase name of the tile type.
func (t TileType) String() string {
	switch t {
	case TileStartingMarker:
		return "marker"
	case TileBlue:
		return "blue"
	case TileYellow:
		return "yellow"
	case TileRed:
		return "red"
	case TileBlack:
		return "black"
	case TileTurquoise:
		return "turquoise"
	default:
		return "unknown"
	}
}

// ParseTileType parses a tile name (case-insensitive) or its first letter.
func ParseTileType(s string) (TileType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "marker", "start", "m":
		return TileStartingMarker, true
	case "blue", "b":
		return TileBlue, true
	case "yellow", "y":
		return TileYellow, true
	case "red", "r":
		return TileRed, true
	case "black", "k":
		return TileBlack, true
	case "turquoise", "t":
		return TileTurquoise, true
	default:
		return 0, false
	}
}

// colorIndex returns the position of a color in wall order, or -1.
func colorIndex(t TileType) int {
	if !t.IsColor() {
		return -1
	}
	return int(t - TileBlue)
}

// WallColor returns the color required at the given wall cell.
// Row r is the base order shifted right by r positions.
func WallColor(row, col int) TileType {
	return playableColors[((col-row)%NumColors+NumColors)%NumColors]
}

// WallColumn returns the column holding color t in the given row, or -1 if t
// is not a color.
func WallColumn(row int, t TileType) int {
	idx := colorIndex(t)
	if idx < 0 {
		return -1
	}
	return (idx + row) % NumColors
}

// countColors returns the number of color tiles in tiles (markers excluded).
func countColors(tiles []TileType) int {
	n := 0
	for _, t := range tiles {
		if t.IsColor() {
			n++
		}
	}
	return n
}

// MarshalText encodes the tile as its name.
func (t TileType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tile name.
func (t *TileType) UnmarshalText(text []byte) error {
	parsed, ok := ParseTileType(string(text))
	if !ok {
		return argumentInvalid("unknown tile type %q", text)
	}
	*t = parsed
	return nil
}
