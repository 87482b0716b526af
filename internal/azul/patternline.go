package azul

// PatternLine is a staging row on a board that holds up to Length tiles of a
// single color.
type PatternLine struct {
	length        int
	color         TileType
	numberOfTiles int
}

// NewPatternLine creates an empty line of the given capacity.
func NewPatternLine(length int) *PatternLine {
	return &PatternLine{length: length}
}

// Length returns the line capacity.
func (l *PatternLine) Length() int {
	return l.length
}

// NumberOfTiles returns how many tiles the line holds.
func (l *PatternLine) NumberOfTiles() int {
	return l.numberOfTiles
}

// Color returns the color of the tiles on the line. ok is false when the line
// is empty.
func (l *PatternLine) Color() (t TileType, ok bool) {
	if l.numberOfTiles == 0 {
		return 0, false
	}
	return l.color, true
}

// IsComplete reports whether the line is full.
func (l *PatternLine) IsComplete() bool {
	return l.numberOfTiles == l.length
}

// CanAccept reports whether TryAddTiles(t, ...) would succeed.
func (l *PatternLine) CanAccept(t TileType) error {
	if !t.IsColor() {
		return argumentInvalid("%s cannot be placed on a pattern line", t)
	}
	if l.IsComplete() {
		return invalidState("pattern line of length %d is already complete", l.length)
	}
	if c, ok := l.Color(); ok && c != t {
		return invalidState("pattern line holds %s tiles, cannot add %s", c, t)
	}
	return nil
}

// TryAddTiles adds n tiles of type t and returns how many did not fit.
// Adding zero tiles is allowed but still checks the color and completeness.
func (l *PatternLine) TryAddTiles(t TileType, n int) (remaining int, err error) {
	if n < 0 {
		return 0, argumentInvalid("cannot add %d tiles", n)
	}
	if err := l.CanAccept(t); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	space := l.length - l.numberOfTiles
	added := min(n, space)
	l.color = t
	l.numberOfTiles += added
	return n - added, nil
}

// Clear empties the line.
func (l *PatternLine) Clear() {
	l.numberOfTiles = 0
	l.color = 0
}
