package azul

// Board dimensions.
const (
	WallSize      = 5
	FloorLineSize = 7
)

// FloorPenalties are the points lost for each occupied floor slot, left to right.
var FloorPenalties = [FloorLineSize]int{-1, -1, -2, -2, -2, -3, -3}

// Final bonus points.
const (
	BonusCompletedRow    = 2
	BonusCompletedColumn = 7
	BonusCompletedColor  = 10
)

// WallPlacement records one tile moved from a pattern line onto the wall.
type WallPlacement struct {
	Row    int
	Column int
	Color  TileType
	Points int
}

// TilingReport summarises a DoWallTiling pass on one board.
type TilingReport struct {
	Placements  []WallPlacement
	Penalty     int // sum of occupied floor slot weights (negative or zero)
	ScoreBefore int
	ScoreAfter  int
}

// BonusReport summarises the end-of-game bonuses for one board.
type BonusReport struct {
	Rows    int
	Columns int
	Colors  int
	Points  int
}

// Board is one player's area: pattern lines, wall, floor line and score.
type Board struct {
	patternLines [WallSize]*PatternLine
	wall         [WallSize][WallSize]TileSpot
	floorLine    [FloorLineSize]TileSpot
	score        int
}

// NewBoard creates an empty board. Pattern line i has capacity i+1.
func NewBoard() *Board {
	b := &Board{}
	for i := range WallSize {
		b.patternLines[i] = NewPatternLine(i + 1)
		for col := range WallSize {
			b.wall[i][col] = NewWallSpot(WallColor(i, col))
		}
	}
	for i := range FloorLineSize {
		b.floorLine[i] = NewFloorSpot()
	}
	return b
}

// PatternLine returns the pattern line at index i (0..4), or nil.
func (b *Board) PatternLine(i int) *PatternLine {
	if i < 0 || i >= WallSize {
		return nil
	}
	return b.patternLines[i]
}

// Wall returns a copy of the wall grid, indexed [row][column].
func (b *Board) Wall() [WallSize][WallSize]TileSpot {
	return b.wall
}

// FloorLine returns a copy of the floor line.
func (b *Board) FloorLine() [FloorLineSize]TileSpot {
	return b.floorLine
}

// Score returns the current score. It is never negative.
func (b *Board) Score() int {
	return b.score
}

// CanPlaceOnPatternLine reports whether tiles of color t may go to line i.
func (b *Board) CanPlaceOnPatternLine(t TileType, i int) error {
	if i < 0 || i >= WallSize {
		return argumentInvalid("pattern line index %d out of range 0..%d", i, WallSize-1)
	}
	if err := b.patternLines[i].CanAccept(t); err != nil {
		return err
	}
	if b.wall[i][WallColumn(i, t)].HasTile() {
		return invalidState("wall row %d already holds a %s tile", i, t)
	}
	return nil
}

// AddTilesToPatternLine places tiles on pattern line lineIndex. The color tiles
// must share one color; a starting marker among them goes to the floor line.
// Tiles that do not fit overflow to the floor line, and from a full floor
// line to sink.
func (b *Board) AddTilesToPatternLine(tiles []TileType, lineIndex int, sink UsedTileSink) error {
	markers, colors := splitMarkers(tiles)
	if len(colors) == 0 {
		return invalidState("no colored tiles to place on a pattern line")
	}
	color := colors[0]
	for _, t := range colors[1:] {
		if t != color {
			return argumentInvalid("tiles of different colors (%s, %s) cannot share a pattern line", color, t)
		}
	}
	if err := b.CanPlaceOnPatternLine(color, lineIndex); err != nil {
		return err
	}

	b.AddTilesToFloorLine(markers, sink)
	remaining, err := b.patternLines[lineIndex].TryAddTiles(color, len(colors))
	if err != nil {
		// unreachable: CanPlaceOnPatternLine performed the same checks
		return err
	}
	b.AddTilesToFloorLine(colors[:remaining], sink)
	return nil
}

// AddTilesToFloorLine fills free floor slots left to right. Color tiles that
// do not fit go to sink; a starting marker that does not fit is consumed.
func (b *Board) AddTilesToFloorLine(tiles []TileType, sink UsedTileSink) {
	for _, t := range tiles {
		slot := b.freeFloorSlot()
		if slot < 0 {
			if sink != nil {
				sink.AddToUsedTiles(t)
			}
			continue
		}
		// a free floor spot accepts anything
		_ = b.floorLine[slot].PlaceTile(t)
	}
}

func (b *Board) freeFloorSlot() int {
	for i := range b.floorLine {
		if !b.floorLine[i].HasTile() {
			return i
		}
	}
	return -1
}

// DoWallTiling moves one tile of every complete pattern line onto the wall,
// scores it, discards the rest of the line to sink, then applies the floor
// penalty and clears the floor line.
func (b *Board) DoWallTiling(sink UsedTileSink) TilingReport {
	report := TilingReport{ScoreBefore: b.score}

	for row, line := range b.patternLines {
		if !line.IsComplete() {
			continue
		}
		color, _ := line.Color()
		col := WallColumn(row, color)
		if err := b.wall[row][col].PlaceTile(color); err != nil {
			// the line was filled around CanPlaceOnPatternLine; it scores
			// nothing and every tile is discarded
			discard(sink, color, line.NumberOfTiles())
			line.Clear()
			continue
		}
		points := b.adjacencyScore(row, col)
		b.score += points
		report.Placements = append(report.Placements, WallPlacement{
			Row:    row,
			Column: col,
			Color:  color,
			Points: points,
		})

		discard(sink, color, line.NumberOfTiles()-1)
		line.Clear()
	}

	for i := range b.floorLine {
		t, ok := b.floorLine[i].Clear()
		if !ok {
			continue
		}
		report.Penalty += FloorPenalties[i]
		if t.IsColor() && sink != nil {
			sink.AddToUsedTiles(t)
		}
	}
	b.score = max(0, b.score+report.Penalty)

	report.ScoreAfter = b.score
	return report
}

func discard(sink UsedTileSink, t TileType, n int) {
	if sink == nil {
		return
	}
	for range n {
		sink.AddToUsedTiles(t)
	}
}

// adjacencyScore scores a tile just placed at (row, col).
func (b *Board) adjacencyScore(row, col int) int {
	var occupied [WallSize][WallSize]bool
	for r := range WallSize {
		for c := range WallSize {
			occupied[r][c] = b.wall[r][c].HasTile()
		}
	}
	return placementScore(&occupied, row, col)
}

// placementScore scores a tile at (row, col) of an occupancy grid that already
// includes it. Each direction counts its whole contiguous run, including the
// new tile, when that run is longer than one; a tile without neighbours
// scores 1.
func placementScore(occupied *[WallSize][WallSize]bool, row, col int) int {
	horizontal := 1 + run(occupied, row, col, 0, -1) + run(occupied, row, col, 0, 1)
	vertical := 1 + run(occupied, row, col, -1, 0) + run(occupied, row, col, 1, 0)

	score := 0
	if horizontal > 1 {
		score += horizontal
	}
	if vertical > 1 {
		score += vertical
	}
	if score == 0 {
		score = 1
	}
	return score
}

// run counts contiguous occupied cells from (row, col) in direction (dr, dc),
// excluding the start cell.
func run(occupied *[WallSize][WallSize]bool, row, col, dr, dc int) int {
	n := 0
	r, c := row+dr, col+dc
	for r >= 0 && r < WallSize && c >= 0 && c < WallSize && occupied[r][c] {
		n++
		r += dr
		c += dc
	}
	return n
}

// CalculateFinalBonusScores adds the end-of-game bonuses to the score.
func (b *Board) CalculateFinalBonusScores() BonusReport {
	report := BonusReport{
		Rows:    b.CompletedRows(),
		Columns: b.completedColumns(),
		Colors:  b.completedColors(),
	}
	report.Points = report.Rows*BonusCompletedRow +
		report.Columns*BonusCompletedColumn +
		report.Colors*BonusCompletedColor
	b.score += report.Points
	return report
}

// HasCompletedHorizontalLine reports whether any wall row is fully tiled.
func (b *Board) HasCompletedHorizontalLine() bool {
	return b.CompletedRows() > 0
}

// CompletedRows returns the number of fully tiled wall rows.
func (b *Board) CompletedRows() int {
	n := 0
	for row := range WallSize {
		full := true
		for col := range WallSize {
			if !b.wall[row][col].HasTile() {
				full = false
				break
			}
		}
		if full {
			n++
		}
	}
	return n
}

func (b *Board) completedColumns() int {
	n := 0
	for col := range WallSize {
		full := true
		for row := range WallSize {
			if !b.wall[row][col].HasTile() {
				full = false
				break
			}
		}
		if full {
			n++
		}
	}
	return n
}

func (b *Board) completedColors() int {
	n := 0
	for _, color := range playableColors {
		full := true
		for row := range WallSize {
			if !b.wall[row][WallColumn(row, color)].HasTile() {
				full = false
				break
			}
		}
		if full {
			n++
		}
	}
	return n
}

// TileCount returns the number of color tiles on the board (pattern lines,
// wall and floor), used for conservation checks.
func (b *Board) TileCount() int {
	n := 0
	for row := range WallSize {
		n += b.patternLines[row].NumberOfTiles()
		for col := range WallSize {
			if b.wall[row][col].HasTile() {
				n++
			}
		}
	}
	for _, s := range b.floorLine {
		if s.HasTile() && s.Tile().IsColor() {
			n++
		}
	}
	return n
}

// splitMarkers separates starting markers from color tiles.
func splitMarkers(tiles []TileType) (markers, colors []TileType) {
	for _, t := range tiles {
		if t == TileStartingMarker {
			markers = append(markers, t)
		} else {
			colors = append(colors, t)
		}
	}
	return markers, colors
}

func (b *Board) floorTiles() []TileType {
	var tiles []TileType
	for _, s := range b.floorLine {
		if s.HasTile() {
			tiles = append(tiles, s.Tile())
		}
	}
	return tiles
}
