package azul

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeWall(t *testing.T, b *Board, row, col int) {
	t.Helper()
	require.NoError(t, b.wall[row][col].PlaceTile(WallColor(row, col)))
}

func TestPatternLineInvariants(t *testing.T) {
	l := NewPatternLine(3)
	_, ok := l.Color()
	assert.False(t, ok)

	remaining, err := l.TryAddTiles(TileRed, 2)
	require.NoError(t, err)
	assert.Zero(t, remaining)
	c, ok := l.Color()
	assert.True(t, ok)
	assert.Equal(t, TileRed, c)

	_, err = l.TryAddTiles(TileBlue, 1)
	requireRuleError(t, err, ErrInvalidState)

	remaining, err = l.TryAddTiles(TileRed, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, remaining)
	assert.True(t, l.IsComplete())

	_, err = l.TryAddTiles(TileRed, 0)
	requireRuleError(t, err, ErrInvalidState)

	_, err = NewPatternLine(2).TryAddTiles(TileRed, -1)
	requireRuleError(t, err, ErrArgumentInvalid)

	l.Clear()
	assert.Zero(t, l.NumberOfTiles())
	_, ok = l.Color()
	assert.False(t, ok)
}

func TestTileSpotPlacement(t *testing.T) {
	spot := NewWallSpot(TileBlue)
	requireRuleError(t, spot.PlaceTile(TileRed), ErrInvalidState)
	require.NoError(t, spot.PlaceTile(TileBlue))
	requireRuleError(t, spot.PlaceTile(TileBlue), ErrInvalidState)

	got, ok := spot.Clear()
	assert.True(t, ok)
	assert.Equal(t, TileBlue, got)

	floor := NewFloorSpot()
	require.NoError(t, floor.PlaceTile(TileStartingMarker))
}

func TestAddTilesToPatternLineOverflow(t *testing.T) {
	b := NewBoard()
	sink := &recordingSink{}

	err := b.AddTilesToPatternLine(
		append([]TileType{TileStartingMarker}, repeat(TileRed, 4)...), 1, sink)
	require.NoError(t, err)

	assert.Equal(t, 2, b.PatternLine(1).NumberOfTiles())
	floor := b.FloorLine()
	assert.Equal(t, TileStartingMarker, floor[0].Tile())
	assert.Equal(t, TileRed, floor[1].Tile())
	assert.Equal(t, TileRed, floor[2].Tile())
	assert.False(t, floor[3].HasTile())
	assert.Empty(t, sink.tiles)
}

func TestAddTilesToPatternLineRejections(t *testing.T) {
	b := NewBoard()
	sink := &recordingSink{}

	requireRuleError(t, b.AddTilesToPatternLine([]TileType{TileRed}, 5, sink), ErrArgumentInvalid)
	requireRuleError(t, b.AddTilesToPatternLine([]TileType{TileRed, TileBlue}, 2, sink), ErrArgumentInvalid)
	requireRuleError(t, b.AddTilesToPatternLine([]TileType{TileStartingMarker}, 2, sink), ErrInvalidState)

	placeWall(t, b, 2, WallColumn(2, TileRed))
	err := b.AddTilesToPatternLine([]TileType{TileStartingMarker, TileRed}, 2, sink)
	requireRuleError(t, err, ErrInvalidState)
	assert.False(t, b.FloorLine()[0].HasTile(), "rejected placement must not touch the floor")
}

func TestFloorLineOverflowGoesToSink(t *testing.T) {
	b := NewBoard()
	sink := &recordingSink{}
	b.AddTilesToFloorLine(repeat(TileBlack, 9), sink)

	for _, s := range b.FloorLine() {
		assert.True(t, s.HasTile())
	}
	assert.Equal(t, repeat(TileBlack, 2), sink.tiles)
}

func TestDoWallTilingScoresSingleTile(t *testing.T) {
	b := NewBoard()
	sink := &recordingSink{}
	require.NoError(t, b.AddTilesToPatternLine(repeat(TileRed, 4), 3, sink))

	report := b.DoWallTiling(sink)

	assert.Equal(t, 1, b.Score())
	require.Len(t, report.Placements, 1)
	p := report.Placements[0]
	assert.Equal(t, 3, p.Row)
	assert.Equal(t, TileRed, WallColor(p.Row, p.Column))
	assert.True(t, b.Wall()[3][p.Column].HasTile())
	assert.Equal(t, repeat(TileRed, 3), sink.tiles)
	assert.Zero(t, b.PatternLine(3).NumberOfTiles())
}

func TestDoWallTilingDiscardsLineOverTiledCell(t *testing.T) {
	b := NewBoard()
	sink := &recordingSink{}
	col := WallColumn(1, TileYellow)
	placeWall(t, b, 1, col)
	remaining, err := b.PatternLine(1).TryAddTiles(TileYellow, 2)
	require.NoError(t, err)
	require.Zero(t, remaining)

	report := b.DoWallTiling(sink)

	assert.Empty(t, report.Placements)
	assert.Zero(t, b.Score())
	assert.Equal(t, repeat(TileYellow, 2), sink.tiles)
	assert.Zero(t, b.PatternLine(1).NumberOfTiles())
	assert.Equal(t, 1, b.TileCount(), "only the tile already on the wall remains")
}

func TestAdjacencyScore(t *testing.T) {
	tests := []struct {
		name   string
		setup  [][2]int
		row    int
		col    int
		points int
	}{
		{name: "isolated", row: 2, col: 2, points: 1},
		{name: "horizontal pair", setup: [][2]int{{2, 1}}, row: 2, col: 2, points: 2},
		{name: "horizontal run through gap", setup: [][2]int{{2, 0}, {2, 1}, {2, 3}}, row: 2, col: 2, points: 4},
		{name: "vertical run", setup: [][2]int{{0, 2}, {1, 2}}, row: 2, col: 2, points: 3},
		{name: "cross", setup: [][2]int{{2, 1}, {1, 2}, {3, 2}}, row: 2, col: 2, points: 5},
		{name: "diagonal ignored", setup: [][2]int{{1, 1}, {3, 3}}, row: 2, col: 2, points: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoard()
			for _, cell := range tt.setup {
				placeWall(t, b, cell[0], cell[1])
			}
			placeWall(t, b, tt.row, tt.col)
			assert.Equal(t, tt.points, b.adjacencyScore(tt.row, tt.col))
		})
	}
}

func TestFloorPenaltyNeverNegative(t *testing.T) {
	b := NewBoard()
	b.AddTilesToFloorLine(repeat(TileBlue, 7), nil)
	report := b.DoWallTiling(&recordingSink{})

	assert.Equal(t, -14, report.Penalty)
	assert.Zero(t, b.Score())
	for _, s := range b.FloorLine() {
		assert.False(t, s.HasTile())
	}
}

func TestFloorPenaltyReducesScore(t *testing.T) {
	b := NewBoard()
	b.score = 10
	b.AddTilesToFloorLine([]TileType{TileStartingMarker, TileBlue, TileBlue}, nil)
	sink := &recordingSink{}
	report := b.DoWallTiling(sink)

	assert.Equal(t, -4, report.Penalty)
	assert.Equal(t, 6, b.Score())
	assert.Equal(t, repeat(TileBlue, 2), sink.tiles, "the marker is not recycled")
}

func TestFinalBonusScores(t *testing.T) {
	b := NewBoard()
	for col := range WallSize {
		placeWall(t, b, 0, col)
	}
	for row := 1; row < WallSize; row++ {
		placeWall(t, b, row, 0)
	}
	for row := range WallSize {
		col := WallColumn(row, TileBlue)
		if !b.wall[row][col].HasTile() {
			placeWall(t, b, row, col)
		}
	}

	assert.True(t, b.HasCompletedHorizontalLine())
	report := b.CalculateFinalBonusScores()
	assert.Equal(t, 1, report.Rows)
	assert.Equal(t, 1, report.Columns)
	assert.Equal(t, 1, report.Colors)
	assert.Equal(t, BonusCompletedRow+BonusCompletedColumn+BonusCompletedColor, b.Score())
}
