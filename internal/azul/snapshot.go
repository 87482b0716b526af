package azul

import "github.com/google/uuid"

// SourceSnapshot is the content of a display or of the table center.
type SourceSnapshot struct {
	ID       uuid.UUID  `json:"id"`
	IsCenter bool       `json:"isCenter"`
	Tiles    []TileType `json:"tiles"`
}

// Count returns the number of tiles of type t in the source.
func (s SourceSnapshot) Count(t TileType) int {
	n := 0
	for _, tile := range s.Tiles {
		if tile == t {
			n++
		}
	}
	return n
}

// PatternLineSnapshot is the state of one pattern line.
type PatternLineSnapshot struct {
	Length int      `json:"length"`
	Count  int      `json:"count"`
	Color  TileType `json:"color"` // meaningless when Count is 0
}

// BoardSnapshot is the state of a player's board.
type BoardSnapshot struct {
	PatternLines [WallSize]PatternLineSnapshot `json:"patternLines"`
	Wall         [WallSize][WallSize]bool      `json:"wall"`
	FloorLine    []TileType                    `json:"floorLine"`
	Score        int                           `json:"score"`
}

// CanPlace reports whether color t may go to pattern line i.
func (b BoardSnapshot) CanPlace(t TileType, i int) bool {
	if i < 0 || i >= WallSize || !t.IsColor() {
		return false
	}
	line := b.PatternLines[i]
	if line.Count == line.Length {
		return false
	}
	if line.Count > 0 && line.Color != t {
		return false
	}
	return !b.Wall[i][WallColumn(i, t)]
}

// PlacementPoints returns the points a tile of color t would score on wall
// row i if the row's pattern line were completed now.
func (b BoardSnapshot) PlacementPoints(t TileType, i int) int {
	occupied := b.Wall
	col := WallColumn(i, t)
	occupied[i][col] = true
	return placementScore(&occupied, i, col)
}

// FloorPenalty returns the points lost by adding n more tiles to the floor
// line. Tiles beyond the last slot cost nothing.
func (b BoardSnapshot) FloorPenalty(n int) int {
	penalty := 0
	for i := len(b.FloorLine); i < len(b.FloorLine)+n && i < FloorLineSize; i++ {
		penalty += FloorPenalties[i]
	}
	return penalty
}

// PlayerSnapshot is the public state of a player.
type PlayerSnapshot struct {
	ID                  uuid.UUID     `json:"id"`
	Name                string        `json:"name"`
	Kind                string        `json:"kind"`
	HasStartingTile     bool          `json:"hasStartingTile"`
	StartingTilePending bool          `json:"startingTilePending"`
	TilesToPlace        []TileType    `json:"tilesToPlace"`
	Board               BoardSnapshot `json:"board"`
}

// Snapshot is a deep copy of a game, safe to hand to other goroutines.
type Snapshot struct {
	GameID         uuid.UUID        `json:"gameId"`
	RoundNumber    int              `json:"roundNumber"`
	PlayerToPlayID uuid.UUID        `json:"playerToPlayId"`
	HasEnded       bool             `json:"hasEnded"`
	Displays       []SourceSnapshot `json:"displays"`
	Center         SourceSnapshot   `json:"center"`
	BagCount       int              `json:"bagCount"`
	UsedTileCount  int              `json:"usedTileCount"`
	Players        []PlayerSnapshot `json:"players"`
}

// Player returns the snapshot of the player with the given id.
func (s Snapshot) Player(id uuid.UUID) (PlayerSnapshot, bool) {
	for _, p := range s.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerSnapshot{}, false
}

// Source returns the display or center with the given id.
func (s Snapshot) Source(id uuid.UUID) (SourceSnapshot, bool) {
	if s.Center.ID == id {
		return s.Center, true
	}
	for _, d := range s.Displays {
		if d.ID == id {
			return d, true
		}
	}
	return SourceSnapshot{}, false
}

// Sources returns every display followed by the center.
func (s Snapshot) Sources() []SourceSnapshot {
	out := make([]SourceSnapshot, 0, len(s.Displays)+1)
	out = append(out, s.Displays...)
	return append(out, s.Center)
}

// Snapshot captures the current game state.
func (g *Game) Snapshot() Snapshot {
	f := g.TileFactory
	snap := Snapshot{
		GameID:         g.ID,
		RoundNumber:    g.RoundNumber,
		PlayerToPlayID: g.PlayerToPlayID,
		HasEnded:       g.HasEnded,
		Center: SourceSnapshot{
			ID:       f.TableCenter().ID(),
			IsCenter: true,
			Tiles:    f.TableCenter().Tiles(),
		},
		BagCount:      f.Bag().Len(),
		UsedTileCount: len(f.usedTiles),
	}
	for _, d := range f.displays {
		snap.Displays = append(snap.Displays, SourceSnapshot{ID: d.ID(), Tiles: d.Tiles()})
	}
	for _, p := range g.Players {
		snap.Players = append(snap.Players, PlayerSnapshot{
			ID:                  p.ID,
			Name:                p.Name,
			Kind:                p.Kind.String(),
			HasStartingTile:     p.HasStartingTile,
			StartingTilePending: p.StartingTilePending,
			TilesToPlace:        append([]TileType(nil), p.TilesToPlace...),
			Board:               snapshotBoard(p.Board),
		})
	}
	return snap
}

func snapshotBoard(b *Board) BoardSnapshot {
	bs := BoardSnapshot{Score: b.Score()}
	for i, line := range b.patternLines {
		color, _ := line.Color()
		bs.PatternLines[i] = PatternLineSnapshot{
			Length: line.Length(),
			Count:  line.NumberOfTiles(),
			Color:  color,
		}
	}
	for row := range WallSize {
		for col := range WallSize {
			bs.Wall[row][col] = b.wall[row][col].HasTile()
		}
	}
	bs.FloorLine = b.floorTiles()
	return bs
}
