package azul

import "github.com/google/uuid"

// FloorLineIndex is the LineIndex of a move that drops the tiles on the floor.
const FloorLineIndex = -1

// Move is a complete turn: take Color from SourceID and place the tiles on
// pattern line LineIndex, or on the floor line when LineIndex is
// FloorLineIndex.
type Move struct {
	SourceID  uuid.UUID `json:"sourceId"`
	Color     TileType  `json:"color"`
	LineIndex int       `json:"lineIndex"`
}

// IsFloor reports whether the move targets the floor line.
func (m Move) IsFloor() bool {
	return m.LineIndex == FloorLineIndex
}

// LegalMoves lists every move the player may make in the snapshot. It is
// empty when it is not the player's turn, the game has ended, or the player
// still holds drawn tiles.
func LegalMoves(s Snapshot, playerID uuid.UUID) []Move {
	if s.HasEnded || s.PlayerToPlayID != playerID {
		return nil
	}
	p, ok := s.Player(playerID)
	if !ok || len(p.TilesToPlace) > 0 || p.StartingTilePending {
		return nil
	}

	var moves []Move
	for _, src := range s.Sources() {
		for _, color := range PlayableColors() {
			if src.Count(color) == 0 {
				continue
			}
			for line := range WallSize {
				if p.Board.CanPlace(color, line) {
					moves = append(moves, Move{SourceID: src.ID, Color: color, LineIndex: line})
				}
			}
			moves = append(moves, Move{SourceID: src.ID, Color: color, LineIndex: FloorLineIndex})
		}
	}
	return moves
}

// PlacementOptions lists the placements open to a player who already drew
// tiles: each accepting pattern line, then the floor line.
func PlacementOptions(s Snapshot, playerID uuid.UUID) []int {
	p, ok := s.Player(playerID)
	if !ok || s.HasEnded || s.PlayerToPlayID != playerID {
		return nil
	}
	if len(p.TilesToPlace) == 0 && !p.StartingTilePending {
		return nil
	}
	var lines []int
	if len(p.TilesToPlace) > 0 {
		color := p.TilesToPlace[0]
		for line := range WallSize {
			if p.Board.CanPlace(color, line) {
				lines = append(lines, line)
			}
		}
	}
	return append(lines, FloorLineIndex)
}

// ApplyMove takes and places tiles in one step. The move is validated in
// full before the game changes, so a rejected move leaves no drawn tiles
// behind.
func (g *Game) ApplyMove(playerID uuid.UUID, m Move) error {
	p, err := g.actingPlayer(playerID)
	if err != nil {
		return err
	}
	if p.HasTilesToPlace() {
		return invalidState("player %s must place the drawn tiles first", p.Name)
	}
	if !m.Color.IsColor() {
		return argumentInvalid("tile type %s cannot be taken", m.Color)
	}
	if !g.TileFactory.HasSource(m.SourceID) {
		return notFound("display %s does not exist", m.SourceID)
	}
	if !m.IsFloor() {
		if err := p.Board.CanPlaceOnPatternLine(m.Color, m.LineIndex); err != nil {
			return err
		}
	}

	if err := g.TakeTilesFromFactory(playerID, m.SourceID, m.Color); err != nil {
		return err
	}
	if m.IsFloor() {
		return g.PlaceTilesOnFloorLine(playerID)
	}
	return g.PlaceTilesOnPatternLine(playerID, m.LineIndex)
}
