// Package web serves Azul games over HTTP and WebSocket. Games are created
// with a JSON POST; every connection then subscribes to one game, receives a
// snapshot after each move and sends moves for its player.
package web

import (
	"encoding/json"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/vovakirdan/tui-azul/internal/azul"
	"github.com/vovakirdan/tui-azul/internal/multiplayer"
)

// Message types sent by clients.
const (
	MsgPing     = "PING"
	MsgSnapshot = "SNAPSHOT"
	MsgMoves    = "MOVES"
	MsgTake     = "TAKE"
	MsgPlace    = "PLACE"
	MsgPlay     = "PLAY"
)

// Message types sent by the server, besides MsgSnapshot and MsgMoves.
const (
	MsgPong       = "PONG"
	MsgOK         = "OK"
	MsgError      = "ERROR"
	MsgRoundEnded = "ROUND_ENDED"
	MsgGameEnded  = "GAME_ENDED"
)

// Error codes that do not come from the rules engine.
const (
	CodeBadJSON     = "BAD_JSON"
	CodeUnknownType = "UNKNOWN_TYPE"
	CodeSpectator   = "SPECTATOR"
	CodeInternal    = "INTERNAL"
)

// InMsg is the envelope of every client message.
type InMsg struct {
	T     string          `json:"t"`
	ReqID string          `json:"reqId,omitempty"`
	P     json.RawMessage `json:"p,omitempty"`
}

// OutMsg is the envelope of every server message.
type OutMsg struct {
	T     string `json:"t"`
	ReqID string `json:"reqId,omitempty"`
	P     any    `json:"p,omitempty"`
}

// ErrPayload describes a rejected request.
type ErrPayload struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// TakePayload draws every tile of Color from a display or the center.
type TakePayload struct {
	SourceID uuid.UUID     `json:"sourceId"`
	Color    azul.TileType `json:"color"`
}

// PlacePayload places the drawn tiles; LineIndex -1 is the floor line.
type PlacePayload struct {
	LineIndex int `json:"lineIndex"`
}

// SnapshotPayload carries the game state. Version is zero for snapshots sent
// on request and increases with every move otherwise.
type SnapshotPayload struct {
	Version  uint64        `json:"version"`
	Snapshot azul.Snapshot `json:"snapshot"`
}

// MovesPayload lists the legal moves of the connected player.
type MovesPayload struct {
	Moves []azul.Move `json:"moves"`
}

// TilingPayload is the wall tiling of one player at the end of a round.
type TilingPayload struct {
	PlayerID    uuid.UUID `json:"playerId"`
	Placed      int       `json:"placed"`
	Penalty     int       `json:"penalty"`
	ScoreBefore int       `json:"scoreBefore"`
	ScoreAfter  int       `json:"scoreAfter"`
	Bonus       int       `json:"bonus,omitempty"`
}

// RoundPayload summarises a finished round.
type RoundPayload struct {
	Round     int             `json:"round"`
	GameEnded bool            `json:"gameEnded"`
	Players   []TilingPayload `json:"players"`
}

// errPayload converts an error into its wire form.
func errPayload(err error) ErrPayload {
	var re azul.RuleError
	if errors.As(err, &re) {
		msg := re.Message
		if msg == "" {
			msg = err.Error()
		}
		return ErrPayload{Code: string(re.Code), Msg: msg}
	}
	return ErrPayload{Code: CodeInternal, Msg: err.Error()}
}

// eventMessage converts a coordinator event into a server message. ok is
// false for events that are not forwarded.
func eventMessage(evt multiplayer.SessionEvent) (OutMsg, bool) {
	switch e := evt.(type) {
	case multiplayer.SnapshotEvent:
		return OutMsg{T: MsgSnapshot, P: SnapshotPayload{Version: e.Version, Snapshot: e.Snapshot}}, true
	case multiplayer.RoundEndedEvent:
		return OutMsg{T: MsgRoundEnded, P: roundPayload(e.Report)}, true
	case multiplayer.GameEndedEvent:
		return OutMsg{T: MsgGameEnded, P: e.Result}, true
	default:
		// rejections are answered to the sender as MsgError
		return OutMsg{}, false
	}
}

func roundPayload(report azul.RoundReport) RoundPayload {
	p := RoundPayload{Round: report.RoundNumber, GameEnded: report.GameEnded}
	for id, tiling := range report.Tiling {
		tp := TilingPayload{
			PlayerID:    id,
			Placed:      len(tiling.Placements),
			Penalty:     tiling.Penalty,
			ScoreBefore: tiling.ScoreBefore,
			ScoreAfter:  tiling.ScoreAfter,
		}
		if bonus, ok := report.Bonuses[id]; ok {
			tp.Bonus = bonus.Points
		}
		p.Players = append(p.Players, tp)
	}
	sort.Slice(p.Players, func(i, j int) bool {
		return p.Players[i].PlayerID.String() < p.Players[j].PlayerID.String()
	})
	return p
}
