package web

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-azul/internal/azul"
	"github.com/vovakirdan/tui-azul/internal/multiplayer"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 120 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	eventBuffer    = 64
	replyBuffer    = 16
)

// conn is one WebSocket client watching a game. Reads happen on the handler
// goroutine; every write goes through writePump.
type conn struct {
	server   *Server
	ws       *websocket.Conn
	session  *multiplayer.ChannelSession
	replies  chan []byte
	gameID   uuid.UUID
	playerID uuid.UUID // uuid.Nil for spectators
	wg       sync.WaitGroup
}

func newConn(s *Server, ws *websocket.Conn, gameID, playerID uuid.UUID) *conn {
	return &conn{
		server:   s,
		ws:       ws,
		session:  multiplayer.NewChannelSession(multiplayer.SessionID("ws-"+uuid.NewString()), eventBuffer),
		replies:  make(chan []byte, replyBuffer),
		gameID:   gameID,
		playerID: playerID,
	}
}

// run subscribes to the game and serves the connection until it closes.
func (c *conn) run() {
	defer func() {
		c.server.coord.Unsubscribe(c.gameID, c.session.ID())
		c.session.Close()
		c.wg.Wait()
		_ = c.ws.Close()
		if n := c.session.Dropped(); n > 0 {
			c.server.logger.Warn("slow websocket client missed events", "game", c.gameID, "player", c.playerID, "dropped", n)
		}
	}()

	snap, err := c.server.coord.Subscribe(c.gameID, c.session)
	if err != nil {
		c.reply(OutMsg{T: MsgError, P: errPayload(err)})
		c.wg.Add(1)
		go c.writePump()
		return
	}
	c.reply(OutMsg{T: MsgSnapshot, P: SnapshotPayload{Snapshot: snap}})

	c.wg.Add(1)
	go c.writePump()
	c.readPump()
}

// readPump handles client messages until the connection fails.
func (c *conn) readPump() {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.server.logger.Debug("websocket read error", "game", c.gameID, "err", err)
			}
			return
		}

		var in InMsg
		if err := json.Unmarshal(data, &in); err != nil {
			c.replyErr("", ErrPayload{Code: CodeBadJSON, Msg: "invalid json"})
			continue
		}
		c.handle(in)
	}
}

// handle answers one client message.
func (c *conn) handle(in InMsg) {
	switch in.T {
	case MsgPing:
		c.reply(OutMsg{T: MsgPong, ReqID: in.ReqID})

	case MsgSnapshot:
		snap, err := c.server.coord.Snapshot(c.gameID)
		if err != nil {
			c.replyErr(in.ReqID, errPayload(err))
			return
		}
		c.reply(OutMsg{T: MsgSnapshot, ReqID: in.ReqID, P: SnapshotPayload{Snapshot: snap}})

	case MsgMoves:
		snap, err := c.server.coord.Snapshot(c.gameID)
		if err != nil {
			c.replyErr(in.ReqID, errPayload(err))
			return
		}
		moves := azul.LegalMoves(snap, c.playerID)
		if moves == nil {
			moves = []azul.Move{}
		}
		c.reply(OutMsg{T: MsgMoves, ReqID: in.ReqID, P: MovesPayload{Moves: moves}})

	case MsgTake:
		var p TakePayload
		if !c.decode(in, &p) {
			return
		}
		c.answer(in.ReqID, c.server.coord.TakeTiles(c.gameID, c.playerID, p.SourceID, p.Color))

	case MsgPlace:
		var p PlacePayload
		if !c.decode(in, &p) {
			return
		}
		if p.LineIndex == azul.FloorLineIndex {
			c.answer(in.ReqID, c.server.coord.PlaceOnFloorLine(c.gameID, c.playerID))
			return
		}
		c.answer(in.ReqID, c.server.coord.PlaceOnPatternLine(c.gameID, c.playerID, p.LineIndex))

	case MsgPlay:
		var m azul.Move
		if !c.decode(in, &m) {
			return
		}
		c.answer(in.ReqID, c.server.coord.Play(c.gameID, c.playerID, m))

	default:
		c.replyErr(in.ReqID, ErrPayload{Code: CodeUnknownType, Msg: "unknown message type: " + in.T})
	}
}

// decode reads the payload of a move. Spectators cannot move.
func (c *conn) decode(in InMsg, v any) bool {
	if c.playerID == uuid.Nil {
		c.replyErr(in.ReqID, ErrPayload{Code: CodeSpectator, Msg: "connect with a player id to make moves"})
		return false
	}
	if err := json.Unmarshal(in.P, v); err != nil {
		c.replyErr(in.ReqID, ErrPayload{Code: CodeBadJSON, Msg: err.Error()})
		return false
	}
	return true
}

// answer acknowledges a move or reports why it was rejected. The snapshot
// of an accepted move arrives as a separate message.
func (c *conn) answer(reqID string, err error) {
	if err != nil {
		c.replyErr(reqID, errPayload(err))
		return
	}
	c.reply(OutMsg{T: MsgOK, ReqID: reqID})
}

func (c *conn) replyErr(reqID string, p ErrPayload) {
	c.reply(OutMsg{T: MsgError, ReqID: reqID, P: p})
}

// reply queues a message for writePump, dropping it if the client is too slow.
func (c *conn) reply(out OutMsg) {
	b, err := json.Marshal(out)
	if err != nil {
		c.server.logger.Error("encode reply", "type", out.T, "err", err)
		return
	}
	select {
	case c.replies <- b:
	default:
	}
}

// writePump is the only writer of the connection.
func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.wg.Done()
		// unblocks readPump when the write side fails first
		_ = c.ws.Close()
	}()

	for {
		select {
		case b := <-c.replies:
			if !c.write(websocket.TextMessage, b) {
				return
			}

		case evt := <-c.session.Events():
			out, ok := eventMessage(evt)
			if !ok {
				continue
			}
			b, err := json.Marshal(out)
			if err != nil {
				c.server.logger.Error("encode event", "type", out.T, "err", err)
				continue
			}
			if !c.write(websocket.TextMessage, b) {
				return
			}

		case <-ticker.C:
			if !c.write(websocket.PingMessage, nil) {
				return
			}

		case <-c.session.Done():
			c.flush()
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// flush writes the replies still queued.
func (c *conn) flush() {
	for {
		select {
		case b := <-c.replies:
			if !c.write(websocket.TextMessage, b) {
				return
			}
		default:
			return
		}
	}
}

func (c *conn) write(messageType int, data []byte) bool {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(messageType, data) == nil
}
