package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-azul/internal/azul"
	_ "github.com/vovakirdan/tui-azul/internal/bot"
	"github.com/vovakirdan/tui-azul/internal/multiplayer"
)

type wireMsg struct {
	T     string          `json:"t"`
	ReqID string          `json:"reqId"`
	P     json.RawMessage `json:"p"`
}

func newTestServer(t *testing.T, botDelay time.Duration) (*httptest.Server, *multiplayer.Coordinator) {
	t.Helper()
	cfg := multiplayer.DefaultCoordinatorConfig()
	cfg.Seed = 11
	cfg.BotDelay = botDelay
	cfg.CleanupPeriod = 0
	coord := multiplayer.NewCoordinator(cfg, nil)

	srv := httptest.NewServer(NewServer(DefaultServerConfig(), coord, nil).Handler())
	t.Cleanup(func() {
		srv.Close()
		coord.Stop()
	})
	return srv, coord
}

func postGame(t *testing.T, srv *httptest.Server, body string) (*http.Response, CreateGameResponse) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/games", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var created CreateGameResponse
	if resp.StatusCode == http.StatusCreated {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	}
	return resp, created
}

func createHumans(t *testing.T, srv *httptest.Server) CreateGameResponse {
	t.Helper()
	resp, created := postGame(t, srv, `{"players":[{"name":"ada"},{"name":"bob","kind":"human"}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return created
}

func wsURL(srv *httptest.Server, gameID uuid.UUID, playerID uuid.UUID) string {
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?game=" + gameID.String()
	if playerID != uuid.Nil {
		u += "&player=" + playerID.String()
	}
	return u
}

func dial(t *testing.T, srv *httptest.Server, gameID, playerID uuid.UUID) *websocket.Conn {
	t.Helper()
	ws, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, gameID, playerID), nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { ws.Close() })
	return ws
}

func send(t *testing.T, ws *websocket.Conn, typ, reqID string, payload any) {
	t.Helper()
	msg := map[string]any{"t": typ, "reqId": reqID}
	if payload != nil {
		msg["p"] = payload
	}
	require.NoError(t, ws.WriteJSON(msg))
}

func read(t *testing.T, ws *websocket.Conn) wireMsg {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg wireMsg
	require.NoError(t, ws.ReadJSON(&msg))
	return msg
}

// readUntil reads messages until match accepts one.
func readUntil(t *testing.T, ws *websocket.Conn, match func(wireMsg) bool) wireMsg {
	t.Helper()
	for range 1000 {
		if msg := read(t, ws); match(msg) {
			return msg
		}
	}
	t.Fatal("expected message never arrived")
	return wireMsg{}
}

func errorCode(t *testing.T, msg wireMsg) string {
	t.Helper()
	require.Equal(t, MsgError, msg.T)
	var p ErrPayload
	require.NoError(t, json.Unmarshal(msg.P, &p))
	return p.Code
}

func snapshotOf(t *testing.T, msg wireMsg) SnapshotPayload {
	t.Helper()
	require.Equal(t, MsgSnapshot, msg.T)
	var p SnapshotPayload
	require.NoError(t, json.Unmarshal(msg.P, &p))
	return p
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, 0)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestStrategies(t *testing.T) {
	srv, _ := newTestServer(t, 0)
	resp, err := http.Get(srv.URL + "/strategies")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Strategies []struct {
			ID string `json:"id"`
		} `json:"strategies"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	var ids []string
	for _, s := range body.Strategies {
		ids = append(ids, s.ID)
	}
	assert.Contains(t, ids, "greedy")
	assert.Contains(t, ids, "random")
}

func TestCreateGameValidation(t *testing.T) {
	srv, coord := newTestServer(t, 0)

	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{"players":`},
		{"unknown field", `{"seats":[]}`},
		{"unknown kind", `{"players":[{"name":"a","kind":"alien"},{"name":"b"}]}`},
		{"unknown strategy", `{"players":[{"name":"a"},{"kind":"computer","strategy":"nope"}]}`},
		{"one player", `{"players":[{"name":"a"}]}`},
		{"five players", `{"players":[{},{},{},{},{}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postGame(t, srv, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
	assert.Equal(t, 0, coord.GameCount())
}

func TestCreateAndGetGame(t *testing.T) {
	srv, _ := newTestServer(t, time.Hour)

	resp, created := postGame(t, srv, `{"players":[{"name":"ada"},{"kind":"bot"}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, created.Players, 2)
	assert.Equal(t, "ada", created.Players[0].Name)
	assert.Equal(t, "human", created.Players[0].Kind)
	assert.Equal(t, "Player 2", created.Players[1].Name)
	assert.Equal(t, "computer", created.Players[1].Kind)
	assert.Equal(t, "greedy", created.Players[1].Strategy)
	assert.Equal(t, created.GameID, created.Snapshot.GameID)

	get, err := http.Get(srv.URL + "/games/" + created.GameID.String())
	require.NoError(t, err)
	defer get.Body.Close()
	require.Equal(t, http.StatusOK, get.StatusCode)
	var snap azul.Snapshot
	require.NoError(t, json.NewDecoder(get.Body).Decode(&snap))
	assert.Equal(t, created.GameID, snap.GameID)
	assert.Len(t, snap.Displays, 5)

	list, err := http.Get(srv.URL + "/games")
	require.NoError(t, err)
	defer list.Body.Close()
	var games struct {
		Games []GameSummary `json:"games"`
	}
	require.NoError(t, json.NewDecoder(list.Body).Decode(&games))
	require.Len(t, games.Games, 1)
	assert.Equal(t, []string{"ada", "Player 2"}, games.Games[0].Players)

	for path, status := range map[string]int{
		"/games/not-a-uuid":          http.StatusBadRequest,
		"/games/" + uuid.NewString(): http.StatusNotFound,
	} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, status, resp.StatusCode, path)
	}
}

func TestWebSocketRejectsBadParams(t *testing.T) {
	srv, _ := newTestServer(t, 0)
	created := createHumans(t, srv)

	tests := []struct {
		name   string
		url    string
		status int
	}{
		{"invalid game", "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?game=xyz", http.StatusBadRequest},
		{"unknown game", wsURL(srv, uuid.New(), uuid.Nil), http.StatusNotFound},
		{"unknown player", wsURL(srv, created.GameID, uuid.New()), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(tt.url, nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestWebSocketPlay(t *testing.T) {
	srv, _ := newTestServer(t, 0)
	created := createHumans(t, srv)
	first := created.Snapshot.PlayerToPlayID

	ws := dial(t, srv, created.GameID, first)
	initial := snapshotOf(t, read(t, ws))
	assert.Equal(t, uint64(0), initial.Version)
	assert.Equal(t, created.GameID, initial.Snapshot.GameID)

	send(t, ws, MsgPing, "p1", nil)
	pong := read(t, ws)
	assert.Equal(t, MsgPong, pong.T)
	assert.Equal(t, "p1", pong.ReqID)

	send(t, ws, MsgMoves, "m1", nil)
	movesMsg := read(t, ws)
	require.Equal(t, MsgMoves, movesMsg.T)
	var moves MovesPayload
	require.NoError(t, json.Unmarshal(movesMsg.P, &moves))
	require.NotEmpty(t, moves.Moves)

	send(t, ws, MsgPlay, "play1", moves.Moves[0])
	var gotOK, gotSnapshot bool
	for !gotOK || !gotSnapshot {
		msg := read(t, ws)
		switch msg.T {
		case MsgOK:
			assert.Equal(t, "play1", msg.ReqID)
			gotOK = true
		case MsgSnapshot:
			snap := snapshotOf(t, msg)
			assert.Equal(t, uint64(1), snap.Version)
			assert.NotEqual(t, first, snap.Snapshot.PlayerToPlayID)
			gotSnapshot = true
		default:
			t.Fatalf("unexpected message %s", msg.T)
		}
	}

	// no longer this player's turn
	send(t, ws, MsgPlay, "play2", moves.Moves[0])
	msg := readUntil(t, ws, func(m wireMsg) bool { return m.ReqID == "play2" })
	assert.Equal(t, string(azul.CodeInvalidTurn), errorCode(t, msg))
}

func TestWebSocketTwoStepMove(t *testing.T) {
	srv, _ := newTestServer(t, 0)
	created := createHumans(t, srv)
	first := created.Snapshot.PlayerToPlayID
	display := created.Snapshot.Displays[0]

	ws := dial(t, srv, created.GameID, first)
	snapshotOf(t, read(t, ws))

	send(t, ws, MsgTake, "take", TakePayload{SourceID: display.ID, Color: display.Tiles[0]})
	assert.Equal(t, MsgOK, readUntil(t, ws, func(m wireMsg) bool { return m.ReqID == "take" }).T)

	send(t, ws, MsgPlace, "place", PlacePayload{LineIndex: azul.FloorLineIndex})
	assert.Equal(t, MsgOK, readUntil(t, ws, func(m wireMsg) bool { return m.ReqID == "place" }).T)

	send(t, ws, MsgSnapshot, "snap", nil)
	snap := snapshotOf(t, readUntil(t, ws, func(m wireMsg) bool { return m.ReqID == "snap" }))
	me, ok := snap.Snapshot.Player(first)
	require.True(t, ok)
	assert.NotEmpty(t, me.Board.FloorLine)
	assert.NotEqual(t, first, snap.Snapshot.PlayerToPlayID)
}

func TestWebSocketErrors(t *testing.T) {
	srv, _ := newTestServer(t, 0)
	created := createHumans(t, srv)

	spectator := dial(t, srv, created.GameID, uuid.Nil)
	snapshotOf(t, read(t, spectator))

	send(t, spectator, MsgPlace, "s1", PlacePayload{LineIndex: 0})
	assert.Equal(t, CodeSpectator, errorCode(t, read(t, spectator)))

	send(t, spectator, "DANCE", "s2", nil)
	assert.Equal(t, CodeUnknownType, errorCode(t, read(t, spectator)))

	require.NoError(t, spectator.WriteMessage(websocket.TextMessage, []byte("{nope")))
	assert.Equal(t, CodeBadJSON, errorCode(t, read(t, spectator)))

	player := dial(t, srv, created.GameID, created.Snapshot.PlayerToPlayID)
	snapshotOf(t, read(t, player))

	send(t, player, MsgTake, "t1", map[string]any{"sourceId": uuid.NewString(), "color": "red"})
	assert.Equal(t, string(azul.CodeNotFound), errorCode(t, read(t, player)))

	send(t, player, MsgTake, "t2", map[string]any{"sourceId": created.Snapshot.Displays[0].ID, "color": "purple"})
	assert.Equal(t, CodeBadJSON, errorCode(t, read(t, player)))

	send(t, player, MsgPlace, "t3", PlacePayload{LineIndex: 2})
	assert.Equal(t, string(azul.CodeInvalidState), errorCode(t, read(t, player)))
}

func TestWebSocketWatchesComputerGame(t *testing.T) {
	srv, _ := newTestServer(t, time.Millisecond)
	resp, created := postGame(t, srv, `{"players":[{"kind":"computer","strategy":"greedy"},{"kind":"computer","strategy":"random"}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	ws := dial(t, srv, created.GameID, uuid.Nil)
	initial := snapshotOf(t, read(t, ws))
	if initial.Snapshot.HasEnded {
		// the bots finished before the connection subscribed
		return
	}

	msg := readUntil(t, ws, func(m wireMsg) bool { return m.T == MsgGameEnded })
	var res azul.GameResult
	require.NoError(t, json.Unmarshal(msg.P, &res))
	assert.Equal(t, created.GameID, res.GameID)
	assert.Len(t, res.Players, 2)
}

func TestErrPayload(t *testing.T) {
	p := errPayload(azul.RuleError{Code: azul.CodeNotFound, Message: "no such display"})
	assert.Equal(t, ErrPayload{Code: "NOT_FOUND", Msg: "no such display"}, p)

	p = errPayload(io.ErrUnexpectedEOF)
	assert.Equal(t, CodeInternal, p.Code)

	assert.Equal(t, http.StatusConflict, httpStatus(azul.ErrInvalidTurn))
	assert.Equal(t, http.StatusInternalServerError, httpStatus(io.EOF))
	assert.Equal(t, http.StatusBadRequest, httpStatus(azul.ErrArgumentInvalid))
}

func TestRoundPayload(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	p := roundPayload(azul.RoundReport{
		RoundNumber: 3,
		Tiling: map[uuid.UUID]azul.TilingReport{
			a: {Penalty: -2, ScoreBefore: 10, ScoreAfter: 12, Placements: make([]azul.WallPlacement, 2)},
			b: {ScoreBefore: 4, ScoreAfter: 4},
		},
	})
	require.Len(t, p.Players, 2)
	assert.Equal(t, 3, p.Round)
	for _, tp := range p.Players {
		if tp.PlayerID == a {
			assert.Equal(t, 2, tp.Placed)
			assert.Equal(t, -2, tp.Penalty)
		}
	}
	assert.Less(t, p.Players[0].PlayerID.String(), p.Players[1].PlayerID.String())
}
