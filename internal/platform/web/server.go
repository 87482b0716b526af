package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tui-azul/internal/azul"
	"github.com/vovakirdan/tui-azul/internal/multiplayer"
	"github.com/vovakirdan/tui-azul/internal/registry"
)

// ServerConfig holds configuration for the web server.
type ServerConfig struct {
	// Address is the host:port to listen on (e.g., ":8080").
	Address string

	// Strategy is used for computer seats created without one.
	Strategy string
}

// DefaultServerConfig returns a config with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Address:  ":8080",
		Strategy: "greedy",
	}
}

// Server exposes the coordinator over HTTP and WebSocket.
type Server struct {
	config   ServerConfig
	coord    *multiplayer.Coordinator
	logger   *log.Logger
	upgrader websocket.Upgrader
	http     *http.Server
}

// NewServer creates a web server for coord. A nil logger discards output.
func NewServer(cfg ServerConfig, coord *multiplayer.Coordinator, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		config: cfg,
		coord:  coord,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.http = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /strategies", s.handleStrategies)
	mux.HandleFunc("GET /games", s.handleListGames)
	mux.HandleFunc("POST /games", s.handleCreateGame)
	mux.HandleFunc("GET /games/{id}", s.handleGetGame)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

// ListenAndServe starts the server and blocks until it is shut down.
func (s *Server) ListenAndServe() error {
	s.logger.Info("starting web server", "address", s.config.Address)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server. Open WebSocket connections are
// hijacked and not tracked by net/http; they end when their game is purged
// or the client goes away.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *Server) Addr() string {
	return s.config.Address
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleStrategies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"strategies": registry.List()})
}

// SeatRequest describes one seat of a game created over HTTP.
type SeatRequest struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"` // "human" (default) or "computer"
	Strategy string `json:"strategy,omitempty"`
}

// CreateGameRequest is the body of POST /games.
type CreateGameRequest struct {
	Players []SeatRequest `json:"players"`
}

// SeatResponse tells a client which player id to connect as.
type SeatResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Kind     string    `json:"kind"`
	Strategy string    `json:"strategy,omitempty"`
}

// CreateGameResponse is the answer to POST /games.
type CreateGameResponse struct {
	GameID   uuid.UUID      `json:"gameId"`
	Players  []SeatResponse `json:"players"`
	Snapshot azul.Snapshot  `json:"snapshot"`
}

// GameSummary is one entry of GET /games.
type GameSummary struct {
	GameID      uuid.UUID `json:"gameId"`
	RoundNumber int       `json:"roundNumber"`
	HasEnded    bool      `json:"hasEnded"`
	Players     []string  `json:"players"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrPayload{Code: CodeBadJSON, Msg: err.Error()})
		return
	}

	specs, err := s.seatSpecs(req.Players)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrPayload{Code: string(azul.CodeArgumentInvalid), Msg: err.Error()})
		return
	}

	snap, err := s.coord.CreateGame(specs)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := CreateGameResponse{GameID: snap.GameID, Snapshot: snap}
	for _, p := range specs {
		resp.Players = append(resp.Players, SeatResponse{
			ID:       p.ID,
			Name:     p.Name,
			Kind:     p.Kind.String(),
			Strategy: p.Strategy,
		})
	}
	s.logger.Info("game created over http", "game", snap.GameID, "players", len(specs), "remote", r.RemoteAddr)
	writeJSON(w, http.StatusCreated, resp)
}

// seatSpecs validates the requested seats. Player ids are assigned here so
// the response can hand them to the clients.
func (s *Server) seatSpecs(seats []SeatRequest) ([]multiplayer.PlayerSpec, error) {
	specs := make([]multiplayer.PlayerSpec, 0, len(seats))
	for i, seat := range seats {
		name := strings.TrimSpace(seat.Name)
		if name == "" {
			name = fmt.Sprintf("Player %d", i+1)
		}
		switch strings.ToLower(seat.Kind) {
		case "", "human":
			specs = append(specs, multiplayer.Human(name))
		case "computer", "bot":
			strategy := seat.Strategy
			if strategy == "" {
				strategy = s.config.Strategy
			}
			if !registry.Exists(strategy) {
				return nil, fmt.Errorf("seat %d: unknown strategy %q", i+1, strategy)
			}
			specs = append(specs, multiplayer.Bot(name, strategy))
		default:
			return nil, fmt.Errorf("seat %d: unknown kind %q", i+1, seat.Kind)
		}
	}
	return specs, nil
}

func (s *Server) handleListGames(w http.ResponseWriter, _ *http.Request) {
	games := make([]GameSummary, 0)
	for _, snap := range s.coord.Games() {
		summary := GameSummary{GameID: snap.GameID, RoundNumber: snap.RoundNumber, HasEnded: snap.HasEnded}
		for _, p := range snap.Players {
			summary.Players = append(summary.Players, p.Name)
		}
		games = append(games, summary)
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrPayload{Code: string(azul.CodeArgumentInvalid), Msg: "invalid game id"})
		return
	}
	snap, err := s.coord.Snapshot(gameID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleWS upgrades GET /ws?game=<id>[&player=<id>]. Without a player the
// connection only watches the game.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	gameID, err := uuid.Parse(q.Get("game"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrPayload{Code: string(azul.CodeArgumentInvalid), Msg: "invalid game id"})
		return
	}
	snap, err := s.coord.Snapshot(gameID)
	if err != nil {
		writeError(w, err)
		return
	}

	var playerID uuid.UUID
	if raw := q.Get("player"); raw != "" {
		playerID, err = uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrPayload{Code: string(azul.CodeArgumentInvalid), Msg: "invalid player id"})
			return
		}
		if _, ok := snap.Player(playerID); !ok {
			writeJSON(w, http.StatusNotFound, ErrPayload{Code: string(azul.CodeNotFound), Msg: "player is not part of the game"})
			return
		}
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already answered the request
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	c := newConn(s, ws, gameID, playerID)
	s.logger.Info("websocket connected", "game", gameID, "player", playerID, "remote", r.RemoteAddr)
	c.run()
	s.logger.Info("websocket closed", "game", gameID, "player", playerID, "remote", r.RemoteAddr)
}

// httpStatus maps an error to an HTTP status code.
func httpStatus(err error) int {
	code, ok := azul.CodeOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch code {
	case azul.CodeNotFound:
		return http.StatusNotFound
	case azul.CodeArgumentInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusConflict
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, httpStatus(err), errPayload(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
