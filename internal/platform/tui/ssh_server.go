package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tui-azul/internal/multiplayer"
	"github.com/vovakirdan/tui-azul/internal/storage"
)

// SSHServerConfig configures the SSH frontend.
type SSHServerConfig struct {
	Address     string        // host:port, e.g. ":2222"
	HostKeyPath string        // generated on first start; empty means ~/.azul/ssh_host_key
	IdleTimeout time.Duration // idle connections are closed after this long
	Bots        int           // computer opponents seated by default
	Strategy    string        // their default strategy
}

// DefaultSSHServerConfig returns the configuration used when none is given.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":2222",
		IdleTimeout: 30 * time.Minute,
		Bots:        1,
		Strategy:    "greedy",
	}
}

// SSHServer serves the terminal UI over SSH. Every session gets its own setup
// menu and plays its own games on the shared coordinator.
type SSHServer struct {
	config   SSHServerConfig
	server   *ssh.Server
	coord    *multiplayer.Coordinator
	store    *storage.Store
	logger   *log.Logger
	sessions atomic.Int64
}

// NewSSHServer creates the server. store may be nil, in which case the
// scoreboard reports that scores are unavailable.
func NewSSHServer(cfg SSHServerConfig, coord *multiplayer.Coordinator, store *storage.Store, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	keyPath, err := resolveHostKey(cfg.HostKeyPath)
	if err != nil {
		return nil, err
	}

	s := &SSHServer{
		config: cfg,
		coord:  coord,
		store:  store,
		logger: logger,
	}
	// the last middleware runs first
	s.server, err = wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(keyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(s.teaHandler),
			s.trackSessions,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("ssh server: %w", err)
	}
	return s, nil
}

// resolveHostKey returns where the host key lives and makes sure its
// directory exists.
func resolveHostKey(path string) (string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("ssh server: home directory: %w", err)
		}
		path = filepath.Join(home, ".azul", "ssh_host_key")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("ssh server: host key directory: %w", err)
	}
	return path, nil
}

func (s *SSHServer) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sess.Pty()
	if !ok {
		wish.Fatalln(sess, "azul needs an interactive terminal: connect with ssh -t")
		return nil, nil
	}

	model := NewSessionModel(s.coord, s.store, SetupOptions{
		Name:     playerName(sess.User()),
		Bots:     s.config.Bots,
		Strategy: s.config.Strategy,
	}, pty.Window.Width, pty.Window.Height)

	// a dropped connection abandons the game being played
	go func() {
		<-sess.Context().Done()
		model.Close()
	}()

	return model, []tea.ProgramOption{tea.WithAltScreen()}
}

// trackSessions logs every session with its length and the number of
// sessions still open.
func (s *SSHServer) trackSessions(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		start := time.Now()
		active := s.sessions.Add(1)
		s.logger.Info("session started", "user", sess.User(), "remote", sess.RemoteAddr().String(), "active", active)

		next(sess)

		active = s.sessions.Add(-1)
		s.logger.Info("session ended", "user", sess.User(), "remote", sess.RemoteAddr().String(),
			"duration", time.Since(start).Round(time.Second), "active", active)
	}
}

// playerName turns an SSH user name into a seat name.
func playerName(user string) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(user))
	if r := []rune(name); len(r) > 16 {
		name = string(r[:16])
	}
	if name == "" {
		return "Guest"
	}
	return name
}

// ActiveSessions returns the number of open SSH sessions.
func (s *SSHServer) ActiveSessions() int {
	return int(s.sessions.Load())
}

// ListenAndServe serves until Shutdown is called.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return fmt.Errorf("ssh server: %w", err)
	}
	return nil
}

// Shutdown stops accepting sessions and waits for open ones until ctx ends.
func (s *SSHServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
