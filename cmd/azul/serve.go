package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-azul/internal/config"
	"github.com/vovakirdan/tui-azul/internal/multiplayer"
	"github.com/vovakirdan/tui-azul/internal/platform/tui"
	"github.com/vovakirdan/tui-azul/internal/platform/web"
	"github.com/vovakirdan/tui-azul/internal/registry"
	"github.com/vovakirdan/tui-azul/internal/storage"
)

var (
	flagSSHAddr     string
	flagWSAddr      string
	flagHostKey     string
	flagIdleTimeout time.Duration
	flagServeBots   int
	flagNoSSH       bool
	flagNoWS        bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Azul SSH and WebSocket servers",
	Long: `Start an SSH server and a WebSocket server sharing one set of games.

Each SSH connection gets its own setup menu and plays against bots.
WebSocket clients create games with POST /games and join them on
GET /ws?game=<id>&player=<id>. Finished games go to the shared database.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.azul/ssh_host_key

Examples:
  azul serve                           # SSH and WebSocket on the configured addresses
  azul serve --ssh :2222 --ws :8080
  azul serve --no-ssh                  # WebSocket only
  azul serve --host-key ./my_host_key

Users can connect with:
  ssh localhost -p 2222`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (default from config)")
	serveCmd.Flags().StringVar(&flagWSAddr, "ws", "", "WebSocket server address (default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (default from config)")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout before disconnecting SSH sessions (default from config)")
	serveCmd.Flags().IntVar(&flagServeBots, "bots", 0, "Computer opponents seated by default in SSH sessions (default from config)")
	serveCmd.Flags().BoolVar(&flagNoSSH, "no-ssh", false, "Do not start the SSH server")
	serveCmd.Flags().BoolVar(&flagNoWS, "no-ws", false, "Do not start the WebSocket server")
}

// listener is a server started by serve.
type listener interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
	Addr() string
}

func runServe(_ *cobra.Command, _ []string) {
	cfg := mustLoadConfig()
	applyServeFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flagNoSSH && flagNoWS {
		fmt.Fprintln(os.Stderr, "Error: nothing to serve, both --no-ssh and --no-ws are set")
		os.Exit(1)
	}

	logger := newLogger(cfg)
	strategy := cfg.BotStrategy()
	if !registry.Exists(strategy) {
		fmt.Fprintf(os.Stderr, "Error: unknown strategy %q\n", strategy)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening games database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	coord := multiplayer.NewCoordinator(coordinatorConfig(cfg), logger.WithPrefix("coordinator"))
	coord.SetResultSaver(store)
	coord.Start()
	defer coord.Stop()

	var servers []listener
	if !flagNoSSH {
		sshServer, err := tui.NewSSHServer(tui.SSHServerConfig{
			Address:     cfg.Server.SSHAddr,
			HostKeyPath: config.ExpandPath(cfg.Server.HostKeyPath),
			IdleTimeout: cfg.Server.IdleTimeout,
			Bots:        cfg.Server.Bots,
			Strategy:    strategy,
		}, coord, store, logger.WithPrefix("ssh"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating SSH server: %v\n", err)
			os.Exit(1)
		}
		servers = append(servers, sshServer)
	}
	if !flagNoWS {
		webServer := web.NewServer(web.ServerConfig{
			Address:  cfg.Server.WSAddr,
			Strategy: strategy,
		}, coord, logger.WithPrefix("web"))
		servers = append(servers, webServer)
	}

	errs := make(chan error, len(servers))
	for _, srv := range servers {
		logger.Info("listening", "addr", srv.Addr())
		go func() {
			errs <- srv.ListenAndServe()
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig)
	case err := <-errs:
		if err != nil {
			logger.Error("server stopped", "err", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("shutdown", "addr", srv.Addr(), "err", err)
		}
	}
}

func applyServeFlags(cfg *config.Config) {
	if flagSSHAddr != "" {
		cfg.Server.SSHAddr = flagSSHAddr
	}
	if flagWSAddr != "" {
		cfg.Server.WSAddr = flagWSAddr
	}
	if flagHostKey != "" {
		cfg.Server.HostKeyPath = flagHostKey
	}
	if flagIdleTimeout > 0 {
		cfg.Server.IdleTimeout = flagIdleTimeout
	}
	if flagServeBots > 0 {
		cfg.Server.Bots = flagServeBots
	}
}
