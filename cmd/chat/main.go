package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/omochice/chat-bridge/internal/bridge"
	"github.com/omochice/chat-bridge/internal/config"
	"github.com/omochice/chat-bridge/internal/identity"
	"github.com/omochice/chat-bridge/internal/logger"
	"github.com/omochice/chat-bridge/internal/storage"
	"github.com/omochice/chat-bridge/internal/storage/file"
	redisstore "github.com/omochice/chat-bridge/internal/storage/redis"
	"github.com/omochice/chat-bridge/internal/storage/sqlite"
	"github.com/omochice/chat-bridge/internal/transport/drivers"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// options are flag overrides on top of the environment configuration.
type options struct {
	endpoint  string
	backend   string
	path      string
	transport string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:           "chat",
		Short:         "Terminal client for the WebSocket chat",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.endpoint, "server", "", "WebSocket endpoint (default derived from NODE_ENV and CHAT_HOST)")
	flags.StringVar(&opts.backend, "storage", "", "identity storage backend: file, sqlite, redis or memory")
	flags.StringVar(&opts.path, "storage-path", "", "file or sqlite storage location")
	flags.StringVar(&opts.transport, "transport", "", fmt.Sprintf("WebSocket driver %v", drivers.Names()))

	root.AddCommand(
		&cobra.Command{
			Use:   "tui",
			Short: "Run the full-screen chat (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTUI(cmd.Context(), opts)
			},
		},
		&cobra.Command{
			Use:   "repl",
			Short: "Run a line-based chat on stdin/stdout",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runREPL(cmd.Context(), opts)
			},
		},
	)

	return root
}

// app bundles everything a front end needs.
type app struct {
	cfg        config.Config
	log        *zap.Logger
	controller *bridge.Controller
	events     bridge.Events
	endpoint   string
	closers    []func() error
}

func (a *app) Close() {
	if err := a.controller.Close(); err != nil {
		a.log.Warn("failed to close session", zap.Error(err))
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

// newApp loads configuration and wires storage, identity, transport and the
// controller. logToStderr is false for the TUI, which owns the terminal.
func newApp(ctx context.Context, opts options, prompter identity.Prompter, logToStderr bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.backend != "" {
		cfg.Storage.Backend = opts.backend
	}
	if opts.path != "" {
		cfg.Storage.Path = opts.path
	}
	if opts.transport != "" {
		cfg.Transport = opts.transport
	}

	a := &app{cfg: cfg}

	log := zap.NewNop()
	if cfg.LogFile != "" || logToStderr {
		var closeLog func() error
		log, closeLog, err = logger.Open(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, closeLog)
	}
	a.log = log

	kv, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	a.closers = append(a.closers, kv.Close)

	dialer, err := drivers.New(cfg.Transport, drivers.Options{ReadLimit: cfg.ReadLimit})
	if err != nil {
		return nil, err
	}

	store := identity.NewStore(kv,
		identity.WithPrompter(prompter),
		identity.WithQuestion(cfg.Prompt),
		identity.WithLogger(log),
	)

	a.events = bridge.NewEvents(64)
	a.controller = bridge.New(store, dialer, a.events, bridge.WithLogger(log))
	a.endpoint = opts.endpoint
	if a.endpoint == "" {
		a.endpoint = cfg.SocketURL()
	}

	log.Info("bridge ready",
		zap.String("env", cfg.Env),
		zap.String("endpoint", a.endpoint),
		zap.String("transport", cfg.Transport),
		zap.String("storage", cfg.Storage.Backend),
	)
	return a, nil
}

func openStorage(ctx context.Context, c config.Storage) (storage.Store, error) {
	switch c.Backend {
	case "memory":
		return storage.NewMemory(), nil
	case "file", "":
		path := c.Path
		if path == "" {
			path = defaultPath("profile.pb")
		}
		return file.Open(path)
	case "sqlite":
		path := c.Path
		if path == "" {
			path = defaultPath("profile.db")
		}
		return sqlite.Open(path)
	case "redis":
		return redisstore.Open(ctx, redisstore.Config{
			Addr:      c.RedisAddr,
			Password:  c.RedisPassword,
			DB:        c.RedisDB,
			Namespace: c.Namespace,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.Backend)
	}
}

func defaultPath(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "chat-bridge", name)
}
