// ABOUTME: Entrypoint for the z11n terminal console
// ABOUTME: Wires config, logging, session storage, and the bubbletea program

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/z11n/z11n-console/internal/api"
	"github.com/z11n/z11n-console/internal/config"
	"github.com/z11n/z11n-console/internal/console"
	"github.com/z11n/z11n-console/internal/session"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

// rootFlags are shared by the console and the non-interactive subcommands.
type rootFlags struct {
	configPath string
	serverURL  string
	statePath  string
	noPersist  bool
}

func main() {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "z11n-console",
		Short: "Terminal console for the z11n management server",
		Long: `z11n-console is a terminal UI for administering a z11n deployment:
agents, host inventory, LLM task history, roles, users, and branding.

Sign-in state persists across runs; the menu only shows the screens
your roles grant access to.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(flags)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", config.DefaultPath(), "config file path")
	rootCmd.PersistentFlags().StringVar(&flags.serverURL, "server", "", "management server URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flags.statePath, "state", "", "session database path (overrides config)")
	rootCmd.Flags().BoolVar(&flags.noPersist, "no-persist", false, "keep the session in memory only")

	rootCmd.AddCommand(
		whoamiCmd(flags),
		logoutCmd(flags),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %s", err)
		os.Exit(1)
	}
}

// setup loads configuration, installs the logger, opens the session store,
// and returns a ready client. The returned closer flushes everything down.
func setup(flags *rootFlags) (*api.Client, func(), error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, nil, err
	}
	if flags.serverURL != "" {
		cfg.Server.URL = flags.serverURL
	}
	if flags.statePath != "" {
		cfg.State.Path = flags.statePath
	}

	closeLog, err := setupLogging(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}

	var store session.Store
	if flags.noPersist {
		store = session.NewMemoryStore()
	} else {
		store, err = session.NewSQLiteStore(cfg.State.Path)
		if err != nil {
			closeLog()
			return nil, nil, fmt.Errorf("opening session store: %w", err)
		}
	}

	client := api.New(cfg.Server.URL, store)
	cleanup := func() {
		store.Close()
		closeLog()
	}
	return client, cleanup, nil
}

// setupLogging points slog at the configured file. The TUI owns the
// terminal, so stderr is not an option while it runs; no file means the
// logs are dropped.
func setupLogging(cfg config.LoggingConfig) (func(), error) {
	var out io.Writer = io.Discard
	closer := func() {}

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		out = f
		closer = func() { f.Close() }
	}

	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	slog.SetDefault(slog.New(handler))
	return closer, nil
}

func runConsole(flags *rootFlags) error {
	client, cleanup, err := setup(flags)
	if err != nil {
		return err
	}
	defer cleanup()

	p := tea.NewProgram(console.NewApp(client), tea.WithAltScreen())

	// A 401 anywhere tears the session down; the program hears about it here
	client.OnSessionExpired(func() {
		p.Send(console.SessionExpired())
	})

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running console: %w", err)
	}
	return nil
}
