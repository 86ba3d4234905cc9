// Package cli wires the cobra commands. Every write made here goes through
// the same editor.Session and editor.Composer rules as the TUI.
package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/store/remote"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

type App struct {
	ConfigFile string
	Backend    string
	Path       string
	DSN        string
	URL        string
	Theme      string
	Surface    string
	NoColor    bool

	cfg      *config.Config
	log      *slog.Logger
	closeLog func() error
	in       io.Reader
}

func NewRootCmd() *cobra.Command {
	app := &App{in: os.Stdin, log: logging.Discard()}

	cmd := &cobra.Command{
		Use:           "tada",
		Short:         "tada - a tiny task tracker (CLI + TUI)",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  tada

  # Scriptable commands
  tada add "Buy milk"
  tada ls
  tada done 2
  tada subtask add 1 "oat milk"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.closeLog != nil {
			return app.closeLog()
		}
		return nil
	}
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return usageError{msg: err.Error()}
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&app.ConfigFile, "config", envOr("TADA_CONFIG", ""), "Extra config file merged after the global and project files")
	pf.StringVar(&app.Backend, "store", "", "Backend: json|sqlite|postgres|neo4j|remote|memory")
	pf.StringVar(&app.Path, "path", "", "Data file for the json and sqlite backends")
	pf.StringVar(&app.DSN, "dsn", "", "PostgreSQL connection string")
	pf.StringVar(&app.URL, "url", "", "Server URL for the remote backend")
	pf.StringVar(&app.Theme, "theme", "", "Theme: classic|neon|mono")
	pf.StringVar(&app.Surface, "surface", "", "Editor surface in the TUI: inline|drawer|panel")
	pf.BoolVar(&app.NoColor, "no-color", false, "Disable colors")

	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newLsCmd(app))
	cmd.AddCommand(newDoneCmd(app))
	cmd.AddCommand(newRmCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newSubtaskCmd(app))
	cmd.AddCommand(newFoldersCmd(app))
	cmd.AddCommand(newAuthCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

// setup resolves the effective config, then opens the log file and applies
// the theme.
func (app *App) setup(cmd *cobra.Command) error {
	paths := []string{config.GlobalPath(), config.ProjectPath()}
	if app.ConfigFile != "" {
		paths = append(paths, app.ConfigFile)
	}
	cfg, err := config.LoadFrom(os.LookupEnv, paths...)
	if err != nil {
		return usageError{msg: err.Error()}
	}
	for _, o := range []struct {
		flag string
		dst  *string
	}{
		{app.Backend, &cfg.Store.Backend},
		{app.Path, &cfg.Store.Path},
		{app.DSN, &cfg.Store.DSN},
		{app.URL, &cfg.Store.URL},
		{app.Theme, &cfg.UI.Theme},
		{app.Surface, &cfg.UI.Surface},
	} {
		if o.flag != "" {
			*o.dst = o.flag
		}
	}
	if err := cfg.Validate(); err != nil {
		return usageError{msg: err.Error()}
	}
	app.cfg = cfg

	log, closeLog, err := logging.OpenFile(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		// Logging is best effort; the command still runs.
		log, closeLog = logging.Discard(), nil
	}
	app.log, app.closeLog = log, closeLog

	ui.InitColor()
	if app.NoColor {
		ui.SetColorForcing(false, true)
	}
	ui.SetTheme(cfg.UI.Theme, cfg.UI.Accent)
	return nil
}

// withStore opens the backend for the duration of fn.
func (app *App) withStore(ctx context.Context, fn func(store.Store) error) error {
	st, err := openStore(ctx, app.cfg, app.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			app.log.Warn("close store", "err", err)
		}
	}()
	return fn(st)
}

func runTUI(ctx context.Context, app *App) error {
	return app.withStore(ctx, func(st store.Store) error {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		// Local writes reach the TUI through the feed. A server already
		// streams them back, so the remote backend writes directly and the
		// feed only relays the stream.
		feed := store.NewFeed(st, app.log)
		var writes store.Store = feed
		if r, ok := st.(*remote.Store); ok {
			writes = r
			go func() {
				if err := r.Stream(ctx, feed.Relay); err != nil && !errors.Is(err, context.Canceled) {
					app.log.Warn("event stream ended", "err", err)
				}
			}()
		}
		return tui.Run(tui.Options{
			Store:   writes,
			Feed:    feed,
			Surface: app.cfg.UI.Surface,
			Theme:   ui.Current(),
			Log:     app.log,
			Context: ctx,
		})
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
