package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/api"
	"github.com/Makepad-fr/tada/internal/auth"
	"github.com/Makepad-fr/tada/internal/store"
)

func newServeCmd(app *App) *cobra.Command {
	var addr, token string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured backend over HTTP",
		Args:  exactArgs(0, "serve [--addr <host:port>] [--token <token>]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = app.cfg.Server.Addr
			}
			if token == "" {
				token = app.cfg.Server.Token
			}
			if token == "" {
				if ti, _ := auth.GetToken(); ti != nil && ti.Source == "env" {
					token = ti.Token
				}
			}
			return app.withStore(cmd.Context(), func(st store.Store) error {
				if app.cfg.Store.Backend == "remote" {
					return usagef("serve: the remote backend cannot be served")
				}
				feed := store.NewFeed(st, app.log)
				srv := &http.Server{
					Addr:              addr,
					Handler:           api.New(feed, api.WithFeed(feed), api.WithToken(token), api.WithLogger(app.log)),
					ReadHeaderTimeout: 10 * time.Second,
				}
				return serve(cmd, srv, app, token != "")
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&token, "token", "", "Require this bearer token")
	return cmd
}

func serve(cmd *cobra.Command, srv *http.Server, app *App, authed bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	app.log.Info("serving", "addr", srv.Addr, "backend", app.cfg.Store.Backend, "auth", authed)
	fmt.Fprintf(cmd.OutOrStdout(), "listening on http://%s\n", srv.Addr)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	app.log.Info("stopped")
	return nil
}
