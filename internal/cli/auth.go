package cli

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/auth"
	"github.com/Makepad-fr/tada/internal/ui"
)

func newAuthCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Token authentication for the remote backend",
	}

	var token string
	login := &cobra.Command{
		Use:   "login",
		Short: "Save a bearer token",
		Args:  exactArgs(0, "auth login [--token <token>]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Paste your token: ")
				line, err := bufio.NewReader(app.in).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read token: %w", err)
				}
				token = line
			}
			token = auth.StripBearer(strings.TrimSpace(token))
			if token == "" {
				return usagef("login: empty token")
			}
			if err := auth.SetToken(token, nil); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			ui.OK(cmd.OutOrStdout(), "logged in")
			return nil
		},
	}
	login.Flags().StringVar(&token, "token", "", "Token to save instead of prompting")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Delete the saved token",
		Args:  exactArgs(0, "auth logout"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ti, _ := auth.GetToken()
			if ti != nil && ti.Source == "env" {
				ui.OK(cmd.OutOrStdout(), "token is provided by "+auth.EnvToken+" env var (nothing to delete)")
				return nil
			}
			if err := auth.DeleteToken(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			ui.OK(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show where the token comes from",
		Args:  exactArgs(0, "auth status"),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ti, err := auth.GetToken()
			if err != nil {
				return err
			}
			if ti == nil {
				fmt.Fprintln(out, ui.Current().Muted.Render("not logged in"))
				fmt.Fprintln(out, "Run: tada auth login")
				return nil
			}
			fmt.Fprintf(out, "source: %s\n", ti.Source)
			switch {
			case ti.ExpiresAt == nil:
				fmt.Fprintln(out, "expires: (unknown)")
			case ti.Expired(time.Now()):
				fmt.Fprintf(out, "expires: %s %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339), ui.Current().Error.Render("(expired)"))
			default:
				fmt.Fprintf(out, "expires: %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
			}
			fmt.Fprintln(out, "env override: "+auth.EnvToken)
			return nil
		},
	}

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Decode the saved token locally",
		Args:  exactArgs(0, "auth whoami"),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ti, _ := auth.GetToken()
			if ti == nil {
				return usagef("not logged in. Run: tada auth login")
			}
			if p, ok := auth.Claims(ti.Token); ok {
				fmt.Fprintln(out, "JWT payload:")
				fmt.Fprintln(out, p)
				return nil
			}
			fmt.Fprintln(out, "Opaque token (cannot introspect locally).")
			fmt.Fprintln(out, "source:", ti.Source)
			return nil
		},
	}

	cmd.AddCommand(login, logout, status, whoami)
	return cmd
}
