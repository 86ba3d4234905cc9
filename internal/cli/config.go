package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/ui"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  exactArgs(0, "config show"),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.cfg.YAML()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), s)
			return nil
		},
	})

	var project, force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to a file",
		Args:  exactArgs(0, "config init [--project] [--force]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.GlobalPath()
			if project {
				path = config.ProjectPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return usagef("config init: %s exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := config.Save(path, app.cfg); err != nil {
				return err
			}
			ui.OK(cmd.OutOrStdout(), "wrote "+path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&project, "project", false, "Write ./.tada/config.yaml instead of the global file")
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}
