package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/ui"
)

func newFoldersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "folders",
		Aliases: []string{"folder"},
		Short:   "List or add folders",
		Args:    exactArgs(0, "folders [ls|add <name...>]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listFolders(cmd, app)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List folders",
		Args:  exactArgs(0, "folders ls"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listFolders(cmd, app)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name...>",
		Short: "Create a folder",
		Args:  minArgs(1, "folders add <name...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd.Context(), func(st store.Store) error {
				f, err := st.CreateFolder(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return fmt.Errorf("add folder: %w", err)
				}
				ui.OK(cmd.OutOrStdout(), "added folder "+f.DisplayName())
				return nil
			})
		},
	})
	return cmd
}

func listFolders(cmd *cobra.Command, app *App) error {
	return app.withStore(cmd.Context(), func(st store.Store) error {
		folders, err := st.Folders(cmd.Context())
		if err != nil {
			return fmt.Errorf("folders: %w", err)
		}
		tasks, err := st.List(cmd.Context(), nil)
		if err != nil {
			return fmt.Errorf("load: %w", err)
		}
		th := ui.Current()
		if len(folders) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), th.Muted.Render("no folders"))
			return nil
		}
		lines := []string{th.Title.Render("Folders"), ""}
		for _, f := range folders {
			id := f.ID
			n := len(store.FilterFolder(tasks, &id))
			lines = append(lines, fmt.Sprintf("%s %s %s", th.Accent.Render(f.DisplayName()), th.Muted.Render(fmt.Sprintf("(%d)", n)), th.Muted.Render(f.ID)))
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Panel(lines))
		return nil
	})
}
