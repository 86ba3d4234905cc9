package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/editor"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/ui"
)

func newAddCmd(app *App) *cobra.Command {
	var folder string
	cmd := &cobra.Command{
		Use:   "add <name...>",
		Short: "Add a new task (name can be multiple words)",
		Args:  minArgs(1, "add <name...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd.Context(), func(st store.Store) error {
				folderID, err := resolveFolder(cmd.Context(), st, folder)
				if err != nil {
					return err
				}
				ch := &syncChannel{ctx: cmd.Context(), st: st, folder: folderID}
				c := editor.NewComposer(ch, nil)
				c.Set(strings.Join(args, " "))
				if !c.Submit() {
					return usagef("add: empty name")
				}
				if ch.err != nil {
					return fmt.Errorf("add: %w", ch.err)
				}
				ui.OK(cmd.OutOrStdout(), "added "+ch.created.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "Folder id or name")
	return cmd
}

func newLsCmd(app *App) *cobra.Command {
	var (
		folder string
		group  bool
	)
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List tasks",
		Args:  exactArgs(0, "ls [--folder <folder>] [--group]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd.Context(), func(st store.Store) error {
				folderID, err := resolveFolder(cmd.Context(), st, folder)
				if err != nil {
					return err
				}
				all, err := st.List(cmd.Context(), nil)
				if err != nil {
					return fmt.Errorf("load: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderList(all, folderID, group))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&folder, "folder", "", "Only tasks in this folder (id or name)")
	cmd.Flags().BoolVar(&group, "group", false, "Group output by pending/done")
	return cmd
}

// renderList numbers tasks by their position in the full list so indexes
// stay valid for done/rm/edit when a folder filter is applied.
func renderList(all []model.Task, folderID *string, group bool) string {
	t := ui.Current()
	type row struct {
		n    int
		task model.Task
	}
	var rows []row
	done := 0
	for i, task := range all {
		if !task.InFolder(folderID) {
			continue
		}
		rows = append(rows, row{n: i + 1, task: task})
		if task.Completed {
			done++
		}
	}
	if len(rows) == 0 {
		return t.Muted.Render("no tasks")
	}

	line := func(r row) string {
		box := t.Muted.Render(t.Box(false))
		name := r.task.Name
		if r.task.Completed {
			box = t.Success.Render(t.Box(true))
			name = t.Done.Render(name)
		}
		s := fmt.Sprintf("%2d. %s %s", r.n, box, name)
		if p := r.task.Progress(); p.Total > 0 {
			s += " " + t.Muted.Render(ui.ProgressBar(p.Done, p.Total, 8))
		}
		return s
	}

	lines := []string{t.Title.Render("Tasks") + "  " + ui.ProgressBar(done, len(rows), 20), ""}
	if group {
		var pending, finished []string
		for _, r := range rows {
			if r.task.Completed {
				finished = append(finished, line(r))
			} else {
				pending = append(pending, line(r))
			}
		}
		lines = append(lines, t.Pending.Render("Pending"))
		lines = append(lines, pending...)
		lines = append(lines, "", t.Success.Render("Done"))
		lines = append(lines, finished...)
	} else {
		for _, r := range rows {
			lines = append(lines, line(r))
		}
	}
	return ui.Panel(lines)
}

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <index|id>",
		Short: "Toggle completion of a task",
		Args:  exactArgs(1, "done <index|id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd.Context(), func(st store.Store) error {
				s, ch, err := openSession(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				s.ToggleCompleted()
				if ch.err != nil {
					return fmt.Errorf("done: %w", ch.err)
				}
				state := "pending"
				if s.Completed() {
					state = "done"
				}
				ui.OK(cmd.OutOrStdout(), "marked "+state)
				return nil
			})
		},
	}
}

func newRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <index|id>",
		Short: "Remove a task",
		Args:  exactArgs(1, "rm <index|id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withStore(cmd.Context(), func(st store.Store) error {
				s, ch, err := openSession(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				s.DeleteTask()
				if ch.err != nil {
					return fmt.Errorf("rm: %w", ch.err)
				}
				ui.OK(cmd.OutOrStdout(), "removed")
				return nil
			})
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	var name, description string
	cmd := &cobra.Command{
		Use:   "edit <index|id>",
		Short: "Change a task's name or description",
		Args:  exactArgs(1, "edit <index|id> [--name <name>] [--description <text>]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			nameSet := cmd.Flags().Changed("name")
			descSet := cmd.Flags().Changed("description")
			if !nameSet && !descSet {
				return usagef("edit: nothing to change (use --name or --description)")
			}
			return app.withStore(cmd.Context(), func(st store.Store) error {
				s, ch, err := openSession(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				changed := false
				if nameSet {
					if strings.TrimSpace(name) == "" {
						return usagef("edit: name cannot be empty")
					}
					s.SetTitle(name)
					changed = s.CommitTitle() || changed
				}
				if descSet {
					s.SetDescription(description)
					changed = s.CommitDescription() || changed
				}
				if ch.err != nil {
					return fmt.Errorf("edit: %w", ch.err)
				}
				if !changed {
					fmt.Fprintln(cmd.OutOrStdout(), ui.Current().Muted.Render("unchanged"))
					return nil
				}
				ui.OK(cmd.OutOrStdout(), "updated")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "description", "", "New description (markdown)")
	return cmd
}
