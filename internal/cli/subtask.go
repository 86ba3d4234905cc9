package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/editor"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/ui"
)

func newSubtaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subtask",
		Aliases: []string{"sub"},
		Short:   "Manage a task's subtasks",
	}
	cmd.AddCommand(
		newSubtaskLsCmd(app),
		newSubtaskAddCmd(app),
		newSubtaskDoneCmd(app),
		newSubtaskEditCmd(app),
		newSubtaskRmCmd(app),
	)
	return cmd
}

// withSession opens the referenced task and runs fn. The message fn returns
// is printed only once every write it issued has succeeded.
func (app *App) withSession(cmd *cobra.Command, ref, verb string, fn func(s *editor.Session) (string, error)) error {
	return app.withStore(cmd.Context(), func(st store.Store) error {
		s, ch, err := openSession(cmd.Context(), st, ref)
		if err != nil {
			return err
		}
		msg, err := fn(s)
		if err != nil {
			return err
		}
		if ch.err != nil {
			return fmt.Errorf("%s: %w", verb, ch.err)
		}
		if msg != "" {
			ui.OK(cmd.OutOrStdout(), msg)
		}
		return nil
	})
}

func newSubtaskLsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ls <task>",
		Short: "List subtasks",
		Args:  exactArgs(1, "subtask ls <task>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd, args[0], "subtask ls", func(s *editor.Session) (string, error) {
				t, _ := s.View()
				th := ui.Current()
				p := s.Progress()
				lines := []string{th.Title.Render(t.Name) + "  " + ui.ProgressBar(p.Done, p.Total, 20), ""}
				if len(t.Subtasks) == 0 {
					lines = append(lines, th.Muted.Render("no subtasks"))
				}
				for i, st := range t.Subtasks {
					box, text := th.Muted.Render(th.Box(false)), st.Text
					if st.Completed {
						box, text = th.Success.Render(th.Box(true)), th.Done.Render(text)
					}
					lines = append(lines, fmt.Sprintf("%2d. %s %s", i+1, box, text))
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.Panel(lines))
				return "", nil
			})
		},
	}
}

func newSubtaskAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <task> <text...>",
		Short: "Append a subtask",
		Args:  minArgs(2, "subtask add <task> <text...>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd, args[0], "subtask add", func(s *editor.Session) (string, error) {
				st, ok := s.AddSubtask(strings.Join(args[1:], " "))
				if !ok {
					return "", usagef("subtask add: empty text")
				}
				return "added subtask " + st.Text, nil
			})
		},
	}
}

func newSubtaskDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <task> <subtask>",
		Short: "Toggle completion of a subtask",
		Args:  exactArgs(2, "subtask done <task> <index|id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd, args[0], "subtask done", func(s *editor.Session) (string, error) {
				t, _ := s.View()
				st, err := resolveSubtask(t, args[1])
				if err != nil {
					return "", err
				}
				s.ToggleSubtask(st.ID)
				p := s.Progress()
				return fmt.Sprintf("toggled %s (%d/%d done)", st.Text, p.Done, p.Total), nil
			})
		},
	}
}

func newSubtaskEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <task> <subtask> [text...]",
		Short: "Change a subtask's text (empty text deletes it)",
		Args:  minArgs(2, "subtask edit <task> <index|id> [text...]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd, args[0], "subtask edit", func(s *editor.Session) (string, error) {
				t, _ := s.View()
				st, err := resolveSubtask(t, args[1])
				if err != nil {
					return "", err
				}
				s.SetSubtaskText(st.ID, strings.Join(args[2:], " "))
				before := len(s.Subtasks())
				if !s.CommitSubtask(st.ID) {
					fmt.Fprintln(cmd.OutOrStdout(), ui.Current().Muted.Render("unchanged"))
					return "", nil
				}
				if len(s.Subtasks()) < before {
					return "removed subtask " + st.Text, nil
				}
				return "updated subtask", nil
			})
		},
	}
}

func newSubtaskRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task> <subtask>",
		Short: "Remove a subtask",
		Args:  exactArgs(2, "subtask rm <task> <index|id>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd, args[0], "subtask rm", func(s *editor.Session) (string, error) {
				t, _ := s.View()
				st, err := resolveSubtask(t, args[1])
				if err != nil {
					return "", err
				}
				s.DeleteSubtask(st.ID)
				return "removed subtask " + st.Text, nil
			})
		},
	}
}
