package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/pkg/models"
)

// errStoreNotInitialized is returned by commands run before Initialize.
var errStoreNotInitialized = fmt.Errorf("task store not initialized")

var addCmd = &cobra.Command{
	Use:   "add <title...>",
	Short: "Add a task to the top of the list",
	Long: `Add a new task. All arguments are joined with spaces to form the title.
Leading and trailing whitespace is trimmed; an empty title adds nothing.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return errStoreNotInitialized
		}
		before := Store.Snapshot()
		snap := Store.AddTask(strings.Join(args, " "))
		out := cmd.OutOrStdout()
		if snap.Version == before.Version {
			fmt.Fprintln(out, "Nothing to add.")
			return nil
		}
		if all := Store.Tasks(); len(all) > 0 {
			fmt.Fprintf(out, "Added %q (%s)\n", all[0].Title, shortID(all[0].ID))
		}
		printFooter(out, snap)
		return nil
	},
}

var listFilterFlag string

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `List tasks, newest first. Positions printed here can be used as task
references in toggle, rename and rm. Use --filter to show only active or
completed tasks.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return errStoreNotInitialized
		}
		snap, err := applyFilterFlag(listFilterFlag)
		if err != nil {
			return err
		}
		printList(cmd.OutOrStdout(), snap)
		return nil
	},
}

var toggleFilterFlag string

var toggleCmd = &cobra.Command{
	Use:     "toggle <ref>",
	Aliases: []string{"done"},
	Short:   "Mark a task completed, or active again",
	Long: `Flip the completed flag of a task. <ref> is a position from "todo list"
(interpreted under --filter) or an id prefix of at least 4 characters.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := resolveTask(toggleFilterFlag, args[0])
		if err != nil {
			return err
		}
		snap := Store.ToggleTask(task.ID)
		state := "active"
		if updated, ok := Store.Get(task.ID); ok && updated.Completed {
			state = "completed"
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Marked %q %s\n", task.Title, state)
		printFooter(out, snap)
		return nil
	},
}

var renameFilterFlag string

var renameCmd = &cobra.Command{
	Use:     "rename <ref> <title...>",
	Aliases: []string{"edit"},
	Short:   "Change the title of a task",
	Long: `Replace the title of a task. A title that is empty after trimming deletes
the task instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := resolveTask(renameFilterFlag, args[0])
		if err != nil {
			return err
		}
		title := strings.Join(args[1:], " ")
		snap := Store.RenameTask(task.ID, title)
		out := cmd.OutOrStdout()
		if _, ok := Store.Get(task.ID); !ok {
			fmt.Fprintf(out, "Deleted %q\n", task.Title)
		} else {
			fmt.Fprintf(out, "Renamed %q to %q\n", task.Title, strings.TrimSpace(title))
		}
		printFooter(out, snap)
		return nil
	},
}

var rmFilterFlag string

var rmCmd = &cobra.Command{
	Use:     "rm <ref>",
	Aliases: []string{"delete"},
	Short:   "Delete a task",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := resolveTask(rmFilterFlag, args[0])
		if err != nil {
			return err
		}
		snap := Store.DeleteTask(task.ID)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Deleted %q\n", task.Title)
		printFooter(out, snap)
		return nil
	},
}

var clearCompletedCmd = &cobra.Command{
	Use:   "clear-completed",
	Short: "Delete every completed task",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return errStoreNotInitialized
		}
		before := Store.Snapshot()
		snap := Store.ClearCompleted()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Cleared %d completed task(s)\n", before.TotalCount-snap.TotalCount)
		printFooter(out, snap)
		return nil
	},
}

// applyFilterFlag sets the store filter from a --filter value. An empty value
// leaves the current filter alone.
func applyFilterFlag(value string) (models.Snapshot, error) {
	if strings.TrimSpace(value) == "" {
		return Store.Snapshot(), nil
	}
	f, err := models.ParseFilter(value)
	if err != nil {
		return models.Snapshot{}, err
	}
	return Store.SetFilter(f), nil
}

func resolveTask(filterValue, ref string) (models.Task, error) {
	if Store == nil {
		return models.Task{}, errStoreNotInitialized
	}
	snap, err := applyFilterFlag(filterValue)
	if err != nil {
		return models.Task{}, err
	}
	return core.ResolveRef(snap, Store.Tasks(), ref)
}

func printList(w io.Writer, snap models.Snapshot) {
	if snap.TotalCount == 0 {
		fmt.Fprintln(w, "No tasks yet. Add one with: todo add <title>")
		return
	}
	if len(snap.Filtered) == 0 {
		fmt.Fprintf(w, "No %s tasks.\n", strings.ToLower(string(snap.Filter)))
	}
	width := len(fmt.Sprint(len(snap.Filtered)))
	for i, t := range snap.Filtered {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		fmt.Fprintf(w, "%*d. [%s] %s  %s\n", width, i+1, mark, t.Title, shortID(t.ID))
	}
	printFooter(w, snap)
}

func printFooter(w io.Writer, snap models.Snapshot) {
	if !snap.FooterVisible() {
		return
	}
	line := itemsLeft(snap.ActiveCount)
	if snap.Filter != models.FilterAll {
		line += fmt.Sprintf(" (showing %s)", strings.ToLower(string(snap.Filter)))
	}
	if snap.ClearCompletedVisible() {
		line += fmt.Sprintf(", %d completed", snap.CompletedCount)
	}
	fmt.Fprintln(w, line)
}

// itemsLeft renders the remaining-work label.
func itemsLeft(n int) string {
	if n == 1 {
		return "1 item left"
	}
	return fmt.Sprintf("%d items left", n)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	filterUsage := "Filter the view: all, active or completed"
	listCmd.Flags().StringVarP(&listFilterFlag, "filter", "f", "", filterUsage)
	toggleCmd.Flags().StringVarP(&toggleFilterFlag, "filter", "f", "", filterUsage)
	renameCmd.Flags().StringVarP(&renameFilterFlag, "filter", "f", "", filterUsage)
	rmCmd.Flags().StringVarP(&rmFilterFlag, "filter", "f", "", filterUsage)
	for _, cmd := range []*cobra.Command{listCmd, toggleCmd, renameCmd, rmCmd} {
		registerFilterCompletion(cmd)
	}

	toggleCmd.ValidArgsFunction = completeTaskRefs
	renameCmd.ValidArgsFunction = completeTaskRefs
	rmCmd.ValidArgsFunction = completeTaskRefs

	rootCmd.AddCommand(addCmd, listCmd, toggleCmd, renameCmd, rmCmd, clearCompletedCmd)
}
