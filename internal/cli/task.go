package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/skillpulse/internal/core"
	"github.com/valter-silva-au/skillpulse/pkg/models"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks (list, add, edit, delete, import)",
	Long: `Unified task management commands.

List the logged-in user's tasks, record new ones, change or delete
existing ones, and import a plain-text day log.`,
}

var (
	taskListDate string
	taskListAll  bool
)

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, newest first",
	Long: `List the logged-in user's tasks, newest first.

Only the first page is loaded unless --all is given. --date keeps the loaded
tasks whose start time contains the given text, for example 2026-01-06.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTaskServices(); err != nil {
			return err
		}

		list := core.NewTaskList(DB, Auth, Logger, PageLimit)
		defer list.Close()
		if err := loadTasks(list, taskListAll); err != nil {
			return err
		}
		if taskListDate != "" {
			list.OnAction(core.FilterByDate{Date: taskListDate})
		}

		state := list.State()
		out := cmd.OutOrStdout()
		if len(state.Tasks) == 0 {
			fmt.Fprintln(out, "No tasks found.")
			return nil
		}
		printTasks(out, state.Tasks)
		if state.CanLoadMore {
			fmt.Fprintln(out, "\nMore tasks available, use --all to list them.")
		}
		return nil
	},
}

var (
	taskDescription string
	taskStart       string
	taskEnd         string
	taskSuggest     bool
)

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a task",
	Long: `Record a task with a description, start time, and end time.

Times are RFC 3339 with an offset, for example 2026-01-06T10:00:00-03:00.
With --suggest, nothing is saved; previously used descriptions containing
--description are printed instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTaskServices(); err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if taskSuggest {
			suggestions, err := suggestDescriptions(taskDescription)
			if err != nil {
				return err
			}
			for _, s := range suggestions {
				fmt.Fprintln(out, s)
			}
			return nil
		}

		add := core.NewAddTask(DB, Logger, models.AddTaskRoute{})
		defer add.Close()
		add.OnAction(core.DescriptionChanged{Value: taskDescription})
		add.OnAction(core.StartTimeChanged{Value: taskStart})
		add.OnAction(core.EndTimeChanged{Value: taskEnd})
		add.OnAction(core.SaveTask{})
		add.Wait()
		return alertResult(out, add.State().Alert)
	},
}

// suggestDescriptions opens the add flow from the task list so the
// suggestions come from the loaded descriptions.
func suggestDescriptions(input string) ([]string, error) {
	list := core.NewTaskList(DB, Auth, Logger, PageLimit)
	defer list.Close()
	if err := loadTasks(list, false); err != nil {
		return nil, err
	}
	list.OnAction(core.OpenAddTask{})

	var route models.AddTaskRoute
	for _, e := range drainEvents(list.Events()) {
		if nav, ok := e.(models.Navigate); ok {
			if r, ok := nav.Route.(models.AddTaskRoute); ok {
				route = r
			}
		}
	}

	add := core.NewAddTask(DB, Logger, route)
	defer add.Close()
	add.OnAction(core.DescriptionChanged{Value: input})
	state := add.State()
	if !state.ShowSuggestions {
		return nil, nil
	}
	return core.FilterSuggestions(input, state.Suggestions), nil
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <task-id>",
	Short: "Change a task",
	Long: `Change the description, start time, or end time of a task.

Only the flags that are given change; the other fields keep their values.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTaskServices(); err != nil {
			return err
		}

		list := core.NewTaskList(DB, Auth, Logger, PageLimit)
		defer list.Close()
		task, err := findTask(list, args[0])
		if err != nil {
			return err
		}
		list.OnAction(core.OpenTask{Task: task})

		var route models.EditTaskRoute
		for _, e := range drainEvents(list.Events()) {
			if nav, ok := e.(models.Navigate); ok {
				if r, ok := nav.Route.(models.EditTaskRoute); ok {
					route = r
				}
			}
		}

		edit := core.NewEditTask(DB, Logger, route)
		defer edit.Close()
		flags := cmd.Flags()
		if flags.Changed("description") {
			edit.OnAction(core.DescriptionChanged{Value: taskDescription})
		}
		if flags.Changed("start") {
			edit.OnAction(core.StartTimeChanged{Value: taskStart})
		}
		if flags.Changed("end") {
			edit.OnAction(core.EndTimeChanged{Value: taskEnd})
		}
		edit.OnAction(core.SaveTask{})
		edit.Wait()
		return alertResult(cmd.OutOrStdout(), edit.State().Alert)
	},
}

var taskDeleteYes bool

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a task",
	Long: `Delete a task after confirmation.

Use --yes to skip the confirmation prompt.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTaskServices(); err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		list := core.NewTaskList(DB, Auth, Logger, PageLimit)
		defer list.Close()
		task, err := findTask(list, args[0])
		if err != nil {
			return err
		}

		list.OnAction(core.RequestDelete{Task: &task})
		if !taskDeleteYes {
			fmt.Fprintf(out, "Delete %s %q? [y/N] ", task.ID, task.Description)
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			answer = strings.ToLower(strings.TrimSpace(answer))
			if answer != "y" && answer != "yes" {
				list.OnAction(core.RequestDelete{})
				fmt.Fprintln(out, "Cancelled")
				return nil
			}
		}
		list.OnAction(core.ConfirmDelete{})
		list.Wait()
		return alertResult(out, list.State().Alert)
	},
}

var (
	taskImportDryRun bool
	taskImportOffset string
)

var taskImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import tasks from a day log",
	Long: `Import tasks from a plain-text day log.

The file holds a DD/MM/YYYY line for each day followed by one line per task:

  06/01/2026
  + Standup  9h30
  + Review  10h

Each task ends where the next one starts. Lines that cannot be read are
reported and skipped. Use --dry-run to print the tasks without saving them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTaskServices(); err != nil {
			return err
		}

		loc := ImportLocation
		if taskImportOffset != "" {
			var err error
			if loc, err = core.ParseOffset(taskImportOffset); err != nil {
				return err
			}
		}
		if loc == nil {
			loc, _ = core.ParseOffset(core.DefaultImportOffset)
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening day log: %w", err)
		}
		defer f.Close()

		entries, warnings, err := core.ParseDayLog(f, loc)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "line %d: %s\n", w.Line, w.Reason)
		}

		out := cmd.OutOrStdout()
		if taskImportDryRun {
			for _, e := range entries {
				fmt.Fprintf(out, "%s  %s  %s\n", e.StartTime, e.EndTime, e.Description)
			}
			fmt.Fprintf(out, "%d task(s) would be imported\n", len(entries))
			return nil
		}

		added, err := core.ImportDayLog(contextOrBackground(cmd), DB, entries, Logger)
		fmt.Fprintf(out, "Imported %d task(s)\n", added)
		return err
	},
}

// loadTasks refreshes list and, when all is set, keeps loading pages until
// none are left. An error alert is returned as an error.
func loadTasks(list *core.TaskList, all bool) error {
	list.OnAction(core.RefreshTasks{})
	list.Wait()
	for all && list.State().CanLoadMore && list.State().Alert == nil {
		list.OnAction(core.LoadMoreTasks{})
		list.Wait()
	}
	return alertError(list.State().Alert)
}

// findTask loads pages until the task with id shows up.
func findTask(list *core.TaskList, id string) (models.Task, error) {
	list.OnAction(core.RefreshTasks{})
	list.Wait()
	for {
		state := list.State()
		if err := alertError(state.Alert); err != nil {
			return models.Task{}, err
		}
		for _, t := range state.Tasks {
			if t.ID == id {
				return t, nil
			}
		}
		if !state.CanLoadMore {
			return models.Task{}, fmt.Errorf("task %s not found", id)
		}
		list.OnAction(core.LoadMoreTasks{})
		list.Wait()
	}
}

func init() {
	taskListCmd.Flags().StringVar(&taskListDate, "date", "", "Only show tasks whose start time contains this text (e.g. 2026-01-06)")
	taskListCmd.Flags().BoolVar(&taskListAll, "all", false, "Load every page")

	taskAddCmd.Flags().StringVar(&taskDescription, "description", "", "What was done")
	taskAddCmd.Flags().StringVar(&taskStart, "start", "", "Start time (RFC 3339, e.g. 2026-01-06T10:00:00-03:00)")
	taskAddCmd.Flags().StringVar(&taskEnd, "end", "", "End time (RFC 3339)")
	taskAddCmd.Flags().BoolVar(&taskSuggest, "suggest", false, "Print matching descriptions instead of saving")

	taskEditCmd.Flags().StringVar(&taskDescription, "description", "", "New description")
	taskEditCmd.Flags().StringVar(&taskStart, "start", "", "New start time")
	taskEditCmd.Flags().StringVar(&taskEnd, "end", "", "New end time")

	taskDeleteCmd.Flags().BoolVarP(&taskDeleteYes, "yes", "y", false, "Delete without asking")

	taskImportCmd.Flags().BoolVar(&taskImportDryRun, "dry-run", false, "Print the parsed tasks without saving")
	taskImportCmd.Flags().StringVar(&taskImportOffset, "offset", "", "UTC offset of the times in the file (default from config)")

	taskCmd.AddCommand(taskListCmd, taskAddCmd, taskEditCmd, taskDeleteCmd, taskImportCmd)
	rootCmd.AddCommand(taskCmd)
}

// contextOrBackground is used by commands run directly in tests, where
// cobra has not set a context.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
