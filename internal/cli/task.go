package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/studyd/internal/aggregate"
	"github.com/sandeepkv93/studyd/internal/model"
)

func NewTaskCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks"},
		Short:   "Manage tasks",
	}
	cmd.AddCommand(newTaskAddCommand(rootOpts))
	cmd.AddCommand(newTaskListCommand(rootOpts))
	cmd.AddCommand(newTaskEditCommand(rootOpts))
	cmd.AddCommand(newTaskStatusCommand(rootOpts))
	cmd.AddCommand(newTaskDeleteCommand(rootOpts))
	return cmd
}

func newTaskAddCommand(rootOpts *RootOptions) *cobra.Command {
	var subjectRef, due, description, status string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(rootOpts, cmd, func(rt *runtime) error {
				subject, err := resolveSubject(cmd.Context(), rt.store, subjectRef)
				if err != nil {
					return err
				}
				patch := model.TaskPatch{
					Title:     model.Ptr(strings.Join(args, " ")),
					SubjectID: model.Ptr(subject.ID),
				}
				if description != "" {
					patch.Description = model.Ptr(description)
				}
				if due != "" {
					if patch.DueDate, err = parseDue(due); err != nil {
						return err
					}
				}
				if status != "" {
					s, err := model.ParseTaskStatus(status)
					if err != nil {
						return err
					}
					patch.Status = &s
				}
				task, err := rt.store.AddTask(cmd.Context(), patch)
				if err != nil {
					return err
				}
				return rt.out.Success(task, fmt.Sprintf("added task %s (%s) to %s", task.Title, task.ID, subject.Name))
			})
		},
	}
	cmd.Flags().StringVarP(&subjectRef, "subject", "s", "", "subject id or name")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().StringVar(&status, "status", "", "initial status (todo|in-progress|done)")
	return cmd
}

func newTaskListCommand(rootOpts *RootOptions) *cobra.Command {
	var status, subjectRef string
	var group bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks, optionally grouped by due date",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(rootOpts, cmd, func(rt *runtime) error {
				filter := aggregate.TaskFilter{Status: aggregate.AllStatuses}
				if status != "" && !strings.EqualFold(status, string(aggregate.AllStatuses)) {
					s, err := model.ParseTaskStatus(status)
					if err != nil {
						return err
					}
					filter.Status = s
				}
				subjectID, err := subjectFilter(cmd.Context(), rt.store, subjectRef)
				if err != nil {
					return err
				}
				filter.SubjectID = subjectID

				snap := rt.store.Snapshot(cmd.Context())
				tasks := aggregate.FilterTasks(snap.Tasks, filter)
				idx := aggregate.NewSubjectIndex(snap.Subjects)
				now := rt.now()
				if group {
					groups := aggregate.GroupTasksByDueBucket(tasks, now)
					return rt.out.Success(groups, renderTaskGroups(groups, idx, now))
				}
				text := renderTaskTable(tasks, idx, now)
				if text == "" {
					text = "no tasks"
				}
				return rt.out.Success(tasks, text)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "all", "filter by status (all|todo|in-progress|done)")
	cmd.Flags().StringVarP(&subjectRef, "subject", "s", "", "filter by subject id or name")
	cmd.Flags().BoolVarP(&group, "group", "g", false, "group by due date bucket")
	return cmd
}

func newTaskEditCommand(rootOpts *RootOptions) *cobra.Command {
	var title, description, due, subjectRef, status string
	var clearDue bool
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(rootOpts, cmd, func(rt *runtime) error {
				var patch model.TaskPatch
				flags := cmd.Flags()
				if flags.Changed("title") {
					patch.Title = model.Ptr(title)
				}
				if flags.Changed("description") {
					patch.Description = model.Ptr(description)
				}
				if flags.Changed("due") {
					d, err := parseDue(due)
					if err != nil {
						return err
					}
					if d == nil {
						patch.ClearDueDate = true
					}
					patch.DueDate = d
				}
				if clearDue {
					patch.ClearDueDate = true
					patch.DueDate = nil
				}
				if flags.Changed("subject") {
					subject, err := resolveSubject(cmd.Context(), rt.store, subjectRef)
					if err != nil {
						return err
					}
					patch.SubjectID = model.Ptr(subject.ID)
				}
				if flags.Changed("status") {
					s, err := model.ParseTaskStatus(status)
					if err != nil {
						return err
					}
					patch.Status = &s
				}
				task, err := rt.store.UpdateTask(cmd.Context(), args[0], patch)
				if err != nil {
					return err
				}
				return rt.out.Success(task, fmt.Sprintf("updated task %s (%s)", task.Title, task.ID))
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVar(&due, "due", "", "new due date (YYYY-MM-DD, empty clears)")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "remove the due date")
	cmd.Flags().StringVarP(&subjectRef, "subject", "s", "", "move to subject id or name")
	cmd.Flags().StringVar(&status, "status", "", "new status")
	return cmd
}

func newTaskStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> [todo|in-progress|done]",
		Short: "Set a task's status, or advance it to the next one",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(rootOpts, cmd, func(rt *runtime) error {
				var next model.TaskStatus
				if len(args) == 2 {
					s, err := model.ParseTaskStatus(args[1])
					if err != nil {
						return err
					}
					next = s
				} else {
					task, err := rt.store.GetTask(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					next = task.Status.Next()
				}
				task, err := rt.store.SetTaskStatus(cmd.Context(), args[0], next)
				if err != nil {
					return err
				}
				return rt.out.Success(task, fmt.Sprintf("%s: %s", task.Title, task.Status.Label()))
			})
		},
	}
}

func newTaskDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(rootOpts, cmd, func(rt *runtime) error {
				if err := rt.store.DeleteTask(cmd.Context(), args[0]); err != nil {
					return err
				}
				return rt.out.Success(map[string]string{"deleted": args[0]}, "deleted task "+args[0])
			})
		},
	}
}

func renderTaskTable(tasks []model.Task, idx aggregate.SubjectIndex, now time.Time) string {
	rows := make([][]string, 0, len(tasks))
	for _, task := range tasks {
		due := ""
		if task.HasDueDate() {
			due = aggregate.FormatDueDate(task.DueDate, now)
		}
		rows = append(rows, []string{task.ID, task.Title, idx.Name(task.SubjectID), task.Status.Label(), due})
	}
	return renderTable([]string{"ID", "TITLE", "SUBJECT", "STATUS", "DUE"}, rows)
}

func renderTaskGroups(groups []aggregate.TaskGroup, idx aggregate.SubjectIndex, now time.Time) string {
	if len(groups) == 0 {
		return "no tasks"
	}
	var b strings.Builder
	for i, group := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s (%d)\n", group.Bucket, len(group.Tasks))
		for _, task := range group.Tasks {
			fmt.Fprintf(&b, "  [%s] %s · %s", task.Status.Label(), task.Title, idx.Name(task.SubjectID))
			if task.HasDueDate() {
				fmt.Fprintf(&b, " · %s", aggregate.FormatDueDate(task.DueDate, now))
			}
			fmt.Fprintf(&b, " (%s)\n", task.ID)
		}
	}
	return b.String()
}
