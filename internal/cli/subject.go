package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/studyd/internal/aggregate"
	"github.com/sandeepkv93/studyd/internal/integrity"
	"github.com/sandeepkv93/studyd/internal/model"
)

// SubjectView is a subject with its task and note counts.
type SubjectView struct {
	model.Subject
	Stats aggregate.SubjectSummary `json:"stats"`
}

func NewSubjectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subject",
		Aliases: []string{"subjects"},
		Short:   "Manage subjects",
	}
	cmd.AddCommand(newSubjectAddCommand(rootOpts))
	cmd.AddCommand(newSubjectListCommand(rootOpts))
	cmd.AddCommand(newSubjectEditCommand(rootOpts))
	cmd.AddCommand(newSubjectDeleteCommand(rootOpts))
	cmd.AddCommand(newSubjectStatsCommand(rootOpts))
	return cmd
}

func newSubjectAddCommand(rootOpts *RootOptions) *cobra.Command {
	var description, color string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a subject",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(rootOpts, cmd, func(rt *runtime) error {
				patch := model.SubjectPatch{Name: model.Ptr(strings.Join(args, " "))}
				if description != "" {
					patch.Description = model.Ptr(description)
				}
				if color != "" {
					patch.Color = model.Ptr(color)
				}
				subject, err := rt.store.AddSubject(cmd.Context(), patch)
				if err != nil {
					return err
				}
				return rt.out.Success(subject, fmt.Sprintf("added subject %s (%s)", subject.Name, subject.ID))
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "subject description")
	cmd.Flags().StringVarP(&color, "color", "c", "", "display color, e.g. #4a6bff")
	return cmd
}

func newSubjectListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List subjects with task and note counts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(rootOpts, cmd, func(rt *runtime) error {
				snap := rt.store.Snapshot(cmd.Context())
				out := subjectViews(snap)
				rows := make([][]string, 0, len(out))
				for _, sv := range out {
					rows = append(rows, []string{
						sv.ID, sv.Name, sv.Color,
						fmt.Sprintf("%d/%d", sv.Stats.CompletedTasks, sv.Stats.TotalTasks),
						fmt.Sprintf("%d", sv.Stats.NoteCount),
					})
				}
				text := renderTable([]string{"ID", "NAME", "COLOR", "DONE", "NOTES"}, rows)
				if text == "" {
					text = "no subjects"
				}
				return rt.out.Success(out, text)
			})
		},
	}
}

func newSubjectEditCommand(rootOpts *RootOptions) *cobra.Command {
	var name, description, color string
	cmd := &cobra.Command{
		Use:   "edit <subject>",
		Short: "Change a subject's name, description or color",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(rootOpts, cmd, func(rt *runtime) error {
				subject, err := resolveSubject(cmd.Context(), rt.store, args[0])
				if err != nil {
					return err
				}
				var patch model.SubjectPatch
				if cmd.Flags().Changed("name") {
					patch.Name = model.Ptr(name)
				}
				if cmd.Flags().Changed("description") {
					patch.Description = model.Ptr(description)
				}
				if cmd.Flags().Changed("color") {
					patch.Color = model.Ptr(color)
				}
				updated, err := rt.store.UpdateSubject(cmd.Context(), subject.ID, patch)
				if err != nil {
					return err
				}
				return rt.out.Success(updated, fmt.Sprintf("updated subject %s (%s)", updated.Name, updated.ID))
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVarP(&color, "color", "c", "", "new color")
	return cmd
}

func newSubjectDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <subject>",
		Aliases: []string{"rm"},
		Short:   "Delete a subject with all of its tasks and notes",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(rootOpts, cmd, func(rt *runtime) error {
				subject, err := resolveSubject(cmd.Context(), rt.store, args[0])
				if err != nil {
					return err
				}
				report, err := rt.cascade.DeleteSubjectCascade(cmd.Context(), subject.ID)
				if err != nil {
					return cascadeError(report, err)
				}
				return rt.out.Success(report, fmt.Sprintf("deleted subject %s with %d task(s) and %d note(s)",
					subject.Name, len(report.DeletedTasks), len(report.DeletedNotes)))
			})
		},
	}
}

func cascadeError(report integrity.CascadeReport, err error) error {
	return WrapExitError(ExitFailure, ErrCodePersistence,
		fmt.Sprintf("delete stopped after %d task(s) and %d note(s)", len(report.DeletedTasks), len(report.DeletedNotes)), err)
}

func newSubjectStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [subject]",
		Short: "Show completion statistics per subject",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(rootOpts, cmd, func(rt *runtime) error {
				snap := rt.store.Snapshot(cmd.Context())
				views := subjectViews(snap)
				if len(args) == 1 {
					subject, err := resolveSubject(cmd.Context(), rt.store, args[0])
					if err != nil {
						return err
					}
					sv := SubjectView{Subject: subject, Stats: aggregate.SubjectStats(subject.ID, snap.Tasks, snap.Notes)}
					views = []SubjectView{sv}
				}
				var b strings.Builder
				for _, sv := range views {
					fmt.Fprintf(&b, "%s: %d/%d tasks done (%d%%), %d note(s)\n",
						sv.Name, sv.Stats.CompletedTasks, sv.Stats.TotalTasks, sv.Stats.CompletionRate, sv.Stats.NoteCount)
				}
				if b.Len() == 0 {
					b.WriteString("no subjects")
				}
				return rt.out.Success(views, b.String())
			})
		},
	}
}

func subjectViews(snap model.Snapshot) []SubjectView {
	stats := aggregate.AllSubjectStats(snap)
	out := make([]SubjectView, 0, len(stats))
	for i, sum := range stats {
		out = append(out, SubjectView{Subject: snap.Subjects[i], Stats: sum})
	}
	return out
}
