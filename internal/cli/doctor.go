package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/studyd/internal/integrity"
)

type DoctorResult struct {
	Backend  string                   `json:"backend"`
	DataPath string                   `json:"dataPath"`
	Dangling integrity.DanglingReport `json:"dangling"`
	Fixed    bool                     `json:"fixed"`
}

func NewDoctorCommand(rootOpts *RootOptions) *cobra.Command {
	var fix bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Report tasks and notes whose subject no longer exists",
		Long: `Report tasks and notes that point at a deleted subject.

Such records appear when a subject delete was interrupted part way. With
--fix they are removed. Exits 1 when dangling records remain.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(rootOpts, cmd, func(rt *runtime) error {
				report := integrity.FindDangling(rt.store.Snapshot(cmd.Context()))
				result := DoctorResult{
					Backend:  string(rt.cfg.Backend),
					DataPath: rt.cfg.DataPath,
					Dangling: report,
				}
				if fix && !report.Empty() {
					for _, task := range report.Tasks {
						if err := rt.store.DeleteTask(cmd.Context(), task.ID); err != nil {
							return err
						}
					}
					for _, note := range report.Notes {
						if err := rt.store.DeleteNote(cmd.Context(), note.ID); err != nil {
							return err
						}
					}
					result.Fixed = true
				}

				var b strings.Builder
				fmt.Fprintf(&b, "backend: %s (%s)\n", result.Backend, result.DataPath)
				if report.Empty() {
					b.WriteString("no dangling references")
					return rt.out.Success(result, b.String())
				}
				for _, task := range report.Tasks {
					fmt.Fprintf(&b, "task %s %q -> missing subject %s\n", task.ID, task.Title, task.SubjectID)
				}
				for _, note := range report.Notes {
					fmt.Fprintf(&b, "note %s %q -> missing subject %s\n", note.ID, note.Title, note.SubjectID)
				}
				if result.Fixed {
					fmt.Fprintf(&b, "removed %d task(s) and %d note(s)", len(report.Tasks), len(report.Notes))
					return rt.out.Success(result, b.String())
				}
				if rt.out.Format != "json" {
					if err := rt.out.Success(result, b.String()); err != nil {
						return err
					}
				}
				exitErr := NewExitError(ExitFailure, ErrCodeDangling,
					fmt.Sprintf("%d dangling task(s), %d dangling note(s); rerun with --fix", len(report.Tasks), len(report.Notes)))
				exitErr.Details = result
				return exitErr
			})
		},
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "delete dangling tasks and notes")
	return cmd
}
