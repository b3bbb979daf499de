package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/studyd/internal/transfer"
)

type TransferSummary struct {
	Path     string `json:"path"`
	Version  int    `json:"version"`
	Subjects int    `json:"subjects"`
	Tasks    int    `json:"tasks"`
	Notes    int    `json:"notes"`
}

func summarize(path string, doc transfer.Document) TransferSummary {
	return TransferSummary{
		Path:     path,
		Version:  doc.Version,
		Subjects: len(doc.Subjects),
		Tasks:    len(doc.Tasks),
		Notes:    len(doc.Notes),
	}
}

func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.yaml|file.json>",
		Short: "Write every subject, task and note to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(rootOpts, cmd, func(rt *runtime) error {
				doc, err := transfer.Export(cmd.Context(), rt.store, args[0], rt.now())
				if err != nil {
					return err
				}
				sum := summarize(args[0], doc)
				rt.logger.Info("exported", "path", sum.Path, "subjects", sum.Subjects, "tasks", sum.Tasks, "notes", sum.Notes)
				return rt.out.Success(sum, fmt.Sprintf("exported %d subject(s), %d task(s), %d note(s) to %s",
					sum.Subjects, sum.Tasks, sum.Notes, sum.Path))
			})
		},
	}
}

func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml|file.json>",
		Short: "Replace all data with the contents of an export file",
		Long: `Replace all data with the contents of an export file.

Existing subjects, tasks and notes are overwritten. The file is validated
before anything is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(rootOpts, cmd, func(rt *runtime) error {
				doc, err := transfer.Import(cmd.Context(), rt.store, args[0])
				if err != nil {
					return err
				}
				sum := summarize(args[0], doc)
				rt.logger.Info("imported", "path", sum.Path, "subjects", sum.Subjects, "tasks", sum.Tasks, "notes", sum.Notes)
				return rt.out.Success(sum, fmt.Sprintf("imported %d subject(s), %d task(s), %d note(s) from %s",
					sum.Subjects, sum.Tasks, sum.Notes, sum.Path))
			})
		},
	}
}
