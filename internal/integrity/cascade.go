// Package integrity keeps tasks and notes consistent with the subjects they
// point at.
package integrity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sandeepkv93/studyd/internal/model"
	"github.com/sandeepkv93/studyd/internal/store"
)

type Step string

const (
	StepTasks   Step = "tasks"
	StepNotes   Step = "notes"
	StepSubject Step = "subject"
)

// CascadeReport lists what a cascade removed before it finished or stopped.
type CascadeReport struct {
	SubjectID      string   `json:"subjectId"`
	DeletedTasks   []string `json:"deletedTasks"`
	DeletedNotes   []string `json:"deletedNotes"`
	SubjectDeleted bool     `json:"subjectDeleted"`
}

// StepError names the cascade step that failed.
type StepError struct {
	Step Step
	ID   string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("cascade %s %q: %v", e.Step, e.ID, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

type Coordinator struct {
	store  *store.Store
	logger *slog.Logger
}

func NewCoordinator(st *store.Store, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Coordinator{store: st, logger: logger}
}

// DeleteSubjectCascade deletes every task, then every note, then the subject
// itself. It is not atomic: on failure it stops and the report shows how far
// it got.
func (c *Coordinator) DeleteSubjectCascade(ctx context.Context, subjectID string) (CascadeReport, error) {
	report := CascadeReport{SubjectID: subjectID, DeletedTasks: []string{}, DeletedNotes: []string{}}

	for _, task := range c.store.TasksBySubject(ctx, subjectID) {
		if err := c.store.DeleteTask(ctx, task.ID); err != nil {
			return report, c.fail(report, &StepError{Step: StepTasks, ID: task.ID, Err: err})
		}
		report.DeletedTasks = append(report.DeletedTasks, task.ID)
	}
	for _, note := range c.store.NotesBySubject(ctx, subjectID) {
		if err := c.store.DeleteNote(ctx, note.ID); err != nil {
			return report, c.fail(report, &StepError{Step: StepNotes, ID: note.ID, Err: err})
		}
		report.DeletedNotes = append(report.DeletedNotes, note.ID)
	}
	if err := c.store.DeleteSubject(ctx, subjectID); err != nil {
		return report, c.fail(report, &StepError{Step: StepSubject, ID: subjectID, Err: err})
	}
	report.SubjectDeleted = true

	c.logger.Info("subject deleted",
		slog.String("subject", subjectID),
		slog.Int("tasks", len(report.DeletedTasks)),
		slog.Int("notes", len(report.DeletedNotes)),
	)
	return report, nil
}

func (c *Coordinator) fail(report CascadeReport, err *StepError) error {
	c.logger.Error("cascade stopped",
		slog.String("subject", report.SubjectID),
		slog.String("step", string(err.Step)),
		slog.Any("err", err.Err),
	)
	return err
}

// DanglingReport lists tasks and notes whose subject no longer exists.
type DanglingReport struct {
	Tasks []model.Task `json:"tasks"`
	Notes []model.Note `json:"notes"`
}

func (r DanglingReport) Empty() bool {
	return len(r.Tasks) == 0 && len(r.Notes) == 0
}

func FindDangling(snap model.Snapshot) DanglingReport {
	known := snap.SubjectIDs()
	report := DanglingReport{Tasks: []model.Task{}, Notes: []model.Note{}}
	for _, task := range snap.Tasks {
		if _, ok := known[task.SubjectID]; !ok {
			report.Tasks = append(report.Tasks, task)
		}
	}
	for _, note := range snap.Notes {
		if _, ok := known[note.SubjectID]; !ok {
			report.Notes = append(report.Notes, note)
		}
	}
	return report
}
