// Package store is the typed entity store for subjects, tasks and notes.
// Each kind lives as one JSON array under a fixed backend key, and every
// write re-encodes and persists the whole array.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sandeepkv93/studyd/internal/model"
	"github.com/sandeepkv93/studyd/internal/storage"
)

var (
	ErrNotFound       = errors.New("store: not found")
	ErrPersistence    = errors.New("store: persist failed")
	ErrUnknownSubject = errors.New("store: unknown subject")
	ErrIDExhausted    = errors.New("store: could not allocate a unique id")
)

type Store struct {
	backend storage.Backend
	ids     IDGenerator
	now     func() time.Time
	logger  *slog.Logger
	strict  bool
}

type Option func(*Store)

func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) {
		if g != nil {
			s.ids = g
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStrictReferences makes task and note writes fail with ErrUnknownSubject
// when their subject id does not match a stored subject.
func WithStrictReferences(strict bool) Option {
	return func(s *Store) { s.strict = strict }
}

func New(backend storage.Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		ids:     UUIDGenerator{},
		now:     time.Now,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Snapshot(ctx context.Context) model.Snapshot {
	return model.Snapshot{
		Subjects: s.ListSubjects(ctx),
		Tasks:    s.ListTasks(ctx),
		Notes:    s.ListNotes(ctx),
	}
}

// ReplaceAll overwrites all three collections with snap. Collections are
// written independently; a failure on one does not stop the others.
func (s *Store) ReplaceAll(ctx context.Context, snap model.Snapshot) error {
	return errors.Join(
		saveCollection(ctx, s, storage.KeySubjects, snap.Subjects),
		saveCollection(ctx, s, storage.KeyTasks, snap.Tasks),
		saveCollection(ctx, s, storage.KeyNotes, snap.Notes),
	)
}

func (s *Store) checkSubject(ctx context.Context, subjectID string) error {
	if !s.strict {
		return nil
	}
	subjects, err := readCollection[model.Subject](ctx, s, storage.KeySubjects)
	if err != nil {
		return err
	}
	if indexOf(subjects, subjectID) < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownSubject, subjectID)
	}
	return nil
}

// Subjects

func (s *Store) ListSubjects(ctx context.Context) []model.Subject {
	return loadCollection[model.Subject](ctx, s, storage.KeySubjects)
}

func (s *Store) GetSubject(ctx context.Context, id string) (model.Subject, error) {
	return find(s.ListSubjects(ctx), id)
}

func (s *Store) AddSubject(ctx context.Context, patch model.SubjectPatch) (model.Subject, error) {
	subject := patch.Apply(model.Subject{Color: model.DefaultSubjectColor})
	if strings.TrimSpace(subject.Color) == "" {
		subject.Color = model.DefaultSubjectColor
	}
	if err := subject.Validate(); err != nil {
		return model.Subject{}, err
	}
	items, err := readCollection[model.Subject](ctx, s, storage.KeySubjects)
	if err != nil {
		return model.Subject{}, err
	}
	id, err := freshID(s, items)
	if err != nil {
		return model.Subject{}, err
	}
	subject.ID = id
	subject.CreatedAt = s.now()
	items = append(items, subject)
	return subject, saveCollection(ctx, s, storage.KeySubjects, items)
}

func (s *Store) UpdateSubject(ctx context.Context, id string, patch model.SubjectPatch) (model.Subject, error) {
	items, err := readCollection[model.Subject](ctx, s, storage.KeySubjects)
	if err != nil {
		return model.Subject{}, err
	}
	i := indexOf(items, id)
	if i < 0 {
		return model.Subject{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	updated := patch.Apply(items[i])
	if err := updated.Validate(); err != nil {
		return model.Subject{}, err
	}
	items[i] = updated
	return items[i], saveCollection(ctx, s, storage.KeySubjects, items)
}

// DeleteSubject removes only the subject. Use integrity.Coordinator.DeleteSubjectCascade
// to also remove its tasks and notes.
func (s *Store) DeleteSubject(ctx context.Context, id string) error {
	items, err := readCollection[model.Subject](ctx, s, storage.KeySubjects)
	if err != nil {
		return err
	}
	items, _ = without(items, id)
	return saveCollection(ctx, s, storage.KeySubjects, items)
}

// Tasks

func (s *Store) ListTasks(ctx context.Context) []model.Task {
	return normalizeTasks(loadCollection[model.Task](ctx, s, storage.KeyTasks))
}

func (s *Store) readTasks(ctx context.Context) ([]model.Task, error) {
	items, err := readCollection[model.Task](ctx, s, storage.KeyTasks)
	if err != nil {
		return nil, err
	}
	return normalizeTasks(items), nil
}

func normalizeTasks(items []model.Task) []model.Task {
	for i := range items {
		// "dueDate": "" decodes to a zero date; treat it as no due date.
		if items[i].DueDate != nil && items[i].DueDate.IsZero() {
			items[i].DueDate = nil
		}
	}
	return items
}

func (s *Store) GetTask(ctx context.Context, id string) (model.Task, error) {
	return find(s.ListTasks(ctx), id)
}

func (s *Store) TasksBySubject(ctx context.Context, subjectID string) []model.Task {
	out := make([]model.Task, 0)
	for _, task := range s.ListTasks(ctx) {
		if task.SubjectID == subjectID {
			out = append(out, task)
		}
	}
	return out
}

func (s *Store) AddTask(ctx context.Context, patch model.TaskPatch) (model.Task, error) {
	task := patch.Apply(model.Task{Status: model.TaskStatusTodo})
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}
	if err := s.checkSubject(ctx, task.SubjectID); err != nil {
		return model.Task{}, err
	}
	items, err := s.readTasks(ctx)
	if err != nil {
		return model.Task{}, err
	}
	id, err := freshID(s, items)
	if err != nil {
		return model.Task{}, err
	}
	task.ID = id
	task.CreatedAt = s.now()
	items = append(items, task)
	return task, saveCollection(ctx, s, storage.KeyTasks, items)
}

func (s *Store) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	if patch.Status != nil && !patch.Status.IsValid() {
		return model.Task{}, fmt.Errorf("%w: %q", model.ErrInvalidStatus, *patch.Status)
	}
	items, err := s.readTasks(ctx)
	if err != nil {
		return model.Task{}, err
	}
	i := indexOf(items, id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if patch.SubjectID != nil && *patch.SubjectID != items[i].SubjectID {
		if err := s.checkSubject(ctx, *patch.SubjectID); err != nil {
			return model.Task{}, err
		}
	}
	updated := patch.Apply(items[i])
	if err := updated.Validate(); err != nil {
		return model.Task{}, err
	}
	items[i] = updated
	return items[i], saveCollection(ctx, s, storage.KeyTasks, items)
}

func (s *Store) SetTaskStatus(ctx context.Context, id string, status model.TaskStatus) (model.Task, error) {
	return s.UpdateTask(ctx, id, model.TaskPatch{Status: &status})
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	items, err := s.readTasks(ctx)
	if err != nil {
		return err
	}
	items, _ = without(items, id)
	return saveCollection(ctx, s, storage.KeyTasks, items)
}

// Notes

func (s *Store) ListNotes(ctx context.Context) []model.Note {
	return loadCollection[model.Note](ctx, s, storage.KeyNotes)
}

func (s *Store) GetNote(ctx context.Context, id string) (model.Note, error) {
	return find(s.ListNotes(ctx), id)
}

func (s *Store) NotesBySubject(ctx context.Context, subjectID string) []model.Note {
	out := make([]model.Note, 0)
	for _, note := range s.ListNotes(ctx) {
		if note.SubjectID == subjectID {
			out = append(out, note)
		}
	}
	return out
}

// AddNote creates a note. A blank title becomes model.UntitledNote and
// UpdatedAt stays unset until the first edit.
func (s *Store) AddNote(ctx context.Context, patch model.NotePatch) (model.Note, error) {
	note := patch.Apply(model.Note{})
	if strings.TrimSpace(note.Title) == "" {
		note.Title = model.UntitledNote
	}
	if err := note.Validate(); err != nil {
		return model.Note{}, err
	}
	if err := s.checkSubject(ctx, note.SubjectID); err != nil {
		return model.Note{}, err
	}
	items, err := readCollection[model.Note](ctx, s, storage.KeyNotes)
	if err != nil {
		return model.Note{}, err
	}
	id, err := freshID(s, items)
	if err != nil {
		return model.Note{}, err
	}
	note.ID = id
	note.CreatedAt = s.now()
	items = append(items, note)
	return note, saveCollection(ctx, s, storage.KeyNotes, items)
}

// UpdateNote merges patch into the note. Title or content edits refresh
// UpdatedAt unless the patch sets it explicitly; clearing the title falls
// back to model.UntitledNote.
func (s *Store) UpdateNote(ctx context.Context, id string, patch model.NotePatch) (model.Note, error) {
	items, err := readCollection[model.Note](ctx, s, storage.KeyNotes)
	if err != nil {
		return model.Note{}, err
	}
	i := indexOf(items, id)
	if i < 0 {
		return model.Note{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if patch.SubjectID != nil && *patch.SubjectID != items[i].SubjectID {
		if err := s.checkSubject(ctx, *patch.SubjectID); err != nil {
			return model.Note{}, err
		}
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		patch.Title = model.Ptr(model.UntitledNote)
	}
	if patch.TouchesText() && patch.UpdatedAt == nil {
		now := s.now()
		patch.UpdatedAt = &now
	}
	updated := patch.Apply(items[i])
	if err := updated.Validate(); err != nil {
		return model.Note{}, err
	}
	items[i] = updated
	return items[i], saveCollection(ctx, s, storage.KeyNotes, items)
}

func (s *Store) DeleteNote(ctx context.Context, id string) error {
	items, err := readCollection[model.Note](ctx, s, storage.KeyNotes)
	if err != nil {
		return err
	}
	items, _ = without(items, id)
	return saveCollection(ctx, s, storage.KeyNotes, items)
}
