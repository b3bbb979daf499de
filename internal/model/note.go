package model

import (
	"fmt"
	"strings"
	"time"
)

// UntitledNote is the title given to notes created without one.
const UntitledNote = "Untitled Note"

type Note struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title" yaml:"title"`
	Content   string     `json:"content" yaml:"content"`
	SubjectID string     `json:"subjectId" yaml:"subjectId"`
	CreatedAt time.Time  `json:"createdAt" yaml:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

func (n Note) EntityID() string { return n.ID }

// LastTouched is UpdatedAt when set, CreatedAt otherwise.
func (n Note) LastTouched() time.Time {
	if n.UpdatedAt != nil && !n.UpdatedAt.IsZero() {
		return *n.UpdatedAt
	}
	return n.CreatedAt
}

func (n Note) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: note title", ErrMissingField)
	}
	if strings.TrimSpace(n.SubjectID) == "" {
		return fmt.Errorf("%w: note subject", ErrMissingField)
	}
	return nil
}

type NotePatch struct {
	Title     *string
	Content   *string
	SubjectID *string
	UpdatedAt *time.Time
}

func (p NotePatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.SubjectID == nil && p.UpdatedAt == nil
}

// TouchesText reports whether the patch edits the title or the content.
func (p NotePatch) TouchesText() bool {
	return p.Title != nil || p.Content != nil
}

func (p NotePatch) Apply(n Note) Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.SubjectID != nil {
		n.SubjectID = *p.SubjectID
	}
	if p.UpdatedAt != nil {
		ts := *p.UpdatedAt
		n.UpdatedAt = &ts
	}
	return n
}
