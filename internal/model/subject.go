package model

import (
	"fmt"
	"strings"
	"time"
)

// DefaultSubjectColor matches the swatch preselected when creating a subject.
const DefaultSubjectColor = "#4a6bff"

type Subject struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Color       string    `json:"color" yaml:"color"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
}

func (s Subject) EntityID() string { return s.ID }

func (s Subject) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: subject name", ErrMissingField)
	}
	if strings.TrimSpace(s.Color) == "" {
		return fmt.Errorf("%w: subject color", ErrMissingField)
	}
	return nil
}

type SubjectPatch struct {
	Name        *string
	Description *string
	Color       *string
}

func (p SubjectPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Color == nil
}

func (p SubjectPatch) Apply(s Subject) Subject {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.Color != nil {
		s.Color = *p.Color
	}
	return s
}

// Ptr returns a pointer to v. Handy for building patches inline.
func Ptr[T any](v T) *T {
	return &v
}
