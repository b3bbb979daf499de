// Package storage holds the key-value backends the entity store persists
// through. A backend stores opaque text per key; it knows nothing about the
// entities encoded in that text.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Collection keys. Each holds one JSON array.
const (
	KeySubjects = "studyplanner_subjects"
	KeyTasks    = "studyplanner_tasks"
	KeyNotes    = "studyplanner_notes"
	// KeyPlans is reserved for the plan collection; nothing in this module reads it.
	KeyPlans = "studyplanner_plans"
)

var (
	ErrClosed         = errors.New("storage: backend closed")
	ErrUnknownBackend = errors.New("storage: unknown backend")
)

type Backend interface {
	// Get returns ok=false when the key has never been written.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

type Kind string

const (
	KindSQLite Kind = "sqlite"
	KindJSON   Kind = "json"
	KindMemory Kind = "memory"
)

func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	switch k {
	case KindSQLite, KindJSON, KindMemory:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, raw)
	}
}

// Open builds the backend named by kind. path is ignored for the memory backend.
func Open(kind Kind, path string) (Backend, error) {
	switch kind {
	case KindSQLite:
		return OpenSQLite(path)
	case KindJSON:
		return NewFileBackend(path), nil
	case KindMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
	}
}
