// Package transfer exports and imports whole snapshots as YAML or JSON files.
package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/studyd/internal/model"
	"github.com/sandeepkv93/studyd/internal/store"
)

const DocumentVersion = 1

var (
	ErrUnsupportedFormat = errors.New("transfer: unsupported format")
	ErrInvalidDocument   = errors.New("transfer: invalid document")
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

type Document struct {
	Version    int             `json:"version" yaml:"version"`
	ExportedAt time.Time       `json:"exportedAt" yaml:"exportedAt"`
	Subjects   []model.Subject `json:"subjects" yaml:"subjects"`
	Tasks      []model.Task    `json:"tasks" yaml:"tasks"`
	Notes      []model.Note    `json:"notes" yaml:"notes"`
}

func NewDocument(snap model.Snapshot, now time.Time) Document {
	return Document{
		Version:    DocumentVersion,
		ExportedAt: now.UTC(),
		Subjects:   nonNil(snap.Subjects),
		Tasks:      nonNil(snap.Tasks),
		Notes:      nonNil(snap.Notes),
	}
}

func (d Document) Snapshot() model.Snapshot {
	return model.Snapshot{Subjects: nonNil(d.Subjects), Tasks: nonNil(d.Tasks), Notes: nonNil(d.Notes)}
}

// Validate checks ids are present and unique per collection and every
// entity passes its own Validate. Dangling subject ids are allowed.
func (d Document) Validate() error {
	if d.Version != DocumentVersion {
		return fmt.Errorf("%w: version %d", ErrInvalidDocument, d.Version)
	}
	if err := uniqueIDs("subject", d.Subjects); err != nil {
		return err
	}
	if err := uniqueIDs("task", d.Tasks); err != nil {
		return err
	}
	if err := uniqueIDs("note", d.Notes); err != nil {
		return err
	}
	if err := validEntities("subject", d.Subjects); err != nil {
		return err
	}
	if err := validEntities("task", d.Tasks); err != nil {
		return err
	}
	return validEntities("note", d.Notes)
}

type validatable interface {
	EntityID() string
	Validate() error
}

func validEntities[T validatable](kind string, items []T) error {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("%w: %s %q: %w", ErrInvalidDocument, kind, item.EntityID(), err)
		}
	}
	return nil
}

func uniqueIDs[T interface{ EntityID() string }](kind string, items []T) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		id := item.EntityID()
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: %s with empty id", ErrInvalidDocument, kind)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate %s id %q", ErrInvalidDocument, kind, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func Encode(w io.Writer, format Format, doc Document) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func Decode(r io.Reader, format Format) (Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return Document{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return Document{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
	default:
		return Document{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	for i := range doc.Tasks {
		if doc.Tasks[i].DueDate != nil && doc.Tasks[i].DueDate.IsZero() {
			doc.Tasks[i].DueDate = nil
		}
	}
	return doc, nil
}

// Export writes the store's snapshot to path, format chosen by extension.
func Export(ctx context.Context, st *store.Store, path string, now time.Time) (Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Document{}, err
	}
	doc := NewDocument(st.Snapshot(ctx), now)
	var buf bytes.Buffer
	if err := Encode(&buf, format, doc); err != nil {
		return Document{}, fmt.Errorf("encode export: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Document{}, fmt.Errorf("create export dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return Document{}, fmt.Errorf("write export: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return Document{}, fmt.Errorf("rename export: %w", err)
	}
	return doc, nil
}

// Import replaces every collection in the store with the file's contents.
func Import(ctx context.Context, st *store.Store, path string) (Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Document{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open import: %w", err)
	}
	defer f.Close()

	doc, err := Decode(f, format)
	if err != nil {
		return Document{}, err
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	if err := st.ReplaceAll(ctx, doc.Snapshot()); err != nil {
		return doc, err
	}
	return doc, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
