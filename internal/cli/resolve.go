package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sandeepkv93/studyd/internal/model"
	"github.com/sandeepkv93/studyd/internal/store"
)

// resolveSubject accepts a subject id or a case-insensitive name. An empty
// ref falls back to the only subject when exactly one exists.
func resolveSubject(ctx context.Context, st *store.Store, ref string) (model.Subject, error) {
	subjects := st.ListSubjects(ctx)
	ref = strings.TrimSpace(ref)
	if ref == "" {
		switch len(subjects) {
		case 0:
			return model.Subject{}, NewExitError(ExitCommandError, ErrCodeInvalid, "add a subject first")
		case 1:
			return subjects[0], nil
		default:
			return model.Subject{}, NewExitError(ExitCommandError, ErrCodeInvalid, "--subject is required when more than one subject exists")
		}
	}
	for _, subject := range subjects {
		if subject.ID == ref {
			return subject, nil
		}
	}
	var match []model.Subject
	for _, subject := range subjects {
		if strings.EqualFold(subject.Name, ref) {
			match = append(match, subject)
		}
	}
	switch len(match) {
	case 1:
		return match[0], nil
	case 0:
		return model.Subject{}, fmt.Errorf("%w: subject %q", store.ErrNotFound, ref)
	default:
		return model.Subject{}, NewExitError(ExitCommandError, ErrCodeInvalid,
			fmt.Sprintf("%d subjects are named %q, use the id", len(match), ref))
	}
}

// subjectFilter resolves an optional --subject filter to an id.
func subjectFilter(ctx context.Context, st *store.Store, ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", nil
	}
	subject, err := resolveSubject(ctx, st, ref)
	if err != nil {
		return "", err
	}
	return subject.ID, nil
}

// readContent returns the --file contents ("-" is stdin) or the literal text.
func readContent(text, file string, stdin func() ([]byte, error)) (string, bool, error) {
	switch {
	case file == "-":
		raw, err := stdin()
		if err != nil {
			return "", false, fmt.Errorf("read stdin: %w", err)
		}
		return string(raw), true, nil
	case file != "":
		raw, err := os.ReadFile(file)
		if err != nil {
			return "", false, fmt.Errorf("read %s: %w", file, err)
		}
		return string(raw), true, nil
	case text != "":
		return text, true, nil
	default:
		return "", false, nil
	}
}

func renderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}

func parseDue(raw string) (*model.Date, error) {
	due, err := model.ParseDate(raw)
	if err != nil {
		return nil, NewExitError(ExitCommandError, ErrCodeInvalid, fmt.Sprintf("due date must be YYYY-MM-DD, got %q", raw))
	}
	if due.IsZero() {
		return nil, nil
	}
	return &due, nil
}
