package commands

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/studyd/internal/aggregate"
	"github.com/sandeepkv93/studyd/internal/model"
)

type Type string

const (
	TypeSubject Type = "subject"
	TypeTask    Type = "task"
	TypeNote    Type = "note"
	TypeStatus  Type = "status"
	TypeFilter  Type = "filter"
	TypeSearch  Type = "search"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type SubjectArgs struct {
	Name  string
	Color string
}

// TaskArgs is a new task. Subject is a subject name or id; empty means the
// subject currently in focus.
type TaskArgs struct {
	Title   string
	Due     *model.Date
	Subject string
}

type NoteArgs struct {
	Title   string
	Subject string
}

type StatusArgs struct {
	Status model.TaskStatus
}

// FilterArgs carries aggregate.AllStatuses for "all".
type FilterArgs struct {
	Status model.TaskStatus
}

type SearchArgs struct {
	Term string
}

type Command struct {
	Type    Type
	Raw     string
	Subject *SubjectArgs
	Task    *TaskArgs
	Note    *NoteArgs
	Status  *StatusArgs
	Filter  *FilterArgs
	Search  *SearchArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimSpace(strings.TrimLeft(raw, ":/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeSubject:
		return parseSubject(input, args)
	case TypeTask:
		return parseTask(input, args)
	case TypeNote:
		return parseNote(input, args)
	case TypeStatus:
		return parseStatus(input, args)
	case TypeFilter:
		return parseFilter(input, args)
	case TypeSearch:
		return Command{Type: TypeSearch, Raw: input, Search: &SearchArgs{Term: strings.Join(args, " ")}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

// splitOptions separates key:value tokens for the given keys from the free text.
func splitOptions(args []string, keys ...string) (string, map[string]string) {
	opts := map[string]string{}
	words := make([]string, 0, len(args))
outer:
	for _, arg := range args {
		lower := strings.ToLower(arg)
		for _, key := range keys {
			if strings.HasPrefix(lower, key+":") {
				opts[key] = strings.TrimSpace(arg[len(key)+1:])
				continue outer
			}
		}
		words = append(words, arg)
	}
	return strings.TrimSpace(strings.Join(words, " ")), opts
}

func parseSubject(raw string, args []string) (Command, error) {
	name, opts := splitOptions(args, "color")
	if name == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "subject requires a name"}
	}
	return Command{Type: TypeSubject, Raw: raw, Subject: &SubjectArgs{Name: name, Color: opts["color"]}}, nil
}

func parseTask(raw string, args []string) (Command, error) {
	title, opts := splitOptions(args, "due", "subject")
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "task requires a title"}
	}
	out := &TaskArgs{Title: title, Subject: opts["subject"]}
	if rawDue, ok := opts["due"]; ok {
		due, err := model.ParseDate(rawDue)
		if err != nil || due.IsZero() {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("due date must be YYYY-MM-DD, got %q", rawDue)}
		}
		out.Due = &due
	}
	return Command{Type: TypeTask, Raw: raw, Task: out}, nil
}

func parseNote(raw string, args []string) (Command, error) {
	title, opts := splitOptions(args, "subject")
	if title == "" {
		title = model.UntitledNote
	}
	return Command{Type: TypeNote, Raw: raw, Note: &NoteArgs{Title: title, Subject: opts["subject"]}}, nil
}

func parseStatus(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "status requires one of todo, in-progress, done"}
	}
	status, err := model.ParseTaskStatus(args[0])
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
	}
	return Command{Type: TypeStatus, Raw: raw, Status: &StatusArgs{Status: status}}, nil
}

func parseFilter(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "filter requires all, todo, in-progress or done"}
	}
	if strings.EqualFold(args[0], string(aggregate.AllStatuses)) {
		return Command{Type: TypeFilter, Raw: raw, Filter: &FilterArgs{Status: aggregate.AllStatuses}}, nil
	}
	status, err := model.ParseTaskStatus(args[0])
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
	}
	return Command{Type: TypeFilter, Raw: raw, Filter: &FilterArgs{Status: status}}, nil
}
