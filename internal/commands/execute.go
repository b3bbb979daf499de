package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Subject func(SubjectArgs) (Result, error)
	Task    func(TaskArgs) (Result, error)
	Note    func(NoteArgs) (Result, error)
	Status  func(StatusArgs) (Result, error)
	Filter  func(FilterArgs) (Result, error)
	Search  func(SearchArgs) (Result, error)
}

func missing(name string) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: name + " handler not configured"}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeSubject:
		if handlers.Subject == nil {
			return Result{}, missing("subject")
		}
		return handlers.Subject(*cmd.Subject)
	case TypeTask:
		if handlers.Task == nil {
			return Result{}, missing("task")
		}
		return handlers.Task(*cmd.Task)
	case TypeNote:
		if handlers.Note == nil {
			return Result{}, missing("note")
		}
		return handlers.Note(*cmd.Note)
	case TypeStatus:
		if handlers.Status == nil {
			return Result{}, missing("status")
		}
		return handlers.Status(*cmd.Status)
	case TypeFilter:
		if handlers.Filter == nil {
			return Result{}, missing("filter")
		}
		return handlers.Filter(*cmd.Filter)
	case TypeSearch:
		if handlers.Search == nil {
			return Result{}, missing("search")
		}
		return handlers.Search(*cmd.Search)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
