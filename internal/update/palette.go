package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/studyd/internal/commands"
	"github.com/sandeepkv93/studyd/internal/model"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}

	ctx := m.ctx()
	res, err := commands.Execute(cmd, commands.Handlers{
		Subject: func(a commands.SubjectArgs) (commands.Result, error) {
			patch := model.SubjectPatch{Name: model.Ptr(a.Name)}
			if a.Color != "" {
				patch.Color = model.Ptr(a.Color)
			}
			subject, err := m.store.AddSubject(ctx, patch)
			m.reload()
			if err != nil {
				return commands.Result{}, err
			}
			m.switchView(ViewSubjects)
			m.Subjects.Cursor = len(m.Data.Subjects) - 1
			return commands.Result{Message: fmt.Sprintf("added subject: %s", subject.Name)}, nil
		},
		Task: func(a commands.TaskArgs) (commands.Result, error) {
			subjectID, err := m.resolveSubject(a.Subject)
			if err != nil {
				return commands.Result{}, err
			}
			task, err := m.store.AddTask(ctx, model.TaskPatch{
				Title:     model.Ptr(a.Title),
				DueDate:   a.Due,
				SubjectID: model.Ptr(subjectID),
			})
			m.reload()
			if err != nil {
				return commands.Result{}, err
			}
			m.switchView(ViewTasks)
			m.Tasks.Cursor = indexOfTask(m.visibleTasks(), task.ID)
			return commands.Result{Message: fmt.Sprintf("added task: %s", task.Title)}, nil
		},
		Note: func(a commands.NoteArgs) (commands.Result, error) {
			subjectID, err := m.resolveSubject(a.Subject)
			if err != nil {
				return commands.Result{}, err
			}
			note, err := m.store.AddNote(ctx, model.NotePatch{
				Title:     model.Ptr(a.Title),
				SubjectID: model.Ptr(subjectID),
			})
			m.reload()
			if err != nil {
				return commands.Result{}, err
			}
			m.switchView(ViewNotes)
			m.Notes.Cursor = indexOfNote(m.visibleNotes(), note.ID)
			m.openEditor(note)
			return commands.Result{Message: fmt.Sprintf("added note: %s", note.Title)}, nil
		},
		Status: func(a commands.StatusArgs) (commands.Result, error) {
			task, ok := m.selectedTask()
			if m.CurrentView != ViewTasks || !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "select a task first"}
			}
			updated, err := m.store.SetTaskStatus(ctx, task.ID, a.Status)
			m.reload()
			if err != nil {
				return commands.Result{}, err
			}
			m.Tasks.Cursor = indexOfTask(m.visibleTasks(), updated.ID)
			return commands.Result{Message: fmt.Sprintf("%s: %s", updated.Title, updated.Status.Label())}, nil
		},
		Filter: func(a commands.FilterArgs) (commands.Result, error) {
			m.switchView(ViewTasks)
			m.Tasks.Filter = a.Status
			m.Tasks.Cursor = 0
			return commands.Result{Message: fmt.Sprintf("filter: %s", a.Status)}, nil
		},
		Search: func(a commands.SearchArgs) (commands.Result, error) {
			m.switchView(ViewNotes)
			m.Notes.Search = a.Term
			m.searchInput.SetValue(a.Term)
			m.Notes.Cursor = 0
			return commands.Result{Message: fmt.Sprintf("%d note(s) match %q", len(m.visibleNotes()), a.Term)}, nil
		},
	})
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		return m
	}
	m.Status = StatusBar{Text: res.Message}
	m.notify("Command", res.Message, "info")
	return m
}

// resolveSubject maps a subject name or id to an id. An empty ref picks the
// focused subject.
func (m Model) resolveSubject(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		if id := m.focusedSubjectID(); id != "" {
			return id, nil
		}
		return "", &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: "add a subject first"}
	}
	for _, subject := range m.Data.Subjects {
		if subject.ID == ref {
			return subject.ID, nil
		}
	}
	for _, subject := range m.Data.Subjects {
		if strings.EqualFold(subject.Name, ref) {
			return subject.ID, nil
		}
	}
	return "", &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown subject %q", ref)}
}
