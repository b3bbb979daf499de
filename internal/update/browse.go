package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/studyd/internal/aggregate"
	"github.com/sandeepkv93/studyd/internal/model"
)

// filterCycle is the order f steps the task status filter through.
var filterCycle = []model.TaskStatus{
	aggregate.AllStatuses, model.TaskStatusTodo, model.TaskStatusInProgress, model.TaskStatusDone,
}

func nextFilter(current model.TaskStatus) model.TaskStatus {
	for i, s := range filterCycle {
		if s == current {
			return filterCycle[(i+1)%len(filterCycle)]
		}
	}
	return aggregate.AllStatuses
}

func (m Model) handleTasksKey(msg tea.KeyMsg) Model {
	tasks := m.visibleTasks()
	switch msg.String() {
	case "j", "down":
		m.Tasks.Cursor = clampCursor(m.Tasks.Cursor+1, len(tasks))
	case "k", "up":
		m.Tasks.Cursor = clampCursor(m.Tasks.Cursor-1, len(tasks))
	case "s":
		task, ok := m.selectedTask()
		if !ok {
			return m
		}
		updated, err := m.store.SetTaskStatus(m.ctx(), task.ID, task.Status.Next())
		m.reload()
		if err != nil {
			m.LastError = err
			m.Status = StatusBar{Text: err.Error(), IsError: true}
			return m
		}
		// the task may have left the filtered list
		m.Tasks.Cursor = clampCursor(indexOfTask(m.visibleTasks(), updated.ID), len(m.visibleTasks()))
		m.Status = StatusBar{Text: fmt.Sprintf("%s: %s", updated.Title, updated.Status.Label())}
	case "f":
		m.Tasks.Filter = nextFilter(m.Tasks.Filter)
		m.Tasks.Cursor = 0
		m.Status = StatusBar{Text: "filter: " + filterLabel(m.Tasks.Filter)}
	case "c":
		m.Tasks.SubjectID = ""
		m.Tasks.Filter = aggregate.AllStatuses
		m.Tasks.Cursor = 0
		m.Status = StatusBar{Text: "filters cleared"}
	case "d":
		if task, ok := m.selectedTask(); ok {
			m.askConfirm(ViewTasks, task.ID, task.Title)
		}
	}
	return m
}

func (m Model) handleNotesKey(msg tea.KeyMsg) Model {
	notes := m.visibleNotes()
	switch msg.String() {
	case "j", "down":
		m.Notes.Cursor = clampCursor(m.Notes.Cursor+1, len(notes))
	case "k", "up":
		m.Notes.Cursor = clampCursor(m.Notes.Cursor-1, len(notes))
	case "enter", "e":
		if note, ok := m.selectedNote(); ok {
			m.openEditor(note)
		}
	case "/":
		m.Notes.Searching = true
		m.searchInput.SetValue(m.Notes.Search)
		m.searchInput.CursorEnd()
	case "esc":
		m.Notes.Search = ""
		m.searchInput.SetValue("")
		m.Notes.Cursor = 0
	case "c":
		m.Notes.SubjectID = ""
		m.Notes.Search = ""
		m.searchInput.SetValue("")
		m.Notes.Cursor = 0
		m.Status = StatusBar{Text: "filters cleared"}
	case "d":
		if note, ok := m.selectedNote(); ok {
			m.askConfirm(ViewNotes, note.ID, note.Title)
		}
	}
	return m
}

// handleSearchKey filters notes live as the term is typed.
func (m Model) handleSearchKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "enter":
		m.Notes.Searching = false
	case "esc":
		m.Notes.Searching = false
		m.Notes.Search = ""
		m.searchInput.SetValue("")
	default:
		if msg.Type == tea.KeyRunes {
			m.searchInput.SetValue(m.searchInput.Value() + string(msg.Runes))
		} else {
			m.searchInput, _ = m.searchInput.Update(msg)
		}
		m.Notes.Search = m.searchInput.Value()
	}
	m.Notes.Cursor = 0
	return m
}

func (m Model) handleSubjectsKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "j", "down":
		m.Subjects.Cursor = clampCursor(m.Subjects.Cursor+1, len(m.Data.Subjects))
	case "k", "up":
		m.Subjects.Cursor = clampCursor(m.Subjects.Cursor-1, len(m.Data.Subjects))
	case "t", "enter":
		if sub, ok := m.selectedSubject(); ok {
			m.switchView(ViewTasks)
			m.Tasks.SubjectID = sub.ID
			m.Tasks.Cursor = 0
		}
	case "n":
		if sub, ok := m.selectedSubject(); ok {
			m.switchView(ViewNotes)
			m.Notes.SubjectID = sub.ID
			m.Notes.Cursor = 0
		}
	case "d":
		if sub, ok := m.selectedSubject(); ok {
			m.askConfirm(ViewSubjects, sub.ID, sub.Name)
		}
	}
	return m
}

func indexOfTask(tasks []model.Task, id string) int {
	for i, task := range tasks {
		if task.ID == id {
			return i
		}
	}
	return 0
}

func indexOfNote(notes []model.Note, id string) int {
	for i, note := range notes {
		if note.ID == id {
			return i
		}
	}
	return 0
}
