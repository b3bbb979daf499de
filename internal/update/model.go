package update

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/sandeepkv93/studyd/internal/aggregate"
	"github.com/sandeepkv93/studyd/internal/autosave"
	"github.com/sandeepkv93/studyd/internal/config"
	"github.com/sandeepkv93/studyd/internal/integrity"
	"github.com/sandeepkv93/studyd/internal/model"
	"github.com/sandeepkv93/studyd/internal/storage"
	"github.com/sandeepkv93/studyd/internal/store"
	"github.com/sandeepkv93/studyd/internal/views"
)

type View string

const (
	ViewDashboard View = "Dashboard"
	ViewTasks     View = "Tasks"
	ViewNotes     View = "Notes"
	ViewSubjects  View = "Subjects"
)

var viewOrder = []View{ViewDashboard, ViewTasks, ViewNotes, ViewSubjects}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Dashboard string
	Tasks     string
	Notes     string
	Subjects  string
	Palette   string
	Help      string
	Quit      string
}

func DefaultKeyMap() GlobalKeyMap {
	return GlobalKeyMap{
		Dashboard: "1",
		Tasks:     "2",
		Notes:     "3",
		Subjects:  "4",
		Palette:   ":",
		Help:      "?",
		Quit:      "q",
	}
}

type TasksState struct {
	Cursor    int
	Filter    model.TaskStatus
	SubjectID string
}

type NotesState struct {
	Cursor    int
	Search    string
	Searching bool
	SubjectID string
}

type SubjectsState struct {
	Cursor int
}

// ConfirmState is a pending delete waiting for y/n.
type ConfirmState struct {
	Active bool
	Kind   View
	ID     string
	Label  string
}

type EditorState struct {
	Active      bool
	NoteID      string
	Dirty       bool
	LastSavedAt time.Time
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

// Deps wires the model to the entity store. Only Store is required; a nil
// Cascade is built from Store and a nil Autosave saves notes on every edit.
type Deps struct {
	Store    *store.Store
	Cascade  *integrity.Coordinator
	Autosave *autosave.Debouncer
	Config   config.RuntimeConfig
	Logger   *slog.Logger
	Now      func() time.Time
}

type Model struct {
	CurrentView   View
	Data          model.Snapshot
	Tasks         TasksState
	Notes         NotesState
	Subjects      SubjectsState
	Confirm       ConfirmState
	Editor        EditorState
	Palette       CommandPaletteState
	HelpVisible   bool
	Notifications []Notification
	Status        StatusBar
	Keys          GlobalKeyMap
	Quitting      bool
	LastError     error

	store    *store.Store
	cascade  *integrity.Coordinator
	autosave *autosave.Debouncer
	cfg      config.RuntimeConfig
	logger   *slog.Logger
	now      func() time.Time

	commandInput    textinput.Model
	searchInput     textinput.Model
	editorArea      textarea.Model
	previewViewport viewport.Model
	subjectTable    table.Model
	completionBar   progress.Model
	helpModel       help.Model
	previewSource   string
}

func NewModel(deps Deps) Model {
	if deps.Store == nil {
		deps.Store = store.New(storage.NewMemoryBackend())
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.Cascade == nil {
		deps.Cascade = integrity.NewCoordinator(deps.Store, deps.Logger)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Config.UpcomingHorizonDays <= 0 {
		deps.Config.UpcomingHorizonDays = aggregate.DefaultHorizonDays
	}
	if deps.Config.RecentNotesLimit <= 0 {
		deps.Config.RecentNotesLimit = aggregate.DefaultRecentNotes
	}

	m := Model{
		CurrentView: ViewDashboard,
		Tasks:       TasksState{Filter: aggregate.AllStatuses},
		Keys:        DefaultKeyMap(),
		store:       deps.Store,
		cascade:     deps.Cascade,
		autosave:    deps.Autosave,
		cfg:         deps.Config,
		logger:      deps.Logger,
		now:         deps.Now,
	}
	m.initBubbleComponents()
	m.reload()
	m.syncBubbleData()
	return m
}

func (m Model) ctx() context.Context {
	return context.Background()
}

// reload re-reads every collection and keeps the cursors in range.
func (m *Model) reload() {
	m.Data = m.store.Snapshot(m.ctx())
	m.Tasks.Cursor = clampCursor(m.Tasks.Cursor, len(m.visibleTasks()))
	m.Notes.Cursor = clampCursor(m.Notes.Cursor, len(m.visibleNotes()))
	m.Subjects.Cursor = clampCursor(m.Subjects.Cursor, len(m.Data.Subjects))
}

func (m *Model) initBubbleComponents() {
	m.commandInput = textinput.New()
	m.commandInput.Prompt = ":"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.searchInput = textinput.New()
	m.searchInput.Prompt = "search> "
	m.searchInput.CharLimit = 128
	m.searchInput.Width = 42

	m.editorArea = textarea.New()
	m.editorArea.SetWidth(54)
	m.editorArea.SetHeight(12)
	m.editorArea.ShowLineNumbers = false
	m.editorArea.Placeholder = "Start writing (markdown)"
	m.editorArea.CharLimit = 0

	cols := []table.Column{
		{Title: "Subject", Width: 20},
		{Title: "Tasks", Width: 7},
		{Title: "Done", Width: 6},
		{Title: "Notes", Width: 6},
	}
	m.subjectTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(10))

	m.completionBar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(24))
	m.helpModel = help.New()
	m.previewViewport = viewport.New(54, 12)
}

func (m *Model) syncBubbleData() {
	summaries := aggregate.AllSubjectStats(m.Data)
	rows := make([]table.Row, 0, len(summaries))
	for i, sum := range summaries {
		rows = append(rows, table.Row{
			m.Data.Subjects[i].Name,
			fmt.Sprintf("%d", sum.TotalTasks),
			fmt.Sprintf("%d%%", sum.CompletionRate),
			fmt.Sprintf("%d", sum.NoteCount),
		})
	}
	m.subjectTable.SetRows(rows)
	if len(rows) > 0 && m.Subjects.Cursor < len(rows) {
		m.subjectTable.SetCursor(m.Subjects.Cursor)
	}

	m.commandInput.SetValue(m.Palette.Input)
	if m.Palette.Active {
		m.commandInput.Focus()
	} else {
		m.commandInput.Blur()
	}
	if m.Notes.Searching {
		m.searchInput.Focus()
	} else {
		m.searchInput.Blur()
	}

	if m.Editor.Active {
		m.editorArea.Focus()
		if src := m.editorArea.Value(); src != m.previewSource {
			m.previewSource = src
			m.previewViewport.SetContent(views.RenderMarkdown(src, m.cfg.DesktopTheme))
		}
	} else {
		m.editorArea.Blur()
	}
}

func (m Model) visibleTasks() []model.Task {
	filtered := aggregate.FilterTasks(m.Data.Tasks, aggregate.TaskFilter{
		Status:    m.Tasks.Filter,
		SubjectID: m.Tasks.SubjectID,
	})
	var out []model.Task
	for _, group := range aggregate.GroupTasksByDueBucket(filtered, m.now()) {
		out = append(out, group.Tasks...)
	}
	return out
}

func (m Model) visibleNotes() []model.Note {
	notes := aggregate.FilterNotesBySubject(m.Data.Notes, m.Notes.SubjectID)
	notes = aggregate.FilterNotesByText(notes, m.Notes.Search)
	notes = aggregate.SortNotesByRecency(notes)
	var out []model.Note
	for _, group := range aggregate.GroupNotesByRecencyBucket(notes, m.now()) {
		out = append(out, group.Notes...)
	}
	return out
}

func (m Model) selectedTask() (model.Task, bool) {
	tasks := m.visibleTasks()
	if m.Tasks.Cursor < 0 || m.Tasks.Cursor >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[m.Tasks.Cursor], true
}

func (m Model) selectedNote() (model.Note, bool) {
	notes := m.visibleNotes()
	if m.Notes.Cursor < 0 || m.Notes.Cursor >= len(notes) {
		return model.Note{}, false
	}
	return notes[m.Notes.Cursor], true
}

func (m Model) selectedSubject() (model.Subject, bool) {
	if m.Subjects.Cursor < 0 || m.Subjects.Cursor >= len(m.Data.Subjects) {
		return model.Subject{}, false
	}
	return m.Data.Subjects[m.Subjects.Cursor], true
}

// focusedSubjectID is the subject new tasks and notes land in when the
// command names none: the selected subject, then the active filter, then
// the first subject.
func (m Model) focusedSubjectID() string {
	if m.CurrentView == ViewSubjects {
		if sub, ok := m.selectedSubject(); ok {
			return sub.ID
		}
	}
	if m.CurrentView == ViewTasks && m.Tasks.SubjectID != "" {
		return m.Tasks.SubjectID
	}
	if m.CurrentView == ViewNotes && m.Notes.SubjectID != "" {
		return m.Notes.SubjectID
	}
	if len(m.Data.Subjects) > 0 {
		return m.Data.Subjects[0].ID
	}
	return ""
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}
