package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/studyd/internal/autosave"
	"github.com/sandeepkv93/studyd/internal/views"
)

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// ReloadMsg re-reads the store, e.g. after another process wrote to it.
type ReloadMsg struct{}

// AutosaveFlushMsg carries a debounced note save that came due.
type AutosaveFlushMsg struct {
	Flush autosave.Flush
}

func waitForFlushCmd(ch <-chan autosave.Flush) tea.Cmd {
	return func() tea.Msg {
		flush, ok := <-ch
		if !ok {
			return nil
		}
		return AutosaveFlushMsg{Flush: flush}
	}
}

func (m Model) Init() tea.Cmd {
	if m.autosave != nil {
		return waitForFlushCmd(m.autosave.C())
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.switchView(typed.View)
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	case ReloadMsg:
		m.reload()
		return m, nil
	case AutosaveFlushMsg:
		if m.Editor.Active && m.Editor.Dirty && typed.Flush.Key == m.Editor.NoteID {
			m.saveEditor()
		}
		if m.autosave != nil {
			return m, waitForFlushCmd(m.autosave.C())
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == "ctrl+c" {
		m.closeEditor()
		m.Quitting = true
		return m, tea.Quit
	}
	if m.Editor.Active {
		return m.handleEditorKey(msg)
	}
	if m.Palette.Active {
		if keyStr == m.Keys.Help {
			m.HelpVisible = !m.HelpVisible
			return m, nil
		}
		return m.handlePaletteKey(msg), nil
	}
	if m.Notes.Searching {
		return m.handleSearchKey(msg), nil
	}
	if m.Confirm.Active {
		return m.handleConfirmKey(msg), nil
	}

	switch keyStr {
	case m.Keys.Palette:
		m.Palette.Active = true
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.Status = StatusBar{Text: "command palette active"}
		return m, nil
	case m.Keys.Dashboard:
		m.switchView(ViewDashboard)
		return m, nil
	case m.Keys.Tasks:
		m.switchView(ViewTasks)
		return m, nil
	case m.Keys.Notes:
		m.switchView(ViewNotes)
		return m, nil
	case m.Keys.Subjects:
		m.switchView(ViewSubjects)
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		if m.HelpVisible {
			m.Status = StatusBar{Text: "help shown"}
		} else {
			m.Status = StatusBar{Text: "help hidden"}
		}
		return m, nil
	case "r":
		m.reload()
		m.Status = StatusBar{Text: "reloaded"}
		return m, nil
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}

	switch m.CurrentView {
	case ViewTasks:
		return m.handleTasksKey(msg), nil
	case ViewNotes:
		return m.handleNotesKey(msg), nil
	case ViewSubjects:
		return m.handleSubjectsKey(msg), nil
	}
	return m, nil
}

func (m *Model) switchView(v View) {
	m.CurrentView = v
	m.Confirm = ConfirmState{}
}

// askConfirm parks a delete until the user answers y or n.
func (m *Model) askConfirm(kind View, id, label string) {
	m.Confirm = ConfirmState{Active: true, Kind: kind, ID: id, Label: label}
	m.Status = StatusBar{Text: fmt.Sprintf("delete %q? [y/n]", label)}
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "y", "Y":
		pending := m.Confirm
		m.Confirm = ConfirmState{}
		m.performDelete(pending)
	case "n", "N", "esc":
		m.Confirm = ConfirmState{}
		m.Status = StatusBar{Text: "delete cancelled"}
	}
	return m
}

func (m *Model) performDelete(pending ConfirmState) {
	var err error
	text := fmt.Sprintf("deleted %q", pending.Label)
	switch pending.Kind {
	case ViewTasks:
		err = m.store.DeleteTask(m.ctx(), pending.ID)
	case ViewNotes:
		err = m.store.DeleteNote(m.ctx(), pending.ID)
	case ViewSubjects:
		report, cascadeErr := m.cascade.DeleteSubjectCascade(m.ctx(), pending.ID)
		err = cascadeErr
		text = fmt.Sprintf("deleted %q with %d task(s) and %d note(s)",
			pending.Label, len(report.DeletedTasks), len(report.DeletedNotes))
		if m.Tasks.SubjectID == pending.ID {
			m.Tasks.SubjectID = ""
		}
		if m.Notes.SubjectID == pending.ID {
			m.Notes.SubjectID = ""
		}
	}
	m.reload()
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Delete Failed", err.Error(), "error")
		return
	}
	m.Status = StatusBar{Text: text}
	m.notify("Deleted", text, "info")
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	leftPane := ""
	rightPane := ""
	switch m.CurrentView {
	case ViewDashboard:
		leftPane = m.renderDashboardView()
	case ViewTasks:
		leftPane = m.renderTasksView()
		rightPane = m.renderTaskDetail()
	case ViewNotes:
		leftPane = m.renderNotesView()
		if m.Editor.Active {
			rightPane = m.renderEditorView()
		} else {
			rightPane = m.renderNoteDetail()
		}
	case ViewSubjects:
		leftPane = m.renderSubjectsView()
		rightPane = m.renderSubjectDetail()
	}
	rightPane = joinNonEmpty(rightPane, m.renderCommandPalette(), m.renderHelpIfVisible())

	labels := make([]string, 0, len(viewOrder))
	active := 0
	keys := []string{m.Keys.Dashboard, m.Keys.Tasks, m.Keys.Notes, m.Keys.Subjects}
	for i, v := range viewOrder {
		labels = append(labels, fmt.Sprintf("%s %s", keys[i], v))
		if v == m.CurrentView {
			active = i
		}
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("studyd | view: %s", m.CurrentView),
		Tabs:         views.RenderTabs(labels, active),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		Notification: m.renderNotificationsView(),
		Footer: fmt.Sprintf("keys: %s-%s views | %s cmd | %s help | %s quit",
			m.Keys.Dashboard, m.Keys.Subjects, m.Keys.Palette, m.Keys.Help, m.Keys.Quit),
	})
}

func isKnownView(v View) bool {
	for _, known := range viewOrder {
		if v == known {
			return true
		}
	}
	return false
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}
