package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/studyd/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range m.viewBindings() {
		plain = append(plain, fmt.Sprintf("- %s: %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		CurrentView: string(m.CurrentView),
		Bindings:    plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Dashboard, Action: "switch to Dashboard"},
		{Key: m.Keys.Tasks, Action: "switch to Tasks"},
		{Key: m.Keys.Notes, Action: "switch to Notes"},
		{Key: m.Keys.Subjects, Action: "switch to Subjects"},
		{Key: m.Keys.Palette, Action: "open command palette"},
		{Key: "r", Action: "reload from storage"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) viewBindings() []KeyBinding {
	if m.Editor.Active {
		return []KeyBinding{
			{Key: "ctrl+s", Action: "save now"},
			{Key: "esc", Action: "save and close editor"},
		}
	}
	switch m.CurrentView {
	case ViewDashboard:
		return []KeyBinding{
			{Key: ":task <title> due:<date>", Action: "add a task"},
			{Key: ":note <title>", Action: "add a note"},
		}
	case ViewTasks:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "s", Action: "cycle status"},
			{Key: "f", Action: "cycle status filter"},
			{Key: "c", Action: "clear filters"},
			{Key: "d", Action: "delete task"},
		}
	case ViewNotes:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "enter", Action: "edit note"},
			{Key: "/", Action: "search notes"},
			{Key: "c", Action: "clear filters"},
			{Key: "d", Action: "delete note"},
		}
	case ViewSubjects:
		return []KeyBinding{
			{Key: "j/k", Action: "move selection"},
			{Key: "t/n", Action: "show subject tasks / notes"},
			{Key: "d", Action: "delete subject with its tasks and notes"},
		}
	default:
		return []KeyBinding{{Key: "-", Action: "no contextual bindings"}}
	}
}

func (m Model) helpBindings() []key.Binding {
	out := make([]key.Binding, 0, len(m.globalBindings())+len(m.viewBindings()))
	for _, kb := range m.globalBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	for _, kb := range m.viewBindings() {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
