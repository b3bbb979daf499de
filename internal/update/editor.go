package update

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/studyd/internal/autosave"
	"github.com/sandeepkv93/studyd/internal/model"
)

func (m *Model) openEditor(note model.Note) {
	m.Editor = EditorState{Active: true, NoteID: note.ID}
	m.editorArea.SetValue(note.Content)
	m.editorArea.Focus()
	m.previewSource = "\x00"
	m.Status = StatusBar{Text: "editing " + note.Title}
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeEditor()
		return m, nil
	case "ctrl+s":
		if m.autosave != nil {
			m.autosave.FlushNow(m.Editor.NoteID)
		}
		m.saveEditor()
		return m, nil
	}

	before := m.editorArea.Value()
	var cmd tea.Cmd
	m.editorArea, cmd = m.editorArea.Update(msg)
	if m.editorArea.Value() == before {
		return m, cmd
	}
	m.Editor.Dirty = true
	if m.autosave == nil {
		m.saveEditor()
		return m, cmd
	}
	if err := m.autosave.Touch(m.Editor.NoteID); err != nil {
		if errors.Is(err, autosave.ErrStopped) {
			m.saveEditor()
			return m, cmd
		}
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
	}
	return m, cmd
}

// saveEditor writes the editor buffer to the open note. The store stamps
// updatedAt on content changes.
func (m *Model) saveEditor() {
	if !m.Editor.Active || !m.Editor.Dirty {
		return
	}
	content := m.editorArea.Value()
	_, err := m.store.UpdateNote(m.ctx(), m.Editor.NoteID, model.NotePatch{Content: &content})
	m.reload()
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Save Failed", err.Error(), "error")
		return
	}
	m.Editor.Dirty = false
	m.Editor.LastSavedAt = m.now()
	m.Status = StatusBar{Text: "saved"}
}

// closeEditor saves pending edits and drops any scheduled autosave.
func (m *Model) closeEditor() {
	if !m.Editor.Active {
		return
	}
	if m.autosave != nil {
		m.autosave.FlushNow(m.Editor.NoteID)
	}
	m.saveEditor()
	id := m.Editor.NoteID
	m.Editor = EditorState{}
	m.editorArea.Blur()
	m.Notes.Cursor = indexOfNote(m.visibleNotes(), id)
}

// Shutdown saves an open editor. Run it on the final model once the program
// has exited, since ctrl+c skips the editor's own close path.
func (m Model) Shutdown() Model {
	m.closeEditor()
	return m
}
