package views

import (
	"fmt"
	"strings"
)

type StatsData struct {
	TotalTasks     int
	CompletedTasks int
	PendingTasks   int
	Subjects       int
	Notes          int
	CompletionRate int
	ProgressView   string
}

type TaskRowData struct {
	ID           string
	Title        string
	Subject      string
	SubjectColor string
	Status       string
	Due          string
	Overdue      bool
	Done         bool
}

type TaskGroupData struct {
	Bucket string
	Rows   []TaskRowData
}

type NoteRowData struct {
	ID           string
	Title        string
	Subject      string
	SubjectColor string
	Touched      string
	Excerpt      string
}

type NoteGroupData struct {
	Bucket string
	Rows   []NoteRowData
}

type SubjectRowData struct {
	ID             string
	Name           string
	Color          string
	Description    string
	TotalTasks     int
	CompletedTasks int
	CompletionRate int
	Notes          int
}

type DashboardPanelData struct {
	Stats    StatsData
	Upcoming []TaskRowData
	Recent   []NoteRowData
	Subjects []SubjectRowData
}

type TasksPanelData struct {
	Filter     string
	Subject    string
	Groups     []TaskGroupData
	SelectedID string
}

type NotesPanelData struct {
	Search     string
	SearchView string
	Searching  bool
	Groups     []NoteGroupData
	SelectedID string
}

type SubjectsPanelData struct {
	TableView     string
	Rows          []SubjectRowData
	SelectedID    string
	ConfirmDelete string
}

type EditorPanelData struct {
	Active      bool
	Title       string
	Subject     string
	EditorView  string
	Preview     string
	Dirty       bool
	LastSavedAt string
}

type DetailData struct {
	Title string
	Lines []string
	Body  string
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderDashboardPanel(data DashboardPanelData) string {
	var b strings.Builder
	b.WriteString("dashboard:\n")
	b.WriteString(fmt.Sprintf("tasks: %d total, %d completed, %d pending\n",
		data.Stats.TotalTasks, data.Stats.CompletedTasks, data.Stats.PendingTasks))
	b.WriteString(fmt.Sprintf("subjects: %d  notes: %d\n", data.Stats.Subjects, data.Stats.Notes))
	b.WriteString(fmt.Sprintf("completion: %d%%", data.Stats.CompletionRate))
	if data.Stats.ProgressView != "" {
		b.WriteString(" " + data.Stats.ProgressView)
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("\nupcoming:") + "\n")
	if len(data.Upcoming) == 0 {
		b.WriteString("  no upcoming tasks\n")
	}
	for _, row := range data.Upcoming {
		b.WriteString(renderTaskRow(row, false) + "\n")
	}

	b.WriteString(sectionStyle.Render("\nrecent notes:") + "\n")
	if len(data.Recent) == 0 {
		b.WriteString("  no notes yet\n")
	}
	for _, row := range data.Recent {
		b.WriteString(renderNoteRow(row, false) + "\n")
	}

	if len(data.Subjects) > 0 {
		b.WriteString(sectionStyle.Render("\nsubject progress:") + "\n")
		for _, row := range data.Subjects {
			b.WriteString(fmt.Sprintf("  %s %s %d/%d (%d%%)\n",
				Swatch(row.Color), row.Name, row.CompletedTasks, row.TotalTasks, row.CompletionRate))
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderTasksPanel(data TasksPanelData) string {
	var b strings.Builder
	b.WriteString("tasks:\n")
	b.WriteString("actions: [j/k]move [s]status [f]filter [d]delete [:]command\n")
	filter := fmt.Sprintf("filter: %s", data.Filter)
	if data.Subject != "" {
		filter += "  subject: " + data.Subject
	}
	b.WriteString(filter + "\n")
	if len(data.Groups) == 0 {
		b.WriteString("\n  no tasks\n")
	}
	for _, group := range data.Groups {
		b.WriteString(sectionStyle.Render(fmt.Sprintf("\n%s (%d):", group.Bucket, len(group.Rows))) + "\n")
		for _, row := range group.Rows {
			b.WriteString(renderTaskRow(row, row.ID == data.SelectedID) + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderNotesPanel(data NotesPanelData) string {
	var b strings.Builder
	b.WriteString("notes:\n")
	b.WriteString("actions: [j/k]move [enter]edit [/]search [d]delete [:]command\n")
	switch {
	case data.Searching:
		b.WriteString(data.SearchView + "\n")
	case data.Search != "":
		b.WriteString(fmt.Sprintf("search: %q\n", data.Search))
	}
	if len(data.Groups) == 0 {
		if data.Search != "" {
			b.WriteString("\n  no matching notes\n")
		} else {
			b.WriteString("\n  no notes\n")
		}
	}
	for _, group := range data.Groups {
		b.WriteString(sectionStyle.Render(fmt.Sprintf("\n%s:", group.Bucket)) + "\n")
		for _, row := range group.Rows {
			b.WriteString(renderNoteRow(row, row.ID == data.SelectedID) + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderSubjectsPanel(data SubjectsPanelData) string {
	var b strings.Builder
	b.WriteString("subjects:\n")
	b.WriteString("actions: [j/k]move [d]delete [:]command\n")
	if len(data.Rows) == 0 {
		b.WriteString("\n  no subjects yet, try :subject <name>\n")
		return strings.TrimSpace(b.String())
	}
	if data.TableView != "" {
		b.WriteString(data.TableView + "\n")
	} else {
		for _, row := range data.Rows {
			cursor := " "
			if row.ID == data.SelectedID {
				cursor = ">"
			}
			b.WriteString(fmt.Sprintf("%s %s %s  %d/%d tasks  %d notes\n",
				cursor, Swatch(row.Color), row.Name, row.CompletedTasks, row.TotalTasks, row.Notes))
		}
	}
	if data.ConfirmDelete != "" {
		b.WriteString(errorStyle.Render(fmt.Sprintf(
			"\ndelete %q with all its tasks and notes? [y]es [n]o", data.ConfirmDelete)) + "\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderEditorPanel(data EditorPanelData) string {
	if !data.Active {
		return ""
	}
	var b strings.Builder
	title := data.Title
	if data.Dirty {
		title += " *"
	}
	b.WriteString(fmt.Sprintf("editing: %s\n", title))
	if data.Subject != "" {
		b.WriteString(fmt.Sprintf("subject: %s\n", data.Subject))
	}
	b.WriteString("keys: [ctrl+s]save [esc]close\n")
	b.WriteString(data.EditorView + "\n")
	if data.LastSavedAt != "" {
		b.WriteString(footerStyle.Render("saved "+data.LastSavedAt) + "\n")
	}
	if data.Preview != "" {
		b.WriteString("\npreview:\n" + data.Preview + "\n")
	}
	return strings.TrimSpace(b.String())
}

// RenderDetail is the right-hand pane for the selected entity.
func RenderDetail(data DetailData) string {
	if strings.TrimSpace(data.Title) == "" {
		return "details:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("details:\n")
	b.WriteString(data.Title + "\n")
	for _, line := range data.Lines {
		b.WriteString(line + "\n")
	}
	if data.Body != "" {
		b.WriteString("\n" + data.Body + "\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: :%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\nglobal:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

func renderTaskRow(row TaskRowData, selected bool) string {
	cursor := " "
	if selected {
		cursor = ">"
	}
	title := row.Title
	if row.Done {
		title = doneStyle.Render(title)
	}
	line := fmt.Sprintf("%s %s [%s] %s", cursor, Swatch(row.SubjectColor), row.Status, title)
	if row.Subject != "" {
		line += " · " + row.Subject
	}
	if row.Due != "" {
		due := "due " + row.Due
		if row.Overdue {
			due = overdueStyle.Render(due)
		}
		line += " · " + due
	}
	return line
}

func renderNoteRow(row NoteRowData, selected bool) string {
	cursor := " "
	if selected {
		cursor = ">"
	}
	line := fmt.Sprintf("%s %s %s", cursor, Swatch(row.SubjectColor), row.Title)
	if row.Subject != "" {
		line += " · " + row.Subject
	}
	if row.Touched != "" {
		line += " · " + row.Touched
	}
	if row.Excerpt != "" {
		line += "\n    " + footerStyle.Render(row.Excerpt)
	}
	return line
}
