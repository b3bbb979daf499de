package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/studyd/internal/aggregate"
	"github.com/sandeepkv93/studyd/internal/model"
	"github.com/sandeepkv93/studyd/internal/views"
)

const excerptLen = 60

func (m Model) renderDashboardView() string {
	now := m.now()
	idx := aggregate.NewSubjectIndex(m.Data.Subjects)
	stats := aggregate.DashboardStats(m.Data.Tasks, m.Data.Notes, m.Data.Subjects)
	rate := stats.CompletionRate()

	upcoming := aggregate.UpcomingTasks(m.Data.Tasks, now, m.cfg.UpcomingHorizonDays)
	upRows := make([]views.TaskRowData, 0, len(upcoming))
	for _, task := range upcoming {
		upRows = append(upRows, m.taskRow(task, idx, now))
	}
	recent := aggregate.RecentNotes(m.Data.Notes, m.cfg.RecentNotesLimit)
	noteRows := make([]views.NoteRowData, 0, len(recent))
	for _, note := range recent {
		noteRows = append(noteRows, m.noteRow(note, idx, now))
	}

	return views.RenderDashboardPanel(views.DashboardPanelData{
		Stats: views.StatsData{
			TotalTasks:     stats.TotalTasks,
			CompletedTasks: stats.CompletedTasks,
			PendingTasks:   stats.PendingTasks,
			Subjects:       stats.SubjectCount,
			Notes:          stats.NoteCount,
			CompletionRate: rate,
			ProgressView:   m.completionBar.ViewAs(float64(rate) / 100),
		},
		Upcoming: upRows,
		Recent:   noteRows,
		Subjects: m.subjectRows(),
	})
}

func (m Model) renderTasksView() string {
	now := m.now()
	idx := aggregate.NewSubjectIndex(m.Data.Subjects)
	filtered := aggregate.FilterTasks(m.Data.Tasks, aggregate.TaskFilter{
		Status:    m.Tasks.Filter,
		SubjectID: m.Tasks.SubjectID,
	})
	groups := aggregate.GroupTasksByDueBucket(filtered, now)
	out := make([]views.TaskGroupData, 0, len(groups))
	for _, group := range groups {
		rows := make([]views.TaskRowData, 0, len(group.Tasks))
		for _, task := range group.Tasks {
			rows = append(rows, m.taskRow(task, idx, now))
		}
		out = append(out, views.TaskGroupData{Bucket: string(group.Bucket), Rows: rows})
	}

	selected := ""
	if task, ok := m.selectedTask(); ok {
		selected = task.ID
	}
	subject := ""
	if m.Tasks.SubjectID != "" {
		subject = idx.Name(m.Tasks.SubjectID)
	}
	return views.RenderTasksPanel(views.TasksPanelData{
		Filter:     filterLabel(m.Tasks.Filter),
		Subject:    subject,
		Groups:     out,
		SelectedID: selected,
	})
}

func (m Model) renderNotesView() string {
	now := m.now()
	idx := aggregate.NewSubjectIndex(m.Data.Subjects)
	notes := aggregate.FilterNotesBySubject(m.Data.Notes, m.Notes.SubjectID)
	notes = aggregate.SortNotesByRecency(aggregate.FilterNotesByText(notes, m.Notes.Search))
	groups := aggregate.GroupNotesByRecencyBucket(notes, now)
	out := make([]views.NoteGroupData, 0, len(groups))
	for _, group := range groups {
		rows := make([]views.NoteRowData, 0, len(group.Notes))
		for _, note := range group.Notes {
			rows = append(rows, m.noteRow(note, idx, now))
		}
		out = append(out, views.NoteGroupData{Bucket: string(group.Bucket), Rows: rows})
	}

	selected := ""
	if note, ok := m.selectedNote(); ok {
		selected = note.ID
	}
	return views.RenderNotesPanel(views.NotesPanelData{
		Search:     m.Notes.Search,
		SearchView: m.searchInput.View(),
		Searching:  m.Notes.Searching,
		Groups:     out,
		SelectedID: selected,
	})
}

func (m Model) renderSubjectsView() string {
	confirm := ""
	if m.Confirm.Active && m.Confirm.Kind == ViewSubjects {
		confirm = m.Confirm.Label
	}
	selected := ""
	if sub, ok := m.selectedSubject(); ok {
		selected = sub.ID
	}
	return views.RenderSubjectsPanel(views.SubjectsPanelData{
		TableView:     m.subjectTable.View(),
		Rows:          m.subjectRows(),
		SelectedID:    selected,
		ConfirmDelete: confirm,
	})
}

func (m Model) renderTaskDetail() string {
	task, ok := m.selectedTask()
	if !ok {
		return views.RenderDetail(views.DetailData{})
	}
	idx := aggregate.NewSubjectIndex(m.Data.Subjects)
	lines := []string{
		"status: " + task.Status.Label(),
		"subject: " + idx.Name(task.SubjectID),
		"due: " + aggregate.FormatDueDate(task.DueDate, m.now()),
		"created: " + task.CreatedAt.Local().Format("Jan 2, 2006 15:04"),
	}
	if m.Confirm.Active && m.Confirm.Kind == ViewTasks {
		lines = append(lines, "", "delete this task? [y]es [n]o")
	}
	return views.RenderDetail(views.DetailData{
		Title: task.Title,
		Lines: lines,
		Body:  task.Description,
	})
}

func (m Model) renderNoteDetail() string {
	note, ok := m.selectedNote()
	if !ok {
		return views.RenderDetail(views.DetailData{})
	}
	idx := aggregate.NewSubjectIndex(m.Data.Subjects)
	lines := []string{
		"subject: " + idx.Name(note.SubjectID),
		"edited: " + note.LastTouched().Local().Format("Jan 2, 2006 15:04"),
	}
	if m.Confirm.Active && m.Confirm.Kind == ViewNotes {
		lines = append(lines, "", "delete this note? [y]es [n]o")
	}
	return views.RenderDetail(views.DetailData{
		Title: note.Title,
		Lines: lines,
		Body:  views.RenderMarkdown(note.Content, m.cfg.DesktopTheme),
	})
}

func (m Model) renderSubjectDetail() string {
	sub, ok := m.selectedSubject()
	if !ok {
		return views.RenderDetail(views.DetailData{})
	}
	sum := aggregate.SubjectStats(sub.ID, m.Data.Tasks, m.Data.Notes)
	return views.RenderDetail(views.DetailData{
		Title: views.Swatch(sub.Color) + " " + sub.Name,
		Lines: []string{
			fmt.Sprintf("tasks: %d (%d done)", sum.TotalTasks, sum.CompletedTasks),
			fmt.Sprintf("completion: %d%% %s", sum.CompletionRate, m.completionBar.ViewAs(float64(sum.CompletionRate)/100)),
			fmt.Sprintf("notes: %d", sum.NoteCount),
			"keys: [t]tasks [n]notes",
		},
		Body: sub.Description,
	})
}

func (m Model) renderEditorView() string {
	note, _ := m.store.GetNote(m.ctx(), m.Editor.NoteID)
	idx := aggregate.NewSubjectIndex(m.Data.Subjects)
	saved := ""
	if !m.Editor.LastSavedAt.IsZero() {
		saved = m.Editor.LastSavedAt.Local().Format("15:04:05")
	}
	return views.RenderEditorPanel(views.EditorPanelData{
		Active:      true,
		Title:       note.Title,
		Subject:     idx.Name(note.SubjectID),
		EditorView:  m.editorArea.View(),
		Preview:     m.previewViewport.View(),
		Dirty:       m.Editor.Dirty,
		LastSavedAt: saved,
	})
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(n.Level, n.Body)
}

func (m Model) subjectRows() []views.SubjectRowData {
	summaries := aggregate.AllSubjectStats(m.Data)
	rows := make([]views.SubjectRowData, 0, len(summaries))
	for i, sum := range summaries {
		sub := m.Data.Subjects[i]
		rows = append(rows, views.SubjectRowData{
			ID:             sub.ID,
			Name:           sub.Name,
			Color:          sub.Color,
			Description:    sub.Description,
			TotalTasks:     sum.TotalTasks,
			CompletedTasks: sum.CompletedTasks,
			CompletionRate: sum.CompletionRate,
			Notes:          sum.NoteCount,
		})
	}
	return rows
}

func (m Model) taskRow(task model.Task, idx aggregate.SubjectIndex, now time.Time) views.TaskRowData {
	row := views.TaskRowData{
		ID:           task.ID,
		Title:        task.Title,
		Subject:      idx.Name(task.SubjectID),
		SubjectColor: idx.Color(task.SubjectID),
		Status:       task.Status.Label(),
		Done:         task.IsDone(),
	}
	if task.HasDueDate() {
		row.Due = aggregate.FormatDueDate(task.DueDate, now)
		row.Overdue = !task.IsDone() && task.DueDate.Before(model.DateOf(now))
	}
	return row
}

func (m Model) noteRow(note model.Note, idx aggregate.SubjectIndex, now time.Time) views.NoteRowData {
	return views.NoteRowData{
		ID:           note.ID,
		Title:        note.Title,
		Subject:      idx.Name(note.SubjectID),
		SubjectColor: idx.Color(note.SubjectID),
		Touched:      string(aggregate.RecencyBucketOf(note.LastTouched(), now)),
		Excerpt:      excerpt(note.Content, excerptLen),
	}
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	m.Notifications = append(m.Notifications, Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    m.now().UTC(),
	})
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
}

func filterLabel(s model.TaskStatus) string {
	if s == "" || s == aggregate.AllStatuses {
		return "all"
	}
	return s.Label()
}

// excerpt flattens content to one line and cuts it at n runes.
func excerpt(content string, n int) string {
	flat := strings.Join(strings.Fields(content), " ")
	runes := []rune(flat)
	if len(runes) <= n {
		return flat
	}
	return string(runes[:n]) + "…"
}
