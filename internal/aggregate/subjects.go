package aggregate

import "github.com/sandeepkv93/studyd/internal/model"

const UnknownSubject = "Unknown Subject"

type SubjectSummary struct {
	SubjectID      string `json:"subjectId"`
	TotalTasks     int    `json:"totalTasks"`
	CompletedTasks int    `json:"completedTasks"`
	CompletionRate int    `json:"completionRate"`
	NoteCount      int    `json:"noteCount"`
}

func SubjectStats(subjectID string, tasks []model.Task, notes []model.Note) SubjectSummary {
	summary := SubjectSummary{SubjectID: subjectID}
	for _, task := range tasks {
		if task.SubjectID != subjectID {
			continue
		}
		summary.TotalTasks++
		if task.IsDone() {
			summary.CompletedTasks++
		}
	}
	for _, note := range notes {
		if note.SubjectID == subjectID {
			summary.NoteCount++
		}
	}
	summary.CompletionRate = completionRate(summary.CompletedTasks, summary.TotalTasks)
	return summary
}

// AllSubjectStats returns one summary per subject in snapshot order.
func AllSubjectStats(snap model.Snapshot) []SubjectSummary {
	out := make([]SubjectSummary, 0, len(snap.Subjects))
	for _, subject := range snap.Subjects {
		out = append(out, SubjectStats(subject.ID, snap.Tasks, snap.Notes))
	}
	return out
}

// SubjectIndex resolves subject ids for display.
type SubjectIndex map[string]model.Subject

func NewSubjectIndex(subjects []model.Subject) SubjectIndex {
	idx := make(SubjectIndex, len(subjects))
	for _, subject := range subjects {
		idx[subject.ID] = subject
	}
	return idx
}

func (idx SubjectIndex) Lookup(id string) (model.Subject, bool) {
	subject, ok := idx[id]
	return subject, ok
}

// Name falls back to UnknownSubject for dangling ids.
func (idx SubjectIndex) Name(id string) string {
	if subject, ok := idx.Lookup(id); ok {
		return subject.Name
	}
	return UnknownSubject
}

// Color falls back to model.DefaultSubjectColor.
func (idx SubjectIndex) Color(id string) string {
	if subject, ok := idx.Lookup(id); ok && subject.Color != "" {
		return subject.Color
	}
	return model.DefaultSubjectColor
}
