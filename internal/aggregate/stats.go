// Package aggregate derives the dashboard, grouping and filtering views from
// entity collections. Every function is pure: inputs are never mutated and
// "now" is always passed in.
package aggregate

import (
	"math"

	"github.com/sandeepkv93/studyd/internal/model"
)

const (
	UpcomingLimit      = 5
	DefaultHorizonDays = 7
	DefaultRecentNotes = 3
)

type Stats struct {
	TotalTasks     int `json:"totalTasks"`
	CompletedTasks int `json:"completedTasks"`
	PendingTasks   int `json:"pendingTasks"`
	SubjectCount   int `json:"subjectCount"`
	NoteCount      int `json:"noteCount"`
}

func (s Stats) CompletionRate() int {
	return completionRate(s.CompletedTasks, s.TotalTasks)
}

func DashboardStats(tasks []model.Task, notes []model.Note, subjects []model.Subject) Stats {
	stats := Stats{
		TotalTasks:   len(tasks),
		SubjectCount: len(subjects),
		NoteCount:    len(notes),
	}
	for _, task := range tasks {
		if task.IsDone() {
			stats.CompletedTasks++
		} else {
			stats.PendingTasks++
		}
	}
	return stats
}

// completionRate is round(completed/total*100), 0 for no tasks, clamped to [0, 100].
func completionRate(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
