package aggregate

import (
	"slices"
	"time"

	"github.com/sandeepkv93/studyd/internal/model"
)

// UpcomingTasks returns up to UpcomingLimit open tasks that are undated or
// due no later than horizonDays after today, earliest first, undated last.
func UpcomingTasks(tasks []model.Task, now time.Time, horizonDays int) []model.Task {
	cutoff := model.DateOf(now).AddDays(horizonDays)
	out := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.IsDone() {
			continue
		}
		if task.HasDueDate() && task.DueDate.After(cutoff) {
			continue
		}
		out = append(out, task)
	}
	slices.SortStableFunc(out, compareDue)
	if len(out) > UpcomingLimit {
		out = out[:UpcomingLimit]
	}
	return out
}

func compareDue(a, b model.Task) int {
	switch {
	case !a.HasDueDate() && !b.HasDueDate():
		return 0
	case !a.HasDueDate():
		return 1
	case !b.HasDueDate():
		return -1
	default:
		return a.DueDate.Compare(*b.DueDate)
	}
}

// AllStatuses matches any status in a TaskFilter.
const AllStatuses model.TaskStatus = "all"

// AllSubjects matches any subject in a filter.
const AllSubjects = "all"

type TaskFilter struct {
	Status    model.TaskStatus
	SubjectID string
}

func (f TaskFilter) matches(task model.Task) bool {
	if f.Status != "" && f.Status != AllStatuses && task.Status != f.Status {
		return false
	}
	if f.SubjectID != "" && f.SubjectID != AllSubjects && task.SubjectID != f.SubjectID {
		return false
	}
	return true
}

func FilterTasks(tasks []model.Task, filter TaskFilter) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if filter.matches(task) {
			out = append(out, task)
		}
	}
	return out
}

type DueBucket string

const (
	BucketOverdue   DueBucket = "Overdue"
	BucketToday     DueBucket = "Today"
	BucketTomorrow  DueBucket = "Tomorrow"
	BucketThisWeek  DueBucket = "This Week"
	BucketLater     DueBucket = "Later"
	BucketNoDueDate DueBucket = "No Due Date"
)

// DueBuckets is the display order of task groups.
var DueBuckets = []DueBucket{
	BucketOverdue, BucketToday, BucketTomorrow, BucketThisWeek, BucketLater, BucketNoDueDate,
}

type TaskGroup struct {
	Bucket DueBucket    `json:"bucket"`
	Tasks  []model.Task `json:"tasks"`
}

func DueBucketOf(task model.Task, today model.Date) DueBucket {
	if !task.HasDueDate() {
		return BucketNoDueDate
	}
	due := *task.DueDate
	switch {
	case due.Before(today):
		return BucketOverdue
	case due.Equal(today):
		return BucketToday
	case due.Equal(today.AddDays(1)):
		return BucketTomorrow
	case due.Before(today.AddDays(7)):
		return BucketThisWeek
	default:
		return BucketLater
	}
}

// GroupTasksByDueBucket buckets tasks by calendar distance from now's date.
// Groups come back in DueBuckets order with empty ones left out; tasks keep
// their input order inside a group.
func GroupTasksByDueBucket(tasks []model.Task, now time.Time) []TaskGroup {
	today := model.DateOf(now)
	byBucket := make(map[DueBucket][]model.Task, len(DueBuckets))
	for _, task := range tasks {
		bucket := DueBucketOf(task, today)
		byBucket[bucket] = append(byBucket[bucket], task)
	}
	groups := make([]TaskGroup, 0, len(byBucket))
	for _, bucket := range DueBuckets {
		if items := byBucket[bucket]; len(items) > 0 {
			groups = append(groups, TaskGroup{Bucket: bucket, Tasks: items})
		}
	}
	return groups
}

// FormatDueDate renders a due date relative to now: "Today", "Tomorrow",
// a weekday name for the rest of the coming week, otherwise "Jan 2, 2006".
func FormatDueDate(due *model.Date, now time.Time) string {
	if due == nil || due.IsZero() {
		return "No due date"
	}
	today := model.DateOf(now)
	switch {
	case due.Equal(today):
		return "Today"
	case due.Equal(today.AddDays(1)):
		return "Tomorrow"
	case due.After(today) && due.Before(today.AddDays(7)):
		return due.Weekday().String()
	default:
		return due.Format("Jan 2, 2006")
	}
}
