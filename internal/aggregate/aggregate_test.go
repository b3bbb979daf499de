package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/studyd/internal/model"
)

// Monday 9 Feb 2026, mid-morning.
var now = time.Date(2026, 2, 9, 10, 30, 0, 0, time.UTC)

func due(days int) *model.Date {
	d := model.DateOf(now).AddDays(days)
	return &d
}

func task(id string, status model.TaskStatus, dueDate *model.Date) model.Task {
	return model.Task{ID: id, Title: id, SubjectID: "s1", Status: status, DueDate: dueDate}
}

func ids[T interface{ EntityID() string }](items []T) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.EntityID())
	}
	return out
}

func TestDashboardStats_Counts(t *testing.T) {
	tasks := []model.Task{
		task("a", model.TaskStatusDone, nil),
		task("b", model.TaskStatusTodo, nil),
		task("c", model.TaskStatusInProgress, nil),
	}
	stats := DashboardStats(tasks, []model.Note{{ID: "n"}}, []model.Subject{{ID: "s1"}, {ID: "s2"}})
	assert.Equal(t, Stats{TotalTasks: 3, CompletedTasks: 1, PendingTasks: 2, SubjectCount: 2, NoteCount: 1}, stats)
	assert.Equal(t, 33, stats.CompletionRate())
}

func TestCompletionRate_Bounds(t *testing.T) {
	assert.Equal(t, 0, DashboardStats(nil, nil, nil).CompletionRate())
	for total := 0; total <= 40; total++ {
		for completed := 0; completed <= total; completed++ {
			rate := Stats{TotalTasks: total, CompletedTasks: completed}.CompletionRate()
			require.GreaterOrEqual(t, rate, 0)
			require.LessOrEqual(t, rate, 100)
		}
	}
	assert.Equal(t, 67, Stats{TotalTasks: 3, CompletedTasks: 2}.CompletionRate())
	assert.Equal(t, 50, Stats{TotalTasks: 2, CompletedTasks: 1}.CompletionRate())
}

func TestUpcomingTasks_FilterSortTruncate(t *testing.T) {
	tasks := []model.Task{
		task("undated", model.TaskStatusTodo, nil),
		task("far", model.TaskStatusTodo, due(8)),
		task("edge", model.TaskStatusTodo, due(7)),
		task("done", model.TaskStatusDone, due(1)),
		task("overdue", model.TaskStatusInProgress, due(-3)),
		task("soon", model.TaskStatusTodo, due(2)),
		task("today", model.TaskStatusTodo, due(0)),
	}
	got := UpcomingTasks(tasks, now, DefaultHorizonDays)
	assert.Equal(t, []string{"overdue", "today", "soon", "edge", "undated"}, ids(got))
	assert.Equal(t, "undated", tasks[0].ID, "input must not be reordered")
}

func TestUpcomingTasks_LimitAndStableTies(t *testing.T) {
	var tasks []model.Task
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		tasks = append(tasks, task(id, model.TaskStatusTodo, due(1)))
	}
	first := UpcomingTasks(tasks, now, DefaultHorizonDays)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(first))
	assert.Equal(t, ids(first), ids(UpcomingTasks(tasks, now, DefaultHorizonDays)))
}

func TestGroupTasksByDueBucket_Order(t *testing.T) {
	tasks := []model.Task{
		task("none", model.TaskStatusTodo, nil),
		task("later", model.TaskStatusTodo, due(7)),
		task("week", model.TaskStatusTodo, due(6)),
		task("tomorrow", model.TaskStatusTodo, due(1)),
		task("today", model.TaskStatusTodo, due(0)),
		task("late", model.TaskStatusTodo, due(-1)),
		task("week2", model.TaskStatusTodo, due(2)),
	}
	groups := GroupTasksByDueBucket(tasks, now)
	require.Len(t, groups, 6)
	want := map[DueBucket][]string{
		BucketOverdue:   {"late"},
		BucketToday:     {"today"},
		BucketTomorrow:  {"tomorrow"},
		BucketThisWeek:  {"week", "week2"},
		BucketLater:     {"later"},
		BucketNoDueDate: {"none"},
	}
	for i, group := range groups {
		assert.Equal(t, DueBuckets[i], group.Bucket)
		assert.Equal(t, want[group.Bucket], ids(group.Tasks))
	}
}

func TestGroupTasksByDueBucket_OmitsEmpty(t *testing.T) {
	groups := GroupTasksByDueBucket([]model.Task{task("x", model.TaskStatusTodo, due(30))}, now)
	require.Len(t, groups, 1)
	assert.Equal(t, BucketLater, groups[0].Bucket)
	assert.Empty(t, GroupTasksByDueBucket(nil, now))
}

func TestGroupTasksByDueBucket_TodayIgnoresTimeOfDay(t *testing.T) {
	for _, raw := range []string{"2026-02-09", "2026-02-09T00:00:00Z", "2026-02-09T23:59:59Z"} {
		d, err := model.ParseDate(raw)
		require.NoError(t, err)
		for _, at := range []time.Time{
			time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 2, 9, 23, 59, 59, 0, time.UTC),
		} {
			groups := GroupTasksByDueBucket([]model.Task{task("t", model.TaskStatusTodo, &d)}, at)
			require.Len(t, groups, 1)
			assert.Equal(t, BucketToday, groups[0].Bucket, "due %s at %s", raw, at)
		}
	}
}

func TestScenario_SubjectTaskBucketsAndCompletion(t *testing.T) {
	t1 := model.Task{ID: "T1", SubjectID: "S1", Status: model.TaskStatusTodo, DueDate: due(2)}
	groups := GroupTasksByDueBucket([]model.Task{t1}, now)
	require.Len(t, groups, 1)
	assert.Equal(t, BucketThisWeek, groups[0].Bucket)
	assert.Equal(t, []string{"T1"}, ids(UpcomingTasks([]model.Task{t1}, now, DefaultHorizonDays)))

	t1.Status = model.TaskStatusDone
	assert.Empty(t, UpcomingTasks([]model.Task{t1}, now, DefaultHorizonDays))
}

func at(d time.Duration) *time.Time {
	ts := now.Add(d)
	return &ts
}

func TestRecentNotes_NonIncreasing(t *testing.T) {
	notes := []model.Note{
		{ID: "old", CreatedAt: now.Add(-72 * time.Hour)},
		{ID: "edited", CreatedAt: now.Add(-96 * time.Hour), UpdatedAt: at(-time.Hour)},
		{ID: "new", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "mid", CreatedAt: now.Add(-24 * time.Hour)},
	}
	got := RecentNotes(notes, DefaultRecentNotes)
	assert.Equal(t, []string{"edited", "new", "mid"}, ids(got))

	all := SortNotesByRecency(notes)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].LastTouched().After(all[i-1].LastTouched()))
	}
	assert.Equal(t, "old", notes[0].ID, "input must not be reordered")
}

func TestRecentNotes_IdenticalTimestampsStable(t *testing.T) {
	stamp := now.Add(-time.Hour)
	notes := []model.Note{
		{ID: "first", CreatedAt: stamp},
		{ID: "second", CreatedAt: now.Add(-5 * time.Hour), UpdatedAt: &stamp},
	}
	first := RecentNotes(notes, 3)
	require.Len(t, first, 2)
	for i := 0; i < 5; i++ {
		assert.Equal(t, ids(first), ids(RecentNotes(notes, 3)))
	}
	assert.Empty(t, RecentNotes(notes, 0))
}

func TestGroupNotesByRecencyBucket(t *testing.T) {
	// "boundary" is exactly 7x24h before now, so it misses This Week.
	notes := []model.Note{
		{ID: "today", CreatedAt: time.Date(2026, 2, 9, 0, 5, 0, 0, time.UTC)},
		{ID: "yesterday", CreatedAt: time.Date(2026, 2, 8, 23, 0, 0, 0, time.UTC)},
		{ID: "week", CreatedAt: time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)},
		{ID: "boundary", CreatedAt: now.Add(-7 * 24 * time.Hour)},
		{ID: "month", CreatedAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)},
		{ID: "older", CreatedAt: time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)},
		{ID: "lastyear", CreatedAt: time.Date(2025, 2, 9, 9, 0, 0, 0, time.UTC)},
	}
	groups := GroupNotesByRecencyBucket(notes, now)
	got := map[RecencyBucket][]string{}
	var order []RecencyBucket
	for _, g := range groups {
		got[g.Bucket] = ids(g.Notes)
		order = append(order, g.Bucket)
	}
	assert.Equal(t, RecencyBuckets, order)
	assert.Equal(t, []string{"today"}, got[BucketRecentToday])
	assert.Equal(t, []string{"yesterday"}, got[BucketRecentYesterday])
	assert.Equal(t, []string{"week"}, got[BucketRecentThisWeek])
	assert.Equal(t, []string{"boundary", "month"}, got[BucketRecentThisMonth])
	assert.Equal(t, []string{"older", "lastyear"}, got[BucketRecentOlder])
}

func TestGroupNotesByRecencyBucket_UsesUpdatedAt(t *testing.T) {
	notes := []model.Note{{ID: "n", CreatedAt: now.AddDate(-1, 0, 0), UpdatedAt: at(-time.Minute)}}
	groups := GroupNotesByRecencyBucket(notes, now)
	require.Len(t, groups, 1)
	assert.Equal(t, BucketRecentToday, groups[0].Bucket)
}

func TestFilterNotesByText(t *testing.T) {
	notes := []model.Note{
		{ID: "a", Title: "Photosynthesis", Content: "light reactions"},
		{ID: "b", Title: "Krebs cycle", Content: "Citric ACID"},
		{ID: "c", Title: "STRASSE", Content: ""},
	}
	assert.Equal(t, []string{"a"}, ids(FilterNotesByText(notes, "PHOTO")))
	assert.Equal(t, []string{"b"}, ids(FilterNotesByText(notes, "acid")))
	assert.Equal(t, []string{"c"}, ids(FilterNotesByText(notes, "straße")))
	assert.Equal(t, []string{"a", "b", "c"}, ids(FilterNotesByText(notes, "   ")))
	assert.Empty(t, FilterNotesByText(notes, "mitosis"))
}

func TestFilterTasksAndNotesBySubject(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", SubjectID: "s1", Status: model.TaskStatusTodo},
		{ID: "2", SubjectID: "s2", Status: model.TaskStatusDone},
		{ID: "3", SubjectID: "s1", Status: model.TaskStatusDone},
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids(FilterTasks(tasks, TaskFilter{Status: AllStatuses, SubjectID: AllSubjects})))
	assert.Equal(t, []string{"2", "3"}, ids(FilterTasks(tasks, TaskFilter{Status: model.TaskStatusDone})))
	assert.Equal(t, []string{"3"}, ids(FilterTasks(tasks, TaskFilter{Status: model.TaskStatusDone, SubjectID: "s1"})))

	notes := []model.Note{{ID: "x", SubjectID: "s1"}, {ID: "y", SubjectID: "s2"}}
	assert.Equal(t, []string{"y"}, ids(FilterNotesBySubject(notes, "s2")))
	assert.Len(t, FilterNotesBySubject(notes, AllSubjects), 2)
}

func TestSubjectStats(t *testing.T) {
	snap := model.Snapshot{
		Subjects: []model.Subject{{ID: "s1", Name: "Bio"}, {ID: "s2", Name: "Math"}},
		Tasks: []model.Task{
			{ID: "1", SubjectID: "s1", Status: model.TaskStatusDone},
			{ID: "2", SubjectID: "s1", Status: model.TaskStatusTodo},
			{ID: "3", SubjectID: "s1", Status: model.TaskStatusDone},
		},
		Notes: []model.Note{{ID: "n", SubjectID: "s1"}},
	}
	bio := SubjectStats("s1", snap.Tasks, snap.Notes)
	assert.Equal(t, SubjectSummary{SubjectID: "s1", TotalTasks: 3, CompletedTasks: 2, CompletionRate: 67, NoteCount: 1}, bio)

	all := AllSubjectStats(snap)
	require.Len(t, all, 2)
	assert.Equal(t, 0, all[1].CompletionRate)
	assert.Equal(t, 0, all[1].TotalTasks)
}

func TestSubjectIndexFallback(t *testing.T) {
	idx := NewSubjectIndex([]model.Subject{{ID: "s1", Name: "Bio", Color: "#ff0000"}})
	assert.Equal(t, "Bio", idx.Name("s1"))
	assert.Equal(t, UnknownSubject, idx.Name("gone"))
	assert.Equal(t, "#ff0000", idx.Color("s1"))
	assert.Equal(t, model.DefaultSubjectColor, idx.Color("gone"))
}

func TestFormatDueDate(t *testing.T) {
	assert.Equal(t, "No due date", FormatDueDate(nil, now))
	assert.Equal(t, "Today", FormatDueDate(due(0), now))
	assert.Equal(t, "Tomorrow", FormatDueDate(due(1), now))
	assert.Equal(t, "Wednesday", FormatDueDate(due(2), now))
	assert.Equal(t, "Feb 16, 2026", FormatDueDate(due(7), now))
	assert.Equal(t, "Feb 8, 2026", FormatDueDate(due(-1), now))
}
