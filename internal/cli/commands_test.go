package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/studyd/internal/aggregate"
	"github.com/sandeepkv93/studyd/internal/integrity"
	"github.com/sandeepkv93/studyd/internal/model"
	"github.com/sandeepkv93/studyd/internal/store"
)

func TestSubjectAddAndList(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("subject", "add", "Linear", "Algebra", "-d", "MATH 221", "-c", "#ff8800")
	assert.Equal(t, "added subject Linear Algebra (id-1)\n", out)

	var subjects []SubjectView
	resp := h.runJSON(&subjects, "subject", "list")
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, subjects, 1)
	assert.Equal(t, "Linear Algebra", subjects[0].Name)
	assert.Equal(t, "MATH 221", subjects[0].Description)
	assert.Equal(t, "#ff8800", subjects[0].Color)
	assert.Equal(t, testNow, subjects[0].CreatedAt)

	text := h.mustRun("subject", "list")
	assert.Contains(t, text, "Linear Algebra")
	assert.Contains(t, text, "#ff8800")
}

func TestSubjectDefaultColor(t *testing.T) {
	h := newHarness(t)
	var subject model.Subject
	h.runJSON(&subject, "subject", "add", "History")
	assert.Equal(t, model.DefaultSubjectColor, subject.Color)
}

func TestSubjectAddRejectsBlankName(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run("subject", "add", "  ")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "E003")
	assert.Contains(t, stderr, "subject name")
	assert.Equal(t, 0, h.backend.Writes())
	assert.Equal(t, "no subjects\n", h.mustRun("subject", "list"))
}

func TestSubjectListEmpty(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "no subjects\n", h.mustRun("subject", "list"))
}

func TestSubjectEditByName(t *testing.T) {
	h := newHarness(t)
	h.mustRun("subject", "add", "Physics")

	var subject model.Subject
	h.runJSON(&subject, "subject", "edit", "physics", "--name", "Physics II")
	assert.Equal(t, "id-1", subject.ID)
	assert.Equal(t, "Physics II", subject.Name)
	assert.Equal(t, model.DefaultSubjectColor, subject.Color)
}

func TestTaskAddUsesOnlySubject(t *testing.T) {
	h := newHarness(t)
	h.mustRun("subject", "add", "Math")

	var task model.Task
	resp := h.runJSON(&task, "task", "add", "Read", "chapter", "3", "--due", "2026-03-11")
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "id-2", task.ID)
	assert.Equal(t, "Read chapter 3", task.Title)
	assert.Equal(t, "id-1", task.SubjectID)
	assert.Equal(t, model.TaskStatusTodo, task.Status)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2026-03-11", task.DueDate.String())

	text := h.mustRun("task", "list")
	assert.Contains(t, text, "Read chapter 3")
	assert.Contains(t, text, "Tomorrow")
	assert.Contains(t, text, "To Do")
}

func TestTaskAddNeedsSubject(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run("task", "add", "Orphan")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "add a subject first")

	h.mustRun("subject", "add", "Math")
	h.mustRun("subject", "add", "Physics")
	_, stderr, code = h.run("task", "add", "Ambiguous")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "--subject is required")

	_, stderr, code = h.run("task", "add", "Lost", "-s", "Chemistry")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "E002")

	var task model.Task
	h.runJSON(&task, "task", "add", "Lab report", "-s", "physics")
	assert.Equal(t, "id-2", task.SubjectID)
}

func TestTaskAddRejectsBadInput(t *testing.T) {
	h := newHarness(t)
	h.mustRun("subject", "add", "Math")

	_, stderr, code := h.run("task", "add", "Quiz", "--status", "later")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "E003")

	_, stderr, code = h.run("task", "add", "Quiz", "--due", "next week")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "YYYY-MM-DD")

	var tasks []model.Task
	h.runJSON(&tasks, "task", "list")
	assert.Empty(t, tasks)
}

func TestTaskStatusCyclesAndSets(t *testing.T) {
	h := newHarness(t)
	h.mustRun("subject", "add", "Math")
	h.mustRun("task", "add", "Homework")

	assert.Equal(t, "Homework: In Progress\n", h.mustRun("task", "status", "id-2"))
	assert.Equal(t, "Homework: Done\n", h.mustRun("task", "status", "id-2"))
	assert.Equal(t, "Homework: To Do\n", h.mustRun("task", "status", "id-2"))
	assert.Equal(t, "Homework: Done\n", h.mustRun("task", "status", "id-2", "done"))

	var done []model.Task
	h.runJSON(&done, "task", "list", "--status", "done")
	require.Len(t, done, 1)
	var todo []model.Task
	h.runJSON(&todo, "task", "list", "--status", "todo")
	assert.Empty(t, todo)
}

func TestTaskEditAndClearDue(t *testing.T) {
	h := newHarness(t)
	h.mustRun("subject", "add", "Math")
	h.mustRun("task", "add", "Essay", "--due", "2026-03-20", "-d", "draft")

	var task model.Task
	h.runJSON(&task, "task", "edit", "id-2", "--title", "Final essay", "--clear-due")
	assert.Equal(t, "Final essay", task.Title)
	assert.Equal(t, "draft", task.Description)
	assert.Nil(t, task.DueDate)

	h.runJSON(&task, "task", "edit", "id-2", "--due", "2026-04-01")
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2026-04-01", task.DueDate.String())

	h.runJSON(&task, "task", "edit", "id-2", "--due", "")
	assert.Nil(t, task.DueDate)
}

func TestTaskNotFound(t *testing.T) {
	h := newHarness(t)

	_, stderr, code := h.run("task", "edit", "missing", "--title", "x")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "Error [E002]")

	resp := h.runJSON(nil, "task", "status", "missing")
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestTaskListGrouped(t *testing.T) {
	h := newHarness(t)
	h.mustRun("subject", "add", "Math")
	h.mustRun("task", "add", "Late", "--due", "2026-03-01")
	h.mustRun("task", "add", "Soon", "--due", "2026-03-10")
	h.mustRun("task", "add", "Someday")

	var groups []aggregate.TaskGroup
	h.runJSON(&groups, "task", "list", "--group")
	require.NotEmpty(t, groups)
	assert.Equal(t, aggregate.BucketOverdue, groups[0].Bucket)
	assert.Equal(t, "Late", groups[0].Tasks[0].Title)

	text := h.mustRun("task", "list", "-g")
	assert.Contains(t, text, "Today (1)")
	assert.Contains(t, text, "No Due Date (1)")
}

func TestTaskDelete(t *testing.T) {
	h := newHarness(t)
	h.mustRun("subject", "add", "Math")
	h.mustRun("task", "add", "Homework")

	assert.Equal(t, "deleted task id-2\n", h.mustRun("task", "rm", "id-2"))
	assert.Equal(t, "no tasks\n", h.mustRun("task", "list"))
}

func TestNoteAddShowAndSearch(t *testing.T) {
	h := newHarness(t)
	h.mustRun("subject", "add", "Math")

	file := filepath.Join(t.TempDir(), "limits.md")
	require.NoError(t, os.WriteFile(file, []byte("# Limits\n\nepsilon delta"), 0o644))

	var note model.Note
	h.runJSON(&note, "note", "add", "Limits", "-f", file)
	assert.Equal(t, "id-2", note.ID)
	assert.Equal(t, "# Limits\n\nepsilon delta", note.Content)
	assert.Nil(t, note.UpdatedAt)

	h.runJSON(&note, "note", "add", "-c", "scratch")
	assert.Equal(t, model.UntitledNote, note.Title)

	raw := h.mustRun("note", "show", "id-2", "--raw")
	assert.Contains(t, raw, "Limits\nMath · edited ")
	assert.Contains(t, raw, "epsilon delta")

	rendered := h.mustRun("note", "show", "id-2")
	assert.Contains(t, rendered, "epsilon")

	var hits []model.Note
	h.runJSON(&hits, "note", "search", "EPSILON")
	require.Len(t, hits, 1)
	assert.Equal(t, "id-2", hits[0].ID)

	h.runJSON(&hits, "note", "search", "nothing-here")
	assert.Empty(t, hits)
}

func TestNoteEditStampsUpdatedAt(t *testing.T) {
	h := newHarness(t)
	h.mustRun("subject", "add", "Math")
	h.mustRun("note", "add", "Draft")

	var note model.Note
	h.runJSON(&note, "note", "edit", "id-2", "--content", "body")
	assert.Equal(t, "body", note.Content)
	require.NotNil(t, note.UpdatedAt)
	assert.Equal(t, testNow, *note.UpdatedAt)

	var groups []aggregate.NoteGroup
	h.runJSON(&groups, "note", "list", "--group")
	require.Len(t, groups, 1)
	assert.Equal(t, aggregate.BucketRecentToday, groups[0].Bucket)

	assert.Equal(t, "deleted note id-2\n", h.mustRun("note", "delete", "id-2"))
	assert.Equal(t, "no notes\n", h.mustRun("note", "list"))
}

func TestSubjectDeleteCascades(t *testing.T) {
	h := newHarness(t)
	h.mustRun("subject", "add", "Math")    // id-1
	h.mustRun("subject", "add", "Physics") // id-2
	h.mustRun("task", "add", "Proofs", "-s", "Math")
	h.mustRun("task", "add", "Lab", "-s", "Physics")
	h.mustRun("note", "add", "Sets", "-s", "Math")
	h.mustRun("note", "add", "Forces", "-s", "Physics")

	var report integrity.CascadeReport
	resp := h.runJSON(&report, "subject", "delete", "Math")
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "id-1", report.SubjectID)
	assert.Equal(t, []string{"id-3"}, report.DeletedTasks)
	assert.Equal(t, []string{"id-5"}, report.DeletedNotes)
	assert.True(t, report.SubjectDeleted)

	var tasks []model.Task
	h.runJSON(&tasks, "task", "list")
	require.Len(t, tasks, 1)
	assert.Equal(t, "Lab", tasks[0].Title)

	var notes []model.Note
	h.runJSON(&notes, "note", "list")
	require.Len(t, notes, 1)
	assert.Equal(t, "Forces", notes[0].Title)

	out := h.mustRun("subject", "rm", "id-2")
	assert.Equal(t, "deleted subject Physics with 1 task(s) and 1 note(s)\n", out)
}

func TestSubjectDeleteReportsPersistenceFailure(t *testing.T) {
	h := newHarness(t)
	h.mustRun("subject", "add", "Math")
	h.mustRun("task", "add", "Proofs")

	h.backend.FailWrites = errors.New("disk full")
	_, stderr, code := h.run("subject", "delete", "Math")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "Error [E004]: delete stopped after 0 task(s) and 0 note(s)")
	assert.Contains(t, stderr, "disk full")

	h.backend.FailWrites = nil
	var subjects []SubjectView
	h.runJSON(&subjects, "subject", "list")
	assert.Len(t, subjects, 1)
}

func TestSubjectStats(t *testing.T) {
	h := newHarness(t)
	h.mustRun("subject", "add", "Math")
	h.mustRun("task", "add", "One", "--status", "done")
	h.mustRun("task", "add", "Two")
	h.mustRun("note", "add", "N")

	out := h.mustRun("subject", "stats", "Math")
	assert.Equal(t, "Math: 1/2 tasks done (50%), 1 note(s)\n", out)
}

func TestDashboardText(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("dashboard")
	assert.Contains(t, out, "no upcoming tasks")
	assert.Contains(t, out, "no notes yet")

	h.mustRun("subject", "add", "Math")
	h.mustRun("task", "add", "Homework", "--due", "2026-03-11")
	out = h.mustRun("dashboard")
	assert.Contains(t, out, "Homework")
	assert.Contains(t, out, "subject progress:")
}

func TestDoctorReportsAndFixesDangling(t *testing.T) {
	h := newHarness(t)
	h.mustRun("subject", "add", "Math")
	h.mustRun("task", "add", "Kept")

	// a task left behind by an interrupted cascade
	st := store.New(h.backend, store.WithIDGenerator(store.NewSequenceGenerator("orphan-")))
	_, err := st.AddTask(t.Context(), model.TaskPatch{Title: model.Ptr("Stray"), SubjectID: model.Ptr("gone")})
	require.NoError(t, err)

	out, stderr, code := h.run("doctor")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, out, `task orphan-1 "Stray" -> missing subject gone`)
	assert.Contains(t, stderr, "E006")

	resp := h.runJSON(nil, "doctor")
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeDangling, resp.Error.Code)
	assert.NotNil(t, resp.Error.Details)

	var result DoctorResult
	h.runJSON(&result, "doctor", "--fix")
	assert.True(t, result.Fixed)
	require.Len(t, result.Dangling.Tasks, 1)

	out = h.mustRun("doctor")
	assert.Contains(t, out, "no dangling references")

	var tasks []model.Task
	h.runJSON(&tasks, "task", "list")
	require.Len(t, tasks, 1)
	assert.Equal(t, "Kept", tasks[0].Title)
}

func TestExportImportRoundTrip(t *testing.T) {
	src := newHarness(t)
	src.mustRun("subject", "add", "Math")
	src.mustRun("task", "add", "Homework", "--due", "2026-03-12")
	src.mustRun("note", "add", "Limits", "-c", "# Limits")

	for _, name := range []string{"backup.yaml", "backup.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			var sum TransferSummary
			src.runJSON(&sum, "export", path)
			assert.Equal(t, TransferSummary{Path: path, Version: 1, Subjects: 1, Tasks: 1, Notes: 1}, sum)

			dst := newHarness(t)
			dst.mustRun("subject", "add", "Overwritten")
			out := dst.mustRun("import", path)
			assert.Contains(t, out, "imported 1 subject(s), 1 task(s), 1 note(s)")

			var tasks []model.Task
			dst.runJSON(&tasks, "task", "list")
			require.Len(t, tasks, 1)
			assert.Equal(t, "Homework", tasks[0].Title)
			assert.Equal(t, "2026-03-12", tasks[0].DueDate.String())

			var subjects []SubjectView
			dst.runJSON(&subjects, "subject", "list")
			require.Len(t, subjects, 1)
			assert.Equal(t, "Math", subjects[0].Name)
		})
	}
}

func TestImportRejectsUnknownExtension(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "backup.toml")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, stderr, code := h.run("import", path)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "E003")
}

func TestJSONBackendPersistsAcrossRuns(t *testing.T) {
	isolateEnv(t)
	data := filepath.Join(t.TempDir(), "studyd.json")
	logFile := filepath.Join(t.TempDir(), "studyd.log")
	t.Setenv("STUDYD_LOG_FILE", logFile)

	run := func(args ...string) (string, int) {
		var stdout, stderr bytes.Buffer
		code := execute(&RootOptions{}, append(args, "--backend", "json", "--data", data), &stdout, &stderr)
		return stdout.String(), code
	}

	out, code := run("subject", "add", "Math")
	require.Equal(t, ExitSuccess, code, out)
	_, err := os.Stat(data)
	require.NoError(t, err)

	out, code = run("subject", "list")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Math")

	_, err = os.Stat(logFile)
	assert.NoError(t, err)
}
