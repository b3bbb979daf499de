package cli

import (
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/studyd/internal/aggregate"
	"github.com/sandeepkv93/studyd/internal/model"
	"github.com/sandeepkv93/studyd/internal/views"
)

type Dashboard struct {
	Stats          aggregate.Stats            `json:"stats"`
	CompletionRate int                        `json:"completionRate"`
	Upcoming       []model.Task               `json:"upcoming"`
	RecentNotes    []model.Note               `json:"recentNotes"`
	Subjects       []aggregate.SubjectSummary `json:"subjects"`
}

func NewDashboardCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show totals, upcoming tasks and recent notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(rootOpts, cmd, func(rt *runtime) error {
				snap := rt.store.Snapshot(cmd.Context())
				dash := buildDashboard(snap, rt)
				return rt.out.Success(dash, renderDashboard(dash, snap, rt))
			})
		},
	}
}

func buildDashboard(snap model.Snapshot, rt *runtime) Dashboard {
	stats := aggregate.DashboardStats(snap.Tasks, snap.Notes, snap.Subjects)
	return Dashboard{
		Stats:          stats,
		CompletionRate: stats.CompletionRate(),
		Upcoming:       aggregate.UpcomingTasks(snap.Tasks, rt.now(), rt.cfg.UpcomingHorizonDays),
		RecentNotes:    aggregate.RecentNotes(snap.Notes, rt.cfg.RecentNotesLimit),
		Subjects:       aggregate.AllSubjectStats(snap),
	}
}

func renderDashboard(dash Dashboard, snap model.Snapshot, rt *runtime) string {
	now := rt.now()
	idx := aggregate.NewSubjectIndex(snap.Subjects)

	upcoming := make([]views.TaskRowData, 0, len(dash.Upcoming))
	for _, task := range dash.Upcoming {
		row := views.TaskRowData{
			ID:           task.ID,
			Title:        task.Title,
			Subject:      idx.Name(task.SubjectID),
			SubjectColor: idx.Color(task.SubjectID),
			Status:       task.Status.Label(),
		}
		if task.HasDueDate() {
			row.Due = aggregate.FormatDueDate(task.DueDate, now)
			row.Overdue = task.DueDate.Before(model.DateOf(now))
		}
		upcoming = append(upcoming, row)
	}
	recent := make([]views.NoteRowData, 0, len(dash.RecentNotes))
	for _, note := range dash.RecentNotes {
		recent = append(recent, views.NoteRowData{
			ID:           note.ID,
			Title:        note.Title,
			Subject:      idx.Name(note.SubjectID),
			SubjectColor: idx.Color(note.SubjectID),
			Touched:      string(aggregate.RecencyBucketOf(note.LastTouched(), now)),
		})
	}
	subjects := make([]views.SubjectRowData, 0, len(dash.Subjects))
	for i, sum := range dash.Subjects {
		subjects = append(subjects, views.SubjectRowData{
			ID:             sum.SubjectID,
			Name:           snap.Subjects[i].Name,
			Color:          snap.Subjects[i].Color,
			TotalTasks:     sum.TotalTasks,
			CompletedTasks: sum.CompletedTasks,
			CompletionRate: sum.CompletionRate,
			Notes:          sum.NoteCount,
		})
	}

	return views.RenderDashboardPanel(views.DashboardPanelData{
		Stats: views.StatsData{
			TotalTasks:     dash.Stats.TotalTasks,
			CompletedTasks: dash.Stats.CompletedTasks,
			PendingTasks:   dash.Stats.PendingTasks,
			Subjects:       dash.Stats.SubjectCount,
			Notes:          dash.Stats.NoteCount,
			CompletionRate: dash.CompletionRate,
		},
		Upcoming: upcoming,
		Recent:   recent,
		Subjects: subjects,
	})
}
