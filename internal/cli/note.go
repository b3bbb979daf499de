package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/studyd/internal/aggregate"
	"github.com/sandeepkv93/studyd/internal/model"
	"github.com/sandeepkv93/studyd/internal/views"
)

func NewNoteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"notes"},
		Short:   "Manage markdown notes",
	}
	cmd.AddCommand(newNoteAddCommand(rootOpts))
	cmd.AddCommand(newNoteListCommand(rootOpts))
	cmd.AddCommand(newNoteShowCommand(rootOpts))
	cmd.AddCommand(newNoteEditCommand(rootOpts))
	cmd.AddCommand(newNoteDeleteCommand(rootOpts))
	cmd.AddCommand(newNoteSearchCommand(rootOpts))
	return cmd
}

func stdinReader(cmd *cobra.Command) func() ([]byte, error) {
	return func() ([]byte, error) { return io.ReadAll(cmd.InOrStdin()) }
}

func newNoteAddCommand(rootOpts *RootOptions) *cobra.Command {
	var subjectRef, content, file string
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Create a note",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(rootOpts, cmd, func(rt *runtime) error {
				subject, err := resolveSubject(cmd.Context(), rt.store, subjectRef)
				if err != nil {
					return err
				}
				patch := model.NotePatch{
					Title:     model.Ptr(strings.Join(args, " ")),
					SubjectID: model.Ptr(subject.ID),
				}
				body, ok, err := readContent(content, file, stdinReader(cmd))
				if err != nil {
					return err
				}
				if ok {
					patch.Content = model.Ptr(body)
				}
				note, err := rt.store.AddNote(cmd.Context(), patch)
				if err != nil {
					return err
				}
				return rt.out.Success(note, fmt.Sprintf("added note %s (%s) to %s", note.Title, note.ID, subject.Name))
			})
		},
	}
	cmd.Flags().StringVarP(&subjectRef, "subject", "s", "", "subject id or name")
	cmd.Flags().StringVarP(&content, "content", "c", "", "note body (markdown)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the body from a file, - for stdin")
	return cmd
}

func newNoteListCommand(rootOpts *RootOptions) *cobra.Command {
	var subjectRef string
	var group bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notes, most recently edited first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(rootOpts, cmd, func(rt *runtime) error {
				subjectID, err := subjectFilter(cmd.Context(), rt.store, subjectRef)
				if err != nil {
					return err
				}
				snap := rt.store.Snapshot(cmd.Context())
				notes := aggregate.SortNotesByRecency(aggregate.FilterNotesBySubject(snap.Notes, subjectID))
				return writeNotes(rt, notes, aggregate.NewSubjectIndex(snap.Subjects), group)
			})
		},
	}
	cmd.Flags().StringVarP(&subjectRef, "subject", "s", "", "filter by subject id or name")
	cmd.Flags().BoolVarP(&group, "group", "g", false, "group by last edit")
	return cmd
}

func newNoteSearchCommand(rootOpts *RootOptions) *cobra.Command {
	var subjectRef string
	var group bool
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Find notes whose title or body contains a term",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(rootOpts, cmd, func(rt *runtime) error {
				subjectID, err := subjectFilter(cmd.Context(), rt.store, subjectRef)
				if err != nil {
					return err
				}
				snap := rt.store.Snapshot(cmd.Context())
				notes := aggregate.FilterNotesBySubject(snap.Notes, subjectID)
				notes = aggregate.FilterNotesByText(notes, strings.Join(args, " "))
				return writeNotes(rt, aggregate.SortNotesByRecency(notes), aggregate.NewSubjectIndex(snap.Subjects), group)
			})
		},
	}
	cmd.Flags().StringVarP(&subjectRef, "subject", "s", "", "limit to a subject id or name")
	cmd.Flags().BoolVarP(&group, "group", "g", false, "group by last edit")
	return cmd
}

func writeNotes(rt *runtime, notes []model.Note, idx aggregate.SubjectIndex, group bool) error {
	now := rt.now()
	if group {
		groups := aggregate.GroupNotesByRecencyBucket(notes, now)
		return rt.out.Success(groups, renderNoteGroups(groups, idx))
	}
	rows := make([][]string, 0, len(notes))
	for _, note := range notes {
		rows = append(rows, []string{
			note.ID, note.Title, idx.Name(note.SubjectID),
			note.LastTouched().In(now.Location()).Format("Jan 2, 2006 15:04"),
		})
	}
	text := renderTable([]string{"ID", "TITLE", "SUBJECT", "EDITED"}, rows)
	if text == "" {
		text = "no notes"
	}
	return rt.out.Success(notes, text)
}

func renderNoteGroups(groups []aggregate.NoteGroup, idx aggregate.SubjectIndex) string {
	if len(groups) == 0 {
		return "no notes"
	}
	var b strings.Builder
	for i, group := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s (%d)\n", group.Bucket, len(group.Notes))
		for _, note := range group.Notes {
			fmt.Fprintf(&b, "  %s · %s (%s)\n", note.Title, idx.Name(note.SubjectID), note.ID)
		}
	}
	return b.String()
}

func newNoteShowCommand(rootOpts *RootOptions) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Render a note as markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(rootOpts, cmd, func(rt *runtime) error {
				note, err := rt.store.GetNote(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				subject, _ := rt.store.GetSubject(cmd.Context(), note.SubjectID)
				name := subject.Name
				if name == "" {
					name = aggregate.UnknownSubject
				}
				header := fmt.Sprintf("%s\n%s · edited %s\n", note.Title, name,
					note.LastTouched().In(rt.now().Location()).Format(time.RFC1123))
				body := note.Content
				if !raw {
					body = views.RenderMarkdown(note.Content, rt.cfg.DesktopTheme)
				}
				return rt.out.Success(note, header+"\n"+body)
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the markdown source")
	return cmd
}

func newNoteEditCommand(rootOpts *RootOptions) *cobra.Command {
	var title, content, file, subjectRef string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a note's title, body or subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(rootOpts, cmd, func(rt *runtime) error {
				var patch model.NotePatch
				if cmd.Flags().Changed("title") {
					patch.Title = model.Ptr(title)
				}
				if cmd.Flags().Changed("content") || cmd.Flags().Changed("file") {
					body, _, err := readContent(content, file, stdinReader(cmd))
					if err != nil {
						return err
					}
					patch.Content = model.Ptr(body)
				}
				if cmd.Flags().Changed("subject") {
					subject, err := resolveSubject(cmd.Context(), rt.store, subjectRef)
					if err != nil {
						return err
					}
					patch.SubjectID = model.Ptr(subject.ID)
				}
				note, err := rt.store.UpdateNote(cmd.Context(), args[0], patch)
				if err != nil {
					return err
				}
				return rt.out.Success(note, fmt.Sprintf("updated note %s (%s)", note.Title, note.ID))
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "new body")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the new body from a file, - for stdin")
	cmd.Flags().StringVarP(&subjectRef, "subject", "s", "", "move to subject id or name")
	return cmd
}

func newNoteDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(rootOpts, cmd, func(rt *runtime) error {
				if err := rt.store.DeleteNote(cmd.Context(), args[0]); err != nil {
					return err
				}
				return rt.out.Success(map[string]string{"deleted": args[0]}, "deleted note "+args[0])
			})
		},
	}
}
