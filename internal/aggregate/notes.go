package aggregate

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/sandeepkv93/studyd/internal/model"
)

// SortNotesByRecency returns a copy of notes, most recently touched first.
// Notes with equal timestamps keep their input order.
func SortNotesByRecency(notes []model.Note) []model.Note {
	out := slices.Clone(notes)
	slices.SortStableFunc(out, func(a, b model.Note) int {
		return b.LastTouched().Compare(a.LastTouched())
	})
	return out
}

func RecentNotes(notes []model.Note, limit int) []model.Note {
	if limit <= 0 {
		return []model.Note{}
	}
	out := SortNotesByRecency(notes)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

type RecencyBucket string

const (
	BucketRecentToday     RecencyBucket = "Today"
	BucketRecentYesterday RecencyBucket = "Yesterday"
	BucketRecentThisWeek  RecencyBucket = "This Week"
	BucketRecentThisMonth RecencyBucket = "This Month"
	BucketRecentOlder     RecencyBucket = "Older"
)

var RecencyBuckets = []RecencyBucket{
	BucketRecentToday, BucketRecentYesterday, BucketRecentThisWeek, BucketRecentThisMonth, BucketRecentOlder,
}

type NoteGroup struct {
	Bucket RecencyBucket `json:"bucket"`
	Notes  []model.Note  `json:"notes"`
}

const week = 7 * 24 * time.Hour

// RecencyBucketOf classifies a note timestamp. Checks run in RecencyBuckets
// order and the first match wins. Calendar comparisons use now's location.
func RecencyBucketOf(touched, now time.Time) RecencyBucket {
	local := touched.In(now.Location())
	day := model.DateOf(local)
	today := model.DateOf(now)
	switch {
	case day.Equal(today):
		return BucketRecentToday
	case day.Equal(today.AddDays(-1)):
		return BucketRecentYesterday
	case now.Sub(touched) < week:
		return BucketRecentThisWeek
	case local.Year() == now.Year() && local.Month() == now.Month():
		return BucketRecentThisMonth
	default:
		return BucketRecentOlder
	}
}

func GroupNotesByRecencyBucket(notes []model.Note, now time.Time) []NoteGroup {
	byBucket := make(map[RecencyBucket][]model.Note, len(RecencyBuckets))
	for _, note := range notes {
		bucket := RecencyBucketOf(note.LastTouched(), now)
		byBucket[bucket] = append(byBucket[bucket], note)
	}
	groups := make([]NoteGroup, 0, len(byBucket))
	for _, bucket := range RecencyBuckets {
		if items := byBucket[bucket]; len(items) > 0 {
			groups = append(groups, NoteGroup{Bucket: bucket, Notes: items})
		}
	}
	return groups
}

var folder = cases.Fold()

func fold(s string) string {
	return folder.String(norm.NFC.String(s))
}

// FilterNotesByText keeps notes whose title or content contains term,
// ignoring case. A blank term keeps everything.
func FilterNotesByText(notes []model.Note, term string) []model.Note {
	term = strings.TrimSpace(term)
	if term == "" {
		return slices.Clone(notes)
	}
	needle := fold(term)
	out := make([]model.Note, 0, len(notes))
	for _, note := range notes {
		if strings.Contains(fold(note.Title), needle) || strings.Contains(fold(note.Content), needle) {
			out = append(out, note)
		}
	}
	return out
}

func FilterNotesBySubject(notes []model.Note, subjectID string) []model.Note {
	if subjectID == "" || subjectID == AllSubjects {
		return slices.Clone(notes)
	}
	out := make([]model.Note, 0, len(notes))
	for _, note := range notes {
		if note.SubjectID == subjectID {
			out = append(out, note)
		}
	}
	return out
}
