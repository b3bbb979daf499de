package commands

import (
	"errors"
	"testing"

	"github.com/sandeepkv93/studyd/internal/aggregate"
	"github.com/sandeepkv93/studyd/internal/model"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{":subject Organic Chemistry", TypeSubject},
		{"task read chapter 4 due:2026-02-12", TypeTask},
		{"/note Lecture 3", TypeNote},
		{"status in-progress", TypeStatus},
		{"filter all", TypeFilter},
		{"search mitosis", TypeSearch},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseTaskOptions(t *testing.T) {
	cmd, err := Parse("task read chapter 4 due:2026-02-12 subject:Biology")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Task.Title != "read chapter 4" {
		t.Fatalf("unexpected title: %q", cmd.Task.Title)
	}
	if cmd.Task.Due == nil || cmd.Task.Due.String() != "2026-02-12" {
		t.Fatalf("unexpected due: %v", cmd.Task.Due)
	}
	if cmd.Task.Subject != "Biology" {
		t.Fatalf("unexpected subject: %q", cmd.Task.Subject)
	}

	noDue, err := Parse("task revise")
	if err != nil || noDue.Task.Due != nil {
		t.Fatalf("expected undated task, got %+v err=%v", noDue.Task, err)
	}
}

func TestParseRejectsBadArguments(t *testing.T) {
	for _, in := range []string{
		"task due:2026-02-12",
		"task essay due:friday",
		"subject",
		"status blocked",
		"status",
		"filter maybe",
	} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument, got %v", in, err)
		}
	}
}

func TestParseNoteDefaultsTitle(t *testing.T) {
	cmd, err := Parse("note")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Note.Title != model.UntitledNote {
		t.Fatalf("expected default title, got %q", cmd.Note.Title)
	}
}

func TestParseFilterAll(t *testing.T) {
	cmd, err := Parse("filter ALL")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Filter.Status != aggregate.AllStatuses {
		t.Fatalf("expected all, got %q", cmd.Filter.Status)
	}
	cmd, _ = Parse("filter Done")
	if cmd.Filter.Status != model.TaskStatusDone {
		t.Fatalf("expected done, got %q", cmd.Filter.Status)
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
	_, err = Parse("  :  ")
	if !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
		t.Fatalf("expected empty input error, got %v", err)
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("subject Linear Algebra")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Subject: func(a SubjectArgs) (Result, error) {
			called = true
			if a.Name != "Linear Algebra" {
				t.Fatalf("unexpected name: %q", a.Name)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("status done")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}
