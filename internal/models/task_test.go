package models

import (
	"errors"
	"testing"
)

func TestParseTaskStatus(t *testing.T) {
	for _, s := range []string{"TODO", "IN_PROGRESS", "DONE"} {
		got, err := ParseTaskStatus(s)
		if err != nil || string(got) != s {
			t.Fatalf("ParseTaskStatus(%q) = %q, %v", s, got, err)
		}
	}
	for _, s := range []string{"", "todo", "Done", "CLOSED", " TODO"} {
		_, err := ParseTaskStatus(s)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != "status" {
			t.Fatalf("ParseTaskStatus(%q) err = %v, want status validation error", s, err)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("validation error should match ErrInvalidInput")
		}
	}
}

func TestParseTaskPriority(t *testing.T) {
	if _, err := ParseTaskPriority("HIGH"); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseTaskPriority("URGENT"); err == nil {
		t.Fatal("expected error for unknown priority")
	}
}

func TestCreateTaskInputDefaults(t *testing.T) {
	in := CreateTaskInput{Title: "  T  ", ProjectID: 3, Priority: PriorityHigh}
	if err := in.Normalize(); err != nil {
		t.Fatal(err)
	}
	if in.Title != "T" || in.Status != StatusTodo || in.Priority != PriorityHigh {
		t.Fatalf("unexpected normalized input: %+v", in)
	}

	in = CreateTaskInput{Title: "x", ProjectID: 3}
	if err := in.Normalize(); err != nil {
		t.Fatal(err)
	}
	if in.Priority != PriorityMedium {
		t.Fatalf("default priority = %s", in.Priority)
	}
}

func TestCreateTaskInputRejects(t *testing.T) {
	cases := map[string]CreateTaskInput{
		"blank title":    {Title: "   ", ProjectID: 1},
		"no project":     {Title: "t"},
		"bad status":     {Title: "t", ProjectID: 1, Status: "BLOCKED"},
		"lower priority": {Title: "t", ProjectID: 1, Priority: "high"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if err := in.Normalize(); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want invalid input", err)
			}
		})
	}
}

func TestUpdateTaskInputNormalize(t *testing.T) {
	var empty UpdateTaskInput
	if err := empty.Normalize(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty update err = %v", err)
	}
	bad := TaskStatus("NOPE")
	in := UpdateTaskInput{Status: &bad}
	if err := in.Normalize(); err == nil {
		t.Fatal("expected invalid status error")
	}
	done := StatusDone
	in = UpdateTaskInput{Status: &done}
	if err := in.Normalize(); err != nil {
		t.Fatal(err)
	}
}

func TestProjectDates(t *testing.T) {
	in := UpdateProjectInput{}
	if err := in.Normalize(); err == nil {
		t.Fatal("empty project update should fail")
	}
	neg := -1
	c := CreateProjectInput{Name: "p", TimeSpent: &neg}
	if err := c.Normalize(); err == nil {
		t.Fatal("negative time spent should fail")
	}
}
