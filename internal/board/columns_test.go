package board

import (
	"errors"
	"testing"

	"taskboard/internal/models"
)

func TestGroup(t *testing.T) {
	tasks := []models.Task{
		{ID: 5, Status: models.StatusDone},
		{ID: 1, Status: models.StatusTodo},
		{ID: 3, Status: models.StatusTodo},
		{ID: 2, Status: models.StatusTodo},
	}
	cols := Group(tasks)
	if len(cols) != 3 {
		t.Fatalf("columns = %d", len(cols))
	}
	wantIDs := []string{"TODO", "IN_PROGRESS", "DONE"}
	for i, c := range cols {
		if c.ID != wantIDs[i] || string(c.Status) != wantIDs[i] {
			t.Fatalf("column %d = %s", i, c.ID)
		}
	}
	if cols[1].Title != "IN PROGRESS" {
		t.Fatalf("title = %q", cols[1].Title)
	}
	if cols[1].Tasks == nil || len(cols[1].Tasks) != 0 {
		t.Fatal("empty column must be present and empty")
	}
	todo := cols[0].Tasks
	if len(todo) != 3 || todo[0].ID != 1 || todo[1].ID != 3 || todo[2].ID != 2 {
		t.Fatalf("todo order = %+v", todo)
	}
}

func TestParseTarget(t *testing.T) {
	tg, err := ParseTarget("IN_PROGRESS")
	if err != nil || tg != ColumnTarget(models.StatusInProgress) {
		t.Fatalf("column: %v %v", tg, err)
	}
	tg, err = ParseTarget("42")
	if err != nil || tg != TaskTarget(42) {
		t.Fatalf("task: %v %v", tg, err)
	}
	tg, err = ParseTarget("")
	if err != nil || !tg.IsZero() {
		t.Fatalf("empty: %v %v", tg, err)
	}
	for _, bad := range []string{"done", "-1", "0", "column"} {
		if _, err := ParseTarget(bad); !errors.Is(err, ErrBadTarget) {
			t.Fatalf("ParseTarget(%q) err = %v", bad, err)
		}
	}
}
