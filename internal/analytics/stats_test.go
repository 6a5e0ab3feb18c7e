package analytics

import (
	"testing"
	"time"

	"taskboard/internal/models"
)

func task(id, project int64, st models.TaskStatus, pr models.TaskPriority, updated time.Time) models.Task {
	return models.Task{ID: id, Title: "t", ProjectID: project, Status: st, Priority: pr, UpdatedAt: updated}
}

func TestCompletionRate(t *testing.T) {
	cases := []struct{ completed, total, want int }{
		{0, 0, 0},
		{3, 4, 75},
		{1, 3, 33},
		{2, 3, 67},
		{5, 5, 100},
	}
	for _, c := range cases {
		if got := CompletionRate(c.completed, c.total); got != c.want {
			t.Errorf("CompletionRate(%d, %d) = %d, want %d", c.completed, c.total, got, c.want)
		}
	}
}

func TestTally(t *testing.T) {
	now := time.Now()
	tasks := []models.Task{
		task(1, 1, models.StatusDone, models.PriorityHigh, now),
		task(2, 1, models.StatusDone, models.PriorityLow, now),
		task(3, 1, models.StatusInProgress, models.PriorityMedium, now),
		task(4, 2, models.StatusTodo, models.PriorityHigh, now),
		task(5, 2, models.StatusTodo, models.PriorityMedium, now),
	}
	st := Tally(tasks)
	if st.Completed != 2 || st.InProgress != 1 || st.Todo != 2 || st.Total != 5 {
		t.Fatalf("status counts = %+v", st)
	}
	if st.Completed+st.InProgress+st.Todo != st.Total {
		t.Fatal("status counts must sum to total")
	}
	if st.ByPriority != (PriorityCounts{High: 2, Medium: 2, Low: 1}) {
		t.Fatalf("priority counts = %+v", st.ByPriority)
	}
	if st.CompletionRate != 40 {
		t.Fatalf("completion rate = %d", st.CompletionRate)
	}

	if empty := Tally(nil); empty.Total != 0 || empty.CompletionRate != 0 {
		t.Fatalf("empty tally = %+v", empty)
	}
}

func TestProductivityWindow(t *testing.T) {
	// Thursday
	now := time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC)
	tasks := []models.Task{
		task(1, 1, models.StatusDone, models.PriorityLow, now.Add(-time.Hour)),
		task(2, 1, models.StatusDone, models.PriorityLow, now.AddDate(0, 0, -1)),
		task(3, 1, models.StatusDone, models.PriorityLow, now.AddDate(0, 0, -1)),
		task(4, 1, models.StatusDone, models.PriorityLow, time.Date(2026, 10, 9, 0, 0, 0, 0, time.UTC)),
		// outside the window
		task(5, 1, models.StatusDone, models.PriorityLow, time.Date(2026, 10, 8, 23, 59, 0, 0, time.UTC)),
		// not done
		task(6, 1, models.StatusInProgress, models.PriorityLow, now),
	}
	days := Productivity(tasks, now, time.UTC)
	if len(days) != ProductivityDays {
		t.Fatalf("len = %d", len(days))
	}
	wantNames := []string{"Fri", "Sat", "Sun", "Mon", "Tue", "Wed", "Thu"}
	wantCounts := []int{1, 0, 0, 0, 0, 2, 1}
	for i, d := range days {
		if d.Name != wantNames[i] || d.Count != wantCounts[i] {
			t.Errorf("day %d = %+v, want %s/%d", i, d, wantNames[i], wantCounts[i])
		}
	}
	if days[0].Date != "2026-10-09" || days[6].Date != "2026-10-15" {
		t.Fatalf("dates = %s .. %s", days[0].Date, days[6].Date)
	}
}

func TestProductivityEmptyHasSevenZeroDays(t *testing.T) {
	days := Productivity(nil, time.Now(), nil)
	if len(days) != 7 {
		t.Fatalf("len = %d", len(days))
	}
	for _, d := range days {
		if d.Count != 0 {
			t.Fatalf("unexpected count in %+v", d)
		}
	}
}

func TestProductivityUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	now := time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC) // already the 16th in loc
	done := task(1, 1, models.StatusDone, models.PriorityLow, now)
	days := Productivity([]models.Task{done}, now, loc)
	if days[6].Date != "2026-10-16" || days[6].Count != 1 {
		t.Fatalf("last day = %+v", days[6])
	}
}

func TestRollup(t *testing.T) {
	now := time.Now()
	projects := []models.Project{{ID: 1, Name: "A"}, {ID: 2, Name: "Empty"}}
	tasks := []models.Task{
		task(1, 1, models.StatusDone, models.PriorityLow, now),
		task(2, 1, models.StatusDone, models.PriorityLow, now),
		task(3, 1, models.StatusDone, models.PriorityLow, now),
		task(4, 1, models.StatusTodo, models.PriorityLow, now),
		task(5, 99, models.StatusTodo, models.PriorityLow, now),
	}
	got := Rollup(projects, tasks)
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].TotalTasks != 4 || got[0].Completed != 3 || got[0].Todo != 1 || got[0].Progress != 75 {
		t.Fatalf("project A = %+v", got[0])
	}
	if got[1].TotalTasks != 0 || got[1].Progress != 0 {
		t.Fatalf("empty project = %+v", got[1])
	}
}

func TestRecentOrdering(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	projects := []models.Project{{ID: 1, Name: "Alpha"}}
	tasks := []models.Task{
		task(1, 1, models.StatusTodo, models.PriorityLow, base),
		task(2, 1, models.StatusTodo, models.PriorityLow, base.Add(3*time.Hour)),
		task(3, 1, models.StatusTodo, models.PriorityLow, base.Add(3*time.Hour)),
		task(4, 1, models.StatusTodo, models.PriorityLow, base.Add(time.Hour)),
		task(5, 1, models.StatusTodo, models.PriorityLow, base.Add(2*time.Hour)),
		task(6, 1, models.StatusTodo, models.PriorityLow, base.Add(-time.Hour)),
	}
	got := Recent(tasks, projects, RecentLimit)
	want := []int64{3, 2, 5, 4, 1}
	if len(got) != len(want) {
		t.Fatalf("len = %d", len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d = %d, want %d", i, got[i].ID, id)
		}
	}
	if got[0].ProjectName != "Alpha" {
		t.Fatalf("project name = %q", got[0].ProjectName)
	}
	if tasks[0].ID != 1 {
		t.Fatal("input slice must not be reordered")
	}
}
