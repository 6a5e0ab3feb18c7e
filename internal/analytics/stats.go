// Package analytics computes task statistics for a project owner.
// Everything is recomputed from the store on every call.
package analytics

import (
	"math"
	"sort"
	"time"

	"taskboard/internal/models"
)

const (
	ProductivityDays = 7
	RecentLimit      = 5
)

type PriorityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type TaskStats struct {
	Completed      int            `json:"completed"`
	InProgress     int            `json:"in_progress"`
	Todo           int            `json:"todo"`
	Total          int            `json:"total"`
	CompletionRate int            `json:"completion_rate"`
	ByPriority     PriorityCounts `json:"by_priority"`
}

type DayCount struct {
	Name  string `json:"name"` // Mon, Tue, ...
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

type ProjectStats struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	TotalTasks int    `json:"total_tasks"`
	Completed  int    `json:"completed"`
	InProgress int    `json:"in_progress"`
	Todo       int    `json:"todo"`
	Progress   int    `json:"progress"`
}

type RecentTask struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	Status      models.TaskStatus `json:"status"`
	ProjectName string            `json:"project_name"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type Overview struct {
	TotalProjects int `json:"total_projects"`
	TaskStats
	RecentActivity []RecentTask `json:"recent_activity"`
}

// Tally counts tasks per status and per priority.
func Tally(tasks []models.Task) TaskStats {
	var st TaskStats
	for _, t := range tasks {
		switch t.Status {
		case models.StatusDone:
			st.Completed++
		case models.StatusInProgress:
			st.InProgress++
		case models.StatusTodo:
			st.Todo++
		}
		switch t.Priority {
		case models.PriorityHigh:
			st.ByPriority.High++
		case models.PriorityMedium:
			st.ByPriority.Medium++
		case models.PriorityLow:
			st.ByPriority.Low++
		}
	}
	st.Total = len(tasks)
	st.CompletionRate = CompletionRate(st.Completed, st.Total)
	return st
}

// CompletionRate is round(completed/total*100), or 0 for an empty set.
func CompletionRate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// Productivity buckets DONE tasks by the calendar day (in loc) of their last
// update. The result always has ProductivityDays entries, oldest first and
// ending with today; days without completions have count 0.
func Productivity(tasks []models.Task, now time.Time, loc *time.Location) []DayCount {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	days := make([]DayCount, ProductivityDays)
	index := make(map[string]int, ProductivityDays)
	for i := 0; i < ProductivityDays; i++ {
		d := today.AddDate(0, 0, i-(ProductivityDays-1))
		key := d.Format(time.DateOnly)
		days[i] = DayCount{Name: d.Format("Mon"), Date: key}
		index[key] = i
	}

	for _, t := range tasks {
		if t.Status != models.StatusDone {
			continue
		}
		key := t.UpdatedAt.In(loc).Format(time.DateOnly)
		if i, ok := index[key]; ok {
			days[i].Count++
		}
	}
	return days
}

// Rollup computes per-project counters, keeping the order of projects.
func Rollup(projects []models.Project, tasks []models.Task) []ProjectStats {
	out := make([]ProjectStats, len(projects))
	pos := make(map[int64]int, len(projects))
	for i, p := range projects {
		out[i] = ProjectStats{ID: p.ID, Name: p.Name}
		pos[p.ID] = i
	}
	for _, t := range tasks {
		i, ok := pos[t.ProjectID]
		if !ok {
			continue
		}
		ps := &out[i]
		ps.TotalTasks++
		switch t.Status {
		case models.StatusDone:
			ps.Completed++
		case models.StatusInProgress:
			ps.InProgress++
		case models.StatusTodo:
			ps.Todo++
		}
	}
	for i := range out {
		out[i].Progress = CompletionRate(out[i].Completed, out[i].TotalTasks)
	}
	return out
}

// Recent returns up to n tasks ordered by UpdatedAt descending, ties broken
// by the higher id first.
func Recent(tasks []models.Task, projects []models.Project, n int) []RecentTask {
	names := make(map[int64]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	sorted := make([]models.Task, len(tasks))
	copy(sorted, tasks)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID > b.ID
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]RecentTask, len(sorted))
	for i, t := range sorted {
		out[i] = RecentTask{
			ID:          t.ID,
			Title:       t.Title,
			Status:      t.Status,
			ProjectName: names[t.ProjectID],
			UpdatedAt:   t.UpdatedAt,
		}
	}
	return out
}
