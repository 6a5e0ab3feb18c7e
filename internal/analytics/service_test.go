package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskboard/internal/models"
)

type fakeStore struct {
	projects    []models.Project
	tasks       []models.Task
	projectsErr error
	tasksErr    error
	askedIDs    []int64
}

func (f *fakeStore) ListByOwner(_ context.Context, ownerID int64) ([]models.Project, error) {
	if f.projectsErr != nil {
		return nil, f.projectsErr
	}
	var out []models.Project
	for _, p := range f.projects {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByProjects(_ context.Context, ids []int64) ([]models.Task, error) {
	f.askedIDs = ids
	if f.tasksErr != nil {
		return nil, f.tasksErr
	}
	in := map[int64]bool{}
	for _, id := range ids {
		in[id] = true
	}
	var out []models.Task
	for _, t := range f.tasks {
		if in[t.ProjectID] {
			out = append(out, t)
		}
	}
	return out, nil
}

func TestServiceScopesToOwnedProjects(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{
		projects: []models.Project{{ID: 1, OwnerID: 7, Name: "mine"}, {ID: 2, OwnerID: 8, Name: "theirs"}},
		tasks: []models.Task{
			{ID: 1, ProjectID: 1, Status: models.StatusDone, Priority: models.PriorityHigh, UpdatedAt: now},
			{ID: 2, ProjectID: 2, Status: models.StatusDone, Priority: models.PriorityHigh, UpdatedAt: now},
		},
	}
	svc := NewService(store, store, time.UTC)
	svc.now = func() time.Time { return now }

	ov, err := svc.Overview(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if ov.TotalProjects != 1 || ov.Total != 1 || ov.CompletionRate != 100 {
		t.Fatalf("overview = %+v", ov)
	}
	if len(ov.RecentActivity) != 1 || ov.RecentActivity[0].ProjectName != "mine" {
		t.Fatalf("recent = %+v", ov.RecentActivity)
	}

	days, err := svc.Productivity(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if days[6].Count != 1 {
		t.Fatalf("today = %+v", days[6])
	}
}

func TestServiceFailsAsUnit(t *testing.T) {
	boom := errors.New("store unavailable")
	ctx := context.Background()

	store := &fakeStore{projects: []models.Project{{ID: 1, OwnerID: 1}}, tasksErr: boom}
	svc := NewService(store, store, nil)
	if st, err := svc.TaskStats(ctx, 1); !errors.Is(err, boom) || st != nil {
		t.Fatalf("TaskStats = %v, %v", st, err)
	}
	if ov, err := svc.Overview(ctx, 1); !errors.Is(err, boom) || ov != nil {
		t.Fatalf("Overview = %v, %v", ov, err)
	}

	store = &fakeStore{projectsErr: boom}
	svc = NewService(store, store, nil)
	if ps, err := svc.ProjectStats(ctx, 1); !errors.Is(err, boom) || ps != nil {
		t.Fatalf("ProjectStats = %v, %v", ps, err)
	}
	if store.askedIDs != nil {
		t.Fatal("tasks must not be read when projects fail")
	}
}

func TestServiceNoProjects(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, store, nil)
	st, err := svc.TaskStats(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if st.Total != 0 || st.CompletionRate != 0 {
		t.Fatalf("stats = %+v", st)
	}
}
