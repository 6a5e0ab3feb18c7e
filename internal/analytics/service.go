package analytics

import (
	"context"
	"fmt"
	"time"

	"taskboard/internal/models"
)

type ProjectLister interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Project, error)
}

type TaskLister interface {
	ListByProjects(ctx context.Context, projectIDs []int64) ([]models.Task, error)
}

type Service struct {
	projects ProjectLister
	tasks    TaskLister
	loc      *time.Location
	now      func() time.Time
}

// NewService builds the engine. loc sets the calendar used for productivity days.
func NewService(projects ProjectLister, tasks TaskLister, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{projects: projects, tasks: tasks, loc: loc, now: time.Now}
}

// load reads the caller's projects, then the tasks under them. The two reads
// are independent statements; any failure fails the whole aggregate.
func (s *Service) load(ctx context.Context, ownerID int64) ([]models.Project, []models.Task, error) {
	projects, err := s.projects.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, nil, fmt.Errorf("analytics: load projects: %w", err)
	}
	ids := make([]int64, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	tasks, err := s.tasks.ListByProjects(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("analytics: load tasks: %w", err)
	}
	return projects, tasks, nil
}

func (s *Service) TaskStats(ctx context.Context, ownerID int64) (*TaskStats, error) {
	_, tasks, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	st := Tally(tasks)
	return &st, nil
}

func (s *Service) Productivity(ctx context.Context, ownerID int64) ([]DayCount, error) {
	_, tasks, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return Productivity(tasks, s.now(), s.loc), nil
}

func (s *Service) ProjectStats(ctx context.Context, ownerID int64) ([]ProjectStats, error) {
	projects, tasks, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return Rollup(projects, tasks), nil
}

func (s *Service) Overview(ctx context.Context, ownerID int64) (*Overview, error) {
	projects, tasks, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &Overview{
		TotalProjects:  len(projects),
		TaskStats:      Tally(tasks),
		RecentActivity: Recent(tasks, projects, RecentLimit),
	}, nil
}

// Report bundles everything the PDF report prints, from a single load.
type Report struct {
	GeneratedAt  time.Time
	Overview     Overview
	Projects     []ProjectStats
	Productivity []DayCount
}

func (s *Service) Report(ctx context.Context, ownerID int64) (*Report, error) {
	projects, tasks, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return &Report{
		GeneratedAt: now.In(s.loc),
		Overview: Overview{
			TotalProjects:  len(projects),
			TaskStats:      Tally(tasks),
			RecentActivity: Recent(tasks, projects, RecentLimit),
		},
		Projects:     Rollup(projects, tasks),
		Productivity: Productivity(tasks, now, s.loc),
	}, nil
}
