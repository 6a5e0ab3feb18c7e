package services

import (
	"context"
	"log/slog"

	"taskboard/internal/authz"
	"taskboard/internal/models"
	"taskboard/internal/repositories"
)

type ProjectService interface {
	Create(ctx context.Context, callerID int64, in models.CreateProjectInput) (*models.Project, error)
	List(ctx context.Context, callerID int64) ([]models.Project, error)
	Get(ctx context.Context, callerID, id int64) (*models.Project, error)
	Update(ctx context.Context, callerID, id int64, in models.UpdateProjectInput) (*models.Project, error)
	Delete(ctx context.Context, callerID, id int64) error
}

type projectService struct {
	projects repositories.ProjectRepository
	tasks    repositories.TaskRepository
	logger   *slog.Logger
}

func NewProjectService(projects repositories.ProjectRepository, tasks repositories.TaskRepository, logger *slog.Logger) ProjectService {
	if logger == nil {
		logger = slog.Default()
	}
	return &projectService{projects: projects, tasks: tasks, logger: logger.With("component", "project")}
}

func (s *projectService) Create(ctx context.Context, callerID int64, in models.CreateProjectInput) (*models.Project, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	p := &models.Project{
		Name:        in.Name,
		Description: in.Description,
		OwnerID:     callerID,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		TimeSpent:   in.TimeSpent,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}
	p.Tasks = []models.Task{}
	s.logger.Info("project created", "project_id", p.ID, "owner_id", callerID)
	return p, nil
}

// List returns the caller's projects with their tasks attached.
func (s *projectService) List(ctx context.Context, callerID int64) ([]models.Project, error) {
	projects, err := s.projects.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return projects, nil
	}
	ids := make([]int64, len(projects))
	for i := range projects {
		ids[i] = projects[i].ID
		projects[i].Tasks = []models.Task{}
	}
	tasks, err := s.tasks.ListByProjects(ctx, ids)
	if err != nil {
		return nil, err
	}
	byProject := make(map[int64]int, len(projects))
	for i := range projects {
		byProject[projects[i].ID] = i
	}
	for _, t := range tasks {
		if i, ok := byProject[t.ProjectID]; ok {
			projects[i].Tasks = append(projects[i].Tasks, t)
		}
	}
	return projects, nil
}

func (s *projectService) Get(ctx context.Context, callerID, id int64) (*models.Project, error) {
	p, err := s.owned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByProject(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Tasks = tasks
	return p, nil
}

func (s *projectService) Update(ctx context.Context, callerID, id int64, in models.UpdateProjectInput) (*models.Project, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	p, err := s.owned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	if err := in.Apply(p); err != nil {
		return nil, err
	}
	if err := s.projects.Update(ctx, p); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByProject(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Tasks = tasks
	return p, nil
}

// Delete removes the project and, through the foreign key, its tasks.
func (s *projectService) Delete(ctx context.Context, callerID, id int64) error {
	if _, err := s.owned(ctx, callerID, id); err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("project deleted", "project_id", id, "owner_id", callerID)
	return nil
}

func (s *projectService) owned(ctx context.Context, callerID, id int64) (*models.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessProject(callerID, p) {
		return nil, models.ErrForbidden
	}
	return p, nil
}
