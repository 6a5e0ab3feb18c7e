// internal/services/task_service.go
package services

import (
	"context"
	"errors"
	"log/slog"

	"taskboard/internal/authz"
	"taskboard/internal/models"
	"taskboard/internal/repositories"
)

// Board event kinds published after a task mutation is stored.
const (
	EventTaskCreated = "task.created"
	EventTaskUpdated = "task.updated"
	EventTaskDeleted = "task.deleted"
)

// TaskEventPublisher fans task changes out to subscribers of a project.
type TaskEventPublisher interface {
	PublishTaskEvent(projectID int64, kind string, task *models.Task)
}

type TaskService interface {
	Create(ctx context.Context, callerID int64, in models.CreateTaskInput) (*models.Task, error)
	GetByID(ctx context.Context, callerID, id int64) (*models.Task, error)
	List(ctx context.Context, callerID int64, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, callerID, id int64, in models.UpdateTaskInput) (*models.Task, error)
	Delete(ctx context.Context, callerID, id int64) error
}

type taskService struct {
	tasks    repositories.TaskRepository
	projects repositories.ProjectRepository
	users    repositories.UserRepository
	notifier MessageSender
	events   TaskEventPublisher
	logger   *slog.Logger
}

type TaskServiceDeps struct {
	Tasks    repositories.TaskRepository
	Projects repositories.ProjectRepository
	Users    repositories.UserRepository
	Notifier MessageSender      // optional
	Events   TaskEventPublisher // optional
	Logger   *slog.Logger
}

func NewTaskService(d TaskServiceDeps) TaskService {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &taskService{
		tasks:    d.Tasks,
		projects: d.Projects,
		users:    d.Users,
		notifier: d.Notifier,
		events:   d.Events,
		logger:   logger.With("component", "task"),
	}
}

// Create requires the caller to own the target project. The caller becomes the creator.
func (s *taskService) Create(ctx context.Context, callerID int64, in models.CreateTaskInput) (*models.Task, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	p, err := s.projects.GetByID(ctx, in.ProjectID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, &models.ValidationError{Field: "project_id", Message: "project does not exist"}
		}
		return nil, err
	}
	if !authz.CanAccessProject(callerID, p) {
		s.logger.Info("create denied", "caller", callerID, "project_id", p.ID)
		return nil, models.ErrForbidden
	}

	task := &models.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		ProjectID:   in.ProjectID,
		CreatorID:   callerID,
		AssigneeID:  in.AssigneeID,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	s.logger.Info("task created", "task_id", task.ID, "project_id", task.ProjectID, "caller", callerID)

	s.publish(task.ProjectID, EventTaskCreated, task)
	if task.AssigneeID != nil && *task.AssigneeID != callerID {
		s.notifyAssignee(ctx, task, "📌 New task assigned to you")
	}
	return task, nil
}

func (s *taskService) GetByID(ctx context.Context, callerID, id int64) (*models.Task, error) {
	return s.authorized(ctx, callerID, id)
}

// List is filtered in the query: only tasks the caller created or is assigned to.
func (s *taskService) List(ctx context.Context, callerID int64, filter models.TaskFilter) ([]models.Task, error) {
	if filter.Status != nil {
		if _, err := models.ParseTaskStatus(string(*filter.Status)); err != nil {
			return nil, err
		}
	}
	return s.tasks.ListForUser(ctx, callerID, filter)
}

func (s *taskService) Update(ctx context.Context, callerID, id int64, in models.UpdateTaskInput) (*models.Task, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	current, err := s.authorized(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	ch := models.TaskChanges{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
	}
	if in.AssigneeID != nil {
		if *in.AssigneeID == 0 {
			ch.ClearAssignee = true
		} else {
			ch.AssigneeID = in.AssigneeID
		}
	}

	updated, err := s.tasks.Update(ctx, id, ch)
	if err != nil {
		return nil, err
	}
	s.logger.Info("task updated", "task_id", id, "caller", callerID, "status", updated.Status)

	s.publish(updated.ProjectID, EventTaskUpdated, updated)
	if updated.AssigneeID != nil && *updated.AssigneeID != callerID && !current.IsAssignedTo(*updated.AssigneeID) {
		s.notifyAssignee(ctx, updated, "👤 Task assigned to you")
	}
	return updated, nil
}

func (s *taskService) Delete(ctx context.Context, callerID, id int64) error {
	task, err := s.authorized(ctx, callerID, id)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("task deleted", "task_id", id, "caller", callerID)
	s.publish(task.ProjectID, EventTaskDeleted, task)
	return nil
}

// authorized loads a task the caller may manage: as creator or assignee, or as
// owner of the task's project. An existing task outside all three is forbidden.
func (s *taskService) authorized(ctx context.Context, callerID, id int64) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if authz.CanAccessTask(callerID, task) {
		return task, nil
	}
	p, err := s.projects.GetByID(ctx, task.ProjectID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	if authz.CanManageTaskViaProject(callerID, p) {
		return task, nil
	}
	s.logger.Info("access denied", "caller", callerID, "task_id", id)
	return nil, models.ErrForbidden
}

func (s *taskService) publish(projectID int64, kind string, t *models.Task) {
	if s.events != nil {
		s.events.PublishTaskEvent(projectID, kind, t)
	}
}

func (s *taskService) notifyAssignee(ctx context.Context, t *models.Task, prefix string) {
	if s.notifier == nil || s.users == nil || t.AssigneeID == nil {
		return
	}
	u, err := s.users.GetByID(ctx, *t.AssigneeID)
	if err != nil {
		s.logger.Warn("notify: assignee lookup failed", "assignee_id", *t.AssigneeID, "err", err)
		return
	}
	if u.TelegramChatID == nil || *u.TelegramChatID == 0 {
		return
	}
	if err := s.notifier.SendMessage(*u.TelegramChatID, formatTaskMessage(prefix, t)); err != nil {
		s.logger.Warn("notify: send failed", "assignee_id", u.ID, "err", err)
	}
}
