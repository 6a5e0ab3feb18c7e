package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"taskboard/internal/models"
)

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	Update(ctx context.Context, id int64, ch models.TaskChanges) (*models.Task, error)
	Delete(ctx context.Context, id int64) error

	// ListForUser returns tasks the user created or is assigned to.
	ListForUser(ctx context.Context, userID int64, filter models.TaskFilter) ([]models.Task, error)
	ListByProject(ctx context.Context, projectID int64) ([]models.Task, error)
	ListByProjects(ctx context.Context, projectIDs []int64) ([]models.Task, error)
}

const taskColumns = `id, title, description, status, priority, project_id, creator_id,
       assignee_id, created_at, updated_at`

type taskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	const q = `
		INSERT INTO tasks (title, description, status, priority, project_id, creator_id, assignee_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowxContext(ctx, q,
		task.Title, task.Description, task.Status, task.Priority,
		task.ProjectID, task.CreatorID, task.AssigneeID,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	return translate("create task", err)
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	var t models.Task
	err := r.db.GetContext(ctx, &t, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	if err != nil {
		return nil, translate("get task", err)
	}
	return &t, nil
}

// Update writes only the columns present in ch and returns the new row.
func (r *taskRepository) Update(ctx context.Context, id int64, ch models.TaskChanges) (*models.Task, error) {
	sets := []string{}
	args := []interface{}{}
	argID := 1
	add := func(col string, v interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argID))
		args = append(args, v)
		argID++
	}

	if ch.Title != nil {
		add("title", *ch.Title)
	}
	if ch.Description != nil {
		add("description", *ch.Description)
	}
	if ch.Status != nil {
		add("status", *ch.Status)
	}
	if ch.Priority != nil {
		add("priority", *ch.Priority)
	}
	if ch.ClearAssignee {
		sets = append(sets, "assignee_id = NULL")
	} else if ch.AssigneeID != nil {
		add("assignee_id", *ch.AssigneeID)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	q := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), argID, taskColumns)

	var t models.Task
	if err := r.db.QueryRowxContext(ctx, q, args...).StructScan(&t); err != nil {
		return nil, translate("update task", err)
	}
	return &t, nil
}

func (r *taskRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return mustAffect("delete task", res, err)
}

func (r *taskRepository) ListForUser(ctx context.Context, userID int64, filter models.TaskFilter) ([]models.Task, error) {
	conditions := []string{"(creator_id = $1 OR assignee_id = $1)"}
	args := []interface{}{userID}
	argID := 2

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}
	if filter.ProjectID != nil {
		conditions = append(conditions, fmt.Sprintf("project_id = $%d", argID))
		args = append(args, *filter.ProjectID)
	}

	q := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY created_at DESC, id DESC`

	tasks := []models.Task{}
	if err := r.db.SelectContext(ctx, &tasks, q, args...); err != nil {
		return nil, translate("list tasks", err)
	}
	return tasks, nil
}

func (r *taskRepository) ListByProject(ctx context.Context, projectID int64) ([]models.Task, error) {
	tasks := []models.Task{}
	err := r.db.SelectContext(ctx, &tasks,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 ORDER BY created_at ASC, id ASC`, projectID)
	if err != nil {
		return nil, translate("list project tasks", err)
	}
	return tasks, nil
}

func (r *taskRepository) ListByProjects(ctx context.Context, projectIDs []int64) ([]models.Task, error) {
	tasks := []models.Task{}
	if len(projectIDs) == 0 {
		return tasks, nil
	}
	err := r.db.SelectContext(ctx, &tasks,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = ANY($1) ORDER BY id`, pq.Array(projectIDs))
	if err != nil {
		return nil, translate("list tasks by projects", err)
	}
	return tasks, nil
}
