// internal/models/task.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the board column a task sits in.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

// TaskStatuses lists the statuses in board column order.
var TaskStatuses = []TaskStatus{StatusTodo, StatusInProgress, StatusDone}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ParseTaskStatus accepts only the exact enum spelling.
func ParseTaskStatus(v string) (TaskStatus, error) {
	s := TaskStatus(v)
	if !s.Valid() {
		return "", &ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("must be one of %s", joinStatuses()),
		}
	}
	return s, nil
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

var TaskPriorities = []TaskPriority{PriorityHigh, PriorityMedium, PriorityLow}

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func ParseTaskPriority(v string) (TaskPriority, error) {
	p := TaskPriority(v)
	if !p.Valid() {
		return "", &ValidationError{Field: "priority", Message: "must be one of LOW, MEDIUM, HIGH"}
	}
	return p, nil
}

// Task is a single card on a project board.
type Task struct {
	ID          int64        `json:"id" db:"id"`
	Title       string       `json:"title" db:"title"`
	Description *string      `json:"description,omitempty" db:"description"`
	Status      TaskStatus   `json:"status" db:"status"`
	Priority    TaskPriority `json:"priority" db:"priority"`
	ProjectID   int64        `json:"project_id" db:"project_id"`
	CreatorID   int64        `json:"creator_id" db:"creator_id"`
	AssigneeID  *int64       `json:"assignee_id,omitempty" db:"assignee_id"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// IsAssignedTo reports whether userID is the task's assignee.
func (t *Task) IsAssignedTo(userID int64) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

// CreateTaskInput carries the fields accepted when creating a task.
// The creator is always the caller and never comes from the request body.
type CreateTaskInput struct {
	Title       string       `json:"title" binding:"required,max=200"`
	Description *string      `json:"description" binding:"omitempty,max=5000"`
	ProjectID   int64        `json:"project_id" binding:"required,gt=0"`
	Status      TaskStatus   `json:"status" binding:"omitempty,taskstatus"`
	Priority    TaskPriority `json:"priority" binding:"omitempty,taskpriority"`
	AssigneeID  *int64       `json:"assignee_id" binding:"omitempty,gt=0"`
}

// Normalize trims the title and applies the enum defaults.
func (in *CreateTaskInput) Normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if in.ProjectID <= 0 {
		return &ValidationError{Field: "project_id", Message: "is required"}
	}
	if in.Status == "" {
		in.Status = StatusTodo
	} else if _, err := ParseTaskStatus(string(in.Status)); err != nil {
		return err
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	} else if _, err := ParseTaskPriority(string(in.Priority)); err != nil {
		return err
	}
	return nil
}

// UpdateTaskInput is a partial update. There is deliberately no project field:
// a task never moves to another project.
type UpdateTaskInput struct {
	Title       *string       `json:"title" binding:"omitempty,max=200"`
	Description *string       `json:"description" binding:"omitempty,max=5000"`
	Status      *TaskStatus   `json:"status" binding:"omitempty,taskstatus"`
	Priority    *TaskPriority `json:"priority" binding:"omitempty,taskpriority"`
	AssigneeID  *int64        `json:"assignee_id" binding:"omitempty,gte=0"`
}

// Empty reports whether the input changes nothing.
func (in *UpdateTaskInput) Empty() bool {
	return in.Title == nil && in.Description == nil && in.Status == nil &&
		in.Priority == nil && in.AssigneeID == nil
}

func (in *UpdateTaskInput) Normalize() error {
	if in.Empty() {
		return fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return &ValidationError{Field: "title", Message: "must not be empty"}
		}
		in.Title = &t
	}
	if in.Status != nil {
		if _, err := ParseTaskStatus(string(*in.Status)); err != nil {
			return err
		}
	}
	if in.Priority != nil {
		if _, err := ParseTaskPriority(string(*in.Priority)); err != nil {
			return err
		}
	}
	return nil
}

// TaskChanges is the column set written by the repository for an update.
// A ClearAssignee of true sets assignee_id to NULL.
type TaskChanges struct {
	Title         *string
	Description   *string
	Status        *TaskStatus
	Priority      *TaskPriority
	AssigneeID    *int64
	ClearAssignee bool
}

// TaskFilter restricts task listings.
type TaskFilter struct {
	Status    *TaskStatus
	ProjectID *int64
}

func joinStatuses() string {
	parts := make([]string, len(TaskStatuses))
	for i, s := range TaskStatuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
