package models

import (
	"strings"
	"time"
)

// Project groups tasks and belongs to exactly one owner.
type Project struct {
	ID          int64      `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description,omitempty" db:"description"`
	OwnerID     int64      `json:"owner_id" db:"owner_id"`
	StartDate   *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty" db:"end_date"`
	TimeSpent   *int       `json:"time_spent,omitempty" db:"time_spent"` // minutes
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	// always present in responses, [] when the project has none
	Tasks []Task `json:"tasks" db:"-"`
}

type CreateProjectInput struct {
	Name        string     `json:"name" binding:"required,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=5000"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	TimeSpent   *int       `json:"time_spent" binding:"omitempty,gte=0"`
}

func (in *CreateProjectInput) Normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if in.TimeSpent != nil && *in.TimeSpent < 0 {
		return &ValidationError{Field: "time_spent", Message: "must not be negative"}
	}
	return checkDates(in.StartDate, in.EndDate)
}

type UpdateProjectInput struct {
	Name        *string    `json:"name" binding:"omitempty,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=5000"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	TimeSpent   *int       `json:"time_spent" binding:"omitempty,gte=0"`
}

func (in *UpdateProjectInput) Normalize() error {
	if in.Name == nil && in.Description == nil && in.StartDate == nil && in.EndDate == nil && in.TimeSpent == nil {
		return &ValidationError{Field: "body", Message: "no fields to update"}
	}
	if in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		if n == "" {
			return &ValidationError{Field: "name", Message: "must not be empty"}
		}
		in.Name = &n
	}
	if in.TimeSpent != nil && *in.TimeSpent < 0 {
		return &ValidationError{Field: "time_spent", Message: "must not be negative"}
	}
	return checkDates(in.StartDate, in.EndDate)
}

// Apply copies the set fields onto p.
func (in *UpdateProjectInput) Apply(p *Project) error {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = in.Description
	}
	if in.StartDate != nil {
		p.StartDate = in.StartDate
	}
	if in.EndDate != nil {
		p.EndDate = in.EndDate
	}
	if in.TimeSpent != nil {
		p.TimeSpent = in.TimeSpent
	}
	return checkDates(p.StartDate, p.EndDate)
}

func checkDates(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return &ValidationError{Field: "end_date", Message: "must not be before start_date"}
	}
	return nil
}
