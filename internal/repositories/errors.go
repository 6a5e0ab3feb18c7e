package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"taskboard/internal/models"
)

// Postgres SQLSTATE codes we translate.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// translate maps driver errors onto the domain taxonomy. Anything it does not
// recognise is wrapped with op and surfaces as an internal failure.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return fmt.Errorf("%s: %w", op, models.ErrConflict)
		case pqForeignKeyViolation:
			return &models.ValidationError{Field: fkField(pqErr.Constraint), Message: "references a missing record"}
		case pqCheckViolation:
			return &models.ValidationError{Field: pqErr.Column, Message: "violates constraint " + pqErr.Constraint}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func fkField(constraint string) string {
	switch constraint {
	case "tasks_assignee_id_fkey":
		return "assignee_id"
	case "tasks_project_id_fkey":
		return "project_id"
	case "tasks_creator_id_fkey":
		return "creator_id"
	case "projects_owner_id_fkey":
		return "owner_id"
	}
	return constraint
}

func mustAffect(op string, res sql.Result, err error) error {
	if err != nil {
		return translate(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
