package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"taskboard/internal/models"
)

type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) error
	GetByID(ctx context.Context, id int64) (*models.Project, error)
	Update(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, id int64) error
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Project, error)
	CountByOwner(ctx context.Context, ownerID int64) (int, error)
}

const projectColumns = `id, name, description, owner_id, start_date, end_date, time_spent,
       created_at, updated_at`

type projectRepository struct {
	db *sqlx.DB
}

func NewProjectRepository(db *sqlx.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, p *models.Project) error {
	const q = `
		INSERT INTO projects (name, description, owner_id, start_date, end_date, time_spent)
		VALUES (:name, :description, :owner_id, :start_date, :end_date, :time_spent)
		RETURNING id, created_at, updated_at`
	rows, err := r.db.NamedQueryContext(ctx, q, p)
	if err != nil {
		return translate("create project", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return translate("create project", err)
		}
	}
	return translate("create project", rows.Err())
}

func (r *projectRepository) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	var p models.Project
	if err := r.db.GetContext(ctx, &p, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id); err != nil {
		return nil, translate("get project", err)
	}
	return &p, nil
}

// Update overwrites the mutable columns. owner_id is never changed.
func (r *projectRepository) Update(ctx context.Context, p *models.Project) error {
	const q = `
		UPDATE projects SET
			name = $1, description = $2, start_date = $3, end_date = $4,
			time_spent = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at`
	err := r.db.QueryRowxContext(ctx, q,
		p.Name, p.Description, p.StartDate, p.EndDate, p.TimeSpent, p.ID,
	).Scan(&p.UpdatedAt)
	return translate("update project", err)
}

// Delete removes the project; its tasks go with it via ON DELETE CASCADE.
func (r *projectRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return mustAffect("delete project", res, err)
}

func (r *projectRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Project, error) {
	projects := []models.Project{}
	err := r.db.SelectContext(ctx, &projects,
		`SELECT `+projectColumns+` FROM projects WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, translate("list projects", err)
	}
	return projects, nil
}

func (r *projectRepository) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM projects WHERE owner_id = $1`, ownerID); err != nil {
		return 0, translate("count projects", err)
	}
	return n, nil
}
