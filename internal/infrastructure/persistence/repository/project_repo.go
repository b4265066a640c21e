package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/udistrital/trabajo_grado_core/internal/application/port"
	"github.com/udistrital/trabajo_grado_core/internal/domain/entity"
	"github.com/udistrital/trabajo_grado_core/internal/infrastructure/persistence/sqlite"
)

// ProjectRepository implements port.ProjectRepository over SQLite.
type ProjectRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB, logger *zap.Logger) port.ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new project and sets its generated ID
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	query := `
		INSERT INTO projects (title, program, modality, director_id, global_status)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		project.Title,
		project.Program,
		project.Modality,
		project.DirectorID,
		project.GlobalStatus.String(),
	)
	if err != nil {
		r.logger.Error("Failed to create project",
			zap.String("title", project.Title),
			zap.Error(err))
		return fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	project.ID = id
	return nil
}

// GetByID retrieves a project by its ID
func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*entity.Project, error) {
	query := `
		SELECT id, title, program, modality, director_id, global_status,
			created_at, updated_at
		FROM projects
		WHERE id = ?
	`

	project, err := r.scanProject(r.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get project by ID",
			zap.Int64("id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// UpdateGlobalStatus updates the administrative status of a project
func (r *ProjectRepository) UpdateGlobalStatus(ctx context.Context, id int64, status entity.GlobalStatus) error {
	query := `UPDATE projects SET global_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query, status.String(), id)
	if err != nil {
		r.logger.Error("Failed to update project global status",
			zap.Int64("id", id),
			zap.String("status", status.String()),
			zap.Error(err))
		return fmt.Errorf("failed to update project global status: %w", err)
	}

	return nil
}

// List retrieves projects ordered by creation, newest first
func (r *ProjectRepository) List(ctx context.Context, limit, offset int) ([]*entity.Project, error) {
	query := `
		SELECT id, title, program, modality, director_id, global_status,
			created_at, updated_at
		FROM projects
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list projects", zap.Error(err))
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*entity.Project
	for rows.Next() {
		var p entity.Project
		var status string
		err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Program,
			&p.Modality,
			&p.DirectorID,
			&status,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		p.GlobalStatus = entity.GlobalStatus(status)
		projects = append(projects, &p)
	}

	return projects, rows.Err()
}

// scanProject scans a single project row
func (r *ProjectRepository) scanProject(row *sql.Row) (*entity.Project, error) {
	var p entity.Project
	var status string

	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Program,
		&p.Modality,
		&p.DirectorID,
		&status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.GlobalStatus = entity.GlobalStatus(status)
	return &p, nil
}

// getExecutor returns the context's transaction or the plain connection
func (r *ProjectRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFrom(ctx, r.db)
}

// Verify interface compliance
var _ port.ProjectRepository = (*ProjectRepository)(nil)
