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

// DeadlineRepository implements port.DeadlineRepository over SQLite.
type DeadlineRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDeadlineRepository creates a new deadline repository
func NewDeadlineRepository(db *sql.DB, logger *zap.Logger) port.DeadlineRepository {
	return &DeadlineRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new deadline. UNIQUE(stage_id, description) keeps deadline
// creation idempotent when a consolidation is retried.
func (r *DeadlineRepository) Create(ctx context.Context, deadline *entity.Deadline) error {
	query := `
		INSERT INTO deadlines (stage_id, description, due_date, created_by)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		deadline.StageID,
		deadline.Description,
		deadline.DueDate,
		deadline.CreatedBy,
	)
	if err != nil {
		r.logger.Error("Failed to create deadline",
			zap.Int64("stage_id", deadline.StageID),
			zap.String("description", deadline.Description),
			zap.Error(err))
		return fmt.Errorf("failed to create deadline: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	deadline.ID = id
	return nil
}

// GetByStageID retrieves all deadlines of a stage
func (r *DeadlineRepository) GetByStageID(ctx context.Context, stageID int64) ([]*entity.Deadline, error) {
	query := `
		SELECT id, stage_id, description, due_date, created_by, created_at
		FROM deadlines
		WHERE stage_id = ?
		ORDER BY due_date
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, stageID)
	if err != nil {
		r.logger.Error("Failed to get deadlines by stage ID",
			zap.Int64("stage_id", stageID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get deadlines: %w", err)
	}
	defer rows.Close()

	var deadlines []*entity.Deadline
	for rows.Next() {
		var d entity.Deadline
		var createdBy sql.NullString
		err := rows.Scan(
			&d.ID,
			&d.StageID,
			&d.Description,
			&d.DueDate,
			&createdBy,
			&d.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deadline: %w", err)
		}
		if createdBy.Valid {
			d.CreatedBy = createdBy.String
		}
		deadlines = append(deadlines, &d)
	}

	return deadlines, rows.Err()
}

// GetByStageAndDescription retrieves one deadline by its natural key
func (r *DeadlineRepository) GetByStageAndDescription(ctx context.Context, stageID int64, description string) (*entity.Deadline, error) {
	query := `
		SELECT id, stage_id, description, due_date, created_by, created_at
		FROM deadlines
		WHERE stage_id = ? AND description = ?
	`

	var d entity.Deadline
	var createdBy sql.NullString

	err := r.getExecutor(ctx).QueryRowContext(ctx, query, stageID, description).Scan(
		&d.ID,
		&d.StageID,
		&d.Description,
		&d.DueDate,
		&createdBy,
		&d.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get deadline by stage and description",
			zap.Int64("stage_id", stageID),
			zap.String("description", description),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get deadline: %w", err)
	}

	if createdBy.Valid {
		d.CreatedBy = createdBy.String
	}

	return &d, nil
}

// getExecutor returns the context's transaction or the plain connection
func (r *DeadlineRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFrom(ctx, r.db)
}

// Verify interface compliance
var _ port.DeadlineRepository = (*DeadlineRepository)(nil)
