package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/udistrital/trabajo_grado_core/internal/application/port"
	"github.com/udistrital/trabajo_grado_core/internal/domain/consolidation"
	"github.com/udistrital/trabajo_grado_core/internal/domain/entity"
	"github.com/udistrital/trabajo_grado_core/internal/infrastructure/persistence/sqlite"
)

// StageRepository implements port.StageRepository over SQLite.
type StageRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStageRepository creates a new stage repository
func NewStageRepository(db *sql.DB, logger *zap.Logger) port.StageRepository {
	return &StageRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new stage. The UNIQUE(project_id, stage_name) constraint
// keeps successor creation idempotent under retries.
func (r *StageRepository) Create(ctx context.Context, stage *entity.ProjectStage) error {
	query := `
		INSERT INTO project_stages (project_id, stage_name, system_state, official_state, observations)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		stage.ProjectID,
		stage.StageName.String(),
		stage.SystemState.String(),
		stage.OfficialState.String(),
		stage.Observations,
	)
	if err != nil {
		r.logger.Error("Failed to create stage",
			zap.Int64("project_id", stage.ProjectID),
			zap.String("stage_name", stage.StageName.String()),
			zap.Error(err))
		return fmt.Errorf("failed to create stage: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	stage.ID = id
	return nil
}

// GetByID retrieves a stage by its ID
func (r *StageRepository) GetByID(ctx context.Context, id int64) (*entity.ProjectStage, error) {
	query := `
		SELECT id, project_id, stage_name, system_state, official_state,
			final_grade, observations, created_at, updated_at
		FROM project_stages
		WHERE id = ?
	`

	stage, err := r.scanStage(r.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get stage by ID",
			zap.Int64("id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get stage: %w", err)
	}

	return stage, nil
}

// GetByProjectAndName retrieves the single stage of a given name for a project
func (r *StageRepository) GetByProjectAndName(ctx context.Context, projectID int64, name entity.StageName) (*entity.ProjectStage, error) {
	query := `
		SELECT id, project_id, stage_name, system_state, official_state,
			final_grade, observations, created_at, updated_at
		FROM project_stages
		WHERE project_id = ? AND stage_name = ?
	`

	stage, err := r.scanStage(r.getExecutor(ctx).QueryRowContext(ctx, query, projectID, name.String()))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get stage by project and name",
			zap.Int64("project_id", projectID),
			zap.String("stage_name", name.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get stage: %w", err)
	}

	return stage, nil
}

// GetByProjectID retrieves all stages of a project in pipeline order
func (r *StageRepository) GetByProjectID(ctx context.Context, projectID int64) ([]*entity.ProjectStage, error) {
	query := `
		SELECT id, project_id, stage_name, system_state, official_state,
			final_grade, observations, created_at, updated_at
		FROM project_stages
		WHERE project_id = ?
		ORDER BY id
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to get stages by project ID",
			zap.Int64("project_id", projectID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get stages: %w", err)
	}
	defer rows.Close()

	var stages []*entity.ProjectStage
	for rows.Next() {
		stage, err := r.scanStageRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage: %w", err)
		}
		stages = append(stages, stage)
	}

	return stages, rows.Err()
}

// UpdateSystemState updates the workflow state of a stage
func (r *StageRepository) UpdateSystemState(ctx context.Context, id int64, state entity.SystemState) error {
	query := `UPDATE project_stages SET system_state = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query, state.String(), id)
	if err != nil {
		r.logger.Error("Failed to update stage system state",
			zap.Int64("id", id),
			zap.String("state", state.String()),
			zap.Error(err))
		return fmt.Errorf("failed to update stage system state: %w", err)
	}

	return nil
}

// SetFinalGrade records the defense grade on a still-pending stage
func (r *StageRepository) SetFinalGrade(ctx context.Context, id int64, grade int) error {
	query := `
		UPDATE project_stages
		SET final_grade = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND official_state = 'PENDIENTE'
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query, grade, id)
	if err != nil {
		r.logger.Error("Failed to set final grade",
			zap.Int64("id", id),
			zap.Int("grade", grade),
			zap.Error(err))
		return fmt.Errorf("failed to set final grade: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check grade update: %w", err)
	}
	if affected == 0 {
		return consolidation.ErrAlreadyConsolidated
	}

	return nil
}

// Consolidate records the official outcome of a stage. The update is guarded
// on official_state = 'PENDIENTE'; a zero row count means another
// consolidation already won and the caller must not apply side effects again.
func (r *StageRepository) Consolidate(ctx context.Context, id int64, official entity.OfficialState, system entity.SystemState, finalGrade *int, observations string) (bool, error) {
	query := `
		UPDATE project_stages
		SET official_state = ?, system_state = ?, final_grade = ?,
			observations = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND official_state = 'PENDIENTE'
	`

	var grade sql.NullInt64
	if finalGrade != nil {
		grade = sql.NullInt64{Int64: int64(*finalGrade), Valid: true}
	}

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		official.String(),
		system.String(),
		grade,
		observations,
		id,
	)
	if err != nil {
		r.logger.Error("Failed to consolidate stage",
			zap.Int64("id", id),
			zap.String("official_state", official.String()),
			zap.Error(err))
		return false, fmt.Errorf("failed to consolidate stage: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected > 0, nil
}

// scanStage scans a single stage row
func (r *StageRepository) scanStage(row *sql.Row) (*entity.ProjectStage, error) {
	var s entity.ProjectStage
	var stageName, systemState, officialState string
	var finalGrade sql.NullInt64
	var observations sql.NullString

	err := row.Scan(
		&s.ID,
		&s.ProjectID,
		&stageName,
		&systemState,
		&officialState,
		&finalGrade,
		&observations,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.StageName = entity.StageName(stageName)
	s.SystemState = entity.SystemState(systemState)
	s.OfficialState = entity.OfficialState(officialState)
	if finalGrade.Valid {
		grade := int(finalGrade.Int64)
		s.FinalGrade = &grade
	}
	if observations.Valid {
		s.Observations = observations.String
	}

	return &s, nil
}

// scanStageRow scans a stage from a multi-row result
func (r *StageRepository) scanStageRow(rows *sql.Rows) (*entity.ProjectStage, error) {
	var s entity.ProjectStage
	var stageName, systemState, officialState string
	var finalGrade sql.NullInt64
	var observations sql.NullString

	err := rows.Scan(
		&s.ID,
		&s.ProjectID,
		&stageName,
		&systemState,
		&officialState,
		&finalGrade,
		&observations,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.StageName = entity.StageName(stageName)
	s.SystemState = entity.SystemState(systemState)
	s.OfficialState = entity.OfficialState(officialState)
	if finalGrade.Valid {
		grade := int(finalGrade.Int64)
		s.FinalGrade = &grade
	}
	if observations.Valid {
		s.Observations = observations.String
	}

	return &s, nil
}

// getExecutor returns the context's transaction or the plain connection
func (r *StageRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFrom(ctx, r.db)
}

// Verify interface compliance
var _ port.StageRepository = (*StageRepository)(nil)
