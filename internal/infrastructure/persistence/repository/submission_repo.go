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

// SubmissionRepository implements port.SubmissionRepository over SQLite.
type SubmissionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *sql.DB, logger *zap.Logger) port.SubmissionRepository {
	return &SubmissionRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new submission and sets its generated ID
func (r *SubmissionRepository) Create(ctx context.Context, submission *entity.Submission) error {
	query := `
		INSERT INTO submissions (stage_id, submitted_by, version, document_url, notes)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		submission.StageID,
		submission.SubmittedBy,
		submission.Version,
		submission.DocumentURL,
		submission.Notes,
	)
	if err != nil {
		r.logger.Error("Failed to create submission",
			zap.Int64("stage_id", submission.StageID),
			zap.Int("version", submission.Version),
			zap.Error(err))
		return fmt.Errorf("failed to create submission: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	submission.ID = id
	return nil
}

// GetByID retrieves a submission by its ID
func (r *SubmissionRepository) GetByID(ctx context.Context, id int64) (*entity.Submission, error) {
	query := `
		SELECT id, stage_id, submitted_by, version, document_url, notes, created_at
		FROM submissions
		WHERE id = ?
	`

	submission, err := r.scanSubmission(r.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get submission by ID",
			zap.Int64("id", id),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return submission, nil
}

// GetLatestByStageID retrieves the highest-version submission of a stage
func (r *SubmissionRepository) GetLatestByStageID(ctx context.Context, stageID int64) (*entity.Submission, error) {
	query := `
		SELECT id, stage_id, submitted_by, version, document_url, notes, created_at
		FROM submissions
		WHERE stage_id = ?
		ORDER BY version DESC
		LIMIT 1
	`

	submission, err := r.scanSubmission(r.getExecutor(ctx).QueryRowContext(ctx, query, stageID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get latest submission",
			zap.Int64("stage_id", stageID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get latest submission: %w", err)
	}

	return submission, nil
}

// GetByStageAndVersion retrieves one specific version of a stage's document
func (r *SubmissionRepository) GetByStageAndVersion(ctx context.Context, stageID int64, version int) (*entity.Submission, error) {
	query := `
		SELECT id, stage_id, submitted_by, version, document_url, notes, created_at
		FROM submissions
		WHERE stage_id = ? AND version = ?
	`

	submission, err := r.scanSubmission(r.getExecutor(ctx).QueryRowContext(ctx, query, stageID, version))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get submission by version",
			zap.Int64("stage_id", stageID),
			zap.Int("version", version),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return submission, nil
}

// GetByStageID retrieves all submissions of a stage ordered by version
func (r *SubmissionRepository) GetByStageID(ctx context.Context, stageID int64) ([]*entity.Submission, error) {
	query := `
		SELECT id, stage_id, submitted_by, version, document_url, notes, created_at
		FROM submissions
		WHERE stage_id = ?
		ORDER BY version
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, stageID)
	if err != nil {
		r.logger.Error("Failed to get submissions by stage ID",
			zap.Int64("stage_id", stageID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get submissions: %w", err)
	}
	defer rows.Close()

	var submissions []*entity.Submission
	for rows.Next() {
		var s entity.Submission
		var documentURL, notes sql.NullString
		err := rows.Scan(
			&s.ID,
			&s.StageID,
			&s.SubmittedBy,
			&s.Version,
			&documentURL,
			&notes,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		if documentURL.Valid {
			s.DocumentURL = documentURL.String
		}
		if notes.Valid {
			s.Notes = notes.String
		}
		submissions = append(submissions, &s)
	}

	return submissions, rows.Err()
}

// scanSubmission scans a single submission row
func (r *SubmissionRepository) scanSubmission(row *sql.Row) (*entity.Submission, error) {
	var s entity.Submission
	var documentURL, notes sql.NullString

	err := row.Scan(
		&s.ID,
		&s.StageID,
		&s.SubmittedBy,
		&s.Version,
		&documentURL,
		&notes,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if documentURL.Valid {
		s.DocumentURL = documentURL.String
	}
	if notes.Valid {
		s.Notes = notes.String
	}

	return &s, nil
}

// getExecutor returns the context's transaction or the plain connection
func (r *SubmissionRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFrom(ctx, r.db)
}

// Verify interface compliance
var _ port.SubmissionRepository = (*SubmissionRepository)(nil)
