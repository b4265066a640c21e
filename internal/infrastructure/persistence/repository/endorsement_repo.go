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

// EndorsementRepository implements port.EndorsementRepository over SQLite.
type EndorsementRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEndorsementRepository creates a new endorsement repository
func NewEndorsementRepository(db *sql.DB, logger *zap.Logger) port.EndorsementRepository {
	return &EndorsementRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new endorsement and sets its generated ID
func (r *EndorsementRepository) Create(ctx context.Context, endorsement *entity.Endorsement) error {
	query := `
		INSERT INTO endorsements (submission_id, endorsed_by, approved, comments)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		endorsement.SubmissionID,
		endorsement.EndorsedBy,
		endorsement.Approved,
		endorsement.Comments,
	)
	if err != nil {
		r.logger.Error("Failed to create endorsement",
			zap.Int64("submission_id", endorsement.SubmissionID),
			zap.Error(err))
		return fmt.Errorf("failed to create endorsement: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	endorsement.ID = id
	return nil
}

// GetBySubmissionID retrieves all endorsements for a submission
func (r *EndorsementRepository) GetBySubmissionID(ctx context.Context, submissionID int64) ([]*entity.Endorsement, error) {
	query := `
		SELECT id, submission_id, endorsed_by, approved, comments, created_at
		FROM endorsements
		WHERE submission_id = ?
		ORDER BY created_at
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, submissionID)
	if err != nil {
		r.logger.Error("Failed to get endorsements by submission ID",
			zap.Int64("submission_id", submissionID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get endorsements: %w", err)
	}
	defer rows.Close()

	var endorsements []*entity.Endorsement
	for rows.Next() {
		var e entity.Endorsement
		var comments sql.NullString
		err := rows.Scan(
			&e.ID,
			&e.SubmissionID,
			&e.EndorsedBy,
			&e.Approved,
			&comments,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan endorsement: %w", err)
		}
		if comments.Valid {
			e.Comments = comments.String
		}
		endorsements = append(endorsements, &e)
	}

	return endorsements, rows.Err()
}

// HasApproved reports whether at least one approved endorsement exists for
// the submission
func (r *EndorsementRepository) HasApproved(ctx context.Context, submissionID int64) (bool, error) {
	query := `SELECT COUNT(1) FROM endorsements WHERE submission_id = ? AND approved = TRUE`

	var count int
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, submissionID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to check approved endorsement",
			zap.Int64("submission_id", submissionID),
			zap.Error(err))
		return false, fmt.Errorf("failed to check approved endorsement: %w", err)
	}

	return count > 0, nil
}

// getExecutor returns the context's transaction or the plain connection
func (r *EndorsementRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFrom(ctx, r.db)
}

// Verify interface compliance
var _ port.EndorsementRepository = (*EndorsementRepository)(nil)
