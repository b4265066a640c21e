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

// EvaluationRepository implements port.EvaluationRepository over SQLite.
type EvaluationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEvaluationRepository creates a new evaluation repository
func NewEvaluationRepository(db *sql.DB, logger *zap.Logger) port.EvaluationRepository {
	return &EvaluationRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a verdict. The UNIQUE(evaluator_id, submission_id)
// constraint backs the one-verdict-per-evaluator rule at the store level.
func (r *EvaluationRepository) Create(ctx context.Context, evaluation *entity.Evaluation) error {
	query := `
		INSERT INTO evaluations (submission_id, stage_id, evaluator_id, official_result, observations, carried_over)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		evaluation.SubmissionID,
		evaluation.StageID,
		evaluation.EvaluatorID,
		evaluation.OfficialResult.String(),
		evaluation.Observations,
		evaluation.CarriedOver,
	)
	if err != nil {
		r.logger.Error("Failed to create evaluation",
			zap.Int64("submission_id", evaluation.SubmissionID),
			zap.String("evaluator_id", evaluation.EvaluatorID),
			zap.Error(err))
		return fmt.Errorf("failed to create evaluation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	evaluation.ID = id
	return nil
}

// GetBySubmissionID retrieves all verdicts for a submission
func (r *EvaluationRepository) GetBySubmissionID(ctx context.Context, submissionID int64) ([]*entity.Evaluation, error) {
	query := `
		SELECT id, submission_id, stage_id, evaluator_id, official_result,
			observations, carried_over, created_at
		FROM evaluations
		WHERE submission_id = ?
		ORDER BY created_at
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, submissionID)
	if err != nil {
		r.logger.Error("Failed to get evaluations by submission ID",
			zap.Int64("submission_id", submissionID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get evaluations: %w", err)
	}
	defer rows.Close()

	var evaluations []*entity.Evaluation
	for rows.Next() {
		evaluation, err := r.scanEvaluationRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		evaluations = append(evaluations, evaluation)
	}

	return evaluations, rows.Err()
}

// GetByEvaluatorAndSubmission retrieves one evaluator's verdict, if any
func (r *EvaluationRepository) GetByEvaluatorAndSubmission(ctx context.Context, evaluatorID string, submissionID int64) (*entity.Evaluation, error) {
	query := `
		SELECT id, submission_id, stage_id, evaluator_id, official_result,
			observations, carried_over, created_at
		FROM evaluations
		WHERE evaluator_id = ? AND submission_id = ?
	`

	var e entity.Evaluation
	var result string
	var observations sql.NullString

	err := r.getExecutor(ctx).QueryRowContext(ctx, query, evaluatorID, submissionID).Scan(
		&e.ID,
		&e.SubmissionID,
		&e.StageID,
		&e.EvaluatorID,
		&result,
		&observations,
		&e.CarriedOver,
		&e.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get evaluation by evaluator and submission",
			zap.String("evaluator_id", evaluatorID),
			zap.Int64("submission_id", submissionID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}

	e.OfficialResult = entity.OfficialResult(result)
	if observations.Valid {
		e.Observations = observations.String
	}

	return &e, nil
}

// scanEvaluationRow scans an evaluation from a multi-row result
func (r *EvaluationRepository) scanEvaluationRow(rows *sql.Rows) (*entity.Evaluation, error) {
	var e entity.Evaluation
	var result string
	var observations sql.NullString

	err := rows.Scan(
		&e.ID,
		&e.SubmissionID,
		&e.StageID,
		&e.EvaluatorID,
		&result,
		&observations,
		&e.CarriedOver,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.OfficialResult = entity.OfficialResult(result)
	if observations.Valid {
		e.Observations = observations.String
	}

	return &e, nil
}

// getExecutor returns the context's transaction or the plain connection
func (r *EvaluationRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFrom(ctx, r.db)
}

// Verify interface compliance
var _ port.EvaluationRepository = (*EvaluationRepository)(nil)
