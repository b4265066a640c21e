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

// DefenseSessionRepository implements port.DefenseSessionRepository over SQLite.
type DefenseSessionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDefenseSessionRepository creates a new defense session repository
func NewDefenseSessionRepository(db *sql.DB, logger *zap.Logger) port.DefenseSessionRepository {
	return &DefenseSessionRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new defense session and sets its generated ID
func (r *DefenseSessionRepository) Create(ctx context.Context, session *entity.DefenseSession) error {
	query := `
		INSERT INTO defense_sessions (stage_id, scheduled_at, location, jury_ids)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		session.StageID,
		session.ScheduledAt,
		session.Location,
		session.JuryIDs,
	)
	if err != nil {
		r.logger.Error("Failed to create defense session",
			zap.Int64("stage_id", session.StageID),
			zap.Error(err))
		return fmt.Errorf("failed to create defense session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	session.ID = id
	return nil
}

// GetByStageID retrieves the latest scheduled session for a stage
func (r *DefenseSessionRepository) GetByStageID(ctx context.Context, stageID int64) (*entity.DefenseSession, error) {
	query := `
		SELECT id, stage_id, scheduled_at, location, jury_ids, created_at
		FROM defense_sessions
		WHERE stage_id = ?
		ORDER BY scheduled_at DESC
		LIMIT 1
	`

	var s entity.DefenseSession
	var location, juryIDs sql.NullString

	err := r.getExecutor(ctx).QueryRowContext(ctx, query, stageID).Scan(
		&s.ID,
		&s.StageID,
		&s.ScheduledAt,
		&location,
		&juryIDs,
		&s.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get defense session by stage ID",
			zap.Int64("stage_id", stageID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get defense session: %w", err)
	}

	if location.Valid {
		s.Location = location.String
	}
	if juryIDs.Valid {
		s.JuryIDs = juryIDs.String
	}

	return &s, nil
}

// getExecutor returns the context's transaction or the plain connection
func (r *DefenseSessionRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFrom(ctx, r.db)
}

// Verify interface compliance
var _ port.DefenseSessionRepository = (*DefenseSessionRepository)(nil)
