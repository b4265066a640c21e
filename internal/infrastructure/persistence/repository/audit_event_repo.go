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

// AuditEventRepository implements the append-only trail over SQLite. Events
// are never updated or deleted.
type AuditEventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditEventRepository creates a new audit event repository
func NewAuditEventRepository(db *sql.DB, logger *zap.Logger) port.AuditEventRepository {
	return &AuditEventRepository{
		db:     db,
		logger: logger,
	}
}

// Append records a new audit event and sets its generated ID
func (r *AuditEventRepository) Append(ctx context.Context, event *entity.AuditEvent) error {
	query := `
		INSERT INTO audit_events (project_id, user_id, event_type, description, metadata)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		event.ProjectID,
		event.UserID,
		event.EventType,
		event.Description,
		event.Metadata,
	)
	if err != nil {
		r.logger.Error("Failed to append audit event",
			zap.Int64("project_id", event.ProjectID),
			zap.String("event_type", event.EventType),
			zap.Error(err))
		return fmt.Errorf("failed to append audit event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	event.ID = id
	return nil
}

// GetByProjectID retrieves the audit trail of a project in insertion order
func (r *AuditEventRepository) GetByProjectID(ctx context.Context, projectID int64) ([]*entity.AuditEvent, error) {
	query := `
		SELECT id, project_id, user_id, event_type, description, metadata, created_at
		FROM audit_events
		WHERE project_id = ?
		ORDER BY id
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to get audit events by project ID",
			zap.Int64("project_id", projectID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get audit events: %w", err)
	}
	defer rows.Close()

	var events []*entity.AuditEvent
	for rows.Next() {
		var e entity.AuditEvent
		var userID, description, metadata sql.NullString
		err := rows.Scan(
			&e.ID,
			&e.ProjectID,
			&userID,
			&e.EventType,
			&description,
			&metadata,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		if userID.Valid {
			e.UserID = userID.String
		}
		if description.Valid {
			e.Description = description.String
		}
		if metadata.Valid {
			e.Metadata = metadata.String
		}
		events = append(events, &e)
	}

	return events, rows.Err()
}

// getExecutor returns the context's transaction or the plain connection
func (r *AuditEventRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFrom(ctx, r.db)
}

// Verify interface compliance
var _ port.AuditEventRepository = (*AuditEventRepository)(nil)
