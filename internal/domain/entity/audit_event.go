package entity

import "time"

// AuditEvent is one append-only record of a state-changing decision. Every
// mutating operation appends exactly one event; the metadata field captures
// the raw inputs of the decision as JSON.
type AuditEvent struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project_id"`
	UserID      string    `json:"user_id"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
	Metadata    string    `json:"metadata"`
	CreatedAt   time.Time `json:"created_at"`
}
