package entity

import "time"

// Deadline is a remediation or delivery due date attached to a stage, created
// by the transition orchestrator as a side effect of certain consolidation
// outcomes.
type Deadline struct {
	ID          int64     `json:"id"`
	StageID     int64     `json:"stage_id"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// DefenseSession is the scheduled oral defense for a SUSTENTACION stage.
type DefenseSession struct {
	ID          int64     `json:"id"`
	StageID     int64     `json:"stage_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Location    string    `json:"location"`
	JuryIDs     string    `json:"jury_ids"`
	CreatedAt   time.Time `json:"created_at"`
}
