package entity

import "time"

// Submission is one versioned delivery of a stage document. Versions start at
// 1 and increment per stage; a submission is immutable once created.
type Submission struct {
	ID          int64     `json:"id"`
	StageID     int64     `json:"stage_id"`
	SubmittedBy string    `json:"submitted_by"`
	Version     int       `json:"version"`
	DocumentURL string    `json:"document_url"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

// Endorsement is the director's sign-off on a submission. At least one
// approved endorsement must exist before jury evaluation of ANTEPROYECTO or
// INFORME_FINAL may proceed.
type Endorsement struct {
	ID           int64     `json:"id"`
	SubmissionID int64     `json:"submission_id"`
	EndorsedBy   string    `json:"endorsed_by"`
	Approved     bool      `json:"approved"`
	Comments     string    `json:"comments"`
	CreatedAt    time.Time `json:"created_at"`
}
