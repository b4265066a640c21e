package entity

import "time"

// Project represents a degree work ("trabajo de grado") tracked through the
// proposal → pre-project → final report → defense pipeline.
type Project struct {
	ID           int64        `json:"id"`
	Title        string       `json:"title"`
	Program      string       `json:"program"`
	Modality     string       `json:"modality"`
	DirectorID   string       `json:"director_id"`
	GlobalStatus GlobalStatus `json:"global_status"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ProjectStage is one phase of a project's pipeline. Exactly one instance
// exists per (project, stage name); a successor stage is created only after
// its predecessor consolidates as APROBADA.
type ProjectStage struct {
	ID            int64         `json:"id"`
	ProjectID     int64         `json:"project_id"`
	StageName     StageName     `json:"stage_name"`
	SystemState   SystemState   `json:"system_state"`
	OfficialState OfficialState `json:"official_state"`
	FinalGrade    *int          `json:"final_grade,omitempty"`
	Observations  string        `json:"observations"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Consolidated reports whether the stage already holds a formal outcome.
// Invariant: a non-pending official state implies the stage is CERRADA or
// CON_OBSERVACIONES.
func (s *ProjectStage) Consolidated() bool {
	return s.OfficialState != OfficialPendiente
}
