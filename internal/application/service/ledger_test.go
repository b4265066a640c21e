package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/udistrital/trabajo_grado_core/internal/domain/consolidation"
	"github.com/udistrital/trabajo_grado_core/internal/domain/entity"
)

// memLedger is an in-memory Stage Ledger implementing every port interface,
// including the conditional consolidate update, so service tests can exercise
// full decision/apply cycles without a database.
type memLedger struct {
	mu          sync.Mutex
	nextID      int64
	projects    map[int64]*entity.Project
	stages      map[int64]*entity.ProjectStage
	submissions map[int64]*entity.Submission
	endorsement map[int64]*entity.Endorsement
	evaluations map[int64]*entity.Evaluation
	deadlines   map[int64]*entity.Deadline
	sessions    map[int64]*entity.DefenseSession
	events      []*entity.AuditEvent

	// failConsolidate forces the conditional update to error, for testing
	// ledger-write failure surfacing.
	failConsolidate error
}

func newMemLedger() *memLedger {
	return &memLedger{
		projects:    make(map[int64]*entity.Project),
		stages:      make(map[int64]*entity.ProjectStage),
		submissions: make(map[int64]*entity.Submission),
		endorsement: make(map[int64]*entity.Endorsement),
		evaluations: make(map[int64]*entity.Evaluation),
		deadlines:   make(map[int64]*entity.Deadline),
		sessions:    make(map[int64]*entity.DefenseSession),
	}
}

func (l *memLedger) id() int64 {
	l.nextID++
	return l.nextID
}

// WithTransaction implements port.TransactionManager. The fake has no
// rollback; idempotence is what the tests assert.
func (l *memLedger) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- ProjectRepository ---

func (l *memLedger) Create(ctx context.Context, project *entity.Project) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	project.ID = l.id()
	project.CreatedAt = time.Now()
	l.projects[project.ID] = project
	return nil
}

func (l *memLedger) GetByID(ctx context.Context, id int64) (*entity.Project, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.projects[id], nil
}

func (l *memLedger) UpdateGlobalStatus(ctx context.Context, id int64, status entity.GlobalStatus) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.projects[id]; ok {
		p.GlobalStatus = status
	}
	return nil
}

func (l *memLedger) List(ctx context.Context, limit, offset int) ([]*entity.Project, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*entity.Project, 0, len(l.projects))
	for _, p := range l.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// projectRepo/stageRepo/etc. expose each port through a distinct receiver so
// one fake can satisfy every interface despite overlapping method names.

type stageRepo struct{ l *memLedger }

func (r stageRepo) Create(ctx context.Context, stage *entity.ProjectStage) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	stage.ID = r.l.id()
	stage.CreatedAt = time.Now()
	r.l.stages[stage.ID] = stage
	return nil
}

func (r stageRepo) GetByID(ctx context.Context, id int64) (*entity.ProjectStage, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	if s, ok := r.l.stages[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (r stageRepo) GetByProjectAndName(ctx context.Context, projectID int64, name entity.StageName) (*entity.ProjectStage, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	for _, s := range r.l.stages {
		if s.ProjectID == projectID && s.StageName == name {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (r stageRepo) GetByProjectID(ctx context.Context, projectID int64) ([]*entity.ProjectStage, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var out []*entity.ProjectStage
	for _, s := range r.l.stages {
		if s.ProjectID == projectID {
			copied := *s
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r stageRepo) UpdateSystemState(ctx context.Context, id int64, state entity.SystemState) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	if s, ok := r.l.stages[id]; ok {
		s.SystemState = state
	}
	return nil
}

func (r stageRepo) SetFinalGrade(ctx context.Context, id int64, grade int) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	s, ok := r.l.stages[id]
	if !ok || s.OfficialState != entity.OfficialPendiente {
		return consolidation.ErrAlreadyConsolidated
	}
	g := grade
	s.FinalGrade = &g
	return nil
}

func (r stageRepo) Consolidate(ctx context.Context, id int64, official entity.OfficialState, system entity.SystemState, finalGrade *int, observations string) (bool, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	if r.l.failConsolidate != nil {
		return false, r.l.failConsolidate
	}
	s, ok := r.l.stages[id]
	if !ok || s.OfficialState != entity.OfficialPendiente {
		return false, nil
	}
	s.OfficialState = official
	s.SystemState = system
	s.Observations = observations
	if finalGrade != nil {
		g := *finalGrade
		s.FinalGrade = &g
	}
	return true, nil
}

type submissionRepo struct{ l *memLedger }

func (r submissionRepo) Create(ctx context.Context, submission *entity.Submission) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	submission.ID = r.l.id()
	submission.CreatedAt = time.Now()
	r.l.submissions[submission.ID] = submission
	return nil
}

func (r submissionRepo) GetByID(ctx context.Context, id int64) (*entity.Submission, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	return r.l.submissions[id], nil
}

func (r submissionRepo) GetLatestByStageID(ctx context.Context, stageID int64) (*entity.Submission, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var latest *entity.Submission
	for _, s := range r.l.submissions {
		if s.StageID == stageID && (latest == nil || s.Version > latest.Version) {
			latest = s
		}
	}
	return latest, nil
}

func (r submissionRepo) GetByStageAndVersion(ctx context.Context, stageID int64, version int) (*entity.Submission, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	for _, s := range r.l.submissions {
		if s.StageID == stageID && s.Version == version {
			return s, nil
		}
	}
	return nil, nil
}

func (r submissionRepo) GetByStageID(ctx context.Context, stageID int64) ([]*entity.Submission, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var out []*entity.Submission
	for _, s := range r.l.submissions {
		if s.StageID == stageID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

type endorsementRepo struct{ l *memLedger }

func (r endorsementRepo) Create(ctx context.Context, endorsement *entity.Endorsement) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	endorsement.ID = r.l.id()
	endorsement.CreatedAt = time.Now()
	r.l.endorsement[endorsement.ID] = endorsement
	return nil
}

func (r endorsementRepo) GetBySubmissionID(ctx context.Context, submissionID int64) ([]*entity.Endorsement, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var out []*entity.Endorsement
	for _, e := range r.l.endorsement {
		if e.SubmissionID == submissionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r endorsementRepo) HasApproved(ctx context.Context, submissionID int64) (bool, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	for _, e := range r.l.endorsement {
		if e.SubmissionID == submissionID && e.Approved {
			return true, nil
		}
	}
	return false, nil
}

type evaluationRepo struct{ l *memLedger }

func (r evaluationRepo) Create(ctx context.Context, evaluation *entity.Evaluation) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	evaluation.ID = r.l.id()
	evaluation.CreatedAt = time.Now()
	r.l.evaluations[evaluation.ID] = evaluation
	return nil
}

func (r evaluationRepo) GetBySubmissionID(ctx context.Context, submissionID int64) ([]*entity.Evaluation, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var out []*entity.Evaluation
	for _, e := range r.l.evaluations {
		if e.SubmissionID == submissionID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r evaluationRepo) GetByEvaluatorAndSubmission(ctx context.Context, evaluatorID string, submissionID int64) (*entity.Evaluation, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	for _, e := range r.l.evaluations {
		if e.SubmissionID == submissionID && e.EvaluatorID == evaluatorID {
			return e, nil
		}
	}
	return nil, nil
}

type deadlineRepo struct{ l *memLedger }

func (r deadlineRepo) Create(ctx context.Context, deadline *entity.Deadline) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	deadline.ID = r.l.id()
	deadline.CreatedAt = time.Now()
	r.l.deadlines[deadline.ID] = deadline
	return nil
}

func (r deadlineRepo) GetByStageID(ctx context.Context, stageID int64) ([]*entity.Deadline, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var out []*entity.Deadline
	for _, d := range r.l.deadlines {
		if d.StageID == stageID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r deadlineRepo) GetByStageAndDescription(ctx context.Context, stageID int64, description string) (*entity.Deadline, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	for _, d := range r.l.deadlines {
		if d.StageID == stageID && d.Description == description {
			return d, nil
		}
	}
	return nil, nil
}

type sessionRepo struct{ l *memLedger }

func (r sessionRepo) Create(ctx context.Context, session *entity.DefenseSession) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	session.ID = r.l.id()
	session.CreatedAt = time.Now()
	r.l.sessions[session.ID] = session
	return nil
}

func (r sessionRepo) GetByStageID(ctx context.Context, stageID int64) (*entity.DefenseSession, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	for _, s := range r.l.sessions {
		if s.StageID == stageID {
			return s, nil
		}
	}
	return nil, nil
}

type auditRepo struct{ l *memLedger }

func (r auditRepo) Append(ctx context.Context, event *entity.AuditEvent) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	event.ID = r.l.id()
	event.CreatedAt = time.Now()
	r.l.events = append(r.l.events, event)
	return nil
}

func (r auditRepo) GetByProjectID(ctx context.Context, projectID int64) ([]*entity.AuditEvent, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var out []*entity.AuditEvent
	for _, e := range r.l.events {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *memLedger) eventsOfType(eventType string) []*entity.AuditEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*entity.AuditEvent
	for _, e := range l.events {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

// testLogger satisfies Logger and keeps tests quiet.
type testLogger struct{}

func (testLogger) Info(msg string, keysAndValues ...interface{})  {}
func (testLogger) Error(msg string, keysAndValues ...interface{}) {}
