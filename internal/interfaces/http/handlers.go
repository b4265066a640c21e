package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/udistrital/trabajo_grado_core/internal/application/service"
	"github.com/udistrital/trabajo_grado_core/internal/domain/consolidation"
	"github.com/udistrital/trabajo_grado_core/internal/domain/entity"
	"github.com/udistrital/trabajo_grado_core/internal/domain/grading"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	projects      service.ProjectService
	submissions   service.SubmissionService
	reviews       service.ReviewService
	consolidation service.ConsolidationService
	logger        Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	projects service.ProjectService,
	submissions service.SubmissionService,
	reviews service.ReviewService,
	consolidation service.ConsolidationService,
	logger Logger,
) *Handlers {
	return &Handlers{
		projects:      projects,
		submissions:   submissions,
		reviews:       reviews,
		consolidation: consolidation,
		logger:        logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// statusForError maps the service error taxonomy to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, service.ErrStageNotFound),
		errors.Is(err, service.ErrSubmissionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateEvaluation),
		errors.Is(err, consolidation.ErrAlreadyConsolidated):
		return http.StatusConflict
	case errors.Is(err, service.ErrStageClosed),
		errors.Is(err, service.ErrWrongStage),
		errors.Is(err, service.ErrPendingDecision),
		errors.Is(err, service.ErrManualDueDateRequired),
		errors.Is(err, service.ErrProjectNotActive),
		errors.Is(err, service.ErrDefenseNotApproved),
		errors.Is(err, consolidation.ErrEndorsementMissing),
		errors.Is(err, grading.ErrInvalidGrade),
		errors.Is(err, grading.ErrUnknownResult):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(status, Response{Success: false, Error: "internal error"})
		return
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid id"})
		return 0, false
	}
	return id, true
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// CreateProjectRequest is the body of POST /api/projects
type CreateProjectRequest struct {
	Title      string `json:"title" binding:"required"`
	Program    string `json:"program"`
	Modality   string `json:"modality"`
	DirectorID string `json:"director_id" binding:"required"`
	CreatedBy  string `json:"created_by" binding:"required"`
}

// CreateProject handles POST /api/projects
func (h *Handlers) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	project, err := h.projects.CreateProject(c.Request.Context(), service.CreateProjectInput{
		Title:      req.Title,
		Program:    req.Program,
		Modality:   req.Modality,
		DirectorID: req.DirectorID,
		CreatedBy:  req.CreatedBy,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: project})
}

// ListProjects handles GET /api/projects
func (h *Handlers) ListProjects(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	projects, err := h.projects.ListProjects(c.Request.Context(), limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: projects})
}

// GetProject handles GET /api/projects/:id
func (h *Handlers) GetProject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	project, err := h.projects.GetProject(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: project})
}

// GetStages handles GET /api/projects/:id/stages
func (h *Handlers) GetStages(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	stages, err := h.projects.GetStages(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: stages})
}

// GetAuditTrail handles GET /api/projects/:id/audit
func (h *Handlers) GetAuditTrail(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	events, err := h.projects.GetAuditTrail(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: events})
}

// FinalDeliveryRequest is the body of POST /api/projects/:id/final-delivery
type FinalDeliveryRequest struct {
	DeliveredBy string `json:"delivered_by" binding:"required"`
}

// RegisterFinalDelivery handles POST /api/projects/:id/final-delivery
func (h *Handlers) RegisterFinalDelivery(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req FinalDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	if err := h.projects.RegisterFinalDelivery(c.Request.Context(), id, req.DeliveredBy); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// OverrideStatusRequest is the body of PUT /api/projects/:id/status
type OverrideStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	ActorID string `json:"actor_id" binding:"required"`
	Reason  string `json:"reason"`
}

// OverrideGlobalStatus handles PUT /api/projects/:id/status
func (h *Handlers) OverrideGlobalStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req OverrideStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	err := h.projects.OverrideGlobalStatus(c.Request.Context(), id, entity.GlobalStatus(req.Status), req.ActorID, req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// CreateSubmissionRequest is the body of POST /api/stages/:id/submissions
type CreateSubmissionRequest struct {
	SubmittedBy string `json:"submitted_by" binding:"required"`
	DocumentURL string `json:"document_url"`
	Notes       string `json:"notes"`
}

// CreateSubmission handles POST /api/stages/:id/submissions
func (h *Handlers) CreateSubmission(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	submission, err := h.submissions.CreateSubmission(c.Request.Context(), service.CreateSubmissionInput{
		StageID:     id,
		SubmittedBy: req.SubmittedBy,
		DocumentURL: req.DocumentURL,
		Notes:       req.Notes,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: submission})
}

// GetSubmissions handles GET /api/stages/:id/submissions
func (h *Handlers) GetSubmissions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	submissions, err := h.submissions.GetSubmissions(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: submissions})
}

// RecordEndorsementRequest is the body of POST /api/submissions/:id/endorsements
type RecordEndorsementRequest struct {
	EndorsedBy string `json:"endorsed_by" binding:"required"`
	Approved   *bool  `json:"approved" binding:"required"`
	Comments   string `json:"comments"`
}

// RecordEndorsement handles POST /api/submissions/:id/endorsements
func (h *Handlers) RecordEndorsement(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req RecordEndorsementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	endorsement, err := h.reviews.RecordEndorsement(c.Request.Context(), service.RecordEndorsementInput{
		SubmissionID: id,
		EndorsedBy:   req.EndorsedBy,
		Approved:     *req.Approved,
		Comments:     req.Comments,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: endorsement})
}

// AssignJuryRequest is the body of POST /api/stages/:id/jury
type AssignJuryRequest struct {
	JuryIDs    []string `json:"jury_ids" binding:"required"`
	AssignedBy string   `json:"assigned_by" binding:"required"`
}

// AssignJury handles POST /api/stages/:id/jury
func (h *Handlers) AssignJury(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req AssignJuryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	if err := h.reviews.AssignJury(c.Request.Context(), id, req.JuryIDs, req.AssignedBy); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// RecordEvaluationRequest is the body of POST /api/stages/:id/evaluations
type RecordEvaluationRequest struct {
	EvaluatorID  string `json:"evaluator_id" binding:"required"`
	Result       string `json:"result" binding:"required"`
	Observations string `json:"observations"`
}

// RecordEvaluation handles POST /api/stages/:id/evaluations
func (h *Handlers) RecordEvaluation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req RecordEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	evaluation, err := h.reviews.RecordEvaluation(c.Request.Context(), service.RecordEvaluationInput{
		StageID:      id,
		EvaluatorID:  req.EvaluatorID,
		Result:       entity.OfficialResult(req.Result),
		Observations: req.Observations,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: evaluation})
}

// RecordGradeRequest is the body of POST /api/stages/:id/grade
type RecordGradeRequest struct {
	Grade      *int   `json:"grade" binding:"required"`
	RecordedBy string `json:"recorded_by" binding:"required"`
}

// RecordDefenseGrade handles POST /api/stages/:id/grade
func (h *Handlers) RecordDefenseGrade(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req RecordGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	if err := h.reviews.RecordDefenseGrade(c.Request.Context(), id, *req.Grade, req.RecordedBy); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// ScheduleDefenseRequest is the body of POST /api/stages/:id/defense
type ScheduleDefenseRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Location    string    `json:"location"`
	JuryIDs     []string  `json:"jury_ids"`
	ScheduledBy string    `json:"scheduled_by" binding:"required"`
}

// ScheduleDefense handles POST /api/stages/:id/defense
func (h *Handlers) ScheduleDefense(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req ScheduleDefenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	session, err := h.reviews.ScheduleDefense(c.Request.Context(), service.ScheduleDefenseInput{
		StageID:     id,
		ScheduledAt: req.ScheduledAt,
		Location:    req.Location,
		JuryIDs:     req.JuryIDs,
		ScheduledBy: req.ScheduledBy,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: session})
}

// GetDecision handles GET /api/stages/:id/decision. It previews the
// consolidation outcome without committing anything.
func (h *Handlers) GetDecision(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	decision, err := h.consolidation.Decide(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: decision})
}

// ConsolidateRequest is the body of POST /api/stages/:id/consolidate
type ConsolidateRequest struct {
	ActorID       string     `json:"actor_id" binding:"required"`
	ManualDueDate *time.Time `json:"manual_due_date"`
}

// Consolidate handles POST /api/stages/:id/consolidate
func (h *Handlers) Consolidate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req ConsolidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	decision, err := h.consolidation.Consolidate(c.Request.Context(), id, service.ApplyOptions{
		ActorID:       req.ActorID,
		ManualDueDate: req.ManualDueDate,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: decision})
}
