package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/udistrital/trabajo_grado_core/internal/application/port"
	"github.com/udistrital/trabajo_grado_core/internal/domain/entity"
)

// CreateProjectInput carries the registration data for a new degree work.
type CreateProjectInput struct {
	Title      string
	Program    string
	Modality   string
	DirectorID string
	CreatedBy  string
}

// ProjectService manages the project lifecycle around the stage pipeline.
type ProjectService interface {
	// CreateProject registers a project as VIGENTE and opens its PROPUESTA
	// stage in BORRADOR.
	CreateProject(ctx context.Context, in CreateProjectInput) (*entity.Project, error)

	GetProject(ctx context.Context, id int64) (*entity.Project, error)
	ListProjects(ctx context.Context, limit, offset int) ([]*entity.Project, error)
	GetStages(ctx context.Context, projectID int64) ([]*entity.ProjectStage, error)
	GetAuditTrail(ctx context.Context, projectID int64) ([]*entity.AuditEvent, error)

	// RegisterFinalDelivery flips the project to FINALIZADO once the approved
	// defense's corrected document is delivered. This is the only operation
	// that closes a project through the pipeline.
	RegisterFinalDelivery(ctx context.Context, projectID int64, deliveredBy string) error

	// OverrideGlobalStatus applies an administrative VENCIDO/CANCELADO
	// override.
	OverrideGlobalStatus(ctx context.Context, projectID int64, status entity.GlobalStatus, actorID, reason string) error
}

type projectServiceImpl struct {
	projectRepo port.ProjectRepository
	stageRepo   port.StageRepository
	auditRepo   port.AuditEventRepository
	txManager   port.TransactionManager
	logger      Logger
}

// NewProjectService creates a new ProjectService.
func NewProjectService(
	projectRepo port.ProjectRepository,
	stageRepo port.StageRepository,
	auditRepo port.AuditEventRepository,
	txManager port.TransactionManager,
	logger Logger,
) ProjectService {
	return &projectServiceImpl{
		projectRepo: projectRepo,
		stageRepo:   stageRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

func (s *projectServiceImpl) CreateProject(ctx context.Context, in CreateProjectInput) (*entity.Project, error) {
	project := &entity.Project{
		Title:        in.Title,
		Program:      in.Program,
		Modality:     in.Modality,
		DirectorID:   in.DirectorID,
		GlobalStatus: entity.GlobalStatusVigente,
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.projectRepo.Create(txCtx, project); err != nil {
			return fmt.Errorf("create project: %w", err)
		}

		stage := &entity.ProjectStage{
			ProjectID:     project.ID,
			StageName:     entity.StagePropuesta,
			SystemState:   entity.SystemBorrador,
			OfficialState: entity.OfficialPendiente,
		}
		if err := s.stageRepo.Create(txCtx, stage); err != nil {
			return fmt.Errorf("create proposal stage: %w", err)
		}

		event := &entity.AuditEvent{
			ProjectID:   project.ID,
			UserID:      in.CreatedBy,
			EventType:   entity.EventProjectCreated,
			Description: fmt.Sprintf("Proyecto %q registrado, etapa PROPUESTA abierta", in.Title),
		}
		if err := s.auditRepo.Append(txCtx, event); err != nil {
			return fmt.Errorf("append audit event: %w", err)
		}
		return nil
	})

	if err != nil {
		s.logger.Error("Failed to create project", "error", err, "title", in.Title)
		return nil, err
	}

	s.logger.Info("Project created", "id", project.ID, "title", in.Title)
	return project, nil
}

func (s *projectServiceImpl) GetProject(ctx context.Context, id int64) (*entity.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

func (s *projectServiceImpl) ListProjects(ctx context.Context, limit, offset int) ([]*entity.Project, error) {
	return s.projectRepo.List(ctx, limit, offset)
}

func (s *projectServiceImpl) GetStages(ctx context.Context, projectID int64) ([]*entity.ProjectStage, error) {
	return s.stageRepo.GetByProjectID(ctx, projectID)
}

func (s *projectServiceImpl) GetAuditTrail(ctx context.Context, projectID int64) ([]*entity.AuditEvent, error) {
	return s.auditRepo.GetByProjectID(ctx, projectID)
}

func (s *projectServiceImpl) RegisterFinalDelivery(ctx context.Context, projectID int64, deliveredBy string) error {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if project.GlobalStatus != entity.GlobalStatusVigente {
		return fmt.Errorf("%w: %s", ErrProjectNotActive, project.GlobalStatus)
	}

	defense, err := s.stageRepo.GetByProjectAndName(ctx, projectID, entity.StageSustentacion)
	if err != nil {
		return fmt.Errorf("get defense stage: %w", err)
	}
	if defense == nil || defense.OfficialState != entity.OfficialAprobada {
		return ErrDefenseNotApproved
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.projectRepo.UpdateGlobalStatus(txCtx, projectID, entity.GlobalStatusFinalizado); err != nil {
			return fmt.Errorf("update global status: %w", err)
		}

		event := &entity.AuditEvent{
			ProjectID:   projectID,
			UserID:      deliveredBy,
			EventType:   entity.EventFinalDelivery,
			Description: "Entrega final registrada, proyecto FINALIZADO",
		}
		if err := s.auditRepo.Append(txCtx, event); err != nil {
			return fmt.Errorf("append audit event: %w", err)
		}
		return nil
	})

	if err != nil {
		s.logger.Error("Failed to register final delivery", "error", err, "project_id", projectID)
		return err
	}

	s.logger.Info("Final delivery registered", "project_id", projectID)
	return nil
}

func (s *projectServiceImpl) OverrideGlobalStatus(ctx context.Context, projectID int64, status entity.GlobalStatus, actorID, reason string) error {
	if status != entity.GlobalStatusVencido && status != entity.GlobalStatusCancelado {
		return fmt.Errorf("only VENCIDO or CANCELADO may be set administratively, got %s", status)
	}
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return err
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.projectRepo.UpdateGlobalStatus(txCtx, projectID, status); err != nil {
			return fmt.Errorf("update global status: %w", err)
		}

		metadata, _ := json.Marshal(map[string]string{"reason": reason})
		event := &entity.AuditEvent{
			ProjectID:   projectID,
			UserID:      actorID,
			EventType:   entity.EventStatusOverride,
			Description: fmt.Sprintf("Estado global modificado a %s: %s", status, reason),
			Metadata:    string(metadata),
		}
		return s.auditRepo.Append(txCtx, event)
	})

	if err != nil {
		s.logger.Error("Failed to override global status", "error", err, "project_id", projectID, "status", status.String())
		return err
	}

	s.logger.Info("Global status overridden", "project_id", projectID, "status", status.String())
	return nil
}
