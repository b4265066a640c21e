package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/udistrital/trabajo_grado_core/internal/application/service"
	"github.com/udistrital/trabajo_grado_core/internal/config"
	"github.com/udistrital/trabajo_grado_core/internal/domain/consolidation"
	"github.com/udistrital/trabajo_grado_core/internal/infrastructure/persistence/repository"
	"github.com/udistrital/trabajo_grado_core/internal/infrastructure/persistence/sqlite"
	httpadapter "github.com/udistrital/trabajo_grado_core/internal/interfaces/http"
	"github.com/udistrital/trabajo_grado_core/pkg/database"
	"github.com/udistrital/trabajo_grado_core/pkg/utils"
)

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting trabajo de grado core",
		zap.Int("port", cfg.Server.Port),
		zap.String("database", cfg.Database.Path))

	db, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	txManager := sqlite.NewDB(db, logger)

	projectRepo := repository.NewProjectRepository(db, logger)
	stageRepo := repository.NewStageRepository(db, logger)
	submissionRepo := repository.NewSubmissionRepository(db, logger)
	endorsementRepo := repository.NewEndorsementRepository(db, logger)
	evaluationRepo := repository.NewEvaluationRepository(db, logger)
	deadlineRepo := repository.NewDeadlineRepository(db, logger)
	sessionRepo := repository.NewDefenseSessionRepository(db, logger)
	auditRepo := repository.NewAuditEventRepository(db, logger)

	engine := consolidation.NewEngine(consolidation.Rules{
		PropuestaBusinessDays: cfg.Deadlines.PropuestaBusinessDays,
		AnteproyectoDays:      cfg.Deadlines.AnteproyectoDays,
		SustentacionDays:      cfg.Deadlines.SustentacionDays,
	})

	serviceLogger := sugaredLogger{logger.Sugar()}

	projectService := service.NewProjectService(projectRepo, stageRepo, auditRepo, txManager, serviceLogger)
	submissionService := service.NewSubmissionService(stageRepo, submissionRepo, auditRepo, txManager, serviceLogger)
	reviewService := service.NewReviewService(
		stageRepo, submissionRepo, endorsementRepo, evaluationRepo,
		sessionRepo, auditRepo, txManager, serviceLogger,
	)
	consolidationService := service.NewConsolidationService(
		engine, stageRepo, submissionRepo, endorsementRepo,
		evaluationRepo, deadlineRepo, auditRepo, txManager, serviceLogger,
	)

	server := httpadapter.NewServer(
		httpadapter.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		projectService,
		submissionService,
		reviewService,
		consolidationService,
		serviceLogger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited")
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "configs/config.yaml"
}

// sugaredLogger adapts zap to the key-value Logger the services and the HTTP
// adapter expect.
type sugaredLogger struct {
	s *zap.SugaredLogger
}

func (l sugaredLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l sugaredLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}
