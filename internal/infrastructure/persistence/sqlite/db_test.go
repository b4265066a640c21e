package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/udistrital/trabajo_grado_core/internal/application/port"
	"github.com/udistrital/trabajo_grado_core/internal/domain/consolidation"
	"github.com/udistrital/trabajo_grado_core/internal/domain/entity"
	"github.com/udistrital/trabajo_grado_core/internal/infrastructure/persistence/repository"
	"github.com/udistrital/trabajo_grado_core/internal/infrastructure/persistence/sqlite"
	"github.com/udistrital/trabajo_grado_core/pkg/database"
)

type testStore struct {
	tx       *sqlite.DB
	projects port.ProjectRepository
	stages   port.StageRepository
}

func openTestStore(t *testing.T) *testStore {
	t.Helper()
	logger := zap.NewNop()

	conn, err := database.Open(database.Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, database.NewMigrator(conn, logger).Run("../../../../migrations"))

	return &testStore{
		tx:       sqlite.NewDB(conn, logger),
		projects: repository.NewProjectRepository(conn, logger),
		stages:   repository.NewStageRepository(conn, logger),
	}
}

func (s *testStore) seedPendingStage(t *testing.T, name entity.StageName) *entity.ProjectStage {
	t.Helper()
	ctx := context.Background()

	project := &entity.Project{
		Title:        "Sistema de riego",
		Program:      "Ingeniería de Sistemas",
		Modality:     "Monografía",
		DirectorID:   "director-1",
		GlobalStatus: entity.GlobalStatusVigente,
	}
	require.NoError(t, s.projects.Create(ctx, project))

	stage := &entity.ProjectStage{
		ProjectID:     project.ID,
		StageName:     name,
		SystemState:   entity.SystemBorrador,
		OfficialState: entity.OfficialPendiente,
	}
	require.NoError(t, s.stages.Create(ctx, stage))
	return stage
}

func TestWithTransaction_RollbackDiscardsRepositoryWrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	var projectID int64

	err := store.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		project := &entity.Project{
			Title:        "Proyecto abortado",
			Program:      "Ingeniería de Sistemas",
			DirectorID:   "director-1",
			GlobalStatus: entity.GlobalStatusVigente,
		}
		if err := store.projects.Create(txCtx, project); err != nil {
			return err
		}
		projectID = project.ID
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NotZero(t, projectID)

	// The write joined the transaction, so the rollback took it with it.
	found, err := store.projects.GetByID(ctx, projectID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestWithTransaction_CommitPersistsAllWrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var projectID, stageID int64
	err := store.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		project := &entity.Project{
			Title:        "Proyecto completo",
			Program:      "Ingeniería de Sistemas",
			DirectorID:   "director-1",
			GlobalStatus: entity.GlobalStatusVigente,
		}
		if err := store.projects.Create(txCtx, project); err != nil {
			return err
		}
		projectID = project.ID

		stage := &entity.ProjectStage{
			ProjectID:     project.ID,
			StageName:     entity.StagePropuesta,
			SystemState:   entity.SystemBorrador,
			OfficialState: entity.OfficialPendiente,
		}
		if err := store.stages.Create(txCtx, stage); err != nil {
			return err
		}
		stageID = stage.ID
		return nil
	})
	require.NoError(t, err)

	project, err := store.projects.GetByID(ctx, projectID)
	require.NoError(t, err)
	require.NotNil(t, project)

	stage, err := store.stages.GetByID(ctx, stageID)
	require.NoError(t, err)
	require.NotNil(t, stage)
	assert.Equal(t, projectID, stage.ProjectID)
}

func TestWithTransaction_NestedCallReusesOuterTransaction(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	var projectID int64

	err := store.tx.WithTransaction(ctx, func(outerCtx context.Context) error {
		if err := store.tx.WithTransaction(outerCtx, func(innerCtx context.Context) error {
			project := &entity.Project{
				Title:        "Proyecto anidado",
				Program:      "Ingeniería de Sistemas",
				DirectorID:   "director-1",
				GlobalStatus: entity.GlobalStatusVigente,
			}
			if err := store.projects.Create(innerCtx, project); err != nil {
				return err
			}
			projectID = project.ID
			return nil
		}); err != nil {
			return err
		}
		// The inner call succeeded but the outer transaction still fails,
		// so the inner write must roll back with it.
		return boom
	})
	require.ErrorIs(t, err, boom)

	found, err := store.projects.GetByID(ctx, projectID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestConsolidate_OnlyFirstCallerWins(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	stage := store.seedPendingStage(t, entity.StageAnteproyecto)

	won, err := store.stages.Consolidate(ctx, stage.ID,
		entity.OfficialAprobada, entity.SystemCerrada, nil, "Aprobado por unanimidad")
	require.NoError(t, err)
	assert.True(t, won)

	won, err = store.stages.Consolidate(ctx, stage.ID,
		entity.OfficialNoAprobada, entity.SystemCerrada, nil, "Rechazado")
	require.NoError(t, err)
	assert.False(t, won)

	updated, err := store.stages.GetByID(ctx, stage.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OfficialAprobada, updated.OfficialState)
}

func TestSetFinalGrade_RejectedOnceConsolidated(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	stage := store.seedPendingStage(t, entity.StageSustentacion)

	require.NoError(t, store.stages.SetFinalGrade(ctx, stage.ID, 87))

	grade := 87
	won, err := store.stages.Consolidate(ctx, stage.ID,
		entity.OfficialAprobada, entity.SystemCerrada, &grade, "Nota: 87 (Aprobada)")
	require.NoError(t, err)
	require.True(t, won)

	err = store.stages.SetFinalGrade(ctx, stage.ID, 60)
	assert.ErrorIs(t, err, consolidation.ErrAlreadyConsolidated)

	updated, err := store.stages.GetByID(ctx, stage.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.FinalGrade)
	assert.Equal(t, 87, *updated.FinalGrade)
}
