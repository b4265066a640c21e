package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udistrital/trabajo_grado_core/internal/domain/entity"
)

func TestCreateSubmission_VersionsIncrement(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	project, err := f.projects.CreateProject(ctx, CreateProjectInput{
		Title: "Clasificador de cultivos", Program: "Ingeniería de Sistemas",
		Modality: "Investigación", DirectorID: "director-1", CreatedBy: "estudiante-1",
	})
	require.NoError(t, err)

	stage, err := stageRepo{f.ledger}.GetByProjectAndName(ctx, project.ID, entity.StagePropuesta)
	require.NoError(t, err)
	require.NotNil(t, stage)
	assert.Equal(t, entity.SystemBorrador, stage.SystemState)

	first, err := f.submissions.CreateSubmission(ctx, CreateSubmissionInput{
		StageID: stage.ID, SubmittedBy: "estudiante-1", DocumentURL: "https://repositorio/v1.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)

	// The stage moved to RADICADA.
	updated, err := stageRepo{f.ledger}.GetByID(ctx, stage.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SystemRadicada, updated.SystemState)

	second, err := f.submissions.CreateSubmission(ctx, CreateSubmissionInput{
		StageID: stage.ID, SubmittedBy: "estudiante-1", DocumentURL: "https://repositorio/v2.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Version)
}

func TestCreateSubmission_ReopensObservedStage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stage, _ := seedStage(t, f, entity.StageInformeFinal, entity.SystemConObservaciones)

	submission, err := f.submissions.CreateSubmission(ctx, CreateSubmissionInput{
		StageID: stage.ID, SubmittedBy: "estudiante-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, submission.Version)

	updated, err := stageRepo{f.ledger}.GetByID(ctx, stage.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SystemRadicada, updated.SystemState)
}

func TestCreateSubmission_RejectedOnClosedStage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stage, _ := seedStage(t, f, entity.StageAnteproyecto, entity.SystemCerrada)

	_, err := f.submissions.CreateSubmission(ctx, CreateSubmissionInput{
		StageID: stage.ID, SubmittedBy: "estudiante-1",
	})
	assert.ErrorIs(t, err, ErrStageClosed)
}

func TestCreateSubmission_StageNotFound(t *testing.T) {
	f := newFixture()
	_, err := f.submissions.CreateSubmission(context.Background(), CreateSubmissionInput{StageID: 404})
	assert.ErrorIs(t, err, ErrStageNotFound)
}

func TestCreateSubmission_RejectedDuringReview(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stage, _ := seedStage(t, f, entity.StageAnteproyecto, entity.SystemEnRevision)

	_, err := f.submissions.CreateSubmission(ctx, CreateSubmissionInput{
		StageID: stage.ID, SubmittedBy: "estudiante-1",
	})
	assert.ErrorIs(t, err, ErrStageClosed)
}
