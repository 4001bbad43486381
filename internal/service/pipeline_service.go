package service

import (
	"context"
	"errors"
	"fmt"

	"crm-backend/internal/authz"
	"crm-backend/internal/model"
	"crm-backend/internal/repository"
	"crm-backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreatePipelineRequest struct {
	Name      string `json:"name" binding:"required"`
	IsDefault bool   `json:"is_default"`
}

type UpdatePipelineRequest struct {
	Name      *string `json:"name"`
	IsDefault *bool   `json:"is_default"`
}

type CreateStageRequest struct {
	Name        string `json:"name" binding:"required"`
	Order       int    `json:"order"`
	Probability int    `json:"probability"`
}

type UpdateStageRequest struct {
	Name        *string `json:"name"`
	Order       *int    `json:"order"`
	Probability *int    `json:"probability"`
}

// --- Interface ---

// PipelineService is the pipeline/stage catalog: ordered stage definitions
// per pipeline plus default-pipeline selection.
type PipelineService interface {
	CreatePipeline(ctx context.Context, actor *model.User, req CreatePipelineRequest) (*model.Pipeline, error)
	UpdatePipeline(ctx context.Context, actor *model.User, id uuid.UUID, req UpdatePipelineRequest) (*model.Pipeline, error)
	SetDefault(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Pipeline, error)
	DeletePipeline(ctx context.Context, actor *model.User, id uuid.UUID) error
	GetPipeline(ctx context.Context, id uuid.UUID) (*model.Pipeline, error)
	ListPipelines(ctx context.Context) ([]model.Pipeline, error)

	CreateStage(ctx context.Context, actor *model.User, pipelineID uuid.UUID, req CreateStageRequest) (*model.Stage, error)
	UpdateStage(ctx context.Context, actor *model.User, pipelineID, stageID uuid.UUID, req UpdateStageRequest) (*model.Stage, error)
	DeleteStage(ctx context.Context, actor *model.User, pipelineID, stageID uuid.UUID) error
	ListStages(ctx context.Context, pipelineID uuid.UUID) ([]model.Stage, error)
	ReorderStages(ctx context.Context, actor *model.User, pipelineID uuid.UUID, stageIDs []uuid.UUID) error

	// ResolveDefaultPipeline returns the flagged default, falling back to the
	// oldest pipeline when none is flagged. The fallback is deterministic:
	// repeated calls with unchanged data return the same pipeline.
	ResolveDefaultPipeline(ctx context.Context) (*model.Pipeline, error)
	// ResolveDefaultStage returns the stage with the smallest order within
	// the pipeline.
	ResolveDefaultStage(ctx context.Context, pipelineID uuid.UUID) (*model.Stage, error)
	// ResolveStage looks a stage up by id regardless of pipeline.
	ResolveStage(ctx context.Context, stageID uuid.UUID) (*model.Stage, error)
}

type pipelineService struct {
	repo repository.PipelineRepository
	tx   repository.TransactionManager
}

func NewPipelineService(repo repository.PipelineRepository, tx repository.TransactionManager) PipelineService {
	return &pipelineService{repo: repo, tx: tx}
}

// --- Implementation ---

func (s *pipelineService) CreatePipeline(ctx context.Context, actor *model.User, req CreatePipelineRequest) (*model.Pipeline, error) {
	if err := authz.Authorize(actor, authz.ActionPipelinesManage); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByName(ctx, req.Name); err == nil {
		return nil, fmt.Errorf("%w: pipeline %q already exists", apperror.ErrConflict, req.Name)
	}

	pipeline := &model.Pipeline{Name: req.Name, IsDefault: req.IsDefault}

	// Clear-then-set in one transaction so no observable instant has zero
	// or multiple defaults.
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if req.IsDefault {
			if err := s.repo.ClearDefault(txCtx); err != nil {
				return fmt.Errorf("failed to clear default pipelines: %w", err)
			}
		}
		if err := s.repo.Create(txCtx, pipeline); err != nil {
			return fmt.Errorf("failed to create pipeline: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pipeline, nil
}

func (s *pipelineService) UpdatePipeline(ctx context.Context, actor *model.User, id uuid.UUID, req UpdatePipelineRequest) (*model.Pipeline, error) {
	if err := authz.Authorize(actor, authz.ActionPipelinesManage); err != nil {
		return nil, err
	}

	pipeline, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "pipeline")
	}

	if req.Name != nil && *req.Name != pipeline.Name {
		if _, err := s.repo.FindByName(ctx, *req.Name); err == nil {
			return nil, fmt.Errorf("%w: pipeline %q already exists", apperror.ErrConflict, *req.Name)
		}
		pipeline.Name = *req.Name
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if req.IsDefault != nil && *req.IsDefault {
			if err := s.repo.ClearDefault(txCtx); err != nil {
				return fmt.Errorf("failed to clear default pipelines: %w", err)
			}
			pipeline.IsDefault = true
		} else if req.IsDefault != nil {
			pipeline.IsDefault = false
		}
		if err := s.repo.Update(txCtx, pipeline); err != nil {
			return fmt.Errorf("failed to update pipeline: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pipeline, nil
}

func (s *pipelineService) SetDefault(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Pipeline, error) {
	isDefault := true
	return s.UpdatePipeline(ctx, actor, id, UpdatePipelineRequest{IsDefault: &isDefault})
}

func (s *pipelineService) DeletePipeline(ctx context.Context, actor *model.User, id uuid.UUID) error {
	if err := authz.Authorize(actor, authz.ActionPipelinesManage); err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err, "pipeline")
	}
	// Stages cascade with the pipeline via FK constraint.
	return s.repo.Delete(ctx, id)
}

func (s *pipelineService) GetPipeline(ctx context.Context, id uuid.UUID) (*model.Pipeline, error) {
	pipeline, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "pipeline")
	}
	return pipeline, nil
}

func (s *pipelineService) ListPipelines(ctx context.Context) ([]model.Pipeline, error) {
	return s.repo.ListAll(ctx)
}

func (s *pipelineService) CreateStage(ctx context.Context, actor *model.User, pipelineID uuid.UUID, req CreateStageRequest) (*model.Stage, error) {
	if err := authz.Authorize(actor, authz.ActionPipelinesManage); err != nil {
		return nil, err
	}
	if req.Probability < 0 || req.Probability > 100 {
		return nil, fmt.Errorf("%w: probability must be within [0,100]", apperror.ErrValidation)
	}
	if _, err := s.repo.FindByID(ctx, pipelineID); err != nil {
		return nil, notFound(err, "pipeline")
	}

	stage := &model.Stage{
		PipelineID:  pipelineID,
		Name:        req.Name,
		Order:       req.Order,
		Probability: req.Probability,
	}
	if err := s.repo.CreateStage(ctx, stage); err != nil {
		return nil, fmt.Errorf("failed to create stage: %w", err)
	}
	return stage, nil
}

func (s *pipelineService) UpdateStage(ctx context.Context, actor *model.User, pipelineID, stageID uuid.UUID, req UpdateStageRequest) (*model.Stage, error) {
	if err := authz.Authorize(actor, authz.ActionPipelinesManage); err != nil {
		return nil, err
	}

	stage, err := s.repo.FindStageInPipeline(ctx, pipelineID, stageID)
	if err != nil {
		return nil, notFound(err, "stage")
	}

	if req.Name != nil {
		stage.Name = *req.Name
	}
	if req.Order != nil {
		stage.Order = *req.Order
	}
	if req.Probability != nil {
		if *req.Probability < 0 || *req.Probability > 100 {
			return nil, fmt.Errorf("%w: probability must be within [0,100]", apperror.ErrValidation)
		}
		stage.Probability = *req.Probability
	}

	if err := s.repo.UpdateStage(ctx, stage); err != nil {
		return nil, fmt.Errorf("failed to update stage: %w", err)
	}
	return stage, nil
}

// DeleteStage removes a stage. Deals referencing the stage are not reassigned
// or nulled; they keep pointing at the deleted stage id. Accepted gap.
func (s *pipelineService) DeleteStage(ctx context.Context, actor *model.User, pipelineID, stageID uuid.UUID) error {
	if err := authz.Authorize(actor, authz.ActionPipelinesManage); err != nil {
		return err
	}
	if _, err := s.repo.FindStageInPipeline(ctx, pipelineID, stageID); err != nil {
		return notFound(err, "stage")
	}
	return s.repo.DeleteStage(ctx, stageID)
}

func (s *pipelineService) ListStages(ctx context.Context, pipelineID uuid.UUID) ([]model.Stage, error) {
	if _, err := s.repo.FindByID(ctx, pipelineID); err != nil {
		return nil, notFound(err, "pipeline")
	}
	return s.repo.ListStages(ctx, pipelineID)
}

// ReorderStages assigns order = index for each submitted stage id. Ids not
// belonging to the pipeline are skipped, not rejected.
func (s *pipelineService) ReorderStages(ctx context.Context, actor *model.User, pipelineID uuid.UUID, stageIDs []uuid.UUID) error {
	if err := authz.Authorize(actor, authz.ActionPipelinesManage); err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, pipelineID); err != nil {
		return notFound(err, "pipeline")
	}

	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for index, stageID := range stageIDs {
			if err := s.repo.SetStageOrder(txCtx, pipelineID, stageID, index); err != nil {
				return fmt.Errorf("failed to reorder stage %s: %w", stageID, err)
			}
		}
		return nil
	})
}

func (s *pipelineService) ResolveDefaultPipeline(ctx context.Context) (*model.Pipeline, error) {
	pipeline, err := s.repo.FindDefault(ctx)
	if err == nil {
		return pipeline, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pipeline, err = s.repo.FindOldest(ctx)
	if err != nil {
		return nil, notFound(err, "pipeline")
	}
	return pipeline, nil
}

func (s *pipelineService) ResolveDefaultStage(ctx context.Context, pipelineID uuid.UUID) (*model.Stage, error) {
	stage, err := s.repo.FirstStageByOrder(ctx, pipelineID)
	if err != nil {
		return nil, notFound(err, "stage")
	}
	return stage, nil
}

func (s *pipelineService) ResolveStage(ctx context.Context, stageID uuid.UUID) (*model.Stage, error) {
	stage, err := s.repo.FindStage(ctx, stageID)
	if err != nil {
		return nil, notFound(err, "stage")
	}
	return stage, nil
}

// notFound maps a gorm record miss onto the shared taxonomy.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", apperror.ErrNotFound, what)
	}
	return err
}
