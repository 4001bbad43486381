package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm-backend/internal/authz"
	"crm-backend/internal/model"
	"crm-backend/internal/repository"
	"crm-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateDealRequest struct {
	Title      string          `json:"title" binding:"required"`
	Value      decimal.Decimal `json:"value"`
	Stage      string          `json:"stage"`
	ContactID  uuid.UUID       `json:"contact_id" binding:"required"`
	AccountID  *uuid.UUID      `json:"account_id"`
	PipelineID *uuid.UUID      `json:"pipeline_id"`
	StageID    *uuid.UUID      `json:"stage_id"`
}

type UpdateDealRequest struct {
	Title     *string          `json:"title"`
	Value     *decimal.Decimal `json:"value"`
	Stage     *string          `json:"stage"`
	ContactID *uuid.UUID       `json:"contact_id"`
	AccountID *uuid.UUID       `json:"account_id"`
}

// --- Interface ---

// DealService owns deal CRUD and the stage transition engine. A deal's state
// machine is the set of stage ids of whatever pipeline it is bound to, plus
// the unstaged pseudo-state (nil StageID). Transitions are unrestricted: any
// stage may move to any existing stage in any pipeline.
type DealService interface {
	CreateDeal(ctx context.Context, actor *model.User, req CreateDealRequest) (*model.Deal, error)
	UpdateDeal(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateDealRequest) (*model.Deal, error)
	DeleteDeal(ctx context.Context, actor *model.User, id uuid.UUID) error
	GetDeal(ctx context.Context, id uuid.UUID) (*model.Deal, error)
	ListDeals(ctx context.Context, filter repository.DealFilter) ([]model.Deal, int64, error)

	// MoveDeal rebinds the deal to the target stage, deriving the pipeline
	// from the stage (crossing pipelines is allowed implicitly), and appends
	// one StageChange row. Update and audit insert commit as one unit.
	MoveDeal(ctx context.Context, actor *model.User, dealID, targetStageID uuid.UUID) (*model.Deal, error)
	// StageHistory returns the deal's StageChange rows, newest first.
	StageHistory(ctx context.Context, dealID uuid.UUID) ([]model.StageChange, error)
}

type dealService struct {
	repo      repository.DealRepository
	contacts  repository.ContactRepository
	pipelines PipelineService
	tx        repository.TransactionManager
	events    EventPublisher
}

func NewDealService(
	repo repository.DealRepository,
	contacts repository.ContactRepository,
	pipelines PipelineService,
	tx repository.TransactionManager,
	events EventPublisher,
) DealService {
	return &dealService{repo: repo, contacts: contacts, pipelines: pipelines, tx: tx, events: events}
}

// --- Implementation ---

func (s *dealService) CreateDeal(ctx context.Context, actor *model.User, req CreateDealRequest) (*model.Deal, error) {
	if err := authz.Authorize(actor, authz.ActionDealsCreate); err != nil {
		return nil, err
	}

	if _, err := s.contacts.FindByID(ctx, req.ContactID); err != nil {
		return nil, notFound(err, "contact")
	}

	stage := req.Stage
	if stage == "" {
		stage = model.DealStageProspecting
	}

	deal := &model.Deal{
		Title:      req.Title,
		Value:      req.Value,
		Stage:      stage,
		ContactID:  req.ContactID,
		AccountID:  req.AccountID,
		PipelineID: req.PipelineID,
		StageID:    req.StageID,
		OwnerID:    &actor.ID,
	}

	if err := s.assignDefaultStage(ctx, deal); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to create deal: %w", err)
	}
	return deal, nil
}

// assignDefaultStage populates pipeline/stage from the default pipeline when
// the caller omitted them. First assignment is not a "change": no StageChange
// row is written here — from_stage_id = null is reserved for the first
// recorded move.
func (s *dealService) assignDefaultStage(ctx context.Context, deal *model.Deal) error {
	if deal.PipelineID != nil && deal.StageID != nil {
		return nil
	}

	pipeline, err := s.pipelines.ResolveDefaultPipeline(ctx)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil // no pipelines configured, deal stays unstaged
		}
		return err
	}
	deal.PipelineID = &pipeline.ID

	if deal.StageID == nil {
		stage, err := s.pipelines.ResolveDefaultStage(ctx, pipeline.ID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil // pipeline has no stages yet
			}
			return err
		}
		deal.StageID = &stage.ID
	}
	return nil
}

func (s *dealService) UpdateDeal(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateDealRequest) (*model.Deal, error) {
	if err := authz.Authorize(actor, authz.ActionDealsUpdate); err != nil {
		return nil, err
	}

	deal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "deal")
	}

	if req.ContactID != nil {
		if _, err := s.contacts.FindByID(ctx, *req.ContactID); err != nil {
			return nil, notFound(err, "contact")
		}
		deal.ContactID = *req.ContactID
	}
	if req.Title != nil {
		deal.Title = *req.Title
	}
	if req.Value != nil {
		deal.Value = *req.Value
	}
	if req.Stage != nil {
		deal.Stage = *req.Stage
	}
	if req.AccountID != nil {
		deal.AccountID = req.AccountID
	}

	if err := s.repo.Update(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to update deal: %w", err)
	}
	return deal, nil
}

func (s *dealService) DeleteDeal(ctx context.Context, actor *model.User, id uuid.UUID) error {
	if err := authz.Authorize(actor, authz.ActionDealsDelete); err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err, "deal")
	}
	return s.repo.Delete(ctx, id)
}

func (s *dealService) GetDeal(ctx context.Context, id uuid.UUID) (*model.Deal, error) {
	deal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "deal")
	}
	return deal, nil
}

func (s *dealService) ListDeals(ctx context.Context, filter repository.DealFilter) ([]model.Deal, int64, error) {
	return s.repo.List(ctx, filter)
}

func (s *dealService) MoveDeal(ctx context.Context, actor *model.User, dealID, targetStageID uuid.UUID) (*model.Deal, error) {
	if err := authz.Authorize(actor, authz.ActionDealsMove); err != nil {
		return nil, err
	}

	deal, err := s.repo.FindByID(ctx, dealID)
	if err != nil {
		return nil, notFound(err, "deal")
	}

	target, err := s.pipelines.ResolveStage(ctx, targetStageID)
	if err != nil {
		return nil, err
	}

	oldStageID := deal.StageID
	deal.StageID = &target.ID
	deal.PipelineID = &target.PipelineID

	change := &model.StageChange{
		DealID:      deal.ID,
		FromStageID: oldStageID,
		ToStageID:   target.ID,
		ChangedAt:   time.Now().UTC(),
		ChangedBy:   &actor.ID,
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, deal); err != nil {
			return fmt.Errorf("failed to move deal: %w", err)
		}
		if err := s.repo.CreateStageChange(txCtx, change); err != nil {
			return fmt.Errorf("failed to record stage change: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(EventDealMoved, map[string]interface{}{
			"deal_id":       deal.ID,
			"from_stage_id": oldStageID,
			"to_stage_id":   target.ID,
		})
	}
	return deal, nil
}

func (s *dealService) StageHistory(ctx context.Context, dealID uuid.UUID) ([]model.StageChange, error) {
	if _, err := s.repo.FindByID(ctx, dealID); err != nil {
		return nil, notFound(err, "deal")
	}
	return s.repo.ListStageChanges(ctx, dealID)
}
