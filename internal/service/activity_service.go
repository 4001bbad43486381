package service

import (
	"context"
	"fmt"
	"time"

	"crm-backend/internal/authz"
	"crm-backend/internal/model"
	"crm-backend/internal/repository"
	"crm-backend/pkg/apperror"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateActivityRequest struct {
	Type        string     `json:"type" binding:"required,oneof=call email meeting"`
	Subject     string     `json:"subject" binding:"required"`
	Description string     `json:"description"`
	Date        *time.Time `json:"date"`
	ContactID   uuid.UUID  `json:"contact_id" binding:"required"`
	DealID      *uuid.UUID `json:"deal_id"`
}

// --- Interface ---

type ActivityService interface {
	CreateActivity(ctx context.Context, actor *model.User, req CreateActivityRequest) (*model.Activity, error)
	DeleteActivity(ctx context.Context, actor *model.User, id uuid.UUID) error
	ListByContact(ctx context.Context, contactID uuid.UUID) ([]model.Activity, error)
}

type activityService struct {
	repo     repository.ActivityRepository
	contacts repository.ContactRepository
}

func NewActivityService(repo repository.ActivityRepository, contacts repository.ContactRepository) ActivityService {
	return &activityService{repo: repo, contacts: contacts}
}

// --- Implementation ---

func (s *activityService) CreateActivity(ctx context.Context, actor *model.User, req CreateActivityRequest) (*model.Activity, error) {
	if err := authz.Authorize(actor, authz.ActionActivitiesCreate); err != nil {
		return nil, err
	}
	if _, err := s.contacts.FindByID(ctx, req.ContactID); err != nil {
		return nil, notFound(err, "contact")
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}

	activity := &model.Activity{
		Type:        req.Type,
		Subject:     req.Subject,
		Description: req.Description,
		Date:        date,
		ContactID:   req.ContactID,
		DealID:      req.DealID,
	}
	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}
	return activity, nil
}

func (s *activityService) DeleteActivity(ctx context.Context, actor *model.User, id uuid.UUID) error {
	if err := authz.Authorize(actor, authz.ActionActivitiesUpdate); err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err, "activity")
	}
	return s.repo.Delete(ctx, id)
}

func (s *activityService) ListByContact(ctx context.Context, contactID uuid.UUID) ([]model.Activity, error) {
	if _, err := s.contacts.FindByID(ctx, contactID); err != nil {
		return nil, fmt.Errorf("%w: contact", apperror.ErrNotFound)
	}
	return s.repo.ListByContact(ctx, contactID)
}
