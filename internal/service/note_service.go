package service

import (
	"context"
	"fmt"

	"crm-backend/internal/authz"
	"crm-backend/internal/model"
	"crm-backend/internal/repository"
	"crm-backend/pkg/apperror"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateNoteRequest struct {
	Content       string    `json:"content" binding:"required"`
	RelatedToType string    `json:"related_to_type" binding:"required"`
	RelatedToID   uuid.UUID `json:"related_to_id" binding:"required"`
}

type UpdateNoteRequest struct {
	Content *string `json:"content"`
}

// --- Interface ---

type NoteService interface {
	CreateNote(ctx context.Context, actor *model.User, req CreateNoteRequest) (*model.Note, error)
	UpdateNote(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateNoteRequest) (*model.Note, error)
	DeleteNote(ctx context.Context, actor *model.User, id uuid.UUID) error
	GetNote(ctx context.Context, id uuid.UUID) (*model.Note, error)
	ListNotes(ctx context.Context, relatedToType string, relatedToID *uuid.UUID, page, limit int) ([]model.Note, int64, error)
}

type noteService struct {
	repo repository.NoteRepository
}

func NewNoteService(repo repository.NoteRepository) NoteService {
	return &noteService{repo: repo}
}

// --- Implementation ---

func (s *noteService) CreateNote(ctx context.Context, actor *model.User, req CreateNoteRequest) (*model.Note, error) {
	if err := authz.Authorize(actor, authz.ActionNotesCreate); err != nil {
		return nil, err
	}
	if !validRelatedToType(req.RelatedToType) {
		return nil, fmt.Errorf("%w: unknown related_to_type %q", apperror.ErrValidation, req.RelatedToType)
	}

	note := &model.Note{
		Content:       req.Content,
		RelatedToType: req.RelatedToType,
		RelatedToID:   req.RelatedToID,
		AuthorID:      &actor.ID,
	}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return note, nil
}

func (s *noteService) UpdateNote(ctx context.Context, actor *model.User, id uuid.UUID, req UpdateNoteRequest) (*model.Note, error) {
	if err := authz.Authorize(actor, authz.ActionNotesUpdate); err != nil {
		return nil, err
	}

	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "note")
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if err := s.repo.Update(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	return note, nil
}

func (s *noteService) DeleteNote(ctx context.Context, actor *model.User, id uuid.UUID) error {
	if err := authz.Authorize(actor, authz.ActionNotesDelete); err != nil {
		return err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err, "note")
	}
	return s.repo.Delete(ctx, id)
}

func (s *noteService) GetNote(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "note")
	}
	return note, nil
}

func (s *noteService) ListNotes(ctx context.Context, relatedToType string, relatedToID *uuid.UUID, page, limit int) ([]model.Note, int64, error) {
	return s.repo.List(ctx, relatedToType, relatedToID, page, limit)
}

func validRelatedToType(t string) bool {
	switch t {
	case model.RelatedToContact, model.RelatedToAccount, model.RelatedToDeal, model.RelatedToLead:
		return true
	}
	return false
}
