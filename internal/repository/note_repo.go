package repository

import (
	"context"

	"crm-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteRepository interface {
	Create(ctx context.Context, n *model.Note) error
	Update(ctx context.Context, n *model.Note) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Note, error)
	List(ctx context.Context, relatedToType string, relatedToID *uuid.UUID, page, limit int) ([]model.Note, int64, error)
}

type noteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, n *model.Note) error {
	return GetDB(ctx, r.db).Create(n).Error
}

func (r *noteRepository) Update(ctx context.Context, n *model.Note) error {
	return GetDB(ctx, r.db).Save(n).Error
}

func (r *noteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Note{}).Error
}

func (r *noteRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Note, error) {
	var n model.Note
	if err := GetDB(ctx, r.db).First(&n, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *noteRepository) List(ctx context.Context, relatedToType string, relatedToID *uuid.UUID, page, limit int) ([]model.Note, int64, error) {
	query := GetDB(ctx, r.db).Model(&model.Note{})
	if relatedToType != "" {
		query = query.Where("related_to_type = ?", relatedToType)
	}
	if relatedToID != nil {
		query = query.Where("related_to_id = ?", *relatedToID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	var notes []model.Note
	if err := query.
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&notes).Error; err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}
