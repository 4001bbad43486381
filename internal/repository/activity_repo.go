package repository

import (
	"context"

	"crm-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityRepository interface {
	Create(ctx context.Context, a *model.Activity) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Activity, error)
	ListByContact(ctx context.Context, contactID uuid.UUID) ([]model.Activity, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, a *model.Activity) error {
	return GetDB(ctx, r.db).Create(a).Error
}

func (r *activityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Activity{}).Error
}

func (r *activityRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Activity, error) {
	var a model.Activity
	if err := GetDB(ctx, r.db).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *activityRepository) ListByContact(ctx context.Context, contactID uuid.UUID) ([]model.Activity, error) {
	var activities []model.Activity
	if err := GetDB(ctx, r.db).
		Where("contact_id = ?", contactID).
		Order("date desc").
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}
