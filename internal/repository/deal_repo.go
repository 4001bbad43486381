package repository

import (
	"context"

	"crm-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DealFilter narrows deal listings.
type DealFilter struct {
	Stage     string // legacy stage enum value
	ContactID *uuid.UUID
	Search    string // title substring, case-insensitive
	Page      int
	Limit     int
}

// DealRepository persists deals and their immutable stage-change history.
type DealRepository interface {
	Create(ctx context.Context, d *model.Deal) error
	Update(ctx context.Context, d *model.Deal) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Deal, error)
	List(ctx context.Context, filter DealFilter) ([]model.Deal, int64, error)

	// CreateStageChange appends one history row. Rows are insert-only.
	CreateStageChange(ctx context.Context, sc *model.StageChange) error
	ListStageChanges(ctx context.Context, dealID uuid.UUID) ([]model.StageChange, error)
}

type dealRepository struct {
	db *gorm.DB
}

func NewDealRepository(db *gorm.DB) DealRepository {
	return &dealRepository{db: db}
}

func (r *dealRepository) Create(ctx context.Context, d *model.Deal) error {
	return GetDB(ctx, r.db).Create(d).Error
}

func (r *dealRepository) Update(ctx context.Context, d *model.Deal) error {
	return GetDB(ctx, r.db).Save(d).Error
}

func (r *dealRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Deal{}).Error
}

func (r *dealRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Deal, error) {
	var d model.Deal
	if err := GetDB(ctx, r.db).First(&d, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *dealRepository) List(ctx context.Context, filter DealFilter) ([]model.Deal, int64, error) {
	query := GetDB(ctx, r.db).Model(&model.Deal{})

	if filter.Stage != "" {
		query = query.Where("stage = ?", filter.Stage)
	}
	if filter.ContactID != nil {
		query = query.Where("contact_id = ?", *filter.ContactID)
	}
	if filter.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	var deals []model.Deal
	if err := query.
		Order("created_at desc").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&deals).Error; err != nil {
		return nil, 0, err
	}
	return deals, total, nil
}

func (r *dealRepository) CreateStageChange(ctx context.Context, sc *model.StageChange) error {
	return GetDB(ctx, r.db).Create(sc).Error
}

func (r *dealRepository) ListStageChanges(ctx context.Context, dealID uuid.UUID) ([]model.StageChange, error) {
	var changes []model.StageChange
	if err := GetDB(ctx, r.db).
		Where("deal_id = ?", dealID).
		Order("changed_at desc").
		Find(&changes).Error; err != nil {
		return nil, err
	}
	return changes, nil
}
