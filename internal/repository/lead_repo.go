package repository

import (
	"context"

	"crm-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeadFilter narrows lead listings.
type LeadFilter struct {
	Status string
	Search string // matches first/last name, email, or company
	Page   int
	Limit  int
}

type LeadRepository interface {
	Create(ctx context.Context, l *model.Lead) error
	Update(ctx context.Context, l *model.Lead) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]model.Lead, int64, error)
	// FindDuplicate returns an existing lead sharing the email, or the phone
	// when phone is non-empty. exclude skips a lead id (self, on update).
	FindDuplicate(ctx context.Context, email, phone string, exclude *uuid.UUID) (*model.Lead, error)
}

type leadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepository{db: db}
}

func (r *leadRepository) Create(ctx context.Context, l *model.Lead) error {
	return GetDB(ctx, r.db).Create(l).Error
}

func (r *leadRepository) Update(ctx context.Context, l *model.Lead) error {
	return GetDB(ctx, r.db).Save(l).Error
}

func (r *leadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Lead{}).Error
}

func (r *leadRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Lead, error) {
	var l model.Lead
	if err := GetDB(ctx, r.db).First(&l, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *leadRepository) List(ctx context.Context, filter LeadFilter) ([]model.Lead, int64, error) {
	query := GetDB(ctx, r.db).Model(&model.Lead{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR company ILIKE ?",
			pattern, pattern, pattern, pattern,
		)
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

	var leads []model.Lead
	if err := query.
		Order("created_at desc").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&leads).Error; err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func (r *leadRepository) FindDuplicate(ctx context.Context, email, phone string, exclude *uuid.UUID) (*model.Lead, error) {
	query := GetDB(ctx, r.db).Model(&model.Lead{})
	if phone != "" {
		query = query.Where("email = ? OR phone = ?", email, phone)
	} else {
		query = query.Where("email = ?", email)
	}
	if exclude != nil {
		query = query.Where("id <> ?", *exclude)
	}

	var l model.Lead
	if err := query.First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}
