package repository

import (
	"context"

	"crm-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountRepository interface {
	Create(ctx context.Context, a *model.Account) error
	Update(ctx context.Context, a *model.Account) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Account, error)
	List(ctx context.Context, search string, page, limit int) ([]model.Account, int64, error)
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, a *model.Account) error {
	return GetDB(ctx, r.db).Create(a).Error
}

func (r *accountRepository) Update(ctx context.Context, a *model.Account) error {
	return GetDB(ctx, r.db).Save(a).Error
}

func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Account{}).Error
}

func (r *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	var a model.Account
	if err := GetDB(ctx, r.db).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepository) List(ctx context.Context, search string, page, limit int) ([]model.Account, int64, error) {
	query := GetDB(ctx, r.db).Model(&model.Account{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR industry ILIKE ?", pattern, pattern)
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

	var accounts []model.Account
	if err := query.
		Order("name asc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}
