package repository

import (
	"context"

	"crm-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContactRepository interface {
	Create(ctx context.Context, c *model.Contact) error
	Update(ctx context.Context, c *model.Contact) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Contact, error)
	FindByEmail(ctx context.Context, email string) (*model.Contact, error)
	List(ctx context.Context, search string, page, limit int) ([]model.Contact, int64, error)
}

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, c *model.Contact) error {
	return GetDB(ctx, r.db).Create(c).Error
}

func (r *contactRepository) Update(ctx context.Context, c *model.Contact) error {
	return GetDB(ctx, r.db).Save(c).Error
}

func (r *contactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Contact{}).Error
}

func (r *contactRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	var c model.Contact
	if err := GetDB(ctx, r.db).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contactRepository) FindByEmail(ctx context.Context, email string) (*model.Contact, error) {
	var c model.Contact
	if err := GetDB(ctx, r.db).Where("email = ?", email).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contactRepository) List(ctx context.Context, search string, page, limit int) ([]model.Contact, int64, error) {
	query := GetDB(ctx, r.db).Model(&model.Contact{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ? OR company ILIKE ?", pattern, pattern, pattern)
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

	var contacts []model.Contact
	if err := query.
		Order("name asc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&contacts).Error; err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}
