package repository

import (
	"context"

	"crm-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PipelineRepository persists pipelines and their stages.
type PipelineRepository interface {
	Create(ctx context.Context, p *model.Pipeline) error
	Update(ctx context.Context, p *model.Pipeline) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Pipeline, error)
	FindByName(ctx context.Context, name string) (*model.Pipeline, error)
	ListAll(ctx context.Context) ([]model.Pipeline, error)
	// ClearDefault unsets is_default on every pipeline. Run inside the same
	// transaction as the subsequent set to keep the single-default invariant.
	ClearDefault(ctx context.Context) error
	FindDefault(ctx context.Context) (*model.Pipeline, error)
	// FindOldest returns the pipeline with the smallest identifier, the
	// deterministic fallback when no default is flagged.
	FindOldest(ctx context.Context) (*model.Pipeline, error)

	CreateStage(ctx context.Context, s *model.Stage) error
	UpdateStage(ctx context.Context, s *model.Stage) error
	DeleteStage(ctx context.Context, id uuid.UUID) error
	FindStage(ctx context.Context, id uuid.UUID) (*model.Stage, error)
	FindStageInPipeline(ctx context.Context, pipelineID, stageID uuid.UUID) (*model.Stage, error)
	ListStages(ctx context.Context, pipelineID uuid.UUID) ([]model.Stage, error)
	FirstStageByOrder(ctx context.Context, pipelineID uuid.UUID) (*model.Stage, error)
	// SetStageOrder updates a stage's order only when the stage belongs to
	// the pipeline; foreign stage ids match zero rows and are skipped.
	SetStageOrder(ctx context.Context, pipelineID, stageID uuid.UUID, order int) error
}

type pipelineRepository struct {
	db *gorm.DB
}

func NewPipelineRepository(db *gorm.DB) PipelineRepository {
	return &pipelineRepository{db: db}
}

func (r *pipelineRepository) Create(ctx context.Context, p *model.Pipeline) error {
	return GetDB(ctx, r.db).Create(p).Error
}

func (r *pipelineRepository) Update(ctx context.Context, p *model.Pipeline) error {
	return GetDB(ctx, r.db).Save(p).Error
}

func (r *pipelineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Pipeline{}).Error
}

func (r *pipelineRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Pipeline, error) {
	var p model.Pipeline
	if err := GetDB(ctx, r.db).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pipelineRepository) FindByName(ctx context.Context, name string) (*model.Pipeline, error) {
	var p model.Pipeline
	if err := GetDB(ctx, r.db).Where("name = ?", name).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pipelineRepository) ListAll(ctx context.Context) ([]model.Pipeline, error) {
	var pipelines []model.Pipeline
	if err := GetDB(ctx, r.db).Order("name asc").Find(&pipelines).Error; err != nil {
		return nil, err
	}
	return pipelines, nil
}

func (r *pipelineRepository) ClearDefault(ctx context.Context) error {
	return GetDB(ctx, r.db).
		Model(&model.Pipeline{}).
		Where("is_default = ?", true).
		Update("is_default", false).Error
}

func (r *pipelineRepository) FindDefault(ctx context.Context) (*model.Pipeline, error) {
	var p model.Pipeline
	if err := GetDB(ctx, r.db).Where("is_default = ?", true).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pipelineRepository) FindOldest(ctx context.Context) (*model.Pipeline, error) {
	var p model.Pipeline
	if err := GetDB(ctx, r.db).Order("created_at asc, id asc").First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pipelineRepository) CreateStage(ctx context.Context, s *model.Stage) error {
	return GetDB(ctx, r.db).Create(s).Error
}

func (r *pipelineRepository) UpdateStage(ctx context.Context, s *model.Stage) error {
	return GetDB(ctx, r.db).Save(s).Error
}

func (r *pipelineRepository) DeleteStage(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Stage{}).Error
}

func (r *pipelineRepository) FindStage(ctx context.Context, id uuid.UUID) (*model.Stage, error) {
	var s model.Stage
	if err := GetDB(ctx, r.db).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *pipelineRepository) FindStageInPipeline(ctx context.Context, pipelineID, stageID uuid.UUID) (*model.Stage, error) {
	var s model.Stage
	if err := GetDB(ctx, r.db).
		Where("id = ? AND pipeline_id = ?", stageID, pipelineID).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *pipelineRepository) ListStages(ctx context.Context, pipelineID uuid.UUID) ([]model.Stage, error) {
	var stages []model.Stage
	if err := GetDB(ctx, r.db).
		Where("pipeline_id = ?", pipelineID).
		Order("\"order\" asc").
		Find(&stages).Error; err != nil {
		return nil, err
	}
	return stages, nil
}

func (r *pipelineRepository) FirstStageByOrder(ctx context.Context, pipelineID uuid.UUID) (*model.Stage, error) {
	var s model.Stage
	if err := GetDB(ctx, r.db).
		Where("pipeline_id = ?", pipelineID).
		Order("\"order\" asc").
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *pipelineRepository) SetStageOrder(ctx context.Context, pipelineID, stageID uuid.UUID, order int) error {
	return GetDB(ctx, r.db).
		Model(&model.Stage{}).
		Where("id = ? AND pipeline_id = ?", stageID, pipelineID).
		Update("order", order).Error
}
