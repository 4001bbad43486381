package service

import (
	"context"

	"crm-backend/internal/model"

	"gorm.io/gorm"
)

type StageValue struct {
	Stage      string  `json:"stage"`
	Count      int64   `json:"count"`
	TotalValue float64 `json:"total_value"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type DashboardResponse struct {
	TotalContacts      int64               `json:"total_contacts"`
	TotalAccounts      int64               `json:"total_accounts"`
	TotalDeals         int64               `json:"total_deals"`
	OpenDealValue      float64             `json:"open_deal_value"`
	DealsByStage       []StageValue        `json:"deals_by_stage"`
	LeadsByStatus      []StatusCount       `json:"leads_by_status"`
	RecentStageChanges []model.StageChange `json:"recent_stage_changes"`
}

type DashboardService interface {
	GetDashboard(ctx context.Context) (DashboardResponse, error)
}

type dashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) DashboardService {
	return &dashboardService{db: db}
}

// GetDashboard aggregates headline CRM metrics in one pass.
func (s *dashboardService) GetDashboard(ctx context.Context) (DashboardResponse, error) {
	var response DashboardResponse

	if err := s.db.WithContext(ctx).Model(&model.Contact{}).Count(&response.TotalContacts).Error; err != nil {
		return response, err
	}
	if err := s.db.WithContext(ctx).Model(&model.Account{}).Count(&response.TotalAccounts).Error; err != nil {
		return response, err
	}
	if err := s.db.WithContext(ctx).Model(&model.Deal{}).Count(&response.TotalDeals).Error; err != nil {
		return response, err
	}

	var openValue struct {
		Value float64
	}
	s.db.WithContext(ctx).Model(&model.Deal{}).
		Select("COALESCE(SUM(value), 0) as value").
		Where("stage NOT IN ?", []string{model.DealStageClosedWon, model.DealStageClosedLost}).
		Scan(&openValue)
	response.OpenDealValue = openValue.Value

	s.db.WithContext(ctx).Model(&model.Deal{}).
		Select("stage, COUNT(*) as count, COALESCE(SUM(value), 0) as total_value").
		Group("stage").
		Order("stage asc").
		Scan(&response.DealsByStage)

	s.db.WithContext(ctx).Model(&model.Lead{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Order("status asc").
		Scan(&response.LeadsByStatus)

	s.db.WithContext(ctx).Model(&model.StageChange{}).
		Order("changed_at desc").
		Limit(10).
		Find(&response.RecentStageChanges)

	return response, nil
}
