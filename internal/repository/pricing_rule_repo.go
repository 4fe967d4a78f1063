package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/joemerrillis/sniffr/internal/model"
)

// PricingRuleRepository 定价规则数据访问接口
type PricingRuleRepository interface {
	Create(ctx context.Context, rule *model.PricingRule) error
	GetByID(ctx context.Context, id string) (*model.PricingRule, error)
	ListByTenant(ctx context.Context, tenantID, serviceType string) ([]model.PricingRule, error)
	// ListActive 启用中、适用于 serviceType（含 all）的规则，按 priority、rule_id 升序
	ListActive(ctx context.Context, tenantID, serviceType string) ([]model.PricingRule, error)
	Update(ctx context.Context, rule *model.PricingRule) error
	Delete(ctx context.Context, id string) error
}

type pricingRuleRepo struct {
	db *gorm.DB
}

// NewPricingRuleRepo 创建 PricingRuleRepository 实例
func NewPricingRuleRepo(db *gorm.DB) PricingRuleRepository {
	return &pricingRuleRepo{db: db}
}

func (r *pricingRuleRepo) Create(ctx context.Context, rule *model.PricingRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *pricingRuleRepo) GetByID(ctx context.Context, id string) (*model.PricingRule, error) {
	var rule model.PricingRule
	err := r.db.WithContext(ctx).
		Where("rule_id = ?", id).
		First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *pricingRuleRepo) ListByTenant(ctx context.Context, tenantID, serviceType string) ([]model.PricingRule, error) {
	var rules []model.PricingRule
	db := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if serviceType != "" {
		db = db.Where("service_type = ?", serviceType)
	}
	err := db.Order("priority ASC, rule_id ASC").Find(&rules).Error
	return rules, err
}

func (r *pricingRuleRepo) ListActive(ctx context.Context, tenantID, serviceType string) ([]model.PricingRule, error) {
	var rules []model.PricingRule
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ?", tenantID, true).
		Where("service_type IN ?", []string{serviceType, model.ServiceTypeAll}).
		Order("priority ASC, rule_id ASC").
		Find(&rules).Error
	return rules, err
}

func (r *pricingRuleRepo) Update(ctx context.Context, rule *model.PricingRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *pricingRuleRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("rule_id = ?", id).
		Delete(&model.PricingRule{}).Error
}
