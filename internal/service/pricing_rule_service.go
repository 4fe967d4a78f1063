package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/joemerrillis/sniffr/internal/dto"
	"github.com/joemerrillis/sniffr/internal/model"
	"github.com/joemerrillis/sniffr/internal/repository"
	"github.com/joemerrillis/sniffr/pkg/validation"
)

// ── 定价规则模块业务错误 ──

var (
	ErrPricingRuleNotFound     = errors.New("定价规则不存在")
	ErrPricingRuleRangeInvalid = errors.New("effective_start 不能晚于 effective_end")
	ErrPriceDateInvalid        = errors.New("结束日期不能早于开始日期")
)

// PricingRuleService 定价规则业务接口
type PricingRuleService interface {
	List(ctx context.Context, caller Caller, req *dto.PricingRuleListRequest) ([]dto.PricingRuleResponse, error)
	Get(ctx context.Context, caller Caller, id string) (*dto.PricingRuleResponse, error)
	Create(ctx context.Context, caller Caller, req *dto.CreatePricingRuleRequest) (*dto.PricingRuleResponse, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdatePricingRuleRequest) (*dto.PricingRuleResponse, error)
	Delete(ctx context.Context, caller Caller, id string) error
	Preview(ctx context.Context, req *dto.PricePreviewRequest) (*dto.PricePreviewResponse, error)
}

type pricingRuleService struct {
	repo   *repository.Repository
	access *tenantAccess
	logger *zap.Logger
}

// NewPricingRuleService 创建 PricingRuleService 实例
func NewPricingRuleService(repo *repository.Repository, access *tenantAccess, logger *zap.Logger) PricingRuleService {
	return &pricingRuleService{repo: repo, access: access, logger: logger}
}

// ────────────────────── List / Get ──────────────────────

func (s *pricingRuleService) List(ctx context.Context, caller Caller, req *dto.PricingRuleListRequest) ([]dto.PricingRuleResponse, error) {
	if err := s.access.requireStaff(ctx, req.TenantID, caller); err != nil {
		return nil, err
	}
	rules, err := s.repo.PricingRule.ListByTenant(ctx, req.TenantID, req.ServiceType)
	if err != nil {
		s.logger.Error("列出定价规则失败", zap.String("tenant_id", req.TenantID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.PricingRuleResponse, 0, len(rules))
	for i := range rules {
		result = append(result, toPricingRuleResponse(&rules[i]))
	}
	return result, nil
}

func (s *pricingRuleService) Get(ctx context.Context, caller Caller, id string) (*dto.PricingRuleResponse, error) {
	rule, err := s.loadForStaff(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	resp := toPricingRuleResponse(rule)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *pricingRuleService) Create(ctx context.Context, caller Caller, req *dto.CreatePricingRuleRequest) (*dto.PricingRuleResponse, error) {
	if err := s.access.requireStaff(ctx, req.TenantID, caller); err != nil {
		return nil, err
	}

	rule := &model.PricingRule{
		TenantID:       req.TenantID,
		Name:           strings.TrimSpace(req.Name),
		RuleType:       req.RuleType,
		Description:    req.Description,
		ServiceType:    defaultString(req.ServiceType, model.ServiceTypeAll),
		AdjustmentType: req.AdjustmentType,
		Amount:         req.Amount.Round(2),
		PerUnit:        defaultString(req.PerUnit, model.PerUnitBooking),
		Priority:       model.DefaultRulePriority,
		IsActive:       true,
	}
	if req.MinDogs != nil {
		rule.MinDogs = *req.MinDogs
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if err := applyRuleRange(rule, req.EffectiveStart, req.EffectiveEnd); err != nil {
		return nil, err
	}

	if err := s.repo.PricingRule.Create(ctx, rule); err != nil {
		s.logger.Error("创建定价规则失败", zap.String("tenant_id", req.TenantID), zap.Error(err))
		return nil, err
	}
	resp := toPricingRuleResponse(rule)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *pricingRuleService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdatePricingRuleRequest) (*dto.PricingRuleResponse, error) {
	rule, err := s.loadForStaff(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		rule.Name = strings.TrimSpace(*req.Name)
	}
	if req.RuleType != nil {
		rule.RuleType = *req.RuleType
	}
	if req.Description != nil {
		rule.Description = req.Description
	}
	if req.ServiceType != nil {
		rule.ServiceType = *req.ServiceType
	}
	if req.AdjustmentType != nil {
		rule.AdjustmentType = *req.AdjustmentType
	}
	if req.Amount != nil {
		rule.Amount = req.Amount.Round(2)
	}
	if req.PerUnit != nil {
		rule.PerUnit = *req.PerUnit
	}
	if req.MinDogs != nil {
		rule.MinDogs = *req.MinDogs
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if err := applyRuleRange(rule, req.EffectiveStart, req.EffectiveEnd); err != nil {
		return nil, err
	}

	if err := s.repo.PricingRule.Update(ctx, rule); err != nil {
		s.logger.Error("更新定价规则失败", zap.String("rule_id", id), zap.Error(err))
		return nil, err
	}
	resp := toPricingRuleResponse(rule)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *pricingRuleService) Delete(ctx context.Context, caller Caller, id string) error {
	if _, err := s.loadForStaff(ctx, caller, id); err != nil {
		return err
	}
	if err := s.repo.PricingRule.Delete(ctx, id); err != nil {
		s.logger.Error("删除定价规则失败", zap.String("rule_id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Preview ──────────────────────

func (s *pricingRuleService) Preview(ctx context.Context, req *dto.PricePreviewRequest) (*dto.PricePreviewResponse, error) {
	start, err := validation.ParseDate(req.StartDate)
	if err != nil {
		return nil, ErrPriceDateInvalid
	}
	end, err := validation.ParseDate(req.EndDate)
	if err != nil || end.Before(start) {
		return nil, ErrPriceDateInvalid
	}
	if _, err := s.access.loadTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}

	quote, err := quoteFor(ctx, s.repo, req.TenantID, PriceRequest{
		ServiceType: req.ServiceType,
		Start:       start,
		End:         end,
		DogCount:    req.DogCount,
	})
	if err != nil {
		s.logger.Error("加载定价规则失败", zap.String("tenant_id", req.TenantID), zap.Error(err))
		return nil, err
	}

	return &dto.PricePreviewResponse{
		Price:     quote.Total.StringFixed(2),
		Breakdown: toBreakdownEntries(quote.Breakdown),
	}, nil
}

// quoteFor 加载租户规则并计算报价
func quoteFor(ctx context.Context, repo *repository.Repository, tenantID string, req PriceRequest) (PriceQuote, error) {
	rules, err := repo.PricingRule.ListActive(ctx, tenantID, req.ServiceType)
	if err != nil {
		return PriceQuote{}, err
	}
	return EvaluatePricing(rules, req), nil
}

// ── 辅助函数 ──

func (s *pricingRuleService) loadForStaff(ctx context.Context, caller Caller, id string) (*model.PricingRule, error) {
	rule, err := s.repo.PricingRule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPricingRuleNotFound
		}
		s.logger.Error("查询定价规则失败", zap.String("rule_id", id), zap.Error(err))
		return nil, err
	}
	if err := s.access.requireStaff(ctx, rule.TenantID, caller); err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return nil, ErrPricingRuleNotFound
		}
		return nil, err
	}
	return rule, nil
}

func applyRuleRange(rule *model.PricingRule, start, end *string) error {
	if start != nil {
		d, err := validation.ParseDate(*start)
		if err != nil {
			return ErrPricingRuleRangeInvalid
		}
		rule.EffectiveStart = &d
	}
	if end != nil {
		d, err := validation.ParseDate(*end)
		if err != nil {
			return ErrPricingRuleRangeInvalid
		}
		rule.EffectiveEnd = &d
	}
	if rule.EffectiveStart != nil && rule.EffectiveEnd != nil && rule.EffectiveStart.After(*rule.EffectiveEnd) {
		return ErrPricingRuleRangeInvalid
	}
	return nil
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func toPricingRuleResponse(r *model.PricingRule) dto.PricingRuleResponse {
	resp := dto.PricingRuleResponse{
		ID:             r.RuleID,
		TenantID:       r.TenantID,
		Name:           r.Name,
		RuleType:       r.RuleType,
		ServiceType:    r.ServiceType,
		AdjustmentType: r.AdjustmentType,
		Amount:         r.Amount.StringFixed(2),
		PerUnit:        r.PerUnit,
		MinDogs:        r.MinDogs,
		Priority:       r.Priority,
		EffectiveStart: model.FormatDate(r.EffectiveStart),
		EffectiveEnd:   model.FormatDate(r.EffectiveEnd),
		IsActive:       r.IsActive,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      r.UpdatedAt.Format(time.RFC3339),
	}
	if r.Description != nil {
		resp.Description = *r.Description
	}
	return resp
}
