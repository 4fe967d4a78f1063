package dto

import "github.com/shopspring/decimal"

// ── 定价规则模块 DTO ──

// PricingRuleListRequest 定价规则列表查询参数
type PricingRuleListRequest struct {
	TenantID    string `form:"tenant_id"    binding:"required,uuid"`
	ServiceType string `form:"service_type" binding:"omitempty,oneof=boarding walk all"`
}

// CreatePricingRuleRequest 创建定价规则请求
type CreatePricingRuleRequest struct {
	TenantID       string           `json:"tenant_id"       binding:"required,uuid"`
	Name           string           `json:"name"            binding:"required,min=1,max=100"`
	RuleType       string           `json:"rule_type"       binding:"required,min=1,max=30"`
	Description    *string          `json:"description"     binding:"omitempty,max=500"`
	ServiceType    string           `json:"service_type"    binding:"omitempty,oneof=boarding walk all"`
	AdjustmentType string           `json:"adjustment_type" binding:"required,oneof=fixed percent"`
	Amount         *decimal.Decimal `json:"amount"          binding:"required"`
	PerUnit        string           `json:"per_unit"        binding:"omitempty,oneof=booking night dog dog_night"`
	MinDogs        *int             `json:"min_dogs"        binding:"omitempty,min=0"`
	Priority       *int             `json:"priority"`
	EffectiveStart *string          `json:"effective_start" binding:"omitempty,datetime=2006-01-02"`
	EffectiveEnd   *string          `json:"effective_end"   binding:"omitempty,datetime=2006-01-02"`
	IsActive       *bool            `json:"is_active"`
}

// UpdatePricingRuleRequest 更新定价规则请求
type UpdatePricingRuleRequest struct {
	Name           *string          `json:"name"            binding:"omitempty,min=1,max=100"`
	RuleType       *string          `json:"rule_type"       binding:"omitempty,min=1,max=30"`
	Description    *string          `json:"description"     binding:"omitempty,max=500"`
	ServiceType    *string          `json:"service_type"    binding:"omitempty,oneof=boarding walk all"`
	AdjustmentType *string          `json:"adjustment_type" binding:"omitempty,oneof=fixed percent"`
	Amount         *decimal.Decimal `json:"amount"`
	PerUnit        *string          `json:"per_unit"        binding:"omitempty,oneof=booking night dog dog_night"`
	MinDogs        *int             `json:"min_dogs"        binding:"omitempty,min=0"`
	Priority       *int             `json:"priority"`
	EffectiveStart *string          `json:"effective_start" binding:"omitempty,datetime=2006-01-02"`
	EffectiveEnd   *string          `json:"effective_end"   binding:"omitempty,datetime=2006-01-02"`
	IsActive       *bool            `json:"is_active"`
}

// PricePreviewRequest 报价预览请求
type PricePreviewRequest struct {
	TenantID    string `json:"tenant_id"    binding:"required,uuid"`
	ServiceType string `json:"service_type" binding:"required,oneof=boarding walk"`
	StartDate   string `json:"start_date"   binding:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date"     binding:"required,datetime=2006-01-02"`
	DogCount    int    `json:"dog_count"    binding:"required,min=1,max=50"`
}

// PricingRuleResponse 定价规则响应
type PricingRuleResponse struct {
	ID             string `json:"rule_id"`
	TenantID       string `json:"tenant_id"`
	Name           string `json:"name"`
	RuleType       string `json:"rule_type"`
	Description    string `json:"description,omitempty"`
	ServiceType    string `json:"service_type"`
	AdjustmentType string `json:"adjustment_type"`
	Amount         string `json:"amount"`
	PerUnit        string `json:"per_unit"`
	MinDogs        int    `json:"min_dogs"`
	Priority       int    `json:"priority"`
	EffectiveStart string `json:"effective_start,omitempty"`
	EffectiveEnd   string `json:"effective_end,omitempty"`
	IsActive       bool   `json:"is_active"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// PriceBreakdownEntry 价格明细条目，price_so_far 为应用本条后的累计价
type PriceBreakdownEntry struct {
	RuleID     string `json:"rule_id"`
	Name       string `json:"name"`
	RuleType   string `json:"rule_type"`
	Adjustment string `json:"adjustment"`
	PriceSoFar string `json:"price_so_far"`
}

// PricePreviewResponse 报价预览响应
type PricePreviewResponse struct {
	Price     string                `json:"price"`
	Breakdown []PriceBreakdownEntry `json:"breakdown"`
}
