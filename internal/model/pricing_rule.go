package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 定价规则枚举
const (
	ServiceTypeBoarding = "boarding"
	ServiceTypeWalk     = "walk"
	ServiceTypeAll      = "all"

	AdjustmentFixed   = "fixed"
	AdjustmentPercent = "percent"

	PerUnitBooking  = "booking"
	PerUnitNight    = "night"
	PerUnitDog      = "dog"
	PerUnitDogNight = "dog_night"

	// RuleTypeBase 基础价规则，作为第一段累加到起始价
	RuleTypeBase = "base"

	DefaultRulePriority = 100
)

// PricingRule 定价规则 — 对应 pricing_rules
type PricingRule struct {
	RuleID         string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"rule_id"`
	TenantID       string          `gorm:"type:uuid;not null"                             json:"tenant_id"`
	Name           string          `gorm:"type:varchar(100);not null"                     json:"name"`
	RuleType       string          `gorm:"type:varchar(30);not null"                      json:"rule_type"`
	Description    *string         `gorm:"type:varchar(500)"                              json:"description,omitempty"`
	ServiceType    string          `gorm:"type:varchar(20);not null"                      json:"service_type"`
	AdjustmentType string          `gorm:"type:varchar(10);not null"                      json:"adjustment_type"`
	Amount         decimal.Decimal `gorm:"type:numeric(10,2);not null"                    json:"amount"`
	PerUnit        string          `gorm:"type:varchar(10);not null"                      json:"per_unit"`
	MinDogs        int             `gorm:"not null"                                       json:"min_dogs"`
	Priority       int             `gorm:"not null"                                       json:"priority"`
	EffectiveStart *time.Time      `gorm:"type:date"                                      json:"effective_start,omitempty"`
	EffectiveEnd   *time.Time      `gorm:"type:date"                                      json:"effective_end,omitempty"`
	IsActive       bool            `gorm:"not null"                                       json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (PricingRule) TableName() string { return "pricing_rules" }

// AppliesTo 判断规则生效区间是否与 [from, to] 相交
func (r *PricingRule) AppliesTo(from, to time.Time) bool {
	if r.EffectiveStart != nil && dateKey(*r.EffectiveStart) > dateKey(to) {
		return false
	}
	if r.EffectiveEnd != nil && dateKey(*r.EffectiveEnd) < dateKey(from) {
		return false
	}
	return true
}
