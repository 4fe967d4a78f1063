package dto

import "github.com/shopspring/decimal"

// ── 狗档案模块 DTO ──

// DogListRequest 狗列表查询参数
// 带 tenant_id 时按租户员工视角列出已接受客户的狗
type DogListRequest struct {
	TenantID string `form:"tenant_id" binding:"omitempty,uuid"`
	OwnerID  string `form:"owner_id"  binding:"omitempty,uuid"`
}

// CreateDogRequest 创建狗档案请求
type CreateDogRequest struct {
	Name      string           `json:"name"      binding:"required,min=1,max=100"`
	Breed     *string          `json:"breed"     binding:"omitempty,max=100"`
	Birthdate *string          `json:"birthdate" binding:"omitempty,datetime=2006-01-02"`
	WeightKg  *decimal.Decimal `json:"weight_kg"`
	Notes     *string          `json:"notes"     binding:"omitempty,max=2000"`
	TenantID  *string          `json:"tenant_id" binding:"omitempty,uuid"`
}

// UpdateDogRequest 更新狗档案请求
type UpdateDogRequest struct {
	Name      *string          `json:"name"      binding:"omitempty,min=1,max=100"`
	Breed     *string          `json:"breed"     binding:"omitempty,max=100"`
	Birthdate *string          `json:"birthdate" binding:"omitempty,datetime=2006-01-02"`
	WeightKg  *decimal.Decimal `json:"weight_kg"`
	Notes     *string          `json:"notes"     binding:"omitempty,max=2000"`
}

// DogResponse 狗档案响应
type DogResponse struct {
	ID        string `json:"dog_id"`
	OwnerID   string `json:"owner_id"`
	TenantID  string `json:"tenant_id,omitempty"`
	Name      string `json:"name"`
	Breed     string `json:"breed,omitempty"`
	Birthdate string `json:"birthdate,omitempty"`
	WeightKg  string `json:"weight_kg,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
