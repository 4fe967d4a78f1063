package model

import "time"

// Tenant 租户表 — 对应 tenants
type Tenant struct {
	TenantID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"tenant_id"`
	Name     string `gorm:"type:varchar(100);not null"                     json:"name"`
	Slug     string `gorm:"type:varchar(60);not null"                      json:"slug"`
	OwnerID  string `gorm:"type:uuid;not null"                             json:"owner_id"`
	SoftDeleteModel
}

// TableName 指定表名
func (Tenant) TableName() string { return "tenants" }

// TenantClient 租户-客户关联表 — 对应 tenant_clients
// 仅 Accepted=true 的关联允许租户读取客户数据
type TenantClient struct {
	TenantClientID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"tenant_client_id"`
	TenantID       string     `gorm:"type:uuid;not null"                             json:"tenant_id"`
	ClientID       string     `gorm:"type:uuid;not null"                             json:"client_id"`
	Accepted       bool       `gorm:"not null"                                       json:"accepted"`
	InvitedBy      *string    `gorm:"type:uuid"                                      json:"invited_by,omitempty"`
	AcceptedAt     *time.Time `                                                      json:"accepted_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (TenantClient) TableName() string { return "tenant_clients" }
