package dto

// ── 租户模块 DTO ──

// CreateTenantRequest 创建租户请求
type CreateTenantRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
	Slug string `json:"slug" binding:"required,min=2,max=60"`
}

// UpdateTenantRequest 更新租户请求
type UpdateTenantRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=100"`
	Slug *string `json:"slug" binding:"omitempty,min=2,max=60"`
}

// InviteClientRequest 邀请客户加入租户，client_id 与 email 二选一
type InviteClientRequest struct {
	ClientID string `json:"client_id" binding:"required_without=Email,omitempty,uuid"`
	Email    string `json:"email"     binding:"required_without=ClientID,omitempty,email"`
}

// TenantResponse 租户信息响应
type TenantResponse struct {
	ID        string `json:"tenant_id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	OwnerID   string `json:"owner_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// TenantClientResponse 租户-客户关联响应
type TenantClientResponse struct {
	ID         string `json:"tenant_client_id"`
	TenantID   string `json:"tenant_id"`
	ClientID   string `json:"client_id"`
	Accepted   bool   `json:"accepted"`
	InvitedBy  string `json:"invited_by,omitempty"`
	AcceptedAt string `json:"accepted_at,omitempty"`
	CreatedAt  string `json:"created_at"`
}
