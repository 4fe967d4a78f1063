package model

// 用户角色
const (
	RoleClient        = "client"
	RoleWalker        = "walker"
	RoleTenantAdmin   = "tenant_admin"
	RolePlatformAdmin = "platform_admin"
)

// User 用户表 — 对应 users
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Email        string  `gorm:"type:varchar(255);not null"                     json:"email"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Role         string  `gorm:"type:varchar(20);not null;default:'client'"     json:"role"`
	TenantID     *string `gorm:"type:uuid"                                      json:"tenant_id,omitempty"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// TenantIDValue 返回所属租户 ID，未归属返回空串
func (u *User) TenantIDValue() string {
	if u.TenantID == nil {
		return ""
	}
	return *u.TenantID
}
