package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/joemerrillis/sniffr/internal/model"
)

// TenantRepository 租户数据访问接口
type TenantRepository interface {
	Create(ctx context.Context, tenant *model.Tenant) error
	GetByID(ctx context.Context, id string) (*model.Tenant, error)
	List(ctx context.Context) ([]model.Tenant, error)
	// ListForUser 用户拥有、所属或作为已接受客户的租户
	ListForUser(ctx context.Context, userID string, homeTenantID string) ([]model.Tenant, error)
	Update(ctx context.Context, tenant *model.Tenant) error
	Delete(ctx context.Context, id, ownerID string) (int64, error)
}

type tenantRepo struct {
	db *gorm.DB
}

// NewTenantRepo 创建 TenantRepository 实例
func NewTenantRepo(db *gorm.DB) TenantRepository {
	return &tenantRepo{db: db}
}

func (r *tenantRepo) Create(ctx context.Context, tenant *model.Tenant) error {
	return r.db.WithContext(ctx).Create(tenant).Error
}

func (r *tenantRepo) GetByID(ctx context.Context, id string) (*model.Tenant, error) {
	var tenant model.Tenant
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", id).
		First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepo) List(ctx context.Context) ([]model.Tenant, error) {
	var tenants []model.Tenant
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&tenants).Error
	return tenants, err
}

func (r *tenantRepo) ListForUser(ctx context.Context, userID string, homeTenantID string) ([]model.Tenant, error) {
	var tenants []model.Tenant
	accepted := r.db.Model(&model.TenantClient{}).
		Select("tenant_id").
		Where("client_id = ? AND accepted = ?", userID, true)

	db := r.db.WithContext(ctx).Where("owner_id = ?", userID).Or("tenant_id IN (?)", accepted)
	if homeTenantID != "" {
		db = db.Or("tenant_id = ?", homeTenantID)
	}
	err := db.Order("name ASC").Find(&tenants).Error
	return tenants, err
}

func (r *tenantRepo) Update(ctx context.Context, tenant *model.Tenant) error {
	return r.db.WithContext(ctx).Save(tenant).Error
}

// Delete 软删除，仅所有者可删
func (r *tenantRepo) Delete(ctx context.Context, id, ownerID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.Tenant{})
	return result.RowsAffected, result.Error
}

// ── TenantClient Repository ──

// TenantClientRepository 租户-客户关联数据访问接口
type TenantClientRepository interface {
	// Invite 插入未接受的关联，已存在时不改动；返回是否新建
	Invite(ctx context.Context, link *model.TenantClient) (bool, error)
	Get(ctx context.Context, tenantID, clientID string) (*model.TenantClient, error)
	IsAccepted(ctx context.Context, tenantID, clientID string) (bool, error)
	Accept(ctx context.Context, tenantID, clientID string, at time.Time) (int64, error)
	ListByTenant(ctx context.Context, tenantID string) ([]model.TenantClient, error)
	ListAcceptedClientIDs(ctx context.Context, tenantID string) ([]string, error)
}

type tenantClientRepo struct {
	db *gorm.DB
}

// NewTenantClientRepo 创建 TenantClientRepository 实例
func NewTenantClientRepo(db *gorm.DB) TenantClientRepository {
	return &tenantClientRepo{db: db}
}

func (r *tenantClientRepo) Invite(ctx context.Context, link *model.TenantClient) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "client_id"}},
			DoNothing: true,
		}).
		Create(link)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *tenantClientRepo) Get(ctx context.Context, tenantID, clientID string) (*model.TenantClient, error) {
	var link model.TenantClient
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND client_id = ?", tenantID, clientID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *tenantClientRepo) IsAccepted(ctx context.Context, tenantID, clientID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.TenantClient{}).
		Where("tenant_id = ? AND client_id = ? AND accepted = ?", tenantID, clientID, true).
		Count(&count).Error
	return count > 0, err
}

func (r *tenantClientRepo) Accept(ctx context.Context, tenantID, clientID string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.TenantClient{}).
		Where("tenant_id = ? AND client_id = ?", tenantID, clientID).
		Updates(map[string]interface{}{
			"accepted":    true,
			"accepted_at": at,
		})
	return result.RowsAffected, result.Error
}

func (r *tenantClientRepo) ListByTenant(ctx context.Context, tenantID string) ([]model.TenantClient, error) {
	var links []model.TenantClient
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&links).Error
	return links, err
}

func (r *tenantClientRepo) ListAcceptedClientIDs(ctx context.Context, tenantID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.TenantClient{}).
		Where("tenant_id = ? AND accepted = ?", tenantID, true).
		Pluck("client_id", &ids).Error
	return ids, err
}
