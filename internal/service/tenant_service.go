package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/joemerrillis/sniffr/internal/dto"
	"github.com/joemerrillis/sniffr/internal/model"
	"github.com/joemerrillis/sniffr/internal/repository"
	pkgerrors "github.com/joemerrillis/sniffr/pkg/errors"
)

// ── 租户模块业务错误 ──

var (
	ErrTenantNotFound       = errors.New("租户不存在")
	ErrTenantSlugInvalid    = errors.New("slug 只能包含小写字母、数字和连字符")
	ErrTenantSlugTaken      = errors.New("slug 已被占用")
	ErrTenantCreateDenied   = errors.New("仅租户管理员可创建租户")
	ErrTenantClientNotFound = errors.New("租户客户关联不存在")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// TenantService 租户业务接口
type TenantService interface {
	List(ctx context.Context, caller Caller) ([]dto.TenantResponse, error)
	Get(ctx context.Context, caller Caller, id string) (*dto.TenantResponse, error)
	Create(ctx context.Context, caller Caller, req *dto.CreateTenantRequest) (*dto.TenantResponse, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdateTenantRequest) (*dto.TenantResponse, error)
	Delete(ctx context.Context, caller Caller, id string) error

	InviteClient(ctx context.Context, caller Caller, tenantID string, req *dto.InviteClientRequest) (*dto.TenantClientResponse, error)
	AcceptInvitation(ctx context.Context, caller Caller, tenantID string) (*dto.TenantClientResponse, error)
	ListClients(ctx context.Context, caller Caller, tenantID string) ([]dto.TenantClientResponse, error)
}

type tenantService struct {
	repo   *repository.Repository
	access *tenantAccess
	logger *zap.Logger
}

// NewTenantService 创建 TenantService 实例
func NewTenantService(repo *repository.Repository, access *tenantAccess, logger *zap.Logger) TenantService {
	return &tenantService{repo: repo, access: access, logger: logger}
}

// ────────────────────── List / Get ──────────────────────

func (s *tenantService) List(ctx context.Context, caller Caller) ([]dto.TenantResponse, error) {
	var (
		tenants []model.Tenant
		err     error
	)
	if caller.IsPlatformAdmin() {
		tenants, err = s.repo.Tenant.List(ctx)
	} else {
		tenants, err = s.repo.Tenant.ListForUser(ctx, caller.UserID, caller.TenantID)
	}
	if err != nil {
		s.logger.Error("列出租户失败", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.TenantResponse, 0, len(tenants))
	for i := range tenants {
		result = append(result, toTenantResponse(&tenants[i]))
	}
	return result, nil
}

func (s *tenantService) Get(ctx context.Context, caller Caller, id string) (*dto.TenantResponse, error) {
	tenant, err := s.access.loadTenant(ctx, id)
	if err != nil {
		return nil, err
	}
	// 员工或已接受的客户可见
	staff, err := s.access.isStaff(ctx, tenant, caller)
	if err != nil {
		return nil, err
	}
	if !staff {
		accepted, err := s.repo.TenantClient.IsAccepted(ctx, id, caller.UserID)
		if err != nil {
			return nil, err
		}
		if !accepted {
			return nil, ErrTenantNotFound
		}
	}
	resp := toTenantResponse(tenant)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *tenantService) Create(ctx context.Context, caller Caller, req *dto.CreateTenantRequest) (*dto.TenantResponse, error) {
	if caller.Role != model.RoleTenantAdmin && !caller.IsPlatformAdmin() {
		return nil, ErrTenantCreateDenied
	}
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !slugPattern.MatchString(slug) {
		return nil, ErrTenantSlugInvalid
	}

	tenant := &model.Tenant{
		Name:    strings.TrimSpace(req.Name),
		Slug:    slug,
		OwnerID: caller.UserID,
	}
	if err := s.repo.Tenant.Create(ctx, tenant); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrTenantSlugTaken
		}
		s.logger.Error("创建租户失败", zap.Error(err))
		return nil, err
	}

	// 首个租户成为所有者的归属租户
	owner, err := s.repo.User.GetByID(ctx, caller.UserID)
	if err == nil && owner.TenantID == nil {
		owner.TenantID = &tenant.TenantID
		if err := s.repo.User.Update(ctx, owner); err != nil {
			s.logger.Warn("回写所有者归属租户失败", zap.String("user_id", owner.UserID), zap.Error(err))
		}
	}

	s.logger.Info("租户已创建", zap.String("tenant_id", tenant.TenantID), zap.String("owner_id", caller.UserID))
	resp := toTenantResponse(tenant)
	return &resp, nil
}

// ────────────────────── Update / Delete ──────────────────────

func (s *tenantService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdateTenantRequest) (*dto.TenantResponse, error) {
	tenant, err := s.access.loadTenant(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant.OwnerID != caller.UserID {
		return nil, ErrTenantNotFound
	}

	if req.Name != nil {
		tenant.Name = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		slug := strings.ToLower(strings.TrimSpace(*req.Slug))
		if !slugPattern.MatchString(slug) {
			return nil, ErrTenantSlugInvalid
		}
		tenant.Slug = slug
	}

	if err := s.repo.Tenant.Update(ctx, tenant); err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, ErrTenantSlugTaken
		}
		s.logger.Error("更新租户失败", zap.String("tenant_id", id), zap.Error(err))
		return nil, err
	}
	resp := toTenantResponse(tenant)
	return &resp, nil
}

func (s *tenantService) Delete(ctx context.Context, caller Caller, id string) error {
	n, err := s.repo.Tenant.Delete(ctx, id, caller.UserID)
	if err != nil {
		s.logger.Error("删除租户失败", zap.String("tenant_id", id), zap.Error(err))
		return err
	}
	if n == 0 {
		return ErrTenantNotFound
	}
	return nil
}

// ────────────────────── Clients ──────────────────────

func (s *tenantService) InviteClient(ctx context.Context, caller Caller, tenantID string, req *dto.InviteClientRequest) (*dto.TenantClientResponse, error) {
	if err := s.access.requireStaff(ctx, tenantID, caller); err != nil {
		return nil, err
	}

	clientID := req.ClientID
	if clientID == "" {
		user, err := s.repo.User.GetByEmail(ctx, req.Email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}
		clientID = user.UserID
	} else if _, err := s.repo.User.GetByID(ctx, clientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	inviter := caller.UserID
	link := &model.TenantClient{
		TenantID:  tenantID,
		ClientID:  clientID,
		Accepted:  false,
		InvitedBy: &inviter,
	}
	created, err := s.repo.TenantClient.Invite(ctx, link)
	if err != nil {
		s.logger.Error("邀请客户失败", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, err
	}
	if !created {
		// 重复邀请返回已有关联
		if link, err = s.repo.TenantClient.Get(ctx, tenantID, clientID); err != nil {
			return nil, err
		}
	}
	resp := toTenantClientResponse(link)
	return &resp, nil
}

func (s *tenantService) AcceptInvitation(ctx context.Context, caller Caller, tenantID string) (*dto.TenantClientResponse, error) {
	n, err := s.repo.TenantClient.Accept(ctx, tenantID, caller.UserID, time.Now().UTC())
	if err != nil {
		s.logger.Error("接受邀请失败", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, err
	}
	if n == 0 {
		return nil, ErrTenantClientNotFound
	}
	link, err := s.repo.TenantClient.Get(ctx, tenantID, caller.UserID)
	if err != nil {
		return nil, err
	}
	resp := toTenantClientResponse(link)
	return &resp, nil
}

func (s *tenantService) ListClients(ctx context.Context, caller Caller, tenantID string) ([]dto.TenantClientResponse, error) {
	if err := s.access.requireStaff(ctx, tenantID, caller); err != nil {
		return nil, err
	}
	links, err := s.repo.TenantClient.ListByTenant(ctx, tenantID)
	if err != nil {
		s.logger.Error("列出租户客户失败", zap.String("tenant_id", tenantID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.TenantClientResponse, 0, len(links))
	for i := range links {
		result = append(result, toTenantClientResponse(&links[i]))
	}
	return result, nil
}

// ── 租户访问控制 ──

// tenantAccess 租户员工身份与租户-客户关联校验，各模块共用
type tenantAccess struct {
	repo *repository.Repository
}

func newTenantAccess(repo *repository.Repository) *tenantAccess {
	return &tenantAccess{repo: repo}
}

func (a *tenantAccess) loadTenant(ctx context.Context, id string) (*model.Tenant, error) {
	tenant, err := a.repo.Tenant.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || pkgerrors.IsInvalidText(err) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}
	return tenant, nil
}

// isStaff 所有者、平台管理员，或归属租户为该租户的用户
func (a *tenantAccess) isStaff(ctx context.Context, tenant *model.Tenant, caller Caller) (bool, error) {
	if caller.IsPlatformAdmin() || tenant.OwnerID == caller.UserID || caller.TenantID == tenant.TenantID {
		return true, nil
	}
	// token 中的归属租户可能过期，以库中为准
	user, err := a.repo.User.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.TenantIDValue() == tenant.TenantID, nil
}

// requireStaff 非员工与租户不存在统一返回 ErrTenantNotFound
func (a *tenantAccess) requireStaff(ctx context.Context, tenantID string, caller Caller) error {
	tenant, err := a.loadTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	staff, err := a.isStaff(ctx, tenant, caller)
	if err != nil {
		return err
	}
	if !staff {
		return ErrTenantNotFound
	}
	return nil
}

// requireClientAccess 员工身份且存在已接受的租户-客户关联，否则 ErrTenantClientNotFound
func (a *tenantAccess) requireClientAccess(ctx context.Context, tenantID, clientID string, caller Caller) error {
	if err := a.requireStaff(ctx, tenantID, caller); err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			return ErrTenantClientNotFound
		}
		return err
	}
	accepted, err := a.repo.TenantClient.IsAccepted(ctx, tenantID, clientID)
	if err != nil {
		return err
	}
	if !accepted {
		return ErrTenantClientNotFound
	}
	return nil
}

// ── 转换 ──

func toTenantResponse(t *model.Tenant) dto.TenantResponse {
	return dto.TenantResponse{
		ID:        t.TenantID,
		Name:      t.Name,
		Slug:      t.Slug,
		OwnerID:   t.OwnerID,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
	}
}

func toTenantClientResponse(l *model.TenantClient) dto.TenantClientResponse {
	resp := dto.TenantClientResponse{
		ID:        l.TenantClientID,
		TenantID:  l.TenantID,
		ClientID:  l.ClientID,
		Accepted:  l.Accepted,
		CreatedAt: l.CreatedAt.Format(time.RFC3339),
	}
	if l.InvitedBy != nil {
		resp.InvitedBy = *l.InvitedBy
	}
	if l.AcceptedAt != nil {
		resp.AcceptedAt = l.AcceptedAt.Format(time.RFC3339)
	}
	return resp
}
