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
)

// UserService 用户业务接口
type UserService interface {
	GetMe(ctx context.Context, caller Caller) (*dto.UserResponse, error)
	UpdateMe(ctx context.Context, caller Caller, req *dto.UpdateMeRequest) (*dto.UserResponse, error)
	// GetByID 仅本人或平台管理员可见，其余视为不存在
	GetByID(ctx context.Context, caller Caller, id string) (*dto.UserResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) GetMe(ctx context.Context, caller Caller) (*dto.UserResponse, error) {
	user, err := s.load(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) UpdateMe(ctx context.Context, caller Caller, req *dto.UpdateMeRequest) (*dto.UserResponse, error) {
	user, err := s.load(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) GetByID(ctx context.Context, caller Caller, id string) (*dto.UserResponse, error) {
	if id != caller.UserID && !caller.IsPlatformAdmin() {
		return nil, ErrUserNotFound
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) load(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.UserID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		TenantID:  u.TenantIDValue(),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}
