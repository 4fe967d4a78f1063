package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/joemerrillis/sniffr/internal/dto"
	"github.com/joemerrillis/sniffr/internal/model"
	"github.com/joemerrillis/sniffr/internal/repository"
)

var (
	ErrDogNotFound      = errors.New("狗档案不存在")
	ErrDogWeightInvalid = errors.New("体重必须为正数")
)

// DogService 狗档案业务接口
type DogService interface {
	List(ctx context.Context, caller Caller, req *dto.DogListRequest) ([]dto.DogResponse, error)
	Get(ctx context.Context, caller Caller, id string) (*dto.DogResponse, error)
	Create(ctx context.Context, caller Caller, req *dto.CreateDogRequest) (*dto.DogResponse, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdateDogRequest) (*dto.DogResponse, error)
	Delete(ctx context.Context, caller Caller, id string) error
}

type dogService struct {
	repo   *repository.Repository
	access *tenantAccess
	logger *zap.Logger
}

// NewDogService 创建 DogService 实例
func NewDogService(repo *repository.Repository, access *tenantAccess, logger *zap.Logger) DogService {
	return &dogService{repo: repo, access: access, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *dogService) List(ctx context.Context, caller Caller, req *dto.DogListRequest) ([]dto.DogResponse, error) {
	owners := []string{caller.UserID}

	if req.TenantID != "" {
		if err := s.access.requireStaff(ctx, req.TenantID, caller); err != nil {
			return nil, err
		}
		clientIDs, err := s.repo.TenantClient.ListAcceptedClientIDs(ctx, req.TenantID)
		if err != nil {
			return nil, err
		}
		owners = clientIDs
		if req.OwnerID != "" {
			owners = nil
			for _, id := range clientIDs {
				if id == req.OwnerID {
					owners = []string{id}
					break
				}
			}
		}
	}

	dogs, err := s.repo.Dog.ListByOwners(ctx, owners)
	if err != nil {
		s.logger.Error("列出狗档案失败", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.DogResponse, 0, len(dogs))
	for i := range dogs {
		result = append(result, toDogResponse(&dogs[i]))
	}
	return result, nil
}

// ────────────────────── Get ──────────────────────

func (s *dogService) Get(ctx context.Context, caller Caller, id string) (*dto.DogResponse, error) {
	dog, err := s.loadOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	resp := toDogResponse(dog)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *dogService) Create(ctx context.Context, caller Caller, req *dto.CreateDogRequest) (*dto.DogResponse, error) {
	dog := &model.Dog{
		OwnerID:  caller.UserID,
		TenantID: req.TenantID,
		Name:     strings.TrimSpace(req.Name),
		Breed:    req.Breed,
		Notes:    req.Notes,
	}
	if err := applyDogDetails(dog, req.Birthdate, req.WeightKg); err != nil {
		return nil, err
	}

	if err := s.repo.Dog.Create(ctx, dog); err != nil {
		s.logger.Error("创建狗档案失败", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}
	resp := toDogResponse(dog)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *dogService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdateDogRequest) (*dto.DogResponse, error) {
	dog, err := s.loadOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		dog.Name = strings.TrimSpace(*req.Name)
	}
	if req.Breed != nil {
		dog.Breed = req.Breed
	}
	if req.Notes != nil {
		dog.Notes = req.Notes
	}
	if err := applyDogDetails(dog, req.Birthdate, req.WeightKg); err != nil {
		return nil, err
	}

	if err := s.repo.Dog.Update(ctx, dog); err != nil {
		s.logger.Error("更新狗档案失败", zap.String("dog_id", id), zap.Error(err))
		return nil, err
	}
	resp := toDogResponse(dog)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

// Delete 按所有者限定，非本人的档案静默忽略
func (s *dogService) Delete(ctx context.Context, caller Caller, id string) error {
	if _, err := s.repo.Dog.Delete(ctx, id, caller.UserID); err != nil {
		s.logger.Error("删除狗档案失败", zap.String("dog_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *dogService) loadOwned(ctx context.Context, caller Caller, id string) (*model.Dog, error) {
	dog, err := s.repo.Dog.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDogNotFound
		}
		s.logger.Error("查询狗档案失败", zap.String("dog_id", id), zap.Error(err))
		return nil, err
	}
	if dog.OwnerID != caller.UserID {
		return nil, ErrDogNotFound
	}
	return dog, nil
}

func applyDogDetails(dog *model.Dog, birthdate *string, weight *decimal.Decimal) error {
	if birthdate != nil {
		d, err := time.Parse(model.DateLayout, *birthdate)
		if err != nil {
			return err
		}
		dog.Birthdate = &d
	}
	if weight != nil {
		if !weight.IsPositive() {
			return ErrDogWeightInvalid
		}
		dog.WeightKg = decimal.NewNullDecimal(weight.Round(2))
	}
	return nil
}

func toDogResponse(d *model.Dog) dto.DogResponse {
	resp := dto.DogResponse{
		ID:        d.DogID,
		OwnerID:   d.OwnerID,
		Name:      d.Name,
		Birthdate: model.FormatDate(d.Birthdate),
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
		UpdatedAt: d.UpdatedAt.Format(time.RFC3339),
	}
	if d.TenantID != nil {
		resp.TenantID = *d.TenantID
	}
	if d.Breed != nil {
		resp.Breed = *d.Breed
	}
	if d.Notes != nil {
		resp.Notes = *d.Notes
	}
	if d.WeightKg.Valid {
		resp.WeightKg = d.WeightKg.Decimal.StringFixed(2)
	}
	return resp
}
