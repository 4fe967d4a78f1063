package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/joemerrillis/sniffr/internal/model"
)

// DogRepository 狗档案数据访问接口
type DogRepository interface {
	Create(ctx context.Context, dog *model.Dog) error
	GetByID(ctx context.Context, id string) (*model.Dog, error)
	ListByOwners(ctx context.Context, ownerIDs []string) ([]model.Dog, error)
	Update(ctx context.Context, dog *model.Dog) error
	Delete(ctx context.Context, id, ownerID string) (int64, error)
}

type dogRepo struct {
	db *gorm.DB
}

// NewDogRepo 创建 DogRepository 实例
func NewDogRepo(db *gorm.DB) DogRepository {
	return &dogRepo{db: db}
}

func (r *dogRepo) Create(ctx context.Context, dog *model.Dog) error {
	return r.db.WithContext(ctx).Create(dog).Error
}

func (r *dogRepo) GetByID(ctx context.Context, id string) (*model.Dog, error) {
	var dog model.Dog
	err := r.db.WithContext(ctx).
		Where("dog_id = ?", id).
		First(&dog).Error
	if err != nil {
		return nil, err
	}
	return &dog, nil
}

func (r *dogRepo) ListByOwners(ctx context.Context, ownerIDs []string) ([]model.Dog, error) {
	var dogs []model.Dog
	if len(ownerIDs) == 0 {
		return dogs, nil
	}
	err := r.db.WithContext(ctx).
		Where("owner_id IN ?", ownerIDs).
		Order("name ASC, dog_id ASC").
		Find(&dogs).Error
	return dogs, err
}

func (r *dogRepo) Update(ctx context.Context, dog *model.Dog) error {
	return r.db.WithContext(ctx).Save(dog).Error
}

// Delete 软删除，按所有者限定
func (r *dogRepo) Delete(ctx context.Context, id, ownerID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("dog_id = ? AND owner_id = ?", id, ownerID).
		Delete(&model.Dog{})
	return result.RowsAffected, result.Error
}
