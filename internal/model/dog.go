package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dog 狗档案表 — 对应 dogs
type Dog struct {
	DogID     string              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"dog_id"`
	OwnerID   string              `gorm:"type:uuid;not null"                             json:"owner_id"`
	TenantID  *string             `gorm:"type:uuid"                                      json:"tenant_id,omitempty"`
	Name      string              `gorm:"type:varchar(100);not null"                     json:"name"`
	Breed     *string             `gorm:"type:varchar(100)"                              json:"breed,omitempty"`
	Birthdate *time.Time          `gorm:"type:date"                                      json:"birthdate,omitempty"`
	WeightKg  decimal.NullDecimal `gorm:"type:numeric(5,2)"                              json:"weight_kg"`
	Notes     *string             `gorm:"type:text"                                      json:"notes,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Dog) TableName() string { return "dogs" }
