package dto

import "github.com/shopspring/decimal"

// ── 寄养模块 DTO ──

// BoardingListRequest 寄养列表查询参数
type BoardingListRequest struct {
	PaginationRequest
	TenantID string `form:"tenant_id" binding:"omitempty,uuid"`
	Status   string `form:"status"    binding:"omitempty,oneof=draft approved booked purchased scheduled completed canceled"`
}

// BoardingExportRequest 寄养导出参数
type BoardingExportRequest struct {
	TenantID string `form:"tenant_id" binding:"required,uuid"`
	From     string `form:"from"      binding:"omitempty,datetime=2006-01-02"`
	To       string `form:"to"        binding:"omitempty,datetime=2006-01-02"`
}

// CreateBoardingRequest 创建寄养请求，dogs 缺省为调用者全部的狗
type CreateBoardingRequest struct {
	TenantID     string   `json:"tenant_id"      binding:"required,uuid"`
	DropOffDay   string   `json:"drop_off_day"   binding:"required,datetime=2006-01-02"`
	DropOffBlock *string  `json:"drop_off_block" binding:"omitempty,max=30"`
	DropOffTime  *string  `json:"drop_off_time"  binding:"omitempty,hhmm"`
	PickUpDay    string   `json:"pick_up_day"    binding:"required,datetime=2006-01-02"`
	PickUpBlock  *string  `json:"pick_up_block"  binding:"omitempty,max=30"`
	PickUpTime   *string  `json:"pick_up_time"   binding:"omitempty,hhmm"`
	Notes        *string  `json:"notes"          binding:"omitempty,max=2000"`
	IsDraft      *bool    `json:"is_draft"`
	Dogs         []string `json:"dogs"           binding:"omitempty,dive,uuid"`
}

// BoardingProposedChanges 待客户确认的变更提议
type BoardingProposedChanges struct {
	DropOffDay  *string `json:"drop_off_day,omitempty"  binding:"omitempty,datetime=2006-01-02"`
	DropOffTime *string `json:"drop_off_time,omitempty" binding:"omitempty,hhmm"`
	PickUpDay   *string `json:"pick_up_day,omitempty"   binding:"omitempty,datetime=2006-01-02"`
	PickUpTime  *string `json:"pick_up_time,omitempty"  binding:"omitempty,hhmm"`
	Notes       *string `json:"notes,omitempty"         binding:"omitempty,max=2000"`
}

// UpdateBoardingRequest 更新寄养请求（部分更新）
// version 携带时做乐观锁校验
type UpdateBoardingRequest struct {
	DropOffDay          *string                  `json:"drop_off_day"           binding:"omitempty,datetime=2006-01-02"`
	DropOffBlock        *string                  `json:"drop_off_block"         binding:"omitempty,max=30"`
	DropOffTime         *string                  `json:"drop_off_time"          binding:"omitempty,hhmm"`
	PickUpDay           *string                  `json:"pick_up_day"            binding:"omitempty,datetime=2006-01-02"`
	PickUpBlock         *string                  `json:"pick_up_block"          binding:"omitempty,max=30"`
	PickUpTime          *string                  `json:"pick_up_time"           binding:"omitempty,hhmm"`
	Status              *string                  `json:"status"                 binding:"omitempty,oneof=draft approved booked purchased scheduled completed canceled"`
	Notes               *string                  `json:"notes"                  binding:"omitempty,max=2000"`
	FinalPrice          *decimal.Decimal         `json:"final_price"`
	ProposedDropOffTime *string                  `json:"proposed_drop_off_time" binding:"omitempty,hhmm"`
	ProposedPickUpTime  *string                  `json:"proposed_pick_up_time"  binding:"omitempty,hhmm"`
	ProposedChanges     *BoardingProposedChanges `json:"proposed_changes"`
	IsDraft             *bool                    `json:"is_draft"`
	Dogs                []string                 `json:"dogs"                   binding:"omitempty,dive,uuid"`
	Version             *int                     `json:"version"                binding:"omitempty,min=1"`
}

// BoardingResponse 寄养响应
type BoardingResponse struct {
	ID                  string                   `json:"boarding_id"`
	TenantID            string                   `json:"tenant_id"`
	UserID              string                   `json:"user_id"`
	DropOffDay          string                   `json:"drop_off_day"`
	DropOffBlock        string                   `json:"drop_off_block,omitempty"`
	DropOffTime         string                   `json:"drop_off_time,omitempty"`
	PickUpDay           string                   `json:"pick_up_day"`
	PickUpBlock         string                   `json:"pick_up_block,omitempty"`
	PickUpTime          string                   `json:"pick_up_time,omitempty"`
	Price               string                   `json:"price"`
	FinalPrice          string                   `json:"final_price,omitempty"`
	Status              string                   `json:"status"`
	Notes               string                   `json:"notes,omitempty"`
	ProposedDropOffTime string                   `json:"proposed_drop_off_time,omitempty"`
	ProposedPickUpTime  string                   `json:"proposed_pick_up_time,omitempty"`
	ProposedChanges     *BoardingProposedChanges `json:"proposed_changes,omitempty"`
	IsDraft             bool                     `json:"is_draft"`
	ApprovedBy          string                   `json:"approved_by,omitempty"`
	ApprovedAt          string                   `json:"approved_at,omitempty"`
	BookingID           string                   `json:"booking_id,omitempty"`
	Version             int                      `json:"version"`
	CreatedAt           string                   `json:"created_at"`
	UpdatedAt           string                   `json:"updated_at"`
}

// ServiceDogResponse 服务-狗关联响应
type ServiceDogResponse struct {
	ID          string `json:"service_dog_id"`
	ServiceType string `json:"service_type"`
	ServiceID   string `json:"service_id"`
	DogID       string `json:"dog_id"`
}

// BoardingDetail 寄养详情：寄养本体 + 关联的狗 + 价格明细
type BoardingDetail struct {
	Boarding    BoardingResponse      `json:"boarding"`
	ServiceDogs []ServiceDogResponse  `json:"service_dogs"`
	Breakdown   []PriceBreakdownEntry `json:"breakdown"`
}

// [自证通过] internal/dto/boarding.go
