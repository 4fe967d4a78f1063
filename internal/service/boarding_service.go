package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/joemerrillis/sniffr/internal/dto"
	"github.com/joemerrillis/sniffr/internal/model"
	"github.com/joemerrillis/sniffr/internal/repository"
	pkgerrors "github.com/joemerrillis/sniffr/pkg/errors"
	"github.com/joemerrillis/sniffr/pkg/events"
	"github.com/joemerrillis/sniffr/pkg/validation"
)

// ── 寄养模块业务错误 ──

var (
	ErrBoardingNotFound        = errors.New("寄养不存在")
	ErrBoardingDateInvalid     = errors.New("接回日期不能早于送达日期")
	ErrBoardingNoDogs          = errors.New("寄养至少需要一只狗")
	ErrBoardingDogInvalid      = errors.New("只能为自己的狗申请寄养")
	ErrBoardingStatusForbidden = errors.New("无权设置该状态")
	ErrBoardingPriceForbidden  = errors.New("仅租户员工可修改成交价")
)

// 客户本人可设置的状态，其余需租户员工
var clientSettableStatuses = map[string]bool{
	model.BoardingStatusDraft:    true,
	model.BoardingStatusCanceled: true,
}

// BoardingService 寄养业务接口
type BoardingService interface {
	List(ctx context.Context, caller Caller, req *dto.BoardingListRequest) ([]dto.BoardingResponse, int64, error)
	Get(ctx context.Context, caller Caller, id string) (*dto.BoardingDetail, error)
	Create(ctx context.Context, caller Caller, req *dto.CreateBoardingRequest) (*dto.BoardingDetail, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdateBoardingRequest) (*dto.BoardingDetail, error)
	// Delete 按所有者限定，非本人的寄养静默忽略
	Delete(ctx context.Context, caller Caller, id string) error
	Export(ctx context.Context, caller Caller, req *dto.BoardingExportRequest) (*ExportFile, error)
}

type boardingService struct {
	repo      *repository.Repository
	access    *tenantAccess
	publisher events.Publisher
	now       func() time.Time
	logger    *zap.Logger
}

// NewBoardingService 创建 BoardingService 实例
func NewBoardingService(repo *repository.Repository, access *tenantAccess, publisher events.Publisher, logger *zap.Logger) BoardingService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &boardingService{repo: repo, access: access, publisher: publisher, now: time.Now, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *boardingService) List(ctx context.Context, caller Caller, req *dto.BoardingListRequest) ([]dto.BoardingResponse, int64, error) {
	filter := repository.BoardingFilter{
		UserID: caller.UserID,
		Status: req.Status,
		Offset: req.GetOffset(),
		Limit:  req.GetPageSize(),
	}
	if req.TenantID != "" {
		staff, err := s.isStaffOf(ctx, req.TenantID, caller)
		if err != nil {
			return nil, 0, err
		}
		filter.TenantID = req.TenantID
		if staff {
			// 员工查看租户下全部寄养
			filter.UserID = ""
		}
	}

	boardings, total, err := s.repo.Boarding.List(ctx, filter)
	if err != nil {
		s.logger.Error("列出寄养失败", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.BoardingResponse, 0, len(boardings))
	for i := range boardings {
		result = append(result, toBoardingResponse(&boardings[i]))
	}
	return result, total, nil
}

// ────────────────────── Get ──────────────────────

func (s *boardingService) Get(ctx context.Context, caller Caller, id string) (*dto.BoardingDetail, error) {
	b, _, err := s.loadVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, b, nil)
}

// ────────────────────── Create ──────────────────────

func (s *boardingService) Create(ctx context.Context, caller Caller, req *dto.CreateBoardingRequest) (*dto.BoardingDetail, error) {
	dropOff, pickUp, err := parseBoardingDays(req.DropOffDay, req.PickUpDay)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.loadTenant(ctx, req.TenantID); err != nil {
		return nil, err
	}

	dogIDs, err := s.resolveDogs(ctx, caller, req.Dogs)
	if err != nil {
		return nil, err
	}

	quote, err := quoteFor(ctx, s.repo, req.TenantID, PriceRequest{
		ServiceType: model.ServiceTypeBoarding,
		Start:       dropOff,
		End:         pickUp,
		DogCount:    len(dogIDs),
	})
	if err != nil {
		s.logger.Error("计算寄养报价失败", zap.String("tenant_id", req.TenantID), zap.Error(err))
		return nil, err
	}

	b := &model.Boarding{
		TenantID:     req.TenantID,
		UserID:       caller.UserID,
		DropOffDay:   dropOff,
		DropOffBlock: req.DropOffBlock,
		DropOffTime:  normalizeOptionalClock(req.DropOffTime),
		PickUpDay:    pickUp,
		PickUpBlock:  req.PickUpBlock,
		PickUpTime:   normalizeOptionalClock(req.PickUpTime),
		Status:       model.BoardingStatusDraft,
		Notes:        req.Notes,
		IsDraft:      req.IsDraft,
	}
	b.Version = 1
	if err := applyQuote(b, quote); err != nil {
		return nil, err
	}

	if err := s.repo.Boarding.Create(ctx, b, dogIDs); err != nil {
		if pkgerrors.IsForeignKeyViolation(err) {
			return nil, ErrBoardingDogInvalid
		}
		s.logger.Error("创建寄养失败", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("寄养已创建",
		zap.String("boarding_id", b.BoardingID),
		zap.String("tenant_id", b.TenantID),
		zap.Int("dogs", len(dogIDs)),
		zap.String("price", b.Price.StringFixed(2)),
	)
	return s.detail(ctx, b, quote.Breakdown)
}

// ────────────────────── Update ──────────────────────

func (s *boardingService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdateBoardingRequest) (*dto.BoardingDetail, error) {
	b, staff, err := s.loadVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if req.Version != nil {
		b.Version = *req.Version
	}

	// 1. 日期
	repriced := false
	if req.DropOffDay != nil || req.PickUpDay != nil {
		dropOff := b.DropOffDay.Format(model.DateLayout)
		pickUp := b.PickUpDay.Format(model.DateLayout)
		if req.DropOffDay != nil {
			dropOff = *req.DropOffDay
		}
		if req.PickUpDay != nil {
			pickUp = *req.PickUpDay
		}
		if b.DropOffDay, b.PickUpDay, err = parseBoardingDays(dropOff, pickUp); err != nil {
			return nil, err
		}
		repriced = true
	}

	// 2. 狗
	var dogIDs []string
	if req.Dogs != nil {
		owner := Caller{UserID: b.UserID}
		if dogIDs, err = s.resolveDogs(ctx, owner, req.Dogs); err != nil {
			return nil, err
		}
		repriced = true
	}

	// 3. 其余字段
	if req.DropOffBlock != nil {
		b.DropOffBlock = req.DropOffBlock
	}
	if req.DropOffTime != nil {
		b.DropOffTime = normalizeOptionalClock(req.DropOffTime)
	}
	if req.PickUpBlock != nil {
		b.PickUpBlock = req.PickUpBlock
	}
	if req.PickUpTime != nil {
		b.PickUpTime = normalizeOptionalClock(req.PickUpTime)
	}
	if req.Notes != nil {
		b.Notes = req.Notes
	}
	if req.IsDraft != nil {
		b.IsDraft = req.IsDraft
	}
	if req.ProposedDropOffTime != nil {
		b.ProposedDropOffTime = normalizeOptionalClock(req.ProposedDropOffTime)
	}
	if req.ProposedPickUpTime != nil {
		b.ProposedPickUpTime = normalizeOptionalClock(req.ProposedPickUpTime)
	}
	if req.ProposedChanges != nil {
		raw, err := json.Marshal(req.ProposedChanges)
		if err != nil {
			return nil, err
		}
		b.ProposedChanges = datatypes.JSON(raw)
	}

	// 4. 重新报价
	var breakdown []PriceLine
	if repriced {
		if dogIDs == nil {
			current, err := s.repo.Boarding.ListDogs(ctx, b.BoardingID)
			if err != nil {
				return nil, err
			}
			for _, d := range current {
				dogIDs = append(dogIDs, d.DogID)
			}
		}
		quote, err := quoteFor(ctx, s.repo, b.TenantID, PriceRequest{
			ServiceType: model.ServiceTypeBoarding,
			Start:       b.DropOffDay,
			End:         b.PickUpDay,
			DogCount:    len(dogIDs),
		})
		if err != nil {
			s.logger.Error("重新计算寄养报价失败", zap.String("boarding_id", id), zap.Error(err))
			return nil, err
		}
		if err := applyQuote(b, quote); err != nil {
			return nil, err
		}
		breakdown = quote.Breakdown
	}

	if req.FinalPrice != nil {
		if !staff {
			return nil, ErrBoardingPriceForbidden
		}
		b.FinalPrice = decimal.NewNullDecimal(req.FinalPrice.Round(2))
	}

	// 5. 状态
	previousStatus := b.Status
	if req.Status != nil && *req.Status != b.Status {
		if !staff && !clientSettableStatuses[*req.Status] {
			return nil, ErrBoardingStatusForbidden
		}
		b.Status = *req.Status
		if b.Status == model.BoardingStatusApproved {
			approver := caller.UserID
			at := s.now().UTC()
			b.ApprovedBy = &approver
			b.ApprovedAt = &at
		}
	}

	replaceDogs := req.Dogs != nil
	var writeDogs []string
	if replaceDogs {
		writeDogs = dogIDs
		if writeDogs == nil {
			writeDogs = []string{}
		}
	}
	if err := s.repo.Boarding.Update(ctx, b, writeDogs); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, err
		}
		s.logger.Error("更新寄养失败", zap.String("boarding_id", id), zap.Error(err))
		return nil, err
	}

	if b.Status != previousStatus {
		payload := map[string]interface{}{
			"boarding_id": b.BoardingID,
			"tenant_id":   b.TenantID,
			"user_id":     b.UserID,
			"from":        previousStatus,
			"to":          b.Status,
			"changed_by":  caller.UserID,
		}
		if err := s.publisher.Publish(ctx, events.TypeBoardingStatusChanged, b.BoardingID, payload); err != nil {
			s.logger.Warn("投递 boarding.status_changed 事件失败", zap.String("boarding_id", b.BoardingID), zap.Error(err))
		}
	}

	return s.detail(ctx, b, breakdown)
}

// ────────────────────── Delete ──────────────────────

func (s *boardingService) Delete(ctx context.Context, caller Caller, id string) error {
	if _, err := s.repo.Boarding.Delete(ctx, id, caller.UserID); err != nil {
		s.logger.Error("删除寄养失败", zap.String("boarding_id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Export ──────────────────────

func (s *boardingService) Export(ctx context.Context, caller Caller, req *dto.BoardingExportRequest) (*ExportFile, error) {
	if err := s.access.requireStaff(ctx, req.TenantID, caller); err != nil {
		return nil, err
	}
	tenant, err := s.access.loadTenant(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}

	var from, to *time.Time
	if req.From != "" {
		d, err := validation.ParseDate(req.From)
		if err != nil {
			return nil, ErrBoardingDateInvalid
		}
		from = &d
	}
	if req.To != "" {
		d, err := validation.ParseDate(req.To)
		if err != nil {
			return nil, ErrBoardingDateInvalid
		}
		to = &d
	}

	boardings, err := s.repo.Boarding.ListByTenantInRange(ctx, req.TenantID, from, to)
	if err != nil {
		s.logger.Error("查询寄养失败", zap.String("tenant_id", req.TenantID), zap.Error(err))
		return nil, err
	}

	dogCounts := make(map[string]int, len(boardings))
	for _, b := range boardings {
		dogs, err := s.repo.Boarding.ListDogs(ctx, b.BoardingID)
		if err != nil {
			return nil, err
		}
		dogCounts[b.BoardingID] = len(dogs)
	}

	file, err := buildBoardingsSheet(tenant.Name, boardings, dogCounts)
	if err != nil {
		s.logger.Error("生成寄养导出失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return file, nil
}

// ── 辅助函数 ──

// loadVisible 所有者或租户员工可见，返回是否员工
func (s *boardingService) loadVisible(ctx context.Context, caller Caller, id string) (*model.Boarding, bool, error) {
	b, err := s.repo.Boarding.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrBoardingNotFound
		}
		s.logger.Error("查询寄养失败", zap.String("boarding_id", id), zap.Error(err))
		return nil, false, err
	}

	staff, err := s.isStaffOf(ctx, b.TenantID, caller)
	if err != nil {
		return nil, false, err
	}
	if !staff && b.UserID != caller.UserID {
		return nil, false, ErrBoardingNotFound
	}
	return b, staff, nil
}

func (s *boardingService) isStaffOf(ctx context.Context, tenantID string, caller Caller) (bool, error) {
	err := s.access.requireStaff(ctx, tenantID, caller)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrTenantNotFound) {
		return false, nil
	}
	return false, err
}

// resolveDogs 缺省取所有者全部的狗；显式指定时逐一校验归属
func (s *boardingService) resolveDogs(ctx context.Context, owner Caller, requested []string) ([]string, error) {
	if len(requested) == 0 {
		dogs, err := s.repo.Dog.ListByOwners(ctx, []string{owner.UserID})
		if err != nil {
			return nil, err
		}
		if len(dogs) == 0 {
			return nil, ErrBoardingNoDogs
		}
		ids := make([]string, 0, len(dogs))
		for _, d := range dogs {
			ids = append(ids, d.DogID)
		}
		return ids, nil
	}

	seen := make(map[string]bool, len(requested))
	ids := make([]string, 0, len(requested))
	for _, id := range requested {
		if seen[id] {
			continue
		}
		seen[id] = true
		dog, err := s.repo.Dog.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrBoardingDogInvalid
			}
			return nil, err
		}
		if dog.OwnerID != owner.UserID {
			return nil, ErrBoardingDogInvalid
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *boardingService) detail(ctx context.Context, b *model.Boarding, lines []PriceLine) (*dto.BoardingDetail, error) {
	dogs, err := s.repo.Boarding.ListDogs(ctx, b.BoardingID)
	if err != nil {
		s.logger.Error("查询寄养关联狗失败", zap.String("boarding_id", b.BoardingID), zap.Error(err))
		return nil, err
	}

	serviceDogs := make([]dto.ServiceDogResponse, 0, len(dogs))
	for _, d := range dogs {
		serviceDogs = append(serviceDogs, dto.ServiceDogResponse{
			ID:          d.ServiceDogID,
			ServiceType: d.ServiceType,
			ServiceID:   d.ServiceID,
			DogID:       d.DogID,
		})
	}

	breakdown := toBreakdownEntries(lines)
	if lines == nil && len(b.PriceBreakdown) > 0 {
		if err := json.Unmarshal(b.PriceBreakdown, &breakdown); err != nil {
			s.logger.Warn("解析价格明细失败", zap.String("boarding_id", b.BoardingID), zap.Error(err))
			breakdown = []dto.PriceBreakdownEntry{}
		}
	}

	return &dto.BoardingDetail{
		Boarding:    toBoardingResponse(b),
		ServiceDogs: serviceDogs,
		Breakdown:   breakdown,
	}, nil
}

func applyQuote(b *model.Boarding, quote PriceQuote) error {
	raw, err := json.Marshal(toBreakdownEntries(quote.Breakdown))
	if err != nil {
		return err
	}
	b.Price = quote.Total
	b.FinalPrice = decimal.NewNullDecimal(quote.Total)
	b.PriceBreakdown = datatypes.JSON(raw)
	return nil
}

func parseBoardingDays(dropOff, pickUp string) (time.Time, time.Time, error) {
	d, err := validation.ParseDate(dropOff)
	if err != nil {
		return time.Time{}, time.Time{}, ErrBoardingDateInvalid
	}
	p, err := validation.ParseDate(pickUp)
	if err != nil {
		return time.Time{}, time.Time{}, ErrBoardingDateInvalid
	}
	if p.Before(d) {
		return time.Time{}, time.Time{}, ErrBoardingDateInvalid
	}
	return d, p, nil
}

func normalizeOptionalClock(v *string) *string {
	if v == nil {
		return nil
	}
	if n, err := validation.NormalizeClock(*v); err == nil {
		return &n
	}
	return v
}

func toBoardingResponse(b *model.Boarding) dto.BoardingResponse {
	resp := dto.BoardingResponse{
		ID:                  b.BoardingID,
		TenantID:            b.TenantID,
		UserID:              b.UserID,
		DropOffDay:          b.DropOffDay.Format(model.DateLayout),
		DropOffBlock:        deref(b.DropOffBlock),
		DropOffTime:         deref(b.DropOffTime),
		PickUpDay:           b.PickUpDay.Format(model.DateLayout),
		PickUpBlock:         deref(b.PickUpBlock),
		PickUpTime:          deref(b.PickUpTime),
		Price:               b.Price.StringFixed(2),
		Status:              b.Status,
		Notes:               deref(b.Notes),
		ProposedDropOffTime: deref(b.ProposedDropOffTime),
		ProposedPickUpTime:  deref(b.ProposedPickUpTime),
		IsDraft:             b.IsDraft != nil && *b.IsDraft,
		ApprovedBy:          deref(b.ApprovedBy),
		BookingID:           deref(b.BookingID),
		Version:             b.Version,
		CreatedAt:           b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           b.UpdatedAt.Format(time.RFC3339),
	}
	if b.FinalPrice.Valid {
		resp.FinalPrice = b.FinalPrice.Decimal.StringFixed(2)
	}
	if b.ApprovedAt != nil {
		resp.ApprovedAt = b.ApprovedAt.Format(time.RFC3339)
	}
	if len(b.ProposedChanges) > 0 {
		var pc dto.BoardingProposedChanges
		if err := json.Unmarshal(b.ProposedChanges, &pc); err == nil {
			resp.ProposedChanges = &pc
		}
	}
	return resp
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// [自证通过] internal/service/boarding_service.go
