package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/joemerrillis/sniffr/internal/dto"
	"github.com/joemerrillis/sniffr/internal/model"
	"github.com/joemerrillis/sniffr/internal/repository"
	pkgerrors "github.com/joemerrillis/sniffr/pkg/errors"
	"github.com/joemerrillis/sniffr/pkg/events"
	"github.com/joemerrillis/sniffr/pkg/validation"
)

// ── 遛狗时间窗模块业务错误 ──

var (
	ErrWalkWindowNotFound       = errors.New("时间窗不存在")
	ErrWalkWindowDayInvalid     = errors.New("day_of_week 必须为 0~6 的整数")
	ErrWalkWindowTimeInvalid    = errors.New("window_start 必须早于 window_end")
	ErrWalkWindowEffectiveRange = errors.New("effective_start 不能晚于 effective_end")
	ErrSeedRangeInvalid         = errors.New("播种区间起始日期不能晚于结束日期")
)

// WalkWindowService 遛狗时间窗业务接口
type WalkWindowService interface {
	List(ctx context.Context, caller Caller, weekStart string) ([]dto.WalkWindowResponse, error)
	// ListForClient 租户员工查看已接受客户的时间窗
	ListForClient(ctx context.Context, caller Caller, tenantID, clientID, weekStart string) ([]dto.WalkWindowResponse, error)
	Get(ctx context.Context, caller Caller, id string) (*dto.WalkWindowResponse, error)
	Create(ctx context.Context, caller Caller, req *dto.CreateWalkWindowRequest) (*dto.WalkWindowResponse, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdateWalkWindowRequest) (*dto.WalkWindowResponse, error)
	// Delete 按所有者限定，非本人的时间窗静默忽略
	Delete(ctx context.Context, caller Caller, id string) error

	// SeedNow 播种"今天 ~ 本周六"，targetUserID 为空时为调用者本人
	SeedNow(ctx context.Context, caller Caller, targetUserID string) (int, error)
	// SeedRange 为指定用户播种闭区间 [from, to]
	SeedRange(ctx context.Context, userID string, from, to time.Time) (int, error)
	// SeedCurrentWeekForAll 为所有配置了时间窗的用户播种本周剩余日期
	SeedCurrentWeekForAll(ctx context.Context) (int, error)
}

type walkWindowService struct {
	repo      *repository.Repository
	access    *tenantAccess
	publisher events.Publisher
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewWalkWindowService 创建 WalkWindowService 实例
func NewWalkWindowService(
	repo *repository.Repository,
	access *tenantAccess,
	publisher events.Publisher,
	loc *time.Location,
	logger *zap.Logger,
) WalkWindowService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &walkWindowService{
		repo:      repo,
		access:    access,
		publisher: publisher,
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}
}

// ────────────────────── List ──────────────────────

func (s *walkWindowService) List(ctx context.Context, caller Caller, weekStart string) ([]dto.WalkWindowResponse, error) {
	return s.listForUser(ctx, caller.UserID, weekStart)
}

func (s *walkWindowService) ListForClient(ctx context.Context, caller Caller, tenantID, clientID, weekStart string) ([]dto.WalkWindowResponse, error) {
	if err := s.access.requireClientAccess(ctx, tenantID, clientID, caller); err != nil {
		return nil, err
	}
	return s.listForUser(ctx, clientID, weekStart)
}

func (s *walkWindowService) listForUser(ctx context.Context, userID, weekStart string) ([]dto.WalkWindowResponse, error) {
	windows, err := s.repo.WalkWindow.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("列出时间窗失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	var from, to time.Time
	filter := weekStart != ""
	if filter {
		start, err := validation.ParseDate(weekStart)
		if err != nil {
			return nil, err
		}
		from, to = start, start.AddDate(0, 0, 6)
	}

	result := make([]dto.WalkWindowResponse, 0, len(windows))
	for i := range windows {
		if filter && !windows[i].OverlapsRange(from, to) {
			continue
		}
		result = append(result, toWalkWindowResponse(&windows[i]))
	}
	return result, nil
}

// ────────────────────── Get ──────────────────────

func (s *walkWindowService) Get(ctx context.Context, caller Caller, id string) (*dto.WalkWindowResponse, error) {
	w, err := s.loadOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	resp := toWalkWindowResponse(w)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *walkWindowService) Create(ctx context.Context, caller Caller, req *dto.CreateWalkWindowRequest) (*dto.WalkWindowResponse, error) {
	if req.DayOfWeek == nil {
		return nil, ErrWalkWindowDayInvalid
	}
	w := &model.ClientWalkWindow{
		UserID:      caller.UserID,
		DayOfWeek:   *req.DayOfWeek,
		WindowStart: req.WindowStart,
		WindowEnd:   req.WindowEnd,
	}
	if err := applyEffectiveRange(w, req.EffectiveStart, req.EffectiveEnd); err != nil {
		return nil, err
	}
	if err := normalizeWindow(w); err != nil {
		return nil, err
	}

	if err := s.repo.WalkWindow.Create(ctx, w); err != nil {
		if pkgerrors.IsCheckViolation(err) {
			return nil, ErrWalkWindowTimeInvalid
		}
		s.logger.Error("创建时间窗失败", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, err
	}
	resp := toWalkWindowResponse(w)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *walkWindowService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdateWalkWindowRequest) (*dto.WalkWindowResponse, error) {
	w, err := s.loadOwned(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if req.DayOfWeek != nil {
		w.DayOfWeek = *req.DayOfWeek
	}
	if req.WindowStart != nil {
		w.WindowStart = *req.WindowStart
	}
	if req.WindowEnd != nil {
		w.WindowEnd = *req.WindowEnd
	}
	if err := applyEffectiveRange(w, req.EffectiveStart, req.EffectiveEnd); err != nil {
		return nil, err
	}
	// 合并后整体校验
	if err := normalizeWindow(w); err != nil {
		return nil, err
	}

	if err := s.repo.WalkWindow.Update(ctx, w); err != nil {
		if pkgerrors.IsCheckViolation(err) {
			return nil, ErrWalkWindowTimeInvalid
		}
		s.logger.Error("更新时间窗失败", zap.String("window_id", id), zap.Error(err))
		return nil, err
	}
	resp := toWalkWindowResponse(w)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *walkWindowService) Delete(ctx context.Context, caller Caller, id string) error {
	n, err := s.repo.WalkWindow.Delete(ctx, id, caller.UserID)
	if err != nil {
		s.logger.Error("删除时间窗失败", zap.String("window_id", id), zap.Error(err))
		return err
	}
	if n == 0 {
		s.logger.Debug("删除时间窗未命中", zap.String("window_id", id), zap.String("user_id", caller.UserID))
	}
	return nil
}

// ────────────────────── Seed ──────────────────────

func (s *walkWindowService) SeedNow(ctx context.Context, caller Caller, targetUserID string) (int, error) {
	userID := caller.UserID
	if targetUserID != "" && targetUserID != caller.UserID {
		if err := s.authorizeSeedTarget(ctx, caller, targetUserID); err != nil {
			return 0, err
		}
		userID = targetUserID
	}

	from, to := CurrentWeekRemainder(s.now(), s.loc)
	return s.SeedRange(ctx, userID, from, to)
}

// authorizeSeedTarget 平台管理员，或目标是调用者所属租户的已接受客户
func (s *walkWindowService) authorizeSeedTarget(ctx context.Context, caller Caller, targetUserID string) error {
	if caller.IsPlatformAdmin() {
		return nil
	}
	tenantID := caller.TenantID
	if tenantID == "" {
		user, err := s.repo.User.GetByID(ctx, caller.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTenantClientNotFound
			}
			return err
		}
		tenantID = user.TenantIDValue()
	}
	if tenantID == "" {
		return ErrTenantClientNotFound
	}
	return s.access.requireClientAccess(ctx, tenantID, targetUserID, caller)
}

func (s *walkWindowService) SeedRange(ctx context.Context, userID string, from, to time.Time) (int, error) {
	if civilDate(to).Before(civilDate(from)) {
		return 0, ErrSeedRangeInvalid
	}

	windows, err := s.repo.WalkWindow.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("加载时间窗失败", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}

	candidates := ExpandWalkWindows(userID, windows, from, to)
	seeded, failed := 0, 0
	for i := range candidates {
		created, err := s.repo.PendingWalk.CreateIfAbsent(ctx, &candidates[i])
		if err != nil {
			// 尽力而为：单条失败记录后继续
			failed++
			s.logger.Warn("写入待确认遛狗失败",
				zap.String("user_id", userID),
				zap.String("walk_date", candidates[i].WalkDate.Format(model.DateLayout)),
				zap.String("window_start", candidates[i].WindowStart),
				zap.Error(err),
			)
			continue
		}
		if created {
			seeded++
		}
	}

	s.logger.Info("播种完成",
		zap.String("user_id", userID),
		zap.String("from", from.Format(model.DateLayout)),
		zap.String("to", to.Format(model.DateLayout)),
		zap.Int("candidates", len(candidates)),
		zap.Int("seeded", seeded),
		zap.Int("failed", failed),
	)

	if seeded > 0 {
		payload := map[string]interface{}{
			"user_id": userID,
			"from":    civilDate(from).Format(model.DateLayout),
			"to":      civilDate(to).Format(model.DateLayout),
			"seeded":  seeded,
		}
		if err := s.publisher.Publish(ctx, events.TypeWalksSeeded, userID, payload); err != nil {
			s.logger.Warn("投递 walks.seeded 事件失败", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return seeded, nil
}

func (s *walkWindowService) SeedCurrentWeekForAll(ctx context.Context) (int, error) {
	userIDs, err := s.repo.WalkWindow.ListUserIDs(ctx)
	if err != nil {
		s.logger.Error("列出时间窗用户失败", zap.Error(err))
		return 0, err
	}

	from, to := CurrentWeekRemainder(s.now(), s.loc)
	total := 0
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		n, err := s.SeedRange(ctx, userID, from, to)
		if err != nil {
			continue
		}
		total += n
	}
	return total, nil
}

// ── 辅助函数 ──

func (s *walkWindowService) loadOwned(ctx context.Context, caller Caller, id string) (*model.ClientWalkWindow, error) {
	w, err := s.repo.WalkWindow.GetForUser(ctx, id, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || pkgerrors.IsInvalidText(err) {
			return nil, ErrWalkWindowNotFound
		}
		s.logger.Error("查询时间窗失败", zap.String("window_id", id), zap.Error(err))
		return nil, err
	}
	return w, nil
}

func applyEffectiveRange(w *model.ClientWalkWindow, start, end *string) error {
	if start != nil {
		d, err := validation.ParseDate(*start)
		if err != nil {
			return ErrWalkWindowEffectiveRange
		}
		w.EffectiveStart = &d
	}
	if end != nil {
		d, err := validation.ParseDate(*end)
		if err != nil {
			return ErrWalkWindowEffectiveRange
		}
		w.EffectiveEnd = &d
	}
	return nil
}

// normalizeWindow 写入前的完整校验，时刻统一为 HH:MM:SS
func normalizeWindow(w *model.ClientWalkWindow) error {
	if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
		return ErrWalkWindowDayInvalid
	}
	start, err := validation.NormalizeClock(w.WindowStart)
	if err != nil {
		return ErrWalkWindowTimeInvalid
	}
	end, err := validation.NormalizeClock(w.WindowEnd)
	if err != nil {
		return ErrWalkWindowTimeInvalid
	}
	// HH:MM:SS 定长，字典序即时间序
	if start >= end {
		return ErrWalkWindowTimeInvalid
	}
	w.WindowStart, w.WindowEnd = start, end

	if w.EffectiveStart != nil && w.EffectiveEnd != nil && w.EffectiveStart.After(*w.EffectiveEnd) {
		return ErrWalkWindowEffectiveRange
	}
	return nil
}

func toWalkWindowResponse(w *model.ClientWalkWindow) dto.WalkWindowResponse {
	return dto.WalkWindowResponse{
		ID:             w.WindowID,
		UserID:         w.UserID,
		DayOfWeek:      w.DayOfWeek,
		WindowStart:    w.WindowStart,
		WindowEnd:      w.WindowEnd,
		EffectiveStart: model.FormatDate(w.EffectiveStart),
		EffectiveEnd:   model.FormatDate(w.EffectiveEnd),
		CreatedAt:      w.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      w.UpdatedAt.Format(time.RFC3339),
	}
}
