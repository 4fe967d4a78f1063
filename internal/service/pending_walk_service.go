package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/joemerrillis/sniffr/internal/dto"
	"github.com/joemerrillis/sniffr/internal/model"
	"github.com/joemerrillis/sniffr/internal/repository"
	"github.com/joemerrillis/sniffr/pkg/validation"
)

var (
	ErrPendingWalkRangeInvalid = errors.New("查询区间无效")
	ErrExportGenerateFail      = errors.New("导出文件生成失败")
)

// 单次查询最多跨 92 天
const maxPendingWalkRangeDays = 92

// PendingWalkService 待确认遛狗业务接口
type PendingWalkService interface {
	List(ctx context.Context, caller Caller, req *dto.PendingWalkListRequest) ([]dto.PendingWalkResponse, error)
	ListForClient(ctx context.Context, caller Caller, tenantID, clientID string, req *dto.PendingWalkListRequest) ([]dto.PendingWalkResponse, error)
	Export(ctx context.Context, caller Caller, req *dto.PendingWalkExportRequest) (*ExportFile, error)
}

type pendingWalkService struct {
	repo   *repository.Repository
	access *tenantAccess
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewPendingWalkService 创建 PendingWalkService 实例
func NewPendingWalkService(repo *repository.Repository, access *tenantAccess, loc *time.Location, logger *zap.Logger) PendingWalkService {
	return &pendingWalkService{repo: repo, access: access, loc: loc, now: time.Now, logger: logger}
}

func (s *pendingWalkService) List(ctx context.Context, caller Caller, req *dto.PendingWalkListRequest) ([]dto.PendingWalkResponse, error) {
	walks, _, _, err := s.load(ctx, caller.UserID, req)
	if err != nil {
		return nil, err
	}
	return toPendingWalkResponses(walks), nil
}

func (s *pendingWalkService) ListForClient(ctx context.Context, caller Caller, tenantID, clientID string, req *dto.PendingWalkListRequest) ([]dto.PendingWalkResponse, error) {
	if err := s.access.requireClientAccess(ctx, tenantID, clientID, caller); err != nil {
		return nil, err
	}
	walks, _, _, err := s.load(ctx, clientID, req)
	if err != nil {
		return nil, err
	}
	return toPendingWalkResponses(walks), nil
}

func (s *pendingWalkService) Export(ctx context.Context, caller Caller, req *dto.PendingWalkExportRequest) (*ExportFile, error) {
	walks, from, to, err := s.load(ctx, caller.UserID, &req.PendingWalkListRequest)
	if err != nil {
		return nil, err
	}

	var file *ExportFile
	switch req.Format {
	case "ics":
		file, err = buildPendingWalksCalendar(walks, s.loc, s.now().UTC())
	default:
		file, err = buildPendingWalksSheet(walks, from, to)
	}
	if err != nil {
		s.logger.Error("生成导出文件失败", zap.String("format", req.Format), zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return file, nil
}

// load 解析区间（缺省为本周）并查询
func (s *pendingWalkService) load(ctx context.Context, userID string, req *dto.PendingWalkListRequest) ([]model.PendingWalk, time.Time, time.Time, error) {
	from, to := WeekOf(s.now().In(s.loc))
	if req.From != "" {
		d, err := validation.ParseDate(req.From)
		if err != nil {
			return nil, from, to, ErrPendingWalkRangeInvalid
		}
		from = d
		if req.To == "" {
			to = from.AddDate(0, 0, 6)
		}
	}
	if req.To != "" {
		d, err := validation.ParseDate(req.To)
		if err != nil {
			return nil, from, to, ErrPendingWalkRangeInvalid
		}
		to = d
	}
	if to.Before(from) || to.Sub(from) > maxPendingWalkRangeDays*24*time.Hour {
		return nil, from, to, ErrPendingWalkRangeInvalid
	}

	walks, err := s.repo.PendingWalk.ListByUserInRange(ctx, userID, from, to)
	if err != nil {
		s.logger.Error("查询待确认遛狗失败", zap.String("user_id", userID), zap.Error(err))
		return nil, from, to, err
	}
	return walks, from, to, nil
}

func toPendingWalkResponses(walks []model.PendingWalk) []dto.PendingWalkResponse {
	result := make([]dto.PendingWalkResponse, 0, len(walks))
	for i := range walks {
		p := &walks[i]
		resp := dto.PendingWalkResponse{
			ID:          p.PendingWalkID,
			UserID:      p.UserID,
			WalkDate:    p.WalkDate.Format(model.DateLayout),
			WindowStart: p.WindowStart,
			WindowEnd:   p.WindowEnd,
			Status:      p.Status,
			CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		}
		if p.WindowID != nil {
			resp.WindowID = *p.WindowID
		}
		result = append(result, resp)
	}
	return result
}
