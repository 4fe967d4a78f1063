package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/joemerrillis/sniffr/internal/model"
)

// WalkWindowRepository 遛狗时间窗数据访问接口
type WalkWindowRepository interface {
	Create(ctx context.Context, w *model.ClientWalkWindow) error
	// GetForUser 按 (id, user_id) 查询，他人的时间窗视为不存在
	GetForUser(ctx context.Context, id, userID string) (*model.ClientWalkWindow, error)
	ListByUser(ctx context.Context, userID string) ([]model.ClientWalkWindow, error)
	Update(ctx context.Context, w *model.ClientWalkWindow) error
	// Delete 按 (id, user_id) 硬删除，返回受影响行数
	Delete(ctx context.Context, id, userID string) (int64, error)
	ListUserIDs(ctx context.Context) ([]string, error)
}

type walkWindowRepo struct {
	db *gorm.DB
}

// NewWalkWindowRepo 创建 WalkWindowRepository 实例
func NewWalkWindowRepo(db *gorm.DB) WalkWindowRepository {
	return &walkWindowRepo{db: db}
}

func (r *walkWindowRepo) Create(ctx context.Context, w *model.ClientWalkWindow) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *walkWindowRepo) GetForUser(ctx context.Context, id, userID string) (*model.ClientWalkWindow, error) {
	var w model.ClientWalkWindow
	err := r.db.WithContext(ctx).
		Where("window_id = ? AND user_id = ?", id, userID).
		First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *walkWindowRepo) ListByUser(ctx context.Context, userID string) ([]model.ClientWalkWindow, error) {
	var windows []model.ClientWalkWindow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("day_of_week ASC, window_start ASC, window_id ASC").
		Find(&windows).Error
	return windows, err
}

func (r *walkWindowRepo) Update(ctx context.Context, w *model.ClientWalkWindow) error {
	return r.db.WithContext(ctx).
		Model(w).
		Where("user_id = ?", w.UserID).
		Updates(map[string]interface{}{
			"day_of_week":     w.DayOfWeek,
			"window_start":    w.WindowStart,
			"window_end":      w.WindowEnd,
			"effective_start": w.EffectiveStart,
			"effective_end":   w.EffectiveEnd,
		}).Error
}

func (r *walkWindowRepo) Delete(ctx context.Context, id, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("window_id = ? AND user_id = ?", id, userID).
		Delete(&model.ClientWalkWindow{})
	return result.RowsAffected, result.Error
}

func (r *walkWindowRepo) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.ClientWalkWindow{}).
		Distinct("user_id").
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	return ids, err
}

// ── PendingWalk Repository ──

// PendingWalkRepository 待确认遛狗数据访问接口
type PendingWalkRepository interface {
	// CreateIfAbsent 原子插入；唯一键已存在时不写入，返回 false
	CreateIfAbsent(ctx context.Context, p *model.PendingWalk) (bool, error)
	ListByUserInRange(ctx context.Context, userID string, from, to time.Time) ([]model.PendingWalk, error)
}

type pendingWalkRepo struct {
	db *gorm.DB
}

// NewPendingWalkRepo 创建 PendingWalkRepository 实例
func NewPendingWalkRepo(db *gorm.DB) PendingWalkRepository {
	return &pendingWalkRepo{db: db}
}

func (r *pendingWalkRepo) CreateIfAbsent(ctx context.Context, p *model.PendingWalk) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"}, {Name: "walk_date"}, {Name: "window_start"}, {Name: "window_end"},
			},
			DoNothing: true,
		}).
		Create(p)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *pendingWalkRepo) ListByUserInRange(ctx context.Context, userID string, from, to time.Time) ([]model.PendingWalk, error) {
	var walks []model.PendingWalk
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND walk_date BETWEEN ? AND ?", userID,
			from.Format(model.DateLayout), to.Format(model.DateLayout)).
		Order("walk_date ASC, window_start ASC").
		Find(&walks).Error
	return walks, err
}
