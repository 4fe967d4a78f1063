package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// WeekSeeder 为所有配置了时间窗的用户播种本周剩余日期，由 WalkWindowService 实现
type WeekSeeder interface {
	SeedCurrentWeekForAll(ctx context.Context) (int, error)
}

// Seeder 周期性播种任务
type Seeder struct {
	svc      WeekSeeder
	interval time.Duration
	logger   *zap.Logger
}

// NewSeeder 创建周期性播种任务，interval <= 0 时 Run 直接返回
func NewSeeder(svc WeekSeeder, interval time.Duration, logger *zap.Logger) *Seeder {
	return &Seeder{svc: svc, interval: interval, logger: logger.Named("seeder")}
}

// Run 启动时先执行一轮，之后按 interval 触发，ctx 取消后退出
func (s *Seeder) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	s.logger.Info("周期性播种已启动", zap.Duration("interval", s.interval))

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("周期性播种已停止")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Seeder) tick(ctx context.Context) {
	start := time.Now()
	n, err := s.svc.SeedCurrentWeekForAll(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("周期性播种失败", zap.Error(err))
		return
	}
	s.logger.Info("周期性播种完成", zap.Int("seeded", n), zap.Duration("elapsed", time.Since(start)))
}
