package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/joemerrillis/sniffr/config"
	"github.com/joemerrillis/sniffr/internal/api/handler"
	"github.com/joemerrillis/sniffr/internal/api/router"
	"github.com/joemerrillis/sniffr/internal/repository"
	"github.com/joemerrillis/sniffr/internal/service"
	"github.com/joemerrillis/sniffr/internal/worker"
	"github.com/joemerrillis/sniffr/pkg/database"
	"github.com/joemerrillis/sniffr/pkg/events"
	"github.com/joemerrillis/sniffr/pkg/jwt"
	applogger "github.com/joemerrillis/sniffr/pkg/logger"
	"github.com/joemerrillis/sniffr/pkg/redis"
	"github.com/joemerrillis/sniffr/pkg/telemetry"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("SNIFFR_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("env", cfg.Server.Env),
		zap.String("timezone", cfg.Server.Timezone),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 链路追踪
	shutdownTracing, err := telemetry.Setup(rootCtx, &cfg.Telemetry)
	if err != nil {
		logger.Fatal("初始化链路追踪失败", zap.Error(err))
	}

	// 4. 连接数据库并执行迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 5. 连接 Redis（可选：失败时黑名单与限流降级）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与限流将不可用", zap.Error(err))
		rdb = nil
	}
	var blacklist service.TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}

	// 6. 领域事件
	publisher := events.NewPublisher(&cfg.Kafka, logger)

	// 7. 依赖注入: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, blacklist, publisher, logger)
	h := handler.NewHandler(svc)

	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 8. 启动 HTTP 服务器
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           telemetry.WrapHandler(engine, cfg.Telemetry.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 周期性播种
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.NewSeeder(svc.WalkWindow, cfg.Seed.Interval, logger).Run(rootCtx)
	}()

	// 10. 等待信号，优雅关闭
	<-rootCtx.Done()
	logger.Info("收到关闭信号，开始优雅关闭...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}
	wg.Wait()

	if err := publisher.Close(); err != nil {
		logger.Warn("关闭事件发布器失败", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("关闭链路追踪失败", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	_ = sqlDB.Close()

	logger.Info("服务器已关闭")
}
