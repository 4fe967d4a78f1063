package main

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/joemerrillis/sniffr/config"
	"github.com/joemerrillis/sniffr/pkg/database"
	applogger "github.com/joemerrillis/sniffr/pkg/logger"
)

// cliEnv 子命令共享的配置、日志与数据库连接
type cliEnv struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func bootstrap(configPath string) (*cliEnv, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, err
	}
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, err
	}
	return &cliEnv{cfg: cfg, logger: logger, db: db}, nil
}

func (e *cliEnv) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = e.logger.Sync()
}
