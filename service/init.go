/*
 * @module service/init
 * @description 服务初始化模块，负责配置加载、日志、指标、清洗引擎和可选数据库连接的初始化
 * @architecture 分层架构 - 服务层
 * @documentReference DESIGN.md
 * @stateFlow 应用启动时执行初始化流程
 * @rules 确保所有依赖服务正常启动后才提供API服务；未配置数据库时跳过数据库数据源
 * @dependencies gorm.io/gorm, github.com/prometheus/client_golang
 * @refs service/config/config_manager.go, service/data_quality/quality_engine.go
 */

package service

import (
	"fmt"
	"log/slog"

	"datacleanse-service/logger"
	"datacleanse-service/service/config"
	"datacleanse-service/service/data_quality"
	"datacleanse-service/service/database"
	"datacleanse-service/service/datasource"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

var (
	Config               *config.Config
	DB                   *gorm.DB
	GlobalQualityMonitor *data_quality.QualityMonitor
	GlobalQualityEngine  *data_quality.QualityEngine
	GlobalCSVLoader      *datasource.CSVLoader
	GlobalDBLoader       *datasource.DBLoader
)

// Init 初始化全部服务，reg 为指标注册器
func Init(reg prometheus.Registerer) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	Config = cfg

	log := logger.InitLogger(cfg.Log.Level)

	if err := initServices(cfg, reg, log); err != nil {
		return err
	}
	if err := initDatabase(cfg.Database); err != nil {
		return err
	}

	log.Info("服务初始化完成",
		"threshold", cfg.Cleaning.Threshold,
		"database", cfg.Database.Driver)
	return nil
}

// initServices 初始化清洗相关服务
func initServices(cfg *config.Config, reg prometheus.Registerer, log *slog.Logger) error {
	monitor, err := data_quality.NewQualityMonitor(reg)
	if err != nil {
		return fmt.Errorf("注册清洗指标失败: %w", err)
	}
	GlobalQualityMonitor = monitor

	cleanser, err := data_quality.NewCleanser(cfg.Cleaning.Threshold, log, monitor)
	if err != nil {
		return fmt.Errorf("创建清洗器失败: %w", err)
	}
	GlobalQualityEngine = data_quality.NewQualityEngine(cleanser)
	GlobalCSVLoader = datasource.NewCSVLoader(cfg.Cleaning.MissingTokens)
	return nil
}

// initDatabase 初始化数据库连接
func initDatabase(cfg config.DatabaseConfig) error {
	if !cfg.Enabled() {
		slog.Info("未配置数据库，跳过数据库数据源")
		return nil
	}

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	DB = db
	GlobalDBLoader = datasource.NewDBLoader(db)

	slog.Info("数据库连接成功", "driver", cfg.Driver)
	return nil
}
