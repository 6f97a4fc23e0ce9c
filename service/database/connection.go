/*
 * @module service/database/connection
 * @description 数据库连接，按配置打开 PostgreSQL（lib/pq）或 SQLite 的 gorm 连接
 * @architecture 分层架构 - 数据访问层
 * @documentReference DESIGN.md
 * @stateFlow 读取配置 -> 打开连接 -> 连通性检查
 * @rules 只读使用，清洗结果不回写数据库
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres, gorm.io/driver/sqlite, github.com/lib/pq
 * @refs service/datasource/db_loader.go
 */

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"datacleanse-service/service/config"

	_ "github.com/lib/pq" // PostgreSQL驱动
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 按配置打开数据库连接
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		sqlDB, openErr := sql.Open("postgres", cfg.DSN())
		if openErr != nil {
			return nil, fmt.Errorf("打开PostgreSQL连接失败: %w", openErr)
		}
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(2)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		db, err = gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig)
		if err != nil {
			sqlDB.Close()
		}
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.DSN()), gormConfig)
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	if err := pingOrClose(context.Background(), db); err != nil {
		return nil, err
	}
	return db, nil
}

// pingOrClose 连通性检查失败时关闭连接池
func pingOrClose(ctx context.Context, db *gorm.DB) error {
	err := Ping(ctx, db)
	if err == nil {
		return nil
	}
	if sqlDB, dbErr := db.DB(); dbErr == nil {
		sqlDB.Close()
	}
	return err
}

// Ping 检查数据库连通性
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取数据库连接失败: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("数据库连通性检查失败: %w", err)
	}
	return nil
}
