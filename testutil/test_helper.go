/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @documentReference DESIGN.md
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, cast
 * @refs service/models
 */

package testutil

import (
	"fmt"

	"datacleanse-service/service/models"

	"github.com/spf13/cast"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建内存 SQLite 测试数据库
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	// 内存库每个连接独立，固定为单连接
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}

	return &TestDB{DB: db}
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

func toValues(colType models.ColumnType, raw []interface{}) []models.Value {
	values := make([]models.Value, len(raw))
	for i, r := range raw {
		v, err := models.ConvertValue(colType, r)
		if err != nil {
			panic(fmt.Sprintf("invalid %s fixture value %v: %v", colType, r, err))
		}
		values[i] = v
	}
	return values
}

// FloatColumn 创建浮点列，nil 为缺失值
func FloatColumn(name string, raw ...interface{}) *models.Column {
	return models.NewColumn(name, models.ColumnTypeFloat, toValues(models.ColumnTypeFloat, raw)...)
}

// IntColumn 创建整数列，nil 为缺失值
func IntColumn(name string, raw ...interface{}) *models.Column {
	return models.NewColumn(name, models.ColumnTypeInt, toValues(models.ColumnTypeInt, raw)...)
}

// StringColumn 创建字符串列，nil 为缺失值
func StringColumn(name string, raw ...interface{}) *models.Column {
	return models.NewColumn(name, models.ColumnTypeString, toValues(models.ColumnTypeString, raw)...)
}

// SparseColumn 创建 rows 行的浮点列，missing 中的行号为缺失值，其余行值为行号
func SparseColumn(name string, rows int, missing ...int) *models.Column {
	holes := make(map[int]struct{}, len(missing))
	for _, m := range missing {
		holes[m] = struct{}{}
	}
	values := make([]models.Value, rows)
	for i := 0; i < rows; i++ {
		if _, ok := holes[i]; ok {
			continue
		}
		values[i] = models.NewValue(cast.ToFloat64(i))
	}
	return models.NewColumn(name, models.ColumnTypeFloat, values...)
}

// Rows 生成 [from, to) 的行号
func Rows(from, to int) []int {
	rows := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		rows = append(rows, i)
	}
	return rows
}
