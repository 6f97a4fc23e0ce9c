/*
 * @module service/datasource/db_loader
 * @description 数据库数据源，把数据库表读取为带类型的内存表
 * @architecture 数据源层
 * @documentReference DESIGN.md
 * @stateFlow 校验表名和列名 -> 查询 -> 根据列类型映射 -> 扫描行 -> 构建表
 * @rules 只读查询；标识符必须通过白名单校验；NULL 转换为显式空值
 * @dependencies gorm.io/gorm
 * @refs service/database/connection.go, service/models/table.go
 */

package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"datacleanse-service/service/models"

	"gorm.io/gorm"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// TableQuery 数据库表读取请求
type TableQuery struct {
	Table   string   `json:"table"`
	Columns []string `json:"columns,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

// Validate 校验表名、列名和行数限制
func (q TableQuery) Validate() error {
	if !identifierPattern.MatchString(q.Table) {
		return fmt.Errorf("表名非法: %q", q.Table)
	}
	for _, c := range q.Columns {
		if !identifierPattern.MatchString(c) || strings.Contains(c, ".") {
			return fmt.Errorf("列名非法: %q", c)
		}
	}
	if q.Limit < 0 {
		return fmt.Errorf("行数限制不能为负数: %d", q.Limit)
	}
	return nil
}

// DBLoader 数据库表加载器
type DBLoader struct {
	db *gorm.DB
}

// NewDBLoader 创建数据库表加载器
func NewDBLoader(db *gorm.DB) *DBLoader {
	return &DBLoader{db: db}
}

// Load 读取数据库表
func (l *DBLoader) Load(ctx context.Context, query TableQuery) (*models.Table, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	tx := l.db.WithContext(ctx).Table(query.Table)
	if len(query.Columns) > 0 {
		tx = tx.Select(query.Columns)
	}
	if query.Limit > 0 {
		tx = tx.Limit(query.Limit)
	}

	rows, err := tx.Rows()
	if err != nil {
		return nil, fmt.Errorf("查询表 %s 失败: %w", query.Table, err)
	}
	defer rows.Close()

	return scanTable(rows)
}

// scanTable 扫描结果集为内存表
func scanTable(rows *sql.Rows) (*models.Table, error) {
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("获取列信息失败: %w", err)
	}

	table := models.NewTable()
	for _, ct := range columnTypes {
		table.Columns = append(table.Columns, models.NewColumn(ct.Name(), mapDatabaseType(ct.DatabaseTypeName())))
	}

	for rows.Next() {
		values := make([]interface{}, len(columnTypes))
		valuePtrs := make([]interface{}, len(columnTypes))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("扫描行数据失败: %w", err)
		}

		for i, column := range table.Columns {
			v, err := models.ConvertValue(column.Type, values[i])
			if err != nil {
				return nil, fmt.Errorf("列 %s 的值无法转换为 %s: %w", column.Name, column.Type, err)
			}
			column.Values = append(column.Values, v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("读取数据时发生错误: %w", err)
	}
	return table, nil
}

var databaseTypes = map[string]models.ColumnType{
	"INT": models.ColumnTypeInt, "INTEGER": models.ColumnTypeInt, "INT2": models.ColumnTypeInt,
	"INT4": models.ColumnTypeInt, "INT8": models.ColumnTypeInt, "SMALLINT": models.ColumnTypeInt,
	"BIGINT": models.ColumnTypeInt, "TINYINT": models.ColumnTypeInt, "MEDIUMINT": models.ColumnTypeInt,
	"SERIAL": models.ColumnTypeInt, "BIGSERIAL": models.ColumnTypeInt, "SMALLSERIAL": models.ColumnTypeInt,

	"REAL": models.ColumnTypeFloat, "FLOAT": models.ColumnTypeFloat, "FLOAT4": models.ColumnTypeFloat,
	"FLOAT8": models.ColumnTypeFloat, "DOUBLE": models.ColumnTypeFloat, "DOUBLE PRECISION": models.ColumnTypeFloat,
	"NUMERIC": models.ColumnTypeFloat, "DECIMAL": models.ColumnTypeFloat,

	"BOOL": models.ColumnTypeBool, "BOOLEAN": models.ColumnTypeBool,

	"DATE": models.ColumnTypeTime, "DATETIME": models.ColumnTypeTime, "TIMESTAMP": models.ColumnTypeTime,
	"TIMESTAMPTZ": models.ColumnTypeTime,
}

// mapDatabaseType 把数据库类型名映射为列类型，未知类型按字符串处理
func mapDatabaseType(name string) models.ColumnType {
	name = strings.ToUpper(strings.TrimSpace(name))
	// 去掉精度，如 NUMERIC(10,2)、VARCHAR(255)
	if idx := strings.Index(name, "("); idx >= 0 {
		name = strings.TrimSpace(name[:idx])
	}
	if t, ok := databaseTypes[name]; ok {
		return t
	}
	return models.ColumnTypeString
}
