/*
 * @module service/data_quality/dropper
 * @description 删行器，按顺序删除指定列为空的行并记录删除数量和占比
 * @architecture 分层架构 - 数据清洗层
 * @documentReference DESIGN.md
 * @stateFlow 逐列：统计当前缺失数 -> 记录日志 -> 删除行
 * @rules 占比分母始终为原始行数，分子为处理该列时的实时缺失数
 * @dependencies log/slog, datacleanse-service/service/models
 * @refs classifier.go, cleanser.go
 */

package data_quality

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"datacleanse-service/service/models"
)

// DropRecord 单列删行记录
type DropRecord struct {
	Column  string  `json:"column"`
	Dropped int     `json:"dropped"`
	Percent float64 `json:"percent"`
}

// Message 人类可读的删行说明
func (r DropRecord) Message() string {
	return fmt.Sprintf("Dropped %d rows due to nan values in %s column, corresponding to a %s%% of the dataset length",
		r.Dropped, r.Column, formatPercent(r.Percent))
}

// formatPercent 最短表示，整数值保留一位小数，如 3.0、14.286
func formatPercent(p float64) string {
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// roundPercent 计算百分比并保留三位小数。
// 按二进制精确值做十进制舍入，恰好在中点时取偶，例如 1/64 得 1.562。
func roundPercent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	x := float64(count) / float64(total) * 100
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 3, 64), 64)
	if err != nil {
		return x
	}
	return rounded
}

// DropMissingRows 依次删除 columns 中各列为空的行，就地修改 table。
// 所有列名会在删除前先校验，任一不存在时表保持不变。
func DropMissingRows(table *models.Table, columns []string, originalRows int, logger *slog.Logger) ([]DropRecord, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if table == nil {
		return nil, invalidTable(errNilTable)
	}

	targets := make([]*models.Column, 0, len(columns))
	for _, name := range columns {
		column, ok := table.Column(name)
		if !ok {
			return nil, columnNotFound(name)
		}
		targets = append(targets, column)
	}

	records := make([]DropRecord, 0, len(targets))
	for _, column := range targets {
		record := DropRecord{
			Column:  column.Name,
			Dropped: column.MissingCount(),
		}
		record.Percent = roundPercent(record.Dropped, originalRows)
		logger.Info(record.Message(),
			"column", record.Column,
			"dropped", record.Dropped,
			"percent", record.Percent)

		values := column.Values
		table.RemoveRows(func(row int) bool {
			return values[row].IsMissing()
		})
		records = append(records, record)
	}
	return records, nil
}
