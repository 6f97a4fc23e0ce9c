/*
 * @module service/data_quality/classifier
 * @description 缺失列分类器，按缺失比例把列划分为替换候选和删行候选
 * @architecture 分层架构 - 数据清洗层
 * @documentReference DESIGN.md
 * @stateFlow 候选列 -> 统计缺失数 -> 与阈值比较 -> 稳定划分
 * @rules 纯函数，不修改表；输出保持候选列的输入顺序
 * @dependencies datacleanse-service/service/models
 * @refs cleanser.go, dropper.go
 */

package data_quality

import (
	"math"

	"datacleanse-service/service/models"
)

// DefaultThreshold 默认可容忍的缺失比例
const DefaultThreshold = 0.05

// Classification 缺失列分类结果
type Classification struct {
	ReplaceCandidates []string `json:"replace_candidates"`
	DropCandidates    []string `json:"drop_candidates"`
}

// ValidateThreshold 阈值必须位于 [0,1]
func ValidateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return invalidArgument("阈值必须在 [0,1] 之间，当前为 %v", threshold)
	}
	return nil
}

// MissingColumns 返回至少含一个缺失值的列名，顺序与表中列顺序一致
func MissingColumns(table *models.Table) []string {
	if table == nil {
		return nil
	}
	var columns []string
	for _, c := range table.Columns {
		if c != nil && c.MissingCount() > 0 {
			columns = append(columns, c.Name)
		}
	}
	return columns
}

// ClassifyMissingColumns 对候选列按缺失数划分。
// 缺失数 > rowCount*threshold 的列进入替换候选，其余进入删行候选。
// rowCount 为 0 时任何缺失都会进入替换候选。
func ClassifyMissingColumns(table *models.Table, candidates []string, rowCount int, threshold float64) (*Classification, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	if table == nil {
		return nil, invalidTable(errNilTable)
	}

	result := &Classification{
		ReplaceCandidates: make([]string, 0),
		DropCandidates:    make([]string, 0),
	}
	limit := float64(rowCount) * threshold
	for _, name := range candidates {
		column, ok := table.Column(name)
		if !ok {
			return nil, columnNotFound(name)
		}
		if float64(column.MissingCount()) > limit {
			result.ReplaceCandidates = append(result.ReplaceCandidates, name)
		} else {
			result.DropCandidates = append(result.DropCandidates, name)
		}
	}
	return result, nil
}
