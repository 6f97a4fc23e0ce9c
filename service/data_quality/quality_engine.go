/*
 * @module service/data_quality/quality_engine
 * @description 数据质量引擎，组合校验器和清洗器，对外提供缺失值清洗与缺失画像
 * @architecture 分层架构 - 数据质量服务层
 * @documentReference DESIGN.md
 * @stateFlow 输入校验 -> 缺失画像 / 缺失值清洗 -> 结果返回
 * @rules 引擎本身无状态，可被多个请求并发使用；单个表不可并发清洗
 * @dependencies datacleanse-service/service/models
 * @refs cleanser.go, validator.go
 */

package data_quality

import (
	"datacleanse-service/service/models"
)

// QualityEngine 数据质量引擎
type QualityEngine struct {
	validator *Validator
	cleanser  *Cleanser
}

// CleanOptions 单次清洗选项
type CleanOptions struct {
	// Threshold 为空时使用引擎默认阈值
	Threshold *float64
	// Copy 为 true 时在表的副本上清洗，输入表保持不变
	Copy bool
}

// ColumnProfile 单列缺失画像
type ColumnProfile struct {
	Column       string            `json:"column"`
	Type         models.ColumnType `json:"type"`
	MissingCount int               `json:"missing_count"`
	MissingRatio float64           `json:"missing_ratio"`
	// Category 为 replace、drop 或 complete
	Category string `json:"category"`
}

// MissingnessProfile 表的缺失画像
type MissingnessProfile struct {
	RowCount  int             `json:"row_count"`
	Threshold float64         `json:"threshold"`
	Columns   []ColumnProfile `json:"columns"`
	Classification
}

const (
	CategoryReplace  = "replace"
	CategoryDrop     = "drop"
	CategoryComplete = "complete"
)

// NewQualityEngine 创建数据质量引擎实例
func NewQualityEngine(cleanser *Cleanser) *QualityEngine {
	return &QualityEngine{
		validator: NewValidator(),
		cleanser:  cleanser,
	}
}

// Threshold 引擎默认阈值
func (e *QualityEngine) Threshold() float64 {
	return e.cleanser.Threshold()
}

func (e *QualityEngine) cleanserFor(threshold *float64) (*Cleanser, error) {
	if threshold == nil {
		return e.cleanser, nil
	}
	return e.cleanser.WithThreshold(*threshold)
}

// Clean 校验并清洗表
func (e *QualityEngine) Clean(table *models.Table, opts CleanOptions) (*CleanResult, error) {
	cleanser, err := e.cleanserFor(opts.Threshold)
	if err != nil {
		return nil, err
	}
	if opts.Copy {
		if err := e.validator.ValidateStructure(table); err != nil {
			return nil, err
		}
		table = table.Clone()
	}
	if err := e.validator.ValidateTable(table); err != nil {
		return nil, err
	}
	return cleanser.CleanNaNValues(table)
}

// Profile 计算每列缺失数、缺失比例以及在当前阈值下的分类，不修改表
func (e *QualityEngine) Profile(table *models.Table, threshold *float64) (*MissingnessProfile, error) {
	cleanser, err := e.cleanserFor(threshold)
	if err != nil {
		return nil, err
	}
	if err := e.validator.ValidateTable(table); err != nil {
		return nil, err
	}

	rowCount := table.RowCount()
	classification, err := ClassifyMissingColumns(table, MissingColumns(table), rowCount, cleanser.Threshold())
	if err != nil {
		return nil, err
	}

	category := make(map[string]string, len(table.Columns))
	for _, name := range classification.ReplaceCandidates {
		category[name] = CategoryReplace
	}
	for _, name := range classification.DropCandidates {
		category[name] = CategoryDrop
	}

	profile := &MissingnessProfile{
		RowCount:       rowCount,
		Threshold:      cleanser.Threshold(),
		Columns:        make([]ColumnProfile, 0, len(table.Columns)),
		Classification: *classification,
	}
	for _, c := range table.Columns {
		p := ColumnProfile{
			Column:       c.Name,
			Type:         c.Type,
			MissingCount: c.MissingCount(),
			Category:     CategoryComplete,
		}
		if rowCount > 0 {
			p.MissingRatio = float64(p.MissingCount) / float64(rowCount)
		}
		if cat, ok := category[c.Name]; ok {
			p.Category = cat
		}
		profile.Columns = append(profile.Columns, p)
	}
	return profile, nil
}
