/*
 * @module service/data_quality/cleanser
 * @description 数据清洗器，识别含缺失值的列，低缺失列删行，高缺失列标记待填充
 * @architecture 分层架构 - 数据清洗层
 * @documentReference DESIGN.md
 * @stateFlow 识别缺失列 -> 分类 -> 删行 -> 返回清洗后的表和待填充列
 * @rules 表的所有权在调用期间转交给清洗器，删行就地进行；出错时不回滚
 * @dependencies log/slog, github.com/google/uuid
 * @refs classifier.go, dropper.go, quality_monitor.go
 */

package data_quality

import (
	"log/slog"
	"time"

	"datacleanse-service/service/models"

	"github.com/google/uuid"
)

// CleanResult 一次清洗的结果
type CleanResult struct {
	RunID             string        `json:"run_id"`
	Table             *models.Table `json:"table"`
	ReplaceCandidates []string      `json:"replace_candidates"`
	DropCandidates    []string      `json:"drop_candidates"`
	Drops             []DropRecord  `json:"drops"`
	Threshold         float64       `json:"threshold"`
	RowsBefore        int           `json:"rows_before"`
	RowsAfter         int           `json:"rows_after"`
	StartedAt         time.Time     `json:"started_at"`
	Duration          time.Duration `json:"duration_ns"`
}

// Cleanser 数据清洗器
type Cleanser struct {
	threshold float64
	logger    *slog.Logger
	monitor   *QualityMonitor
}

// NewCleanser 创建数据清洗器实例，logger 和 monitor 可为 nil
func NewCleanser(threshold float64, logger *slog.Logger, monitor *QualityMonitor) (*Cleanser, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleanser{
		threshold: threshold,
		logger:    logger,
		monitor:   monitor,
	}, nil
}

// Threshold 当前阈值
func (c *Cleanser) Threshold() float64 {
	return c.threshold
}

// WithThreshold 返回使用新阈值的清洗器副本
func (c *Cleanser) WithThreshold(threshold float64) (*Cleanser, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	clone := *c
	clone.threshold = threshold
	return &clone, nil
}

// CleanNaNValues 清洗表中的缺失值，table 会被就地修改
func (c *Cleanser) CleanNaNValues(table *models.Table) (*CleanResult, error) {
	startedAt := time.Now()
	result, err := c.clean(table, startedAt)
	c.monitor.ObserveRun(time.Since(startedAt), err)
	if err != nil {
		c.logger.Error("缺失值清洗失败", "error", err)
		return nil, err
	}
	return result, nil
}

func (c *Cleanser) clean(table *models.Table, startedAt time.Time) (*CleanResult, error) {
	if err := table.Validate(); err != nil {
		return nil, invalidTable(err)
	}
	candidates := MissingColumns(table)
	rowCount := table.RowCount()

	classification, err := ClassifyMissingColumns(table, candidates, rowCount, c.threshold)
	if err != nil {
		return nil, err
	}
	c.monitor.ObserveClassification(classification)

	drops, err := DropMissingRows(table, classification.DropCandidates, rowCount, c.logger)
	if err != nil {
		return nil, err
	}
	c.monitor.ObserveDrops(drops)

	return &CleanResult{
		RunID:             uuid.NewString(),
		Table:             table,
		ReplaceCandidates: classification.ReplaceCandidates,
		DropCandidates:    classification.DropCandidates,
		Drops:             drops,
		Threshold:         c.threshold,
		RowsBefore:        rowCount,
		RowsAfter:         table.RowCount(),
		StartedAt:         startedAt,
		Duration:          time.Since(startedAt),
	}, nil
}

// CleanNaNValues 使用默认阈值清洗表，返回清洗后的表和待填充列
func CleanNaNValues(table *models.Table) (*models.Table, []string, error) {
	cleanser, err := NewCleanser(DefaultThreshold, nil, nil)
	if err != nil {
		return nil, nil, err
	}
	result, err := cleanser.CleanNaNValues(table)
	if err != nil {
		return nil, nil, err
	}
	return result.Table, result.ReplaceCandidates, nil
}
