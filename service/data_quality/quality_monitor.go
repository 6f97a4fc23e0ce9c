/*
 * @module service/data_quality/quality_monitor
 * @description 清洗指标监控器，通过 Prometheus 暴露删行数、分类数和运行耗时
 * @architecture 分层架构 - 监控层
 * @documentReference DESIGN.md
 * @stateFlow 清洗完成 -> 记录指标 -> /metrics 拉取
 * @rules nil 监控器的所有方法均为空操作
 * @dependencies github.com/prometheus/client_golang
 * @refs cleanser.go
 */

package data_quality

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// QualityMonitor 清洗指标监控器
type QualityMonitor struct {
	rowsDropped       prometheus.Counter
	columnsClassified *prometheus.CounterVec
	runs              *prometheus.CounterVec
	duration          prometheus.Histogram
}

// NewQualityMonitor 创建监控器并注册指标
func NewQualityMonitor(reg prometheus.Registerer) (*QualityMonitor, error) {
	m := &QualityMonitor{
		// 列名来自请求，不作为标签，明细见 DropRecord 和日志
		rowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "datacleanse",
			Name:      "rows_dropped_total",
			Help:      "Rows removed because of missing values.",
		}),
		columnsClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datacleanse",
			Name:      "columns_classified_total",
			Help:      "Columns with missing values, by classification.",
		}, []string{"category"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "datacleanse",
			Name:      "clean_runs_total",
			Help:      "Cleaning runs, by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "datacleanse",
			Name:      "clean_duration_seconds",
			Help:      "Duration of cleaning runs.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	for _, c := range []prometheus.Collector{m.rowsDropped, m.columnsClassified, m.runs, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveClassification 记录分类结果
func (m *QualityMonitor) ObserveClassification(c *Classification) {
	if m == nil || c == nil {
		return
	}
	m.columnsClassified.WithLabelValues("replace").Add(float64(len(c.ReplaceCandidates)))
	m.columnsClassified.WithLabelValues("drop").Add(float64(len(c.DropCandidates)))
}

// ObserveDrops 记录删行数量
func (m *QualityMonitor) ObserveDrops(records []DropRecord) {
	if m == nil {
		return
	}
	for _, r := range records {
		m.rowsDropped.Add(float64(r.Dropped))
	}
}

// ObserveRun 记录一次运行结果
func (m *QualityMonitor) ObserveRun(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	m.runs.WithLabelValues(result).Inc()
	m.duration.Observe(elapsed.Seconds())
}
