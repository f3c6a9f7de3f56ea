/*
 * @module service/monitoring/metrics
 * @description Prometheus指标：数据集加载、流水线运行、导出与导出缓存、SSE连接
 * @architecture 分层架构 - 基础设施层
 * @stateFlow 业务调用Observe* -> 更新collector -> /metrics暴露
 * @rules 指标名统一使用sales_dashboard_前缀；标签取值有限，不使用文件名等高基数值
 * @dependencies github.com/prometheus/client_golang
 * @refs service/dashboard, service/export
 */

package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sales_dashboard"

// Metrics 业务指标集合
type Metrics struct {
	DatasetLoads     *prometheus.CounterVec
	DatasetRows      prometheus.Gauge
	ParseErrors      prometheus.Counter
	PipelineRuns     *prometheus.CounterVec
	PipelineDuration prometheus.Histogram
	Exports          *prometheus.CounterVec
	ExportBytes      prometheus.Histogram
	CacheRequests    *prometheus.CounterVec
	SSEConnections   prometheus.Gauge
}

// NewMetrics 在指定Registerer上注册指标；reg为nil时使用默认Registerer
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		DatasetLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "数据集加载次数，按来源与结果区分",
		}, []string{"origin", "result"}),
		DatasetRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "当前数据集行数",
		}),
		ParseErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_parse_errors_total",
			Help:      "加载时被置为缺失值的单元格数",
		}),
		PipelineRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "流水线运行次数，按结果区分",
		}, []string{"outcome"}),
		PipelineDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "流水线运行耗时",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		Exports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "导出次数，按是否命中缓存区分",
		}, []string{"cached"}),
		ExportBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_bytes",
			Help:      "导出文件大小",
			Buckets:   prometheus.ExponentialBuckets(4096, 4, 8),
		}),
		CacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_cache_requests_total",
			Help:      "导出缓存查询次数",
		}, []string{"result"}),
		SSEConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sse_connections",
			Help:      "当前SSE连接数",
		}),
	}
}

// ObserveLoad 记录一次加载；origin为default/upload
func (m *Metrics) ObserveLoad(origin string, rows, parseErrors int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.DatasetLoads.WithLabelValues(origin, "error").Inc()
		return
	}
	m.DatasetLoads.WithLabelValues(origin, "ok").Inc()
	m.DatasetRows.Set(float64(rows))
	m.ParseErrors.Add(float64(parseErrors))
}

// ObservePipeline 记录一次流水线运行；outcome为ok/empty/error
func (m *Metrics) ObservePipeline(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.PipelineRuns.WithLabelValues(outcome).Inc()
	m.PipelineDuration.Observe(elapsed.Seconds())
}

// ObserveExport 记录一次导出
func (m *Metrics) ObserveExport(size int, cached bool) {
	if m == nil {
		return
	}
	label := "false"
	if cached {
		label = "true"
	}
	m.Exports.WithLabelValues(label).Inc()
	m.ExportBytes.Observe(float64(size))
}

// CacheHit 导出缓存命中
func (m *Metrics) CacheHit() {
	if m != nil {
		m.CacheRequests.WithLabelValues("hit").Inc()
	}
}

// CacheMiss 导出缓存未命中
func (m *Metrics) CacheMiss() {
	if m != nil {
		m.CacheRequests.WithLabelValues("miss").Inc()
	}
}

// SSEConnected SSE连接数变化
func (m *Metrics) SSEConnected(delta int) {
	if m != nil {
		m.SSEConnections.Add(float64(delta))
	}
}
