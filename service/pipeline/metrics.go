/*
 * @module service/pipeline/metrics
 * @description 流水线 Prometheus 指标收集，暴露运行次数、耗时与建议分布
 * @architecture 监控层 - 指标采集
 * @dependencies github.com/prometheus/client_golang
 * @refs main.go (/metrics), service/pipeline/pipeline_service.go
 */

package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logistics_pipeline_runs_total",
			Help: "流水线运行总数，按结果状态分类",
		},
		[]string{"status"},
	)

	runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "logistics_pipeline_run_duration_seconds",
			Help:    "流水线单次运行耗时（秒）",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	recommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logistics_pipeline_recommendations_total",
			Help: "产出的运营建议总数，按动作分类",
		},
		[]string{"action"},
	)

	decisionErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "logistics_pipeline_decision_errors_total",
			Help: "决策求值失败的记录总数",
		},
	)
)

func init() {
	prometheus.MustRegister(runsTotal, runDuration, recommendationsTotal, decisionErrorsTotal)
}
