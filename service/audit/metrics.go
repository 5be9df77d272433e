/*
 * @module service/audit/metrics
 * @description 审计引擎Prometheus指标，暴露报告生成耗时、快照写入和降级估算次数
 * @architecture 可观测性 - 指标采集
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 指标注册 -> 运行时采集 -> /metrics暴露
 * @rules 维度降级估算必须可观测，便于排查仪表板的隐性误差
 * @dependencies github.com/prometheus/client_golang/prometheus
 * @refs main.go, service/audit/enrichment_service.go
 */

package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// reportGenerationDuration 报告生成耗时
	reportGenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "audit_report_generation_seconds",
		Help:    "质量审计报告生成耗时（秒）",
		Buckets: prometheus.DefBuckets,
	}, []string{"entity_type"})

	// snapshotsSavedTotal 快照写入总数
	snapshotsSavedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_snapshots_saved_total",
		Help: "审计快照写入总数",
	}, []string{"entity_type", "triggered_by"})

	// enrichmentFallbackTotal 维度得分降级为启发式估算的次数
	enrichmentFallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_enrichment_fallback_total",
		Help: "维度得分降级为启发式估算的次数",
	}, []string{"entity_type"})
)
