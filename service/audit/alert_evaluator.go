/*
 * @module service/audit/alert_evaluator
 * @description 告警评估器：将新计算的质量分与实体类型的阈值比较，决定是否触发通知及其级别
 * @architecture 纯函数 - 无状态，每次快照落库后调用一次
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 质量分 -> 阈值阶梯比较 -> 通知决策
 * @rules 渠道分发由外部协作方负责，这里只产出级别与是否通知的决策
 * @dependencies masterdata-audit-service/service/models
 * @refs service/notification/notifier.go, service/audit/entity_configs.go
 */

package audit

import "masterdata-audit-service/service/models"

// 告警级别
const (
	AlertSeverityCritical = "critical"
	AlertSeverityWarning  = "warning"
	AlertSeverityInfo     = "info"
	AlertSeverityNormal   = "normal"
)

// AlertDecision 告警决策结果
type AlertDecision struct {
	EntityType  string  `json:"entity_type"`
	Score       float64 `json:"score"`
	Severity    string  `json:"severity"`
	ShouldAlert bool    `json:"should_alert"`
	SnapshotID  string  `json:"snapshot_id,omitempty"`
}

// Severity 阈值阶梯比较，得分低于info即应通知
func Severity(score float64, thresholds models.AlertThresholdConfig) (severity string, shouldAlert bool) {
	switch {
	case score < thresholds.Critical:
		return AlertSeverityCritical, true
	case score < thresholds.Warning:
		return AlertSeverityWarning, true
	case score < thresholds.Info:
		return AlertSeverityInfo, true
	default:
		return AlertSeverityNormal, false
	}
}

// AlertEvaluator 按实体类型配置评估告警
type AlertEvaluator struct {
	registry *Registry
}

// NewAlertEvaluator 创建告警评估器
func NewAlertEvaluator(registry *Registry) *AlertEvaluator {
	return &AlertEvaluator{registry: registry}
}

// Evaluate 对某实体类型的质量分做告警决策
func (e *AlertEvaluator) Evaluate(entityType string, score float64) (*AlertDecision, error) {
	cfg, err := e.registry.Get(entityType)
	if err != nil {
		return nil, err
	}
	severity, shouldAlert := Severity(score, cfg.AlertThresholds)
	return &AlertDecision{
		EntityType:  entityType,
		Score:       score,
		Severity:    severity,
		ShouldAlert: shouldAlert,
	}, nil
}
