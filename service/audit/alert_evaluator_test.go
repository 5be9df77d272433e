/*
 * @module service/audit/alert_evaluator_test
 * @description 告警评估器的单元测试：阈值阶梯边界与通知决策
 * @architecture 测试层
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 得分 -> 阶梯比较 -> 级别断言
 * @rules 边界值归入较高一档：得分等于阈值时不触发该档
 * @dependencies testing, stretchr/testify
 */

package audit

import (
	"testing"

	"masterdata-audit-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSeverityLadder 阈值阶梯：严格小于才落档
func TestSeverityLadder(t *testing.T) {
	thresholds := models.AlertThresholdConfig{Critical: 50, Warning: 70, Info: 85}

	tests := []struct {
		score       float64
		severity    string
		shouldAlert bool
	}{
		{0, AlertSeverityCritical, true},
		{49.99, AlertSeverityCritical, true},
		{50, AlertSeverityWarning, true}, // 等于阈值归入较高一档
		{69.99, AlertSeverityWarning, true},
		{70, AlertSeverityInfo, true},
		{84.99, AlertSeverityInfo, true},
		{85, AlertSeverityNormal, false},
		{100, AlertSeverityNormal, false},
	}

	for _, tt := range tests {
		severity, shouldAlert := Severity(tt.score, thresholds)
		assert.Equal(t, tt.severity, severity, "score=%.2f", tt.score)
		assert.Equal(t, tt.shouldAlert, shouldAlert, "score=%.2f", tt.score)
	}
}

// TestEvaluateUsesEntityThresholds 评估器使用实体类型各自的阈值
func TestEvaluateUsesEntityThresholds(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)
	evaluator := NewAlertEvaluator(registry)

	// 机构的info阈值为80：82分对机构正常，对药品仍为info
	decision, err := evaluator.Evaluate(models.EntityTypeFacility, 82)
	require.NoError(t, err)
	assert.Equal(t, AlertSeverityNormal, decision.Severity)
	assert.False(t, decision.ShouldAlert)

	decision, err = evaluator.Evaluate(models.EntityTypeProduct, 82)
	require.NoError(t, err)
	assert.Equal(t, AlertSeverityInfo, decision.Severity)
	assert.True(t, decision.ShouldAlert)

	_, err = evaluator.Evaluate("warehouse", 50)
	assert.ErrorIs(t, err, ErrUnknownEntityType)
}
