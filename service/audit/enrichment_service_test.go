/*
 * @module service/audit/enrichment_service_test
 * @description 富化服务的单元与集成测试：维度得分三级降级、Top问题提取、富化视图组装
 * @architecture 测试层
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 快照构造 -> 降级解析 -> 断言
 * @rules 前两级可用时绝不使用启发式估算
 * @dependencies testing, stretchr/testify, masterdata-audit-service/testutil
 */

package audit

import (
	"context"
	"testing"
	"time"

	"masterdata-audit-service/service/models"
	"masterdata-audit-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnrichment(t *testing.T) (*EnrichmentService, *HistoryService, func()) {
	t.Helper()
	tdb := testutil.NewTestDB()
	registry, err := NewRegistry()
	require.NoError(t, err)
	history := NewHistoryService(tdb.DB, registry)
	return NewEnrichmentService(registry, history), history, tdb.Close
}

func floatPtr(v float64) *float64 { return &v }

// TestResolveDimensionsExplicitColumns 第一级：显式维度列齐全时直接使用
func TestResolveDimensionsExplicitColumns(t *testing.T) {
	enrichment, _, cleanup := newTestEnrichment(t)
	defer cleanup()

	snap := &models.QualityAuditSnapshot{
		EntityType:        models.EntityTypeProduct,
		OverallScore:      60,
		CompletenessScore: floatPtr(91),
		ValidityScore:     floatPtr(88),
		ConsistencyScore:  floatPtr(100),
		TimelinessScore:   floatPtr(40),
		// 即使内嵌报告里有不同的值，显式列优先
		FullReport: models.JSONB{
			"scores": map[string]interface{}{"completeness": 1.0, "validity": 1.0, "consistency": 1.0, "timeliness": 1.0},
		},
	}

	dims, estimated := enrichment.resolveDimensions(snap)
	assert.False(t, estimated)
	assert.Equal(t, float64(91), dims.Completeness)
	assert.Equal(t, float64(88), dims.Validity)
	assert.Equal(t, float64(100), dims.Consistency)
	assert.Equal(t, float64(40), dims.Timeliness)
}

// TestResolveDimensionsEmbeddedReport 第二级：维度列缺失但内嵌报告带scores
func TestResolveDimensionsEmbeddedReport(t *testing.T) {
	enrichment, _, cleanup := newTestEnrichment(t)
	defer cleanup()

	snap := &models.QualityAuditSnapshot{
		EntityType:   models.EntityTypeProduct,
		OverallScore: 60,
		FullReport: models.JSONB{
			"scores": map[string]interface{}{
				"completeness": 72.5, "validity": 85.0, "consistency": 90.0, "timeliness": 50.0,
			},
		},
	}

	dims, estimated := enrichment.resolveDimensions(snap)
	assert.False(t, estimated)
	assert.Equal(t, 72.5, dims.Completeness)
	assert.Equal(t, float64(85), dims.Validity)
	assert.Equal(t, float64(90), dims.Consistency)
	assert.Equal(t, float64(50), dims.Timeliness)
}

// TestResolveDimensionsHeuristic 第三级：启发式估算并标记
func TestResolveDimensionsHeuristic(t *testing.T) {
	enrichment, _, cleanup := newTestEnrichment(t)
	defer cleanup()

	snap := &models.QualityAuditSnapshot{
		EntityType:             models.EntityTypeProduct,
		OverallScore:           60,
		CompletenessPercentage: 55,
	}

	dims, estimated := enrichment.resolveDimensions(snap)
	assert.True(t, estimated)
	assert.Equal(t, float64(55), dims.Completeness)
	assert.Equal(t, float64(70), dims.Validity)
	assert.Equal(t, float64(65), dims.Consistency)
	assert.Equal(t, float64(60), dims.Timeliness)
}

// TestResolveDimensionsHeuristicCap 估算值封顶100
func TestResolveDimensionsHeuristicCap(t *testing.T) {
	enrichment, _, cleanup := newTestEnrichment(t)
	defer cleanup()

	snap := &models.QualityAuditSnapshot{
		EntityType:             models.EntityTypeProduct,
		OverallScore:           97,
		CompletenessPercentage: 96,
	}

	dims, estimated := enrichment.resolveDimensions(snap)
	assert.True(t, estimated)
	assert.Equal(t, float64(100), dims.Validity)
	assert.Equal(t, float64(100), dims.Consistency)
}

// TestReconstructIssues 从指标计数重建问题：严重程度降序、同级计数降序
func TestReconstructIssues(t *testing.T) {
	enrichment, _, cleanup := newTestEnrichment(t)
	defer cleanup()

	registry, err := NewRegistry()
	require.NoError(t, err)
	cfg, err := registry.Get(models.EntityTypeProduct)
	require.NoError(t, err)

	snap := &models.QualityAuditSnapshot{
		EntityType:   models.EntityTypeProduct,
		TotalRecords: 100,
		PerMetricCounts: models.JSONB{
			"missingGtin":           float64(30),
			"missingStrength":       float64(10),
			"duplicateGtin":         float64(20),
			"expiringRegistrations": float64(3),
		},
	}

	issues := enrichment.resolveTopIssues(cfg, snap)
	require.Len(t, issues, 4)
	assert.Equal(t, "缺失GTIN", issues[0].Description)
	assert.Equal(t, models.SeverityHigh, issues[0].Severity)
	assert.Equal(t, float64(30), issues[0].Percentage)
	assert.Equal(t, "GTIN重复", issues[1].Description)
	assert.Equal(t, "缺失规格", issues[2].Description)
	assert.Equal(t, models.SeverityMedium, issues[2].Severity)
	assert.Equal(t, models.SeverityLow, issues[3].Severity)

	// 处置文案来自静态映射
	assert.NotEmpty(t, issues[0].Impact)
	assert.NotEmpty(t, issues[0].Action)
}

// TestGetEnrichedAuditDataNoData 尚无快照时返回硬性失败
func TestGetEnrichedAuditDataNoData(t *testing.T) {
	enrichment, _, cleanup := newTestEnrichment(t)
	defer cleanup()

	_, err := enrichment.GetEnrichedAuditData(context.Background(), models.EntityTypeProduct, 30)
	assert.ErrorIs(t, err, ErrNoAuditData)
}

// TestGetEnrichedAuditData 完整视图组装：最新快照、趋势、维度、内嵌Top问题
func TestGetEnrichedAuditData(t *testing.T) {
	enrichment, history, cleanup := newTestEnrichment(t)
	defer cleanup()

	ctx := context.Background()
	_, err := history.SaveSnapshot(ctx, sampleReport(models.EntityTypeProduct, 80, time.Now().AddDate(0, 0, -1)), models.AuditTriggerCron, "")
	require.NoError(t, err)
	latest, err := history.SaveSnapshot(ctx, sampleReport(models.EntityTypeProduct, 87.5, time.Now()), models.AuditTriggerCron, "")
	require.NoError(t, err)

	view, err := enrichment.GetEnrichedAuditData(ctx, models.EntityTypeProduct, 30)
	require.NoError(t, err)

	assert.Equal(t, models.EntityTypeProduct, view.EntityType)
	require.NotNil(t, view.Latest)
	assert.Equal(t, latest.ID, view.Latest.ID)

	// 趋势升序
	require.Len(t, view.Trend.Scores, 2)
	assert.Equal(t, float64(80), view.Trend.Scores[0])
	assert.Equal(t, 87.5, view.Trend.Scores[1])

	// 快照带显式维度列，不发生估算
	assert.False(t, view.DimensionsEstimated)
	assert.Equal(t, float64(90), view.Dimensions.Completeness)

	// 内嵌报告带issues时直接取用并补算占比
	require.NotEmpty(t, view.TopIssues)
	assert.Equal(t, "缺失GTIN", view.TopIssues[0].Description)
	assert.Equal(t, float64(5), view.TopIssues[0].Percentage)
	assert.Equal(t, "联系注册持有人补录GTIN", view.TopIssues[0].Action)

	// 历史走势覆盖两次快照
	require.Len(t, view.History, 2)
	assert.False(t, view.History[0].Estimated)
}
