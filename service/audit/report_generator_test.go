/*
 * @module service/audit/report_generator_test
 * @description 报告生成器的单元测试：维度评分、监控指标隔离、时效性与问题建议
 * @architecture 测试层
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 桩记录源注入 -> 报告生成 -> 逐区断言
 * @rules 通过记录源契约注入桩实现，评分结果完全确定
 * @dependencies testing, stretchr/testify
 */

package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"masterdata-audit-service/service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRecordSource 桩记录源，返回固定数据
type stubRecordSource struct {
	records     []Record
	counts      map[string]int64 // 自定义查询字段名 -> 计数
	lastSync    interface{}
	maxOfErr    error
	groupCounts map[string][]ValueCount
}

func (s *stubRecordSource) LoadAll(ctx context.Context, entityType string, excludeSynthetic bool) ([]Record, error) {
	return s.records, nil
}

func (s *stubRecordSource) Count(ctx context.Context, entityType string, pred RecordPredicate) (int64, error) {
	return s.counts[pred.Field], nil
}

func (s *stubRecordSource) MaxOf(ctx context.Context, entityType, field string) (interface{}, error) {
	if s.maxOfErr != nil {
		return nil, s.maxOfErr
	}
	return s.lastSync, nil
}

func (s *stubRecordSource) GroupCount(ctx context.Context, entityType, field string, filter *DistributionFilter) ([]ValueCount, error) {
	return s.groupCounts[field], nil
}

// completeProductRecord 构造一条全字段完整的药品记录
func completeProductRecord() Record {
	return Record{
		"gtin":                "06291041500213",
		"generic_name":        "Paracetamol",
		"brand_name":          "Panado",
		"brand_display_name":  "Panado 500mg",
		"strength":            "500mg",
		"dosage_form":         "Tablet",
		"manufacturer":        "Acme Pharma Ltd",
		"manufacturer_id":     int64(42),
		"category":            "Analgesic",
		"pack_sizes":          `["10","30"]`,
		"registration_expiry": time.Now().AddDate(1, 0, 0),
	}
}

// completePremiseRecord 构造一条全字段完整的许可场所记录
func completePremiseRecord(licenseNumber string) Record {
	return Record{
		"license_number": licenseNumber,
		"name":           "Kabwata Pharmacy",
		"district":       "Lusaka",
		"owner_name":     "J. Banda",
		"latitude":       -15.4,
		"longitude":      28.3,
		"premise_type":   "Retail Pharmacy",
		"license_expiry": time.Now().AddDate(0, 0, 45),
		"retail":         true,
	}
}

func newTestGenerator(t *testing.T, source RecordSource) *ReportGenerator {
	t.Helper()
	registry, err := NewRegistry()
	require.NoError(t, err)
	return NewReportGenerator(registry, source)
}

// TestGenerateReportEmptyDataset 空数据集返回零分报告而不是错误
func TestGenerateReportEmptyDataset(t *testing.T) {
	source := &stubRecordSource{}
	generator := newTestGenerator(t, source)

	report, err := generator.GenerateReport(context.Background(), models.EntityTypeProduct)
	require.NoError(t, err)

	assert.Equal(t, int64(0), report.Overview.TotalRecords)
	assert.Equal(t, float64(0), report.Overview.Score)
	assert.Equal(t, int64(0), report.Completeness["completeRecords"])
	assert.Equal(t, float64(0), report.Completeness["completenessPercentage"])
	require.Len(t, report.Recommendations, 1)
	assert.Contains(t, report.Recommendations[0], "数据集为空")
}

// TestGenerateReportProduct 两条药品记录，其中一条缺GTIN和通用名
func TestGenerateReportProduct(t *testing.T) {
	incomplete := completeProductRecord()
	incomplete["gtin"] = ""
	incomplete["generic_name"] = nil

	source := &stubRecordSource{
		records:  []Record{completeProductRecord(), incomplete},
		lastSync: time.Now().Add(-time.Hour),
		groupCounts: map[string][]ValueCount{
			"category":          {{Value: "Analgesic", Count: 2}},
			"prescription_only": {{Value: false, Count: 2}},
		},
	}
	generator := newTestGenerator(t, source)

	report, err := generator.GenerateReport(context.Background(), models.EntityTypeProduct)
	require.NoError(t, err)

	assert.Equal(t, int64(2), report.Overview.TotalRecords)
	assert.Equal(t, int64(1), report.Completeness["missingGtin"])
	assert.Equal(t, int64(1), report.Completeness["missingGenericName"])
	assert.Equal(t, int64(0), report.Completeness["missingStrength"])

	// 严格完整率：缺GTIN的记录整条不可用
	assert.Equal(t, int64(1), report.Completeness["completeRecords"])
	assert.Equal(t, float64(50), report.Completeness["completenessPercentage"])

	// 缺失值不参与重复与格式检查
	assert.Equal(t, int64(0), report.Validity["duplicateGtin"])
	assert.Equal(t, int64(0), report.Validity["invalidGtinFormat"])
	assert.Equal(t, int64(0), report.Validity["expiredRegistrations"])

	// 字段级完整分与严格完整率是两个口径
	// (0.5*3 + 0.5*3 + 2 + 2 + 2) / 12 * 100 = 75
	assert.Equal(t, float64(75), report.Scores.Completeness)
	assert.Equal(t, float64(100), report.Scores.Validity)
	assert.Equal(t, float64(100), report.Scores.Consistency)
	assert.Equal(t, float64(100), report.Scores.Timeliness)

	// 总分使用严格完整率：50*0.4 + 100*0.3 + 100*0.1 + 100*0.2 = 80
	assert.Equal(t, float64(80), report.Overview.Score)
	require.NotNil(t, report.Overview.LastSyncDate)

	// 分布占比在引擎内计算
	buckets, ok := report.Distribution["byCategory"].([]models.DistributionBucket)
	require.True(t, ok)
	require.Len(t, buckets, 1)
	assert.Equal(t, "Analgesic", buckets[0].Value)
	assert.Equal(t, float64(100), buckets[0].Percentage)

	split, ok := report.Distribution["prescriptionOnly"].(models.BooleanSplit)
	require.True(t, ok)
	assert.Equal(t, int64(2), split.FalseCount)

	// 缺失GTIN与通用名均为critical指标，问题级别为high
	var highCompleteness int
	for _, issue := range report.Issues {
		if issue.Category == "completeness" && issue.Severity == models.SeverityHigh {
			highCompleteness++
		}
	}
	assert.Equal(t, 2, highCompleteness)
}

// TestGenerateReportMonitoringNeverScored 监控指标出现在monitoring区且不影响总分
func TestGenerateReportMonitoringNeverScored(t *testing.T) {
	base := &stubRecordSource{
		records:  []Record{completeProductRecord(), completeProductRecord()},
		lastSync: time.Now().Add(-time.Hour),
	}
	generator := newTestGenerator(t, base)
	clean, err := generator.GenerateReport(context.Background(), models.EntityTypeProduct)
	require.NoError(t, err)

	// 全部注册证都临近到期
	withMonitoring := &stubRecordSource{
		records:  base.records,
		lastSync: base.lastSync,
		counts:   map[string]int64{"registration_expiry": 2},
	}
	generator = newTestGenerator(t, withMonitoring)
	report, err := generator.GenerateReport(context.Background(), models.EntityTypeProduct)
	require.NoError(t, err)

	assert.Equal(t, int64(2), report.Monitoring["expiringRegistrations"])
	assert.NotContains(t, report.Validity, "expiringRegistrations")
	// 监控计数绝不压低质量分
	assert.Equal(t, clean.Overview.Score, report.Overview.Score)

	// 但会以low级别提示
	var found bool
	for _, issue := range report.Issues {
		if issue.Category == "monitoring" {
			found = true
			assert.Equal(t, models.SeverityLow, issue.Severity)
			assert.Equal(t, int64(2), issue.Count)
		}
	}
	assert.True(t, found)
}

// TestGenerateReportPremiseAnnualRenewal 年审场景：全部许可证同日临近到期
// 只产出low级监控提示，记录本身齐全时质量分不受影响
func TestGenerateReportPremiseAnnualRenewal(t *testing.T) {
	source := &stubRecordSource{
		records: []Record{
			completePremiseRecord("HP-2024-0001"),
			completePremiseRecord("HP-2024-0002"),
		},
		lastSync: time.Now().Add(-time.Hour),
		counts:   map[string]int64{"license_expiry": 2},
		groupCounts: map[string][]ValueCount{
			"district": {{Value: "Lusaka", Count: 2}},
		},
	}
	generator := newTestGenerator(t, source)

	report, err := generator.GenerateReport(context.Background(), models.EntityTypePremise)
	require.NoError(t, err)

	// 临近到期数等于总量，但只进monitoring区
	assert.Equal(t, report.Overview.TotalRecords, report.Monitoring["expiringSoon"])
	assert.NotContains(t, report.Validity, "expiringSoon")
	assert.Equal(t, int64(0), report.Validity["expiredLicenses"])
	assert.Greater(t, report.Overview.Score, float64(90))

	var monitoring int
	for _, issue := range report.Issues {
		if issue.Category == "monitoring" {
			monitoring++
			assert.Equal(t, models.SeverityLow, issue.Severity)
			assert.Equal(t, int64(2), issue.Count)
		}
	}
	assert.Equal(t, 1, monitoring)

	// 无数据的分类分布仍出现在结果中，桶为空
	buckets, ok := report.Distribution["byType"].([]models.DistributionBucket)
	require.True(t, ok)
	assert.Empty(t, buckets)
}

// TestGenerateReportSyncProbeFailure 同步时间探测查询失败必须整体失败，不得降级出报告
func TestGenerateReportSyncProbeFailure(t *testing.T) {
	sourceErr := errors.New("connection reset by peer")
	source := &stubRecordSource{
		records:  []Record{completeProductRecord()},
		maxOfErr: sourceErr,
	}
	generator := newTestGenerator(t, source)

	report, err := generator.GenerateReport(context.Background(), models.EntityTypeProduct)
	assert.Nil(t, report)
	require.Error(t, err)
	assert.ErrorIs(t, err, sourceErr)
}

// TestGenerateReportNoSyncTimestamp 无法确定同步时间时时效性得0并产出high级问题
func TestGenerateReportNoSyncTimestamp(t *testing.T) {
	source := &stubRecordSource{
		records: []Record{completeProductRecord()},
	}
	generator := newTestGenerator(t, source)

	report, err := generator.GenerateReport(context.Background(), models.EntityTypeProduct)
	require.NoError(t, err)

	assert.Nil(t, report.Overview.LastSyncDate)
	assert.Equal(t, float64(0), report.Scores.Timeliness)

	var found bool
	for _, issue := range report.Issues {
		if issue.Category == "timeliness" {
			found = true
			assert.Equal(t, models.SeverityHigh, issue.Severity)
			assert.Equal(t, "无法确定最近一次同步时间", issue.Description)
		}
	}
	assert.True(t, found)
	require.NotEmpty(t, report.Recommendations)
	assert.Contains(t, report.Recommendations[0], "未找到同步时间记录")

	// 没有任何分类数据时分布键仍然存在，桶为空
	buckets, ok := report.Distribution["byCategory"].([]models.DistributionBucket)
	require.True(t, ok)
	assert.Empty(t, buckets)
}

// TestGenerateReportUnknownEntityType 未注册实体类型直接返回分类错误
func TestGenerateReportUnknownEntityType(t *testing.T) {
	generator := newTestGenerator(t, &stubRecordSource{})

	_, err := generator.GenerateReport(context.Background(), "warehouse")
	assert.ErrorIs(t, err, ErrUnknownEntityType)
}
