/*
 * @module service/audit/report_generator
 * @description 质量报告生成器：加载记录 -> 维度指标计算 -> 加权总分 -> 问题与建议
 * @architecture 业务服务层 - 单次调用全量重算，无中间检查点
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 配置解析 -> 记录加载 -> 完整性/有效性/一致性计算 -> 时效性 -> 分布 -> 总分 -> 问题/建议
 * @rules 总分使用严格的记录级完整率而非字段加权完整分：缺任何一个关键字段的记录视为不可用；
 *        任何加载或查询失败直接向调用方透传，不返回半成品报告
 * @dependencies masterdata-audit-service/service/models, github.com/spf13/cast
 * @refs service/audit/extractors.go, service/audit/distribution.go
 */

package audit

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cast"

	"masterdata-audit-service/service/models"
)

// ReportGenerator 质量报告生成器
type ReportGenerator struct {
	registry *Registry
	source   RecordSource
}

// NewReportGenerator 创建报告生成器
func NewReportGenerator(registry *Registry, source RecordSource) *ReportGenerator {
	return &ReportGenerator{registry: registry, source: source}
}

// GenerateReport 生成某实体类型的质量审计报告
// 报告是瞬态结果，调用方决定是否落库为快照
func (g *ReportGenerator) GenerateReport(ctx context.Context, entityType string) (*models.QualityReport, error) {
	cfg, err := g.registry.Get(entityType)
	if err != nil {
		return nil, err
	}

	timer := prometheus.NewTimer(reportGenerationDuration.WithLabelValues(entityType))
	defer timer.ObserveDuration()

	now := time.Now()

	records, err := g.source.LoadAll(ctx, entityType, true)
	if err != nil {
		return nil, err
	}
	total := int64(len(records))

	report := &models.QualityReport{
		EntityType:      entityType,
		Completeness:    make(map[string]interface{}),
		Validity:        make(map[string]int64),
		Monitoring:      make(map[string]int64),
		Distribution:    make(map[string]interface{}),
		Issues:          make([]models.QualityIssue, 0),
		Recommendations: make([]string, 0),
	}
	report.Overview = models.ReportOverview{
		TotalRecords: total,
		GeneratedAt:  now,
	}

	// 空数据集返回零分报告，这是有效结果而不是错误
	if total == 0 {
		report.Completeness["completeRecords"] = int64(0)
		report.Completeness["completenessPercentage"] = float64(0)
		report.Recommendations = append(report.Recommendations, "数据集为空，请先执行初始同步导入数据")
		return report, nil
	}

	// 字段级完整性：按权重累计每个指标的完整比例
	var completenessWeighted, completenessWeightSum float64
	completenessCounts := make(map[string]int64, len(cfg.CompletenessMetrics))
	for _, metric := range cfg.CompletenessMetrics {
		missing := countMissing(records, metric)
		completenessCounts[metric.Key] = missing
		report.Completeness[metric.Key] = missing
		completenessWeighted += float64(total-missing) / float64(total) * metric.Weight
		completenessWeightSum += metric.Weight
	}
	completenessScore := normalizeScore(completenessWeighted, completenessWeightSum)

	// 严格完整记录：所有必填字段全部满足才计入
	var completeRecords int64
	for _, rec := range records {
		if isCompleteRecord(rec, cfg.CompleteRecordsFields) {
			completeRecords++
		}
	}
	completenessPercentage := round2(float64(completeRecords) / float64(total) * 100)
	report.Completeness["completeRecords"] = completeRecords
	report.Completeness["completenessPercentage"] = completenessPercentage

	// 有效性指标
	var validityWeighted, validityWeightSum float64
	for _, metric := range cfg.ValidityMetrics {
		invalid := extractValidityCount(records, metric, cfg.DomainValidation, now)
		report.Validity[metric.Key] = invalid
		validityWeighted += float64(total-invalid) / float64(total) * metric.Weight
		validityWeightSum += metric.Weight
	}
	validityScore := normalizeScore(validityWeighted, validityWeightSum)

	// 一致性指标
	var consistencyWeighted, consistencyWeightSum float64
	consistencyCounts := make(map[string]int64, len(cfg.ConsistencyMetrics))
	for _, metric := range cfg.ConsistencyMetrics {
		inconsistent := countInconsistent(records, metric.Field)
		consistencyCounts[metric.Key] = inconsistent
		report.Validity[metric.Key] = inconsistent
		consistencyWeighted += float64(total-inconsistent) / float64(total) * metric.Weight
		consistencyWeightSum += metric.Weight
	}
	consistencyScore := normalizeScore(consistencyWeighted, consistencyWeightSum)

	// 自定义有效性查询与监控指标在记录源各自执行聚合，互相独立、只读，
	// 这里并发执行；监控结果只做运营观察，绝不进入加权评分
	if err := g.runCustomQueries(ctx, cfg, report); err != nil {
		return nil, err
	}

	// 时效性：依序探测同步时间候选字段，第一个有值的字段生效
	lastSync, err := g.resolveLastSync(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var hoursSinceSync float64
	var thresholdsExceeded int
	timelinessScore := float64(0)
	if lastSync != nil {
		report.Overview.LastSyncDate = lastSync
		hoursSinceSync = now.Sub(*lastSync).Hours()
		timelinessScore, thresholdsExceeded = applyTimelinessThresholds(cfg.TimelinessThresholds, hoursSinceSync)
	} else {
		thresholdsExceeded = len(cfg.TimelinessThresholds)
	}

	// 分布统计
	distribution, err := computeDistributions(ctx, g.source, entityType, cfg.DistributionQueries, total)
	if err != nil {
		return nil, err
	}
	report.Distribution = distribution

	report.Scores = models.DimensionScores{
		Completeness: completenessScore,
		Validity:     validityScore,
		Consistency:  consistencyScore,
		Timeliness:   timelinessScore,
	}

	// 总分使用严格的记录级完整率：缺任何一个关键字段的记录视为不可用，
	// 比字段级平均更苛刻，这是有意的设计
	w := cfg.ScoringWeights
	overall := completenessPercentage*w.Completeness +
		validityScore*w.Validity +
		consistencyScore*w.Consistency +
		timelinessScore*w.Timeliness
	report.Overview.Score = round2(overall)

	g.buildIssues(cfg, report, completenessCounts, thresholdsExceeded, lastSync)
	g.buildRecommendations(cfg, report, completenessCounts, thresholdsExceeded, hoursSinceSync, lastSync, total)

	slog.Info("质量审计报告生成完成",
		"entity_type", entityType,
		"total_records", total,
		"score", report.Overview.Score,
		"issues", len(report.Issues))

	return report, nil
}

// runCustomQueries 并发执行自定义有效性查询与监控指标
func (g *ReportGenerator) runCustomQueries(ctx context.Context, cfg *EntityAuditConfig, report *models.QualityReport) error {
	type queryResult struct {
		key        string
		count      int64
		monitoring bool
		err        error
	}

	queries := make([]CustomCountQuery, 0, len(cfg.CustomValidityQueries)+len(cfg.MonitoringMetrics))
	monitoringFrom := len(cfg.CustomValidityQueries)
	queries = append(queries, cfg.CustomValidityQueries...)
	queries = append(queries, cfg.MonitoringMetrics...)
	if len(queries) == 0 {
		return nil
	}

	results := make([]queryResult, len(queries))
	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q CustomCountQuery) {
			defer wg.Done()
			count, err := g.source.Count(ctx, cfg.EntityType, q.Predicate)
			results[i] = queryResult{key: q.Key, count: count, monitoring: i >= monitoringFrom, err: err}
		}(i, q)
	}
	wg.Wait()

	for _, res := range results {
		if res.err != nil {
			return fmt.Errorf("自定义查询 %s 执行失败: %w", res.key, res.err)
		}
		if res.monitoring {
			report.Monitoring[res.key] = res.count
		} else {
			report.Validity[res.key] = res.count
		}
	}
	return nil
}

// resolveLastSync 依序探测同步时间候选字段，返回第一个可解析的最大值
// 候选字段由配置显式列出，查询失败属于上游读取故障，直接向调用方透传；
// 只有字段为空或取回的值无法解析为时间时才继续探测下一个候选
func (g *ReportGenerator) resolveLastSync(ctx context.Context, cfg *EntityAuditConfig) (*time.Time, error) {
	for _, field := range cfg.LastSyncFields {
		value, err := g.source.MaxOf(ctx, cfg.EntityType, field)
		if err != nil {
			return nil, fmt.Errorf("同步时间字段 %s 查询失败: %w", field, err)
		}
		if value == nil {
			continue
		}
		t, err := cast.ToTimeE(value)
		if err != nil || t.IsZero() {
			continue
		}
		return &t, nil
	}
	return nil, nil
}

// applyTimelinessThresholds 应用升序阈值表
// 第一个hours大于同步间隔的档位生效；全部超出则得0分
func applyTimelinessThresholds(thresholds []TimelinessThreshold, hoursSinceSync float64) (score float64, exceeded int) {
	for _, t := range thresholds {
		if hoursSinceSync < t.Hours {
			return t.Score, exceeded
		}
		exceeded++
	}
	return 0, exceeded
}

// buildIssues 汇总问题列表
// 完整性指标：critical为high，其余medium；有效性（含自定义）一律high；
// 一致性medium；监控指标low；时效性按超出的阈值档数分级
func (g *ReportGenerator) buildIssues(cfg *EntityAuditConfig, report *models.QualityReport, completenessCounts map[string]int64, thresholdsExceeded int, lastSync *time.Time) {
	for _, metric := range cfg.CompletenessMetrics {
		count := completenessCounts[metric.Key]
		if count == 0 {
			continue
		}
		severity := models.SeverityMedium
		if metric.Critical {
			severity = models.SeverityHigh
		}
		report.Issues = append(report.Issues, models.QualityIssue{
			Severity:    severity,
			Category:    "completeness",
			Description: metric.Label,
			Count:       count,
		})
	}

	for _, metric := range cfg.ValidityMetrics {
		if count := report.Validity[metric.Key]; count > 0 {
			report.Issues = append(report.Issues, models.QualityIssue{
				Severity:    models.SeverityHigh,
				Category:    "validity",
				Description: metric.Label,
				Count:       count,
			})
		}
	}
	for _, q := range cfg.CustomValidityQueries {
		if count := report.Validity[q.Key]; count > 0 {
			report.Issues = append(report.Issues, models.QualityIssue{
				Severity:    models.SeverityHigh,
				Category:    "validity",
				Description: q.Label,
				Count:       count,
			})
		}
	}

	for _, metric := range cfg.ConsistencyMetrics {
		if count := report.Validity[metric.Key]; count > 0 {
			report.Issues = append(report.Issues, models.QualityIssue{
				Severity:    models.SeverityMedium,
				Category:    "consistency",
				Description: metric.Label,
				Count:       count,
			})
		}
	}

	for _, q := range cfg.MonitoringMetrics {
		if count := report.Monitoring[q.Key]; count > 0 {
			report.Issues = append(report.Issues, models.QualityIssue{
				Severity:    models.SeverityLow,
				Category:    "monitoring",
				Description: q.Label,
				Count:       count,
			})
		}
	}

	if thresholdsExceeded > 0 {
		severity := models.SeverityLow
		switch {
		case thresholdsExceeded >= 3:
			severity = models.SeverityHigh
		case thresholdsExceeded == 2:
			severity = models.SeverityMedium
		}
		description := "数据同步延迟超出预期"
		if lastSync == nil {
			description = "无法确定最近一次同步时间"
			severity = models.SeverityHigh
		}
		report.Issues = append(report.Issues, models.QualityIssue{
			Severity:    severity,
			Category:    "timeliness",
			Description: description,
			Count:       int64(thresholdsExceeded),
		})
	}
}

// buildRecommendations 生成改进建议，顺序固定：时效性 -> 完整性 -> 有效性
func (g *ReportGenerator) buildRecommendations(cfg *EntityAuditConfig, report *models.QualityReport, completenessCounts map[string]int64, thresholdsExceeded int, hoursSinceSync float64, lastSync *time.Time, total int64) {
	if lastSync == nil {
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("未找到同步时间记录（预期同步周期 %.0f 小时），请检查同步任务是否已配置", cfg.SyncCadenceHours))
	} else if thresholdsExceeded > 0 {
		days := hoursSinceSync / 24
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("数据已 %.1f 天未同步，预期同步周期为 %.0f 小时，请检查同步任务", days, cfg.SyncCadenceHours))
	}

	// 关键完整性指标缺失超过总量10%时升级为严重提示
	for _, metric := range cfg.CompletenessMetrics {
		count := completenessCounts[metric.Key]
		if count == 0 {
			continue
		}
		if metric.Critical && float64(count) > float64(total)*0.1 {
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("[严重] %s：%d 条记录（超过总量10%%），请优先补全", metric.Label, count))
		} else if metric.Critical {
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("%s：%d 条记录，请安排补全", metric.Label, count))
		}
	}

	for _, metric := range cfg.ValidityMetrics {
		if count := report.Validity[metric.Key]; count > 0 {
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("%s：%d 条记录，请核对上游数据源", metric.Label, count))
		}
	}
	for _, q := range cfg.CustomValidityQueries {
		if count := report.Validity[q.Key]; count > 0 {
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("%s：%d 条记录，请核对上游数据源", q.Label, count))
		}
	}
}

// normalizeScore 按权重之和归一化到0-100
func normalizeScore(weighted, weightSum float64) float64 {
	if weightSum == 0 {
		return 100
	}
	return round2(weighted / weightSum * 100)
}

// round2 保留两位小数
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
