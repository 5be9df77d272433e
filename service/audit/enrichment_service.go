/*
 * @module service/audit/enrichment_service
 * @description 富化服务：读取最新及历史快照，重建维度得分（三级降级）、提取TopN问题、组装趋势序列
 * @architecture 业务服务层 - 仪表板数据组装
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 最新快照 -> 趋势窗口 -> 维度得分三级降级 -> Top问题 -> 历史走势
 * @rules 三级降级顺序固定：显式维度列 -> 内嵌报告scores -> 启发式估算；
 *        前两级可用时绝不使用估算，估算的发生必须可观测
 * @dependencies masterdata-audit-service/service/models, github.com/spf13/cast
 * @refs service/audit/history_service.go, service/audit/metrics.go
 */

package audit

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/spf13/cast"

	"masterdata-audit-service/service/models"
)

// 重建问题时Top问题的数量与历史走势窗口
const (
	topIssueLimit       = 5
	sparklineWindowSize = 20
)

// EnrichedIssue 带影响说明与处理建议的问题条目
type EnrichedIssue struct {
	Severity    string  `json:"severity"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Count       int64   `json:"count"`
	Percentage  float64 `json:"percentage"`
	Impact      string  `json:"impact"`
	Action      string  `json:"action"`
}

// TrendSeries 趋势序列，日期与得分按时间升序一一对应
type TrendSeries struct {
	Dates  []string  `json:"dates"`
	Scores []float64 `json:"scores"`
}

// SnapshotDimensions 单次快照的维度走势点
type SnapshotDimensions struct {
	SnapshotID string                 `json:"snapshot_id"`
	AuditedAt  time.Time              `json:"audited_at"`
	Score      float64                `json:"score"`
	Dimensions models.DimensionScores `json:"dimensions"`
	Estimated  bool                   `json:"estimated"`
}

// EnrichedView 仪表板富化视图
type EnrichedView struct {
	EntityType          string                       `json:"entity_type"`
	Latest              *models.QualityAuditSnapshot `json:"latest"`
	Trend               TrendSeries                  `json:"trend"`
	Dimensions          models.DimensionScores       `json:"dimensions"`
	DimensionsEstimated bool                         `json:"dimensions_estimated"`
	TopIssues           []EnrichedIssue              `json:"top_issues"`
	History             []SnapshotDimensions         `json:"history"`
}

// 指标标签 -> 影响/处理建议静态文案
var issueGuidance = map[string][2]string{
	"缺失GTIN":    {"药品无法参与条码核验与追溯", "联系注册持有人补录GTIN"},
	"缺失通用名":     {"影响处方匹配与临床检索", "从注册档案补全通用名"},
	"GTIN重复":    {"同一条码指向多个药品，核验结果不可信", "排查重复来源并合并记录"},
	"GTIN格式错误":  {"条码扫描将匹配失败", "按GS1规范修正GTIN"},
	"注册证已过期":    {"过期注册药品不应继续流通", "核实注册状态并更新或下架"},
	"缺失许可证号":    {"场所合规状态无法核验", "从发证记录补录许可证号"},
	"许可证号重复":    {"多个场所共用同一许可证号", "排查录入错误并更正"},
	"坐标越界":      {"地图展示与辖区统计失真", "重新采集场所地理坐标"},
	"许可证已过期":    {"场所处于未续期经营状态", "核实续期状态并更新到期日"},
	"缺失机构编码":    {"机构无法与国家主索引对齐", "从机构注册库补录编码"},
	"机构编码重复":    {"机构主索引映射冲突", "排查重复并保留权威记录"},
	"机构编码格式错误":  {"编码无法通过主索引校验", "按13位位置编码规范修正"},
	"缺失注册号":     {"人员执业资格无法核验", "从注册机构补录注册号"},
	"注册号重复":     {"多名人员共用同一注册号", "排查录入错误并更正"},
	"执业证书已过期":   {"人员可能处于无证执业状态", "核实续证状态并更新到期日"},
	"在册但无证书到期日": {"无法判断证书有效期", "补录证书到期日"},
}

// EnrichmentService 审计数据富化服务
type EnrichmentService struct {
	registry *Registry
	history  *HistoryService
}

// NewEnrichmentService 创建富化服务
func NewEnrichmentService(registry *Registry, history *HistoryService) *EnrichmentService {
	return &EnrichmentService{registry: registry, history: history}
}

// GetEnrichedAuditData 组装某实体类型的仪表板富化视图
// 尚无任何快照时返回ErrNoAuditData，这是硬性失败，与零记录的有效报告不同
func (s *EnrichmentService) GetEnrichedAuditData(ctx context.Context, entityType string, days int) (*EnrichedView, error) {
	cfg, err := s.registry.Get(entityType)
	if err != nil {
		return nil, err
	}

	latest, err := s.history.Latest(ctx, entityType)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoAuditData, entityType)
	}

	trendPoints, err := s.history.GetScoreTrend(ctx, entityType, days)
	if err != nil {
		return nil, err
	}
	trend := TrendSeries{
		Dates:  make([]string, len(trendPoints)),
		Scores: make([]float64, len(trendPoints)),
	}
	for i, p := range trendPoints {
		trend.Dates[i] = p.Date
		trend.Scores[i] = p.Score
	}

	dimensions, estimated := s.resolveDimensions(latest)

	view := &EnrichedView{
		EntityType:          entityType,
		Latest:              latest,
		Trend:               trend,
		Dimensions:          dimensions,
		DimensionsEstimated: estimated,
		TopIssues:           s.resolveTopIssues(cfg, latest),
	}

	// 最近20次快照的维度走势，供仪表板绘制迷你趋势图
	recent, _, err := s.history.GetHistory(ctx, entityType, 1, sparklineWindowSize)
	if err != nil {
		return nil, err
	}
	view.History = make([]SnapshotDimensions, len(recent))
	for i := range recent {
		snap := &recent[i]
		dims, est := s.resolveDimensions(snap)
		view.History[i] = SnapshotDimensions{
			SnapshotID: snap.ID,
			AuditedAt:  snap.AuditedAt,
			Score:      snap.OverallScore,
			Dimensions: dims,
			Estimated:  est,
		}
	}

	return view, nil
}

// resolveDimensions 三级降级重建维度得分，命中第一个可用层级即停止：
// 1. 快照上的显式维度列；2. 内嵌完整报告中的scores；3. 启发式估算
func (s *EnrichmentService) resolveDimensions(snap *models.QualityAuditSnapshot) (models.DimensionScores, bool) {
	if snap.CompletenessScore != nil && snap.ValidityScore != nil &&
		snap.ConsistencyScore != nil && snap.TimelinessScore != nil {
		return models.DimensionScores{
			Completeness: *snap.CompletenessScore,
			Validity:     *snap.ValidityScore,
			Consistency:  *snap.ConsistencyScore,
			Timeliness:   *snap.TimelinessScore,
		}, false
	}

	if raw, ok := snap.FullReport["scores"]; ok {
		if scores, ok := raw.(map[string]interface{}); ok {
			return models.DimensionScores{
				Completeness: cast.ToFloat64(scores["completeness"]),
				Validity:     cast.ToFloat64(scores["validity"]),
				Consistency:  cast.ToFloat64(scores["consistency"]),
				Timeliness:   cast.ToFloat64(scores["timeliness"]),
			}, false
		}
	}

	// 启发式估算：仅在前两级都不可用时使用，是有损近似，必须可观测
	overall := snap.OverallScore
	enrichmentFallbackTotal.WithLabelValues(snap.EntityType).Inc()
	slog.Warn("维度得分降级为启发式估算",
		"entity_type", snap.EntityType,
		"snapshot_id", snap.ID)
	return models.DimensionScores{
		Completeness: snap.CompletenessPercentage,
		Validity:     math.Min(100, overall+10),
		Consistency:  math.Min(100, overall+5),
		Timeliness:   overall,
	}, true
}

// resolveTopIssues 提取Top问题
// 内嵌报告带issues时直接取前5条并补算占比；否则从指标计数重建
func (s *EnrichmentService) resolveTopIssues(cfg *EntityAuditConfig, snap *models.QualityAuditSnapshot) []EnrichedIssue {
	if raw, ok := snap.FullReport["issues"]; ok {
		if list, ok := raw.([]interface{}); ok && len(list) > 0 {
			return s.annotateEmbeddedIssues(list, snap.TotalRecords)
		}
	}
	return s.reconstructIssues(cfg, snap)
}

// annotateEmbeddedIssues 为内嵌报告的问题条目补充占比与处置文案
func (s *EnrichmentService) annotateEmbeddedIssues(list []interface{}, totalRecords int64) []EnrichedIssue {
	issues := make([]EnrichedIssue, 0, topIssueLimit)
	for _, raw := range list {
		if len(issues) >= topIssueLimit {
			break
		}
		item, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		count := cast.ToInt64(item["count"])
		description := cast.ToString(item["description"])
		impact, action := guidanceFor(description)
		issues = append(issues, EnrichedIssue{
			Severity:    cast.ToString(item["severity"]),
			Category:    cast.ToString(item["category"]),
			Description: description,
			Count:       count,
			Percentage:  roundPercentage(count, totalRecords),
			Impact:      impact,
			Action:      action,
		})
	}
	return issues
}

// reconstructIssues 从存储的指标计数重建问题列表
// 严重程度规则与报告生成时一致，按严重程度降序、计数降序取前5
func (s *EnrichmentService) reconstructIssues(cfg *EntityAuditConfig, snap *models.QualityAuditSnapshot) []EnrichedIssue {
	var issues []EnrichedIssue

	add := func(label, category, severity string, count int64) {
		if count <= 0 {
			return
		}
		impact, action := guidanceFor(label)
		issues = append(issues, EnrichedIssue{
			Severity:    severity,
			Category:    category,
			Description: label,
			Count:       count,
			Percentage:  roundPercentage(count, snap.TotalRecords),
			Impact:      impact,
			Action:      action,
		})
	}

	for _, m := range cfg.CompletenessMetrics {
		severity := models.SeverityMedium
		if m.Critical {
			severity = models.SeverityHigh
		}
		add(m.Label, "completeness", severity, cast.ToInt64(snap.PerMetricCounts[m.Key]))
	}
	for _, m := range cfg.ValidityMetrics {
		add(m.Label, "validity", models.SeverityHigh, cast.ToInt64(snap.PerMetricCounts[m.Key]))
	}
	for _, q := range cfg.CustomValidityQueries {
		add(q.Label, "validity", models.SeverityHigh, cast.ToInt64(snap.PerMetricCounts[q.Key]))
	}
	for _, m := range cfg.ConsistencyMetrics {
		add(m.Label, "consistency", models.SeverityMedium, cast.ToInt64(snap.PerMetricCounts[m.Key]))
	}
	for _, q := range cfg.MonitoringMetrics {
		add(q.Label, "monitoring", models.SeverityLow, cast.ToInt64(snap.PerMetricCounts[q.Key]))
	}

	sort.SliceStable(issues, func(i, j int) bool {
		ri, rj := severityRank(issues[i].Severity), severityRank(issues[j].Severity)
		if ri != rj {
			return ri > rj
		}
		return issues[i].Count > issues[j].Count
	})

	if len(issues) > topIssueLimit {
		issues = issues[:topIssueLimit]
	}
	return issues
}

// guidanceFor 查找影响/处置文案，未知标签使用通用文案
func guidanceFor(label string) (impact, action string) {
	if g, ok := issueGuidance[label]; ok {
		return g[0], g[1]
	}
	return "可能影响下游使用方的数据可信度", "请核查并修正相关记录"
}

// severityRank 严重程度排序权重
func severityRank(severity string) int {
	switch severity {
	case models.SeverityHigh:
		return 3
	case models.SeverityMedium:
		return 2
	case models.SeverityLow:
		return 1
	}
	return 0
}
