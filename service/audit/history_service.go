/*
 * @module service/audit/history_service
 * @description 审计快照存储与历史查询：快照追加落库、分页历史、按ID查询、得分趋势
 * @architecture 业务服务层 - 追加写入的审计存储
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 报告落库 -> 历史/趋势查询
 * @rules 快照只追加，不更新不删除；保存无幂等键，同一实体类型并发保存会产生
 *        两条时间几乎相同的快照，这是接受的已知行为，实现方不得擅自"修复"
 * @dependencies gorm.io/gorm, masterdata-audit-service/service/models
 * @refs service/audit/report_generator.go, service/audit/enrichment_service.go
 */

package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"masterdata-audit-service/service/models"
)

// TrendPoint 得分趋势点
type TrendPoint struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
}

// HistoryService 审计快照存储与历史服务
type HistoryService struct {
	db       *gorm.DB
	registry *Registry
}

// NewHistoryService 创建历史服务
func NewHistoryService(db *gorm.DB, registry *Registry) *HistoryService {
	return &HistoryService{db: db, registry: registry}
}

// SaveSnapshot 将报告落库为不可变快照
// 纯追加写入，不做去重检查
func (s *HistoryService) SaveSnapshot(ctx context.Context, report *models.QualityReport, triggeredBy, notes string) (*models.QualityAuditSnapshot, error) {
	if _, err := s.registry.Get(report.EntityType); err != nil {
		return nil, err
	}

	fullReport, err := toJSONB(report)
	if err != nil {
		return nil, fmt.Errorf("报告序列化失败: %w", err)
	}

	perMetricCounts := models.JSONB{}
	for key, value := range report.Completeness {
		// 严格完整率等汇总字段不属于指标计数
		if key == "completenessPercentage" || key == "completeRecords" {
			continue
		}
		perMetricCounts[key] = value
	}
	for key, count := range report.Validity {
		perMetricCounts[key] = count
	}
	for key, count := range report.Monitoring {
		perMetricCounts[key] = count
	}

	scores := report.Scores
	snapshot := &models.QualityAuditSnapshot{
		EntityType:             report.EntityType,
		AuditedAt:              report.Overview.GeneratedAt,
		TotalRecords:           report.Overview.TotalRecords,
		OverallScore:           report.Overview.Score,
		CompletenessPercentage: completenessPercentageOf(report),
		CompletenessScore:      &scores.Completeness,
		ValidityScore:          &scores.Validity,
		ConsistencyScore:       &scores.Consistency,
		TimelinessScore:        &scores.Timeliness,
		PerMetricCounts:        perMetricCounts,
		FullReport:             fullReport,
		TriggeredBy:            triggeredBy,
		Notes:                  notes,
	}

	if err := s.db.WithContext(ctx).Create(snapshot).Error; err != nil {
		return nil, fmt.Errorf("保存审计快照失败: %w", err)
	}

	snapshotsSavedTotal.WithLabelValues(report.EntityType, triggeredBy).Inc()
	return snapshot, nil
}

// GetHistory 分页获取审计历史，按审计时间倒序
func (s *HistoryService) GetHistory(ctx context.Context, entityType string, page, size int) ([]models.QualityAuditSnapshot, int64, error) {
	if _, err := s.registry.Get(entityType); err != nil {
		return nil, 0, err
	}
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.QualityAuditSnapshot{}).
		Where("entity_type = ?", entityType).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计审计历史失败: %w", err)
	}

	var snapshots []models.QualityAuditSnapshot
	err := s.db.WithContext(ctx).
		Where("entity_type = ?", entityType).
		Order("audited_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&snapshots).Error
	if err != nil {
		return nil, 0, fmt.Errorf("查询审计历史失败: %w", err)
	}
	return snapshots, total, nil
}

// GetByID 按ID获取快照
func (s *HistoryService) GetByID(ctx context.Context, entityType, id string) (*models.QualityAuditSnapshot, error) {
	if _, err := s.registry.Get(entityType); err != nil {
		return nil, err
	}

	var snapshot models.QualityAuditSnapshot
	err := s.db.WithContext(ctx).
		Where("entity_type = ? AND id = ?", entityType, id).
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
		}
		return nil, fmt.Errorf("查询审计快照失败: %w", err)
	}
	return &snapshot, nil
}

// GetScoreTrend 获取最近N天的得分趋势，按时间升序
func (s *HistoryService) GetScoreTrend(ctx context.Context, entityType string, days int) ([]TrendPoint, error) {
	if _, err := s.registry.Get(entityType); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 30
	}

	since := time.Now().AddDate(0, 0, -days)
	var snapshots []models.QualityAuditSnapshot
	err := s.db.WithContext(ctx).
		Select("id", "entity_type", "audited_at", "overall_score").
		Where("entity_type = ? AND audited_at >= ?", entityType, since).
		Order("audited_at ASC").
		Find(&snapshots).Error
	if err != nil {
		return nil, fmt.Errorf("查询得分趋势失败: %w", err)
	}

	trend := make([]TrendPoint, len(snapshots))
	for i, snap := range snapshots {
		trend[i] = TrendPoint{
			Date:  snap.AuditedAt.Format("2006-01-02"),
			Score: snap.OverallScore,
		}
	}
	return trend, nil
}

// Latest 获取最近一次快照，无数据时返回nil
func (s *HistoryService) Latest(ctx context.Context, entityType string) (*models.QualityAuditSnapshot, error) {
	if _, err := s.registry.Get(entityType); err != nil {
		return nil, err
	}

	var snapshot models.QualityAuditSnapshot
	err := s.db.WithContext(ctx).
		Where("entity_type = ?", entityType).
		Order("audited_at DESC").
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询最新快照失败: %w", err)
	}
	return &snapshot, nil
}

// toJSONB 结构体转JSONB
func toJSONB(v interface{}) (models.JSONB, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var result models.JSONB
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// completenessPercentageOf 从报告完整性区取严格完整率
func completenessPercentageOf(report *models.QualityReport) float64 {
	if v, ok := report.Completeness["completenessPercentage"]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return 0
}
