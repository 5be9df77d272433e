/*
 * @module service/models/audit_models
 * @description 主数据质量审计模型，包含审计快照、报告结构和告警阈值配置
 * @architecture 数据模型层
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 报告生成 -> 快照落库 -> 历史查询 -> 趋势分析
 * @rules 审计快照为追加写入，任何情况下不允许更新或删除
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/audit/
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 审计触发来源
const (
	AuditTriggerManual = "manual" // 手动触发
	AuditTriggerCron   = "cron"   // 定时任务触发
	AuditTriggerAPI    = "api"    // API调用触发
	AuditTriggerEvent  = "event"  // 事件触发
)

// 问题严重程度
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// QualityAuditSnapshot 质量审计快照模型
// 每次审计生成一条记录，只追加不修改；并发保存同一实体类型会产生
// 两条时间几乎相同的快照，这是设计上接受的行为
type QualityAuditSnapshot struct {
	ID                     string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	EntityType             string    `gorm:"type:varchar(30);not null;index" json:"entity_type"`
	AuditedAt              time.Time `gorm:"not null;index" json:"audited_at"`
	TotalRecords           int64     `json:"total_records"`
	OverallScore           float64   `json:"overall_score"`
	CompletenessPercentage float64   `json:"completeness_percentage"`
	// 各维度得分列为可空列，早期快照可能只存了总分
	CompletenessScore *float64  `json:"completeness_score,omitempty"`
	ValidityScore     *float64  `json:"validity_score,omitempty"`
	ConsistencyScore  *float64  `json:"consistency_score,omitempty"`
	TimelinessScore   *float64  `json:"timeliness_score,omitempty"`
	PerMetricCounts   JSONB     `gorm:"type:jsonb" json:"per_metric_counts"` // 各指标计数
	FullReport        JSONB     `gorm:"type:jsonb" json:"full_report"`       // 完整报告序列化
	TriggeredBy       string    `gorm:"type:varchar(20);not null" json:"triggered_by"` // manual, cron, api, event
	Notes             string    `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time `json:"created_at"`
}

// TableName 指定表名
func (QualityAuditSnapshot) TableName() string {
	return "quality_audit_snapshots"
}

// BeforeCreate 创建前钩子
func (q *QualityAuditSnapshot) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.AuditedAt.IsZero() {
		q.AuditedAt = time.Now()
	}
	return nil
}

// ReportOverview 报告概览
type ReportOverview struct {
	TotalRecords int64      `json:"totalRecords"`
	LastSyncDate *time.Time `json:"lastSyncDate,omitempty"`
	Score        float64    `json:"dataQualityScore"`
	GeneratedAt  time.Time  `json:"generatedAt"`
}

// DimensionScores 各维度得分 (0-100)
type DimensionScores struct {
	Completeness float64 `json:"completeness"`
	Validity     float64 `json:"validity"`
	Consistency  float64 `json:"consistency"`
	Timeliness   float64 `json:"timeliness"`
}

// QualityIssue 质量问题条目
type QualityIssue struct {
	Severity    string `json:"severity"` // high, medium, low
	Category    string `json:"category"`
	Description string `json:"description"`
	Count       int64  `json:"count"`
}

// DistributionBucket 分类分布桶
type DistributionBucket struct {
	Value      string  `json:"value"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// BooleanSplit 布尔分布
type BooleanSplit struct {
	TrueCount  int64 `json:"true"`
	FalseCount int64 `json:"false"`
}

// QualityReport 质量审计报告
// 每次调用全量重算，不做增量更新
type QualityReport struct {
	EntityType      string                 `json:"entityType"`
	Overview        ReportOverview         `json:"overview"`
	Completeness    map[string]interface{} `json:"completeness"` // 指标key -> 缺失数, 外加 completeRecords / completenessPercentage
	Validity        map[string]int64       `json:"validity"`
	Monitoring      map[string]int64       `json:"monitoring"` // 仅供运营观察，不参与评分
	Distribution    map[string]interface{} `json:"distribution"`
	Scores          DimensionScores        `json:"scores"`
	Issues          []QualityIssue         `json:"issues"`
	Recommendations []string               `json:"recommendations"`
}

// AlertThresholdConfig 告警阈值配置
// 纯声明式，得分低于info即触发通知
type AlertThresholdConfig struct {
	Critical float64 `json:"critical"`
	Warning  float64 `json:"warning"`
	Info     float64 `json:"info"`
}
