/*
 * @module service/audit/record_source
 * @description 记录源契约与GORM实现，审计引擎对被审计集合的唯一读取入口
 * @architecture 数据访问层 - 只读
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 表名解析 -> 条件翻译 -> 只读查询
 * @rules 合成/测试数据在加载阶段排除；引擎绝不写入被审计的表
 * @dependencies gorm.io/gorm, github.com/spf13/cast
 * @refs service/audit/report_generator.go, service/audit/entity_configs.go
 */

package audit

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Record 一条已加载的主数据记录，字段名与数据库列名一致
type Record map[string]interface{}

// ValueCount 分组计数结果
type ValueCount struct {
	Value interface{} `gorm:"column:value" json:"value"`
	Count int64       `gorm:"column:count" json:"count"`
}

// RecordSource 记录源契约
// 自定义有效性/监控查询通过Count执行各自的聚合，互相独立、只读，
// 实现方可以安全地并发执行
type RecordSource interface {
	// LoadAll 加载某实体类型的全部记录，excludeSynthetic为true时排除测试数据
	LoadAll(ctx context.Context, entityType string, excludeSynthetic bool) ([]Record, error)
	// Count 按谓词统计记录数
	Count(ctx context.Context, entityType string, pred RecordPredicate) (int64, error)
	// MaxOf 取某字段的最大值，无数据时返回nil
	MaxOf(ctx context.Context, entityType, field string) (interface{}, error)
	// GroupCount 按字段分组计数，可附加静态等值过滤，结果按计数降序
	GroupCount(ctx context.Context, entityType, field string, filter *DistributionFilter) ([]ValueCount, error)
}

// GormRecordSource 基于GORM的记录源实现
type GormRecordSource struct {
	db       *gorm.DB
	registry *Registry
}

// NewGormRecordSource 创建GORM记录源
func NewGormRecordSource(db *gorm.DB, registry *Registry) *GormRecordSource {
	return &GormRecordSource{db: db, registry: registry}
}

// tableFor 解析实体类型对应的表名
// 表名与字段名全部来自启动时校验过的字面量配置，不存在注入面
func (s *GormRecordSource) tableFor(entityType string) (string, error) {
	cfg, err := s.registry.Get(entityType)
	if err != nil {
		return "", err
	}
	return cfg.Table, nil
}

// LoadAll 加载全部记录
func (s *GormRecordSource) LoadAll(ctx context.Context, entityType string, excludeSynthetic bool) ([]Record, error) {
	table, err := s.tableFor(entityType)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Table(table)
	if excludeSynthetic {
		query = query.Where("is_test_data = ?", false)
	}

	var rows []map[string]interface{}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("加载 %s 记录失败: %w", entityType, err)
	}

	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = Record(row)
	}
	return records, nil
}

// Count 按谓词统计记录数
func (s *GormRecordSource) Count(ctx context.Context, entityType string, pred RecordPredicate) (int64, error) {
	table, err := s.tableFor(entityType)
	if err != nil {
		return 0, err
	}

	query := s.db.WithContext(ctx).Table(table).Where("is_test_data = ?", false)

	now := time.Now()
	switch pred.Op {
	case OpExpired:
		query = query.Where(fmt.Sprintf("%s IS NOT NULL AND %s < ?", pred.Field, pred.Field), now)
	case OpWithinDays:
		until := now.AddDate(0, 0, pred.Days)
		query = query.Where(fmt.Sprintf("%s IS NOT NULL AND %s >= ? AND %s < ?", pred.Field, pred.Field, pred.Field), now, until)
	case OpIsNull:
		query = query.Where(fmt.Sprintf("%s IS NULL", pred.Field))
	case OpEquals:
		query = query.Where(fmt.Sprintf("%s = ?", pred.Field), pred.Value)
	default:
		return 0, fmt.Errorf("谓词操作符 %s 不支持", pred.Op)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("统计 %s 记录失败: %w", entityType, err)
	}
	return count, nil
}

// MaxOf 取字段最大值
func (s *GormRecordSource) MaxOf(ctx context.Context, entityType, field string) (interface{}, error) {
	table, err := s.tableFor(entityType)
	if err != nil {
		return nil, err
	}

	row := s.db.WithContext(ctx).Table(table).
		Where("is_test_data = ?", false).
		Select(fmt.Sprintf("MAX(%s)", field)).Row()

	var value interface{}
	if err := row.Scan(&value); err != nil {
		return nil, fmt.Errorf("查询 %s.%s 最大值失败: %w", entityType, field, err)
	}
	return value, nil
}

// GroupCount 分组计数
func (s *GormRecordSource) GroupCount(ctx context.Context, entityType, field string, filter *DistributionFilter) ([]ValueCount, error) {
	table, err := s.tableFor(entityType)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).Table(table).
		Select(fmt.Sprintf("%s AS value, COUNT(*) AS count", field)).
		Where("is_test_data = ?", false).
		Where(fmt.Sprintf("%s IS NOT NULL", field))

	if filter != nil {
		query = query.Where(fmt.Sprintf("%s = ?", filter.Field), filter.Value)
	}

	var results []ValueCount
	if err := query.Group(field).Order("count DESC").Scan(&results).Error; err != nil {
		return nil, fmt.Errorf("分组统计 %s.%s 失败: %w", entityType, field, err)
	}
	return results, nil
}
