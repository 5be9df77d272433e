/*
 * @module service/audit/config
 * @description 实体审计配置类型与配置注册表，声明式描述各实体类型的完整性/有效性/一致性/时效性检查
 * @architecture 配置即数据 - 单一通用引擎消费各实体的字面量配置
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 进程启动加载 -> 启动时校验 -> 引擎只读消费
 * @rules 权重之和必须为1.0；阈值表非空且升序；未映射的指标key在启动校验阶段拒绝，不留到运行时
 * @dependencies masterdata-audit-service/service/models
 * @refs service/audit/entity_configs.go, service/audit/report_generator.go
 */

package audit

import (
	"fmt"
	"math"
	"regexp"
	"sort"

	"masterdata-audit-service/service/models"
)

// ValidityCheckType 有效性检查类型
type ValidityCheckType string

const (
	CheckFormat    ValidityCheckType = "format"    // 正则/长度格式检查
	CheckIntegrity ValidityCheckType = "integrity" // 时间/业务完整性检查，如证照已过期
	CheckDuplicate ValidityCheckType = "duplicate" // 重复值检查
	CheckRange     ValidityCheckType = "range"     // 数值范围检查
)

// CompletenessMetric 完整性指标
// Field为空或null即计为缺失；PairField非空时任一字段缺失都计为缺失
type CompletenessMetric struct {
	Key       string  `json:"key"`
	Label     string  `json:"label"`
	Field     string  `json:"field"`
	PairField string  `json:"pair_field,omitempty"`
	Weight    float64 `json:"weight"`
	Critical  bool    `json:"critical"` // 超过总量10%时建议升级为严重提示
}

// ValidityMetric 有效性指标
type ValidityMetric struct {
	Key       string            `json:"key"`
	Label     string            `json:"label"`
	Weight    float64           `json:"weight"`
	CheckType ValidityCheckType `json:"check_type"`
	Field     string            `json:"field"`
	PairField string            `json:"pair_field,omitempty"` // range检查时Field为纬度、PairField为经度
	Pattern   string            `json:"pattern,omitempty"`    // format检查的正则表达式
}

// ConsistencyMetric 一致性指标，检查分类值的拼写/大小写标准化程度
type ConsistencyMetric struct {
	Key    string  `json:"key"`
	Label  string  `json:"label"`
	Field  string  `json:"field"`
	Weight float64 `json:"weight"`
}

// PredicateOp 谓词操作符，覆盖自定义查询所需的有限集合
type PredicateOp string

const (
	OpExpired    PredicateOp = "expired"     // 时间字段早于当前时间
	OpWithinDays PredicateOp = "within_days" // 时间字段落在未来N天内
	OpIsNull     PredicateOp = "is_null"     // 字段为空
	OpEquals     PredicateOp = "equals"      // 字段等于给定值
)

// RecordPredicate 记录谓词，由记录源翻译为聚合查询条件
type RecordPredicate struct {
	Field string      `json:"field"`
	Op    PredicateOp `json:"op"`
	Days  int         `json:"days,omitempty"`
	Value interface{} `json:"value,omitempty"`
}

// CustomCountQuery 具名计数查询
// 监控指标复用同一结构，但结果绝不进入加权评分：
// 周期性、预期内的状态变化（如年度证照统一续期）不应压低质量分
type CustomCountQuery struct {
	Key       string          `json:"key"`
	Label     string          `json:"label"`
	Predicate RecordPredicate `json:"predicate"`
}

// TimelinessThreshold 时效性阈值，升序排列，第一个hours大于同步间隔的档位生效
type TimelinessThreshold struct {
	Hours float64 `json:"hours"`
	Score float64 `json:"score"`
}

// DistributionType 分布统计类型
type DistributionType string

const (
	DistributionCategorical DistributionType = "categorical"
	DistributionBoolean     DistributionType = "boolean"
)

// DistributionFilter 分布统计的静态等值过滤
type DistributionFilter struct {
	Field string      `json:"field"`
	Value interface{} `json:"value"`
}

// DistributionQuery 分布统计配置
type DistributionQuery struct {
	Key    string              `json:"key"`
	Field  string              `json:"field"`
	Type   DistributionType    `json:"type"`
	Filter *DistributionFilter `json:"filter,omitempty"`
}

// ScoringWeights 四个维度的评分权重，之和必须为1.0
type ScoringWeights struct {
	Completeness float64 `json:"completeness"`
	Validity     float64 `json:"validity"`
	Consistency  float64 `json:"consistency"`
	Timeliness   float64 `json:"timeliness"`
}

// CompleteFieldKind 严格完整记录字段的判定方式
type CompleteFieldKind string

const (
	FieldSimple      CompleteFieldKind = "simple"      // 字段存在且非空
	FieldEither      CompleteFieldKind = "either"      // 两个字段任一存在即可
	FieldArray       CompleteFieldKind = "array"       // 数组字段必须非空（不只是非null）
	FieldForeignKey  CompleteFieldKind = "foreign_key" // 存在且不等于未设置占位值
	FieldPaired      CompleteFieldKind = "paired"      // 成对字段必须同时存在
	FieldCategorical CompleteFieldKind = "categorical" // 存在且不等于哨兵值
)

// CompleteField 严格完整记录判定字段
type CompleteField struct {
	Field       string            `json:"field"`
	Kind        CompleteFieldKind `json:"kind"`
	AltField    string            `json:"alt_field,omitempty"`
	PairField   string            `json:"pair_field,omitempty"`
	Placeholder interface{}       `json:"placeholder,omitempty"`
	Sentinel    string            `json:"sentinel,omitempty"`
}

// DomainValidation 业务域数值边界（运营国家的地理边界框）
// 范围检查同时校验通用经纬度范围和此边界框，任一越界即计数
type DomainValidation struct {
	LatMin float64 `json:"lat_min"`
	LatMax float64 `json:"lat_max"`
	LngMin float64 `json:"lng_min"`
	LngMax float64 `json:"lng_max"`
}

// EntityAuditConfig 单个实体类型的审计配置，进程启动时加载后不再变化
type EntityAuditConfig struct {
	EntityType            string
	Table                 string
	CompletenessMetrics   []CompletenessMetric
	ValidityMetrics       []ValidityMetric
	ConsistencyMetrics    []ConsistencyMetric
	CustomValidityQueries []CustomCountQuery
	MonitoringMetrics     []CustomCountQuery
	TimelinessThresholds  []TimelinessThreshold
	DistributionQueries   []DistributionQuery
	ScoringWeights        ScoringWeights
	CompleteRecordsFields []CompleteField
	DomainValidation      *DomainValidation
	// LastSyncFields 依序探测的同步时间字段名，第一个有值的字段生效。
	// 不做运行时反射，各实体的候选列表在这里显式声明
	LastSyncFields   []string
	SyncCadenceHours float64 // 预期同步周期，用于时效性建议文案
	AlertThresholds  models.AlertThresholdConfig
}

// Registry 实体审计配置注册表
type Registry struct {
	configs map[string]*EntityAuditConfig
}

// NewRegistry 创建并校验默认配置注册表，配置缺陷直接返回错误而非带病启动
func NewRegistry() (*Registry, error) {
	return NewRegistryWith(defaultConfigs())
}

// NewRegistryWith 使用给定配置集创建注册表，测试时可注入自定义配置
func NewRegistryWith(configs []*EntityAuditConfig) (*Registry, error) {
	r := &Registry{configs: make(map[string]*EntityAuditConfig, len(configs))}
	for _, cfg := range configs {
		if err := validateConfig(cfg); err != nil {
			return nil, fmt.Errorf("实体类型 %s 配置校验失败: %w", cfg.EntityType, err)
		}
		if _, exists := r.configs[cfg.EntityType]; exists {
			return nil, fmt.Errorf("实体类型 %s 配置重复", cfg.EntityType)
		}
		r.configs[cfg.EntityType] = cfg
	}
	return r, nil
}

// Get 按实体类型查找配置，未注册的类型返回配置错误
func (r *Registry) Get(entityType string) (*EntityAuditConfig, error) {
	cfg, ok := r.configs[entityType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntityType, entityType)
	}
	return cfg, nil
}

// EntityTypes 返回全部已注册的实体类型，顺序稳定
func (r *Registry) EntityTypes() []string {
	types := make([]string, 0, len(r.configs))
	for t := range r.configs {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// validateConfig 启动时配置校验
func validateConfig(cfg *EntityAuditConfig) error {
	if cfg.EntityType == "" {
		return fmt.Errorf("entityType不能为空")
	}
	if cfg.Table == "" {
		return fmt.Errorf("未指定数据表")
	}

	// 权重之和必须为1.0
	w := cfg.ScoringWeights
	sum := w.Completeness + w.Validity + w.Consistency + w.Timeliness
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("评分权重之和为 %.4f，必须为 1.0", sum)
	}

	// 配了一致性权重就必须有一致性指标，反之亦然
	if w.Consistency > 0 && len(cfg.ConsistencyMetrics) == 0 {
		return fmt.Errorf("一致性权重为 %.2f 但未配置一致性指标", w.Consistency)
	}
	if w.Consistency == 0 && len(cfg.ConsistencyMetrics) > 0 {
		return fmt.Errorf("配置了一致性指标但一致性权重为0")
	}

	// 时效性阈值表非空且升序
	if len(cfg.TimelinessThresholds) == 0 {
		return fmt.Errorf("时效性阈值表为空")
	}
	for i := 1; i < len(cfg.TimelinessThresholds); i++ {
		if cfg.TimelinessThresholds[i].Hours <= cfg.TimelinessThresholds[i-1].Hours {
			return fmt.Errorf("时效性阈值表必须按小时数升序排列")
		}
	}

	if len(cfg.CompleteRecordsFields) == 0 {
		return fmt.Errorf("严格完整记录字段列表为空")
	}
	if len(cfg.LastSyncFields) == 0 {
		return fmt.Errorf("未声明同步时间候选字段")
	}

	// 指标key必须唯一且能映射到提取器，未映射的key是配置缺陷，
	// 不允许运行时静默按0处理
	seen := make(map[string]bool)
	checkKey := func(key string) error {
		if key == "" {
			return fmt.Errorf("指标key不能为空")
		}
		if seen[key] {
			return fmt.Errorf("指标key %s 重复", key)
		}
		seen[key] = true
		return nil
	}

	for _, m := range cfg.CompletenessMetrics {
		if err := checkKey(m.Key); err != nil {
			return err
		}
		if m.Field == "" {
			return fmt.Errorf("完整性指标 %s 未指定字段", m.Key)
		}
		if m.Weight <= 0 {
			return fmt.Errorf("完整性指标 %s 权重必须大于0", m.Key)
		}
	}
	for _, m := range cfg.ValidityMetrics {
		if err := checkKey(m.Key); err != nil {
			return err
		}
		if m.Weight <= 0 {
			return fmt.Errorf("有效性指标 %s 权重必须大于0", m.Key)
		}
		switch m.CheckType {
		case CheckFormat:
			if m.Pattern == "" {
				return fmt.Errorf("格式检查指标 %s 未指定正则", m.Key)
			}
			if _, err := regexp.Compile(m.Pattern); err != nil {
				return fmt.Errorf("格式检查指标 %s 正则无效: %w", m.Key, err)
			}
		case CheckRange:
			if m.PairField == "" {
				return fmt.Errorf("范围检查指标 %s 未指定经度字段", m.Key)
			}
			if cfg.DomainValidation == nil {
				return fmt.Errorf("范围检查指标 %s 需要业务域边界配置", m.Key)
			}
		case CheckDuplicate, CheckIntegrity:
			// 仅需Field
		default:
			return fmt.Errorf("有效性指标 %s 检查类型 %s 无法映射到提取器", m.Key, m.CheckType)
		}
		if m.Field == "" {
			return fmt.Errorf("有效性指标 %s 未指定字段", m.Key)
		}
	}
	for _, m := range cfg.ConsistencyMetrics {
		if err := checkKey(m.Key); err != nil {
			return err
		}
		if m.Field == "" {
			return fmt.Errorf("一致性指标 %s 未指定字段", m.Key)
		}
	}
	for _, q := range append(append([]CustomCountQuery{}, cfg.CustomValidityQueries...), cfg.MonitoringMetrics...) {
		if err := checkKey(q.Key); err != nil {
			return err
		}
		switch q.Predicate.Op {
		case OpExpired, OpWithinDays, OpIsNull, OpEquals:
		default:
			return fmt.Errorf("自定义查询 %s 谓词操作符 %s 不支持", q.Key, q.Predicate.Op)
		}
		if q.Predicate.Field == "" {
			return fmt.Errorf("自定义查询 %s 未指定字段", q.Key)
		}
	}

	for _, d := range cfg.DistributionQueries {
		if d.Key == "" || d.Field == "" {
			return fmt.Errorf("分布统计配置缺少key或字段")
		}
		if d.Type != DistributionCategorical && d.Type != DistributionBoolean {
			return fmt.Errorf("分布统计 %s 类型 %s 不支持", d.Key, d.Type)
		}
	}

	return nil
}
