/*
 * @module service/audit/extractors
 * @description 指标提取器：对已加载的记录集合计算缺失、重复、格式、范围、完整性违规计数
 * @architecture 纯函数 - 对不可变记录快照计算，无共享状态，可安全并行
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 记录集合 + 指标配置 -> 违规计数
 * @rules 重复计数 = 非空值数 - 去重值数，即多出来的次数而非重复值的种类数
 * @dependencies github.com/spf13/cast, golang.org/x/text/cases
 * @refs service/audit/report_generator.go, service/audit/config.go
 */

package audit

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"
	"golang.org/x/text/cases"
)

// isMissing 判定字段值是否缺失：nil、空字符串、纯空白均视为缺失
func isMissing(v interface{}) bool {
	if v == nil {
		return true
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val) == ""
	case []byte:
		return strings.TrimSpace(string(val)) == ""
	case *time.Time:
		return val == nil
	}
	return false
}

// isEmptyArray 判定数组字段是否为空，非null但元素为零也视为空
func isEmptyArray(v interface{}) bool {
	if v == nil {
		return true
	}
	switch val := v.(type) {
	case []interface{}:
		return len(val) == 0
	case []string:
		return len(val) == 0
	case string, []byte:
		raw := strings.TrimSpace(cast.ToString(v))
		if raw == "" || raw == "[]" || raw == "null" {
			return true
		}
		var arr []interface{}
		if err := json.Unmarshal([]byte(raw), &arr); err != nil {
			// 非JSON数组的标量值按非空处理
			return false
		}
		return len(arr) == 0
	}
	return false
}

// countMissing 统计完整性指标的缺失记录数
// 配置了PairField时（如经纬度），任一字段缺失即计为缺失
func countMissing(records []Record, metric CompletenessMetric) int64 {
	var count int64
	for _, rec := range records {
		if isMissing(rec[metric.Field]) {
			count++
			continue
		}
		if metric.PairField != "" && isMissing(rec[metric.PairField]) {
			count++
		}
	}
	return count
}

// countDuplicates 统计字段的重复计数
// 返回 非空值数 - 去重值数：3条记录取值 A,A,B 时重复计数为1，
// 重复越多的值贡献越大
func countDuplicates(records []Record, field string) int64 {
	var nonNull int64
	distinct := make(map[string]struct{})
	for _, rec := range records {
		v := rec[field]
		if isMissing(v) {
			continue
		}
		nonNull++
		distinct[cast.ToString(v)] = struct{}{}
	}
	return nonNull - int64(len(distinct))
}

// countFormatViolations 统计格式不符合正则的非空值数量
func countFormatViolations(records []Record, field string, pattern *regexp.Regexp) int64 {
	var count int64
	for _, rec := range records {
		v := rec[field]
		if isMissing(v) {
			continue
		}
		if !pattern.MatchString(cast.ToString(v)) {
			count++
		}
	}
	return count
}

// countRangeViolations 统计坐标越界的记录数
// 同时校验通用经纬度范围和运营国家边界框，任一越界即计数
func countRangeViolations(records []Record, latField, lngField string, bounds *DomainValidation) int64 {
	var count int64
	for _, rec := range records {
		latRaw, lngRaw := rec[latField], rec[lngField]
		if isMissing(latRaw) && isMissing(lngRaw) {
			continue // 缺失由完整性指标负责
		}

		violated := false
		if !isMissing(latRaw) {
			lat, err := cast.ToFloat64E(latRaw)
			if err != nil || lat < -90 || lat > 90 || lat < bounds.LatMin || lat > bounds.LatMax {
				violated = true
			}
		}
		if !violated && !isMissing(lngRaw) {
			lng, err := cast.ToFloat64E(lngRaw)
			if err != nil || lng < -180 || lng > 180 || lng < bounds.LngMin || lng > bounds.LngMax {
				violated = true
			}
		}
		if violated {
			count++
		}
	}
	return count
}

// countExpired 统计时间字段已早于当前时间的记录数
func countExpired(records []Record, field string, now time.Time) int64 {
	var count int64
	for _, rec := range records {
		v := rec[field]
		if isMissing(v) {
			continue
		}
		t, err := cast.ToTimeE(v)
		if err != nil {
			continue
		}
		if t.Before(now) {
			count++
		}
	}
	return count
}

// countInconsistent 统计分类字段中因拼写/大小写变体导致的不规范值数量
// 按大小写折叠分组后，每组中非主流变体的出现次数计为不一致
func countInconsistent(records []Record, field string) int64 {
	folder := cases.Fold()
	// 折叠键 -> 原始变体 -> 次数
	groups := make(map[string]map[string]int64)
	for _, rec := range records {
		v := rec[field]
		if isMissing(v) {
			continue
		}
		raw := strings.TrimSpace(cast.ToString(v))
		key := folder.String(raw)
		if groups[key] == nil {
			groups[key] = make(map[string]int64)
		}
		groups[key][raw]++
	}

	var count int64
	for _, variants := range groups {
		if len(variants) <= 1 {
			continue
		}
		var total, max int64
		for _, n := range variants {
			total += n
			if n > max {
				max = n
			}
		}
		count += total - max
	}
	return count
}

// extractValidityCount 有效性指标分发
// 理论上不会出现未映射的检查类型（启动校验已拒绝），运行时仍按0处理以保持失败开放
func extractValidityCount(records []Record, metric ValidityMetric, bounds *DomainValidation, now time.Time) int64 {
	switch metric.CheckType {
	case CheckDuplicate:
		return countDuplicates(records, metric.Field)
	case CheckFormat:
		pattern, err := regexp.Compile(metric.Pattern)
		if err != nil {
			return 0
		}
		return countFormatViolations(records, metric.Field, pattern)
	case CheckRange:
		if bounds == nil {
			return 0
		}
		return countRangeViolations(records, metric.Field, metric.PairField, bounds)
	case CheckIntegrity:
		return countExpired(records, metric.Field, now)
	}
	return 0
}

// isCompleteRecord 严格完整记录判定：所有配置字段全部满足才算完整
func isCompleteRecord(rec Record, fields []CompleteField) bool {
	for _, f := range fields {
		switch f.Kind {
		case FieldSimple:
			if isMissing(rec[f.Field]) {
				return false
			}
		case FieldEither:
			if isMissing(rec[f.Field]) && isMissing(rec[f.AltField]) {
				return false
			}
		case FieldArray:
			if isEmptyArray(rec[f.Field]) {
				return false
			}
		case FieldForeignKey:
			v := rec[f.Field]
			if isMissing(v) || cast.ToString(v) == cast.ToString(f.Placeholder) {
				return false
			}
		case FieldPaired:
			if isMissing(rec[f.Field]) || isMissing(rec[f.PairField]) {
				return false
			}
		case FieldCategorical:
			v := rec[f.Field]
			if isMissing(v) || strings.TrimSpace(cast.ToString(v)) == f.Sentinel {
				return false
			}
		}
	}
	return true
}
