/*
 * @module service/audit/distribution
 * @description 分布分析器：分类字段分组计数与布尔字段二分统计
 * @architecture 业务服务层 - 只读聚合
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 分布配置 -> 记录源聚合 -> 占比计算
 * @rules 占比一律在引擎内计算并随桶返回，调用方不再自行计算
 * @dependencies github.com/spf13/cast
 * @refs service/audit/record_source.go, service/audit/report_generator.go
 */

package audit

import (
	"context"
	"math"
	"strings"

	"github.com/spf13/cast"

	"masterdata-audit-service/service/models"
)

// computeDistributions 计算全部配置的分布统计
// 分类分布按计数降序返回带占比的桶；布尔分布只返回真/假两个计数
func computeDistributions(ctx context.Context, source RecordSource, entityType string, queries []DistributionQuery, total int64) (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(queries))

	for _, q := range queries {
		counts, err := source.GroupCount(ctx, entityType, q.Field, q.Filter)
		if err != nil {
			return nil, err
		}

		switch q.Type {
		case DistributionBoolean:
			split := models.BooleanSplit{}
			for _, vc := range counts {
				if cast.ToBool(vc.Value) {
					split.TrueCount += vc.Count
				} else {
					split.FalseCount += vc.Count
				}
			}
			result[q.Key] = split

		case DistributionCategorical:
			buckets := make([]models.DistributionBucket, 0, len(counts))
			for _, vc := range counts {
				value := strings.TrimSpace(cast.ToString(vc.Value))
				if value == "" {
					continue
				}
				buckets = append(buckets, models.DistributionBucket{
					Value:      value,
					Count:      vc.Count,
					Percentage: roundPercentage(vc.Count, total),
				})
			}
			result[q.Key] = buckets
		}
	}

	return result, nil
}

// roundPercentage 计算占比并保留两位小数
func roundPercentage(count, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*100*100) / 100
}
