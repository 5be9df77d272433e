/*
 * @module service/audit/extractors_test
 * @description 指标提取器的单元测试：缺失、重复、格式、范围、一致性、严格完整记录判定
 * @architecture 测试层
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 记录构造 -> 提取 -> 计数断言
 * @rules 提取器为纯函数，测试不依赖数据库
 * @dependencies testing, stretchr/testify
 */

package audit

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsMissing(t *testing.T) {
	assert.True(t, isMissing(nil))
	assert.True(t, isMissing(""))
	assert.True(t, isMissing("   "))
	assert.True(t, isMissing([]byte("  ")))
	assert.True(t, isMissing((*time.Time)(nil)))

	now := time.Now()
	assert.False(t, isMissing(&now))
	assert.False(t, isMissing("value"))
	assert.False(t, isMissing(int64(0))) // 数值0不算缺失
	assert.False(t, isMissing(false))
}

func TestIsEmptyArray(t *testing.T) {
	assert.True(t, isEmptyArray(nil))
	assert.True(t, isEmptyArray([]interface{}{}))
	assert.True(t, isEmptyArray([]string{}))
	assert.True(t, isEmptyArray("[]"))
	assert.True(t, isEmptyArray("null"))
	assert.True(t, isEmptyArray([]byte("[]")))

	assert.False(t, isEmptyArray([]interface{}{"a"}))
	assert.False(t, isEmptyArray(`["10","30"]`))
}

// TestCountMissingPairField 成对字段任一缺失即计为缺失
func TestCountMissingPairField(t *testing.T) {
	records := []Record{
		{"latitude": -15.4, "longitude": 28.3},
		{"latitude": -15.4, "longitude": nil},
		{"latitude": nil, "longitude": 28.3},
		{"latitude": nil, "longitude": nil},
	}
	metric := CompletenessMetric{Key: "missingCoordinates", Field: "latitude", PairField: "longitude"}

	assert.Equal(t, int64(3), countMissing(records, metric))
}

// TestCountDuplicates 重复计数 = 非空值数 - 去重值数
func TestCountDuplicates(t *testing.T) {
	records := []Record{
		{"gtin": "A"},
		{"gtin": "A"},
		{"gtin": "B"},
	}
	assert.Equal(t, int64(1), countDuplicates(records, "gtin"))

	// 缺失值不参与重复统计
	records = append(records, Record{"gtin": nil}, Record{"gtin": ""})
	assert.Equal(t, int64(1), countDuplicates(records, "gtin"))

	// A,A,A,B => 2：重复越多的值贡献越大
	records = []Record{
		{"gtin": "A"}, {"gtin": "A"}, {"gtin": "A"}, {"gtin": "B"},
	}
	assert.Equal(t, int64(2), countDuplicates(records, "gtin"))
}

func TestCountFormatViolations(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{8,14}$`)
	records := []Record{
		{"gtin": "06291041500213"},
		{"gtin": "ABC123"},
		{"gtin": "123"},
		{"gtin": nil}, // 缺失由完整性指标负责
	}
	assert.Equal(t, int64(2), countFormatViolations(records, "gtin", pattern))
}

// TestCountRangeViolations 通用经纬度范围与运营国家边界框同时校验
func TestCountRangeViolations(t *testing.T) {
	records := []Record{
		{"latitude": -15.4, "longitude": 28.3},  // 境内
		{"latitude": 35.0, "longitude": 28.3},   // 纬度出边界框
		{"latitude": -15.4, "longitude": 200.0}, // 经度超通用范围
		{"latitude": nil, "longitude": nil},     // 双缺失跳过
		{"latitude": nil, "longitude": 28.3},    // 单缺失仍校验另一个
	}
	assert.Equal(t, int64(2), countRangeViolations(records, "latitude", "longitude", countryBounds))
}

func TestCountExpired(t *testing.T) {
	now := time.Now()
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)
	records := []Record{
		{"license_expiry": past},
		{"license_expiry": future},
		{"license_expiry": nil},
	}
	assert.Equal(t, int64(1), countExpired(records, "license_expiry", now))
}

// TestCountInconsistent 大小写折叠分组后，非主流变体的出现次数计为不一致
func TestCountInconsistent(t *testing.T) {
	records := []Record{
		{"dosage_form": "Tablet"},
		{"dosage_form": "Tablet"},
		{"dosage_form": "tablet"},
		{"dosage_form": "TABLET"},
		{"dosage_form": "Capsule"},
	}
	// Tablet组：4条中主流变体出现2次，不一致为2；Capsule组单一变体不计
	assert.Equal(t, int64(2), countInconsistent(records, "dosage_form"))

	// 全部拼写一致时为0
	uniform := []Record{
		{"dosage_form": "Tablet"},
		{"dosage_form": "Tablet"},
	}
	assert.Equal(t, int64(0), countInconsistent(uniform, "dosage_form"))
}

// TestIsCompleteRecord 严格完整记录判定覆盖全部字段类型
func TestIsCompleteRecord(t *testing.T) {
	fields := []CompleteField{
		{Field: "gtin", Kind: FieldSimple},
		{Field: "brand_name", Kind: FieldEither, AltField: "brand_display_name"},
		{Field: "pack_sizes", Kind: FieldArray},
		{Field: "manufacturer_id", Kind: FieldForeignKey, Placeholder: int64(1)},
		{Field: "latitude", Kind: FieldPaired, PairField: "longitude"},
		{Field: "category", Kind: FieldCategorical, Sentinel: "Unknown"},
	}

	complete := Record{
		"gtin":               "06291041500213",
		"brand_name":         "",
		"brand_display_name": "Panado 500mg", // either：替代字段有值即可
		"pack_sizes":         `["10"]`,
		"manufacturer_id":    int64(42),
		"latitude":           -15.4,
		"longitude":          28.3,
		"category":           "Analgesic",
	}
	assert.True(t, isCompleteRecord(complete, fields))

	// 外键为占位值1时不完整
	fkPlaceholder := Record{}
	for k, v := range complete {
		fkPlaceholder[k] = v
	}
	fkPlaceholder["manufacturer_id"] = int64(1)
	assert.False(t, isCompleteRecord(fkPlaceholder, fields))

	// 数组非null但为空时不完整
	emptyArr := Record{}
	for k, v := range complete {
		emptyArr[k] = v
	}
	emptyArr["pack_sizes"] = "[]"
	assert.False(t, isCompleteRecord(emptyArr, fields))

	// 分类字段为哨兵值时不完整
	sentinel := Record{}
	for k, v := range complete {
		sentinel[k] = v
	}
	sentinel["category"] = "Unknown"
	assert.False(t, isCompleteRecord(sentinel, fields))

	// 成对字段缺一不完整
	halfPair := Record{}
	for k, v := range complete {
		halfPair[k] = v
	}
	halfPair["longitude"] = nil
	assert.False(t, isCompleteRecord(halfPair, fields))

	// either两个字段都缺失时不完整
	noBrand := Record{}
	for k, v := range complete {
		noBrand[k] = v
	}
	noBrand["brand_display_name"] = ""
	assert.False(t, isCompleteRecord(noBrand, fields))
}

// TestApplyTimelinessThresholds 升序阈值表：第一个hours大于间隔的档位生效，全超出得0
func TestApplyTimelinessThresholds(t *testing.T) {
	thresholds := []TimelinessThreshold{
		{Hours: 3, Score: 100},
		{Hours: 24, Score: 80},
		{Hours: 72, Score: 50},
	}

	score, exceeded := applyTimelinessThresholds(thresholds, 2.9)
	assert.Equal(t, float64(100), score)
	assert.Equal(t, 0, exceeded)

	score, exceeded = applyTimelinessThresholds(thresholds, 3.1)
	assert.Equal(t, float64(80), score)
	assert.Equal(t, 1, exceeded)

	score, exceeded = applyTimelinessThresholds(thresholds, 25)
	assert.Equal(t, float64(50), score)
	assert.Equal(t, 2, exceeded)

	score, exceeded = applyTimelinessThresholds(thresholds, 100)
	assert.Equal(t, float64(0), score)
	assert.Equal(t, 3, exceeded)
}
