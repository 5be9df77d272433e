/*
 * @module service/audit/record_source_test
 * @description GORM记录源的集成测试：测试数据排除、谓词翻译、分组计数
 * @architecture 测试层
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 内存数据库 -> 工厂造数 -> 查询断言
 * @rules 使用内存sqlite验证查询翻译，不依赖外部Postgres
 * @dependencies testing, stretchr/testify, masterdata-audit-service/testutil
 */

package audit

import (
	"context"
	"testing"
	"time"

	"masterdata-audit-service/service/models"
	"masterdata-audit-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource(t *testing.T) (*GormRecordSource, *testutil.TestDataFactory, func()) {
	t.Helper()
	tdb := testutil.NewTestDB()
	registry, err := NewRegistry()
	require.NoError(t, err)
	return NewGormRecordSource(tdb.DB, registry), testutil.NewTestDataFactory(tdb.DB), tdb.Close
}

// TestLoadAllExcludesSyntheticData 合成数据在加载阶段排除
func TestLoadAllExcludesSyntheticData(t *testing.T) {
	source, factory, cleanup := newTestSource(t)
	defer cleanup()

	factory.CreateProduct()
	factory.CreateProduct(func(p *models.Product) {
		p.IsTestData = true
	})

	records, err := source.LoadAll(context.Background(), models.EntityTypeProduct, true)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	all, err := source.LoadAll(context.Background(), models.EntityTypeProduct, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// TestCountPredicates 谓词翻译为聚合查询
func TestCountPredicates(t *testing.T) {
	source, factory, cleanup := newTestSource(t)
	defer cleanup()

	now := time.Now()
	soon := now.AddDate(0, 0, 30)
	far := now.AddDate(0, 0, 120)
	past := now.AddDate(0, 0, -10)

	factory.CreatePremise(func(p *models.Premise) {
		p.LicenseNumber = "PHA-2024-0001"
		p.LicenseExpiry = &soon
	})
	factory.CreatePremise(func(p *models.Premise) {
		p.LicenseNumber = "PHA-2024-0002"
		p.LicenseExpiry = &far
	})
	factory.CreatePremise(func(p *models.Premise) {
		p.LicenseNumber = "PHA-2024-0003"
		p.LicenseExpiry = &past
	})
	factory.CreatePremise(func(p *models.Premise) {
		p.LicenseNumber = "PHA-2024-0004"
		p.LicenseExpiry = nil
	})

	ctx := context.Background()

	// 60天内到期：只有soon命中，past和far都不算
	count, err := source.Count(ctx, models.EntityTypePremise, RecordPredicate{
		Field: "license_expiry", Op: OpWithinDays, Days: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// 已过期
	count, err = source.Count(ctx, models.EntityTypePremise, RecordPredicate{
		Field: "license_expiry", Op: OpExpired,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// 为空
	count, err = source.Count(ctx, models.EntityTypePremise, RecordPredicate{
		Field: "license_expiry", Op: OpIsNull,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// 等值
	count, err = source.Count(ctx, models.EntityTypePremise, RecordPredicate{
		Field: "license_number", Op: OpEquals, Value: "PHA-2024-0003",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// 不支持的操作符
	_, err = source.Count(ctx, models.EntityTypePremise, RecordPredicate{
		Field: "license_number", Op: "fuzzy_match",
	})
	assert.Error(t, err)
}

// TestGroupCount 分组计数按计数降序，支持静态过滤
func TestGroupCount(t *testing.T) {
	source, factory, cleanup := newTestSource(t)
	defer cleanup()

	for i := 0; i < 3; i++ {
		factory.CreateFacility(func(f *models.Facility) {
			f.District = "Lusaka"
		})
	}
	factory.CreateFacility(func(f *models.Facility) {
		f.District = "Kabwe"
	})
	factory.CreateFacility(func(f *models.Facility) {
		f.District = "Kabwe"
		f.Operational = false
	})

	ctx := context.Background()

	counts, err := source.GroupCount(ctx, models.EntityTypeFacility, "district", nil)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, int64(3), counts[0].Count) // Lusaka在前
	assert.Equal(t, int64(2), counts[1].Count)

	// 静态过滤：只统计在营机构
	filtered, err := source.GroupCount(ctx, models.EntityTypeFacility, "district",
		&DistributionFilter{Field: "operational", Value: true})
	require.NoError(t, err)
	var kabwe int64
	for _, vc := range filtered {
		if vc.Value == "Kabwe" {
			kabwe = vc.Count
		}
	}
	assert.Equal(t, int64(1), kabwe)
}

// TestMaxOf 字段最大值探测
func TestMaxOf(t *testing.T) {
	source, factory, cleanup := newTestSource(t)
	defer cleanup()

	factory.CreateProduct()

	value, err := source.MaxOf(context.Background(), models.EntityTypeProduct, "last_synced_at")
	require.NoError(t, err)
	assert.NotNil(t, value)
}

// TestUnknownEntityTypePassthrough 未注册实体类型在记录源同样拒绝
func TestUnknownEntityTypePassthrough(t *testing.T) {
	source, _, cleanup := newTestSource(t)
	defer cleanup()

	_, err := source.LoadAll(context.Background(), "warehouse", true)
	assert.ErrorIs(t, err, ErrUnknownEntityType)
}
