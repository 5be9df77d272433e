/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数，提供内存数据库与主数据工厂
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, time
 * @refs service/models
 */

package testutil

import (
	"fmt"
	"time"

	"masterdata-audit-service/service/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建内存测试数据库并迁移全部模型
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	// 自动迁移所有模型
	err = db.AutoMigrate(
		&models.Product{},
		&models.Premise{},
		&models.Facility{},
		&models.Practitioner{},
		&models.QualityAuditSnapshot{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// CleanDB 清空所有表的数据
func (tdb *TestDB) CleanDB() {
	tables := []string{
		"products",
		"premises",
		"facilities",
		"practitioners",
		"quality_audit_snapshots",
	}

	for _, table := range tables {
		tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
	}
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

// TestDataFactory 测试数据工厂
type TestDataFactory struct {
	DB *gorm.DB
}

// NewTestDataFactory 创建测试数据工厂
func NewTestDataFactory(db *gorm.DB) *TestDataFactory {
	return &TestDataFactory{DB: db}
}

// ProductOption 药品选项函数类型
type ProductOption func(*models.Product)

// CreateProduct 创建一条字段齐全的药品记录，可用选项函数覆盖字段
func (f *TestDataFactory) CreateProduct(opts ...ProductOption) *models.Product {
	now := time.Now()
	expiry := now.AddDate(1, 0, 0)
	product := &models.Product{
		GTIN:               "06291041500213",
		GenericName:        "Paracetamol",
		BrandName:          "Panado",
		BrandDisplayName:   "Panado 500mg",
		Strength:           "500mg",
		DosageForm:         "Tablet",
		Manufacturer:       "Acme Pharma Ltd",
		ManufacturerID:     42,
		Category:           "Analgesic",
		PackSizes:          models.JSONBStringArray{"10", "30"},
		PrescriptionOnly:   false,
		RegistrationExpiry: &expiry,
		LastSyncedAt:       &now,
	}

	for _, opt := range opts {
		opt(product)
	}

	if err := f.DB.Create(product).Error; err != nil {
		panic(fmt.Sprintf("failed to create test product: %v", err))
	}
	return product
}

// PremiseOption 场所选项函数类型
type PremiseOption func(*models.Premise)

// CreatePremise 创建一条字段齐全的持证场所记录
func (f *TestDataFactory) CreatePremise(opts ...PremiseOption) *models.Premise {
	now := time.Now()
	expiry := now.AddDate(0, 6, 0)
	lat := -15.4
	lng := 28.3
	premise := &models.Premise{
		LicenseNumber: "PHA-2024-0001",
		Name:          "Central Pharmacy",
		District:      "Lusaka",
		OwnerName:     "J. Banda",
		PremiseType:   "Pharmacy",
		Latitude:      &lat,
		Longitude:     &lng,
		Retail:        true,
		LicenseExpiry: &expiry,
		LastSyncedAt:  &now,
	}

	for _, opt := range opts {
		opt(premise)
	}

	if err := f.DB.Create(premise).Error; err != nil {
		panic(fmt.Sprintf("failed to create test premise: %v", err))
	}
	return premise
}

// FacilityOption 机构选项函数类型
type FacilityOption func(*models.Facility)

// CreateFacility 创建一条字段齐全的卫生机构记录
func (f *TestDataFactory) CreateFacility(opts ...FacilityOption) *models.Facility {
	now := time.Now()
	lat := -13.1
	lng := 27.8
	facility := &models.Facility{
		FacilityCode: "5001234567890",
		Name:         "Kabwe District Hospital",
		Level:        "Level 1 Hospital",
		District:     "Kabwe",
		DistrictID:   23,
		Ownership:    "Government",
		Latitude:     &lat,
		Longitude:    &lng,
		Operational:  true,
		SyncedAt:     &now,
	}

	for _, opt := range opts {
		opt(facility)
	}

	if err := f.DB.Create(facility).Error; err != nil {
		panic(fmt.Sprintf("failed to create test facility: %v", err))
	}
	return facility
}

// PractitionerOption 执业人员选项函数类型
type PractitionerOption func(*models.Practitioner)

// CreatePractitioner 创建一条字段齐全的执业人员记录
func (f *TestDataFactory) CreatePractitioner(opts ...PractitionerOption) *models.Practitioner {
	now := time.Now()
	certExpiry := now.AddDate(1, 0, 0)
	practitioner := &models.Practitioner{
		RegistrationNumber: "REG-2024-1001",
		FirstName:          "Mary",
		LastName:           "Mwale",
		Cadre:              "Pharmacist",
		Qualifications:     models.JSONBStringArray{"BPharm"},
		Gender:             "female",
		Active:             true,
		CertificateExpiry:  &certExpiry,
		RefreshedAt:        &now,
	}

	for _, opt := range opts {
		opt(practitioner)
	}

	if err := f.DB.Create(practitioner).Error; err != nil {
		panic(fmt.Sprintf("failed to create test practitioner: %v", err))
	}
	return practitioner
}
