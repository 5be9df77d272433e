/*
 * @module service/models/entity_models
 * @description 被审计的主数据集合模型：药品、持证场所、卫生机构、执业人员
 * @architecture 数据模型层
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 上游同步任务写入 -> 审计引擎只读
 * @rules 审计引擎对这些表只读，数据修正由上游登记系统负责
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/audit/record_source.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 实体类型标识
const (
	EntityTypeProduct      = "product"      // 药品
	EntityTypePremise      = "premise"      // 持证场所
	EntityTypeFacility     = "facility"     // 卫生机构
	EntityTypePractitioner = "practitioner" // 执业人员
)

// Product 药品主数据模型
type Product struct {
	ID                 string           `gorm:"type:varchar(50);primaryKey" json:"id"`
	GTIN               string           `gorm:"type:varchar(14);index;column:gtin" json:"gtin"`
	GenericName        string           `gorm:"type:varchar(200)" json:"generic_name"`
	BrandName          string           `gorm:"type:varchar(200)" json:"brand_name"`
	BrandDisplayName   string           `gorm:"type:varchar(200)" json:"brand_display_name"`
	Strength           string           `gorm:"type:varchar(100)" json:"strength"`
	DosageForm         string           `gorm:"type:varchar(100)" json:"dosage_form"`
	Manufacturer       string           `gorm:"type:varchar(200)" json:"manufacturer"`
	ManufacturerID     int64            `gorm:"default:1" json:"manufacturer_id"` // 1为未设置的占位值
	Category           string           `gorm:"type:varchar(100);default:'Unknown'" json:"category"`
	PackSizes          JSONBStringArray `gorm:"type:jsonb" json:"pack_sizes"`
	PrescriptionOnly   bool             `gorm:"default:false" json:"prescription_only"`
	RegistrationExpiry *time.Time       `json:"registration_expiry,omitempty"`
	IsTestData         bool             `gorm:"default:false;index" json:"is_test_data"`
	LastSyncedAt       *time.Time       `json:"last_synced_at,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// BeforeCreate 创建前钩子
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// Premise 持证场所主数据模型（药房、药店等）
type Premise struct {
	ID            string     `gorm:"type:varchar(50);primaryKey" json:"id"`
	LicenseNumber string     `gorm:"type:varchar(50);index" json:"license_number"`
	Name          string     `gorm:"type:varchar(200)" json:"name"`
	District      string     `gorm:"type:varchar(100)" json:"district"`
	OwnerName     string     `gorm:"type:varchar(200)" json:"owner_name"`
	PremiseType   string     `gorm:"type:varchar(50);default:'Unknown'" json:"premise_type"`
	Latitude      *float64   `json:"latitude,omitempty"`
	Longitude     *float64   `json:"longitude,omitempty"`
	Retail        bool       `gorm:"default:true" json:"retail"`
	LicenseExpiry *time.Time `json:"license_expiry,omitempty"` // 每年统一到期续期
	IsTestData    bool       `gorm:"default:false;index" json:"is_test_data"`
	LastSyncedAt  *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (Premise) TableName() string {
	return "premises"
}

// BeforeCreate 创建前钩子
func (p *Premise) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// Facility 卫生机构主数据模型
type Facility struct {
	ID           string     `gorm:"type:varchar(50);primaryKey" json:"id"`
	FacilityCode string     `gorm:"type:varchar(13);index" json:"facility_code"` // 13位机构位置编码
	Name         string     `gorm:"type:varchar(200)" json:"name"`
	Level        string     `gorm:"type:varchar(50)" json:"level"`
	District     string     `gorm:"type:varchar(100)" json:"district"`
	DistrictID   int64      `gorm:"default:1" json:"district_id"` // 1为未设置的占位值
	Ownership    string     `gorm:"type:varchar(50);default:'Unknown'" json:"ownership"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	Operational  bool       `gorm:"default:true" json:"operational"`
	IsTestData   bool       `gorm:"default:false;index" json:"is_test_data"`
	SyncedAt     *time.Time `json:"synced_at,omitempty"` // 机构注册上游使用不同的同步时间字段名
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (Facility) TableName() string {
	return "facilities"
}

// BeforeCreate 创建前钩子
func (f *Facility) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// Practitioner 执业人员主数据模型
type Practitioner struct {
	ID                 string           `gorm:"type:varchar(50);primaryKey" json:"id"`
	RegistrationNumber string           `gorm:"type:varchar(50);index" json:"registration_number"`
	FirstName          string           `gorm:"type:varchar(100)" json:"first_name"`
	LastName           string           `gorm:"type:varchar(100)" json:"last_name"`
	Cadre              string           `gorm:"type:varchar(100);default:'Unknown'" json:"cadre"`
	Qualifications     JSONBStringArray `gorm:"type:jsonb" json:"qualifications"`
	Gender             string           `gorm:"type:varchar(20)" json:"gender"`
	Active             bool             `gorm:"default:true" json:"active"`
	CertificateExpiry  *time.Time       `json:"certificate_expiry,omitempty"` // 执业证书到期日
	IsTestData         bool             `gorm:"default:false;index" json:"is_test_data"`
	RefreshedAt        *time.Time       `json:"refreshed_at,omitempty"` // 人员登记上游使用的同步时间字段名
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// TableName 指定表名
func (Practitioner) TableName() string {
	return "practitioners"
}

// BeforeCreate 创建前钩子
func (p *Practitioner) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
