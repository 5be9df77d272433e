/*
 * @module service/audit/entity_configs
 * @description 四类主数据集合的字面量审计配置：药品、持证场所、卫生机构、执业人员
 * @architecture 配置即数据 - 各实体差异全部收敛到配置，引擎保持通用
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 进程启动时由Registry加载并校验
 * @rules 监控指标（如年度证照续期）绝不进入加权评分
 * @dependencies masterdata-audit-service/service/models
 * @refs service/audit/config.go
 */

package audit

import "masterdata-audit-service/service/models"

// 运营国家地理边界框，用于场所和机构坐标的范围检查
var countryBounds = &DomainValidation{
	LatMin: -18.1,
	LatMax: -8.2,
	LngMin: 21.9,
	LngMax: 33.8,
}

// defaultConfigs 内置的实体审计配置集
func defaultConfigs() []*EntityAuditConfig {
	return []*EntityAuditConfig{
		productConfig(),
		premiseConfig(),
		facilityConfig(),
		practitionerConfig(),
	}
}

// productConfig 药品主数据审计配置
func productConfig() *EntityAuditConfig {
	return &EntityAuditConfig{
		EntityType: models.EntityTypeProduct,
		Table:      "products",
		CompletenessMetrics: []CompletenessMetric{
			{Key: "missingGtin", Label: "缺失GTIN", Field: "gtin", Weight: 3, Critical: true},
			{Key: "missingGenericName", Label: "缺失通用名", Field: "generic_name", Weight: 3, Critical: true},
			{Key: "missingStrength", Label: "缺失规格", Field: "strength", Weight: 2},
			{Key: "missingDosageForm", Label: "缺失剂型", Field: "dosage_form", Weight: 2},
			{Key: "missingManufacturer", Label: "缺失生产企业", Field: "manufacturer", Weight: 2},
		},
		ValidityMetrics: []ValidityMetric{
			{Key: "duplicateGtin", Label: "GTIN重复", Weight: 3, CheckType: CheckDuplicate, Field: "gtin"},
			{Key: "invalidGtinFormat", Label: "GTIN格式错误", Weight: 2, CheckType: CheckFormat, Field: "gtin", Pattern: `^\d{8,14}$`},
			{Key: "expiredRegistrations", Label: "注册证已过期", Weight: 2, CheckType: CheckIntegrity, Field: "registration_expiry"},
		},
		ConsistencyMetrics: []ConsistencyMetric{
			{Key: "nonStandardDosageForm", Label: "剂型拼写不规范", Field: "dosage_form", Weight: 1},
		},
		MonitoringMetrics: []CustomCountQuery{
			{Key: "expiringRegistrations", Label: "注册证90天内到期",
				Predicate: RecordPredicate{Field: "registration_expiry", Op: OpWithinDays, Days: 90}},
		},
		TimelinessThresholds: []TimelinessThreshold{
			{Hours: 24, Score: 100},
			{Hours: 48, Score: 80},
			{Hours: 96, Score: 60},
			{Hours: 168, Score: 40},
		},
		DistributionQueries: []DistributionQuery{
			{Key: "byCategory", Field: "category", Type: DistributionCategorical},
			{Key: "prescriptionOnly", Field: "prescription_only", Type: DistributionBoolean},
		},
		ScoringWeights: ScoringWeights{Completeness: 0.4, Validity: 0.3, Consistency: 0.1, Timeliness: 0.2},
		CompleteRecordsFields: []CompleteField{
			{Field: "gtin", Kind: FieldSimple},
			{Field: "generic_name", Kind: FieldSimple},
			{Field: "brand_name", Kind: FieldEither, AltField: "brand_display_name"},
			{Field: "strength", Kind: FieldSimple},
			{Field: "dosage_form", Kind: FieldSimple},
			{Field: "pack_sizes", Kind: FieldArray},
			{Field: "manufacturer_id", Kind: FieldForeignKey, Placeholder: int64(1)},
			{Field: "category", Kind: FieldCategorical, Sentinel: "Unknown"},
		},
		LastSyncFields:   []string{"last_synced_at", "updated_at"},
		SyncCadenceHours: 24,
		AlertThresholds:  models.AlertThresholdConfig{Critical: 50, Warning: 70, Info: 85},
	}
}

// premiseConfig 持证场所主数据审计配置
// 场所证照每年统一到期续期，到期临近数量只做监控，不压低质量分
func premiseConfig() *EntityAuditConfig {
	return &EntityAuditConfig{
		EntityType: models.EntityTypePremise,
		Table:      "premises",
		CompletenessMetrics: []CompletenessMetric{
			{Key: "missingLicenseNumber", Label: "缺失许可证号", Field: "license_number", Weight: 3, Critical: true},
			{Key: "missingName", Label: "缺失场所名称", Field: "name", Weight: 3, Critical: true},
			{Key: "missingDistrict", Label: "缺失所在区县", Field: "district", Weight: 2},
			{Key: "missingOwner", Label: "缺失持证人", Field: "owner_name", Weight: 2},
			{Key: "missingCoordinates", Label: "缺失地理坐标", Field: "latitude", PairField: "longitude", Weight: 2},
		},
		ValidityMetrics: []ValidityMetric{
			{Key: "duplicateLicenseNumber", Label: "许可证号重复", Weight: 3, CheckType: CheckDuplicate, Field: "license_number"},
			{Key: "invalidCoordinates", Label: "坐标越界", Weight: 2, CheckType: CheckRange, Field: "latitude", PairField: "longitude"},
			{Key: "expiredLicenses", Label: "许可证已过期", Weight: 2, CheckType: CheckIntegrity, Field: "license_expiry"},
		},
		MonitoringMetrics: []CustomCountQuery{
			{Key: "expiringSoon", Label: "许可证60天内到期",
				Predicate: RecordPredicate{Field: "license_expiry", Op: OpWithinDays, Days: 60}},
		},
		TimelinessThresholds: []TimelinessThreshold{
			{Hours: 24, Score: 100},
			{Hours: 72, Score: 80},
			{Hours: 168, Score: 60},
			{Hours: 336, Score: 40},
		},
		DistributionQueries: []DistributionQuery{
			{Key: "byDistrict", Field: "district", Type: DistributionCategorical},
			{Key: "byType", Field: "premise_type", Type: DistributionCategorical},
			{Key: "retail", Field: "retail", Type: DistributionBoolean},
		},
		ScoringWeights: ScoringWeights{Completeness: 0.45, Validity: 0.3, Consistency: 0, Timeliness: 0.25},
		CompleteRecordsFields: []CompleteField{
			{Field: "license_number", Kind: FieldSimple},
			{Field: "name", Kind: FieldSimple},
			{Field: "district", Kind: FieldSimple},
			{Field: "owner_name", Kind: FieldSimple},
			{Field: "latitude", Kind: FieldPaired, PairField: "longitude"},
			{Field: "premise_type", Kind: FieldCategorical, Sentinel: "Unknown"},
		},
		DomainValidation: countryBounds,
		LastSyncFields:   []string{"last_synced_at", "updated_at"},
		SyncCadenceHours: 24,
		AlertThresholds:  models.AlertThresholdConfig{Critical: 50, Warning: 70, Info: 85},
	}
}

// facilityConfig 卫生机构主数据审计配置
func facilityConfig() *EntityAuditConfig {
	return &EntityAuditConfig{
		EntityType: models.EntityTypeFacility,
		Table:      "facilities",
		CompletenessMetrics: []CompletenessMetric{
			{Key: "missingFacilityCode", Label: "缺失机构编码", Field: "facility_code", Weight: 3, Critical: true},
			{Key: "missingName", Label: "缺失机构名称", Field: "name", Weight: 3, Critical: true},
			{Key: "missingLevel", Label: "缺失机构级别", Field: "level", Weight: 2},
			{Key: "missingDistrict", Label: "缺失所在区县", Field: "district", Weight: 2},
			{Key: "missingCoordinates", Label: "缺失地理坐标", Field: "latitude", PairField: "longitude", Weight: 2},
		},
		ValidityMetrics: []ValidityMetric{
			{Key: "duplicateFacilityCode", Label: "机构编码重复", Weight: 3, CheckType: CheckDuplicate, Field: "facility_code"},
			{Key: "invalidFacilityCodeFormat", Label: "机构编码格式错误", Weight: 2, CheckType: CheckFormat, Field: "facility_code", Pattern: `^\d{13}$`},
			{Key: "invalidCoordinates", Label: "坐标越界", Weight: 2, CheckType: CheckRange, Field: "latitude", PairField: "longitude"},
		},
		ConsistencyMetrics: []ConsistencyMetric{
			{Key: "nonStandardLevel", Label: "机构级别拼写不规范", Field: "level", Weight: 1},
		},
		TimelinessThresholds: []TimelinessThreshold{
			{Hours: 72, Score: 100},
			{Hours: 168, Score: 80},
			{Hours: 336, Score: 60},
			{Hours: 720, Score: 40},
		},
		DistributionQueries: []DistributionQuery{
			{Key: "byLevel", Field: "level", Type: DistributionCategorical},
			{Key: "byOwnership", Field: "ownership", Type: DistributionCategorical},
			{Key: "operationalByDistrict", Field: "district", Type: DistributionCategorical,
				Filter: &DistributionFilter{Field: "operational", Value: true}},
			{Key: "operational", Field: "operational", Type: DistributionBoolean},
		},
		ScoringWeights: ScoringWeights{Completeness: 0.4, Validity: 0.3, Consistency: 0.1, Timeliness: 0.2},
		CompleteRecordsFields: []CompleteField{
			{Field: "facility_code", Kind: FieldSimple},
			{Field: "name", Kind: FieldSimple},
			{Field: "level", Kind: FieldSimple},
			{Field: "district_id", Kind: FieldForeignKey, Placeholder: int64(1)},
			{Field: "latitude", Kind: FieldPaired, PairField: "longitude"},
			{Field: "ownership", Kind: FieldCategorical, Sentinel: "Unknown"},
		},
		DomainValidation: countryBounds,
		LastSyncFields:   []string{"synced_at", "updated_at"},
		SyncCadenceHours: 72,
		AlertThresholds:  models.AlertThresholdConfig{Critical: 45, Warning: 65, Info: 80},
	}
}

// practitionerConfig 执业人员主数据审计配置
func practitionerConfig() *EntityAuditConfig {
	return &EntityAuditConfig{
		EntityType: models.EntityTypePractitioner,
		Table:      "practitioners",
		CompletenessMetrics: []CompletenessMetric{
			{Key: "missingRegistrationNumber", Label: "缺失注册号", Field: "registration_number", Weight: 3, Critical: true},
			{Key: "missingFirstName", Label: "缺失名", Field: "first_name", Weight: 2},
			{Key: "missingLastName", Label: "缺失姓", Field: "last_name", Weight: 2},
			{Key: "missingCadre", Label: "缺失岗位类别", Field: "cadre", Weight: 2},
			{Key: "missingQualifications", Label: "缺失资质记录", Field: "qualifications", Weight: 1},
		},
		ValidityMetrics: []ValidityMetric{
			{Key: "duplicateRegistrationNumber", Label: "注册号重复", Weight: 3, CheckType: CheckDuplicate, Field: "registration_number"},
			{Key: "expiredCertificates", Label: "执业证书已过期", Weight: 2, CheckType: CheckIntegrity, Field: "certificate_expiry"},
		},
		MonitoringMetrics: []CustomCountQuery{
			{Key: "certificatesExpiringSoon", Label: "执业证书30天内到期",
				Predicate: RecordPredicate{Field: "certificate_expiry", Op: OpWithinDays, Days: 30}},
		},
		CustomValidityQueries: []CustomCountQuery{
			{Key: "activeWithoutCertificate", Label: "在册但无证书到期日",
				Predicate: RecordPredicate{Field: "certificate_expiry", Op: OpIsNull}},
		},
		TimelinessThresholds: []TimelinessThreshold{
			{Hours: 48, Score: 100},
			{Hours: 96, Score: 80},
			{Hours: 168, Score: 60},
			{Hours: 336, Score: 40},
		},
		DistributionQueries: []DistributionQuery{
			{Key: "byCadre", Field: "cadre", Type: DistributionCategorical},
			{Key: "active", Field: "active", Type: DistributionBoolean},
		},
		ScoringWeights: ScoringWeights{Completeness: 0.45, Validity: 0.35, Consistency: 0, Timeliness: 0.2},
		CompleteRecordsFields: []CompleteField{
			{Field: "registration_number", Kind: FieldSimple},
			{Field: "first_name", Kind: FieldSimple},
			{Field: "last_name", Kind: FieldSimple},
			{Field: "qualifications", Kind: FieldArray},
			{Field: "cadre", Kind: FieldCategorical, Sentinel: "Unknown"},
		},
		LastSyncFields:   []string{"refreshed_at", "updated_at"},
		SyncCadenceHours: 48,
		AlertThresholds:  models.AlertThresholdConfig{Critical: 50, Warning: 70, Info: 85},
	}
}
