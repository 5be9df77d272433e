/*
 * @module service/database/migrate
 * @description 数据库迁移：自动创建主数据实体表与审计快照表
 * @architecture 数据访问层
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 服务启动 -> AutoMigrate -> 就绪
 * @rules 迁移失败视为致命错误，服务不应继续启动
 * @dependencies gorm.io/gorm
 * @refs service/models/audit_models.go, service/models/entity_models.go
 */

package database

import (
	"fmt"
	"log/slog"

	"masterdata-audit-service/service/models"

	"gorm.io/gorm"
)

// AutoMigrate 自动迁移全部数据模型
func AutoMigrate(db *gorm.DB) error {
	slog.Info("开始数据库自动迁移")

	err := db.AutoMigrate(
		&models.Product{},
		&models.Premise{},
		&models.Facility{},
		&models.Practitioner{},
		&models.QualityAuditSnapshot{},
	)
	if err != nil {
		return fmt.Errorf("数据库自动迁移失败: %w", err)
	}

	slog.Info("数据库自动迁移完成")
	return nil
}
