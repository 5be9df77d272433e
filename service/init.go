/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、审计配置装载与各服务的组装
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 应用启动时执行初始化流程
 * @rules 确保数据库与审计配置就绪后才提供API服务；Redis与Kafka不可用时降级为单实例模式
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres
 * @refs service/audit/config.go, service/scheduler/audit_scheduler.go
 */

package service

import (
	"fmt"
	"log"
	"os"

	"masterdata-audit-service/service/audit"
	"masterdata-audit-service/service/database"
	"masterdata-audit-service/service/distributed_lock"
	"masterdata-audit-service/service/event"
	"masterdata-audit-service/service/notification"
	"masterdata-audit-service/service/scheduler"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB                      *gorm.DB
	GlobalRegistry          *audit.Registry
	GlobalRecordSource      *audit.GormRecordSource
	GlobalReportGenerator   *audit.ReportGenerator
	GlobalHistoryService    *audit.HistoryService
	GlobalEnrichmentService *audit.EnrichmentService
	GlobalAlertEvaluator    *audit.AlertEvaluator
	GlobalNotifier          notification.AlertNotifier
	GlobalEventService      *event.AuditEventService
	GlobalScheduler         *scheduler.AuditScheduler
)

func init() {
	initDatabase()
	runMigrations()
	initServices()
}

// initDatabase 初始化数据库连接
func initDatabase() {
	var dsn string

	// 优先使用DATABASE_URL环境变量
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		dsn = databaseURL
	} else {
		// 使用分离的环境变量构建连接字符串
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "postgres")
		dbname := getEnvWithDefault("DB_NAME", "masterdata")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")
		schema := getEnvWithDefault("DB_SCHEMA", "public")

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s",
			host, port, user, password, dbname, sslmode, schema)
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	log.Println("数据库连接成功")
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// runMigrations 运行数据库迁移
func runMigrations() {
	log.Println("开始运行数据库迁移...")

	if err := database.AutoMigrate(DB); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	log.Println("数据库表结构迁移完成")
}

// initServices 初始化服务
func initServices() {
	var err error

	// 审计配置在启动期校验，配置错误直接终止
	GlobalRegistry, err = audit.NewRegistry()
	if err != nil {
		log.Fatalf("审计配置校验失败: %v", err)
	}

	GlobalRecordSource = audit.NewGormRecordSource(DB, GlobalRegistry)
	GlobalReportGenerator = audit.NewReportGenerator(GlobalRegistry, GlobalRecordSource)
	GlobalHistoryService = audit.NewHistoryService(DB, GlobalRegistry)
	GlobalEnrichmentService = audit.NewEnrichmentService(GlobalRegistry, GlobalHistoryService)
	GlobalAlertEvaluator = audit.NewAlertEvaluator(GlobalRegistry)

	// Kafka未配置时通知器为nil，调度器只评估不发布
	if os.Getenv("KAFKA_BROKERS") != "" {
		GlobalNotifier = notification.NewKafkaAlertNotifier()
	} else {
		log.Println("未配置KAFKA_BROKERS，告警发布未启用")
	}

	// Redis不可用时降级为单实例模式，不做分布式互斥
	var lock distributed_lock.DistributedLock
	redisLock, err := distributed_lock.NewRedisLock()
	if err != nil {
		log.Printf("Redis连接失败，定时审计降级为单实例模式: %v", err)
	} else {
		lock = redisLock
	}

	// 初始化事件推送服务
	GlobalEventService = event.NewAuditEventService(DB)
	if err := GlobalEventService.Start(); err != nil {
		log.Printf("启动快照事件推送服务失败: %v", err)
	}

	// 初始化并启动定时审计调度器
	GlobalScheduler = scheduler.NewAuditScheduler(
		GlobalRegistry,
		GlobalReportGenerator,
		GlobalHistoryService,
		GlobalAlertEvaluator,
		GlobalNotifier,
		lock,
	)
	if err := GlobalScheduler.Start(); err != nil {
		log.Printf("启动定时审计调度器失败: %v", err)
	}

	log.Println("服务初始化完成")
}
