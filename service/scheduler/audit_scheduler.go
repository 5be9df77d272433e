/*
 * @module service/scheduler/audit_scheduler
 * @description 定时审计调度器：按Cron周期对全部实体类型生成报告、落库快照并评估告警
 * @architecture 基于robfig/cron的调度器模式
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow Cron触发 -> 分布式锁防重 -> 报告生成 -> 快照落库 -> 告警评估 -> 通知发布
 * @rules 多实例部署时同一实体类型同一周期只允许一个实例执行；单个实体失败不影响其余实体
 * @dependencies github.com/robfig/cron/v3
 * @refs service/audit/, service/distributed_lock/, service/notification/
 */

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"masterdata-audit-service/service/audit"
	"masterdata-audit-service/service/distributed_lock"
	"masterdata-audit-service/service/models"
	"masterdata-audit-service/service/notification"
)

// 默认每天凌晨2点执行（带秒位的cron表达式）
const defaultAuditCron = "0 0 2 * * *"

// 单个实体审计的锁TTL，覆盖最长预期的报告生成时间
const auditLockTTL = 10 * time.Minute

// AuditScheduler 定时审计调度器
type AuditScheduler struct {
	registry  *audit.Registry
	generator *audit.ReportGenerator
	history   *audit.HistoryService
	evaluator *audit.AlertEvaluator
	notifier  notification.AlertNotifier
	lock      distributed_lock.DistributedLock
	cron      *cron.Cron
	ctx       context.Context
	cancel    context.CancelFunc
	cronExpr  string
}

// NewAuditScheduler 创建定时审计调度器
// lock与notifier可为nil：无锁时按单实例模式执行，无notifier时只评估不发布
func NewAuditScheduler(
	registry *audit.Registry,
	generator *audit.ReportGenerator,
	history *audit.HistoryService,
	evaluator *audit.AlertEvaluator,
	notifier notification.AlertNotifier,
	lock distributed_lock.DistributedLock,
) *AuditScheduler {
	ctx, cancel := context.WithCancel(context.Background())

	cronExpr := os.Getenv("AUDIT_CRON")
	if cronExpr == "" {
		cronExpr = defaultAuditCron
	}

	return &AuditScheduler{
		registry:  registry,
		generator: generator,
		history:   history,
		evaluator: evaluator,
		notifier:  notifier,
		lock:      lock,
		cron:      cron.New(cron.WithSeconds()),
		ctx:       ctx,
		cancel:    cancel,
		cronExpr:  cronExpr,
	}
}

// Start 启动调度器
func (s *AuditScheduler) Start() error {
	_, err := s.cron.AddFunc(s.cronExpr, s.runScheduledAudits)
	if err != nil {
		return fmt.Errorf("注册审计定时任务失败: %w", err)
	}

	s.cron.Start()
	slog.Info("定时审计调度器已启动", "cron", s.cronExpr)
	return nil
}

// Stop 停止调度器
func (s *AuditScheduler) Stop() {
	s.cancel()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	slog.Info("定时审计调度器已停止")
}

// runScheduledAudits 对全部实体类型依次执行审计
func (s *AuditScheduler) runScheduledAudits() {
	for _, entityType := range s.registry.EntityTypes() {
		if err := s.AuditEntity(s.ctx, entityType); err != nil {
			slog.Error("定时审计执行失败", "entity_type", entityType, "error", err)
		}
	}
}

// AuditEntity 对单个实体类型执行一次完整审计
// 配置了分布式锁时先抢锁，抢不到说明其他实例正在执行，直接跳过
func (s *AuditScheduler) AuditEntity(ctx context.Context, entityType string) error {
	if s.lock != nil {
		lockKey := fmt.Sprintf("audit:schedule:%s", entityType)
		acquired, err := s.lock.TryLock(ctx, lockKey, auditLockTTL)
		if err != nil {
			return fmt.Errorf("获取审计锁失败: %w", err)
		}
		if !acquired {
			slog.Info("其他实例正在执行审计，跳过", "entity_type", entityType)
			return nil
		}
		defer func() {
			if err := s.lock.Unlock(context.Background(), lockKey); err != nil {
				slog.Warn("释放审计锁失败", "entity_type", entityType, "error", err)
			}
		}()
	}

	report, err := s.generator.GenerateReport(ctx, entityType)
	if err != nil {
		return err
	}

	snapshot, err := s.history.SaveSnapshot(ctx, report, models.AuditTriggerCron, "")
	if err != nil {
		return err
	}

	decision, err := s.evaluator.Evaluate(entityType, report.Overview.Score)
	if err != nil {
		return err
	}
	decision.SnapshotID = snapshot.ID

	if s.notifier != nil && decision.ShouldAlert {
		// 通知失败不影响审计结果，快照已经落库
		if err := s.notifier.NotifyAlert(ctx, decision); err != nil {
			slog.Error("告警通知发布失败", "entity_type", entityType, "error", err)
		}
	}

	slog.Info("定时审计完成",
		"entity_type", entityType,
		"snapshot_id", snapshot.ID,
		"score", report.Overview.Score,
		"severity", decision.Severity)
	return nil
}
