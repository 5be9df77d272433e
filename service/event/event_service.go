/*
 * @module service/event/event_service
 * @description 审计事件推送服务：监听快照表的数据库通知，通过SSE推送给仪表板客户端
 * @architecture 事件驱动架构 - 业务服务层
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 快照落库 -> 触发器NOTIFY -> pq监听 -> SSE分发
 * @rules 推送尽力而为，客户端掉线直接清理；事件丢失不影响审计数据本身
 * @dependencies github.com/lib/pq, gorm.io/gorm
 * @refs service/audit/history_service.go, api/controllers/event_controller.go
 */

package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// 快照创建事件的通知通道名
const snapshotChannel = "audit_snapshot_created"

// SnapshotEvent 快照创建事件
type SnapshotEvent struct {
	SnapshotID   string    `json:"snapshot_id"`
	EntityType   string    `json:"entity_type"`
	OverallScore float64   `json:"overall_score"`
	AuditedAt    time.Time `json:"audited_at"`
}

// SSEClient SSE客户端连接
type SSEClient struct {
	ID      string
	Channel chan *SnapshotEvent
	Done    chan struct{}
}

// AuditEventService 审计事件推送服务
type AuditEventService struct {
	db       *gorm.DB
	listener *pq.Listener
	clients  map[string]*SSEClient
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewAuditEventService 创建审计事件推送服务
func NewAuditEventService(db *gorm.DB) *AuditEventService {
	ctx, cancel := context.WithCancel(context.Background())
	return &AuditEventService{
		db:      db,
		clients: make(map[string]*SSEClient),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start 创建数据库触发器并开始监听
// DATABASE_URL未配置时跳过监听，SSE接口仍可用但收不到数据库事件
func (s *AuditEventService) Start() error {
	if err := s.ensureNotifyTrigger(); err != nil {
		return fmt.Errorf("创建快照通知触发器失败: %w", err)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		slog.Warn("未配置DATABASE_URL，快照事件监听未启用")
		return nil
	}

	s.listener = pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			slog.Error("快照事件监听异常", "event", ev, "error", err)
		}
	})
	if err := s.listener.Listen(snapshotChannel); err != nil {
		return fmt.Errorf("监听通道 %s 失败: %w", snapshotChannel, err)
	}

	go s.dispatchLoop()
	slog.Info("快照事件监听已启动", "channel", snapshotChannel)
	return nil
}

// Stop 停止监听并断开所有客户端
func (s *AuditEventService) Stop() {
	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, client := range s.clients {
		close(client.Done)
		delete(s.clients, id)
	}
}

// ensureNotifyTrigger 在快照表上创建NOTIFY触发器，重复创建是幂等的
func (s *AuditEventService) ensureNotifyTrigger() error {
	createFunc := `
CREATE OR REPLACE FUNCTION notify_audit_snapshot_created() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify('audit_snapshot_created', json_build_object(
		'snapshot_id', NEW.id,
		'entity_type', NEW.entity_type,
		'overall_score', NEW.overall_score,
		'audited_at', NEW.audited_at
	)::text);
	RETURN NEW;
END;
$$ LANGUAGE plpgsql;`

	createTrigger := `
DROP TRIGGER IF EXISTS trg_audit_snapshot_created ON quality_audit_snapshots;
CREATE TRIGGER trg_audit_snapshot_created
	AFTER INSERT ON quality_audit_snapshots
	FOR EACH ROW EXECUTE FUNCTION notify_audit_snapshot_created();`

	if err := s.db.Exec(createFunc).Error; err != nil {
		return err
	}
	return s.db.Exec(createTrigger).Error
}

// dispatchLoop 将数据库通知分发给所有SSE客户端
func (s *AuditEventService) dispatchLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case notice := <-s.listener.Notify:
			if notice == nil {
				// 连接重建后pq会发送nil通知
				continue
			}
			var event SnapshotEvent
			if err := json.Unmarshal([]byte(notice.Extra), &event); err != nil {
				slog.Error("快照事件解析失败", "payload", notice.Extra, "error", err)
				continue
			}
			s.broadcast(&event)
		case <-time.After(90 * time.Second):
			// 长时间无事件时探活，保持监听连接健康
			if err := s.listener.Ping(); err != nil {
				slog.Error("快照事件监听探活失败", "error", err)
			}
		}
	}
}

// broadcast 推送事件到全部客户端，发送阻塞的客户端直接跳过
func (s *AuditEventService) broadcast(event *SnapshotEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, client := range s.clients {
		select {
		case client.Channel <- event:
		default:
		}
	}
}

// Register 注册SSE客户端
func (s *AuditEventService) Register() *SSEClient {
	client := &SSEClient{
		ID:      uuid.New().String(),
		Channel: make(chan *SnapshotEvent, 16),
		Done:    make(chan struct{}),
	}
	s.mu.Lock()
	s.clients[client.ID] = client
	s.mu.Unlock()
	slog.Info("SSE客户端已连接", "client_id", client.ID)
	return client
}

// Unregister 注销SSE客户端
func (s *AuditEventService) Unregister(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if client, ok := s.clients[id]; ok {
		close(client.Done)
		delete(s.clients, id)
		slog.Info("SSE客户端已断开", "client_id", id)
	}
}
