/*
 * @module service/notification/notifier
 * @description 告警通知发布器：将告警决策写入Kafka主题，渠道分发（邮件/Webhook/短信）由下游消费方负责
 * @architecture 适配器模式 - 封装Kafka生产者，对外只暴露决策发布
 * @documentReference ai_docs/masterdata_audit_req.md
 * @stateFlow 告警决策 -> 消息序列化 -> Kafka发布
 * @rules 只发布shouldAlert为真的决策；发布失败记录日志但不影响审计主流程
 * @dependencies github.com/segmentio/kafka-go
 * @refs service/audit/alert_evaluator.go, service/scheduler/audit_scheduler.go
 */

package notification

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"masterdata-audit-service/service/audit"
)

const defaultAlertTopic = "audit-alerts"

// AlertNotifier 告警通知发布器接口
type AlertNotifier interface {
	// NotifyAlert 发布告警决策，决策不需要告警时直接跳过
	NotifyAlert(ctx context.Context, decision *audit.AlertDecision) error
	// Close 关闭底层连接
	Close() error
}

// KafkaAlertNotifier 基于Kafka的告警发布实现
type KafkaAlertNotifier struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaAlertNotifier 从环境变量创建Kafka告警发布器
// KAFKA_BROKERS未配置时返回nil，调用方按未启用通知处理
func NewKafkaAlertNotifier() *KafkaAlertNotifier {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		slog.Info("未配置KAFKA_BROKERS，告警通知发布未启用")
		return nil
	}

	topic := os.Getenv("KAFKA_ALERT_TOPIC")
	if topic == "" {
		topic = defaultAlertTopic
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(brokers, ",")...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 10 * time.Second,
	}

	slog.Info("Kafka告警发布器初始化完成", "brokers", brokers, "topic", topic)
	return &KafkaAlertNotifier{writer: writer, topic: topic}
}

// alertMessage 发布到主题的消息体
type alertMessage struct {
	EntityType  string    `json:"entity_type"`
	Score       float64   `json:"score"`
	Severity    string    `json:"severity"`
	ShouldAlert bool      `json:"should_alert"`
	SnapshotID  string    `json:"snapshot_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// NotifyAlert 发布告警决策
func (n *KafkaAlertNotifier) NotifyAlert(ctx context.Context, decision *audit.AlertDecision) error {
	if !decision.ShouldAlert {
		return nil
	}

	payload, err := json.Marshal(alertMessage{
		EntityType:  decision.EntityType,
		Score:       decision.Score,
		Severity:    decision.Severity,
		ShouldAlert: decision.ShouldAlert,
		SnapshotID:  decision.SnapshotID,
		OccurredAt:  time.Now(),
	})
	if err != nil {
		return err
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(decision.EntityType),
		Value: payload,
	})
	if err != nil {
		slog.Error("告警消息发布失败",
			"entity_type", decision.EntityType,
			"severity", decision.Severity,
			"error", err)
		return err
	}

	slog.Info("告警消息已发布",
		"entity_type", decision.EntityType,
		"severity", decision.Severity,
		"score", decision.Score)
	return nil
}

// Close 关闭生产者
func (n *KafkaAlertNotifier) Close() error {
	return n.writer.Close()
}
