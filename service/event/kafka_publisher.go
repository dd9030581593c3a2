/*
 * @module service/event/kafka_publisher
 * @description Kafka事件发布器，将流水线运行事件写入消息总线供下游系统订阅
 * @architecture 适配器模式 - 封装 segmentio/kafka-go 生产者
 * @stateFlow 事件构造 -> JSON序列化 -> 写入topic
 * @rules KAFKA_BROKERS 未配置时发布器为 nil，调用方据此跳过发布；发布失败不阻断流水线
 * @dependencies github.com/segmentio/kafka-go, github.com/google/uuid
 * @refs service/pipeline/pipeline_service.go, service/init.go
 */

package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// KafkaPublisher Kafka事件发布器
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaPublisherFromEnv 按环境变量创建Kafka事件发布器
// KAFKA_BROKERS 未配置时返回 nil，表示禁用消息总线发布
func NewKafkaPublisherFromEnv() *KafkaPublisher {
	brokersEnv := os.Getenv("KAFKA_BROKERS")
	if brokersEnv == "" {
		slog.Info("KAFKA_BROKERS 未配置，事件总线发布已禁用")
		return nil
	}

	brokers := strings.Split(brokersEnv, ",")
	topic := getEnvWithDefault("KAFKA_TOPIC", "logistics-intel-events")

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 100 * time.Millisecond,
	}

	slog.Info("Kafka事件发布器初始化成功", "brokers", brokers, "topic", topic)

	return &KafkaPublisher{
		writer: writer,
		topic:  topic,
	}
}

// Publish 发布一条事件消息
// 消息体包含事件类型、事件ID、时间戳和业务数据
func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, data map[string]interface{}) error {
	payload := map[string]interface{}{
		"event_id":   uuid.New().String(),
		"event_type": eventType,
		"timestamp":  time.Now().Format(time.RFC3339),
		"data":       data,
	}

	valueBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化事件消息失败: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(eventType),
		Value: valueBytes,
		Time:  time.Now(),
	}

	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		return fmt.Errorf("发布事件到Kafka失败: %w", err)
	}

	return nil
}

// Close 关闭Kafka生产者
func (p *KafkaPublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
