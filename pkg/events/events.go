package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"github.com/joemerrillis/sniffr/config"
)

// 领域事件类型
const (
	TypeWalksSeeded           = "walks.seeded"
	TypeBoardingStatusChanged = "boarding.status_changed"
)

// Publisher 领域事件发布接口
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload interface{}) error
	Close() error
}

// Envelope 事件消息体
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewPublisher 按配置创建发布器，未配置 brokers 时返回 no-op 实现
func NewPublisher(cfg *config.KafkaConfig, logger *zap.Logger) Publisher {
	brokers := SplitBrokers(cfg.Brokers)
	if len(brokers) == 0 {
		logger.Info("未配置 Kafka brokers，领域事件不投递")
		return NopPublisher{}
	}
	logger.Info("领域事件投递已启用", zap.Strings("brokers", brokers), zap.String("topic", cfg.Topic))
	return &kafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  cfg.Topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			WriteTimeout:           5 * time.Second,
		},
	}
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	msg, err := buildMessage(ctx, eventType, key, payload, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("投递事件 %s 失败: %w", eventType, err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

func buildMessage(ctx context.Context, eventType, key string, payload interface{}, now time.Time) (kafka.Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("序列化事件失败: %w", err)
	}
	env := Envelope{
		EventID:    uuid.New().String(),
		EventType:  eventType,
		OccurredAt: now,
		Payload:    raw,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("序列化事件失败: %w", err)
	}

	headers := []kafka.Header{
		{Key: "event_id", Value: []byte(env.EventID)},
		{Key: "event_type", Value: []byte(eventType)},
	}
	headers = injectTraceHeaders(ctx, headers)

	return kafka.Message{
		Key:     []byte(key),
		Value:   body,
		Headers: headers,
		Time:    now,
	}, nil
}

// NopPublisher 丢弃所有事件
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, interface{}) error { return nil }
func (NopPublisher) Close() error                                             { return nil }

// SplitBrokers 解析逗号分隔的 broker 列表
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// ── W3C trace context 透传 ──

func injectTraceHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := &headerCarrier{headers: headers}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	return carrier.headers
}

type headerCarrier struct {
	headers []kafka.Header
}

func (c *headerCarrier) Get(key string) string {
	for _, h := range c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for _, h := range c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

func (c *headerCarrier) Set(key, value string) {
	for i := range c.headers {
		if c.headers[i].Key == key {
			c.headers[i].Value = []byte(value)
			return
		}
	}
	c.headers = append(c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

var _ propagation.TextMapCarrier = (*headerCarrier)(nil)
