package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/joemerrillis/sniffr/config"
)

func TestSplitBrokers(t *testing.T) {
	got := SplitBrokers(" kafka-1:9092, ,kafka-2:9092 ")
	if len(got) != 2 || got[0] != "kafka-1:9092" || got[1] != "kafka-2:9092" {
		t.Errorf("解析结果不符: %v", got)
	}
	if SplitBrokers("") != nil {
		t.Error("空字符串应返回 nil")
	}
}

func TestNewPublisher_NoBrokersIsNop(t *testing.T) {
	p := NewPublisher(&config.KafkaConfig{}, zap.NewNop())
	if _, ok := p.(NopPublisher); !ok {
		t.Fatalf("未配置 brokers 应返回 NopPublisher，实际 %T", p)
	}
	if err := p.Publish(context.Background(), TypeWalksSeeded, "k", map[string]int{"seeded": 1}); err != nil {
		t.Errorf("NopPublisher 不应返回错误: %v", err)
	}
}

func TestBuildMessage(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	msg, err := buildMessage(context.Background(), TypeWalksSeeded, "user-1", map[string]int{"seeded": 2}, now)
	if err != nil {
		t.Fatalf("buildMessage 失败: %v", err)
	}
	if string(msg.Key) != "user-1" {
		t.Errorf("期望 key=user-1，实际=%s", msg.Key)
	}

	carrier := &headerCarrier{headers: msg.Headers}
	if carrier.Get("event_type") != TypeWalksSeeded {
		t.Errorf("期望 event_type 头=%s，实际=%s", TypeWalksSeeded, carrier.Get("event_type"))
	}
	if carrier.Get("event_id") == "" {
		t.Error("event_id 头不应为空")
	}

	var env Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		t.Fatalf("消息体不是合法 JSON: %v", err)
	}
	if !env.OccurredAt.Equal(now) {
		t.Errorf("期望 occurred_at=%v，实际=%v", now, env.OccurredAt)
	}
	if string(env.Payload) != `{"seeded":2}` {
		t.Errorf("payload 不符: %s", env.Payload)
	}
}

func TestHeaderCarrier_SetOverwrites(t *testing.T) {
	c := &headerCarrier{}
	c.Set("traceparent", "a")
	c.Set("traceparent", "b")
	if len(c.Keys()) != 1 || c.Get("traceparent") != "b" {
		t.Errorf("重复 Set 应覆盖，实际 keys=%v", c.Keys())
	}
}
