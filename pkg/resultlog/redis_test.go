package resultlog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisPublisher_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	p := NewRedisPublisher(Config{Name: "daily_users", Address: mr.Addr(), TTL: 60})
	defer p.Close()

	sub := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer sub.Close()
	pubsub := sub.Subscribe(ctx, EventChannel("daily_users"))
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	outcome := NewOutcome("", time.Now().Add(-time.Second), nil)
	outcome.DBType = "sqlite"
	outcome.Rows = 3
	if err := p.Publish(ctx, outcome); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	raw, err := mr.Get(StateKey("daily_users"))
	if err != nil {
		t.Fatalf("State key missing: %v", err)
	}
	var stored Outcome
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if stored.QueryName != "daily_users" || stored.Status != StatusSuccess || stored.Rows != 3 {
		t.Errorf("Unexpected stored outcome: %+v", stored)
	}
	if stored.DurationMs < 1000 {
		t.Errorf("Expected duration >= 1000ms, got %d", stored.DurationMs)
	}

	if ttl := mr.TTL(StateKey("daily_users")); ttl != 60*time.Second {
		t.Errorf("Expected TTL 60s, got %v", ttl)
	}

	msgCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	msg, err := pubsub.ReceiveMessage(msgCtx)
	if err != nil {
		t.Fatalf("ReceiveMessage failed: %v", err)
	}
	if msg.Payload != raw {
		t.Errorf("Event payload differs from state: %s vs %s", msg.Payload, raw)
	}
}

func TestRedisPublisher_FailedOutcome(t *testing.T) {
	mr := miniredis.RunT(t)
	p := NewRedisPublisher(Config{Address: mr.Addr()})
	defer p.Close()

	outcome := NewOutcome("broken", time.Now(), errors.New("no such table: missing"))
	if err := p.Publish(context.Background(), outcome); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	raw, err := mr.Get(StateKey("broken"))
	if err != nil {
		t.Fatalf("State key missing: %v", err)
	}
	var stored Outcome
	json.Unmarshal([]byte(raw), &stored)
	if stored.Status != StatusFailed || stored.Error == nil || *stored.Error != "no such table: missing" {
		t.Errorf("Unexpected stored outcome: %+v", stored)
	}
	if mr.TTL(StateKey("broken")) != 0 {
		t.Error("Expected no TTL when ttl is 0")
	}
}

func TestRedisPublisher_RequiresName(t *testing.T) {
	mr := miniredis.RunT(t)
	p := NewRedisPublisher(Config{Address: mr.Addr()})
	defer p.Close()

	if err := p.Publish(context.Background(), Outcome{}); err == nil {
		t.Fatal("Expected error without query name")
	}
}

func TestRedisPublisher_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	p := NewRedisPublisher(Config{Name: "q", Address: addr})
	defer p.Close()

	if err := p.Publish(context.Background(), NewOutcome("q", time.Now(), nil)); err == nil {
		t.Fatal("Expected error when redis is down")
	}
}
