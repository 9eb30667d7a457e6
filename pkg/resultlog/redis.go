// Package resultlog публикует итог каждого запуска запроса в Redis,
// чтобы внешний оркестратор мог опросить или получить событие.
package resultlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Статусы запуска
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Config - секция result_log конфигурационного файла
type Config struct {
	Enabled  bool   `yaml:"enabled"`
	Name     string `yaml:"name"`    // имя запроса в ключах Redis
	Address  string `yaml:"address"` // host:port
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      int    `yaml:"ttl"` // секунды жизни ключа состояния, 0 - без истечения
}

// Outcome - состояние запуска, публикуемое в Redis.
//
// Redis-ключи:
//
//	SET  dbclean:query:<name>:state  <JSON>  EX <ttl>  - последнее состояние для опроса
//	PUB  dbclean:query:<name>                          - событие для подписчиков
type Outcome struct {
	QueryName   string    `json:"query_name"`
	DBType      string    `json:"db_type"`
	SQL         string    `json:"sql"`
	User        string    `json:"user,omitempty"`
	Status      string    `json:"status"` // "success" | "failed"
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	DurationMs  int64     `json:"duration_ms"`
	Rows        int       `json:"rows"`
	RowsClean   int       `json:"rows_clean"`
	RowsWritten int64     `json:"rows_written,omitempty"`
	ExportPath  string    `json:"export_path,omitempty"`
	Checksum    string    `json:"checksum,omitempty"`
	Error       *string   `json:"error,omitempty"`
}

// NewOutcome заполняет статус, длительность и ошибку по результату запуска
func NewOutcome(name string, started time.Time, execErr error) Outcome {
	finished := time.Now()
	o := Outcome{
		QueryName:  name,
		Status:     StatusSuccess,
		StartedAt:  started,
		FinishedAt: finished,
		DurationMs: finished.Sub(started).Milliseconds(),
	}
	if execErr != nil {
		o.Status = StatusFailed
		msg := execErr.Error()
		o.Error = &msg
	}
	return o
}

// RedisPublisher публикует результат выполнения запроса в Redis
type RedisPublisher struct {
	client *redis.Client
	config Config
}

// NewRedisPublisher создает новый Redis publisher на основе конфигурации
func NewRedisPublisher(config Config) *RedisPublisher {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})
	return &RedisPublisher{client: client, config: config}
}

// StateKey возвращает ключ последнего состояния
func StateKey(name string) string {
	return fmt.Sprintf("dbclean:query:%s:state", name)
}

// EventChannel возвращает канал событий
func EventChannel(name string) string {
	return fmt.Sprintf("dbclean:query:%s", name)
}

// Publish публикует итог запуска:
//   - SET dbclean:query:<name>:state <JSON> EX <ttl>  → для опроса (polling)
//   - PUBLISH dbclean:query:<name> <JSON>              → для подписки (pub/sub)
//
// Вызывается независимо от результата выполнения (success или failed).
func (p *RedisPublisher) Publish(ctx context.Context, outcome Outcome) error {
	name := outcome.QueryName
	if name == "" {
		name = p.config.Name
		outcome.QueryName = name
	}
	if name == "" {
		return fmt.Errorf("query name is required for result log")
	}

	payload, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	ttl := time.Duration(p.config.TTL) * time.Second

	// SET ключ с TTL - оркестратор может GET для получения последнего состояния
	if err := p.client.Set(ctx, StateKey(name), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}

	// PUBLISH событие - оркестратор может SUBSCRIBE
	if err := p.client.Publish(ctx, EventChannel(name), payload).Err(); err != nil {
		return fmt.Errorf("redis PUBLISH failed: %w", err)
	}

	return nil
}

// Close закрывает соединение с Redis
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
