package brokers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Kafka публикует сообщения в topic Apache Kafka
type Kafka struct {
	config Config
	writer *kafka.Writer
}

// NewKafka создает новый Kafka брокер
func NewKafka(cfg Config) (*Kafka, error) {
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic name is required for Kafka")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker address is required for Kafka")
	}

	return &Kafka{
		config: cfg,
	}, nil
}

// Connect проверяет доступность topic и создает Writer
func (k *Kafka) Connect(ctx context.Context) error {
	if err := k.Ping(ctx); err != nil {
		return err
	}

	k.writer = &kafka.Writer{
		Addr:         kafka.TCP(k.config.Brokers...),
		Topic:        k.config.Topic,
		Balancer:     &kafka.Hash{}, // один запрос - одна партиция
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
	}
	return nil
}

// Close закрывает Writer
func (k *Kafka) Close() error {
	if k.writer == nil {
		return nil
	}
	if err := k.writer.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	k.writer = nil
	return nil
}

// Send отправляет сообщение в Kafka topic
func (k *Kafka) Send(ctx context.Context, key string, body []byte) error {
	if k.writer == nil {
		return fmt.Errorf("not connected to Kafka")
	}

	msg := kafka.Message{
		Key:     []byte(messageKey(key)),
		Value:   body,
		Time:    time.Now(),
		Headers: kafkaHeaders(),
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}
	return nil
}

// Ping проверяет что хотя бы один broker отвечает и topic существует
func (k *Kafka) Ping(ctx context.Context) error {
	var errs []error
	for _, addr := range k.config.Brokers {
		conn, err := kafka.DialContext(ctx, "tcp", addr)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", addr, err))
			continue
		}
		_, err = conn.ReadPartitions(k.config.Topic)
		conn.Close()
		if err != nil {
			return fmt.Errorf("failed to read topic partitions: %w", err)
		}
		return nil
	}
	return fmt.Errorf("failed to dial Kafka broker: %w", errors.Join(errs...))
}

// GetBrokerType возвращает тип брокера
func (k *Kafka) GetBrokerType() string {
	return "kafka"
}

// Stats возвращает статистику writer
func (k *Kafka) Stats() kafka.WriterStats {
	if k.writer == nil {
		return kafka.WriterStats{}
	}
	return k.writer.Stats()
}

func kafkaHeaders() []kafka.Header {
	return []kafka.Header{
		{Key: "content-type", Value: []byte(ContentType)},
		{Key: "producer", Value: []byte("dbclean")},
	}
}
