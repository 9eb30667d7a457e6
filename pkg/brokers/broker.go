package brokers

import (
	"context"
	"fmt"
	"strings"
)

// MessageBroker - очередь, в которую публикуются результаты запросов.
// Поддерживает RabbitMQ и Apache Kafka.
type MessageBroker interface {
	// Connect устанавливает соединение с брокером
	Connect(ctx context.Context) error

	// Close закрывает соединение с брокером
	Close() error

	// Send отправляет сообщение. key используется как ключ сообщения Kafka
	// и как message id в RabbitMQ, может быть пустым.
	Send(ctx context.Context, key string, body []byte) error

	// Ping проверяет доступность брокера
	Ping(ctx context.Context) error

	// GetBrokerType возвращает тип брокера (rabbitmq, kafka)
	GetBrokerType() string
}

// Config содержит параметры подключения к message broker
type Config struct {
	Type       string `yaml:"type"`        // rabbitmq, kafka
	Host       string `yaml:"host"`        // Хост (для RabbitMQ)
	Port       int    `yaml:"port"`        // Порт (для RabbitMQ)
	User       string `yaml:"user"`        // Пользователь (для RabbitMQ)
	Password   string `yaml:"password"`    // Пароль (для RabbitMQ)
	Queue      string `yaml:"queue"`       // Имя очереди (для RabbitMQ)
	VHost      string `yaml:"vhost"`       // Virtual host (для RabbitMQ, по умолчанию "/")
	UseTLS     bool   `yaml:"use_tls"`     // amqps://
	Exchange   string `yaml:"exchange"`    // RabbitMQ exchange (пустая строка = default exchange)
	RoutingKey string `yaml:"routing_key"` // RabbitMQ routing key (если пустой, используется имя очереди)

	// Параметры очереди RabbitMQ должны совпадать с существующей очередью
	Durable    bool `yaml:"durable"`
	AutoDelete bool `yaml:"auto_delete"`
	Exclusive  bool `yaml:"exclusive"`

	// Kafka
	Brokers []string `yaml:"brokers"` // ["localhost:9092", "localhost:9093"]
	Topic   string   `yaml:"topic"`
}

// New создает MessageBroker по типу из конфигурации
func New(cfg Config) (MessageBroker, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "rabbitmq", "amqp":
		return NewRabbitMQ(cfg)
	case "kafka":
		return NewKafka(cfg)
	default:
		return nil, fmt.Errorf("unsupported broker type: %s (supported: rabbitmq, kafka)", cfg.Type)
	}
}
