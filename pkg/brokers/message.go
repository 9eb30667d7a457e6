package brokers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ruslano69/dbclean/pkg/executor"
)

// ContentType - формат тела публикуемых сообщений
const ContentType = "application/json"

// ResultMessage - результат запроса, публикуемый в брокер
type ResultMessage struct {
	Query       string           `json:"query"`
	DBType      string           `json:"db_type"`
	SQL         string           `json:"sql"`
	Result      *executor.Result `json:"result"`
	Checksum    string           `json:"checksum,omitempty"`
	PublishedAt time.Time        `json:"published_at"`
}

// Encode сериализует сообщение в JSON. PublishedAt проставляется если не задан.
func (m *ResultMessage) Encode() ([]byte, error) {
	if m.PublishedAt.IsZero() {
		m.PublishedAt = time.Now().UTC()
	}
	if m.Result == nil {
		m.Result = &executor.Result{Columns: []string{}, Rows: []executor.Row{}}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result message: %w", err)
	}
	return data, nil
}

// PublishResult кодирует результат и отправляет его в брокер
func PublishResult(ctx context.Context, broker MessageBroker, msg *ResultMessage) error {
	body, err := msg.Encode()
	if err != nil {
		return err
	}
	if err := broker.Send(ctx, msg.Query, body); err != nil {
		return err
	}

	log.Info().
		Str("broker", broker.GetBrokerType()).
		Str("query", msg.Query).
		Int("rows", msg.Result.Len()).
		Int("bytes", len(body)).
		Msg("result published")
	return nil
}

// messageKey - ключ сообщения: "dbclean-<name>" или "dbclean-<unix nano>"
func messageKey(name string) string {
	if name == "" {
		return fmt.Sprintf("dbclean-%d", time.Now().UnixNano())
	}
	return "dbclean-" + name
}
