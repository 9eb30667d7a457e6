package adapters

import (
	"context"

	"github.com/rs/zerolog/log"
)

// TestConnection проверяет соединение: true если БД отвечает на Ping.
// Ошибка не возвращается, а пишется в лог.
func TestConnection(ctx context.Context, adapter Adapter) bool {
	if adapter == nil {
		log.Error().Msg("connection test failed: adapter is nil")
		return false
	}

	if err := adapter.Ping(ctx); err != nil {
		log.Error().Err(err).Str("db_type", adapter.GetDatabaseType()).Msg("connection test failed")
		return false
	}

	log.Info().Str("db_type", adapter.GetDatabaseType()).Msg("connection test successful")
	return true
}
