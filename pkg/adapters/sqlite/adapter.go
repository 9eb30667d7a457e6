package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/ruslano69/dbclean/pkg/adapters"
	"github.com/ruslano69/dbclean/pkg/adapters/base"
	"github.com/ruslano69/dbclean/pkg/core/sqlgen"
	_ "modernc.org/sqlite"
)

const driverSqlite = "sqlite"

// Compile-time check: Adapter должен реализовывать интерфейс adapters.Adapter
var _ adapters.Adapter = (*Adapter)(nil)

// Регистрация адаптера в глобальной фабрике
func init() {
	adapters.Register("sqlite", func() adapters.Adapter {
		return &Adapter{SQLAdapter: base.NewSQLAdapter("sqlite", sqlgen.SQLite)}
	})
}

// Adapter представляет адаптер для работы с SQLite (modernc.org/sqlite, без cgo)
type Adapter struct {
	base.SQLAdapter
}

// Connect устанавливает подключение к SQLite
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	// In-memory БД живет внутри одного соединения: второе соединение пула
	// увидело бы пустую базу
	if isMemoryDSN(cfg.DSN) {
		cfg.MaxConns = 1
		cfg.MinConns = 1
	}

	if err := a.Open(ctx, driverSqlite, cfg); err != nil {
		return err
	}

	a.applyPragmas(ctx)
	return nil
}

// applyPragmas применяет PRAGMA для чтения больших таблиц
func (a *Adapter) applyPragmas(ctx context.Context) {
	pragmas := []string{
		// ждать освобождения блокировки вместо немедленного SQLITE_BUSY
		"PRAGMA busy_timeout = 5000",

		// 64 MB кеша (по умолчанию ~2 MB)
		"PRAGMA cache_size = -64000",

		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := a.DB().ExecContext(ctx, pragma); err != nil {
			log.Warn().Err(err).Str("pragma", pragma).Msg("sqlite pragma failed")
		}
	}
}

// GetDatabaseVersion возвращает версию SQLite
func (a *Adapter) GetDatabaseVersion(ctx context.Context) (string, error) {
	version, err := a.QueryString(ctx, "SELECT sqlite_version()")
	if err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}
	return "SQLite " + version, nil
}

// GetTableNames возвращает список всех таблиц в БД
func (a *Adapter) GetTableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type='table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	tables, err := a.QueryStrings(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}
	return tables, nil
}

// TableExists проверяет существование таблицы или представления.
// Префикс схемы (main.users) отбрасывается.
func (a *Adapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM sqlite_master
		WHERE type IN ('table', 'view') AND name=?
	`

	_, table := base.SplitTableName(tableName, "")
	exists, err := a.QueryExists(ctx, query, table)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return exists, nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == "" || strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
