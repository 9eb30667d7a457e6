package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/ruslano69/dbclean/pkg/adapters"
	"github.com/ruslano69/dbclean/pkg/adapters/base"
	"github.com/ruslano69/dbclean/pkg/core/sqlgen"
)

// Compile-time check: Adapter должен реализовывать интерфейс adapters.Adapter
var _ adapters.Adapter = (*Adapter)(nil)

// Регистрация адаптера в глобальной фабрике
func init() {
	adapters.Register("postgres", func() adapters.Adapter {
		return &Adapter{SQLAdapter: base.NewSQLAdapter("postgres", sqlgen.Postgres)}
	})
}

// Adapter представляет адаптер для работы с PostgreSQL
// Соединения держит pgxpool, наружу отдается *sql.DB поверх того же пула.
type Adapter struct {
	base.SQLAdapter

	pool   *pgxpool.Pool
	schema string // public, custom, etc.
}

// Connect устанавливает подключение к PostgreSQL
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	// Парсим connection string
	config, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to parse connection string: %w", err)
	}

	// Настраиваем pool из конфига
	if cfg.MaxConns > 0 {
		config.MaxConns = int32(cfg.MaxConns)
	} else {
		config.MaxConns = 10 // default
	}

	if cfg.MinConns > 0 {
		config.MinConns = int32(cfg.MinConns)
	} else {
		config.MinConns = 2 // default
	}

	if cfg.Timeout > 0 {
		config.ConnConfig.ConnectTimeout = cfg.Timeout
	}

	a.schema = cfg.Schema
	if a.schema == "" {
		a.schema = "public" // default schema
	}
	// Неквалифицированные имена таблиц ищутся в выбранной схеме
	config.ConnConfig.RuntimeParams["search_path"] = a.schema

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Лимиты уже заданы в pgxpool, database/sql их не дублирует
	db := stdlib.OpenDBFromPool(pool)
	if err := a.Attach(ctx, db, adapters.Config{Type: cfg.Type, DSN: cfg.DSN, Schema: a.schema, Timeout: cfg.Timeout}); err != nil {
		pool.Close()
		return err
	}

	a.pool = pool
	return nil
}

// Close закрывает *sql.DB и connection pool
func (a *Adapter) Close(ctx context.Context) error {
	err := a.SQLAdapter.Close(ctx)
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	return err
}

// Schema возвращает текущую схему
func (a *Adapter) Schema() string {
	return a.schema
}

// GetDatabaseVersion возвращает версию PostgreSQL
func (a *Adapter) GetDatabaseVersion(ctx context.Context) (string, error) {
	version, err := a.QueryString(ctx, "SELECT version()")
	if err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

// TableExists проверяет существование таблицы или представления (schema.table или в текущей схеме)
func (a *Adapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = $1
		  AND table_name = $2
	`

	schema, table := base.SplitTableName(tableName, a.schema)
	exists, err := a.QueryExists(ctx, query, schema, table)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return exists, nil
}

// GetTableNames возвращает список всех таблиц в текущей схеме
func (a *Adapter) GetTableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	tables, err := a.QueryStrings(ctx, query, a.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}
	return tables, nil
}
