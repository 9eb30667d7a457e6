// Package base содержит общую часть адаптеров поверх database/sql:
// открытие пула, настройку лимитов соединений, Ping/Close и чтение
// служебных запросов каталога. Специфичные адаптеры встраивают SQLAdapter
// и добавляют только запросы версии и списка таблиц своей СУБД.
package base

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ruslano69/dbclean/pkg/adapters"
	"github.com/ruslano69/dbclean/pkg/core/sqlgen"
)

// SQLAdapter - общая реализация lifecycle методов адаптера
type SQLAdapter struct {
	db      *sql.DB
	dbType  string
	dialect sqlgen.Dialect
	config  adapters.Config
}

// NewSQLAdapter создает SQLAdapter для типа СУБД и диалекта
func NewSQLAdapter(dbType string, dialect sqlgen.Dialect) SQLAdapter {
	return SQLAdapter{dbType: dbType, dialect: dialect}
}

// Open открывает пул database/sql, применяет лимиты из cfg и проверяет соединение
func (a *SQLAdapter) Open(ctx context.Context, driverName string, cfg adapters.Config) error {
	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open %s database: %w", a.dbType, err)
	}

	return a.Attach(ctx, db, cfg)
}

// Attach принимает уже открытый пул (например из pgxpool) и проверяет соединение
func (a *SQLAdapter) Attach(ctx context.Context, db *sql.DB, cfg adapters.Config) error {
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(cfg.MinConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping %s database: %w", a.dbType, err)
	}

	a.db = db
	a.config = cfg
	return nil
}

// Close закрывает пул соединений
func (a *SQLAdapter) Close(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// Ping проверяет доступность БД
func (a *SQLAdapter) Ping(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("%s adapter is not connected", a.dbType)
	}
	return a.db.PingContext(ctx)
}

// DB возвращает пул соединений
func (a *SQLAdapter) DB() *sql.DB {
	return a.db
}

// Dialect возвращает диалект SQL
func (a *SQLAdapter) Dialect() sqlgen.Dialect {
	return a.dialect
}

// GetDatabaseType возвращает тип СУБД
func (a *SQLAdapter) GetDatabaseType() string {
	return a.dbType
}

// Config возвращает конфигурацию, с которой был открыт адаптер
func (a *SQLAdapter) Config() adapters.Config {
	return a.config
}

// QueryString выполняет запрос, возвращающий одно строковое значение
func (a *SQLAdapter) QueryString(ctx context.Context, query string, args ...any) (string, error) {
	if a.db == nil {
		return "", fmt.Errorf("%s adapter is not connected", a.dbType)
	}

	var value string
	if err := a.db.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		return "", err
	}
	return value, nil
}

// QueryStrings выполняет запрос и собирает первую колонку всех строк
func (a *SQLAdapter) QueryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	if a.db == nil {
		return nil, fmt.Errorf("%s adapter is not connected", a.dbType)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}

	return values, rows.Err()
}

// QueryExists выполняет COUNT(*) запрос и возвращает true если результат > 0
func (a *SQLAdapter) QueryExists(ctx context.Context, query string, args ...any) (bool, error) {
	if a.db == nil {
		return false, fmt.Errorf("%s adapter is not connected", a.dbType)
	}

	var count int
	if err := a.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// SplitTableName разделяет "schema.table". Без схемы возвращается defaultSchema.
func SplitTableName(name, defaultSchema string) (schema, table string) {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, "."); i >= 0 {
		return strings.TrimSpace(name[:i]), strings.TrimSpace(name[i+1:])
	}
	return defaultSchema, name
}
