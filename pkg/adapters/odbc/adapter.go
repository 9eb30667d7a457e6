// Package odbc подключает СУБД, для которых нет нативного Go драйвера
// (Oracle, DB2, Informix), через системный ODBC менеджер.
// Каталог читается через ANSI INFORMATION_SCHEMA; если драйвер его не
// поддерживает, список таблиц берется из Oracle словаря ALL_TABLES.
package odbc

import (
	"context"
	"fmt"

	_ "github.com/alexbrainman/odbc" // ODBC driver

	"github.com/ruslano69/dbclean/pkg/adapters"
	"github.com/ruslano69/dbclean/pkg/adapters/base"
	"github.com/ruslano69/dbclean/pkg/core/sqlgen"
)

// AdapterType идентификатор ODBC адаптера
const AdapterType = "odbc"

var _ adapters.Adapter = (*Adapter)(nil)

func init() {
	adapters.Register(AdapterType, func() adapters.Adapter {
		return &Adapter{SQLAdapter: base.NewSQLAdapter(AdapterType, sqlgen.ODBC)}
	})
}

// Adapter реализует adapters.Adapter поверх ODBC
type Adapter struct {
	base.SQLAdapter

	schema string
}

// Connect подключается по ODBC connection string ("DSN=...;UID=...;PWD=...")
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	if err := a.Open(ctx, "odbc", cfg); err != nil {
		return err
	}
	a.schema = cfg.Schema
	return nil
}

// GetDatabaseVersion возвращает версию сервера.
// Универсального запроса нет, пробуем по очереди Oracle и ANSI варианты.
func (a *Adapter) GetDatabaseVersion(ctx context.Context) (string, error) {
	queries := []string{
		"SELECT banner FROM v$version WHERE ROWNUM = 1",
		"SELECT version()",
		"SELECT @@VERSION",
	}

	var lastErr error
	for _, q := range queries {
		version, err := a.QueryString(ctx, q)
		if err == nil {
			return version, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("failed to get version: %w", lastErr)
}

// GetTableNames возвращает список таблиц схемы
func (a *Adapter) GetTableNames(ctx context.Context) ([]string, error) {
	ansi := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	args := []any{}
	if a.schema != "" {
		ansi = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		  AND table_schema = ?
		ORDER BY table_name
	`
		args = append(args, a.schema)
	}

	tables, err := a.QueryStrings(ctx, ansi, args...)
	if err == nil {
		return tables, nil
	}

	oracle := "SELECT table_name FROM user_tables ORDER BY table_name"
	if a.schema != "" {
		oracle = "SELECT table_name FROM all_tables WHERE owner = ? ORDER BY table_name"
	}
	tables, oerr := a.QueryStrings(ctx, oracle, args...)
	if oerr != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}
	return tables, nil
}

// TableExists проверяет существование таблицы пробным запросом без строк
func (a *Adapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	db := a.DB()
	if db == nil {
		return false, fmt.Errorf("odbc adapter is not connected")
	}

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+sqlgen.ODBC.QuoteIdentifier(tableName)+" WHERE 1=0")
	if err != nil {
		return false, nil
	}
	rows.Close()
	return true, nil
}
