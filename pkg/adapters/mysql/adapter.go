package mysql

import (
	"context"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"github.com/ruslano69/dbclean/pkg/adapters"
	"github.com/ruslano69/dbclean/pkg/adapters/base"
	"github.com/ruslano69/dbclean/pkg/core/sqlgen"
)

// AdapterType идентификатор MySQL адаптера
const AdapterType = "mysql"

var _ adapters.Adapter = (*Adapter)(nil)

// Adapter реализует adapters.Adapter для MySQL
type Adapter struct {
	base.SQLAdapter
}

func init() {
	// Регистрируем MySQL адаптер в фабрике
	adapters.Register(AdapterType, func() adapters.Adapter {
		return &Adapter{SQLAdapter: base.NewSQLAdapter(AdapterType, sqlgen.MySQL)}
	})
}

// Connect подключается к MySQL базе данных
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	return a.Open(ctx, "mysql", cfg)
}

// GetDatabaseVersion возвращает версию MySQL
func (a *Adapter) GetDatabaseVersion(ctx context.Context) (string, error) {
	version, err := a.QueryString(ctx, "SELECT VERSION()")
	if err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

// GetTableNames возвращает список всех таблиц в текущей базе данных
func (a *Adapter) GetTableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	tables, err := a.QueryStrings(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	return tables, nil
}

// TableExists проверяет существование таблицы (db.table или в текущей базе)
func (a *Adapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = COALESCE(NULLIF(?, ''), DATABASE())
		  AND table_name = ?
	`

	schema, table := base.SplitTableName(tableName, "")
	exists, err := a.QueryExists(ctx, query, schema, table)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return exists, nil
}
