package mssql

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/denisenkom/go-mssqldb" // MS SQL Server driver

	"github.com/ruslano69/dbclean/pkg/adapters"
	"github.com/ruslano69/dbclean/pkg/adapters/base"
	"github.com/ruslano69/dbclean/pkg/core/sqlgen"
)

// AdapterType is the identifier for MS SQL Server adapter.
const AdapterType = "mssql"

// Драйвер "sqlserver" принимает параметры @p1..@pN, как их генерирует sqlgen.MSSQL
const driverName = "sqlserver"

var _ adapters.Adapter = (*Adapter)(nil)

// Adapter implements adapters.Adapter for Microsoft SQL Server.
type Adapter struct {
	base.SQLAdapter

	schema        string
	serverVersion int // 11 = 2012, 13 = 2016, 15 = 2019, 16 = 2022
}

func init() {
	adapters.Register(AdapterType, func() adapters.Adapter {
		return &Adapter{SQLAdapter: base.NewSQLAdapter(AdapterType, sqlgen.MSSQL)}
	})
}

// Connect establishes connection to MS SQL Server.
func (a *Adapter) Connect(ctx context.Context, cfg adapters.Config) error {
	if err := a.Open(ctx, driverName, cfg); err != nil {
		return err
	}

	a.schema = cfg.Schema
	if a.schema == "" {
		a.schema = "dbo" // Default schema
	}
	return nil
}

// ServerVersion returns detected major version (0 until GetDatabaseVersion is called).
func (a *Adapter) ServerVersion() int {
	return a.serverVersion
}

// GetDatabaseVersion returns SQL Server product version.
func (a *Adapter) GetDatabaseVersion(ctx context.Context) (string, error) {
	version, err := a.QueryString(ctx, "SELECT CAST(SERVERPROPERTY('ProductVersion') AS NVARCHAR(128))")
	if err != nil {
		return "", fmt.Errorf("failed to get server version: %w", err)
	}

	a.serverVersion = parseServerVersion(version)
	return "Microsoft SQL Server " + version, nil
}

// parseServerVersion parses SQL Server version string to major version number.
// Examples:
//   - "11.0.2100.60" → 11 (SQL Server 2012)
//   - "15.0.2000.5"  → 15 (SQL Server 2019)
func parseServerVersion(version string) int {
	parts := strings.Split(version, ".")
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	return major
}

// GetTableNames returns all table names in the current schema.
func (a *Adapter) GetTableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = @p1
		  AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
	`

	tables, err := a.QueryStrings(ctx, query, a.schema)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	return tables, nil
}

// TableExists checks if a table or view exists (schema.table or the current schema).
func (a *Adapter) TableExists(ctx context.Context, tableName string) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = @p1
		  AND TABLE_NAME = @p2
	`

	schema, table := base.SplitTableName(tableName, a.schema)
	exists, err := a.QueryExists(ctx, query, schema, table)
	if err != nil {
		return false, fmt.Errorf("failed to check table existence: %w", err)
	}
	return exists, nil
}
