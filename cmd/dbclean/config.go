package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ruslano69/dbclean/pkg/adapters"
	"github.com/ruslano69/dbclean/pkg/brokers"
	"github.com/ruslano69/dbclean/pkg/export"
	"github.com/ruslano69/dbclean/pkg/logging"
	"github.com/ruslano69/dbclean/pkg/processors"
	"github.com/ruslano69/dbclean/pkg/resultlog"
	"github.com/ruslano69/dbclean/pkg/retry"
)

// Config represents the main configuration structure
type Config struct {
	Database  DatabaseConfig      `yaml:"database"`
	Query     QueryConfig         `yaml:"query,omitempty"`
	Cleaning  []processors.Config `yaml:"cleaning,omitempty"`
	Export    ExportConfig        `yaml:"export,omitempty"`
	Broker    *brokers.Config     `yaml:"broker,omitempty"`
	ResultLog resultlog.Config    `yaml:"result_log,omitempty"`
	S3        *export.S3Config    `yaml:"s3,omitempty"`
	Delivery  retry.Config        `yaml:"delivery,omitempty"`
	Logging   logging.Config      `yaml:"logging"`
	Metrics   MetricsConfig       `yaml:"metrics,omitempty"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Type        string `yaml:"type"`                   // sqlite, postgres, mysql, mssql, odbc
	DSN         string `yaml:"dsn,omitempty"`          // Overrides all fields below
	Host        string `yaml:"host,omitempty"`         // For network databases
	Port        int    `yaml:"port,omitempty"`         // Database port
	Database    string `yaml:"database"`               // Database name or file path
	User        string `yaml:"user,omitempty"`         // Username
	Password    string `yaml:"password,omitempty"`     // Password
	Schema      string `yaml:"schema,omitempty"`       // PostgreSQL/MS SQL schema
	SSLMode     string `yaml:"sslmode,omitempty"`      // PostgreSQL SSL mode
	WindowsAuth bool   `yaml:"windows_auth,omitempty"` // MS SQL Windows authentication
	ODBCDriver  string `yaml:"odbc_driver,omitempty"`  // ODBC driver name, e.g. "Oracle in OraClient19Home1"
	TimeoutSec  int    `yaml:"timeout_sec,omitempty"`  // Connect and query timeout
	MaxConns    int    `yaml:"max_conns,omitempty"`    // Pool size
	SafeMode    *bool  `yaml:"safe_mode,omitempty"`    // Only SELECT/WITH for raw SQL (default: true)
}

// QueryConfig is a saved query used when --query runs without --from
type QueryConfig struct {
	Name       string            `yaml:"name,omitempty"`
	Select     string            `yaml:"select,omitempty"`
	From       string            `yaml:"from,omitempty"`
	Conditions []ConditionConfig `yaml:"conditions,omitempty"`
}

// ConditionConfig is one WHERE condition of a saved query
type ConditionConfig struct {
	Field    string `yaml:"field"`
	Operator string `yaml:"operator"`
	Value    string `yaml:"value"`
}

// ExportConfig contains export settings
type ExportConfig struct {
	Sheet    string `yaml:"sheet,omitempty"`     // XLSX sheet name (default: Sheet1)
	Compress bool   `yaml:"compress,omitempty"`  // Append .zst to CSV exports
	UploadS3 bool   `yaml:"upload_s3,omitempty"` // Upload every export to S3
}

// MetricsConfig contains Prometheus textfile settings
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"` // node_exporter textfile collector path
}

// LoadConfig loads configuration from YAML file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{
		Logging: logging.Config{Level: "info", Console: true},
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.Database.Type == "" {
		return nil, fmt.Errorf("database.type is required")
	}
	if !adapters.IsRegistered(config.Database.Type) {
		return nil, fmt.Errorf("unsupported database type: %s (available types: %v)",
			config.Database.Type, adapters.GetRegisteredTypes())
	}

	return config, nil
}

// SaveConfig saves configuration to YAML file
func SaveConfig(filename string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// CreateSampleConfig creates sample configuration for different database types
func CreateSampleConfig(dbType string) *Config {
	safe := true
	config := &Config{
		Database: DatabaseConfig{
			Type:       dbType,
			TimeoutSec: 30,
			SafeMode:   &safe,
		},
		Query: QueryConfig{
			Name:   "active_users",
			Select: "id, name, email",
			From:   "users",
			Conditions: []ConditionConfig{
				{Field: "status", Operator: "=", Value: "active"},
			},
		},
		Cleaning: []processors.Config{
			{Type: "field_normalizer", Params: map[string]any{
				"fields": map[string]any{"email": "email", "name": "whitespace"},
			}},
			{Type: "deduplicator", Params: map[string]any{"keys": []any{"email"}}},
		},
		Export: ExportConfig{
			Sheet: "Sheet1",
		},
		ResultLog: resultlog.Config{
			Enabled: false,
			Name:    "active_users",
			Address: "localhost:6379",
			TTL:     86400,
		},
		Delivery: retry.DefaultConfig(),
		Logging: logging.Config{
			Level:   "info",
			Console: true,
		},
	}

	switch adapters.NormalizeType(dbType) {
	case "postgres":
		config.Database.Host = "localhost"
		config.Database.Port = 5432
		config.Database.Database = "mydb"
		config.Database.User = "postgres"
		config.Database.Password = "password"
		config.Database.Schema = "public"
		config.Database.SSLMode = "disable"

	case "mssql":
		config.Database.Host = "localhost"
		config.Database.Port = 1433
		config.Database.Database = "mydb"
		config.Database.User = "sa"
		config.Database.Password = "YourPassword123"
		config.Database.Schema = "dbo"

	case "sqlite":
		config.Database.Database = "database.db"

	case "mysql":
		config.Database.Host = "localhost"
		config.Database.Port = 3306
		config.Database.Database = "mydb"
		config.Database.User = "root"
		config.Database.Password = "password"

	case "odbc":
		config.Database.ODBCDriver = "Oracle in OraClient19Home1"
		config.Database.Host = "localhost"
		config.Database.Port = 1521
		config.Database.Database = "ORCL"
		config.Database.User = "scott"
		config.Database.Password = "tiger"
	}

	return config
}

// BuildDSN constructs database connection string from config
func (c *DatabaseConfig) BuildDSN() string {
	if c.DSN != "" {
		return c.DSN
	}

	switch adapters.NormalizeType(c.Type) {
	case "postgres":
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("postgres://%s@%s:%d/%s?sslmode=%s",
			userInfo(c.User, c.Password), c.Host, c.Port, c.Database, sslMode)

	case "mssql":
		if c.WindowsAuth {
			return fmt.Sprintf("sqlserver://%s:%d?database=%s&integrated+security=SSPI",
				c.Host, c.Port, url.QueryEscape(c.Database))
		}
		return fmt.Sprintf("sqlserver://%s@%s:%d?database=%s",
			userInfo(c.User, c.Password), c.Host, c.Port, url.QueryEscape(c.Database))

	case "sqlite":
		return c.Database

	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			c.User, c.Password, c.Host, c.Port, c.Database)

	case "odbc":
		parts := []string{"Driver={" + c.ODBCDriver + "}"}
		if c.Host != "" {
			server := c.Host
			if c.Port != 0 {
				server = fmt.Sprintf("%s:%d", c.Host, c.Port)
			}
			parts = append(parts, "Server="+server)
		}
		if c.Database != "" {
			parts = append(parts, "Database="+c.Database)
		}
		if c.User != "" {
			parts = append(parts, "UID="+c.User, "PWD="+c.Password)
		}
		return strings.Join(parts, ";")

	default:
		return ""
	}
}

// AdapterConfig builds the adapters.Config for this database
func (c *DatabaseConfig) AdapterConfig() adapters.Config {
	return adapters.Config{
		Type:     c.Type,
		DSN:      c.BuildDSN(),
		Schema:   c.Schema,
		Timeout:  c.Timeout(),
		MaxConns: c.MaxConns,
	}
}

// Timeout returns timeout_sec as a duration
func (c *DatabaseConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// IsSafeMode reports safe_mode, defaulting to true
func (c *DatabaseConfig) IsSafeMode() bool {
	return c.SafeMode == nil || *c.SafeMode
}

func userInfo(user, password string) string {
	if password == "" {
		return url.User(user).String()
	}
	return url.UserPassword(user, password).String()
}
