package main

import (
	"flag"
	"strings"
)

// Flags holds all command-line flags
type Flags struct {
	// Commands
	List           *bool
	TestConnection *bool
	Fetch          *string
	Query          *bool
	SQL            *string
	Interactive    *bool
	Clean          *string
	ResendDead     *bool

	// Query builder
	Select *string
	From   *string
	Where  *conditionList
	Name   *string

	// Output
	Format     *string
	ShowSQL    *bool
	ExportXLSX *string
	ExportCSV  *string
	Sheet      *string
	S3Key      *string
	Publish    *bool
	NoClean    *bool
	WriteBack  *string

	// Options
	Config    *string
	ChunkSize *int
	Unsafe    *bool

	// Config Creation
	CreateConfigPG     *bool
	CreateConfigMSSQL  *bool
	CreateConfigSQLite *bool
	CreateConfigMySQL  *bool
	CreateConfigODBC   *bool

	// Misc
	Version *bool
	Help    *bool
}

// conditionList collects repeated --where flags
type conditionList []string

func (c *conditionList) String() string {
	return strings.Join(*c, "; ")
}

func (c *conditionList) Set(value string) error {
	*c = append(*c, value)
	return nil
}

// ParseFlags defines and parses all command-line flags
func ParseFlags() *Flags {
	return parseFlags(flag.CommandLine, nil)
}

func parseFlags(fs *flag.FlagSet, args []string) *Flags {
	f := &Flags{Where: &conditionList{}}

	// Commands
	f.List = fs.Bool("list", false, "List all tables in database")
	f.TestConnection = fs.Bool("test-connection", false, "Check that the database is reachable")
	f.Fetch = fs.String("fetch", "", "Fetch all rows of a table (table name)")
	f.Query = fs.Bool("query", false, "Build and run a query from --select/--from/--where (or the config 'query' section)")
	f.SQL = fs.String("sql", "", "Run raw SQL text (only SELECT/WITH in safe mode)")
	f.Interactive = fs.Bool("interactive", false, "Build a query interactively")
	f.Clean = fs.String("clean", "", "Clean a CSV/XLSX file with the configured chain (file path)")
	f.ResendDead = fs.Bool("resend-dead-letters", false, "Resend undelivered broker/result log messages")

	// Query builder
	f.Select = fs.String("select", "*", "Comma-separated select fields")
	f.From = fs.String("from", "", "Table to select from")
	fs.Var(f.Where, "where", `Condition "field|operator|value", repeatable (operators: = > < >= <= <> LIKE IN)`)
	f.Name = fs.String("name", "", "Query name for the result log and broker messages")

	// Output
	f.Format = fs.String("format", "text", "Output format: text, table")
	f.ShowSQL = fs.Bool("show-sql", false, "Print the generated SQL before executing")
	f.ExportXLSX = fs.String("export-xlsx", "", "Write the result to an XLSX file (file path)")
	f.ExportCSV = fs.String("export-csv", "", "Write the result to a CSV file, .zst for zstd (file path)")
	f.Sheet = fs.String("sheet", "", "Excel sheet name for XLSX operations (default: Sheet1)")
	f.S3Key = fs.String("s3-key", "", "Upload the exported file to S3 under this key")
	f.Publish = fs.Bool("publish", false, "Publish the result to the configured message broker")
	f.NoClean = fs.Bool("no-clean", false, "Skip the cleaning chain for query results")
	f.WriteBack = fs.String("write-back", "", "Append the (cleaned) result to an existing table (table name)")

	// Options
	f.Config = fs.String("config", "config.yaml", "Configuration file path")
	f.ChunkSize = fs.Int("chunk-size", 1000, "Progress log interval in rows for --fetch")
	f.Unsafe = fs.Bool("unsafe", false, "Disable SQL validation for --sql (requires admin)")

	// Config Creation
	f.CreateConfigPG = fs.Bool("create-config-pg", false, "Create sample PostgreSQL config file")
	f.CreateConfigMSSQL = fs.Bool("create-config-mssql", false, "Create sample MS SQL config file")
	f.CreateConfigSQLite = fs.Bool("create-config-sqlite", false, "Create sample SQLite config file")
	f.CreateConfigMySQL = fs.Bool("create-config-mysql", false, "Create sample MySQL config file")
	f.CreateConfigODBC = fs.Bool("create-config-odbc", false, "Create sample ODBC config file")

	// Misc
	f.Version = fs.Bool("version", false, "Show version information")
	f.Help = fs.Bool("help", false, "Show detailed help with examples")

	if fs == flag.CommandLine {
		flag.Parse()
	} else {
		fs.Parse(args)
	}

	return f
}
