package main

import "fmt"

const version = "0.4.0"

// PrintVersion prints version information
func PrintVersion() {
	fmt.Printf("dbclean version %s\n", version)
	fmt.Println("Query builder, executor and cleaner for SQL databases")
}

// PrintHelp prints comprehensive help information
func PrintHelp() {
	fmt.Println("dbclean - build, run, clean and export SQL queries")
	fmt.Printf("Version: %s\n\n", version)

	fmt.Println("USAGE:")
	fmt.Println("  dbclean [command] [options]")
	fmt.Println()

	fmt.Println("COMMANDS:")
	fmt.Println()

	fmt.Println("  Database Operations:")
	fmt.Println("    --list                     List all tables in database")
	fmt.Println("    --test-connection          Check that the database is reachable")
	fmt.Println("    --fetch <table>            Fetch all rows of a table")
	fmt.Println("    --query                    Run a query built from --select/--from/--where")
	fmt.Println("    --sql <text>               Run raw SQL (SELECT/WITH only unless --unsafe)")
	fmt.Println("    --interactive              Build queries interactively")
	fmt.Println()

	fmt.Println("  File Operations:")
	fmt.Println("    --clean <file>             Clean a .csv, .csv.zst or .xlsx file")
	fmt.Println("    --resend-dead-letters      Resend undelivered broker/result log messages")
	fmt.Println()

	fmt.Println("OPTIONS:")
	fmt.Println()

	fmt.Println("  Query Builder:")
	fmt.Println("    --select <fields>          Comma-separated fields (default: *)")
	fmt.Println("    --from <table>             Table to select from")
	fmt.Println("    --where <f|op|value>       Condition, repeatable; joined with AND")
	fmt.Println("                               Operators: = > < >= <= <> LIKE IN")
	fmt.Println("    --name <name>              Query name for result log and broker")
	fmt.Println()

	fmt.Println("  Output:")
	fmt.Println("    --format <text|table>      Output format (default: text)")
	fmt.Println("    --show-sql                 Print the generated SQL")
	fmt.Println("    --export-xlsx <file>       Write the result to XLSX")
	fmt.Println("    --export-csv <file>        Write the result to CSV (.zst = zstd)")
	fmt.Println("    --sheet <name>             Excel sheet name (default: Sheet1)")
	fmt.Println("    --s3-key <key>             Upload the exported file to S3")
	fmt.Println("    --publish                  Publish the result to the configured broker")
	fmt.Println("    --no-clean                 Skip the cleaning chain")
	fmt.Println("    --write-back <table>       Append the cleaned result to an existing table")
	fmt.Println()

	fmt.Println("  General:")
	fmt.Println("    --config <file>            Configuration file (default: config.yaml)")
	fmt.Println("    --chunk-size <n>           Progress interval for --fetch (default: 1000)")
	fmt.Println("    --unsafe                   Disable SQL validation (requires admin)")
	fmt.Println()

	fmt.Println("  Configuration:")
	fmt.Println("    --create-config-pg         Create PostgreSQL config template")
	fmt.Println("    --create-config-mssql      Create MS SQL config template")
	fmt.Println("    --create-config-sqlite     Create SQLite config template")
	fmt.Println("    --create-config-mysql      Create MySQL config template")
	fmt.Println("    --create-config-odbc       Create ODBC config template")
	fmt.Println()

	fmt.Println("  Misc:")
	fmt.Println("    --version                  Show version information")
	fmt.Println("    --help                     Show this help message")
	fmt.Println()

	fmt.Println("EXAMPLES:")
	fmt.Println()

	fmt.Println("  # List all tables")
	fmt.Println("  dbclean --list --config pg.yaml")
	fmt.Println()

	fmt.Println("  # Query with conditions")
	fmt.Println("  dbclean --query --select 'id, name' --from users --where 'age|>|18' --where 'city|IN|Moscow, Kazan'")
	fmt.Println()

	fmt.Println("  # Run the saved query from config and export to Excel")
	fmt.Println("  dbclean --query --export-xlsx users.xlsx --format table")
	fmt.Println()

	fmt.Println("  # Fetch a table, export compressed CSV and upload to S3")
	fmt.Println("  dbclean --fetch orders --export-csv orders.csv.zst --s3-key daily/orders.csv.zst")
	fmt.Println()

	fmt.Println("  # Clean a spreadsheet")
	fmt.Println("  dbclean --clean customers.xlsx --export-xlsx customers_clean.xlsx")
	fmt.Println()

	fmt.Println("  # Clean a spreadsheet and load it into the database")
	fmt.Println("  dbclean --clean customers.csv --write-back customers_clean")
	fmt.Println()

	fmt.Println("  # Publish result to RabbitMQ/Kafka")
	fmt.Println("  dbclean --query --from users --publish")
	fmt.Println()
}
