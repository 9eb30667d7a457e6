package commands

import (
	"context"
	"fmt"

	"github.com/ruslano69/dbclean/pkg/adapters"
)

// ListTables lists all tables in the database
func ListTables(ctx context.Context, rt *Runtime) error {
	adapter, err := adapters.New(ctx, rt.DB)
	if err != nil {
		return fmt.Errorf("failed to create adapter: %w", err)
	}
	defer adapter.Close(ctx)

	tables, err := adapter.GetTableNames(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	w := rt.out()
	if len(tables) == 0 {
		fmt.Fprintln(w, "No tables found")
		return nil
	}

	fmt.Fprintf(w, "Found %d table(s):\n", len(tables))
	for i, table := range tables {
		fmt.Fprintf(w, "  %d. %s\n", i+1, table)
	}
	return nil
}

// TestConnection connects, pings and prints the server version
func TestConnection(ctx context.Context, rt *Runtime) error {
	adapter, err := adapters.New(ctx, rt.DB)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer adapter.Close(ctx)

	if !adapters.TestConnection(ctx, adapter) {
		return fmt.Errorf("connection failed: %s is not reachable", adapter.GetDatabaseType())
	}

	version, err := adapter.GetDatabaseVersion(ctx)
	if err != nil {
		version = "unknown"
	}
	fmt.Fprintf(rt.out(), "✓ Connected to %s (%s)\n", adapter.GetDatabaseType(), version)
	return nil
}
