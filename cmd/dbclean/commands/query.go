package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/ruslano69/dbclean/pkg/adapters"
	"github.com/ruslano69/dbclean/pkg/executor"
	"github.com/ruslano69/dbclean/pkg/session"
)

// RunQuery builds, translates, executes and presents one query
func RunQuery(ctx context.Context, rt *Runtime, spec QuerySpec) error {
	adapter, exec, err := rt.open(ctx)
	if err != nil {
		return err
	}
	defer adapter.Close(ctx)

	return runQuery(ctx, rt, adapter, exec, spec)
}

func runQuery(ctx context.Context, rt *Runtime, adapter adapters.Adapter, exec *executor.Executor, spec QuerySpec) error {
	cycle := session.NewCycle(exec)

	q, err := cycle.Query()
	if err != nil {
		return err
	}
	q.SetSelectFields(spec.Select)
	q.SetFromTable(spec.From)
	for _, c := range spec.Conditions {
		if _, err := q.Where(c.Field, c.Operator, c.Value); err != nil {
			return fmt.Errorf("invalid condition %q: %w", c.String(), err)
		}
	}

	legacy, err := cycle.Translate()
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}
	if rt.ShowSQL {
		stmt := cycle.Statement()
		fmt.Fprintf(rt.out(), "SQL: %s\n", legacy)
		fmt.Fprintf(rt.out(), "Bound: %s %v\n", stmt.SQL, stmt.Args)
	}

	started := time.Now()
	result, execErr := cycle.Execute(ctx)

	r := &run{
		name:    queryName(spec),
		dbType:  adapter.GetDatabaseType(),
		sql:     cycle.Statement().SQL,
		started: started,
		result:  result,
		err:     execErr,
		exec:    exec,
	}

	// без очистки цикл сам выводит результат
	if rt.Chain == nil || rt.Chain.Len() == 0 {
		if err := cycle.Present(rt.out(), rt.Format); err != nil {
			return err
		}
		r.presented = true
	}

	return deliver(ctx, rt, r)
}

// RunSQL executes raw SQL text
func RunSQL(ctx context.Context, rt *Runtime, name, sqlText string) error {
	adapter, exec, err := rt.open(ctx)
	if err != nil {
		return err
	}
	defer adapter.Close(ctx)

	if rt.ShowSQL {
		fmt.Fprintf(rt.out(), "SQL: %s\n", sqlText)
	}

	started := time.Now()
	result, execErr := exec.Execute(ctx, sqlText)

	if name == "" {
		name = "sql"
	}
	return deliver(ctx, rt, &run{
		name:    name,
		dbType:  adapter.GetDatabaseType(),
		sql:     sqlText,
		started: started,
		result:  result,
		err:     execErr,
		exec:    exec,
	})
}

// FetchTable fetches every row of a table
func FetchTable(ctx context.Context, rt *Runtime, table string, chunkSize int) error {
	adapter, exec, err := rt.open(ctx)
	if err != nil {
		return err
	}
	defer adapter.Close(ctx)

	started := time.Now()
	result, execErr := exec.FetchTable(ctx, table, chunkSize)

	return deliver(ctx, rt, &run{
		name:    table,
		dbType:  adapter.GetDatabaseType(),
		sql:     "SELECT * FROM " + adapter.Dialect().QuoteIdentifier(table),
		started: started,
		result:  result,
		err:     execErr,
		exec:    exec,
	})
}

func queryName(spec QuerySpec) string {
	if spec.Name != "" {
		return spec.Name
	}
	return spec.From
}
