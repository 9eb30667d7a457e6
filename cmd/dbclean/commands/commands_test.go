package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ruslano69/dbclean/pkg/adapters"
	_ "github.com/ruslano69/dbclean/pkg/adapters/sqlite"
	"github.com/ruslano69/dbclean/pkg/core/query"
	"github.com/ruslano69/dbclean/pkg/executor"
	"github.com/ruslano69/dbclean/pkg/export"
	"github.com/ruslano69/dbclean/pkg/presenter"
	"github.com/ruslano69/dbclean/pkg/processors"
)

// newTestRuntime создает файл SQLite с таблицей users и Runtime поверх него
func newTestRuntime(t *testing.T) (*Runtime, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()
	cfg := adapters.Config{Type: "sqlite", DSN: filepath.Join(t.TempDir(), "test.db")}

	adapter, err := adapters.New(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}
	defer adapter.Close(ctx)

	statements := []string{
		"CREATE TABLE users (id INTEGER, name TEXT, email TEXT)",
		"INSERT INTO users VALUES (3, 'Carol', 'carol@example.com')",
		"INSERT INTO users VALUES (1, '  Alice  ', 'ALICE@example.com')",
		"INSERT INTO users VALUES (2, 'Bob', NULL)",
		"INSERT INTO users VALUES (4, '  Alice  ', 'ALICE@example.com')",
	}
	for _, s := range statements {
		if _, err := adapter.DB().ExecContext(ctx, s); err != nil {
			t.Fatalf("Setup %q failed: %v", s, err)
		}
	}

	out := &bytes.Buffer{}
	return &Runtime{
		DB:       cfg,
		Executor: executor.Options{SafeMode: true},
		Format:   presenter.FormatText,
		Out:      out,
	}, out
}

func TestRunQuery_PresentsRows(t *testing.T) {
	rt, out := newTestRuntime(t)

	spec := QuerySpec{
		Select:     "id, name",
		From:       "users",
		Conditions: []query.Condition{{Field: "id", Operator: query.OpLte, Value: "2"}},
	}
	if err := RunQuery(context.Background(), rt, spec); err != nil {
		t.Fatalf("RunQuery failed: %v", err)
	}

	expected := "(1, '  Alice  ')\n(2, 'Bob')\n"
	if out.String() != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, out.String())
	}
}

func TestRunQuery_ShowSQL(t *testing.T) {
	rt, out := newTestRuntime(t)
	rt.ShowSQL = true

	spec := QuerySpec{
		Select:     "id",
		From:       "users",
		Conditions: []query.Condition{{Field: "id", Operator: query.OpIn, Value: "1, 3"}},
	}
	if err := RunQuery(context.Background(), rt, spec); err != nil {
		t.Fatalf("RunQuery failed: %v", err)
	}

	if !strings.Contains(out.String(), `SQL: SELECT id FROM users WHERE id IN "1, 3"`) {
		t.Errorf("Legacy SQL missing:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Bound: SELECT `id` FROM `users` WHERE `id` IN (?, ?) [1 3]") {
		t.Errorf("Bound SQL missing:\n%s", out.String())
	}
}

func TestRunQuery_ExecutionErrorIsPresented(t *testing.T) {
	rt, out := newTestRuntime(t)

	err := RunQuery(context.Background(), rt, QuerySpec{Select: "*", From: "missing_table"})
	var execErr *executor.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("Expected ExecutionError, got %v", err)
	}
	var presented *PresentedError
	if !errors.As(err, &presented) {
		t.Errorf("Execution error should be marked as presented: %T", err)
	}
	if strings.TrimSpace(out.String()) != err.Error() {
		t.Errorf("Presented %q, expected error message %q", out.String(), err.Error())
	}
}

func TestRunQuery_Malformed(t *testing.T) {
	rt, out := newTestRuntime(t)

	err := RunQuery(context.Background(), rt, QuerySpec{Select: "id"})
	var malformed *query.MalformedQueryError
	if !errors.As(err, &malformed) {
		t.Fatalf("Expected MalformedQueryError, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("Nothing should be presented, got %q", out.String())
	}
}

func TestRunQuery_CleanAndExportCSV(t *testing.T) {
	rt, out := newTestRuntime(t)

	chain, err := processors.FromConfig([]processors.Config{
		{Type: "field_normalizer", Params: map[string]any{
			"fields": map[string]any{"name": "whitespace", "email": "email"},
		}},
		{Type: "deduplicator", Params: map[string]any{"keys": []any{"email"}}},
	})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	rt.Chain = chain
	rt.Output.CSV = filepath.Join(t.TempDir(), "users.csv")

	if err := RunQuery(context.Background(), rt, QuerySpec{Select: "name, email", From: "users"}); err != nil {
		t.Fatalf("RunQuery failed: %v", err)
	}

	if strings.Count(out.String(), "Alice") != 1 {
		t.Errorf("Duplicate should be removed:\n%s", out.String())
	}

	result, err := export.FromCSV(rt.Output.CSV)
	if err != nil {
		t.Fatalf("FromCSV failed: %v", err)
	}
	if result.Len() != 3 {
		t.Fatalf("Expected 3 cleaned rows, got %d", result.Len())
	}
	if result.Rows[1][0] != "Alice" || result.Rows[1][1] != "alice@example.com" {
		t.Errorf("Row not normalized: %v", result.Rows[1])
	}
}

func TestRunSQL_SafeMode(t *testing.T) {
	rt, out := newTestRuntime(t)

	err := RunSQL(context.Background(), rt, "", "DELETE FROM users")
	if err == nil {
		t.Fatal("Expected safe mode violation")
	}
	if !strings.Contains(out.String(), err.Error()) {
		t.Errorf("Violation should be presented, got %q", out.String())
	}

	out.Reset()
	if err := RunSQL(context.Background(), rt, "", "SELECT count(*) FROM users"); err != nil {
		t.Fatalf("RunSQL failed: %v", err)
	}
	if out.String() != "(4,)\n" {
		t.Errorf("Unexpected output: %q", out.String())
	}
}

func TestFetchTable_ExportXLSX(t *testing.T) {
	rt, out := newTestRuntime(t)
	rt.Output.XLSX = filepath.Join(t.TempDir(), "users.xlsx")
	rt.Output.Sheet = "Users"

	if err := FetchTable(context.Background(), rt, "users", 2); err != nil {
		t.Fatalf("FetchTable failed: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Written 4 row(s)") {
		t.Errorf("Export report missing:\n%s", out.String())
	}

	result, err := export.FromXLSX(rt.Output.XLSX, "Users")
	if err != nil {
		t.Fatalf("FromXLSX failed: %v", err)
	}
	if len(result.Columns) != 3 || result.Len() != 4 {
		t.Errorf("Unexpected xlsx content: %v / %d rows", result.Columns, result.Len())
	}
}

func TestS3KeyRequiresExport(t *testing.T) {
	rt, _ := newTestRuntime(t)
	rt.Output.S3Key = "daily/users.csv"

	if err := FetchTable(context.Background(), rt, "users", 0); err == nil {
		t.Error("Expected error for --s3-key without export")
	}
}

func TestCleanFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "raw.csv")
	data := "id,name\n1,Alice\n2,Bob\n1,Alice\n"
	if err := os.WriteFile(input, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	out := &bytes.Buffer{}
	rt := &Runtime{
		Format: presenter.FormatText,
		Out:    out,
		Output: OutputOptions{CSV: filepath.Join(dir, "clean.csv.zst")},
	}
	if err := CleanFile(context.Background(), rt, input); err != nil {
		t.Fatalf("CleanFile failed: %v", err)
	}

	result, err := export.FromCSV(rt.Output.CSV)
	if err != nil {
		t.Fatalf("FromCSV failed: %v", err)
	}
	if result.Len() != 2 {
		t.Errorf("Default chain should drop duplicates, got %d rows", result.Len())
	}
	if rt.Chain != nil {
		t.Error("CleanFile must not modify the caller's runtime")
	}
}

func TestLoadFile_Unsupported(t *testing.T) {
	if _, err := LoadFile("data.json", ""); err == nil {
		t.Error("Expected error for unsupported extension")
	}
}

func TestDisplayName(t *testing.T) {
	if got := displayName("/tmp/exports/users.csv.zst"); got != "users" {
		t.Errorf("Unexpected name: %s", got)
	}
}

// countRows открывает базу runtime и возвращает содержимое таблицы
func countRows(t *testing.T, rt *Runtime, table string) *executor.Result {
	t.Helper()
	ctx := context.Background()
	adapter, exec, err := rt.open(ctx)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer adapter.Close(ctx)

	result, err := exec.FetchTable(ctx, table, 0)
	if err != nil {
		t.Fatalf("FetchTable failed: %v", err)
	}
	return result
}

func createTable(t *testing.T, rt *Runtime, ddl string) {
	t.Helper()
	ctx := context.Background()
	adapter, err := adapters.New(ctx, rt.DB)
	if err != nil {
		t.Fatalf("Failed to create adapter: %v", err)
	}
	defer adapter.Close(ctx)
	if _, err := adapter.DB().ExecContext(ctx, ddl); err != nil {
		t.Fatalf("Setup %q failed: %v", ddl, err)
	}
}

func TestRunQuery_WriteBackCleaned(t *testing.T) {
	rt, out := newTestRuntime(t)
	createTable(t, rt, "CREATE TABLE users_clean (name TEXT, email TEXT)")

	chain, err := processors.FromConfig([]processors.Config{
		{Type: "field_normalizer", Params: map[string]any{"fields": map[string]any{"name": "whitespace"}}},
		{Type: "deduplicator"},
	})
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}
	rt.Chain = chain
	rt.Output.WriteBack = "users_clean"

	if err := RunQuery(context.Background(), rt, QuerySpec{Select: "name, email", From: "users"}); err != nil {
		t.Fatalf("RunQuery failed: %v", err)
	}
	if !strings.Contains(out.String(), "Written 3 row(s) to table: users_clean") {
		t.Errorf("Missing write-back report:\n%s", out.String())
	}

	written := countRows(t, rt, "users_clean")
	if written.Len() != 3 {
		t.Fatalf("Expected 3 rows in users_clean, got %d", written.Len())
	}
	if written.Rows[1][0] != "Alice" {
		t.Errorf("Expected cleaned name, got %v", written.Rows[1][0])
	}

	// исходная таблица не изменилась
	if source := countRows(t, rt, "users"); source.Len() != 4 {
		t.Errorf("Source table changed: %d rows", source.Len())
	}
}

func TestRunQuery_WriteBackMissingTable(t *testing.T) {
	rt, _ := newTestRuntime(t)
	rt.Output.WriteBack = "nowhere"

	err := RunQuery(context.Background(), rt, QuerySpec{Select: "id", From: "users"})
	if !errors.Is(err, executor.ErrTableNotFound) {
		t.Fatalf("Expected ErrTableNotFound, got %v", err)
	}
	// ошибка записи не выводилась презентером и должна быть напечатана вызывающим
	var presented *PresentedError
	if errors.As(err, &presented) {
		t.Error("Write-back error must not be marked as presented")
	}
}

func TestCleanFile_WriteBack(t *testing.T) {
	rt, out := newTestRuntime(t)
	createTable(t, rt, "CREATE TABLE imported (id INTEGER, name TEXT)")

	input := filepath.Join(t.TempDir(), "raw.csv")
	if err := os.WriteFile(input, []byte("id,name\n1,Alice\n2,Bob\n1,Alice\n"), 0644); err != nil {
		t.Fatal(err)
	}
	rt.Output.WriteBack = "imported"

	if err := CleanFile(context.Background(), rt, input); err != nil {
		t.Fatalf("CleanFile failed: %v", err)
	}

	imported := countRows(t, rt, "imported")
	if imported.Len() != 2 {
		t.Fatalf("Expected 2 imported rows, got %d\n%s", imported.Len(), out.String())
	}
	if imported.Rows[0][0] != int64(1) || imported.Rows[1][1] != "Bob" {
		t.Errorf("Unexpected rows: %v", imported.Rows)
	}
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("stdout closed") }

func TestRunSQL_UnpresentedErrorIsReturnedPlain(t *testing.T) {
	rt, _ := newTestRuntime(t)
	rt.Out = brokenWriter{}

	err := RunSQL(context.Background(), rt, "", "DELETE FROM users")
	var execErr *executor.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("Expected ExecutionError, got %v", err)
	}
	// сообщение не дошло до пользователя, вызывающий должен его напечатать
	var presented *PresentedError
	if errors.As(err, &presented) {
		t.Error("Error that failed to render must not be marked as presented")
	}
}
