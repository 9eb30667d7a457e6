// Package executor выполняет SELECT через адаптер и материализует результат.
//
// На каждый вызов из пула берется одно соединение (*sql.Conn), которое
// возвращается в пул при любом исходе. Строки читаются полностью до
// возврата: частичных результатов нет, повторов нет.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/ruslano69/dbclean/pkg/adapters"
	"github.com/ruslano69/dbclean/pkg/core/query"
	"github.com/ruslano69/dbclean/pkg/core/sqlgen"
	"github.com/ruslano69/dbclean/pkg/metrics"
	"github.com/ruslano69/dbclean/pkg/security"
)

// Options - настройки выполнения
type Options struct {
	// Timeout - ограничение на выполнение и чтение строк (0 = без ограничения)
	Timeout time.Duration

	// SafeMode - проверять текст запроса через security.SQLValidator
	SafeMode bool

	// Recorder - приемник метрик (nil = metrics.Nop)
	Recorder metrics.Recorder
}

// Executor выполняет запросы через адаптер
type Executor struct {
	adapter   adapters.Adapter
	generator *sqlgen.Generator
	validator *security.SQLValidator
	opts      Options
}

// New создает Executor для подключенного адаптера
func New(adapter adapters.Adapter, opts Options) *Executor {
	if opts.Recorder == nil {
		opts.Recorder = metrics.Nop{}
	}
	return &Executor{
		adapter:   adapter,
		generator: sqlgen.NewGenerator(),
		validator: security.NewSQLValidator(opts.SafeMode).ForDialect(adapter.GetDatabaseType()),
		opts:      opts,
	}
}

// Execute выполняет произвольный текст SQL без параметров
func (e *Executor) Execute(ctx context.Context, sqlText string) (*Result, error) {
	if err := e.validator.Validate(sqlText); err != nil {
		return nil, e.fail("validate", sqlText, err, time.Now())
	}
	return e.run(ctx, sqlText, nil, 0)
}

// ExecuteStatement выполняет параметризованный запрос
func (e *Executor) ExecuteStatement(ctx context.Context, stmt *sqlgen.Statement) (*Result, error) {
	if stmt == nil {
		return nil, &ExecutionError{Op: "validate", Err: errors.New("statement is nil")}
	}
	if err := e.validator.Validate(stmt.SQL); err != nil {
		return nil, e.fail("validate", stmt.SQL, err, time.Now())
	}
	return e.run(ctx, stmt.SQL, stmt.Args, 0)
}

// ExecuteQuery строит параметризованный SQL для диалекта адаптера и выполняет его.
// Некорректная модель запроса возвращается как *query.MalformedQueryError.
func (e *Executor) ExecuteQuery(ctx context.Context, q *query.Query) (*Result, error) {
	stmt, err := e.generator.Bind(q, e.adapter.Dialect())
	if err != nil {
		return nil, err
	}
	return e.ExecuteStatement(ctx, stmt)
}

// FetchTable выгружает всю таблицу. chunkSize задает размер порции чтения
// для журнала прогресса (0 = одной порцией); результат всегда целиком.
// Отсутствующая таблица возвращается как ExecutionError с ErrTableNotFound.
func (e *Executor) FetchTable(ctx context.Context, table string, chunkSize int) (*Result, error) {
	stmt, err := e.generator.SelectAll(table, e.adapter.Dialect())
	if err != nil {
		return nil, err
	}
	if err := e.requireTable(ctx, table, stmt.SQL); err != nil {
		return nil, err
	}
	return e.run(ctx, stmt.SQL, stmt.Args, chunkSize)
}

// Insert дописывает строки результата в существующую таблицу одной транзакцией.
// Колонки берутся из result.Columns, значения передаются параметрами.
// При ошибке любой строки транзакция откатывается и ничего не записывается.
func (e *Executor) Insert(ctx context.Context, table string, result *Result) (int64, error) {
	if result == nil {
		return 0, &ExecutionError{Op: "validate", Err: errors.New("result is nil")}
	}
	stmt, err := e.generator.Insert(table, result.Columns, e.adapter.Dialect())
	if err != nil {
		return 0, err
	}
	if err := e.requireTable(ctx, table, stmt.SQL); err != nil {
		return 0, err
	}

	start := time.Now()
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	db := e.adapter.DB()
	if db == nil {
		return 0, e.fail("acquire", stmt.SQL, ErrNotConnected, start)
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return 0, e.fail("acquire", stmt.SQL, err, start)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, e.fail("insert", stmt.SQL, err, start)
	}
	defer tx.Rollback()

	prepared, err := tx.PrepareContext(ctx, stmt.SQL)
	if err != nil {
		return 0, e.fail("insert", stmt.SQL, err, start)
	}
	defer prepared.Close()

	var written int64
	for i, row := range result.Rows {
		if len(row) != len(result.Columns) {
			return 0, e.fail("insert", stmt.SQL,
				fmt.Errorf("row %d has %d values, expected %d", i+1, len(row), len(result.Columns)), start)
		}
		if _, err := prepared.ExecContext(ctx, row...); err != nil {
			return 0, e.fail("insert", stmt.SQL, err, start)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, e.fail("insert", stmt.SQL, err, start)
	}

	elapsed := time.Since(start)
	e.opts.Recorder.ObserveQuery(e.adapter.GetDatabaseType(), elapsed, int(written), nil)
	log.Info().
		Str("db_type", e.adapter.GetDatabaseType()).
		Str("table", table).
		Int64("rows", written).
		Dur("elapsed", elapsed).
		Msg("rows inserted")

	return written, nil
}

// requireTable проверяет наличие таблицы в каталоге. Ошибка самой проверки
// (драйвер без каталога) не блокирует запрос: его ошибку вернет БД.
func (e *Executor) requireTable(ctx context.Context, table, sqlText string) error {
	exists, err := e.adapter.TableExists(ctx, table)
	if err != nil {
		log.Debug().Err(err).Str("table", table).Msg("table existence check skipped")
		return nil
	}
	if !exists {
		return e.fail("validate", sqlText, fmt.Errorf("%w: %s", ErrTableNotFound, table), time.Now())
	}
	return nil
}

// Statement возвращает параметризованный SQL без выполнения (для --show-sql)
func (e *Executor) Statement(q *query.Query) (*sqlgen.Statement, error) {
	return e.generator.Bind(q, e.adapter.Dialect())
}

func (e *Executor) run(ctx context.Context, sqlText string, args []any, chunkSize int) (*Result, error) {
	start := time.Now()

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	db := e.adapter.DB()
	if db == nil {
		return nil, e.fail("acquire", sqlText, ErrNotConnected, start)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, e.fail("acquire", sqlText, err, start)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, e.fail("query", sqlText, err, start)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, e.fail("scan", sqlText, err, start)
	}

	result := &Result{Columns: columns, Rows: []Row{}}
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, e.fail("scan", sqlText, err, start)
		}

		row := make(Row, len(values))
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[i] = v
		}
		result.Rows = append(result.Rows, row)

		if chunkSize > 0 && len(result.Rows)%chunkSize == 0 {
			log.Debug().Int("rows", len(result.Rows)).Msg("chunk fetched")
		}
	}
	if err := rows.Err(); err != nil {
		return nil, e.fail("scan", sqlText, err, start)
	}

	elapsed := time.Since(start)
	e.opts.Recorder.ObserveQuery(e.adapter.GetDatabaseType(), elapsed, len(result.Rows), nil)
	log.Debug().
		Str("db_type", e.adapter.GetDatabaseType()).
		Int("rows", len(result.Rows)).
		Dur("elapsed", elapsed).
		Msg("query executed")

	return result, nil
}

func (e *Executor) fail(op, sqlText string, err error, start time.Time) error {
	e.opts.Recorder.ObserveQuery(e.adapter.GetDatabaseType(), time.Since(start), 0, err)
	log.Error().
		Err(err).
		Str("op", op).
		Str("db_type", e.adapter.GetDatabaseType()).
		Str("sql", sqlText).
		Msg("query failed")

	return &ExecutionError{Op: op, SQL: sqlText, Err: err}
}
