package sqlgen

import (
	"fmt"
	"strings"
)

// Dialect - особенности синтаксиса конкретной СУБД, нужные генератору:
// формат плейсхолдеров и квотирование идентификаторов
type Dialect interface {
	// Name возвращает тип СУБД: "sqlite", "postgres", "mysql", "mssql", "odbc"
	Name() string

	// Placeholder возвращает плейсхолдер для n-го параметра (n начинается с 1)
	// SQLite/MySQL/ODBC: ?
	// PostgreSQL:        $1
	// MS SQL:            @p1
	Placeholder(n int) string

	// QuoteIdentifier экранирует идентификатор (имя таблицы/колонки)
	// PostgreSQL/ODBC: "name"
	// MySQL/SQLite:    `name`
	// MS SQL:          [name]
	QuoteIdentifier(identifier string) string
}

type standardDialect struct {
	name        string
	openQuote   string
	closeQuote  string
	placeholder func(n int) string
}

func (d *standardDialect) Name() string {
	return d.name
}

func (d *standardDialect) Placeholder(n int) string {
	return d.placeholder(n)
}

// QuoteIdentifier квотирует каждую часть составного имени (schema.table).
// "*" не квотируется, закрывающая кавычка внутри имени удваивается.
func (d *standardDialect) QuoteIdentifier(identifier string) string {
	parts := strings.Split(identifier, ".")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "*" {
			parts[i] = p
			continue
		}
		p = strings.ReplaceAll(p, d.closeQuote, d.closeQuote+d.closeQuote)
		parts[i] = d.openQuote + p + d.closeQuote
	}
	return strings.Join(parts, ".")
}

func questionMark(int) string { return "?" }

var (
	// SQLite использует ? и обратные кавычки: "name" с несуществующей колонкой
	// SQLite молча превращает в строковый литерал, `name` дает ошибку
	SQLite Dialect = &standardDialect{name: "sqlite", openQuote: "`", closeQuote: "`", placeholder: questionMark}

	// Postgres использует $N и двойные кавычки
	Postgres Dialect = &standardDialect{name: "postgres", openQuote: `"`, closeQuote: `"`,
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) }}

	// MySQL использует ? и обратные кавычки
	MySQL Dialect = &standardDialect{name: "mysql", openQuote: "`", closeQuote: "`", placeholder: questionMark}

	// MSSQL использует @pN и квадратные скобки
	MSSQL Dialect = &standardDialect{name: "mssql", openQuote: "[", closeQuote: "]",
		placeholder: func(n int) string { return fmt.Sprintf("@p%d", n) }}

	// ODBC - ANSI: ? и двойные кавычки (Oracle, DB2 и прочие через драйвер ODBC)
	ODBC Dialect = &standardDialect{name: "odbc", openQuote: `"`, closeQuote: `"`, placeholder: questionMark}
)

// DialectFor возвращает диалект по типу СУБД
func DialectFor(dbType string) (Dialect, error) {
	switch strings.ToLower(dbType) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "mssql", "sqlserver":
		return MSSQL, nil
	case "odbc", "oracle":
		return ODBC, nil
	default:
		return nil, fmt.Errorf("unknown dialect: %s", dbType)
	}
}
