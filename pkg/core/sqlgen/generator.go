package sqlgen

import (
	"fmt"
	"strings"

	"github.com/ruslano69/dbclean/pkg/core/query"
)

// Statement - SQL запрос с параметрами для выполнения через database/sql
type Statement struct {
	SQL  string
	Args []any
}

// Generator конвертирует query.Query в SQL
type Generator struct{}

// NewGenerator создает новый SQL генератор
func NewGenerator() *Generator {
	return &Generator{}
}

// Translate строит текст запроса в legacy формате:
//
//	SELECT id, name FROM users WHERE id > "5"
//
// Значение всегда в двойных кавычках, без экранирования, независимо от оператора.
// ВАЖНО: это интерполяция строк, а не параметры. Результат предназначен только
// для отображения и сравнения со старыми выгрузками, выполнять его нельзя -
// для выполнения используйте Bind.
func (g *Generator) Translate(q *query.Query) (string, error) {
	if err := q.Validate(); err != nil {
		return "", err
	}

	var parts []string
	parts = append(parts, "SELECT "+strings.Join(q.SelectFields(), ", "))
	parts = append(parts, "FROM "+q.FromTable())

	conds := q.Conditions()
	if len(conds) > 0 {
		rendered := make([]string, len(conds))
		for i, c := range conds {
			rendered[i] = fmt.Sprintf(`%s %s "%s"`, c.Field, c.Operator, c.Value)
		}
		parts = append(parts, "WHERE "+strings.Join(rendered, " AND "))
	}

	return strings.Join(parts, " "), nil
}

// Bind строит параметризованный запрос для указанного диалекта.
// Идентификаторы квотируются, значения передаются через плейсхолдеры.
// IN разбивает значение по запятым: "a, b" → IN (?, ?).
func (g *Generator) Bind(q *query.Query, d Dialect) (*Statement, error) {
	if d == nil {
		return nil, fmt.Errorf("dialect is required")
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	fields := q.SelectFields()
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = d.QuoteIdentifier(f)
	}

	var parts []string
	parts = append(parts, "SELECT "+strings.Join(quoted, ", "))
	parts = append(parts, "FROM "+d.QuoteIdentifier(q.FromTable()))

	var args []any
	whereClause, err := g.generateWhereClause(q.Conditions(), d, &args)
	if err != nil {
		return nil, fmt.Errorf("failed to generate WHERE clause: %w", err)
	}
	if whereClause != "" {
		parts = append(parts, "WHERE "+whereClause)
	}

	return &Statement{
		SQL:  strings.Join(parts, " "),
		Args: args,
	}, nil
}

// SelectAll строит SELECT * FROM table для выгрузки всей таблицы
func (g *Generator) SelectAll(tableName string, d Dialect) (*Statement, error) {
	tableName = strings.TrimSpace(tableName)
	if tableName == "" {
		return nil, &query.MalformedQueryError{Problems: []string{"from table is empty"}}
	}
	return &Statement{SQL: "SELECT * FROM " + d.QuoteIdentifier(tableName)}, nil
}

// Insert строит INSERT INTO table (c1, c2) VALUES (p1, p2) для построчной вставки.
// Аргументы не заполняются: один Statement выполняется для каждой строки.
func (g *Generator) Insert(tableName string, columns []string, d Dialect) (*Statement, error) {
	tableName = strings.TrimSpace(tableName)
	if tableName == "" {
		return nil, &query.MalformedQueryError{Problems: []string{"target table is empty"}}
	}
	if len(columns) == 0 {
		return nil, &query.MalformedQueryError{Problems: []string{"no columns to insert"}}
	}

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		if strings.TrimSpace(c) == "" {
			return nil, &query.MalformedQueryError{Problems: []string{fmt.Sprintf("column %d has no name", i+1)}}
		}
		quoted[i] = d.QuoteIdentifier(c)
		placeholders[i] = d.Placeholder(i + 1)
	}

	return &Statement{SQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdentifier(tableName),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "))}, nil
}

// generateWhereClause объединяет условия через AND
func (g *Generator) generateWhereClause(conds []query.Condition, d Dialect, args *[]any) (string, error) {
	if len(conds) == 0 {
		return "", nil
	}

	rendered := make([]string, 0, len(conds))
	for _, c := range conds {
		condition, err := g.generateCondition(c, d, args)
		if err != nil {
			return "", err
		}
		rendered = append(rendered, condition)
	}

	return strings.Join(rendered, " AND "), nil
}

// generateCondition конвертирует Condition в SQL условие с плейсхолдерами
func (g *Generator) generateCondition(c query.Condition, d Dialect, args *[]any) (string, error) {
	field := d.QuoteIdentifier(c.Field)

	switch c.Operator {
	case query.OpEq, query.OpGt, query.OpLt, query.OpGte, query.OpLte, query.OpNe, query.OpLike:
		*args = append(*args, c.Value)
		return fmt.Sprintf("%s %s %s", field, c.Operator, d.Placeholder(len(*args))), nil

	case query.OpIn:
		values := c.InValues()
		if len(values) == 0 {
			return "", fmt.Errorf("IN operator requires at least one value")
		}
		placeholders := make([]string, len(values))
		for i, v := range values {
			*args = append(*args, v)
			placeholders[i] = d.Placeholder(len(*args))
		}
		return fmt.Sprintf("%s IN (%s)", field, strings.Join(placeholders, ", ")), nil

	default:
		return "", fmt.Errorf("unsupported operator: %s", c.Operator)
	}
}
