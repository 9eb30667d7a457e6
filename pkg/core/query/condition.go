package query

import (
	"fmt"
	"strings"
)

// Operator - оператор сравнения в условии WHERE
type Operator string

const (
	OpEq   Operator = "="
	OpGt   Operator = ">"
	OpLt   Operator = "<"
	OpGte  Operator = ">="
	OpLte  Operator = "<="
	OpNe   Operator = "<>"
	OpLike Operator = "LIKE"
	OpIn   Operator = "IN"
)

// DefaultOperator - оператор новой строки условия (первый пункт выпадающего списка)
const DefaultOperator = OpEq

// Operators возвращает закрытый набор операторов в порядке отображения
func Operators() []Operator {
	return []Operator{OpEq, OpGt, OpLt, OpGte, OpLte, OpNe, OpLike, OpIn}
}

// ParseOperator разбирает текстовое представление оператора.
// Регистр для LIKE/IN не важен, "!=" принимается как синоним "<>".
func ParseOperator(s string) (Operator, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "=":
		return OpEq, nil
	case ">":
		return OpGt, nil
	case "<":
		return OpLt, nil
	case ">=":
		return OpGte, nil
	case "<=":
		return OpLte, nil
	case "<>", "!=":
		return OpNe, nil
	case "LIKE":
		return OpLike, nil
	case "IN":
		return OpIn, nil
	default:
		return "", fmt.Errorf("unsupported operator: %q (supported: %v)", s, Operators())
	}
}

// Valid проверяет что оператор входит в закрытый набор
func (o Operator) Valid() bool {
	for _, op := range Operators() {
		if o == op {
			return true
		}
	}
	return false
}

// Condition - одно условие сравнения (field operator value).
// Value хранится как непрозрачная строка, приведение типов не выполняется.
type Condition struct {
	Field    string
	Operator Operator
	Value    string
}

// InValues разбивает Value оператора IN на элементы: "a, b,c" → [a b c]
// Пустые элементы отбрасываются.
func (c Condition) InValues() []string {
	parts := strings.Split(c.Value, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			values = append(values, p)
		}
	}
	return values
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %s", c.Field, c.Operator, c.Value)
}
