package query

import (
	"errors"
	"strings"
)

// ErrUnknownCondition возвращается при изменении условия по несуществующему handle
var ErrUnknownCondition = errors.New("unknown condition handle")

// Handle - идентификатор строки условия внутри одного Query.
// Монотонно растет и не переиспользуется после удаления.
type Handle int

type entry struct {
	handle Handle
	cond   Condition
}

// Query - модель еще не выполненного SELECT запроса.
// Создается заново на каждое взаимодействие и принадлежит одному владельцу,
// поэтому синхронизация не нужна.
type Query struct {
	selectFields []string
	fromTable    string
	conditions   []entry
	nextHandle   Handle
}

// New создает пустой запрос
func New() *Query {
	return &Query{}
}

// SetSelectFields задает список выбираемых полей.
// Одна строка с запятыми разбивается на поля: "id, name" → [id name].
// Пробелы по краям обрезаются, пустые элементы отбрасываются.
func (q *Query) SetSelectFields(fields ...string) {
	if len(fields) == 1 && strings.Contains(fields[0], ",") {
		fields = strings.Split(fields[0], ",")
	}

	q.selectFields = q.selectFields[:0]
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			q.selectFields = append(q.selectFields, f)
		}
	}
}

// SetFromTable задает имя исходной таблицы
func (q *Query) SetFromTable(name string) {
	q.fromTable = strings.TrimSpace(name)
}

// AddCondition добавляет пустое условие с оператором по умолчанию
func (q *Query) AddCondition() Handle {
	h := q.nextHandle
	q.nextHandle++
	q.conditions = append(q.conditions, entry{
		handle: h,
		cond:   Condition{Operator: DefaultOperator},
	})
	return h
}

// SetCondition заполняет существующее условие.
// Пустые field/value допускаются, проверка выполняется в Validate.
func (q *Query) SetCondition(h Handle, field string, op Operator, value string) error {
	if !op.Valid() {
		parsed, err := ParseOperator(string(op))
		if err != nil {
			return err
		}
		op = parsed
	}
	for i := range q.conditions {
		if q.conditions[i].handle == h {
			q.conditions[i].cond = Condition{Field: field, Operator: op, Value: value}
			return nil
		}
	}
	return ErrUnknownCondition
}

// Where - сокращение для AddCondition + SetCondition
func (q *Query) Where(field string, op Operator, value string) (Handle, error) {
	h := q.AddCondition()
	if err := q.SetCondition(h, field, op, value); err != nil {
		q.RemoveCondition(h)
		return 0, err
	}
	return h, nil
}

// RemoveCondition удаляет условие. Повторное удаление - no-op:
// UI может прислать событие удаления дважды.
func (q *Query) RemoveCondition(h Handle) {
	for i := range q.conditions {
		if q.conditions[i].handle == h {
			q.conditions = append(q.conditions[:i], q.conditions[i+1:]...)
			return
		}
	}
}

// SelectFields возвращает копию списка полей
func (q *Query) SelectFields() []string {
	out := make([]string, len(q.selectFields))
	copy(out, q.selectFields)
	return out
}

// FromTable возвращает имя таблицы
func (q *Query) FromTable() string {
	return q.fromTable
}

// Conditions возвращает условия в порядке добавления
func (q *Query) Conditions() []Condition {
	out := make([]Condition, len(q.conditions))
	for i, e := range q.conditions {
		out[i] = e.cond
	}
	return out
}

// Len возвращает количество условий
func (q *Query) Len() int {
	return len(q.conditions)
}

// Validate проверяет что запрос можно транслировать в SQL
func (q *Query) Validate() error {
	var problems []string

	if len(q.selectFields) == 0 {
		problems = append(problems, "select list is empty")
	}
	if q.fromTable == "" {
		problems = append(problems, "from table is empty")
	}

	for i, e := range q.conditions {
		c := e.cond
		if strings.TrimSpace(c.Field) == "" {
			problems = append(problems, conditionProblem(i, "field is empty"))
		}
		if !c.Operator.Valid() {
			problems = append(problems, conditionProblem(i, "unsupported operator "+string(c.Operator)))
		}
		if c.Operator == OpIn && len(c.InValues()) == 0 {
			problems = append(problems, conditionProblem(i, "IN requires at least one value"))
		}
	}

	if len(problems) > 0 {
		return &MalformedQueryError{Problems: problems}
	}
	return nil
}
