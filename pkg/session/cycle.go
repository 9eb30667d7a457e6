// Package session связывает построение, трансляцию, выполнение и вывод
// запроса в один цикл:
//
//	Building → Translated → Executed → Presented
//
// Вернуться в Building нельзя, для следующего запроса создается новый Cycle.
// Cycle принадлежит одному владельцу и не синхронизирован.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ruslano69/dbclean/pkg/core/query"
	"github.com/ruslano69/dbclean/pkg/core/sqlgen"
	"github.com/ruslano69/dbclean/pkg/executor"
	"github.com/ruslano69/dbclean/pkg/presenter"
)

// ErrInvalidTransition - операция вызвана не в своем состоянии
var ErrInvalidTransition = errors.New("invalid session transition")

// State - состояние цикла
type State int

const (
	// StateBuilding - запрос редактируется
	StateBuilding State = iota

	// StateTranslated - SQL построен, запрос зафиксирован
	StateTranslated

	// StateExecuted - получен результат или ошибка выполнения
	StateExecuted

	// StatePresented - результат выведен, цикл завершен
	StatePresented
)

// String - строковое представление состояния
func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateTranslated:
		return "translated"
	case StateExecuted:
		return "executed"
	case StatePresented:
		return "presented"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Cycle - один проход запроса от построения до вывода
type Cycle struct {
	exec      *executor.Executor
	generator *sqlgen.Generator
	q         *query.Query
	state     State

	legacySQL string
	stmt      *sqlgen.Statement
	result    *executor.Result
	err       error
}

// NewCycle начинает новый цикл с пустым запросом
func NewCycle(exec *executor.Executor) *Cycle {
	return &Cycle{
		exec:      exec,
		generator: sqlgen.NewGenerator(),
		q:         query.New(),
		state:     StateBuilding,
	}
}

// State возвращает текущее состояние
func (c *Cycle) State() State {
	return c.state
}

// Query возвращает запрос для редактирования. Доступен только в Building.
func (c *Cycle) Query() (*query.Query, error) {
	if err := c.expect(StateBuilding, "edit query"); err != nil {
		return nil, err
	}
	return c.q, nil
}

// Translate строит текст запроса и параметризованный Statement.
// При некорректном запросе цикл остается в Building.
func (c *Cycle) Translate() (string, error) {
	if err := c.expect(StateBuilding, "translate"); err != nil {
		return "", err
	}

	legacy, err := c.generator.Translate(c.q)
	if err != nil {
		return "", err
	}
	stmt, err := c.exec.Statement(c.q)
	if err != nil {
		return "", err
	}

	c.legacySQL = legacy
	c.stmt = stmt
	c.state = StateTranslated
	return legacy, nil
}

// Execute выполняет построенный Statement. Переход в Executed происходит
// и при ошибке выполнения: ошибка сохраняется и будет выведена в Present.
func (c *Cycle) Execute(ctx context.Context) (*executor.Result, error) {
	if err := c.expect(StateTranslated, "execute"); err != nil {
		return nil, err
	}

	c.result, c.err = c.exec.ExecuteStatement(ctx, c.stmt)
	c.state = StateExecuted
	return c.result, c.err
}

// Present выводит результат или ошибку выполнения в w
func (c *Cycle) Present(w io.Writer, format presenter.Format) error {
	if err := c.expect(StateExecuted, "present"); err != nil {
		return err
	}

	c.state = StatePresented
	return presenter.Render(w, format, c.result, c.err)
}

// SQL возвращает текст запроса в отображаемом виде (после Translate)
func (c *Cycle) SQL() string {
	return c.legacySQL
}

// Statement возвращает параметризованный запрос (после Translate)
func (c *Cycle) Statement() *sqlgen.Statement {
	return c.stmt
}

// Result возвращает результат и ошибку выполнения (после Execute)
func (c *Cycle) Result() (*executor.Result, error) {
	return c.result, c.err
}

func (c *Cycle) expect(state State, op string) error {
	if c.state != state {
		return fmt.Errorf("%w: cannot %s in state %s", ErrInvalidTransition, op, c.state)
	}
	return nil
}
