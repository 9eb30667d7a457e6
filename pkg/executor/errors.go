package executor

import "errors"

// ErrNotConnected - адаптер закрыт или не подключен
var ErrNotConnected = errors.New("database is not connected")

// ErrTableNotFound - таблица отсутствует в каталоге БД
var ErrTableNotFound = errors.New("table not found")

// ExecutionError - любая ошибка выполнения: соединение, синтаксис, права,
// чтение строк, таймаут, отказ safe mode.
// Error() возвращает сообщение драйвера без изменений.
type ExecutionError struct {
	Op  string // acquire, validate, query, scan, insert
	SQL string
	Err error
}

func (e *ExecutionError) Error() string {
	return e.Err.Error()
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
