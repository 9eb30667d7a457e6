// Package processors содержит цепочку очистки строк результата.
// Строки передаются как [][]string вместе с именами колонок: так одинаково
// обрабатываются результаты SELECT, CSV и XLSX.
package processors

import (
	"context"
)

// Processor определяет интерфейс шага очистки
type Processor interface {
	// Name возвращает имя процессора
	Name() string

	// Process обрабатывает данные
	// data - строки данных (каждая строка - массив строк)
	// columns - имена колонок в порядке значений строки
	Process(ctx context.Context, data [][]string, columns []string) ([][]string, error)
}

// Config содержит конфигурацию процессора (элемент секции cleaning)
type Config struct {
	Type   string         `yaml:"type"`   // field_normalizer, deduplicator
	Params map[string]any `yaml:"params"` // Параметры процессора
}

// columnIndex возвращает индекс колонки по имени или -1
func columnIndex(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}
