package processors

import (
	"context"
	"fmt"
	"strings"
)

// Deduplicator удаляет повторяющиеся строки, оставляя первое вхождение.
// Без ключевых колонок строки сравниваются целиком.
type Deduplicator struct {
	keys []string
}

// NewDeduplicator создает процессор удаления дубликатов
func NewDeduplicator(keys ...string) *Deduplicator {
	return &Deduplicator{keys: keys}
}

// Name возвращает имя процессора
func (d *Deduplicator) Name() string {
	return "deduplicator"
}

// Process реализует интерфейс Processor
func (d *Deduplicator) Process(ctx context.Context, data [][]string, columns []string) ([][]string, error) {
	indices := make([]int, 0, len(d.keys))
	for _, key := range d.keys {
		idx := columnIndex(columns, key)
		if idx < 0 {
			return nil, fmt.Errorf("key column %q not found", key)
		}
		indices = append(indices, idx)
	}

	seen := make(map[string]struct{}, len(data))
	result := make([][]string, 0, len(data))
	for _, row := range data {
		k := rowKey(row, indices)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, row)
	}

	return result, nil
}

// rowKey собирает ключ строки; \x1f не встречается в обычных данных
func rowKey(row []string, indices []int) string {
	if len(indices) == 0 {
		return strings.Join(row, "\x1f")
	}

	parts := make([]string, len(indices))
	for i, idx := range indices {
		if idx < len(row) {
			parts[i] = row[idx]
		}
	}
	return strings.Join(parts, "\x1f")
}

// NewDeduplicatorFromConfig создает Deduplicator из конфигурации
// params: keys: [id, email] (необязательно)
func NewDeduplicatorFromConfig(params map[string]any) (*Deduplicator, error) {
	raw, ok := params["keys"]
	if !ok || raw == nil {
		return NewDeduplicator(), nil
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("invalid 'keys' parameter: expected list")
	}

	keys := make([]string, 0, len(list))
	for _, k := range list {
		keys = append(keys, fmt.Sprintf("%v", k))
	}
	return NewDeduplicator(keys...), nil
}
