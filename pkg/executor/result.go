package executor

import (
	"fmt"
	"strconv"
	"time"
)

// Row - одна строка результата в порядке колонок.
// Значения как их вернул драйвер, []byte приводится к string.
type Row []any

// Result - полностью материализованный результат SELECT
type Result struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Len возвращает количество строк
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Strings возвращает строки результата как [][]string (NULL → "")
func (r *Result) Strings() [][]string {
	if r == nil {
		return nil
	}
	out := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		values := make([]string, len(row))
		for j, v := range row {
			values[j] = FormatValue(v)
		}
		out[i] = values
	}
	return out
}

// FromStrings строит Result из строковой таблицы (CSV, XLSX, результат очистки)
func FromStrings(columns []string, rows [][]string) *Result {
	result := &Result{
		Columns: append([]string(nil), columns...),
		Rows:    make([]Row, len(rows)),
	}
	for i, values := range rows {
		row := make(Row, len(values))
		for j, v := range values {
			row[j] = v
		}
		result.Rows[i] = row
	}
	return result
}

// FormatValue приводит значение драйвера к строке для экспорта
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
