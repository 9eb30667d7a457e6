// Package presenter выводит результат выполнения запроса.
// Успех и ошибка идут в один и тот же writer: строки в порядке результата
// либо одна строка с сообщением ошибки.
package presenter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/ruslano69/dbclean/pkg/executor"
)

// Format - формат вывода результата
type Format string

const (
	FormatText  Format = "text"
	FormatTable Format = "table"
)

// ParseFormat разбирает значение флага --format
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatTable:
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format: %s (supported: text, table)", s)
	}
}

// Render выводит результат в выбранном формате
func Render(w io.Writer, format Format, result *executor.Result, err error) error {
	if err == nil && format == FormatTable {
		return PresentTable(w, result)
	}
	return Present(w, result, err)
}

// Present выводит каждую строку отдельной строкой текста в виде кортежа:
//
//	(1, 'Alice', None)
//
// При ошибке выводится только сообщение ошибки.
func Present(w io.Writer, result *executor.Result, err error) error {
	if err != nil {
		_, werr := fmt.Fprintln(w, err.Error())
		return werr
	}
	if result == nil {
		return nil
	}

	for _, row := range result.Rows {
		if _, werr := fmt.Fprintln(w, FormatRow(row)); werr != nil {
			return werr
		}
	}
	return nil
}

// PresentTable выводит результат таблицей pterm с заголовком
func PresentTable(w io.Writer, result *executor.Result) error {
	if result == nil {
		return nil
	}

	data := pterm.TableData{result.Columns}
	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				cells[i] = "NULL"
				continue
			}
			cells[i] = executor.FormatValue(v)
		}
		data = append(data, cells)
	}

	rendered, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	_, err = fmt.Fprintln(w, rendered)
	return err
}

// FormatRow форматирует строку как кортеж; одноэлементный кортеж пишется "(x,)"
func FormatRow(row executor.Row) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = formatLiteral(v)
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func formatLiteral(v any) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case bool:
		if val {
			return "True"
		}
		return "False"
	case string:
		return quote(val)
	case []byte:
		return quote(string(val))
	case time.Time:
		return quote(val.Format("2006-01-02 15:04:05"))
	case float64:
		return formatFloat(val)
	case float32:
		return formatFloat(float64(val))
	default:
		return fmt.Sprint(val)
	}
}

// formatFloat всегда оставляет дробную часть: 5 → 5.0
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// quote берет одинарные кавычки, а если они есть в строке и нет двойных - двойные
func quote(s string) string {
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		return `"` + escape(s, 0) + `"`
	}
	return "'" + escape(s, '\'') + "'"
}

func escape(s string, q rune) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if r == q {
				b.WriteRune('\\')
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}
