package processors

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog/log"
)

// NormalizeRule определяет правило нормализации
type NormalizeRule string

const (
	// NormalizePhone приводит телефон к формату 79991234567
	NormalizePhone NormalizeRule = "phone"
	// NormalizeEmail приводит email к нижнему регистру
	NormalizeEmail NormalizeRule = "email"
	// NormalizeWhitespace убирает лишние пробелы
	NormalizeWhitespace NormalizeRule = "whitespace"
	// NormalizeTrim убирает пробелы по краям
	NormalizeTrim NormalizeRule = "trim"
	// NormalizeUpperCase приводит к верхнему регистру
	NormalizeUpperCase NormalizeRule = "uppercase"
	// NormalizeLowerCase приводит к нижнему регистру
	NormalizeLowerCase NormalizeRule = "lowercase"
	// NormalizeDate приводит дату к формату YYYY-MM-DD, нераспознанная дата становится пустой
	NormalizeDate NormalizeRule = "date"
	// NormalizeText - нижний регистр без пунктуации и цифр
	NormalizeText NormalizeRule = "text"
)

// AllColumns - имя поля, применяющее правило ко всем колонкам
const AllColumns = "*"

// FieldNormalizer нормализует данные в указанных полях
type FieldNormalizer struct {
	fieldsToNormalize map[string]NormalizeRule // field_name -> normalize_rule

	// Предкомпилированные регулярные выражения
	phoneRegex      *regexp.Regexp
	whitespaceRegex *regexp.Regexp
	dateRegex       *regexp.Regexp
}

// NewFieldNormalizer создает новый нормализатор полей
func NewFieldNormalizer(fieldsToNormalize map[string]NormalizeRule) *FieldNormalizer {
	return &FieldNormalizer{
		fieldsToNormalize: fieldsToNormalize,
		phoneRegex:        regexp.MustCompile(`[^\d+]`),
		whitespaceRegex:   regexp.MustCompile(`\s+`),
		dateRegex:         regexp.MustCompile(`^(\d{1,2})[./\-](\d{1,2})[./\-](\d{2,4})$`), // DD.MM.YYYY или DD/MM/YY
	}
}

// Name возвращает имя процессора
func (n *FieldNormalizer) Name() string {
	return "field_normalizer"
}

// Process реализует интерфейс Processor
func (n *FieldNormalizer) Process(ctx context.Context, data [][]string, columns []string) ([][]string, error) {
	if len(n.fieldsToNormalize) == 0 {
		return data, nil
	}

	// Находим индексы колонок, которые нужно нормализовать
	fieldIndices := make(map[int]NormalizeRule)
	allRule, hasAll := n.fieldsToNormalize[AllColumns]
	for i, name := range columns {
		if rule, ok := n.fieldsToNormalize[name]; ok {
			fieldIndices[i] = rule
		} else if hasAll {
			fieldIndices[i] = allRule
		}
	}

	for name := range n.fieldsToNormalize {
		if name != AllColumns && columnIndex(columns, name) < 0 {
			return nil, fmt.Errorf("column %q not found", name)
		}
	}

	if len(fieldIndices) == 0 {
		return data, nil
	}

	result := make([][]string, len(data))
	for i, row := range data {
		newRow := make([]string, len(row))
		copy(newRow, row)

		for colIndex, rule := range fieldIndices {
			if colIndex < len(newRow) && newRow[colIndex] != "" {
				normalized, err := n.normalizeValue(newRow[colIndex], rule)
				if err != nil {
					log.Debug().Err(err).Str("column", columns[colIndex]).Int("row", i).Msg("value left as is")
					continue
				}
				newRow[colIndex] = normalized
			}
		}

		result[i] = newRow
	}

	return result, nil
}

// normalizeValue применяет правило нормализации к значению
func (n *FieldNormalizer) normalizeValue(value string, rule NormalizeRule) (string, error) {
	switch rule {
	case NormalizePhone:
		return n.normalizePhone(value), nil
	case NormalizeEmail:
		return normalizeEmail(value)
	case NormalizeWhitespace:
		return n.whitespaceRegex.ReplaceAllString(strings.TrimSpace(value), " "), nil
	case NormalizeTrim:
		return strings.TrimSpace(value), nil
	case NormalizeUpperCase:
		return strings.ToUpper(value), nil
	case NormalizeLowerCase:
		return strings.ToLower(value), nil
	case NormalizeDate:
		return n.normalizeDate(value), nil
	case NormalizeText:
		return normalizeText(value), nil
	default:
		return value, fmt.Errorf("unknown normalize rule: %s", rule)
	}
}

// normalizePhone приводит телефон к формату 79991234567
// Примеры:
//   - "+7 (999) 123-45-67" → "79991234567"
//   - "8(999)123-45-67" → "79991234567"
//
// Нероссийские номера возвращаются как есть.
func (n *FieldNormalizer) normalizePhone(value string) string {
	cleaned := n.phoneRegex.ReplaceAllString(value, "")
	cleaned = strings.TrimPrefix(cleaned, "+")

	if strings.HasPrefix(cleaned, "8") && len(cleaned) == 11 {
		cleaned = "7" + cleaned[1:]
	}

	if len(cleaned) != 11 || !strings.HasPrefix(cleaned, "7") {
		return value
	}
	return cleaned
}

// normalizeEmail: "  John.Doe@Example.COM " → "john.doe@example.com"
func normalizeEmail(value string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	at := strings.LastIndex(normalized, "@")
	if at <= 0 || !strings.Contains(normalized[at:], ".") {
		return value, fmt.Errorf("invalid email format")
	}
	return normalized, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02 Jan 2006",
	"Jan 2, 2006",
}

// normalizeDate приводит дату к формату YYYY-MM-DD
// Примеры:
//   - "01.12.2024" → "2024-12-01"
//   - "15/03/24" → "2024-03-15"
//   - "2024-03-15T10:00:00Z" → "2024-03-15"
//
// Нераспознанное значение становится пустым.
func (n *FieldNormalizer) normalizeDate(value string) string {
	value = strings.TrimSpace(value)

	if m := n.dateRegex.FindStringSubmatch(value); len(m) == 4 {
		day, month, year := m[1], m[2], m[3]
		if len(year) == 2 {
			year = "20" + year
		}
		t, err := time.Parse("2006-1-2", year+"-"+month+"-"+day)
		if err != nil {
			return ""
		}
		return t.Format("2006-01-02")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// normalizeText: нижний регистр, без пунктуации и цифр
func normalizeText(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(value) {
		if unicode.IsPunct(r) || unicode.IsDigit(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NewFieldNormalizerFromConfig создает FieldNormalizer из конфигурации
// params: fields: {email: email, name: whitespace}
func NewFieldNormalizerFromConfig(params map[string]any) (*FieldNormalizer, error) {
	fieldsToNormalize := make(map[string]NormalizeRule)

	fields, ok := params["fields"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'fields' parameter")
	}

	for fieldName, ruleStr := range fields {
		rule := NormalizeRule(fmt.Sprintf("%v", ruleStr))
		switch rule {
		case NormalizePhone, NormalizeEmail, NormalizeWhitespace, NormalizeTrim,
			NormalizeUpperCase, NormalizeLowerCase, NormalizeDate, NormalizeText:
			fieldsToNormalize[fieldName] = rule
		default:
			return nil, fmt.Errorf("invalid normalize rule '%s' for field '%s'", rule, fieldName)
		}
	}

	return NewFieldNormalizer(fieldsToNormalize), nil
}
