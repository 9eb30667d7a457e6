package security

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrPolicyViolation - базовая ошибка отказа валидатора, проверяется через errors.Is
var ErrPolicyViolation = errors.New("sql rejected by safe mode")

// SQLValidator проверяет текст SQL перед выполнением.
//
// В safe mode разрешен ровно один SELECT или WITH запрос без комментариев
// и без изменяющих ключевых слов. Содержимое строковых литералов и
// квотированных идентификаторов не анализируется: WHERE name = 'DROP'
// допустим.
//
// В unsafe mode все запросы проходят без проверки.
type SQLValidator struct {
	safeMode bool

	// backslashEscapes - \' внутри строки не закрывает литерал (MySQL)
	backslashEscapes bool
}

// NewSQLValidator создает новый SQL валидатор
func NewSQLValidator(safeMode bool) *SQLValidator {
	return &SQLValidator{
		safeMode: safeMode,
	}
}

// ForDialect настраивает разбор литералов под СУБД и возвращает v.
// MySQL по умолчанию считает обратный слеш escape-символом в '...' и "...".
func (v *SQLValidator) ForDialect(dbType string) *SQLValidator {
	v.backslashEscapes = strings.EqualFold(dbType, "mysql")
	return v
}

// forbidden - ключевые слова, запрещенные в safe mode
var forbidden = map[string]struct{}{
	// DML
	"INSERT": {}, "UPDATE": {}, "DELETE": {}, "TRUNCATE": {}, "MERGE": {}, "REPLACE": {},
	// DDL
	"DROP": {}, "CREATE": {}, "ALTER": {}, "RENAME": {},
	// DCL
	"GRANT": {}, "REVOKE": {},
	// процедуры
	"EXECUTE": {}, "EXEC": {}, "CALL": {},
	// SQLite
	"PRAGMA": {}, "ATTACH": {}, "DETACH": {}, "VACUUM": {},
	// транзакции
	"BEGIN": {}, "COMMIT": {}, "ROLLBACK": {},
	// SELECT ... INTO создает таблицу в MS SQL
	"INTO": {},
}

// Validate проверяет SQL запрос. Возвращает ошибку, оборачивающую ErrPolicyViolation.
func (v *SQLValidator) Validate(sql string) error {
	if !v.safeMode {
		return nil
	}

	code, err := stripLiterals(sql, v.backslashEscapes)
	if err != nil {
		return violation("%v", err)
	}

	words := strings.FieldsFunc(strings.ToUpper(code), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
	if len(words) == 0 {
		return violation("empty query")
	}

	// 1. Разрешены только SELECT и WITH
	if words[0] != "SELECT" && words[0] != "WITH" {
		return violation("only SELECT and WITH queries allowed, got: %s", words[0])
	}

	// 2. Запрещенные ключевые слова вне литералов
	for _, w := range words {
		if _, ok := forbidden[w]; ok {
			return violation("forbidden keyword '%s'", w)
		}
	}

	// 3. Одна команда, точка с запятой допустима только в конце
	trimmed := strings.TrimRight(strings.TrimSpace(code), ";")
	if strings.Contains(trimmed, ";") {
		return violation("multiple statements not allowed")
	}

	return nil
}

// stripLiterals заменяет содержимое '...', "..." и `...` пробелами
// и отклоняет комментарии -- и /* */ вне литералов.
// backslash: \x внутри '...' и "..." - экранированный символ.
func stripLiterals(sql string, backslash bool) (string, error) {
	var b strings.Builder
	b.Grow(len(sql))

	var quote rune
	runes := []rune(sql)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if quote != 0 {
			if backslash && r == '\\' && (quote == '\'' || quote == '"') {
				b.WriteRune(' ')
				if i+1 < len(runes) {
					i++
					b.WriteRune(' ')
				}
				continue
			}
			if r == quote {
				// удвоенная кавычка внутри литерала
				if i+1 < len(runes) && runes[i+1] == quote {
					i++
					b.WriteString("  ")
					continue
				}
				quote = 0
			}
			b.WriteRune(' ')
			continue
		}

		switch r {
		case '\'', '"', '`':
			quote = r
			b.WriteRune(' ')
			continue
		case '[':
			// [identifier] в MS SQL
			quote = ']'
			b.WriteRune(' ')
			continue
		case '-':
			if i+1 < len(runes) && runes[i+1] == '-' {
				return "", fmt.Errorf("SQL comments (--) not allowed")
			}
		case '/':
			if i+1 < len(runes) && runes[i+1] == '*' {
				return "", fmt.Errorf("SQL comments (/* */) not allowed")
			}
		}
		b.WriteRune(r)
	}

	if quote != 0 {
		return "", fmt.Errorf("unterminated quoted literal")
	}
	return b.String(), nil
}

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPolicyViolation, fmt.Sprintf(format, args...))
}

// IsSafeMode возвращает текущий режим валидатора
func (v *SQLValidator) IsSafeMode() bool {
	return v.safeMode
}
