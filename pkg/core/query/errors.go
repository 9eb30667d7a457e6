package query

import (
	"fmt"
	"strings"
)

// MalformedQueryError - запрос не прошел проверку перед трансляцией
type MalformedQueryError struct {
	Problems []string
}

func (e *MalformedQueryError) Error() string {
	return "malformed query: " + strings.Join(e.Problems, "; ")
}

func conditionProblem(index int, msg string) string {
	return fmt.Sprintf("condition %d: %s", index+1, msg)
}
