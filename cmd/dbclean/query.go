package main

import (
	"fmt"
	"strings"

	"github.com/ruslano69/dbclean/cmd/dbclean/commands"
	"github.com/ruslano69/dbclean/pkg/core/query"
)

// BuildQuerySpec constructs a query from command-line flags.
// Without --from the saved query from the config file is used,
// --where conditions are appended to its own.
func BuildQuerySpec(selectFields, from string, where []string, saved QueryConfig) (commands.QuerySpec, error) {
	var spec commands.QuerySpec
	if strings.TrimSpace(from) == "" {
		var err error
		if spec, err = savedQuerySpec(saved); err != nil {
			return commands.QuerySpec{}, err
		}
	} else {
		spec = commands.QuerySpec{
			Select: selectFields,
			From:   from,
		}
	}

	for _, w := range where {
		cond, err := ParseCondition(w)
		if err != nil {
			return commands.QuerySpec{}, fmt.Errorf("failed to parse --where %q: %w", w, err)
		}
		spec.Conditions = append(spec.Conditions, cond)
	}
	return spec, nil
}

func savedQuerySpec(saved QueryConfig) (commands.QuerySpec, error) {
	if saved.From == "" {
		return commands.QuerySpec{}, fmt.Errorf("no table: use --from or set query.from in config")
	}

	spec := commands.QuerySpec{
		Name:   saved.Name,
		Select: saved.Select,
		From:   saved.From,
	}
	if spec.Select == "" {
		spec.Select = "*"
	}
	for i, c := range saved.Conditions {
		op, err := query.ParseOperator(c.Operator)
		if err != nil {
			return commands.QuerySpec{}, fmt.Errorf("query.conditions[%d]: %w", i, err)
		}
		spec.Conditions = append(spec.Conditions, query.Condition{Field: c.Field, Operator: op, Value: c.Value})
	}
	return spec, nil
}

// ParseCondition parses "field|operator|value".
// The value is kept as is and may itself contain '|'.
func ParseCondition(s string) (query.Condition, error) {
	parts := strings.SplitN(s, "|", 3)
	if len(parts) != 3 {
		return query.Condition{}, fmt.Errorf("expected field|operator|value")
	}

	field := strings.TrimSpace(parts[0])
	if field == "" {
		return query.Condition{}, fmt.Errorf("field is empty")
	}

	op, err := query.ParseOperator(parts[1])
	if err != nil {
		return query.Condition{}, err
	}

	return query.Condition{Field: field, Operator: op, Value: parts[2]}, nil
}
