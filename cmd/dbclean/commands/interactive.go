package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/ruslano69/dbclean/pkg/core/query"
)

// Interactive builds queries with prompts and runs them one by one
// until the user declines another query or presses Ctrl+C.
func Interactive(ctx context.Context, rt *Runtime) error {
	adapter, exec, err := rt.open(ctx)
	if err != nil {
		return err
	}
	defer adapter.Close(ctx)

	tables, err := adapter.GetTableNames(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	for {
		spec, err := askQuery(tables)
		if errors.Is(err, terminal.InterruptErr) {
			return nil
		}
		if err != nil {
			return err
		}

		// ошибка одного запроса не прерывает сессию
		var presented *PresentedError
		if err := runQuery(ctx, rt, adapter, exec, spec); err != nil && !errors.As(err, &presented) {
			fmt.Fprintf(rt.out(), "✗ %v\n", err)
		}

		again := true
		if err := survey.AskOne(&survey.Confirm{Message: "Run another query?", Default: true}, &again); err != nil || !again {
			return nil
		}
	}
}

func askQuery(tables []string) (QuerySpec, error) {
	var spec QuerySpec

	var tablePrompt survey.Prompt = &survey.Input{Message: "Table:"}
	if len(tables) > 0 {
		tablePrompt = &survey.Select{Message: "Table:", Options: tables, PageSize: 15}
	}
	if err := survey.AskOne(tablePrompt, &spec.From, survey.WithValidator(survey.Required)); err != nil {
		return spec, err
	}

	if err := survey.AskOne(&survey.Input{Message: "Select fields:", Default: "*"}, &spec.Select); err != nil {
		return spec, err
	}

	operators := make([]string, 0, len(query.Operators()))
	for _, op := range query.Operators() {
		operators = append(operators, string(op))
	}

	for {
		add := false
		if err := survey.AskOne(&survey.Confirm{Message: "Add condition?"}, &add); err != nil {
			return spec, err
		}
		if !add {
			break
		}

		answers := struct {
			Field    string
			Operator string
			Value    string
		}{}
		questions := []*survey.Question{
			{Name: "field", Prompt: &survey.Input{Message: "Field:"}, Validate: survey.Required},
			{Name: "operator", Prompt: &survey.Select{
				Message: "Operator:",
				Options: operators,
				Default: string(query.DefaultOperator),
			}},
			{Name: "value", Prompt: &survey.Input{Message: "Value:", Help: "IN takes comma-separated values"}},
		}
		if err := survey.Ask(questions, &answers); err != nil {
			return spec, err
		}

		op, err := query.ParseOperator(answers.Operator)
		if err != nil {
			return spec, err
		}
		spec.Conditions = append(spec.Conditions, query.Condition{
			Field:    answers.Field,
			Operator: op,
			Value:    answers.Value,
		})
	}

	return spec, nil
}
