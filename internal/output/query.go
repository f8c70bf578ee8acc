package output

import (
	"errors"
	"fmt"

	"github.com/itchyny/gojq"
)

// Query runs a jq expression over v and returns every result.
func Query(v any, expression string) ([]any, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("parse jq expression %q: %w", expression, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("compile jq expression %q: %w", expression, err)
	}

	input, err := toGeneric(v)
	if err != nil {
		return nil, err
	}

	var results []any
	iter := code.Run(input)
	for {
		result, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := result.(error); isErr {
			var halt *gojq.HaltError
			if errors.As(err, &halt) && halt.Value() == nil {
				break
			}
			return nil, fmt.Errorf("jq evaluation: %w", err)
		}
		results = append(results, result)
	}
	return results, nil
}
