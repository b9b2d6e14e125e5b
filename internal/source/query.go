package source

import (
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
	"github.com/mcncl/jsontyper/internal/errors"
)

// Query runs a jq expression over data and returns the selected JSON. A
// single result is returned as is; several results are collected into an
// array. Numbers pass through float64, as gojq works on decoded values.
func Query(data []byte, expression string) ([]byte, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("invalid jq expression %q", expression), fmt.Errorf("%w: %v", errors.ErrInvalidQuery, err))
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("failed to compile jq expression %q", expression), fmt.Errorf("%w: %v", errors.ErrInvalidQuery, err))
	}

	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, errors.NewParsingError("invalid JSON data for jq query", errors.ErrInvalidJSON)
	}

	var results []any
	iter := code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, errors.NewInputError(fmt.Sprintf("jq expression %q failed", expression), fmt.Errorf("%w: %v", errors.ErrInvalidQuery, err))
		}
		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return nil, errors.NewInputError(fmt.Sprintf("jq expression %q produced no output", expression), errors.ErrEmptyInput)
	case 1:
		return json.Marshal(results[0])
	default:
		return json.Marshal(results)
	}
}
