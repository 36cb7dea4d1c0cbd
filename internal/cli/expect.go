package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	exprlang "github.com/expr-lang/expr"
)

var ErrExpectationFailed = errors.New("expectation failed")

// checkExpectation evaluates a boolean expr-lang expression against the JSON fields
// of v, as in --expect 'count == 2 && !isTimerRunning'. An empty expression passes.
func checkExpectation(expression string, v any) error {
	if expression == "" {
		return nil
	}
	env, err := environment(v)
	if err != nil {
		return err
	}
	program, err := exprlang.Compile(expression, exprlang.Env(env), exprlang.AsBool())
	if err != nil {
		return fmt.Errorf("invalid expectation %q: %w", expression, err)
	}
	result, err := exprlang.Run(program, env)
	if err != nil {
		return fmt.Errorf("failed to evaluate expectation %q: %w", expression, err)
	}
	if ok, _ := result.(bool); !ok {
		return fmt.Errorf("%w: %s", ErrExpectationFailed, expression)
	}
	return nil
}

func environment(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	env := map[string]any{}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode state: %w", err)
	}
	return env, nil
}
