// Package policy gates tool execution requested by the model behind an
// OPA policy, so which capabilities the assistant may exercise is data,
// not code.
package policy

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/open-policy-agent/opa/ast"
	"github.com/open-policy-agent/opa/rego"
)

// Decisions returned by the policy.
const (
	DecisionAllow = "allow"
	DecisionBlock = "block"
)

// Engine evaluates the tool-use policy.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine compiles the given rego policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.tool_policy.decision"),
		rego.Module("tool_policy.rego", policyContent),
		// Policies are written in Rego v1 syntax (`if` without imports).
		rego.SetRegoVersion(ast.RegoV1),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}
	return &Engine{query: query}, nil
}

// Evaluate decides whether a tool call may run. Input to the policy is
// {tool_name, args}.
func (e *Engine) Evaluate(ctx context.Context, toolName string, args json.RawMessage) (string, error) {
	var parsedArgs any
	if len(args) > 0 {
		// Best effort; the policy sees null args on a parse failure.
		_ = json.Unmarshal(args, &parsedArgs)
	}

	input := map[string]any{
		"tool_name": toolName,
		"args":      parsedArgs,
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionBlock, nil
	}
	if s, ok := results[0].Expressions[0].Value.(string); ok {
		return s, nil
	}
	return DecisionBlock, nil
}

// DefaultPolicy allows the builtin clock tool and blocks everything else.
const DefaultPolicy = `
package tool_policy

default decision := "block"

decision := "allow" if {
	input.tool_name == "time.now"
}
`
