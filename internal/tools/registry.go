package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// ExecutorFunc runs a tool with the model-supplied JSON arguments.
type ExecutorFunc func(ctx context.Context, args json.RawMessage) (json.RawMessage, error)

// Definition describes a tool to the completion provider.
type Definition struct {
	Name        string
	Description string
	// Parameters is a JSON schema for the arguments object.
	Parameters json.RawMessage
}

// Registry stores tool definitions and executors keyed by tool name.
type Registry struct {
	mu        sync.RWMutex
	defs      []Definition
	executors map[string]ExecutorFunc
}

// DefaultRegistry is the shared registry used by the service.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[string]ExecutorFunc),
	}
}

// Register adds a tool definition with its executor.
func (r *Registry) Register(def Definition, exec ExecutorFunc) error {
	if def.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if exec == nil {
		return fmt.Errorf("executor is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.executors[def.Name]; exists {
		return fmt.Errorf("executor already registered for %s", def.Name)
	}
	r.executors[def.Name] = exec
	r.defs = append(r.defs, def)
	return nil
}

// Definitions returns the registered tool definitions.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Execute runs the executor for the tool name.
func (r *Registry) Execute(ctx context.Context, toolName string, args json.RawMessage) (json.RawMessage, error) {
	if toolName == "" {
		return nil, fmt.Errorf("tool name is required")
	}
	r.mu.RLock()
	exec := r.executors[toolName]
	r.mu.RUnlock()
	if exec == nil {
		return nil, fmt.Errorf("no executor registered for %s", toolName)
	}
	return exec(ctx, args)
}

// Register adds a tool to the default registry.
func Register(def Definition, exec ExecutorFunc) error {
	return DefaultRegistry.Register(def, exec)
}

// MustRegister adds a tool to the default registry or panics.
func MustRegister(def Definition, exec ExecutorFunc) {
	if err := Register(def, exec); err != nil {
		panic(err)
	}
}
