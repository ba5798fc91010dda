// Package tool defines the side-effect interface workflow nodes use to
// act on the outside world, plus a registry for looking tools up by name.
package tool

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Tool is a named action a workflow can invoke: draft an email, check a
// calendar, call an HTTP API.
//
// Implementations should be stateless and safe for concurrent use, since
// one registry serves every conversation thread.
type Tool interface {
	// Name returns the identifier tools are dispatched by. Names are
	// short, lowercase and stable ("email", "calendar").
	Name() string

	// Description says what the tool does, in one sentence. Routers
	// include it in prompts so the model knows what is available.
	Description() string

	// Call executes the tool. args carries tool-specific parameters;
	// missing entries get tool-defined defaults where sensible. The
	// returned string is human-readable output that flows into the
	// final response.
	Call(ctx context.Context, args map[string]interface{}) (string, error)
}

// Registry holds the tools available to a workflow, keyed by name.
// The zero value is not usable; construct with NewRegistry.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates a registry preloaded with the given tools.
// Registering two tools with the same name keeps the last one.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds a tool, replacing any existing tool of the same name.
// Nil tools are ignored.
func (r *Registry) Register(t Tool) {
	if t == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call dispatches to the named tool. Unknown names return an error that
// lists what is registered, so the failure message itself tells the
// model (and the user) what would have worked.
func (r *Registry) Call(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	t, ok := r.Get(name)
	if !ok {
		return "", &UnknownToolError{Name: name, Available: r.Names()}
	}
	return t.Call(ctx, args)
}

// UnknownToolError reports a dispatch to a name with no registered tool.
type UnknownToolError struct {
	Name      string
	Available []string
}

// Error implements the error interface.
func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s (available: %v)", e.Name, e.Available)
}
