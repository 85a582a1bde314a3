package core

import (
	"reflect"
	"strings"
	"sync"
)

// DefaultStrategyTag is the tag resolved when Create receives an empty one.
const DefaultStrategyTag = "none"

// StrategyRegistry maps string discriminators ("none", "oauth2", ...) to
// strategy constructors. Registration is expected at process start-up but
// the registry is safe for concurrent use at any point.
type StrategyRegistry struct {
	mu           sync.RWMutex
	constructors map[string]StrategyConstructor
}

func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{constructors: make(map[string]StrategyConstructor)}
}

// Register binds tag to ctor. Binding the same constructor twice under the
// same tag is a no-op; binding a different constructor to an occupied tag
// fails with a conflict error.
func (r *StrategyRegistry) Register(tag string, ctor StrategyConstructor) error {
	if r == nil {
		return newDependencyError("core: strategy registry is not configured")
	}
	tag = normalizeTag(tag)
	if tag == "" {
		return NewInvalidInputError("core: strategy tag is required")
	}
	if ctor == nil {
		return NewInvalidInputError("core: strategy constructor is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.constructors == nil {
		r.constructors = make(map[string]StrategyConstructor)
	}
	if existing, ok := r.constructors[tag]; ok {
		if sameConstructor(existing, ctor) {
			return nil
		}
		return NewConflictError(tag)
	}
	r.constructors[tag] = ctor
	return nil
}

// Create resolves tag (empty defaults to "none") and constructs the bound
// strategy, passing the server collaborator and optional restored state.
func (r *StrategyRegistry) Create(tag string, server ServerClient, state StateMap) (AuthStrategy, error) {
	if r == nil {
		return nil, newDependencyError("core: strategy registry is not configured")
	}
	tag = normalizeTag(tag)
	if tag == "" {
		tag = DefaultStrategyTag
	}

	r.mu.RLock()
	ctor, ok := r.constructors[tag]
	r.mu.RUnlock()
	if !ok {
		return nil, NewUnknownStrategyError(tag)
	}
	return ctor(server, state), nil
}

// Tags returns the registered tags, unordered.
func (r *StrategyRegistry) Tags() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.constructors))
	for tag := range r.constructors {
		tags = append(tags, tag)
	}
	return tags
}

// Constructors are compared by function identity so re-registering the
// exact same constructor stays idempotent.
func sameConstructor(a, b StrategyConstructor) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func normalizeTag(tag string) string {
	return strings.TrimSpace(strings.ToLower(tag))
}

var defaultRegistry = NewStrategyRegistry()

// DefaultRegistry returns the process-wide registry the root package
// populates with the builtin strategies.
func DefaultRegistry() *StrategyRegistry {
	return defaultRegistry
}

// Register binds tag to ctor on the process-wide registry.
func Register(tag string, ctor StrategyConstructor) error {
	return defaultRegistry.Register(tag, ctor)
}

// Create constructs a strategy from the process-wide registry.
func Create(tag string, server ServerClient, state StateMap) (AuthStrategy, error) {
	return defaultRegistry.Create(tag, server, state)
}
