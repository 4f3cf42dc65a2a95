package annotations

import (
	"fmt"
	"sort"
	"sync"
)

// Registry stores the schemas of the marker kinds delegen understands
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]MarkerSchema
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]MarkerSchema)}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns a registry holding the built-in schemas
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		if err := RegisterBuiltinSchemas(defaultRegistry); err != nil {
			panic(fmt.Sprintf("failed to register builtin schemas: %v", err))
		}
	})
	return defaultRegistry
}

// Register adds a schema
func (r *Registry) Register(schema MarkerSchema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[schema.Kind]; exists {
		return fmt.Errorf("marker kind %s is already registered", schema.Kind)
	}
	if err := validateSchema(schema); err != nil {
		return fmt.Errorf("invalid schema for %s: %w", schema.Kind, err)
	}

	r.schemas[schema.Kind] = schema
	return nil
}

// Schema retrieves the schema for a marker kind
func (r *Registry) Schema(kind string) (MarkerSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, ok := r.schemas[kind]
	return schema, ok
}

// Kinds returns all registered marker kinds, sorted
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.schemas))
	for k := range r.schemas {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
