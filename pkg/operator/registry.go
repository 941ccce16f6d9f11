package operator

import (
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-opforms/pkg/types"
)

// Registry stores operators by name. It is safe for concurrent use; the
// operators themselves should be treated as immutable once registered.
type Registry struct {
	mu        sync.RWMutex
	operators map[string]Operator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		operators: make(map[string]Operator),
	}
}

// Register normalizes and stores op. Duplicate names return an error.
func (r *Registry) Register(op Operator) error {
	if err := op.Normalize(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.operators[op.Name]; exists {
		return fmt.Errorf("operator: %q already registered", op.Name)
	}
	r.operators[op.Name] = op
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(op Operator) {
	if err := r.Register(op); err != nil {
		panic(err)
	}
}

// Get retrieves an operator by name.
func (r *Registry) Get(name string) (Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	op, ok := r.operators[name]
	if !ok {
		return Operator{}, fmt.Errorf("operator: %q not found", name)
	}
	return op, nil
}

// Has reports whether an operator is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.operators[name]
	return ok
}

// List returns the registered names sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.operators))
	for name := range r.operators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the operator a trigger points at.
func (r *Registry) Resolve(trigger *types.Trigger) (Operator, error) {
	if trigger == nil {
		return Operator{}, fmt.Errorf("operator: trigger is required")
	}
	op, err := r.Get(trigger.Operator())
	if err != nil {
		return Operator{}, fmt.Errorf("operator: resolve trigger: %w", err)
	}
	return op, nil
}

// CheckTriggers verifies that every trigger of every registered operator
// points at a registered operator.
func (r *Registry) CheckTriggers() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.operators))
	for name := range r.operators {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		op := r.operators[name]
		for _, key := range op.TriggerNames() {
			target := op.Triggers[key].Operator()
			if _, ok := r.operators[target]; !ok {
				return fmt.Errorf("operator: %q trigger %q references unknown operator %q", name, key, target)
			}
		}
	}
	return nil
}
