package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/accudio/llm-cohere/pkg/modeladapter"
)

// ErrUnknownModel is returned by Registry.Get for an unregistered id.
var ErrUnknownModel = errors.New("unknown model")

// Registry holds the models contributed by plugins, keyed by id.
type Registry struct {
	mu     sync.RWMutex
	models map[string]modeladapter.Model
	order  []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]modeladapter.Model)}
}

// Register adds m. Registering a second model under the same id is an error.
func (r *Registry) Register(m modeladapter.Model) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := m.ID()
	if _, dup := r.models[id]; dup {
		return fmt.Errorf("engine: model %q already registered", id)
	}

	r.models[id] = m
	r.order = append(r.order, id)

	return nil
}

// Get returns the model registered under id.
func (r *Registry) Get(id string) (modeladapter.Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.models[id]
	if !ok {
		return nil, fmt.Errorf("engine: %w: %q", ErrUnknownModel, id)
	}

	return m, nil
}

// Models returns the registered models in registration order.
func (r *Registry) Models() []modeladapter.Model {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]modeladapter.Model, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.models[id])
	}

	return out
}
