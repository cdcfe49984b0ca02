package datasets

import (
	"fmt"
	"sync"

	"github.com/Convex-Labs/aineko-core/internal/common/errors"
)

// Registry maps dataset type keys to factories. Looking up an unregistered
// key is a configuration error, never a dataset error.
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

func (r *Registry) Register(factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[factory.TypeKey()] = factory
}

func (r *Registry) Create(name string, config Config) (Dataset, error) {
	r.mu.RLock()
	factory, exists := r.factories[config.Type]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.ConfigError(fmt.Sprintf("dataset type %s not registered", config.Type))
	}

	return factory.Create(name, config)
}

func (r *Registry) AvailableTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for typeKey := range r.factories {
		types = append(types, typeKey)
	}
	return types
}

func (r *Registry) IsRegistered(typeKey string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.factories[typeKey]
	return exists
}

// AsyncRegistry is the registry for the asynchronous dataset hierarchy.
type AsyncRegistry struct {
	factories map[string]AsyncFactory
	mu        sync.RWMutex
}

func NewAsyncRegistry() *AsyncRegistry {
	return &AsyncRegistry{
		factories: make(map[string]AsyncFactory),
	}
}

func (r *AsyncRegistry) Register(factory AsyncFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[factory.TypeKey()] = factory
}

func (r *AsyncRegistry) Create(name string, config Config) (AsyncDataset, error) {
	r.mu.RLock()
	factory, exists := r.factories[config.Type]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.ConfigError(fmt.Sprintf("async dataset type %s not registered", config.Type))
	}

	return factory.Create(name, config)
}

func (r *AsyncRegistry) IsRegistered(typeKey string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.factories[typeKey]
	return exists
}

// DefaultRegistry is populated by backend packages at startup.
var DefaultRegistry = NewRegistry()

// DefaultAsyncRegistry is the async counterpart of DefaultRegistry.
var DefaultAsyncRegistry = NewAsyncRegistry()

func Register(factory Factory) {
	DefaultRegistry.Register(factory)
}

func RegisterAsync(factory AsyncFactory) {
	DefaultAsyncRegistry.Register(factory)
}

func Create(name string, config Config) (Dataset, error) {
	return DefaultRegistry.Create(name, config)
}

func CreateAsync(name string, config Config) (AsyncDataset, error) {
	return DefaultAsyncRegistry.Create(name, config)
}
