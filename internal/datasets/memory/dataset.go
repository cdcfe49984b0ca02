// Package memory implements the dataset contract on an in-process buffered
// channel. It backs local wiring that needs no broker, and the asynchronous
// variant of the same store. Handles created for the same dataset name
// share one buffer.
package memory

import (
	"fmt"
	"time"

	"github.com/Convex-Labs/aineko-core/internal/common/errors"
	"github.com/Convex-Labs/aineko-core/internal/datasets"
	"github.com/Convex-Labs/aineko-core/internal/datasets/base"
)

// TypeKey is the registry key for the in-memory backend.
const TypeKey = "memory"

const defaultCapacity = 1024

type backend struct {
	name  string
	store *store
}

func newBackend(name string, config datasets.Config) *backend {
	capacity := defaultCapacity
	if raw, ok := config.Params["capacity"]; ok {
		if n, ok := raw.(int); ok && n > 0 {
			capacity = n
		}
	}

	return &backend{
		name:  name,
		store: getStore(name, capacity),
	}
}

func (b *backend) Read(opts datasets.ReadOptions) (interface{}, error) {
	if opts.Block {
		timeout := opts.Timeout
		if timeout <= 0 {
			return <-b.store.values, nil
		}
		select {
		case value := <-b.store.values:
			return value, nil
		case <-time.After(timeout):
			return nil, nil
		}
	}

	select {
	case value := <-b.store.values:
		return value, nil
	default:
		// Empty stream is not a failure; callers poll.
		return nil, nil
	}
}

func (b *backend) Write(value interface{}, opts datasets.WriteOptions) error {
	select {
	case b.store.values <- value:
		return nil
	default:
		return fmt.Errorf("buffer full (capacity %d)", b.store.capacity)
	}
}

func (b *backend) Create(opts datasets.CreateOptions) (*datasets.CreateStatus, error) {
	b.store.markCreated(true)
	return datasets.NewCreateStatus(b.name), nil
}

func (b *backend) Delete() error {
	b.store.drain()
	b.store.markCreated(false)
	dropStore(b.name)
	return nil
}

func (b *backend) Initialize(params datasets.ConnectionParams) error {
	return nil
}

func (b *backend) Exists() (bool, error) {
	return b.store.isCreated(), nil
}

func (b *backend) Describe() (string, error) {
	return fmt.Sprintf("memory dataset %s: %d buffered, capacity %d",
		b.name, len(b.store.values), b.store.capacity), nil
}

func newDataset(name string, config datasets.Config) datasets.Dataset {
	return base.Wrap(name, TypeKey, newBackend(name, config))
}

// Factory builds in-memory datasets.
type Factory struct{}

func (f *Factory) Create(name string, config datasets.Config) (datasets.Dataset, error) {
	if name == "" {
		return nil, errors.ConfigError("dataset name is required")
	}
	return newDataset(name, config), nil
}

func (f *Factory) TypeKey() string {
	return TypeKey
}

func init() {
	datasets.Register(&Factory{})
	datasets.RegisterAsync(&AsyncFactory{})
}
