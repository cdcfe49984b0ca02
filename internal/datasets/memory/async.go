package memory

import (
	"context"
	"fmt"

	"github.com/Convex-Labs/aineko-core/internal/common/errors"
	"github.com/Convex-Labs/aineko-core/internal/datasets"
	"github.com/Convex-Labs/aineko-core/internal/datasets/base"
)

// asyncBackend is the asynchronous view onto the same shared store the
// synchronous backend uses. Reads block until a value arrives or the
// context is done; writes block while the buffer is full.
type asyncBackend struct {
	name  string
	store *store
}

func newAsyncBackend(name string, config datasets.Config) *asyncBackend {
	capacity := defaultCapacity
	if raw, ok := config.Params["capacity"]; ok {
		if n, ok := raw.(int); ok && n > 0 {
			capacity = n
		}
	}

	return &asyncBackend{
		name:  name,
		store: getStore(name, capacity),
	}
}

func (b *asyncBackend) Read(ctx context.Context, opts datasets.ReadOptions) (interface{}, error) {
	if !opts.Block {
		select {
		case value := <-b.store.values:
			return value, nil
		default:
			return nil, nil
		}
	}

	select {
	case value := <-b.store.values:
		return value, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *asyncBackend) Write(ctx context.Context, value interface{}, opts datasets.WriteOptions) error {
	select {
	case b.store.values <- value:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *asyncBackend) Create(ctx context.Context, opts datasets.CreateOptions) error {
	b.store.markCreated(true)
	return nil
}

func (b *asyncBackend) Delete(ctx context.Context) error {
	b.store.drain()
	b.store.markCreated(false)
	dropStore(b.name)
	return nil
}

func (b *asyncBackend) Initialize(ctx context.Context, params datasets.ConnectionParams) error {
	return nil
}

func (b *asyncBackend) Exists(ctx context.Context) (bool, error) {
	return b.store.isCreated(), nil
}

func (b *asyncBackend) Describe(ctx context.Context) (string, error) {
	return fmt.Sprintf("async memory dataset %s: %d buffered, capacity %d",
		b.name, len(b.store.values), b.store.capacity), nil
}

// AsyncFactory builds asynchronous in-memory datasets.
type AsyncFactory struct{}

func (f *AsyncFactory) Create(name string, config datasets.Config) (datasets.AsyncDataset, error) {
	if name == "" {
		return nil, errors.ConfigError("dataset name is required")
	}
	return base.WrapAsync(name, TypeKey, newAsyncBackend(name, config)), nil
}

func (f *AsyncFactory) TypeKey() string {
	return TypeKey
}
