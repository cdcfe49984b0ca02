package base

import (
	"context"

	"github.com/Convex-Labs/aineko-core/internal/datasets"
)

// AsyncBackend is the concrete operation set behind an asynchronous
// dataset. Implementations are written as plain context-aware calls; the
// wrapper runs each on its own goroutine and delivers the translated
// result on a channel.
type AsyncBackend interface {
	Read(ctx context.Context, opts datasets.ReadOptions) (interface{}, error)
	Write(ctx context.Context, value interface{}, opts datasets.WriteOptions) error
	Create(ctx context.Context, opts datasets.CreateOptions) error
	Delete(ctx context.Context) error
	Initialize(ctx context.Context, params datasets.ConnectionParams) error
	Exists(ctx context.Context) (bool, error)
	Describe(ctx context.Context) (string, error)
}

// AsyncDataset wraps an AsyncBackend into the public asynchronous
// contract. Every method returns immediately; the returned channel is
// buffered and closed after the single result is delivered.
type AsyncDataset struct {
	name    string
	typeKey string
	backend AsyncBackend
}

// WrapAsync builds the public async handle for a backend.
func WrapAsync(name, typeKey string, backend AsyncBackend) *AsyncDataset {
	return &AsyncDataset{
		name:    name,
		typeKey: typeKey,
		backend: backend,
	}
}

func (d *AsyncDataset) Name() string {
	return d.name
}

func (d *AsyncDataset) Type() string {
	return d.typeKey
}

func (d *AsyncDataset) Read(ctx context.Context, opts datasets.ReadOptions) <-chan datasets.ReadResult {
	ch := make(chan datasets.ReadResult, 1)
	go func() {
		defer close(ch)
		value, err := d.backend.Read(ctx, opts)
		ch <- datasets.ReadResult{Value: value, Err: translate(d.name, "read", err)}
	}()
	return ch
}

func (d *AsyncDataset) Write(ctx context.Context, value interface{}, opts datasets.WriteOptions) <-chan error {
	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		ch <- translate(d.name, "write", d.backend.Write(ctx, value, opts))
	}()
	return ch
}

func (d *AsyncDataset) Create(ctx context.Context, opts datasets.CreateOptions) <-chan error {
	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		ch <- translate(d.name, "create", d.backend.Create(ctx, opts))
	}()
	return ch
}

func (d *AsyncDataset) Delete(ctx context.Context) <-chan error {
	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		ch <- translate(d.name, "delete", d.backend.Delete(ctx))
	}()
	return ch
}

func (d *AsyncDataset) Initialize(ctx context.Context, params datasets.ConnectionParams) <-chan error {
	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		ch <- translate(d.name, "initialize", d.backend.Initialize(ctx, params))
	}()
	return ch
}

func (d *AsyncDataset) Exists(ctx context.Context) <-chan datasets.BoolResult {
	ch := make(chan datasets.BoolResult, 1)
	go func() {
		defer close(ch)
		exists, err := d.backend.Exists(ctx)
		ch <- datasets.BoolResult{Value: exists, Err: translate(d.name, "check existence of", err)}
	}()
	return ch
}

func (d *AsyncDataset) Describe(ctx context.Context) <-chan datasets.StringResult {
	ch := make(chan datasets.StringResult, 1)
	go func() {
		defer close(ch)
		description, err := d.backend.Describe(ctx)
		ch <- datasets.StringResult{Value: description, Err: translate(d.name, "describe", err)}
	}()
	return ch
}
