// Package datasets defines the contract every stream backend satisfies:
// a named, typed data stream with uniform read/write/lifecycle operations
// and a single error envelope. Concrete backends are registered by type key
// and constructed from configuration records.
package datasets

import (
	"context"
	"time"
)

// Config is the configuration record a dataset is built from. Type names a
// registered backend, Target is the backend address (broker list, server
// address) and Params carries backend-specific settings.
type Config struct {
	Type   string                 `yaml:"type" validate:"required"`
	Target string                 `yaml:"target"`
	Params map[string]interface{} `yaml:"params"`
}

// Role describes which side of a stream a connection serves.
type Role string

const (
	RoleConsumer Role = "consumer"
	RoleProducer Role = "producer"
)

// ConnectionParams carries the role-specific settings a broker-backed
// dataset needs to establish live connections.
type ConnectionParams struct {
	Role              Role
	Dataset           string
	Node              string
	Pipeline          string
	Prefix            string
	HasPipelinePrefix bool

	// Config holds role-specific backend overrides, defaulted from
	// process-wide configuration when empty.
	Config map[string]string
}

// ReadOptions controls a single read. Block waits for a value when the
// stream is empty; Timeout bounds a non-blocking poll. Backends without
// blocking semantics ignore Block.
type ReadOptions struct {
	Block   bool
	Timeout time.Duration
}

// WriteOptions controls a single write. Key is a backend-defined
// partitioning or routing key.
type WriteOptions struct {
	Key string
}

// CreateOptions carries the naming context needed to provision backing
// storage before any connection exists.
type CreateOptions struct {
	Pipeline          string
	Prefix            string
	HasPipelinePrefix bool
}

// Dataset is the synchronous stream contract. Read and Write may block
// according to backend policy. Initialize must be called before the first
// Read or Write on backends that hold connections; it is idempotent per
// handle. Every operation reports failures as dataset errors carrying the
// dataset name and the original cause.
type Dataset interface {
	Name() string
	Type() string
	Read(opts ReadOptions) (interface{}, error)
	Write(value interface{}, opts WriteOptions) error
	Create(opts CreateOptions) (*CreateStatus, error)
	Delete() error
	Initialize(params ConnectionParams) error
	Exists() (bool, error)
	Describe() (string, error)
}

// ReadResult is the outcome of one asynchronous read.
type ReadResult struct {
	Value interface{}
	Err   error
}

// BoolResult is the outcome of one asynchronous existence check.
type BoolResult struct {
	Value bool
	Err   error
}

// StringResult is the outcome of one asynchronous describe.
type StringResult struct {
	Value string
	Err   error
}

// AsyncDataset is the asynchronous twin of Dataset. Operation names and
// semantics match the synchronous contract, but every call returns
// immediately and delivers its result on the returned channel. The two
// hierarchies share no operation: mixing blocking and non-blocking call
// discipline in one interface is unsafe.
type AsyncDataset interface {
	Name() string
	Type() string
	Read(ctx context.Context, opts ReadOptions) <-chan ReadResult
	Write(ctx context.Context, value interface{}, opts WriteOptions) <-chan error
	Create(ctx context.Context, opts CreateOptions) <-chan error
	Delete(ctx context.Context) <-chan error
	Initialize(ctx context.Context, params ConnectionParams) <-chan error
	Exists(ctx context.Context) <-chan BoolResult
	Describe(ctx context.Context) <-chan StringResult
}

// Factory builds synchronous datasets of one registered type.
type Factory interface {
	Create(name string, config Config) (Dataset, error)
	TypeKey() string
}

// AsyncFactory builds asynchronous datasets of one registered type.
type AsyncFactory interface {
	Create(name string, config Config) (AsyncDataset, error)
	TypeKey() string
}
