// Package fake provides in-memory dataset doubles used to drive a node
// without a live broker. An Input is pre-loaded with the values a test
// wants consumed; an Output records everything a node produces.
package fake

import (
	"fmt"
	"sync"

	"github.com/Convex-Labs/aineko-core/internal/datasets"
)

// TypeKey is the type reported by the doubles.
const TypeKey = "fake"

// Input is a dataset double fed by a caller-supplied value sequence.
// Reading pops the next value; an exhausted input returns no value rather
// than failing, so a step function can poll without special-casing.
type Input struct {
	name string
	node string

	mu     sync.Mutex
	values []interface{}
}

// NewInput builds an input double pre-loaded with values.
func NewInput(name, node string, values []interface{}) *Input {
	return &Input{
		name:   name,
		node:   node,
		values: append([]interface{}(nil), values...),
	}
}

func (i *Input) Name() string { return i.name }
func (i *Input) Type() string { return TypeKey }

// Empty reports whether every pre-loaded value has been consumed.
func (i *Input) Empty() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.values) == 0
}

// Remaining returns the values not yet consumed.
func (i *Input) Remaining() []interface{} {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]interface{}(nil), i.values...)
}

func (i *Input) Read(opts datasets.ReadOptions) (interface{}, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.values) == 0 {
		return nil, nil
	}
	value := i.values[0]
	i.values = i.values[1:]
	return value, nil
}

func (i *Input) Write(value interface{}, opts datasets.WriteOptions) error {
	return fmt.Errorf("fake input %s is read-only", i.name)
}

func (i *Input) Create(opts datasets.CreateOptions) (*datasets.CreateStatus, error) {
	return datasets.NewCreateStatus(i.name), nil
}

func (i *Input) Delete() error { return nil }

func (i *Input) Initialize(params datasets.ConnectionParams) error { return nil }

func (i *Input) Exists() (bool, error) { return true, nil }

func (i *Input) Describe() (string, error) {
	return fmt.Sprintf("fake input %s for node %s: %d values remaining", i.name, i.node, len(i.Remaining())), nil
}

// Output is a dataset double recording every value written to it.
type Output struct {
	name string
	node string

	mu     sync.Mutex
	values []interface{}
}

// NewOutput builds an empty output double.
func NewOutput(name, node string) *Output {
	return &Output{name: name, node: node}
}

func (o *Output) Name() string { return o.name }
func (o *Output) Type() string { return TypeKey }

// Values returns everything written so far, in write order.
func (o *Output) Values() []interface{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]interface{}(nil), o.values...)
}

func (o *Output) Read(opts datasets.ReadOptions) (interface{}, error) {
	return nil, fmt.Errorf("fake output %s is write-only", o.name)
}

func (o *Output) Write(value interface{}, opts datasets.WriteOptions) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.values = append(o.values, value)
	return nil
}

func (o *Output) Create(opts datasets.CreateOptions) (*datasets.CreateStatus, error) {
	return datasets.NewCreateStatus(o.name), nil
}

func (o *Output) Delete() error { return nil }

func (o *Output) Initialize(params datasets.ConnectionParams) error { return nil }

func (o *Output) Exists() (bool, error) { return true, nil }

func (o *Output) Describe() (string, error) {
	return fmt.Sprintf("fake output %s for node %s: %d values written", o.name, o.node, len(o.Values())), nil
}
