package datasets_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Convex-Labs/aineko-core/internal/common/errors"
	"github.com/Convex-Labs/aineko-core/internal/datasets"
)

// Mock dataset factory for testing
type mockFactory struct {
	typeKey string
}

func (f *mockFactory) Create(name string, config datasets.Config) (datasets.Dataset, error) {
	return &mockDataset{name: name, typeKey: f.typeKey}, nil
}

func (f *mockFactory) TypeKey() string {
	return f.typeKey
}

type mockDataset struct {
	name    string
	typeKey string
}

func (d *mockDataset) Name() string { return d.name }
func (d *mockDataset) Type() string { return d.typeKey }
func (d *mockDataset) Read(opts datasets.ReadOptions) (interface{}, error) {
	return nil, nil
}
func (d *mockDataset) Write(value interface{}, opts datasets.WriteOptions) error {
	return nil
}
func (d *mockDataset) Create(opts datasets.CreateOptions) (*datasets.CreateStatus, error) {
	return datasets.NewCreateStatus(d.name), nil
}
func (d *mockDataset) Delete() error { return nil }

func (d *mockDataset) Initialize(params datasets.ConnectionParams) error { return nil }

func (d *mockDataset) Exists() (bool, error) { return true, nil }

func (d *mockDataset) Describe() (string, error) { return d.name, nil }

func TestNewRegistry(t *testing.T) {
	registry := datasets.NewRegistry()
	assert.NotNil(t, registry)

	// Check that no types are registered initially
	types := registry.AvailableTypes()
	assert.Empty(t, types)
}

func TestRegistry_Register(t *testing.T) {
	registry := datasets.NewRegistry()

	factory := &mockFactory{typeKey: "test"}
	registry.Register(factory)

	types := registry.AvailableTypes()
	assert.Contains(t, types, "test")

	// Register the same type again (should replace)
	registry.Register(factory)
	types = registry.AvailableTypes()
	assert.Contains(t, types, "test")
}

func TestRegistry_Create(t *testing.T) {
	registry := datasets.NewRegistry()
	registry.Register(&mockFactory{typeKey: "test"})

	// Create dataset with registered type
	ds, err := registry.Create("messages", datasets.Config{Type: "test"})
	assert.NoError(t, err)
	assert.NotNil(t, ds)
	assert.Equal(t, "messages", ds.Name())
	assert.Equal(t, "test", ds.Type())

	// Try to create with unregistered type
	ds, err = registry.Create("messages", datasets.Config{Type: "unknown"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
	assert.Nil(t, ds)

	// Unknown type is a configuration error, never a dataset error
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
	assert.False(t, errors.IsType(err, errors.ErrTypeDataset))
}

func TestRegistry_AvailableTypes(t *testing.T) {
	registry := datasets.NewRegistry()

	registry.Register(&mockFactory{typeKey: "type1"})
	registry.Register(&mockFactory{typeKey: "type2"})
	registry.Register(&mockFactory{typeKey: "type3"})

	types := registry.AvailableTypes()
	assert.Len(t, types, 3)
	assert.Contains(t, types, "type1")
	assert.Contains(t, types, "type2")
	assert.Contains(t, types, "type3")
}

func TestRegistry_IsRegistered(t *testing.T) {
	registry := datasets.NewRegistry()

	assert.False(t, registry.IsRegistered("test"))

	registry.Register(&mockFactory{typeKey: "test"})
	assert.True(t, registry.IsRegistered("test"))
	assert.False(t, registry.IsRegistered("other"))
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	registry := datasets.NewRegistry()

	done := make(chan bool)
	errs := make(chan error, 10)

	// Register factories concurrently
	for i := 0; i < 5; i++ {
		go func(id int) {
			registry.Register(&mockFactory{typeKey: fmt.Sprintf("concurrent-%d", id)})
			done <- true
		}(i)
	}
	for i := 0; i < 5; i++ {
		<-done
	}

	// Create datasets concurrently
	for i := 0; i < 5; i++ {
		go func(id int) {
			_, err := registry.Create("ds", datasets.Config{Type: fmt.Sprintf("concurrent-%d", id)})
			if err != nil {
				errs <- err
			}
			done <- true
		}(i)
	}
	for i := 0; i < 5; i++ {
		<-done
	}

	select {
	case err := <-errs:
		t.Fatalf("Concurrent creation error: %v", err)
	default:
		// No errors
	}

	types := registry.AvailableTypes()
	assert.Len(t, types, 5)
}

// Mock async factory for the async hierarchy
type mockAsyncFactory struct {
	typeKey string
	created datasets.AsyncDataset
}

func (f *mockAsyncFactory) Create(name string, config datasets.Config) (datasets.AsyncDataset, error) {
	return f.created, nil
}

func (f *mockAsyncFactory) TypeKey() string {
	return f.typeKey
}

func TestAsyncRegistry_Create(t *testing.T) {
	registry := datasets.NewAsyncRegistry()
	registry.Register(&mockAsyncFactory{typeKey: "test"})

	assert.True(t, registry.IsRegistered("test"))

	_, err := registry.Create("messages", datasets.Config{Type: "missing"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}
