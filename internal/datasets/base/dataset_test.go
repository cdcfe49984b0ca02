package base_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Convex-Labs/aineko-core/internal/common/errors"
	"github.com/Convex-Labs/aineko-core/internal/datasets"
	"github.com/Convex-Labs/aineko-core/internal/datasets/base"
)

// stubBackend fails every operation with a configurable error.
type stubBackend struct {
	err error
}

func (s *stubBackend) Read(opts datasets.ReadOptions) (interface{}, error) {
	return nil, s.err
}

func (s *stubBackend) Write(value interface{}, opts datasets.WriteOptions) error {
	return s.err
}

func (s *stubBackend) Create(opts datasets.CreateOptions) (*datasets.CreateStatus, error) {
	return nil, s.err
}

func (s *stubBackend) Delete() error { return s.err }

func (s *stubBackend) Initialize(params datasets.ConnectionParams) error { return s.err }

func (s *stubBackend) Exists() (bool, error) { return false, s.err }

func (s *stubBackend) Describe() (string, error) { return "", s.err }

func TestWrap_NameAndType(t *testing.T) {
	ds := base.Wrap("messages", "stub", &stubBackend{})
	assert.Equal(t, "messages", ds.Name())
	assert.Equal(t, "stub", ds.Type())
}

func TestWrap_TranslatesBackendErrors(t *testing.T) {
	cause := fmt.Errorf("socket closed")
	ds := base.Wrap("messages", "stub", &stubBackend{err: cause})

	_, err := ds.Read(datasets.ReadOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeDataset))
	assert.Contains(t, err.Error(), "messages")
	assert.True(t, stderrors.Is(err, cause))

	err = ds.Write("value", datasets.WriteOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeDataset))

	err = ds.Delete()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeDataset))

	_, err = ds.Exists()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeDataset))
}

func TestWrap_NoDoubleWrap(t *testing.T) {
	original := errors.DatasetError("upstream", "read", fmt.Errorf("offset out of range"))
	ds := base.Wrap("messages", "stub", &stubBackend{err: original})

	_, err := ds.Read(datasets.ReadOptions{})
	require.Error(t, err)

	// A dataset error raised by the backend passes through untouched: the
	// original dataset name survives and no second envelope is added.
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Same(t, original, appErr)
	assert.Equal(t, "upstream", appErr.Context["dataset"])
}

func TestWrap_NilErrorPassesThrough(t *testing.T) {
	ds := base.Wrap("messages", "stub", &stubBackend{})

	assert.NoError(t, ds.Write("value", datasets.WriteOptions{}))
	assert.NoError(t, ds.Delete())
	assert.NoError(t, ds.Initialize(datasets.ConnectionParams{}))
}

// stubAsyncBackend is the async twin of stubBackend.
type stubAsyncBackend struct {
	err error
}

func (s *stubAsyncBackend) Read(ctx context.Context, opts datasets.ReadOptions) (interface{}, error) {
	return "value", s.err
}

func (s *stubAsyncBackend) Write(ctx context.Context, value interface{}, opts datasets.WriteOptions) error {
	return s.err
}

func (s *stubAsyncBackend) Create(ctx context.Context, opts datasets.CreateOptions) error {
	return s.err
}

func (s *stubAsyncBackend) Delete(ctx context.Context) error { return s.err }

func (s *stubAsyncBackend) Initialize(ctx context.Context, params datasets.ConnectionParams) error {
	return s.err
}

func (s *stubAsyncBackend) Exists(ctx context.Context) (bool, error) { return true, s.err }

func (s *stubAsyncBackend) Describe(ctx context.Context) (string, error) { return "stub", s.err }

func TestWrapAsync_DeliversResults(t *testing.T) {
	ds := base.WrapAsync("messages", "stub", &stubAsyncBackend{})
	ctx := context.Background()

	result := <-ds.Read(ctx, datasets.ReadOptions{})
	assert.NoError(t, result.Err)
	assert.Equal(t, "value", result.Value)

	assert.NoError(t, <-ds.Write(ctx, "value", datasets.WriteOptions{}))

	exists := <-ds.Exists(ctx)
	assert.NoError(t, exists.Err)
	assert.True(t, exists.Value)
}

func TestWrapAsync_TranslatesBackendErrors(t *testing.T) {
	cause := fmt.Errorf("socket closed")
	ds := base.WrapAsync("messages", "stub", &stubAsyncBackend{err: cause})
	ctx := context.Background()

	result := <-ds.Read(ctx, datasets.ReadOptions{})
	require.Error(t, result.Err)
	assert.True(t, errors.IsType(result.Err, errors.ErrTypeDataset))
	assert.True(t, stderrors.Is(result.Err, cause))

	err := <-ds.Delete(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeDataset))
}
