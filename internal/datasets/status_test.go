package datasets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Convex-Labs/aineko-core/internal/datasets"
)

func TestCreateStatus_EmptyIsDone(t *testing.T) {
	status := datasets.NewCreateStatus("messages")
	assert.Equal(t, "messages", status.Dataset())
	assert.True(t, status.Done())
}

func TestCreateStatus_PendingFuture(t *testing.T) {
	future := make(chan struct{})
	status := datasets.NewCreateStatus("messages", future)

	assert.False(t, status.Done())

	close(future)
	assert.True(t, status.Done())
}

func TestCreateStatus_AllFuturesMustComplete(t *testing.T) {
	first := make(chan struct{})
	second := make(chan struct{})
	status := datasets.NewCreateStatus("messages", first, second)

	close(first)
	assert.False(t, status.Done())

	close(second)
	assert.True(t, status.Done())
}

func TestCreateStatus_Track(t *testing.T) {
	status := datasets.NewCreateStatus("messages")
	assert.True(t, status.Done())

	future := make(chan struct{})
	status.Track(future)
	assert.False(t, status.Done())

	close(future)
	assert.True(t, status.Done())
}

func TestCreateStatus_Merge(t *testing.T) {
	pool := datasets.NewCreateStatus("pipeline")

	future := make(chan struct{})
	pool.Merge(datasets.NewCreateStatus("messages", future))
	pool.Merge(datasets.NewCreateStatus("metrics"))
	pool.Merge(nil)

	assert.False(t, pool.Done())

	close(future)
	assert.True(t, pool.Done())
}
