package datasets

import "sync"

// CreateStatus tracks the completion of pending creation work: remote topic
// creation futures, producer or consumer connection attempts, or both.
// Callers poll Done to learn when a batch of provisioning has finished.
type CreateStatus struct {
	dataset string

	mu      sync.Mutex
	pending []<-chan struct{}
}

// NewCreateStatus returns a status tracking the given completion signals.
// Each channel is considered complete once it is closed. A status with no
// tracked signals is immediately done.
func NewCreateStatus(dataset string, futures ...<-chan struct{}) *CreateStatus {
	return &CreateStatus{dataset: dataset, pending: futures}
}

// Dataset returns the name of the dataset being created.
func (s *CreateStatus) Dataset() string {
	return s.dataset
}

// Track adds another completion signal to the tracked set.
func (s *CreateStatus) Track(future <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, future)
}

// Merge folds another status into this one.
func (s *CreateStatus) Merge(other *CreateStatus) {
	if other == nil {
		return
	}
	other.mu.Lock()
	futures := append([]<-chan struct{}(nil), other.pending...)
	other.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, futures...)
}

// Done reports whether every tracked operation has completed. It is true
// when the tracked set is empty.
func (s *CreateStatus) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, future := range s.pending {
		select {
		case <-future:
		default:
			return false
		}
	}
	return true
}
