package node

import "sync"

// PoisonPill is the one-way shutdown signal shared by every node of a
// pipeline run. Any node may activate it; the supervisor observes it and
// tears the pipeline down. There is no reverse transition.
type PoisonPill struct {
	once sync.Once
	done chan struct{}
}

// NewPoisonPill returns an inactive pill.
func NewPoisonPill() *PoisonPill {
	return &PoisonPill{done: make(chan struct{})}
}

// Activate flips the pill to its terminal state. Safe to call any number
// of times from any goroutine.
func (p *PoisonPill) Activate() {
	p.once.Do(func() {
		close(p.done)
	})
}

// Activated reports whether the pill has been activated.
func (p *PoisonPill) Activated() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed on activation, for select-based observers.
func (p *PoisonPill) Done() <-chan struct{} {
	return p.done
}
