package memory

import "sync"

// store is the channel-backed stream behind one dataset name. Handles are
// cheap views onto a store; every handle created for the same name in one
// process shares the same buffer, so nodes wired to the same dataset
// exchange data the way broker-backed datasets do.
type store struct {
	mu       sync.Mutex
	capacity int
	values   chan interface{}
	created  bool
}

var (
	storesMu sync.Mutex
	stores   = make(map[string]*store)
)

// getStore returns the shared store for a dataset name, creating it on
// first use. The capacity of the first caller wins.
func getStore(name string, capacity int) *store {
	storesMu.Lock()
	defer storesMu.Unlock()

	s, ok := stores[name]
	if !ok {
		s = &store{
			capacity: capacity,
			values:   make(chan interface{}, capacity),
		}
		stores[name] = s
	}
	return s
}

// dropStore removes a store, releasing its buffer. Used on delete so a
// recreated dataset starts empty.
func dropStore(name string) {
	storesMu.Lock()
	defer storesMu.Unlock()
	delete(stores, name)
}

func (s *store) markCreated(created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = created
}

func (s *store) isCreated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created
}

func (s *store) drain() {
	for {
		select {
		case <-s.values:
		default:
			return
		}
	}
}
