package node

import (
	"fmt"
	"sync"

	"github.com/Convex-Labs/aineko-core/internal/common/errors"
)

// HandlerFactory builds one handler instance per node.
type HandlerFactory func() Handler

var (
	handlersMu sync.RWMutex
	handlers   = make(map[string]HandlerFactory)
)

// RegisterHandler maps a handler key, as referenced from pipeline
// definitions, to a factory. Registration happens at startup.
func RegisterHandler(name string, factory HandlerFactory) {
	handlersMu.Lock()
	defer handlersMu.Unlock()
	handlers[name] = factory
}

// NewHandler builds the handler registered under the given key. An
// unregistered key is a configuration error.
func NewHandler(name string) (Handler, error) {
	handlersMu.RLock()
	factory, ok := handlers[name]
	handlersMu.RUnlock()

	if !ok {
		return nil, errors.ConfigError(fmt.Sprintf("node handler %s not registered", name))
	}
	return factory(), nil
}

// RegisteredHandlers lists the registered handler keys.
func RegisteredHandlers() []string {
	handlersMu.RLock()
	defer handlersMu.RUnlock()

	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	return names
}
