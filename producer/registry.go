package producer

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// Registry maps logical cluster names to producer instances, so callers in
// one process share a producer per cluster. It is constructed once and
// passed by reference; there is no package-level instance.
type Registry struct {
	mu        sync.RWMutex
	producers map[string]*Producer
}

func NewRegistry() *Registry {
	return &Registry{
		producers: map[string]*Producer{},
	}
}

// Create builds and registers a producer under name. Registering the same
// name twice is a programming error, not a lookup miss.
func (r *Registry) Create(name string, config Config, metadata Metadata) (*Producer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.producers[name]; exists {
		return nil, fmt.Errorf("gregor: producer %q already registered", name)
	}
	p, err := NewProducer(config, metadata)
	if err != nil {
		return nil, err
	}
	r.producers[name] = p
	log.Debug().Str("cluster", name).Msg("Producer registered")
	return p, nil
}

func (r *Registry) Get(name string) (*Producer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.producers[name]
	return p, ok
}

// Close shuts down every registered producer, keeping the first error.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for name, p := range r.producers {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.producers, name)
	}
	return firstErr
}
