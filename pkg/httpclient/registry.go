package httpclient

import (
	"cmp"
	"slices"
	"sync"
)

// CircuitBreakerStatus represents the status of a circuit breaker for health reporting.
type CircuitBreakerStatus struct {
	Name      string     `json:"name"`
	State     string     `json:"state"`
	Failures  int        `json:"failures"`
	RateLimit *RateLimit `json:"rate_limit,omitempty"`
}

// Registry maintains the named clients used by image providers so their
// circuit breakers can be reported by the health endpoint.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewRegistry creates a new client registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]*Client),
	}
}

// Register adds a named client, replacing any client with the same name.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
}

// Get returns a client by name, or nil if not found.
func (r *Registry) Get(name string) *Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clients[name]
}

// GetOrCreate returns the named client, creating it from cfg when absent.
func (r *Registry) GetOrCreate(name string, cfg Config) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[name]; ok {
		return c
	}
	c := New(cfg)
	r.clients[name] = c
	return c
}

// GetCircuitBreakerStatuses returns breaker states and last known provider
// quotas, sorted by client name.
func (r *Registry) GetCircuitBreakerStatuses() []CircuitBreakerStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statuses := make([]CircuitBreakerStatus, 0, len(r.clients))
	for name, client := range r.clients {
		status := CircuitBreakerStatus{
			Name:     name,
			State:    client.CircuitState().String(),
			Failures: client.breaker.Failures(),
		}
		if rl, ok := client.RateLimit(); ok {
			status.RateLimit = &rl
		}
		statuses = append(statuses, status)
	}
	slices.SortFunc(statuses, func(a, b CircuitBreakerStatus) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return statuses
}

// Names returns the sorted names of all registered clients.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
