package endpoint

// Endpoint is one user-configured probe target. Entries missing a name or
// URL are kept in the store and skipped by the prober.
type Endpoint struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Store exposes probe-target retrieval for the health prober.
type Store interface {
	List() []Endpoint
}

// MemoryStore implements Store with an in-memory slice loaded from config.
type MemoryStore struct {
	items []Endpoint
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied endpoints.
func NewMemoryStore(items []Endpoint) *MemoryStore {
	return &MemoryStore{items: append([]Endpoint(nil), items...)}
}

// List returns the configured endpoint list.
func (s *MemoryStore) List() []Endpoint {
	return append([]Endpoint(nil), s.items...)
}
