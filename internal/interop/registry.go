package interop

import (
	"fmt"
	"sync"

	"github.com/hashicorp/golang-lru/v2"
)

// DefaultRegistrySize is the broker cache size used when none is given.
const DefaultRegistrySize = 128

// TypeRef identifies one definition of an owner type. Redefining the type
// bumps Generation, which makes cached brokers for older generations stale.
type TypeRef struct {
	Name       string
	Generation uint64
}

// String implements fmt.Stringer.
func (r TypeRef) String() string {
	return fmt.Sprintf("%s@%d", r.Name, r.Generation)
}

// Registry lazily builds and caches brokers. It is safe for concurrent use;
// construction of a missing broker happens at most once per TypeRef.
type Registry struct {
	mu    sync.Mutex
	cache *lru.Cache[TypeRef, *Broker]
}

// NewRegistry returns a registry caching up to size brokers.
func NewRegistry(size int) (*Registry, error) {
	if size <= 0 {
		size = DefaultRegistrySize
	}

	cache, err := lru.New[TypeRef, *Broker](size)
	if err != nil {
		return nil, err
	}

	return &Registry{cache: cache}, nil
}

// MustRegistry is NewRegistry for package-level variables.
func MustRegistry(size int) *Registry {
	r, err := NewRegistry(size)
	if err != nil {
		panic(err)
	}

	return r
}

// Broker returns the cached broker for ref, calling build on a miss.
// Caching a generation evicts every older generation of the same name.
func (r *Registry) Broker(ref TypeRef, build func() (*Broker, error)) (*Broker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.cache.Get(ref); ok {
		return b, nil
	}

	b, err := build()
	if err != nil {
		return nil, fmt.Errorf("build broker for %s: %w", ref, err)
	}

	for _, k := range r.cache.Keys() {
		if k.Name == ref.Name && k.Generation < ref.Generation {
			r.cache.Remove(k)
		}
	}

	r.cache.Add(ref, b)

	return b, nil
}

// Lookup returns the cached broker for ref without building one.
func (r *Registry) Lookup(ref TypeRef) (*Broker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cache.Get(ref)
}

// Len returns the number of cached brokers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cache.Len()
}

// Purge drops every cached broker.
func (r *Registry) Purge() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache.Purge()
}
