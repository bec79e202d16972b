package efmmap

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the default number of mapped structures a Store
// keeps open at once.
const DefaultCacheSize = 128

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	cacheSize int
}

// WithCacheSize sets the number of dumps a Store keeps mapped
// simultaneously. Opening a dump beyond this limit evicts and unmaps the
// least recently used one.
func WithCacheSize(size int) Option {
	return func(o *storeOptions) {
		o.cacheSize = size
	}
}

// Store is an LRU-bounded registry of mapped dumps, keyed by base path.
// It exists so a process querying many on-disk structures doesn't have
// to track Close calls itself: evicting an entry from the cache unmaps
// it.
type Store struct {
	cache *lru.Cache[string, *Mapped]
	mu    sync.Mutex
}

// NewStore creates a Store with the default cache size.
func NewStore(opts ...Option) (*Store, error) {
	options := &storeOptions{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(options)
	}

	s := &Store{}
	cache, err := lru.NewWithEvict[string, *Mapped](options.cacheSize, s.onEvict)
	if err != nil {
		return nil, fmt.Errorf("efmmap: create LRU cache: %w", err)
	}
	s.cache = cache
	return s, nil
}

func (s *Store) onEvict(_ string, mapped *Mapped) {
	_ = mapped.Close()
}

// Open returns the Mapped dump at basePath, loading and caching it on
// first access. Subsequent calls for the same basePath return the same
// *Mapped without remapping. The returned value must not be Closed
// directly; it stays valid until the Store evicts or closes it.
func (s *Store) Open(basePath string) (*Mapped, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mapped, ok := s.cache.Get(basePath); ok {
		return mapped, nil
	}

	mapped, err := Load(basePath)
	if err != nil {
		return nil, err
	}
	s.cache.Add(basePath, mapped)
	return mapped, nil
}

// Evict closes and removes basePath's entry, if present, forcing the
// next Open to remap it from disk.
func (s *Store) Evict(basePath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(basePath)
}

// Len returns the number of dumps currently mapped.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}

// Close unmaps every cached dump.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Purge()
	return nil
}
