package cache

import "golang.org/x/sync/singleflight"

// Memo wraps a Cache so that concurrent misses on the same key compute the
// value once.
type Memo[T any] struct {
	cache Cache[T]
	group singleflight.Group
}

func NewMemo[T any](c Cache[T]) *Memo[T] {
	return &Memo[T]{cache: c}
}

// Get returns the cached value for key, computing and storing it on a miss.
// The boolean reports whether the value came from the cache.
func (m *Memo[T]) Get(key string, compute func() T) (T, bool) {
	if v, ok := m.cache.Get(key); ok {
		return v, true
	}
	v, _, _ := m.group.Do(key, func() (any, error) {
		if v, ok := m.cache.Get(key); ok {
			return v, nil
		}
		v := compute()
		m.cache.Set(key, v)
		return v, nil
	})
	return v.(T), false
}

// Purge drops every memoized value.
func (m *Memo[T]) Purge() {
	m.cache.Purge()
}
