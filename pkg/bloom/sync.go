package bloom

import "sync"

// SyncFilter is a Filter guarded by a RWMutex.
type SyncFilter[T any] struct {
	mu sync.RWMutex
	f  *Filter[T]
}

func NewSync[T any](n uint64, p float64, opts ...Option[T]) *SyncFilter[T] {
	return &SyncFilter[T]{f: New(n, p, opts...)}
}

func (s *SyncFilter[T]) Insert(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.f.Insert(item)
}

func (s *SyncFilter[T]) Contains(item T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.f.Contains(item)
}

func (s *SyncFilter[T]) PopCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.f.PopCount()
}
