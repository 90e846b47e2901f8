package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultMaxEntries 内存后端默认容量
const DefaultMaxEntries = 10000

type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// MemoryStore bounded LRU with per-entry expiry
// MemoryStore 有界 LRU，每个条目独立过期
type MemoryStore struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List
	maxSize int
	now     func() time.Time
}

// NewMemoryStore 创建内存后端，maxEntries <= 0 时使用默认容量
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &MemoryStore{
		items:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxEntries,
		now:     time.Now,
	}
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return nil, ErrMiss
	}
	entry := elem.Value.(*memoryEntry)
	if !s.now().Before(entry.expiresAt) {
		s.removeElement(elem)
		return nil, ErrMiss
	}
	s.order.MoveToFront(elem)
	return entry.value, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	buf := make([]byte, len(value))
	copy(buf, value)

	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := s.now().Add(ttl)
	if elem, ok := s.items[key]; ok {
		entry := elem.Value.(*memoryEntry)
		entry.value = buf
		entry.expiresAt = expiresAt
		s.order.MoveToFront(elem)
		return nil
	}

	for s.order.Len() >= s.maxSize {
		s.removeElement(s.order.Back())
	}
	s.items[key] = s.order.PushFront(&memoryEntry{key: key, value: buf, expiresAt: expiresAt})
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		if elem, ok := s.items[key]; ok {
			s.removeElement(elem)
		}
	}
	return nil
}

func (s *MemoryStore) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, elem := range s.items {
		if strings.HasPrefix(key, prefix) {
			s.removeElement(elem)
		}
	}
	return nil
}

// Sweep removes expired entries and returns how many were dropped
// Sweep 清理过期条目，返回清理数量
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for elem := s.order.Back(); elem != nil; {
		prev := elem.Prev()
		if !now.Before(elem.Value.(*memoryEntry).expiresAt) {
			s.removeElement(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

// Len 当前条目数（包含尚未清理的过期条目）
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

func (s *MemoryStore) removeElement(elem *list.Element) {
	if elem == nil {
		return
	}
	delete(s.items, elem.Value.(*memoryEntry).key)
	s.order.Remove(elem)
}
