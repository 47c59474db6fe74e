package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"clinic-booking/pkg/jwt"

	"github.com/patrickmn/go-cache"
)

// In-process stores used when CACHE_DRIVER=memory (single instance deployments and tests).

const memoryCleanupInterval = 10 * time.Minute

type memoryTokenStore struct {
	cache *cache.Cache
}

func NewMemoryTokenStore() TokenStore {
	return &memoryTokenStore{cache: cache.New(cache.NoExpiration, memoryCleanupInterval)}
}

func (s *memoryTokenStore) Save(ctx context.Context, tokenType jwt.TokenType, owner string, tokenID string, ttl time.Duration) error {
	s.cache.Set(tokenKey(tokenType, owner, tokenID), struct{}{}, ttl)
	return nil
}

func (s *memoryTokenStore) Exists(ctx context.Context, tokenType jwt.TokenType, owner string, tokenID string) (bool, error) {
	_, found := s.cache.Get(tokenKey(tokenType, owner, tokenID))
	return found, nil
}

func (s *memoryTokenStore) Delete(ctx context.Context, tokenType jwt.TokenType, owner string, tokenID string) error {
	s.cache.Delete(tokenKey(tokenType, owner, tokenID))
	return nil
}

type memorySlotCache struct {
	mu          sync.Mutex
	slots       *cache.Cache
	generations map[int64]int64
	ttl         time.Duration
}

func NewMemorySlotCache(ttl time.Duration) SlotCache {
	return &memorySlotCache{
		slots:       cache.New(ttl, memoryCleanupInterval),
		generations: make(map[int64]int64),
		ttl:         ttl,
	}
}

func (c *memorySlotCache) Load(ctx context.Context, doctorID int64) (*CachedOccupancy, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	generation := c.generations[doctorID]
	cached, found := c.slots.Get(strconv.FormatInt(doctorID, 10))
	if !found {
		return &CachedOccupancy{Generation: generation}, nil
	}

	stored := cached.(map[string]int64)
	slots := make(map[string]int64, len(stored))
	for k, v := range stored {
		slots[k] = v
	}
	return &CachedOccupancy{Slots: slots, Generation: generation, Hit: true}, nil
}

func (c *memorySlotCache) Store(ctx context.Context, doctorID int64, generation int64, slots map[string]int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generations[doctorID] != generation {
		return nil
	}

	copied := make(map[string]int64, len(slots))
	for k, v := range slots {
		copied[k] = v
	}
	c.slots.Set(strconv.FormatInt(doctorID, 10), copied, c.ttl)
	return nil
}

func (c *memorySlotCache) Invalidate(ctx context.Context, doctorID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations[doctorID]++
	c.slots.Delete(strconv.FormatInt(doctorID, 10))
	return nil
}
