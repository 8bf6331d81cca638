package repository

import (
	"context"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

const subscribersKey = "coinpulse:subscribers"

// RedisSubscriberStore keeps the broadcast recipient set in a Redis set, so
// subscriptions survive restarts.
type RedisSubscriberStore struct {
	client *redis.Client
	key    string
}

// NewRedisSubscriberStore creates a store on the given client.
func NewRedisSubscriberStore(client *redis.Client) *RedisSubscriberStore {
	return &RedisSubscriberStore{client: client, key: subscribersKey}
}

func (s *RedisSubscriberStore) Add(ctx context.Context, id int64) (bool, error) {
	n, err := s.client.SAdd(ctx, s.key, id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisSubscriberStore) Remove(ctx context.Context, id int64) (bool, error) {
	n, err := s.client.SRem(ctx, s.key, id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisSubscriberStore) Contains(ctx context.Context, id int64) (bool, error) {
	return s.client.SIsMember(ctx, s.key, id).Result()
}

func (s *RedisSubscriberStore) All(ctx context.Context) ([]int64, error) {
	raw, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(raw))
	for _, r := range raw {
		id, err := strconv.ParseInt(r, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *RedisSubscriberStore) Count(ctx context.Context) (int64, error) {
	return s.client.SCard(ctx, s.key).Result()
}

// MemorySubscriberStore is the in-process fallback used when Redis is not
// configured, and by tests. Subscriptions do not survive restarts.
type MemorySubscriberStore struct {
	mu  sync.RWMutex
	ids map[int64]struct{}
}

// NewMemorySubscriberStore creates an empty store.
func NewMemorySubscriberStore() *MemorySubscriberStore {
	return &MemorySubscriberStore{ids: make(map[int64]struct{})}
}

func (s *MemorySubscriberStore) Add(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false, nil
	}
	s.ids[id] = struct{}{}
	return true, nil
}

func (s *MemorySubscriberStore) Remove(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; !ok {
		return false, nil
	}
	delete(s.ids, id)
	return true, nil
}

func (s *MemorySubscriberStore) Contains(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok, nil
}

func (s *MemorySubscriberStore) All(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemorySubscriberStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.ids)), nil
}
