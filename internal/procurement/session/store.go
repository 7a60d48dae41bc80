// Package session persists a reviewer's in-progress selection on a batch so
// it survives page reloads. One selection per (reviewer, batch); cleared
// after every completed action.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nirmaan-app/procurement/internal/procurement/selection"
)

// Store holds per-reviewer selections.
type Store interface {
	Get(ctx context.Context, reviewerID, batchID string) (selection.Selection, error)
	Put(ctx context.Context, reviewerID, batchID string, sel selection.Selection) error
	Clear(ctx context.Context, reviewerID, batchID string) error
}

// selectionTTL bounds abandoned review sessions.
const selectionTTL = 24 * time.Hour

// RedisStore keeps selections in Redis.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(reviewerID, batchID string) string {
	return fmt.Sprintf("procurement:selection:%s:%s", reviewerID, batchID)
}

func (s *RedisStore) Get(ctx context.Context, reviewerID, batchID string) (selection.Selection, error) {
	raw, err := s.client.Get(ctx, key(reviewerID, batchID)).Bytes()
	if err == redis.Nil {
		return selection.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load selection: %w", err)
	}
	var sel selection.Selection
	if err := json.Unmarshal(raw, &sel); err != nil {
		return nil, fmt.Errorf("decode selection: %w", err)
	}
	return sel, nil
}

func (s *RedisStore) Put(ctx context.Context, reviewerID, batchID string, sel selection.Selection) error {
	raw, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("encode selection: %w", err)
	}
	if err := s.client.Set(ctx, key(reviewerID, batchID), raw, selectionTTL).Err(); err != nil {
		return fmt.Errorf("store selection: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, reviewerID, batchID string) error {
	if err := s.client.Del(ctx, key(reviewerID, batchID)).Err(); err != nil {
		return fmt.Errorf("clear selection: %w", err)
	}
	return nil
}

// MemoryStore is the fallback when Redis is not configured (dev, tests).
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]selection.Selection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]selection.Selection)}
}

func (s *MemoryStore) Get(_ context.Context, reviewerID, batchID string) (selection.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sel, ok := s.data[key(reviewerID, batchID)]; ok {
		return sel, nil
	}
	return selection.New(), nil
}

func (s *MemoryStore) Put(_ context.Context, reviewerID, batchID string, sel selection.Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key(reviewerID, batchID)] = sel
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, reviewerID, batchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key(reviewerID, batchID))
	return nil
}
