package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CollectionCache caches question collections in Redis and falls back to the
// wrapped repository on a miss. Collections are stored as one JSON string per key:
// SET quiz:cache:{key} [...questions]
type CollectionCache struct {
	client *redis.Client
	inner  app.CollectionRepository
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCollectionCache(client *redis.Client, inner app.CollectionRepository, ttl time.Duration) *CollectionCache {
	return &CollectionCache{
		client: client,
		inner:  inner,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CollectionCache) LoadCollection(ctx context.Context, key domain.CollectionKey) ([]domain.Question, error) {
	cacheKey := c.cacheKey(key)
	if questions, ok := c.lookup(ctx, cacheKey); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(cacheKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := c.lookup(ctx, cacheKey); ok {
			return questions, nil
		}
		questions, err := c.inner.LoadCollection(ctx, key)
		if err != nil {
			return nil, err
		}
		c.fill(ctx, cacheKey, questions)
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// SaveCollection writes to the backing repository first, then refreshes the cache.
func (c *CollectionCache) SaveCollection(ctx context.Context, key domain.CollectionKey, questions []domain.Question) error {
	cacheKey := c.cacheKey(key)
	if err := c.inner.SaveCollection(ctx, key, questions); err != nil {
		_ = c.client.Del(ctx, cacheKey).Err()
		return err
	}
	c.fill(ctx, cacheKey, questions)
	return nil
}

func (c *CollectionCache) lookup(ctx context.Context, cacheKey string) ([]domain.Question, bool) {
	raw, err := c.client.Get(ctx, cacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, false
	}
	return questions, true
}

// fill is best effort; a failed write only costs a later cache miss.
func (c *CollectionCache) fill(ctx context.Context, cacheKey string, questions []domain.Question) {
	if questions == nil {
		questions = []domain.Question{}
	}
	raw, err := json.Marshal(questions)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, cacheKey, raw, c.ttlWithJitter()).Err()
}

func (c *CollectionCache) cacheKey(key domain.CollectionKey) string {
	return "quiz:cache:" + key.String()
}

func (c *CollectionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
