package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CollectionCache is a read-through, write-through cache in front of a slower
// CollectionRepository (SQLite, Postgres). Entries expire after ttl plus jitter.
type CollectionCache struct {
	inner app.CollectionRepository
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedCollection
}

type cachedCollection struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewCollectionCache(inner app.CollectionRepository, ttl time.Duration) *CollectionCache {
	return &CollectionCache{
		inner: inner,
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[string]cachedCollection),
	}
}

func (c *CollectionCache) LoadCollection(ctx context.Context, key domain.CollectionKey) ([]domain.Question, error) {
	if questions, ok := c.lookup(key); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(key.String(), func() (interface{}, error) {
		if questions, ok := c.lookup(key); ok {
			return questions, nil
		}
		questions, err := c.inner.LoadCollection(ctx, key)
		if err != nil {
			return nil, err
		}
		c.store(key, questions)
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return copyQuestions(result.([]domain.Question)), nil
}

// SaveCollection writes through and refreshes the cached copy.
func (c *CollectionCache) SaveCollection(ctx context.Context, key domain.CollectionKey, questions []domain.Question) error {
	if err := c.inner.SaveCollection(ctx, key, questions); err != nil {
		c.mu.Lock()
		delete(c.cache, key.String())
		c.mu.Unlock()
		return err
	}
	c.store(key, questions)
	return nil
}

func (c *CollectionCache) lookup(key domain.CollectionKey) ([]domain.Question, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[key.String()]
	if !ok || !entry.expiresAt.After(now) {
		return nil, false
	}
	return copyQuestions(entry.questions), true
}

func (c *CollectionCache) store(key domain.CollectionKey, questions []domain.Question) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key.String()] = cachedCollection{
		questions: copyQuestions(questions),
		expiresAt: c.clock().Add(c.ttlWithJitter()),
	}
}

// ttlWithJitter is called with c.mu held; rand.Rand is not safe for concurrent use.
func (c *CollectionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
