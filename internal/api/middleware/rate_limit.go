package middleware

import (
	"container/list"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// tokenBucket is a per-client rate limiter.
type tokenBucket struct {
	lastRefill time.Time
	mu         sync.Mutex
	refill     time.Duration
	tokens     int
	capacity   int
}

func newTokenBucket(capacity int, refillRate time.Duration) *tokenBucket {
	return &tokenBucket{
		lastRefill: time.Now(),
		refill:     refillRate,
		tokens:     capacity,
		capacity:   capacity,
	}
}

// Allow checks if a request should be allowed based on rate limits.
func (b *tokenBucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if now.Sub(b.lastRefill) >= b.refill {
		tokensToAdd := int(now.Sub(b.lastRefill) / b.refill)
		b.tokens = min(b.capacity, b.tokens+tokensToAdd)
		b.lastRefill = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

// bucketCache is an LRU cache of per-client buckets so memory stays bounded.
type bucketCache struct {
	items    map[string]*list.Element
	order    *list.List
	mu       sync.Mutex
	capacity int
}

type bucketEntry struct {
	bucket *tokenBucket
	key    string
}

func newBucketCache(capacity int) *bucketCache {
	return &bucketCache{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get retrieves a bucket from the cache or creates a new one.
func (c *bucketCache) Get(key string, factory func() *tokenBucket) *tokenBucket {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.order.MoveToFront(elem)
		return elem.Value.(*bucketEntry).bucket
	}

	bucket := factory()
	elem := c.order.PushFront(&bucketEntry{key: key, bucket: bucket})
	c.items[key] = elem

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*bucketEntry).key)
		}
	}

	return bucket
}

// redisRateLimiter implements distributed limiting with a sliding window.
type redisRateLimiter struct {
	client            *redis.Client
	keyPrefix         string
	requestsPerMinute int
	windowSize        time.Duration
}

// Allow checks a request against the Redis sliding window.
func (rl *redisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("%s:%s", rl.keyPrefix, key)
	now := time.Now()
	windowStart := now.Add(-rl.windowSize)

	pipe := rl.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart.Unix(), 10))
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.Unix()),
		Member: now.UnixNano(),
	})
	pipe.Expire(ctx, redisKey, rl.windowSize+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis rate limiting error: %w", err)
	}

	count, err := countCmd.Result()
	if err != nil {
		return false, fmt.Errorf("failed to get request count: %w", err)
	}

	return count < int64(rl.requestsPerMinute), nil
}

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	// KeyGenerator generates the limiting key for a request (e.g. client IP).
	KeyGenerator func(c *gin.Context) string
	// RedisAddr specifies the Redis server address (required if UseRedis is true).
	RedisAddr string
	// RedisPassword specifies the Redis password (optional).
	RedisPassword string
	// RequestsPerMinute specifies the maximum number of requests per minute.
	RequestsPerMinute int
	// CacheCapacity bounds the in-memory bucket cache (default 10000).
	CacheCapacity int
	// RedisDB specifies the Redis database number (default 0).
	RedisDB int
	// UseRedis enables Redis-backed limiting for multi-instance deployments.
	UseRedis bool
}

// RateLimitManager owns the limiter state behind the middleware.
type RateLimitManager struct {
	cache  *bucketCache
	redis  *redisRateLimiter
	config RateLimitConfig
}

// NewRateLimitManager creates a new rate limit manager.
func NewRateLimitManager(ctx context.Context, config RateLimitConfig) (*RateLimitManager, error) {
	if config.CacheCapacity == 0 {
		config.CacheCapacity = 10000
	}

	manager := &RateLimitManager{
		cache:  newBucketCache(config.CacheCapacity),
		config: config,
	}

	if config.UseRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		manager.redis = &redisRateLimiter{
			client:            client,
			keyPrefix:         "rate_limit",
			requestsPerMinute: config.RequestsPerMinute,
			windowSize:        time.Minute,
		}
	}

	return manager, nil
}

// Allow checks if a request should be allowed for the given key.
func (rm *RateLimitManager) Allow(ctx context.Context, key string) (bool, error) {
	if rm.redis != nil {
		return rm.redis.Allow(ctx, key)
	}

	bucket := rm.cache.Get(key, func() *tokenBucket {
		return newTokenBucket(rm.config.RequestsPerMinute, time.Minute/time.Duration(rm.config.RequestsPerMinute))
	})
	return bucket.Allow(), nil
}

// Shutdown releases the Redis connection if one is held.
func (rm *RateLimitManager) Shutdown() {
	if rm.redis != nil {
		_ = rm.redis.client.Close()
	}
}

// RateLimitMiddleware returns a rate limiting middleware backed by the
// returned manager.
func RateLimitMiddleware(ctx context.Context, config RateLimitConfig) (gin.HandlerFunc, *RateLimitManager, error) {
	manager, err := NewRateLimitManager(ctx, config)
	if err != nil {
		return nil, nil, err
	}

	middleware := gin.HandlerFunc(func(c *gin.Context) {
		key := config.KeyGenerator(c)

		allowed, err := manager.Allow(c.Request.Context(), key)
		if err != nil {
			// Fail open for resilience
			c.Header("X-RateLimit-Error", "true")
			c.Next()
			return
		}

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": map[string]interface{}{
					"type":    "RATE_LIMIT_ERROR",
					"code":    "TOO_MANY_REQUESTS",
					"message": "Rate limit exceeded. Please try again later.",
				},
			})
			c.Abort()
			return
		}

		c.Next()
	})

	return middleware, manager, nil
}
