package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/zelipay/monetization-service/internal/domain"
)

// RedisListingCache caches per-account listing responses in Redis. All
// methods degrade to a no-op on backend errors so a Redis outage only costs
// the cache hit, never the request.
type RedisListingCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisListingCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisListingCache {
	trimmedPrefix := strings.TrimSpace(prefix)
	if trimmedPrefix == "" {
		trimmedPrefix = "monetize:listings"
	}
	trimmedPrefix = strings.TrimSuffix(trimmedPrefix, ":")

	if ttl <= 0 {
		ttl = time.Minute
	}

	return &RedisListingCache{
		client: client,
		prefix: trimmedPrefix,
		ttl:    ttl,
	}
}

func (c *RedisListingCache) productsKey(accountID uuid.UUID) string {
	return fmt.Sprintf("%s:products:%s", c.prefix, accountID)
}

func (c *RedisListingCache) paymentLinksKey(accountID uuid.UUID) string {
	return fmt.Sprintf("%s:payment_links:%s", c.prefix, accountID)
}

func (c *RedisListingCache) get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("level=warn component=cache msg=\"cache read failed\" key=%s error=%v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		log.Printf("level=warn component=cache msg=\"cache entry corrupt\" key=%s error=%v", key, err)
		return false
	}
	return true
}

func (c *RedisListingCache) set(ctx context.Context, key string, value any) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("level=warn component=cache msg=\"cache encode failed\" key=%s error=%v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		log.Printf("level=warn component=cache msg=\"cache write failed\" key=%s error=%v", key, err)
	}
}

func (c *RedisListingCache) GetProducts(ctx context.Context, accountID uuid.UUID) ([]domain.Product, bool) {
	var products []domain.Product
	if !c.get(ctx, c.productsKey(accountID), &products) {
		return nil, false
	}
	return products, true
}

func (c *RedisListingCache) SetProducts(ctx context.Context, accountID uuid.UUID, products []domain.Product) {
	c.set(ctx, c.productsKey(accountID), products)
}

func (c *RedisListingCache) GetPaymentLinks(ctx context.Context, accountID uuid.UUID) ([]domain.PaymentLinkRef, bool) {
	var links []domain.PaymentLinkRef
	if !c.get(ctx, c.paymentLinksKey(accountID), &links) {
		return nil, false
	}
	return links, true
}

func (c *RedisListingCache) SetPaymentLinks(ctx context.Context, accountID uuid.UUID, links []domain.PaymentLinkRef) {
	c.set(ctx, c.paymentLinksKey(accountID), links)
}

// Invalidate drops both listing entries for the account.
func (c *RedisListingCache) Invalidate(ctx context.Context, accountID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, c.productsKey(accountID), c.paymentLinksKey(accountID)).Err(); err != nil {
		log.Printf("level=warn component=cache msg=\"cache invalidation failed\" account_id=%s error=%v", accountID, err)
	}
}
