package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"pawkie/internal/models"
)

const (
	productKeyPrefix  = "product:"
	defaultProductTTL = 5 * time.Minute
)

// Products is a Redis read-through cache for single-product lookups. A nil
// *Products is a valid, disabled cache: every method becomes a no-op, so
// callers never branch on configuration.
type Products struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProducts(addr string) *Products {
	if addr == "" {
		return nil
	}
	return &Products{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    defaultProductTTL,
	}
}

// Get returns the cached product, or nil on a miss. Cache failures degrade
// to a miss so the store stays the source of truth.
func (p *Products) Get(ctx context.Context, id string) *models.Product {
	if p == nil {
		return nil
	}

	data, err := p.client.Get(ctx, productKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		log.Println("[CACHE] [ERROR] product get failed:", err)
		return nil
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil
	}
	return &product
}

func (p *Products) Set(ctx context.Context, product *models.Product) {
	if p == nil {
		return
	}

	data, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := p.client.Set(ctx, productKeyPrefix+product.ID.Hex(), data, p.ttl).Err(); err != nil {
		log.Println("[CACHE] [ERROR] product set failed:", err)
	}
}

// Invalidate drops a product after any write to it.
func (p *Products) Invalidate(ctx context.Context, id string) {
	if p == nil {
		return
	}
	if err := p.client.Del(ctx, productKeyPrefix+id).Err(); err != nil {
		log.Println("[CACHE] [ERROR] product invalidate failed:", err)
	}
}
