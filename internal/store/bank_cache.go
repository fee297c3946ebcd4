package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tizlion/transfer-service/internal/domain"
)

// RedisBankCache caches the gateway's bank directory per currency. The
// directory changes rarely, so a TTL measured in hours keeps repeated listing
// calls off the gateway without risking stale bank codes for long.
//
// Every failure path degrades to a cache miss: the gateway stays the source
// of truth and an unavailable Redis never blocks a transfer.
type RedisBankCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisBankCache builds a bank directory cache. A nil client yields a
// cache that always misses.
func NewRedisBankCache(client *redis.Client, prefix string, ttl time.Duration) *RedisBankCache {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "tizlion:banks"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisBankCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisBankCache) key(currency string) string {
	return fmt.Sprintf("%s:%s", c.prefix, strings.ToUpper(currency))
}

// GetBanks returns the cached directory for a currency, or nil on a miss.
func (c *RedisBankCache) GetBanks(ctx context.Context, currency string) []domain.Bank {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := c.client.Get(ctx, c.key(currency)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("level=warn component=bank_cache msg=\"cache read failed; treating as miss\" currency=%s err=%v", currency, err)
		}
		return nil
	}
	var banks []domain.Bank
	if err := json.Unmarshal(payload, &banks); err != nil {
		log.Printf("level=warn component=bank_cache msg=\"corrupt cache entry; treating as miss\" currency=%s err=%v", currency, err)
		return nil
	}
	return banks
}

// SetBanks stores the directory for a currency. Failures are logged and ignored.
func (c *RedisBankCache) SetBanks(ctx context.Context, currency string, banks []domain.Bank) {
	if c == nil || c.client == nil || len(banks) == 0 {
		return
	}
	payload, err := json.Marshal(banks)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(currency), payload, c.ttl).Err(); err != nil {
		log.Printf("level=warn component=bank_cache msg=\"cache write failed\" currency=%s err=%v", currency, err)
	}
}
