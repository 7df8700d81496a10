package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
)

// partnerTTL bounds how long a code lookup is served from cache. Codes are
// never reassigned, so the TTL only limits memory.
const partnerTTL = 24 * time.Hour

// Connect initializes a Redis client from URL or host:port input.
func Connect(ctx context.Context, redisURL, password string, db int) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL, Password: password, DB: db})
	}
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisPartnerCache caches referral code to partner lookups.
type RedisPartnerCache struct {
	client *redis.Client
}

func NewRedisPartnerCache(client *redis.Client) *RedisPartnerCache {
	return &RedisPartnerCache{client: client}
}

func partnerKey(code string) string {
	return "partners:code:" + code
}

// GetPartnerByCode returns nil without error on a cache miss.
func (c *RedisPartnerCache) GetPartnerByCode(ctx context.Context, code string) (*model.Partner, error) {
	raw, err := c.client.Get(ctx, partnerKey(code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var partner model.Partner
	if err := json.Unmarshal(raw, &partner); err != nil {
		return nil, err
	}
	return &partner, nil
}

func (c *RedisPartnerCache) SetPartner(ctx context.Context, partner *model.Partner) error {
	raw, err := json.Marshal(partner)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, partnerKey(partner.ReferralCode), raw, partnerTTL).Err()
}
