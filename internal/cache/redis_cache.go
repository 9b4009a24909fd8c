package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"shopdesk/backend/internal/domain"
)

const companyKey = "shopdesk:company:profile"

var _ CompanyCache = (*RedisCompanyCache)(nil)

type RedisCompanyCache struct {
	client *redis.Client
}

func NewRedisCompanyCache(addr string, password string, db int) *RedisCompanyCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisCompanyCache{client: client}
}

func (c *RedisCompanyCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCompanyCache) Close() error {
	return c.client.Close()
}

func (c *RedisCompanyCache) GetCompany(ctx context.Context) (*domain.CompanyProfile, bool, error) {
	val, err := c.client.Get(ctx, companyKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var profile domain.CompanyProfile
	if err := json.Unmarshal([]byte(val), &profile); err != nil {
		return nil, false, err
	}
	return &profile, true, nil
}

func (c *RedisCompanyCache) SetCompany(ctx context.Context, profile domain.CompanyProfile, ttl time.Duration) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, companyKey, payload, ttl).Err()
}

func (c *RedisCompanyCache) InvalidateCompany(ctx context.Context) error {
	return c.client.Del(ctx, companyKey).Err()
}
