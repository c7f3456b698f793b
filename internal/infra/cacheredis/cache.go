package cacheredis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"agentgate/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Cache stores exchanged tokens in redis so a fleet of gateway processes
// shares one exchange per caller within the TTL.
type Cache struct {
	client *redis.Client
}

func New(addr, password string, db int) (*Cache, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Cache{client: client}, nil
}

type cachedContext struct {
	Token   string `json:"token"`
	Subject string `json:"subject"`
	Kind    string `json:"kind"`
}

func (c *Cache) Get(ctx context.Context, key string) (domain.AuthContext, bool, error) {
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.AuthContext{}, false, nil
		}
		return domain.AuthContext{}, false, err
	}
	var entry cachedContext
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return domain.AuthContext{}, false, err
	}
	return domain.AuthContext{
		Token:   entry.Token,
		Subject: entry.Subject,
		Kind:    domain.CredentialKind(entry.Kind),
	}, true, nil
}

func (c *Cache) Put(ctx context.Context, key string, value domain.AuthContext, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(cachedContext{
		Token:   value.Token,
		Subject: value.Subject,
		Kind:    string(value.Kind),
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

var _ domain.TokenCache = (*Cache)(nil)
