package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Blacklist stores revoked access tokens until they would have expired
// anyway.
type Blacklist struct {
	client *redis.Client
}

func NewBlacklist(client *redis.Client) *Blacklist {
	return &Blacklist{client: client}
}

// Revoke blacklists token for ttl. A non-positive ttl means the token has
// already expired and nothing is stored.
func (b *Blacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, BlacklistPrefix+token, 1, ttl).Err()
}

func (b *Blacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := b.client.Exists(ctx, BlacklistPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
