package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const lastActiveField = "last_active"

// Presence keeps a last_active unix timestamp per user. Keys expire after
// ttl without activity.
type Presence struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPresence(client *redis.Client, ttl time.Duration) *Presence {
	return &Presence{client: client, ttl: ttl}
}

func (p *Presence) Touch(ctx context.Context, userID uuid.UUID) error {
	key := PresencePrefix + userID.String()
	pipe := p.client.TxPipeline()
	pipe.HSet(ctx, key, lastActiveField, time.Now().Unix())
	pipe.Expire(ctx, key, p.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// LastActive returns the last recorded activity. ok is false when the user
// has not been active within the ttl.
func (p *Presence) LastActive(ctx context.Context, userID uuid.UUID) (at time.Time, ok bool, err error) {
	raw, err := p.client.HGet(ctx, PresencePrefix+userID.String(), lastActiveField).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(sec, 0), true, nil
}
