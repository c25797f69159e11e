package presence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	connHashKey  = "presence:conns" // conn id -> user id
	userSetKey   = "presence:user:" // + user id -> set of conn ids
	onlineSetKey = "presence:online"
)

// redisRegistry is a Registry backed by Redis so presence survives across
// multiple server instances sharing one socket tier.
type redisRegistry struct {
	client *redis.Client
}

// NewRedisRegistry builds a Registry from a Redis URL.
func NewRedisRegistry(redisURL string) (Registry, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &redisRegistry{client: client}, nil
}

func (r *redisRegistry) Connect(ctx context.Context, userID string) (string, error) {
	connID := uuid.New().String()

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, connHashKey, connID, userID)
	pipe.SAdd(ctx, userSetKey+userID, connID)
	pipe.SAdd(ctx, onlineSetKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("register connection: %w", err)
	}
	return connID, nil
}

func (r *redisRegistry) Disconnect(ctx context.Context, connID string) error {
	userID, err := r.client.HGet(ctx, connHashKey, connID).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup connection: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.HDel(ctx, connHashKey, connID)
	pipe.SRem(ctx, userSetKey+userID, connID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("remove connection: %w", err)
	}

	remaining, err := r.client.SCard(ctx, userSetKey+userID).Result()
	if err != nil {
		return fmt.Errorf("count connections: %w", err)
	}
	if remaining == 0 {
		if err := r.client.SRem(ctx, onlineSetKey, userID).Err(); err != nil {
			return fmt.Errorf("remove online flag: %w", err)
		}
	}
	return nil
}

func (r *redisRegistry) IsOnline(ctx context.Context, userID string) (bool, error) {
	n, err := r.client.SCard(ctx, userSetKey+userID).Result()
	if err != nil {
		return false, fmt.Errorf("count connections: %w", err)
	}
	return n > 0, nil
}

func (r *redisRegistry) Online(ctx context.Context) ([]string, error) {
	members, err := r.client.SMembers(ctx, onlineSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list online users: %w", err)
	}
	return members, nil
}
