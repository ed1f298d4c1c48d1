package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tieubaoca/arxchive-be/types"
)

// sessionTTL bounds how long an idle conversation survives in Redis.
const sessionTTL = 24 * time.Hour

const sessionKeyPrefix = "arxchive:session:"

type redisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore returns a SessionStore backed by Redis, for
// deployments running more than one instance behind a load balancer.
func NewRedisSessionStore(addr string) (SessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &redisSessionStore{client: client}, nil
}

func (s *redisSessionStore) Get(ctx context.Context, id string) (*types.ConversationState, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return types.NewConversationState(), nil
		}
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	var state types.ConversationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	if state.UploadedPaths == nil {
		state.UploadedPaths = make(map[string]bool)
	}
	return &state, nil
}

func (s *redisSessionStore) Save(ctx context.Context, id string, state *types.ConversationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", id, err)
	}
	return s.client.Set(ctx, sessionKeyPrefix+id, data, sessionTTL).Err()
}

func (s *redisSessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKeyPrefix+id).Err()
}
