package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const gameStateKey = "cluehunt:game_state"

// RedisGameState keeps the started flag in Redis so several server
// processes share one gate.
type RedisGameState struct {
	client *redis.Client
	key    string
}

func NewRedisGameState(client *redis.Client) *RedisGameState {
	return &RedisGameState{client: client, key: gameStateKey}
}

// Started reads the flag, creating it as stopped when absent.
func (r *RedisGameState) Started(ctx context.Context) (bool, error) {
	if err := r.client.SetNX(ctx, r.key, "0", 0).Err(); err != nil {
		return false, fmt.Errorf("initializing game state: %w", err)
	}
	v, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		return false, fmt.Errorf("reading game state: %w", err)
	}
	return v == "1", nil
}

func (r *RedisGameState) SetStarted(ctx context.Context, started bool) (bool, error) {
	v := "0"
	if started {
		v = "1"
	}
	if err := r.client.Set(ctx, r.key, v, 0).Err(); err != nil {
		return false, fmt.Errorf("writing game state: %w", err)
	}
	return started, nil
}
