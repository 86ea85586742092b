package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	callStateKeyPrefix = "voice:state:"
	// callStateTTL bounds how long an abandoned call's state lingers when
	// the completion webhook never arrives.
	callStateTTL = 24 * time.Hour
)

// RedisStateStore keeps call state in Redis so multiple API instances can
// serve turns for the same call.
type RedisStateStore struct {
	rdb *redis.Client
}

// NewRedisStateStore creates a Redis-backed state store.
func NewRedisStateStore(rdb *redis.Client) *RedisStateStore {
	return &RedisStateStore{rdb: rdb}
}

func callStateKey(callID string) string {
	return callStateKeyPrefix + callID
}

// Get retrieves call state, returning (nil, nil) when the key is absent.
func (s *RedisStateStore) Get(ctx context.Context, callID string) (*State, error) {
	data, err := s.rdb.Get(ctx, callStateKey(callID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("conversation: state get: %w", err)
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("conversation: state unmarshal: %w", err)
	}
	return &state, nil
}

// Save persists or replaces call state.
func (s *RedisStateStore) Save(ctx context.Context, state *State) error {
	if state == nil || state.CallID == "" {
		return fmt.Errorf("conversation: state save: call_id required")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("conversation: state marshal: %w", err)
	}
	return s.rdb.Set(ctx, callStateKey(state.CallID), data, callStateTTL).Err()
}

// Delete removes call state. A missing key is not an error.
func (s *RedisStateStore) Delete(ctx context.Context, callID string) error {
	return s.rdb.Del(ctx, callStateKey(callID)).Err()
}
