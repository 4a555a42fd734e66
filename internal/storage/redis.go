package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"Hollow-Pines/server/internal/config"
)

// RedisStore keeps a short replay buffer of outbound messages per user, so
// a client that reconnects mid-scene can backfill what it missed. Delivery
// progression never lives here; losing Redis loses nothing but history.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

const (
	messageListKeyPrefix = "messages:"
	messageMaxListSize   = 500
	messageListTTL       = 24 * time.Hour
)

func messageListKey(userID string) string {
	return messageListKeyPrefix + userID
}

// StoreMessage appends one outbound message (already serialized) to the
// user's history list, trimming it to the cap.
func (s *RedisStore) StoreMessage(ctx context.Context, userID string, data []byte) error {
	key := messageListKey(userID)

	if err := s.client.LPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("failed to store message: %w", err)
	}
	if err := s.client.LTrim(ctx, key, 0, int64(messageMaxListSize-1)).Err(); err != nil {
		return fmt.Errorf("failed to trim message list: %w", err)
	}
	if err := s.client.Expire(ctx, key, messageListTTL).Err(); err != nil {
		return fmt.Errorf("failed to set message list TTL: %w", err)
	}
	return nil
}

// RecentMessages returns up to limit of the user's most recent outbound
// messages, newest first. Entries that fail to parse are skipped.
func (s *RedisStore) RecentMessages(ctx context.Context, userID string, limit int64) ([]json.RawMessage, error) {
	if limit <= 0 || limit > messageMaxListSize {
		limit = 50
	}

	results, err := s.client.LRange(ctx, messageListKey(userID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	messages := make([]json.RawMessage, 0, len(results))
	for _, result := range results {
		if !json.Valid([]byte(result)) {
			continue
		}
		messages = append(messages, json.RawMessage(result))
	}
	return messages, nil
}

// ClearMessages drops the user's message history.
func (s *RedisStore) ClearMessages(ctx context.Context, userID string) error {
	return s.client.Del(ctx, messageListKey(userID)).Err()
}
