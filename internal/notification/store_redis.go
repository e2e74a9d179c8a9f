// Copyright (c) 2026 WealthWave. All rights reserved.

package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wealthwave/api/internal/platform/constants"
	"github.com/wealthwave/api/pkg/uuidv7"
)

// # Redis Store

// RedisStore persists per-user notification feeds as capped Redis lists
// under notify:user:<id>.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisStore constructs a [RedisStore].
func NewRedisStore(client *redis.Client, logger *slog.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

// feedKey builds the Redis key for a user's feed.
func feedKey(userID string) string {
	return constants.RedisPrefixNotify + userID
}

/*
CreateForUser prepends a notification to the user's feed and trims it.

Description: LPush + LTrim keeps the newest entries at the head and caps
the feed at fifty. Failures are logged and returned; callers on auth paths
deliberately ignore the error.

Parameters:
  - context: context.Context
  - userID: string
  - kind: string (feed category, e.g. "security", "account")
  - message: string

Returns:
  - error: Serialization or Redis failures
*/
func (store *RedisStore) CreateForUser(context context.Context, userID, kind, message string) error {
	entry := Notification{
		ID:        uuidv7.New(),
		UserID:    userID,
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("notification_marshal_failed: %w", err)
	}

	key := feedKey(userID)
	pipeline := store.client.TxPipeline()
	pipeline.LPush(context, key, payload)
	pipeline.LTrim(context, key, 0, maxKept-1)

	if _, err := pipeline.Exec(context); err != nil {
		store.logger.Warn("notification_write_failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return fmt.Errorf("notification_write_failed: %w", err)
	}

	return nil
}

/*
List returns the user's feed, newest first.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []Notification: Up to fifty entries (undecodable entries are skipped)
  - error: Redis failures
*/
func (store *RedisStore) List(context context.Context, userID string) ([]Notification, error) {
	raw, err := store.client.LRange(context, feedKey(userID), 0, maxKept-1).Result()
	if err != nil {
		return nil, fmt.Errorf("notification_list_failed: %w", err)
	}

	feed := make([]Notification, 0, len(raw))
	for _, item := range raw {
		var entry Notification
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			store.logger.Warn("notification_decode_skipped", slog.Any("error", err))
			continue
		}
		feed = append(feed, entry)
	}

	return feed, nil
}

/*
MarkRead flips the read flag on a single feed entry.

Description: Reads the feed, rewrites the matching entry in place via LSet.
The feed is small (≤50) so the linear scan is fine.

Parameters:
  - context: context.Context
  - userID: string
  - notificationID: string

Returns:
  - bool: true when the entry was found
  - error: Redis failures
*/
func (store *RedisStore) MarkRead(context context.Context, userID, notificationID string) (bool, error) {
	key := feedKey(userID)
	raw, err := store.client.LRange(context, key, 0, maxKept-1).Result()
	if err != nil {
		return false, fmt.Errorf("notification_mark_read_failed: %w", err)
	}

	for index, item := range raw {
		var entry Notification
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		if entry.ID != notificationID {
			continue
		}

		entry.Read = true
		payload, err := json.Marshal(entry)
		if err != nil {
			return false, fmt.Errorf("notification_marshal_failed: %w", err)
		}
		if err := store.client.LSet(context, key, int64(index), payload).Err(); err != nil {
			return false, fmt.Errorf("notification_mark_read_failed: %w", err)
		}
		return true, nil
	}

	return false, nil
}

/*
MarkAllRead flips the read flag on every entry in the user's feed.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Redis failures
*/
func (store *RedisStore) MarkAllRead(context context.Context, userID string) error {
	key := feedKey(userID)
	raw, err := store.client.LRange(context, key, 0, maxKept-1).Result()
	if err != nil {
		return fmt.Errorf("notification_mark_all_failed: %w", err)
	}

	for index, item := range raw {
		var entry Notification
		if err := json.Unmarshal([]byte(item), &entry); err != nil || entry.Read {
			continue
		}

		entry.Read = true
		payload, err := json.Marshal(entry)
		if err != nil {
			continue
		}
		if err := store.client.LSet(context, key, int64(index), payload).Err(); err != nil {
			return fmt.Errorf("notification_mark_all_failed: %w", err)
		}
	}

	return nil
}
