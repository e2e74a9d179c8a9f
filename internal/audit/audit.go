// Copyright (c) 2026 WealthWave. All rights reserved.

/*
Package audit records security-relevant events onto an append-only stream.

Events land in the Redis stream audit:events via XADD. Writes are strictly
best-effort: an unreachable stream degrades to a warning log, never to a
failed login or registration.
*/
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wealthwave/api/internal/platform/constants"
)

// # Stream Recorder

// Recorder appends audit events to the Redis stream.
type Recorder struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRecorder constructs a [Recorder].
func NewRecorder(client *redis.Client, logger *slog.Logger) *Recorder {
	return &Recorder{client: client, logger: logger}
}

/*
Record appends one event to the audit stream.

Description: XADD with an auto-generated ID; the stream's own ID carries
the ordering, the at field carries the wall-clock instant. Failures are
logged and returned; security flows deliberately ignore the error.

Parameters:
  - context: context.Context
  - action: string (dotted event name, e.g. "auth.login.success")
  - actorID: string (user ID, may be empty for anonymous events)
  - detail: string (free-form context, may be empty)

Returns:
  - error: Redis failures
*/
func (recorder *Recorder) Record(context context.Context, action, actorID, detail string) error {
	err := recorder.client.XAdd(context, &redis.XAddArgs{
		Stream: constants.RedisStreamAudit,
		Values: map[string]interface{}{
			"action": action,
			"actor":  actorID,
			"detail": detail,
			"at":     time.Now().UTC().Format(time.RFC3339Nano),
		},
	}).Err()

	if err != nil {
		recorder.logger.Warn("audit_write_failed",
			slog.String("action", action),
			slog.Any("error", err),
		)
		return fmt.Errorf("audit_write_failed: %w", err)
	}

	return nil
}
