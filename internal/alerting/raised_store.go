package alerting

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"QuakeWatchAPI/internal/logger"

	"github.com/go-redis/redis/v8"
)

const raisedKey = "quakewatch:alerts:raised"

// RaisedStore remembers which notification ids have ever been raised, backed
// by a redis hash of id -> raise time. It exists so a restart does not
// re-alert on events that are still inside the recency window; the active
// in-memory collection alone would forget them.
type RaisedStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewRaisedStore(client *redis.Client, ttl time.Duration, log *logger.Logger) *RaisedStore {
	return &RaisedStore{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// Load returns the set of ids raised within the retention TTL. Entries past
// the TTL are ignored; Cleanup removes them for real.
func (s *RaisedStore) Load(ctx context.Context) (map[string]struct{}, error) {
	entries, err := s.client.HGetAll(ctx, raisedKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load raised alert ids: %w", err)
	}

	cutoff := time.Now().Add(-s.ttl).UnixMilli()
	ids := make(map[string]struct{}, len(entries))
	for id, raw := range entries {
		raisedAt, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || raisedAt < cutoff {
			continue
		}
		ids[id] = struct{}{}
	}
	return ids, nil
}

// Mark records the given ids as raised at the current time.
func (s *RaisedStore) Mark(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	fields := make([]interface{}, 0, len(ids)*2)
	for _, id := range ids {
		fields = append(fields, id, now)
	}

	if err := s.client.HSet(ctx, raisedKey, fields...).Err(); err != nil {
		return fmt.Errorf("failed to mark raised alert ids: %w", err)
	}
	return nil
}

// Cleanup deletes entries older than the retention TTL.
func (s *RaisedStore) Cleanup(ctx context.Context) {
	entries, err := s.client.HGetAll(ctx, raisedKey).Result()
	if err != nil {
		s.log.Error("Raised-id cleanup failed to read entries: %v", err)
		return
	}

	cutoff := time.Now().Add(-s.ttl).UnixMilli()
	var expired []string
	for id, raw := range entries {
		raisedAt, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || raisedAt < cutoff {
			expired = append(expired, id)
		}
	}

	if len(expired) == 0 {
		return
	}

	if err := s.client.HDel(ctx, raisedKey, expired...).Err(); err != nil {
		s.log.Error("Raised-id cleanup failed to delete entries: %v", err)
		return
	}
	s.log.Debug("Cleaned up %d expired raised-id entries, %d remaining", len(expired), len(entries)-len(expired))
}

// Health verifies the redis connection.
func (s *RaisedStore) Health(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}
