package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

// connKeyPrefix namespaces connection records in the Redis keyspace.
const connKeyPrefix = "realtime:conn:"

// RedisStore is the Redis-backed ConnectionStore. Each record is a JSON
// value under its own key with a native Redis TTL, so orphaned records
// self-expire without any read-side filtering or sweeping.
type RedisStore struct {
	rdb   *goredis.Client
	clock clockwork.Clock
}

// NewRedisStore creates a Redis-backed connection store.
func NewRedisStore(rdb *goredis.Client, clock clockwork.Clock) *RedisStore {
	return &RedisStore{rdb: rdb, clock: clock}
}

func connKey(connectionID string) string {
	return connKeyPrefix + connectionID
}

// Put upserts a record. The key TTL is derived from the record's ExpiresAt
// watermark; a record already past its watermark is not written.
func (s *RedisStore) Put(ctx context.Context, rec ConnectionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal connection %s: %w", rec.ConnectionID, err)
	}

	var ttl time.Duration
	if !rec.ExpiresAt.IsZero() {
		ttl = rec.ExpiresAt.Sub(s.clock.Now())
		if ttl <= 0 {
			return nil
		}
	}

	if err := s.rdb.Set(ctx, connKey(rec.ConnectionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("put connection %s: %w", rec.ConnectionID, err)
	}
	return nil
}

// Delete removes a record. Deleting an unknown id is not an error.
func (s *RedisStore) Delete(ctx context.Context, connectionID string) error {
	if err := s.rdb.Del(ctx, connKey(connectionID)).Err(); err != nil {
		return fmt.Errorf("delete connection %s: %w", connectionID, err)
	}
	return nil
}

// ListAll returns all live records.
func (s *RedisStore) ListAll(ctx context.Context) ([]ConnectionRecord, error) {
	return s.scan(ctx, func(ConnectionRecord) bool { return true })
}

// ListByScope returns the live records whose scope matches exactly.
func (s *RedisStore) ListByScope(ctx context.Context, scope Scope) ([]ConnectionRecord, error) {
	return s.scan(ctx, func(r ConnectionRecord) bool { return r.Scope == scope })
}

// scan walks the connection keyspace with SCAN (never KEYS) and decodes
// each record. A key fetched after SCAN may have expired in between; that
// race just shrinks the snapshot, which broadcast semantics tolerate.
func (s *RedisStore) scan(ctx context.Context, match func(ConnectionRecord) bool) ([]ConnectionRecord, error) {
	var recs []ConnectionRecord

	iter := s.rdb.Scan(ctx, 0, connKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.rdb.Get(ctx, iter.Val()).Bytes()
		if err == goredis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get connection %s: %w", iter.Val(), err)
		}

		var rec ConnectionRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal connection %s: %w", iter.Val(), err)
		}
		if match(rec) {
			recs = append(recs, rec)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan connections: %w", err)
	}
	return recs, nil
}
