// Package redis provides a Redis implementation of the keeper composite
// store. Snapshots are plain string keys; check logs are JSON documents in a
// hash, indexed by creation time in a sorted set.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xraph/keeper/checklog"
	"github.com/xraph/keeper/id"
	"github.com/xraph/keeper/snapshot"
	"github.com/xraph/keeper/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// errNotFound is the sentinel for missing entities.
var errNotFound = fmt.Errorf("not found")

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "keeper:"

// Store is a Redis implementation of the composite keeper store.
type Store struct {
	client redis.UniversalClient
	prefix string
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix overrides DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// New creates a Redis store over an existing client.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dial connects to a single Redis server.
func Dial(addr, password string, db int, opts ...Option) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return New(rdb, opts...)
}

// Migrate is a no-op; Redis has no schema.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping verifies the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) snapshotKey(key string) string { return s.prefix + "snapshot:" + key }
func (s *Store) checkLogHash() string          { return s.prefix + "checklog:entries" }
func (s *Store) checkLogIndex() string         { return s.prefix + "checklog:by_time" }

// ──────────────────────────────────────────────────
// Snapshot operations
// ──────────────────────────────────────────────────

func (s *Store) LoadSnapshot(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.snapshotKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("snapshot %q: %w", key, snapshot.ErrNotFound)
		}
		return nil, fmt.Errorf("keeper: load snapshot: %w", err)
	}
	return data, nil
}

func (s *Store) SaveSnapshot(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.snapshotKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("keeper: save snapshot: %w", err)
	}
	return nil
}

func (s *Store) DeleteSnapshot(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.snapshotKey(key)).Err(); err != nil {
		return fmt.Errorf("keeper: delete snapshot: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Check log operations
// ──────────────────────────────────────────────────

func (s *Store) CreateCheckLog(ctx context.Context, e *checklog.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("keeper: create check log: %w", err)
	}
	member := e.ID.String()
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, s.checkLogHash(), member, data)
		p.ZAdd(ctx, s.checkLogIndex(), redis.Z{Score: score(e.CreatedAt), Member: member})
		return nil
	})
	if err != nil {
		return fmt.Errorf("keeper: create check log: %w", err)
	}
	return nil
}

func (s *Store) GetCheckLog(ctx context.Context, logID id.CheckLogID) (*checklog.Entry, error) {
	data, err := s.client.HGet(ctx, s.checkLogHash(), logID.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("check log %s: %w", logID, errNotFound)
		}
		return nil, fmt.Errorf("keeper: get check log: %w", err)
	}
	e := new(checklog.Entry)
	if err := json.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("keeper: get check log: %w", err)
	}
	return e, nil
}

// scan walks entries newest first within the filter's time window and calls
// fn for each that matches. fn returns false to stop.
func (s *Store) scan(ctx context.Context, filter *checklog.QueryFilter, fn func(*checklog.Entry) bool) error {
	rng := &redis.ZRangeBy{Min: "-inf", Max: "+inf"}
	if filter != nil {
		if filter.After != nil {
			rng.Min = "(" + strconv.FormatFloat(score(*filter.After), 'f', -1, 64)
		}
		if filter.Before != nil {
			rng.Max = "(" + strconv.FormatFloat(score(*filter.Before), 'f', -1, 64)
		}
	}
	ids, err := s.client.ZRevRangeByScore(ctx, s.checkLogIndex(), rng).Result()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	docs, err := s.client.HMGet(ctx, s.checkLogHash(), ids...).Result()
	if err != nil {
		return err
	}
	for _, doc := range docs {
		raw, ok := doc.(string)
		if !ok {
			continue
		}
		e := new(checklog.Entry)
		if err := json.Unmarshal([]byte(raw), e); err != nil {
			return err
		}
		if filter.Matches(e) && !fn(e) {
			return nil
		}
	}
	return nil
}

func (s *Store) ListCheckLogs(ctx context.Context, filter *checklog.QueryFilter) ([]*checklog.Entry, error) {
	var limit, offset int
	if filter != nil {
		limit, offset = filter.Limit, filter.Offset
	}
	var result []*checklog.Entry
	skipped := 0
	err := s.scan(ctx, filter, func(e *checklog.Entry) bool {
		if skipped < offset {
			skipped++
			return true
		}
		result = append(result, e)
		return limit <= 0 || len(result) < limit
	})
	if err != nil {
		return nil, fmt.Errorf("keeper: list check logs: %w", err)
	}
	return result, nil
}

func (s *Store) CountCheckLogs(ctx context.Context, filter *checklog.QueryFilter) (int64, error) {
	var n int64
	err := s.scan(ctx, filter, func(*checklog.Entry) bool {
		n++
		return true
	})
	if err != nil {
		return 0, fmt.Errorf("keeper: count check logs: %w", err)
	}
	return n, nil
}

func (s *Store) PurgeCheckLogs(ctx context.Context, before time.Time) (int64, error) {
	upper := "(" + strconv.FormatFloat(score(before), 'f', -1, 64)
	ids, err := s.client.ZRangeByScore(ctx, s.checkLogIndex(), &redis.ZRangeBy{Min: "-inf", Max: upper}).Result()
	if err != nil {
		return 0, fmt.Errorf("keeper: purge check logs: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	members := make([]any, len(ids))
	for i, v := range ids {
		members[i] = v
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HDel(ctx, s.checkLogHash(), ids...)
		p.ZRem(ctx, s.checkLogIndex(), members...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("keeper: purge check logs: %w", err)
	}
	return int64(len(ids)), nil
}

// score maps a timestamp to a sorted-set score in microseconds, which a
// float64 holds exactly for any realistic date.
func score(t time.Time) float64 {
	return float64(t.UnixMicro())
}
