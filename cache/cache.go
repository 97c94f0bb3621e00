// Package cache is a Redis-backed key-value layer for association snapshots.
// It is non-authoritative: every entry can be rebuilt from the store, and all
// failures degrade to a miss so the caller can fall back.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Namespace is the single logical cache holding both list-level and
// detail-level entries, distinguished by key prefix.
const Namespace = "user_associations"

// State tags the outcome of a cache read.
type State int

const (
	StateHit State = iota
	StateMiss
	StateFailed
)

// Result is the three-variant outcome of Get. Callers branch on State;
// Value is set only for StateHit and Err only for StateFailed.
type Result struct {
	State State
	Value []byte
	Err   error
}

// Cache is the contract the orchestrator depends on. Set and Delete report
// failures through their error so the caller can log them, but a failure
// must never abort the request.
type Cache interface {
	Get(ctx context.Context, key string) Result
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// ListKey is the cache key for a user's pending-association list.
func ListKey(userID uint) string {
	return fmt.Sprintf("user_associations_%d", userID)
}

// DetailKey is the cache key for a single association scoped to its owner.
func DetailKey(userID, associationID uint) string {
	return fmt.Sprintf("association_%d_%d", userID, associationID)
}

// Client is a long-lived pooled Redis client shared across requests.
type Client struct {
	rdb     *redis.Client
	ttl     time.Duration
	timeout time.Duration
}

// New creates a cache client. ttl is applied uniformly to every entry;
// timeout bounds each cache operation independently of store latency.
func New(addr, password string, db int, ttl, timeout time.Duration) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Client{rdb: rdb, ttl: ttl, timeout: timeout}
}

// Ensure verifies the cache is reachable. Idempotent; called once at startup.
func (c *Client) Ensure(ctx context.Context) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Get(ctx context.Context, key string) Result {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	value, err := c.rdb.Get(ctx, c.namespaced(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Result{State: StateMiss}
		}
		return Result{State: StateFailed, Err: err}
	}
	return Result{State: StateHit, Value: value}
}

func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.rdb.Set(ctx, c.namespaced(key), value, c.ttl).Err()
}

func (c *Client) Delete(ctx context.Context, key string) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.rdb.Del(ctx, c.namespaced(key)).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) namespaced(key string) string {
	return Namespace + ":" + key
}

func (c *Client) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}
