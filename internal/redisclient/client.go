package redisclient

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/prepend_order.lua
var prependOrderScript string

// Storage keys. Each holds a JSON array.
const (
	KeyMenu   = "bistro_menu"
	KeyOrders = "bistro_orders"
	KeyAdmins = "bistro_admins"
)

const watchRetries = 5

// kv is the subset of commands shared by clients, transactions and pipelines
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type Client struct {
	rdb           *redis.Client
	prependScript *redis.Script
}

// NewClient creates a new Redis client with Lua scripts loaded
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:           rdb,
		prependScript: redis.NewScript(prependOrderScript),
	}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks the connection
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// getJSON decodes key into dst. A missing key leaves dst untouched.
func getJSON(ctx context.Context, cmd kv, key string, dst interface{}) error {
	raw, err := cmd.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis get %s failed: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// setJSON encodes val under key without expiry
func setJSON(ctx context.Context, cmd kv, key string, val interface{}) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return cmd.Set(ctx, key, data, 0).Err()
}

// update runs a read-modify-write of key under WATCH, retrying when another
// writer touches the key first
func (c *Client) update(ctx context.Context, key string, fn func(tx *redis.Tx) (interface{}, error)) error {
	for i := 0; i < watchRetries; i++ {
		err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
			val, err := fn(tx)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				return setJSON(ctx, pipe, key, val)
			})
			return err
		}, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("redis update %s: too many concurrent writers", key)
}
