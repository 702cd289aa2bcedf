package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON encoded values in redis under a common key prefix.
type Cache struct {
	client *redis.Client
	prefix string
}

type Options struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

type Option func(*Options)

func WithAddress(addr string) Option {
	return func(o *Options) {
		o.Address = addr
	}
}

func WithPassword(pass string) Option {
	return func(o *Options) {
		o.Password = pass
	}
}

func WithDB(db int) Option {
	return func(o *Options) {
		o.DB = db
	}
}

// WithPrefix namespaces every key, e.g. "commhealth:".
func WithPrefix(prefix string) Option {
	return func(o *Options) {
		o.Prefix = prefix
	}
}

func New(ctx context.Context, opts ...Option) (*Cache, error) {
	options := &Options{
		Address: "localhost:6379",
	}

	for _, opt := range opts {
		opt(options)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     options.Address,
		Password: options.Password,
		DB:       options.DB,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", options.Address, err)
	}

	return &Cache{client: client, prefix: options.Prefix}, nil
}

// Get decodes the value stored at key into dest. A missing key returns redis.Nil.
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(val, dest)
}

func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value for %q: %w", key, err)
	}
	return c.client.Set(ctx, c.prefix+key, data, expiration).Err()
}

// DeletePrefix removes every key starting with prefix and reports how many were removed.
func (c *Cache) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	var (
		deleted int
		batch   []string
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.client.Del(ctx, batch...).Result()
		deleted += int(n)
		batch = batch[:0]
		return err
	}

	iter := c.client.Scan(ctx, 0, c.prefix+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := flush(); err != nil {
				return deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}
	return deleted, flush()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
