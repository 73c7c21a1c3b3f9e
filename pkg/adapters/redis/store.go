package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/polyglotter/pkg/grammar"
	"github.com/aretw0/polyglotter/pkg/ports"
	"github.com/aretw0/polyglotter/pkg/schema"
)

// Store implements ports.TermStore using Redis. Values are stored as JSON
// under "<prefix>term:<key>"; "<prefix>index" is a ZSET of live keys scored
// by expiry.
type Store struct {
	client   *backend.Client
	prefix   string
	ttl      time.Duration
	bindings ports.Bindings
}

var (
	_ ports.TermStore = (*Store)(nil)
	_ ports.Watchable = (*Store)(nil)
)

type Option func(*Store)

// WithTTL sets the expiration for stored values.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "polyglotter:"

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromURL creates a store from a URL such as "redis://:secret@localhost:6379/0".
func NewFromURL(rawURL string, opts ...Option) (*Store, error) {
	o, err := backend.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewFromClient(backend.NewClient(o), opts...), nil
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(key string) string {
	return s.prefix + "term:" + key
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

func (s *Store) channel() string {
	return s.prefix + "changes"
}

// Put persists the value as JSON and announces the change.
func (s *Store) Put(ctx context.Context, key string, value any) error {
	if key == "" {
		return fmt.Errorf("put: empty key")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %q: %w", key, err)
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(key), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: key})
	pipe.Publish(ctx, s.channel(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Get retrieves and decodes a value.
func (s *Store) Get(ctx context.Context, key string) (any, error) {
	val, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%q: %w", key, ports.ErrTermNotFound)
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return decode(val)
}

// Delete removes a value and announces the change.
func (s *Store) Delete(ctx context.Context, key string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(key))
	pipe.ZRem(ctx, s.indexKey(), key)
	pipe.Publish(ctx, s.channel(), key)
	_, err := pipe.Exec(ctx)
	return err
}

// Keys returns live keys, pruning expired index entries first.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired keys: %w", err)
	}

	keys, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	slices.Sort(keys)
	return keys, nil
}

// Bind returns a term tracking key.
func (s *Store) Bind(ctx context.Context, id grammar.Identifier, key string) (*grammar.ValueTerm, error) {
	v, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.bindings.Add(id, key, v), nil
}

// Release unbinds terms so Refresh no longer updates them.
func (s *Store) Release(terms ...grammar.Term) int {
	return s.bindings.Remove(terms...)
}

// Refresh fetches every bound key with one MGET and updates changed terms.
func (s *Store) Refresh(ctx context.Context) (int, error) {
	keys := s.bindings.Keys()
	if len(keys) == 0 {
		return 0, nil
	}
	redisKeys := make([]string, len(keys))
	for i, k := range keys {
		redisKeys[i] = s.key(k)
	}

	vals, err := s.client.MGet(ctx, redisKeys...).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to refresh from redis: %w", err)
	}

	changed := 0
	for i, raw := range vals {
		var value any
		if str, ok := raw.(string); ok {
			value, err = decode([]byte(str))
			if err != nil {
				return changed, fmt.Errorf("refresh %q: %w", keys[i], err)
			}
		}
		changed += s.bindings.Apply(keys[i], value)
	}
	return changed, nil
}

// Watch subscribes to change announcements.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	sub := s.client.Subscribe(ctx, s.channel())
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

// decode parses JSON keeping integers as int64.
func decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return schema.Normalize(v), nil
}
