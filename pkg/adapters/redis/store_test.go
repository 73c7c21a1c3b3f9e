package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/polyglotter/pkg/adapters/redis"
	"github.com/aretw0/polyglotter/pkg/grammar"
	"github.com/aretw0/polyglotter/pkg/operation"
	"github.com/aretw0/polyglotter/pkg/ports"
)

func setup(t *testing.T, opts ...redis.Option) (*miniredis.Miniredis, *redis.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redis.NewFromClient(client, opts...)
	t.Cleanup(func() { _ = store.Close() })
	return mr, store
}

func TestRedisStore_Contract(t *testing.T) {
	_, store := setup(t)
	ports.RunTermStoreContract(t, store)
}

func TestRedisStore_Layout(t *testing.T) {
	mr, store := setup(t, redis.WithPrefix("test:"))
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "price", 12.34))

	raw, err := mr.Get("test:term:price")
	require.NoError(t, err)
	assert.Equal(t, "12.34", raw)

	members, err := mr.ZMembers("test:index")
	require.NoError(t, err)
	assert.Equal(t, []string{"price"}, members)
}

func TestRedisStore_ExternalWrites(t *testing.T) {
	mr, store := setup(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(redis.DefaultPrefix+"term:count", "10"))
	require.NoError(t, mr.Set(redis.DefaultPrefix+"term:nested", `{"a":[1,2.5]}`))

	v, err := store.Get(ctx, "count")
	require.NoError(t, err)
	assert.Equal(t, int64(10), v)

	v, err = store.Get(ctx, "nested")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{int64(1), 2.5}}, v)

	require.NoError(t, mr.Set(redis.DefaultPrefix+"term:broken", "{"))
	_, err = store.Get(ctx, "broken")
	assert.Error(t, err)
}

func TestRedisStore_TTL(t *testing.T) {
	mr, store := setup(t, redis.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "temp", 1))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "temp")
	assert.ErrorIs(t, err, ports.ErrTermNotFound)
}

func TestRedisStore_RefreshInvalidatesOperations(t *testing.T) {
	mr, store := setup(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a", 10))
	require.NoError(t, store.Put(ctx, "b", 25))

	a, err := store.Bind(ctx, grammar.ID("a"), "a")
	require.NoError(t, err)
	b, err := store.Bind(ctx, grammar.ID("b"), "b")
	require.NoError(t, err)

	total := operation.NewAdd(grammar.ID("total"), grammar.ID("T"))
	total.AddTerm(a, b)

	v, ok := total.Result()
	require.True(t, ok)
	assert.Equal(t, int64(35), v)

	// a writer that bypasses the store
	require.NoError(t, mr.Set(redis.DefaultPrefix+"term:b", `"value-1"`))
	changed, err := store.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	_, ok = total.Result()
	assert.False(t, ok)
	assert.Contains(t, total.Problems().Errors()[0].Message, "poly:b")
}

func TestRedisStore_Watch(t *testing.T) {
	_, store := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := store.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "a", 1))
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change signal")
	}

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, open := <-ch:
			return !open
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedisStore_NewFromURL(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := redis.NewFromURL("redis://"+mr.Addr()+"/0", redis.WithPrefix("url:"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Put(context.Background(), "rate", 3))
	assert.True(t, mr.Exists("url:term:rate"))

	_, err = redis.NewFromURL("http://nope")
	assert.Error(t, err)
}
