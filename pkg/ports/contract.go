package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/polyglotter/pkg/grammar"
	"github.com/aretw0/polyglotter/pkg/schema"
)

// RunTermStoreContract runs a suite of tests to verify that a TermStore
// implementation adheres to the defined interface contract.
func RunTermStoreContract(t *testing.T, store TermStore) {
	ctx := context.Background()
	prefix := fmt.Sprintf("contract-%d-", time.Now().UnixNano())
	key := func(name string) string { return prefix + name }

	t.Run("Put and Get", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, key("int"), 10))
		require.NoError(t, store.Put(ctx, key("float"), 12.34))
		require.NoError(t, store.Put(ctx, key("string"), "value-1"))

		v, err := store.Get(ctx, key("int"))
		require.NoError(t, err)
		n, ok := schema.AsNumber(v)
		require.True(t, ok, "integers must stay numeric, got %T", v)
		assert.Equal(t, int64(10), n.Int64())
		assert.False(t, n.IsFloat(), "integers must not turn into floats")

		v, err = store.Get(ctx, key("float"))
		require.NoError(t, err)
		n, ok = schema.AsNumber(v)
		require.True(t, ok)
		assert.InDelta(t, 12.34, n.Float64(), 1e-9)

		v, err = store.Get(ctx, key("string"))
		require.NoError(t, err)
		assert.Equal(t, "value-1", v)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, key("missing"))
		assert.ErrorIs(t, err, ErrTermNotFound)
	})

	t.Run("Keys and Delete", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, key("k1"), 1))
		require.NoError(t, store.Put(ctx, key("k2"), 2))

		keys, err := store.Keys(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, key("k1"))
		assert.Contains(t, keys, key("k2"))
		assert.IsIncreasing(t, keys)

		require.NoError(t, store.Delete(ctx, key("k1")))
		_, err = store.Get(ctx, key("k1"))
		assert.ErrorIs(t, err, ErrTermNotFound)

		keys, err = store.Keys(ctx)
		require.NoError(t, err)
		assert.NotContains(t, keys, key("k1"))
	})

	t.Run("Bind", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, key("bound"), 25))

		term, err := store.Bind(ctx, grammar.ID("bound"), key("bound"))
		require.NoError(t, err)
		assert.Equal(t, grammar.ID("bound"), term.ID())
		n, ok := schema.AsNumber(term.Value())
		require.True(t, ok)
		assert.Equal(t, int64(25), n.Int64())

		_, err = store.Bind(ctx, grammar.ID("missing"), key("unbound"))
		assert.ErrorIs(t, err, ErrTermNotFound)
	})

	t.Run("Refresh", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, key("live"), 1))
		term, err := store.Bind(ctx, grammar.ID("live"), key("live"))
		require.NoError(t, err)

		notified := 0
		cancel := term.Subscribe(func(grammar.Identifier) { notified++ })
		defer cancel()

		// unchanged values are not re-set
		_, err = store.Refresh(ctx)
		require.NoError(t, err)
		assert.Zero(t, notified)

		require.NoError(t, store.Put(ctx, key("live"), 2))
		changed, err := store.Refresh(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, changed, 1)
		assert.Equal(t, 1, notified)
		n, _ := schema.AsNumber(term.Value())
		assert.Equal(t, int64(2), n.Int64())

		require.NoError(t, store.Delete(ctx, key("live")))
		_, err = store.Refresh(ctx)
		require.NoError(t, err)
		assert.Nil(t, term.Value())
		assert.Equal(t, 2, notified)
	})

	t.Run("Release", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, key("released"), 1))
		kept, err := store.Bind(ctx, grammar.ID("kept"), key("released"))
		require.NoError(t, err)
		dropped, err := store.Bind(ctx, grammar.ID("dropped"), key("released"))
		require.NoError(t, err)

		assert.Equal(t, 1, store.Release(dropped))
		assert.Zero(t, store.Release(dropped), "a term is released once")
		assert.Zero(t, store.Release(grammar.NewTerm(grammar.ID("stranger"), 1)))

		require.NoError(t, store.Put(ctx, key("released"), 2))
		changed, err := store.Refresh(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, changed, "only the kept term refreshes")
		assert.Equal(t, 2, mustInt(t, kept.Value()))
		assert.Equal(t, 1, mustInt(t, dropped.Value()))

		assert.Equal(t, 1, store.Release(kept))
		require.NoError(t, store.Put(ctx, key("released"), 3))
		changed, err = store.Refresh(ctx)
		require.NoError(t, err)
		assert.Zero(t, changed)
	})
}

func mustInt(t *testing.T, v any) int {
	t.Helper()
	n, ok := schema.AsNumber(v)
	require.True(t, ok, "not a number: %v", v)
	return int(n.Int64())
}
