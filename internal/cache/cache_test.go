package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestGetSetJSON(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		in := payload{Name: "thoi-su", Count: 3}
		require.NoError(t, SetJSON(ctx, "test:key", in, time.Minute))

		var out payload
		found, err := GetJSON(ctx, "test:key", &out)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, in, out)
	})

	t.Run("miss", func(t *testing.T) {
		var out payload
		found, err := GetJSON(ctx, "test:missing", &out)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("ttl expiry", func(t *testing.T) {
		require.NoError(t, SetJSON(ctx, "test:ttl", payload{Name: "x"}, time.Minute))
		mr.FastForward(2 * time.Minute)

		var out payload
		found, err := GetJSON(ctx, "test:ttl", &out)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("corrupt entry surfaces error", func(t *testing.T) {
		require.NoError(t, mr.Set("test:bad", "not json"))

		var out payload
		found, err := GetJSON(ctx, "test:bad", &out)
		assert.Error(t, err)
		assert.False(t, found)
	})
}

func TestAside(t *testing.T) {
	ctx := context.Background()

	t.Run("miss fetches and populates", func(t *testing.T) {
		mr := setupMiniredis(t)

		calls := 0
		var out payload
		err := Aside(ctx, "aside:key", &out, time.Minute, func() error {
			calls++
			out = payload{Name: "fetched", Count: 1}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.True(t, mr.Exists("aside:key"))

		// Second call is served from cache.
		var again payload
		err = Aside(ctx, "aside:key", &again, time.Minute, func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, "fetched", again.Name)
	})

	t.Run("fetch error is not cached", func(t *testing.T) {
		mr := setupMiniredis(t)

		var out payload
		err := Aside(ctx, "aside:fail", &out, time.Minute, func() error {
			return errors.New("db down")
		})
		assert.Error(t, err)
		assert.False(t, mr.Exists("aside:fail"))
	})

	t.Run("nil client falls through to fetch", func(t *testing.T) {
		SetClient(nil)

		calls := 0
		var out payload
		err := Aside(ctx, "aside:noredis", &out, time.Minute, func() error {
			calls++
			out.Name = "direct"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, "direct", out.Name)
	})
}

func TestInvalidate(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, UserKey(7), payload{Name: "u"}, time.Minute))
	InvalidateUser(ctx, 7)
	assert.False(t, mr.Exists(UserKey(7)))

	require.NoError(t, SetJSON(ctx, ArticleKey(3), payload{Name: "a"}, time.Minute))
	require.NoError(t, SetJSON(ctx, FeaturedKey, payload{Name: "f"}, time.Minute))
	require.NoError(t, SetJSON(ctx, CategoriesKey, payload{Name: "c"}, time.Minute))

	InvalidateArticle(ctx, 3)
	assert.False(t, mr.Exists(ArticleKey(3)))
	assert.False(t, mr.Exists(FeaturedKey), "derived featured list is dropped with the article")
	assert.False(t, mr.Exists(CategoriesKey), "derived category list is dropped with the article")
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "user:42", UserKey(42))
	assert.Equal(t, "article:7", ArticleKey(7))
}
