package cache

import (
	"crypto/md5"
	"encoding/hex"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/orgball2608/insta-archive/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisCache(rdb, logger.NewNop()), mr
}

func TestRedisCache_GetSet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := t.Context()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "story_list_a", []byte(`{"results":[]}`), 30*time.Second))

	val, err := c.Get(ctx, "story_list_a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":[]}`, string(val))

	mr.FastForward(31 * time.Second)
	_, err = c.Get(ctx, "story_list_a")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisCache_DeletePrefix(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := t.Context()

	for _, key := range []string{"story_list_1", "story_list_2", "story_list_3", "archiver:stories:x"} {
		require.NoError(t, mr.Set(key, "v"))
	}

	n, err := c.DeletePrefix(ctx, StoryListPrefix)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.False(t, mr.Exists("story_list_1"))
	assert.True(t, mr.Exists("archiver:stories:x"))

	n, err = c.DeletePrefix(ctx, StoryListPrefix)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisCache_Counters(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := t.Context()
	key := "archiver:stories:1b4e28ba-2fa1-11d2-883f-0016d3cca427:20250301"

	n, err := c.Counter(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = c.Incr(ctx, key, 48*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = c.Incr(ctx, key, 48*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = c.Counter(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Equal(t, 48*time.Hour, mr.TTL(key))

	require.NoError(t, mr.Set("garbage", "abc"))
	_, err = c.Counter(ctx, "garbage")
	assert.Error(t, err)
}

func TestStoryListKey(t *testing.T) {
	empty := md5.Sum([]byte("[]"))
	assert.Equal(t, StoryListPrefix+hex.EncodeToString(empty[:]), StoryListKey(nil))

	a := StoryListKey(map[string][]string{"search": {"cat"}, "page_size": {"5"}})
	b := StoryListKey(map[string][]string{"page_size": {"5"}, "search": {"cat"}})
	assert.Equal(t, a, b)

	c := StoryListKey(map[string][]string{"search": {"dog"}, "page_size": {"5"}})
	assert.NotEqual(t, a, c)

	raw := md5.Sum([]byte(`[["page_size", ["5"]], ["search", ["cat"]]]`))
	assert.Equal(t, StoryListPrefix+hex.EncodeToString(raw[:]), a)
	assert.Equal(t, "story_list_6914c181af9bed888d38aa4bd3561754", a)
}

func TestStoryListKey_KnownValues(t *testing.T) {
	cases := []struct {
		name   string
		params map[string][]string
		want   string
	}{
		{
			name:   "user filter",
			params: map[string][]string{"user": {"1b4e28ba-2fa1-11d2-883f-0016d3cca427"}},
			want:   "story_list_60a10e6d6c8bed44d082284823b980fb",
		},
		{
			name:   "escaped search",
			params: map[string][]string{"search": {"café <b> & \"q\" \U0001F600\n"}},
			want:   "story_list_b8df54fa4d7e7f2bf23d378be1de6554",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StoryListKey(tc.params))
		})
	}
}
