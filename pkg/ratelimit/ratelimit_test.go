package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tonooka01/sistema-analise/pkg/redis"
)

func TestMemory_AllowsUpToLimitPerWindow(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(5, time.Minute)
	m.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		res, err := m.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "attempt %d", i+1)
		now = now.Add(time.Second)
	}

	res, err := m.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 55*time.Second, res.RetryIn)

	other, err := m.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	now = now.Add(time.Minute)
	res, err = m.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestMemory_ForgetsIdleKeys(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(5, time.Minute)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		_, err := m.Allow(ctx, ip)
		require.NoError(t, err)
	}
	assert.Len(t, m.hits, 3)

	now = now.Add(2 * time.Minute)
	_, err := m.Allow(ctx, "10.0.0.4")
	require.NoError(t, err)
	assert.Len(t, m.hits, 1)
	assert.Contains(t, m.hits, "10.0.0.4")
}

func TestRedis_SharedWindow(t *testing.T) {
	if testing.Short() {
		t.Skip("redis test skipped in short mode")
	}
	ctx := context.Background()
	client, err := redis.NewClient(ctx, redis.Config{Host: "localhost", Port: 6379, DB: 15}, ectologger.NewEctoLogger(func(ectologger.EctoLogMessage) {}))
	if err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	key := "test-" + time.Now().Format("150405.000000000")
	first := NewRedis(client, 2, time.Minute)
	second := NewRedis(client, 2, time.Minute)
	t.Cleanup(func() { _ = client.Redis().Del(ctx, redisKeyPrefix+key).Err() })

	res, err := first.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = second.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = first.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryIn, time.Duration(0))
	assert.LessOrEqual(t, res.RetryIn, time.Minute)
}
