package database

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assessment-workers/internal/common/config"
	"assessment-workers/internal/common/errors"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *RedisClient) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := WrapRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type cachedValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestNewRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))

	_, err = NewRedis(config.RedisConfig{})
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfiguration))
}

func TestRedisClient_JSONRoundTrip(t *testing.T) {
	mr, client := setupRedis(t)
	ctx := context.Background()

	var miss cachedValue
	found, err := client.GetJSON(ctx, "k", &miss)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, client.SetJSON(ctx, "k", cachedValue{Name: "a", Count: 2}, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("k"))

	var hit cachedValue
	found, err = client.GetJSON(ctx, "k", &hit)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cachedValue{Name: "a", Count: 2}, hit)

	require.NoError(t, client.Del(ctx, "k"))
	assert.False(t, mr.Exists("k"))
}

func TestRedisClient_GetJSONCorrupt(t *testing.T) {
	mr, client := setupRedis(t)
	require.NoError(t, mr.Set("k", "{not json"))

	var v cachedValue
	found, err := client.GetJSON(context.Background(), "k", &v)
	assert.False(t, found)
	assert.True(t, errors.IsCode(err, errors.ErrCodeParse))
}

func TestRedisClient_Unavailable(t *testing.T) {
	redisClient, redisMock := redismock.NewClientMock()
	client := WrapRedis(redisClient)
	ctx := context.Background()

	redisMock.ExpectGet("k").SetErr(assert.AnError)
	var v cachedValue
	_, err := client.GetJSON(ctx, "k", &v)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCacheUnavailable))

	redisMock.ExpectSet("k", []byte(`{"name":"x","count":1}`), time.Second).SetErr(assert.AnError)
	err = client.SetJSON(ctx, "k", cachedValue{Name: "x", Count: 1}, time.Second)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCacheUnavailable))

	assert.NoError(t, redisMock.ExpectationsWereMet())
}
