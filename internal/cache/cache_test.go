package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"equipment-dispatch-api-server/config"
	"equipment-dispatch-api-server/internal/models"
	"equipment-dispatch-api-server/internal/registry"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T, mr *miniredis.Miniredis) *Cache {
	t.Helper()

	c, err := New(
		config.RedisConfig{Host: mr.Host(), Port: mr.Port(), Timeout: time.Second},
		config.CacheConfig{},
		zap.NewNop(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestConnectRecordsStatus(t *testing.T) {
	mr := miniredis.RunT(t)
	c := newTestCache(t, mr)

	assert.False(t, c.Connected())
	require.NoError(t, c.Connect(context.Background()))
	assert.True(t, c.Connected())
	assert.NoError(t, c.LastError())
}

func TestConnectFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	c := newTestCache(t, mr)
	mr.Close()

	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.False(t, c.Connected())
	assert.Error(t, c.LastError())
}

func TestEquipmentsRoundTripAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	c := newTestCache(t, mr)
	require.NoError(t, c.Connect(context.Background()))
	ctx := context.Background()

	_, found := c.GetEquipments(ctx)
	assert.False(t, found)

	items := registry.DefaultEquipment()
	require.True(t, c.PutEquipments(ctx, items))
	assert.Equal(t, DefaultEquipmentsTTL, mr.TTL(EquipmentsKey))

	got, found := c.GetEquipments(ctx)
	require.True(t, found)
	assert.Equal(t, items, got)

	mr.FastForward(DefaultEquipmentsTTL)
	_, found = c.GetEquipments(ctx)
	assert.False(t, found)
}

func TestPutEquipmentsResetsExpiration(t *testing.T) {
	mr := miniredis.RunT(t)
	c := newTestCache(t, mr)
	require.NoError(t, c.Connect(context.Background()))
	ctx := context.Background()

	require.True(t, c.PutEquipments(ctx, registry.DefaultEquipment()))
	mr.FastForward(500 * time.Second)
	require.True(t, c.PutEquipments(ctx, registry.DefaultEquipment()))
	assert.Equal(t, DefaultEquipmentsTTL, mr.TTL(EquipmentsKey))
}

func TestGetEquipmentsUndecodable(t *testing.T) {
	mr := miniredis.RunT(t)
	c := newTestCache(t, mr)
	require.NoError(t, c.Connect(context.Background()))

	require.NoError(t, mr.Set(EquipmentsKey, "{not json"))

	_, found := c.GetEquipments(context.Background())
	assert.False(t, found)
}

func TestPutDispatchReceipt(t *testing.T) {
	mr := miniredis.RunT(t)
	c := newTestCache(t, mr)
	require.NoError(t, c.Connect(context.Background()))

	event := models.DispatchEvent{
		ID:          "DISPATCH_abc",
		EquipmentID: "EQ001",
		Message:     "leak",
		Priority:    "critical",
		Status:      models.DispatchStatusDispatched,
		Source:      "logistics-api",
	}
	require.True(t, c.PutDispatchReceipt(context.Background(), event))

	key := "logistics:dispatch:DISPATCH_abc"
	assert.Equal(t, key, DispatchKey(event.ID))
	assert.Equal(t, DefaultDispatchTTL, mr.TTL(key))

	raw, err := mr.Get(key)
	require.NoError(t, err)
	var stored models.DispatchEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, event, stored)
}

func TestNotConnectedIsNoOp(t *testing.T) {
	mr := miniredis.RunT(t)
	c := newTestCache(t, mr)
	ctx := context.Background()

	assert.False(t, c.PutEquipments(ctx, registry.DefaultEquipment()))
	assert.False(t, mr.Exists(EquipmentsKey))

	require.NoError(t, mr.Set(EquipmentsKey, "[]"))
	_, found := c.GetEquipments(ctx)
	assert.False(t, found)
}

func TestUnavailableAfterConnectIsSwallowed(t *testing.T) {
	mr := miniredis.RunT(t)
	c := newTestCache(t, mr)
	require.NoError(t, c.Connect(context.Background()))
	mr.Close()

	ctx := context.Background()
	assert.False(t, c.PutDispatchReceipt(ctx, models.DispatchEvent{ID: "DISPATCH_x"}))
	_, found := c.GetEquipments(ctx)
	assert.False(t, found)

	// Status reflects the last connection attempt, not the failed operations.
	assert.True(t, c.Connected())
}

func TestCustomTTLs(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := New(
		config.RedisConfig{Host: mr.Host(), Port: mr.Port()},
		config.CacheConfig{EquipmentsTTL: time.Minute, DispatchTTL: 2 * time.Minute},
		zap.NewNop(),
	)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Connect(context.Background()))

	require.True(t, c.PutEquipments(context.Background(), nil))
	assert.Equal(t, time.Minute, mr.TTL(EquipmentsKey))
	require.True(t, c.PutDispatchReceipt(context.Background(), models.DispatchEvent{ID: "D1"}))
	assert.Equal(t, 2*time.Minute, mr.TTL(DispatchKey("D1")))
}

func TestNewWithURL(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := New(config.RedisConfig{URL: "redis://" + mr.Addr()}, config.CacheConfig{}, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()
	assert.NoError(t, c.Connect(context.Background()))

	_, err = New(config.RedisConfig{URL: "http://nope"}, config.CacheConfig{}, zap.NewNop())
	assert.Error(t, err)
}
