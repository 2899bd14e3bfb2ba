// server/internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"equipment-dispatch-api-server/config"
	"equipment-dispatch-api-server/internal/metrics"
	"equipment-dispatch-api-server/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// EquipmentsKey holds the serialized equipment snapshot.
	EquipmentsKey = "logistics:equipments"
	// DispatchPrefix is prepended to a dispatch id to form its receipt key.
	DispatchPrefix = "logistics:dispatch:"

	DefaultEquipmentsTTL = 600 * time.Second
	DefaultDispatchTTL   = 3600 * time.Second
	DefaultTimeout       = 5 * time.Second
)

// DispatchKey returns the receipt key of a dispatch: logistics:dispatch:{id}
func DispatchKey(id string) string { return DispatchPrefix + id }

// Cache is the Redis-backed cache of the logistics API. Every failure is logged and
// reported as a miss or a skipped write; nothing here returns a cache error to callers.
type Cache struct {
	client        *redis.Client
	logger        *zap.Logger
	timeout       time.Duration
	equipmentsTTL time.Duration
	dispatchTTL   time.Duration

	mu        sync.RWMutex
	connected bool
	lastErr   error
}

// New builds the client. No network traffic happens until Connect.
func New(rc config.RedisConfig, cc config.CacheConfig, logger *zap.Logger) (*Cache, error) {
	timeout := rc.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var opts *redis.Options
	if rc.URL != "" {
		parsed, err := redis.ParseURL(rc.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     net.JoinHostPort(rc.Host, rc.Port),
			Password: rc.Password,
			DB:       rc.DB,
		}
	}
	opts.DialTimeout = timeout
	opts.ReadTimeout = timeout
	opts.WriteTimeout = timeout

	c := &Cache{
		client:        redis.NewClient(opts),
		logger:        logger.Named("cache"),
		timeout:       timeout,
		equipmentsTTL: cc.EquipmentsTTL,
		dispatchTTL:   cc.DispatchTTL,
	}
	if c.equipmentsTTL <= 0 {
		c.equipmentsTTL = DefaultEquipmentsTTL
	}
	if c.dispatchTTL <= 0 {
		c.dispatchTTL = DefaultDispatchTTL
	}
	return c, nil
}

// Connect pings Redis once and records the outcome. The recorded state is what
// Connected and LastError report until the next Connect.
func (c *Cache) Connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.client.Ping(ctx).Err()

	c.mu.Lock()
	c.connected = err == nil
	c.lastErr = err
	c.mu.Unlock()
	metrics.SetConnected(metrics.BackendCache, err == nil)

	if err != nil {
		c.logger.Error("failed to connect to redis", zap.String("addr", c.client.Options().Addr), zap.Error(err))
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.logger.Info("connected to redis", zap.String("addr", c.client.Options().Addr))
	return nil
}

// Connected reports the outcome of the last Connect.
func (c *Cache) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// LastError is the error of the last Connect, nil if it succeeded.
func (c *Cache) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// GetEquipments returns the cached equipment snapshot. found is false on a miss,
// when Redis is not connected, or when the stored value cannot be decoded.
func (c *Cache) GetEquipments(ctx context.Context) (items []models.Equipment, found bool) {
	if !c.GetJSON(ctx, EquipmentsKey, &items) {
		return nil, false
	}
	return items, true
}

// PutEquipments replaces the snapshot and resets its expiration.
func (c *Cache) PutEquipments(ctx context.Context, items []models.Equipment) bool {
	return c.SetJSON(ctx, EquipmentsKey, items, c.equipmentsTTL)
}

// PutDispatchReceipt stores a dispatch event under its own key. Best-effort.
func (c *Cache) PutDispatchReceipt(ctx context.Context, event models.DispatchEvent) bool {
	return c.SetJSON(ctx, DispatchKey(event.ID), event, c.dispatchTTL)
}

// GetJSON decodes the value at key into dst and reports whether it did.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) bool {
	if !c.Connected() {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.swallow("get", key, err)
		}
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		c.swallow("decode", key, err)
		return false
	}
	return true
}

// SetJSON encodes v and stores it at key with the given expiration.
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) bool {
	if !c.Connected() {
		return false
	}

	raw, err := json.Marshal(v)
	if err != nil {
		c.swallow("encode", key, err)
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.swallow("set", key, err)
		return false
	}
	return true
}

func (c *Cache) swallow(op, key string, err error) {
	metrics.CacheErrors.WithLabelValues(op).Inc()
	c.logger.Warn("cache operation failed", zap.String("op", op), zap.String("key", key), zap.Error(err))
}

// Close releases the Redis connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}
