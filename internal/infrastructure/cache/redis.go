// Package cache guarda el último reporte de alertas y el lock del monitor en Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/jhoicas/inventario-salidas/internal/application/alerts"
	"github.com/jhoicas/inventario-salidas/internal/application/dto"
	"github.com/jhoicas/inventario-salidas/pkg/config"
)

const (
	ReportCacheKey = "inventario:alerts:report"
	CycleLockKey   = "inventario:alerts:cycle-lock"
)

var (
	_ alerts.ReportCache = (*RedisReportCache)(nil)
	_ alerts.CycleLock   = (*RedisCycleLock)(nil)
)

// releaseScript borra el lock solo si sigue siendo nuestro.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// NewRedisClient abre el cliente y verifica la conexión con PING.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// RedisReportCache reporte serializado en JSON con TTL.
type RedisReportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisReportCache construye la caché. ttl <= 0 deja la clave sin expiración.
func NewRedisReportCache(rdb *redis.Client, ttl time.Duration) *RedisReportCache {
	return &RedisReportCache{rdb: rdb, ttl: ttl}
}

// GetReport devuelve nil, nil si no hay reporte cacheado.
func (c *RedisReportCache) GetReport(ctx context.Context) (*dto.AlertReportDTO, error) {
	raw, err := c.rdb.Get(ctx, ReportCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get report: %w", err)
	}
	var r dto.AlertReportDTO
	if err := json.Unmarshal(raw, &r); err != nil {
		// Contenido corrupto: se trata como ausente y se recalcula
		_ = c.rdb.Del(ctx, ReportCacheKey).Err()
		return nil, nil
	}
	return &r, nil
}

// SetReport guarda el reporte.
func (c *RedisReportCache) SetReport(ctx context.Context, r dto.AlertReportDTO) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	ttl := c.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := c.rdb.Set(ctx, ReportCacheKey, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set report: %w", err)
	}
	return nil
}

// InvalidateReport elimina el reporte cacheado.
func (c *RedisReportCache) InvalidateReport(ctx context.Context) error {
	if err := c.rdb.Del(ctx, ReportCacheKey).Err(); err != nil {
		return fmt.Errorf("redis del report: %w", err)
	}
	return nil
}

// RedisCycleLock lock SET NX PX entre instancias.
type RedisCycleLock struct {
	rdb *redis.Client
	key string
}

// NewRedisCycleLock construye el lock sobre CycleLockKey.
func NewRedisCycleLock(rdb *redis.Client) *RedisCycleLock {
	return &RedisCycleLock{rdb: rdb, key: CycleLockKey}
}

// Acquire intenta tomar el lock; acquired=false si otra instancia lo tiene.
func (l *RedisCycleLock) Acquire(ctx context.Context, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, l.key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.rdb, []string{l.key}, token).Err()
	}
	return release, true, nil
}
