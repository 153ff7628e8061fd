package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/inventario-salidas/internal/application/alerts"
	"github.com/jhoicas/inventario-salidas/internal/application/dto"
)

var (
	_ alerts.ReportCache = (*LocalReportCache)(nil)
	_ alerts.CycleLock   = LocalCycleLock{}
)

// LocalReportCache caché en proceso, usada cuando no hay Redis configurado.
type LocalReportCache struct {
	mu      sync.RWMutex
	report  *dto.AlertReportDTO
	expires time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewLocalReportCache construye la caché local. ttl <= 0 = sin expiración.
func NewLocalReportCache(ttl time.Duration) *LocalReportCache {
	return &LocalReportCache{ttl: ttl, now: time.Now}
}

func (c *LocalReportCache) GetReport(_ context.Context) (*dto.AlertReportDTO, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.report == nil {
		return nil, nil
	}
	if c.ttl > 0 && c.now().After(c.expires) {
		return nil, nil
	}
	r := *c.report
	return &r, nil
}

func (c *LocalReportCache) SetReport(_ context.Context, r dto.AlertReportDTO) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report = &r
	c.expires = c.now().Add(c.ttl)
	return nil
}

func (c *LocalReportCache) InvalidateReport(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report = nil
	return nil
}

// LocalCycleLock siempre concede el lock; con una sola instancia basta el guard del monitor.
type LocalCycleLock struct{}

func (LocalCycleLock) Acquire(_ context.Context, _ time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}
