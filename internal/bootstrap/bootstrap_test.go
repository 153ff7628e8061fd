package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-salidas/pkg/config"
	"github.com/jhoicas/inventario-salidas/pkg/logger"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{Driver: "memory"},
		Monitor: config.MonitorConfig{WarmUp: time.Hour, Interval: time.Hour},
	}
}

func TestBuild_Memory(t *testing.T) {
	c, err := Build(context.Background(), memoryConfig(), logger.Nop())
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.ExitRequests)
	assert.NotNil(t, c.Monitor)
	assert.NoError(t, c.Ping(context.Background()))
}

func TestBuild_DriverDesconocido(t *testing.T) {
	cfg := memoryConfig()
	cfg.Storage.Driver = "sqlite"
	_, err := Build(context.Background(), cfg, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite")
}

func TestThresholds_DesdeConfiguracion(t *testing.T) {
	th := Thresholds(config.AlertsConfig{CriticalPercent: 40, LookbackDays: 60})
	assert.True(t, th.CriticalPercent.Equal(decimal.NewFromInt(40)))
	assert.True(t, th.AnomalyPercent.Equal(decimal.NewFromInt(50)), "sin valor se conserva el default")
	assert.Equal(t, 60, th.LookbackDays)
	assert.Equal(t, 3, th.RecentWindowDays)
	assert.Equal(t, 5, th.MinExitMovements)
}
