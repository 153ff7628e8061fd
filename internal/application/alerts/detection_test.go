package alerts_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-salidas/internal/application/alerts"
	"github.com/jhoicas/inventario-salidas/internal/application/dto"
	domainalerts "github.com/jhoicas/inventario-salidas/internal/domain/alerts"
	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
	"github.com/jhoicas/inventario-salidas/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-salidas/pkg/logger"
)

type memCache struct {
	report *dto.AlertReportDTO
	sets   int
}

func (c *memCache) GetReport(context.Context) (*dto.AlertReportDTO, error) { return c.report, nil }
func (c *memCache) SetReport(_ context.Context, r dto.AlertReportDTO) error {
	c.sets++
	c.report = &r
	return nil
}
func (c *memCache) InvalidateReport(context.Context) error {
	c.report = nil
	return nil
}

func TestDetection_ScanCacheaYCurrentReutiliza(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	products := memory.NewProductRepository(s)
	movements := memory.NewStockMovementRepository(s)
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)

	require.NoError(t, products.Create(ctx, &entity.Product{
		ID: "p1", Reference: "A-1", Designation: "Guantes",
		CurrentStock: decimal.NewFromInt(3), MinStock: decimal.NewFromInt(10), CreatedAt: now.AddDate(0, -2, 0),
	}))
	// Una salida vieja fuera de la ventana no debe llegar al motor.
	require.NoError(t, movements.Append(ctx, &entity.StockMovement{
		ID: "m-old", ProductID: "p1", Type: entity.MovementExit, Quantity: decimal.NewFromInt(1),
		CreatedAt: now.AddDate(0, 0, -45),
	}))

	cache := &memCache{}
	uc := alerts.NewDetectionUseCase(products, movements, domainalerts.DefaultThresholds(), cache, logger.Nop()).
		WithClock(func() time.Time { return now })

	first, err := uc.Current(ctx)
	require.NoError(t, err)
	require.Len(t, first.StockAlerts, 1)
	assert.Equal(t, "critical", first.StockAlerts[0].Severity)
	assert.Empty(t, first.ConsumptionAlerts)
	assert.Equal(t, 1, cache.sets)

	second, err := uc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets, "la segunda lectura sale de caché")

	require.NoError(t, cache.InvalidateReport(ctx))
	_, err = uc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.sets)
}
