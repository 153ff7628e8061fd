// Package bootstrap arma el grafo de dependencias compartido por la API y la CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/jhoicas/inventario-salidas/internal/application/alerts"
	"github.com/jhoicas/inventario-salidas/internal/application/exitrequest"
	"github.com/jhoicas/inventario-salidas/internal/application/inventory"
	"github.com/jhoicas/inventario-salidas/internal/application/usecase"
	domainalerts "github.com/jhoicas/inventario-salidas/internal/domain/alerts"
	"github.com/jhoicas/inventario-salidas/internal/domain/repository"
	"github.com/jhoicas/inventario-salidas/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-salidas/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-salidas/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/inventario-salidas/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-salidas/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-salidas/pkg/config"
	"github.com/jhoicas/inventario-salidas/pkg/logger"
)

// Container casos de uso listos para exponer.
type Container struct {
	ProductUC     *usecase.ProductUseCase
	PreferencesUC *usecase.AlertPreferencesUseCase
	Stock         *inventory.StockUseCase
	ExitRequests  *exitrequest.UseCase
	Detection     *alerts.DetectionUseCase
	Service       *alerts.Service
	Monitor       *alerts.Monitor
	PDF           alerts.PDFRenderer

	ping    func(ctx context.Context) error
	closers []func()
}

type repos struct {
	tx        inventory.TxRunner
	products  repository.ProductRepository
	requests  repository.ExitRequestRepository
	movements repository.StockMovementRepository
	users     repository.UserRepository
}

// Build abre la persistencia y la caché según la configuración y compone los casos de uso.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	c := &Container{ping: func(context.Context) error { return nil }}

	r, err := c.openStorage(ctx, cfg, log)
	if err != nil {
		c.Close()
		return nil, err
	}

	var (
		reportCache alerts.ReportCache = cache.NewLocalReportCache(cfg.Redis.ReportTTL)
		cycleLock   alerts.CycleLock   = cache.LocalCycleLock{}
	)
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
		reportCache = cache.NewRedisReportCache(rdb, cfg.Redis.ReportTTL)
		cycleLock = cache.NewRedisCycleLock(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("caché de alertas en Redis")
	}

	renderer, err := alerts.NewRenderer(language.Spanish)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("plantillas de notificación: %w", err)
	}
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	var attachPDF alerts.PDFRenderer
	if cfg.SMTP.AttachPDF {
		attachPDF = pdfGenerator
	}

	c.ProductUC = usecase.NewProductUseCase(r.products)
	c.PreferencesUC = usecase.NewAlertPreferencesUseCase(r.users)
	c.Stock = inventory.NewStockUseCase(r.tx, r.products, r.movements, reportCache).
		WithLogger(log.Component("inventory"))
	c.ExitRequests = exitrequest.NewUseCase(r.tx, r.products, r.requests, reportCache).
		WithLogger(log.Component("exit-requests"))
	c.Detection = alerts.NewDetectionUseCase(r.products, r.movements, Thresholds(cfg.Alerts), reportCache, log.Component("detection"))
	dispatcher := alerts.NewDispatcher(r.users, renderer, notify.NewSMTPSender(cfg.SMTP, log.Component("smtp")), attachPDF, log.Component("dispatcher"))
	c.Service = alerts.NewService(c.Detection, dispatcher, log.Component("alerts"))
	c.Monitor = alerts.NewMonitor(c.Service.RunCycle, cycleLock, alerts.MonitorSettings{
		WarmUp:   cfg.Monitor.WarmUp,
		Interval: cfg.Monitor.Interval,
	}, log.Component("monitor"))
	c.PDF = pdfGenerator
	return c, nil
}

func (c *Container) openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (repos, error) {
	switch cfg.Storage.Driver {
	case "memory":
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return repos{
			tx:        memory.NewTxRunner(store),
			products:  memory.NewProductRepository(store),
			requests:  memory.NewExitRequestRepository(store),
			movements: memory.NewStockMovementRepository(store),
			users:     memory.NewUserRepository(store),
		}, nil
	case "postgres", "":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return repos{}, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		c.closers = append(c.closers, pool.Close)
		if err := postgres.Migrate(ctx, pool); err != nil {
			return repos{}, err
		}
		c.ping = pool.Ping
		return repos{
			tx:        postgres.NewTxRunner(pool, cfg.DB.TxTimeout, cfg.DB.LockTimeout),
			products:  postgres.NewProductRepository(pool),
			requests:  postgres.NewExitRequestRepository(pool),
			movements: postgres.NewStockMovementRepository(pool),
			users:     postgres.NewUserRepository(pool),
		}, nil
	default:
		return repos{}, fmt.Errorf("STORAGE_DRIVER desconocido: %q", cfg.Storage.Driver)
	}
}

// Ping verifica la persistencia (health check).
func (c *Container) Ping(ctx context.Context) error { return c.ping(ctx) }

// Close libera conexiones en orden inverso de apertura.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Thresholds traduce la configuración de alertas a los umbrales del motor.
func Thresholds(cfg config.AlertsConfig) domainalerts.Thresholds {
	th := domainalerts.DefaultThresholds()
	if cfg.CriticalPercent > 0 {
		th.CriticalPercent = decimal.NewFromInt(int64(cfg.CriticalPercent))
	}
	if cfg.AnomalyPercent > 0 {
		th.AnomalyPercent = decimal.NewFromInt(int64(cfg.AnomalyPercent))
	}
	if cfg.MinExitMovements > 0 {
		th.MinExitMovements = cfg.MinExitMovements
	}
	if cfg.LookbackDays > 0 {
		th.LookbackDays = cfg.LookbackDays
	}
	if cfg.RecentWindowDays > 0 {
		th.RecentWindowDays = cfg.RecentWindowDays
	}
	return th
}
