package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/inventario-salidas/internal/application/alerts"
	"github.com/jhoicas/inventario-salidas/internal/application/exitrequest"
	"github.com/jhoicas/inventario-salidas/internal/application/inventory"
	"github.com/jhoicas/inventario-salidas/internal/application/usecase"
	"github.com/jhoicas/inventario-salidas/internal/domain/entity"
	"github.com/jhoicas/inventario-salidas/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC     *usecase.ProductUseCase
	PreferencesUC *usecase.AlertPreferencesUseCase
	Stock         *inventory.StockUseCase
	ExitRequests  *exitrequest.UseCase
	Detection     *alerts.DetectionUseCase
	Monitor       *alerts.Monitor
	PDF           alerts.PDFRenderer
	JWTSecret     string
	WriteRate     string // formato ulule/limiter; vacío = sin límite
	Health        fiber.Handler
}

// AppOptions opciones del servidor Fiber.
type AppOptions struct {
	Name        string
	CORSOrigins string
	Log         *logger.Logger
}

// NewApp crea la aplicación Fiber con el manejador de errores y los middlewares comunes.
func NewApp(opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      opts.Name,
		ErrorHandler: ErrorHandler,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	if opts.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: opts.CORSOrigins,
			AllowHeaders: "Origin, Content-Type, Accept, Authorization",
			AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		}))
	}
	if opts.Log != nil {
		app.Use(RequestLogger(opts.Log))
	}
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) error {
	health := deps.Health
	if health == nil {
		health = func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) }
	}
	app.Get("/health", health)

	api := app.Group("/api")
	api.Get("/health", health)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	writes := func(c *fiber.Ctx) error { return c.Next() }
	if deps.WriteRate != "" {
		limit, err := RateLimit(deps.WriteRate)
		if err != nil {
			return err
		}
		writes = limit
	}
	privileged := RequireRole(entity.RoleAdmin, entity.RoleGerente)

	// Exit requests
	exitRequests := protected.Group("/exit-requests")
	exitHandler := NewExitRequestHandler(deps.ExitRequests)
	exitRequests.Post("/", writes, exitHandler.Create)
	exitRequests.Get("/", exitHandler.List)
	exitRequests.Get("/:id", exitHandler.GetByID)
	exitRequests.Put("/:id", writes, privileged, exitHandler.Decide)
	exitRequests.Delete("/:id", writes, exitHandler.Delete)

	// Products + ledger
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Stock)
	inventoryHandler := NewInventoryHandler(deps.Stock)
	products.Post("/", writes, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", writes, productHandler.Update)
	products.Delete("/:id", writes, privileged, productHandler.Delete)
	products.Post("/:id/movements", writes, inventoryHandler.RegisterMovement)
	products.Get("/:id/movements", inventoryHandler.History)
	products.Get("/:id/ledger/verify", inventoryHandler.VerifyLedger)
	protected.Get("/movements", inventoryHandler.ListMovements)

	// Alerts + monitor
	alertGroup := protected.Group("/alerts")
	alertsHandler := NewAlertsHandler(deps.Detection, deps.Monitor, deps.PDF)
	alertGroup.Get("/", alertsHandler.Report)
	alertGroup.Get("/report.pdf", alertsHandler.ReportPDF)
	alertGroup.Post("/scan", writes, privileged, alertsHandler.Scan)
	alertGroup.Get("/monitor", alertsHandler.MonitorStatus)
	alertGroup.Post("/monitor/start", privileged, alertsHandler.StartMonitor)
	alertGroup.Post("/monitor/stop", privileged, alertsHandler.StopMonitor)

	// Subscriber preferences
	prefsHandler := NewPreferencesHandler(deps.PreferencesUC)
	protected.Get("/users/me/alert-preferences", prefsHandler.Get)
	protected.Put("/users/me/alert-preferences", writes, prefsHandler.Update)

	return nil
}
