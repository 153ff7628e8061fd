package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-salidas/internal/application/alerts"
	"github.com/jhoicas/inventario-salidas/internal/bootstrap"
	httpRouter "github.com/jhoicas/inventario-salidas/internal/interfaces/http"
	"github.com/jhoicas/inventario-salidas/pkg/config"
	"github.com/jhoicas/inventario-salidas/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	container, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicialización de dependencias")
	}
	defer container.Close()

	app := httpRouter.NewApp(httpRouter.AppOptions{
		Name:        cfg.App.Name,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		Log:         log.Component("http"),
	})

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Inventario - Solicitudes de salida",
		}))
	}

	health := func(c *fiber.Ctx) error {
		pingCtx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := container.Ping(pingCtx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": cfg.App.Name,
			"monitor": container.Monitor.Active(),
		})
	}

	if err := httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:     container.ProductUC,
		PreferencesUC: container.PreferencesUC,
		Stock:         container.Stock,
		ExitRequests:  container.ExitRequests,
		Detection:     container.Detection,
		Monitor:       container.Monitor,
		PDF:           container.PDF,
		JWTSecret:     cfg.JWT.Secret,
		WriteRate:     cfg.RateLimit.Writes,
		Health:        health,
	}); err != nil {
		log.Fatal().Err(err).Msg("registro de rutas")
	}

	if cfg.Monitor.Autostart {
		if err := container.Monitor.Activate(alerts.Principal{Name: "sistema", Role: "admin"}); err != nil {
			log.Error().Err(err).Msg("arranque automático del monitor")
		}
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	container.Monitor.Deactivate()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	container.Monitor.Wait()

	log.Info().Msg("aplicación detenida")
}
