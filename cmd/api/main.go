package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tu-usuario/pos-ledger/internal/application/ledger"
	"github.com/tu-usuario/pos-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/pos-ledger/internal/interfaces/http"
	"github.com/tu-usuario/pos-ledger/pkg/config"
	"github.com/tu-usuario/pos-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repositorios de lectura atados al pool; las escrituras van por TxRunner
	lotRepo := postgres.NewLotRepository(pool)
	adjRepo := postgres.NewAdjustmentRepository(pool)
	variantRepo := postgres.NewVariantRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	stockCalc := ledger.NewStockCalculator(lotRepo, adjRepo)
	fifoEngine := ledger.NewFIFODeductionEngine(txRunner, log)
	receivingUC := ledger.NewReceivingUseCase(txRunner)
	adjustUC := ledger.NewAdjustmentUseCase(txRunner, fifoEngine)
	restoreEngine := ledger.NewRestorationEngine(txRunner, log)
	alertsUC := ledger.NewAlertsUseCase(lotRepo, variantRepo, cfg.Ledger.ExpiringWindowDays)
	queriesUC := ledger.NewQueriesUseCase(lotRepo, adjRepo, cfg.Ledger.DefaultPageSize, cfg.Ledger.MaxPageSize)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "POS Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Receiving: receivingUC,
		Adjust:    adjustUC,
		Restore:   restoreEngine,
		Stock:     stockCalc,
		Queries:   queriesUC,
		Alerts:    alertsUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
