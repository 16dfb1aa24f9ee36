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
	"github.com/tu-usuario/farmacore-api/internal/application/inventory"
	"github.com/tu-usuario/farmacore-api/internal/application/usecase"
	"github.com/tu-usuario/farmacore-api/internal/infrastructure/event"
	"github.com/tu-usuario/farmacore-api/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/farmacore-api/internal/interfaces/http"
	"github.com/tu-usuario/farmacore-api/pkg/config"
	"github.com/tu-usuario/farmacore-api/pkg/logger"
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

	// Repositorios sobre el pool (lecturas); las escrituras del núcleo usan
	// los repos ligados a la transacción dentro del TxRunner.
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	balanceRepo := postgres.NewBalanceRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	requestRepo := postgres.NewMovementRequestRepository(pool)
	returnRepo := postgres.NewStockReturnRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	sink := event.NewLogSink(log)
	ledger := inventory.NewLedger(txRunner, balanceRepo, log, sink)

	registerMovementUC := inventory.NewRegisterMovementUseCase(ledger, productRepo, warehouseRepo)
	stockQueryUC := inventory.NewStockQueryUseCase(balanceRepo, movementRepo)
	requestUC := inventory.NewMovementRequestUseCase(txRunner, requestRepo, movementRepo, productRepo, warehouseRepo, sink)
	fulfillmentUC := inventory.NewFulfillmentUseCase(txRunner, ledger, productRepo, sink)
	receptionUC := inventory.NewReceptionUseCase(txRunner, ledger, warehouseRepo, sink)

	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo)
	productUC := usecase.NewProductUseCase(productRepo)

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
		Title:    "Farmacore API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		WarehouseUC:      warehouseUC,
		ProductUC:        productUC,
		RegisterMovement: registerMovementUC,
		Ledger:           ledger,
		StockQueries:     stockQueryUC,
		RequestUC:        requestUC,
		FulfillmentUC:    fulfillmentUC,
		ReceptionUC:      receptionUC,
		ReturnRepo:       returnRepo,
		JWTSecret:        cfg.JWT.Secret,
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
