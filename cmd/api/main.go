package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/almoxarifado-api/internal/application/dto"
	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/application/usecase"
	domaininv "github.com/jhoicas/almoxarifado-api/internal/domain/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain/repository"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/memory"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/postgres"
	"github.com/jhoicas/almoxarifado-api/internal/infrastructure/sqlite"
	httpRouter "github.com/jhoicas/almoxarifado-api/internal/interfaces/http"
	"github.com/jhoicas/almoxarifado-api/pkg/config"
	"github.com/jhoicas/almoxarifado-api/pkg/logger"
)

// storage adaptador de persistencia elegido por STORAGE_DRIVER.
type storage struct {
	products     repository.ProductRepository
	transactions repository.TransactionRepository
	txRunner     inventory.TxRunner
	ping         func(ctx context.Context) error
	close        func()
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &storage{
			products:     postgres.NewProductRepository(pool),
			transactions: postgres.NewTransactionRepository(pool),
			txRunner:     postgres.NewTxRunner(pool),
			ping:         pool.Ping,
			close:        pool.Close,
		}, nil
	case config.DriverSQLite:
		s, err := sqlite.New(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &storage{
			products:     s.Products(),
			transactions: s.Transactions(),
			txRunner:     sqlite.NewTxRunner(s),
			ping:         s.Ping,
			close:        func() { _ = s.Close() },
		}, nil
	case config.DriverMemory:
		s := memory.NewStore()
		return &storage{
			products:     s.Products(),
			transactions: s.Transactions(),
			txRunner:     memory.NewTxRunner(s),
			ping:         func(context.Context) error { return nil },
			close:        func() {},
		}, nil
	default:
		return nil, fmt.Errorf("driver de almacenamiento desconocido: %s", cfg.Storage.Driver)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.Storage.Driver).
		Bool("allow_negative_stock", cfg.Ledger.AllowNegativeStock).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	loc, err := cfg.Ledger.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("zona horaria")
	}

	ctx := context.Background()
	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("abrir almacenamiento")
	}
	defer store.close()

	zl := log.Zerolog()
	ledgerUC := inventory.NewLedgerUseCase(store.txRunner, store.transactions, inventory.LedgerConfig{
		AllowNegativeStock: cfg.Ledger.AllowNegativeStock,
		SubmitTimeout:      cfg.Ledger.SubmitTimeout,
	}, zl)
	productUC := usecase.NewProductUseCase(
		store.products, store.txRunner,
		domaininv.NewCodeAllocator(cfg.Ledger.CodePrefix, cfg.Ledger.CodeWidth),
		cfg.Ledger.SubmitTimeout, zl,
	)
	reportUC := inventory.NewReportUseCase(store.products, store.transactions)

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
		Title:    "Almoxarifado API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		pingCtx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := store.ping(pingCtx); err != nil {
			log.Warn().Err(err).Msg("health: almacenamiento no disponible")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.HealthResponse{Status: "degraded", Storage: cfg.Storage.Driver})
		}
		return c.JSON(dto.HealthResponse{Status: "ok", Storage: cfg.Storage.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC: productUC,
		LedgerUC:  ledgerUC,
		ReportUC:  reportUC,
		JWTSecret: cfg.JWT.Secret,
		JWTIssuer: cfg.JWT.Issuer,
		Location:  loc,
		Log:       zl,
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
