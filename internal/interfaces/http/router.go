package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC *usecase.ProductUseCase
	LedgerUC  *inventory.LedgerUseCase
	ReportUC  *inventory.ReportUseCase
	JWTSecret string
	JWTIssuer string
	Location  *time.Location // días civiles de los filtros de fecha; nil = UTC
	Log       zerolog.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Log)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/next-code", productHandler.NextCode)
	products.Get("/:id", productHandler.GetByID)
	products.Delete("/:id", productHandler.Delete)

	// Movements
	movements := api.Group("/movements")
	inventoryHandler := NewInventoryHandler(deps.LedgerUC, deps.Location, deps.Log)
	movements.Post("/", inventoryHandler.Submit)
	movements.Get("/", inventoryHandler.List)
	movements.Get("/:id", inventoryHandler.GetByID)

	// Reports
	reports := api.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC, deps.Location, deps.Log)
	reports.Get("/stock", reportHandler.Stock)
	reports.Get("/movements", reportHandler.Movements)
}
