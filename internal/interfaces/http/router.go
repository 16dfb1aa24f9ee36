package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/farmacore-api/internal/application/inventory"
	"github.com/tu-usuario/farmacore-api/internal/application/usecase"
	"github.com/tu-usuario/farmacore-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC      *usecase.WarehouseUseCase
	ProductUC        *usecase.ProductUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	Ledger           *inventory.Ledger
	StockQueries     *inventory.StockQueryUseCase
	RequestUC        *inventory.MovementRequestUseCase
	FulfillmentUC    *inventory.FulfillmentUseCase
	ReceptionUC      *inventory.ReceptionUseCase
	ReturnRepo       repository.StockReturnRepository
	JWTSecret        string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Todas las rutas requieren Bearer Token
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Warehouses
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Post("/:id/locations", warehouseHandler.CreateLocation)
	warehouses.Get("/:id/locations", warehouseHandler.ListLocations)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Post("/:id/presentations", productHandler.CreatePresentation)
	products.Get("/:id/presentations", productHandler.ListPresentations)
	products.Post("/:id/batches", productHandler.CreateBatch)
	products.Get("/:id/batches", productHandler.ListBatches)

	// Inventory: movimientos directos, saldos y reservas
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.Ledger, deps.StockQueries)
	invGroup.Post("/movements", RequireRole("admin", "bodeguero"), inventoryHandler.RegisterMovement)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Get("/movements/:id", inventoryHandler.GetMovement)
	invGroup.Get("/balances", inventoryHandler.ListBalances)
	invGroup.Post("/reservations", inventoryHandler.Reserve)
	invGroup.Post("/reservations/release", inventoryHandler.Release)

	// Movement requests: ciclo solicitud -> despacho -> recepción/devolución
	requests := protected.Group("/movement-requests")
	requestHandler := NewMovementRequestHandler(deps.RequestUC, deps.FulfillmentUC, deps.ReceptionUC)
	requests.Post("/", requestHandler.Create)
	requests.Get("/", requestHandler.List)
	requests.Get("/:id", requestHandler.GetByID)
	requests.Post("/:id/cancel", requestHandler.Cancel)
	// El despacho lo hace la bodega origen; confirmar/devolver, el destino.
	requests.Post("/:id/fulfill", RequireRole("admin", "bodeguero"), requestHandler.Fulfill)
	requests.Post("/:id/confirm", requestHandler.ConfirmReception)
	requests.Post("/:id/return", requestHandler.ReturnShipment)

	// Returns: devoluciones directas y consulta
	returns := protected.Group("/returns")
	returnHandler := NewReturnHandler(deps.ReceptionUC, deps.ReturnRepo)
	returns.Post("/", returnHandler.Create)
	returns.Get("/", returnHandler.List)
	returns.Get("/:id", returnHandler.GetByID)
}
