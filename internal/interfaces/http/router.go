package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/rental-api/internal/application/inventory"
	"github.com/jhoicas/rental-api/internal/application/rental"
	"github.com/jhoicas/rental-api/internal/application/usecase"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StoreUC       *usecase.StoreUseCase
	ItemUC        *inventory.ItemUseCase
	CreateRental  *rental.CreateRentalUseCase
	ProcessReturn *rental.ProcessReturnUseCase
	RentalQuery   *rental.QueryUseCase
	JWTSecret     string
	Log           *logger.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token; las de escritura además un rol.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	writers := RequireRole(entity.RoleOwner, entity.RoleAdmin, entity.RoleStaff)
	managers := RequireRole(entity.RoleOwner, entity.RoleAdmin)

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Stores: el alta no depende de la tienda del token
	stores := api.Group("/stores")
	storeHandler := NewStoreHandler(deps.StoreUC, log)
	stores.Post("/", managers, storeHandler.Create)
	stores.Get("/:id", storeHandler.GetByID)

	// Rutas con alcance de tienda (store_id del token)
	requireStore := RequireStore(deps.StoreUC)

	items := api.Group("/items", requireStore)
	itemHandler := NewItemHandler(deps.ItemUC, log)
	items.Post("/", writers, itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Patch("/:id", writers, itemHandler.Update)
	items.Delete("/:id", managers, itemHandler.Archive)
	items.Post("/:id/adjustments", writers, itemHandler.Adjust)
	items.Post("/:id/sales", writers, itemHandler.RecordSale)
	items.Get("/:id/transactions", itemHandler.ListTransactions)
	items.Get("/:id/ledger-check", itemHandler.VerifyLedger)

	rentals := api.Group("/rentals", requireStore)
	rentalHandler := NewRentalHandler(deps.CreateRental, deps.ProcessReturn, deps.RentalQuery, log)
	rentals.Post("/", writers, rentalHandler.Create)
	rentals.Get("/", rentalHandler.List)
	rentals.Get("/:id", rentalHandler.GetByID)
	rentals.Post("/:id/returns", writers, rentalHandler.ProcessReturn)
}
