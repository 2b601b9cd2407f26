package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mdessi/pastificio-api/internal/application/auth"
	"github.com/mdessi/pastificio-api/internal/application/inventory"
	"github.com/mdessi/pastificio-api/internal/application/orders"
	"github.com/mdessi/pastificio-api/internal/application/quota"
	"github.com/mdessi/pastificio-api/internal/application/usecase"
	"github.com/mdessi/pastificio-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC        *usecase.ProductUseCase
	CategoryUC       *usecase.CategoryUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	OrderUC          *orders.UseCase
	QuotaUC          *quota.AdminUseCase
	AuthUC           *auth.AuthUseCase
	JWTSecret        string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogo de productos (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/normalize", productHandler.Normalize)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Categorías (protegido)
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Post("/", categoryHandler.Create)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)

	// Libro de movimientos (protegido)
	invGroup := protected.Group("/inventory")
	movementHandler := NewMovementHandler(deps.RegisterMovement)
	invGroup.Post("/movements", movementHandler.Register)
	invGroup.Get("/low-stock", movementHandler.LowStock)
	invGroup.Get("/:id/movements", movementHandler.History)
	invGroup.Get("/:id/snapshot", movementHandler.Snapshot)

	// Pedidos (protegido)
	ordersGroup := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Put("/:id", orderHandler.Update)
	ordersGroup.Post("/:id/cancel", orderHandler.Cancel)
	ordersGroup.Post("/:id/fulfill", orderHandler.Fulfill)

	// Cupos de capacidad (protegido, solo admin)
	quotas := protected.Group("/quotas", RequireRole(entity.RoleAdmin))
	quotaHandler := NewQuotaHandler(deps.QuotaUC)
	quotas.Post("/", quotaHandler.Create)
	quotas.Post("/bulk", quotaHandler.BulkCreate)
	quotas.Get("/", quotaHandler.List)
	quotas.Delete("/:id", quotaHandler.Delete)
}
