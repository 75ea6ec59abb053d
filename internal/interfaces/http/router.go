package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-inventario/internal/application/documents"
	"github.com/jhoicas/erp-inventario/internal/application/inventory"
	"github.com/jhoicas/erp-inventario/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger           *inventory.LedgerUseCase
	Sales            *documents.LifecycleUseCase
	PurchaseReceipts *documents.LifecycleUseCase
	JWTSecret        string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; las escrituras además exigen rol.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Libro de inventario
	invGroup := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger)
	invGroup.Get("/", inventoryHandler.List)
	invGroup.Get("/availability", inventoryHandler.Availability)
	invGroup.Post("/increase", RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero), inventoryHandler.Increase)
	invGroup.Post("/decrease", RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero), inventoryHandler.Decrease)

	// Ventas (confirmar = salida de stock)
	documentRoutes(api.Group("/sales"), NewDocumentHandler(deps.Sales),
		RequireRole(jwt.RoleAdmin, jwt.RoleVendedor))

	// Recepciones de compra (confirmar = entrada de stock)
	documentRoutes(api.Group("/purchase-receipts"), NewDocumentHandler(deps.PurchaseReceipts),
		RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero))
}

func documentRoutes(g fiber.Router, h *DocumentHandler, write fiber.Handler) {
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Get("/:id/pdf", h.PDF)
	g.Post("/", write, h.Create)
	g.Put("/:id", write, h.Update)
	g.Delete("/:id", write, h.Delete)
	g.Post("/:id/confirm", write, h.Confirm)
	g.Post("/:id/cancel", write, h.Cancel)
}
