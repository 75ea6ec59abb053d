package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-inventario/internal/application/dto"
	"github.com/jhoicas/erp-inventario/internal/application/inventory"
	"github.com/jhoicas/erp-inventario/internal/domain"
	dominventory "github.com/jhoicas/erp-inventario/internal/domain/inventory"
)

// InventoryHandler maneja las peticiones HTTP del libro de inventario (protegido).
type InventoryHandler struct {
	ledger *inventory.LedgerUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// Increase godoc
// @Summary      Entrada de stock
// @Description  Aumenta el stock según la política de seguimiento del producto
//
//	(serial_numbers para serializados, lot_code para lotes, expiration_date para perecederos).
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.StockMovementRequest  true  "product_id, warehouse_id, quantity y datos de seguimiento"
// @Success      200   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/increase [post]
func (h *InventoryHandler) Increase(c *fiber.Ctx) error {
	return h.move(c, dominventory.Increase)
}

// Decrease godoc
// @Summary      Salida de stock
// @Description  Disminuye el stock. Un perecedero sin expiration_date se consume FIFO por vencimiento.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.StockMovementRequest  true  "product_id, warehouse_id, quantity y datos de seguimiento"
// @Success      200   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/decrease [post]
func (h *InventoryHandler) Decrease(c *fiber.Ctx) error {
	return h.move(c, dominventory.Decrease)
}

func (h *InventoryHandler) move(c *fiber.Ctx, dir dominventory.Direction) error {
	var in dto.StockMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	exp, err := dto.ParseDate(in.ExpirationDate)
	if err != nil {
		return writeError(c, fmt.Errorf("%v: %w", err, domain.ErrValidation))
	}
	m := dominventory.Movement{
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		Tracking: dominventory.TrackingInfo{
			SerialNumbers:  in.SerialNumbers,
			LotCode:        in.LotCode,
			ExpirationDate: exp,
		},
	}

	apply := h.ledger.IncreaseStock
	if dir == dominventory.Decrease {
		apply = h.ledger.DecreaseStock
	}
	allocations, err := apply(c.UserContext(), m)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockMovementResponse{
		Direction:   dir.String(),
		ProductID:   m.ProductID,
		WarehouseID: m.WarehouseID,
		Quantity:    m.Quantity,
		Allocations: toAllocationDTOs(allocations),
	})
}

// Availability godoc
// @Summary      Disponibilidad
// @Description  Suma de todos los registros de stock del producto en la bodega (0 si no hay).
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query     string  true  "Producto"
// @Param        warehouse_id  query     string  true  "Bodega"
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/availability [get]
func (h *InventoryHandler) Availability(c *fiber.Ctx) error {
	productID, warehouseID := c.Query("product_id"), c.Query("warehouse_id")
	if productID == "" || warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y warehouse_id son obligatorios"})
	}
	qty, err := h.ledger.CheckAvailability(c.UserContext(), productID, warehouseID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AvailabilityResponse{ProductID: productID, WarehouseID: warehouseID, Available: qty})
}

// List godoc
// @Summary      Registros de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query     string  false  "Filtrar por producto"
// @Param        warehouse_id  query     string  false  "Filtrar por bodega"
// @Success      200  {array}   dto.StockRecordDTO
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	records, err := h.ledger.ListStock(c.UserContext(), c.Query("product_id"), c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toStockRecordDTOs(records))
}
