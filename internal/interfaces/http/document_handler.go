package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/erp-inventario/internal/application/documents"
	"github.com/jhoicas/erp-inventario/internal/application/dto"
	"github.com/jhoicas/erp-inventario/internal/domain/entity"
	"github.com/jhoicas/erp-inventario/internal/domain/repository"
)

// DocumentHandler expone el ciclo de vida de un tipo de documento (ventas o recepciones de compra).
// La misma implementación se monta en /api/sales y /api/purchase-receipts.
type DocumentHandler struct {
	uc *documents.LifecycleUseCase
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(uc *documents.LifecycleUseCase) *DocumentHandler {
	return &DocumentHandler{uc: uc}
}

// Create godoc
// @Summary      Crear borrador
// @Description  Crea el documento en DRAFT y calcula el total de cada línea. No mueve inventario.
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateDocumentRequest  true  "Cabecera y líneas"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
// @Router       /api/purchase-receipts [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.CreateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	in, err := toCreateInput(req)
	if err != nil {
		return writeError(c, err)
	}
	doc, err := h.uc.Create(c.UserContext(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toDocumentResponse(doc))
}

// List godoc
// @Summary      Listar documentos
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        status        query     string  false  "DRAFT | CONFIRMED | CANCELLED"
// @Param        warehouse_id  query     string  false  "Bodega"
// @Param        partner_id    query     string  false  "Cliente o proveedor"
// @Param        limit         query     int     false  "Máximo 100 (default 20)"
// @Param        offset        query     int     false  "Desplazamiento"
// @Success      200  {object}  dto.DocumentListResponse
// @Router       /api/sales [get]
// @Router       /api/purchase-receipts [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()
	list, err := h.uc.List(c.UserContext(), repository.DocumentFilter{
		Status:      entity.DocumentStatus(c.Query("status")),
		WarehouseID: c.Query("warehouse_id"),
		PartnerID:   c.Query("partner_id"),
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := dto.DocumentListResponse{
		Items: make([]dto.DocumentResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, doc := range list {
		out.Items = append(out.Items, toDocumentResponse(doc))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener documento
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
// @Router       /api/purchase-receipts/{id} [get]
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	doc, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toDocumentResponse(doc))
}

// Update godoc
// @Summary      Actualizar borrador
// @Description  Solo documentos en DRAFT. Si se envían items reemplazan todas las líneas.
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true  "ID del documento"
// @Param        body  body      dto.UpdateDocumentRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [put]
// @Router       /api/purchase-receipts/{id} [put]
func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.UpdateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	in, err := toUpdateInput(req)
	if err != nil {
		return writeError(c, err)
	}
	doc, err := h.uc.Update(c.UserContext(), c.Params("id"), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toDocumentResponse(doc))
}

// Delete godoc
// @Summary      Eliminar borrador
// @Description  Eliminación lógica; solo documentos en DRAFT.
// @Tags         documents
// @Security     Bearer
// @Param        id   path  string  true  "ID del documento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [delete]
// @Router       /api/purchase-receipts/{id} [delete]
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.uc.Remove(c.UserContext(), c.Params("id"), actor); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Confirm godoc
// @Summary      Confirmar documento
// @Description  Aplica el movimiento de stock de todas las líneas en una sola transacción
//
//	(venta = salida, recepción = entrada). Si una línea falla no se aplica ninguna.
//
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/confirm [post]
// @Router       /api/purchase-receipts/{id}/confirm [post]
func (h *DocumentHandler) Confirm(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	doc, err := h.uc.Confirm(c.UserContext(), c.Params("id"), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toDocumentResponse(doc))
}

// Cancel godoc
// @Summary      Anular documento
// @Description  Un documento confirmado revierte exactamente los movimientos aplicados al confirmar.
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true   "ID del documento"
// @Param        body  body      dto.CancelDocumentRequest  false  "Motivo"
// @Success      200   {object}  dto.DocumentResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/cancel [post]
// @Router       /api/purchase-receipts/{id}/cancel [post]
func (h *DocumentHandler) Cancel(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req dto.CancelDocumentRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badBody(c)
		}
	}
	doc, err := h.uc.Cancel(c.UserContext(), c.Params("id"), actor, req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toDocumentResponse(doc))
}

// PDF godoc
// @Summary      Representación impresa
// @Tags         documents
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/pdf [get]
// @Router       /api/purchase-receipts/{id}/pdf [get]
func (h *DocumentHandler) PDF(c *fiber.Ctx) error {
	id := c.Params("id")
	out, err := h.uc.RenderPDF(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", id+".pdf"))
	return c.Send(out)
}
