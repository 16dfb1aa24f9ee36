package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/farmacore-api/internal/application/dto"
	"github.com/tu-usuario/farmacore-api/internal/application/inventory"
	dominv "github.com/tu-usuario/farmacore-api/internal/domain/inventory"
)

// MovementRequestHandler maneja el ciclo de vida de solicitudes de traslado:
// creación, cancelación, despacho, confirmación de recepción y devolución.
type MovementRequestHandler struct {
	requests    *inventory.MovementRequestUseCase
	fulfillment *inventory.FulfillmentUseCase
	reception   *inventory.ReceptionUseCase
}

// NewMovementRequestHandler construye el handler.
func NewMovementRequestHandler(
	requests *inventory.MovementRequestUseCase,
	fulfillment *inventory.FulfillmentUseCase,
	reception *inventory.ReceptionUseCase,
) *MovementRequestHandler {
	return &MovementRequestHandler{requests: requests, fulfillment: fulfillment, reception: reception}
}

// Create godoc
// @Summary      Crear solicitud de traslado
// @Tags         movement-requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementRequestRequest  true  "Bodega destino e ítems solicitados"
// @Success      201   {object}  dto.MovementRequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/movement-requests [post]
func (h *MovementRequestHandler) Create(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateMovementRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]inventory.RequestItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, inventory.RequestItemInput{
			ProductID:            it.ProductID,
			PresentationID:       it.PresentationID,
			PresentationQuantity: it.PresentationQuantity,
			Quantity:             it.Quantity,
		})
	}
	req, err := h.requests.Create(c.Context(), inventory.CreateRequestInput{
		TenantID:        tenantID,
		WarehouseID:     in.WarehouseID,
		RequestedCity:   in.RequestedCity,
		RequestedByName: in.RequestedByName,
		Items:           items,
	})
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementRequestResponse(req))
}

// GetByID godoc
// @Summary      Obtener solicitud por ID
// @Tags         movement-requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.MovementRequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/movement-requests/{id} [get]
func (h *MovementRequestHandler) GetByID(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	req, err := h.requests.GetByID(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(toMovementRequestResponse(req))
}

// List godoc
// @Summary      Listar solicitudes de traslado
// @Tags         movement-requests
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "OPEN | FULFILLED | CANCELLED"
// @Param        limit   query  int     false  "Límite"   default(20)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200     {object}  dto.MovementRequestListResponse
// @Router       /api/movement-requests [get]
func (h *MovementRequestHandler) List(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	requests, err := h.requests.List(c.Context(), tenantID, c.Query("status"), limit, offset)
	if err != nil {
		return mapDomainError(c, err)
	}
	items := make([]dto.MovementRequestResponse, 0, len(requests))
	for _, req := range requests {
		items = append(items, toMovementRequestResponse(req))
	}
	return c.JSON(dto.MovementRequestListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	})
}

// Cancel godoc
// @Summary      Cancelar solicitud abierta
// @Description  Solo solicitudes OPEN sin despachos registrados pueden cancelarse.
// @Tags         movement-requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.MovementRequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movement-requests/{id}/cancel [post]
func (h *MovementRequestHandler) Cancel(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	req, err := h.requests.Cancel(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(toMovementRequestResponse(req))
}

// Fulfill godoc
// @Summary      Despachar solicitud (picking preparado)
// @Description  Concilia las líneas preparadas contra los ítems de la solicitud
//
//	(por request_item_id, product_id o sku), descuenta stock del origen y deja
//	los movimientos en tránsito. Todo o nada: una línea inválida rechaza la
//	operación completa.
//
// @Tags         movement-requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la solicitud"
// @Param        body  body  dto.FulfillRequestRequest true  "Líneas preparadas"
// @Success      200   {object}  dto.FulfillResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movement-requests/{id}/fulfill [post]
func (h *MovementRequestHandler) Fulfill(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	userID := GetUserID(c)
	if tenantID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.FulfillRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines := make([]dominv.PickedLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, dominv.PickedLine{
			RequestItemID: l.RequestItemID,
			ProductID:     l.ProductID,
			SKU:           l.SKU,
			BatchID:       l.BatchID,
			LocationID:    l.LocationID,
			Quantity:      l.Quantity,
		})
	}
	req, movements, err := h.fulfillment.Fulfill(c.Context(), tenantID, c.Params("id"), userID, lines)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(dto.FulfillResponse{
		Request:   toMovementRequestResponse(req),
		Movements: toStockMovementResponses(movements),
	})
}

// ConfirmReception godoc
// @Summary      Confirmar recepción de la solicitud
// @Description  El destino confirma que recibió todo lo despachado: liquida las
//
//	cantidades pendientes y marca la confirmación como ACCEPTED.
//
// @Tags         movement-requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.MovementRequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movement-requests/{id}/confirm [post]
func (h *MovementRequestHandler) ConfirmReception(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	req, err := h.reception.ConfirmReception(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(toMovementRequestResponse(req))
}

// ReturnShipment godoc
// @Summary      Devolver mercancía despachada
// @Description  Revierte despachos en tránsito hacia el origen. Mode ALL
//
//	revierte todo lo pendiente; PARTIAL revierte las cantidades indicadas por
//	movimiento. La solicitud queda REJECTED cuando no queda nada pendiente.
//
// @Tags         movement-requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la solicitud"
// @Param        body  body  dto.ReturnShipmentRequest  true  "Modo, motivo y líneas (PARTIAL)"
// @Success      200   {object}  dto.ReturnShipmentResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movement-requests/{id}/return [post]
func (h *MovementRequestHandler) ReturnShipment(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	userID := GetUserID(c)
	if tenantID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReturnShipmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]inventory.ReturnItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, inventory.ReturnItemInput{
			OutMovementID: it.OutMovementID,
			Quantity:      it.Quantity,
		})
	}
	req, ret, err := h.reception.ReturnShipment(c.Context(), inventory.ReturnShipmentInput{
		TenantID:    tenantID,
		RequestID:   c.Params("id"),
		UserID:      userID,
		Mode:        in.Mode,
		Reason:      in.Reason,
		EvidenceURL: in.EvidenceURL,
		Items:       items,
	})
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(dto.ReturnShipmentResponse{
		Request: toMovementRequestResponse(req),
		Return:  toStockReturnResponse(ret),
	})
}
