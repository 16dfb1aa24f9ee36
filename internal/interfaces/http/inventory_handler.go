package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/farmacore-api/internal/application/dto"
	"github.com/tu-usuario/farmacore-api/internal/application/inventory"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
	"github.com/tu-usuario/farmacore-api/internal/domain/repository"
)

// InventoryHandler maneja movimientos directos, saldos, reservas y kardex.
type InventoryHandler struct {
	movements *inventory.RegisterMovementUseCase
	ledger    *inventory.Ledger
	queries   *inventory.StockQueryUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(movements *inventory.RegisterMovementUseCase, ledger *inventory.Ledger, queries *inventory.StockQueryUseCase) *InventoryHandler {
	return &InventoryHandler{movements: movements, ledger: ledger, queries: queries}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento directo de inventario
// @Description  ENTRY/EXIT/ADJUSTMENT sobre una ubicación; TRANSFER entre dos.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "Producto, ubicación(es), tipo y cantidad"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	userID := GetUserID(c)
	if tenantID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.movements.RegisterMovement(c.Context(), inventory.MovementInput{
		TenantID:       tenantID,
		UserID:         userID,
		ProductID:      in.ProductID,
		BatchID:        in.BatchID,
		LocationID:     in.LocationID,
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		Type:           in.Type,
		Quantity:       in.Quantity,
		ReservedDelta:  in.ReservedDelta,
	})
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toStockMovementResponse(mov))
}

// ListMovements godoc
// @Summary      Kardex de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  false  "Filtrar por producto"
// @Param        location_id  query  string  false  "Filtrar por ubicación (origen o destino)"
// @Param        from         query  string  false  "Desde (RFC3339)"
// @Param        to           query  string  false  "Hasta (RFC3339)"
// @Param        limit        query  int     false  "Límite"  default(50)
// @Param        offset       query  int     false  "Offset"  default(0)
// @Success      200  {array}   dto.StockMovementResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	filter := repository.MovementFilter{
		ProductID:  c.Query("product_id"),
		LocationID: c.Query("location_id"),
		Limit:      c.QueryInt("limit", 50),
		Offset:     c.QueryInt("offset", 0),
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
		}
		filter.To = &t
	}
	movements, err := h.queries.ListMovements(c.Context(), tenantID, filter)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(toStockMovementResponses(movements))
}

// GetMovement godoc
// @Summary      Obtener movimiento por ID
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.StockMovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	mov, err := h.queries.GetMovement(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(toStockMovementResponse(mov))
}

// ListBalances godoc
// @Summary      Consultar saldos de inventario
// @Description  Por ubicación (location_id) o por producto (product_id); al
//
//	menos uno es requerido.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  false  "Saldos de una ubicación"
// @Param        product_id   query  string  false  "Saldos de un producto en todas las ubicaciones"
// @Success      200  {array}   dto.BalanceResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/balances [get]
func (h *InventoryHandler) ListBalances(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	locationID := c.Query("location_id")
	productID := c.Query("product_id")

	var balances []*entity.Balance
	switch {
	case locationID != "":
		list, err := h.queries.ListBalancesByLocation(c.Context(), tenantID, locationID, c.QueryInt("limit", 100), c.QueryInt("offset", 0))
		if err != nil {
			return mapDomainError(c, err)
		}
		balances = list
	case productID != "":
		list, err := h.queries.ListBalancesByProduct(c.Context(), tenantID, productID)
		if err != nil {
			return mapDomainError(c, err)
		}
		balances = list
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "location_id o product_id es requerido"})
	}

	out := make([]dto.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, toBalanceResponse(b))
	}
	return c.JSON(out)
}

// Reserve godoc
// @Summary      Reservar stock para venta
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReservationRequest  true  "Producto, ubicación y cantidad"
// @Success      200   {object}  map[string]string
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/reservations [post]
func (h *InventoryHandler) Reserve(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.ledger.Reserve(c.Context(), tenantID, in.ProductID, in.BatchID, in.LocationID, in.Quantity); err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "stock reservado"})
}

// Release godoc
// @Summary      Liberar stock reservado
// @Description  Cancela una reserva. Liberar más de lo reservado ajusta a cero.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReservationRequest  true  "Producto, ubicación y cantidad"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/reservations/release [post]
func (h *InventoryHandler) Release(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.ReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.ledger.Release(c.Context(), tenantID, in.ProductID, in.BatchID, in.LocationID, in.Quantity); err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "reserva liberada"})
}
