package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/farmacore-api/internal/application/dto"
	"github.com/tu-usuario/farmacore-api/internal/application/inventory"
	"github.com/tu-usuario/farmacore-api/internal/domain"
	"github.com/tu-usuario/farmacore-api/internal/domain/entity"
	"github.com/tu-usuario/farmacore-api/internal/domain/repository"
)

// ReturnHandler maneja devoluciones directas y la consulta de devoluciones.
type ReturnHandler struct {
	reception *inventory.ReceptionUseCase
	returns   repository.StockReturnRepository
}

// NewReturnHandler construye el handler.
func NewReturnHandler(reception *inventory.ReceptionUseCase, returns repository.StockReturnRepository) *ReturnHandler {
	return &ReturnHandler{reception: reception, returns: returns}
}

// Create godoc
// @Summary      Registrar devolución directa a stock
// @Description  Acredita la ubicación destino por cada línea, con motivo y
//
//	evidencia opcional. No está atada a ninguna solicitud.
//
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStandaloneReturnRequest  true  "Ubicación destino, motivo y líneas"
// @Success      201   {object}  dto.StockReturnResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/returns [post]
func (h *ReturnHandler) Create(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	userID := GetUserID(c)
	if tenantID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateStandaloneReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]inventory.StandaloneReturnItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, inventory.StandaloneReturnItemInput{
			ProductID:      it.ProductID,
			BatchID:        it.BatchID,
			PresentationID: it.PresentationID,
			Quantity:       it.Quantity,
		})
	}
	ret, err := h.reception.CreateStandaloneReturn(c.Context(), inventory.CreateStandaloneReturnInput{
		TenantID:     tenantID,
		ToLocationID: in.ToLocationID,
		UserID:       userID,
		Reason:       in.Reason,
		EvidenceURL:  in.EvidenceURL,
		Items:        items,
	})
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toStockReturnResponse(ret))
}

// GetByID godoc
// @Summary      Obtener devolución por ID
// @Tags         returns
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la devolución"
// @Success      200  {object}  dto.StockReturnResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/returns/{id} [get]
func (h *ReturnHandler) GetByID(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	ret, err := h.returns.GetByID(c.Context(), tenantID, c.Params("id"))
	if err != nil {
		return mapDomainError(c, err)
	}
	if ret == nil {
		return mapDomainError(c, domain.ErrNotFound)
	}
	return c.JSON(toStockReturnResponse(ret))
}

// List godoc
// @Summary      Listar devoluciones
// @Tags         returns
// @Security     Bearer
// @Produce      json
// @Param        request_id  query  string  false  "Devoluciones de una solicitud"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.StockReturnResponse
// @Router       /api/returns [get]
func (h *ReturnHandler) List(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var (
		returns []*entity.StockReturn
		err     error
	)
	if requestID := c.Query("request_id"); requestID != "" {
		returns, err = h.returns.ListByRequest(c.Context(), tenantID, requestID)
	} else {
		limit := c.QueryInt("limit", 20)
		offset := c.QueryInt("offset", 0)
		returns, err = h.returns.List(c.Context(), tenantID, limit, offset)
	}
	if err != nil {
		return mapDomainError(c, err)
	}
	out := make([]dto.StockReturnResponse, 0, len(returns))
	for _, ret := range returns {
		out = append(out, toStockReturnResponse(ret))
	}
	return c.JSON(out)
}
