package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mdessi/pastificio-api/internal/application/admission"
	"github.com/mdessi/pastificio-api/internal/application/dto"
	"github.com/mdessi/pastificio-api/internal/application/orders"
	"github.com/mdessi/pastificio-api/internal/domain/entity"
)

// dateLayout formato de fecha de entrega en la API.
const dateLayout = "2006-01-02"

// OrderHandler maneja el ciclo de vida de pedidos (protegido).
type OrderHandler struct {
	uc *orders.UseCase
}

// NewOrderHandler construye el handler de pedidos.
func NewOrderHandler(uc *orders.UseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear pedido (normaliza, evalúa cupos y persiste)
// @Description  REJECTED no es error: responde 200 con los findings por scope y
//               nada queda persistido ni reservado.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Pedido con líneas en unidad cruda"
// @Success      201   {object}  dto.CreateOrderResponse
// @Success      200   {object}  dto.CreateOrderResponse  "REJECTED"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	date, err := time.Parse(dateLayout, in.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date debe tener formato YYYY-MM-DD"})
	}
	if in.CustomerName == "" || len(in.Lines) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "customer_name y lines son requeridos"})
	}
	out, err := h.uc.Create(c.Context(), orders.CreateInput{
		Date:           date,
		CustomerName:   in.CustomerName,
		Notes:          in.Notes,
		Lines:          toLineInputs(in.Lines),
		OverrideLimits: in.OverrideLimits,
		UserID:         GetUserID(c),
	})
	if err != nil {
		return errorJSON(c, err)
	}
	resp := dto.CreateOrderResponse{
		Order:     toOrderResponse(out.Order),
		Admission: toAdmissionResponse(out.Admission),
	}
	if out.Order == nil {
		// rechazado: resultado de negocio, no error
		return c.JSON(resp)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetByID godoc
// @Summary      Obtener pedido por ID
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	order, err := h.uc.GetByID(c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// List godoc
// @Summary      Listar pedidos de un día de entrega
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        date    query  string  true   "Día de entrega (YYYY-MM-DD)"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {array}   dto.OrderResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	date, err := time.Parse(dateLayout, c.Query("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date debe tener formato YYYY-MM-DD"})
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
	list, err := h.uc.ListByDate(date, limit, offset)
	if err != nil {
		return errorJSON(c, err)
	}
	out := make([]*dto.OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, toOrderResponse(o))
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar pedido admitido (release + readmisión completa)
// @Description  Si la nueva versión no cabe en los cupos y no hay override, nada
//               cambia: el pedido original y sus reservas quedan intactos.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del pedido"
// @Param        body  body  dto.CreateOrderRequest  true  "Versión nueva completa"
// @Success      200   {object}  dto.CreateOrderResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [put]
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	date, err := time.Parse(dateLayout, in.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date debe tener formato YYYY-MM-DD"})
	}
	out, err := h.uc.Update(c.Context(), c.Params("id"), orders.CreateInput{
		Date:           date,
		CustomerName:   in.CustomerName,
		Notes:          in.Notes,
		Lines:          toLineInputs(in.Lines),
		OverrideLimits: in.OverrideLimits,
		UserID:         GetUserID(c),
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(dto.CreateOrderResponse{
		Order:     toOrderResponse(out.Order),
		Admission: toAdmissionResponse(out.Admission),
	})
}

// Cancel godoc
// @Summary      Cancelar pedido admitido (reversa las reservas de cupo)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del pedido"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	if err := h.uc.Cancel(c.Context(), c.Params("id")); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "pedido cancelado"})
}

// Fulfill godoc
// @Summary      Despachar pedido (verifica stock y registra ISSUE por línea)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del pedido"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/fulfill [post]
func (h *OrderHandler) Fulfill(c *fiber.Ctx) error {
	if err := h.uc.Fulfill(c.Context(), c.Params("id"), GetUserID(c)); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "pedido despachado"})
}

func toLineInputs(lines []dto.OrderLineRequest) []orders.LineInput {
	out := make([]orders.LineInput, 0, len(lines))
	for _, l := range lines {
		out = append(out, orders.LineInput{ProductID: l.ProductID, Quantity: l.Quantity, Unit: l.Unit})
	}
	return out
}

func toOrderResponse(o *entity.Order) *dto.OrderResponse {
	if o == nil {
		return nil
	}
	lines := make([]dto.OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, dto.OrderLineResponse{
			ID:                l.ID,
			ProductID:         l.ProductID,
			CategoryID:        l.CategoryID,
			RawQuantity:       l.RawQuantity,
			RawUnit:           l.RawUnit,
			CanonicalQuantity: l.CanonicalQuantity,
			CanonicalUnit:     l.CanonicalUnit,
			UnitPrice:         l.UnitPrice,
			LineValue:         l.LineValue,
		})
	}
	return &dto.OrderResponse{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		Date:         o.Date.Format(dateLayout),
		Status:       o.Status,
		Notes:        o.Notes,
		Lines:        lines,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func toAdmissionResponse(r *admission.Result) dto.AdmissionResponse {
	if r == nil {
		return dto.AdmissionResponse{}
	}
	findings := make([]dto.FindingResponse, 0, len(r.Findings))
	for _, f := range r.Findings {
		findings = append(findings, dto.FindingResponse{
			Scope:           f.Scope.String(),
			Kind:            f.Kind,
			Requested:       f.Requested,
			Available:       f.Available,
			Shortfall:       f.Shortfall,
			ConsumedPercent: f.ConsumedPercent,
		})
	}
	return dto.AdmissionResponse{Status: r.Status, Findings: findings}
}
