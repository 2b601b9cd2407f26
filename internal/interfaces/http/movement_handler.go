package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/mdessi/pastificio-api/internal/application/dto"
	"github.com/mdessi/pastificio-api/internal/application/inventory"
	"github.com/mdessi/pastificio-api/internal/domain/entity"
)

// MovementHandler maneja el libro de movimientos y sus lecturas derivadas (protegido).
type MovementHandler struct {
	uc *inventory.RegisterMovementUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *inventory.RegisterMovementUseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// Register godoc
// @Summary      Registrar movimiento en el libro
// @Description  El libro es append-only: las correcciones se registran como
//               ADJUSTMENT compensatorio, nunca editando asientos.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, kind, quantity"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *MovementHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	input := inventory.MovementInput{
		ProductID: in.ProductID,
		Kind:      in.Kind,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
		UserID:    GetUserID(c),
	}
	if in.OccurredAt != nil {
		input.OccurredAt = *in.OccurredAt
	}
	mov, err := h.uc.Register(input)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// History godoc
// @Summary      Historial de movimientos de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        from    query  string  false  "Desde (RFC3339)"
// @Param        to      query  string  false  "Hasta (RFC3339)"
// @Param        limit   query  int     false  "Límite"  default(50)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/inventory/{id}/movements [get]
func (h *MovementHandler) History(c *fiber.Ctx) error {
	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
		}
		from = &t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
		}
		to = &t
	}
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	list, err := h.uc.History(c.Params("id"), from, to, limit, offset)
	if err != nil {
		return errorJSON(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementResponse(m))
	}
	return c.JSON(out)
}

// Snapshot godoc
// @Summary      Saldo actual de un producto (derivado del libro)
// @Description  raw_quantity conserva el signo para auditoría;
//               displayable_quantity aplica el piso en cero.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.SnapshotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{id}/snapshot [get]
func (h *MovementHandler) Snapshot(c *fiber.Ctx) error {
	snap, err := h.uc.Snapshot(c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(dto.SnapshotResponse{
		ProductID:           snap.ItemKey,
		RawQuantity:         snap.Raw,
		DisplayableQuantity: snap.Displayable,
		AsOf:                snap.AsOf,
	})
}

// LowStock godoc
// @Summary      Ítems con saldo mostrable en o por debajo del umbral
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        threshold  query  number  false  "Umbral"  default(0)
// @Success      200  {array}  dto.LowStockItemResponse
// @Router       /api/inventory/low-stock [get]
func (h *MovementHandler) LowStock(c *fiber.Ctx) error {
	threshold := decimal.Zero
	if s := c.Query("threshold"); s != "" {
		t, err := decimal.NewFromString(s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "threshold debe ser numérico"})
		}
		threshold = t
	}
	items, err := h.uc.LowStock(threshold)
	if err != nil {
		return errorJSON(c, err)
	}
	out := make([]dto.LowStockItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.LowStockItemResponse{ProductID: it.ProductID, Quantity: it.Quantity, Raw: it.Raw})
	}
	return c.JSON(out)
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:         m.ID,
		ProductID:  m.ItemKey,
		Kind:       m.Kind,
		Quantity:   m.Quantity,
		Unit:       m.Unit,
		UnitPrice:  m.UnitPrice,
		LineValue:  m.LineValue,
		OccurredAt: m.OccurredAt,
		CreatedAt:  m.CreatedAt,
	}
}
