package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mdessi/pastificio-api/internal/application/dto"
	"github.com/mdessi/pastificio-api/internal/application/quota"
	"github.com/mdessi/pastificio-api/internal/domain/entity"
)

// QuotaHandler administración de cupos de capacidad (protegido, solo admin).
type QuotaHandler struct {
	uc *quota.AdminUseCase
}

// NewQuotaHandler construye el handler de cupos.
func NewQuotaHandler(uc *quota.AdminUseCase) *QuotaHandler {
	return &QuotaHandler{uc: uc}
}

// Create godoc
// @Summary      Crear cupo de capacidad para un día
// @Tags         quotas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateQuotaRequest  true  "Exactamente uno de product_id/category_id"
// @Success      201   {object}  dto.QuotaResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/quotas [post]
func (h *QuotaHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateQuotaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	date, err := time.Parse(dateLayout, in.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date debe tener formato YYYY-MM-DD"})
	}
	q, err := h.uc.Create(quota.CreateInput{
		Date:                  date,
		ProductID:             in.ProductID,
		CategoryID:            in.CategoryID,
		Limit:                 in.Limit,
		Unit:                  in.Unit,
		AlertThresholdPercent: in.AlertThresholdPercent,
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toQuotaResponse(q))
}

// BulkCreate godoc
// @Summary      Crear cupos para un rango de días
// @Description  Sin overwrite los días ya configurados se reportan como omitidos.
//               Con overwrite se reescribe límite/umbral conservando el consumo.
// @Tags         quotas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkCreateQuotaRequest  true  "Rango [from, to] con el mismo scope y límite"
// @Success      201   {object}  dto.BulkCreateQuotaResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/quotas/bulk [post]
func (h *QuotaHandler) BulkCreate(c *fiber.Ctx) error {
	var in dto.BulkCreateQuotaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	from, err := time.Parse(dateLayout, in.From)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe tener formato YYYY-MM-DD"})
	}
	to, err := time.Parse(dateLayout, in.To)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe tener formato YYYY-MM-DD"})
	}
	result, err := h.uc.BulkCreate(quota.BulkCreateInput{
		CreateInput: quota.CreateInput{
			Date:                  from,
			ProductID:             in.ProductID,
			CategoryID:            in.CategoryID,
			Limit:                 in.Limit,
			Unit:                  in.Unit,
			AlertThresholdPercent: in.AlertThresholdPercent,
		},
		From:      from,
		To:        to,
		Overwrite: in.Overwrite,
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.BulkCreateQuotaResponse{
		Created:     formatDays(result.Created),
		Overwritten: formatDays(result.Overwritten),
		Skipped:     formatDays(result.Skipped),
	})
}

// List godoc
// @Summary      Listar cupos por día o rango
// @Tags         quotas
// @Security     Bearer
// @Produce      json
// @Param        date  query  string  false  "Día (YYYY-MM-DD)"
// @Param        from  query  string  false  "Desde (YYYY-MM-DD, con to)"
// @Param        to    query  string  false  "Hasta (YYYY-MM-DD, con from)"
// @Success      200  {array}   dto.QuotaResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/quotas [get]
func (h *QuotaHandler) List(c *fiber.Ctx) error {
	var list []*entity.CapacityQuota
	switch {
	case c.Query("date") != "":
		date, err := time.Parse(dateLayout, c.Query("date"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date debe tener formato YYYY-MM-DD"})
		}
		list, err = h.uc.ListByDate(date)
		if err != nil {
			return errorJSON(c, err)
		}
	case c.Query("from") != "" && c.Query("to") != "":
		from, err := time.Parse(dateLayout, c.Query("from"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe tener formato YYYY-MM-DD"})
		}
		to, err := time.Parse(dateLayout, c.Query("to"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe tener formato YYYY-MM-DD"})
		}
		list, err = h.uc.ListByRange(from, to)
		if err != nil {
			return errorJSON(c, err)
		}
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "se requiere date o from+to"})
	}
	out := make([]dto.QuotaResponse, 0, len(list))
	for _, q := range list {
		out = append(out, toQuotaResponse(q))
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar un cupo
// @Tags         quotas
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del cupo"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/quotas/{id} [delete]
func (h *QuotaHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Params("id")); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "cupo eliminado"})
}

func toQuotaResponse(q *entity.CapacityQuota) dto.QuotaResponse {
	return dto.QuotaResponse{
		ID:                    q.ID,
		Date:                  q.Date.Format(dateLayout),
		ProductID:             q.ProductID,
		CategoryID:            q.CategoryID,
		Limit:                 q.Limit,
		Unit:                  q.Unit,
		Consumed:              q.Consumed,
		Available:             q.Available(),
		AlertThresholdPercent: q.AlertThresholdPercent,
		CreatedAt:             q.CreatedAt,
		UpdatedAt:             q.UpdatedAt,
	}
}

func formatDays(days []time.Time) []string {
	if len(days) == 0 {
		return nil
	}
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Format(dateLayout))
	}
	return out
}
