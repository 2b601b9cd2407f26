package quota

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mdessi/pastificio-api/internal/domain"
	"github.com/mdessi/pastificio-api/internal/domain/entity"
	"github.com/mdessi/pastificio-api/internal/domain/repository"
)

// defaultAlertThreshold porcentaje de advertencia cuando el operador no indica uno.
const defaultAlertThreshold = 80

// AdminUseCase administración de cupos de capacidad: alta de un día, alta masiva
// de un rango y borrado. Todo fuera del hot path de admisión.
type AdminUseCase struct {
	quotaRepo repository.QuotaRepository
}

// NewAdminUseCase construye el caso de uso.
func NewAdminUseCase(quotaRepo repository.QuotaRepository) *AdminUseCase {
	return &AdminUseCase{quotaRepo: quotaRepo}
}

// CreateInput alta de un cupo para un día. Exactamente uno de ProductID/CategoryID.
type CreateInput struct {
	Date                  time.Time
	ProductID             string
	CategoryID            string
	Limit                 decimal.Decimal
	Unit                  string
	AlertThresholdPercent int
}

func (in CreateInput) validate() error {
	scope := entity.QuotaScope{ProductID: in.ProductID, CategoryID: in.CategoryID}
	if !scope.Valid() {
		return domain.ErrInvalidInput
	}
	if !in.Limit.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if in.AlertThresholdPercent < 0 || in.AlertThresholdPercent > 100 {
		return domain.ErrInvalidInput
	}
	return nil
}

func (in CreateInput) toQuota(day time.Time, now time.Time) *entity.CapacityQuota {
	threshold := in.AlertThresholdPercent
	if threshold == 0 {
		threshold = defaultAlertThreshold
	}
	unit := in.Unit
	if unit == "" {
		unit = entity.UnitKilogram
	}
	return &entity.CapacityQuota{
		ID:                    uuid.New().String(),
		Date:                  day,
		ProductID:             in.ProductID,
		CategoryID:            in.CategoryID,
		Limit:                 in.Limit,
		Unit:                  unit,
		Consumed:              decimal.Zero,
		AlertThresholdPercent: threshold,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

// Create da de alta el cupo de un día. ErrDuplicate si ya existe para (fecha, scope).
func (uc *AdminUseCase) Create(in CreateInput) (*entity.CapacityQuota, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	day := entity.DayOf(in.Date)
	existing, err := uc.quotaRepo.Get(day, entity.QuotaScope{ProductID: in.ProductID, CategoryID: in.CategoryID})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	q := in.toQuota(day, time.Now())
	if err := uc.quotaRepo.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

// BulkCreateInput alta masiva: un cupo por día del rango [From, To], mismo
// scope/límite/umbral. Con Overwrite en falso los días ya configurados se dejan
// intactos y se reportan como omitidos, nunca se fusionan en silencio.
type BulkCreateInput struct {
	CreateInput
	From      time.Time
	To        time.Time
	Overwrite bool
}

// BulkResult días creados, sobrescritos y omitidos por el alta masiva.
type BulkResult struct {
	Created     []time.Time
	Overwritten []time.Time
	Skipped     []time.Time
}

// BulkCreate crea un cupo por día del rango. Con Overwrite, los días existentes
// reciben el nuevo límite/umbral pero conservan Consumed: sobrescribir la
// configuración nunca borra capacidad ya reservada por pedidos admitidos.
func (uc *AdminUseCase) BulkCreate(in BulkCreateInput) (*BulkResult, error) {
	if err := in.CreateInput.validate(); err != nil {
		return nil, err
	}
	from := entity.DayOf(in.From)
	to := entity.DayOf(in.To)
	if to.Before(from) {
		return nil, domain.ErrInvalidInput
	}

	scope := entity.QuotaScope{ProductID: in.ProductID, CategoryID: in.CategoryID}
	now := time.Now()
	result := &BulkResult{}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		existing, err := uc.quotaRepo.Get(day, scope)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			if err := uc.quotaRepo.Create(in.CreateInput.toQuota(day, now)); err != nil {
				return nil, err
			}
			result.Created = append(result.Created, day)
			continue
		}
		if !in.Overwrite {
			result.Skipped = append(result.Skipped, day)
			continue
		}
		updated := in.CreateInput.toQuota(day, now)
		updated.ID = existing.ID
		updated.Consumed = existing.Consumed
		updated.CreatedAt = existing.CreatedAt
		if err := uc.quotaRepo.UpdateLimits(updated); err != nil {
			return nil, err
		}
		result.Overwritten = append(result.Overwritten, day)
	}
	return result, nil
}

// ListByDate lista los cupos configurados para un día.
func (uc *AdminUseCase) ListByDate(date time.Time) ([]*entity.CapacityQuota, error) {
	return uc.quotaRepo.ListByDate(entity.DayOf(date))
}

// ListByRange lista los cupos de un rango de días.
func (uc *AdminUseCase) ListByRange(from, to time.Time) ([]*entity.CapacityQuota, error) {
	return uc.quotaRepo.ListByRange(entity.DayOf(from), entity.DayOf(to))
}

// Delete elimina un cupo (reset administrativo, fuera del hot path).
func (uc *AdminUseCase) Delete(id string) error {
	return uc.quotaRepo.Delete(id)
}
