package memory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mdessi/pastificio-api/internal/domain"
	"github.com/mdessi/pastificio-api/internal/domain/entity"
	"github.com/mdessi/pastificio-api/internal/domain/repository"
)

var _ repository.QuotaRepository = (*QuotaRepo)(nil)

// QuotaRepo implementación en memoria de QuotaRepository. La atomicidad de la
// reserva la da el TxRunner: las transacciones se serializan, así que
// GetForUpdate no necesita bloqueo por fila.
type QuotaRepo struct {
	s *Store
}

// NewQuotaRepository construye el repositorio de cupos en memoria.
func NewQuotaRepository(s *Store) *QuotaRepo {
	return &QuotaRepo{s: s}
}

// Create persiste un cupo. ErrDuplicate si ya existe para (fecha, scope).
func (r *QuotaRepo) Create(quota *entity.CapacityQuota) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, q := range r.s.quotas {
		if sameDay(q.Date, quota.Date) && q.ProductID == quota.ProductID && q.CategoryID == quota.CategoryID {
			return domain.ErrDuplicate
		}
	}
	r.s.quotas[quota.ID] = *quota
	return nil
}

// Get obtiene el cupo de un (día, scope). (nil, nil) si no existe.
func (r *QuotaRepo) Get(date time.Time, scope entity.QuotaScope) (*entity.CapacityQuota, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.find(date, scope), nil
}

// GetForUpdate en memoria equivale a Get: el TxRunner ya serializa transacciones.
func (r *QuotaRepo) GetForUpdate(date time.Time, scope entity.QuotaScope) (*entity.CapacityQuota, error) {
	return r.Get(date, scope)
}

func (r *QuotaRepo) find(date time.Time, scope entity.QuotaScope) *entity.CapacityQuota {
	for _, q := range r.s.quotas {
		if !sameDay(q.Date, date) {
			continue
		}
		if scope.ProductID != "" && q.ProductID == scope.ProductID {
			out := q
			return &out
		}
		if scope.CategoryID != "" && q.ProductID == "" && q.CategoryID == scope.CategoryID {
			out := q
			return &out
		}
	}
	return nil
}

// AddConsumed incrementa el contador consumido, con piso en cero al decrementar.
func (r *QuotaRepo) AddConsumed(id string, delta decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.quotas[id]
	if !ok {
		return domain.ErrNotFound
	}
	q.Consumed = q.Consumed.Add(delta)
	if q.Consumed.LessThan(decimal.Zero) {
		q.Consumed = decimal.Zero
	}
	q.UpdatedAt = time.Now()
	r.s.quotas[id] = q
	return nil
}

// UpdateLimits reescribe límite/unidad/umbral preservando Consumed.
func (r *QuotaRepo) UpdateLimits(quota *entity.CapacityQuota) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.quotas[quota.ID]
	if !ok {
		return domain.ErrNotFound
	}
	q.Limit = quota.Limit
	q.Unit = quota.Unit
	q.AlertThresholdPercent = quota.AlertThresholdPercent
	q.UpdatedAt = time.Now()
	r.s.quotas[quota.ID] = q
	return nil
}

// ListByDate lista los cupos de un día.
func (r *QuotaRepo) ListByDate(date time.Time) ([]*entity.CapacityQuota, error) {
	return r.listWhere(func(q entity.CapacityQuota) bool {
		return sameDay(q.Date, date)
	}), nil
}

// ListByRange lista los cupos de un rango de días (ambos extremos incluidos).
func (r *QuotaRepo) ListByRange(from, to time.Time) ([]*entity.CapacityQuota, error) {
	return r.listWhere(func(q entity.CapacityQuota) bool {
		return !q.Date.Before(entity.DayOf(from)) && !q.Date.After(entity.DayOf(to))
	}), nil
}

// Delete elimina un cupo.
func (r *QuotaRepo) Delete(id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.quotas[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.quotas, id)
	return nil
}

func (r *QuotaRepo) listWhere(match func(entity.CapacityQuota) bool) []*entity.CapacityQuota {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.CapacityQuota
	for _, q := range r.s.quotas {
		if match(q) {
			out := q
			list = append(list, &out)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.Before(list[j].Date)
		}
		return list[i].Scope().Key() < list[j].Scope().Key()
	})
	return list
}

func sameDay(a, b time.Time) bool {
	return entity.DayOf(a).Equal(entity.DayOf(b))
}
