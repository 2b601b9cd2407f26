package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mdessi/pastificio-api/internal/domain/entity"
	"github.com/mdessi/pastificio-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo libro de movimientos en memoria (append-only).
type StockMovementRepo struct {
	s *Store
}

// NewStockMovementRepository construye el libro en memoria.
func NewStockMovementRepository(s *Store) *StockMovementRepo {
	return &StockMovementRepo{s: s}
}

// Append agrega un asiento al final del libro. Nunca edita ni borra.
func (r *StockMovementRepo) Append(movement *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movements = append(r.s.movements, *movement)
	return nil
}

// GetByID obtiene un asiento por ID. (nil, nil) si no existe.
func (r *StockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.movements {
		if m.ID == id {
			out := m
			return &out, nil
		}
	}
	return nil, nil
}

// ListByItem lista los asientos de un ítem, más reciente primero.
func (r *StockMovementRepo) ListByItem(itemKey string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var matched []*entity.StockMovement
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		m := r.s.movements[i]
		if m.ItemKey != itemKey {
			continue
		}
		if from != nil && m.OccurredAt.Before(*from) {
			continue
		}
		if to != nil && m.OccurredAt.After(*to) {
			continue
		}
		matched = append(matched, &m)
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

// SignedSum suma con signo de todos los asientos del ítem.
func (r *StockMovementRepo) SignedSum(itemKey string) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sum := decimal.Zero
	for _, m := range r.s.movements {
		if m.ItemKey == itemKey {
			sum = sum.Add(m.SignedQuantity())
		}
	}
	return sum, nil
}

// SignedSumAll suma con signo agrupada por ítem.
func (r *StockMovementRepo) SignedSumAll() (map[string]decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sums := make(map[string]decimal.Decimal)
	for _, m := range r.s.movements {
		sums[m.ItemKey] = sums[m.ItemKey].Add(m.SignedQuantity())
	}
	return sums, nil
}
