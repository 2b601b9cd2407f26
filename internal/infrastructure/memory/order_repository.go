package memory

import (
	"sort"
	"time"

	"github.com/mdessi/pastificio-api/internal/domain"
	"github.com/mdessi/pastificio-api/internal/domain/entity"
	"github.com/mdessi/pastificio-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación en memoria de OrderRepository.
type OrderRepo struct {
	s *Store
}

// NewOrderRepository construye el repositorio de pedidos en memoria.
func NewOrderRepository(s *Store) *OrderRepo {
	return &OrderRepo{s: s}
}

// Create persiste el pedido y sus líneas.
func (r *OrderRepo) Create(order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := *order
	stored.Lines = append([]entity.OrderLine(nil), order.Lines...)
	r.s.orders[order.ID] = stored
	return nil
}

// GetByID obtiene un pedido con sus líneas. (nil, nil) si no existe.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	out := o
	out.Lines = append([]entity.OrderLine(nil), o.Lines...)
	return &out, nil
}

// ListByDate lista los pedidos de un día de entrega.
func (r *OrderRepo) ListByDate(date time.Time, limit, offset int) ([]*entity.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	day := entity.DayOf(date)
	var list []*entity.Order
	for _, o := range r.s.orders {
		if !entity.DayOf(o.Date).Equal(day) {
			continue
		}
		out := o
		out.Lines = append([]entity.OrderLine(nil), o.Lines...)
		list = append(list, &out)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	if offset >= len(list) {
		return nil, nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, nil
}

// Update reescribe cabecera y estado del pedido (no las líneas).
func (r *OrderRepo) Update(order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.orders[order.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.CustomerName = order.CustomerName
	stored.Date = order.Date
	stored.Status = order.Status
	stored.Notes = order.Notes
	stored.UpdatedAt = order.UpdatedAt
	r.s.orders[order.ID] = stored
	return nil
}

// UpdateStatus cambia solo el estado del pedido.
func (r *OrderRepo) UpdateStatus(id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Status = status
	stored.UpdatedAt = time.Now()
	r.s.orders[id] = stored
	return nil
}

// ReplaceLines reemplaza las líneas completas del pedido.
func (r *OrderRepo) ReplaceLines(orderID string, lines []entity.OrderLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Lines = append([]entity.OrderLine(nil), lines...)
	r.s.orders[orderID] = stored
	return nil
}
