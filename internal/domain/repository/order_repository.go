package repository

import (
	"time"

	"github.com/mdessi/pastificio-api/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para pedidos y sus líneas.
type OrderRepository interface {
	Create(order *entity.Order) error
	GetByID(id string) (*entity.Order, error)
	ListByDate(date time.Time, limit, offset int) ([]*entity.Order, error)
	// Update reescribe cabecera y estado del pedido (no las líneas).
	Update(order *entity.Order) error
	UpdateStatus(id, status string) error
	// ReplaceLines reemplaza las líneas completas del pedido (edición = release + readmit,
	// nunca parche diferencial).
	ReplaceLines(orderID string, lines []entity.OrderLine) error
}
