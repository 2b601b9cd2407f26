package orders

import (
	"context"

	"github.com/mdessi/pastificio-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios de cupos, pedidos y movimientos atados a esa tx. Admisión,
// persistencia del pedido y asientos del libro comparten una sola unidad atómica.
type TxRunner interface {
	RunOrder(ctx context.Context, fn func(
		quotaRepo repository.QuotaRepository,
		orderRepo repository.OrderRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}
