package admission

import (
	"context"

	"github.com/mdessi/pastificio-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando el
// repositorio de cupos atado a esa tx. La transacción es lo que convierte
// leer-comparar-incrementar en una unidad indivisible por (fecha, scope).
type TxRunner interface {
	Run(ctx context.Context, fn func(quotaRepo repository.QuotaRepository) error) error
}
