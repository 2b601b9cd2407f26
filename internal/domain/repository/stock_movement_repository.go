package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mdessi/pastificio-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia del libro de movimientos.
// Append solo puede fallar por infraestructura (el libro nunca rechaza por negocio);
// si falla, el caller no debe asumir que el evento quedó registrado.
type StockMovementRepository interface {
	Append(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	ListByItem(itemKey string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	// SignedSum suma con signo de todos los movimientos del ítem (fold materializado
	// en SQL; debe coincidir con ledger.Fold sobre la misma secuencia).
	SignedSum(itemKey string) (decimal.Decimal, error)
	// SignedSumAll suma con signo por ítem, para vistas de stock bajo.
	SignedSumAll() (map[string]decimal.Decimal, error)
}
