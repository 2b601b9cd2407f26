package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mdessi/pastificio-api/internal/domain"
	"github.com/mdessi/pastificio-api/internal/domain/entity"
	ledgerdom "github.com/mdessi/pastificio-api/internal/domain/ledger"
	"github.com/mdessi/pastificio-api/internal/domain/repository"
)

// RegisterMovementUseCase registra eventos en el libro de movimientos y expone
// las lecturas derivadas (snapshot, historial, stock bajo). El libro solo crece:
// las correcciones son ADJUSTMENT compensatorios.
type RegisterMovementUseCase struct {
	movRepo     repository.StockMovementRepository
	productRepo repository.ProductRepository
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{movRepo: movRepo, productRepo: productRepo}
}

// MovementInput entrada para registrar un movimiento.
// Quantity es magnitud no negativa salvo para ADJUSTMENT, que lleva signo explícito.
type MovementInput struct {
	ProductID  string
	Kind       string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	OccurredAt time.Time // cero = ahora
	UserID     string
}

// Register valida y agrega el movimiento al libro. No falla por motivos de
// negocio más allá de la validación de entrada: el libro no rechaza eventos.
func (uc *RegisterMovementUseCase) Register(input MovementInput) (*entity.StockMovement, error) {
	if !entity.ValidKind(input.Kind) || input.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Kind != entity.MovementKindAdjustment && input.Quantity.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if input.UnitPrice.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = now
	}
	mov := &entity.StockMovement{
		ID:         uuid.New().String(),
		ItemKey:    input.ProductID,
		Kind:       input.Kind,
		Quantity:   input.Quantity,
		Unit:       product.CanonicalUnit(),
		UnitPrice:  input.UnitPrice,
		LineValue:  input.Quantity.Mul(input.UnitPrice),
		OccurredAt: occurredAt,
		CreatedAt:  now,
		CreatedBy:  input.UserID,
	}
	if err := uc.movRepo.Append(mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// Snapshot recalcula el saldo actual del ítem plegando el libro. La suma cruda
// se conserva para auditoría; el piso en cero es solo para presentación.
func (uc *RegisterMovementUseCase) Snapshot(productID string) (*ledgerdom.Snapshot, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	raw, err := uc.movRepo.SignedSum(productID)
	if err != nil {
		return nil, err
	}
	snap := ledgerdom.SnapshotOf(productID, raw)
	return &snap, nil
}

// History lista los movimientos de un ítem en un rango de fechas.
func (uc *RegisterMovementUseCase) History(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return uc.movRepo.ListByItem(productID, from, to, limit, offset)
}

// LowStockItem ítem cuyo saldo mostrable está en o por debajo del umbral.
type LowStockItem struct {
	ProductID string
	Quantity  decimal.Decimal // mostrable (piso en cero)
	Raw       decimal.Decimal // suma con signo completa
}

// LowStock devuelve los ítems con saldo mostrable <= threshold.
func (uc *RegisterMovementUseCase) LowStock(threshold decimal.Decimal) ([]LowStockItem, error) {
	sums, err := uc.movRepo.SignedSumAll()
	if err != nil {
		return nil, err
	}
	var out []LowStockItem
	for itemKey, raw := range sums {
		displayable := ledgerdom.Displayable(raw)
		if displayable.LessThanOrEqual(threshold) {
			out = append(out, LowStockItem{ProductID: itemKey, Quantity: displayable, Raw: raw})
		}
	}
	return out, nil
}
