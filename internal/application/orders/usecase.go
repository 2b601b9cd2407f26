package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mdessi/pastificio-api/internal/application/admission"
	"github.com/mdessi/pastificio-api/internal/domain"
	"github.com/mdessi/pastificio-api/internal/domain/catalog"
	"github.com/mdessi/pastificio-api/internal/domain/entity"
	"github.com/mdessi/pastificio-api/internal/domain/repository"
)

// maxTxAttempts reintentos de la transacción completa ante contención de cupos.
const maxTxAttempts = 3

// errRejected sentinela interno: aborta la transacción cuando el gate rechaza,
// descartando cualquier reserva hecha durante la evaluación.
var errRejected = errors.New("pedido rechazado por cupos")

// UseCase ciclo de vida de pedidos: crear (normalizar + admitir + persistir),
// cancelar (release), editar (release + readmit completo, nunca parche
// diferencial) y despachar (asientos ISSUE en el libro).
type UseCase struct {
	txRunner    TxRunner
	gate        *admission.Gate
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
}

// NewUseCase construye el caso de uso de pedidos.
func NewUseCase(txRunner TxRunner, gate *admission.Gate, productRepo repository.ProductRepository, orderRepo repository.OrderRepository) *UseCase {
	return &UseCase{txRunner: txRunner, gate: gate, productRepo: productRepo, orderRepo: orderRepo}
}

// LineInput línea de pedido tal como llega: cantidad cruda en la unidad del cliente.
type LineInput struct {
	ProductID string
	Quantity  decimal.Decimal
	Unit      string
}

// CreateInput entrada para crear un pedido.
type CreateInput struct {
	Date           time.Time
	CustomerName   string
	Notes          string
	Lines          []LineInput
	OverrideLimits bool // señal explícita del operador para admitir sobre el límite
	UserID         string
}

// CreateOutput resultado de la creación. Con estado REJECTED, Order es nil y
// nada quedó persistido ni reservado.
type CreateOutput struct {
	Order     *entity.Order
	Admission *admission.Result
}

// normalizeLines valida cada línea contra el catálogo y produce las líneas de
// pedido con cantidad canónica más los candidatos para el gate de admisión.
func (uc *UseCase) normalizeLines(lines []LineInput) ([]entity.OrderLine, []admission.LineCandidate, error) {
	if len(lines) == 0 {
		return nil, nil, domain.ErrInvalidInput
	}
	outLines := make([]entity.OrderLine, 0, len(lines))
	candidates := make([]admission.LineCandidate, 0, len(lines))
	for _, in := range lines {
		product, err := uc.productRepo.GetByID(in.ProductID)
		if err != nil {
			return nil, nil, err
		}
		if product == nil {
			return nil, nil, domain.ErrNotFound
		}
		norm, err := catalog.Normalize(product, in.Quantity, in.Unit)
		if err != nil {
			return nil, nil, err
		}
		unitPrice := product.PricePerKg
		if norm.Unit == entity.UnitPiece {
			unitPrice = product.PricePerPiece
		}
		outLines = append(outLines, entity.OrderLine{
			ID:                uuid.New().String(),
			ProductID:         product.ID,
			CategoryID:        product.CategoryID,
			RawQuantity:       in.Quantity,
			RawUnit:           in.Unit,
			CanonicalQuantity: norm.Quantity,
			CanonicalUnit:     norm.Unit,
			UnitPrice:         unitPrice,
			LineValue:         norm.Quantity.Mul(unitPrice),
		})
		candidates = append(candidates, admission.LineCandidate{
			ProductID:         product.ID,
			CategoryID:        product.CategoryID,
			CanonicalQuantity: norm.Quantity,
		})
	}
	return outLines, candidates, nil
}

// candidatesOf reconstruye los candidatos de admisión desde líneas persistidas,
// para release en cancelación y edición.
func candidatesOf(lines []entity.OrderLine) []admission.LineCandidate {
	out := make([]admission.LineCandidate, 0, len(lines))
	for _, l := range lines {
		out = append(out, admission.LineCandidate{
			ProductID:         l.ProductID,
			CategoryID:        l.CategoryID,
			CanonicalQuantity: l.CanonicalQuantity,
		})
	}
	return out
}

// Create normaliza las líneas, evalúa la admisión y persiste el pedido en una
// sola transacción. REJECTED es un resultado, no un error: se devuelve con los
// findings por scope y la transacción se revierte completa.
func (uc *UseCase) Create(ctx context.Context, in CreateInput) (*CreateOutput, error) {
	lines, candidates, err := uc.normalizeLines(in.Lines)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &entity.Order{
		ID:           uuid.New().String(),
		CustomerName: in.CustomerName,
		Date:         entity.DayOf(in.Date),
		Notes:        in.Notes,
		Lines:        lines,
		CreatedAt:    now,
		UpdatedAt:    now,
		CreatedBy:    in.UserID,
	}

	var result *admission.Result
	err = uc.runWithRetry(ctx, func(quotaRepo repository.QuotaRepository, orderRepo repository.OrderRepository, _ repository.StockMovementRepository) error {
		r, inErr := uc.gate.AdmitInTx(quotaRepo, in.Date, candidates, in.OverrideLimits)
		if inErr != nil {
			return inErr
		}
		result = r
		if r.Status == admission.StatusRejected {
			return errRejected
		}
		order.Status = r.Status
		return orderRepo.Create(order)
	})
	if errors.Is(err, errRejected) {
		return &CreateOutput{Admission: result}, nil
	}
	if err != nil {
		return nil, err
	}
	return &CreateOutput{Order: order, Admission: result}, nil
}

// Cancel reversa las reservas del pedido y lo marca cancelado. Mantiene la
// invariante: Consumed = suma de pedidos admitidos no reversados.
func (uc *UseCase) Cancel(ctx context.Context, orderID string) error {
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return domain.ErrNotFound
	}
	if !order.Admitted() {
		return domain.ErrConflict
	}
	return uc.runWithRetry(ctx, func(quotaRepo repository.QuotaRepository, orderRepo repository.OrderRepository, _ repository.StockMovementRepository) error {
		if err := uc.gate.ReleaseInTx(quotaRepo, order.Date, candidatesOf(order.Lines)); err != nil {
			return err
		}
		return orderRepo.UpdateStatus(order.ID, entity.OrderStatusCancelled)
	})
}

// UpdateOutput resultado de la edición; con REJECTED nada cambió.
type UpdateOutput struct {
	Order     *entity.Order
	Admission *admission.Result
}

// Update edita un pedido admitido: reversa por completo la admisión anterior y
// aplica la nueva en la misma transacción. Si la versión nueva no cabe y no hay
// override, el rollback deja el pedido original y sus reservas intactos.
func (uc *UseCase) Update(ctx context.Context, orderID string, in CreateInput) (*UpdateOutput, error) {
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	if !order.Admitted() {
		return nil, domain.ErrConflict
	}
	newLines, newCandidates, err := uc.normalizeLines(in.Lines)
	if err != nil {
		return nil, err
	}

	var result *admission.Result
	updated := *order
	err = uc.runWithRetry(ctx, func(quotaRepo repository.QuotaRepository, orderRepo repository.OrderRepository, _ repository.StockMovementRepository) error {
		if inErr := uc.gate.ReleaseInTx(quotaRepo, order.Date, candidatesOf(order.Lines)); inErr != nil {
			return inErr
		}
		r, inErr := uc.gate.AdmitInTx(quotaRepo, in.Date, newCandidates, in.OverrideLimits)
		if inErr != nil {
			return inErr
		}
		result = r
		if r.Status == admission.StatusRejected {
			return errRejected
		}
		updated.CustomerName = in.CustomerName
		updated.Date = entity.DayOf(in.Date)
		updated.Notes = in.Notes
		updated.Status = r.Status
		updated.Lines = newLines
		updated.UpdatedAt = time.Now()
		if inErr := orderRepo.Update(&updated); inErr != nil {
			return inErr
		}
		return orderRepo.ReplaceLines(order.ID, newLines)
	})
	if errors.Is(err, errRejected) {
		return &UpdateOutput{Admission: result}, nil
	}
	if err != nil {
		return nil, err
	}
	return &UpdateOutput{Order: &updated, Admission: result}, nil
}

// Fulfill despacha un pedido admitido: verifica disponibilidad contra el saldo
// derivado del libro y registra un ISSUE por línea. Si algún asiento falla, la
// transacción se revierte y el pedido no queda marcado como despachado.
func (uc *UseCase) Fulfill(ctx context.Context, orderID, userID string) error {
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return domain.ErrNotFound
	}
	if !order.Admitted() {
		return domain.ErrConflict
	}
	now := time.Now()
	return uc.runWithRetry(ctx, func(_ repository.QuotaRepository, orderRepo repository.OrderRepository, movRepo repository.StockMovementRepository) error {
		for _, line := range order.Lines {
			available, inErr := movRepo.SignedSum(line.ProductID)
			if inErr != nil {
				return inErr
			}
			if available.LessThan(line.CanonicalQuantity) {
				return domain.ErrInsufficientStock
			}
			mov := &entity.StockMovement{
				ID:         uuid.New().String(),
				ItemKey:    line.ProductID,
				Kind:       entity.MovementKindIssue,
				Quantity:   line.CanonicalQuantity,
				Unit:       line.CanonicalUnit,
				UnitPrice:  line.UnitPrice,
				LineValue:  line.LineValue,
				OccurredAt: now,
				CreatedAt:  now,
				CreatedBy:  userID,
			}
			if inErr := movRepo.Append(mov); inErr != nil {
				return inErr
			}
		}
		return orderRepo.UpdateStatus(order.ID, entity.OrderStatusFulfilled)
	})
}

// GetByID obtiene un pedido con sus líneas.
func (uc *UseCase) GetByID(id string) (*entity.Order, error) {
	order, err := uc.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// ListByDate lista los pedidos de un día de entrega.
func (uc *UseCase) ListByDate(date time.Time, limit, offset int) ([]*entity.Order, error) {
	return uc.orderRepo.ListByDate(entity.DayOf(date), limit, offset)
}

// runWithRetry ejecuta la transacción con reintentos acotados ante contención
// de cupos; agotados los intentos propaga ErrQuotaContention al caller.
func (uc *UseCase) runWithRetry(ctx context.Context, fn func(
	quotaRepo repository.QuotaRepository,
	orderRepo repository.OrderRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	var err error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err = uc.txRunner.RunOrder(ctx, fn)
		if errors.Is(err, domain.ErrQuotaContention) {
			continue
		}
		break
	}
	return err
}
