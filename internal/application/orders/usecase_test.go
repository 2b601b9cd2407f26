package orders_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdessi/pastificio-api/internal/application/admission"
	"github.com/mdessi/pastificio-api/internal/application/orders"
	"github.com/mdessi/pastificio-api/internal/domain"
	"github.com/mdessi/pastificio-api/internal/domain/entity"
	"github.com/mdessi/pastificio-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

var deliveryDay = time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

type fixture struct {
	uc    *orders.UseCase
	store *memory.Store
}

// newFixture monta el caso de uso completo sobre memoria con un producto mixto:
// pardulas, 30 piezas por kg, 18.00 por kg.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	txRunner := memory.NewTxRunner(store)
	gate := admission.NewGate(txRunner)
	productRepo := memory.NewProductRepository(store)
	orderRepo := memory.NewOrderRepository(store)

	require.NoError(t, productRepo.Create(&entity.Product{
		ID:          "prod-pardulas",
		SKU:         "PAR-001",
		Name:        "Pardulas",
		CategoryID:  "cat-dulces",
		SalesMode:   entity.SalesModeMixed,
		PricePerKg:  decimal.NewFromInt(18),
		PiecesPerKg: decimal.NewFromInt(30),
		Active:      true,
	}))

	return &fixture{
		uc:    orders.NewUseCase(txRunner, gate, productRepo, orderRepo),
		store: store,
	}
}

func (f *fixture) seedQuota(t *testing.T, limit, consumed string) *entity.CapacityQuota {
	t.Helper()
	q := &entity.CapacityQuota{
		ID:                    "quota-pardulas",
		Date:                  deliveryDay,
		ProductID:             "prod-pardulas",
		Limit:                 decimal.RequireFromString(limit),
		Unit:                  entity.UnitKilogram,
		Consumed:              decimal.RequireFromString(consumed),
		AlertThresholdPercent: 80,
	}
	require.NoError(t, memory.NewQuotaRepository(f.store).Create(q))
	return q
}

func (f *fixture) consumed(t *testing.T, q *entity.CapacityQuota) decimal.Decimal {
	t.Helper()
	got, err := memory.NewQuotaRepository(f.store).Get(deliveryDay, q.Scope())
	require.NoError(t, err)
	require.NotNil(t, got)
	return got.Consumed
}

func (f *fixture) seedStock(t *testing.T, qty string) {
	t.Helper()
	require.NoError(t, memory.NewStockMovementRepository(f.store).Append(&entity.StockMovement{
		ID:       "mov-seed",
		ItemKey:  "prod-pardulas",
		Kind:     entity.MovementKindReceipt,
		Quantity: decimal.RequireFromString(qty),
		Unit:     entity.UnitKilogram,
	}))
}

func createInput(qty, unit string) orders.CreateInput {
	return orders.CreateInput{
		Date:         deliveryDay,
		CustomerName: "Bar Centrale",
		Lines: []orders.LineInput{
			{ProductID: "prod-pardulas", Quantity: decimal.RequireFromString(qty), Unit: unit},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

// 90 piezas a 30 piezas/kg se normalizan a 3 kg y reservan 3 kg del cupo.
func TestCreate_NormalizaYReserva(t *testing.T) {
	f := newFixture(t)
	q := f.seedQuota(t, "60", "0")

	out, err := f.uc.Create(context.Background(), createInput("90", entity.UnitPiece))
	require.NoError(t, err)

	require.NotNil(t, out.Order)
	assert.Equal(t, entity.OrderStatusAdmitted, out.Order.Status)
	require.Len(t, out.Order.Lines, 1)
	l := out.Order.Lines[0]
	assert.True(t, l.CanonicalQuantity.Equal(decimal.NewFromInt(3)),
		"90 piezas deben normalizar a 3 kg, obtuvo %s", l.CanonicalQuantity)
	assert.Equal(t, entity.UnitKilogram, l.CanonicalUnit)
	assert.True(t, l.LineValue.Equal(decimal.NewFromInt(54)), "3 kg * 18.00 = 54.00")

	assert.True(t, f.consumed(t, q).Equal(decimal.NewFromInt(3)))

	// quedó persistido con sus líneas
	persisted, err := f.uc.GetByID(out.Order.ID)
	require.NoError(t, err)
	assert.Len(t, persisted.Lines, 1)
}

// Un pedido rechazado no es error: devuelve los findings y nada queda
// persistido ni reservado.
func TestCreate_RechazadoNoPersisteNada(t *testing.T) {
	f := newFixture(t)
	q := f.seedQuota(t, "60", "55")

	out, err := f.uc.Create(context.Background(), createInput("10", entity.UnitKilogram))
	require.NoError(t, err)

	assert.Nil(t, out.Order, "con rechazo no hay pedido")
	require.NotNil(t, out.Admission)
	assert.Equal(t, admission.StatusRejected, out.Admission.Status)
	assert.True(t, f.consumed(t, q).Equal(decimal.NewFromInt(55)))

	list, err := f.uc.ListByDate(deliveryDay, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, list, "ningún pedido debe quedar en el repositorio")
}

func TestCreate_UnidadNoSoportada(t *testing.T) {
	f := newFixture(t)
	// mixto acepta g; forzamos una unidad desconocida
	in := createInput("1", "litros")
	_, err := f.uc.Create(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrUnsupportedUnit)
}

func TestCreate_ProductoInexistente(t *testing.T) {
	f := newFixture(t)
	in := orders.CreateInput{
		Date:         deliveryDay,
		CustomerName: "Bar Centrale",
		Lines:        []orders.LineInput{{ProductID: "no-existe", Quantity: decimal.NewFromInt(1), Unit: entity.UnitKilogram}},
	}
	_, err := f.uc.Create(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_SinLineas(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(context.Background(), orders.CreateInput{Date: deliveryDay, CustomerName: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cancel
// ──────────────────────────────────────────────────────────────────────────────

func TestCancel_ReversaReservaYMarcaCancelado(t *testing.T) {
	f := newFixture(t)
	q := f.seedQuota(t, "60", "0")

	out, err := f.uc.Create(context.Background(), createInput("3", entity.UnitKilogram))
	require.NoError(t, err)
	require.True(t, f.consumed(t, q).Equal(decimal.NewFromInt(3)))

	require.NoError(t, f.uc.Cancel(context.Background(), out.Order.ID))

	assert.True(t, f.consumed(t, q).Equal(decimal.Zero), "cancelar libera la capacidad")
	got, err := f.uc.GetByID(out.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, got.Status)
}

func TestCancel_PedidoYaCanceladoConflicto(t *testing.T) {
	f := newFixture(t)
	f.seedQuota(t, "60", "0")

	out, err := f.uc.Create(context.Background(), createInput("3", entity.UnitKilogram))
	require.NoError(t, err)
	require.NoError(t, f.uc.Cancel(context.Background(), out.Order.ID))

	assert.ErrorIs(t, f.uc.Cancel(context.Background(), out.Order.ID), domain.ErrConflict)
}

// ──────────────────────────────────────────────────────────────────────────────
// Update
// ──────────────────────────────────────────────────────────────────────────────

// Editar es release + readmisión completa: el consumo final refleja solo la
// versión nueva del pedido.
func TestUpdate_ReleaseMasReadmision(t *testing.T) {
	f := newFixture(t)
	q := f.seedQuota(t, "60", "0")

	out, err := f.uc.Create(context.Background(), createInput("10", entity.UnitKilogram))
	require.NoError(t, err)

	updated, err := f.uc.Update(context.Background(), out.Order.ID, createInput("4", entity.UnitKilogram))
	require.NoError(t, err)

	require.NotNil(t, updated.Order)
	assert.True(t, f.consumed(t, q).Equal(decimal.NewFromInt(4)),
		"el consumo debe reflejar solo la versión nueva")
	require.Len(t, updated.Order.Lines, 1)
	assert.True(t, updated.Order.Lines[0].CanonicalQuantity.Equal(decimal.NewFromInt(4)))
}

// Si la versión nueva no cabe, el rollback deja el pedido original y sus
// reservas exactamente como estaban.
func TestUpdate_RechazoDejaOriginalIntacto(t *testing.T) {
	f := newFixture(t)
	q := f.seedQuota(t, "60", "45")

	out, err := f.uc.Create(context.Background(), createInput("10", entity.UnitKilogram))
	require.NoError(t, err)
	require.True(t, f.consumed(t, q).Equal(decimal.NewFromInt(55)))

	// la nueva versión pide 20: tras liberar 10 habría 45+20=65 > 60
	result, err := f.uc.Update(context.Background(), out.Order.ID, createInput("20", entity.UnitKilogram))
	require.NoError(t, err)

	assert.Nil(t, result.Order)
	assert.Equal(t, admission.StatusRejected, result.Admission.Status)
	assert.True(t, f.consumed(t, q).Equal(decimal.NewFromInt(55)),
		"el rollback debe restaurar la reserva original")

	got, err := f.uc.GetByID(out.Order.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.True(t, got.Lines[0].CanonicalQuantity.Equal(decimal.NewFromInt(10)),
		"las líneas originales no deben cambiar")
}

// ──────────────────────────────────────────────────────────────────────────────
// Fulfill
// ──────────────────────────────────────────────────────────────────────────────

func TestFulfill_RegistraIssuesYMarcaDespachado(t *testing.T) {
	f := newFixture(t)
	f.seedQuota(t, "60", "0")
	f.seedStock(t, "5")

	out, err := f.uc.Create(context.Background(), createInput("3", entity.UnitKilogram))
	require.NoError(t, err)

	require.NoError(t, f.uc.Fulfill(context.Background(), out.Order.ID, "user-1"))

	got, err := f.uc.GetByID(out.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusFulfilled, got.Status)

	// el saldo derivado del libro baja 5 - 3 = 2
	sum, err := memory.NewStockMovementRepository(f.store).SignedSum("prod-pardulas")
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(2)))
}

// Sin stock suficiente nada se despacha: ni asientos ISSUE ni cambio de estado.
func TestFulfill_StockInsuficienteRevierteTodo(t *testing.T) {
	f := newFixture(t)
	f.seedQuota(t, "60", "0")
	f.seedStock(t, "1")

	out, err := f.uc.Create(context.Background(), createInput("3", entity.UnitKilogram))
	require.NoError(t, err)

	err = f.uc.Fulfill(context.Background(), out.Order.ID, "user-1")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := f.uc.GetByID(out.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusAdmitted, got.Status, "el estado no debe cambiar")

	sum, err := memory.NewStockMovementRepository(f.store).SignedSum("prod-pardulas")
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(1)), "ningún ISSUE debe quedar registrado")
}

func TestFulfill_PedidoCanceladoConflicto(t *testing.T) {
	f := newFixture(t)
	f.seedQuota(t, "60", "0")
	f.seedStock(t, "10")

	out, err := f.uc.Create(context.Background(), createInput("3", entity.UnitKilogram))
	require.NoError(t, err)
	require.NoError(t, f.uc.Cancel(context.Background(), out.Order.ID))

	assert.ErrorIs(t, f.uc.Fulfill(context.Background(), out.Order.ID, "user-1"), domain.ErrConflict)
}
