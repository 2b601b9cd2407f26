package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdessi/pastificio-api/internal/application/inventory"
	"github.com/mdessi/pastificio-api/internal/domain"
	"github.com/mdessi/pastificio-api/internal/domain/entity"
	"github.com/mdessi/pastificio-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures
// ──────────────────────────────────────────────────────────────────────────────

func newUseCase(t *testing.T) (*inventory.RegisterMovementUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	productRepo := memory.NewProductRepository(store)
	require.NoError(t, productRepo.Create(&entity.Product{
		ID:         "prod-ravioli",
		SKU:        "RAV-001",
		Name:       "Ravioli de ricotta",
		SalesMode:  entity.SalesModeKiloOnly,
		PricePerKg: decimal.RequireFromString("12.5"),
		Active:     true,
	}))
	uc := inventory.NewRegisterMovementUseCase(memory.NewStockMovementRepository(store), productRepo)
	return uc, store
}

func register(t *testing.T, uc *inventory.RegisterMovementUseCase, kind, qty string) *entity.StockMovement {
	t.Helper()
	mov, err := uc.Register(inventory.MovementInput{
		ProductID: "prod-ravioli",
		Kind:      kind,
		Quantity:  decimal.RequireFromString(qty),
	})
	require.NoError(t, err)
	return mov
}

// ──────────────────────────────────────────────────────────────────────────────
// Register
// ──────────────────────────────────────────────────────────────────────────────

func TestRegister_EntradaBasica(t *testing.T) {
	uc, _ := newUseCase(t)

	mov, err := uc.Register(inventory.MovementInput{
		ProductID: "prod-ravioli",
		Kind:      entity.MovementKindReceipt,
		Quantity:  decimal.NewFromInt(10),
		UnitPrice: decimal.RequireFromString("12.5"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, mov.ID)
	assert.Equal(t, entity.UnitKilogram, mov.Unit, "la unidad se toma del producto, no de la entrada")
	assert.True(t, mov.LineValue.Equal(decimal.NewFromInt(125)), "LineValue = cantidad * precio")
	assert.False(t, mov.OccurredAt.IsZero(), "sin fecha explícita se usa ahora")
}

func TestRegister_TipoDesconocido(t *testing.T) {
	uc, _ := newUseCase(t)
	_, err := uc.Register(inventory.MovementInput{
		ProductID: "prod-ravioli",
		Kind:      "TELEPORT",
		Quantity:  decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegister_CantidadNegativaSoloEnAjustes(t *testing.T) {
	uc, _ := newUseCase(t)

	// ISSUE con cantidad negativa se rechaza: la magnitud no lleva signo
	_, err := uc.Register(inventory.MovementInput{
		ProductID: "prod-ravioli",
		Kind:      entity.MovementKindIssue,
		Quantity:  decimal.NewFromInt(-2),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// ADJUSTMENT sí admite signo explícito
	mov, err := uc.Register(inventory.MovementInput{
		ProductID: "prod-ravioli",
		Kind:      entity.MovementKindAdjustment,
		Quantity:  decimal.NewFromInt(-2),
	})
	require.NoError(t, err)
	assert.True(t, mov.Quantity.Equal(decimal.NewFromInt(-2)))
}

func TestRegister_ProductoInexistente(t *testing.T) {
	uc, _ := newUseCase(t)
	_, err := uc.Register(inventory.MovementInput{
		ProductID: "no-existe",
		Kind:      entity.MovementKindReceipt,
		Quantity:  decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Snapshot — saldo derivado del libro
// ──────────────────────────────────────────────────────────────────────────────

func TestSnapshot_SaldoDerivadoDelLibro(t *testing.T) {
	uc, _ := newUseCase(t)
	register(t, uc, entity.MovementKindReceipt, "10")
	register(t, uc, entity.MovementKindIssue, "4")
	register(t, uc, entity.MovementKindAdjustment, "-1.5")

	snap, err := uc.Snapshot("prod-ravioli")
	require.NoError(t, err)

	assert.True(t, snap.Raw.Equal(decimal.RequireFromString("4.5")))
	assert.True(t, snap.Displayable.Equal(decimal.RequireFromString("4.5")))
}

// El saldo crudo negativo se conserva; el mostrable aplica el piso en cero.
func TestSnapshot_NegativoSoloEnCrudo(t *testing.T) {
	uc, _ := newUseCase(t)
	register(t, uc, entity.MovementKindReceipt, "2")
	register(t, uc, entity.MovementKindIssue, "5")

	snap, err := uc.Snapshot("prod-ravioli")
	require.NoError(t, err)

	assert.True(t, snap.Raw.Equal(decimal.NewFromInt(-3)), "Raw conserva el signo para auditoría")
	assert.True(t, snap.Displayable.Equal(decimal.Zero), "Displayable nunca baja de cero")
}

func TestSnapshot_ProductoInexistente(t *testing.T) {
	uc, _ := newUseCase(t)
	_, err := uc.Snapshot("no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// History
// ──────────────────────────────────────────────────────────────────────────────

func TestHistory_FiltraPorRango(t *testing.T) {
	uc, _ := newUseCase(t)

	base := time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := uc.Register(inventory.MovementInput{
			ProductID:  "prod-ravioli",
			Kind:       entity.MovementKindReceipt,
			Quantity:   decimal.NewFromInt(1),
			OccurredAt: base.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}

	from := base.AddDate(0, 0, 1)
	list, err := uc.History("prod-ravioli", &from, nil, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2, "solo los movimientos desde el día 2")
}

// ──────────────────────────────────────────────────────────────────────────────
// LowStock
// ──────────────────────────────────────────────────────────────────────────────

func TestLowStock_UmbralSobreSaldoMostrable(t *testing.T) {
	uc, store := newUseCase(t)
	productRepo := memory.NewProductRepository(store)
	require.NoError(t, productRepo.Create(&entity.Product{
		ID: "prod-torta", SKU: "TOR-001", Name: "Torta de anís",
		SalesMode: entity.SalesModePieceOnly, Active: true,
	}))

	register(t, uc, entity.MovementKindReceipt, "10") // ravioli: saldo 10
	_, err := uc.Register(inventory.MovementInput{
		ProductID: "prod-torta",
		Kind:      entity.MovementKindReceipt,
		Quantity:  decimal.NewFromInt(2), // torta: saldo 2
	})
	require.NoError(t, err)

	low, err := uc.LowStock(decimal.NewFromInt(3))
	require.NoError(t, err)

	require.Len(t, low, 1)
	assert.Equal(t, "prod-torta", low[0].ProductID)
	assert.True(t, low[0].Quantity.Equal(decimal.NewFromInt(2)))
}
