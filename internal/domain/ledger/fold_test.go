package ledger_test

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdessi/pastificio-api/internal/domain/entity"
	"github.com/mdessi/pastificio-api/internal/domain/ledger"
)

func mov(kind string, qty string) *entity.StockMovement {
	return &entity.StockMovement{
		ItemKey:  "prod-1",
		Kind:     kind,
		Quantity: decimal.RequireFromString(qty),
		Unit:     entity.UnitKilogram,
	}
}

func TestFold_SignosPorTipo(t *testing.T) {
	movements := []*entity.StockMovement{
		mov(entity.MovementKindReceipt, "10"),       // +10
		mov(entity.MovementKindIssue, "4"),          // -4
		mov(entity.MovementKindAdjustment, "-1.5"),  // -1.5 (signo explícito)
		mov(entity.MovementKindPhysicalCount, "0.5"), // +0.5
	}
	total := ledger.Fold(movements)
	assert.True(t, total.Equal(decimal.NewFromInt(5)),
		"10 - 4 - 1.5 + 0.5 = 5, obtuvo %s", total)
}

func TestFold_VacioEsCero(t *testing.T) {
	assert.True(t, ledger.Fold(nil).Equal(decimal.Zero))
}

// El fold es conmutativo: cualquier permutación del libro produce el mismo saldo.
func TestFold_Conmutativo(t *testing.T) {
	movements := []*entity.StockMovement{
		mov(entity.MovementKindReceipt, "7.25"),
		mov(entity.MovementKindIssue, "3"),
		mov(entity.MovementKindAdjustment, "-0.25"),
		mov(entity.MovementKindReceipt, "1"),
		mov(entity.MovementKindIssue, "2.5"),
	}
	expected := ledger.Fold(movements)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := append([]*entity.StockMovement(nil), movements...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		got := ledger.Fold(shuffled)
		require.True(t, got.Equal(expected),
			"permutación %d cambió el saldo: %s != %s", i, got, expected)
	}
}

// El saldo crudo puede ser negativo (ajustes sobre faltantes); el mostrable no.
func TestDisplayable_PisoEnCeroSoloPresentacion(t *testing.T) {
	movements := []*entity.StockMovement{
		mov(entity.MovementKindReceipt, "2"),
		mov(entity.MovementKindIssue, "5"),
	}
	raw := ledger.Fold(movements)
	require.True(t, raw.Equal(decimal.NewFromInt(-3)), "la suma cruda conserva el signo")

	snap := ledger.SnapshotOf("prod-1", raw)
	assert.True(t, snap.Raw.Equal(decimal.NewFromInt(-3)), "Raw es el registro de auditoría")
	assert.True(t, snap.Displayable.Equal(decimal.Zero), "Displayable aplica el piso en cero")
}

func TestDisplayable_PositivoPasaTalCual(t *testing.T) {
	v := decimal.RequireFromString("4.2")
	assert.True(t, ledger.Displayable(v).Equal(v))
}
