package catalog_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdessi/pastificio-api/internal/domain"
	"github.com/mdessi/pastificio-api/internal/domain/catalog"
	"github.com/mdessi/pastificio-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Productos de prueba
// ──────────────────────────────────────────────────────────────────────────────

// pardulas: producto mixto, 30 piezas por kg, 18.00 por kg.
func pardulas() *entity.Product {
	return &entity.Product{
		ID:          "prod-pardulas",
		SKU:         "PAR-001",
		Name:        "Pardulas",
		SalesMode:   entity.SalesModeMixed,
		PricePerKg:  decimal.NewFromInt(18),
		PiecesPerKg: decimal.NewFromInt(30),
		Active:      true,
	}
}

// ravioli: producto solo peso, 12.50 por kg, sin conversión a piezas.
func ravioli() *entity.Product {
	return &entity.Product{
		ID:         "prod-ravioli",
		SKU:        "RAV-001",
		Name:       "Ravioli ricotta",
		SalesMode:  entity.SalesModeKiloOnly,
		PricePerKg: decimal.RequireFromString("12.5"),
		Active:     true,
	}
}

// torta: producto por pieza, 25.00 por pieza.
func torta() *entity.Product {
	return &entity.Product{
		ID:            "prod-torta",
		SKU:           "TOR-001",
		Name:          "Torta de sémola",
		SalesMode:     entity.SalesModePieceOnly,
		PricePerPiece: decimal.NewFromInt(25),
		Active:        true,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Conversiones válidas
// ──────────────────────────────────────────────────────────────────────────────

func TestNormalize_KgPasaTalCual(t *testing.T) {
	out, err := catalog.Normalize(ravioli(), decimal.RequireFromString("2.5"), entity.UnitKilogram)
	require.NoError(t, err)

	assert.True(t, out.Quantity.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, entity.UnitKilogram, out.Unit)
	assert.False(t, out.HasPieces, "sin PiecesPerKg no hay cantidad secundaria en piezas")
}

func TestNormalize_GramosDivideEntreMil(t *testing.T) {
	out, err := catalog.Normalize(ravioli(), decimal.NewFromInt(750), entity.UnitGram)
	require.NoError(t, err)

	assert.True(t, out.Quantity.Equal(decimal.RequireFromString("0.75")),
		"750 g deben normalizar a 0.75 kg, obtuvo %s", out.Quantity)
}

// 90 piezas de un producto con 30 piezas/kg son exactamente 3 kg.
func TestNormalize_PiezasConConversionDefinida(t *testing.T) {
	out, err := catalog.Normalize(pardulas(), decimal.NewFromInt(90), entity.UnitPiece)
	require.NoError(t, err)

	assert.True(t, out.Quantity.Equal(decimal.NewFromInt(3)),
		"90 piezas a 30 piezas/kg deben ser 3 kg, obtuvo %s", out.Quantity)
	assert.Equal(t, entity.UnitKilogram, out.Unit)
	require.True(t, out.HasPieces)
	assert.True(t, out.Pieces.Equal(decimal.NewFromInt(90)),
		"la cantidad secundaria debe reconstruir las 90 piezas")
}

func TestNormalize_ImporteDivideEntrePrecioPorKg(t *testing.T) {
	// 25.00 de ravioli a 12.50/kg = 2 kg
	out, err := catalog.Normalize(ravioli(), decimal.NewFromInt(25), entity.UnitCurrency)
	require.NoError(t, err)

	assert.True(t, out.Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, entity.UnitKilogram, out.Unit)
}

func TestNormalize_ImporteProductoPorPieza(t *testing.T) {
	// 75.00 de torta a 25.00/pieza = 3 piezas
	out, err := catalog.Normalize(torta(), decimal.NewFromInt(75), entity.UnitCurrency)
	require.NoError(t, err)

	assert.True(t, out.Quantity.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, entity.UnitPiece, out.Unit)
}

func TestNormalize_MixtoEnKgDevuelvePiezasSecundarias(t *testing.T) {
	out, err := catalog.Normalize(pardulas(), decimal.NewFromInt(2), entity.UnitKilogram)
	require.NoError(t, err)

	require.True(t, out.HasPieces)
	assert.True(t, out.Pieces.Equal(decimal.NewFromInt(60)),
		"2 kg a 30 piezas/kg son 60 piezas")
}

// ──────────────────────────────────────────────────────────────────────────────
// Combinaciones rechazadas
// ──────────────────────────────────────────────────────────────────────────────

func TestNormalize_PiezasSinConversionRechaza(t *testing.T) {
	// kilo_only no acepta piezas por modo de venta
	_, err := catalog.Normalize(ravioli(), decimal.NewFromInt(5), entity.UnitPiece)
	assert.ErrorIs(t, err, domain.ErrUnsupportedUnit)
}

func TestNormalize_GramosEnProductoPorPiezaRechaza(t *testing.T) {
	_, err := catalog.Normalize(torta(), decimal.NewFromInt(500), entity.UnitGram)
	assert.ErrorIs(t, err, domain.ErrUnsupportedUnit)
}

func TestNormalize_UnidadDesconocidaRechaza(t *testing.T) {
	_, err := catalog.Normalize(pardulas(), decimal.NewFromInt(1), "litros")
	assert.ErrorIs(t, err, domain.ErrUnsupportedUnit)
}

func TestNormalize_ImporteSinPrecioRechaza(t *testing.T) {
	p := ravioli()
	p.PricePerKg = decimal.Zero
	_, err := catalog.Normalize(p, decimal.NewFromInt(10), entity.UnitCurrency)
	assert.ErrorIs(t, err, domain.ErrUnsupportedUnit)
}

func TestNormalize_CantidadNegativaRechaza(t *testing.T) {
	_, err := catalog.Normalize(pardulas(), decimal.NewFromInt(-1), entity.UnitKilogram)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalize_ProductoNilRetornaNotFound(t *testing.T) {
	_, err := catalog.Normalize(nil, decimal.NewFromInt(1), entity.UnitKilogram)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Ida y vuelta: importe → kg → importe reproduce el valor original.
func TestNormalize_ImporteIdaYVuelta(t *testing.T) {
	amount := decimal.RequireFromString("37.5")
	out, err := catalog.Normalize(ravioli(), amount, entity.UnitCurrency)
	require.NoError(t, err)

	back := out.Quantity.Mul(ravioli().PricePerKg)
	assert.True(t, back.Equal(amount), "kg*precio debe reconstruir el importe: %s", back)
}
