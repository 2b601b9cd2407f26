package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/mdessi/pastificio-api/internal/domain"
	"github.com/mdessi/pastificio-api/internal/domain/entity"
)

var (
	thousand = decimal.NewFromInt(1000)
)

// NormalizedQuantity resultado de normalizar una cantidad cruda a la unidad
// canónica del producto. Pieces es la cantidad canónica secundaria (conteo de
// piezas) cuando el producto define la conversión; HasPieces indica si aplica.
type NormalizedQuantity struct {
	Quantity  decimal.Decimal
	Unit      string
	Pieces    decimal.Decimal
	HasPieces bool
}

// Normalize convierte (producto, cantidad, unidad) a la cantidad canónica.
// Función pura de la configuración del producto y la entrada; sin efectos.
//
// Reglas en orden de prioridad:
//  1. unidad ya canónica: pasa tal cual
//  2. pieza con PiecesPerKg definido: cantidad / PiecesPerKg
//  3. gramos: cantidad / 1000
//  4. importe: cantidad / precio por unidad canónica
//
// Cualquier otra combinación falla con ErrUnsupportedUnit. El modo de venta del
// producto restringe además qué unidades crudas son legales.
func Normalize(p *entity.Product, rawQuantity decimal.Decimal, rawUnit string) (NormalizedQuantity, error) {
	if p == nil {
		return NormalizedQuantity{}, domain.ErrNotFound
	}
	if rawQuantity.LessThan(decimal.Zero) {
		return NormalizedQuantity{}, domain.ErrInvalidInput
	}
	if !p.AcceptsUnit(rawUnit) {
		return NormalizedQuantity{}, domain.ErrUnsupportedUnit
	}

	canonical := p.CanonicalUnit()

	var qty decimal.Decimal
	switch rawUnit {
	case canonical:
		qty = rawQuantity
	case entity.UnitPiece:
		// canónica es kg: requiere conversión piezas por kg
		if !p.HasPieceConversion() {
			return NormalizedQuantity{}, domain.ErrUnsupportedUnit
		}
		qty = rawQuantity.Div(p.PiecesPerKg)
	case entity.UnitGram:
		if canonical != entity.UnitKilogram {
			return NormalizedQuantity{}, domain.ErrUnsupportedUnit
		}
		qty = rawQuantity.Div(thousand)
	case entity.UnitCurrency:
		price := p.PricePerKg
		if canonical == entity.UnitPiece {
			price = p.PricePerPiece
		}
		if !price.GreaterThan(decimal.Zero) {
			return NormalizedQuantity{}, domain.ErrUnsupportedUnit
		}
		qty = rawQuantity.Div(price)
	default:
		return NormalizedQuantity{}, domain.ErrUnsupportedUnit
	}

	out := NormalizedQuantity{Quantity: qty, Unit: canonical}
	if canonical == entity.UnitKilogram && p.HasPieceConversion() {
		out.Pieces = qty.Mul(p.PiecesPerKg)
		out.HasPieces = true
	}
	return out, nil
}
