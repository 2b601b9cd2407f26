package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Modos de venta de un producto. Conjunto cerrado: la normalización de unidades
// hace match exhaustivo sobre estos valores en lugar de sondear campos opcionales.
const (
	SalesModeKiloOnly       = "kilo_only"       // solo peso (kg/g)
	SalesModePieceOnly      = "piece_only"      // solo piezas
	SalesModeMixed          = "mixed"           // peso o piezas (requiere PiecesPerKg)
	SalesModeVariableWeight = "variable_weight" // peso variable por pieza, se vende a peso
)

// Product representa un producto del catálogo con su tabla de conversión de unidades.
// PiecesPerKg en cero significa que el producto no define conversión pieza<->kg.
type Product struct {
	ID            string
	SKU           string // código único
	Name          string
	Description   string
	CategoryID    string
	SalesMode     string
	PricePerKg    decimal.Decimal // precio de venta por kg
	PricePerPiece decimal.Decimal // precio por pieza (productos por pieza)
	PiecesPerKg   decimal.Decimal // piezas por kg; cero = no definido
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CanonicalUnit devuelve la unidad canónica del producto: pieza para piece_only, kg para el resto.
func (p *Product) CanonicalUnit() string {
	if p.SalesMode == SalesModePieceOnly {
		return UnitPiece
	}
	return UnitKilogram
}

// AcceptsUnit indica si la unidad cruda es legal para el modo de venta del producto.
// Una unidad fuera del conjunto declarado se rechaza, nunca se adivina.
func (p *Product) AcceptsUnit(unit string) bool {
	switch p.SalesMode {
	case SalesModeKiloOnly, SalesModeVariableWeight:
		return unit == UnitKilogram || unit == UnitGram || unit == UnitCurrency
	case SalesModePieceOnly:
		return unit == UnitPiece || unit == UnitCurrency
	case SalesModeMixed:
		return unit == UnitKilogram || unit == UnitGram || unit == UnitPiece || unit == UnitCurrency
	}
	return false
}

// HasPieceConversion indica si el producto define la conversión piezas por kg.
func (p *Product) HasPieceConversion() bool {
	return p.PiecesPerKg.GreaterThan(decimal.Zero)
}
