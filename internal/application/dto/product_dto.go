package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest alta de producto con su tabla de conversión de unidades.
type CreateProductRequest struct {
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	CategoryID    string          `json:"category_id,omitempty"`
	SalesMode     string          `json:"sales_mode"` // kilo_only | piece_only | mixed | variable_weight
	PricePerKg    decimal.Decimal `json:"price_per_kg,omitempty"`
	PricePerPiece decimal.Decimal `json:"price_per_piece,omitempty"`
	PiecesPerKg   decimal.Decimal `json:"pieces_per_kg,omitempty"`
}

// UpdateProductRequest actualización de producto.
type UpdateProductRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	CategoryID    string          `json:"category_id,omitempty"`
	SalesMode     string          `json:"sales_mode"`
	PricePerKg    decimal.Decimal `json:"price_per_kg,omitempty"`
	PricePerPiece decimal.Decimal `json:"price_per_piece,omitempty"`
	PiecesPerKg   decimal.Decimal `json:"pieces_per_kg,omitempty"`
	Active        *bool           `json:"active,omitempty"`
}

// ProductResponse producto del catálogo.
type ProductResponse struct {
	ID            string          `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	CategoryID    string          `json:"category_id,omitempty"`
	SalesMode     string          `json:"sales_mode"`
	PricePerKg    decimal.Decimal `json:"price_per_kg"`
	PricePerPiece decimal.Decimal `json:"price_per_piece"`
	PiecesPerKg   decimal.Decimal `json:"pieces_per_kg"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NormalizeRequest consulta de normalización de una línea sin crear pedido.
type NormalizeRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
}

// NormalizeResponse cantidad canónica calculada.
type NormalizeResponse struct {
	ProductID         string          `json:"product_id"`
	CanonicalQuantity decimal.Decimal `json:"canonical_quantity"`
	CanonicalUnit     string          `json:"canonical_unit"`
	Pieces            decimal.Decimal `json:"pieces,omitempty"`
	HasPieces         bool            `json:"has_pieces"`
}
