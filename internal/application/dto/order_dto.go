package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest línea de pedido con cantidad cruda en la unidad del cliente
// (kg, g, piece o currency).
type OrderLineRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
}

// CreateOrderRequest body para POST /api/orders. Date en formato 2006-01-02.
// OverrideLimits admite el pedido aunque algún cupo quede sobrepasado.
type CreateOrderRequest struct {
	Date           string             `json:"date"`
	CustomerName   string             `json:"customer_name"`
	Notes          string             `json:"notes,omitempty"`
	Lines          []OrderLineRequest `json:"lines"`
	OverrideLimits bool               `json:"override_limits,omitempty"`
}

// FindingResponse hallazgo por scope de la admisión.
type FindingResponse struct {
	Scope           string          `json:"scope"`
	Kind            string          `json:"kind"` // WARNING | REJECT
	Requested       decimal.Decimal `json:"requested"`
	Available       decimal.Decimal `json:"available"`
	Shortfall       decimal.Decimal `json:"shortfall,omitempty"`
	ConsumedPercent decimal.Decimal `json:"consumed_percent"`
}

// AdmissionResponse resultado estructurado de la admisión.
type AdmissionResponse struct {
	Status   string            `json:"status"` // ADMITTED | ADMITTED_WITH_WARNING | REJECTED
	Findings []FindingResponse `json:"findings,omitempty"`
}

// OrderLineResponse línea persistida con su cantidad canónica.
type OrderLineResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	CategoryID        string          `json:"category_id,omitempty"`
	RawQuantity       decimal.Decimal `json:"raw_quantity"`
	RawUnit           string          `json:"raw_unit"`
	CanonicalQuantity decimal.Decimal `json:"canonical_quantity"`
	CanonicalUnit     string          `json:"canonical_unit"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	LineValue         decimal.Decimal `json:"line_value"`
}

// OrderResponse pedido persistido.
type OrderResponse struct {
	ID           string              `json:"id"`
	CustomerName string              `json:"customer_name"`
	Date         string              `json:"date"`
	Status       string              `json:"status"`
	Notes        string              `json:"notes,omitempty"`
	Lines        []OrderLineResponse `json:"lines"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// CreateOrderResponse pedido (si fue admitido) más el resultado de la admisión.
type CreateOrderResponse struct {
	Order     *OrderResponse    `json:"order,omitempty"`
	Admission AdmissionResponse `json:"admission"`
}
