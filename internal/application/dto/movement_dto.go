package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// Quantity es magnitud no negativa salvo ADJUSTMENT, que lleva signo.
type RegisterMovementRequest struct {
	ProductID  string          `json:"product_id"`
	Kind       string          `json:"kind"` // RECEIPT | ISSUE | ADJUSTMENT | PHYSICAL_COUNT
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price,omitempty"`
	OccurredAt *time.Time      `json:"occurred_at,omitempty"`
}

// MovementResponse movimiento registrado en el libro.
type MovementResponse struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	Kind       string          `json:"kind"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	LineValue  decimal.Decimal `json:"line_value"`
	OccurredAt time.Time       `json:"occurred_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

// SnapshotResponse saldo derivado del libro. RawQuantity conserva el signo para
// auditoría; DisplayableQuantity aplica el piso en cero.
type SnapshotResponse struct {
	ProductID           string          `json:"product_id"`
	RawQuantity         decimal.Decimal `json:"raw_quantity"`
	DisplayableQuantity decimal.Decimal `json:"displayable_quantity"`
	AsOf                time.Time       `json:"as_of"`
}

// LowStockItemResponse ítem en o por debajo del umbral de stock bajo.
type LowStockItemResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Raw       decimal.Decimal `json:"raw_quantity"`
}
