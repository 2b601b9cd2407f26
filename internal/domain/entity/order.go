package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un pedido. REJECTED no se persiste: un pedido rechazado por el gate
// de admisión nunca llega al repositorio.
const (
	OrderStatusAdmitted            = "ADMITTED"
	OrderStatusAdmittedWithWarning = "ADMITTED_WITH_WARNING"
	OrderStatusFulfilled           = "FULFILLED"
	OrderStatusCancelled           = "CANCELLED"
)

// Order pedido admitido contra los cupos diarios. Date es el día de entrega,
// la fecha contra la que se reservó capacidad.
type Order struct {
	ID           string
	CustomerName string
	Date         time.Time // día de entrega (UTC, sin hora)
	Status       string
	Notes        string
	Lines        []OrderLine
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CreatedBy    string
}

// OrderLine línea de pedido con la cantidad cruda tal como llegó y la cantidad
// canónica calculada por el normalizador de unidades.
type OrderLine struct {
	ID                string
	OrderID           string
	ProductID         string
	CategoryID        string
	RawQuantity       decimal.Decimal
	RawUnit           string
	CanonicalQuantity decimal.Decimal
	CanonicalUnit     string
	UnitPrice         decimal.Decimal
	LineValue         decimal.Decimal
}

// Admitted indica si el pedido mantiene una reserva de cupo vigente.
func (o *Order) Admitted() bool {
	return o.Status == OrderStatusAdmitted || o.Status == OrderStatusAdmittedWithWarning
}
