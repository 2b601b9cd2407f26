package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock. El signo de la contribución al saldo se deriva
// del tipo; ADJUSTMENT lleva el signo explícito en Quantity.
const (
	MovementKindReceipt       = "RECEIPT"        // entrada
	MovementKindIssue         = "ISSUE"          // salida
	MovementKindAdjustment    = "ADJUSTMENT"     // ajuste con signo
	MovementKindPhysicalCount = "PHYSICAL_COUNT" // conteo físico
)

// StockMovement representa un evento del libro de movimientos (append-only, inmutable).
// Nunca se edita ni se borra: una corrección se registra como ADJUSTMENT compensatorio.
// UnitPrice y LineValue son informativos para reportes de valoración; no afectan el saldo.
type StockMovement struct {
	ID         string
	ItemKey    string // ProductID del producto rastreado
	Kind       string
	Quantity   decimal.Decimal // magnitud no negativa; ADJUSTMENT puede ser negativo
	Unit       string          // unidad canónica al momento de escribir (kg o piece)
	UnitPrice  decimal.Decimal
	LineValue  decimal.Decimal // Quantity * UnitPrice
	OccurredAt time.Time       // para ordenar y reportes por ventana; el fold es conmutativo
	CreatedAt  time.Time
	CreatedBy  string
}

// SignedQuantity devuelve la contribución con signo al saldo: RECEIPT y
// PHYSICAL_COUNT suman, ISSUE resta, ADJUSTMENT conserva el signo registrado.
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	if m.Kind == MovementKindIssue {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// ValidKind indica si el tipo de movimiento pertenece al conjunto soportado.
func ValidKind(kind string) bool {
	switch kind {
	case MovementKindReceipt, MovementKindIssue, MovementKindAdjustment, MovementKindPhysicalCount:
		return true
	}
	return false
}
