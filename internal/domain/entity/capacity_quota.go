package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuotaScope identifica la dimensión de un cupo: un producto concreto o una
// categoría completa. Exactamente uno de los dos campos está definido.
type QuotaScope struct {
	ProductID  string
	CategoryID string
}

// ProductScope construye un scope de producto.
func ProductScope(productID string) QuotaScope { return QuotaScope{ProductID: productID} }

// CategoryScope construye un scope de categoría.
func CategoryScope(categoryID string) QuotaScope { return QuotaScope{CategoryID: categoryID} }

// Valid verifica la invariante: exactamente uno de ProductID/CategoryID definido.
func (s QuotaScope) Valid() bool {
	return (s.ProductID == "") != (s.CategoryID == "")
}

// Key devuelve una clave estable del scope, usada para agrupar contribuciones
// y para bloquear filas de cupo en orden determinista.
func (s QuotaScope) Key() string {
	if s.ProductID != "" {
		return "product:" + s.ProductID
	}
	return "category:" + s.CategoryID
}

// String descripción legible del scope para findings y mensajes.
func (s QuotaScope) String() string { return s.Key() }

// CapacityQuota cupo diario de capacidad para un scope. Consumed solo lo muta la
// reserva atómica del gate de admisión; nunca se decrementa salvo por una acción
// compensatoria explícita (release, borrado o reset administrativo).
type CapacityQuota struct {
	ID                    string
	Date                  time.Time // día, sin componente horaria (UTC)
	ProductID             string    // exactamente uno de ProductID/CategoryID
	CategoryID            string
	Limit                 decimal.Decimal // cantidad canónica máxima admitida ese día
	Unit                  string          // unidad canónica del límite
	Consumed              decimal.Decimal // total ya admitido para ese scope/día
	AlertThresholdPercent int             // ej. 80: al alcanzarlo se marca advertencia
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Scope devuelve el scope del cupo.
func (q *CapacityQuota) Scope() QuotaScope {
	return QuotaScope{ProductID: q.ProductID, CategoryID: q.CategoryID}
}

// ThresholdQuantity cantidad a partir de la cual se emite advertencia: Limit * pct / 100.
func (q *CapacityQuota) ThresholdQuantity() decimal.Decimal {
	return q.Limit.Mul(decimal.NewFromInt(int64(q.AlertThresholdPercent))).Div(decimal.NewFromInt(100))
}

// Available cantidad aún disponible: Limit - Consumed (puede ser negativa si hubo override).
func (q *CapacityQuota) Available() decimal.Decimal {
	return q.Limit.Sub(q.Consumed)
}

// DayOf normaliza un instante al día UTC correspondiente, la granularidad de los cupos.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
