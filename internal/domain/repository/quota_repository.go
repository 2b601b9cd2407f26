package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mdessi/pastificio-api/internal/domain/entity"
)

// QuotaRepository define el puerto de persistencia de cupos de capacidad.
//
// GetForUpdate + AddConsumed dentro de una transacción forman la unidad atómica
// de reserva: la lectura de Consumed, la comparación contra Limit y la escritura
// del incremento no pueden intercalarse con otra reserva del mismo (fecha, scope).
// La implementación PostgreSQL usa SELECT FOR UPDATE; la de memoria un mutex.
type QuotaRepository interface {
	Create(quota *entity.CapacityQuota) error
	Get(date time.Time, scope entity.QuotaScope) (*entity.CapacityQuota, error)
	// GetForUpdate obtiene el cupo bloqueando la fila hasta el fin de la transacción.
	// Devuelve (nil, nil) si no hay cupo configurado: ausencia = sin límite.
	GetForUpdate(date time.Time, scope entity.QuotaScope) (*entity.CapacityQuota, error)
	// AddConsumed incrementa (o decrementa, delta negativo) el contador consumido.
	// El decremento queda con piso en cero.
	AddConsumed(id string, delta decimal.Decimal) error
	// UpdateLimits reescribe límite/unidad/umbral preservando Consumed.
	UpdateLimits(quota *entity.CapacityQuota) error
	ListByDate(date time.Time) ([]*entity.CapacityQuota, error)
	ListByRange(from, to time.Time) ([]*entity.CapacityQuota, error)
	Delete(id string) error
}
