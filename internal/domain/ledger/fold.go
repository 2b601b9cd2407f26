package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mdessi/pastificio-api/internal/domain/entity"
)

// Snapshot saldo derivado de un ítem. Raw es la suma con signo completa (registro
// de auditoría); Displayable es Raw con piso en cero, solo para vistas de stock bajo.
// Nunca se persiste como fuente de verdad: se recalcula plegando el libro.
type Snapshot struct {
	ItemKey     string
	Raw         decimal.Decimal
	Displayable decimal.Decimal
	AsOf        time.Time
}

// Fold pliega una secuencia de movimientos en la suma con signo. Reducción pura
// y conmutativa: el orden de aplicación no cambia el resultado, y re-plegar el
// mismo conjunto reproduce cualquier snapshot cacheado.
func Fold(movements []*entity.StockMovement) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		total = total.Add(m.SignedQuantity())
	}
	return total
}

// Displayable aplica el piso en cero para vistas. Transformación de solo
// presentación: la suma cruda se conserva como registro de auditoría.
func Displayable(raw decimal.Decimal) decimal.Decimal {
	if raw.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return raw
}

// SnapshotOf construye el snapshot de un ítem a partir de su suma con signo.
func SnapshotOf(itemKey string, raw decimal.Decimal) Snapshot {
	return Snapshot{
		ItemKey:     itemKey,
		Raw:         raw,
		Displayable: Displayable(raw),
		AsOf:        time.Now(),
	}
}
