package memory

import (
	"context"

	"github.com/mdessi/pastificio-api/internal/application/admission"
	"github.com/mdessi/pastificio-api/internal/application/orders"
	"github.com/mdessi/pastificio-api/internal/domain/repository"
)

var (
	_ admission.TxRunner = (*TxRunner)(nil)
	_ orders.TxRunner    = (*TxRunner)(nil)
)

// TxRunner emula las transacciones de PostgreSQL sobre el Store: serializa las
// transacciones con un mutex (equivale al bloqueo de fila, linealiza las
// reservas) y toma un snapshot del estado antes de ejecutar para poder revertir
// cuando el closure devuelve error (rollback).
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner transaccional en memoria.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn con el repositorio de cupos; error = rollback.
func (t *TxRunner) Run(ctx context.Context, fn func(quotaRepo repository.QuotaRepository) error) error {
	return t.inTx(ctx, func() error {
		return fn(NewQuotaRepository(t.store))
	})
}

// RunOrder ejecuta fn con los repositorios de cupos, pedidos y movimientos
// sobre el mismo estado; error = rollback de los tres.
func (t *TxRunner) RunOrder(ctx context.Context, fn func(
	quotaRepo repository.QuotaRepository,
	orderRepo repository.OrderRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return t.inTx(ctx, func() error {
		return fn(NewQuotaRepository(t.store), NewOrderRepository(t.store), NewStockMovementRepository(t.store))
	})
}

func (t *TxRunner) inTx(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()
	snap := t.store.takeSnapshot()
	if err := fn(); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}
