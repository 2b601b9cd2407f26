package admission_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdessi/pastificio-api/internal/application/admission"
	"github.com/mdessi/pastificio-api/internal/domain/entity"
	"github.com/mdessi/pastificio-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var deliveryDay = time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

// newGate construye un gate sobre un almacén en memoria limpio.
func newGate(t *testing.T) (*admission.Gate, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return admission.NewGate(memory.NewTxRunner(store)), store
}

// seedQuota da de alta un cupo de producto con el consumo inicial indicado.
func seedQuota(t *testing.T, store *memory.Store, productID, limit, consumed string, thresholdPct int) *entity.CapacityQuota {
	t.Helper()
	q := &entity.CapacityQuota{
		ID:                    "quota-" + productID,
		Date:                  deliveryDay,
		ProductID:             productID,
		Limit:                 decimal.RequireFromString(limit),
		Unit:                  entity.UnitKilogram,
		Consumed:              decimal.RequireFromString(consumed),
		AlertThresholdPercent: thresholdPct,
	}
	require.NoError(t, memory.NewQuotaRepository(store).Create(q))
	return q
}

func seedCategoryQuota(t *testing.T, store *memory.Store, categoryID, limit, consumed string, thresholdPct int) *entity.CapacityQuota {
	t.Helper()
	q := &entity.CapacityQuota{
		ID:                    "quota-" + categoryID,
		Date:                  deliveryDay,
		CategoryID:            categoryID,
		Limit:                 decimal.RequireFromString(limit),
		Unit:                  entity.UnitKilogram,
		Consumed:              decimal.RequireFromString(consumed),
		AlertThresholdPercent: thresholdPct,
	}
	require.NoError(t, memory.NewQuotaRepository(store).Create(q))
	return q
}

func line(productID, categoryID, qty string) admission.LineCandidate {
	return admission.LineCandidate{
		ProductID:         productID,
		CategoryID:        categoryID,
		CanonicalQuantity: decimal.RequireFromString(qty),
	}
}

// consumedOf relee el consumo corriente del cupo.
func consumedOf(t *testing.T, store *memory.Store, q *entity.CapacityQuota) decimal.Decimal {
	t.Helper()
	got, err := memory.NewQuotaRepository(store).Get(deliveryDay, q.Scope())
	require.NoError(t, err)
	require.NotNil(t, got)
	return got.Consumed
}

// ──────────────────────────────────────────────────────────────────────────────
// Admisión, advertencia y rechazo
// ──────────────────────────────────────────────────────────────────────────────

// Pedido que cabe holgado: admitido sin findings y con la capacidad reservada.
func TestAdmit_BajoCupoReservaYAdmite(t *testing.T) {
	gate, store := newGate(t)
	q := seedQuota(t, store, "prod-1", "60", "0", 80)

	result, err := gate.Admit(context.Background(), deliveryDay, []admission.LineCandidate{
		line("prod-1", "", "10"),
	}, false)
	require.NoError(t, err)

	assert.Equal(t, admission.StatusAdmitted, result.Status)
	assert.Empty(t, result.Findings)
	assert.True(t, consumedOf(t, store, q).Equal(decimal.NewFromInt(10)))
}

// Con 55 de 60 consumidos, pedir 3 más cruza el umbral del 80%: se admite con
// advertencia y el consumo queda en 58.
func TestAdmit_CercaDelLimiteAdvierteYReserva(t *testing.T) {
	gate, store := newGate(t)
	q := seedQuota(t, store, "prod-1", "60", "55", 80)

	result, err := gate.Admit(context.Background(), deliveryDay, []admission.LineCandidate{
		line("prod-1", "", "3"),
	}, false)
	require.NoError(t, err)

	assert.Equal(t, admission.StatusAdmittedWithWarning, result.Status)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, admission.FindingWarning, result.Findings[0].Kind)
	assert.True(t, consumedOf(t, store, q).Equal(decimal.NewFromInt(58)))
}

// Con 55 de 60 consumidos, pedir 10 sobrepasa el límite: rechazado con el
// déficit exacto y sin tocar el consumo.
func TestAdmit_SobreLimiteRechazaSinReservar(t *testing.T) {
	gate, store := newGate(t)
	q := seedQuota(t, store, "prod-1", "60", "55", 80)

	result, err := gate.Admit(context.Background(), deliveryDay, []admission.LineCandidate{
		line("prod-1", "", "10"),
	}, false)
	require.NoError(t, err, "el rechazo es un resultado de negocio, no un error")

	assert.Equal(t, admission.StatusRejected, result.Status)
	require.Len(t, result.Findings, 1)
	f := result.Findings[0]
	assert.Equal(t, admission.FindingReject, f.Kind)
	assert.True(t, f.Shortfall.Equal(decimal.NewFromInt(5)), "déficit 65-60=5, obtuvo %s", f.Shortfall)
	assert.True(t, f.Available.Equal(decimal.NewFromInt(5)))
	assert.True(t, consumedOf(t, store, q).Equal(decimal.NewFromInt(55)),
		"un rechazo nunca muta el consumo")
}

// Sin cupo configurado no hay límite: se admite sin findings.
func TestAdmit_SinCupoConfiguradoAdmiteSinFindings(t *testing.T) {
	gate, _ := newGate(t)

	result, err := gate.Admit(context.Background(), deliveryDay, []admission.LineCandidate{
		line("prod-sin-cupo", "", "1000"),
	}, false)
	require.NoError(t, err)

	assert.Equal(t, admission.StatusAdmitted, result.Status)
	assert.Empty(t, result.Findings)
}

// Borde exacto: prospectivo == límite se admite (con advertencia por el umbral);
// una unidad más se rechaza.
func TestAdmit_BordeExactoDelLimite(t *testing.T) {
	gate, store := newGate(t)
	q := seedQuota(t, store, "prod-1", "60", "55", 80)

	result, err := gate.Admit(context.Background(), deliveryDay, []admission.LineCandidate{
		line("prod-1", "", "5"),
	}, false)
	require.NoError(t, err)
	assert.Equal(t, admission.StatusAdmittedWithWarning, result.Status,
		"llegar exactamente al límite admite")
	assert.True(t, consumedOf(t, store, q).Equal(decimal.NewFromInt(60)))

	result, err = gate.Admit(context.Background(), deliveryDay, []admission.LineCandidate{
		line("prod-1", "", "0.001"),
	}, false)
	require.NoError(t, err)
	assert.Equal(t, admission.StatusRejected, result.Status,
		"cualquier exceso sobre el límite rechaza")
}

// Con override el operador admite aun sobrepasando: el finding REJECT se
// conserva para trazabilidad y el consumo queda por encima del límite.
func TestAdmit_OverrideAdmiteSobreElLimite(t *testing.T) {
	gate, store := newGate(t)
	q := seedQuota(t, store, "prod-1", "60", "55", 80)

	result, err := gate.Admit(context.Background(), deliveryDay, []admission.LineCandidate{
		line("prod-1", "", "10"),
	}, true)
	require.NoError(t, err)

	assert.Equal(t, admission.StatusAdmittedWithWarning, result.Status)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, admission.FindingReject, result.Findings[0].Kind)
	assert.True(t, consumedOf(t, store, q).Equal(decimal.NewFromInt(65)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Scopes múltiples
// ──────────────────────────────────────────────────────────────────────────────

// Un pedido contribuye al cupo del producto y al de su categoría; si cualquiera
// de los dos no cabe, el pedido completo se rechaza y ningún cupo se reserva.
func TestAdmit_RechazoPorCategoriaNoReservaNada(t *testing.T) {
	gate, store := newGate(t)
	qProd := seedQuota(t, store, "prod-1", "100", "0", 80)
	qCat := seedCategoryQuota(t, store, "cat-dulces", "20", "15", 80)

	result, err := gate.Admit(context.Background(), deliveryDay, []admission.LineCandidate{
		line("prod-1", "cat-dulces", "10"),
	}, false)
	require.NoError(t, err)

	assert.Equal(t, admission.StatusRejected, result.Status)
	assert.True(t, consumedOf(t, store, qProd).Equal(decimal.Zero),
		"el cupo de producto no debe reservarse si la categoría rechaza")
	assert.True(t, consumedOf(t, store, qCat).Equal(decimal.NewFromInt(15)))
}

// Líneas que comparten producto se agregan antes de comparar contra el límite.
func TestAdmit_LineasDelMismoProductoSeAgregan(t *testing.T) {
	gate, store := newGate(t)
	seedQuota(t, store, "prod-1", "10", "0", 100)

	result, err := gate.Admit(context.Background(), deliveryDay, []admission.LineCandidate{
		line("prod-1", "", "6"),
		line("prod-1", "", "6"),
	}, false)
	require.NoError(t, err)

	assert.Equal(t, admission.StatusRejected, result.Status,
		"6+6=12 agregado sobre un límite de 10 debe rechazar")
}

// ──────────────────────────────────────────────────────────────────────────────
// Release
// ──────────────────────────────────────────────────────────────────────────────

// release + reserve de la misma cantidad restaura el consumo exactamente.
func TestRelease_ReversaLaReserva(t *testing.T) {
	gate, store := newGate(t)
	q := seedQuota(t, store, "prod-1", "60", "0", 80)

	lines := []admission.LineCandidate{line("prod-1", "", "12")}
	_, err := gate.Admit(context.Background(), deliveryDay, lines, false)
	require.NoError(t, err)
	require.True(t, consumedOf(t, store, q).Equal(decimal.NewFromInt(12)))

	require.NoError(t, gate.Release(context.Background(), deliveryDay, lines))
	assert.True(t, consumedOf(t, store, q).Equal(decimal.Zero))
}

// El release de un cupo borrado administrativamente no falla.
func TestRelease_CupoBorradoSeIgnora(t *testing.T) {
	gate, store := newGate(t)
	q := seedQuota(t, store, "prod-1", "60", "0", 80)

	lines := []admission.LineCandidate{line("prod-1", "", "12")}
	_, err := gate.Admit(context.Background(), deliveryDay, lines, false)
	require.NoError(t, err)

	require.NoError(t, memory.NewQuotaRepository(store).Delete(q.ID))
	assert.NoError(t, gate.Release(context.Background(), deliveryDay, lines))
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

// Dos admisiones concurrentes que no caben juntas: exactamente una gana.
// La reserva es atómica, nunca hay lost update sobre Consumed.
func TestAdmit_ConcurrentesSoloUnaGana(t *testing.T) {
	gate, store := newGate(t)
	q := seedQuota(t, store, "prod-1", "15", "0", 100)

	lines := []admission.LineCandidate{line("prod-1", "", "10")}
	results := make([]*admission.Result, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := gate.Admit(context.Background(), deliveryDay, lines, false)
			require.NoError(t, err)
			results[i] = r
		}(i)
	}
	wg.Wait()

	admitted, rejected := 0, 0
	for _, r := range results {
		switch r.Status {
		case admission.StatusRejected:
			rejected++
		default:
			admitted++
		}
	}
	assert.Equal(t, 1, admitted, "exactamente una admisión debe ganar")
	assert.Equal(t, 1, rejected)
	assert.True(t, consumedOf(t, store, q).Equal(decimal.NewFromInt(10)),
		"el consumo refleja solo la admisión ganadora")
}

// Muchas reservas concurrentes pequeñas: el consumo final es la suma exacta de
// las admitidas.
func TestAdmit_SinLostUpdateBajoCarga(t *testing.T) {
	gate, store := newGate(t)
	q := seedQuota(t, store, "prod-1", "1000", "0", 100)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := gate.Admit(context.Background(), deliveryDay,
				[]admission.LineCandidate{line("prod-1", "", "1")}, false)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.True(t, consumedOf(t, store, q).Equal(decimal.NewFromInt(workers)),
		"20 reservas de 1 deben dejar el consumo exactamente en 20")
}
