package admission

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mdessi/pastificio-api/internal/domain"
	"github.com/mdessi/pastificio-api/internal/domain/entity"
	"github.com/mdessi/pastificio-api/internal/domain/repository"
)

// Estados terminales de la admisión de un pedido.
const (
	StatusAdmitted            = "ADMITTED"
	StatusAdmittedWithWarning = "ADMITTED_WITH_WARNING"
	StatusRejected            = "REJECTED"
)

// Clases de finding por scope.
const (
	FindingWarning = "WARNING"
	FindingReject  = "REJECT"
)

// maxReserveAttempts reintentos ante contención antes de devolver ErrQuotaContention.
const maxReserveAttempts = 3

// LineCandidate línea de pedido ya normalizada, lista para evaluar contra cupos.
// CategoryID puede ser vacío si el producto no pertenece a ninguna categoría.
type LineCandidate struct {
	ProductID         string
	CategoryID        string
	CanonicalQuantity decimal.Decimal
}

// Finding hallazgo por (scope) evaluado: advertencia de cercanía al límite o
// rechazo con el déficit exacto, para que el caller pueda mostrar un mensaje preciso.
type Finding struct {
	Scope           entity.QuotaScope
	Kind            string          // WARNING | REJECT
	Requested       decimal.Decimal // contribución del pedido a ese scope
	Available       decimal.Decimal // Limit - Consumed antes del pedido
	Shortfall       decimal.Decimal // prospectivo - Limit (solo REJECT)
	ConsumedPercent decimal.Decimal // % del límite que quedaría consumido
}

// Result resultado estructurado de la admisión. REJECTED es un resultado de
// negocio esperado y frecuente, nunca un error: los errores quedan para fallos
// de infraestructura.
type Result struct {
	Status   string
	Findings []Finding
}

// Gate evalúa un pedido candidato contra los cupos diarios configurados y, si
// lo admite, reserva atómicamente la capacidad consumida de cada scope tocado.
type Gate struct {
	txRunner TxRunner
}

// NewGate construye el gate de admisión.
func NewGate(txRunner TxRunner) *Gate {
	return &Gate{txRunner: txRunner}
}

// errRejected sentinela interno: fuerza el rollback de la transacción cuando la
// decisión es REJECTED sin override, dejando Consumed intacto.
var errRejected = errors.New("admisión rechazada")

// scopeContribution cantidad canónica agregada que el pedido aporta a un scope.
// Líneas que comparten scope se suman antes de comparar contra el límite.
type scopeContribution struct {
	scope entity.QuotaScope
	qty   decimal.Decimal
}

// Admit evalúa y reserva en una transacción propia, con reintentos acotados ante
// contención. Dos admisiones concurrentes sobre el mismo (fecha, scope) quedan
// linealizadas por el bloqueo de fila; nunca hay lost update sobre Consumed.
func (g *Gate) Admit(ctx context.Context, date time.Time, lines []LineCandidate, override bool) (*Result, error) {
	contribs, err := groupByScope(lines)
	if err != nil {
		return nil, err
	}
	day := entity.DayOf(date)

	var result *Result
	for attempt := 0; attempt < maxReserveAttempts; attempt++ {
		result = nil
		err = g.txRunner.Run(ctx, func(quotaRepo repository.QuotaRepository) error {
			r, inErr := g.evaluateAndReserve(quotaRepo, day, contribs, override)
			if inErr != nil {
				return inErr
			}
			result = r
			if r.Status == StatusRejected {
				return errRejected
			}
			return nil
		})
		if errors.Is(err, domain.ErrQuotaContention) {
			continue
		}
		break
	}
	if errors.Is(err, errRejected) {
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AdmitInTx evalúa y reserva usando el repositorio de cupos del caller (misma
// transacción). Si devuelve REJECTED el caller debe abortar su transacción para
// descartar las reservas. Usado por el servicio de pedidos para que admisión y
// persistencia del pedido sean una sola unidad atómica.
func (g *Gate) AdmitInTx(quotaRepo repository.QuotaRepository, date time.Time, lines []LineCandidate, override bool) (*Result, error) {
	contribs, err := groupByScope(lines)
	if err != nil {
		return nil, err
	}
	return g.evaluateAndReserve(quotaRepo, entity.DayOf(date), contribs, override)
}

// Release reversa las reservas de una admisión previa (pedido cancelado o
// editado). Idempotencia con Reserve: release + reserve de la misma cantidad
// restaura Consumed exactamente.
func (g *Gate) Release(ctx context.Context, date time.Time, lines []LineCandidate) error {
	var err error
	for attempt := 0; attempt < maxReserveAttempts; attempt++ {
		err = g.txRunner.Run(ctx, func(quotaRepo repository.QuotaRepository) error {
			return g.ReleaseInTx(quotaRepo, date, lines)
		})
		if errors.Is(err, domain.ErrQuotaContention) {
			continue
		}
		break
	}
	return err
}

// ReleaseInTx reversa reservas usando el repositorio del caller (misma transacción).
func (g *Gate) ReleaseInTx(quotaRepo repository.QuotaRepository, date time.Time, lines []LineCandidate) error {
	contribs, err := groupByScope(lines)
	if err != nil {
		return err
	}
	day := entity.DayOf(date)
	for _, c := range contribs {
		quota, err := quotaRepo.GetForUpdate(day, c.scope)
		if err != nil {
			return err
		}
		if quota == nil {
			// el cupo pudo haberse borrado administrativamente después de admitir
			continue
		}
		if err := quotaRepo.AddConsumed(quota.ID, c.qty.Neg()); err != nil {
			return err
		}
	}
	return nil
}

// evaluateAndReserve recorre los scopes en orden determinista de clave (evita
// deadlocks entre admisiones concurrentes), bloquea cada fila de cupo, acumula
// findings y, si la decisión es admitir, incrementa Consumed de cada scope.
func (g *Gate) evaluateAndReserve(quotaRepo repository.QuotaRepository, day time.Time, contribs []scopeContribution, override bool) (*Result, error) {
	var findings []Finding
	type reservation struct {
		quotaID string
		qty     decimal.Decimal
	}
	var reservations []reservation
	anyReject := false
	anyWarning := false

	hundred := decimal.NewFromInt(100)
	for _, c := range contribs {
		quota, err := quotaRepo.GetForUpdate(day, c.scope)
		if err != nil {
			return nil, err
		}
		if quota == nil {
			// sin cupo configurado: sin límite para ese scope, ningún finding
			continue
		}
		reservations = append(reservations, reservation{quotaID: quota.ID, qty: c.qty})

		prospective := quota.Consumed.Add(c.qty)
		switch {
		case prospective.GreaterThan(quota.Limit):
			anyReject = true
			findings = append(findings, Finding{
				Scope:           quota.Scope(),
				Kind:            FindingReject,
				Requested:       c.qty,
				Available:       quota.Available(),
				Shortfall:       prospective.Sub(quota.Limit),
				ConsumedPercent: percentOf(prospective, quota.Limit, hundred),
			})
		case prospective.GreaterThanOrEqual(quota.ThresholdQuantity()):
			anyWarning = true
			findings = append(findings, Finding{
				Scope:           quota.Scope(),
				Kind:            FindingWarning,
				Requested:       c.qty,
				Available:       quota.Available(),
				ConsumedPercent: percentOf(prospective, quota.Limit, hundred),
			})
		}
	}

	if anyReject && !override {
		return &Result{Status: StatusRejected, Findings: findings}, nil
	}

	for _, r := range reservations {
		if err := quotaRepo.AddConsumed(r.quotaID, r.qty); err != nil {
			return nil, err
		}
	}

	status := StatusAdmitted
	if anyReject || anyWarning {
		status = StatusAdmittedWithWarning
	}
	return &Result{Status: status, Findings: findings}, nil
}

// groupByScope agrega las contribuciones por scope de producto y de categoría,
// y devuelve la lista ordenada por clave para un orden de bloqueo estable.
func groupByScope(lines []LineCandidate) ([]scopeContribution, error) {
	byKey := make(map[string]*scopeContribution)
	add := func(scope entity.QuotaScope, qty decimal.Decimal) {
		key := scope.Key()
		if c, ok := byKey[key]; ok {
			c.qty = c.qty.Add(qty)
			return
		}
		byKey[key] = &scopeContribution{scope: scope, qty: qty}
	}
	for _, line := range lines {
		if line.ProductID == "" || line.CanonicalQuantity.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		add(entity.ProductScope(line.ProductID), line.CanonicalQuantity)
		if line.CategoryID != "" {
			add(entity.CategoryScope(line.CategoryID), line.CanonicalQuantity)
		}
	}
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]scopeContribution, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	return out, nil
}

func percentOf(qty, limit, hundred decimal.Decimal) decimal.Decimal {
	if !limit.GreaterThan(decimal.Zero) {
		return decimal.Zero
	}
	return qty.Mul(hundred).Div(limit)
}
