package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mdessi/pastificio-api/internal/domain"
	"github.com/mdessi/pastificio-api/internal/domain/entity"
	"github.com/mdessi/pastificio-api/internal/domain/repository"
)

var _ repository.QuotaRepository = (*QuotaRepo)(nil)

// QuotaRepo implementación de QuotaRepository sobre PostgreSQL (usable con pool
// o tx). La reserva atómica se apoya en SELECT FOR UPDATE dentro de la tx del
// caller; los errores de bloqueo/serialización se traducen a ErrQuotaContention.
type QuotaRepo struct {
	q Querier
}

// NewQuotaRepository construye el adaptador de cupos. Pasar pool o tx (Querier).
func NewQuotaRepository(q Querier) *QuotaRepo {
	return &QuotaRepo{q: q}
}

const quotaColumns = "id, date, product_id, category_id, quota_limit, unit, consumed, alert_threshold_percent, created_at, updated_at"

// Create persiste un cupo. ErrDuplicate si ya existe para (fecha, scope).
func (r *QuotaRepo) Create(quota *entity.CapacityQuota) error {
	query := `
		INSERT INTO capacity_quotas (id, date, product_id, category_id, quota_limit, unit, consumed, alert_threshold_percent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		quota.ID, quota.Date, nullable(quota.ProductID), nullable(quota.CategoryID),
		quota.Limit, quota.Unit, quota.Consumed, quota.AlertThresholdPercent,
		quota.CreatedAt, quota.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert quota: %w", err)
	}
	return nil
}

// Get obtiene el cupo de un (día, scope). (nil, nil) si no existe.
func (r *QuotaRepo) Get(date time.Time, scope entity.QuotaScope) (*entity.CapacityQuota, error) {
	return r.get(date, scope, false)
}

// GetForUpdate obtiene el cupo bloqueando la fila (SELECT FOR UPDATE) hasta el
// fin de la transacción. (nil, nil) si no hay cupo: ausencia = sin límite.
func (r *QuotaRepo) GetForUpdate(date time.Time, scope entity.QuotaScope) (*entity.CapacityQuota, error) {
	return r.get(date, scope, true)
}

func (r *QuotaRepo) get(date time.Time, scope entity.QuotaScope, forUpdate bool) (*entity.CapacityQuota, error) {
	query := "SELECT " + quotaColumns + " FROM capacity_quotas WHERE date = $1"
	args := []any{date}
	if scope.ProductID != "" {
		query += " AND product_id = $2"
		args = append(args, scope.ProductID)
	} else {
		query += " AND category_id = $2"
		args = append(args, scope.CategoryID)
	}
	if forUpdate {
		query += " FOR UPDATE"
	}
	q, err := scanQuota(r.q.QueryRow(context.Background(), query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isLockContention(err) {
			return nil, domain.ErrQuotaContention
		}
		return nil, fmt.Errorf("get quota: %w", err)
	}
	return q, nil
}

// AddConsumed incrementa el contador consumido; un delta negativo decrementa
// con piso en cero (el release nunca deja consumo negativo).
func (r *QuotaRepo) AddConsumed(id string, delta decimal.Decimal) error {
	query := `
		UPDATE capacity_quotas
		SET consumed = GREATEST(0, consumed + $2), updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, delta)
	if err != nil {
		if isLockContention(err) {
			return domain.ErrQuotaContention
		}
		return fmt.Errorf("add consumed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateLimits reescribe límite/unidad/umbral preservando Consumed.
func (r *QuotaRepo) UpdateLimits(quota *entity.CapacityQuota) error {
	query := `
		UPDATE capacity_quotas
		SET quota_limit = $2, unit = $3, alert_threshold_percent = $4, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		quota.ID, quota.Limit, quota.Unit, quota.AlertThresholdPercent)
	if err != nil {
		return fmt.Errorf("update quota limits: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByDate lista los cupos de un día.
func (r *QuotaRepo) ListByDate(date time.Time) ([]*entity.CapacityQuota, error) {
	query := "SELECT " + quotaColumns + " FROM capacity_quotas WHERE date = $1 ORDER BY product_id NULLS LAST, category_id"
	return r.list(query, date)
}

// ListByRange lista los cupos de un rango de días.
func (r *QuotaRepo) ListByRange(from, to time.Time) ([]*entity.CapacityQuota, error) {
	query := "SELECT " + quotaColumns + " FROM capacity_quotas WHERE date >= $1 AND date <= $2 ORDER BY date"
	return r.list(query, from, to)
}

// Delete elimina un cupo (acción administrativa).
func (r *QuotaRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), "DELETE FROM capacity_quotas WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete quota: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *QuotaRepo) list(query string, args ...any) ([]*entity.CapacityQuota, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quotas: %w", err)
	}
	defer rows.Close()
	var list []*entity.CapacityQuota
	for rows.Next() {
		q, err := scanQuota(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quota: %w", err)
		}
		list = append(list, q)
	}
	return list, rows.Err()
}

func scanQuota(row pgx.Row) (*entity.CapacityQuota, error) {
	var q entity.CapacityQuota
	var productID, categoryID *string
	err := row.Scan(&q.ID, &q.Date, &productID, &categoryID, &q.Limit, &q.Unit,
		&q.Consumed, &q.AlertThresholdPercent, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if productID != nil {
		q.ProductID = *productID
	}
	if categoryID != nil {
		q.CategoryID = *categoryID
	}
	return &q, nil
}

// nullable convierte string vacío a NULL para columnas opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
