package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mdessi/pastificio-api/internal/domain/entity"
	"github.com/mdessi/pastificio-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). La tabla es append-only: no hay UPDATE ni DELETE.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Append persiste un movimiento. Solo falla por infraestructura.
func (r *StockMovementRepo) Append(movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, item_key, kind, quantity, unit, unit_price, line_value, occurred_at, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	createdBy := (*string)(nil)
	if movement.CreatedBy != "" {
		createdBy = &movement.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.ItemKey, movement.Kind, movement.Quantity, movement.Unit,
		movement.UnitPrice, movement.LineValue, movement.OccurredAt, movement.CreatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("append stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *StockMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	query := `
		SELECT id, item_key, kind, quantity, unit, unit_price, line_value, occurred_at, created_at, created_by
		FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByItem lista movimientos de un ítem en un rango de fechas.
func (r *StockMovementRepo) ListByItem(itemKey string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, item_key, kind, quantity, unit, unit_price, line_value, occurred_at, created_at, created_by
		FROM stock_movements WHERE item_key = $1`
	args := []any{itemKey}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND occurred_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND occurred_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY occurred_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list by item: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// SignedSum fold del libro en SQL: RECEIPT/PHYSICAL_COUNT suman, ISSUE resta,
// ADJUSTMENT conserva el signo registrado. Debe coincidir con ledger.Fold.
func (r *StockMovementRepo) SignedSum(itemKey string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN kind = 'ISSUE' THEN -quantity ELSE quantity END), 0)
		FROM stock_movements WHERE item_key = $1`
	var sum decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, itemKey).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("signed sum: %w", err)
	}
	return sum, nil
}

// SignedSumAll suma con signo por ítem. Los folds por ítem son independientes.
func (r *StockMovementRepo) SignedSumAll() (map[string]decimal.Decimal, error) {
	query := `
		SELECT item_key, COALESCE(SUM(CASE WHEN kind = 'ISSUE' THEN -quantity ELSE quantity END), 0)
		FROM stock_movements GROUP BY item_key`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("signed sum all: %w", err)
	}
	defer rows.Close()
	sums := make(map[string]decimal.Decimal)
	for rows.Next() {
		var itemKey string
		var sum decimal.Decimal
		if err := rows.Scan(&itemKey, &sum); err != nil {
			return nil, fmt.Errorf("scan signed sum: %w", err)
		}
		sums[itemKey] = sum
	}
	return sums, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var createdBy *string
	err := row.Scan(&m.ID, &m.ItemKey, &m.Kind, &m.Quantity, &m.Unit,
		&m.UnitPrice, &m.LineValue, &m.OccurredAt, &m.CreatedAt, &createdBy)
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}
