package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mdessi/pastificio-api/internal/domain"
	"github.com/mdessi/pastificio-api/internal/domain/entity"
	"github.com/mdessi/pastificio-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación del puerto OrderRepository sobre PostgreSQL
// (usable con pool o tx). Las líneas viven en order_lines.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de persistencia para pedidos.
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste el pedido y sus líneas.
func (r *OrderRepo) Create(order *entity.Order) error {
	query := `
		INSERT INTO orders (id, customer_name, date, status, notes, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	createdBy := nullable(order.CreatedBy)
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.CustomerName, order.Date, order.Status, order.Notes,
		order.CreatedAt, order.UpdatedAt, createdBy,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return r.insertLines(order.ID, order.Lines)
}

// GetByID obtiene un pedido con sus líneas.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	query := `
		SELECT id, customer_name, date, status, notes, created_at, updated_at, created_by
		FROM orders WHERE id = $1`
	var o entity.Order
	var createdBy *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&o.ID, &o.CustomerName, &o.Date, &o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt, &createdBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if createdBy != nil {
		o.CreatedBy = *createdBy
	}
	lines, err := r.linesOf(o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

// ListByDate lista los pedidos de un día de entrega (con líneas).
func (r *OrderRepo) ListByDate(date time.Time, limit, offset int) ([]*entity.Order, error) {
	query := `
		SELECT id, customer_name, date, status, notes, created_at, updated_at, created_by
		FROM orders WHERE date = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, date, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		var o entity.Order
		var createdBy *string
		if err := rows.Scan(&o.ID, &o.CustomerName, &o.Date, &o.Status, &o.Notes,
			&o.CreatedAt, &o.UpdatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if createdBy != nil {
			o.CreatedBy = *createdBy
		}
		list = append(list, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range list {
		lines, err := r.linesOf(o.ID)
		if err != nil {
			return nil, err
		}
		o.Lines = lines
	}
	return list, nil
}

// Update reescribe cabecera y estado del pedido (no las líneas).
func (r *OrderRepo) Update(order *entity.Order) error {
	query := `
		UPDATE orders SET customer_name = $2, date = $3, status = $4, notes = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		order.ID, order.CustomerName, order.Date, order.Status, order.Notes, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStatus cambia solo el estado del pedido.
func (r *OrderRepo) UpdateStatus(id, status string) error {
	tag, err := r.q.Exec(context.Background(),
		"UPDATE orders SET status = $2, updated_at = now() WHERE id = $1", id, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ReplaceLines borra e inserta las líneas completas (edición = release + readmit).
func (r *OrderRepo) ReplaceLines(orderID string, lines []entity.OrderLine) error {
	if _, err := r.q.Exec(context.Background(), "DELETE FROM order_lines WHERE order_id = $1", orderID); err != nil {
		return fmt.Errorf("delete order lines: %w", err)
	}
	return r.insertLines(orderID, lines)
}

func (r *OrderRepo) insertLines(orderID string, lines []entity.OrderLine) error {
	query := `
		INSERT INTO order_lines (id, order_id, product_id, category_id, raw_quantity, raw_unit, canonical_quantity, canonical_unit, unit_price, line_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, line := range lines {
		_, err := r.q.Exec(context.Background(), query,
			line.ID, orderID, line.ProductID, nullable(line.CategoryID),
			line.RawQuantity, line.RawUnit, line.CanonicalQuantity, line.CanonicalUnit,
			line.UnitPrice, line.LineValue,
		)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}
	return nil
}

func (r *OrderRepo) linesOf(orderID string) ([]entity.OrderLine, error) {
	query := `
		SELECT id, order_id, product_id, category_id, raw_quantity, raw_unit, canonical_quantity, canonical_unit, unit_price, line_value
		FROM order_lines WHERE order_id = $1`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()
	var lines []entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		var categoryID *string
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &categoryID,
			&l.RawQuantity, &l.RawUnit, &l.CanonicalQuantity, &l.CanonicalUnit,
			&l.UnitPrice, &l.LineValue); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		if categoryID != nil {
			l.CategoryID = *categoryID
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
