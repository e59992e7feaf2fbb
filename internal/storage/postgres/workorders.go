package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/hongminglow/cabot-property-api/internal/models"
	"github.com/hongminglow/cabot-property-api/internal/storage"
)

const workOrderColumns = `id, ticket_number, title, description, problem_category, urgency, status,
	created_at, due_date, completed_at, tenant_id, assigned_tech`

type rowScanner interface {
	Scan(dest ...any) error
}

// ListWorkOrders returns work orders newest first.
func (s *Store) ListWorkOrders(ctx context.Context, filter storage.WorkOrderFilter) ([]models.WorkOrder, error) {
	query := `SELECT ` + workOrderColumns + ` FROM work_orders`
	var args []any
	if filter.TenantID != nil {
		query += ` WHERE tenant_id = $1`
		args = append(args, *filter.TenantID)
	}
	query += ` ORDER BY created_at DESC, id DESC;`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	defer rows.Close()

	out := make([]models.WorkOrder, 0)
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work order: %w", err)
		}
		out = append(out, wo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	return out, nil
}

// CreateWorkOrder inserts a work order; the ticket number is drawn from a
// sequence so concurrent inserts never collide.
func (s *Store) CreateWorkOrder(ctx context.Context, wo models.WorkOrder) (models.WorkOrder, error) {
	const query = `
	INSERT INTO work_orders (ticket_number, title, description, problem_category, urgency, status, created_at, due_date, tenant_id, assigned_tech)
	VALUES ('WO-' || $1::text || '-' || lpad(nextval('work_order_ticket_seq')::text, 6, '0'), $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING ` + workOrderColumns + `;
	`
	row := s.db.QueryRowContext(ctx, query,
		strconv.Itoa(wo.CreatedAt.Year()), wo.Title, wo.Description, wo.ProblemCategory, wo.Urgency,
		string(wo.Status), wo.CreatedAt, wo.DueDate, wo.TenantID, wo.AssignedTech,
	)
	created, err := scanWorkOrder(row)
	if err != nil {
		return models.WorkOrder{}, fmt.Errorf("create work order: %w", err)
	}
	return created, nil
}

// GetWorkOrder fetches one work order by id.
func (s *Store) GetWorkOrder(ctx context.Context, id int64) (models.WorkOrder, error) {
	const query = `SELECT ` + workOrderColumns + ` FROM work_orders WHERE id = $1;`
	wo, err := scanWorkOrder(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.WorkOrder{}, storage.ErrNotFound
		}
		return models.WorkOrder{}, fmt.Errorf("get work order: %w", err)
	}
	return wo, nil
}

// UpdateWorkOrderStatus sets the status and completion time of a work order
// that is not yet closed.
func (s *Store) UpdateWorkOrderStatus(ctx context.Context, id int64, status models.WorkOrderStatus, completedAt *time.Time) (models.WorkOrder, error) {
	const query = `
	UPDATE work_orders SET status = $2, completed_at = $3
	WHERE id = $1 AND status <> 'closed'
	RETURNING ` + workOrderColumns + `;
	`
	wo, err := scanWorkOrder(s.db.QueryRowContext(ctx, query, id, string(status), completedAt))
	if err == nil {
		return wo, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.WorkOrder{}, fmt.Errorf("update work order: %w", err)
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM work_orders WHERE id = $1);`, id).Scan(&exists); err != nil {
		return models.WorkOrder{}, fmt.Errorf("update work order: %w", err)
	}
	if !exists {
		return models.WorkOrder{}, storage.ErrNotFound
	}
	return models.WorkOrder{}, storage.ErrConflict
}

func scanWorkOrder(row rowScanner) (models.WorkOrder, error) {
	var (
		wo           models.WorkOrder
		status       string
		completedAt  sql.NullTime
		assignedTech sql.NullString
	)
	if err := row.Scan(&wo.ID, &wo.TicketNumber, &wo.Title, &wo.Description, &wo.ProblemCategory,
		&wo.Urgency, &status, &wo.CreatedAt, &wo.DueDate, &completedAt, &wo.TenantID, &assignedTech); err != nil {
		return models.WorkOrder{}, err
	}
	wo.Status = models.WorkOrderStatus(status)
	if completedAt.Valid {
		t := completedAt.Time
		wo.CompletedAt = &t
	}
	if assignedTech.Valid {
		name := assignedTech.String
		wo.AssignedTech = &name
	}
	return wo, nil
}
