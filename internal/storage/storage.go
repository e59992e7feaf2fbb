package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hongminglow/cabot-property-api/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrConflict indicates the record is in a state that forbids the write.
var ErrConflict = errors.New("record state conflict")

// UserStore is the principal directory consulted during login.
type UserStore interface {
	// FindActiveByLoginName matches the name case-insensitively against
	// username or email, restricted to active principals.
	FindActiveByLoginName(ctx context.Context, loginName string) (models.User, error)
}

// UserProvisioner creates principals; only the setup command uses it.
type UserProvisioner interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
}

// WorkOrderFilter narrows List. A nil TenantID lists every work order.
type WorkOrderFilter struct {
	TenantID *int64
}

// WorkOrderStore persists work orders.
type WorkOrderStore interface {
	ListWorkOrders(ctx context.Context, filter WorkOrderFilter) ([]models.WorkOrder, error)
	// CreateWorkOrder assigns ID and TicketNumber and returns the stored row.
	CreateWorkOrder(ctx context.Context, wo models.WorkOrder) (models.WorkOrder, error)
	GetWorkOrder(ctx context.Context, id int64) (models.WorkOrder, error)
	// UpdateWorkOrderStatus refuses to modify a closed work order with
	// ErrConflict; the check and the write are a single atomic step.
	UpdateWorkOrderStatus(ctx context.Context, id int64, status models.WorkOrderStatus, completedAt *time.Time) (models.WorkOrder, error)
}
