// Package fixture is the static development backend selected with
// AUTH_BACKEND=fixture. It is never used as a fallback for a failing
// database.
package fixture

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hongminglow/cabot-property-api/internal/auth"
	"github.com/hongminglow/cabot-property-api/internal/models"
	"github.com/hongminglow/cabot-property-api/internal/storage"
)

var (
	_ storage.UserStore      = (*Store)(nil)
	_ storage.WorkOrderStore = (*Store)(nil)
)

// Principals is the development principal set. Digests are filled in by New.
func Principals() []models.User {
	return []models.User{
		{ID: 1, Username: "tenant1", Email: "tenant@cabot.com", FirstName: "John", LastName: "Doe",
			Role: models.RoleTenant, Organization: "ABC Company", Phone: "(585) 123-4567", Active: true},
		{ID: 2, Username: "tech1", Email: "tech@cabot.com", FirstName: "Jane", LastName: "Smith",
			Role: models.RoleTechnician, Phone: "(585) 987-6543", Active: true},
		{ID: 3, Username: "manager1", Email: "manager@cabot.com", FirstName: "Mike", LastName: "Johnson",
			Role: models.RoleManager, Phone: "(585) 555-0123", Active: true},
	}
}

// Store keeps principals and work orders in memory.
type Store struct {
	users []models.User

	mu         sync.Mutex
	workOrders []models.WorkOrder
	nextID     int64
}

// New hashes password for every fixture principal with the given bcrypt
// cost (0 means bcrypt.DefaultCost) and seeds a few work orders.
func New(password string, cost int) (*Store, error) {
	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return nil, fmt.Errorf("hash fixture password: %w", err)
	}
	users := Principals()
	for i := range users {
		users[i].PasswordHash = hash
		users[i].CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	s := &Store{users: users}
	s.workOrders = seedWorkOrders()
	s.nextID = int64(len(s.workOrders)) + 1
	return s, nil
}

// NewWithUsers builds a store over an explicit principal set and no work orders.
func NewWithUsers(users []models.User) *Store {
	return &Store{users: append([]models.User(nil), users...), nextID: 1}
}

// FindActiveByLoginName matches username or email case-insensitively.
func (s *Store) FindActiveByLoginName(_ context.Context, loginName string) (models.User, error) {
	name := strings.TrimSpace(loginName)
	for _, u := range s.users {
		if !u.Active {
			continue
		}
		if strings.EqualFold(u.Username, name) || strings.EqualFold(u.Email, name) {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) ListWorkOrders(_ context.Context, filter storage.WorkOrderFilter) ([]models.WorkOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.WorkOrder, 0, len(s.workOrders))
	for _, wo := range s.workOrders {
		if filter.TenantID != nil && wo.TenantID != *filter.TenantID {
			continue
		}
		out = append(out, wo)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) CreateWorkOrder(_ context.Context, wo models.WorkOrder) (models.WorkOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wo.ID = s.nextID
	wo.TicketNumber = models.TicketNumber(wo.CreatedAt.Year(), s.nextID)
	s.nextID++
	s.workOrders = append(s.workOrders, wo)
	return wo, nil
}

func (s *Store) GetWorkOrder(_ context.Context, id int64) (models.WorkOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, wo := range s.workOrders {
		if wo.ID == id {
			return wo, nil
		}
	}
	return models.WorkOrder{}, storage.ErrNotFound
}

func (s *Store) UpdateWorkOrderStatus(_ context.Context, id int64, status models.WorkOrderStatus, completedAt *time.Time) (models.WorkOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.workOrders {
		if s.workOrders[i].ID == id {
			if s.workOrders[i].Status == models.StatusClosed {
				return models.WorkOrder{}, storage.ErrConflict
			}
			s.workOrders[i].Status = status
			s.workOrders[i].CompletedAt = completedAt
			return s.workOrders[i], nil
		}
	}
	return models.WorkOrder{}, storage.ErrNotFound
}

func seedWorkOrders() []models.WorkOrder {
	smith, johnson := "John Smith", "Mike Johnson"
	completed := time.Date(2024, 1, 22, 16, 30, 0, 0, time.UTC)
	return []models.WorkOrder{
		{ID: 1, TicketNumber: "WO-2024-000001", Title: "Kitchen Faucet Repair",
			Description: "Kitchen faucet is leaking and needs repair", ProblemCategory: "Urgent (2-3 days)",
			Urgency: models.DefaultUrgency, Status: models.StatusInProgress,
			CreatedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), DueDate: time.Date(2024, 1, 17, 17, 0, 0, 0, time.UTC),
			TenantID: 1, AssignedTech: &smith},
		{ID: 2, TicketNumber: "WO-2024-000002", Title: "Bathroom Light Fixture",
			Description: "Light fixture in master bathroom not working", ProblemCategory: "Standard (1 week)",
			Urgency: models.DefaultUrgency, Status: models.StatusAwaitingApproval,
			CreatedAt: time.Date(2024, 1, 20, 14, 15, 0, 0, time.UTC), DueDate: time.Date(2024, 1, 27, 17, 0, 0, 0, time.UTC),
			TenantID: 1},
		{ID: 3, TicketNumber: "WO-2024-000003", Title: "HVAC Maintenance",
			Description: "Annual HVAC system maintenance and filter replacement", ProblemCategory: "Routine (2 weeks)",
			Urgency: models.DefaultUrgency, Status: models.StatusClosed,
			CreatedAt: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC), DueDate: time.Date(2024, 1, 24, 17, 0, 0, 0, time.UTC),
			CompletedAt: &completed, TenantID: 1, AssignedTech: &johnson},
	}
}
