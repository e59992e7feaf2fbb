package models

import (
	"fmt"
	"time"
)

// WorkOrderStatus tracks a work order through its lifecycle.
type WorkOrderStatus string

const (
	StatusAwaitingApproval WorkOrderStatus = "awaiting_approval"
	StatusInProgress       WorkOrderStatus = "in_progress"
	StatusClosed           WorkOrderStatus = "closed"
)

// DefaultUrgency applies when a request omits urgency.
const DefaultUrgency = "Standard"

// WorkOrderDueIn is the default window between filing and due date.
const WorkOrderDueIn = 7 * 24 * time.Hour

// Valid reports whether s is a known status.
func (s WorkOrderStatus) Valid() bool {
	switch s {
	case StatusAwaitingApproval, StatusInProgress, StatusClosed:
		return true
	}
	return false
}

// WorkOrder is a maintenance request filed by a tenant.
type WorkOrder struct {
	ID              int64           `json:"id"`
	TicketNumber    string          `json:"ticketNumber"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	ProblemCategory string          `json:"problemCategory"`
	Urgency         string          `json:"urgency"`
	Status          WorkOrderStatus `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	DueDate         time.Time       `json:"dueDate"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
	TenantID        int64           `json:"tenantId"`
	AssignedTech    *string         `json:"assignedTech"`
}

// TicketNumber formats the public ticket identifier, e.g. WO-2024-000042.
func TicketNumber(year int, seq int64) string {
	return fmt.Sprintf("WO-%d-%06d", year, seq)
}
