package dto

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/hongminglow/cabot-property-api/internal/models"
)

type CreateWorkOrderRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	ProblemCategory string `json:"problemCategory"`
	Urgency         string `json:"urgency"`
}

// Normalize trims every field and applies the default urgency.
func (r *CreateWorkOrderRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.ProblemCategory = strings.TrimSpace(r.ProblemCategory)
	r.Urgency = strings.TrimSpace(r.Urgency)
	if r.Urgency == "" {
		r.Urgency = models.DefaultUrgency
	}
}

func (r CreateWorkOrderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Required, validation.Length(1, 4000)),
		validation.Field(&r.ProblemCategory, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Urgency, validation.Length(0, 50)),
	)
}

type UpdateStatusRequest struct {
	Status models.WorkOrderStatus `json:"status"`
}

func (r UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.In(
			models.StatusAwaitingApproval, models.StatusInProgress, models.StatusClosed,
		)),
	)
}

type WorkOrderListResponse struct {
	Success    bool               `json:"success"`
	WorkOrders []models.WorkOrder `json:"workOrders"`
}

type WorkOrderResponse struct {
	Success             bool             `json:"success"`
	Message             string           `json:"message"`
	WorkOrder           models.WorkOrder `json:"workOrder"`
	AutomationTriggered bool             `json:"automationTriggered"`
}
