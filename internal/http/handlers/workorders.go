package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/hongminglow/cabot-property-api/internal/auth"
	"github.com/hongminglow/cabot-property-api/internal/http/respond"
	"github.com/hongminglow/cabot-property-api/internal/logging"
	"github.com/hongminglow/cabot-property-api/internal/models"
	"github.com/hongminglow/cabot-property-api/internal/models/dto"
	"github.com/hongminglow/cabot-property-api/internal/notify"
	"github.com/hongminglow/cabot-property-api/internal/storage"
)

const msgAlreadyClosed = "Work order is already closed"

// WorkOrderHooks receives post-commit work order events.
type WorkOrderHooks interface {
	Enabled() bool
	OnWorkOrderCreated(ctx context.Context, wo models.WorkOrder, tenant notify.Actor)
	OnWorkOrderStatusChanged(ctx context.Context, wo models.WorkOrder, from models.WorkOrderStatus, by notify.Actor)
}

// WorkOrderHandler serves the bearer-protected work order routes.
type WorkOrderHandler struct {
	store  storage.WorkOrderStore
	tokens *auth.TokenManager
	hooks  WorkOrderHooks
	log    logging.Logger
	now    func() time.Time
}

// NewWorkOrderHandler constructs the handler.
func NewWorkOrderHandler(store storage.WorkOrderStore, tokens *auth.TokenManager, hooks WorkOrderHooks, log logging.Logger) *WorkOrderHandler {
	return &WorkOrderHandler{store: store, tokens: tokens, hooks: hooks, log: log, now: time.Now}
}

// Register attaches work order routes to the mux.
func (h *WorkOrderHandler) Register(mux *http.ServeMux) {
	mux.Handle("/workorders", RequireBearer(h.tokens, h.log, h.handleCollection))
	mux.Handle("/workorders/{id}/status", RequireBearer(h.tokens, h.log, h.handleStatus))
}

func (h *WorkOrderHandler) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w, "GET, POST, OPTIONS")
	}
}

func (h *WorkOrderHandler) list(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var filter storage.WorkOrderFilter
	if !claims.Role.IsStaff() {
		tenantID := claims.UserID
		filter.TenantID = &tenantID
	}

	workOrders, err := h.store.ListWorkOrders(r.Context(), filter)
	if err != nil {
		h.log.Error(r.Context(), "list work orders failed", "user_id", claims.UserID, "error", err)
		respond.Error(w, http.StatusInternalServerError, msgInternal)
		return
	}
	if workOrders == nil {
		workOrders = []models.WorkOrder{}
	}
	respond.JSON(w, http.StatusOK, dto.WorkOrderListResponse{Success: true, WorkOrders: workOrders})
}

func (h *WorkOrderHandler) create(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.ClaimsFromContext(r.Context())

	var req dto.CreateWorkOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, "Title, description, and problem category are required")
		return
	}

	createdAt := h.now().UTC()
	created, err := h.store.CreateWorkOrder(r.Context(), models.WorkOrder{
		Title:           req.Title,
		Description:     req.Description,
		ProblemCategory: req.ProblemCategory,
		Urgency:         req.Urgency,
		Status:          models.StatusAwaitingApproval,
		CreatedAt:       createdAt,
		DueDate:         createdAt.Add(models.WorkOrderDueIn),
		TenantID:        claims.UserID,
	})
	if err != nil {
		h.log.Error(r.Context(), "create work order failed", "user_id", claims.UserID, "error", err)
		respond.Error(w, http.StatusInternalServerError, msgInternal)
		return
	}

	h.log.Info(r.Context(), "work order created", "work_order_id", created.ID, "ticket", created.TicketNumber)
	h.hooks.OnWorkOrderCreated(r.Context(), created, actorFrom(claims))

	respond.JSON(w, http.StatusCreated, dto.WorkOrderResponse{
		Success:             true,
		Message:             "Work order created successfully",
		WorkOrder:           created,
		AutomationTriggered: h.hooks.Enabled(),
	})
}

func (h *WorkOrderHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w, "PATCH, OPTIONS")
		return
	}
	claims, _ := auth.ClaimsFromContext(r.Context())
	if !claims.Role.IsStaff() {
		respond.Error(w, http.StatusForbidden, "Forbidden")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(w, http.StatusBadRequest, "Invalid work order id")
		return
	}

	var req dto.UpdateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if err := req.Validate(); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid status")
		return
	}

	current, err := h.store.GetWorkOrder(r.Context(), id)
	if err != nil {
		h.storeError(w, r, "get work order failed", id, err)
		return
	}
	if current.Status == models.StatusClosed {
		respond.Error(w, http.StatusConflict, msgAlreadyClosed)
		return
	}
	if current.Status == req.Status {
		respond.JSON(w, http.StatusOK, dto.WorkOrderResponse{
			Success:             true,
			Message:             "Work order unchanged",
			WorkOrder:           current,
			AutomationTriggered: false,
		})
		return
	}

	var completedAt *time.Time
	if req.Status == models.StatusClosed {
		at := h.now().UTC()
		completedAt = &at
	}
	updated, err := h.store.UpdateWorkOrderStatus(r.Context(), id, req.Status, completedAt)
	if err != nil {
		h.storeError(w, r, "update work order failed", id, err)
		return
	}

	h.log.Info(r.Context(), "work order status changed", "work_order_id", id, "from", string(current.Status), "to", string(updated.Status))
	h.hooks.OnWorkOrderStatusChanged(r.Context(), updated, current.Status, actorFrom(claims))

	respond.JSON(w, http.StatusOK, dto.WorkOrderResponse{
		Success:             true,
		Message:             "Work order updated successfully",
		WorkOrder:           updated,
		AutomationTriggered: h.hooks.Enabled(),
	})
}

func (h *WorkOrderHandler) storeError(w http.ResponseWriter, r *http.Request, msg string, id int64, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "Work order not found")
		return
	case errors.Is(err, storage.ErrConflict):
		respond.Error(w, http.StatusConflict, msgAlreadyClosed)
		return
	}
	h.log.Error(r.Context(), msg, "work_order_id", id, "error", err)
	respond.Error(w, http.StatusInternalServerError, msgInternal)
}

func actorFrom(claims *auth.Claims) notify.Actor {
	return notify.Actor{
		ID:       claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     claims.Role,
	}
}
