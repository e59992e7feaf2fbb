package notify

import (
	"context"
	"sync"
	"time"

	"github.com/hongminglow/cabot-property-api/internal/ids"
	"github.com/hongminglow/cabot-property-api/internal/logging"
	"github.com/hongminglow/cabot-property-api/internal/models"
)

// deliveryTimeout bounds one async delivery. Shutdown waits at most this long.
const deliveryTimeout = 5 * time.Second

// Actor is the authenticated principal that triggered an event.
type Actor struct {
	ID       int64       `json:"id"`
	Username string      `json:"username,omitempty"`
	Email    string      `json:"email,omitempty"`
	Role     models.Role `json:"role"`
}

// Poster is the subset of Client used by Hooks.
type Poster interface {
	Post(ctx context.Context, webhook Webhook, data map[string]any) error
}

// DeliveryRecorder observes delivery outcomes (metrics).
type DeliveryRecorder interface {
	ObserveDelivery(webhook string, err error)
}

// Hooks runs post-commit work-order notifications in the background. A
// failed delivery is logged and counted; it never affects the request that
// triggered it.
type Hooks struct {
	poster   Poster
	log      logging.Logger
	recorder DeliveryRecorder
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewHooks returns hooks over poster. A nil poster disables delivery.
func NewHooks(poster Poster, log logging.Logger, recorder DeliveryRecorder) *Hooks {
	return &Hooks{poster: poster, log: log, recorder: recorder, timeout: deliveryTimeout}
}

// Enabled reports whether events are actually delivered.
func (h *Hooks) Enabled() bool {
	return h != nil && h.poster != nil
}

// OnWorkOrderCreated notifies the automation service about a new work order.
func (h *Hooks) OnWorkOrderCreated(ctx context.Context, wo models.WorkOrder, tenant Actor) {
	h.dispatch(ctx, WorkOrderCreated, map[string]any{
		"workOrder": wo,
		"tenant":    tenant,
		"actions": []string{
			"send_tenant_confirmation_email",
			"assign_technician",
			"send_tech_notification",
			"create_calendar_event",
			"update_dashboard",
		},
	})
}

// OnWorkOrderStatusChanged notifies about a status transition and, when the
// work order was closed, about its completion.
func (h *Hooks) OnWorkOrderStatusChanged(ctx context.Context, wo models.WorkOrder, from models.WorkOrderStatus, by Actor) {
	h.dispatch(ctx, WorkOrderUpdated, map[string]any{
		"workOrder": wo,
		"statusChange": map[string]any{
			"from":      from,
			"to":        wo.Status,
			"changedBy": by,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
		"actions": []string{
			"send_status_update_email",
			"update_kanban_board",
			"log_status_change",
			"check_overdue_items",
		},
	})
	if wo.Status != models.StatusClosed {
		return
	}
	completion := map[string]any{"completedBy": by}
	if wo.CompletedAt != nil {
		completion["completedAt"] = wo.CompletedAt.UTC().Format(time.RFC3339)
	}
	h.dispatch(ctx, WorkOrderCompleted, map[string]any{
		"workOrder":  wo,
		"completion": completion,
		"actions": []string{
			"generate_ai_summary",
			"send_completion_email",
			"update_billing_system",
			"archive_work_order",
			"request_tenant_feedback",
		},
	})
}

// Wait blocks until in-flight deliveries finish.
func (h *Hooks) Wait() {
	if h == nil {
		return
	}
	h.wg.Wait()
}

// dispatch detaches from the request context's cancellation so a finished
// request does not abort an in-flight delivery.
func (h *Hooks) dispatch(ctx context.Context, webhook Webhook, data map[string]any) {
	if !h.Enabled() {
		return
	}
	deliveryID := ids.New()
	data["deliveryId"] = deliveryID
	log := h.log.With("webhook", string(webhook), "delivery_id", deliveryID)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
		defer cancel()

		err := h.poster.Post(sendCtx, webhook, data)
		if h.recorder != nil {
			h.recorder.ObserveDelivery(string(webhook), err)
		}
		if err != nil {
			log.Warn(sendCtx, "webhook delivery failed", "error", err)
			return
		}
		log.Info(sendCtx, "webhook delivered")
	}()
}
