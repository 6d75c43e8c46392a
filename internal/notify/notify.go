package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Event types.
const (
	TypeWorkOrderStatusChanged = "work_order.status_changed"
	TypeInvoiceApproved        = "invoice.approved"
)

// Event is the envelope published for every committed state change.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	TenantID   string      `json:"tenant_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// NewEvent stamps a payload with a fresh id.
func NewEvent(eventType, tenantID string, at time.Time, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		TenantID:   tenantID,
		OccurredAt: at,
		Payload:    payload,
	}
}

// WorkOrderStatusChanged is the payload of TypeWorkOrderStatusChanged.
type WorkOrderStatusChanged struct {
	WorkOrderID string `json:"work_order_id"`
	From        string `json:"from"`
	To          string `json:"to"`
	Automatic   bool   `json:"automatic"`
}

// InvoiceApproved is the payload of TypeInvoiceApproved.
type InvoiceApproved struct {
	InvoiceID        string  `json:"invoice_id"`
	WorkOrderID      string  `json:"work_order_id,omitempty"`
	Total            float64 `json:"total"`
	ApprovedBy       string  `json:"approved_by"`
	ClosedAlerts     int     `json:"closed_alerts"`
	PriceHistoryRows int     `json:"price_history_rows"`
}

// Publisher delivers events to the notification collaborator.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards events.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(context.Context, Event) error { return nil }

// Emit publishes event and logs a failure instead of returning it. Events
// are sent after commit, so a delivery failure cannot undo the change.
func Emit(ctx context.Context, pub Publisher, logger log.FieldLogger, event Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, event); err != nil {
		logger.WithError(err).WithFields(log.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
			"tenant_id":  event.TenantID,
		}).Warn("Failed to publish event")
	}
}
