package workorder

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransitionRequest asks for an operator-initiated status change.
type TransitionRequest struct {
	TenantID    string
	WorkOrderID primitive.ObjectID
	Target      models.WorkOrderStatus
}

// TransitionResult reports the applied change.
type TransitionResult struct {
	WorkOrder *models.WorkOrder      `json:"work_order"`
	From      models.WorkOrderStatus `json:"from"`
	To        models.WorkOrderStatus `json:"to"`
}

// Transition moves a work order along the operator transition table and
// cascades the change to its items:
//
//	IN_PROGRESS: pending items start.
//	CANCELLED:   open items are cancelled and the alerts released.
//	COMPLETED:   allowed only when no item is open.
func (s *Service) Transition(ctx context.Context, req TransitionRequest) (*TransitionResult, error) {
	if err := requireTenant(req.TenantID); err != nil {
		return nil, err
	}
	if !models.IsValidWorkOrderStatus(req.Target) {
		return nil, maintenance.Invalid("status", "unknown work order status %q", req.Target)
	}

	var result TransitionResult
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		wo, err := s.store.FindWorkOrder(ctx, req.TenantID, req.WorkOrderID)
		if err != nil {
			return err
		}
		if err := maintenance.CheckWorkOrderTransition(wo.Status, req.Target); err != nil {
			return err
		}

		now := s.clock.Now()
		switch req.Target {
		case models.WorkOrderInProgress:
			for i := range wo.Items {
				if wo.Items[i].Status == models.ItemPending {
					wo.Items[i].Status = models.ItemInProgress
					wo.Items[i].UpdatedAt = now
				}
			}
			if wo.StartDate == nil {
				wo.StartDate = &now
			}
		case models.WorkOrderCompleted:
			check := maintenance.ValidateWorkOrderClosure(wo.Items)
			if !check.CanClose {
				return &maintenance.ClosureBlockedError{Pending: check.PendingItems}
			}
			if wo.EndDate == nil {
				wo.EndDate = &now
			}
		case models.WorkOrderCancelled:
			for i := range wo.Items {
				if !wo.Items[i].Status.IsTerminal() {
					wo.Items[i].Status = models.ItemCancelled
					wo.Items[i].UpdatedAt = now
				}
			}
			if err := s.releaseAlerts(ctx, wo, now); err != nil {
				return err
			}
		}

		result.From = wo.Status
		wo.Status = req.Target
		wo.UpdatedAt = now
		if err := s.store.SaveWorkOrder(ctx, wo); err != nil {
			return err
		}
		result.WorkOrder = wo
		result.To = wo.Status
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Counter(TransitionsTotal).Inc()
	s.log.WithFields(log.Fields{
		"tenant_id":     req.TenantID,
		"work_order_id": req.WorkOrderID.Hex(),
		"from":          result.From,
		"to":            result.To,
	}).Info("Work order transitioned")
	s.publishStatusChange(ctx, result.WorkOrder, result.From, false)
	return &result, nil
}

// releaseAlerts returns the order's unfinished alerts to OPEN so they can
// be bundled again.
func (s *Service) releaseAlerts(ctx context.Context, wo *models.WorkOrder, now time.Time) error {
	alerts, err := s.store.FindAlertsByWorkOrder(ctx, wo.TenantID, wo.ID)
	if err != nil {
		return err
	}
	released := alerts[:0]
	for _, a := range alerts {
		if a.Status == models.AlertStatusCompleted {
			continue
		}
		a.Status = models.AlertStatusOpen
		a.WorkOrderID = nil
		a.UpdatedAt = now
		released = append(released, a)
	}
	return s.store.SaveAlerts(ctx, wo.TenantID, released)
}
