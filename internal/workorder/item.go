package workorder

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ItemUpdate changes any subset of an item's editable fields. Nil fields
// are left alone.
type ItemUpdate struct {
	TenantID    string
	WorkOrderID primitive.ObjectID
	ItemID      primitive.ObjectID

	Source      *models.ItemSource
	ClosureType *models.ClosureType
	Status      *models.ItemStatus
	SupplierID  *string
	UnitPrice   *float64
	Quantity    *float64
}

func (u ItemUpdate) validate() error {
	if err := requireTenant(u.TenantID); err != nil {
		return err
	}
	if u.Source != nil && !models.IsValidItemSource(*u.Source) {
		return maintenance.Invalid("source", "unknown item source %q", *u.Source)
	}
	if u.ClosureType != nil && !models.IsValidClosureType(*u.ClosureType) {
		return maintenance.Invalid("closure_type", "unknown closure type %q", *u.ClosureType)
	}
	if u.Status != nil && !models.IsValidItemStatus(*u.Status) {
		return maintenance.Invalid("status", "unknown item status %q", *u.Status)
	}
	if u.UnitPrice != nil && *u.UnitPrice < 0 {
		return maintenance.Invalid("unit_price", "must not be negative, got %v", *u.UnitPrice)
	}
	if u.Quantity != nil && *u.Quantity < 0 {
		return maintenance.Invalid("quantity", "must not be negative, got %v", *u.Quantity)
	}
	return nil
}

// ItemUpdateResult reports the updated item and whether the update moved
// the order to PENDING_INVOICE.
type ItemUpdateResult struct {
	WorkOrder              *models.WorkOrder      `json:"work_order"`
	Item                   models.WorkOrderItem   `json:"item"`
	WorkOrderStatusChanged bool                   `json:"work_order_status_changed"`
	PreviousStatus         models.WorkOrderStatus `json:"previous_status"`
}

// UpdateItem applies an item edit, recomputes its total and the order
// estimate, and runs the auto-advance rule in the same transaction: when an
// item's closure type changes (or an item is cancelled) while the order is
// IN_PROGRESS and no non-cancelled item still has a PENDING closure, the
// order moves to PENDING_INVOICE. Once the order is PENDING_INVOICE an edit
// that would leave a non-cancelled item with a PENDING closure is rejected.
func (s *Service) UpdateItem(ctx context.Context, u ItemUpdate) (*ItemUpdateResult, error) {
	if err := u.validate(); err != nil {
		return nil, err
	}

	var result ItemUpdateResult
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		wo, err := s.store.FindWorkOrder(ctx, u.TenantID, u.WorkOrderID)
		if err != nil {
			return err
		}
		item := wo.Item(u.ItemID)
		if item == nil {
			return maintenance.ErrNotFound
		}
		if wo.Status.IsTerminal() {
			return closedOrderError(wo)
		}

		recheck := false
		if u.Source != nil {
			item.Source = *u.Source
		}
		if u.ClosureType != nil {
			recheck = recheck || item.ClosureType != *u.ClosureType
			item.ClosureType = *u.ClosureType
		}
		if u.Status != nil {
			recheck = recheck || (*u.Status == models.ItemCancelled && item.Status != models.ItemCancelled)
			item.Status = *u.Status
		}
		if u.SupplierID != nil {
			item.SupplierID = *u.SupplierID
		}
		if u.UnitPrice != nil {
			item.UnitPrice = *u.UnitPrice
		}
		if u.Quantity != nil {
			item.Quantity = *u.Quantity
		}
		now := s.clock.Now()
		item.TotalCost = item.UnitPrice * item.Quantity
		item.UpdatedAt = now
		wo.EstimatedCost = estimate(wo.Items)

		if wo.Status == models.WorkOrderPendingInvoice && hasPendingClosure(wo.Items) {
			return fmt.Errorf("%w: work order %s is awaiting its invoice and cannot reopen item closures",
				maintenance.ErrIllegalTransition, wo.ID.Hex())
		}

		result.PreviousStatus = wo.Status
		if recheck && wo.Status == models.WorkOrderInProgress && !hasPendingClosure(wo.Items) {
			wo.Status = models.WorkOrderPendingInvoice
			result.WorkOrderStatusChanged = true
		}
		wo.UpdatedAt = now

		if err := s.store.SaveWorkOrder(ctx, wo); err != nil {
			return err
		}
		result.WorkOrder = wo
		result.Item = *item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Counter(ItemUpdatesTotal).Inc()
	fields := log.Fields{
		"tenant_id":     u.TenantID,
		"work_order_id": u.WorkOrderID.Hex(),
		"item_id":       u.ItemID.Hex(),
		"closure_type":  result.Item.ClosureType,
		"item_status":   result.Item.Status,
	}
	s.log.WithFields(fields).Info("Work order item updated")

	if result.WorkOrderStatusChanged {
		s.metrics.Counter(AutoAdvancesTotal).Inc()
		s.log.WithFields(fields).WithField("to", result.WorkOrder.Status).Info("Work order advanced to pending invoice")
		s.publishStatusChange(ctx, result.WorkOrder, result.PreviousStatus, true)
	}
	return &result, nil
}

func hasPendingClosure(items []models.WorkOrderItem) bool {
	for _, item := range items {
		if item.Status != models.ItemCancelled && item.ClosureType == models.ClosurePending {
			return true
		}
	}
	return false
}

func estimate(items []models.WorkOrderItem) float64 {
	total := 0.0
	for _, item := range items {
		if item.Status != models.ItemCancelled {
			total += item.TotalCost
		}
	}
	return total
}
