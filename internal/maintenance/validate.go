package maintenance

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

// PendingItem identifies an item that blocks work order closure.
type PendingItem struct {
	ID          primitive.ObjectID `json:"id"`
	Description string             `json:"description"`
}

// ClosureCheck is the outcome of ValidateWorkOrderClosure.
type ClosureCheck struct {
	CanClose     bool          `json:"can_close"`
	PendingItems []PendingItem `json:"pending_items"`
}

// ValidateWorkOrderClosure reports whether every item is COMPLETED or
// CANCELLED. An order without items is closable.
func ValidateWorkOrderClosure(items []models.WorkOrderItem) ClosureCheck {
	pending := []PendingItem{}
	for _, item := range items {
		if !item.Status.IsTerminal() {
			pending = append(pending, PendingItem{ID: item.ID, Description: item.Description})
		}
	}
	return ClosureCheck{CanClose: len(pending) == 0, PendingItems: pending}
}

// workOrderTransitions lists the transitions an operator may request.
// PENDING_INVOICE is entered by the auto-advance rule and left by invoice
// approval, neither of which goes through this table.
var workOrderTransitions = map[models.WorkOrderStatus][]models.WorkOrderStatus{
	models.WorkOrderPending:        {models.WorkOrderInProgress, models.WorkOrderCancelled},
	models.WorkOrderInProgress:     {models.WorkOrderCompleted, models.WorkOrderCancelled},
	models.WorkOrderPendingInvoice: {},
	models.WorkOrderCompleted:      {},
	models.WorkOrderCancelled:      {},
}

// IsValidWorkOrderTransition reports whether an operator may move a work
// order from current to target.
func IsValidWorkOrderTransition(current, target models.WorkOrderStatus) bool {
	for _, allowed := range workOrderTransitions[current] {
		if allowed == target {
			return true
		}
	}
	return false
}

// AllowedWorkOrderTransitions returns the targets reachable from current.
func AllowedWorkOrderTransitions(current models.WorkOrderStatus) []models.WorkOrderStatus {
	allowed := workOrderTransitions[current]
	out := make([]models.WorkOrderStatus, len(allowed))
	copy(out, allowed)
	return out
}

// CheckWorkOrderTransition is IsValidWorkOrderTransition returning a
// TransitionError instead of false.
func CheckWorkOrderTransition(current, target models.WorkOrderStatus) error {
	if !IsValidWorkOrderTransition(current, target) {
		return workOrderTransitionError(current, target)
	}
	return nil
}
