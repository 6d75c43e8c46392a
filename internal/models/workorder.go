package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkOrderStatus is the lifecycle status of a work order.
type WorkOrderStatus string

const (
	WorkOrderPending        WorkOrderStatus = "PENDING"
	WorkOrderInProgress     WorkOrderStatus = "IN_PROGRESS"
	WorkOrderPendingInvoice WorkOrderStatus = "PENDING_INVOICE"
	WorkOrderCompleted      WorkOrderStatus = "COMPLETED"
	WorkOrderCancelled      WorkOrderStatus = "CANCELLED"
)

// IsTerminal reports whether no further transitions are accepted.
func (s WorkOrderStatus) IsTerminal() bool {
	return s == WorkOrderCompleted || s == WorkOrderCancelled
}

// ItemStatus is the execution status of a work order line.
type ItemStatus string

const (
	ItemPending    ItemStatus = "PENDING"
	ItemInProgress ItemStatus = "IN_PROGRESS"
	ItemCompleted  ItemStatus = "COMPLETED"
	ItemCancelled  ItemStatus = "CANCELLED"
)

// IsTerminal reports whether the item no longer blocks closure.
func (s ItemStatus) IsTerminal() bool {
	return s == ItemCompleted || s == ItemCancelled
}

// ItemSource says where the parts or labour of an item come from.
type ItemSource string

const (
	SourceExternal         ItemSource = "EXTERNAL"
	SourceInternalStock    ItemSource = "INTERNAL_STOCK"
	SourceInternalPurchase ItemSource = "INTERNAL_PURCHASE"
)

// ClosureType says how an item's cost is settled.
type ClosureType string

const (
	ClosurePending         ClosureType = "PENDING"
	ClosureExternalInvoice ClosureType = "EXTERNAL_INVOICE"
	ClosureInternalTicket  ClosureType = "INTERNAL_TICKET"
	ClosureNotApplicable   ClosureType = "NOT_APPLICABLE"
)

// WorkOrder bundles one or more alerts of a vehicle into billable items.
// Items are embedded so that an item write and the sibling scan that
// drives the auto-advance touch a single document.
type WorkOrder struct {
	ID            primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	TenantID      string               `json:"tenant_id" bson:"tenant_id"`
	VehicleID     primitive.ObjectID   `json:"vehicle_id" bson:"vehicle_id"`
	Status        WorkOrderStatus      `json:"status" bson:"status"`
	EstimatedCost float64              `json:"estimated_cost" bson:"estimated_cost"`
	ActualCost    *float64             `json:"actual_cost,omitempty" bson:"actual_cost,omitempty"`
	CreationKm    int                  `json:"creation_km" bson:"creation_km"`
	TechnicianID  string               `json:"technician_id,omitempty" bson:"technician_id,omitempty"`
	ProviderID    string               `json:"provider_id,omitempty" bson:"provider_id,omitempty"`
	StartDate     *time.Time           `json:"start_date,omitempty" bson:"start_date,omitempty"`
	EndDate       *time.Time           `json:"end_date,omitempty" bson:"end_date,omitempty"`
	AlertIDs      []primitive.ObjectID `json:"alert_ids" bson:"alert_ids"`
	Items         []WorkOrderItem      `json:"items" bson:"items"`
	CreatedBy     string               `json:"created_by" bson:"created_by"`
	CreatedAt     time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at" bson:"updated_at"`
}

// WorkOrderItem is one billable line of work within a work order.
type WorkOrderItem struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id"`
	AlertID     *primitive.ObjectID `json:"alert_id,omitempty" bson:"alert_id,omitempty"`
	Description string              `json:"description" bson:"description"`
	Quantity    float64             `json:"quantity" bson:"quantity"`
	UnitPrice   float64             `json:"unit_price" bson:"unit_price"`
	TotalCost   float64             `json:"total_cost" bson:"total_cost"`
	Source      ItemSource          `json:"source" bson:"source"`
	ClosureType ClosureType         `json:"closure_type" bson:"closure_type"`
	Status      ItemStatus          `json:"status" bson:"status"`
	SupplierID  string              `json:"supplier_id,omitempty" bson:"supplier_id,omitempty"`
	UpdatedAt   time.Time           `json:"updated_at" bson:"updated_at"`
}

// Item returns the item with the given id, or nil.
func (wo *WorkOrder) Item(id primitive.ObjectID) *WorkOrderItem {
	for i := range wo.Items {
		if wo.Items[i].ID == id {
			return &wo.Items[i]
		}
	}
	return nil
}

// IsValidWorkOrderStatus checks if a status is a known work order status
func IsValidWorkOrderStatus(s WorkOrderStatus) bool {
	switch s {
	case WorkOrderPending, WorkOrderInProgress, WorkOrderPendingInvoice, WorkOrderCompleted, WorkOrderCancelled:
		return true
	default:
		return false
	}
}

// IsValidItemStatus checks if an item status is known
func IsValidItemStatus(s ItemStatus) bool {
	switch s {
	case ItemPending, ItemInProgress, ItemCompleted, ItemCancelled:
		return true
	default:
		return false
	}
}

// IsValidItemSource checks if an item source is known
func IsValidItemSource(s ItemSource) bool {
	switch s {
	case SourceExternal, SourceInternalStock, SourceInternalPurchase:
		return true
	default:
		return false
	}
}

// IsValidClosureType checks if a closure type is known
func IsValidClosureType(c ClosureType) bool {
	switch c {
	case ClosurePending, ClosureExternalInvoice, ClosureInternalTicket, ClosureNotApplicable:
		return true
	default:
		return false
	}
}
