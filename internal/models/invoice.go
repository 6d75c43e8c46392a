package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InvoiceStatus is the lifecycle status of a supplier invoice.
type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "PENDING"
	InvoiceApproved  InvoiceStatus = "APPROVED"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceRejected  InvoiceStatus = "REJECTED"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

// IsValidInvoiceStatus checks if an invoice status is known
func IsValidInvoiceStatus(s InvoiceStatus) bool {
	switch s {
	case InvoicePending, InvoiceApproved, InvoicePaid, InvoiceRejected, InvoiceCancelled:
		return true
	default:
		return false
	}
}

// Invoice is a supplier bill, optionally tied to one work order.
type Invoice struct {
	ID           primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	TenantID     string              `json:"tenant_id" bson:"tenant_id"`
	Number       string              `json:"number" bson:"number"`
	SupplierID   string              `json:"supplier_id" bson:"supplier_id"`
	WorkOrderID  *primitive.ObjectID `json:"work_order_id,omitempty" bson:"work_order_id,omitempty"`
	Status       InvoiceStatus       `json:"status" bson:"status"`
	Subtotal     float64             `json:"subtotal" bson:"subtotal"`
	Tax          float64             `json:"tax" bson:"tax"`
	Total        float64             `json:"total" bson:"total"`
	Items        []InvoiceItem       `json:"items" bson:"items"`
	RegisteredBy string              `json:"registered_by" bson:"registered_by"`
	ApprovedBy   string              `json:"approved_by,omitempty" bson:"approved_by,omitempty"`
	ApprovedAt   *time.Time          `json:"approved_at,omitempty" bson:"approved_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" bson:"updated_at"`
}

// InvoiceItem is one invoice line, optionally linked to a work order item
// and to a catalog part.
type InvoiceItem struct {
	ID              primitive.ObjectID  `json:"id" bson:"_id"`
	Description     string              `json:"description" bson:"description"`
	MasterPartID    *primitive.ObjectID `json:"master_part_id,omitempty" bson:"master_part_id,omitempty"`
	WorkOrderItemID *primitive.ObjectID `json:"work_order_item_id,omitempty" bson:"work_order_item_id,omitempty"`
	Quantity        float64             `json:"quantity" bson:"quantity"`
	UnitPrice       float64             `json:"unit_price" bson:"unit_price"`
	Total           float64             `json:"total" bson:"total"`
}

// PartPriceHistory is an append-only ledger row of a price paid for a part.
type PartPriceHistory struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID     string             `json:"tenant_id" bson:"tenant_id"`
	MasterPartID primitive.ObjectID `json:"master_part_id" bson:"master_part_id"`
	SupplierID   string             `json:"supplier_id" bson:"supplier_id"`
	UnitPrice    float64            `json:"unit_price" bson:"unit_price"`
	Quantity     float64            `json:"quantity" bson:"quantity"`
	RecordedAt   time.Time          `json:"recorded_at" bson:"recorded_at"`
	InvoiceID    primitive.ObjectID `json:"invoice_id" bson:"invoice_id"`
	ApprovedBy   string             `json:"approved_by" bson:"approved_by"`
	PurchasedBy  string             `json:"purchased_by" bson:"purchased_by"`
}
