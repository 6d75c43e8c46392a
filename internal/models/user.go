package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role represents user roles in the system
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleTechnician Role = "technician"
	RolePurchaser  Role = "purchaser"
	RoleViewer     Role = "viewer"
)

// Actions checked by the permission middleware.
const (
	ActionViewWorkOrders   = "view_work_orders"
	ActionCreateWorkOrder  = "create_work_order"
	ActionTransitionOrder  = "transition_work_order"
	ActionUpdateOrderItem  = "update_work_order_item"
	ActionViewInvoices     = "view_invoices"
	ActionUpdateInvoice    = "update_invoice"
	ActionApproveInvoice   = "approve_invoice"
	ActionViewPriceHistory = "view_price_history"
)

// User represents a user in the system
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID     string             `bson:"tenant_id" json:"tenant_id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	LastLogin    *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Claims represents JWT claims
type Claims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Exp      int64  `json:"exp"`
}

// IsValidRole checks if a role is valid
func IsValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleTechnician, RolePurchaser, RoleViewer:
		return true
	default:
		return false
	}
}

// HasPermission checks if a role may perform a specific action
func (r Role) HasPermission(action string) bool {
	switch r {
	case RoleAdmin, RoleManager:
		return true
	case RoleTechnician:
		return action == ActionViewWorkOrders || action == ActionTransitionOrder ||
			action == ActionUpdateOrderItem
	case RolePurchaser:
		return action == ActionViewWorkOrders || action == ActionUpdateOrderItem ||
			action == ActionViewInvoices || action == ActionUpdateInvoice ||
			action == ActionViewPriceHistory
	case RoleViewer:
		return action == ActionViewWorkOrders || action == ActionViewInvoices ||
			action == ActionViewPriceHistory
	default:
		return false
	}
}
