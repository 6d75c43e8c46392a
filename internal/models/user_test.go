package models

import (
	"testing"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"admin role", RoleAdmin, true},
		{"manager role", RoleManager, true},
		{"technician role", RoleTechnician, true},
		{"purchaser role", RolePurchaser, true},
		{"viewer role", RoleViewer, true},
		{"invalid role", "invalid", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestRole_HasPermission(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		action   string
		expected bool
	}{
		{"admin can approve invoice", RoleAdmin, ActionApproveInvoice, true},
		{"manager can approve invoice", RoleManager, ActionApproveInvoice, true},
		{"manager can create work order", RoleManager, ActionCreateWorkOrder, true},

		{"technician can transition work order", RoleTechnician, ActionTransitionOrder, true},
		{"technician can update item", RoleTechnician, ActionUpdateOrderItem, true},
		{"technician cannot approve invoice", RoleTechnician, ActionApproveInvoice, false},
		{"technician cannot create work order", RoleTechnician, ActionCreateWorkOrder, false},

		{"purchaser can update item", RolePurchaser, ActionUpdateOrderItem, true},
		{"purchaser can update invoice", RolePurchaser, ActionUpdateInvoice, true},
		{"purchaser cannot approve invoice", RolePurchaser, ActionApproveInvoice, false},
		{"purchaser cannot transition work order", RolePurchaser, ActionTransitionOrder, false},

		{"viewer can view work orders", RoleViewer, ActionViewWorkOrders, true},
		{"viewer can view price history", RoleViewer, ActionViewPriceHistory, true},
		{"viewer cannot update item", RoleViewer, ActionUpdateOrderItem, false},

		{"unknown role has nothing", Role("ghost"), ActionViewWorkOrders, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.role.HasPermission(tt.action)
			if result != tt.expected {
				t.Errorf("Role %s HasPermission(%s) = %v, want %v",
					tt.role, tt.action, result, tt.expected)
			}
		})
	}
}

func TestWorkOrderStatus_IsTerminal(t *testing.T) {
	terminal := map[WorkOrderStatus]bool{
		WorkOrderPending:        false,
		WorkOrderInProgress:     false,
		WorkOrderPendingInvoice: false,
		WorkOrderCompleted:      true,
		WorkOrderCancelled:      true,
	}
	for status, want := range terminal {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}

func TestWorkOrder_Item(t *testing.T) {
	wo := WorkOrder{Items: []WorkOrderItem{{Description: "oil"}, {Description: "filter"}}}
	wo.Items[0].ID[0] = 1
	wo.Items[1].ID[0] = 2

	item := wo.Item(wo.Items[1].ID)
	if item == nil || item.Description != "filter" {
		t.Fatalf("expected filter item, got %+v", item)
	}
	item.Quantity = 3
	if wo.Items[1].Quantity != 3 {
		t.Errorf("Item should return a pointer into the slice")
	}

	var missing [12]byte
	missing[0] = 9
	if wo.Item(missing) != nil {
		t.Errorf("expected nil for unknown item id")
	}
}
