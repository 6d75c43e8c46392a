package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"github.com/ukydev/fleet-maintenance/internal/middleware"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"github.com/ukydev/fleet-maintenance/internal/workorder"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkOrderService is the work order state machine as seen by HTTP.
type WorkOrderService interface {
	Create(ctx context.Context, req workorder.CreateRequest) (*models.WorkOrder, error)
	Get(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.WorkOrder, error)
	Transition(ctx context.Context, req workorder.TransitionRequest) (*workorder.TransitionResult, error)
	UpdateItem(ctx context.Context, u workorder.ItemUpdate) (*workorder.ItemUpdateResult, error)
	CheckClosure(ctx context.Context, tenantID string, id primitive.ObjectID) (maintenance.ClosureCheck, error)
}

// WorkOrderHandler serves the work order endpoints.
type WorkOrderHandler struct {
	service WorkOrderService
}

// NewWorkOrderHandler creates a work order handler.
func NewWorkOrderHandler(service WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{service: service}
}

// CreateWorkOrderRequest is the body of POST /api/work-orders.
type CreateWorkOrderRequest struct {
	VehicleID     string             `json:"vehicle_id"`
	AlertIDs      []string           `json:"alert_ids"`
	CreationKm    int                `json:"creation_km"`
	TechnicianID  string             `json:"technician_id,omitempty"`
	ProviderID    string             `json:"provider_id,omitempty"`
	StartDate     *time.Time         `json:"start_date,omitempty"`
	EndDate       *time.Time         `json:"end_date,omitempty"`
	CostOverrides map[string]float64 `json:"cost_overrides,omitempty"`
}

// TransitionRequest is the body of POST /api/work-orders/{id}/transitions.
type TransitionRequest struct {
	Status models.WorkOrderStatus `json:"status"`
}

// UpdateItemRequest is the body of PATCH /api/work-orders/{id}/items/{itemID}.
// Omitted fields are left unchanged.
type UpdateItemRequest struct {
	Source      *models.ItemSource  `json:"source,omitempty"`
	ClosureType *models.ClosureType `json:"closure_type,omitempty"`
	Status      *models.ItemStatus  `json:"status,omitempty"`
	SupplierID  *string             `json:"supplier_id,omitempty"`
	UnitPrice   *float64            `json:"unit_price,omitempty"`
	Quantity    *float64            `json:"quantity,omitempty"`
}

// Create bundles alerts into a new work order.
func (h *WorkOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	var body CreateWorkOrderRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}

	req := workorder.CreateRequest{
		TenantID:     claims.TenantID,
		CreatedBy:    claims.UserID,
		CreationKm:   body.CreationKm,
		TechnicianID: body.TechnicianID,
		ProviderID:   body.ProviderID,
		StartDate:    body.StartDate,
		EndDate:      body.EndDate,
	}
	var err error
	if req.VehicleID, err = parseID("vehicle_id", body.VehicleID); err != nil {
		writeError(w, err)
		return
	}
	for _, raw := range body.AlertIDs {
		id, err := parseID("alert_ids", raw)
		if err != nil {
			writeError(w, err)
			return
		}
		req.AlertIDs = append(req.AlertIDs, id)
	}
	if len(body.CostOverrides) > 0 {
		req.CostOverrides = make(map[primitive.ObjectID]float64, len(body.CostOverrides))
		for raw, cost := range body.CostOverrides {
			id, err := parseID("cost_overrides", raw)
			if err != nil {
				writeError(w, err)
				return
			}
			req.CostOverrides[id] = cost
		}
	}

	wo, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, wo)
}

// Get returns one work order.
func (h *WorkOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, id, ok := requestScope(w, r)
	if !ok {
		return
	}
	wo, err := h.service.Get(r.Context(), claims.TenantID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wo)
}

// Transition applies an operator-requested status change.
func (h *WorkOrderHandler) Transition(w http.ResponseWriter, r *http.Request) {
	claims, id, ok := requestScope(w, r)
	if !ok {
		return
	}
	var body TransitionRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.service.Transition(r.Context(), workorder.TransitionRequest{
		TenantID:    claims.TenantID,
		WorkOrderID: id,
		Target:      body.Status,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// UpdateItem edits one work order item.
func (h *WorkOrderHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	claims, id, ok := requestScope(w, r)
	if !ok {
		return
	}
	itemID, err := pathID(r, "itemID")
	if err != nil {
		writeError(w, err)
		return
	}
	var body UpdateItemRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.service.UpdateItem(r.Context(), workorder.ItemUpdate{
		TenantID:    claims.TenantID,
		WorkOrderID: id,
		ItemID:      itemID,
		Source:      body.Source,
		ClosureType: body.ClosureType,
		Status:      body.Status,
		SupplierID:  body.SupplierID,
		UnitPrice:   body.UnitPrice,
		Quantity:    body.Quantity,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CheckClosure reports whether the work order may be completed.
func (h *WorkOrderHandler) CheckClosure(w http.ResponseWriter, r *http.Request) {
	claims, id, ok := requestScope(w, r)
	if !ok {
		return
	}
	check, err := h.service.CheckClosure(r.Context(), claims.TenantID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, check)
}

// requestScope returns the caller and the {id} path value.
func requestScope(w http.ResponseWriter, r *http.Request) (*models.Claims, primitive.ObjectID, bool) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return nil, primitive.NilObjectID, false
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return nil, primitive.NilObjectID, false
	}
	return claims, id, true
}
