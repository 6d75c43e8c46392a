package handlers

import (
	"context"
	"net/http"

	"github.com/ukydev/fleet-maintenance/internal/invoice"
	"github.com/ukydev/fleet-maintenance/internal/middleware"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InvoiceService is the invoice lifecycle as seen by HTTP.
type InvoiceService interface {
	Get(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.Invoice, error)
	UpdateStatus(ctx context.Context, req invoice.StatusRequest) (*models.Invoice, error)
	ApplyInvoiceApproval(ctx context.Context, req invoice.ApprovalRequest) (*invoice.ApprovalResult, error)
	PriceHistory(ctx context.Context, tenantID string, partID primitive.ObjectID) ([]models.PartPriceHistory, error)
}

// InvoiceHandler serves the invoice and price history endpoints.
type InvoiceHandler struct {
	service InvoiceService
}

// NewInvoiceHandler creates an invoice handler.
func NewInvoiceHandler(service InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// InvoiceStatusRequest is the body of POST /api/invoices/{id}/status.
type InvoiceStatusRequest struct {
	Status models.InvoiceStatus `json:"status"`
}

// Get returns one invoice.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, id, ok := requestScope(w, r)
	if !ok {
		return
	}
	inv, err := h.service.Get(r.Context(), claims.TenantID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// UpdateStatus moves an invoice to a non-approval status. Approval has its
// own endpoint and permission.
func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims, id, ok := requestScope(w, r)
	if !ok {
		return
	}
	var body InvoiceStatusRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Status == models.InvoiceApproved {
		http.Error(w, "Use the approve endpoint", http.StatusBadRequest)
		return
	}
	inv, err := h.service.UpdateStatus(r.Context(), invoice.StatusRequest{
		TenantID:  claims.TenantID,
		InvoiceID: id,
		Target:    body.Status,
		ActorID:   claims.UserID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// Approve runs the closure cascade for an invoice.
func (h *InvoiceHandler) Approve(w http.ResponseWriter, r *http.Request) {
	claims, id, ok := requestScope(w, r)
	if !ok {
		return
	}
	res, err := h.service.ApplyInvoiceApproval(r.Context(), invoice.ApprovalRequest{
		TenantID:   claims.TenantID,
		InvoiceID:  id,
		ApproverID: claims.UserID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PriceHistory lists recorded prices of a catalog part.
func (h *InvoiceHandler) PriceHistory(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}
	partID, err := pathID(r, "partID")
	if err != nil {
		writeError(w, err)
		return
	}
	rows, err := h.service.PriceHistory(r.Context(), claims.TenantID, partID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
