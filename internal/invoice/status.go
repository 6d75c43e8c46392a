package invoice

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var invoiceTransitions = map[models.InvoiceStatus][]models.InvoiceStatus{
	models.InvoicePending:   {models.InvoiceApproved, models.InvoiceRejected, models.InvoiceCancelled},
	models.InvoiceRejected:  {models.InvoicePending},
	models.InvoiceApproved:  {models.InvoicePaid},
	models.InvoicePaid:      {},
	models.InvoiceCancelled: {},
}

// IsValidTransition reports whether an invoice may move from current to
// target.
func IsValidTransition(current, target models.InvoiceStatus) bool {
	for _, allowed := range invoiceTransitions[current] {
		if allowed == target {
			return true
		}
	}
	return false
}

func checkTransition(current, target models.InvoiceStatus) error {
	if target == models.InvoiceApproved && (current == models.InvoiceApproved || current == models.InvoicePaid) {
		return maintenance.ErrInvoiceAlreadyApproved
	}
	if !IsValidTransition(current, target) {
		return &maintenance.TransitionError{Entity: "invoice", From: string(current), To: string(target)}
	}
	return nil
}

// StatusRequest asks for an invoice status change.
type StatusRequest struct {
	TenantID  string
	InvoiceID primitive.ObjectID
	Target    models.InvoiceStatus
	ActorID   string
}

// UpdateStatus moves an invoice along its transition table. APPROVED runs
// the closure cascade.
func (s *Service) UpdateStatus(ctx context.Context, req StatusRequest) (*models.Invoice, error) {
	if err := requireTenant(req.TenantID); err != nil {
		return nil, err
	}
	if !models.IsValidInvoiceStatus(req.Target) {
		return nil, maintenance.Invalid("status", "unknown invoice status %q", req.Target)
	}
	if req.Target == models.InvoiceApproved {
		res, err := s.ApplyInvoiceApproval(ctx, ApprovalRequest{
			TenantID:   req.TenantID,
			InvoiceID:  req.InvoiceID,
			ApproverID: req.ActorID,
		})
		if err != nil {
			return nil, err
		}
		return res.Invoice, nil
	}

	var (
		inv  *models.Invoice
		from models.InvoiceStatus
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = s.store.FindInvoice(ctx, req.TenantID, req.InvoiceID)
		if err != nil {
			return err
		}
		from = inv.Status
		if err := checkTransition(from, req.Target); err != nil {
			return err
		}
		inv.Status = req.Target
		inv.UpdatedAt = s.clock.Now()
		return s.store.UpdateInvoiceStatus(ctx, inv, from)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Counter(StatusChangesTotal).Inc()
	s.log.WithFields(log.Fields{
		"tenant_id":  req.TenantID,
		"invoice_id": req.InvoiceID.Hex(),
		"from":       from,
		"to":         inv.Status,
	}).Info("Invoice status changed")
	return inv, nil
}
