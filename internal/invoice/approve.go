package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"github.com/ukydev/fleet-maintenance/internal/notify"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OnTimeGraceKm is how far past the scheduled odometer a work order may be
// opened and still count as on time.
const OnTimeGraceKm = 500

// ApprovalRequest approves one invoice.
type ApprovalRequest struct {
	TenantID   string
	InvoiceID  primitive.ObjectID
	ApproverID string
}

// ApprovalResult lists everything the cascade wrote.
type ApprovalResult struct {
	Invoice      *models.Invoice           `json:"invoice"`
	WorkOrder    *models.WorkOrder         `json:"work_order,omitempty"`
	ClosedAlerts []models.MaintenanceAlert `json:"closed_alerts"`
	ProgramItems []primitive.ObjectID      `json:"program_item_ids"`
	PriceHistory []models.PartPriceHistory `json:"price_history"`
	WasOnTime    bool                      `json:"was_on_time"`
	VarianceMode VarianceMode              `json:"variance_mode"`
	ApprovedAt   time.Time                 `json:"approved_at"`
}

// ApplyInvoiceApproval marks a PENDING invoice APPROVED and, in the same
// transaction, closes the linked work order, its open alerts and their
// program items, then records a price history row for every invoice line
// that references a catalog part. Nothing is written unless every step
// succeeds. An invoice that is already APPROVED or PAID is rejected with
// maintenance.ErrInvoiceAlreadyApproved and the cascade does not run again.
func (s *Service) ApplyInvoiceApproval(ctx context.Context, req ApprovalRequest) (*ApprovalResult, error) {
	if err := requireTenant(req.TenantID); err != nil {
		return nil, err
	}
	if req.ApproverID == "" {
		return nil, maintenance.Invalid("approver_id", "is required")
	}

	logger := s.log.WithFields(log.Fields{
		"tenant_id":  req.TenantID,
		"invoice_id": req.InvoiceID.Hex(),
	})

	var result *ApprovalResult
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.cascade(ctx, req)
		return err
	})
	if err != nil {
		if isCascadeFailure(err) {
			s.metrics.Counter(CascadeFailuresTotal).Inc()
			logger.WithError(err).Error("Invoice approval rolled back")
		}
		return nil, err
	}

	s.metrics.Counter(ApprovalsTotal).Inc()
	for range result.ClosedAlerts {
		s.metrics.Counter(AlertsClosedTotal).Inc()
	}
	for range result.PriceHistory {
		s.metrics.Counter(PriceHistoryRowsTotal).Inc()
	}

	fields := log.Fields{
		"approved_by":        req.ApproverID,
		"total":              result.Invoice.Total,
		"closed_alerts":      len(result.ClosedAlerts),
		"program_items":      len(result.ProgramItems),
		"price_history_rows": len(result.PriceHistory),
	}
	payload := notify.InvoiceApproved{
		InvoiceID:        result.Invoice.ID.Hex(),
		Total:            result.Invoice.Total,
		ApprovedBy:       req.ApproverID,
		ClosedAlerts:     len(result.ClosedAlerts),
		PriceHistoryRows: len(result.PriceHistory),
	}
	if result.WorkOrder != nil {
		fields["work_order_id"] = result.WorkOrder.ID.Hex()
		payload.WorkOrderID = result.WorkOrder.ID.Hex()
	}
	logger.WithFields(fields).Info("Invoice approved")

	event := notify.NewEvent(notify.TypeInvoiceApproved, req.TenantID, result.ApprovedAt, payload)
	notify.Emit(ctx, s.events, s.log, event)
	return result, nil
}

func (s *Service) cascade(ctx context.Context, req ApprovalRequest) (*ApprovalResult, error) {
	inv, err := s.store.FindInvoice(ctx, req.TenantID, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	from := inv.Status
	if err := checkTransition(from, models.InvoiceApproved); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	inv.Status = models.InvoiceApproved
	inv.ApprovedBy = req.ApproverID
	inv.ApprovedAt = &now
	inv.UpdatedAt = now
	if err := s.store.UpdateInvoiceStatus(ctx, inv, from); err != nil {
		return nil, fmt.Errorf("approve invoice: %w", err)
	}

	result := &ApprovalResult{
		Invoice:      inv,
		ClosedAlerts: []models.MaintenanceAlert{},
		ProgramItems: []primitive.ObjectID{},
		VarianceMode: s.variance,
		ApprovedAt:   now,
	}

	if inv.WorkOrderID != nil {
		if err := s.closeWorkOrder(ctx, inv, *inv.WorkOrderID, now, result); err != nil {
			return nil, err
		}
	}

	rows := priceHistoryRows(inv, req.ApproverID, now)
	if err := s.store.InsertPriceHistory(ctx, rows); err != nil {
		return nil, fmt.Errorf("record price history: %w", err)
	}
	result.PriceHistory = rows
	return result, nil
}

func (s *Service) closeWorkOrder(ctx context.Context, inv *models.Invoice, woID primitive.ObjectID, now time.Time, result *ApprovalResult) error {
	wo, err := s.store.FindWorkOrder(ctx, inv.TenantID, woID)
	if err != nil {
		return fmt.Errorf("load work order: %w", err)
	}
	if wo.Status == models.WorkOrderCancelled {
		return &maintenance.TransitionError{Entity: "work order", From: string(wo.Status), To: string(models.WorkOrderCompleted)}
	}

	total := inv.Total
	wo.ActualCost = &total
	wo.Status = models.WorkOrderCompleted
	for i := range wo.Items {
		if !wo.Items[i].Status.IsTerminal() {
			wo.Items[i].Status = models.ItemCompleted
			wo.Items[i].UpdatedAt = now
		}
	}
	if wo.EndDate == nil {
		wo.EndDate = &now
	}
	wo.UpdatedAt = now
	if err := s.store.SaveWorkOrder(ctx, wo); err != nil {
		return fmt.Errorf("complete work order: %w", err)
	}
	result.WorkOrder = wo

	alerts, err := s.store.FindAlertsByWorkOrder(ctx, inv.TenantID, wo.ID)
	if err != nil {
		return fmt.Errorf("load alerts: %w", err)
	}
	if len(alerts) == 0 {
		return nil
	}

	earliest := alerts[0].CreatedAt
	onTime := true
	for _, a := range alerts {
		if a.CreatedAt.Before(earliest) {
			earliest = a.CreatedAt
		}
		if wo.CreationKm > a.ScheduledKm+OnTimeGraceKm {
			onTime = false
		}
	}
	result.WasOnTime = onTime
	hours := now.Sub(earliest).Hours()
	baseline := alerts[0].EstimatedCost

	closed := make([]models.MaintenanceAlert, 0, len(alerts))
	for _, a := range alerts {
		if a.Status == models.AlertStatusCompleted {
			continue
		}
		estimate := baseline
		if s.variance == VariancePerAlert {
			estimate = a.EstimatedCost
		}
		actual := total
		variance := actual - estimate
		closedAt := now
		completion := hours
		wasOnTime := onTime

		a.Status = models.AlertStatusCompleted
		a.ActualCost = &actual
		a.CostVariance = &variance
		a.ClosedAt = &closedAt
		a.CompletionTimeHours = &completion
		a.WasOnTime = &wasOnTime
		a.UpdatedAt = now
		closed = append(closed, a)
		result.ProgramItems = append(result.ProgramItems, a.ProgramItemID)
	}
	if err := s.store.SaveAlerts(ctx, inv.TenantID, closed); err != nil {
		return fmt.Errorf("close alerts: %w", err)
	}
	result.ClosedAlerts = closed

	if err := s.store.CompleteProgramItems(ctx, inv.TenantID, result.ProgramItems, wo.CreationKm, now); err != nil {
		return fmt.Errorf("complete program items: %w", err)
	}
	return nil
}

func priceHistoryRows(inv *models.Invoice, approverID string, now time.Time) []models.PartPriceHistory {
	rows := []models.PartPriceHistory{}
	for _, item := range inv.Items {
		if item.MasterPartID == nil {
			continue
		}
		rows = append(rows, models.PartPriceHistory{
			ID:           primitive.NewObjectID(),
			TenantID:     inv.TenantID,
			MasterPartID: *item.MasterPartID,
			SupplierID:   inv.SupplierID,
			UnitPrice:    item.UnitPrice,
			Quantity:     item.Quantity,
			RecordedAt:   now,
			InvoiceID:    inv.ID,
			ApprovedBy:   approverID,
			PurchasedBy:  inv.RegisteredBy,
		})
	}
	return rows
}

// isCascadeFailure separates storage failures from rejected requests.
func isCascadeFailure(err error) bool {
	return !errors.Is(err, maintenance.ErrIllegalTransition) &&
		!errors.Is(err, maintenance.ErrNotFound) &&
		!maintenance.IsValidation(err)
}
