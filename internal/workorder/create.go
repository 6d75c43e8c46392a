package workorder

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateRequest bundles open alerts of one vehicle into a new work order.
type CreateRequest struct {
	TenantID     string
	CreatedBy    string
	VehicleID    primitive.ObjectID
	AlertIDs     []primitive.ObjectID
	CreationKm   int
	TechnicianID string
	ProviderID   string
	StartDate    *time.Time
	EndDate      *time.Time
	// CostOverrides holds vehicle/part specific prices keyed by alert id.
	CostOverrides map[primitive.ObjectID]float64
}

func (r CreateRequest) validate() error {
	if err := requireTenant(r.TenantID); err != nil {
		return err
	}
	if r.VehicleID.IsZero() {
		return maintenance.Invalid("vehicle_id", "is required")
	}
	if len(r.AlertIDs) == 0 {
		return maintenance.Invalid("alert_ids", "at least one alert is required")
	}
	seen := make(map[primitive.ObjectID]bool, len(r.AlertIDs))
	for _, id := range r.AlertIDs {
		if seen[id] {
			return maintenance.Invalid("alert_ids", "alert %s listed twice", id.Hex())
		}
		seen[id] = true
	}
	if r.CreationKm < 0 {
		return maintenance.Invalid("creation_km", "must not be negative, got %d", r.CreationKm)
	}
	if r.StartDate != nil && r.EndDate != nil && r.EndDate.Before(*r.StartDate) {
		return maintenance.Invalid("end_date", "is before start_date")
	}
	for id, cost := range r.CostOverrides {
		if cost < 0 {
			return maintenance.Invalid("cost_overrides", "alert %s has a negative cost", id.Hex())
		}
	}
	return nil
}

// Create builds a PENDING work order with one item per alert, priced with
// the override, program item and alert cost fallback chain. The alerts move
// to IN_PROGRESS and point at the new order.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.WorkOrder, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var wo *models.WorkOrder
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		alerts, err := s.store.FindAlertsByIDs(ctx, req.TenantID, req.AlertIDs)
		if err != nil {
			return err
		}
		if len(alerts) != len(req.AlertIDs) {
			return maintenance.ErrNotFound
		}

		programIDs := make([]primitive.ObjectID, 0, len(alerts))
		for _, a := range alerts {
			if a.VehicleID != req.VehicleID {
				return maintenance.Invalid("alert_ids", "alert %s belongs to another vehicle", a.ID.Hex())
			}
			if a.Status != models.AlertStatusOpen || a.WorkOrderID != nil {
				return maintenance.Invalid("alert_ids", "alert %s is already bundled or closed", a.ID.Hex())
			}
			programIDs = append(programIDs, a.ProgramItemID)
		}

		programItems, err := s.store.FindProgramItemsByIDs(ctx, req.TenantID, programIDs)
		if err != nil {
			return err
		}
		byID := make(map[primitive.ObjectID]models.VehicleProgramItem, len(programItems))
		for _, p := range programItems {
			byID[p.ID] = p
		}

		now := s.clock.Now()
		wo = &models.WorkOrder{
			ID:           primitive.NewObjectID(),
			TenantID:     req.TenantID,
			VehicleID:    req.VehicleID,
			Status:       models.WorkOrderPending,
			CreationKm:   req.CreationKm,
			TechnicianID: req.TechnicianID,
			ProviderID:   req.ProviderID,
			StartDate:    req.StartDate,
			EndDate:      req.EndDate,
			CreatedBy:    req.CreatedBy,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		for i := range alerts {
			alert := &alerts[i]
			program := byID[alert.ProgramItemID]
			item := newItem(*alert, program, req.CostOverrides, now)

			wo.AlertIDs = append(wo.AlertIDs, alert.ID)
			wo.Items = append(wo.Items, item)
			wo.EstimatedCost += item.TotalCost

			woID := wo.ID
			alert.WorkOrderID = &woID
			alert.Status = models.AlertStatusInProgress
			alert.UpdatedAt = now
		}

		if err := s.store.InsertWorkOrder(ctx, wo); err != nil {
			return err
		}
		return s.store.SaveAlerts(ctx, req.TenantID, alerts)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Counter(CreatedTotal).Inc()
	s.log.WithFields(log.Fields{
		"tenant_id":     wo.TenantID,
		"work_order_id": wo.ID.Hex(),
		"vehicle_id":    wo.VehicleID.Hex(),
		"items":         len(wo.Items),
	}).Info("Work order created")
	return wo, nil
}

func newItem(alert models.MaintenanceAlert, program models.VehicleProgramItem, overrides map[primitive.ObjectID]float64, now time.Time) models.WorkOrderItem {
	var override, programCost *float64
	if v, ok := overrides[alert.ID]; ok {
		override = &v
	}
	if program.EstimatedCost != 0 {
		c := program.EstimatedCost
		programCost = &c
	}
	alertCost := alert.EstimatedCost
	price := maintenance.GetEstimatedCost(override, programCost, &alertCost)

	description := program.Description
	if description == "" {
		description = "Maintenance " + alert.ProgramItemID.Hex()
	}
	alertID := alert.ID
	return models.WorkOrderItem{
		ID:          primitive.NewObjectID(),
		AlertID:     &alertID,
		Description: description,
		Quantity:    1,
		UnitPrice:   price,
		TotalCost:   price,
		Source:      models.SourceExternal,
		ClosureType: models.ClosurePending,
		Status:      models.ItemPending,
		UpdatedAt:   now,
	}
}
