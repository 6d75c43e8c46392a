package maintenance

import "github.com/ukydev/fleet-maintenance/internal/models"

// AlertInput is what the alert materializer knows about one
// vehicle/program-item pair.
type AlertInput struct {
	CurrentKm    int
	ScheduledKm  int
	Category     models.MaintenanceCategory
	DaysOverdue  int
	OverrideCost *float64
	ProgramCost  *float64
	AlertCost    *float64
}

// AlertEvaluation is the derived severity, score and cost of an alert.
type AlertEvaluation struct {
	KmToMaintenance int               `json:"km_to_maintenance"`
	Level           models.AlertLevel `json:"level"`
	PriorityScore   int               `json:"priority_score"`
	EstimatedCost   float64           `json:"estimated_cost"`
}

// EvaluateAlert runs the level, priority and cost calculators for one
// program item.
func EvaluateAlert(in AlertInput) AlertEvaluation {
	km := in.ScheduledKm - in.CurrentKm
	level := CalculateAlertLevel(km)
	return AlertEvaluation{
		KmToMaintenance: km,
		Level:           level,
		PriorityScore:   CalculatePriorityScore(level, in.Category, in.DaysOverdue),
		EstimatedCost:   GetEstimatedCost(in.OverrideCost, in.ProgramCost, in.AlertCost),
	}
}
