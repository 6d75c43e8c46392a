package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AlertLevel is the severity of a maintenance alert.
type AlertLevel string

const (
	AlertLevelNone     AlertLevel = "NONE"
	AlertLevelUpcoming AlertLevel = "UPCOMING"
	AlertLevelWarning  AlertLevel = "WARNING"
	AlertLevelCritical AlertLevel = "CRITICAL"
)

// MaintenanceCategory distinguishes scheduled from reactive work.
type MaintenanceCategory string

const (
	CategoryPreventive MaintenanceCategory = "PREVENTIVE"
	CategoryCorrective MaintenanceCategory = "CORRECTIVE"
	CategoryPredictive MaintenanceCategory = "PREDICTIVE"
)

// AlertStatus is the lifecycle status of a maintenance alert.
type AlertStatus string

const (
	AlertStatusOpen       AlertStatus = "OPEN"
	AlertStatusInProgress AlertStatus = "IN_PROGRESS"
	AlertStatusCompleted  AlertStatus = "COMPLETED"
)

// MaintenanceAlert is one maintenance obligation for one vehicle, tied to
// one program item. Alerts are never deleted.
type MaintenanceAlert struct {
	ID                  primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	TenantID            string              `json:"tenant_id" bson:"tenant_id"`
	VehicleID           primitive.ObjectID  `json:"vehicle_id" bson:"vehicle_id"`
	ProgramItemID       primitive.ObjectID  `json:"program_item_id" bson:"program_item_id"`
	Category            MaintenanceCategory `json:"category" bson:"category"`
	Level               AlertLevel          `json:"level" bson:"level"`
	PriorityScore       int                 `json:"priority_score" bson:"priority_score"`
	CurrentKm           int                 `json:"current_km" bson:"current_km"`
	ScheduledKm         int                 `json:"scheduled_km" bson:"scheduled_km"`
	KmToMaintenance     int                 `json:"km_to_maintenance" bson:"km_to_maintenance"`
	EstimatedCost       float64             `json:"estimated_cost" bson:"estimated_cost"`
	ActualCost          *float64            `json:"actual_cost,omitempty" bson:"actual_cost,omitempty"`
	Status              AlertStatus         `json:"status" bson:"status"`
	WorkOrderID         *primitive.ObjectID `json:"work_order_id,omitempty" bson:"work_order_id,omitempty"`
	ClosedAt            *time.Time          `json:"closed_at,omitempty" bson:"closed_at,omitempty"`
	CompletionTimeHours *float64            `json:"completion_time_hours,omitempty" bson:"completion_time_hours,omitempty"`
	WasOnTime           *bool               `json:"was_on_time,omitempty" bson:"was_on_time,omitempty"`
	CostVariance        *float64            `json:"cost_variance,omitempty" bson:"cost_variance,omitempty"`
	CreatedAt           time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at" bson:"updated_at"`
}

// IsValidAlertLevel checks if a level is one of the known severities
func IsValidAlertLevel(level AlertLevel) bool {
	switch level {
	case AlertLevelNone, AlertLevelUpcoming, AlertLevelWarning, AlertLevelCritical:
		return true
	default:
		return false
	}
}

// IsValidCategory checks if a maintenance category is known
func IsValidCategory(category MaintenanceCategory) bool {
	switch category {
	case CategoryPreventive, CategoryCorrective, CategoryPredictive:
		return true
	default:
		return false
	}
}
