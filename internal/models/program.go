package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProgramItemStatus is the status of a scheduled program occurrence.
type ProgramItemStatus string

const (
	ProgramItemPending   ProgramItemStatus = "PENDING"
	ProgramItemCompleted ProgramItemStatus = "COMPLETED"
)

// VehicleProgramItem is one scheduled occurrence of a maintenance task in a
// vehicle's assigned program.
type VehicleProgramItem struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TenantID      string             `json:"tenant_id" bson:"tenant_id"`
	VehicleID     primitive.ObjectID `json:"vehicle_id" bson:"vehicle_id"`
	ProgramID     primitive.ObjectID `json:"program_id" bson:"program_id"`
	Description   string             `json:"description" bson:"description"`
	TargetKm      int                `json:"target_km" bson:"target_km"`
	EstimatedCost float64            `json:"estimated_cost" bson:"estimated_cost"`
	Status        ProgramItemStatus  `json:"status" bson:"status"`
	ExecutedKm    *int               `json:"executed_km,omitempty" bson:"executed_km,omitempty"`
	ExecutedDate  *time.Time         `json:"executed_date,omitempty" bson:"executed_date,omitempty"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}
