package db

import (
	"context"
	"time"

	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transactor runs fn as one atomic unit. Every store call made with the
// context passed to fn joins the unit; if fn returns an error nothing it
// wrote is kept. Calling WithTransaction with a context that is already
// inside a unit joins that unit.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// WorkOrderStore defines the persistence operations of the work order
// state machine. Lookups scoped to the wrong tenant return
// maintenance.ErrNotFound.
type WorkOrderStore interface {
	Transactor
	InsertWorkOrder(ctx context.Context, wo *models.WorkOrder) error
	FindWorkOrder(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.WorkOrder, error)
	SaveWorkOrder(ctx context.Context, wo *models.WorkOrder) error
	FindAlertsByIDs(ctx context.Context, tenantID string, ids []primitive.ObjectID) ([]models.MaintenanceAlert, error)
	FindAlertsByWorkOrder(ctx context.Context, tenantID string, workOrderID primitive.ObjectID) ([]models.MaintenanceAlert, error)
	SaveAlerts(ctx context.Context, tenantID string, alerts []models.MaintenanceAlert) error
	FindProgramItemsByIDs(ctx context.Context, tenantID string, ids []primitive.ObjectID) ([]models.VehicleProgramItem, error)
}

// InvoiceStore defines the persistence operations of the closure cascade.
type InvoiceStore interface {
	WorkOrderStore
	FindInvoice(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.Invoice, error)
	// UpdateInvoiceStatus replaces the invoice only if its stored status is
	// still from, returning maintenance.ErrConflict otherwise.
	UpdateInvoiceStatus(ctx context.Context, inv *models.Invoice, from models.InvoiceStatus) error
	CompleteProgramItems(ctx context.Context, tenantID string, ids []primitive.ObjectID, executedKm int, at time.Time) error
	InsertPriceHistory(ctx context.Context, rows []models.PartPriceHistory) error
	FindPriceHistory(ctx context.Context, tenantID string, partID primitive.ObjectID) ([]models.PartPriceHistory, error)
}

// UserCollection defines the user lookups needed to issue tokens.
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error
}

// Store is everything the server needs from a backend.
type Store interface {
	InvoiceStore
	UserCollection
	InsertAlert(ctx context.Context, alert *models.MaintenanceAlert) error
	InsertProgramItem(ctx context.Context, item *models.VehicleProgramItem) error
	InsertInvoice(ctx context.Context, inv *models.Invoice) error
	Close(ctx context.Context) error
}
