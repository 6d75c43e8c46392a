package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemoryStore_TenantScoping(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	wo := &models.WorkOrder{TenantID: "tenant-a", Status: models.WorkOrderPending}
	require.NoError(t, store.InsertWorkOrder(ctx, wo))
	require.False(t, wo.ID.IsZero())

	found, err := store.FindWorkOrder(ctx, "tenant-a", wo.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkOrderPending, found.Status)

	_, err = store.FindWorkOrder(ctx, "tenant-b", wo.ID)
	assert.ErrorIs(t, err, maintenance.ErrNotFound)

	foreign := *found
	foreign.TenantID = "tenant-b"
	assert.ErrorIs(t, store.SaveWorkOrder(ctx, &foreign), maintenance.ErrNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	wo := &models.WorkOrder{TenantID: "t", Items: []models.WorkOrderItem{{ID: primitive.NewObjectID(), Quantity: 1}}}
	require.NoError(t, store.InsertWorkOrder(ctx, wo))
	wo.Items[0].Quantity = 99

	found, err := store.FindWorkOrder(ctx, "t", wo.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, found.Items[0].Quantity)

	found.Items[0].Quantity = 42
	again, err := store.FindWorkOrder(ctx, "t", wo.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, again.Items[0].Quantity)
}

func TestMemoryStore_TransactionRollback(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	inv := &models.Invoice{TenantID: "t", Status: models.InvoicePending}
	require.NoError(t, store.InsertInvoice(ctx, inv))
	partID := primitive.NewObjectID()

	boom := errors.New("boom")
	err := store.WithTransaction(ctx, func(ctx context.Context) error {
		approved := *inv
		approved.Status = models.InvoiceApproved
		if err := store.UpdateInvoiceStatus(ctx, &approved, models.InvoicePending); err != nil {
			return err
		}
		if err := store.InsertPriceHistory(ctx, []models.PartPriceHistory{{TenantID: "t", MasterPartID: partID}}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	found, err := store.FindInvoice(ctx, "t", inv.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePending, found.Status)

	rows, err := store.FindPriceHistory(ctx, "t", partID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMemoryStore_NestedTransactionJoins(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	alert := &models.MaintenanceAlert{TenantID: "t", Status: models.AlertStatusOpen}
	require.NoError(t, store.InsertAlert(ctx, alert))

	err := store.WithTransaction(ctx, func(ctx context.Context) error {
		return store.WithTransaction(ctx, func(ctx context.Context) error {
			a := *alert
			a.Status = models.AlertStatusInProgress
			return store.SaveAlerts(ctx, "t", []models.MaintenanceAlert{a})
		})
	})
	require.NoError(t, err)

	alerts, err := store.FindAlertsByIDs(ctx, "t", []primitive.ObjectID{alert.ID})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertStatusInProgress, alerts[0].Status)
}

func TestMemoryStore_UpdateInvoiceStatusConflict(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	inv := &models.Invoice{TenantID: "t", Status: models.InvoiceApproved}
	require.NoError(t, store.InsertInvoice(ctx, inv))

	again := *inv
	assert.ErrorIs(t, store.UpdateInvoiceStatus(ctx, &again, models.InvoicePending), maintenance.ErrConflict)
}

func TestMemoryStore_AlertsByWorkOrderOldestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	woID := primitive.NewObjectID()
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	newer := &models.MaintenanceAlert{TenantID: "t", WorkOrderID: &woID, CreatedAt: base.Add(time.Hour)}
	older := &models.MaintenanceAlert{TenantID: "t", WorkOrderID: &woID, CreatedAt: base}
	other := &models.MaintenanceAlert{TenantID: "t", CreatedAt: base}
	for _, a := range []*models.MaintenanceAlert{newer, older, other} {
		require.NoError(t, store.InsertAlert(ctx, a))
	}

	alerts, err := store.FindAlertsByWorkOrder(ctx, "t", woID)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, older.ID, alerts[0].ID)
	assert.Equal(t, newer.ID, alerts[1].ID)
}

func TestMemoryStore_CompleteProgramItems(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	item := &models.VehicleProgramItem{TenantID: "t", Status: models.ProgramItemPending}
	foreign := &models.VehicleProgramItem{TenantID: "other", Status: models.ProgramItemPending}
	require.NoError(t, store.InsertProgramItem(ctx, item))
	require.NoError(t, store.InsertProgramItem(ctx, foreign))

	at := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.CompleteProgramItems(ctx, "t", []primitive.ObjectID{item.ID, foreign.ID}, 45200, at))

	items, err := store.FindProgramItemsByIDs(ctx, "t", []primitive.ObjectID{item.ID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.ProgramItemCompleted, items[0].Status)
	assert.Equal(t, 45200, *items[0].ExecutedKm)
	assert.Equal(t, at, *items[0].ExecutedDate)

	others, err := store.FindProgramItemsByIDs(ctx, "other", []primitive.ObjectID{foreign.ID})
	require.NoError(t, err)
	assert.Equal(t, models.ProgramItemPending, others[0].Status)
}

func TestMemoryStore_Users(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.InsertUser(ctx, models.User{Username: "ana", TenantID: "t", Role: models.RoleManager}))

	user, err := store.FindUserByUsername(ctx, "ana")
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.NotZero(t, user.CreatedAt)

	require.NoError(t, store.UpdateLastLogin(ctx, user.ID))
	user, err = store.FindUserByUsername(ctx, "ana")
	require.NoError(t, err)
	assert.NotNil(t, user.LastLogin)

	_, err = store.FindUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, maintenance.ErrNotFound)
}
