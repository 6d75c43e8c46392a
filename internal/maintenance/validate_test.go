package maintenance

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestValidateWorkOrderClosure(t *testing.T) {
	t.Run("empty items are closable", func(t *testing.T) {
		check := ValidateWorkOrderClosure(nil)
		assert.True(t, check.CanClose)
		assert.Empty(t, check.PendingItems)

		check = ValidateWorkOrderClosure([]models.WorkOrderItem{})
		assert.True(t, check.CanClose)
		assert.Empty(t, check.PendingItems)
	})

	t.Run("terminal items are closable", func(t *testing.T) {
		items := []models.WorkOrderItem{
			{ID: primitive.NewObjectID(), Status: models.ItemCompleted},
			{ID: primitive.NewObjectID(), Status: models.ItemCancelled},
		}
		check := ValidateWorkOrderClosure(items)
		assert.True(t, check.CanClose)
		assert.Empty(t, check.PendingItems)
	})

	t.Run("open items block closure", func(t *testing.T) {
		pending := models.WorkOrderItem{ID: primitive.NewObjectID(), Description: "brake pads", Status: models.ItemPending}
		working := models.WorkOrderItem{ID: primitive.NewObjectID(), Description: "oil change", Status: models.ItemInProgress}
		done := models.WorkOrderItem{ID: primitive.NewObjectID(), Description: "filter", Status: models.ItemCompleted}

		check := ValidateWorkOrderClosure([]models.WorkOrderItem{pending, done, working})
		assert.False(t, check.CanClose)
		assert.Equal(t, []PendingItem{
			{ID: pending.ID, Description: "brake pads"},
			{ID: working.ID, Description: "oil change"},
		}, check.PendingItems)
	})
}

func TestIsValidWorkOrderTransition(t *testing.T) {
	tests := []struct {
		from, to models.WorkOrderStatus
		expected bool
	}{
		{models.WorkOrderPending, models.WorkOrderInProgress, true},
		{models.WorkOrderPending, models.WorkOrderCancelled, true},
		{models.WorkOrderPending, models.WorkOrderCompleted, false},
		{models.WorkOrderPending, models.WorkOrderPendingInvoice, false},
		{models.WorkOrderInProgress, models.WorkOrderCompleted, true},
		{models.WorkOrderInProgress, models.WorkOrderCancelled, true},
		{models.WorkOrderInProgress, models.WorkOrderPending, false},
		{models.WorkOrderInProgress, models.WorkOrderPendingInvoice, false},
		{models.WorkOrderPendingInvoice, models.WorkOrderCompleted, false},
		{models.WorkOrderPending, models.WorkOrderPending, false},
		{models.WorkOrderStatus("UNKNOWN"), models.WorkOrderInProgress, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidWorkOrderTransition(tt.from, tt.to))
		})
	}
}

func TestIsValidWorkOrderTransition_TerminalStates(t *testing.T) {
	all := []models.WorkOrderStatus{
		models.WorkOrderPending, models.WorkOrderInProgress, models.WorkOrderPendingInvoice,
		models.WorkOrderCompleted, models.WorkOrderCancelled,
	}
	for _, from := range []models.WorkOrderStatus{models.WorkOrderCompleted, models.WorkOrderCancelled} {
		for _, to := range all {
			assert.False(t, IsValidWorkOrderTransition(from, to), "%s -> %s", from, to)
		}
		assert.Empty(t, AllowedWorkOrderTransitions(from))
	}
}

func TestCheckWorkOrderTransition(t *testing.T) {
	require.NoError(t, CheckWorkOrderTransition(models.WorkOrderPending, models.WorkOrderInProgress))

	err := CheckWorkOrderTransition(models.WorkOrderPending, models.WorkOrderCompleted)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIllegalTransition))

	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "PENDING", te.From)
	assert.Equal(t, "COMPLETED", te.To)
}

func TestErrors(t *testing.T) {
	assert.True(t, errors.Is(ErrInvoiceAlreadyApproved, ErrIllegalTransition))

	blocked := &ClosureBlockedError{Pending: []PendingItem{{ID: primitive.NewObjectID(), Description: "tires"}}}
	assert.True(t, errors.Is(blocked, ErrIllegalTransition))
	assert.Contains(t, blocked.Error(), "tires")

	err := Invalid("quantity", "must not be negative, got %v", -1.0)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "invalid quantity: must not be negative, got -1", err.Error())
	assert.False(t, IsValidation(ErrNotFound))
}
