package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/ukydev/fleet-maintenance/internal/invoice"
	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockInvoiceService is a mock implementation of InvoiceService
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Get(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) UpdateStatus(ctx context.Context, req invoice.StatusRequest) (*models.Invoice, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockInvoiceService) ApplyInvoiceApproval(ctx context.Context, req invoice.ApprovalRequest) (*invoice.ApprovalResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.ApprovalResult), args.Error(1)
}

func (m *MockInvoiceService) PriceHistory(ctx context.Context, tenantID string, partID primitive.ObjectID) ([]models.PartPriceHistory, error) {
	args := m.Called(ctx, tenantID, partID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PartPriceHistory), args.Error(1)
}

func TestInvoiceHandler_Approve(t *testing.T) {
	id := primitive.NewObjectID()
	want := invoice.ApprovalRequest{TenantID: "tenant-a", InvoiceID: id, ApproverID: testClaims.UserID}

	tests := []struct {
		name       string
		result     *invoice.ApprovalResult
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "approved",
			result:     &invoice.ApprovalResult{Invoice: &models.Invoice{ID: id, Status: models.InvoiceApproved}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "already approved",
			err:        maintenance.ErrInvoiceAlreadyApproved,
			wantStatus: http.StatusConflict,
			wantBody:   "already approved",
		},
		{
			name:       "cascade failure",
			err:        assert.AnError,
			wantStatus: http.StatusInternalServerError,
			wantBody:   assert.AnError.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockInvoiceService)
			h := NewInvoiceHandler(svc)
			if tt.err != nil {
				svc.On("ApplyInvoiceApproval", mock.Anything, want).Return(nil, tt.err)
			} else {
				svc.On("ApplyInvoiceApproval", mock.Anything, want).Return(tt.result, nil)
			}

			w := serve("POST /api/invoices/{id}/approve", h.Approve, httptest.NewRequest("POST", "/api/invoices/"+id.Hex()+"/approve", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestInvoiceHandler_UpdateStatus(t *testing.T) {
	id := primitive.NewObjectID()

	t.Run("rejected", func(t *testing.T) {
		svc := new(MockInvoiceService)
		h := NewInvoiceHandler(svc)
		svc.On("UpdateStatus", mock.Anything, invoice.StatusRequest{
			TenantID:  "tenant-a",
			InvoiceID: id,
			Target:    models.InvoiceRejected,
			ActorID:   testClaims.UserID,
		}).Return(&models.Invoice{ID: id, Status: models.InvoiceRejected}, nil)

		req := httptest.NewRequest("POST", "/api/invoices/"+id.Hex()+"/status", jsonBody(t, InvoiceStatusRequest{Status: models.InvoiceRejected}))
		w := serve("POST /api/invoices/{id}/status", h.UpdateStatus, req)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("approval goes through approve endpoint", func(t *testing.T) {
		svc := new(MockInvoiceService)
		h := NewInvoiceHandler(svc)

		req := httptest.NewRequest("POST", "/api/invoices/"+id.Hex()+"/status", jsonBody(t, InvoiceStatusRequest{Status: models.InvoiceApproved}))
		w := serve("POST /api/invoices/{id}/status", h.UpdateStatus, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
	})
}

func TestInvoiceHandler_PriceHistory(t *testing.T) {
	svc := new(MockInvoiceService)
	h := NewInvoiceHandler(svc)
	part := primitive.NewObjectID()
	svc.On("PriceHistory", mock.Anything, "tenant-a", part).Return([]models.PartPriceHistory{{MasterPartID: part, UnitPrice: 42}}, nil)

	w := serve("GET /api/parts/{partID}/price-history", h.PriceHistory, httptest.NewRequest("GET", "/api/parts/"+part.Hex()+"/price-history", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unit_price":42`)
	svc.AssertExpectations(t)
}

func TestInvoiceHandler_Get_NotFound(t *testing.T) {
	svc := new(MockInvoiceService)
	h := NewInvoiceHandler(svc)
	id := primitive.NewObjectID()
	svc.On("Get", mock.Anything, "tenant-a", id).Return(nil, maintenance.ErrNotFound)

	w := serve("GET /api/invoices/{id}", h.Get, httptest.NewRequest("GET", "/api/invoices/"+id.Hex(), nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
