package handlers

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-maintenance/internal/middleware"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// Router holds everything the HTTP surface is built from.
type Router struct {
	Auth       *AuthHandler
	WorkOrders *WorkOrderHandler
	Invoices   *InvoiceHandler
	AuthMW     *middleware.AuthMiddleware
	RateLimit  *middleware.RateLimitMiddleware
	Logger     log.FieldLogger
}

// Handler builds the routed, authenticated and logged handler.
func (rt Router) Handler() http.Handler {
	mux := http.NewServeMux()
	guard := rt.AuthMW.RequirePermission

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	login := http.Handler(http.HandlerFunc(rt.Auth.Login))
	if rt.RateLimit != nil {
		login = rt.RateLimit.RateLimit(10, time.Minute)(login)
	}
	mux.Handle("POST /api/auth/login", login)

	mux.Handle("POST /api/work-orders", guard(models.ActionCreateWorkOrder, http.HandlerFunc(rt.WorkOrders.Create)))
	mux.Handle("GET /api/work-orders/{id}", guard(models.ActionViewWorkOrders, http.HandlerFunc(rt.WorkOrders.Get)))
	mux.Handle("GET /api/work-orders/{id}/closure", guard(models.ActionViewWorkOrders, http.HandlerFunc(rt.WorkOrders.CheckClosure)))
	mux.Handle("POST /api/work-orders/{id}/transitions", guard(models.ActionTransitionOrder, http.HandlerFunc(rt.WorkOrders.Transition)))
	mux.Handle("PATCH /api/work-orders/{id}/items/{itemID}", guard(models.ActionUpdateOrderItem, http.HandlerFunc(rt.WorkOrders.UpdateItem)))

	mux.Handle("GET /api/invoices/{id}", guard(models.ActionViewInvoices, http.HandlerFunc(rt.Invoices.Get)))
	mux.Handle("POST /api/invoices/{id}/status", guard(models.ActionUpdateInvoice, http.HandlerFunc(rt.Invoices.UpdateStatus)))
	mux.Handle("POST /api/invoices/{id}/approve", guard(models.ActionApproveInvoice, http.HandlerFunc(rt.Invoices.Approve)))
	mux.Handle("GET /api/parts/{partID}/price-history", guard(models.ActionViewPriceHistory, http.HandlerFunc(rt.Invoices.PriceHistory)))

	logger := rt.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	return middleware.RequestLogger(logger, rt.AuthMW.Authenticate(mux))
}
