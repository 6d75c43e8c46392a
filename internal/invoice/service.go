package invoice

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"github.com/ukydev/fleet-maintenance/internal/notify"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/metricz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Metric keys.
const (
	ApprovalsTotal        = metricz.Key("invoice.approvals.total")
	CascadeFailuresTotal  = metricz.Key("invoice.cascade_failures.total")
	AlertsClosedTotal     = metricz.Key("invoice.alerts_closed.total")
	PriceHistoryRowsTotal = metricz.Key("invoice.price_history_rows.total")
	StatusChangesTotal    = metricz.Key("invoice.status_changes.total")
)

// VarianceMode selects the estimate each closed alert's cost variance is
// measured against.
type VarianceMode string

const (
	// VarianceBatch measures every alert of a work order against the
	// estimate of its oldest alert.
	VarianceBatch VarianceMode = "batch"
	// VariancePerAlert measures each alert against its own estimate.
	VariancePerAlert VarianceMode = "per_alert"
)

// ParseVarianceMode validates a configured variance mode. Empty means
// VarianceBatch.
func ParseVarianceMode(s string) (VarianceMode, error) {
	switch VarianceMode(s) {
	case "", VarianceBatch:
		return VarianceBatch, nil
	case VariancePerAlert:
		return VariancePerAlert, nil
	default:
		return "", fmt.Errorf("unknown cost variance mode %q", s)
	}
}

// Service runs invoice status changes and the closure cascade.
type Service struct {
	store    db.InvoiceStore
	events   notify.Publisher
	log      log.FieldLogger
	clock    clockz.Clock
	metrics  *metricz.Registry
	variance VarianceMode
}

// NewService creates an invoice service using VarianceBatch.
func NewService(store db.InvoiceStore, events notify.Publisher, logger log.FieldLogger) *Service {
	if events == nil {
		events = notify.Nop{}
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	metrics := metricz.New()
	metrics.Counter(ApprovalsTotal)
	metrics.Counter(CascadeFailuresTotal)
	metrics.Counter(AlertsClosedTotal)
	metrics.Counter(PriceHistoryRowsTotal)
	metrics.Counter(StatusChangesTotal)

	return &Service{
		store:    store,
		events:   events,
		log:      logger,
		clock:    clockz.RealClock,
		metrics:  metrics,
		variance: VarianceBatch,
	}
}

// WithClock replaces the clock used for timestamps.
func (s *Service) WithClock(clock clockz.Clock) *Service {
	s.clock = clock
	return s
}

// WithVarianceMode sets how cost variance is computed.
func (s *Service) WithVarianceMode(mode VarianceMode) *Service {
	s.variance = mode
	return s
}

// Metrics returns the service counters.
func (s *Service) Metrics() *metricz.Registry {
	return s.metrics
}

// Get returns an invoice.
func (s *Service) Get(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.Invoice, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	return s.store.FindInvoice(ctx, tenantID, id)
}

// PriceHistory returns the recorded prices of a catalog part, newest first.
func (s *Service) PriceHistory(ctx context.Context, tenantID string, partID primitive.ObjectID) ([]models.PartPriceHistory, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	if partID.IsZero() {
		return nil, maintenance.Invalid("part_id", "is required")
	}
	return s.store.FindPriceHistory(ctx, tenantID, partID)
}

func requireTenant(tenantID string) error {
	if tenantID == "" {
		return maintenance.Invalid("tenant_id", "is required")
	}
	return nil
}
