package workorder

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
	CreatedTotal      = metricz.Key("work_order.created.total")
	TransitionsTotal  = metricz.Key("work_order.transitions.total")
	AutoAdvancesTotal = metricz.Key("work_order.auto_advances.total")
	ItemUpdatesTotal  = metricz.Key("work_order.item_updates.total")
)

// Service applies work order state changes. Every operation runs in one
// store transaction; events are published only after commit.
type Service struct {
	store   db.WorkOrderStore
	events  notify.Publisher
	log     log.FieldLogger
	clock   clockz.Clock
	metrics *metricz.Registry
}

// NewService creates a work order service.
func NewService(store db.WorkOrderStore, events notify.Publisher, logger log.FieldLogger) *Service {
	if events == nil {
		events = notify.Nop{}
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	metrics := metricz.New()
	metrics.Counter(CreatedTotal)
	metrics.Counter(TransitionsTotal)
	metrics.Counter(AutoAdvancesTotal)
	metrics.Counter(ItemUpdatesTotal)

	return &Service{
		store:   store,
		events:  events,
		log:     logger,
		clock:   clockz.RealClock,
		metrics: metrics,
	}
}

// WithClock replaces the clock used for timestamps.
func (s *Service) WithClock(clock clockz.Clock) *Service {
	s.clock = clock
	return s
}

// Metrics returns the service counters.
func (s *Service) Metrics() *metricz.Registry {
	return s.metrics
}

// Get returns a work order with its items.
func (s *Service) Get(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.WorkOrder, error) {
	if err := requireTenant(tenantID); err != nil {
		return nil, err
	}
	return s.store.FindWorkOrder(ctx, tenantID, id)
}

// CheckClosure is the pre-flight form of the completion check.
func (s *Service) CheckClosure(ctx context.Context, tenantID string, id primitive.ObjectID) (maintenance.ClosureCheck, error) {
	wo, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return maintenance.ClosureCheck{}, err
	}
	return maintenance.ValidateWorkOrderClosure(wo.Items), nil
}

func requireTenant(tenantID string) error {
	if tenantID == "" {
		return maintenance.Invalid("tenant_id", "is required")
	}
	return nil
}

func (s *Service) publishStatusChange(ctx context.Context, wo *models.WorkOrder, from models.WorkOrderStatus, automatic bool) {
	event := notify.NewEvent(notify.TypeWorkOrderStatusChanged, wo.TenantID, s.clock.Now(), notify.WorkOrderStatusChanged{
		WorkOrderID: wo.ID.Hex(),
		From:        string(from),
		To:          string(wo.Status),
		Automatic:   automatic,
	})
	notify.Emit(ctx, s.events, s.log, event)
}

func closedOrderError(wo *models.WorkOrder) error {
	return fmt.Errorf("%w: work order %s is %s", maintenance.ErrIllegalTransition, wo.ID.Hex(), wo.Status)
}
