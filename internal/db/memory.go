package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ukydev/fleet-maintenance/internal/maintenance"
	"github.com/ukydev/fleet-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ Store = (*MemoryStore)(nil)

type memoryTxKey struct{}

// MemoryStore implements Store in process memory. Transactions are
// serialized behind one lock and rolled back by restoring a snapshot, which
// gives the same all-or-nothing and single-writer guarantees the Mongo
// store gets from document locks.
type MemoryStore struct {
	mu    sync.Mutex
	state memoryState
}

type memoryState struct {
	workOrders   map[primitive.ObjectID]models.WorkOrder
	alerts       map[primitive.ObjectID]models.MaintenanceAlert
	programItems map[primitive.ObjectID]models.VehicleProgramItem
	invoices     map[primitive.ObjectID]models.Invoice
	priceHistory []models.PartPriceHistory
	users        map[string]models.User
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: memoryState{
		workOrders:   make(map[primitive.ObjectID]models.WorkOrder),
		alerts:       make(map[primitive.ObjectID]models.MaintenanceAlert),
		programItems: make(map[primitive.ObjectID]models.VehicleProgramItem),
		invoices:     make(map[primitive.ObjectID]models.Invoice),
		users:        make(map[string]models.User),
	}}
}

// Stored values are never mutated in place, only replaced by fresh
// clones, so copying the maps is enough for a snapshot.
func (st memoryState) snapshot() memoryState {
	out := memoryState{
		workOrders:   make(map[primitive.ObjectID]models.WorkOrder, len(st.workOrders)),
		alerts:       make(map[primitive.ObjectID]models.MaintenanceAlert, len(st.alerts)),
		programItems: make(map[primitive.ObjectID]models.VehicleProgramItem, len(st.programItems)),
		invoices:     make(map[primitive.ObjectID]models.Invoice, len(st.invoices)),
		priceHistory: append([]models.PartPriceHistory(nil), st.priceHistory...),
		users:        make(map[string]models.User, len(st.users)),
	}
	for k, v := range st.workOrders {
		out.workOrders[k] = v
	}
	for k, v := range st.alerts {
		out.alerts[k] = v
	}
	for k, v := range st.programItems {
		out.programItems[k] = v
	}
	for k, v := range st.invoices {
		out.invoices[k] = v
	}
	for k, v := range st.users {
		out.users[k] = v
	}
	return out
}

// WithTransaction runs fn holding the store lock and restores the prior
// state if fn fails.
func (s *MemoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memoryTxKey{}) == s {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	saved := s.state.snapshot()
	if err := fn(context.WithValue(ctx, memoryTxKey{}, s)); err != nil {
		s.state = saved
		return err
	}
	return nil
}

// lock takes the store lock unless ctx already runs inside a transaction
// of this store.
func (s *MemoryStore) lock(ctx context.Context) func() {
	if ctx.Value(memoryTxKey{}) == s {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Close is a no-op.
func (s *MemoryStore) Close(context.Context) error { return nil }

func cloneWorkOrder(wo models.WorkOrder) models.WorkOrder {
	wo.Items = append([]models.WorkOrderItem(nil), wo.Items...)
	wo.AlertIDs = append([]primitive.ObjectID(nil), wo.AlertIDs...)
	return wo
}

func cloneInvoice(inv models.Invoice) models.Invoice {
	inv.Items = append([]models.InvoiceItem(nil), inv.Items...)
	return inv
}

// InsertWorkOrder stores a new work order.
func (s *MemoryStore) InsertWorkOrder(ctx context.Context, wo *models.WorkOrder) error {
	defer s.lock(ctx)()
	if wo.ID.IsZero() {
		wo.ID = primitive.NewObjectID()
	}
	s.state.workOrders[wo.ID] = cloneWorkOrder(*wo)
	return nil
}

// FindWorkOrder returns a copy of the work order.
func (s *MemoryStore) FindWorkOrder(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.WorkOrder, error) {
	defer s.lock(ctx)()
	wo, ok := s.state.workOrders[id]
	if !ok || wo.TenantID != tenantID {
		return nil, maintenance.ErrNotFound
	}
	out := cloneWorkOrder(wo)
	return &out, nil
}

// SaveWorkOrder replaces a stored work order.
func (s *MemoryStore) SaveWorkOrder(ctx context.Context, wo *models.WorkOrder) error {
	defer s.lock(ctx)()
	stored, ok := s.state.workOrders[wo.ID]
	if !ok || stored.TenantID != wo.TenantID {
		return maintenance.ErrNotFound
	}
	s.state.workOrders[wo.ID] = cloneWorkOrder(*wo)
	return nil
}

// InsertAlert stores a new alert.
func (s *MemoryStore) InsertAlert(ctx context.Context, alert *models.MaintenanceAlert) error {
	defer s.lock(ctx)()
	if alert.ID.IsZero() {
		alert.ID = primitive.NewObjectID()
	}
	s.state.alerts[alert.ID] = *alert
	return nil
}

// FindAlertsByIDs returns the tenant's alerts among ids, oldest first.
func (s *MemoryStore) FindAlertsByIDs(ctx context.Context, tenantID string, ids []primitive.ObjectID) ([]models.MaintenanceAlert, error) {
	defer s.lock(ctx)()
	var out []models.MaintenanceAlert
	for _, id := range ids {
		if a, ok := s.state.alerts[id]; ok && a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	sortAlerts(out)
	return out, nil
}

// FindAlertsByWorkOrder returns the alerts bundled into a work order,
// oldest first.
func (s *MemoryStore) FindAlertsByWorkOrder(ctx context.Context, tenantID string, workOrderID primitive.ObjectID) ([]models.MaintenanceAlert, error) {
	defer s.lock(ctx)()
	var out []models.MaintenanceAlert
	for _, a := range s.state.alerts {
		if a.TenantID == tenantID && a.WorkOrderID != nil && *a.WorkOrderID == workOrderID {
			out = append(out, a)
		}
	}
	sortAlerts(out)
	return out, nil
}

func sortAlerts(alerts []models.MaintenanceAlert) {
	sort.Slice(alerts, func(i, j int) bool {
		if !alerts[i].CreatedAt.Equal(alerts[j].CreatedAt) {
			return alerts[i].CreatedAt.Before(alerts[j].CreatedAt)
		}
		return alerts[i].ID.Hex() < alerts[j].ID.Hex()
	})
}

// SaveAlerts replaces the given alerts.
func (s *MemoryStore) SaveAlerts(ctx context.Context, tenantID string, alerts []models.MaintenanceAlert) error {
	defer s.lock(ctx)()
	for _, a := range alerts {
		stored, ok := s.state.alerts[a.ID]
		if !ok || stored.TenantID != tenantID {
			return maintenance.ErrNotFound
		}
	}
	for _, a := range alerts {
		s.state.alerts[a.ID] = a
	}
	return nil
}

// InsertProgramItem stores a new program item.
func (s *MemoryStore) InsertProgramItem(ctx context.Context, item *models.VehicleProgramItem) error {
	defer s.lock(ctx)()
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	s.state.programItems[item.ID] = *item
	return nil
}

// FindProgramItemsByIDs returns the tenant's program items among ids.
func (s *MemoryStore) FindProgramItemsByIDs(ctx context.Context, tenantID string, ids []primitive.ObjectID) ([]models.VehicleProgramItem, error) {
	defer s.lock(ctx)()
	var out []models.VehicleProgramItem
	for _, id := range ids {
		if p, ok := s.state.programItems[id]; ok && p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

// CompleteProgramItems marks program items executed.
func (s *MemoryStore) CompleteProgramItems(ctx context.Context, tenantID string, ids []primitive.ObjectID, executedKm int, at time.Time) error {
	defer s.lock(ctx)()
	for _, id := range ids {
		p, ok := s.state.programItems[id]
		if !ok || p.TenantID != tenantID {
			continue
		}
		km := executedKm
		date := at
		p.Status = models.ProgramItemCompleted
		p.ExecutedKm = &km
		p.ExecutedDate = &date
		p.UpdatedAt = at
		s.state.programItems[id] = p
	}
	return nil
}

// InsertInvoice stores a new invoice.
func (s *MemoryStore) InsertInvoice(ctx context.Context, inv *models.Invoice) error {
	defer s.lock(ctx)()
	if inv.ID.IsZero() {
		inv.ID = primitive.NewObjectID()
	}
	s.state.invoices[inv.ID] = cloneInvoice(*inv)
	return nil
}

// FindInvoice returns a copy of the invoice.
func (s *MemoryStore) FindInvoice(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.Invoice, error) {
	defer s.lock(ctx)()
	inv, ok := s.state.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return nil, maintenance.ErrNotFound
	}
	out := cloneInvoice(inv)
	return &out, nil
}

// UpdateInvoiceStatus replaces the invoice if its status is still from.
func (s *MemoryStore) UpdateInvoiceStatus(ctx context.Context, inv *models.Invoice, from models.InvoiceStatus) error {
	defer s.lock(ctx)()
	stored, ok := s.state.invoices[inv.ID]
	if !ok || stored.TenantID != inv.TenantID {
		return maintenance.ErrNotFound
	}
	if stored.Status != from {
		return maintenance.ErrConflict
	}
	s.state.invoices[inv.ID] = cloneInvoice(*inv)
	return nil
}

// InsertPriceHistory appends price history rows.
func (s *MemoryStore) InsertPriceHistory(ctx context.Context, rows []models.PartPriceHistory) error {
	defer s.lock(ctx)()
	for i := range rows {
		if rows[i].ID.IsZero() {
			rows[i].ID = primitive.NewObjectID()
		}
		s.state.priceHistory = append(s.state.priceHistory, rows[i])
	}
	return nil
}

// FindPriceHistory returns a part's price history, newest first.
func (s *MemoryStore) FindPriceHistory(ctx context.Context, tenantID string, partID primitive.ObjectID) ([]models.PartPriceHistory, error) {
	defer s.lock(ctx)()
	out := []models.PartPriceHistory{}
	for _, row := range s.state.priceHistory {
		if row.TenantID == tenantID && row.MasterPartID == partID {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	return out, nil
}

// InsertUser stores a new active user.
func (s *MemoryStore) InsertUser(ctx context.Context, user models.User) error {
	defer s.lock(ctx)()
	now := time.Now()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	user.IsActive = true
	s.state.users[user.Username] = user
	return nil
}

// FindUserByUsername finds a user by their username.
func (s *MemoryStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	defer s.lock(ctx)()
	user, ok := s.state.users[username]
	if !ok {
		return nil, maintenance.ErrNotFound
	}
	return &user, nil
}

// UpdateLastLogin updates the last login time for a user.
func (s *MemoryStore) UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error {
	defer s.lock(ctx)()
	for name, user := range s.state.users {
		if user.ID == id {
			now := time.Now()
			user.LastLogin = &now
			user.UpdatedAt = now
			s.state.users[name] = user
			return nil
		}
	}
	return maintenance.ErrNotFound
}
