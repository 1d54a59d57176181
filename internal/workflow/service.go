package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"drugtrack/m/domain"
	"drugtrack/m/internal/invoice"
	"drugtrack/m/internal/metrics"
	"drugtrack/m/internal/monitor"
	"drugtrack/m/internal/notify"
	"drugtrack/m/internal/store"
)

const publishTimeout = 5 * time.Second

type Dependencies struct {
	Store    store.Store
	Engine   *Engine
	Monitor  monitor.Config
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
	Notifier notify.Publisher
	Clock    func() time.Time
}

// Service runs each operation as load, compute, save against the record
// store. Operations in one process are serialised; separate processes
// sharing the files are not coordinated and the last write wins.
type Service struct {
	store    store.Store
	engine   *Engine
	monitor  monitor.Config
	log      *slog.Logger
	metrics  *metrics.Recorder
	notifier notify.Publisher
	now      func() time.Time

	mu sync.Mutex
}

func NewService(d Dependencies) *Service {
	s := &Service{
		store:    d.Store,
		engine:   d.Engine,
		monitor:  d.Monitor,
		log:      d.Logger,
		metrics:  d.Metrics,
		notifier: d.Notifier,
		now:      d.Clock,
	}
	if s.engine == nil {
		s.engine = NewEngine(Lenient{})
	}
	if s.monitor == (monitor.Config{}) {
		s.monitor = monitor.DefaultConfig()
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.notifier == nil {
		s.notifier = notify.Noop{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.log = s.log.With("component", "workflow")
	return s
}

type OrderOutcome struct {
	OrderID string
	Lines   []domain.OrderLine
	Invoice *invoice.Document
}

// SubmitOrder runs the new-order path and renders the order's invoice.
// When saving fails the outcome is still returned with an ErrPersistence error.
func (s *Service) SubmitOrder(ctx context.Context, req NewOrder) (OrderOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.store.Load(ctx)
	if err != nil {
		return OrderOutcome{}, fmt.Errorf("load tables: %w", err)
	}
	now := s.now()
	res, err := s.engine.SubmitOrder(snap, req, now)
	if err != nil {
		s.log.Warn("order rejected", "order_id", req.OrderID, "err", err)
		return OrderOutcome{}, err
	}

	out := OrderOutcome{OrderID: res.OrderID, Lines: res.Lines}
	saveErr := s.persist(ctx, res)
	s.metrics.OrderSubmitted()
	s.metrics.StatusUpdated(string(res.Status))
	s.publish(ctx, res, true)
	s.evaluate(res.Snapshot.Inventory, now)
	s.log.Info("order submitted", "order_id", res.OrderID, "lines", len(res.Lines), "status", res.Status)

	doc, err := invoice.Render(*res.Invoice)
	if err != nil {
		s.log.Error("invoice render failed", "order_id", res.OrderID, "err", err)
		return out, errors.Join(saveErr, fmt.Errorf("render invoice: %w", err))
	}
	out.Invoice = &doc
	return out, saveErr
}

// UpdateStatus runs the existing-order path.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status domain.Status) ([]domain.OrderLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	res, err := s.engine.UpdateStatus(snap, orderID, status, s.now())
	if err != nil {
		s.log.Warn("status update rejected", "order_id", orderID, "status", status, "err", err)
		return nil, err
	}
	saveErr := s.persist(ctx, res)
	s.metrics.StatusUpdated(string(status))
	s.publish(ctx, res, false)
	s.log.Info("order status updated", "order_id", orderID, "status", status, "lines", len(res.Lines))
	return res.Lines, saveErr
}

func (s *Service) AdmitHospital(ctx context.Context, app Application) (domain.Hospital, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.store.Load(ctx)
	if err != nil {
		return domain.Hospital{}, fmt.Errorf("load tables: %w", err)
	}
	res, err := s.engine.AdmitHospital(snap, app)
	if err != nil {
		s.metrics.HospitalRejected(rejectionReason(err))
		s.log.Warn("hospital not admitted", "hospital_id", app.Hospital.ID, "err", err)
		return domain.Hospital{}, err
	}
	saveErr := s.persist(ctx, res)
	if saveErr == nil {
		s.metrics.HospitalAdmitted()
		s.log.Info("hospital admitted", "hospital_id", res.Hospital.ID)
	}
	return *res.Hospital, saveErr
}

func (s *Service) Inventory(ctx context.Context) ([]domain.InventoryItem, error) {
	snap, err := s.load(ctx)
	return snap.Inventory, err
}

// Alerts evaluates the current inventory. Zero fields in cfg fall back to the
// service's configured thresholds.
func (s *Service) Alerts(ctx context.Context, cfg monitor.Config) (monitor.Alerts, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return monitor.Alerts{}, err
	}
	if cfg.LowStockThreshold == 0 {
		cfg.LowStockThreshold = s.monitor.LowStockThreshold
	}
	if cfg.ExpiryHorizonDays == 0 {
		cfg.ExpiryHorizonDays = s.monitor.ExpiryHorizonDays
	}
	alerts := monitor.Evaluate(snap.Inventory, s.now(), cfg)
	s.metrics.Alerts(len(alerts.LowStock), len(alerts.NearExpiry))
	return alerts, nil
}

func (s *Service) Hospitals(ctx context.Context) ([]domain.Hospital, error) {
	snap, err := s.load(ctx)
	return snap.Hospitals, err
}

func (s *Service) Consumption(ctx context.Context) ([]domain.ConsumptionRecord, error) {
	return s.store.Consumption(ctx)
}

func (s *Service) OrderIDs(ctx context.Context) ([]string, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return OrderIDs(snap), nil
}

func (s *Service) Track(ctx context.Context, orderID string) (Tracking, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return Tracking{}, err
	}
	return TrackOrder(snap, orderID)
}

// Invoice re-renders the invoice of an existing order from its current lines.
func (s *Service) Invoice(ctx context.Context, orderID string) (invoice.Document, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return invoice.Document{}, err
	}
	lines := linesOf(snap.Orders, orderID)
	if len(lines) == 0 {
		return invoice.Document{}, fmt.Errorf("%w: %s", ErrUnknownOrder, orderID)
	}
	items := make([]invoice.Item, len(lines))
	for i, l := range lines {
		items[i] = invoice.Item{Drug: l.DrugName, Quantity: l.Quantity}
	}
	inv := invoice.Prepare(orderID, lines[0].OrderReceived, lines[0].OrderFrom, items, snap.Hospitals, snap.Inventory)
	return invoice.Render(inv)
}

func (s *Service) load(ctx context.Context) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.store.Load(ctx)
	if err != nil {
		return snap, fmt.Errorf("load tables: %w", err)
	}
	return snap, nil
}

// persist writes every table res changed. A failed table does not stop the
// others and nothing is rolled back.
func (s *Service) persist(ctx context.Context, res Result) error {
	var errs []error
	if res.Persist.Has(PersistOrders) {
		if err := s.store.SaveOrders(ctx, res.Snapshot.Orders); err != nil {
			s.metrics.SaveFailed("orders")
			errs = append(errs, err)
		}
	}
	if res.Persist.Has(PersistInventory) {
		if err := s.store.SaveInventory(ctx, res.Snapshot.Inventory); err != nil {
			s.metrics.SaveFailed("inventory")
			errs = append(errs, err)
		}
	}
	if res.Persist.Has(PersistHospitals) {
		if err := s.store.SaveHospitals(ctx, res.Snapshot.Hospitals); err != nil {
			s.metrics.SaveFailed("hospitals")
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	err := errors.Join(errs...)
	s.log.Error("saving tables failed", "err", err)
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

func (s *Service) publish(ctx context.Context, res Result, newOrder bool) {
	ev := notify.StatusEvent{
		OrderID:   res.OrderID,
		Status:    res.Status,
		NewOrder:  newOrder,
		StampedAt: s.now(),
	}
	for _, l := range res.Lines {
		ev.Hospital = l.OrderFrom
		ev.Drugs = append(ev.Drugs, l.DrugName)
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.notifier.PublishStatus(ctx, ev); err != nil {
		s.log.Warn("status notification failed", "order_id", res.OrderID, "err", err)
	}
}

func (s *Service) evaluate(items []domain.InventoryItem, now time.Time) {
	alerts := monitor.Evaluate(items, now, s.monitor)
	s.metrics.Alerts(len(alerts.LowStock), len(alerts.NearExpiry))
	if len(alerts.LowStock) > 0 {
		s.log.Warn("some medicines have low stock levels", "count", len(alerts.LowStock))
	}
	if len(alerts.NearExpiry) > 0 {
		s.log.Warn("some medicines are nearing expiry", "count", len(alerts.NearExpiry))
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrArtifactRequired):
		return "artifact"
	case errors.Is(err, ErrVerificationPending):
		return "pending"
	case errors.Is(err, ErrHospitalRejected):
		return "rejected"
	case errors.Is(err, ErrHospitalFields):
		return "fields"
	case errors.Is(err, ErrDuplicateHospital):
		return "duplicate"
	}
	return "other"
}
