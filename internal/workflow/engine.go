// Package workflow implements order submission, the order status state
// machine and hospital onboarding over an explicit table snapshot.
package workflow

import (
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"drugtrack/m/domain"
	"drugtrack/m/internal/invoice"
)

type Item struct {
	Drug     string `json:"drug"`
	Quantity int64  `json:"quantity"`
}

// NewOrder is a submission on the new-order path. OrderID may name an
// existing order, in which case its matching lines are updated in place.
type NewOrder struct {
	OrderID   string
	Hospital  string
	OrderDate time.Time
	Items     []Item
	Status    domain.Status
}

// Application is a prospective hospital together with its verification outcome.
type Application struct {
	Hospital     domain.Hospital
	Verification domain.VerificationStatus
	Artifact     []byte
}

// Persist names the tables a result changed.
type Persist uint8

const (
	PersistOrders Persist = 1 << iota
	PersistInventory
	PersistHospitals
)

func (p Persist) Has(flag Persist) bool { return p&flag != 0 }

// Result is the updated snapshot plus what must be written back.
type Result struct {
	Snapshot domain.Snapshot
	Persist  Persist
	OrderID  string
	Lines    []domain.OrderLine
	Invoice  *invoice.Invoice
	Hospital *domain.Hospital
	Status   domain.Status
}

// Engine applies workflow operations to snapshots. It never mutates the
// snapshot it is given and performs no I/O.
type Engine struct {
	policy TransitionPolicy
	newID  func() string
}

func NewEngine(policy TransitionPolicy) *Engine {
	if policy == nil {
		policy = Lenient{}
	}
	return &Engine{policy: policy, newID: newOrderID}
}

func newOrderID() string {
	id := uuid.New()
	return "ORD-" + strings.ToUpper(hex.EncodeToString(id[:4]))
}

// SubmitOrder creates or extends the order req.OrderID, stamps req.Status on
// every submitted line and deducts stock. The request is validated in full
// before anything changes: a deduction larger than the stock on hand is
// rejected rather than driving the quantity negative.
func (e *Engine) SubmitOrder(snap domain.Snapshot, req NewOrder, now time.Time) (Result, error) {
	if len(snap.Inventory) == 0 {
		return Result{}, ErrInventoryEmpty
	}
	status := req.Status
	if status == "" {
		status = domain.StatusReceived
	}
	if !status.Valid() {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	items, err := mergeItems(req.Items)
	if err != nil {
		return Result{}, err
	}
	hospital := strings.TrimSpace(req.Hospital)
	if hospitalByName(snap.Hospitals, hospital) < 0 {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownHospital, hospital)
	}
	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		orderID = e.newID()
	}
	orderDate := req.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}

	next := snap.Clone()

	type step struct {
		item   Item
		line   int
		stock  int
		deduct int64
	}
	steps := make([]step, 0, len(items))
	for _, it := range items {
		stock := inventoryByName(next.Inventory, it.Drug)
		if stock < 0 {
			return Result{}, fmt.Errorf("%w: %s", ErrUnknownDrug, it.Drug)
		}
		line := lineOf(next.Orders, orderID, it.Drug)
		deduct := it.Quantity
		if line >= 0 {
			if err := e.policy.Allow(next.Orders[line], status); err != nil {
				return Result{}, err
			}
			deduct = max(it.Quantity-next.Orders[line].Quantity, 0)
		}
		if onHand := next.Inventory[stock].Quantity; deduct > onHand {
			return Result{}, fmt.Errorf("%w: %s needs %d, %d on hand", ErrInsufficientStock, it.Drug, deduct, onHand)
		}
		steps = append(steps, step{item: it, line: line, stock: stock, deduct: deduct})
	}

	for _, s := range steps {
		if s.line >= 0 {
			l := &next.Orders[s.line]
			l.OrderFrom = hospital
			l.OrderReceived = orderDate
			l.Quantity = s.item.Quantity
			l.Stamp(status, now)
		} else {
			l := domain.OrderLine{
				OrderID:       orderID,
				OrderFrom:     hospital,
				OrderReceived: orderDate,
				DrugName:      s.item.Drug,
				Quantity:      s.item.Quantity,
			}
			l.Stamp(status, now)
			next.Orders = append(next.Orders, l)
		}
		next.Inventory[s.stock].Quantity -= s.deduct
	}

	lines := linesOf(next.Orders, orderID)
	invItems := make([]invoice.Item, len(lines))
	for i, l := range lines {
		invItems[i] = invoice.Item{Drug: l.DrugName, Quantity: l.Quantity}
	}
	inv := invoice.Prepare(orderID, orderDate, hospital, invItems, next.Hospitals, next.Inventory)

	return Result{
		Snapshot: next,
		Persist:  PersistOrders | PersistInventory,
		OrderID:  orderID,
		Lines:    lines,
		Invoice:  &inv,
		Status:   status,
	}, nil
}

// UpdateStatus stamps status on every line of an existing order. Quantities
// and inventory are left untouched.
func (e *Engine) UpdateStatus(snap domain.Snapshot, orderID string, status domain.Status, now time.Time) (Result, error) {
	if !status.Valid() {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	next := snap.Clone()
	var idx []int
	for i, l := range next.Orders {
		if l.OrderID == orderID {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownOrder, orderID)
	}
	for _, i := range idx {
		if err := e.policy.Allow(next.Orders[i], status); err != nil {
			return Result{}, err
		}
	}
	for _, i := range idx {
		next.Orders[i].Stamp(status, now)
	}
	return Result{
		Snapshot: next,
		Persist:  PersistOrders,
		OrderID:  orderID,
		Lines:    linesOf(next.Orders, orderID),
		Status:   status,
	}, nil
}

// AdmitHospital appends app.Hospital once a verification document has been
// supplied and marked Verified. Blocked attempts leave the table unchanged.
func (e *Engine) AdmitHospital(snap domain.Snapshot, app Application) (Result, error) {
	if len(app.Artifact) == 0 {
		return Result{}, ErrArtifactRequired
	}
	switch app.Verification {
	case domain.VerificationVerified:
	case domain.VerificationRejected:
		return Result{}, ErrHospitalRejected
	default:
		return Result{}, ErrVerificationPending
	}

	h := app.Hospital
	h.ID = strings.TrimSpace(h.ID)
	h.Name = strings.TrimSpace(h.Name)
	if h.ID == "" || h.Name == "" {
		return Result{}, ErrHospitalFields
	}
	for _, existing := range snap.Hospitals {
		if existing.ID == h.ID {
			return Result{}, fmt.Errorf("%w: %s", ErrDuplicateHospital, h.ID)
		}
	}

	next := snap.Clone()
	next.Hospitals = append(next.Hospitals, h)
	return Result{Snapshot: next, Persist: PersistHospitals, Hospital: &h}, nil
}

// mergeItems trims drug names, checks quantities and folds repeated drugs
// into one item, keeping first-seen order.
func mergeItems(items []Item) ([]Item, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	merged := make([]Item, 0, len(items))
	pos := make(map[string]int, len(items))
	for _, it := range items {
		drug := strings.TrimSpace(it.Drug)
		if drug == "" {
			return nil, fmt.Errorf("%w: empty drug name", ErrUnknownDrug)
		}
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidQuantity, drug)
		}
		if i, ok := pos[drug]; ok {
			if merged[i].Quantity > math.MaxInt64-it.Quantity {
				return nil, fmt.Errorf("%w: %s total is too large", ErrInvalidQuantity, drug)
			}
			merged[i].Quantity += it.Quantity
			continue
		}
		pos[drug] = len(merged)
		merged = append(merged, Item{Drug: drug, Quantity: it.Quantity})
	}
	return merged, nil
}

func hospitalByName(hospitals []domain.Hospital, name string) int {
	if name == "" {
		return -1
	}
	for i, h := range hospitals {
		if h.Name == name {
			return i
		}
	}
	return -1
}

func inventoryByName(items []domain.InventoryItem, name string) int {
	for i, item := range items {
		if item.Name == name {
			return i
		}
	}
	return -1
}

func lineOf(lines []domain.OrderLine, orderID, drug string) int {
	for i, l := range lines {
		if l.OrderID == orderID && l.DrugName == drug {
			return i
		}
	}
	return -1
}

func linesOf(lines []domain.OrderLine, orderID string) []domain.OrderLine {
	var out []domain.OrderLine
	for _, l := range lines {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	return out
}
