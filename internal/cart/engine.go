package cart

import (
	"context"
	"sync"

	"github.com/danishyusrah/Project-Go-Bisnis/internal/domain"
	"github.com/shopspring/decimal"
)

const DefaultNotes = "Penjualan via POS"

// ProductLookup is the engine's read-only view of the catalog.
type ProductLookup interface {
	Product(id int64) (domain.Product, bool)
}

// OrderSubmitter sends a finished order to the backend.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, order domain.Order) (domain.OrderConfirmation, error)
}

// Refresher reloads stock levels after the backend has decremented them.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Selection is the checkout form: optional customer, payment status and notes.
type Selection struct {
	CustomerID    *int64
	PaymentStatus domain.PaymentStatus
	Notes         string
}

type Snapshot struct {
	Lines           []domain.CartLine
	Total           decimal.Decimal
	ItemCount       int
	CheckoutPending bool
}

type CheckoutResult struct {
	Order        domain.Order
	Confirmation domain.OrderConfirmation
	// RefreshErr is set when the sale went through but the catalog could not be reloaded.
	RefreshErr error
}

// Engine holds the cart of one POS session.
//
// While a checkout is waiting on the backend the engine is marked pending: mutations and a second
// checkout are rejected with ErrCheckoutInProgress, reads keep working. The submitted order is built
// from the lines as they were when the checkout started.
type Engine struct {
	mu        sync.Mutex
	products  ProductLookup
	refresher Refresher
	observer  func(Snapshot)
	notes     string
	lines     []domain.CartLine
	pending   bool
}

type Option func(*Engine)

// WithObserver registers fn to be called synchronously after every successful mutation.
func WithObserver(fn func(Snapshot)) Option {
	return func(e *Engine) { e.observer = fn }
}

func WithRefresher(r Refresher) Option {
	return func(e *Engine) { e.refresher = r }
}

// WithDefaultNotes sets the notes used when a checkout does not provide any.
func WithDefaultNotes(notes string) Option {
	return func(e *Engine) { e.notes = notes }
}

func New(products ProductLookup, opts ...Option) *Engine {
	e := &Engine{
		products: products,
		notes:    DefaultNotes,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddItem adds one unit of the product, creating the line if needed.
func (e *Engine) AddItem(productID int64) error {
	return e.mutate(func() error {
		product, ok := e.products.Product(productID)
		if !ok {
			return ErrProductNotFound
		}

		i := e.indexOf(productID)
		inCart := 0
		if i >= 0 {
			inCart = e.lines[i].Quantity
		}
		if inCart+1 > product.Stock {
			return ErrStockInsufficient
		}

		if i >= 0 {
			e.lines[i].Quantity++
			return nil
		}
		e.lines = append(e.lines, domain.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.SellingPrice,
			Quantity:  1,
		})
		return nil
	})
}

// ChangeQuantity moves a line's quantity by delta. Reaching zero or below removes the line; any
// other result must stay within the product's current stock.
func (e *Engine) ChangeQuantity(productID int64, delta int) error {
	return e.mutate(func() error {
		i := e.indexOf(productID)
		if i < 0 {
			return ErrItemNotInCart
		}

		quantity := e.lines[i].Quantity
		if delta <= -quantity {
			e.removeAt(i)
			return nil
		}
		product, ok := e.products.Product(productID)
		if !ok {
			return ErrProductNotFound
		}
		// compared against the headroom so a huge delta cannot overflow
		if delta > product.Stock-quantity {
			return ErrStockInsufficient
		}
		e.lines[i].Quantity = quantity + delta
		return nil
	})
}

// RemoveItem deletes the product's line. Removing an absent line is a no-op.
func (e *Engine) RemoveItem(productID int64) error {
	return e.mutate(func() error {
		if i := e.indexOf(productID); i >= 0 {
			e.removeAt(i)
		}
		return nil
	})
}

func (e *Engine) Clear() error {
	return e.mutate(func() error {
		e.lines = nil
		return nil
	})
}

func (e *Engine) Total() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return totalOf(e.lines)
}

// ItemCount is the number of units in the cart, not the number of lines.
func (e *Engine) ItemCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return countOf(e.lines)
}

// Lines returns a copy of the cart lines in insertion order.
func (e *Engine) Lines() []domain.CartLine {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyLines(e.lines)
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Checkout validates the cart and selection, then submits exactly one order.
//
// Preconditions are checked in order: the cart must not be empty, the payment status must be
// known, and an unpaid sale must name a customer. On success the cart is cleared and the
// refresher, if any, is asked to reload stock. On a submission failure the cart is kept as is.
func (e *Engine) Checkout(ctx context.Context, sel Selection, submitter OrderSubmitter) (CheckoutResult, error) {
	e.mu.Lock()
	if e.pending {
		e.mu.Unlock()
		return CheckoutResult{}, ErrCheckoutInProgress
	}
	if countOf(e.lines) == 0 {
		e.mu.Unlock()
		return CheckoutResult{}, ErrEmptyCart
	}
	if !sel.PaymentStatus.Valid() {
		e.mu.Unlock()
		return CheckoutResult{}, ErrInvalidPaymentStatus
	}
	if sel.PaymentStatus.RequiresCustomer() && customerOf(sel) == nil {
		e.mu.Unlock()
		return CheckoutResult{}, ErrCustomerRequired
	}
	order := e.buildOrderLocked(sel)
	e.pending = true
	e.mu.Unlock()

	confirmation, snap, err := e.submit(ctx, submitter, order)
	if err != nil {
		return CheckoutResult{}, newSubmissionError(err)
	}

	e.notify(snap)

	result := CheckoutResult{Order: order, Confirmation: confirmation}
	if e.refresher != nil {
		result.RefreshErr = e.refresher.Refresh(ctx)
	}
	return result, nil
}

// submit calls the submitter outside the lock. The pending flag is lifted on every way out,
// a panicking submitter included; the cart is cleared only when the order was accepted.
func (e *Engine) submit(ctx context.Context, submitter OrderSubmitter, order domain.Order) (confirmation domain.OrderConfirmation, snap Snapshot, err error) {
	accepted := false
	defer func() {
		e.mu.Lock()
		e.pending = false
		if accepted {
			e.lines = nil
			snap = e.snapshotLocked()
		}
		e.mu.Unlock()
	}()

	confirmation, err = submitter.SubmitOrder(ctx, order)
	accepted = err == nil
	return confirmation, snap, err
}

func (e *Engine) mutate(fn func() error) error {
	e.mu.Lock()
	if e.pending {
		e.mu.Unlock()
		return ErrCheckoutInProgress
	}
	if err := fn(); err != nil {
		e.mu.Unlock()
		return err
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.notify(snap)
	return nil
}

func (e *Engine) notify(snap Snapshot) {
	if e.observer != nil {
		e.observer(snap)
	}
}

func (e *Engine) buildOrderLocked(sel Selection) domain.Order {
	items := make([]domain.OrderItem, len(e.lines))
	for i, line := range e.lines {
		items[i] = domain.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		}
	}

	notes := sel.Notes
	if notes == "" {
		notes = e.notes
	}

	return domain.Order{
		Type:          domain.TransactionIncome,
		CustomerID:    customerOf(sel),
		PaymentStatus: sel.PaymentStatus,
		Items:         items,
		Notes:         notes,
	}
}

// customerOf returns a copy of the selected customer id. Non-positive ids count as no customer.
func customerOf(sel Selection) *int64 {
	if sel.CustomerID == nil || *sel.CustomerID <= 0 {
		return nil
	}
	id := *sel.CustomerID
	return &id
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		Lines:           copyLines(e.lines),
		Total:           totalOf(e.lines),
		ItemCount:       countOf(e.lines),
		CheckoutPending: e.pending,
	}
}

func (e *Engine) indexOf(productID int64) int {
	for i, line := range e.lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

func (e *Engine) removeAt(i int) {
	e.lines = append(e.lines[:i], e.lines[i+1:]...)
}

func totalOf(lines []domain.CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

func countOf(lines []domain.CartLine) int {
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	return count
}

func copyLines(lines []domain.CartLine) []domain.CartLine {
	out := make([]domain.CartLine, len(lines))
	copy(out, lines)
	return out
}
