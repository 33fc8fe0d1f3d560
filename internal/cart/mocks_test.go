package cart

import (
	"context"
	"sync"

	"github.com/danishyusrah/Project-Go-Bisnis/internal/domain"
	"github.com/shopspring/decimal"
)

// stubCatalog implements ProductLookup for testing
type stubCatalog map[int64]domain.Product

func (c stubCatalog) Product(id int64) (domain.Product, bool) {
	p, ok := c[id]
	return p, ok
}

func newCatalog(products ...domain.Product) stubCatalog {
	c := stubCatalog{}
	for _, p := range products {
		c[p.ID] = p
	}
	return c
}

func product(id int64, name string, price int64, stock int) domain.Product {
	return domain.Product{
		ID:           id,
		Name:         name,
		SKU:          "SKU-" + name,
		SellingPrice: decimal.NewFromInt(price),
		Stock:        stock,
	}
}

// MockSubmitter implements OrderSubmitter and records every order it receives.
// When block is set, SubmitOrder signals started and waits for release.
type MockSubmitter struct {
	mu           sync.Mutex
	Orders       []domain.Order
	Confirmation domain.OrderConfirmation
	Err          error

	block   bool
	started chan struct{}
	release chan struct{}
}

func newBlockingSubmitter() *MockSubmitter {
	return &MockSubmitter{
		block:   true,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (m *MockSubmitter) SubmitOrder(ctx context.Context, order domain.Order) (domain.OrderConfirmation, error) {
	m.mu.Lock()
	m.Orders = append(m.Orders, order)
	m.mu.Unlock()

	if m.block {
		close(m.started)
		select {
		case <-m.release:
		case <-ctx.Done():
			return domain.OrderConfirmation{}, ctx.Err()
		}
	}
	return m.Confirmation, m.Err
}

func (m *MockSubmitter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Orders)
}

// panickingSubmitter fails the way a buggy backend adapter would.
type panickingSubmitter struct{}

func (panickingSubmitter) SubmitOrder(context.Context, domain.Order) (domain.OrderConfirmation, error) {
	panic("submitter exploded")
}

// MockRefresher implements Refresher for testing
type MockRefresher struct {
	mu    sync.Mutex
	calls int
	Err   error
}

func (m *MockRefresher) Refresh(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.Err
}

func (m *MockRefresher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// messageError mimics a backend error carrying an operator-facing message.
type messageError struct {
	msg string
}

func (e *messageError) Error() string       { return "backend: " + e.msg }
func (e *messageError) UserMessage() string { return e.msg }
