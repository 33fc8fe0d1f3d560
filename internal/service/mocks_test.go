package service

import (
	"context"
	"sync"

	"github.com/danishyusrah/Project-Go-Bisnis/internal/domain"
)

// MockBackend implements Backend for testing. All sessions share it regardless of token.
type MockBackend struct {
	mu           sync.Mutex
	Products     []domain.Product
	Customers    []domain.Customer
	ProductsErr  error
	SubmitErr    error
	Confirmation domain.OrderConfirmation

	Tokens       []string
	Orders       []domain.Order
	productCalls int
}

func (m *MockBackend) factory(token string) Backend {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tokens = append(m.Tokens, token)
	return m
}

func (m *MockBackend) ListProducts(_ context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.productCalls++
	if m.ProductsErr != nil {
		return nil, m.ProductsErr
	}
	out := make([]domain.Product, len(m.Products))
	copy(out, m.Products)
	return out, nil
}

func (m *MockBackend) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Customers, nil
}

func (m *MockBackend) SubmitOrder(_ context.Context, order domain.Order) (domain.OrderConfirmation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Orders = append(m.Orders, order)
	if m.SubmitErr != nil {
		return domain.OrderConfirmation{}, m.SubmitErr
	}
	return m.Confirmation, nil
}

func (m *MockBackend) setStock(id int64, stock int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Products {
		if m.Products[i].ID == id {
			m.Products[i].Stock = stock
		}
	}
}

func (m *MockBackend) ProductCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.productCalls
}

// MockJournal implements Journal for testing
type MockJournal struct {
	mu       sync.Mutex
	Receipts []domain.Receipt
	Err      error
}

func (m *MockJournal) RecordReceipt(_ context.Context, receipt domain.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Receipts = append(m.Receipts, receipt)
	return nil
}

func (m *MockJournal) ListReceipts(_ context.Context, owner string, limit int) ([]domain.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []domain.Receipt
	for i := len(m.Receipts) - 1; i >= 0; i-- {
		if m.Receipts[i].Owner == owner && (limit <= 0 || len(out) < limit) {
			out = append(out, m.Receipts[i])
		}
	}
	return out, nil
}

// MockPublisher implements SalePublisher for testing
type MockPublisher struct {
	mu     sync.Mutex
	Events []domain.SaleEvent
	Err    error
}

func (m *MockPublisher) PublishSale(_ context.Context, event domain.SaleEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockPublisher) Published() []domain.SaleEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.SaleEvent, len(m.Events))
	copy(out, m.Events)
	return out
}
