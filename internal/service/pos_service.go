package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/danishyusrah/Project-Go-Bisnis/internal/backend"
	"github.com/danishyusrah/Project-Go-Bisnis/internal/cart"
	"github.com/danishyusrah/Project-Go-Bisnis/internal/catalog"
	"github.com/danishyusrah/Project-Go-Bisnis/internal/domain"
	"github.com/danishyusrah/Project-Go-Bisnis/internal/logger"
	"github.com/danishyusrah/Project-Go-Bisnis/internal/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultCheckoutTimeout = 15 * time.Second
	postCheckoutTimeout    = 5 * time.Second
)

// Backend is the REST API bound to one credential.
type Backend interface {
	catalog.Source
	cart.OrderSubmitter
}

// BackendFactory binds the backend to a bearer credential.
type BackendFactory func(token string) Backend

type Journal interface {
	RecordReceipt(ctx context.Context, receipt domain.Receipt) error
	ListReceipts(ctx context.Context, owner string, limit int) ([]domain.Receipt, error)
}

type SalePublisher interface {
	PublishSale(ctx context.Context, event domain.SaleEvent) error
}

type CheckoutInput struct {
	CustomerID    *int64
	PaymentStatus string
	Notes         string
}

type CheckoutOutcome struct {
	Receipt      domain.Receipt
	Confirmation domain.OrderConfirmation
	Cart         cart.Snapshot
	// StockRefreshed is false when the sale went through but stock levels could not be reloaded.
	StockRefreshed bool
}

type POSService struct {
	backend   BackendFactory
	sessions  session.Store
	journal   Journal
	publisher SalePublisher
	cache     catalog.Cache
	logger    *zap.Logger

	checkoutTimeout time.Duration
	defaultNotes    string
	now             func() time.Time

	wg sync.WaitGroup // in-flight sale publications
}

type Option func(*POSService)

// WithCatalogCache shares product lists between sessions of the same owner.
func WithCatalogCache(c catalog.Cache) Option {
	return func(s *POSService) { s.cache = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *POSService) { s.logger = l }
}

func WithCheckoutTimeout(d time.Duration) Option {
	return func(s *POSService) { s.checkoutTimeout = d }
}

func WithDefaultNotes(notes string) Option {
	return func(s *POSService) { s.defaultNotes = notes }
}

func WithClock(now func() time.Time) Option {
	return func(s *POSService) { s.now = now }
}

func NewPOSService(backend BackendFactory, sessions session.Store, journal Journal, publisher SalePublisher, opts ...Option) *POSService {
	s := &POSService{
		backend:         backend,
		sessions:        sessions,
		journal:         journal,
		publisher:       publisher,
		logger:          zap.NewNop(),
		checkoutTimeout: DefaultCheckoutTimeout,
		defaultNotes:    cart.DefaultNotes,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenSession loads the caller's catalog and starts an empty cart over it.
func (s *POSService) OpenSession(ctx context.Context, token string) (*session.Session, error) {
	owner := Owner(token)
	cat := catalog.New(s.backend(token), s.cache, owner, catalog.WithLogger(s.logger))
	if err := cat.Load(ctx); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	engine := cart.New(cat,
		cart.WithRefresher(cat),
		cart.WithDefaultNotes(s.defaultNotes),
	)
	sess := s.sessions.Create(owner, engine, cat)

	logger.WithContext(ctx, s.logger).Info("pos session opened",
		zap.String("session_id", sess.ID),
		zap.Int("products", len(cat.Products())))
	return sess, nil
}

func (s *POSService) CloseSession(_ context.Context, sessionID, token string) error {
	return s.sessions.Delete(sessionID, Owner(token))
}

func (s *POSService) session(sessionID, token string) (*session.Session, error) {
	return s.sessions.Get(sessionID, Owner(token))
}

func (s *POSService) GetCart(_ context.Context, sessionID, token string) (cart.Snapshot, error) {
	sess, err := s.session(sessionID, token)
	if err != nil {
		return cart.Snapshot{}, err
	}
	return sess.Engine.Snapshot(), nil
}

func (s *POSService) AddItem(_ context.Context, sessionID, token string, productID int64) (cart.Snapshot, error) {
	return s.mutate(sessionID, token, func(e *cart.Engine) error {
		return e.AddItem(productID)
	})
}

func (s *POSService) ChangeQuantity(_ context.Context, sessionID, token string, productID int64, delta int) (cart.Snapshot, error) {
	return s.mutate(sessionID, token, func(e *cart.Engine) error {
		return e.ChangeQuantity(productID, delta)
	})
}

func (s *POSService) RemoveItem(_ context.Context, sessionID, token string, productID int64) (cart.Snapshot, error) {
	return s.mutate(sessionID, token, func(e *cart.Engine) error {
		return e.RemoveItem(productID)
	})
}

func (s *POSService) ClearCart(_ context.Context, sessionID, token string) (cart.Snapshot, error) {
	return s.mutate(sessionID, token, func(e *cart.Engine) error {
		return e.Clear()
	})
}

func (s *POSService) mutate(sessionID, token string, fn func(*cart.Engine) error) (cart.Snapshot, error) {
	sess, err := s.session(sessionID, token)
	if err != nil {
		return cart.Snapshot{}, err
	}
	if err := fn(sess.Engine); err != nil {
		return cart.Snapshot{}, err
	}
	return sess.Engine.Snapshot(), nil
}

// Products lists the session's catalog, filtered by query when it is not blank.
func (s *POSService) Products(_ context.Context, sessionID, token, query string) ([]domain.Product, error) {
	sess, err := s.session(sessionID, token)
	if err != nil {
		return nil, err
	}
	return sess.Catalog.Search(query), nil
}

func (s *POSService) Customers(_ context.Context, sessionID, token string) ([]domain.Customer, error) {
	sess, err := s.session(sessionID, token)
	if err != nil {
		return nil, err
	}
	return sess.Catalog.Customers(), nil
}

// Checkout submits the session's cart as one sale. After the backend accepts it the sale is
// journaled and announced; failures there are logged and do not fail the checkout.
func (s *POSService) Checkout(ctx context.Context, sessionID, token string, in CheckoutInput) (*CheckoutOutcome, error) {
	sess, err := s.session(sessionID, token)
	if err != nil {
		return nil, err
	}
	log := logger.WithContext(ctx, s.logger).With(zap.String("session_id", sessionID))

	ctx, cancel := context.WithTimeout(ctx, s.checkoutTimeout)
	defer cancel()

	result, err := sess.Engine.Checkout(ctx, cart.Selection{
		CustomerID:    in.CustomerID,
		PaymentStatus: domain.NormalizePaymentStatus(in.PaymentStatus),
		Notes:         in.Notes,
	}, s.backend(token))
	if err != nil {
		s.handleCheckoutFailure(ctx, sess, log, err)
		return nil, err
	}

	if result.RefreshErr != nil {
		log.Warn("stock refresh after checkout failed", zap.Error(result.RefreshErr))
	}

	receipt := domain.Receipt{
		ID:            uuid.New().String(),
		Owner:         sess.Owner,
		SessionID:     sess.ID,
		TransactionID: result.Confirmation.TransactionID,
		CustomerID:    result.Order.CustomerID,
		PaymentStatus: result.Order.PaymentStatus,
		Items:         result.Order.Items,
		Total:         result.Order.Total(),
		ItemCount:     result.Order.ItemCount(),
		Notes:         result.Order.Notes,
		CreatedAt:     s.now().UTC(),
	}
	log.Info("checkout completed",
		zap.String("receipt_id", receipt.ID),
		zap.Int64("transaction_id", receipt.TransactionID),
		zap.String("payment_status", receipt.PaymentStatus.String()),
		zap.String("total", receipt.Total.String()))

	s.recordSale(ctx, log, receipt)

	return &CheckoutOutcome{
		Receipt:        receipt,
		Confirmation:   result.Confirmation,
		Cart:           sess.Engine.Snapshot(),
		StockRefreshed: result.RefreshErr == nil,
	}, nil
}

// handleCheckoutFailure logs the failure. When the backend refused the order as unprocessable,
// most often because stock ran out elsewhere, the catalog is reloaded so the cashier sees the
// current stock before retrying.
func (s *POSService) handleCheckoutFailure(ctx context.Context, sess *session.Session, log *zap.Logger, err error) {
	if _, rejected := cart.ReasonOf(err); rejected {
		log.Debug("checkout rejected", zap.Error(err))
		return
	}
	log.Warn("checkout submission failed", zap.Error(err))

	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnprocessableEntity {
		return
	}
	refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), postCheckoutTimeout)
	defer cancel()
	if err := sess.Catalog.Refresh(refreshCtx); err != nil {
		log.Warn("stock refresh after rejected checkout failed", zap.Error(err))
	}
}

func (s *POSService) recordSale(ctx context.Context, log *zap.Logger, receipt domain.Receipt) {
	// the sale already exists on the backend; the caller going away must not lose the record
	base := context.WithoutCancel(ctx)

	journalCtx, cancel := context.WithTimeout(base, postCheckoutTimeout)
	defer cancel()
	if err := s.journal.RecordReceipt(journalCtx, receipt); err != nil {
		log.Error("failed to journal receipt", zap.String("receipt_id", receipt.ID), zap.Error(err))
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		pubCtx, cancel := context.WithTimeout(base, postCheckoutTimeout)
		defer cancel()
		if err := s.publisher.PublishSale(pubCtx, domain.NewSaleEvent(receipt)); err != nil {
			log.Error("failed to publish sale", zap.String("receipt_id", receipt.ID), zap.Error(err))
		}
	}()
}

// Receipts lists the caller's journaled sales, newest first.
func (s *POSService) Receipts(ctx context.Context, token string, limit int) ([]domain.Receipt, error) {
	receipts, err := s.journal.ListReceipts(ctx, Owner(token), limit)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	return receipts, nil
}

// Close waits for in-flight sale publications.
func (s *POSService) Close() {
	s.wg.Wait()
}
