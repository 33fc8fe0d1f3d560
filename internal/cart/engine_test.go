package cart

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/danishyusrah/Project-Go-Bisnis/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestAddItem_NewLineAndIncrement(t *testing.T) {
	e := New(newCatalog(product(1, "Kopi", 15000, 10)))

	require.NoError(t, e.AddItem(1))
	require.NoError(t, e.AddItem(1))
	require.NoError(t, e.AddItem(1))

	lines := e.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(1), lines[0].ProductID)
	assert.Equal(t, "Kopi", lines[0].Name)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.True(t, decimal.NewFromInt(45000).Equal(e.Total()))
	assert.Equal(t, 3, e.ItemCount())
}

func TestAddItem_StockCeiling(t *testing.T) {
	e := New(newCatalog(product(2, "Teh", 5000, 1)))

	require.NoError(t, e.AddItem(2))
	err := e.AddItem(2)

	assert.ErrorIs(t, err, ErrStockInsufficient)
	reason, ok := ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, ReasonStockInsufficient, reason)
	assert.Equal(t, 1, e.Lines()[0].Quantity)
}

func TestAddItem_SoldOutProduct(t *testing.T) {
	e := New(newCatalog(product(4, "Gula", 12000, 0)))

	assert.ErrorIs(t, e.AddItem(4), ErrStockInsufficient)
	assert.Empty(t, e.Lines())
}

func TestAddItem_UnknownProduct(t *testing.T) {
	e := New(newCatalog())

	assert.ErrorIs(t, e.AddItem(99), ErrProductNotFound)
	assert.Equal(t, 0, e.ItemCount())
}

func TestAddItem_KeepsInsertionOrder(t *testing.T) {
	e := New(newCatalog(
		product(1, "Kopi", 15000, 10),
		product(2, "Teh", 5000, 10),
		product(3, "Roti", 8000, 10),
	))

	require.NoError(t, e.AddItem(3))
	require.NoError(t, e.AddItem(1))
	require.NoError(t, e.AddItem(3))
	require.NoError(t, e.AddItem(2))

	lines := e.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, []int64{3, 1, 2}, []int64{lines[0].ProductID, lines[1].ProductID, lines[2].ProductID})
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestStockCeilingHoldsForMixedSequences(t *testing.T) {
	const stock = 4
	e := New(newCatalog(product(1, "Kopi", 15000, stock)))
	require.NoError(t, e.AddItem(1))

	ops := []int{+1, +1, +3, -1, +1, +1, +1, +2, -2, +1, +1}
	for _, delta := range ops {
		_ = e.ChangeQuantity(1, delta)
		_ = e.AddItem(1)

		for _, line := range e.Lines() {
			assert.LessOrEqual(t, line.Quantity, stock)
		}
	}
}

func TestChangeQuantity(t *testing.T) {
	tests := []struct {
		name     string
		stock    int
		start    int
		delta    int
		wantQty  int
		wantLine bool
		wantErr  error
	}{
		{name: "increment within stock", stock: 5, start: 1, delta: 1, wantQty: 2, wantLine: true},
		{name: "increment past stock", stock: 2, start: 2, delta: 1, wantQty: 2, wantLine: true, wantErr: ErrStockInsufficient},
		{name: "decrement", stock: 5, start: 3, delta: -1, wantQty: 2, wantLine: true},
		{name: "decrement to zero removes", stock: 5, start: 1, delta: -1, wantLine: false},
		{name: "large decrement removes", stock: 5, start: 2, delta: -10, wantLine: false},
		{name: "zero delta is a no-op", stock: 5, start: 2, delta: 0, wantQty: 2, wantLine: true},
		{name: "jump to exactly stock", stock: 5, start: 1, delta: 4, wantQty: 5, wantLine: true},
		{name: "jump past stock", stock: 5, start: 1, delta: 5, wantQty: 1, wantLine: true, wantErr: ErrStockInsufficient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(newCatalog(product(3, "Roti", 8000, tt.stock)))
			for i := 0; i < tt.start; i++ {
				require.NoError(t, e.AddItem(3))
			}

			err := e.ChangeQuantity(3, tt.delta)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			lines := e.Lines()
			if !tt.wantLine {
				assert.Empty(t, lines)
				assert.Equal(t, 0, e.ItemCount())
				return
			}
			require.Len(t, lines, 1)
			assert.Equal(t, tt.wantQty, lines[0].Quantity)
		})
	}
}

func TestChangeQuantity_MissingLine(t *testing.T) {
	e := New(newCatalog(product(1, "Kopi", 15000, 10)))

	assert.ErrorIs(t, e.ChangeQuantity(1, 1), ErrItemNotInCart)
	assert.ErrorIs(t, e.ChangeQuantity(1, -1), ErrItemNotInCart)
}

func TestChangeQuantity_AboveStockAfterRefresh(t *testing.T) {
	catalog := newCatalog(product(1, "Kopi", 15000, 5))
	e := New(catalog)
	for i := 0; i < 5; i++ {
		require.NoError(t, e.AddItem(1))
	}

	// stock dropped on the server and the catalog was refreshed
	catalog[1] = product(1, "Kopi", 15000, 2)

	assert.ErrorIs(t, e.ChangeQuantity(1, -1), ErrStockInsufficient)
	assert.Equal(t, 5, e.ItemCount())

	require.NoError(t, e.ChangeQuantity(1, -3))
	assert.Equal(t, 2, e.ItemCount())

	require.NoError(t, e.ChangeQuantity(1, -2))
	assert.Empty(t, e.Lines())
}

func TestChangeQuantity_ExtremeDeltas(t *testing.T) {
	e := New(newCatalog(product(1, "Kopi", 15000, 10)))
	require.NoError(t, e.AddItem(1))

	assert.ErrorIs(t, e.ChangeQuantity(1, math.MaxInt), ErrStockInsufficient)
	require.Len(t, e.Lines(), 1)
	assert.Equal(t, 1, e.Lines()[0].Quantity)

	require.NoError(t, e.ChangeQuantity(1, math.MinInt))
	assert.Empty(t, e.Lines())
}

func TestRemoveItem_Idempotent(t *testing.T) {
	e := New(newCatalog(product(1, "Kopi", 15000, 10), product(2, "Teh", 5000, 10)))
	require.NoError(t, e.AddItem(1))
	require.NoError(t, e.AddItem(2))

	require.NoError(t, e.RemoveItem(1))
	after := e.Snapshot()
	require.NoError(t, e.RemoveItem(1))

	assert.Equal(t, after, e.Snapshot())
	require.Len(t, e.Lines(), 1)
	assert.Equal(t, int64(2), e.Lines()[0].ProductID)
}

func TestClear(t *testing.T) {
	e := New(newCatalog(product(1, "Kopi", 15000, 10)))
	require.NoError(t, e.AddItem(1))

	require.NoError(t, e.Clear())

	assert.Empty(t, e.Lines())
	assert.True(t, e.Total().IsZero())
}

func TestTotal_IsExact(t *testing.T) {
	catalog := newCatalog(
		domain.Product{ID: 1, Name: "A", SellingPrice: decimal.RequireFromString("0.1"), Stock: 100},
		domain.Product{ID: 2, Name: "B", SellingPrice: decimal.RequireFromString("0.2"), Stock: 100},
	)
	e := New(catalog)

	for i := 0; i < 30; i++ {
		require.NoError(t, e.AddItem(1))
		require.NoError(t, e.AddItem(2))
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, e.ChangeQuantity(1, -1))
	}

	// 20 * 0.1 + 30 * 0.2
	assert.Equal(t, "8", e.Total().String())
}

func TestLines_ReturnsCopy(t *testing.T) {
	e := New(newCatalog(product(1, "Kopi", 15000, 10)))
	require.NoError(t, e.AddItem(1))

	lines := e.Lines()
	lines[0].Quantity = 99

	assert.Equal(t, 1, e.ItemCount())
}

func TestObserver_CalledAfterEachMutation(t *testing.T) {
	var seen []Snapshot
	e := New(newCatalog(product(1, "Kopi", 15000, 1)), WithObserver(func(s Snapshot) {
		seen = append(seen, s)
	}))

	require.NoError(t, e.AddItem(1))
	_ = e.AddItem(1) // rejected, no notification
	require.NoError(t, e.RemoveItem(1))

	require.Len(t, seen, 2)
	assert.Equal(t, 1, seen[0].ItemCount)
	assert.Equal(t, 0, seen[1].ItemCount)
}

func TestCheckout_EmptyCartCheckedFirst(t *testing.T) {
	statuses := []domain.PaymentStatus{domain.PaymentPaid, domain.PaymentUnpaid, "BOGUS"}
	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			e := New(newCatalog())
			submitter := &MockSubmitter{}

			_, err := e.Checkout(context.Background(), Selection{PaymentStatus: status}, submitter)

			assert.ErrorIs(t, err, ErrEmptyCart)
			assert.Equal(t, 0, submitter.Calls())
		})
	}
}

func TestCheckout_UnpaidRequiresCustomer(t *testing.T) {
	e := New(newCatalog(product(1, "Kopi", 15000, 10)))
	require.NoError(t, e.AddItem(1))
	submitter := &MockSubmitter{Confirmation: domain.OrderConfirmation{TransactionID: 11}}

	_, err := e.Checkout(context.Background(), Selection{PaymentStatus: domain.PaymentUnpaid}, submitter)

	assert.ErrorIs(t, err, ErrCustomerRequired)
	assert.Equal(t, 0, submitter.Calls())
	assert.Equal(t, 1, e.ItemCount())

	result, err := e.Checkout(context.Background(), Selection{
		CustomerID:    int64Ptr(7),
		PaymentStatus: domain.PaymentUnpaid,
	}, submitter)

	require.NoError(t, err)
	require.Equal(t, 1, submitter.Calls())
	require.NotNil(t, result.Order.CustomerID)
	assert.Equal(t, int64(7), *result.Order.CustomerID)
	assert.Equal(t, domain.PaymentUnpaid, result.Order.PaymentStatus)
}

func TestCheckout_NonPositiveCustomerIsNoCustomer(t *testing.T) {
	e := New(newCatalog(product(1, "Kopi", 15000, 10)))
	require.NoError(t, e.AddItem(1))
	submitter := &MockSubmitter{}

	for _, id := range []int64{0, -3} {
		_, err := e.Checkout(context.Background(), Selection{
			CustomerID:    int64Ptr(id),
			PaymentStatus: domain.PaymentUnpaid,
		}, submitter)
		assert.ErrorIs(t, err, ErrCustomerRequired, id)
	}
	assert.Equal(t, 0, submitter.Calls())

	result, err := e.Checkout(context.Background(), Selection{
		CustomerID:    int64Ptr(0),
		PaymentStatus: domain.PaymentPaid,
	}, submitter)

	require.NoError(t, err)
	assert.Nil(t, result.Order.CustomerID)
}

func TestCheckout_InvalidPaymentStatus(t *testing.T) {
	e := New(newCatalog(product(1, "Kopi", 15000, 10)))
	require.NoError(t, e.AddItem(1))

	_, err := e.Checkout(context.Background(), Selection{PaymentStatus: "CICIL"}, &MockSubmitter{})

	assert.ErrorIs(t, err, ErrInvalidPaymentStatus)
	assert.Equal(t, 1, e.ItemCount())
}

func TestCheckout_BuildsOrderAndClears(t *testing.T) {
	refresher := &MockRefresher{}
	e := New(newCatalog(product(1, "Kopi", 15000, 10), product(2, "Teh", 5000, 10)), WithRefresher(refresher))
	require.NoError(t, e.AddItem(1))
	require.NoError(t, e.AddItem(1))
	require.NoError(t, e.AddItem(2))
	submitter := &MockSubmitter{Confirmation: domain.OrderConfirmation{TransactionID: 42, TotalAmount: decimal.NewFromInt(35000)}}

	result, err := e.Checkout(context.Background(), Selection{PaymentStatus: domain.PaymentPaid}, submitter)

	require.NoError(t, err)
	require.Equal(t, 1, submitter.Calls())
	order := submitter.Orders[0]
	assert.Equal(t, domain.TransactionIncome, order.Type)
	assert.Nil(t, order.CustomerID)
	assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, DefaultNotes, order.Notes)
	require.Len(t, order.Items, 2)
	assert.Equal(t, domain.OrderItem{ProductID: 1, ProductName: "Kopi", Quantity: 2, UnitPrice: decimal.NewFromInt(15000)}, order.Items[0])
	assert.Equal(t, int64(42), result.Confirmation.TransactionID)
	assert.True(t, decimal.NewFromInt(35000).Equal(result.Order.Total()))

	assert.Empty(t, e.Lines())
	assert.Equal(t, 1, refresher.Calls())
	assert.NoError(t, result.RefreshErr)
}

func TestCheckout_NotesOverrideAndDefault(t *testing.T) {
	e := New(newCatalog(product(1, "Kopi", 15000, 10)), WithDefaultNotes("Kasir 2"))
	submitter := &MockSubmitter{}

	require.NoError(t, e.AddItem(1))
	_, err := e.Checkout(context.Background(), Selection{PaymentStatus: domain.PaymentPaid}, submitter)
	require.NoError(t, err)

	require.NoError(t, e.AddItem(1))
	_, err = e.Checkout(context.Background(), Selection{PaymentStatus: domain.PaymentPaid, Notes: "meja 4"}, submitter)
	require.NoError(t, err)

	assert.Equal(t, "Kasir 2", submitter.Orders[0].Notes)
	assert.Equal(t, "meja 4", submitter.Orders[1].Notes)
}

func TestCheckout_SubmissionFailureKeepsCart(t *testing.T) {
	refresher := &MockRefresher{}
	e := New(newCatalog(product(1, "Kopi", 15000, 10)), WithRefresher(refresher))
	require.NoError(t, e.AddItem(1))
	require.NoError(t, e.AddItem(1))
	before := e.Snapshot()

	backendErr := &messageError{msg: "Stok produk Kopi tidak mencukupi"}
	_, err := e.Checkout(context.Background(), Selection{PaymentStatus: domain.PaymentPaid}, &MockSubmitter{Err: backendErr})

	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, "Stok produk Kopi tidak mencukupi", subErr.Message)
	assert.ErrorIs(t, err, backendErr)
	_, isRejection := ReasonOf(err)
	assert.False(t, isRejection)

	assert.Equal(t, before, e.Snapshot())
	assert.Equal(t, 0, refresher.Calls())

	// retry with the same contents
	submitter := &MockSubmitter{}
	_, err = e.Checkout(context.Background(), Selection{PaymentStatus: domain.PaymentPaid}, submitter)
	require.NoError(t, err)
	assert.Equal(t, 2, submitter.Orders[0].Items[0].Quantity)
}

func TestCheckout_FallbackSubmissionMessage(t *testing.T) {
	e := New(newCatalog(product(1, "Kopi", 15000, 10)))
	require.NoError(t, e.AddItem(1))

	_, err := e.Checkout(context.Background(), Selection{PaymentStatus: domain.PaymentPaid}, &MockSubmitter{Err: errors.New("connection refused")})

	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, FallbackSubmissionMessage, subErr.Message)
}

func TestCheckout_RefreshFailureDoesNotFailSale(t *testing.T) {
	refresher := &MockRefresher{Err: errors.New("catalog down")}
	e := New(newCatalog(product(1, "Kopi", 15000, 10)), WithRefresher(refresher))
	require.NoError(t, e.AddItem(1))

	result, err := e.Checkout(context.Background(), Selection{PaymentStatus: domain.PaymentPaid}, &MockSubmitter{})

	require.NoError(t, err)
	assert.EqualError(t, result.RefreshErr, "catalog down")
	assert.Empty(t, e.Lines())
}

func TestCheckout_PendingRejectsMutations(t *testing.T) {
	e := New(newCatalog(product(1, "Kopi", 15000, 10), product(2, "Teh", 5000, 10)))
	require.NoError(t, e.AddItem(1))
	submitter := newBlockingSubmitter()

	done := make(chan error, 1)
	go func() {
		_, err := e.Checkout(context.Background(), Selection{PaymentStatus: domain.PaymentPaid}, submitter)
		done <- err
	}()
	<-submitter.started

	assert.ErrorIs(t, e.AddItem(2), ErrCheckoutInProgress)
	assert.ErrorIs(t, e.ChangeQuantity(1, 1), ErrCheckoutInProgress)
	assert.ErrorIs(t, e.RemoveItem(1), ErrCheckoutInProgress)
	assert.ErrorIs(t, e.Clear(), ErrCheckoutInProgress)
	_, err := e.Checkout(context.Background(), Selection{PaymentStatus: domain.PaymentPaid}, &MockSubmitter{})
	assert.ErrorIs(t, err, ErrCheckoutInProgress)

	// reads keep working
	snap := e.Snapshot()
	assert.True(t, snap.CheckoutPending)
	assert.Equal(t, 1, snap.ItemCount)

	close(submitter.release)
	require.NoError(t, <-done)
	assert.False(t, e.Snapshot().CheckoutPending)
	assert.Empty(t, e.Lines())
	require.NoError(t, e.AddItem(2))
}

func TestCheckout_CancelledContextKeepsCart(t *testing.T) {
	e := New(newCatalog(product(1, "Kopi", 15000, 10)))
	require.NoError(t, e.AddItem(1))
	submitter := newBlockingSubmitter()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := e.Checkout(ctx, Selection{PaymentStatus: domain.PaymentPaid}, submitter)
		done <- err
	}()
	<-submitter.started
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, e.ItemCount())
	assert.False(t, e.Snapshot().CheckoutPending)
}

func TestCheckout_SubmitterPanicReleasesCart(t *testing.T) {
	e := New(newCatalog(product(1, "Kopi", 15000, 10)))
	require.NoError(t, e.AddItem(1))

	assert.Panics(t, func() {
		_, _ = e.Checkout(context.Background(), Selection{PaymentStatus: domain.PaymentPaid}, panickingSubmitter{})
	})

	assert.False(t, e.Snapshot().CheckoutPending)
	assert.Equal(t, 1, e.ItemCount())
	require.NoError(t, e.AddItem(1))

	submitter := &MockSubmitter{}
	_, err := e.Checkout(context.Background(), Selection{PaymentStatus: domain.PaymentPaid}, submitter)
	require.NoError(t, err)
	assert.Equal(t, 1, submitter.Calls())
}

func TestRejectionMessages(t *testing.T) {
	assert.Equal(t, "stock insufficient", ErrStockInsufficient.Error())
	assert.Equal(t, "customer required for unpaid sale", ErrCustomerRequired.Error())
	assert.Equal(t, "cart is empty", ErrEmptyCart.Error())
}
