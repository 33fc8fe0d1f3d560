package domain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

// PaymentStatus uses the backend's wire values.
type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "LUNAS"
	PaymentUnpaid PaymentStatus = "BELUM LUNAS"
)

// NormalizePaymentStatus maps operator input onto the wire values. PAID and UNPAID are accepted
// as aliases. Unknown input is returned upper-cased and fails Valid.
func NormalizePaymentStatus(s string) PaymentStatus {
	v := strings.ToUpper(strings.TrimSpace(s))
	switch v {
	case "PAID":
		return PaymentPaid
	case "UNPAID", "BELUM_LUNAS":
		return PaymentUnpaid
	}
	return PaymentStatus(v)
}

func (s PaymentStatus) Valid() bool {
	return s == PaymentPaid || s == PaymentUnpaid
}

// RequiresCustomer reports whether a sale with this status must name a customer.
// An unpaid sale is a receivable and has to be attributable for later collection.
func (s PaymentStatus) RequiresCustomer() bool {
	return s == PaymentUnpaid
}

func (s PaymentStatus) String() string {
	return string(s)
}

// OrderItem is one line of the POST /api/v1/transactions payload.
type OrderItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// MarshalJSON writes unit_price as a JSON number, which is what the backend binds to.
func (i OrderItem) MarshalJSON() ([]byte, error) {
	type wireItem struct {
		ProductID   int64       `json:"product_id"`
		ProductName string      `json:"product_name"`
		Quantity    int         `json:"quantity"`
		UnitPrice   json.Number `json:"unit_price"`
	}
	return json.Marshal(wireItem{
		ProductID:   i.ProductID,
		ProductName: i.ProductName,
		Quantity:    i.Quantity,
		UnitPrice:   json.Number(i.UnitPrice.String()),
	})
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the body of the order-submission request.
type Order struct {
	Type          TransactionType `json:"type"`
	CustomerID    *int64          `json:"customer_id"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Items         []OrderItem     `json:"items"`
	Notes         string          `json:"notes"`
}

func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (o Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// OrderConfirmation is the part of the created-transaction response the POS keeps.
type OrderConfirmation struct {
	TransactionID int64           `json:"id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}
