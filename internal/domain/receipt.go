package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const SaleCompletedEventType = "pos.sale_completed"

// Receipt is the local journal entry written after the backend accepted a sale.
type Receipt struct {
	ID            string
	Owner         string
	SessionID     string
	TransactionID int64
	CustomerID    *int64
	PaymentStatus PaymentStatus
	Items         []OrderItem
	Total         decimal.Decimal
	ItemCount     int
	Notes         string
	CreatedAt     time.Time
}

// SaleEvent is published once per completed sale.
type SaleEvent struct {
	ReceiptID     string        `json:"receipt_id"`
	TransactionID int64         `json:"transaction_id"`
	Owner         string        `json:"owner"`
	CustomerID    *int64        `json:"customer_id"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Items         []OrderItem   `json:"items"`
	TotalAmount   string        `json:"total_amount"`
	ItemCount     int           `json:"item_count"`
	CompletedAt   time.Time     `json:"completed_at"`
}

func NewSaleEvent(r Receipt) SaleEvent {
	return SaleEvent{
		ReceiptID:     r.ID,
		TransactionID: r.TransactionID,
		Owner:         r.Owner,
		CustomerID:    r.CustomerID,
		PaymentStatus: r.PaymentStatus,
		Items:         r.Items,
		TotalAmount:   r.Total.String(),
		ItemCount:     r.ItemCount,
		CompletedAt:   r.CreatedAt,
	}
}
