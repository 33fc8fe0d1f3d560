package http

import (
	"encoding/json"
	"time"

	"github.com/danishyusrah/Project-Go-Bisnis/internal/cart"
	"github.com/danishyusrah/Project-Go-Bisnis/internal/domain"
	"github.com/danishyusrah/Project-Go-Bisnis/internal/service"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

type ChangeQuantityRequestDTO struct {
	Delta int `json:"delta"`
}

type CheckoutRequestDTO struct {
	CustomerID    *int64 `json:"customer_id"`
	PaymentStatus string `json:"payment_status"`
	Notes         string `json:"notes"`
}

type CartItemDTO struct {
	ProductID int64       `json:"product_id"`
	Name      string      `json:"name"`
	UnitPrice json.Number `json:"unit_price"`
	Quantity  int         `json:"quantity"`
	Subtotal  json.Number `json:"subtotal"`
}

type CartResponseDTO struct {
	Items           []CartItemDTO `json:"items"`
	Total           json.Number   `json:"total"`
	TotalDisplay    string        `json:"total_display"`
	ItemCount       int           `json:"item_count"`
	CheckoutPending bool          `json:"checkout_pending"`
}

type SessionResponseDTO struct {
	SessionID string          `json:"session_id"`
	Cart      CartResponseDTO `json:"cart"`
}

type ProductDTO struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	SKU          string      `json:"sku"`
	SellingPrice json.Number `json:"selling_price"`
	Stock        int         `json:"stock"`
	SoldOut      bool        `json:"sold_out"`
}

type CustomerDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	DisplayName string `json:"display_name"`
}

type CheckoutResponseDTO struct {
	ReceiptID      string          `json:"receipt_id"`
	TransactionID  int64           `json:"transaction_id"`
	PaymentStatus  string          `json:"payment_status"`
	Total          json.Number     `json:"total"`
	TotalDisplay   string          `json:"total_display"`
	ItemCount      int             `json:"item_count"`
	StockRefreshed bool            `json:"stock_refreshed"`
	Cart           CartResponseDTO `json:"cart"`
}

type ReceiptItemDTO struct {
	ProductID   int64       `json:"product_id"`
	ProductName string      `json:"product_name"`
	Quantity    int         `json:"quantity"`
	UnitPrice   json.Number `json:"unit_price"`
}

type ReceiptDTO struct {
	ID            string           `json:"id"`
	TransactionID int64            `json:"transaction_id"`
	CustomerID    *int64           `json:"customer_id"`
	PaymentStatus string           `json:"payment_status"`
	Items         []ReceiptItemDTO `json:"items"`
	Total         json.Number      `json:"total"`
	TotalDisplay  string           `json:"total_display"`
	ItemCount     int              `json:"item_count"`
	Notes         string           `json:"notes"`
	CreatedAt     string           `json:"created_at"`
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func toCartDTO(s cart.Snapshot) CartResponseDTO {
	items := make([]CartItemDTO, len(s.Lines))
	for i, line := range s.Lines {
		items[i] = CartItemDTO{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: number(line.UnitPrice),
			Quantity:  line.Quantity,
			Subtotal:  number(line.Subtotal()),
		}
	}
	return CartResponseDTO{
		Items:           items,
		Total:           number(s.Total),
		TotalDisplay:    domain.FormatRupiah(s.Total),
		ItemCount:       s.ItemCount,
		CheckoutPending: s.CheckoutPending,
	}
}

func toProductDTOs(products []domain.Product) []ProductDTO {
	out := make([]ProductDTO, len(products))
	for i, p := range products {
		out[i] = ProductDTO{
			ID:           p.ID,
			Name:         p.Name,
			SKU:          p.SKU,
			SellingPrice: number(p.SellingPrice),
			Stock:        p.Stock,
			SoldOut:      p.SoldOut(),
		}
	}
	return out
}

func toCustomerDTOs(customers []domain.Customer) []CustomerDTO {
	out := make([]CustomerDTO, len(customers))
	for i, c := range customers {
		out[i] = CustomerDTO{
			ID:          c.ID,
			Name:        c.Name,
			Phone:       c.Phone,
			DisplayName: c.DisplayName(),
		}
	}
	return out
}

func toCheckoutDTO(o *service.CheckoutOutcome) CheckoutResponseDTO {
	return CheckoutResponseDTO{
		ReceiptID:      o.Receipt.ID,
		TransactionID:  o.Receipt.TransactionID,
		PaymentStatus:  o.Receipt.PaymentStatus.String(),
		Total:          number(o.Receipt.Total),
		TotalDisplay:   domain.FormatRupiah(o.Receipt.Total),
		ItemCount:      o.Receipt.ItemCount,
		StockRefreshed: o.StockRefreshed,
		Cart:           toCartDTO(o.Cart),
	}
}

func toReceiptDTOs(receipts []domain.Receipt) []ReceiptDTO {
	out := make([]ReceiptDTO, len(receipts))
	for i, r := range receipts {
		items := make([]ReceiptItemDTO, len(r.Items))
		for j, item := range r.Items {
			items[j] = ReceiptItemDTO{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Quantity:    item.Quantity,
				UnitPrice:   number(item.UnitPrice),
			}
		}
		out[i] = ReceiptDTO{
			ID:            r.ID,
			TransactionID: r.TransactionID,
			CustomerID:    r.CustomerID,
			PaymentStatus: r.PaymentStatus.String(),
			Items:         items,
			Total:         number(r.Total),
			TotalDisplay:  domain.FormatRupiah(r.Total),
			ItemCount:     r.ItemCount,
			Notes:         r.Notes,
			CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		}
	}
	return out
}
