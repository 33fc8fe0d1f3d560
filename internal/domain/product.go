package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Product is the catalog view of a sellable item as returned by GET /api/v1/products.
type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Stock        int             `json:"stock"`
}

func (p Product) SoldOut() bool {
	return p.Stock <= 0
}

// Customer is only used to populate the checkout customer selector.
type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// DisplayName renders the customer the way the POS selector lists it: "name (phone)".
func (c Customer) DisplayName() string {
	if c.Phone == "" {
		return c.Name
	}
	return fmt.Sprintf("%s (%s)", c.Name, c.Phone)
}
