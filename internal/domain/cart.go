package domain

import "github.com/shopspring/decimal"

// CartLine is one product entry in a POS cart. Name and UnitPrice are snapshots taken when the
// product was first added and are not re-synced afterwards.
type CartLine struct {
	ProductID int64
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
