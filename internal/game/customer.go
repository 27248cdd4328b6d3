package game

import "github.com/shopspring/decimal"

// Product is one line item a customer asks for.
type Product struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Customer is the scenario for a single round. DesiredItems is the ground truth
// the charged amount is checked against.
type Customer struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Avatar       string    `json:"avatar"`
	Dialogue     string    `json:"dialogue"`
	DesiredItems []Product `json:"desiredItems"`
}

// Total sums the prices of every desired item.
func (c Customer) Total() decimal.Decimal {
	return Sum(c.DesiredItems)
}

// Clone returns a copy whose item slice is not shared with c.
func (c Customer) Clone() Customer {
	out := c
	out.DesiredItems = append([]Product(nil), c.DesiredItems...)
	return out
}

// Sum adds up product prices.
func Sum(items []Product) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price)
	}
	return total
}
