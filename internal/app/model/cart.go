package model

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// CartLine is one entry of the session cart. It is never stored in the
// relational database; the cart store serializes it as JSON.
type CartLine struct {
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"` // snapshot taken on first add
	PlanID   *uint           `json:"plan_id,omitempty"`
}

// Cart maps a product id (decimal string) to its line.
type Cart map[string]CartLine

func CartKey(productID uint) string {
	return strconv.FormatUint(uint64(productID), 10)
}

// ProductIDs returns the ids of the lines, skipping malformed keys.
func (c Cart) ProductIDs() []uint {
	ids := make([]uint, 0, len(c))
	for key := range c {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}

// Count is the number of units in the cart.
func (c Cart) Count() int {
	n := 0
	for _, line := range c {
		n += line.Quantity
	}
	return n
}

// CartItemView is a cart line joined with the live product row.
type CartItemView struct {
	ProductID uint            `json:"product_id"`
	Product   *Product        `json:"product"`
	Plan      *ServicePlan    `json:"plan,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartView struct {
	Items    []CartItemView  `json:"items"`
	Count    int             `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
}
