package domain

import "time"

// Order is a customer order produced by the storefront checkout. This
// service only reads orders; the one mutation allowed is flipping the
// admin-facing Viewed flag.
type Order struct {
	ID           string      `json:"id"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone"`
	Address      string      `json:"address"`
	Address2     string      `json:"address2,omitempty"`
	City         string      `json:"city"`
	State        string      `json:"state"`
	PostalCode   string      `json:"postal_code"`
	Country      string      `json:"country"`
	Notes        string      `json:"notes,omitempty"`
	Items        []OrderItem `json:"items"`
	TotalAmount  float64     `json:"total_amount"`
	ShippingCost float64     `json:"shipping_cost"`
	Viewed       bool        `json:"viewed"`
	CreatedAt    time.Time   `json:"created_at"`
}

// OrderItem is one line of an order. Properties records the buyer's chosen
// property values as a flat name→value mapping — flatter than
// Variant.Properties, which is what MatchVariant bridges when the cost basis
// is recovered.
type OrderItem struct {
	ProductID  string            `json:"product_id"`
	Title      string            `json:"title"`
	Image      string            `json:"image,omitempty"`
	Properties map[string]string `json:"properties"`
	Quantity   int               `json:"quantity"`
	Price      float64           `json:"price"`
}

// LineTotal returns the recorded sale total for this line.
func (i OrderItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// CustomerSummary aggregates a customer's orders, grouped by email.
type CustomerSummary struct {
	Email      string  `json:"email"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	OrderCount int     `json:"order_count"`
	TotalSpent float64 `json:"total_spent"`
}
